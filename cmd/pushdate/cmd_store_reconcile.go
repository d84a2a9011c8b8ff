package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/pushdate/pkg/history"
	"github.com/odvcencio/pushdate/pkg/object"
	"github.com/odvcencio/pushdate/pkg/pushdate"
	"github.com/odvcencio/pushdate/pkg/pushlog"
	"github.com/odvcencio/pushdate/pkg/snapshot"
)

func newStoreReconcileCmd(a *app) *cobra.Command {
	var deadline string

	cmd := &cobra.Command{
		Use:   "store-reconcile [tip...]",
		Short: "Reconcile the history stored in the object store against the push log",
		Long: "Walks parents from the given tips (every commit imported into the repository\n" +
			"when none is given), loads reported push times from the push log and prints\n" +
			"the reconciled history.",
		RunE: func(cmd *cobra.Command, args []string) error {
			repository := strings.TrimSpace(a.cfg.Repository)
			if repository == "" {
				return fmt.Errorf("store-reconcile: repository is required: set --repository or repository in %s", a.configPath)
			}
			limit, hasLimit, err := a.deadline(deadline)
			if err != nil {
				return err
			}

			log, err := pushlog.Open(a.cfg.PushLog)
			if err != nil {
				return err
			}
			defer log.Close()

			store := object.NewStore(a.cfg.Store)
			tips := make([]object.Hash, 0, len(args))
			for _, arg := range args {
				tips = append(tips, object.Hash(arg))
			}
			if len(tips) == 0 {
				// The store is shared; only walk this repository's commits.
				if tips, err = log.Commits(cmd.Context(), repository); err != nil {
					return err
				}
			}

			g, err := history.Build(tips, store.Parents)
			if err != nil {
				return err
			}
			created := make(map[object.Hash]time.Time, g.Len())
			for _, h := range g.Nodes() {
				c, err := store.ReadCommit(h)
				if err != nil {
					return err
				}
				created[h] = c.CreatedAt()
			}

			reported, err := log.Reported(cmd.Context(), repository)
			if err != nil {
				return err
			}
			a.logger.Debug("history loaded", "commits", g.Len(), "reported", len(reported))

			hist, err := pushdate.New(g, created, reported)
			if err != nil {
				return err
			}
			a.warnAnomalies(repository, hist)
			if hist, err = a.restrict(hist, limit, hasLimit); err != nil {
				return err
			}

			r := snapshot.NewReport(repository, hist)
			if hasLimit {
				r.Deadline = &limit
			}
			return a.render(cmd.OutOrStdout(), []*snapshot.Report{r})
		},
	}

	cmd.Flags().StringVar(&deadline, "deadline", "", "only report the history pushed by this RFC 3339 time")
	return cmd
}
