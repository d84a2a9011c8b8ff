package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/pushdate/pkg/pushdate"
	"github.com/odvcencio/pushdate/pkg/snapshot"
)

func newReconcileCmd(a *app) *cobra.Command {
	var deadline string

	cmd := &cobra.Command{
		Use:   "reconcile <snapshot>...",
		Short: "Reconcile the push times of one or more history snapshots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, hasLimit, err := a.deadline(deadline)
			if err != nil {
				return err
			}

			reports := make([]*snapshot.Report, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(a.cfg.Concurrency)
			for i, path := range args {
				i, path := i, path
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					r, err := a.reconcileSnapshot(path, limit, hasLimit)
					if err != nil {
						return err
					}
					reports[i] = r
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), reports)
		},
	}

	cmd.Flags().StringVar(&deadline, "deadline", "", "only report the history pushed by this RFC 3339 time")
	return cmd
}

func (a *app) reconcileSnapshot(path string, deadline time.Time, hasDeadline bool) (*snapshot.Report, error) {
	doc, err := snapshot.Load(path)
	if err != nil {
		return nil, err
	}
	repository := doc.Repository
	if repository == "" {
		repository = filepath.Base(path)
	}

	hist, err := pushdate.New(doc.Graph(), doc.Created(), doc.Reported())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a.logger.Debug("reconciled", "repository", repository, "commits", hist.Len(), "unknown", len(hist.Unknown()))
	a.warnAnomalies(repository, hist)

	hist, err = a.restrict(hist, deadline, hasDeadline)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	r := snapshot.NewReport(repository, hist)
	if hasDeadline {
		r.Deadline = &deadline
	}
	return r, nil
}
