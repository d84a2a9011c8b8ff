package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/pushdate/pkg/object"
	"github.com/odvcencio/pushdate/pkg/pushlog"
	"github.com/odvcencio/pushdate/pkg/snapshot"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <snapshot>",
		Short: "Write a snapshot into the object store and push log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			doc, err := snapshot.Load(path)
			if err != nil {
				return err
			}
			repository := a.cfg.Repository
			if repository == "" {
				repository = doc.Repository
			}
			if strings.TrimSpace(repository) == "" {
				return fmt.Errorf("import: repository is required: set --repository, repository in %s, or repository in the snapshot", a.configPath)
			}

			g := doc.Graph()
			if err := g.Validate(); err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}

			// Parents are written before their children so every commit
			// can name its parents by store hash.
			store := object.NewStore(a.cfg.Store)
			index := doc.Index()
			hashes := make(map[object.Hash]object.Hash, len(index))
			for _, id := range g.Transpose().TopoOrder() {
				c := index[id]
				obj := &object.CommitObj{
					Author:  c.Author,
					Message: c.Message,
					Origin:  string(id),
				}
				if !c.Created.IsZero() {
					obj.Timestamp = c.Created.Unix()
					obj.TimestampNanos = int64(c.Created.Nanosecond())
					obj.AuthorTimezone = c.Created.Format("-0700")
				}
				for _, p := range g.Successors(id) {
					obj.Parents = append(obj.Parents, hashes[p])
				}
				h, err := store.WriteCommit(obj)
				if err != nil {
					return fmt.Errorf("import %s: %w", id, err)
				}
				hashes[id] = h
				a.logger.Debug("commit imported", "origin", id, "hash", h.Short())
			}

			var events []pushlog.Event
			for _, id := range g.Nodes() {
				pushed := index[id].Pushed
				if pushed == nil {
					continue
				}
				events = append(events, pushlog.Event{
					Repository: repository,
					Commit:     hashes[id],
					PushedAt:   *pushed,
					Source:     "snapshot:" + filepath.Base(path),
				})
			}

			log, err := pushlog.Open(a.cfg.PushLog)
			if err != nil {
				return err
			}
			defer log.Close()
			members := make([]object.Hash, 0, len(hashes))
			for _, id := range g.Nodes() {
				members = append(members, hashes[id])
			}
			if err := log.AddCommits(cmd.Context(), repository, members); err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}
			if _, err := log.RecordBatch(cmd.Context(), events); err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d commits and %d pushes into %s\n", len(hashes), len(events), repository)
			for _, tip := range g.Tips() {
				fmt.Fprintf(cmd.OutOrStdout(), "tip %s %s\n", hashes[tip], tip)
			}
			return nil
		},
	}
}
