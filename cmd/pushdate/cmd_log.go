package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/pushdate/pkg/object"
	"github.com/odvcencio/pushdate/pkg/pushdate"
	"github.com/odvcencio/pushdate/pkg/snapshot"
)

func newLogCmd(a *app) *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log <snapshot>",
		Short: "Show the commits of a snapshot with their reconciled push times",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := snapshot.Load(args[0])
			if err != nil {
				return err
			}
			hist, err := pushdate.New(doc.Graph(), doc.Created(), doc.Reported())
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			report := snapshot.NewReport(doc.Repository, hist)
			if len(report.Commits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no commits")
				return nil
			}

			patched := make(map[object.Hash]object.Hash, len(report.Patched))
			for _, p := range report.Patched {
				patched[p.Commit] = p.Source
			}
			index := doc.Index()

			commits := report.Commits
			if limit > 0 && len(commits) > limit {
				commits = commits[:limit]
			}

			out := cmd.OutOrStdout()
			for _, rc := range commits {
				c := index[rc.ID]
				pushed := formatInstant(rc.Completed, a.loc)
				if rc.Completed.IsMin() {
					pushed = "unknown"
				}

				if oneline {
					line := rc.ID.Short() + " " + pushed
					if subject := firstLine(c.Message); subject != "" {
						line += " " + subject
					}
					fmt.Fprintln(out, line)
					continue
				}

				fmt.Fprintf(out, "commit %s\n", rc.ID)
				if c.Author != "" {
					fmt.Fprintf(out, "Author: %s\n", c.Author)
				}
				if !c.Created.IsZero() {
					fmt.Fprintf(out, "Date:   %s\n", c.Created.In(a.loc).Format("2006-01-02 15:04:05"))
				}
				fmt.Fprintf(out, "Pushed: %s%s\n", pushed, pushedNote(rc, patched, a.loc))
				if c.Message != "" {
					fmt.Fprintln(out)
					for _, line := range strings.Split(strings.TrimRight(c.Message, "\n"), "\n") {
						if line == "" {
							fmt.Fprintln(out)
							continue
						}
						fmt.Fprintf(out, "    %s\n", line)
					}
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of commits to show (0 for all)")
	return cmd
}

// pushedNote explains where a completed push time came from.
func pushedNote(rc snapshot.ReportCommit, patched map[object.Hash]object.Hash, loc *time.Location) string {
	if src, ok := patched[rc.ID]; ok {
		return fmt.Sprintf(" (reported %s, capped by %s)", formatTime(*rc.Reported, loc), src.Short())
	}
	if rc.Reported != nil {
		return " (reported)"
	}
	if rc.Provenance != "" && rc.Provenance != rc.ID {
		return " (from " + rc.Provenance.Short() + ")"
	}
	return ""
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
