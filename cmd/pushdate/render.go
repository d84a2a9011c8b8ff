package main

import (
	"fmt"
	"io"
	"time"

	"github.com/odvcencio/pushdate/pkg/pushdate"
	"github.com/odvcencio/pushdate/pkg/snapshot"
)

// render writes reports in the configured format.
func (a *app) render(w io.Writer, reports []*snapshot.Report) error {
	if a.cfg.Format == "text" {
		for i, r := range reports {
			if i > 0 {
				fmt.Fprintln(w)
			}
			writeTextReport(w, r, a.loc)
		}
		return nil
	}

	format, err := snapshot.ParseFormat(a.cfg.Format)
	if err != nil {
		return err
	}
	for _, r := range reports {
		if err := snapshot.Encode(w, format, r); err != nil {
			return err
		}
	}
	return nil
}

func writeTextReport(w io.Writer, r *snapshot.Report, loc *time.Location) {
	unknown := 0
	for _, c := range r.Commits {
		if c.Completed.IsMin() {
			unknown++
		}
	}

	fmt.Fprintf(w, "repository %s\n", r.Repository)
	if r.Deadline != nil {
		fmt.Fprintf(w, "deadline   %s\n", formatTime(*r.Deadline, loc))
	}
	if r.Latest != "" {
		fmt.Fprintf(w, "latest     %s\n", r.Latest.Short())
	}
	fmt.Fprintf(w, "commits    %d (%d unknown, %d patched, %d pushed before committed)\n",
		len(r.Commits), unknown, len(r.Patched), len(r.PushedBeforeCommitted))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-8s  %3s  %-20s  %-20s  %s\n", "commit", "gen", "created", "reported", "completed")
	for _, c := range r.Commits {
		from := ""
		if c.Provenance != "" && c.Provenance != c.ID {
			from = " (from " + c.Provenance.Short() + ")"
		}
		fmt.Fprintf(w, "%-8s  %3d  %-20s  %-20s  %s%s\n",
			c.ID.Short(),
			c.Generation,
			formatOptional(c.Created, loc),
			formatOptional(c.Reported, loc),
			formatInstant(c.Completed, loc),
			from,
		)
	}

	if len(r.Patched) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "patched")
		for _, p := range r.Patched {
			fmt.Fprintf(w, "  %s reported %s, capped to %s by %s\n",
				p.Commit.Short(), formatTime(p.Reported, loc), formatTime(p.Corrected, loc), p.Source.Short())
		}
	}
	if len(r.PushedBeforeCommitted) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "pushed before committed")
		for _, c := range r.PushedBeforeCommitted {
			fmt.Fprintf(w, "  %s\n", c.Short())
		}
	}
}

func formatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.RFC3339)
}

func formatOptional(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "-"
	}
	return formatTime(*t, loc)
}

func formatInstant(i pushdate.Instant, loc *time.Location) string {
	if t, ok := i.Time(); ok {
		return formatTime(t, loc)
	}
	return i.String()
}
