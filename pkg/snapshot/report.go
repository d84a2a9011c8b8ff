package snapshot

import (
	"sort"
	"time"

	"github.com/odvcencio/pushdate/pkg/object"
	"github.com/odvcencio/pushdate/pkg/pushdate"
)

// Report is the reconciled view of a history, ready to be encoded.
type Report struct {
	Repository            string         `json:"repository,omitempty" yaml:"repository,omitempty"`
	Deadline              *time.Time     `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	Latest                object.Hash    `json:"latest,omitempty" yaml:"latest,omitempty"`
	Commits               []ReportCommit `json:"commits" yaml:"commits"`
	Patched               []ReportPatch  `json:"patched,omitempty" yaml:"patched,omitempty"`
	PushedBeforeCommitted []object.Hash  `json:"pushed_before_committed,omitempty" yaml:"pushed_before_committed,omitempty"`
}

// ReportCommit is one commit of a Report. Provenance names the reported
// commit the completed instant was propagated from; it is empty for unknown
// commits.
type ReportCommit struct {
	ID         object.Hash      `json:"id" yaml:"id"`
	Parents    []object.Hash    `json:"parents,omitempty" yaml:"parents,omitempty"`
	Generation uint64           `json:"generation" yaml:"generation"`
	Created    *time.Time       `json:"created,omitempty" yaml:"created,omitempty"`
	Reported   *time.Time       `json:"reported,omitempty" yaml:"reported,omitempty"`
	Completed  pushdate.Instant `json:"completed" yaml:"completed"`
	Provenance object.Hash      `json:"provenance,omitempty" yaml:"provenance,omitempty"`
}

// ReportPatch is a reported push time lowered by a descendant's report.
type ReportPatch struct {
	Commit    object.Hash `json:"commit" yaml:"commit"`
	Reported  time.Time   `json:"reported" yaml:"reported"`
	Source    object.Hash `json:"source" yaml:"source"`
	Corrected time.Time   `json:"corrected" yaml:"corrected"`
}

// NewReport summarizes h. Commits are listed newest first: by descending
// generation, then by id.
func NewReport(repository string, h *pushdate.History) *Report {
	g := h.Graph()
	gens := g.Generations()

	ids := g.Nodes()
	sort.SliceStable(ids, func(i, j int) bool {
		if gens[ids[i]] != gens[ids[j]] {
			return gens[ids[i]] > gens[ids[j]]
		}
		return ids[i] < ids[j]
	})

	r := &Report{
		Repository:            repository,
		Commits:               make([]ReportCommit, 0, len(ids)),
		PushedBeforeCommitted: h.PushedBeforeCommitted(),
	}
	if tip, _, ok := h.Latest(); ok {
		r.Latest = tip
	}

	for _, id := range ids {
		completed, _ := h.Completed(id)
		rc := ReportCommit{
			ID:         id,
			Parents:    g.Successors(id),
			Generation: gens[id],
			Completed:  completed,
		}
		if t, ok := h.Created(id); ok {
			rc.Created = timePtr(t)
		}
		if t, ok := h.Reported(id); ok {
			rc.Reported = timePtr(t)
		}
		if completed.Known() {
			rc.Provenance, _ = h.Provenance(id)
		}
		r.Commits = append(r.Commits, rc)
	}

	for _, p := range h.Patched() {
		r.Patched = append(r.Patched, ReportPatch{
			Commit:    p.Commit,
			Reported:  p.Reported,
			Source:    p.Source,
			Corrected: p.Corrected,
		})
	}
	return r
}

func timePtr(t time.Time) *time.Time {
	return &t
}
