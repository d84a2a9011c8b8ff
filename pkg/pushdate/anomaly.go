package pushdate

import (
	"time"

	"github.com/odvcencio/pushdate/pkg/object"
)

// Patch describes a reported push time the ceiling pass had to lower
// because a descendant reported an earlier push.
type Patch struct {
	Commit    object.Hash
	Reported  time.Time
	Source    object.Hash // descendant whose report replaced it
	Corrected time.Time   // Source's report
}

// Patched returns every patched known, sorted by commit.
func (h *History) Patched() []Patch {
	var out []Patch
	for _, c := range h.patched.Nodes() {
		sources := h.patched.Successors(c)
		if len(sources) == 0 {
			continue
		}
		src := sources[0]
		out = append(out, Patch{
			Commit:    c,
			Reported:  h.reported[c],
			Source:    src,
			Corrected: h.reported[src],
		})
	}
	return out
}

// PushedBeforeCommitted returns the reported commits whose completed push
// instant is still strictly before their creation time, sorted. These are
// inconsistencies the reconciliation could not repair. The set is computed
// on every call.
func (h *History) PushedBeforeCommitted() []object.Hash {
	var out []object.Hash
	for _, c := range sortedKeys(h.reported) {
		created, ok := h.created[c]
		if !ok {
			continue
		}
		if h.completed[c].Before(At(created)) {
			out = append(out, c)
		}
	}
	return out
}
