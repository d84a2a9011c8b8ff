package pushdate

import (
	"time"

	"github.com/odvcencio/pushdate/pkg/object"
)

// Filter reconciles the sub-history induced by the commits satisfying keep.
// The induced graph is a new input in its own right, so reports are
// re-propagated over it rather than copied from h.
func (h *History) Filter(keep func(object.Hash) bool) (*History, error) {
	return New(h.graph.Filter(keep), h.created, h.reported)
}

// CompletedBy returns a predicate keeping the commits whose completed push
// instant is known and not after deadline.
func (h *History) CompletedBy(deadline time.Time) func(object.Hash) bool {
	limit := At(deadline)
	return func(c object.Hash) bool {
		i, ok := h.completed[c]
		return ok && i.Known() && !i.After(limit)
	}
}

// UpTo returns the history pushed by deadline.
func (h *History) UpTo(deadline time.Time) (*History, error) {
	return h.Filter(h.CompletedBy(deadline))
}
