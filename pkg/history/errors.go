package history

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/pushdate/pkg/object"
)

var (
	// ErrInvariantViolation is matched by every structural graph error.
	ErrInvariantViolation = errors.New("history invariant violation")
	// ErrCycle reports a commit that is its own ancestor. The error message
	// carries the cycle as a path.
	ErrCycle = errors.New("cycle detected")
	// ErrDanglingEdge reports an edge whose endpoint is not a node.
	ErrDanglingEdge = errors.New("edge references unknown node")
)

// GraphError reports a structural problem with a commit graph. It matches
// both ErrInvariantViolation and its Kind under errors.Is.
type GraphError struct {
	Kind error
	Msg  string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", ErrInvariantViolation, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvariantViolation, e.Kind, e.Msg)
}

func (e *GraphError) Unwrap() []error {
	return []error{ErrInvariantViolation, e.Kind}
}

func cycleError(path []string) error {
	return &GraphError{Kind: ErrCycle, Msg: strings.Join(path, " -> ")}
}

func danglingEdgeError(e Edge, missing object.Hash) error {
	return &GraphError{
		Kind: ErrDanglingEdge,
		Msg:  fmt.Sprintf("%s -> %s: %s is not a node", e.From, e.To, missing),
	}
}
