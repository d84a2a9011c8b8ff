// Package snapshot reads and writes commit-history snapshots: the commit
// graph, creation times and reported push times of one repository, as
// exported by whatever fetched them from the hosting service.
package snapshot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/pushdate/pkg/history"
	"github.com/odvcencio/pushdate/pkg/object"
)

var (
	ErrEmptyID     = errors.New("commit id is required")
	ErrDuplicateID = errors.New("duplicate commit id")
)

// Commit is one commit of a snapshot.
type Commit struct {
	ID      object.Hash   `json:"id" yaml:"id"`
	Parents []object.Hash `json:"parents,omitempty" yaml:"parents,omitempty"`
	Author  string        `json:"author,omitempty" yaml:"author,omitempty"`
	Message string        `json:"message,omitempty" yaml:"message,omitempty"`
	Created time.Time     `json:"created" yaml:"created"`
	Pushed  *time.Time    `json:"pushed,omitempty" yaml:"pushed,omitempty"`
}

// Document is a full snapshot.
type Document struct {
	Repository string   `json:"repository,omitempty" yaml:"repository,omitempty"`
	Commits    []Commit `json:"commits" yaml:"commits"`
}

// Validate trims commit and parent ids and checks that every commit id is
// unique and non-empty. Blank parent ids are dropped.
func (d *Document) Validate() error {
	seen := make(map[object.Hash]struct{}, len(d.Commits))
	for i := range d.Commits {
		id := object.Hash(strings.TrimSpace(string(d.Commits[i].ID)))
		d.Commits[i].ID = id
		d.Commits[i].Parents = trimIDs(d.Commits[i].Parents)
		if id == "" {
			return fmt.Errorf("snapshot: commit %d: %w", i, ErrEmptyID)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("snapshot: commit %s: %w", id, ErrDuplicateID)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func trimIDs(ids []object.Hash) []object.Hash {
	if len(ids) == 0 {
		return ids
	}
	out := make([]object.Hash, 0, len(ids))
	for _, id := range ids {
		if id = object.Hash(strings.TrimSpace(string(id))); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// Graph returns the ancestry graph of the snapshot. Parents that are not
// themselves part of the snapshot are dropped, so a shallow export still
// yields a closed history.
func (d *Document) Graph() *history.Graph {
	present := make(map[object.Hash]struct{}, len(d.Commits))
	for _, c := range d.Commits {
		present[c.ID] = struct{}{}
	}
	parents := make(map[object.Hash][]object.Hash, len(d.Commits))
	for _, c := range d.Commits {
		kept := make([]object.Hash, 0, len(c.Parents))
		for _, p := range c.Parents {
			if _, ok := present[p]; ok {
				kept = append(kept, p)
			}
		}
		parents[c.ID] = kept
	}
	return history.FromParents(parents)
}

// Created returns the creation time of every commit with one.
func (d *Document) Created() map[object.Hash]time.Time {
	out := make(map[object.Hash]time.Time, len(d.Commits))
	for _, c := range d.Commits {
		if !c.Created.IsZero() {
			out[c.ID] = c.Created
		}
	}
	return out
}

// Index returns the commits keyed by id.
func (d *Document) Index() map[object.Hash]Commit {
	out := make(map[object.Hash]Commit, len(d.Commits))
	for _, c := range d.Commits {
		out[c.ID] = c
	}
	return out
}

// Reported returns the reported push time of every commit with one.
func (d *Document) Reported() map[object.Hash]time.Time {
	out := make(map[object.Hash]time.Time)
	for _, c := range d.Commits {
		if c.Pushed != nil {
			out[c.ID] = *c.Pushed
		}
	}
	return out
}
