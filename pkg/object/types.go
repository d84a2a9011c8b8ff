package object

import "time"

// Hash is a hex-encoded content digest identifying a commit. Callers treat
// it as opaque; only equality and ordering are meaningful.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeCommit ObjectType = "commit"
)

// CommitObj represents a commit with its ancestry and creation metadata.
type CommitObj struct {
	Parents            []Hash
	Author             string
	Timestamp          int64 // author time, unix seconds
	TimestampNanos     int64 // sub-second part of Timestamp
	AuthorTimezone     string
	Committer          string
	CommitterTimestamp int64
	CommitterTimezone  string
	Message            string
	// Origin is the commit's id in the history it was imported from.
	Origin string
}

// CreatedAt returns the authoritative creation instant of the commit: the
// committer timestamp when recorded, otherwise the author timestamp.
func (c *CommitObj) CreatedAt() time.Time {
	if c.CommitterTimestamp != 0 {
		return time.Unix(c.CommitterTimestamp, 0).UTC()
	}
	return time.Unix(c.Timestamp, c.TimestampNanos).UTC()
}
