package object

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// MarshalCommit serializes a CommitObj:
//
//	parent H              (zero or more)
//	author A
//	timestamp T
//	timestamp-nanos N     (optional)
//	author-tz Z           (optional)
//	committer C           (optional)
//	committer-timestamp T (optional)
//	committer-tz Z        (optional)
//	origin O              (optional)
//
//	message
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "timestamp %d\n", c.Timestamp)
	if c.TimestampNanos != 0 {
		fmt.Fprintf(&buf, "timestamp-nanos %d\n", c.TimestampNanos)
	}
	if strings.TrimSpace(c.AuthorTimezone) != "" {
		fmt.Fprintf(&buf, "author-tz %s\n", c.AuthorTimezone)
	}
	if strings.TrimSpace(c.Committer) != "" {
		fmt.Fprintf(&buf, "committer %s\n", c.Committer)
	}
	if c.CommitterTimestamp != 0 {
		fmt.Fprintf(&buf, "committer-timestamp %d\n", c.CommitterTimestamp)
	}
	if strings.TrimSpace(c.CommitterTimezone) != "" {
		fmt.Fprintf(&buf, "committer-tz %s\n", c.CommitterTimezone)
	}
	if strings.TrimSpace(c.Origin) != "" {
		fmt.Fprintf(&buf, "origin %s\n", c.Origin)
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: missing header/message separator")
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &CommitObj{Message: message}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: malformed header line %q", line)
		}
		switch key {
		case "parent":
			c.Parents = append(c.Parents, Hash(val))
		case "author":
			c.Author = val
		case "timestamp":
			ts, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad timestamp %q: %w", val, err)
			}
			c.Timestamp = ts
		case "timestamp-nanos":
			ns, err := strconv.ParseInt(val, 10, 64)
			if err != nil || ns < 0 || ns >= 1e9 {
				return nil, fmt.Errorf("unmarshal commit: bad timestamp nanos %q", val)
			}
			c.TimestampNanos = ns
		case "author-tz":
			c.AuthorTimezone = val
		case "committer":
			c.Committer = val
		case "committer-timestamp":
			ts, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad committer timestamp %q: %w", val, err)
			}
			c.CommitterTimestamp = ts
		case "committer-tz":
			c.CommitterTimezone = val
		case "origin":
			c.Origin = val
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q", key)
		}
	}
	return c, nil
}
