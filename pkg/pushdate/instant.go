package pushdate

import (
	"fmt"
	"time"
)

type bound int8

const (
	boundMin  bound = -1
	boundReal bound = 0
	boundMax  bound = 1
)

// Instant is a point in time extended with two sentinels, Min and Max, that
// order before and after every real time. The sentinels are tagged variants,
// not reserved time.Time values, so no real timestamp can ever compare equal
// to one. The zero Instant is the real zero time.
type Instant struct {
	b bound
	t time.Time
}

var (
	// Min orders before every real instant. It marks a commit with no known
	// push time.
	Min = Instant{b: boundMin}
	// Max orders after every real instant.
	Max = Instant{b: boundMax}
)

const (
	minText = "min"
	maxText = "max"
)

// At wraps a real time.
func At(t time.Time) Instant {
	return Instant{b: boundReal, t: t}
}

// IsMin reports whether i is the Min sentinel.
func (i Instant) IsMin() bool { return i.b == boundMin }

// IsMax reports whether i is the Max sentinel.
func (i Instant) IsMax() bool { return i.b == boundMax }

// Known reports whether i is a real time.
func (i Instant) Known() bool { return i.b == boundReal }

// Time returns the wrapped time and true, or the zero time and false for a
// sentinel.
func (i Instant) Time() (time.Time, bool) {
	if i.b != boundReal {
		return time.Time{}, false
	}
	return i.t, true
}

// Compare returns -1, 0 or +1 as i is before, equal to or after o.
func (i Instant) Compare(o Instant) int {
	switch {
	case i.b < o.b:
		return -1
	case i.b > o.b:
		return 1
	case i.b != boundReal:
		return 0
	}
	return i.t.Compare(o.t)
}

// Before reports whether i is strictly before o.
func (i Instant) Before(o Instant) bool { return i.Compare(o) < 0 }

// After reports whether i is strictly after o.
func (i Instant) After(o Instant) bool { return i.Compare(o) > 0 }

// Equal reports whether i and o denote the same instant.
func (i Instant) Equal(o Instant) bool { return i.Compare(o) == 0 }

func (i Instant) String() string {
	switch i.b {
	case boundMin:
		return minText
	case boundMax:
		return maxText
	}
	return i.t.Format(time.RFC3339)
}

// MarshalText encodes sentinels as "min" and "max" and real times as
// RFC 3339 with nanoseconds.
func (i Instant) MarshalText() ([]byte, error) {
	switch i.b {
	case boundMin:
		return []byte(minText), nil
	case boundMax:
		return []byte(maxText), nil
	}
	return i.t.MarshalText()
}

// UnmarshalText is the inverse of MarshalText.
func (i *Instant) UnmarshalText(data []byte) error {
	switch string(data) {
	case minText:
		*i = Min
		return nil
	case maxText:
		*i = Max
		return nil
	}
	var t time.Time
	if err := t.UnmarshalText(data); err != nil {
		return fmt.Errorf("parse instant %q: %w", data, err)
	}
	*i = At(t)
	return nil
}
