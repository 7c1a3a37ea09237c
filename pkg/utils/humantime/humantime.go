package humantime

import (
	"fmt"
	"time"
)

// Unit is a time bucket for human-readable durations.
type Unit string

const (
	Years   Unit = "years"
	Months  Unit = "months"
	Days    Unit = "days"
	Hours   Unit = "hours"
	Minutes Unit = "minutes"
	Seconds Unit = "seconds"
)

// Direction tells where t1 sits relative to t2.
type Direction string

const (
	Past   Direction = "past"
	Future Direction = "future"
	Now    Direction = "now"
)

// Unavailable is rendered for absent or invalid timestamps.
const Unavailable = "N/A"

// Conversion factors, in seconds. A "month" is a fixed 45-day approximation;
// the unit is a coarse display bucket, not a calendar month.
const (
	secondsPerYear   = 60 * 60 * 24 * 365
	secondsPerMonth  = 60 * 60 * 24 * 45
	secondsPerDay    = 60 * 60 * 24
	secondsPerHour   = 60 * 60
	secondsPerMinute = 60
)

// Bucket is an elapsed duration reduced to a magnitude in its largest
// fitting unit, plus a direction.
type Bucket struct {
	Magnitude int64
	Unit      Unit
	Direction Direction
}

// Elapsed buckets the offset of t1 relative to t2.
//
// Direction is Now for offsets in (-1s, 0], Future for positive offsets and
// Past below -1s; offsets of exactly -1s still count as Now. The unit is the
// largest one whose factor fits the absolute offset more than once.
//
// ok is false when t1 is the zero time; callers should render Unavailable.
func Elapsed(t1, t2 time.Time) (Bucket, bool) {
	if t1.IsZero() {
		return Bucket{}, false
	}

	delta := t1.Sub(t2).Seconds()

	direction := Now
	if delta > 0 {
		direction = Future
	} else if delta < -1 {
		direction = Past
	}

	if delta < 0 {
		delta = -delta
	}

	var unit Unit
	var factor float64
	switch {
	case delta/secondsPerYear > 1:
		unit, factor = Years, secondsPerYear
	case delta/secondsPerMonth > 1:
		unit, factor = Months, secondsPerMonth
	case delta/secondsPerDay > 1:
		unit, factor = Days, secondsPerDay
	case delta/secondsPerHour > 1:
		unit, factor = Hours, secondsPerHour
	case delta/secondsPerMinute > 1:
		unit, factor = Minutes, secondsPerMinute
	default:
		unit, factor = Seconds, 1
	}

	return Bucket{
		Magnitude: int64(delta / factor),
		Unit:      unit,
		Direction: direction,
	}, true
}

// Phrase renders the bucket as a relative phrase: "3 days ago", "in 3 days",
// or "just now".
func (b Bucket) Phrase() string {
	switch b.Direction {
	case Future:
		return fmt.Sprintf("in %d %s", b.Magnitude, b.Unit)
	case Past:
		return fmt.Sprintf("%d %s ago", b.Magnitude, b.Unit)
	default:
		return "just now"
	}
}

// RanFor renders the bucket as a fixed duration phrase, ignoring direction.
func (b Bucket) RanFor() string {
	return fmt.Sprintf("ran for %d %s", b.Magnitude, b.Unit)
}

// FormatRelative is Elapsed + Phrase with the Unavailable fallback.
func FormatRelative(t, now time.Time) string {
	b, ok := Elapsed(t, now)
	if !ok {
		return Unavailable
	}
	return b.Phrase()
}
