package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Unit is the calendar unit of a recurrence step.
type Unit int

const (
	Day Unit = iota
	Week
	Month
	Year
)

func (u Unit) String() string {
	switch u {
	case Week:
		return "w"
	case Month:
		return "m"
	case Year:
		return "y"
	default:
		return "d"
	}
}

// Interval is the typed form of the compact on-disk encoding ("1d", "2w").
// It is constructed once at the storage boundary; the engine never re-parses
// strings.
type Interval struct {
	Amount int
	Unit   Unit
}

// DefaultInterval is the fallback applied when a stored interval cannot be
// parsed. Substituting a 1-day step instead of failing is deliberate policy.
var DefaultInterval = Interval{Amount: 1, Unit: Day}

// ParseInterval decodes a compact interval such as "1d", "2w", "3m" or "1y".
// Malformed input never fails: it yields DefaultInterval.
func ParseInterval(s string) Interval {
	s = strings.TrimSpace(strings.ToLower(s))
	if len(s) < 2 {
		return DefaultInterval
	}
	amount, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || amount <= 0 {
		return DefaultInterval
	}
	switch s[len(s)-1] {
	case 'd':
		return Interval{amount, Day}
	case 'w':
		return Interval{amount, Week}
	case 'm':
		return Interval{amount, Month}
	case 'y':
		return Interval{amount, Year}
	default:
		return DefaultInterval
	}
}

// String round-trips the compact encoding.
func (i Interval) String() string {
	return fmt.Sprintf("%d%s", i.Amount, i.Unit)
}

// IsZero reports whether the interval is unset. An unset interval disables
// expansion entirely.
func (i Interval) IsZero() bool {
	return i.Amount <= 0
}

// Step advances t by one interval. Month and year steps are calendar-aware
// and follow time.AddDate normalization; day and week steps are whole-day
// arithmetic.
func (i Interval) Step(t time.Time) time.Time {
	switch i.Unit {
	case Week:
		return t.AddDate(0, 0, 7*i.Amount)
	case Month:
		return t.AddDate(0, i.Amount, 0)
	case Year:
		return t.AddDate(i.Amount, 0, 0)
	default:
		return t.AddDate(0, 0, i.Amount)
	}
}

// Rule describes how a single event template repeats. At most one rule exists
// per event; live rules are kept as a map keyed by event ID so the invariant
// is structural.
//
// The stop condition is Count (total occurrences, the template counting as
// the first) or Until (last admissible start time). Count == 0 and a zero
// Until together mean "no explicit stop", bounded only by the engine cap.
type Rule struct {
	EventID int
	Every   Interval
	Count   int
	Until   time.Time
}

// Unbounded reports whether the rule has no explicit stop condition.
func (r Rule) Unbounded() bool {
	return r.Count <= 0 && r.Until.IsZero()
}
