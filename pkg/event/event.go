package event

import (
	"strings"
	"time"
)

// Categories recognized by the UI. The model does not enforce them; any
// free-text category is stored as-is.
var Categories = []string{"General", "Work", "Personal", "Study", "Holiday", "Other"}

// Event is either a stored template or a transient occurrence derived from
// one. Occurrences share the template's ID and are never persisted.
type Event struct {
	ID          int
	Title       string
	Description string
	Location    string
	Category    string
	Attendees   string
	StartTime   time.Time
	EndTime     time.Time
}

// Normalize repairs a degenerate duration: when EndTime is not after
// StartTime the end is clamped to StartTime + 1h instead of rejecting the
// event.
func (e *Event) Normalize() {
	if !e.EndTime.After(e.StartTime) {
		e.EndTime = e.StartTime.Add(time.Hour)
	}
}

// Duration returns the template's duration. Every occurrence derived from a
// template carries exactly this duration.
func (e Event) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// Occurrence derives a transient copy of the template at the given times.
// All descriptive fields and the ID are taken from the template.
func (e Event) Occurrence(start, end time.Time) Event {
	occ := e
	occ.StartTime = start
	occ.EndTime = end
	return occ
}

// Overlaps reports whether the event's interval intersects the half-open
// range [start, end). The test is symmetric, not containment.
func (e Event) Overlaps(start, end time.Time) bool {
	return e.StartTime.Before(end) && e.EndTime.After(start)
}

// SameAs is the loose equality used by the merge engine only: titles match
// case-insensitively and start times match exactly.
func (e Event) SameAs(other Event) bool {
	return strings.EqualFold(e.Title, other.Title) && e.StartTime.Equal(other.StartTime)
}
