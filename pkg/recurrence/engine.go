package recurrence

import (
	"time"

	"github.com/chrona/chrona/pkg/event"
)

// MaxOccurrences caps a single expansion regardless of the rule's stop
// conditions. Effectively-infinite rules ("daily forever") must stay bounded;
// this is a documented approximation, not a precision guarantee.
const MaxOccurrences = 5000

// Engine expands a (template, rule) pair into concrete occurrences within a
// bounded window. It is stateless; expansion is deterministic for identical
// inputs.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Expand returns the occurrences of template under rule whose intervals fall
// into the window [windowStart, windowEnd), ordered by start time. An
// occurrence straddling windowStart is included. A nil rule or an unset
// interval yields an empty slice; the template itself is never duplicated
// here, callers add it separately when appropriate. Degenerate windows
// (windowEnd <= windowStart) simply produce no occurrences.
func (g *Engine) Expand(template event.Event, rule *Rule, windowStart, windowEnd time.Time) []event.Event {
	occurrences := []event.Event{}
	if rule == nil || rule.Every.IsZero() {
		return occurrences
	}

	duration := template.Duration()
	cursor := template.StartTime
	// The template itself counts as occurrence number one.
	count := 1

	// Fast-forward past everything ending at or before the window. Stop
	// conditions still apply: a series exhausted before the window yields
	// nothing.
	for cursor.Before(windowStart) {
		if cursor.Add(duration).After(windowStart) {
			break
		}
		if rule.Count > 0 && count > rule.Count {
			return occurrences
		}
		if !rule.Until.IsZero() && cursor.After(rule.Until) {
			return occurrences
		}
		cursor = rule.Every.Step(cursor)
		count++
	}

	for cursor.Before(windowEnd) {
		if rule.Count > 0 && count > rule.Count {
			break
		}
		if !rule.Until.IsZero() && cursor.After(rule.Until) {
			break
		}
		occurrences = append(occurrences, template.Occurrence(cursor, cursor.Add(duration)))
		if len(occurrences) >= MaxOccurrences {
			break
		}
		cursor = rule.Every.Step(cursor)
		count++
	}
	return occurrences
}
