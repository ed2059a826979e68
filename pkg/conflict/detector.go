package conflict

import (
	"context"
	"fmt"

	"github.com/chrona/chrona/pkg/event"
	"github.com/chrona/chrona/pkg/recurrence"
	"github.com/chrona/chrona/pkg/search"
	log "github.com/sirupsen/logrus"
)

// Detector decides whether a candidate event, possibly recurring, collides
// with any already-stored occurrence. It composes the search layer (what
// already exists) with the recurrence engine (what the candidate would
// occupy) and performs no storage access of its own.
type Detector struct {
	searcher search.Service
	engine   *recurrence.Engine
}

func NewDetector(searcher search.Service, engine *recurrence.Engine) *Detector {
	return &Detector{searcher: searcher, engine: engine}
}

// Check reports whether the candidate overlaps any other stored event. The
// candidate's own id is excluded so edits-in-place do not conflict with
// themselves. A recurring candidate is expanded over a one-year horizon from
// its start; the horizon is a deliberate bound for "daily forever" rules, and
// the check short-circuits on the first collision.
func (d *Detector) Check(ctx context.Context, candidate event.Event, rule *recurrence.Rule) (bool, error) {
	if rule == nil || rule.Every.IsZero() {
		return d.checkRange(ctx, candidate)
	}

	horizon := candidate.StartTime.AddDate(1, 0, 0)
	for _, instance := range d.engine.Expand(candidate, rule, candidate.StartTime, horizon) {
		conflict, err := d.checkRange(ctx, instance)
		if err != nil {
			return false, err
		}
		if conflict {
			log.Debugf("conflict found for event %d at %s", candidate.ID, instance.StartTime)
			return true, nil
		}
	}
	return false, nil
}

func (d *Detector) checkRange(ctx context.Context, candidate event.Event) (bool, error) {
	existing, err := d.searcher.SearchByDateRange(ctx, candidate.StartTime, candidate.EndTime)
	if err != nil {
		return false, fmt.Errorf("failed to search for conflicting events: %w", err)
	}
	for _, e := range existing {
		if e.ID == candidate.ID {
			continue
		}
		if e.Overlaps(candidate.StartTime, candidate.EndTime) {
			return true, nil
		}
	}
	return false, nil
}
