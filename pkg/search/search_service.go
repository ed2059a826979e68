package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chrona/chrona/pkg/event"
	"github.com/chrona/chrona/pkg/recurrence"
	"github.com/chrona/chrona/pkg/storage"
)

// CategoryWildcard matches any category when used as a filter value.
const CategoryWildcard = "General"

type Service interface {
	SearchByDateRange(ctx context.Context, start, end time.Time) ([]event.Event, error)
}

// ServiceImpl merges plain templates and recurrence-expanded occurrences
// into one result set ordered by start time.
type ServiceImpl struct {
	store  storage.Store
	engine *recurrence.Engine
}

func NewService(store storage.Store, engine *recurrence.Engine) *ServiceImpl {
	return &ServiceImpl{store: store, engine: engine}
}

// SearchByDateRange returns every event intersecting the half-open window
// [start, end). Templates with a recurrence rule contribute only their
// expanded occurrences; templates without one contribute themselves under
// the same overlap test. Results are sorted ascending by start time; ties
// keep the stored template order.
func (s *ServiceImpl) SearchByDateRange(ctx context.Context, start, end time.Time) ([]event.Event, error) {
	templates, err := s.store.LoadEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	rules, err := s.store.LoadRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recurrence rules: %w", err)
	}

	results := []event.Event{}
	for _, template := range templates {
		if rule, ok := rules[template.ID]; ok {
			results = append(results, s.engine.Expand(template, &rule, start, end)...)
		} else if template.Overlaps(start, end) {
			results = append(results, template)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].StartTime.Before(results[j].StartTime)
	})
	return results, nil
}

// Filter applies the advanced search predicates to an already-fetched list.
// All predicates are ANDed; empty keyword, location and attendees match
// everything, and a category equal to CategoryWildcard (or empty) matches any
// event.
func Filter(events []event.Event, keyword, category, location, attendees string) []event.Event {
	filtered := make([]event.Event, 0, len(events))
	for _, e := range events {
		if matchesKeyword(e, keyword) &&
			matchesCategory(e, category) &&
			containsFold(e.Location, location) &&
			containsFold(e.Attendees, attendees) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func matchesKeyword(e event.Event, keyword string) bool {
	if keyword == "" {
		return true
	}
	return containsFold(e.Title, keyword) ||
		containsFold(e.Description, keyword) ||
		containsFold(e.Category, keyword) ||
		containsFold(e.Location, keyword) ||
		containsFold(e.Attendees, keyword)
}

func matchesCategory(e event.Event, category string) bool {
	if category == "" || strings.EqualFold(category, CategoryWildcard) {
		return true
	}
	return strings.EqualFold(e.Category, category)
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
