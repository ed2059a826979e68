package calendar

import (
	"context"
	"fmt"

	"github.com/chrona/chrona/internal/event_bus"
	"github.com/chrona/chrona/internal/utils"
	"github.com/chrona/chrona/pkg/conflict"
	"github.com/chrona/chrona/pkg/event"
	"github.com/chrona/chrona/pkg/recurrence"
	"github.com/chrona/chrona/pkg/storage"
	log "github.com/sirupsen/logrus"
)

var (
	ErrEventNotFound = fmt.Errorf("event not found")
	ErrConflict      = fmt.Errorf("event conflicts with an existing event")
)

type Service interface {
	ListEvents(ctx context.Context) ([]event.Event, map[int]recurrence.Rule, error)
	CreateEvent(ctx context.Context, e event.Event, rule *recurrence.Rule, force bool) (event.Event, error)
	UpdateEvent(ctx context.Context, e event.Event, rule *recurrence.Rule, force bool) (event.Event, error)
	DeleteEvent(ctx context.Context, id int) error
}

// ServiceImpl maintains the stored event templates and their recurrence
// rules. New ids come exclusively from the allocator; conflicts are checked
// through the detector unless the caller forces the write.
type ServiceImpl struct {
	store    storage.Store
	alloc    *utils.IDAllocator
	detector *conflict.Detector
	bus      *event_bus.EventBus
}

func NewService(store storage.Store, alloc *utils.IDAllocator, detector *conflict.Detector, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{store: store, alloc: alloc, detector: detector, bus: bus}
}

func (s *ServiceImpl) ListEvents(ctx context.Context) ([]event.Event, map[int]recurrence.Rule, error) {
	events, err := s.store.LoadEvents(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load events: %w", err)
	}
	rules, err := s.store.LoadRules(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load rules: %w", err)
	}
	return events, rules, nil
}

func (s *ServiceImpl) CreateEvent(ctx context.Context, e event.Event, rule *recurrence.Rule, force bool) (event.Event, error) {
	e.Normalize()
	if !force {
		conflicting, err := s.detector.Check(ctx, e, rule)
		if err != nil {
			return event.Event{}, err
		}
		if conflicting {
			return event.Event{}, ErrConflict
		}
	}

	events, err := s.store.LoadEvents(ctx)
	if err != nil {
		return event.Event{}, fmt.Errorf("failed to load events: %w", err)
	}
	e.ID = s.alloc.Next()
	events = append(events, e)
	if err := s.store.SaveEvents(ctx, events); err != nil {
		return event.Event{}, fmt.Errorf("failed to save events: %w", err)
	}

	if rule != nil && !rule.Every.IsZero() {
		if err := s.putRule(ctx, e.ID, *rule); err != nil {
			return event.Event{}, err
		}
	}

	s.publish(ctx, event_bus.EventCreatedTopic, event_bus.EventChanged{ID: e.ID, Title: e.Title, StartTime: e.StartTime})
	log.Infof("created event %d (%s)", e.ID, e.Title)
	return e, nil
}

func (s *ServiceImpl) UpdateEvent(ctx context.Context, e event.Event, rule *recurrence.Rule, force bool) (event.Event, error) {
	e.Normalize()
	if !force {
		conflicting, err := s.detector.Check(ctx, e, rule)
		if err != nil {
			return event.Event{}, err
		}
		if conflicting {
			return event.Event{}, ErrConflict
		}
	}

	events, err := s.store.LoadEvents(ctx)
	if err != nil {
		return event.Event{}, fmt.Errorf("failed to load events: %w", err)
	}
	found := false
	for i := range events {
		if events[i].ID == e.ID {
			events[i] = e
			found = true
			break
		}
	}
	if !found {
		return event.Event{}, ErrEventNotFound
	}
	if err := s.store.SaveEvents(ctx, events); err != nil {
		return event.Event{}, fmt.Errorf("failed to save events: %w", err)
	}

	// an update replaces the rule; updating to "no repetition" removes it
	rules, err := s.store.LoadRules(ctx)
	if err != nil {
		return event.Event{}, fmt.Errorf("failed to load rules: %w", err)
	}
	if rule != nil && !rule.Every.IsZero() {
		r := *rule
		r.EventID = e.ID
		rules[e.ID] = r
	} else {
		delete(rules, e.ID)
	}
	if err := s.store.SaveRules(ctx, rules); err != nil {
		return event.Event{}, fmt.Errorf("failed to save rules: %w", err)
	}

	s.publish(ctx, event_bus.EventUpdatedTopic, event_bus.EventChanged{ID: e.ID, Title: e.Title, StartTime: e.StartTime})
	return e, nil
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, id int) error {
	events, err := s.store.LoadEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}
	remaining := make([]event.Event, 0, len(events))
	for _, e := range events {
		if e.ID != id {
			remaining = append(remaining, e)
		}
	}
	if len(remaining) == len(events) {
		return ErrEventNotFound
	}
	if err := s.store.SaveEvents(ctx, remaining); err != nil {
		return fmt.Errorf("failed to save events: %w", err)
	}

	// a rule never outlives its template
	rules, err := s.store.LoadRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	if _, ok := rules[id]; ok {
		delete(rules, id)
		if err := s.store.SaveRules(ctx, rules); err != nil {
			return fmt.Errorf("failed to save rules: %w", err)
		}
	}

	s.publish(ctx, event_bus.EventDeletedTopic, event_bus.EventDeleted{ID: id})
	log.Infof("deleted event %d", id)
	return nil
}

func (s *ServiceImpl) putRule(ctx context.Context, eventID int, rule recurrence.Rule) error {
	rules, err := s.store.LoadRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	rule.EventID = eventID
	rules[eventID] = rule
	if err := s.store.SaveRules(ctx, rules); err != nil {
		return fmt.Errorf("failed to save rules: %w", err)
	}
	return nil
}

func (s *ServiceImpl) publish(ctx context.Context, topic event_bus.EventType, data any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(event_bus.NewEvent(ctx, topic, data)); err != nil {
		log.Warnf("failed to publish %s: %v", topic, err)
	}
}
