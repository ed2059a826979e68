package storage

import (
	"context"

	"github.com/chrona/chrona/pkg/event"
	"github.com/chrona/chrona/pkg/recurrence"
)

// StubStore is an in-memory Store for tests. Optional error fields make load
// and save failures injectable.
type StubStore struct {
	Events []event.Event
	Rules  map[int]recurrence.Rule

	LoadErr error
	SaveErr error
}

func NewStubStore() *StubStore {
	return &StubStore{Rules: map[int]recurrence.Rule{}}
}

func (s *StubStore) LoadEvents(ctx context.Context) ([]event.Event, error) {
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	events := make([]event.Event, len(s.Events))
	copy(events, s.Events)
	return events, nil
}

func (s *StubStore) LoadRules(ctx context.Context) (map[int]recurrence.Rule, error) {
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	rules := make(map[int]recurrence.Rule, len(s.Rules))
	for id, r := range s.Rules {
		rules[id] = r
	}
	return rules, nil
}

func (s *StubStore) SaveEvents(ctx context.Context, events []event.Event) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Events = make([]event.Event, len(events))
	copy(s.Events, events)
	return nil
}

func (s *StubStore) SaveRules(ctx context.Context, rules map[int]recurrence.Rule) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Rules = make(map[int]recurrence.Rule, len(rules))
	for id, r := range rules {
		s.Rules[id] = r
	}
	return nil
}

func (s *StubStore) Reset() {
	s.Events = nil
	s.Rules = map[int]recurrence.Rule{}
	s.LoadErr = nil
	s.SaveErr = nil
}
