package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/chrona/chrona/internal/event_bus"
	"github.com/chrona/chrona/pkg/event"
	"github.com/chrona/chrona/pkg/storage"
	log "github.com/sirupsen/logrus"
)

var ErrUnknownEvent = fmt.Errorf("no event exists with that id")

type Service interface {
	List(ctx context.Context) ([]Reminder, error)
	Set(ctx context.Context, eventID int, leadMinutes int) (Reminder, error)
	Delete(ctx context.Context, eventID int) error
}

// ServiceImpl manages the reminder set. Setting a reminder for an event that
// already has one replaces it.
type ServiceImpl struct {
	repo  Repository
	store storage.Store
}

func NewService(repo Repository, store storage.Store) *ServiceImpl {
	return &ServiceImpl{repo: repo, store: store}
}

func (s *ServiceImpl) List(ctx context.Context) ([]Reminder, error) {
	return s.repo.List(ctx)
}

func (s *ServiceImpl) Set(ctx context.Context, eventID int, leadMinutes int) (Reminder, error) {
	if leadMinutes < 0 {
		return Reminder{}, fmt.Errorf("lead minutes must not be negative, got %d", leadMinutes)
	}
	events, err := s.store.LoadEvents(ctx)
	if err != nil {
		return Reminder{}, fmt.Errorf("failed to load events: %w", err)
	}
	if !eventExists(events, eventID) {
		return Reminder{}, ErrUnknownEvent
	}

	reminders, err := s.repo.List(ctx)
	if err != nil {
		return Reminder{}, fmt.Errorf("failed to load reminders: %w", err)
	}
	updated := Reminder{EventID: eventID, LeadMinutes: leadMinutes}
	replaced := false
	for i := range reminders {
		if reminders[i].EventID == eventID {
			reminders[i] = updated
			replaced = true
			break
		}
	}
	if !replaced {
		reminders = append(reminders, updated)
	}
	if err := s.repo.Save(ctx, reminders); err != nil {
		return Reminder{}, fmt.Errorf("failed to save reminders: %w", err)
	}
	log.Infof("set reminder for event %d, %d minutes before start", eventID, leadMinutes)
	return updated, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, eventID int) error {
	reminders, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reminders: %w", err)
	}
	remaining := make([]Reminder, 0, len(reminders))
	for _, r := range reminders {
		if r.EventID != eventID {
			remaining = append(remaining, r)
		}
	}
	if len(remaining) == len(reminders) {
		return nil
	}
	if err := s.repo.Save(ctx, remaining); err != nil {
		return fmt.Errorf("failed to save reminders: %w", err)
	}
	return nil
}

// ListenForDeletions removes an event's reminder whenever the event itself is
// deleted, so reminders never point at a missing event.
func (s *ServiceImpl) ListenForDeletions(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped[event_bus.EventDeleted](bus, event_bus.EventDeletedTopic,
		func(e event_bus.EventT[event_bus.EventDeleted]) error {
			return s.Delete(e.Context(), e.Data.ID)
		})
}

// Due returns a notification for every occurrence whose reminder window
// covers now: the occurrence has not started yet but starts within the
// reminder's lead time.
func Due(occurrences []event.Event, reminders []Reminder, now time.Time) []event_bus.ReminderDue {
	leads := make(map[int]time.Duration, len(reminders))
	for _, r := range reminders {
		leads[r.EventID] = r.Lead()
	}

	var due []event_bus.ReminderDue
	for _, occ := range occurrences {
		lead, ok := leads[occ.ID]
		if !ok {
			continue
		}
		if occ.StartTime.After(now) && !occ.StartTime.Add(-lead).After(now) {
			due = append(due, event_bus.ReminderDue{
				EventID:   occ.ID,
				Title:     occ.Title,
				StartTime: occ.StartTime,
				Message:   fmt.Sprintf("🔔 %s starts in %s.", occ.Title, formatUntil(occ.StartTime.Sub(now))),
			})
		}
	}
	return due
}

func formatUntil(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	if minutes <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

func eventExists(events []event.Event, id int) bool {
	for _, e := range events {
		if e.ID == id {
			return true
		}
	}
	return false
}
