package reminder

import (
	"context"
	"time"
)

// Reminder asks for a notification a fixed lead time before every occurrence
// of the referenced event. At most one reminder exists per event.
type Reminder struct {
	EventID     int
	LeadMinutes int
}

func (r Reminder) Lead() time.Duration {
	return time.Duration(r.LeadMinutes) * time.Minute
}

// Repository persists the full reminder set. Save overwrites whatever was
// stored before, mirroring the event store.
type Repository interface {
	List(ctx context.Context) ([]Reminder, error)
	Save(ctx context.Context, reminders []Reminder) error
}
