package event_bus

import "time"

const (
	EventCreatedTopic EventType = "calendar.event.created"
	EventUpdatedTopic EventType = "calendar.event.updated"
	EventDeletedTopic EventType = "calendar.event.deleted"
	ReminderDueTopic  EventType = "reminder.due"
)

type EventChanged struct {
	ID        int
	Title     string
	StartTime time.Time
}

type EventDeleted struct {
	ID int
}

type ReminderDue struct {
	EventID   int
	Title     string
	StartTime time.Time
	Message   string
}
