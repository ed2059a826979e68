package reminder

import "context"

// StubRepository is an in-memory Repository for tests.
type StubRepository struct {
	Reminders []Reminder
	ListErr   error
	SaveErr   error
}

func NewStubRepository() *StubRepository {
	return &StubRepository{}
}

func (s *StubRepository) List(ctx context.Context) ([]Reminder, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := make([]Reminder, len(s.Reminders))
	copy(out, s.Reminders)
	return out, nil
}

func (s *StubRepository) Save(ctx context.Context, reminders []Reminder) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Reminders = make([]Reminder, len(reminders))
	copy(s.Reminders, reminders)
	return nil
}
