package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chrona/chrona/pkg/event"
	"github.com/chrona/chrona/pkg/recurrence"
	"github.com/chrona/chrona/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func at(d, h, m int) time.Time {
	return time.Date(2025, 1, d, h, m, 0, 0, time.UTC)
}

func newService(store *storage.StubStore) *ServiceImpl {
	return NewService(store, recurrence.NewEngine())
}

func TestSearchByDateRange(t *testing.T) {
	store := storage.NewStubStore()
	service := newService(store)

	t.Run("includes plain templates overlapping the window", func(t *testing.T) {
		defer store.Reset()
		store.Events = []event.Event{
			{ID: 1, Title: "Dentist", StartTime: at(10, 14, 0), EndTime: at(10, 15, 0)},
			{ID: 2, Title: "Far away", StartTime: at(25, 9, 0), EndTime: at(25, 10, 0)},
		}

		results, err := service.SearchByDateRange(ctx, at(10, 0, 0), at(11, 0, 0))
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Dentist", results[0].Title)
	})

	t.Run("overlap beats containment for plain templates", func(t *testing.T) {
		defer store.Reset()
		// straddles the window start; containment semantics would drop it
		store.Events = []event.Event{
			{ID: 1, Title: "Overnight", StartTime: at(9, 22, 0), EndTime: at(10, 2, 0)},
		}

		results, err := service.SearchByDateRange(ctx, at(10, 0, 0), at(11, 0, 0))
		require.NoError(t, err)
		require.Len(t, results, 1)
	})

	t.Run("expands recurring templates instead of listing them once", func(t *testing.T) {
		defer store.Reset()
		store.Events = []event.Event{
			{ID: 1, Title: "Standup", StartTime: at(6, 9, 0), EndTime: at(6, 9, 15)},
		}
		store.Rules = map[int]recurrence.Rule{
			1: {EventID: 1, Every: recurrence.Interval{Amount: 1, Unit: recurrence.Day}, Count: 5},
		}

		results, err := service.SearchByDateRange(ctx, at(1, 0, 0), at(11, 0, 0))
		require.NoError(t, err)
		require.Len(t, results, 5)
		for i, occ := range results {
			assert.Equal(t, at(6+i, 9, 0), occ.StartTime)
			assert.Equal(t, 15*time.Minute, occ.Duration())
		}
	})

	t.Run("merges recurring and plain events sorted by start time", func(t *testing.T) {
		defer store.Reset()
		store.Events = []event.Event{
			{ID: 1, Title: "Standup", StartTime: at(6, 9, 0), EndTime: at(6, 9, 15)},
			{ID: 2, Title: "Lunch", StartTime: at(7, 12, 0), EndTime: at(7, 13, 0)},
		}
		store.Rules = map[int]recurrence.Rule{
			1: {EventID: 1, Every: recurrence.Interval{Amount: 1, Unit: recurrence.Day}, Count: 3},
		}

		results, err := service.SearchByDateRange(ctx, at(1, 0, 0), at(11, 0, 0))
		require.NoError(t, err)
		require.Len(t, results, 4)
		titles := make([]string, 0, len(results))
		for _, e := range results {
			titles = append(titles, e.Title)
		}
		assert.Equal(t, []string{"Standup", "Standup", "Lunch", "Standup"}, titles)
	})

	t.Run("ties on start time keep stored order", func(t *testing.T) {
		defer store.Reset()
		store.Events = []event.Event{
			{ID: 3, Title: "First", StartTime: at(5, 9, 0), EndTime: at(5, 10, 0)},
			{ID: 1, Title: "Second", StartTime: at(5, 9, 0), EndTime: at(5, 9, 30)},
		}

		results, err := service.SearchByDateRange(ctx, at(1, 0, 0), at(11, 0, 0))
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "First", results[0].Title)
		assert.Equal(t, "Second", results[1].Title)
	})

	t.Run("degenerate window yields no results", func(t *testing.T) {
		defer store.Reset()
		store.Events = []event.Event{
			{ID: 1, Title: "Dentist", StartTime: at(10, 14, 0), EndTime: at(10, 15, 0)},
		}

		results, err := service.SearchByDateRange(ctx, at(10, 0, 0), at(10, 0, 0))
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("propagates storage failures", func(t *testing.T) {
		defer store.Reset()
		store.LoadErr = errors.New("disk gone")

		_, err := service.SearchByDateRange(ctx, at(1, 0, 0), at(11, 0, 0))
		assert.Error(t, err)
	})
}

func TestFilter(t *testing.T) {
	events := []event.Event{
		{ID: 1, Title: "Standup", Description: "daily sync", Category: "Work", Location: "Room 2", Attendees: "John;Jacky"},
		{ID: 2, Title: "Gym", Category: "Personal", Location: "City gym", Attendees: ""},
		{ID: 3, Title: "Exam prep", Description: "math revision", Category: "Study", Location: "Library", Attendees: "Anna"},
	}

	t.Run("empty filters match everything", func(t *testing.T) {
		assert.Len(t, Filter(events, "", "", "", ""), 3)
	})

	t.Run("General category is a wildcard", func(t *testing.T) {
		assert.Len(t, Filter(events, "", "General", "", ""), 3)
		assert.Len(t, Filter(events, "", "general", "", ""), 3)
	})

	t.Run("category matches case-insensitively", func(t *testing.T) {
		filtered := Filter(events, "", "work", "", "")
		require.Len(t, filtered, 1)
		assert.Equal(t, "Standup", filtered[0].Title)
	})

	t.Run("keyword searches every text field", func(t *testing.T) {
		assert.Len(t, Filter(events, "SYNC", "", "", ""), 1)     // description
		assert.Len(t, Filter(events, "library", "", "", ""), 1)  // location
		assert.Len(t, Filter(events, "jacky", "", "", ""), 1)    // attendees
		assert.Len(t, Filter(events, "personal", "", "", ""), 1) // category
		assert.Empty(t, Filter(events, "nothing here", "", "", ""))
	})

	t.Run("location and attendees are substring matches", func(t *testing.T) {
		assert.Len(t, Filter(events, "", "", "gym", ""), 1)
		assert.Len(t, Filter(events, "", "", "", "anna"), 1)
	})

	t.Run("predicates are ANDed", func(t *testing.T) {
		assert.Len(t, Filter(events, "sync", "Work", "room", "john"), 1)
		assert.Empty(t, Filter(events, "sync", "Study", "", ""))
	})
}
