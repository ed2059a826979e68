package backup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chrona/chrona/internal/utils"
	"github.com/chrona/chrona/pkg/event"
	"github.com/chrona/chrona/pkg/recurrence"
	"github.com/chrona/chrona/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func at(month time.Month, d, h, m int) time.Time {
	return time.Date(2025, month, d, h, m, 0, 0, time.UTC)
}

func seededMerger(store *storage.StubStore) *Merger {
	alloc := utils.NewIDAllocator()
	for _, e := range store.Events {
		alloc.Observe(e.ID)
	}
	return NewMerger(store, alloc)
}

func gymAt(id int) event.Event {
	return event.Event{
		ID:        id,
		Title:     "Gym",
		StartTime: at(time.February, 1, 7, 0),
		EndTime:   at(time.February, 1, 8, 0),
	}
}

func TestMergeMapsDuplicateToExistingEvent(t *testing.T) {
	store := storage.NewStubStore()
	store.Events = []event.Event{gymAt(3)}
	merger := seededMerger(store)

	// same title and start, different foreign id and casing
	foreign := gymAt(41)
	foreign.Title = "gym"

	idMap, err := merger.Merge(ctx, []event.Event{foreign}, nil)
	require.NoError(t, err)

	assert.Equal(t, map[int]int{41: 3}, idMap)
	assert.Len(t, store.Events, 1)
}

func TestMergeAllocatesFreshIDsForNewEvents(t *testing.T) {
	store := storage.NewStubStore()
	store.Events = []event.Event{gymAt(3)}
	merger := seededMerger(store)

	foreign := []event.Event{
		{ID: 1, Title: "Dentist", StartTime: at(time.February, 2, 14, 0), EndTime: at(time.February, 2, 15, 0)},
		{ID: 2, Title: "Haircut", StartTime: at(time.February, 3, 16, 0), EndTime: at(time.February, 3, 16, 30)},
	}

	idMap, err := merger.Merge(ctx, foreign, nil)
	require.NoError(t, err)

	assert.Equal(t, map[int]int{1: 4, 2: 5}, idMap)
	require.Len(t, store.Events, 3)
	assert.Equal(t, "Dentist", store.Events[1].Title)
	assert.Equal(t, 4, store.Events[1].ID)
}

func TestMergeReanchorsRulesOntoTranslatedIDs(t *testing.T) {
	store := storage.NewStubStore()
	store.Events = []event.Event{gymAt(3)}
	store.Rules = map[int]recurrence.Rule{
		3: {EventID: 3, Every: recurrence.Interval{Amount: 1, Unit: recurrence.Week}},
	}
	merger := seededMerger(store)

	foreignEvents := []event.Event{
		gymAt(41), // dedups onto live id 3
		{ID: 42, Title: "Yoga", StartTime: at(time.February, 5, 18, 0), EndTime: at(time.February, 5, 19, 0)},
	}
	foreignRules := []recurrence.Rule{
		{EventID: 41, Every: recurrence.Interval{Amount: 2, Unit: recurrence.Day}}, // replaces live rule for 3
		{EventID: 42, Every: recurrence.Interval{Amount: 1, Unit: recurrence.Month}, Count: 6},
	}

	idMap, err := merger.Merge(ctx, foreignEvents, foreignRules)
	require.NoError(t, err)

	require.Len(t, store.Rules, 2)
	assert.Equal(t, recurrence.Interval{Amount: 2, Unit: recurrence.Day}, store.Rules[3].Every)
	yoga := store.Rules[idMap[42]]
	assert.Equal(t, idMap[42], yoga.EventID)
	assert.Equal(t, 6, yoga.Count)
}

func TestMergeDropsRuleOfUnimportedEvent(t *testing.T) {
	store := storage.NewStubStore()
	merger := seededMerger(store)

	// foreign event 7 was dropped as malformed upstream; only its rule arrives
	foreignRules := []recurrence.Rule{
		{EventID: 7, Every: recurrence.Interval{Amount: 1, Unit: recurrence.Day}},
	}

	_, err := merger.Merge(ctx, nil, foreignRules)
	require.NoError(t, err)
	assert.Empty(t, store.Rules)
}

func TestMergeIsIdempotent(t *testing.T) {
	store := storage.NewStubStore()
	merger := seededMerger(store)

	foreignEvents := []event.Event{
		gymAt(41),
		{ID: 42, Title: "Yoga", StartTime: at(time.February, 5, 18, 0), EndTime: at(time.February, 5, 19, 0)},
	}

	first, err := merger.Merge(ctx, foreignEvents, nil)
	require.NoError(t, err)
	require.Len(t, store.Events, 2)

	second, err := merger.Merge(ctx, foreignEvents, nil)
	require.NoError(t, err)

	// the second import maps everything onto already-merged ids
	assert.Equal(t, first, second)
	assert.Len(t, store.Events, 2)
}

func TestMergeBijectionOverLiveIDs(t *testing.T) {
	store := storage.NewStubStore()
	store.Events = []event.Event{gymAt(3)}
	merger := seededMerger(store)

	foreign := []event.Event{
		gymAt(10),
		{ID: 11, Title: "A", StartTime: at(time.March, 1, 9, 0), EndTime: at(time.March, 1, 10, 0)},
		{ID: 12, Title: "B", StartTime: at(time.March, 2, 9, 0), EndTime: at(time.March, 2, 10, 0)},
	}

	idMap, err := merger.Merge(ctx, foreign, nil)
	require.NoError(t, err)

	assert.Len(t, idMap, 3)
	seen := map[int]bool{}
	for _, liveID := range idMap {
		assert.False(t, seen[liveID], "live id %d mapped twice", liveID)
		seen[liveID] = true
	}
}

func TestMergeAbortsBeforeMutationOnLoadFailure(t *testing.T) {
	store := storage.NewStubStore()
	store.Events = []event.Event{gymAt(3)}
	store.LoadErr = errors.New("disk gone")
	merger := seededMerger(store)

	_, err := merger.Merge(ctx, []event.Event{gymAt(41)}, nil)
	require.Error(t, err)

	store.LoadErr = nil
	events, err := store.LoadEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
