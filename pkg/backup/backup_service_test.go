package backup

import (
	"testing"
	"time"

	"github.com/chrona/chrona/internal/utils"
	"github.com/chrona/chrona/pkg/event"
	"github.com/chrona/chrona/pkg/recurrence"
	"github.com/chrona/chrona/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackupService(t *testing.T) (*ServiceImpl, *utils.IDAllocator, string) {
	dataDir := t.TempDir()
	alloc := utils.NewIDAllocator()
	store := storage.NewCSVStore(dataDir, alloc)
	openStore := func(dir string) storage.Store {
		return storage.NewCSVStore(dir, utils.NewIDAllocator())
	}
	merger := NewMerger(store, alloc)
	service := NewService(store, merger, alloc, openStore, t.TempDir())
	return service, alloc, dataDir
}

func localAt(d, h, m int) time.Time {
	return time.Date(2025, 4, d, h, m, 0, 0, time.Local)
}

func seedLive(t *testing.T, dataDir string, alloc *utils.IDAllocator) {
	store := storage.NewCSVStore(dataDir, alloc)
	require.NoError(t, store.SaveEvents(ctx, []event.Event{
		{ID: 1, Title: "Gym", StartTime: localAt(1, 7, 0), EndTime: localAt(1, 8, 0)},
	}))
	require.NoError(t, store.SaveRules(ctx, map[int]recurrence.Rule{
		1: {EventID: 1, Every: recurrence.Interval{Amount: 1, Unit: recurrence.Week}},
	}))
	alloc.Observe(1)
}

func TestBackupAndRestoreReplace(t *testing.T) {
	service, alloc, dataDir := newBackupService(t)
	seedLive(t, dataDir, alloc)

	backupDir, err := service.Backup(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, backupDir)

	// mutate live data after the snapshot
	live := storage.NewCSVStore(dataDir, alloc)
	require.NoError(t, live.SaveEvents(ctx, []event.Event{
		{ID: 2, Title: "Something else", StartTime: localAt(2, 9, 0), EndTime: localAt(2, 10, 0)},
	}))

	require.NoError(t, service.Restore(ctx, backupDir, RestoreReplace))

	events, err := live.LoadEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Gym", events[0].Title)

	rules, err := live.LoadRules(ctx)
	require.NoError(t, err)
	assert.Contains(t, rules, 1)
}

func TestRestoreMergeDeduplicates(t *testing.T) {
	service, alloc, dataDir := newBackupService(t)
	seedLive(t, dataDir, alloc)

	backupDir, err := service.Backup(ctx, "")
	require.NoError(t, err)

	// merging a snapshot of the live data back in changes nothing
	require.NoError(t, service.Restore(ctx, backupDir, RestoreMerge))

	live := storage.NewCSVStore(dataDir, utils.NewIDAllocator())
	events, err := live.LoadEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestBackupToExplicitDirectory(t *testing.T) {
	service, alloc, dataDir := newBackupService(t)
	seedLive(t, dataDir, alloc)

	target := t.TempDir()
	written, err := service.Backup(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, target, written)

	foreign := storage.NewCSVStore(target, utils.NewIDAllocator())
	events, err := foreign.LoadEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestRestoreUnknownMode(t *testing.T) {
	service, _, _ := newBackupService(t)
	err := service.Restore(ctx, t.TempDir(), RestoreMode("sideways"))
	assert.Error(t, err)
}
