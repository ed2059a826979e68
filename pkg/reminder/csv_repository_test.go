package reminder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRepository(t *testing.T) {
	t.Run("round-trips reminders sorted by event id", func(t *testing.T) {
		repo := NewCSVRepository(t.TempDir())

		err := repo.Save(ctx, []Reminder{
			{EventID: 7, LeadMinutes: 30},
			{EventID: 2, LeadMinutes: 15},
		})
		require.NoError(t, err)

		loaded, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []Reminder{
			{EventID: 2, LeadMinutes: 15},
			{EventID: 7, LeadMinutes: 30},
		}, loaded)
	})

	t.Run("creates a missing file with its header", func(t *testing.T) {
		dir := t.TempDir()
		repo := NewCSVRepository(dir)

		loaded, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, loaded)

		content, err := os.ReadFile(filepath.Join(dir, ReminderFileName))
		require.NoError(t, err)
		assert.Equal(t, "eventId,minutesBefore\n", string(content))
	})

	t.Run("skips malformed rows and keeps the rest", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, ReminderFileName)
		data := "eventId,minutesBefore\n1,15\nnot-a-number,30\n2,-5\n3,60\n"
		require.NoError(t, os.WriteFile(file, []byte(data), 0o644))

		loaded, err := NewCSVRepository(dir).List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []Reminder{
			{EventID: 1, LeadMinutes: 15},
			{EventID: 3, LeadMinutes: 60},
		}, loaded)
	})
}
