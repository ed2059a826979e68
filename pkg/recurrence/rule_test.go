package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		input string
		want  Interval
	}{
		{"1d", Interval{1, Day}},
		{"2w", Interval{2, Week}},
		{"3m", Interval{3, Month}},
		{"1y", Interval{1, Year}},
		{" 10D ", Interval{10, Day}},
		// malformed input falls back to a 1-day step, never an error
		{"", DefaultInterval},
		{"d", DefaultInterval},
		{"xyz", DefaultInterval},
		{"0d", DefaultInterval},
		{"-2w", DefaultInterval},
		{"2q", DefaultInterval},
		{"Do not repeat", DefaultInterval},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseInterval(tt.input))
		})
	}
}

func TestIntervalString(t *testing.T) {
	for _, encoded := range []string{"1d", "2w", "3m", "4y"} {
		assert.Equal(t, encoded, ParseInterval(encoded).String())
	}
}

func TestIntervalStep(t *testing.T) {
	start := time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, start.AddDate(0, 0, 3), Interval{3, Day}.Step(start))
	assert.Equal(t, start.AddDate(0, 0, 14), Interval{2, Week}.Step(start))
	assert.Equal(t, start.AddDate(1, 0, 0), Interval{1, Year}.Step(start))

	// month steps follow time.AddDate normalization: Jan 31 + 1 month rolls
	// over into March
	stepped := Interval{1, Month}.Step(start)
	assert.Equal(t, time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), stepped)
}

func TestRuleUnbounded(t *testing.T) {
	assert.True(t, Rule{Every: Interval{1, Day}}.Unbounded())
	assert.False(t, Rule{Every: Interval{1, Day}, Count: 3}.Unbounded())
	assert.False(t, Rule{Every: Interval{1, Day}, Until: time.Now()}.Unbounded())
}
