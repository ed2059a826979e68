package stats

import "time"

type CategoryStats struct {
	Category    string
	Occurrences int
	TotalTime   time.Duration
}

type DailyStats struct {
	Date        time.Time
	Occurrences int
	TotalTime   time.Duration
}

type StatsSummary struct {
	StartDate        time.Time
	EndDate          time.Time
	Categories       []CategoryStats
	Days             []DailyStats
	BusiestDay       *DailyStats
	TotalOccurrences int
	TotalTime        time.Duration
}

type StatsRenderer interface {
	RenderStats(stats StatsSummary) (string, error)
}
