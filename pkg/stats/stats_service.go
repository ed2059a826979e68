package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/chrona/chrona/pkg/search"
	log "github.com/sirupsen/logrus"
)

type StatsService interface {
	GetStats(ctx context.Context, from time.Time, to time.Time) (StatsSummary, error)
}

// StatsServiceImpl aggregates the occurrences within a range, so a recurring
// event contributes once per expanded occurrence, not once per template.
type StatsServiceImpl struct {
	searcher search.Service
}

func NewStatsService(searcher search.Service) *StatsServiceImpl {
	return &StatsServiceImpl{searcher: searcher}
}

func (s *StatsServiceImpl) GetStats(ctx context.Context, from time.Time, to time.Time) (StatsSummary, error) {
	occurrences, err := s.searcher.SearchByDateRange(ctx, from, to)
	if err != nil {
		return StatsSummary{}, fmt.Errorf("failed to collect occurrences: %w", err)
	}
	log.Debugf("aggregating %d occurrences between %v and %v", len(occurrences), from, to)

	byCategory := make(map[string]*CategoryStats)
	byDay := make(map[time.Time]*DailyStats)
	totalTime := time.Duration(0)

	for _, occ := range occurrences {
		category := occ.Category
		if category == "" {
			category = search.CategoryWildcard
		}
		cs, ok := byCategory[category]
		if !ok {
			cs = &CategoryStats{Category: category}
			byCategory[category] = cs
		}
		cs.Occurrences++
		cs.TotalTime += occ.Duration()

		day := dayOf(occ.StartTime)
		ds, ok := byDay[day]
		if !ok {
			ds = &DailyStats{Date: day}
			byDay[day] = ds
		}
		ds.Occurrences++
		ds.TotalTime += occ.Duration()

		totalTime += occ.Duration()
	}

	categories := make([]CategoryStats, 0, len(byCategory))
	for _, cs := range byCategory {
		categories = append(categories, *cs)
	}
	// busiest category first, names break ties for a stable report
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].TotalTime != categories[j].TotalTime {
			return categories[i].TotalTime > categories[j].TotalTime
		}
		return categories[i].Category < categories[j].Category
	})

	days := make([]DailyStats, 0, len(byDay))
	for _, ds := range byDay {
		days = append(days, *ds)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })

	summary := StatsSummary{
		StartDate:        from,
		EndDate:          to,
		Categories:       categories,
		Days:             days,
		TotalOccurrences: len(occurrences),
		TotalTime:        totalTime,
	}
	for i := range days {
		if summary.BusiestDay == nil || days[i].TotalTime > summary.BusiestDay.TotalTime {
			summary.BusiestDay = &days[i]
		}
	}
	return summary, nil
}

func dayOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
