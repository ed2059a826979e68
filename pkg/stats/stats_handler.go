package stats

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/chrona/chrona/internal/rest"
	"github.com/chrona/chrona/pkg/storage"
)

type CategoryStatsDTO struct {
	Category    string `json:"category"`
	Occurrences int    `json:"occurrences"`
	TotalTime   int    `json:"totalTime"`
}

type DailyStatsDTO struct {
	Date        string `json:"date"`
	Occurrences int    `json:"occurrences"`
	TotalTime   int    `json:"totalTime"`
}

type StatsSummaryDTO struct {
	StartDate        string             `json:"startDate"`
	EndDate          string             `json:"endDate"`
	Categories       []CategoryStatsDTO `json:"categories"`
	Days             []DailyStatsDTO    `json:"days"`
	BusiestDay       *DailyStatsDTO     `json:"busiestDay,omitempty"`
	TotalOccurrences int                `json:"totalOccurrences"`
	TotalTime        int                `json:"totalTime"`
}

type StatsHandler struct {
	statsService     StatsService
	csvStatsRenderer StatsRenderer
}

func NewStatsHandler(statsService StatsService, csvStatsRenderer StatsRenderer) *StatsHandler {
	return &StatsHandler{statsService, csvStatsRenderer}
}

func (handler *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	from, err := time.ParseInLocation(storage.TimeLayout, r.URL.Query().Get("from"), time.Local)
	if err != nil {
		writeDateError(w, "from")
		return
	}
	to, err := time.ParseInLocation(storage.TimeLayout, r.URL.Query().Get("to"), time.Local)
	if err != nil {
		writeDateError(w, "to")
		return
	}

	stats, err := handler.statsService.GetStats(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		csv, err := handler.csvStatsRenderer.RenderStats(stats)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if _, err := w.Write([]byte(csv)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toDTO(&stats)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeDateError(w http.ResponseWriter, param string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	if encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error:   "invalid " + param + " parameter",
		Details: "expected format " + storage.TimeLayout,
	}); encodeErr != nil {
		http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
	}
}

func toDTO(stats *StatsSummary) *StatsSummaryDTO {
	categories := make([]CategoryStatsDTO, 0, len(stats.Categories))
	for _, cs := range stats.Categories {
		categories = append(categories, CategoryStatsDTO{
			Category:    cs.Category,
			Occurrences: cs.Occurrences,
			TotalTime:   int(cs.TotalTime.Seconds()),
		})
	}

	days := make([]DailyStatsDTO, 0, len(stats.Days))
	for _, ds := range stats.Days {
		days = append(days, dailyToDTO(ds))
	}

	dto := &StatsSummaryDTO{
		StartDate:        stats.StartDate.Format(storage.TimeLayout),
		EndDate:          stats.EndDate.Format(storage.TimeLayout),
		Categories:       categories,
		Days:             days,
		TotalOccurrences: stats.TotalOccurrences,
		TotalTime:        int(stats.TotalTime.Seconds()),
	}
	if stats.BusiestDay != nil {
		busiest := dailyToDTO(*stats.BusiestDay)
		dto.BusiestDay = &busiest
	}
	return dto
}

func dailyToDTO(ds DailyStats) DailyStatsDTO {
	return DailyStatsDTO{
		Date:        ds.Date.Format("2006-01-02"),
		Occurrences: ds.Occurrences,
		TotalTime:   int(ds.TotalTime.Seconds()),
	}
}
