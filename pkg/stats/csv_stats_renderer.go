package stats

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

type CsvStatsRendererImpl struct {
}

func NewCsvStatsRenderer() *CsvStatsRendererImpl {
	return &CsvStatsRendererImpl{}
}

func (t *CsvStatsRendererImpl) RenderStats(stats StatsSummary) (string, error) {
	data := make([][]string, 0, len(stats.Categories)+len(stats.Days)+4)
	data = append(data, []string{"category", "occurrences", "totalTime"})
	for _, cs := range stats.Categories {
		data = append(data, []string{cs.Category, strconv.Itoa(cs.Occurrences), durationToString(cs.TotalTime)})
	}
	data = append(data, []string{"SUM", strconv.Itoa(stats.TotalOccurrences), durationToString(stats.TotalTime)})

	data = append(data, []string{"date", "occurrences", "totalTime"})
	for _, ds := range stats.Days {
		data = append(data, []string{ds.Date.Format("02/01/2006"), strconv.Itoa(ds.Occurrences), durationToString(ds.TotalTime)})
	}
	if stats.BusiestDay != nil {
		data = append(data, []string{"BUSIEST", stats.BusiestDay.Date.Format("02/01/2006"), durationToString(stats.BusiestDay.TotalTime)})
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func durationToString(duration time.Duration) string {
	hours := strconv.Itoa(int(duration.Hours()))
	if len(hours) == 1 {
		hours = "0" + hours
	}
	minutes := strconv.Itoa(int(duration.Minutes()) % 60)
	if len(minutes) == 1 {
		minutes = "0" + minutes
	}
	seconds := strconv.Itoa(int(duration.Seconds()) % 60)
	if len(seconds) == 1 {
		seconds = "0" + seconds
	}
	return hours + ":" + minutes + ":" + seconds
}
