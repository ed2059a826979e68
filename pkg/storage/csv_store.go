package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/chrona/chrona/internal/utils"
	"github.com/chrona/chrona/pkg/event"
	"github.com/chrona/chrona/pkg/recurrence"
	log "github.com/sirupsen/logrus"
)

const (
	EventFileName      = "event.csv"
	RecurrenceFileName = "recurrent.csv"

	// TimeLayout is the naive local date-time encoding used across all data
	// files. No timezone conversion happens anywhere in the core.
	TimeLayout = "2006-01-02T15:04"

	// noEndDate is the on-disk sentinel for a rule without an end date.
	noEndDate = "0"
)

var eventHeader = []string{"eventId", "title", "description", "startDateTime", "endDateTime", "location", "category", "attendees"}
var recurrenceHeader = []string{"eventId", "recurrentInterval", "recurrentTimes", "recurrentEndDate"}

// CSVStore keeps events and recurrence rules in flat CSV files under a data
// directory. Missing directory and files are created on first access.
type CSVStore struct {
	dir   string
	alloc *utils.IDAllocator
}

// NewCSVStore creates a store rooted at dir. The allocator is seeded with
// every event id seen during loads; pass a fresh allocator for foreign data
// sets (e.g. backup directories) whose ids must not influence live
// allocation.
func NewCSVStore(dir string, alloc *utils.IDAllocator) *CSVStore {
	return &CSVStore{dir: dir, alloc: alloc}
}

func (s *CSVStore) EventFilePath() string {
	return filepath.Join(s.dir, EventFileName)
}

func (s *CSVStore) RecurrenceFilePath() string {
	return filepath.Join(s.dir, RecurrenceFileName)
}

// LoadEvents reads all event templates in stored order. Malformed rows are
// skipped with a warning; the rest of the batch is still returned.
func (s *CSVStore) LoadEvents(ctx context.Context) ([]event.Event, error) {
	rows, err := s.readAll(s.EventFilePath(), eventHeader)
	if err != nil {
		return nil, err
	}
	events := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		e, err := decodeEvent(row)
		if err != nil {
			log.Warnf("skipping malformed event row %v: %v", row, err)
			continue
		}
		s.alloc.Observe(e.ID)
		events = append(events, e)
	}
	return events, nil
}

// LoadRules reads the recurrence rules keyed by event id. A duplicate row for
// the same event id silently replaces the earlier one.
func (s *CSVStore) LoadRules(ctx context.Context) (map[int]recurrence.Rule, error) {
	rows, err := s.readAll(s.RecurrenceFilePath(), recurrenceHeader)
	if err != nil {
		return nil, err
	}
	rules := make(map[int]recurrence.Rule, len(rows))
	for _, row := range rows {
		r, err := decodeRule(row)
		if err != nil {
			log.Warnf("skipping malformed recurrence row %v: %v", row, err)
			continue
		}
		rules[r.EventID] = r
	}
	return rules, nil
}

func (s *CSVStore) SaveEvents(ctx context.Context, events []event.Event) error {
	records := make([][]string, 0, len(events)+1)
	records = append(records, eventHeader)
	for _, e := range events {
		records = append(records, encodeEvent(e))
	}
	return s.writeAll(s.EventFilePath(), records)
}

func (s *CSVStore) SaveRules(ctx context.Context, rules map[int]recurrence.Rule) error {
	ids := make([]int, 0, len(rules))
	for id := range rules {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	records := make([][]string, 0, len(rules)+1)
	records = append(records, recurrenceHeader)
	for _, id := range ids {
		records = append(records, encodeRule(rules[id]))
	}
	return s.writeAll(s.RecurrenceFilePath(), records)
}

func (s *CSVStore) readAll(path string, header []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			// self-healing: create the missing file with its header
			if err := s.createEmptyFile(path, header); err != nil {
				return nil, err
			}
			return nil, nil
		}
		err = fmt.Errorf("could not open %s: %w", path, err)
		log.Error(err)
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		err = fmt.Errorf("could not read %s: %w", path, err)
		log.Error(err)
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

func (s *CSVStore) writeAll(path string, records [][]string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		err = fmt.Errorf("could not create data directory %s: %w", s.dir, err)
		log.Error(err)
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		err = fmt.Errorf("could not write %s: %w", path, err)
		log.Error(err)
		return err
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.WriteAll(records); err != nil {
		err = fmt.Errorf("could not write %s: %w", path, err)
		log.Error(err)
		return err
	}
	return nil
}

func (s *CSVStore) createEmptyFile(path string, header []string) error {
	if err := s.writeAll(path, [][]string{header}); err != nil {
		return err
	}
	log.Infof("created new, empty data file at %s", path)
	return nil
}

func decodeEvent(row []string) (event.Event, error) {
	if len(row) < 5 {
		return event.Event{}, fmt.Errorf("expected at least 5 fields, got %d", len(row))
	}
	id, err := strconv.Atoi(row[0])
	if err != nil {
		return event.Event{}, fmt.Errorf("invalid event id %q: %w", row[0], err)
	}
	start, err := time.ParseInLocation(TimeLayout, row[3], time.Local)
	if err != nil {
		return event.Event{}, fmt.Errorf("invalid start time %q: %w", row[3], err)
	}
	end, err := time.ParseInLocation(TimeLayout, row[4], time.Local)
	if err != nil {
		return event.Event{}, fmt.Errorf("invalid end time %q: %w", row[4], err)
	}
	e := event.Event{
		ID:          id,
		Title:       row[1],
		Description: row[2],
		StartTime:   start,
		EndTime:     end,
	}
	if len(row) > 5 {
		e.Location = row[5]
	}
	if len(row) > 6 {
		e.Category = row[6]
	}
	if len(row) > 7 {
		e.Attendees = row[7]
	}
	e.Normalize()
	return e, nil
}

func encodeEvent(e event.Event) []string {
	return []string{
		strconv.Itoa(e.ID),
		e.Title,
		e.Description,
		e.StartTime.Format(TimeLayout),
		e.EndTime.Format(TimeLayout),
		e.Location,
		e.Category,
		e.Attendees,
	}
}

func decodeRule(row []string) (recurrence.Rule, error) {
	if len(row) < 4 {
		return recurrence.Rule{}, fmt.Errorf("expected 4 fields, got %d", len(row))
	}
	id, err := strconv.Atoi(row[0])
	if err != nil {
		return recurrence.Rule{}, fmt.Errorf("invalid event id %q: %w", row[0], err)
	}
	count, err := strconv.Atoi(row[2])
	if err != nil {
		return recurrence.Rule{}, fmt.Errorf("invalid occurrence count %q: %w", row[2], err)
	}
	rule := recurrence.Rule{
		EventID: id,
		Every:   recurrence.ParseInterval(row[1]),
		Count:   count,
	}
	if row[3] != noEndDate {
		until, err := time.ParseInLocation(TimeLayout, row[3], time.Local)
		if err != nil {
			return recurrence.Rule{}, fmt.Errorf("invalid end date %q: %w", row[3], err)
		}
		rule.Until = until
	}
	return rule, nil
}

func encodeRule(r recurrence.Rule) []string {
	until := noEndDate
	if !r.Until.IsZero() {
		until = r.Until.Format(TimeLayout)
	}
	return []string{
		strconv.Itoa(r.EventID),
		r.Every.String(),
		strconv.Itoa(r.Count),
		until,
	}
}
