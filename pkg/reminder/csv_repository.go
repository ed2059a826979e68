package reminder

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	log "github.com/sirupsen/logrus"
)

const ReminderFileName = "reminder.csv"

var reminderHeader = []string{"eventId", "minutesBefore"}

// CSVRepository keeps reminders in a flat CSV file next to the event files.
// A missing file is created on first access, same as the event store.
type CSVRepository struct {
	dir string
}

func NewCSVRepository(dir string) *CSVRepository {
	return &CSVRepository{dir: dir}
}

func (r *CSVRepository) filePath() string {
	return filepath.Join(r.dir, ReminderFileName)
}

func (r *CSVRepository) List(ctx context.Context) ([]Reminder, error) {
	f, err := os.Open(r.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			if err := r.Save(ctx, nil); err != nil {
				return nil, err
			}
			log.Infof("created new, empty data file at %s", r.filePath())
			return nil, nil
		}
		err = fmt.Errorf("could not open %s: %w", r.filePath(), err)
		log.Error(err)
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		err = fmt.Errorf("could not read %s: %w", r.filePath(), err)
		log.Error(err)
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	reminders := make([]Reminder, 0, len(records)-1)
	for _, row := range records[1:] {
		rem, err := decodeReminder(row)
		if err != nil {
			log.Warnf("skipping malformed reminder row %v: %v", row, err)
			continue
		}
		reminders = append(reminders, rem)
	}
	return reminders, nil
}

func (r *CSVRepository) Save(ctx context.Context, reminders []Reminder) error {
	sorted := make([]Reminder, len(reminders))
	copy(sorted, reminders)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].EventID < sorted[j].EventID })

	records := make([][]string, 0, len(sorted)+1)
	records = append(records, reminderHeader)
	for _, rem := range sorted {
		records = append(records, []string{
			strconv.Itoa(rem.EventID),
			strconv.Itoa(rem.LeadMinutes),
		})
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		err = fmt.Errorf("could not create data directory %s: %w", r.dir, err)
		log.Error(err)
		return err
	}
	f, err := os.Create(r.filePath())
	if err != nil {
		err = fmt.Errorf("could not write %s: %w", r.filePath(), err)
		log.Error(err)
		return err
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.WriteAll(records); err != nil {
		err = fmt.Errorf("could not write %s: %w", r.filePath(), err)
		log.Error(err)
		return err
	}
	return nil
}

func decodeReminder(row []string) (Reminder, error) {
	if len(row) < 2 {
		return Reminder{}, fmt.Errorf("expected 2 fields, got %d", len(row))
	}
	id, err := strconv.Atoi(row[0])
	if err != nil {
		return Reminder{}, fmt.Errorf("invalid event id %q: %w", row[0], err)
	}
	minutes, err := strconv.Atoi(row[1])
	if err != nil {
		return Reminder{}, fmt.Errorf("invalid lead minutes %q: %w", row[1], err)
	}
	if minutes < 0 {
		return Reminder{}, fmt.Errorf("negative lead minutes %d", minutes)
	}
	return Reminder{EventID: id, LeadMinutes: minutes}, nil
}
