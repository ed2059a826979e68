package app

import (
	"github.com/chrona/chrona/internal/config"
	"github.com/chrona/chrona/internal/event_bus"
	"github.com/chrona/chrona/internal/utils"
	"github.com/chrona/chrona/pkg/backup"
	"github.com/chrona/chrona/pkg/calendar"
	"github.com/chrona/chrona/pkg/conflict"
	"github.com/chrona/chrona/pkg/recurrence"
	"github.com/chrona/chrona/pkg/reminder"
	"github.com/chrona/chrona/pkg/search"
	"github.com/chrona/chrona/pkg/stats"
	"github.com/chrona/chrona/pkg/storage"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Bus       *event_bus.EventBus
	Allocator *utils.IDAllocator
	Store     *storage.CSVStore
	Engine    *recurrence.Engine

	SearchService *search.ServiceImpl
	SearchHandler *search.Handler

	Detector        *conflict.Detector
	ConflictHandler *conflict.Handler

	CalendarService *calendar.ServiceImpl
	CalendarHandler *calendar.Handler

	ReminderRepo    *reminder.CSVRepository
	ReminderService *reminder.ServiceImpl
	ReminderPoller  *reminder.Poller
	ReminderHandler *reminder.Handler

	BackupMerger  *backup.Merger
	BackupService *backup.ServiceImpl
	BackupHandler *backup.Handler

	StatsService     *stats.StatsServiceImpl
	CsvStatsRenderer *stats.CsvStatsRendererImpl
	StatsHandler     *stats.StatsHandler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Bus = event_bus.NewEventBus()
	deps.Allocator = utils.NewIDAllocator()
	deps.Store = storage.NewCSVStore(cfg.Data.Dir, deps.Allocator)
	deps.Engine = recurrence.NewEngine()

	deps.SearchService = search.NewService(deps.Store, deps.Engine)
	deps.SearchHandler = search.NewHandler(deps.SearchService)

	deps.Detector = conflict.NewDetector(deps.SearchService, deps.Engine)
	deps.ConflictHandler = conflict.NewHandler(deps.Detector)

	deps.CalendarService = calendar.NewService(deps.Store, deps.Allocator, deps.Detector, deps.Bus)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService)

	deps.ReminderRepo = reminder.NewCSVRepository(cfg.Data.Dir)
	deps.ReminderService = reminder.NewService(deps.ReminderRepo, deps.Store)
	deps.ReminderService.ListenForDeletions(deps.Bus)
	deps.ReminderPoller = reminder.NewPoller(deps.SearchService, deps.ReminderService, deps.Bus, cfg.Reminder.Lookahead)
	deps.ReminderHandler = reminder.NewHandler(deps.ReminderService)

	deps.BackupMerger = backup.NewMerger(deps.Store, deps.Allocator)
	// backup and restore directories get their own allocator so foreign ids
	// never leak into live allocation
	openStore := func(dir string) storage.Store {
		return storage.NewCSVStore(dir, utils.NewIDAllocator())
	}
	deps.BackupService = backup.NewService(deps.Store, deps.BackupMerger, deps.Allocator, openStore, cfg.Data.BackupDir)
	deps.BackupHandler = backup.NewHandler(deps.BackupService)

	deps.StatsService = stats.NewStatsService(deps.SearchService)
	deps.CsvStatsRenderer = stats.NewCsvStatsRenderer()
	deps.StatsHandler = stats.NewStatsHandler(deps.StatsService, deps.CsvStatsRenderer)

	deps.Clock = &utils.SystemClock{}

	return deps
}
