package app

import (
	"github.com/chrona/chrona/internal/config"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Calendar events
	r.HandleFunc("/api/event", deps.CalendarHandler.ListEvents).Methods("GET")
	r.HandleFunc("/api/event", deps.CalendarHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/event/{id}", deps.CalendarHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/event/{id}", deps.CalendarHandler.DeleteEvent).Methods("DELETE")

	// Search
	r.HandleFunc("/api/search", deps.SearchHandler.Search).Queries("from", "{from}", "to", "{to}").Methods("GET")

	// Conflict check
	r.HandleFunc("/api/conflict/check", deps.ConflictHandler.Check).Methods("POST")

	// Reminders
	r.HandleFunc("/api/reminder", deps.ReminderHandler.ListReminders).Methods("GET")
	r.HandleFunc("/api/event/{id}/reminder", deps.ReminderHandler.SetReminder).Methods("PUT")
	r.HandleFunc("/api/event/{id}/reminder", deps.ReminderHandler.DeleteReminder).Methods("DELETE")

	// Stats
	r.HandleFunc("/api/stats", deps.StatsHandler.GetStats).Queries("from", "{from}", "to", "{to}").Methods("GET")

	// Backup & restore
	r.HandleFunc("/api/backup", deps.BackupHandler.CreateBackup).Methods("POST")
	r.HandleFunc("/api/backup/restore", deps.BackupHandler.Restore).Methods("POST")
}
