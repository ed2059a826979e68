package search

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/chrona/chrona/internal/rest"
	"github.com/chrona/chrona/pkg/event"
	"github.com/chrona/chrona/pkg/storage"
)

// OccurrenceDTO is a single search result: either a plain template or one
// expanded occurrence of a recurring event.
type OccurrenceDTO struct {
	EventID     int    `json:"eventId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Category    string `json:"category,omitempty"`
	Attendees   string `json:"attendees,omitempty"`
	Start       string `json:"startDateTime"`
	End         string `json:"endDateTime"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Search handles GET /api/search. The date range is required; keyword,
// category, location and attendees are optional filter parameters applied on
// top of the range results.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	query := r.URL.Query()

	from, err := time.ParseInLocation(storage.TimeLayout, query.Get("from"), time.Local)
	if err != nil {
		writeTimeError(w, "from")
		return
	}
	to, err := time.ParseInLocation(storage.TimeLayout, query.Get("to"), time.Local)
	if err != nil {
		writeTimeError(w, "to")
		return
	}

	results, err := h.service.SearchByDateRange(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	results = Filter(results,
		query.Get("keyword"),
		query.Get("category"),
		query.Get("location"),
		query.Get("attendees"),
	)

	dtos := make([]OccurrenceDTO, 0, len(results))
	for _, e := range results {
		dtos = append(dtos, toDTO(e))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeTimeError(w http.ResponseWriter, param string) {
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error:   "invalid " + param + " parameter",
		Details: "expected format " + storage.TimeLayout,
	})
}

func toDTO(e event.Event) OccurrenceDTO {
	return OccurrenceDTO{
		EventID:     e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		Category:    e.Category,
		Attendees:   e.Attendees,
		Start:       e.StartTime.Format(storage.TimeLayout),
		End:         e.EndTime.Format(storage.TimeLayout),
	}
}
