package calendar

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/chrona/chrona/internal/rest"
	"github.com/chrona/chrona/pkg/event"
	"github.com/chrona/chrona/pkg/recurrence"
	"github.com/chrona/chrona/pkg/storage"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type RecurrenceDTO struct {
	Interval string `json:"interval"`
	Count    int    `json:"count,omitempty"`
	Until    string `json:"until,omitempty"`
}

type EventDTO struct {
	ID          int            `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Location    string         `json:"location,omitempty"`
	Category    string         `json:"category,omitempty"`
	Attendees   string         `json:"attendees,omitempty"`
	Start       string         `json:"startDateTime"`
	End         string         `json:"endDateTime"`
	Recurrence  *RecurrenceDTO `json:"recurrence,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	events, rules, err := h.service.ListEvents(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dto := EventToDTO(e)
		if rule, ok := rules[e.ID]; ok {
			dto.Recurrence = RuleToDTO(rule)
		}
		dtos = append(dtos, dto)
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new event")
	w.Header().Set("Content-Type", "application/json")

	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	e, rule, err := DTOToEvent(dto)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	force := r.URL.Query().Has("force")

	created, err := h.service.CreateEvent(r.Context(), e, rule, force)
	if errors.Is(err, ErrConflict) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	createdDTO := EventToDTO(created)
	createdDTO.Recurrence = dto.Recurrence
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(createdDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.ID != 0 && dto.ID != id {
		http.Error(w, "event id in body does not match URL", http.StatusBadRequest)
		return
	}
	dto.ID = id
	e, rule, err := DTOToEvent(dto)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	force := r.URL.Query().Has("force")

	updated, err := h.service.UpdateEvent(r.Context(), e, rule, force)
	if errors.Is(err, ErrConflict) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if errors.Is(err, ErrEventNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	updatedDTO := EventToDTO(updated)
	updatedDTO.Recurrence = dto.Recurrence
	if err := json.NewEncoder(w).Encode(updatedDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	err = h.service.DeleteEvent(r.Context(), id)
	if errors.Is(err, ErrEventNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeBadRequest(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusBadRequest)
	if encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error:   "invalid event payload",
		Details: err.Error(),
	}); encodeErr != nil {
		http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
	}
}

func EventToDTO(e event.Event) EventDTO {
	return EventDTO{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		Category:    e.Category,
		Attendees:   e.Attendees,
		Start:       e.StartTime.Format(storage.TimeLayout),
		End:         e.EndTime.Format(storage.TimeLayout),
	}
}

func RuleToDTO(r recurrence.Rule) *RecurrenceDTO {
	dto := &RecurrenceDTO{Interval: r.Every.String(), Count: r.Count}
	if !r.Until.IsZero() {
		dto.Until = r.Until.Format(storage.TimeLayout)
	}
	return dto
}

func DTOToEvent(dto EventDTO) (event.Event, *recurrence.Rule, error) {
	start, err := time.ParseInLocation(storage.TimeLayout, dto.Start, time.Local)
	if err != nil {
		return event.Event{}, nil, err
	}
	end, err := time.ParseInLocation(storage.TimeLayout, dto.End, time.Local)
	if err != nil {
		return event.Event{}, nil, err
	}
	e := event.Event{
		ID:          dto.ID,
		Title:       dto.Title,
		Description: dto.Description,
		Location:    dto.Location,
		Category:    dto.Category,
		Attendees:   dto.Attendees,
		StartTime:   start,
		EndTime:     end,
	}

	if dto.Recurrence == nil {
		return e, nil, nil
	}
	rule := &recurrence.Rule{
		EventID: dto.ID,
		Every:   recurrence.ParseInterval(dto.Recurrence.Interval),
		Count:   dto.Recurrence.Count,
	}
	if dto.Recurrence.Until != "" {
		until, err := time.ParseInLocation(storage.TimeLayout, dto.Recurrence.Until, time.Local)
		if err != nil {
			return event.Event{}, nil, err
		}
		rule.Until = until
	}
	return e, rule, nil
}
