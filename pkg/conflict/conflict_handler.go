package conflict

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/chrona/chrona/internal/rest"
	"github.com/chrona/chrona/pkg/event"
	"github.com/chrona/chrona/pkg/recurrence"
	"github.com/chrona/chrona/pkg/storage"
)

// CheckRequest describes a candidate event, with an optional recurrence,
// to test against the stored calendar. The id is excluded from the check so
// an edited event does not collide with its own stored version.
type CheckRequest struct {
	ID       int    `json:"id,omitempty"`
	Start    string `json:"startDateTime"`
	End      string `json:"endDateTime"`
	Interval string `json:"interval,omitempty"`
	Count    int    `json:"count,omitempty"`
	Until    string `json:"until,omitempty"`
}

type CheckResponse struct {
	Conflict bool `json:"conflict"`
}

type Handler struct {
	detector *Detector
}

func NewHandler(detector *Detector) *Handler {
	return &Handler{detector: detector}
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start, err := time.ParseInLocation(storage.TimeLayout, req.Start, time.Local)
	if err != nil {
		writeBadTime(w, "startDateTime")
		return
	}
	end, err := time.ParseInLocation(storage.TimeLayout, req.End, time.Local)
	if err != nil {
		writeBadTime(w, "endDateTime")
		return
	}
	candidate := event.Event{ID: req.ID, StartTime: start, EndTime: end}
	candidate.Normalize()

	var rule *recurrence.Rule
	if req.Interval != "" {
		rule = &recurrence.Rule{
			EventID: req.ID,
			Every:   recurrence.ParseInterval(req.Interval),
			Count:   req.Count,
		}
		if req.Until != "" {
			until, err := time.ParseInLocation(storage.TimeLayout, req.Until, time.Local)
			if err != nil {
				writeBadTime(w, "until")
				return
			}
			rule.Until = until
		}
	}

	conflicting, err := h.detector.Check(r.Context(), candidate, rule)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(CheckResponse{Conflict: conflicting}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeBadTime(w http.ResponseWriter, field string) {
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error:   "invalid " + field,
		Details: "expected format " + storage.TimeLayout,
	})
}
