package backup

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

type BackupRequest struct {
	Directory string `json:"directory,omitempty"`
}

type BackupResponse struct {
	Directory string `json:"directory"`
}

type RestoreRequest struct {
	Directory string `json:"directory"`
	Mode      string `json:"mode"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req BackupRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	dir, err := h.service.Backup(r.Context(), req.Directory)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(BackupResponse{Directory: dir}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	var req RestoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Directory == "" {
		http.Error(w, "directory is required", http.StatusBadRequest)
		return
	}
	mode := RestoreMode(req.Mode)
	if mode != RestoreReplace && mode != RestoreMerge {
		http.Error(w, "mode must be \"replace\" or \"merge\"", http.StatusBadRequest)
		return
	}

	if err := h.service.Restore(r.Context(), req.Directory, mode); err != nil {
		log.Errorf("restore from %s failed: %v", req.Directory, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
