package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"dastarkhan/internal/availability"
	"dastarkhan/internal/metrics"
	"dastarkhan/internal/model"

	"github.com/go-chi/chi/v5"
)

// ToggleRequest is the request body for POST /api/stores/availability.
type ToggleRequest struct {
	StoreID         string `json:"store_id"`
	Action          string `json:"action"`                     // manual_open | manual_close | update_manual_lock
	ClosureType     string `json:"closure_type,omitempty"`     // temporary | today | manual_hold
	DurationMinutes int    `json:"duration_minutes,omitempty"` // temporary closures only
	Reason          string `json:"reason,omitempty"`
	Enabled         *bool  `json:"enabled,omitempty"` // update_manual_lock only
}

// handleGetAvailability returns the reconciled availability view for a store.
// GET /api/stores/{storeID}/availability
func (s *Server) handleGetAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("get_availability")

	publicID := chi.URLParam(r, "storeID")
	if publicID == "" {
		writeError(w, http.StatusBadRequest, "store id is required")
		return
	}

	var cached availability.StatusView
	if s.cache.GetAvailability(r.Context(), publicID, &cached) {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	view, err := s.engine.Status(r.Context(), publicID)
	if err != nil {
		s.respondEngineError(w, r, err)
		return
	}

	s.cache.SetAvailability(r.Context(), publicID, view)
	writeJSON(w, http.StatusOK, view)
}

// handleToggleAvailability applies a merchant availability action.
// POST /api/stores/availability
func (s *Server) handleToggleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("toggle_availability")

	if !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "too many availability changes, retry later")
		return
	}

	var req ToggleRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.StoreID == "" {
		writeError(w, http.StatusBadRequest, "store_id is required")
		return
	}

	actor := r.Header.Get("X-Actor")

	var (
		view *availability.StatusView
		err  error
	)
	switch req.Action {
	case "manual_open":
		view, err = s.engine.Open(r.Context(), req.StoreID, actor)
	case "manual_close":
		view, err = s.engine.Close(r.Context(), req.StoreID, model.ClosureKind(req.ClosureType), req.DurationMinutes, req.Reason, actor)
	case "update_manual_lock":
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required for update_manual_lock")
			return
		}
		view, err = s.engine.SetManualLock(r.Context(), req.StoreID, *req.Enabled, actor)
	default:
		writeError(w, http.StatusBadRequest, "unknown action; expected manual_open, manual_close or update_manual_lock")
		return
	}
	if err != nil {
		s.respondEngineError(w, r, err)
		return
	}

	s.cache.InvalidateAvailability(r.Context(), req.StoreID)
	writeJSON(w, http.StatusOK, view)
}

// handleStatusLogExport streams an Excel workbook of every availability table.
// GET /api/admin/status-log/export
func (s *Server) handleStatusLogExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("status_log_export")

	if s.audit == nil {
		writeError(w, http.StatusServiceUnavailable, "export is not configured")
		return
	}

	filename := "availability_" + time.Now().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	if err := s.audit.ExportTo(r.Context(), w); err != nil {
		s.log.Error().Err(err).Msg("status log export failed")
	}
}

func (s *Server) respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *availability.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, availability.ErrStoreNotFound):
		writeError(w, http.StatusNotFound, "store not found")
	default:
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("availability request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
