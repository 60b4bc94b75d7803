package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfalmeida/ironplan/internal/engine"
	"github.com/mfalmeida/ironplan/internal/models"
	"github.com/mfalmeida/ironplan/internal/storage"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	profile, err := s.db.FetchUserProfile(r.Context(), uid)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	profile.UserID = uid
	if !profile.Complete() {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "profile incomplete: experience, goal, and weekly_frequency (1-6) are required"})
		return
	}
	if err := s.db.UpsertUserProfile(r.Context(), profile); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	var groups []models.MuscleGroup
	if raw := r.URL.Query().Get("groups"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			g := models.MuscleGroup(strings.TrimSpace(part))
			if !g.IsValid() {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown muscle group: " + string(g)})
				return
			}
			groups = append(groups, g)
		}
	}
	activeOnly := r.URL.Query().Get("all") != "true"

	exercises, err := s.db.FetchExercises(r.Context(), groups, activeOnly)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	start, end, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sessions, err := s.db.FetchSessionsBetween(r.Context(), uid, start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}
	session, err := s.db.GetSession(r.Context(), sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	start, end, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	stats, err := s.db.GetSessionStats(r.Context(), uid, start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type generateRequest struct {
	Date string `json:"date,omitempty"`
}

func (s *Server) handleGenerateSession(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	date := time.Now()
	var req generateRequest
	if err := decodeOptional(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	session, err := s.gen.GenerateSession(r.Context(), uid, date)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type horizonRequest struct {
	Start string `json:"start,omitempty"`
	Days  int    `json:"days,omitempty"`
}

func (s *Server) handleGenerateHorizon(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	var req horizonRequest
	if err := decodeOptional(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	start := time.Now()
	if req.Start != "" {
		parsed, err := time.Parse("2006-01-02", req.Start)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start must be YYYY-MM-DD"})
			return
		}
		start = parsed
	}

	result, err := s.gen.GenerateHorizon(r.Context(), uid, start, req.Days)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type completeRequest struct {
	Feedback *models.Feedback `json:"feedback,omitempty"`
	RPE      *int             `json:"rpe,omitempty"`
}

func (s *Server) handleCompletePrescription(w http.ResponseWriter, r *http.Request) {
	prescriptionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid prescription ID"})
		return
	}
	var req completeRequest
	if err := decodeOptional(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Feedback != nil && req.RPE != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "feedback and rpe are mutually exclusive"})
		return
	}
	if req.Feedback != nil && !req.Feedback.IsValid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "feedback must be too_easy, on_point, or too_hard"})
		return
	}
	if req.RPE != nil && (*req.RPE < 1 || *req.RPE > 10) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rpe must be between 1 and 10"})
		return
	}

	prescription, err := s.db.RecordCompletion(r.Context(), prescriptionID, req.Feedback, req.RPE)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "prescription not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, prescription)
}

func (s *Server) handleUncompletePrescription(w http.ResponseWriter, r *http.Request) {
	prescriptionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid prescription ID"})
		return
	}
	if err := s.db.ClearCompletion(r.Context(), prescriptionID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "prescription not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reopened"})
}

// writeEngineError maps planner failures onto HTTP statuses: incomplete
// profiles and empty catalogs are client-fixable, everything else is a 500.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	var noEx *engine.NoExercisesError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
	case errors.Is(err, engine.ErrProfileIncomplete):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.As(err, &noEx):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		s.log.Error("generation error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeOptional parses a JSON body into v, treating an empty body as valid.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return errors.New("invalid JSON: " + err.Error())
}

func parseDateRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: the coming 30 days
		start = time.Now().AddDate(0, 0, -1)
		end = start.AddDate(0, 0, 31)
		return
	}

	start, err = time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("start must be YYYY-MM-DD")
	}

	if endStr == "" {
		end = start.AddDate(0, 0, 30)
		return
	}
	end, err = time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("end must be YYYY-MM-DD")
	}
	return
}
