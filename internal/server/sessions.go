package server

import (
	"net/http"
	"strings"
	"time"

	"greenlaunch/internal/app"
	"greenlaunch/pkg/domain"
)

type sessionRequest struct {
	EntrepreneurID string `json:"entrepreneurId"`
	Topic          string `json:"topic"`
	StartAt        string `json:"startAt"`
	EndAt          string `json:"endAt"`
	MeetingLink    string `json:"meetingLink"`
	Notes          string `json:"notes"`
}

type sessionPatchRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

// /api/sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !requireRoles(w, profile, domain.RoleMentor, domain.RoleAdmin) {
		return
	}
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	startAt, err := parseSessionTime(req.StartAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "startAt must be RFC 3339")
		return
	}
	endAt, err := parseSessionTime(req.EndAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "endAt must be RFC 3339")
		return
	}
	session, err := s.app.CreateSession(r.Context(), profile, app.SessionInput{
		EntrepreneurID: req.EntrepreneurID,
		Topic:          req.Topic,
		StartAt:        startAt,
		EndAt:          endAt,
		MeetingLink:    req.MeetingLink,
		Notes:          req.Notes,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"session": session})
}

// /api/sessions/my
func (s *Server) handleMySessions(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	sessions, err := s.app.ListMySessions(profile)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// /api/sessions/{id}
func (s *Server) handleSessionByID(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	id := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	if id == "" || id == "my" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPatch {
		methodNotAllowed(w)
		return
	}
	var req sessionPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	patch := app.SessionPatch{Notes: req.Notes}
	if req.Status != nil {
		status := domain.SessionStatus(*req.Status)
		patch.Status = &status
	}
	session, err := s.app.PatchSession(profile, id, patch)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": session})
}

func parseSessionTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}
