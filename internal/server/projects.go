package server

import (
	"net/http"
	"strings"

	"greenlaunch/internal/app"
	"greenlaunch/pkg/domain"
)

type createProjectRequest struct {
	Title    string       `json:"title"`
	Type     string       `json:"type"`
	Stage    string       `json:"stage"`
	MentorID string       `json:"mentorId"`
	Forms    domain.Forms `json:"forms"`
}

type updateFormsRequest struct {
	Forms  domain.Forms `json:"forms"`
	Submit bool         `json:"submit"`
}

type feedbackRequest struct {
	DetailedFeedback   string `json:"detailedFeedback"`
	RequestCorrections bool   `json:"requestCorrections"`
}

type validateRequest struct {
	Status         string `json:"status"`
	Stage          string `json:"stage"`
	Recommendation string `json:"recommendation"`
}

// /api/projects
func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !requireRoles(w, profile, domain.RoleEntrepreneur) {
		return
	}
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	project, err := s.app.CreateProject(profile, app.CreateProjectInput{
		Title:    req.Title,
		Type:     domain.ProjectType(req.Type),
		Stage:    domain.ProjectStage(req.Stage),
		MentorID: req.MentorID,
		Forms:    req.Forms,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"project": project})
}

// /api/projects/my
func (s *Server) handleMyProjects(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	projects, err := s.app.ListMyProjects(profile)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// /api/projects/{id} and its sub-resources
func (s *Server) handleProjectByID(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	path := strings.TrimPrefix(r.URL.Path, "/api/projects/")
	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	if id == "" || id == "my" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 2 {
		switch parts[1] {
		case "forms":
			s.handleProjectForms(w, r, profile, id)
		case "upload":
			s.handleProjectUpload(w, r, profile, id)
		case "feedback":
			s.handleProjectFeedback(w, r, profile, id)
		case "validate":
			s.handleProjectValidate(w, r, profile, id)
		default:
			http.NotFound(w, r)
		}
		return
	}

	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	project, err := s.app.GetProject(profile, id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"project": project})
}

func (s *Server) handleProjectForms(w http.ResponseWriter, r *http.Request, profile domain.Profile, id string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}
	var req updateFormsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Submit && !s.allowRate(w, r, s.submitLimiter, "too many submissions") {
		s.audit(r, "api.project.submit", "rate_limited", "user_id", profile.UID)
		return
	}
	project, err := s.app.UpdateForms(id, profile.UID, req.Forms, req.Submit)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"project": project})
}

func (s *Server) handleProjectUpload(w http.ResponseWriter, r *http.Request, profile domain.Profile, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.uploadLimiter, "too many uploads") {
		s.audit(r, "api.project.upload", "rate_limited", "user_id", profile.UID)
		return
	}
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required (field: file)")
		return
	}
	defer file.Close()
	if !s.isExtensionAllowed(header.Filename) {
		writeError(w, http.StatusBadRequest, "unsupported file type")
		return
	}
	document, err := s.app.AttachDocument(r.Context(), id, profile.UID, header.Filename, file, header.Size)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"document": document})
}

func (s *Server) handleProjectFeedback(w http.ResponseWriter, r *http.Request, profile domain.Profile, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !requireRoles(w, profile, domain.RoleMentor, domain.RoleAdmin, domain.RoleBusinessSupport) {
		return
	}
	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	project, err := s.app.AddFeedback(profile, id, req.DetailedFeedback, req.RequestCorrections)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"project": project})
}

func (s *Server) handleProjectValidate(w http.ResponseWriter, r *http.Request, profile domain.Profile, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !requireRoles(w, profile, domain.RoleMentor, domain.RoleAdmin, domain.RoleBusinessSupport) {
		return
	}
	var req validateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	project, err := s.app.Validate(profile, id,
		domain.ProjectStatus(req.Status), domain.ProjectStage(req.Stage), req.Recommendation)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"project": project})
}
