package server

import (
	"net/http"
	"strings"

	"greenlaunch/pkg/domain"
)

type setRoleRequest struct {
	Role string `json:"role"`
}

// /api/admin/overview
func (s *Server) handleAdminOverview(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	totals, err := s.app.Overview()
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"totals": totals})
}

// /api/admin/users
func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	profiles, err := s.app.ListProfiles()
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": profiles})
}

// /api/admin/users/{uid}/role
func (s *Server) handleAdminUserByID(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	path := strings.TrimPrefix(r.URL.Path, "/api/admin/users/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "role" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPatch {
		methodNotAllowed(w)
		return
	}
	var req setRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	updated, err := s.app.SetRole(parts[0], domain.Role(req.Role))
	if err != nil {
		writeAppError(w, err)
		return
	}
	s.audit(r, "api.admin.set_role", "success",
		"admin_uid", profile.UID, "target_uid", parts[0], "role", req.Role)
	writeJSON(w, http.StatusOK, map[string]any{"profile": updated})
}

// /api/admin/courses
func (s *Server) handleAdminCourses(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	courses, err := s.app.ListCourses("", "")
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"courses": courses})
}

// /api/admin/projects?status=
func (s *Server) handleAdminProjects(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	projects, err := s.app.ListProjectsByStatus(domain.ProjectStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}
