package server

import (
	"fmt"
	"net/http"
	"strings"

	"greenlaunch/internal/tools"
	"greenlaunch/pkg/domain"
)

type toolAnswersRequest struct {
	Answers tools.Answers      `json:"answers"`
	Counts  tools.RepeatCounts `json:"repeatCounts"`
}

// /api/tools
func (s *Server) handleToolList(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	projects, err := s.app.ListMyProjects(profile)
	if err != nil {
		writeAppError(w, err)
		return
	}
	summaries, err := s.resolver.ProgressList(profile.UID, projects)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": summaries})
}

// /api/tools/{key} and /api/tools/{key}/export
func (s *Server) handleToolByKey(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	path := strings.TrimPrefix(r.URL.Path, "/api/tools/")
	parts := strings.SplitN(path, "/", 2)
	key := parts[0]
	if key == "" {
		http.NotFound(w, r)
		return
	}
	if len(parts) == 2 {
		if parts[1] != "export" {
			http.NotFound(w, r)
			return
		}
		s.handleToolExport(w, r, profile, key)
		return
	}

	tool, ok := tools.ByKey(key)
	if !ok {
		writeError(w, http.StatusNotFound, "tool not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		projects, err := s.app.ListMyProjects(profile)
		if err != nil {
			writeAppError(w, err)
			return
		}
		res, err := s.resolver.Resolve(profile.UID, key, projects)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"tool":         tool,
			"answers":      res.Answers,
			"repeatCounts": res.Counts,
			"source":       res.Source,
			"projectId":    res.ProjectID,
			"progress":     tool.Progress(res.Answers, res.Counts),
		})
	case http.MethodPut:
		var req toolAnswersRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		projects, err := s.app.ListMyProjects(profile)
		if err != nil {
			writeAppError(w, err)
			return
		}
		source, err := s.resolver.Persist(profile.UID, key, projects, req.Answers, req.Counts)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"source":   source,
			"progress": tool.Progress(req.Answers, req.Counts),
		})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleToolExport(w http.ResponseWriter, r *http.Request, profile domain.Profile, key string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	tool, ok := tools.ByKey(key)
	if !ok {
		writeError(w, http.StatusNotFound, "tool not found")
		return
	}
	if !tool.Exportable {
		writeError(w, http.StatusBadRequest, "tool does not support export")
		return
	}
	projects, err := s.app.ListMyProjects(profile)
	if err != nil {
		writeAppError(w, err)
		return
	}
	payload, err := s.resolver.Export(profile.UID, key, projects)
	if err != nil {
		writeAppError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", key+"-export.json"))
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}
