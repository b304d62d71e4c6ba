package server

import (
	"net/http"
	"strings"

	"greenlaunch/internal/app"
	"greenlaunch/pkg/domain"
)

type courseRequest struct {
	Title        string                `json:"title"`
	Description  *string               `json:"description"`
	Track        *string               `json:"track"`
	Level        *string               `json:"level"`
	LearningPath *string               `json:"learningPath"`
	Modules      []domain.CourseModule `json:"modules"`
}

func (r courseRequest) input() app.CourseInput {
	return app.CourseInput{
		Title:        r.Title,
		Description:  r.Description,
		Track:        r.Track,
		Level:        r.Level,
		LearningPath: r.LearningPath,
		Modules:      r.Modules,
	}
}

type progressRequest struct {
	ModulesCompleted []int `json:"modulesCompleted"`
}

type quizSubmitRequest struct {
	ModuleIndex int   `json:"moduleIndex"`
	Answers     []int `json:"answers"`
}

// /api/courses
func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	switch r.Method {
	case http.MethodGet:
		courses, err := s.app.ListCourses(r.URL.Query().Get("track"), r.URL.Query().Get("level"))
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"courses": courses})
	case http.MethodPost:
		if !requireRoles(w, profile, domain.RoleMentor, domain.RoleAdmin) {
			return
		}
		var req courseRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		course, err := s.app.CreateCourse(profile, req.input())
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"course": course})
	default:
		methodNotAllowed(w)
	}
}

// /api/courses/my/learning
// Entrepreneurs get their enrollments joined with courses, mentors their
// own courses, staff the whole catalog.
func (s *Server) handleMyLearning(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	switch profile.Role {
	case domain.RoleEntrepreneur:
		entries, err := s.app.MyLearning(profile.UID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"learning": entries})
	case domain.RoleMentor:
		courses, err := s.app.MyCourses(profile.UID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"courses": courses})
	default:
		courses, err := s.app.ListCourses("", "")
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"courses": courses})
	}
}

// /api/courses/{id} and its sub-resources
func (s *Server) handleCourseByID(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	path := strings.TrimPrefix(r.URL.Path, "/api/courses/")
	parts := strings.Split(path, "/")
	id := parts[0]
	if id == "" || id == "my" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		if !requireRoles(w, profile, domain.RoleMentor, domain.RoleAdmin) {
			return
		}
		var req courseRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		course, err := s.app.UpdateCourse(profile, id, req.input())
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"course": course})
		return
	}

	sub := strings.Join(parts[1:], "/")
	switch sub {
	case "enroll":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		if !requireRoles(w, profile, domain.RoleEntrepreneur) {
			return
		}
		enrollment, err := s.app.Enroll(profile.UID, id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"enrollment": enrollment})
	case "progress":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		if !requireRoles(w, profile, domain.RoleEntrepreneur) {
			return
		}
		var req progressRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		enrollment, err := s.app.SaveProgress(profile.UID, id, req.ModulesCompleted)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"enrollment": enrollment})
	case "quiz/submit":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		if !requireRoles(w, profile, domain.RoleEntrepreneur) {
			return
		}
		var req quizSubmitRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		result, err := s.app.SubmitQuiz(profile.UID, id, req.ModuleIndex, req.Answers)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"result": result})
	default:
		http.NotFound(w, r)
	}
}
