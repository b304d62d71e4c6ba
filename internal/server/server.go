package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"greenlaunch/internal/app"
	"greenlaunch/internal/ratelimit"
	"greenlaunch/internal/tools"
	"greenlaunch/internal/usertoken"
	"greenlaunch/internal/util"
	"greenlaunch/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                      *app.App
	Resolver                 *tools.Resolver
	TokenVerifier            *usertoken.Verifier
	RedisAddr                string
	RedisPassword            string
	SubmitRateLimitPerMinute int
	UploadRateLimitPerMinute int
	MaxUploadBytes           int64
	AllowedExtensions        []string
	TrustedProxyCIDRs        []string
	AllowedOrigins           []string
	// UploadDir enables static serving of disk-stored uploads under
	// /uploads/ when non-empty.
	UploadDir string
}

// Server exposes the platform's HTTP endpoints.
type Server struct {
	app               *app.App
	resolver          *tools.Resolver
	tokenVerifier     *usertoken.Verifier
	mux               *http.ServeMux
	maxUploadBytes    int64
	allowedExtensions map[string]struct{}
	submitLimiter     *ratelimit.FixedWindowLimiter
	uploadLimiter     *ratelimit.FixedWindowLimiter
	trustedProxies    *util.TrustedProxies
	allowedOrigins    []string
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	submitLimit := cfg.SubmitRateLimitPerMinute
	if submitLimit <= 0 {
		submitLimit = 30
	}
	uploadLimit := cfg.UploadRateLimitPerMinute
	if uploadLimit <= 0 {
		uploadLimit = 10
	}
	newLimiter := func(name string, limit int) (*ratelimit.FixedWindowLimiter, error) {
		prefix := "greenlaunch:api:ratelimit:" + name
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, limit, time.Minute)
		if err != nil {
			return nil, fmt.Errorf("init %s limiter: %w", name, err)
		}
		return limiter, nil
	}
	submitLimiter, err := newLimiter("submit", submitLimit)
	if err != nil {
		return nil, err
	}
	uploadLimiter, err := newLimiter("upload", uploadLimit)
	if err != nil {
		return nil, err
	}
	trusted, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		return nil, fmt.Errorf("parse trusted proxy cidrs: %w", err)
	}
	s := &Server{
		app:               cfg.App,
		resolver:          cfg.Resolver,
		tokenVerifier:     cfg.TokenVerifier,
		mux:               http.NewServeMux(),
		maxUploadBytes:    normalizeMaxBytes(cfg.MaxUploadBytes),
		allowedExtensions: normalizeExtensions(cfg.AllowedExtensions),
		submitLimiter:     submitLimiter,
		uploadLimiter:     uploadLimiter,
		trustedProxies:    trusted,
		allowedOrigins:    cfg.AllowedOrigins,
	}
	s.routes(cfg.UploadDir)
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(s.allowedOrigins, s.mux))
}

func (s *Server) routes(uploadDir string) {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// identity
	s.mux.Handle("/api/auth/me", s.withUser(s.handleMe))
	s.mux.Handle("/api/auth/register-profile", s.withUser(s.handleRegisterProfile))

	// projects
	s.mux.Handle("/api/projects", s.withUser(s.handleProjects))
	s.mux.Handle("/api/projects/my", s.withUser(s.handleMyProjects))
	s.mux.Handle("/api/projects/", s.withUser(s.handleProjectByID))

	// courses
	s.mux.Handle("/api/courses", s.withUser(s.handleCourses))
	s.mux.Handle("/api/courses/my/learning", s.withUser(s.handleMyLearning))
	s.mux.Handle("/api/courses/", s.withUser(s.handleCourseByID))

	// sessions
	s.mux.Handle("/api/sessions", s.withUser(s.handleSessions))
	s.mux.Handle("/api/sessions/my", s.withUser(s.handleMySessions))
	s.mux.Handle("/api/sessions/", s.withUser(s.handleSessionByID))

	// questionnaire tools
	s.mux.Handle("/api/tools", s.withUser(s.handleToolList))
	s.mux.Handle("/api/tools/", s.withUser(s.handleToolByKey))

	// shared resource uploads
	s.mux.Handle("/api/uploads/resource", s.withUser(s.handleResourceUpload))

	// admin
	s.mux.Handle("/api/admin/overview", s.adminOnly(s.handleAdminOverview))
	s.mux.Handle("/api/admin/users", s.adminOnly(s.handleAdminUsers))
	s.mux.Handle("/api/admin/users/", s.adminOnly(s.handleAdminUserByID))
	s.mux.Handle("/api/admin/courses", s.adminOnly(s.handleAdminCourses))
	s.mux.Handle("/api/admin/projects", s.adminOnly(s.handleAdminProjects))

	if uploadDir != "" {
		s.mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.Profile)

func (s *Server) withUser(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, ok := s.authorize(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, profile)
	})
}

func (s *Server) adminOnly(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, ok := s.authorize(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if profile.Role != domain.RoleAdmin {
			s.audit(r, "api.admin.authorize", "fail", "user_id", profile.UID, "reason", "forbidden")
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		s.audit(r, "api.admin.authorize", "success", "user_id", profile.UID)
		next(w, r, profile)
	})
}

func (s *Server) authorize(r *http.Request) (domain.Profile, bool) {
	token, ok := bearerToken(r)
	if !ok {
		s.audit(r, "api.token.verify", "fail", "reason", "missing_token")
		return domain.Profile{}, false
	}
	identity, err := s.tokenVerifier.Verify(token)
	if err != nil {
		s.audit(r, "api.token.verify", "fail", "reason", "invalid_signature_or_claims")
		return domain.Profile{}, false
	}
	profile, err := s.app.ResolveProfile(identity.UID, identity.Email, identity.Name)
	if err != nil {
		s.audit(r, "api.token.verify", "fail", "user_id", identity.UID, "reason", "profile_resolution_failed")
		return domain.Profile{}, false
	}
	s.audit(r, "api.token.verify", "success", "user_id", profile.UID)
	return profile, true
}

func requireRoles(w http.ResponseWriter, profile domain.Profile, roles ...domain.Role) bool {
	for _, role := range roles {
		if profile.Role == role {
			return true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden")
	return false
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeAppError maps application errors to their HTTP status; anything
// untyped becomes a 500 without leaking internals.
func writeAppError(w http.ResponseWriter, err error) {
	status := app.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("internal error", "error", err)
		msg = "internal error"
	}
	writeError(w, status, msg)
}

func normalizeMaxBytes(value int64) int64 {
	if value <= 0 {
		return 25 * 1024 * 1024
	}
	return value
}

func normalizeExtensions(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		exts = []string{".pdf", ".doc", ".docx", ".png", ".jpg", ".jpeg", ".xlsx", ".csv"}
	}
	out := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out[ext] = struct{}{}
	}
	return out
}

func (s *Server) isExtensionAllowed(filename string) bool {
	if len(s.allowedExtensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(filename))
	_, ok := s.allowedExtensions[ext]
	return ok
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r, s.trustedProxies),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	key := r.URL.Path + "|" + util.ClientIP(r, s.trustedProxies)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

// handleMe returns the caller's resolved profile.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
}

type registerProfileRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// handleRegisterProfile lets a new user pick their display name and an
// entrepreneur or mentor role.
func (s *Server) handleRegisterProfile(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req registerProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	updated, err := s.app.RegisterProfile(profile, req.Name, domain.Role(req.Role))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": updated})
}
