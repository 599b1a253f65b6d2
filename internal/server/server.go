package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"lumira/internal/app"
	"lumira/internal/identity"
	"lumira/internal/ratelimit"
	"lumira/internal/util"
	"lumira/pkg/domain"
	"lumira/pkg/store"
)

const maxBodyBytes = 16 << 20 // data-URI image payloads can be large

// Config wires required dependencies for the HTTP server.
type Config struct {
	App            *app.App
	Identity       app.IdentityResolver
	CreateLimiter  *ratelimit.FixedWindowLimiter
	TrustForwarded bool
}

// Server exposes HTTP endpoints for the reading pipeline.
type Server struct {
	app            *app.App
	identity       app.IdentityResolver
	createLimiter  *ratelimit.FixedWindowLimiter
	trustForwarded bool
	mux            *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("server requires the app")
	}
	if cfg.Identity == nil {
		return nil, errors.New("server requires an identity resolver")
	}
	s := &Server{
		app:            cfg.App,
		identity:       cfg.Identity,
		createLimiter:  cfg.CreateLimiter,
		trustForwarded: cfg.TrustForwarded,
		mux:            http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler with the middleware chain applied.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(util.WithRequestID(util.WithRequestLog(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api/readings", s.handleReadings)
	s.mux.HandleFunc("/api/readings/", s.handleReadingByID)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createReadingRequest struct {
	ImageRef string `json:"imageRef"`
	Category string `json:"category"`
	Persona  string `json:"persona"`
	Mood     string `json:"mood"`
	Question string `json:"question"`
}

func (s *Server) handleReadings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateReading(w, r)
	case http.MethodGet:
		s.handleListReadings(w, r)
	default:
		// Benign acknowledgment so health probes and scanners do not
		// produce error noise.
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) handleCreateReading(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer credential")
		return
	}
	if s.createLimiter != nil && !s.createLimiter.Allow(util.ClientIP(r, s.trustForwarded)) {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}

	var req createReadingRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.ImageRef) == "" {
		writeError(w, http.StatusBadRequest, "imageRef is required")
		return
	}

	reading, err := s.app.CreateReading(r.Context(), token, app.CreateReadingInput{
		ImageRef: req.ImageRef,
		Tags: domain.ReadingTags{
			Category: strings.TrimSpace(req.Category),
			Persona:  strings.TrimSpace(req.Persona),
			Mood:     strings.TrimSpace(req.Mood),
			Question: strings.TrimSpace(req.Question),
		},
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": reading.ID})
}

func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	user, ok := s.resolveUser(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	readings, err := s.app.ListReadings(r.Context(), user, limit)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"readings": readings})
}

func (s *Server) handleReadingByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/readings/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "reading not found")
		return
	}
	user, ok := s.resolveUser(w, r)
	if !ok {
		return
	}
	reading, err := s.app.GetReading(r.Context(), user, id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (s *Server) resolveUser(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer credential")
		return domain.User{}, false
	}
	user, err := s.identity.Resolve(r.Context(), token)
	if err != nil {
		writeAppError(w, err)
		return domain.User{}, false
	}
	return user, true
}

func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, app.ErrImageRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "reading not found")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
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
