// Package server exposes a leaderboard store over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/verte-zerg/starcatch/internal/leaderboard"
	"github.com/verte-zerg/starcatch/internal/model"
)

const maxBodyBytes = 4 << 10

// Server handles leaderboard HTTP requests.
type Server struct {
	store   leaderboard.Store
	size    int
	logger  *log.Logger
	timeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger replaces the request logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// New returns a server over store that lists at most size entries.
func New(store leaderboard.Store, size int, opts ...Option) *Server {
	if size <= 0 {
		size = leaderboard.DefaultSize
	}
	s := &Server{
		store:   store,
		size:    size,
		logger:  log.New(os.Stderr, "[starcatch] ", log.LstdFlags),
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScoresResponse is the body of score list responses.
type ScoresResponse struct {
	Entries []model.Entry `json:"entries"`
}

// ScoreRequest is the body of a score submission.
type ScoreRequest struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.logger, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/scores", s.handleListScores)
		r.Post("/scores", s.handleAddScore)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/v1/scores?limit=N
func (s *Server) handleListScores(w http.ResponseWriter, r *http.Request) {
	limit := qInt(r, "limit", s.size)
	if limit <= 0 || limit > s.size {
		limit = s.size
	}
	entries, err := s.store.TopScores(r.Context(), limit)
	if err != nil {
		s.logger.Printf("list scores: %v", err)
		writeJSON(w, http.StatusInternalServerError, errObj("SERVER_ERROR", "failed to load scores", ""))
		return
	}
	writeJSON(w, http.StatusOK, ScoresResponse{Entries: nonNil(entries)})
}

// POST /api/v1/scores
func (s *Server) handleAddScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errObj("BAD_REQUEST", "invalid JSON", ""))
		return
	}

	ctx := r.Context()
	if err := s.store.AddScore(ctx, req.Name, req.Score); err != nil {
		switch {
		case errors.Is(err, leaderboard.ErrInvalidName):
			writeJSON(w, http.StatusUnprocessableEntity, errObj("VALIDATION_ERROR", err.Error(), "name"))
		case errors.Is(err, leaderboard.ErrInvalidScore):
			writeJSON(w, http.StatusUnprocessableEntity, errObj("VALIDATION_ERROR", err.Error(), "score"))
		default:
			s.logger.Printf("add score: %v", err)
			writeJSON(w, http.StatusInternalServerError, errObj("SERVER_ERROR", "failed to save score", ""))
		}
		return
	}

	entries, err := s.store.TopScores(ctx, s.size)
	if err != nil {
		s.logger.Printf("reload scores: %v", err)
		writeJSON(w, http.StatusInternalServerError, errObj("SERVER_ERROR", "failed to load scores", ""))
		return
	}
	writeJSON(w, http.StatusCreated, ScoresResponse{Entries: nonNil(entries)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errObj(code, msg, field string) map[string]any {
	body := map[string]any{
		"code":    code,
		"message": msg,
	}
	if field != "" {
		body["field"] = field
	}
	return map[string]any{"error": body}
}

func qInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return i
}

func nonNil(entries []model.Entry) []model.Entry {
	if entries == nil {
		return []model.Entry{}
	}
	return entries
}
