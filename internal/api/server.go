// Package api exposes the HTTP interface for the ingestion service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/musicweb/listing-scout/internal/config"
	"github.com/musicweb/listing-scout/internal/listing"
	"github.com/musicweb/listing-scout/internal/metrics"
)

// Submitter runs the ingestion pipeline for one submission.
type Submitter interface {
	Submit(ctx context.Context, req listing.SubmissionRequest) (string, error)
}

// Server wires HTTP handlers to the ingestion service and store.
type Server struct {
	router    chi.Router
	submitter Submitter
	store     listing.Store
	cfg       config.Config
	logger    *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(submitter Submitter, store listing.Store, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	s := &Server{
		submitter: submitter,
		store:     store,
		cfg:       cfg,
		logger:    logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/submissions", s.submitListing)
		r.Get("/listings", s.getListings)
		r.Get("/stats", s.getStats)
		r.Post("/stats/hit", s.recordHit)
		r.Group(func(r chi.Router) {
			if cfg.Auth.Enabled {
				r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
			}
			r.Delete("/listings/{id}", s.deleteListing)
		})
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "store unreachable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) submitListing(w http.ResponseWriter, r *http.Request) {
	var req listing.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	// Counters come from an untrusted bulk client; clamp nonsense values.
	if req.CurrentCount < 0 {
		req.CurrentCount = 0
	}
	if req.TotalCount < 0 {
		req.TotalCount = 0
	}

	title, err := s.submitter.Submit(r.Context(), req)
	if err != nil {
		s.writeError(w, statusForError(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message":      "SUCCESS",
		"scoutedTitle": title,
	})
}

func (s *Server) getListings(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListListings(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to fetch listings")
		return
	}
	if records == nil {
		records = []listing.Record{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"items": records})
}

func (s *Server) deleteListing(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, "missing item id")
		return
	}
	if err := s.store.DeleteListing(r.Context(), id); err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "item not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "failed to delete listing")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	total, err := s.store.TotalHits(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to fetch stats")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int64{"total": total})
}

func (s *Server) recordHit(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RecordHit(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to record hit")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// statusForError maps pipeline errors to HTTP status codes.
func statusForError(err error) int {
	var persistErr *listing.PersistenceError
	switch {
	case errors.Is(err, listing.ErrMissingField):
		return http.StatusBadRequest
	case errors.Is(err, listing.ErrMailerNotConfigured):
		return http.StatusInternalServerError
	case errors.As(err, &persistErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"message": msg})
}
