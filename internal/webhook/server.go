package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mattjoyce/paperjet/internal/config"
	"github.com/mattjoyce/paperjet/internal/events"
	"github.com/mattjoyce/paperjet/internal/journal"
	"github.com/mattjoyce/paperjet/internal/log"
	"github.com/mattjoyce/paperjet/internal/provider"
	"github.com/mattjoyce/paperjet/internal/receipt"
	"github.com/mattjoyce/paperjet/internal/verify"
)

// Server is the webhook HTTP server.
type Server struct {
	config     config.ServerConfig
	registry   *provider.Registry
	layout     receipt.Layout
	dispatcher JobDispatcher
	jobs       JobLister // may be nil when the journal is disabled
	hub        *events.Hub
	logger     *slog.Logger
	server     *http.Server

	// now is the verifier clock. Swapped in tests for replay-window edges.
	now func() time.Time
}

// New creates a webhook server. jobs and hub may be nil; the corresponding
// routes degrade gracefully.
func New(cfg config.ServerConfig, registry *provider.Registry, layout receipt.Layout,
	dispatcher JobDispatcher, jobs JobLister, hub *events.Hub, logger *slog.Logger) *Server {
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = config.DefaultMaxBodySize
	}
	return &Server{
		config:     cfg,
		registry:   registry,
		layout:     layout,
		dispatcher: dispatcher,
		jobs:       jobs,
		hub:        hub,
		logger:     logger,
		now:        time.Now,
	}
}

// Start starts the HTTP server (blocking) and shuts it down when ctx ends.
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("webhook server starting", "listen", s.config.Listen, "providers", s.registry.Names())

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("webhook server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("webhook server error: %w", err)
	}
}

func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleHealth)
	r.Post("/webhooks/{provider}", s.handleWebhook)
	r.Get("/ws/preview", s.handlePreview)
	r.Get("/jobs", s.handleJobs)

	return r
}

// loggingMiddleware logs requests without bodies or header values; payloads
// and signatures stay out of the logs.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Message: "paperjet is running"})
}

// handleWebhook runs the full trust pipeline for one delivery.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	providerID := chi.URLParam(r, "provider")
	plog := log.WithProvider(providerID)

	limitedReader := io.LimitReader(r.Body, s.config.MaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to read request body")
		return
	}
	if int64(len(body)) > s.config.MaxBodySize {
		s.respondError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	spec, err := s.registry.Resolve(providerID)
	if err != nil {
		// Unknown and disabled providers get the same neutral ack so a
		// probe cannot map the installed integrations.
		plog.Warn("webhook for unavailable provider")
		s.respondJSON(w, http.StatusOK, WebhookResponse{Status: "received", Ignored: boolPtr(true)})
		return
	}

	if err := verify.Verify(spec.Scheme, r.Header, body, spec.Secret, s.now()); err != nil {
		// One generic response for every authentication failure; the
		// body must not reveal which check rejected the request.
		plog.Warn("webhook verification failed")
		s.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ev, err := provider.Normalize(spec, body)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrIgnored):
			plog.Debug("webhook ignored")
			s.respondJSON(w, http.StatusOK, WebhookResponse{Status: "received", Ignored: boolPtr(true)})
		case errors.Is(err, provider.ErrMalformedPayload):
			plog.Warn("webhook payload malformed")
			s.respondError(w, http.StatusBadRequest, "malformed payload")
		default:
			plog.Error("webhook normalization failed", "error", err)
			s.respondError(w, http.StatusBadRequest, "malformed payload")
		}
		return
	}

	job := receipt.Render(ev, s.layout)
	job.Provider = spec.ID

	jobID, err := s.dispatcher.Dispatch(ctx, job)
	if err != nil {
		// Print-hardware failures are ours to fix, not the provider's.
		// Acknowledge so upstream never retries into a dead printer.
		plog.Error("print dispatch failed",
			"ticket", ev.Identifier,
			"job_id", jobID,
			"error", err,
		)
		s.respondJSON(w, http.StatusOK, WebhookResponse{Status: "received", Printed: boolPtr(false), JobID: jobID})
		return
	}

	plog.Info("receipt printed", "ticket", ev.Identifier, "job_id", jobID)
	s.respondJSON(w, http.StatusOK, WebhookResponse{Status: "received", Printed: boolPtr(true), JobID: jobID})
}

// handleJobs lists recent print outcomes from the journal.
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		s.respondError(w, http.StatusNotFound, "journal disabled")
		return
	}
	entries, err := s.jobs.Recent(r.Context(), 50)
	if err != nil {
		s.logger.Error("failed to list jobs", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	s.respondJSON(w, http.StatusOK, entries)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}
