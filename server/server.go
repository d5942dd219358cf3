package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campana-ai/campana/audit"
	"github.com/campana-ai/campana/config"
	"github.com/campana-ai/campana/logger"
	"github.com/campana-ai/campana/workflow"
)

// ============================================================================
// HTTP API SERVER
// ============================================================================

// WorkflowRequest is the POST /api/v1/workflows payload.
type WorkflowRequest struct {
	Scenario string         `json:"scenario"`
	Input    map[string]any `json:"input"`
	Sequence []string       `json:"sequence,omitempty"`
}

// ScenarioInfo is one entry of the GET /api/v1/scenarios listing.
type ScenarioInfo struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server exposes workflow execution and audit analytics over HTTP.
type Server struct {
	config     config.ServerConfig
	engine     *workflow.Engine
	audits     *audit.Store
	httpServer *http.Server
	log        *slog.Logger
}

// New creates an HTTP server over the given workflow engine and audit store.
func New(cfg config.ServerConfig, engine *workflow.Engine, audits *audit.Store) *Server {
	return &Server{
		config: cfg,
		engine: engine,
		audits: audits,
		log:    logger.Get().With("component", "http_server"),
	}
}

// Start blocks serving HTTP until Stop is called or the listener fails.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("http server starting", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.log.Info("http server stopping")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}
	return nil
}

// Routes builds the API router. Exposed so tests can exercise handlers
// without a listener.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.loggingMiddleware)
	r.Use(corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/workflows", s.handleExecuteWorkflow)
		r.Get("/scenarios", s.handleListScenarios)
		r.Get("/analytics/{scenario}", s.handleAnalytics)
		r.Get("/reports/{scenario}", s.handleReport)
	})

	return r
}

func (s *Server) handleExecuteWorkflow(w http.ResponseWriter, r *http.Request) {
	var req WorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	defer r.Body.Close()

	if req.Scenario == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "scenario is required"})
		return
	}

	// Unknown scenarios still execute; agents fall back to their profile
	// defaults when no adaptation overrides exist.
	if _, known := config.ScenarioFor(req.Scenario); !known {
		s.log.Warn("executing unknown scenario", "scenario", req.Scenario)
	}

	run := s.engine.Execute(r.Context(), req.Scenario, req.Input, req.Sequence)
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	keys := config.ScenarioNames()
	scenarios := make([]ScenarioInfo, 0, len(keys))
	for _, key := range keys {
		profile, _ := config.ScenarioFor(key)
		scenarios = append(scenarios, ScenarioInfo{
			Key:         key,
			Name:        profile.Name,
			Description: profile.Description,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenarios": scenarios})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	scenario := chi.URLParam(r, "scenario")
	analytics := s.audits.Analytics(scenario)
	if analytics.TotalExecutions == 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("no executions recorded for scenario %q", scenario)})
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	scenario := chi.URLParam(r, "scenario")
	report, err := s.audits.ExportScenarioReport(scenario)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: fmt.Sprintf("failed to export report: %v", err)})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(report)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
