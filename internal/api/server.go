package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"gofit/adapters/report"
	"gofit/app"
	"gofit/internal"
	"gofit/internal/config"
	"gofit/internal/errors"
	"gofit/models"
)

// Server exposes the fit service over HTTP with JSON bodies
type Server struct {
	router   *chi.Mux
	service  *app.FitService
	renderer *report.Renderer
	defaults config.BootstrapConfig
	logger   *internal.Logger
}

// NewServer creates an API server around the fit service
func NewServer(service *app.FitService, defaults config.BootstrapConfig, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.NewNopLogger()
	}

	s := &Server{
		router:   chi.NewRouter(),
		service:  service,
		renderer: report.NewRenderer(),
		defaults: defaults,
		logger:   logger,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the configured HTTP handler
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestID)
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Post("/api/evaluate", s.handleEvaluate)
	s.router.Post("/api/bootstrap", s.handleBootstrap)
	s.router.Post("/api/report", s.handleReport)
}

// requestID tags every request with a fresh id for log correlation
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var def models.AnalysisDef
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		s.writeError(w, errors.InvalidInput("request body is not a valid analysis definition"))
		return
	}

	result, err := s.service.Evaluate(def)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	var def models.AnalysisDef
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		s.writeError(w, errors.InvalidInput("request body is not a valid analysis definition"))
		return
	}

	datasets := s.defaults.Datasets
	if raw := r.URL.Query().Get("datasets"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || parsed == 0 {
			s.writeError(w, errors.InvalidInput("datasets must be a positive integer"))
			return
		}
		datasets = uint(parsed)
	}

	workers := s.defaults.Workers
	if raw := r.URL.Query().Get("workers"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeError(w, errors.InvalidInput("workers must be a positive integer"))
			return
		}
		workers = parsed
	}

	result, err := s.service.Bootstrap(r.Context(), def, datasets, workers)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleReport evaluates the analysis and responds with a rendered report;
// format=html switches from markdown to HTML.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var def models.AnalysisDef
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		s.writeError(w, errors.InvalidInput("request body is not a valid analysis definition"))
		return
	}

	result, err := s.service.Evaluate(def)
	if err != nil {
		s.writeError(w, err)
		return
	}

	md := s.renderer.EvaluationMarkdown(result)
	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(s.renderer.HTML(md))
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(md))
}

// errorResponse is the JSON shape of every error reply
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)

	status := http.StatusInternalServerError
	switch code {
	case errors.CodeInvalidInput, errors.CodeNameFormat, errors.CodeConfiguration, errors.CodeCalibrationMismatch:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeUnsupportedOperation:
		status = http.StatusUnprocessableEntity
	}

	s.logger.Warn("api: request failed with %s: %v", code, err)
	s.writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("api: encoding response: %v", err)
	}
}
