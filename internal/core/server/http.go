package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/solatis/fieldfilter/internal/core/api"
	"github.com/solatis/fieldfilter/internal/core/config"
	"github.com/solatis/fieldfilter/internal/types"
)

// maxBodyBytes caps request bodies; inline record counts are checked later.
const maxBodyBytes = 32 << 20

// HTTPServer serves the JSON query API.
type HTTPServer struct {
	server  *http.Server
	router  chi.Router
	service *api.QueryService
	config  config.ServerConfig
	logger  *slog.Logger
}

// NewHTTPServer builds the router:
//
//	GET  /healthz
//	POST /v1/query
//	GET  /v1/datasets
//	GET  /v1/datasets/{name}/fields
func NewHTTPServer(cfg config.ServerConfig, service *api.QueryService, logger *slog.Logger) (*HTTPServer, error) {
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &HTTPServer{service: service, config: cfg, logger: logger}
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.HTTPPort)),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *HTTPServer) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.config.RequestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Get("/datasets", s.handleListDatasets)
		r.Get("/datasets/{name}/fields", s.handleFields)
	})

	s.router = r
}

// ServeHTTP lets the server be mounted or exercised with httptest.
func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start listens on the configured address until Shutdown.
func (s *HTTPServer) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.server.Addr, err)
	}
	s.logger.Info("http listening", "addr", listener.Addr().String())
	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// requestLogger logs method, path, status and latency with slog.
func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		}
		if ww.Status() >= http.StatusInternalServerError {
			s.logger.Error("http request", attrs...)
			return
		}
		s.logger.Info("http request", attrs...)
	})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req api.QueryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large", err)
			return
		}
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	resp, err := s.service.Query(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, "query failed", err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	infos, err := s.service.Datasets(r.Context())
	if err != nil {
		s.respondServiceError(w, "failed to list datasets", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"datasets": infos})
}

func (s *HTTPServer) handleFields(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	fields, err := s.service.Fields(r.Context(), name)
	if err != nil {
		s.respondServiceError(w, "failed to load fields", err)
		return
	}

	// operators are included so clients can build rows without a local catalogue
	type fieldView struct {
		types.FieldDefinition
		Operators []types.Operator `json:"operators"`
	}
	views := make([]fieldView, len(fields))
	for i, f := range fields {
		views[i] = fieldView{FieldDefinition: f, Operators: types.LegalOperators(f.Type)}
	}
	respondJSON(w, http.StatusOK, map[string]any{"dataset": name, "fields": views})
}

func (s *HTTPServer) respondServiceError(w http.ResponseWriter, message string, err error) {
	code := api.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error(message, "error", err)
	}
	respondError(w, code, message, err)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]string{
		"error": message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
