// Package server exposes expert search over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/poiesic/expertfind/core"
	"github.com/poiesic/expertfind/search"
	"github.com/poiesic/expertfind/storage"
	"github.com/poiesic/expertfind/telemetry"
)

// MaxK bounds the k a client may request.
const MaxK = 100

// Engine is the query surface served over HTTP.
// *expertfind.Engine implements it.
type Engine interface {
	Search(ctx context.Context, query string, k int) (*core.SearchResponse, error)
	Manifest() storage.Manifest
	Len() int
}

// errorHandler writes a response for err and reports whether it did.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server routes HTTP requests to an Engine.
type Server struct {
	engine        Engine
	metrics       *telemetry.Metrics
	gatherer      prometheus.Gatherer
	logger        *slog.Logger
	errorHandlers []errorHandler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics instruments requests and serves gatherer on /metrics.
func WithMetrics(metrics *telemetry.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = metrics
		s.gatherer = gatherer
	}
}

// New creates a server for engine.
func New(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		logger: slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(search.ErrEmptyQuery, http.StatusBadRequest),
		sentinelHandler(core.ErrEmbeddingUnavailable, http.StatusBadGateway),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout),
		sentinelHandler(context.Canceled, http.StatusServiceUnavailable),
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware())
	}

	r.Get("/search", s.handleSearchGet)
	r.Post("/search", s.handleSearchPost)
	r.Get("/index", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

type searchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

// handleSearchGet handles GET /search?q=...&k=...
func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	k := 0
	if raw := r.URL.Query().Get("k"); raw != "" {
		var err error
		k, err = strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Failure("k must be an integer"))
			return
		}
	}
	s.search(w, r, searchRequest{Query: r.URL.Query().Get("q"), K: k})
}

// handleSearchPost handles POST /search with a JSON body.
func (s *Server) handleSearchPost(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Failure("invalid request body: "+err.Error()))
		return
	}
	s.search(w, r, req)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, req searchRequest) {
	if req.K < 0 || req.K > MaxK {
		writeJSON(w, http.StatusBadRequest, Failure(fmt.Sprintf("k must be between 0 and %d", MaxK)))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, Failure(search.ErrEmptyQuery.Error()))
		return
	}

	resp, err := s.engine.Search(r.Context(), req.Query, req.K)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Success(resp))
}

// handleIndex handles GET /index.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Manifest())
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  StatusOK,
		"entries": s.engine.Len(),
	})
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := chiMiddleware.GetReqID(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			s.logger.Warn("query failed", "request_id", reqID, "err", err)
			return
		}
	}
	s.logger.Error("internal error", "request_id", reqID, "err", err)
	writeJSON(w, http.StatusInternalServerError, Failure("internal error"))
}

// sentinelHandler answers with status and the sentinel's own message, so
// upstream details stay in the log.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeJSON(w, status, Failure(sentinel.Error()))
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
