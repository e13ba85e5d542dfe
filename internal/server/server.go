// Package server exposes an exercise source over HTTP so that remote
// clients can fetch exercises with exercises.HTTPSource.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/darwinyusef/termsim/internal/exercises"
	"github.com/darwinyusef/termsim/internal/metrics"
	"github.com/darwinyusef/termsim/pkg/termsim"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server serves the exercise API.
type Server struct {
	source   termsim.ExerciseSource
	logger   termsim.Logger
	recorder *metrics.Recorder
	version  string
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records request metrics and serves them on /metrics.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

// WithVersion sets the version reported by /healthz.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New creates a server over source.
func New(source termsim.ExerciseSource, logger termsim.Logger, opts ...Option) *Server {
	if source == nil {
		panic("exercise source cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	s := &Server{source: source, logger: logger, version: "dev"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.route(mux, "GET /healthz", s.handleHealth)
	s.route(mux, "GET /api/exercises", s.handleList)
	s.route(mux, "GET /api/exercises/{id}", s.handleGet)
	s.route(mux, "GET /api/exercise", s.handleFind)
	if s.recorder != nil {
		mux.Handle("GET /metrics", s.recorder.Handler())
	}
	return s.logRequests(cors(mux))
}

func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	var handler http.Handler = h
	if s.recorder != nil {
		_, path, _ := strings.Cut(pattern, " ")
		handler = s.recorder.Middleware(path, handler)
	}
	mux.Handle(pattern, handler)
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Exercise server listening on http://%s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Verbose("Shutting down exercise server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.source.List(r.Context())
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	if list == nil {
		list = []termsim.ExerciseSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ex, err := s.source.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises.Document{Exercise: ex})
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := termsim.ExerciseQuery{
		Topic: q.Get("topic"),
		Seed:  q.Get("seed"),
		User:  q.Get("user"),
	}
	if level := q.Get("level"); level != "" {
		n, err := strconv.Atoi(level)
		if err != nil {
			n = -1 // matches no difficulty
		}
		query.Level = n
	}

	ex, err := s.source.Find(r.Context(), query)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises.Document{Exercise: ex})
}

func (s *Server) sendError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, exercises.ErrTopicRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Topic parameter is required"})
	case errors.Is(err, termsim.ErrExerciseNotFound):
		msg := "Exercise not found"
		if r.URL.Path == "/api/exercise" {
			msg = "Exercise not found for the given parameters"
		}
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msg})
	default:
		s.logger.Error("%s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r)
		s.logger.Verbose("%s %s (%s) request_id=%s", r.Method, r.URL.RequestURI(), time.Since(start).Round(time.Microsecond), requestID)
	})
}
