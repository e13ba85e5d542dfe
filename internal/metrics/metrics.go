// Package metrics exposes Prometheus metrics for commands, validations, AI
// calls, exercise progress and the HTTP server.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/darwinyusef/termsim/internal/events"
	"github.com/darwinyusef/termsim/pkg/termsim"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "termsim"

// Recorder owns a registry and every termsim metric registered on it.
// It satisfies the observer interfaces of the shell, validator and ai
// packages.
type Recorder struct {
	registry *prometheus.Registry

	commands        *prometheus.CounterVec
	validations     *prometheus.CounterVec
	validationTime  *prometheus.HistogramVec
	aiCalls         *prometheus.CounterVec
	aiLatency       prometheus.Histogram
	exerciseEvents  *prometheus.CounterVec
	pointsAwarded   prometheus.Counter
	httpRequests    *prometheus.CounterVec
	httpRequestTime *prometheus.HistogramVec
}

// NewRecorder registers the metrics on a fresh registry, along with the Go
// runtime and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		commands: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands dispatched by the shell.",
		}, []string{"command", "known"}),
		validations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Step validations by kind and outcome.",
		}, []string{"kind", "outcome"}),
		validationTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Time spent validating a submission.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"kind"}),
		aiCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_calls_total",
			Help:      "Calls to the AI validation service.",
		}, []string{"outcome"}),
		aiLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ai_call_duration_seconds",
			Help:      "AI validation call latency, retries included.",
			Buckets:   prometheus.DefBuckets,
		}),
		exerciseEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exercise_events_total",
			Help:      "Exercise events by type.",
		}, []string{"type"}),
		pointsAwarded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_awarded_total",
			Help:      "Points awarded for completed steps.",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "route", "status"}),
		httpRequestTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// CommandExecuted counts a dispatched command.
func (r *Recorder) CommandExecuted(name string, known bool) {
	if !known {
		name = "unknown"
	}
	r.commands.WithLabelValues(name, strconv.FormatBool(known)).Inc()
}

// ValidationCompleted counts a validation and records its duration.
func (r *Recorder) ValidationCompleted(kind termsim.ValidationKind, correct bool, elapsed time.Duration) {
	r.validations.WithLabelValues(string(kind), outcome(correct)).Inc()
	r.validationTime.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

// AICallCompleted counts an AI call and records its latency.
func (r *Recorder) AICallCompleted(elapsed time.Duration, err error) {
	r.aiCalls.WithLabelValues(outcome(err == nil)).Inc()
	r.aiLatency.Observe(elapsed.Seconds())
}

// Subscribe counts every event published on bus. It returns the
// unsubscribe function.
func (r *Recorder) Subscribe(bus *events.Bus) func() {
	return bus.SubscribeAll(func(_ context.Context, e events.Event) {
		r.exerciseEvents.WithLabelValues(string(e.Type)).Inc()
		if done, ok := e.Payload.(events.StepCompleted); ok {
			r.pointsAwarded.Add(float64(done.Points))
		}
	})
}

// Middleware records request counts and durations under route, a fixed
// label so that path parameters do not explode cardinality.
func (r *Recorder) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, req)
		r.httpRequests.WithLabelValues(req.Method, route, strconv.Itoa(sw.status)).Inc()
		r.httpRequestTime.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func outcome(ok bool) string {
	if ok {
		return "correct"
	}
	return "incorrect"
}
