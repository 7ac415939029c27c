// Package metrics exposes prometheus instrumentation for the match lifecycle.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	challenges     *prometheus.CounterVec
	reports        *prometheus.CounterVec
	resolutions    *prometheus.CounterVec
	sweepDuration  prometheus.Histogram
	sweepFailures  prometheus.Counter
	openChallenges prometheus.Gauge
}

func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		challenges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenges_total",
			Help:      "Challenges by final state",
		}, []string{"state"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Match reports by result (accepted or rejection reason)",
		}, []string{"result"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_resolutions_total",
			Help:      "Matches leaving pending, by terminal status and trigger",
		}, []string{"status", "trigger"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of stale match sweeps",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
		sweepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_match_failures_total",
			Help:      "Matches the sweep failed to resolve",
		}),
		openChallenges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_challenges",
			Help:      "Challenges waiting for the opponent",
		}),
	}

	m.registry.MustRegister(
		m.challenges,
		m.reports,
		m.resolutions,
		m.sweepDuration,
		m.sweepFailures,
		m.openChallenges,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ChallengeFinished(state string) {
	if m == nil {
		return
	}
	m.challenges.WithLabelValues(state).Inc()
}

func (m *Metrics) SetOpenChallenges(n int) {
	if m == nil {
		return
	}
	m.openChallenges.Set(float64(n))
}

func (m *Metrics) Report(result string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(result).Inc()
}

func (m *Metrics) Resolved(status, trigger string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(status, trigger).Inc()
}

func (m *Metrics) ObserveSweep(d time.Duration, failures int) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(d.Seconds())
	m.sweepFailures.Add(float64(failures))
}

type Logger interface {
	Error(format string, v ...interface{})
	Info(format string, v ...interface{})
}

// Server serves /metrics for the registry. It satisfies services.Service.
type Server struct {
	srv    *http.Server
	logger Logger
}

func NewServer(addr string, m *Metrics, logger Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	return &Server{
		srv:    &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		logger: logger,
	}
}

func (s *Server) Init() error {
	return nil
}

func (s *Server) Run(ctx context.Context) {
	s.logger.Info("metrics server listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("metrics server stopped: %v", err)
	}
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}
