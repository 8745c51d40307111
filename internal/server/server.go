// Package server exposes the Fibonacci and FizzBuzz computations over HTTP,
// with request statistics and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/fizzfib/internal/config"
	"github.com/agbru/fizzfib/internal/fibonacci"
	"github.com/agbru/fizzfib/internal/fizzbuzz"
	"github.com/agbru/fizzfib/internal/logging"
	"github.com/agbru/fizzfib/internal/metrics"
	"github.com/agbru/fizzfib/internal/stats"
	"github.com/agbru/fizzfib/internal/sysmon"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

var tracer = otel.Tracer("github.com/agbru/fizzfib/internal/server")

// Server serves the HTTP API.
type Server struct {
	factory  fibonacci.CalculatorFactory
	stats    stats.Service
	cfg      config.AppConfig
	security SecurityConfig
	metrics  *Metrics
	logger   logging.Logger
	started  time.Time
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and stats failures.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithSecurityConfig replaces the whole security configuration, MaxNValue
// included.
func WithSecurityConfig(c SecurityConfig) Option {
	return func(s *Server) { s.security = c }
}

// NewServer creates a server. cfg supplies the default algorithm, the
// per-request timeout and the MaxN limit.
func NewServer(factory fibonacci.CalculatorFactory, st stats.Service, cfg config.AppConfig, opts ...Option) *Server {
	s := &Server{
		factory:  factory,
		stats:    st,
		cfg:      cfg,
		security: DefaultSecurityConfig(),
		metrics:  NewMetrics(),
		logger:   logging.Nop(),
		started:  time.Now(),
	}
	if cfg.MaxN > 0 {
		s.security.MaxNValue = cfg.MaxN
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed and instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	routes := map[string]http.HandlerFunc{
		"/fibonacci": s.methodGuard(s.handleFibonacci),
		"/fizzbuzz":  s.methodGuard(s.handleFizzBuzz),
		"/stats":     s.methodGuard(s.handleStats),
		"/health":    s.methodGuard(s.handleHealth),
		"/metrics":   s.handleMetrics,
	}
	for path, h := range routes {
		mux.HandleFunc(path, SecurityMiddleware(s.security, s.metricsMiddleware(s.traced(path, h))))
	}
	return mux
}

// ListenAndServe serves on cfg.Addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", logging.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// traced wraps a handler in a server span named after the route.
func (s *Server) traced(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", route),
			))
		defer span.End()
		next(w, r.WithContext(ctx))
	}
}

// FibonacciResponse is the body of GET /fibonacci.
type FibonacciResponse struct {
	N          uint64  `json:"n"`
	Algorithm  string  `json:"algorithm"`
	Value      string  `json:"value"`
	DurationMS float64 `json:"duration_ms"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleFibonacci(w http.ResponseWriter, r *http.Request) {
	n, err := parseN(r, config.DefaultFibonacciN, s.security.MaxNValue)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	algo := r.URL.Query().Get("algo")
	if algo == "" {
		algo = s.cfg.Algo
	}
	if algo == "" || algo == config.AlgoAll {
		algo = fibonacci.DefaultAlgorithm
	}
	calc, err := s.factory.Get(algo)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := calc.Calculate(ctx, nil, 0, n, s.cfg.ToCalculationOptions())
	duration := time.Since(start)
	if err != nil {
		trace.SpanFromContext(ctx).SetStatus(codes.Error, err.Error())
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		s.logger.Error("calculation failed", err, logging.Uint64("n", n), logging.String("algo", algo))
		s.writeError(w, status, err.Error())
		return
	}

	s.record(ctx, stats.Key{Task: stats.TaskFibonacci, N: n})
	s.writeJSON(w, http.StatusOK, FibonacciResponse{
		N:          n,
		Algorithm:  calc.Name(),
		Value:      result.String(),
		DurationMS: float64(duration.Microseconds()) / 1000,
	})
}

func (s *Server) handleFizzBuzz(w http.ResponseWriter, r *http.Request) {
	n, err := parseN(r, config.DefaultFizzBuzzN, s.security.MaxNValue)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.record(r.Context(), stats.Key{Task: stats.TaskFizzBuzz, N: n})

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := fizzbuzz.WriteToContext(r.Context(), w, int(n)); err != nil {
		s.logger.Warn("fizzbuzz response interrupted", logging.Err(err))
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	entry, err := s.stats.MostFrequent(r.Context())
	if err != nil {
		s.logger.Error("stats query failed", err)
		s.writeError(w, http.StatusInternalServerError, "statistics unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string          `json:"status"`
	UptimeSeconds float64         `json:"uptime_seconds"`
	Process       metrics.Process `json:"process"`
	Host          sysmon.Host     `json:"host"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(s.started).Seconds(),
		Process:       metrics.ReadProcess(),
		Host:          sysmon.Sample(r.Context()),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
		return
	}
	s.metrics.WritePrometheus(w, r)
}

// record counts a served request. A failing stats backend does not fail the
// request.
func (s *Server) record(ctx context.Context, key stats.Key) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Increment(ctx, key); err != nil {
		s.logger.Warn("failed to record request", logging.Err(err), logging.String("task", key.Task), logging.Uint64("n", key.N))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", logging.Err(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
