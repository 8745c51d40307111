package server

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics_Independent(t *testing.T) {
	// Two instances must not conflict on registration.
	a, b := NewMetrics(), NewMetrics()
	a.IncrementActiveRequests()
	if got := testutil.ToFloat64(b.activeRequests); got != 0 {
		t.Errorf("second instance sees %v active requests", got)
	}
	a.DecrementActiveRequests()
	if got := testutil.ToFloat64(a.activeRequests); got != 0 {
		t.Errorf("active requests = %v after inc/dec", got)
	}
}

func TestMetrics_RecordRequest(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/fibonacci", http.StatusOK, 3*time.Millisecond)
	m.RecordRequest("/fibonacci", http.StatusOK, time.Millisecond)
	m.RecordRequest("/fibonacci", http.StatusBadRequest, time.Millisecond)

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("/fibonacci", "200")); got != 2 {
		t.Errorf("200 count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("/fibonacci", "400")); got != 1 {
		t.Errorf("400 count = %v, want 1", got)
	}
}

func TestMetrics_WritePrometheus(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/health", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.WritePrometheus(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	body := rec.Body.String()

	for _, want := range []string{
		"fizzfib_requests_total",
		"fizzfib_request_duration_seconds",
		"fizzfib_active_requests",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition does not contain %q", want)
		}
	}
}

func TestServer_metricsMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"ImplicitOK", 0},
		{"NotFound", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Server{metrics: NewMetrics()}
			handler := s.metricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
				if got := testutil.ToFloat64(s.metrics.activeRequests); got != 1 {
					t.Errorf("active requests during call = %v, want 1", got)
				}
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				_, _ = w.Write([]byte("ok"))
			})
			handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", http.NoBody))

			want := tt.status
			if want == 0 {
				want = http.StatusOK
			}
			if got := testutil.ToFloat64(s.metrics.requestsTotal.WithLabelValues("/x", strconv.Itoa(want))); got != 1 {
				t.Errorf("count for status %d = %v, want 1", want, got)
			}
			if got := testutil.ToFloat64(s.metrics.activeRequests); got != 0 {
				t.Errorf("active requests after call = %v, want 0", got)
			}
		})
	}
}
