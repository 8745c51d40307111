package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agbru/fizzfib/internal/config"
	"github.com/agbru/fizzfib/internal/fibonacci"
	"github.com/agbru/fizzfib/internal/fizzbuzz"
	"github.com/agbru/fizzfib/internal/stats"
)

func newTestServer(t *testing.T, st stats.Service) *httptest.Server {
	t.Helper()
	cfg := config.AppConfig{Algo: "fast", Timeout: time.Minute, MaxN: 100_000}
	ts := httptest.NewServer(NewServer(fibonacci.NewDefaultFactory(), st, cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestHandleFibonacci(t *testing.T) {
	ts := newTestServer(t, &stats.Memory{})

	tests := []struct {
		name      string
		query     string
		wantN     uint64
		wantValue string
		wantAlgo  string
	}{
		{"Default", "", 10, "55", "Fast Doubling"},
		{"Zero", "?n=0", 0, "0", "Fast Doubling"},
		{"Large", "?n=100", 100, "354224848179261915075", "Fast Doubling"},
		{"Algorithm", "?n=20&algo=iterative", 20, "6765", "Iterative"},
		{"AllMeansDefault", "?n=20&algo=all", 20, "6765", "Iterative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, ts.URL+"/fibonacci"+tt.query)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, body %s", resp.StatusCode, body)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			var got FibonacciResponse
			if err := json.Unmarshal([]byte(body), &got); err != nil {
				t.Fatal(err)
			}
			if got.N != tt.wantN || got.Value != tt.wantValue {
				t.Errorf("got n=%d value=%s, want n=%d value=%s", got.N, got.Value, tt.wantN, tt.wantValue)
			}
			if !strings.HasPrefix(got.Algorithm, tt.wantAlgo) {
				t.Errorf("algorithm = %q, want prefix %q", got.Algorithm, tt.wantAlgo)
			}
		})
	}
}

func TestHandleFibonacci_BadRequests(t *testing.T) {
	ts := newTestServer(t, &stats.Memory{})
	for _, query := range []string{"?n=-5", "?n=abc", "?n=100001", "?algo=nope"} {
		t.Run(query, func(t *testing.T) {
			resp, body := get(t, ts.URL+"/fibonacci"+query)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if !strings.Contains(body, `"error"`) {
				t.Errorf("body = %s", body)
			}
		})
	}
}

func TestHandleFizzBuzz(t *testing.T) {
	ts := newTestServer(t, &stats.Memory{})

	for _, tt := range []struct {
		query string
		bound int
	}{
		{"", 100},
		{"?n=15", 15},
		{"?n=0", 0},
	} {
		resp, body := get(t, ts.URL+"/fizzbuzz"+tt.query)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status = %d", tt.query, resp.StatusCode)
		}
		if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") {
			t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
		}
		if body != fizzbuzz.Generate(tt.bound) {
			t.Errorf("%s: body differs from Generate(%d)", tt.query, tt.bound)
		}
	}
}

func TestHandleStats(t *testing.T) {
	db, err := stats.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	ts := newTestServer(t, db)

	_, body := get(t, ts.URL+"/stats")
	var empty stats.Entry
	if err := json.Unmarshal([]byte(body), &empty); err != nil || empty.Count != 0 {
		t.Fatalf("empty stats = %s (%v)", body, err)
	}

	for _, path := range []string{"/fibonacci?n=7", "/fizzbuzz?n=3", "/fizzbuzz?n=3", "/fibonacci?n=7", "/fizzbuzz?n=3"} {
		get(t, ts.URL+path)
	}
	// Rejected requests are not counted.
	get(t, ts.URL+"/fibonacci?n=-1")

	_, body = get(t, ts.URL+"/stats")
	var got stats.Entry
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatal(err)
	}
	want := stats.Entry{Key: stats.Key{Task: stats.TaskFizzBuzz, N: 3}, Count: 3}
	if got != want {
		t.Errorf("stats = %+v, want %+v", got, want)
	}
}

func TestHandleHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, &stats.Memory{})

	resp, body := get(t, ts.URL+"/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: %d %s", resp.StatusCode, body)
	}
	var health HealthResponse
	if err := json.Unmarshal([]byte(body), &health); err != nil {
		t.Fatalf("health body: %v", err)
	}
	if health.Status != "ok" || health.Process.Goroutines < 1 || health.UptimeSeconds < 0 {
		t.Errorf("health = %+v", health)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}

	_, body = get(t, ts.URL+"/metrics")
	if !strings.Contains(body, `fizzfib_requests_total{endpoint="/health",status="200"} 1`) {
		t.Errorf("metrics do not count the health request:\n%s", body)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, &stats.Memory{})
	for _, path := range []string{"/fibonacci", "/fizzbuzz", "/stats", "/metrics"} {
		resp, err := http.Post(ts.URL+path, "text/plain", strings.NewReader("x"))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("POST %s: status = %d, want 405", path, resp.StatusCode)
		}
	}
}

type failingStats struct{}

func (failingStats) Increment(context.Context, stats.Key) error { return errors.New("disk full") }
func (failingStats) MostFrequent(context.Context) (stats.Entry, error) {
	return stats.Entry{}, errors.New("disk full")
}

func TestStatsFailures(t *testing.T) {
	ts := newTestServer(t, failingStats{})

	resp, body := get(t, ts.URL+"/fibonacci?n=10")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"value":"55"`) {
		t.Errorf("a failing stats backend should not fail requests: %d %s", resp.StatusCode, body)
	}
	resp, _ = get(t, ts.URL+"/stats")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("stats status = %d, want 500", resp.StatusCode)
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := NewServer(fibonacci.NewDefaultFactory(), &stats.Memory{}, config.AppConfig{Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		if resp, err = http.Get(url); err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server did not come up: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListenAndServe_BadAddr(t *testing.T) {
	s := NewServer(fibonacci.NewDefaultFactory(), &stats.Memory{}, config.AppConfig{Addr: "256.0.0.1:bad"})
	if err := s.ListenAndServe(context.Background()); err == nil {
		t.Error("expected a listen error")
	}
}
