package cli

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/agbru/fizzfib/internal/fibonacci"
	"github.com/agbru/fizzfib/internal/fizzbuzz"
)

func runREPL(t *testing.T, input string) (*REPL, string) {
	t.Helper()
	useNoColor(t)
	var out bytes.Buffer
	r := NewREPL(fibonacci.NewDefaultFactory(), REPLConfig{Timeout: time.Minute}, strings.NewReader(input), &out)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return r, out.String()
}

func TestREPL_Commands(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
	}{
		{"Fib", "fib 10\n", []string{"F(10) = 55"}},
		{"BareNumber", "20\n", []string{"F(20) = 6765"}},
		{"FizzBuzz", "fizzbuzz 5\n", []string{"1\n2\nFizz\n4\nBuzz\n"}},
		{"Compare", "compare 100\n", []string{"Comparison Summary", "All results agree."}},
		{"Algos", "algos\n", []string{"* iterative", "  fast", "  matrix"}},
		{"Help", "help\n", []string{"Commands:", "fizzbuzz <n>"}},
		{"Unknown", "frobnicate\n", []string{`Unknown command "frobnicate"`}},
		{"MissingArg", "fib\n", []string{"Usage: fib <n>"}},
		{"NegativeArg", "fib -3\n", []string{`Invalid value "-3"`}},
		{"FizzBuzzTooLarge", "fizzbuzz 18446744073709551615\n", []string{"Bound 18446744073709551615 is too large"}},
		{"Exit", "exit\nfib 10\n", []string{"Goodbye."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out := runREPL(t, tt.input)
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("output does not contain %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestREPL_FizzBuzzStopsOnCancel(t *testing.T) {
	useNoColor(t)
	var out bytes.Buffer
	r := NewREPL(fibonacci.NewDefaultFactory(), REPLConfig{Timeout: time.Minute}, strings.NewReader(""), &out)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r.fizzBuzz(ctx, math.MaxInt)
	if !strings.Contains(out.String(), "Error: context canceled") {
		t.Errorf("output = %q, want a cancellation error", out.String())
	}
}

func TestREPL_ExitStopsReading(t *testing.T) {
	_, out := runREPL(t, "quit\nfib 10\n")
	if strings.Contains(out, "F(10)") {
		t.Errorf("commands after quit were executed:\n%s", out)
	}
}

func TestREPL_FizzBuzzMatchesGenerate(t *testing.T) {
	_, out := runREPL(t, "fb 30\n")
	if !strings.Contains(out, fizzbuzz.Generate(30)) {
		t.Errorf("fb 30 output does not embed Generate(30):\n%s", out)
	}
}

func TestREPL_AlgoSwitch(t *testing.T) {
	r, out := runREPL(t, "algo matrix\nalgo nope\n")
	if r.CurrentAlgo() != "matrix" {
		t.Errorf("CurrentAlgo() = %q, want matrix", r.CurrentAlgo())
	}
	if !strings.Contains(out, "Algorithm set to") || !strings.Contains(out, `Unknown algorithm "nope"`) {
		t.Errorf("output:\n%s", out)
	}
}

func TestNewREPL_DefaultAlgo(t *testing.T) {
	t.Parallel()
	factory := fibonacci.NewDefaultFactory()
	for _, algo := range []string{"", "all", "unknown"} {
		r := NewREPL(factory, REPLConfig{DefaultAlgo: algo}, strings.NewReader(""), &bytes.Buffer{})
		if r.CurrentAlgo() != fibonacci.DefaultAlgorithm {
			t.Errorf("DefaultAlgo %q: CurrentAlgo() = %q", algo, r.CurrentAlgo())
		}
	}
	if r := NewREPL(factory, REPLConfig{DefaultAlgo: "fast"}, strings.NewReader(""), &bytes.Buffer{}); r.CurrentAlgo() != "fast" {
		t.Errorf("CurrentAlgo() = %q, want fast", r.CurrentAlgo())
	}
}

func TestREPL_CanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewREPL(fibonacci.NewDefaultFactory(), REPLConfig{Timeout: time.Second}, strings.NewReader("fib 10\n"), &bytes.Buffer{})
	if err := r.Start(ctx); err != context.Canceled {
		t.Errorf("Start() = %v, want context.Canceled", err)
	}
}
