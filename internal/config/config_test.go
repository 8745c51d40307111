package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/agbru/fizzfib/internal/errors"
)

var testAlgos = []string{"fast", "iterative", "matrix"}

func parse(t *testing.T, args ...string) (AppConfig, error) {
	t.Helper()
	return ParseConfig("fizzfib", args, io.Discard, testAlgos)
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := parse(t)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Task != TaskFibonacci {
		t.Errorf("Task = %q, want %q", cfg.Task, TaskFibonacci)
	}
	if cfg.N != DefaultFibonacciN {
		t.Errorf("N = %d, want %d", cfg.N, DefaultFibonacciN)
	}
	if cfg.Algo != DefaultAlgo {
		t.Errorf("Algo = %q, want %q", cfg.Algo, DefaultAlgo)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %s, want %s", cfg.Timeout, DefaultTimeout)
	}
	if cfg.Addr != DefaultAddr || cfg.LogLevel != DefaultLogLevel || cfg.MaxN != DefaultMaxN {
		t.Errorf("unexpected server defaults: %+v", cfg)
	}
}

func TestParseConfig_FizzBuzzDefaultBound(t *testing.T) {
	cfg, err := parse(t, "--task", "fizzbuzz")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.N != DefaultFizzBuzzN {
		t.Errorf("N = %d, want %d", cfg.N, DefaultFizzBuzzN)
	}

	cfg, err = parse(t, "--task", "fizzbuzz", "-n", "0")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.N != 0 {
		t.Errorf("explicit -n 0 was replaced by %d", cfg.N)
	}
}

func TestParseConfig_Flags(t *testing.T) {
	cfg, err := parse(t,
		"-n", "1000", "--algo", "all", "--timeout", "30s", "-c", "-v", "-d", "-q",
		"-o", "out.txt", "--no-color", "--log-level", "debug", "--last-digits", "8", "--threshold", "-1",
	)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	want := AppConfig{
		Task: TaskFibonacci, N: 1000, Algo: AlgoAll, Timeout: 30 * time.Second,
		Threshold: -1, LastDigits: 8, ShowValue: true, Verbose: true, Details: true,
		Quiet: true, OutputFile: "out.txt", NoColor: true, LogLevel: "debug",
		Addr: DefaultAddr, MaxN: DefaultMaxN, EnvFile: DefaultEnvFile, nExplicit: true,
	}
	if cfg != want {
		t.Errorf("ParseConfig =\n%+v\nwant\n%+v", cfg, want)
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantConfig bool
	}{
		{"UnknownTask", []string{"--task", "primes"}, true},
		{"UnknownAlgo", []string{"--algo", "bogus"}, true},
		{"ZeroTimeout", []string{"--timeout", "0s"}, true},
		{"NegativeLastDigits", []string{"--last-digits", "-3"}, true},
		{"ExclusiveModes", []string{"--tui", "--serve"}, true},
		{"BadCompletion", []string{"--completion", "powershell"}, true},
		{"BadLogLevel", []string{"--log-level", "loud"}, true},
		{"ZeroMaxNWithServe", []string{"--serve", "--max-n", "0"}, true},
		{"Positional", []string{"extra"}, true},
		{"MissingExplicitEnvFile", []string{"--env-file", "does-not-exist.env"}, true},
		{"NegativeN", []string{"-n", "-5"}, true},
		{"FizzBuzzBoundAboveMaxInt", []string{"--task", "fizzbuzz", "-n", "18446744073709551615"}, true},
		{"UnknownFlag", []string{"--bogus"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			var cfgErr apperrors.ConfigError
			if got := errors.As(err, &cfgErr); got != tt.wantConfig {
				t.Errorf("errors.As(ConfigError) = %v, want %v (err: %v)", got, tt.wantConfig, err)
			}
		})
	}
}

func TestParseConfig_Help(t *testing.T) {
	_, err := parse(t, "-h")
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("err = %v, want flag.ErrHelp", err)
	}
}

func TestParseConfig_EnvOverrides(t *testing.T) {
	t.Setenv("FIZZFIB_TASK", "FizzBuzz")
	t.Setenv("FIZZFIB_N", "15")
	t.Setenv("FIZZFIB_TIMEOUT", "1m")
	t.Setenv("FIZZFIB_QUIET", "yes")
	t.Setenv("FIZZFIB_SERVE", "1")
	t.Setenv("FIZZFIB_ADDR", "127.0.0.1:9000")

	cfg, err := parse(t)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Task != TaskFizzBuzz || cfg.N != 15 || cfg.Timeout != time.Minute {
		t.Errorf("env not applied: %+v", cfg)
	}
	if !cfg.Quiet || !cfg.Serve || cfg.Addr != "127.0.0.1:9000" {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestParseConfig_FlagsBeatEnv(t *testing.T) {
	t.Setenv("FIZZFIB_N", "15")
	t.Setenv("FIZZFIB_QUIET", "false")

	cfg, err := parse(t, "-n", "20", "-q")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.N != 20 || !cfg.Quiet {
		t.Errorf("flags should win over env: N=%d Quiet=%v", cfg.N, cfg.Quiet)
	}
}

func TestParseConfig_InvalidEnv(t *testing.T) {
	tests := map[string]string{
		"FIZZFIB_N":           "-1",
		"FIZZFIB_TIMEOUT":     "soon",
		"FIZZFIB_VERBOSE":     "maybe",
		"FIZZFIB_THRESHOLD":   "lots",
		"FIZZFIB_LAST_DIGITS": "x",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := parse(t)
			var cfgErr apperrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("err = %v, want ConfigError", err)
			}
		})
	}
}

func TestParseConfig_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "FIZZFIB_TASK=fizzbuzz\nFIZZFIB_N=30\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv writes to the process environment.
	t.Cleanup(func() {
		os.Unsetenv("FIZZFIB_TASK")
		os.Unsetenv("FIZZFIB_N")
	})
	t.Setenv("FIZZFIB_ALGO", "fast")

	cfg, err := parse(t, "--env-file", path)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Task != TaskFizzBuzz || cfg.N != 30 || cfg.Algo != "fast" {
		t.Errorf("env file not applied: %+v", cfg)
	}
}

func TestParseBoolEnv(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in        string
		want, ok bool
	}{
		{"true", true, true}, {"YES", true, true}, {"1", true, true},
		{"false", false, true}, {"No", false, true}, {"0", false, true},
		{"maybe", false, false}, {"", false, false},
	}
	for _, tt := range tests {
		got, ok := parseBoolEnv(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseBoolEnv(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEstimateOptimalParallelThreshold(t *testing.T) {
	t.Parallel()
	tests := []struct {
		cpus, want int
	}{
		{1, -1}, {2, 8192}, {4, 4096}, {8, 2048}, {16, 1024}, {64, 512},
	}
	for _, tt := range tests {
		if got := EstimateOptimalParallelThreshold(tt.cpus); got != tt.want {
			t.Errorf("EstimateOptimalParallelThreshold(%d) = %d, want %d", tt.cpus, got, tt.want)
		}
	}
}

func TestApplyAdaptiveThresholds_KeepsExplicit(t *testing.T) {
	t.Parallel()
	if got := ApplyAdaptiveThresholds(AppConfig{Threshold: 777}); got.Threshold != 777 {
		t.Errorf("explicit threshold overwritten: %d", got.Threshold)
	}
	if got := ApplyAdaptiveThresholds(AppConfig{}); got.Threshold == 0 {
		t.Error("zero threshold not filled")
	}
}

func TestToCalculationOptions(t *testing.T) {
	t.Parallel()
	opts := AppConfig{Threshold: 2048}.ToCalculationOptions()
	if opts.ParallelThreshold != 2048 {
		t.Errorf("ParallelThreshold = %d, want 2048", opts.ParallelThreshold)
	}
}
