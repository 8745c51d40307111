// Package config parses the command line, the environment and an optional
// .env file into an AppConfig.
//
// Resolution order, highest first: CLI flags, FIZZFIB_* environment
// variables, the .env file, built-in defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/agbru/fizzfib/internal/errors"
	"github.com/agbru/fizzfib/internal/fibonacci"
	"github.com/agbru/fizzfib/internal/logging"
)

// EnvPrefix is prepended to every environment variable the tool reads.
const EnvPrefix = "FIZZFIB_"

// Tasks.
const (
	TaskFibonacci = "fibonacci"
	TaskFizzBuzz  = "fizzbuzz"
)

// AlgoAll runs every registered calculator and compares the results.
const AlgoAll = "all"

// Defaults.
const (
	DefaultFibonacciN = 10
	DefaultFizzBuzzN  = 100
	DefaultTimeout    = 5 * time.Minute
	DefaultAddr       = ":8080"
	DefaultEnvFile    = ".env"
	DefaultLogLevel   = "warn"
	DefaultMaxN       = 1_000_000
)

// DefaultAlgo is the calculator selected when --algo is not given.
const DefaultAlgo = fibonacci.DefaultAlgorithm

// AppConfig is the fully resolved configuration of one invocation.
type AppConfig struct {
	Task       string
	N          uint64
	Algo       string
	Timeout    time.Duration
	Threshold  int
	LastDigits int

	ShowValue  bool
	Verbose    bool
	Details    bool
	Quiet      bool
	OutputFile string
	NoColor    bool
	LogLevel   string

	TUI         bool
	Interactive bool
	Serve       bool
	Addr        string
	StatsDB     string
	MaxN        uint64

	Completion string
	EnvFile    string

	// nExplicit records whether N came from a flag or the environment.
	// When false, N is replaced by the task default.
	nExplicit bool
}

// DefaultN returns the default count or bound for task.
func DefaultN(task string) uint64 {
	if task == TaskFizzBuzz {
		return DefaultFizzBuzzN
	}
	return DefaultFibonacciN
}

// ToCalculationOptions converts the configuration into calculator options.
func (c AppConfig) ToCalculationOptions() fibonacci.Options {
	return fibonacci.Options{ParallelThreshold: c.Threshold}
}

// ParseConfig parses args (without the program name) into an AppConfig.
// Flag syntax errors are returned unchanged, so callers can recognise
// flag.ErrHelp. Semantic errors are apperrors.ConfigError values.
func ParseConfig(programName string, args []string, errWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	config := AppConfig{}
	fs.StringVar(&config.Task, "task", TaskFibonacci, "Task to run: fibonacci or fizzbuzz.")
	fs.Uint64Var(&config.N, "n", DefaultFibonacciN, "Fibonacci index, or FizzBuzz upper bound (default 100 for fizzbuzz).")
	fs.StringVar(&config.Algo, "algo", DefaultAlgo, fmt.Sprintf("Fibonacci algorithm: %s or %s.", strings.Join(availableAlgos, ", "), AlgoAll))
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum duration of a computation.")
	fs.IntVar(&config.Threshold, "threshold", 0, "Operand size in bits above which multiplications run in parallel (0 = adaptive, -1 = never).")
	fs.IntVar(&config.LastDigits, "last-digits", 0, "Compute only the last K decimal digits of F(n).")

	fs.BoolVar(&config.ShowValue, "calculate", false, "Display the computed value.")
	fs.BoolVar(&config.ShowValue, "c", false, "Shorthand for --calculate.")
	fs.BoolVar(&config.Verbose, "verbose", false, "Display the full value without truncation.")
	fs.BoolVar(&config.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&config.Details, "details", false, "Display size and digit analysis.")
	fs.BoolVar(&config.Details, "d", false, "Shorthand for --details.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print only the result.")
	fs.BoolVar(&config.Quiet, "q", false, "Shorthand for --quiet.")
	fs.StringVar(&config.OutputFile, "output", "", "Write the result to this file.")
	fs.StringVar(&config.OutputFile, "o", "", "Shorthand for --output.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn, error.")

	fs.BoolVar(&config.TUI, "tui", false, "Run the interactive dashboard.")
	fs.BoolVar(&config.Interactive, "interactive", false, "Start a read-eval-print loop.")
	fs.BoolVar(&config.Serve, "serve", false, "Start the HTTP server.")
	fs.StringVar(&config.Addr, "addr", DefaultAddr, "Listen address for --serve.")
	fs.StringVar(&config.StatsDB, "stats-db", "", "SQLite file for request statistics (in memory when empty).")
	fs.Uint64Var(&config.MaxN, "max-n", DefaultMaxN, "Largest n accepted by the HTTP server.")

	fs.StringVar(&config.Completion, "completion", "", "Print a completion script for bash, zsh or fish.")
	fs.StringVar(&config.EnvFile, "env-file", DefaultEnvFile, "Dotenv file loaded before reading FIZZFIB_* variables.")

	fs.Usage = func() {
		fmt.Fprintf(errWriter, "Usage: %s [flags]\n\n", programName)
		fmt.Fprintf(errWriter, "Computes Fibonacci numbers or prints a FizzBuzz sequence.\n\n")
		fs.PrintDefaults()
		fmt.Fprintf(errWriter, "\nEvery flag can also be set through %s<NAME> (for example %sN=1000).\n", EnvPrefix, EnvPrefix)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return AppConfig{}, err
		}
		return AppConfig{}, apperrors.NewConfigError("%v", err)
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if err := loadEnvFile(config.EnvFile, isFlagSet(fs, "env-file")); err != nil {
		return AppConfig{}, err
	}

	config.nExplicit = isFlagSet(fs, "n")
	if err := applyEnvOverrides(&config, fs); err != nil {
		return AppConfig{}, err
	}
	if !config.nExplicit {
		config.N = DefaultN(config.Task)
	}

	if err := config.Validate(availableAlgos); err != nil {
		return AppConfig{}, err
	}
	return config, nil
}

// loadEnvFile loads path into the process environment without overriding
// variables that are already set. A missing default file is not an error.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return apperrors.NewConfigError("cannot read env file %q: %v", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return apperrors.NewConfigError("invalid env file %q: %v", path, err)
	}
	return nil
}

// Validate checks the semantic consistency of the configuration.
func (c AppConfig) Validate(availableAlgos []string) error {
	switch c.Task {
	case TaskFibonacci, TaskFizzBuzz:
	default:
		return apperrors.NewConfigError("unknown task %q (want %s or %s)", c.Task, TaskFibonacci, TaskFizzBuzz)
	}

	if c.Task == TaskFizzBuzz && c.N > math.MaxInt {
		return apperrors.NewConfigError("FizzBuzz bound %d exceeds the largest supported bound %d", c.N, math.MaxInt)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	if c.LastDigits < 0 {
		return apperrors.NewConfigError("--last-digits must be non-negative, got %d", c.LastDigits)
	}
	if c.Algo != AlgoAll && !slices.Contains(availableAlgos, c.Algo) {
		return apperrors.NewConfigError("unknown algorithm %q (available: %s, %s)", c.Algo, strings.Join(availableAlgos, ", "), AlgoAll)
	}

	modes := 0
	for _, on := range []bool{c.TUI, c.Interactive, c.Serve} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return apperrors.NewConfigError("--tui, --interactive and --serve are mutually exclusive")
	}
	if c.Serve && c.MaxN == 0 {
		return apperrors.NewConfigError("--max-n must be positive")
	}

	switch c.Completion {
	case "", "bash", "zsh", "fish":
	default:
		return apperrors.NewConfigError("unsupported shell %q for --completion (want bash, zsh or fish)", c.Completion)
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	return nil
}
