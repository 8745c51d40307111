package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/fizzfib/internal/errors"
)

// isFlagSet reports whether the flag was given on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride maps one environment key (without EnvPrefix) to the flag
// names it shadows and the setter applying its value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string) error
}

var envOverrides = []envOverride{
	{"TASK", []string{"task"}, func(c *AppConfig, v string) error {
		c.Task = strings.ToLower(v)
		return nil
	}},
	{"N", []string{"n"}, func(c *AppConfig, v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return envError("N", v, "a non-negative integer")
		}
		c.N = n
		c.nExplicit = true
		return nil
	}},
	{"ALGO", []string{"algo"}, func(c *AppConfig, v string) error {
		c.Algo = v
		return nil
	}},
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("TIMEOUT", v, "a duration such as 30s or 5m")
		}
		c.Timeout = d
		return nil
	}},
	{"THRESHOLD", []string{"threshold"}, intSetter("THRESHOLD", func(c *AppConfig) *int { return &c.Threshold })},
	{"LAST_DIGITS", []string{"last-digits"}, intSetter("LAST_DIGITS", func(c *AppConfig) *int { return &c.LastDigits })},
	{"OUTPUT", []string{"output", "o"}, func(c *AppConfig, v string) error {
		c.OutputFile = v
		return nil
	}},
	{"LOG_LEVEL", []string{"log-level"}, func(c *AppConfig, v string) error {
		c.LogLevel = v
		return nil
	}},
	{"ADDR", []string{"addr"}, func(c *AppConfig, v string) error {
		c.Addr = v
		return nil
	}},
	{"STATS_DB", []string{"stats-db"}, func(c *AppConfig, v string) error {
		c.StatsDB = v
		return nil
	}},
	{"MAX_N", []string{"max-n"}, func(c *AppConfig, v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return envError("MAX_N", v, "a non-negative integer")
		}
		c.MaxN = n
		return nil
	}},
	{"COMPLETION", []string{"completion"}, func(c *AppConfig, v string) error {
		c.Completion = v
		return nil
	}},

	{"CALCULATE", []string{"calculate", "c"}, boolSetter("CALCULATE", func(c *AppConfig) *bool { return &c.ShowValue })},
	{"VERBOSE", []string{"verbose", "v"}, boolSetter("VERBOSE", func(c *AppConfig) *bool { return &c.Verbose })},
	{"DETAILS", []string{"details", "d"}, boolSetter("DETAILS", func(c *AppConfig) *bool { return &c.Details })},
	{"QUIET", []string{"quiet", "q"}, boolSetter("QUIET", func(c *AppConfig) *bool { return &c.Quiet })},
	{"NO_COLOR", []string{"no-color"}, boolSetter("NO_COLOR", func(c *AppConfig) *bool { return &c.NoColor })},
	{"TUI", []string{"tui"}, boolSetter("TUI", func(c *AppConfig) *bool { return &c.TUI })},
	{"INTERACTIVE", []string{"interactive"}, boolSetter("INTERACTIVE", func(c *AppConfig) *bool { return &c.Interactive })},
	{"SERVE", []string{"serve"}, boolSetter("SERVE", func(c *AppConfig) *bool { return &c.Serve })},
}

func intSetter(key string, field func(*AppConfig) *int) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError(key, v, "an integer")
		}
		*field(c) = n
		return nil
	}
}

func boolSetter(key string, field func(*AppConfig) *bool) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		b, ok := parseBoolEnv(v)
		if !ok {
			return envError(key, v, "true/false, 1/0 or yes/no")
		}
		*field(c) = b
		return nil
	}
}

func envError(key, value, want string) error {
	return apperrors.NewConfigError("invalid value %q for %s%s: want %s", value, EnvPrefix, key, want)
}

// parseBoolEnv accepts true/1/yes and false/0/no, case-insensitively.
func parseBoolEnv(val string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

// applyEnvOverrides sets every field whose flag was not given on the
// command line from its FIZZFIB_ variable, when that variable is non-empty.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) error {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			if err := o.apply(config, val); err != nil {
				return err
			}
		}
	}
	return nil
}
