// Package app wires configuration, logging and the run modes of fizzfib.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/agbru/fizzfib/internal/cli"
	"github.com/agbru/fizzfib/internal/config"
	apperrors "github.com/agbru/fizzfib/internal/errors"
	"github.com/agbru/fizzfib/internal/fibonacci"
	"github.com/agbru/fizzfib/internal/logging"
	"github.com/agbru/fizzfib/internal/orchestration"
	"github.com/agbru/fizzfib/internal/tui"
	"github.com/agbru/fizzfib/internal/ui"
)

// Application is one invocation of fizzfib.
type Application struct {
	Config    config.AppConfig
	Factory   fibonacci.CalculatorFactory
	ErrWriter io.Writer
	Logger    logging.Logger
	// In is read by the interactive mode.
	In io.Reader
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithFactory replaces the default calculator factory.
func WithFactory(f fibonacci.CalculatorFactory) AppOption {
	return func(a *Application) { a.Factory = f }
}

// WithInput sets the reader used by --interactive.
func WithInput(r io.Reader) AppOption {
	return func(a *Application) { a.In = r }
}

// New parses args (including the program name) into an Application.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.Factory == nil {
		app.Factory = fibonacci.NewDefaultFactory()
	}

	programName := "fizzfib"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, app.Factory.List())
	if err != nil {
		return nil, err
	}
	app.Config = config.ApplyAdaptiveThresholds(cfg)
	return app, nil
}

// Run executes the selected mode and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	ui.InitTheme(a.Config.NoColor)
	a.setupLogging()
	a.Logger.Debug("configuration resolved",
		logging.String("task", a.Config.Task),
		logging.Uint64("n", a.Config.N),
		logging.String("algo", a.Config.Algo),
		logging.Int("threshold", a.Config.Threshold))

	switch {
	case a.Config.Serve:
		return a.runServe(ctx, out)
	case a.Config.Interactive:
		return a.runInteractive(ctx, out)
	case a.Config.Task == config.TaskFizzBuzz:
		return a.runFizzBuzz(ctx, out)
	case a.Config.TUI:
		return a.runTUI(ctx, out)
	default:
		return a.runCalculate(ctx, out)
	}
}

// setupLogging applies --log-level globally and creates the console logger.
func (a *Application) setupLogging() {
	level, err := logging.ParseLevel(a.Config.LogLevel)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Warning: %v, using %s\n", err, level)
	}
	zerolog.SetGlobalLevel(level)
	if a.Logger == nil {
		a.Logger = logging.NewConsoleLogger(a.ErrWriter, "fizzfib")
	}
}

func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Factory.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

func (a *Application) runTUI(ctx context.Context, _ io.Writer) int {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	calculators := orchestration.GetCalculatorsToRun(a.Config.Algo, a.Factory)
	return tui.Run(ctx, calculators, a.Config, Version)
}

func (a *Application) runInteractive(ctx context.Context, out io.Writer) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	repl := cli.NewREPL(a.Factory, cli.REPLConfig{
		DefaultAlgo: a.Config.Algo,
		Timeout:     a.Config.Timeout,
		Threshold:   a.Config.Threshold,
	}, a.In, out)
	if err := repl.Start(ctx); err != nil {
		return apperrors.ExitCodeFor(err)
	}
	return apperrors.ExitSuccess
}

// IsHelpError reports whether err comes from -h or --help.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
