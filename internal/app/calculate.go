package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/agbru/fizzfib/internal/cli"
	apperrors "github.com/agbru/fizzfib/internal/errors"
	"github.com/agbru/fizzfib/internal/fibonacci"
	"github.com/agbru/fizzfib/internal/logging"
	"github.com/agbru/fizzfib/internal/metrics"
	"github.com/agbru/fizzfib/internal/orchestration"
)

// runCalculate computes F(n) with the selected calculators.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	if a.Config.LastDigits > 0 {
		return a.runLastDigits(ctx, out)
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	calculators := orchestration.GetCalculatorsToRun(a.Config.Algo, a.Factory)

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, out)
		cli.PrintExecutionMode(calculators, out)
	}

	var reporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := out
	if a.Config.Quiet {
		reporter = orchestration.NullProgressReporter{}
		progressOut = io.Discard
	}

	before := metrics.ReadProcess()
	results := orchestration.ExecuteCalculations(ctx, calculators, a.Config.N, a.Config.ToCalculationOptions(), reporter, progressOut)
	after := metrics.ReadProcess()
	for _, res := range results {
		a.Logger.Debug("calculator finished",
			logging.String("algo", res.Name),
			logging.Duration("duration", res.Duration),
			logging.Err(res.Err))
	}
	a.Logger.Debug("calculation memory",
		logging.Uint64("heap_growth_bytes", metrics.HeapGrowth(before, after)),
		logging.Int("gc_cycles", int(after.NumGC-before.NumGC)))

	outputCfg := cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
		ShowValue:  a.Config.ShowValue,
	}
	if outputCfg.Quiet {
		return a.presentQuiet(results, outputCfg, out)
	}
	return a.presentResults(results, outputCfg, out)
}

// presentQuiet prints only the value. Failures go to ErrWriter so that
// stdout stays parseable.
func (a *Application) presentQuiet(results []orchestration.CalculationResult, outputCfg cli.OutputConfig, out io.Writer) int {
	best := orchestration.FindBestResult(results)
	if best == nil {
		var err error = fmt.Errorf("no calculator selected")
		if len(results) > 0 {
			err = results[0].Err
		}
		return cli.CLIResultPresenter{}.HandleError(err, 0, a.ErrWriter)
	}
	if !orchestration.ResultsConsistent(results) {
		fmt.Fprintf(a.ErrWriter, "The algorithms returned different values for F(%d).\n", a.Config.N)
		return apperrors.ExitErrorMismatch
	}
	cli.DisplayQuietResult(out, best.Result)
	return a.saveResult(best, outputCfg)
}

func (a *Application) presentResults(results []orchestration.CalculationResult, outputCfg cli.OutputConfig, out io.Writer) int {
	opts := orchestration.PresentationOptions{
		N:         a.Config.N,
		Verbose:   a.Config.Verbose,
		Details:   a.Config.Details,
		ShowValue: a.Config.ShowValue,
	}
	exitCode := orchestration.AnalyzeComparisonResults(results, opts, cli.CLIResultPresenter{}, cli.CLIResultPresenter{}, out)
	if exitCode != apperrors.ExitSuccess || outputCfg.OutputFile == "" {
		return exitCode
	}
	if code := a.saveResult(orchestration.FindBestResult(results), outputCfg); code != apperrors.ExitSuccess {
		return code
	}
	cli.DisplaySavedNotice(out, outputCfg.OutputFile)
	return apperrors.ExitSuccess
}

func (a *Application) saveResult(res *orchestration.CalculationResult, cfg cli.OutputConfig) int {
	if err := cli.WriteResultToFile(res.Result, a.Config.N, res.Duration, res.Name, cfg); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runLastDigits computes F(n) mod 10^k, which needs O(k) memory for any n.
func (a *Application) runLastDigits(ctx context.Context, out io.Writer) int {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	k, n := a.Config.LastDigits, a.Config.N
	if !a.Config.Quiet {
		fmt.Fprintf(out, "Computing last %d digits of F(%d)...\n", k, n)
	}

	start := time.Now()
	digits, err := fibonacci.LastDigits(ctx, n, k)
	elapsed := time.Since(start)
	if err != nil {
		return cli.CLIResultPresenter{}.HandleError(err, elapsed, a.ErrWriter)
	}

	if a.Config.Quiet {
		fmt.Fprintln(out, digits)
		return apperrors.ExitSuccess
	}
	fmt.Fprintf(out, "Last %d digits of F(%d): %s\n", k, n, digits)
	fmt.Fprintf(out, "Computed in %s\n", elapsed.Round(time.Microsecond))
	return apperrors.ExitSuccess
}
