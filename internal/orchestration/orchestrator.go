package orchestration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/fizzfib/internal/errors"
	"github.com/agbru/fizzfib/internal/fibonacci"
	"github.com/agbru/fizzfib/internal/progress"
)

// ProgressBufferMultiplier sizes the progress channel per calculator so
// that slow reporters rarely cause dropped updates.
const ProgressBufferMultiplier = 5

var tracer = otel.Tracer("github.com/agbru/fizzfib/internal/orchestration")

// ExecuteCalculations runs every calculator on n concurrently and returns
// one result per calculator, in input order. A failing calculator does not
// cancel the others; ctx does.
func ExecuteCalculations(ctx context.Context, calculators []fibonacci.Calculator, n uint64, opts fibonacci.Options, reporter ProgressReporter, out io.Writer) []CalculationResult {
	ctx, span := tracer.Start(ctx, "ExecuteCalculations")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("fibonacci.n", int64(n)),
		attribute.Int("calculators", len(calculators)),
	)

	results := make([]CalculationResult, len(calculators))
	progressChan := make(chan progress.ProgressUpdate, len(calculators)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, len(calculators), out)

	var g errgroup.Group
	for i, calc := range calculators {
		g.Go(func() error {
			results[i] = runCalculator(ctx, calc, i, n, opts, progressChan)
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

func runCalculator(ctx context.Context, calc fibonacci.Calculator, index int, n uint64, opts fibonacci.Options, progressChan chan<- progress.ProgressUpdate) CalculationResult {
	ctx, span := tracer.Start(ctx, "Calculate")
	defer span.End()
	span.SetAttributes(attribute.String("fibonacci.algorithm", calc.Name()))

	start := time.Now()
	res, err := calc.Calculate(ctx, progressChan, index, n, opts)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		err = apperrors.CalculationError{Algorithm: calc.Name(), Cause: err}
	} else {
		span.SetAttributes(attribute.Int("fibonacci.result_bits", res.BitLen()))
	}
	return CalculationResult{Name: calc.Name(), Result: res, Duration: duration, Err: err}
}

// SortResults orders results with successes first, fastest first.
func SortResults(results []CalculationResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})
}

// FindBestResult returns the fastest successful result, or nil.
func FindBestResult(results []CalculationResult) *CalculationResult {
	var best *CalculationResult
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		if best == nil || results[i].Duration < best.Duration {
			best = &results[i]
		}
	}
	return best
}

// ResultsConsistent reports whether every successful result holds the same
// value. It is true when fewer than two calculators succeeded.
func ResultsConsistent(results []CalculationResult) bool {
	best := FindBestResult(results)
	if best == nil {
		return true
	}
	for _, r := range results {
		if r.Err == nil && r.Result.Cmp(best.Result) != 0 {
			return false
		}
	}
	return true
}

// AnalyzeComparisonResults sorts results, prints the comparison table and
// the final value, and returns the process exit code: success when all
// successful calculators agree, ExitErrorMismatch when they do not, and the
// error handler's code when none succeeded.
func AnalyzeComparisonResults(results []CalculationResult, opts PresentationOptions, presenter ResultPresenter, errHandler ErrorHandler, out io.Writer) int {
	SortResults(results)
	presenter.PresentComparisonTable(results, out)

	if len(results) == 0 || results[0].Err != nil {
		fmt.Fprintf(out, "\nStatus: failure. No algorithm completed the calculation.\n")
		var firstErr error
		if len(results) > 0 {
			firstErr = results[0].Err
		} else {
			firstErr = fmt.Errorf("no calculator selected")
		}
		return errHandler.HandleError(firstErr, 0, out)
	}

	if !ResultsConsistent(results) {
		fmt.Fprintf(out, "\nStatus: CRITICAL. The algorithms returned different values for F(%d).\n", opts.N)
		return apperrors.ExitErrorMismatch
	}

	fmt.Fprintf(out, "\nStatus: success. All valid results are consistent.\n")
	presenter.PresentResult(results[0], opts, out)
	return apperrors.ExitSuccess
}
