package fibonacci

import (
	"context"
	"math/big"

	"github.com/agbru/fizzfib/internal/progress"
)

//go:generate mockgen -destination=mocks/mock_calculator.go -package=mocks github.com/agbru/fizzfib/internal/fibonacci Calculator

// Options tunes the big-integer algorithms.
type Options struct {
	// ParallelThreshold is the operand size in bits above which independent
	// multiplications run concurrently. Zero selects DefaultParallelThreshold;
	// a negative value disables parallelism.
	ParallelThreshold int
}

func (o Options) parallelThreshold() int {
	if o.ParallelThreshold == 0 {
		return DefaultParallelThreshold
	}
	return o.ParallelThreshold
}

// Calculator computes F(n) with a specific algorithm.
type Calculator interface {
	// Calculate computes F(n). Progress updates tagged with index are sent on
	// progressChan when it is non-nil; sends never block. The calculation
	// stops with ctx.Err() when ctx is done.
	Calculate(ctx context.Context, progressChan chan<- progress.ProgressUpdate, index int, n uint64, opts Options) (*big.Int, error)

	// Name returns a human-readable algorithm name.
	Name() string
}

// coreCalculator is implemented by the algorithms themselves. FibCalculator
// adapts it to Calculator.
type coreCalculator interface {
	CalculateCore(ctx context.Context, reporter progress.ProgressCallback, n uint64, opts Options) (*big.Int, error)
	Name() string
}

// FibCalculator decorates a coreCalculator with the small-index fast path,
// channel based progress and a guaranteed final progress of 1.0.
type FibCalculator struct {
	core coreCalculator
}

// NewCalculator wraps an algorithm implementation.
func NewCalculator(core coreCalculator) Calculator {
	return &FibCalculator{core: core}
}

// Name returns the name of the wrapped algorithm.
func (c *FibCalculator) Name() string {
	return c.core.Name()
}

// Calculate implements Calculator.
func (c *FibCalculator) Calculate(ctx context.Context, progressChan chan<- progress.ProgressUpdate, index int, n uint64, opts Options) (*big.Int, error) {
	return c.CalculateWithCallback(ctx, progress.ChannelCallback(progressChan, index), n, opts)
}

// CalculateWithCallback is Calculate with a caller supplied progress
// callback instead of a channel. A nil callback disables reporting.
func (c *FibCalculator) CalculateWithCallback(ctx context.Context, cb progress.ProgressCallback, n uint64, opts Options) (*big.Int, error) {
	if cb == nil {
		cb = func(float64) {}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= MaxUint64Index {
		cb(1)
		return new(big.Int).SetUint64(computeUint64(n)), nil
	}

	reporter := progress.NewReporter(cb)
	result, err := c.core.CalculateCore(ctx, reporter.Report, n, opts)
	if err != nil {
		return nil, err
	}
	reporter.Report(1)
	return result, nil
}
