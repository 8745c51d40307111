package orchestration

import (
	"time"

	"github.com/agbru/fizzfib/internal/format"
	"github.com/agbru/fizzfib/internal/progress"
)

// ProgressAggregator folds per-calculator updates into an average and an
// ETA. The CLI spinner and the TUI both consume progress through it.
type ProgressAggregator struct {
	state          *format.ProgressWithETA
	numCalculators int
}

// NewProgressAggregator returns nil when numCalculators is not positive.
func NewProgressAggregator(numCalculators int) *ProgressAggregator {
	if numCalculators <= 0 {
		return nil
	}
	return &ProgressAggregator{
		state:          format.NewProgressWithETA(numCalculators),
		numCalculators: numCalculators,
	}
}

// AggregatedProgress is the view after one update.
type AggregatedProgress struct {
	CalculatorIndex int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
}

// Update applies one update.
func (a *ProgressAggregator) Update(update progress.ProgressUpdate) AggregatedProgress {
	avg, eta := a.state.UpdateWithETA(update.CalculatorIndex, update.Value)
	return AggregatedProgress{
		CalculatorIndex: update.CalculatorIndex,
		Value:           update.Value,
		AverageProgress: avg,
		ETA:             eta,
	}
}

func (a *ProgressAggregator) CalculateAverage() float64 { return a.state.CalculateAverage() }
func (a *ProgressAggregator) GetETA() time.Duration     { return a.state.GetETA() }
func (a *ProgressAggregator) NumCalculators() int       { return a.numCalculators }
func (a *ProgressAggregator) IsMultiCalculator() bool   { return a.numCalculators > 1 }

// DrainChannel discards updates until the channel is closed.
func DrainChannel(progressChan <-chan progress.ProgressUpdate) {
	for range progressChan {
	}
}
