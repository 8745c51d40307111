package tui

import (
	"time"

	"github.com/agbru/fizzfib/internal/orchestration"
)

// ProgressMsg carries one calculator update and the aggregated view.
type ProgressMsg struct {
	CalculatorIndex int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
}

// ProgressDoneMsg is sent once the progress channel is closed.
type ProgressDoneMsg struct{}

// ComparisonResultsMsg carries every calculator outcome, sorted.
type ComparisonResultsMsg struct {
	Results []orchestration.CalculationResult
}

// FinalResultMsg carries the result selected for display.
type FinalResultMsg struct {
	Result  orchestration.CalculationResult
	Options orchestration.PresentationOptions
}

// ErrorMsg reports that no calculator succeeded.
type ErrorMsg struct {
	Err      error
	Duration time.Duration
}

// TickMsg refreshes the elapsed time.
type TickMsg time.Time

// CalculationCompleteMsg ends one run. Generation identifies the run so
// that messages from a canceled run are ignored after a rerun.
type CalculationCompleteMsg struct {
	ExitCode   int
	Generation uint64
}

// ContextCancelledMsg is sent when the run's context is done.
type ContextCancelledMsg struct {
	Err        error
	Generation uint64
}
