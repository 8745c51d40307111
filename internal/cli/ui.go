package cli

//go:generate mockgen -destination=mocks/mock_ui.go -package=mocks github.com/agbru/fizzfib/internal/cli Spinner

import (
	"fmt"
	"io"
	"math/big"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/fizzfib/internal/format"
	"github.com/agbru/fizzfib/internal/orchestration"
	"github.com/agbru/fizzfib/internal/progress"
	"github.com/agbru/fizzfib/internal/ui"
)

const (
	// TruncationLimit is the digit count above which values are shortened
	// unless --verbose is set.
	TruncationLimit = 100
	// DisplayEdges is the number of leading and trailing digits kept.
	DisplayEdges = 25
	// ProgressRefreshRate is both the spinner frame rate and the redraw rate.
	ProgressRefreshRate = 200 * time.Millisecond
	ProgressBarWidth    = 40
)

// Spinner is the terminal animation shown while calculators run.
type Spinner interface {
	Start()
	Stop()
	UpdateSuffix(suffix string)
}

type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start()                  { rs.s.Start() }
func (rs *realSpinner) Stop()                   { rs.s.Stop() }
func (rs *realSpinner) UpdateSuffix(suf string) { rs.s.Suffix = suf }

// newSpinner is swapped in tests.
var newSpinner = func(options ...spinner.Option) Spinner {
	return &realSpinner{spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)}
}

// DisplayProgress animates a spinner with an aggregated progress bar and
// ETA until progressChan is closed. It calls wg.Done on return.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numCalculators int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numCalculators)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(progressSuffix(agg, 0, 0))
	s.Start()
	defer s.Stop()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.UpdateSuffix(progressSuffix(agg, 1, 0))
				return
			}
			agg.Update(update)
		case <-ticker.C:
			s.UpdateSuffix(progressSuffix(agg, agg.CalculateAverage(), agg.GetETA()))
		}
	}
}

func progressSuffix(agg *orchestration.ProgressAggregator, avg float64, eta time.Duration) string {
	label := "Calculating"
	if agg.IsMultiCalculator() {
		label = fmt.Sprintf("Comparing %d algorithms", agg.NumCalculators())
	}
	return fmt.Sprintf(" %s %s", label, format.FormatProgressBarWithETA(avg, eta, ProgressBarWidth))
}

// DisplayResult prints the summary of a Fibonacci result. The value itself
// is shown only when showValue is set, truncated unless verbose is set.
// details adds a size and digit analysis.
func DisplayResult(result *big.Int, n uint64, duration time.Duration, verbose, details, showValue bool, out io.Writer) {
	digits := result.String()

	fmt.Fprintf(out, "Result binary size: %s%s%s bits.\n",
		ui.ColorCyan(), format.FormatNumberString(fmt.Sprint(result.BitLen())), ui.ColorReset())

	if details {
		fmt.Fprintf(out, "\n--- Detailed result analysis ---\n")
		fmt.Fprintf(out, "Calculation time        : %s%s%s\n", ui.ColorGreen(), format.FormatExecutionDuration(duration), ui.ColorReset())
		fmt.Fprintf(out, "Number of digits        : %s%s%s\n", ui.ColorCyan(), format.FormatNumberString(fmt.Sprint(len(digits))), ui.ColorReset())
		if len(digits) > 1 {
			fmt.Fprintf(out, "Scientific notation     : %s%c.%se%d%s\n", ui.ColorCyan(), digits[0], leadingFraction(digits, 6), len(digits)-1, ui.ColorReset())
		}
	}

	if !showValue {
		return
	}

	fmt.Fprintf(out, "\n--- Calculated value ---\n")
	if verbose || len(digits) <= TruncationLimit {
		fmt.Fprintf(out, "F(%d) =\n%s%s%s\n", n, ui.ColorGreen(), format.FormatNumberString(digits), ui.ColorReset())
		return
	}
	fmt.Fprintf(out, "F(%d) = %s%s%s (truncated)\n", n, ui.ColorGreen(), format.TruncateDigits(digits, DisplayEdges), ui.ColorReset())
	fmt.Fprintf(out, "Tip: use %s-v%s to print the full value.\n", ui.ColorYellow(), ui.ColorReset())
}

func leadingFraction(digits string, k int) string {
	if len(digits)-1 < k {
		k = len(digits) - 1
	}
	return digits[1 : 1+k]
}
