package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	apperrors "github.com/agbru/fizzfib/internal/errors"
	"github.com/agbru/fizzfib/internal/format"
	"github.com/agbru/fizzfib/internal/orchestration"
	"github.com/agbru/fizzfib/internal/progress"
	"github.com/agbru/fizzfib/internal/ui"
)

// CLIProgressReporter shows progress with a spinner.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numCalculators int, out io.Writer) {
	DisplayProgress(wg, progressChan, numCalculators, out)
}

// CLIResultPresenter prints colored comparison tables and results.
type CLIResultPresenter struct{}

var (
	_ orchestration.ResultPresenter = CLIResultPresenter{}
	_ orchestration.ErrorHandler    = CLIResultPresenter{}
)

// PresentComparisonTable prints one row per result. Padding is computed on
// the visible text so that ANSI codes do not break the alignment.
func (CLIResultPresenter) PresentComparisonTable(results []orchestration.CalculationResult, out io.Writer) {
	const nameHeader, durationHeader = "Algorithm", "Duration"

	nameWidth, durationWidth := len(nameHeader), len(durationHeader)
	durations := make([]string, len(results))
	for i, res := range results {
		durations[i] = displayDuration(res.Duration)
		nameWidth = max(nameWidth, len(res.Name))
		durationWidth = max(durationWidth, len([]rune(durations[i])))
	}

	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	fmt.Fprintf(out, "%s%s%s%s   %s%s%s%s   %sStatus%s\n",
		ui.ColorUnderline(), nameHeader, ui.ColorReset(), pad(nameWidth-len(nameHeader)),
		ui.ColorUnderline(), durationHeader, ui.ColorReset(), pad(durationWidth-len(durationHeader)),
		ui.ColorUnderline(), ui.ColorReset())

	for i, res := range results {
		status := fmt.Sprintf("%sOK%s", ui.ColorGreen(), ui.ColorReset())
		if res.Err != nil {
			status = fmt.Sprintf("%sFailed (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
		}
		fmt.Fprintf(out, "%s%s%s%s   %s%s%s%s   %s\n",
			ui.ColorBlue(), res.Name, ui.ColorReset(), pad(nameWidth-len(res.Name)),
			ui.ColorYellow(), durations[i], ui.ColorReset(), pad(durationWidth-len([]rune(durations[i]))),
			status)
	}
}

func displayDuration(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(d)
}

func pad(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

func (CLIResultPresenter) PresentResult(result orchestration.CalculationResult, opts orchestration.PresentationOptions, out io.Writer) {
	fmt.Fprintf(out, "Fastest algorithm: %s%s%s in %s%s%s.\n",
		ui.ColorBlue(), result.Name, ui.ColorReset(),
		ui.ColorGreen(), displayDuration(result.Duration), ui.ColorReset())
	DisplayResult(result.Result, opts.N, result.Duration, opts.Verbose, opts.Details, opts.ShowValue, out)
}

func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleCalculationError(err, duration, out, CLIColorProvider{})
}

// CLIColorProvider feeds the active theme to apperrors.
type CLIColorProvider struct{}

var _ apperrors.ColorProvider = CLIColorProvider{}

func (CLIColorProvider) Red() string    { return ui.ColorRed() }
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }
