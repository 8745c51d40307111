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
	"github.com/agbru/fizzfib/internal/fizzbuzz"
)

// runFizzBuzz prints the FizzBuzz text for 1..N. Quiet mode prints the text
// alone, so stdout equals fizzbuzz.Generate(N) byte for byte. --timeout and
// SIGINT stop the output between lines.
func (a *Application) runFizzBuzz(ctx context.Context, out io.Writer) int {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	// Validate keeps N within int for this task.
	bound := int(a.Config.N)
	start := time.Now()

	if a.Config.OutputFile != "" {
		if err := cli.WriteFizzBuzzToFile(ctx, bound, a.Config.OutputFile); err != nil {
			return a.fizzBuzzFailed(err, "Error saving result", start)
		}
	}

	if _, err := fizzbuzz.WriteToContext(ctx, out, bound); err != nil {
		return a.fizzBuzzFailed(err, "Error writing output", start)
	}
	if a.Config.Quiet {
		return apperrors.ExitSuccess
	}

	cli.DisplayFizzBuzzSummary(out, fizzbuzz.Summarize(bound), time.Since(start))
	if a.Config.OutputFile != "" {
		cli.DisplaySavedNotice(out, a.Config.OutputFile)
	}
	return apperrors.ExitSuccess
}

func (a *Application) fizzBuzzFailed(err error, prefix string, start time.Time) int {
	if apperrors.IsContextError(err) {
		return cli.CLIResultPresenter{}.HandleError(err, time.Since(start), a.ErrWriter)
	}
	fmt.Fprintf(a.ErrWriter, "%s: %v\n", prefix, err)
	return apperrors.ExitErrorGeneric
}
