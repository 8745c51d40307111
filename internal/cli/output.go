package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/agbru/fizzfib/internal/fizzbuzz"
	"github.com/agbru/fizzfib/internal/ui"
)

// OutputConfig selects how a result is printed and saved.
type OutputConfig struct {
	OutputFile string
	Quiet      bool
	Verbose    bool
	ShowValue  bool
}

// createOutputFile creates path and its parent directories.
func createOutputFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// WriteResultToFile saves F(n) with a commented header describing the run.
// It does nothing when config.OutputFile is empty.
func WriteResultToFile(result *big.Int, n uint64, duration time.Duration, algo string, config OutputConfig) (err error) {
	if config.OutputFile == "" {
		return nil
	}
	f, err := createOutputFile(config.OutputFile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	digits := result.String()
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# Fibonacci result\n")
	fmt.Fprintf(w, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "# Algorithm: %s\n", algo)
	fmt.Fprintf(w, "# Duration: %s\n", duration)
	fmt.Fprintf(w, "# N: %d\n", n)
	fmt.Fprintf(w, "# Bits: %d\n", result.BitLen())
	fmt.Fprintf(w, "# Digits: %d\n\n", len(digits))
	fmt.Fprintf(w, "F(%d) =\n%s\n", n, digits)
	return w.Flush()
}

// WriteFizzBuzzToFile saves the FizzBuzz text for bound, without header,
// so that the file is byte-identical to the console output. Writing stops
// when ctx is done.
func WriteFizzBuzzToFile(ctx context.Context, bound int, path string) (err error) {
	if path == "" {
		return nil
	}
	f, err := createOutputFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = fizzbuzz.WriteToContext(ctx, f, bound)
	return err
}

// FormatQuietResult returns the bare decimal value used by --quiet.
func FormatQuietResult(result *big.Int) string {
	return result.String()
}

// DisplayQuietResult prints the bare value and a newline.
func DisplayQuietResult(out io.Writer, result *big.Int) {
	fmt.Fprintln(out, FormatQuietResult(result))
}

// DisplaySavedNotice confirms that a result file was written.
func DisplaySavedNotice(out io.Writer, path string) {
	fmt.Fprintf(out, "\n%sResult saved to: %s%s%s\n", ui.ColorGreen(), ui.ColorCyan(), path, ui.ColorReset())
}

// DisplayFizzBuzzSummary prints the line counts of a FizzBuzz run.
func DisplayFizzBuzzSummary(out io.Writer, s fizzbuzz.Summary, duration time.Duration) {
	fmt.Fprintf(out, "\n--- FizzBuzz summary ---\n")
	fmt.Fprintf(out, "Lines   : %s%d%s\n", ui.ColorCyan(), s.Lines(), ui.ColorReset())
	fmt.Fprintf(out, "Fizz    : %s%d%s\n", ui.ColorYellow(), s.Fizz, ui.ColorReset())
	fmt.Fprintf(out, "Buzz    : %s%d%s\n", ui.ColorYellow(), s.Buzz, ui.ColorReset())
	fmt.Fprintf(out, "Numbers : %s%d%s\n", ui.ColorCyan(), s.Numbers, ui.ColorReset())
	fmt.Fprintf(out, "Time    : %s%s%s\n", ui.ColorGreen(), displayDuration(duration), ui.ColorReset())
}
