package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agbru/fizzfib/internal/fibonacci"
	"github.com/agbru/fizzfib/internal/fizzbuzz"
	"github.com/agbru/fizzfib/internal/format"
	"github.com/agbru/fizzfib/internal/orchestration"
	"github.com/agbru/fizzfib/internal/progress"
	"github.com/agbru/fizzfib/internal/ui"
)

// REPLConfig configures an interactive session.
type REPLConfig struct {
	DefaultAlgo string
	Timeout     time.Duration
	Threshold   int
}

// REPL is an interactive session reading one command per line.
type REPL struct {
	config      REPLConfig
	factory     fibonacci.CalculatorFactory
	currentAlgo string
	in          io.Reader
	out         io.Writer
}

// NewREPL creates a session reading from in and writing to out. An empty
// or "all" DefaultAlgo selects fibonacci.DefaultAlgorithm.
func NewREPL(factory fibonacci.CalculatorFactory, config REPLConfig, in io.Reader, out io.Writer) *REPL {
	algo := config.DefaultAlgo
	if _, err := factory.Get(algo); err != nil {
		algo = fibonacci.DefaultAlgorithm
	}
	return &REPL{
		config:      config,
		factory:     factory,
		currentAlgo: algo,
		in:          in,
		out:         out,
	}
}

// Start runs the session until "exit", end of input or cancellation of ctx.
func (r *REPL) Start(ctx context.Context) error {
	fmt.Fprintf(r.out, "%sfizzfib interactive mode%s. Type %shelp%s for commands.\n",
		ui.ColorBold(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())

	scanner := bufio.NewScanner(r.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(r.out, ui.ColorGreen()+"fizzfib> "+ui.ColorReset())
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		if !r.processCommand(ctx, scanner.Text()) {
			return nil
		}
	}
}

// processCommand executes one line. It returns false on exit.
func (r *REPL) processCommand(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "fib", "fibonacci", "calc":
		if n, ok := r.parseN(cmd, args); ok {
			r.calculate(ctx, n)
		}
	case "fizzbuzz", "fb":
		if n, ok := r.parseN(cmd, args); ok {
			r.fizzBuzz(ctx, n)
		}
	case "compare", "cmp":
		if n, ok := r.parseN(cmd, args); ok {
			r.compare(ctx, n)
		}
	case "algo":
		r.cmdAlgo(args)
	case "algos", "list":
		r.cmdList()
	case "help", "?":
		r.printHelp()
	case "exit", "quit":
		fmt.Fprintln(r.out, "Goodbye.")
		return false
	default:
		if n, err := strconv.ParseUint(cmd, 10, 64); err == nil {
			r.calculate(ctx, n)
			return true
		}
		r.errorf("Unknown command %q. Type help for the list of commands.", cmd)
	}
	return true
}

func (r *REPL) parseN(cmd string, args []string) (uint64, bool) {
	if len(args) != 1 {
		r.errorf("Usage: %s <n>", cmd)
		return 0, false
	}
	n, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		r.errorf("Invalid value %q: want a non-negative integer", args[0])
		return 0, false
	}
	return n, true
}

func (r *REPL) errorf(format string, a ...any) {
	fmt.Fprintf(r.out, "%s%s%s\n", ui.ColorRed(), fmt.Sprintf(format, a...), ui.ColorReset())
}

func (r *REPL) printHelp() {
	cmds := []struct{ usage, help string }{
		{"fib <n>", "compute F(n) with the current algorithm"},
		{"fizzbuzz <n>", "print FizzBuzz from 1 to n"},
		{"compare <n>", "compute F(n) with every algorithm"},
		{"algo <name>", "select the algorithm (" + strings.Join(r.factory.List(), ", ") + ")"},
		{"algos", "list the algorithms"},
		{"help", "show this help"},
		{"exit, quit", "leave"},
	}
	fmt.Fprintf(r.out, "%sCommands:%s\n", ui.ColorBold(), ui.ColorReset())
	for _, c := range cmds {
		fmt.Fprintf(r.out, "  %s%-14s%s %s\n", ui.ColorYellow(), c.usage, ui.ColorReset(), c.help)
	}
}

func (r *REPL) calculate(ctx context.Context, n uint64) {
	calc, err := r.factory.Get(r.currentAlgo)
	if err != nil {
		r.errorf("%v", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	progressChan := make(chan progress.ProgressUpdate, orchestration.ProgressBufferMultiplier)
	var wg sync.WaitGroup
	wg.Add(1)
	go DisplayProgress(&wg, progressChan, 1, r.out)

	start := time.Now()
	result, err := calc.Calculate(ctx, progressChan, 0, n, fibonacci.Options{ParallelThreshold: r.config.Threshold})
	duration := time.Since(start)
	close(progressChan)
	wg.Wait()

	if err != nil {
		r.errorf("Error: %v", err)
		return
	}

	digits := result.String()
	fmt.Fprintf(r.out, "\n  Time:   %s%s%s\n", ui.ColorGreen(), displayDuration(duration), ui.ColorReset())
	fmt.Fprintf(r.out, "  Digits: %s%d%s\n", ui.ColorCyan(), len(digits), ui.ColorReset())
	if len(digits) > TruncationLimit {
		digits = format.TruncateDigits(digits, DisplayEdges) + " (truncated)"
	}
	fmt.Fprintf(r.out, "  F(%d) = %s%s%s\n", n, ui.ColorGreen(), digits, ui.ColorReset())
}

func (r *REPL) fizzBuzz(ctx context.Context, n uint64) {
	if n > math.MaxInt {
		r.errorf("Bound %d is too large (maximum %d).", n, math.MaxInt)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()
	if _, err := fizzbuzz.WriteToContext(ctx, r.out, int(n)); err != nil {
		r.errorf("Error: %v", err)
	}
}

func (r *REPL) compare(ctx context.Context, n uint64) {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	calcs := orchestration.GetCalculatorsToRun("all", r.factory)
	results := orchestration.ExecuteCalculations(ctx, calcs, n, fibonacci.Options{ParallelThreshold: r.config.Threshold}, orchestration.NullProgressReporter{}, io.Discard)
	orchestration.SortResults(results)
	CLIResultPresenter{}.PresentComparisonTable(results, r.out)

	if orchestration.ResultsConsistent(results) {
		fmt.Fprintf(r.out, "%sAll results agree.%s\n", ui.ColorGreen(), ui.ColorReset())
	} else {
		r.errorf("Results are INCONSISTENT for F(%d).", n)
	}
}

func (r *REPL) cmdAlgo(args []string) {
	if len(args) != 1 {
		r.errorf("Usage: algo <name>")
		return
	}
	name := strings.ToLower(args[0])
	calc, err := r.factory.Get(name)
	if err != nil {
		r.errorf("Unknown algorithm %q (available: %s)", name, strings.Join(r.factory.List(), ", "))
		return
	}
	r.currentAlgo = name
	fmt.Fprintf(r.out, "Algorithm set to %s%s%s.\n", ui.ColorGreen(), calc.Name(), ui.ColorReset())
}

func (r *REPL) cmdList() {
	for _, name := range r.factory.List() {
		calc, err := r.factory.Get(name)
		if err != nil {
			continue
		}
		marker := "  "
		if name == r.currentAlgo {
			marker = "* "
		}
		fmt.Fprintf(r.out, "%s%s%-10s%s %s\n", marker, ui.ColorYellow(), name, ui.ColorReset(), calc.Name())
	}
}

// CurrentAlgo returns the selected algorithm name.
func (r *REPL) CurrentAlgo() string { return r.currentAlgo }
