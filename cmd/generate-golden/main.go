// Command generate-golden writes the reference data used by the fibonacci
// and fizzbuzz golden tests. Fibonacci values come from a plain big.Int
// loop that shares no code with the calculators under test.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/agbru/fizzfib/internal/fizzbuzz"
)

// FibonacciCase is one reference value.
type FibonacciCase struct {
	N     uint64 `json:"n"`
	Value string `json:"value"`
}

var (
	fibonacciIndexes = []uint64{0, 1, 2, 3, 10, 20, 50, 92, 93, 94, 100, 250, 500, 1000, 2500, 5000, 10000}
	fizzBuzzBounds   = []int{0, 1, 2, 3, 5, 15, 30, 100, 1000, 12345}
)

func main() {
	fibOut := flag.String("fibonacci", "internal/fibonacci/testdata/golden.json", "output file for Fibonacci values")
	fbOut := flag.String("fizzbuzz", "internal/fizzbuzz/testdata/golden.json", "output file for FizzBuzz summaries")
	flag.Parse()

	fib := make([]FibonacciCase, len(fibonacciIndexes))
	for i, n := range fibonacciIndexes {
		fib[i] = FibonacciCase{N: n, Value: fibBig(n).String()}
	}
	fb := make([]fizzbuzz.Summary, len(fizzBuzzBounds))
	for i, bound := range fizzBuzzBounds {
		fb[i] = countLines(bound)
	}

	for _, f := range []struct {
		path string
		data any
	}{
		{*fibOut, fib},
		{*fbOut, fb},
	} {
		if err := writeJSON(f.path, f.data); err != nil {
			fmt.Fprintf(os.Stderr, "generate-golden: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", f.path)
	}
}

// fibBig is the oracle: F(n) by n big additions.
func fibBig(n uint64) *big.Int {
	a, b := big.NewInt(0), big.NewInt(1)
	for i := uint64(0); i < n; i++ {
		a.Add(a, b)
		a, b = b, a
	}
	return a
}

// countLines classifies 1..bound by direct testing, independently of
// fizzbuzz.Summarize's arithmetic.
func countLines(bound int) fizzbuzz.Summary {
	s := fizzbuzz.Summary{Bound: bound}
	for i := 1; i <= bound; i++ {
		switch {
		case i%3 == 0:
			s.Fizz++
		case i%5 == 0:
			s.Buzz++
		default:
			s.Numbers++
		}
	}
	return s
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
