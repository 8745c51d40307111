// Package fizzbuzz renders the FizzBuzz text sequence.
//
// Each integer i from 1 to the bound becomes one line: "Fizz" when i is a
// multiple of 3, otherwise "Buzz" when it is a multiple of 5, otherwise its
// decimal digits. The Fizz test runs first, so multiples of 15 print "Fizz";
// the combined "FizzBuzz" token is never produced.
package fizzbuzz

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"
)

const (
	Fizz = "Fizz"
	Buzz = "Buzz"
)

const (
	// checkEvery is the number of lines WriteToContext writes between two
	// context checks.
	checkEvery = 4096
	// maxPrealloc caps the buffer Generate reserves up front.
	maxPrealloc = 64 << 20
)

// Token returns the line for a single integer, without the newline.
func Token(i int) string {
	switch {
	case i%3 == 0:
		return Fizz
	case i%5 == 0:
		return Buzz
	default:
		return strconv.Itoa(i)
	}
}

// Generate returns the newline-terminated lines for 1 through bound.
// A bound below 1 yields the empty string.
func Generate(bound int) string {
	if bound < 1 {
		return ""
	}
	var b strings.Builder
	b.Grow(estimateSize(bound))
	for i := 0; i < bound; i++ {
		b.WriteString(Token(i + 1))
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteTo streams the same text as Generate(bound) to w and returns the
// number of bytes written. Large bounds never materialize in memory.
func WriteTo(w io.Writer, bound int) (int64, error) {
	return WriteToContext(context.Background(), w, bound)
}

// WriteToContext is WriteTo that gives up with ctx.Err() once ctx is done.
// Lines written before the cancellation are flushed to w.
func WriteToContext(ctx context.Context, w io.Writer, bound int) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	for k := 0; k < bound; k++ {
		if k%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				if ferr := bw.Flush(); ferr != nil {
					return written, ferr
				}
				return written, err
			}
		}
		n, err := bw.WriteString(Token(k + 1))
		written += int64(n)
		if err != nil {
			return written, err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return written, err
		}
		written++
	}
	return written, bw.Flush()
}

// estimateSize bounds the output length of Generate(bound) from above,
// capped at maxPrealloc.
func estimateSize(bound int) int {
	perLine := len(strconv.Itoa(bound)) + 1
	if bound > maxPrealloc/perLine {
		return maxPrealloc
	}
	return bound * perLine
}
