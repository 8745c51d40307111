package fibonacci

import (
	"context"
	"math"
	"math/big"
	"math/bits"
	"sync"

	"github.com/agbru/fizzfib/internal/progress"
)

// OptimizedFastDoubling computes F(n) from the binary expansion of n using
//
//	F(2k)   = F(k) * (2*F(k+1) - F(k))
//	F(2k+1) = F(k+1)^2 + F(k)^2
//
// Temporaries are reused across iterations; the three multiplications of a
// step run concurrently once operands exceed Options.ParallelThreshold.
type OptimizedFastDoubling struct{}

// Name returns the algorithm name.
func (OptimizedFastDoubling) Name() string {
	return "Fast Doubling (O(log n))"
}

// CalculateCore implements coreCalculator.
func (OptimizedFastDoubling) CalculateCore(ctx context.Context, reporter progress.ProgressCallback, n uint64, opts Options) (*big.Int, error) {
	fk := big.NewInt(0)  // F(k)
	fk1 := big.NewInt(1) // F(k+1)
	t1 := new(big.Int)
	t2 := new(big.Int)
	t3 := new(big.Int)

	threshold := opts.parallelThreshold()
	numBits := bits.Len64(n)
	for i := numBits - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// t1 = 2*F(k+1) - F(k)
		t1.Lsh(fk1, 1).Sub(t1, fk)
		if threshold > 0 && fk1.BitLen() > threshold {
			parallelMul3(t1, t1, fk, t2, fk, fk, t3, fk1, fk1)
		} else {
			t1.Mul(t1, fk)
			t2.Mul(fk, fk)
			t3.Mul(fk1, fk1)
		}
		// fk = F(2k), fk1 = F(2k+1)
		fk.Set(t1)
		fk1.Add(t2, t3)

		if (n>>uint(i))&1 == 1 {
			t1.Add(fk, fk1)
			fk, fk1, t1 = fk1, t1, fk
		}
		reporter(doublingProgress(numBits-i, numBits))
	}
	return fk, nil
}

// parallelMul3 computes z1 = x1*y1, z2 = x2*y2 and z3 = x3*y3 concurrently.
// Destinations must not alias each other or any operand of another product.
func parallelMul3(z1, x1, y1, z2, x2, y2, z3, x3, y3 *big.Int) {
	runParallel(
		func() { z1.Mul(x1, y1) },
		func() { z2.Mul(x2, y2) },
		func() { z3.Mul(x3, y3) },
	)
}

// runParallel runs fns concurrently, the first one on the calling goroutine,
// and returns when all have finished.
func runParallel(fns ...func()) {
	if len(fns) == 0 {
		return
	}
	var wg sync.WaitGroup
	wg.Add(len(fns) - 1)
	for _, fn := range fns[1:] {
		go func() {
			defer wg.Done()
			fn()
		}()
	}
	fns[0]()
	wg.Wait()
}

// doublingProgress estimates completion after step of total doubling steps.
// Operand sizes double at each step, so step cost grows roughly fourfold.
func doublingProgress(step, total int) float64 {
	if total <= 0 {
		return 1
	}
	done := math.Pow(4, float64(step)) - 1
	all := math.Pow(4, float64(total)) - 1
	return done / all
}
