//go:build gmp

package fibonacci

import (
	"context"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/ncw/gmp"

	"github.com/agbru/fizzfib/internal/progress"
)

func init() {
	builtinCores["gmp"] = func() coreCalculator { return GMPFastDoubling{} }
}

// GMPFastDoubling runs the fast doubling recurrence on libgmp integers.
// It is only built with -tags gmp since it needs cgo and libgmp.
type GMPFastDoubling struct{}

// Name returns the algorithm name.
func (GMPFastDoubling) Name() string {
	return "Fast Doubling (GMP)"
}

// CalculateCore implements coreCalculator.
func (GMPFastDoubling) CalculateCore(ctx context.Context, reporter progress.ProgressCallback, n uint64, _ Options) (*big.Int, error) {
	fk := gmp.NewInt(0)
	fk1 := gmp.NewInt(1)
	t1, t2, t3 := new(gmp.Int), new(gmp.Int), new(gmp.Int)

	numBits := bits.Len64(n)
	for i := numBits - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t1.Lsh(fk1, 1)
		t1.Sub(t1, fk)
		t1.Mul(t1, fk)
		t2.Mul(fk, fk)
		t3.Mul(fk1, fk1)
		fk.Set(t1)
		fk1.Add(t2, t3)

		if (n>>uint(i))&1 == 1 {
			t1.Add(fk, fk1)
			fk, fk1, t1 = fk1, t1, fk
		}
		reporter(doublingProgress(numBits-i, numBits))
	}

	result, ok := new(big.Int).SetString(fk.String(), 10)
	if !ok {
		return nil, fmt.Errorf("gmp: cannot convert F(%d) to big.Int", n)
	}
	return result, nil
}
