package fibonacci

import (
	"context"
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// calcF computes F(n) with a core algorithm, bypassing the word-sized path.
func calcF(calc coreCalculator, n uint64) (*big.Int, error) {
	return calc.CalculateCore(context.Background(), func(float64) {}, n, Options{ParallelThreshold: 2048})
}

func allCores() []coreCalculator {
	cores := make([]coreCalculator, 0, len(builtinCores))
	for _, mk := range builtinCores {
		cores = append(cores, mk())
	}
	return cores
}

// TestCompute_RecurrenceProperty checks Compute(n) == Compute(n-1) + Compute(n-2).
func TestCompute_RecurrenceProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Compute satisfies F(n) = F(n-1) + F(n-2)", prop.ForAll(
		func(n int) bool {
			sum := new(big.Int).Add(Compute(n-1), Compute(n-2))
			return Compute(n).Cmp(sum) == 0
		},
		gen.IntRange(2, 3000),
	))

	properties.Property("Compute is non-negative and non-decreasing", prop.ForAll(
		func(n int) bool {
			return Compute(n).Sign() >= 0 && Compute(n+1).Cmp(Compute(n)) >= 0
		},
		gen.IntRange(0, 3000),
	))

	properties.TestingRun(t)
}

// TestCassinisIdentity_PropertyBased verifies F(n-1)*F(n+1) - F(n)² = (-1)ⁿ
// for every algorithm.
func TestCassinisIdentity_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	for _, calculator := range allCores() {
		properties.Property(calculator.Name()+" satisfies Cassini's identity", prop.ForAll(
			func(n uint64) bool {
				fnMinus1, err1 := calcF(calculator, n-1)
				fn, err2 := calcF(calculator, n)
				fnPlus1, err3 := calcF(calculator, n+1)
				if err1 != nil || err2 != nil || err3 != nil {
					return false
				}

				left := new(big.Int).Mul(fnMinus1, fnPlus1)
				left.Sub(left, new(big.Int).Mul(fn, fn))

				right := big.NewInt(1)
				if n%2 != 0 {
					right.Neg(right)
				}
				return left.Cmp(right) == 0
			},
			gen.UInt64Range(1, 5000),
		))
	}

	properties.TestingRun(t)
}

// TestAlgorithmsAgreeWithCompute_PropertyBased cross-checks every algorithm
// against the plain loop.
func TestAlgorithmsAgreeWithCompute_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	for _, calculator := range allCores() {
		properties.Property(calculator.Name()+" matches Compute", prop.ForAll(
			func(n uint64) bool {
				got, err := calcF(calculator, n)
				return err == nil && got.Cmp(Compute(int(n))) == 0
			},
			gen.UInt64Range(0, 4000),
		))
	}

	properties.TestingRun(t)
}

// TestGCDIdentity_PropertyBased verifies GCD(F(m), F(n)) = F(GCD(m, n)).
func TestGCDIdentity_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	calculator := OptimizedFastDoubling{}
	properties.Property("GCD(F(m), F(n)) = F(GCD(m, n))", prop.ForAll(
		func(m, n uint64) bool {
			fm, err1 := calcF(calculator, m)
			fn, err2 := calcF(calculator, n)
			fg, err3 := calcF(calculator, gcdUint64(m, n))
			if err1 != nil || err2 != nil || err3 != nil {
				return false
			}
			return new(big.Int).GCD(nil, nil, fm, fn).Cmp(fg) == 0
		},
		gen.UInt64Range(1, 3000),
		gen.UInt64Range(1, 3000),
	))

	properties.TestingRun(t)
}

func gcdUint64(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
