package fibonacci

import (
	"context"
	"math/big"
	"math/bits"

	"github.com/agbru/fizzfib/internal/progress"
)

// MatrixExponentiation raises Q = [[1,1],[1,0]] to the n-th power by repeated
// squaring. Q^k = [[F(k+1), F(k)], [F(k), F(k-1)]] is symmetric, so only
// three entries are tracked.
type MatrixExponentiation struct{}

// Name returns the algorithm name.
func (MatrixExponentiation) Name() string {
	return "Matrix Exponentiation (O(log n))"
}

// symMatrix is the symmetric 2x2 matrix [[a, b], [b, c]].
type symMatrix struct {
	a, b, c *big.Int
}

func newIdentity() symMatrix {
	return symMatrix{a: big.NewInt(1), b: big.NewInt(0), c: big.NewInt(1)}
}

// CalculateCore implements coreCalculator.
func (MatrixExponentiation) CalculateCore(ctx context.Context, reporter progress.ProgressCallback, n uint64, opts Options) (*big.Int, error) {
	m := newIdentity()
	aa, bb, cc, ac := new(big.Int), new(big.Int), new(big.Int), new(big.Int)

	threshold := opts.parallelThreshold()
	numBits := bits.Len64(n)
	for i := numBits - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Squaring: [[a²+b², b(a+c)], [b(a+c), b²+c²]]
		ac.Add(m.a, m.c)
		square := []func(){
			func() { aa.Mul(m.a, m.a) },
			func() { bb.Mul(m.b, m.b) },
			func() { cc.Mul(m.c, m.c) },
			func() { ac.Mul(ac, m.b) },
		}
		if threshold > 0 && m.a.BitLen() > threshold {
			runParallel(square...)
		} else {
			for _, fn := range square {
				fn()
			}
		}
		m.a.Add(aa, bb)
		m.c.Add(bb, cc)
		m.b.Set(ac)

		// Multiplying by Q: [[a+b, a], [a, b]]
		if (n>>uint(i))&1 == 1 {
			m.c.Set(m.b)
			m.b.Set(m.a)
			m.a.Add(m.a, m.c)
		}
		reporter(doublingProgress(numBits-i, numBits))
	}
	return m.b, nil
}
