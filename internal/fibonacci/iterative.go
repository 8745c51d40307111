package fibonacci

import (
	"context"
	"math/big"

	"github.com/agbru/fizzfib/internal/progress"
)

// IterativeAddition advances the (previous, current) pair n times, the same
// loop as Compute. It is O(n) big additions and serves as the reference the
// logarithmic algorithms are checked against.
type IterativeAddition struct{}

// Name returns the algorithm name.
func (IterativeAddition) Name() string {
	return "Iterative Addition (O(n))"
}

// CalculateCore computes F(n), checking ctx every cancelCheckInterval steps.
func (IterativeAddition) CalculateCore(ctx context.Context, reporter progress.ProgressCallback, n uint64, _ Options) (*big.Int, error) {
	previous := big.NewInt(0)
	current := big.NewInt(1)
	for i := uint64(0); i < n; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			reporter(float64(i) / float64(n))
		}
		previous.Add(previous, current)
		previous, current = current, previous
	}
	return previous, nil
}
