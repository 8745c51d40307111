package fibonacci

import "math/big"

// Compute returns F(count), the term reached after advancing count steps from
// the seeds (0, 1). Compute(0) is 0 and Compute(10) is 55.
//
// Arbitrary precision is used so the result never overflows. A negative count
// leaves the loop body unexecuted and yields 0.
func Compute(count int) *big.Int {
	previous := big.NewInt(0)
	current := big.NewInt(1)
	for i := 0; i < count; i++ {
		// previous holds F(i), current holds F(i+1).
		previous.Add(previous, current)
		previous, current = current, previous
	}
	return previous
}

// computeUint64 is the word-sized variant of Compute for n <= MaxUint64Index.
func computeUint64(n uint64) uint64 {
	var previous, current uint64 = 0, 1
	for i := uint64(0); i < n; i++ {
		previous, current = current, previous+current
	}
	return previous
}
