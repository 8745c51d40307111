package fibonacci

const (
	// MaxUint64Index is the largest n for which F(n) fits in a uint64.
	// Calculators take a word-sized loop up to this index.
	MaxUint64Index = 93

	// DefaultParallelThreshold is the operand size, in bits, above which the
	// doubling step runs its three multiplications on separate goroutines.
	DefaultParallelThreshold = 4096

	// cancelCheckInterval is how many iterations the linear loop runs between
	// two context checks.
	cancelCheckInterval = 1 << 12

	// growthFactor is log2(phi), used to estimate the bit length of F(n).
	growthFactor = 0.69424
)

// EstimateBits returns an estimate of the bit length of F(n).
func EstimateBits(n uint64) uint64 {
	return uint64(float64(n)*growthFactor) + 1
}
