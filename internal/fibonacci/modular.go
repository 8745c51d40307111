package fibonacci

import (
	"context"
	"errors"
	"math/big"
	"math/bits"
	"strings"
)

// ErrInvalidModulus is returned by the modular functions for m <= 0.
var ErrInvalidModulus = errors.New("modulus must be positive")

// FastDoublingMod returns F(n) mod m. Memory stays O(log m) whatever n is,
// which makes it the tool for printing only the last digits of huge terms.
func FastDoublingMod(n uint64, m *big.Int) (*big.Int, error) {
	return FastDoublingModContext(context.Background(), n, m)
}

// FastDoublingModContext is FastDoublingMod with cancellation between
// doubling steps.
func FastDoublingModContext(ctx context.Context, n uint64, m *big.Int) (*big.Int, error) {
	if m == nil || m.Sign() <= 0 {
		return nil, ErrInvalidModulus
	}

	fk := big.NewInt(0)
	fk1 := big.NewInt(1)
	t1, t2 := new(big.Int), new(big.Int)

	for i := bits.Len64(n) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// F(2k) = F(k) * (2F(k+1) - F(k)); Mod keeps the difference non-negative.
		t1.Lsh(fk1, 1).Sub(t1, fk).Mod(t1, m)
		t1.Mul(t1, fk).Mod(t1, m)
		// F(2k+1) = F(k+1)² + F(k)²
		t2.Mul(fk1, fk1)
		fk.Mul(fk, fk)
		t2.Add(t2, fk).Mod(t2, m)

		fk, t1 = t1, fk
		fk1, t2 = t2, fk1

		if (n>>uint(i))&1 == 1 {
			t1.Add(fk, fk1).Mod(t1, m)
			fk, fk1, t1 = fk1, t1, fk
		}
	}
	return fk.Mod(fk, m), nil
}

// LastDigits returns the last k decimal digits of F(n), left padded with
// zeros to exactly k characters.
func LastDigits(ctx context.Context, n uint64, k int) (string, error) {
	if k <= 0 {
		return "", ErrInvalidModulus
	}
	mod := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(k)), nil)
	r, err := FastDoublingModContext(ctx, n, mod)
	if err != nil {
		return "", err
	}
	s := r.String()
	if len(s) < k {
		s = strings.Repeat("0", k-len(s)) + s
	}
	return s, nil
}
