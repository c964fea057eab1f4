package math

import (
	"fmt"
	"math/big"
)

// RateScale is the fixed-point scale used by exchange rate reads (1e18).
var RateScale = Pow10(18)

// Clone creates an independent copy of x. A nil input yields zero.
func Clone(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(x)
}

// Pow10 returns 10^n as a fresh *big.Int. Negative exponents yield zero.
func Pow10(n int) *big.Int {
	if n < 0 {
		return new(big.Int)
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// IsPositive returns true if x is non-nil and greater than zero
func IsPositive(x *big.Int) bool {
	return x != nil && x.Sign() > 0
}

// FromString parses a base-10 integer string.
func FromString(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return v, nil
}
