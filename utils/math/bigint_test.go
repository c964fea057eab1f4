package math

import (
	"math/big"
	"testing"
)

func TestBigInt(t *testing.T) {
	tests := []struct {
		name string
		fn   func(t *testing.T)
	}{
		{"TestClone", testClone},
		{"TestPow10", testPow10},
		{"TestIsPositive", testIsPositive},
		{"TestFromString", testFromString},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.fn)
	}
}

func testClone(t *testing.T) {
	x := big.NewInt(42)
	y := Clone(x)
	y.Add(y, big.NewInt(1))
	if x.Int64() != 42 {
		t.Errorf("Clone aliases its input: got %v", x)
	}
	if Clone(nil).Sign() != 0 {
		t.Error("Clone(nil) should be zero")
	}
}

func testPow10(t *testing.T) {
	if got := Pow10(0); got.Int64() != 1 {
		t.Errorf("Pow10(0) = %v, want 1", got)
	}
	if got := Pow10(10); got.Int64() != 10_000_000_000 {
		t.Errorf("Pow10(10) = %v, want 1e10", got)
	}
	want, _ := new(big.Int).SetString("1000000000000000000", 10)
	if RateScale.Cmp(want) != 0 {
		t.Errorf("RateScale = %v, want 1e18", RateScale)
	}
	if Pow10(-1).Sign() != 0 {
		t.Error("Pow10 of a negative exponent should be zero")
	}
}

func testIsPositive(t *testing.T) {
	if IsPositive(nil) || IsPositive(big.NewInt(-1)) || IsPositive(big.NewInt(0)) {
		t.Error("IsPositive misbehaves")
	}
	if !IsPositive(big.NewInt(1)) {
		t.Error("IsPositive rejects a positive value")
	}
}

func testFromString(t *testing.T) {
	v, err := FromString("123456789012345678901234567890")
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	if v.String() != "123456789012345678901234567890" {
		t.Errorf("round trip mismatch: %v", v)
	}
	if _, err := FromString("not-a-number"); err == nil {
		t.Error("FromString should reject garbage")
	}
}
