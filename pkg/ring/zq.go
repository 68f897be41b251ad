package ring

import (
	"math/bits"

	"github.com/cronokirby/saferith"

	"github.com/vantoluck/dilithium-threshold/pkg/params"
)

// Q is the Dilithium modulus, 8 380 417 = 2^23 - 2^13 + 1.
const Q uint32 = params.Q

// barrettShift/barrettM implement Barrett reduction for products of two
// canonical Z_q elements: a fixed uint32-coefficient, uint64-intermediate
// layer rather than arbitrary-precision field arithmetic.
const (
	barrettShift = 56
	barrettM     = (uint64(1) << barrettShift) / uint64(Q)
)

// reduce maps any x < Q*Q into its canonical representative in [0, Q).
func reduce(x uint64) uint32 {
	hi, lo := bits.Mul64(x, barrettM)
	quotient := (hi << (64 - barrettShift)) | (lo >> barrettShift)
	r := x - quotient*uint64(Q)
	for r >= uint64(Q) {
		r -= uint64(Q)
	}
	return uint32(r)
}

// AddMod returns (a+b) mod Q for canonical a, b.
func AddMod(a, b uint32) uint32 {
	s := uint64(a) + uint64(b)
	if s >= uint64(Q) {
		s -= uint64(Q)
	}
	return uint32(s)
}

// SubMod returns (a-b) mod Q for canonical a, b.
func SubMod(a, b uint32) uint32 {
	s := uint64(a) + uint64(Q) - uint64(b)
	if s >= uint64(Q) {
		s -= uint64(Q)
	}
	return uint32(s)
}

// MulMod returns (a*b) mod Q for canonical a, b.
func MulMod(a, b uint32) uint32 {
	return reduce(uint64(a) * uint64(b))
}

// NegMod returns (-a) mod Q for canonical a.
func NegMod(a uint32) uint32 {
	if a == 0 {
		return 0
	}
	return Q - a
}

// CenteredLift maps a canonical coefficient c in [0, Q) to its representative
// in (-Q/2, Q/2], used for norm computation.
func CenteredLift(c uint32) int64 {
	v := int64(c)
	if v > int64(Q)/2 {
		v -= int64(Q)
	}
	return v
}

// FromInt64 reduces a signed integer into the canonical range [0, Q).
func FromInt64(v int64) uint32 {
	m := v % int64(Q)
	if m < 0 {
		m += int64(Q)
	}
	return uint32(m)
}

// Inverse computes a^{-1} mod Q via Fermat's little theorem (Q is prime),
// using saferith's modular exponentiation rather than hand-rolled
// big-integer code. Panics on a == 0, which is a programming error:
// callers never invert a zero coefficient (participant ids and coefficient
// differences are checked nonzero first).
func Inverse(a uint32) uint32 {
	if a == 0 {
		panic("ring: inverse of zero")
	}
	modulus := saferith.ModulusFromUint64(uint64(Q))
	base := new(saferith.Nat).SetUint64(uint64(a))
	exponent := new(saferith.Nat).SetUint64(uint64(Q - 2))
	result := new(saferith.Nat).Exp(base, exponent, modulus)
	return uint32(result.Big().Uint64())
}
