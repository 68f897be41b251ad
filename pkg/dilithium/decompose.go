package dilithium

import (
	"github.com/vantoluck/dilithium-threshold/pkg/params"
	"github.com/vantoluck/dilithium-threshold/pkg/ring"
)

// decomposeCoeff splits a canonical coefficient r in [0, Q) into (r1, r0)
// at modulus alpha = 2*gamma2, such that r = r1*alpha + r0 (mod q) and r0
// is the centered representative in (-alpha/2, alpha/2]. This is the
// HighBits/LowBits decomposition.
func decomposeCoeff(r uint32, alpha int64) (r1, r0 int64) {
	rr := int64(r)
	r0 = rr % alpha
	if r0 > alpha/2 {
		r0 -= alpha
	}
	if rr-r0 == params.Q-1 {
		r1 = 0
		r0--
		return
	}
	r1 = (rr - r0) / alpha
	return
}

// HighBits returns the r1 component of every coefficient of every
// polynomial in w, decomposed at modulus alpha = 2*gamma2.
func HighBits(w ring.Vector, alpha int64) [][]int64 {
	out := make([][]int64, w.Len())
	for i := 0; i < w.Len(); i++ {
		p := w.At(i)
		row := make([]int64, params.N)
		for j, c := range p.Coeffs {
			row[j], _ = decomposeCoeff(c, alpha)
		}
		out[i] = row
	}
	return out
}

// LowBits returns the r0 component, mirroring HighBits.
func LowBits(w ring.Vector, alpha int64) [][]int64 {
	out := make([][]int64, w.Len())
	for i := 0; i < w.Len(); i++ {
		p := w.At(i)
		row := make([]int64, params.N)
		for j, c := range p.Coeffs {
			_, row[j] = decomposeCoeff(c, alpha)
		}
		out[i] = row
	}
	return out
}

// NormInfinityRows returns the max absolute value over a HighBits/LowBits
// style [][]int64 result, used for the r0 bound check in sign's step 5.
func NormInfinityRows(rows [][]int64) int64 {
	var max int64
	for _, row := range rows {
		for _, v := range row {
			if v < 0 {
				v = -v
			}
			if v > max {
				max = v
			}
		}
	}
	return max
}

// Hint is a compact per-coefficient bit vector recording whether adding
// c*t0 to w-c*s2 would change its HighBits.
type Hint struct {
	Bits [][]bool // one row per polynomial (k rows), params.N bits each
}

// Weight returns the hint's Hamming weight, checked against Params.Omega.
func (h Hint) Weight() int {
	n := 0
	for _, row := range h.Bits {
		for _, b := range row {
			if b {
				n++
			}
		}
	}
	return n
}

// MakeHint computes, coefficient-wise, whether HighBits(r, alpha) differs
// from HighBits(r+z, alpha) — the signal the verifier needs to recover
// HighBits(r) from r+z.
func MakeHint(z, r ring.Vector, alpha int64) Hint {
	h := Hint{Bits: make([][]bool, r.Len())}
	for i := 0; i < r.Len(); i++ {
		rp, zp := r.At(i), z.At(i)
		row := make([]bool, params.N)
		for j := 0; j < params.N; j++ {
			r1, _ := decomposeCoeff(rp.Coeffs[j], alpha)
			v1, _ := decomposeCoeff(ring.AddMod(rp.Coeffs[j], zp.Coeffs[j]), alpha)
			row[j] = r1 != v1
		}
		h.Bits[i] = row
	}
	return h
}

// UseHint moves each HighBits(r, alpha) coefficient by one step wherever h
// is set. For h = MakeHint(z, r) with z small against alpha,
// UseHint(h, r) equals HighBits(r+z) and UseHint(h, r+z) equals
// HighBits(r); Verify uses the second form, with r = w - c*s2 and
// r+z = A*z - c*(t - t0).
func UseHint(h Hint, r ring.Vector, alpha int64) [][]int64 {
	m := (params.Q - 1) / alpha
	out := make([][]int64, r.Len())
	for i := 0; i < r.Len(); i++ {
		p := r.At(i)
		row := make([]int64, params.N)
		for j, c := range p.Coeffs {
			r1, r0 := decomposeCoeff(c, alpha)
			if h.Bits[i][j] {
				if r0 > 0 {
					r1 = (r1 + 1) % m
				} else {
					r1 = ((r1-1)%m + m) % m
				}
			}
			row[j] = r1
		}
		out[i] = row
	}
	return out
}

// EqualRows reports whether two HighBits-shaped results are identical.
func EqualRows(a, b [][]int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

// EncodeRows serializes a HighBits-shaped result into a deterministic byte
// string suitable for hashing into the challenge c = H(msg || w1).
func EncodeRows(rows [][]int64) []byte {
	buf := make([]byte, 0, len(rows)*params.N*2)
	for _, row := range rows {
		for _, v := range row {
			buf = append(buf, byte(v), byte(v>>8))
		}
	}
	return buf
}
