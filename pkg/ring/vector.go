package ring

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Vector is an ordered sequence of L Polynomials. Arithmetic is
// componentwise; NormInfinity is the max over contained polynomials.
type Vector struct {
	Polys []Polynomial
}

// NewVector allocates a zero vector of length L.
func NewVector(l int) Vector {
	return Vector{Polys: make([]Polynomial, l)}
}

// RandomVector draws a vector of length L with uniform Z_q coefficients.
func RandomVector(rnd io.Reader, l int) (Vector, error) {
	v := NewVector(l)
	for i := range v.Polys {
		p, err := Random(rnd)
		if err != nil {
			return Vector{}, err
		}
		v.Polys[i] = p
	}
	return v, nil
}

// RandomBoundedVector draws a vector of length L with coefficients in
// [-eta, eta].
func RandomBoundedVector(rnd io.Reader, l int, eta int32) (Vector, error) {
	v := NewVector(l)
	for i := range v.Polys {
		p, err := RandomBounded(rnd, eta)
		if err != nil {
			return Vector{}, err
		}
		v.Polys[i] = p
	}
	return v, nil
}

// Len returns the vector's declared length L.
func (v Vector) Len() int { return len(v.Polys) }

// At returns the i-th polynomial.
func (v Vector) At(i int) Polynomial { return v.Polys[i] }

// Set assigns the i-th polynomial.
func (v Vector) Set(i int, p Polynomial) { v.Polys[i] = p }

func (v Vector) checkLen(other Vector) error {
	if v.Len() != other.Len() {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, v.Len(), other.Len())
	}
	return nil
}

// Add returns v+w componentwise. Panics on length mismatch — an invariant
// violation.
func (v Vector) Add(w Vector) Vector {
	if err := v.checkLen(w); err != nil {
		panic(err)
	}
	out := NewVector(v.Len())
	for i := range v.Polys {
		out.Polys[i] = v.Polys[i].Add(w.Polys[i])
	}
	return out
}

// Sub returns v-w componentwise. Panics on length mismatch.
func (v Vector) Sub(w Vector) Vector {
	if err := v.checkLen(w); err != nil {
		panic(err)
	}
	out := NewVector(v.Len())
	for i := range v.Polys {
		out.Polys[i] = v.Polys[i].Sub(w.Polys[i])
	}
	return out
}

// ScalarMul returns c*v componentwise.
func (v Vector) ScalarMul(c int64) Vector {
	out := NewVector(v.Len())
	for i := range v.Polys {
		out.Polys[i] = v.Polys[i].ScalarMul(c)
	}
	return out
}

// PolyMul multiplies every component of v by the fixed polynomial c,
// returning c*v. Used for c*s1, c*s2 in the signing equations.
func (v Vector) PolyMul(c Polynomial) Vector {
	out := NewVector(v.Len())
	for i := range v.Polys {
		out.Polys[i] = v.Polys[i].Mul(c)
	}
	return out
}

// Equal reports componentwise equality.
func (v Vector) Equal(w Vector) bool {
	if v.Len() != w.Len() {
		return false
	}
	for i := range v.Polys {
		if !v.Polys[i].Equal(w.Polys[i]) {
			return false
		}
	}
	return true
}

// NormInfinity returns the max over contained polynomials' NormInfinity.
func (v Vector) NormInfinity() int64 {
	var max int64
	for _, p := range v.Polys {
		if n := p.NormInfinity(); n > max {
			max = n
		}
	}
	return max
}

// MarshalBinary encodes the vector as a little-endian u32 length prefix
// (the polynomial count) followed by each polynomial's packed encoding.
func (v Vector) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 4, 4+len(v.Polys)*4*256)
	binary.LittleEndian.PutUint32(buf, uint32(len(v.Polys)))
	for _, p := range v.Polys {
		pb, err := p.MarshalBinary()
		if err != nil {
			return nil, err
		}
		buf = append(buf, pb...)
	}
	return buf, nil
}

// UnmarshalBinary decodes a vector previously produced by MarshalBinary.
func (v *Vector) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("ring: vector: truncated length prefix")
	}
	l := int(binary.LittleEndian.Uint32(data))
	data = data[4:]
	const polyBytes = 4 * 256
	if len(data) != l*polyBytes {
		return fmt.Errorf("ring: vector: expected %d bytes for %d polynomials, got %d", l*polyBytes, l, len(data))
	}
	out := NewVector(l)
	for i := 0; i < l; i++ {
		if err := out.Polys[i].UnmarshalBinary(data[i*polyBytes : (i+1)*polyBytes]); err != nil {
			return err
		}
	}
	*v = out
	return nil
}
