// Package ring implements arithmetic in R_q = Z_q[X]/(X^n+1), q=8380417,
// n=256 — the ring underlying the Dilithium-family lattice signature
// scheme. Coefficients are held as a fixed-size uint32 array rather than
// arbitrary-precision numeric slices.
package ring

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/vantoluck/dilithium-threshold/pkg/params"
)

// ErrLengthMismatch is returned when two operands of an arithmetic
// operation have different declared lengths. This is always a programming
// error — an invariant violation.
var ErrLengthMismatch = errors.New("ring: length mismatch")

// Polynomial is a single element of R_q: exactly params.N coefficients in
// [0, Q).
type Polynomial struct {
	Coeffs [params.N]uint32
}

// Zero returns the additive identity.
func Zero() Polynomial {
	return Polynomial{}
}

// One returns the multiplicative identity (the constant polynomial 1).
func One() Polynomial {
	var p Polynomial
	p.Coeffs[0] = 1
	return p
}

// Random draws a polynomial with coefficients uniform over Z_q, by
// rejection sampling 3-byte little-endian chunks against Q, mirroring
// Dilithium's own uniform rejection sampler.
func Random(rnd io.Reader) (Polynomial, error) {
	var p Polynomial
	buf := make([]byte, 3)
	for i := 0; i < params.N; {
		if _, err := io.ReadFull(rnd, buf); err != nil {
			return Polynomial{}, fmt.Errorf("ring: random polynomial: %w", err)
		}
		v := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16
		v &= 0x7fffff
		if v < Q {
			p.Coeffs[i] = v
			i++
		}
	}
	return p, nil
}

// RandomBounded draws a polynomial with coefficients sampled uniformly
// from [-eta, eta], lifted into canonical [0, Q) form.
func RandomBounded(rnd io.Reader, eta int32) (Polynomial, error) {
	if eta <= 0 {
		return Polynomial{}, fmt.Errorf("ring: invalid eta %d", eta)
	}
	span := uint32(2*eta + 1)
	var p Polynomial
	buf := make([]byte, 1)
	for i := 0; i < params.N; {
		if _, err := io.ReadFull(rnd, buf); err != nil {
			return Polynomial{}, fmt.Errorf("ring: random bounded polynomial: %w", err)
		}
		// Rejection sampling over the largest multiple of span that fits
		// in a byte, to avoid modulo bias.
		limit := byte((256 / int(span)) * int(span))
		if buf[0] >= limit {
			continue
		}
		v := int32(buf[0]%byte(span)) - eta
		p.Coeffs[i] = FromInt64(int64(v))
		i++
	}
	return p, nil
}

// Equal reports whether two polynomials are coefficient-wise identical.
func (p Polynomial) Equal(other Polynomial) bool {
	for i := range p.Coeffs {
		if p.Coeffs[i] != other.Coeffs[i] {
			return false
		}
	}
	return true
}

// Add returns p+q, reduced mod Q.
func (p Polynomial) Add(q Polynomial) Polynomial {
	var out Polynomial
	for i := range p.Coeffs {
		out.Coeffs[i] = AddMod(p.Coeffs[i], q.Coeffs[i])
	}
	return out
}

// Sub returns p-q, reduced mod Q.
func (p Polynomial) Sub(q Polynomial) Polynomial {
	var out Polynomial
	for i := range p.Coeffs {
		out.Coeffs[i] = SubMod(p.Coeffs[i], q.Coeffs[i])
	}
	return out
}

// ScalarMul returns c*p for an integer scalar c, reduced mod Q.
func (p Polynomial) ScalarMul(c int64) Polynomial {
	cm := FromInt64(c)
	var out Polynomial
	for i := range p.Coeffs {
		out.Coeffs[i] = MulMod(p.Coeffs[i], cm)
	}
	return out
}

// Mul returns the negacyclic convolution p*q mod (X^n+1), mod Q: for
// product coefficients c_k = sum_{i+j=k} a_i*b_j - sum_{i+j=k+n} a_i*b_j.
// Schoolbook multiplication; NTT is a drop-in replacement behind this same
// method.
func (p Polynomial) Mul(q Polynomial) Polynomial {
	var wide [2 * params.N]uint64
	for i := 0; i < params.N; i++ {
		if p.Coeffs[i] == 0 {
			continue
		}
		for j := 0; j < params.N; j++ {
			wide[i+j] += uint64(MulMod(p.Coeffs[i], q.Coeffs[j]))
		}
	}
	var out Polynomial
	for k := 0; k < params.N; k++ {
		lo := reduce(wide[k])
		hi := reduce(wide[k+params.N])
		out.Coeffs[k] = SubMod(lo, hi)
	}
	return out
}

// NormInfinity returns max_i |c_i| using the centered lift of each
// coefficient into (-Q/2, Q/2].
func (p Polynomial) NormInfinity() int64 {
	var max int64
	for _, c := range p.Coeffs {
		v := CenteredLift(c)
		if v < 0 {
			v = -v
		}
		if v > max {
			max = v
		}
	}
	return max
}

// Norm2 returns the Euclidean norm over the centered lift of each
// coefficient.
func (p Polynomial) Norm2() float64 {
	var sum float64
	for _, c := range p.Coeffs {
		v := float64(CenteredLift(c))
		sum += v * v
	}
	return math.Sqrt(sum)
}

// MarshalBinary encodes the polynomial as params.N little-endian u32
// words reduced mod Q.
func (p Polynomial) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 4*params.N)
	for i, c := range p.Coeffs {
		binary.LittleEndian.PutUint32(buf[4*i:], c)
	}
	return buf, nil
}

// UnmarshalBinary decodes a polynomial previously produced by MarshalBinary.
func (p *Polynomial) UnmarshalBinary(data []byte) error {
	if len(data) != 4*params.N {
		return fmt.Errorf("ring: polynomial: expected %d bytes, got %d", 4*params.N, len(data))
	}
	for i := range p.Coeffs {
		v := binary.LittleEndian.Uint32(data[4*i:])
		if v >= Q {
			return fmt.Errorf("ring: polynomial: coefficient %d out of range", i)
		}
		p.Coeffs[i] = v
	}
	return nil
}

// RandomBytesReader holds crypto/rand.Reader as a package-level entropy
// source. The samplers in this module take their reader as an argument and
// do not read this variable, so reassigning it does not change them.
var RandomBytesReader io.Reader = rand.Reader
