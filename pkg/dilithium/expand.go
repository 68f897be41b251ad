package dilithium

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/crypto/sha3"

	"github.com/vantoluck/dilithium-threshold/pkg/params"
	"github.com/vantoluck/dilithium-threshold/pkg/ring"
)

// ExpandMatrix deterministically expands the seed rho into the public
// k x l matrix A of uniform R_q polynomials. Each entry is drawn from its
// own SHAKE256 stream keyed on rho and its (row, col) position, so any
// entry can be recomputed independently.
func ExpandMatrix(rho []byte, k, l int) (ring.Matrix, error) {
	m := ring.NewMatrix(k, l)
	for i := 0; i < k; i++ {
		for j := 0; j < l; j++ {
			xof := sha3.NewShake256()
			xof.Write(rho)
			xof.Write([]byte{byte(i), byte(j)})
			p, err := ring.Random(xof)
			if err != nil {
				return ring.Matrix{}, err
			}
			m.Set(i, j, p)
		}
	}
	return m, nil
}

// ExpandMask deterministically expands seed into the masking vector y with
// coefficients in (-gamma1, gamma1]. kappa domain-separates repeated calls
// within one rejection-sampling loop so each restart draws a fresh mask
// from the same seed.
func ExpandMask(seed []byte, l int, gamma1 int64, kappa int) ring.Vector {
	v := ring.NewVector(l)
	bitlen := bits.Len64(uint64(2*gamma1 - 1))
	bytelen := (bitlen + 7) / 8
	for i := 0; i < l; i++ {
		xof := sha3.NewShake256()
		xof.Write(seed)
		var ctr [4]byte
		binary.LittleEndian.PutUint32(ctr[:], uint32(kappa*l+i))
		xof.Write(ctr[:])

		var p ring.Polynomial
		buf := make([]byte, bytelen)
		mask := uint64(1)<<uint(bitlen) - 1
		for c := 0; c < params.N; {
			xof.Read(buf)
			var raw uint64
			for b := bytelen - 1; b >= 0; b-- {
				raw = raw<<8 | uint64(buf[b])
			}
			raw &= mask
			if raw >= uint64(2*gamma1) {
				continue
			}
			p.Coeffs[c] = ring.FromInt64(gamma1 - int64(raw))
			c++
		}
		v.Set(i, p)
	}
	return v
}

// SampleInBall derives the challenge polynomial c of Hamming weight tau
// with coefficients in {-1, 0, +1}, via SHAKE256 keyed on seed.
func SampleInBall(seed []byte, tau int) ring.Polynomial {
	xof := sha3.NewShake256()
	xof.Write(seed)

	var signBuf [8]byte
	xof.Read(signBuf[:])
	signs := binary.LittleEndian.Uint64(signBuf[:])

	var c ring.Polynomial
	var oneByte [1]byte
	for i := params.N - tau; i < params.N; i++ {
		var j int
		for {
			xof.Read(oneByte[:])
			j = int(oneByte[0])
			if j <= i {
				break
			}
		}
		c.Coeffs[i] = c.Coeffs[j]
		if signs&1 == 1 {
			c.Coeffs[j] = ring.FromInt64(-1)
		} else {
			c.Coeffs[j] = ring.FromInt64(1)
		}
		signs >>= 1
	}
	return c
}
