// Package dilithium is the reference signer: a non-threshold CRYSTALS-
// Dilithium-family implementation of keygen/sign/verify over pkg/ring.
// protocols/threshold splits and recombines its secret key material; this
// package knows nothing about thresholds.
package dilithium

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/sha3"

	"github.com/vantoluck/dilithium-threshold/pkg/params"
	"github.com/vantoluck/dilithium-threshold/pkg/ring"
)

const seedLen = 32

// PublicKey is (A, t): the core treats full t as public rather than
// decomposing it into (t1, t0), but still carries T0 so that
// CombineSignatures (which needs c*t0 for the hint) has it available.
type PublicKey struct {
	Level params.Level
	Rho   []byte // seed for A, so A need not be carried on the wire
	A     ring.Matrix
	T     ring.Vector // t = A*s1 + s2
	T0    ring.Vector // low bits of t at modulus 2^d, published alongside t
}

// PrivateKey is (s1, s2).
type PrivateKey struct {
	Level params.Level
	S1    ring.Vector
	S2    ring.Vector
}

// Signature is (z, h, c).
type Signature struct {
	Z ring.Vector
	H Hint
	C ring.Polynomial
}

// Keygen derives a keypair from seed: seed is generated from a
// cryptographic RNG if nil, else used directly. rho and rhoPrime are
// expanded from seed via independent SHAKE256 streams (a generalization of
// Dilithium's single SHAKE256(seed) -> (rho, rhoPrime, K) split, adequate
// since rho only needs to be distinct from the randomness used for s1/s2).
func Keygen(level params.Level, seed []byte) (*PublicKey, *PrivateKey, error) {
	p, err := params.For(level)
	if err != nil {
		return nil, nil, err
	}

	if seed == nil {
		seed = make([]byte, seedLen)
		if _, err := io.ReadFull(rand.Reader, seed); err != nil {
			return nil, nil, fmt.Errorf("dilithium: keygen: %w", err)
		}
	} else if len(seed) != seedLen {
		return nil, nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidSeed, seedLen, len(seed))
	}

	rho := deriveDomain(seed, "rho", seedLen)
	rhoPrime := deriveDomain(seed, "rho-prime", seedLen)

	a, err := ExpandMatrix(rho, p.K, p.L)
	if err != nil {
		return nil, nil, err
	}

	xof := sha3.NewShake256()
	xof.Write(rhoPrime)
	xof.Write([]byte("s1"))
	s1, err := ring.RandomBoundedVector(xof, p.L, p.Eta)
	if err != nil {
		return nil, nil, fmt.Errorf("dilithium: keygen: sample s1: %w", err)
	}

	xof2 := sha3.NewShake256()
	xof2.Write(rhoPrime)
	xof2.Write([]byte("s2"))
	s2, err := ring.RandomBoundedVector(xof2, p.K, p.Eta)
	if err != nil {
		return nil, nil, fmt.Errorf("dilithium: keygen: sample s2: %w", err)
	}

	as1, err := a.MulVector(s1)
	if err != nil {
		return nil, nil, err
	}
	t := as1.Add(s2)

	alphaD := int64(1) << uint(p.D)
	t0 := ring.NewVector(t.Len())
	for i := 0; i < t.Len(); i++ {
		poly := t.At(i)
		var low ring.Polynomial
		for j, c := range poly.Coeffs {
			_, r0 := decomposeCoeff(c, alphaD)
			low.Coeffs[j] = ring.FromInt64(r0)
		}
		t0.Set(i, low)
	}

	pub := &PublicKey{Level: level, Rho: rho, A: a, T: t, T0: t0}
	priv := &PrivateKey{Level: level, S1: s1, S2: s2}
	return pub, priv, nil
}

// deriveDomain expands seed into n bytes of SHAKE256 output domain-
// separated by label, used to split one seed into (rho, rho') without
// pulling in a KDF dependency the rest of this ring layer doesn't need.
func deriveDomain(seed []byte, label string, n int) []byte {
	xof := sha3.NewShake256()
	xof.Write(seed)
	xof.Write([]byte(label))
	out := make([]byte, n)
	xof.Read(out)
	return out
}

// Sign produces a signature via rejection-sampling, capped at
// params.RejectionCap attempts.
func Sign(msg []byte, pk *PublicKey, sk *PrivateKey) (*Signature, error) {
	p, err := params.For(sk.Level)
	if err != nil {
		return nil, err
	}
	alpha := 2 * p.Gamma2

	var maskSeed [seedLen]byte
	if _, err := io.ReadFull(rand.Reader, maskSeed[:]); err != nil {
		return nil, fmt.Errorf("dilithium: sign: %w", err)
	}

	for attempt := 0; attempt < params.RejectionCap; attempt++ {
		y := ExpandMask(maskSeed[:], p.L, p.Gamma1, attempt)

		w, err := pk.A.MulVector(y)
		if err != nil {
			return nil, err
		}
		w1 := HighBits(w, alpha)

		c := deriveChallenge(msg, w1, p.Tau)

		z := y.Add(sk.S1.PolyMul(c))
		if !ZWithinBound(z, p.Gamma1, p.Beta) {
			continue
		}

		cs2 := sk.S2.PolyMul(c)
		wMinusCs2 := w.Sub(cs2)
		r0 := LowBits(wMinusCs2, alpha)
		if NormInfinityRows(r0) >= p.Gamma2-p.Beta {
			continue
		}

		ct0 := pk.T0.PolyMul(c)
		h := MakeHint(ct0, wMinusCs2, alpha)
		if h.Weight() > p.Omega {
			continue
		}

		return &Signature{Z: z, H: h, C: c}, nil
	}
	return nil, ErrRejectionExhausted
}

// ZWithinBound reports whether z's infinity norm satisfies the
// rejection-sampling bound ||z||_inf < gamma1 - beta. A z at exactly
// gamma1 - beta is rejected; one at gamma1 - beta - 1 is accepted.
func ZWithinBound(z ring.Vector, gamma1, beta int64) bool {
	return z.NormInfinity() < gamma1-beta
}

// deriveChallenge computes c = H(msg || w1) as a weight-tau {-1,0,1}
// polynomial.
func deriveChallenge(msg []byte, w1 [][]int64, tau int) ring.Polynomial {
	xof := sha3.NewShake256()
	xof.Write(msg)
	xof.Write(EncodeRows(w1))
	var seed [seedLen]byte
	xof.Read(seed[:])
	return SampleInBall(seed[:], tau)
}

// Verify checks a signature against msg and pk.
func Verify(msg []byte, sig *Signature, pk *PublicKey) error {
	p, err := params.For(pk.Level)
	if err != nil {
		return err
	}
	alpha := 2 * p.Gamma2

	if !ZWithinBound(sig.Z, p.Gamma1, p.Beta) {
		return fmt.Errorf("%w: ||z||_inf out of bound", ErrInvalidSignature)
	}
	if sig.H.Weight() > p.Omega {
		return fmt.Errorf("%w: hint weight exceeds omega", ErrInvalidSignature)
	}

	az, err := pk.A.MulVector(sig.Z)
	if err != nil {
		return err
	}
	// A*z - c*(t - t0) = (w - c*s2) + c*t0. The signer's hint records where
	// adding c*t0 to w - c*s2 moves HighBits, so UseHint on this value
	// recovers HighBits(w - c*s2), which the r0 bound in Sign makes equal
	// to HighBits(w).
	ct := pk.T.Sub(pk.T0).PolyMul(sig.C)
	r := az.Sub(ct)

	w1Prime := UseHint(sig.H, r, alpha)
	cPrime := deriveChallenge(msg, w1Prime, p.Tau)

	if !sig.C.Equal(cPrime) {
		return fmt.Errorf("%w: challenge mismatch", ErrInvalidSignature)
	}
	return nil
}
