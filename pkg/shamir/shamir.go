// Package shamir implements AdaptedShamirSSS: Shamir secret sharing
// adapted to split a PolynomialVector coefficient-wise over Z_q.
// Reconstruction uses Lagrange interpolation over Z_q (lagrange.go); the
// homomorphism this relies on — an affine combination of shares is a
// share of the same combination of secrets — is why protocols/threshold
// can compute z = sum(lambda_u * z_u) without ever assembling s1.
package shamir

import (
	"fmt"
	"io"

	"github.com/vantoluck/dilithium-threshold/pkg/party"
	"github.com/vantoluck/dilithium-threshold/pkg/ring"
)

// maxParticipants is the n <= 255 bound: participant ids must fit in one
// byte while staying nonzero mod Q.
const maxParticipants = 255

// Share is a participant's evaluation of every per-coefficient sharing
// polynomial, held as a PolynomialVector of the same length as the
// secret.
type Share struct {
	ParticipantID party.ID
	Vector        ring.Vector
	VectorLength  int
}

// Config is an AdaptedShamirSSS(t, n) instance's construction parameters.
type Config struct {
	T, N int
}

// New validates and constructs a (t, n) configuration: 2 <= t <= n <= q-1
// and n <= 255.
func New(t, n int) (*Config, error) {
	if t < 2 || t > n {
		return nil, fmt.Errorf("%w: t=%d n=%d", ErrInvalidConfig, t, n)
	}
	if n > maxParticipants {
		return nil, fmt.Errorf("%w: n=%d exceeds %d-participant bound", ErrInvalidConfig, n, maxParticipants)
	}
	return &Config{T: t, N: n}, nil
}

// Split draws a degree-(t-1) sharing polynomial per (polynomial index,
// coefficient index) with the secret as constant term, and evaluates it at
// x=1..n for each participant. Evaluation is done via Horner's method over
// whole vectors: multiplying a Vector by the scalar u
// and adding another Vector is exactly evaluating every per-coefficient
// sharing polynomial at x=u simultaneously, since Vector arithmetic is
// componentwise.
func (c *Config) Split(secret ring.Vector, rnd io.Reader) ([]Share, error) {
	l := secret.Len()

	coeffs := make([]ring.Vector, c.T)
	coeffs[0] = secret
	for k := 1; k < c.T; k++ {
		rv, err := ring.RandomVector(rnd, l)
		if err != nil {
			return nil, fmt.Errorf("shamir: split: %w", err)
		}
		coeffs[k] = rv
	}

	shares := make([]Share, c.N)
	for idx := 0; idx < c.N; idx++ {
		u := party.ID(idx + 1)
		acc := coeffs[c.T-1]
		for k := c.T - 2; k >= 0; k-- {
			acc = acc.ScalarMul(int64(u)).Add(coeffs[k])
		}
		shares[idx] = Share{ParticipantID: u, Vector: acc, VectorLength: l}
	}
	return shares, nil
}

// selectShares validates a candidate share set and returns the first t of
// them (by participant id, for determinism) to use for reconstruction.
func (c *Config) selectShares(shares []Share) ([]Share, error) {
	if len(shares) < c.T {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientShares, len(shares), c.T)
	}
	if err := VerifyShares(shares); err != nil {
		return nil, err
	}

	sorted := make([]Share, len(shares))
	copy(sorted, shares)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].ParticipantID < sorted[j-1].ParticipantID; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted[:c.T], nil
}

// Reconstruct recombines at least t shares with distinct participant ids
// into the original PolynomialVector, via Lagrange interpolation over Z_q
// evaluated at 0.
func (c *Config) Reconstruct(shares []Share) (ring.Vector, error) {
	chosen, err := c.selectShares(shares)
	if err != nil {
		return ring.Vector{}, err
	}

	ids := make([]party.ID, len(chosen))
	for i, s := range chosen {
		ids[i] = s.ParticipantID
	}
	lambda := Lagrange(ids)

	l := chosen[0].VectorLength
	out := ring.NewVector(l)
	for _, s := range chosen {
		out = out.Add(s.Vector.ScalarMul(int64(lambda[s.ParticipantID])))
	}
	return out, nil
}

// PartialReconstruct is Reconstruct restricted to a caller-supplied subset
// of polynomial indices, so a caller need not touch irrelevant parts of
// the secret.
func (c *Config) PartialReconstruct(shares []Share, indices []int) (ring.Vector, error) {
	chosen, err := c.selectShares(shares)
	if err != nil {
		return ring.Vector{}, err
	}

	ids := make([]party.ID, len(chosen))
	for i, s := range chosen {
		ids[i] = s.ParticipantID
	}
	lambda := Lagrange(ids)

	out := ring.NewVector(len(indices))
	for outIdx, polyIdx := range indices {
		if polyIdx < 0 || polyIdx >= chosen[0].VectorLength {
			return ring.Vector{}, fmt.Errorf("shamir: partial reconstruct: index %d out of range", polyIdx)
		}
		acc := ring.Zero()
		for _, s := range chosen {
			acc = acc.Add(s.Vector.At(polyIdx).ScalarMul(int64(lambda[s.ParticipantID])))
		}
		out.Set(outIdx, acc)
	}
	return out, nil
}

// VerifyShares performs a structural sanity check: distinct nonzero ids,
// matching vector_length, and 256 canonical coefficients per polynomial.
// It does not — and cannot — prove algebraic consistency between shares;
// a single Share is information-theoretically indistinguishable from
// random without a VSS commitment scheme.
func VerifyShares(shares []Share) error {
	if len(shares) == 0 {
		return fmt.Errorf("%w: empty share set", ErrInvalidShareSet)
	}

	ids := make(party.IDSlice, len(shares))
	for i, s := range shares {
		ids[i] = s.ParticipantID
	}
	if !ids.Distinct() {
		return fmt.Errorf("%w: duplicate participant id", ErrInvalidShareSet)
	}

	length := shares[0].VectorLength
	for i, s := range shares {
		if err := ids[i].Validate(maxParticipants); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidShareSet, err)
		}

		if s.VectorLength != length || s.Vector.Len() != length {
			return fmt.Errorf("%w: got %d, want %d", ErrShareLengthMismatch, s.Vector.Len(), length)
		}
		for _, p := range s.Vector.Polys {
			for _, coef := range p.Coeffs {
				if coef >= ring.Q {
					return fmt.Errorf("%w: coefficient %d out of range", ErrInvalidShareSet, coef)
				}
			}
		}
	}
	return nil
}
