// Package threshold implements (t, n) threshold Dilithium: a dealer-based
// distributed keygen over pkg/shamir, deterministic per-participant
// partial signing, and Lagrange-based combination.
package threshold

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"

	"github.com/vantoluck/dilithium-threshold/pkg/dilithium"
	"github.com/vantoluck/dilithium-threshold/pkg/params"
	"github.com/vantoluck/dilithium-threshold/pkg/party"
	"github.com/vantoluck/dilithium-threshold/pkg/pool"
	"github.com/vantoluck/dilithium-threshold/pkg/protocol"
	"github.com/vantoluck/dilithium-threshold/pkg/ring"
	"github.com/vantoluck/dilithium-threshold/pkg/shamir"
)

// Handle is a configured (t, n, security_level) threshold-Dilithium
// instance.
type Handle struct {
	t, n  int
	level params.Level
}

// New validates (t, n, level) and returns a Handle.
func New(t, n int, level params.Level) (*Handle, error) {
	if _, err := params.For(level); err != nil {
		return nil, newError(KindInvalidConfig, "%s", err)
	}
	if _, err := shamir.New(t, n); err != nil {
		return nil, fromShamir(err)
	}
	return &Handle{t: t, n: n, level: level}, nil
}

// Scheme reports the signature scheme this handle produces.
func (h *Handle) Scheme() protocol.SignatureScheme { return protocol.Dilithium }

// GetThresholdInfo returns the (t, n, security_level, k, l) introspection
// tuple.
func (h *Handle) GetThresholdInfo() (ThresholdInfo, error) {
	p, err := params.For(h.level)
	if err != nil {
		return ThresholdInfo{}, newError(KindInvalidConfig, "%s", err)
	}
	return ThresholdInfo{T: h.t, N: h.n, Level: h.level, K: p.K, L: p.L}, nil
}

// DistributedKeygen runs a dealer-based distributed keygen: a standard
// Dilithium keygen followed by AdaptedShamirSSS splitting of s1 and s2.
// The dealer's (s1, s2) are zeroised before returning so the only
// surviving copies are the per-participant shares.
func (h *Handle) DistributedKeygen(seed []byte) ([]KeyShare, error) {
	pub, priv, err := dilithium.Keygen(h.level, seed)
	if err != nil {
		return nil, err
	}
	defer zeroiseVector(priv.S1)
	defer zeroiseVector(priv.S2)

	cfg, err := shamir.New(h.t, h.n)
	if err != nil {
		return nil, fromShamir(err)
	}

	s1Shares, err := cfg.Split(priv.S1, rand.Reader)
	if err != nil {
		return nil, fromShamir(err)
	}
	s2Shares, err := cfg.Split(priv.S2, rand.Reader)
	if err != nil {
		return nil, fromShamir(err)
	}

	shares := make([]KeyShare, h.n)
	for i := 0; i < h.n; i++ {
		shares[i] = KeyShare{
			ParticipantID: s1Shares[i].ParticipantID,
			S1Share:       s1Shares[i].Vector,
			S2Share:       s2Shares[i].Vector,
			PublicKey:     pub,
			T:             h.t,
			N:             h.n,
			Level:         h.level,
		}
	}
	return shares, nil
}

// zeroiseVector overwrites every coefficient of v with zero. Secret
// material must be zeroised on every exit path.
func zeroiseVector(v ring.Vector) {
	for i := range v.Polys {
		for j := range v.Polys[i].Coeffs {
			v.Polys[i].Coeffs[j] = 0
		}
	}
}

// partialSignNonceContext domain-separates the blake3 key-derivation used
// for y_u from any other use of blake3 in this module.
const partialSignNonceContext = "dilithium-threshold partial-sign mask nonce"

// derivePartialMaskSeed deterministically derives the seed feeding
// dilithium.ExpandMask for participant id's mask y_u, from
// (participant_id, session_seed, msg), so a partial signature can be
// reproduced deterministically in a recovery scenario.
func derivePartialMaskSeed(id party.ID, sessionSeed, msg []byte) ([]byte, error) {
	var idBuf [2]byte
	binary.BigEndian.PutUint16(idBuf[:], uint16(id))

	material := make([]byte, 0, len(idBuf)+len(sessionSeed)+len(msg))
	material = append(material, idBuf[:]...)
	material = append(material, sessionSeed...)
	material = append(material, msg...)

	hashKey := make([]byte, 32)
	blake3.DeriveKey(partialSignNonceContext, material, hashKey)
	h, err := blake3.NewKeyed(hashKey)
	if err != nil {
		return nil, fmt.Errorf("threshold: derive partial mask seed: %w", err)
	}
	if _, err := h.Write(msg); err != nil {
		return nil, fmt.Errorf("threshold: derive partial mask seed: %w", err)
	}
	digest := h.Digest()
	seed := make([]byte, 32)
	if _, err := digest.Read(seed); err != nil {
		return nil, fmt.Errorf("threshold: derive partial mask seed: %w", err)
	}
	return seed, nil
}

// deriveGroupChallenge computes c = H(msg || pk || session_seed): a
// non-interactive challenge derivation under which every honest
// participant computes the same c without a commit-reveal round, at the
// cost of robustness against a malicious signer who could otherwise bias
// w1 (see DESIGN.md).
func deriveGroupChallenge(msg []byte, pk *PublicKey, sessionSeed []byte, tau int) (ring.Polynomial, error) {
	pkBytes, err := marshalPublicKey(pk)
	if err != nil {
		return ring.Polynomial{}, err
	}

	xof := sha3.NewShake256()
	xof.Write(msg)
	xof.Write(pkBytes)
	xof.Write(sessionSeed)
	var seed [32]byte
	xof.Read(seed[:])
	return dilithium.SampleInBall(seed[:], tau), nil
}

// PartialSign derives a deterministic mask y_u, computes the commitment
// w_u = A*y_u, the shared challenge c, and z_u = y_u + c*s1_share_u.
func (h *Handle) PartialSign(msg []byte, share KeyShare, sessionSeed []byte) (*PartialSignature, error) {
	p, err := params.For(share.Level)
	if err != nil {
		return nil, newError(KindInvalidConfig, "%s", err)
	}

	maskSeed, err := derivePartialMaskSeed(share.ParticipantID, sessionSeed, msg)
	if err != nil {
		return nil, err
	}
	y := dilithium.ExpandMask(maskSeed, p.L, p.Gamma1, 0)

	w, err := share.PublicKey.A.MulVector(y)
	if err != nil {
		return nil, err
	}

	c, err := deriveGroupChallenge(msg, share.PublicKey, sessionSeed, p.Tau)
	if err != nil {
		return nil, err
	}

	z := y.Add(share.S1Share.PolyMul(c))

	return &PartialSignature{
		ParticipantID: share.ParticipantID,
		Z:             z,
		W:             w,
		C:             c,
	}, nil
}

// VerifyPartialSignature checks that
// partial.W == A·(partial.Z − partial.C·share.S1Share)
// and that the challenge binds (msg, sessionSeed) — used to detect a
// faulty participant before combination.
func VerifyPartialSignature(msg, sessionSeed []byte, partial PartialSignature, share KeyShare) (bool, error) {
	if partial.ParticipantID != share.ParticipantID {
		return false, nil
	}
	p, err := params.For(share.Level)
	if err != nil {
		return false, newError(KindInvalidConfig, "%s", err)
	}

	wantC, err := deriveGroupChallenge(msg, share.PublicKey, sessionSeed, p.Tau)
	if err != nil {
		return false, err
	}
	if !partial.C.Equal(wantC) {
		return false, nil
	}

	candidate := partial.Z.Sub(share.S1Share.PolyMul(partial.C))
	recomputedW, err := share.PublicKey.A.MulVector(candidate)
	if err != nil {
		return false, err
	}
	return partial.W.Equal(recomputedW), nil
}

// VerifyPartialSignatures checks every (partial, share) pair concurrently
// over a bounded worker pool — useful for an orchestrator that wants to
// screen a large candidate set before calling CombineSignatures. A pair
// that fails to verify gets `false`; a per-pair error doesn't abort the
// others, so one faulty participant can't hide the rest.
func VerifyPartialSignatures(ctx context.Context, p *pool.Pool, msg, sessionSeed []byte, partials []PartialSignature, shares []KeyShare) ([]bool, error) {
	if len(partials) != len(shares) {
		return nil, newError(KindShareLengthMismatch, "have %d partials, %d shares", len(partials), len(shares))
	}
	out := pool.MapBool(ctx, p, len(partials), func(_ context.Context, i int) bool {
		ok, err := VerifyPartialSignature(msg, sessionSeed, partials[i], shares[i])
		return err == nil && ok
	})
	return out, nil
}

// CombineSignatures Lagrange-combines z across the first t (by
// participant id) partials sharing a challenge, derives the hint from the
// combined z (using the identity A*z - c*t == w - c*s2, so the combiner
// never needs s2), and bound-checks the combined z.
func (h *Handle) CombineSignatures(partials []PartialSignature, pk *PublicKey) (*Signature, error) {
	if len(partials) < h.t {
		return nil, newError(KindInsufficientShares, "have %d, need %d", len(partials), h.t)
	}

	sorted := make([]PartialSignature, len(partials))
	copy(sorted, partials)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ParticipantID < sorted[j].ParticipantID })

	allIDs := make(party.IDSlice, len(sorted))
	for i, pt := range sorted {
		allIDs[i] = pt.ParticipantID
	}
	for _, id := range allIDs {
		if id == 0 {
			return nil, newError(KindInvalidShareSet, "zero participant id")
		}
	}
	if !allIDs.Distinct() {
		return nil, newError(KindInvalidShareSet, "duplicate participant id")
	}

	chosen := sorted[:h.t]
	challengeBytes, err := chosen[0].C.MarshalBinary()
	if err != nil {
		return nil, err
	}
	for _, pt := range chosen[1:] {
		cb, err := pt.C.MarshalBinary()
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(challengeBytes, cb) {
			return nil, newError(KindInconsistentSession, "partial signatures carry differing challenges")
		}
	}
	c := chosen[0].C

	ids := make([]party.ID, len(chosen))
	for i, pt := range chosen {
		ids[i] = pt.ParticipantID
	}
	lambda := shamir.Lagrange(ids)

	p, err := params.For(h.level)
	if err != nil {
		return nil, newError(KindInvalidConfig, "%s", err)
	}

	// w = sum(lambda_u * w_u) would be the combined commitment, but the
	// hint below only needs r = A*z - c*t, which is algebraically equal
	// to w - c*s2 without requiring s2 at the combiner, so w is not
	// computed: this loop combines z only.
	z := ring.NewVector(p.L)
	for _, pt := range chosen {
		coeff := int64(lambda[pt.ParticipantID])
		z = z.Add(pt.Z.ScalarMul(coeff))
	}

	alpha := 2 * p.Gamma2
	if !dilithium.ZWithinBound(z, p.Gamma1, p.Beta) {
		return nil, newError(KindSigningBoundViolation, "||z||_inf out of bound after combination")
	}

	az, err := pk.A.MulVector(z)
	if err != nil {
		return nil, err
	}
	ct := pk.T.PolyMul(c)
	r := az.Sub(ct)
	ct0 := pk.T0.PolyMul(c)
	hint := dilithium.MakeHint(ct0, r, alpha)

	return &Signature{Z: z, H: hint, C: c}, nil
}

// marshalPublicKey renders a PublicKey's A-generating seed, T, and T0 into
// a deterministic byte string for challenge derivation; this is not the
// wire format (see marshal.go) but must be stable across calls.
func marshalPublicKey(pk *PublicKey) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(pk.Rho)
	tb, err := pk.T.MarshalBinary()
	if err != nil {
		return nil, err
	}
	buf.Write(tb)
	t0b, err := pk.T0.MarshalBinary()
	if err != nil {
		return nil, err
	}
	buf.Write(t0b)
	return buf.Bytes(), nil
}

// NewSessionSeed draws a fresh random 32-byte session seed. An orchestrator
// that sees CombineSignatures fail with KindSigningBoundViolation retries
// the whole round with a seed from this function: sessionSeed feeds both
// derivePartialMaskSeed and deriveGroupChallenge, so a new seed draws a
// fresh (y_u, c) pair for every participant without requiring a new
// DistributedKeygen.
func NewSessionSeed() ([]byte, error) {
	seed := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return nil, fmt.Errorf("threshold: new session seed: %w", err)
	}
	return seed, nil
}
