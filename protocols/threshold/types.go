package threshold

import (
	"github.com/vantoluck/dilithium-threshold/pkg/dilithium"
	"github.com/vantoluck/dilithium-threshold/pkg/params"
	"github.com/vantoluck/dilithium-threshold/pkg/party"
	"github.com/vantoluck/dilithium-threshold/pkg/ring"
)

// PublicKey is the group public key shared by every participant: (A, t),
// plus T0 so the combiner can compute a hint without reconstructing s2.
type PublicKey = dilithium.PublicKey

// Signature is the final, combined Dilithium signature: (z, h, c).
type Signature = dilithium.Signature

// KeyShare is one participant's share of the distributed key: their
// evaluation of the s1 and s2 sharing polynomials, plus the public key
// every participant needs to compute commitments and verify partials.
type KeyShare struct {
	ParticipantID party.ID
	S1Share       ring.Vector // share of s1, length L
	S2Share       ring.Vector // share of s2, length K
	PublicKey     *PublicKey
	T, N          int
	Level         params.Level
}

// PartialSignature is one participant's contribution to a threshold
// signature: the output of PartialSign.
type PartialSignature struct {
	ParticipantID party.ID
	Z             ring.Vector     // z_u = y_u + c*s1_share_u
	W             ring.Vector     // w_u = A*y_u, the participant's commitment
	C             ring.Polynomial // challenge, shared by every honest partial
}

// ThresholdInfo is the introspection tuple GetThresholdInfo returns.
type ThresholdInfo struct {
	T, N  int
	Level params.Level
	K, L  int
}

// ExpandPublicKey rebuilds a PublicKey's matrix A from its seed rho,
// leaving T and T0 zero-valued for the caller to fill in. Used by
// protocols/threshold/config when decoding a PublicKey from its JSON
// envelope, since A is fully determined by rho and need not be carried on
// the wire.
func ExpandPublicKey(level params.Level, rho []byte, k, l int) (*PublicKey, error) {
	a, err := dilithium.ExpandMatrix(rho, k, l)
	if err != nil {
		return nil, err
	}
	return &PublicKey{Level: level, Rho: rho, A: a, T: ring.NewVector(k), T0: ring.NewVector(k)}, nil
}
