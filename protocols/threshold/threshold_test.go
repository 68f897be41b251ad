package threshold_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantoluck/dilithium-threshold/internal/testutil"
	"github.com/vantoluck/dilithium-threshold/pkg/dilithium"
	"github.com/vantoluck/dilithium-threshold/pkg/params"
	"github.com/vantoluck/dilithium-threshold/pkg/pool"
	"github.com/vantoluck/dilithium-threshold/pkg/ring"
	"github.com/vantoluck/dilithium-threshold/protocols/threshold"
)

func zeroSeed() []byte {
	return make([]byte, 32)
}

func filledSeed(b byte) []byte {
	s := make([]byte, 32)
	for i := range s {
		s[i] = b
	}
	return s
}

// (t=3, n=5), happy path end to end.
func TestEndToEndHappyPath(t *testing.T) {
	h, err := threshold.New(3, 5, params.Level3)
	require.NoError(t, err)

	shares, err := h.DistributedKeygen(zeroSeed())
	require.NoError(t, err)
	require.Len(t, shares, 5)

	msg := testutil.Message("hello world")
	sessionSeed := filledSeed(0x01)

	partials := make([]threshold.PartialSignature, 0, 3)
	for _, s := range shares[:3] {
		ps, err := h.PartialSign(msg, s, sessionSeed)
		require.NoError(t, err)
		partials = append(partials, *ps)
	}

	sig, err := h.CombineSignatures(partials, shares[0].PublicKey)
	require.NoError(t, err)

	assert.NoError(t, dilithium.Verify(msg, sig, shares[0].PublicKey))
}

// combining fewer than t partials fails with InsufficientShares.
func TestCombineInsufficientPartials(t *testing.T) {
	h, err := threshold.New(3, 5, params.Level3)
	require.NoError(t, err)

	shares, err := h.DistributedKeygen(zeroSeed())
	require.NoError(t, err)

	msg := testutil.Message("hello world")
	sessionSeed := filledSeed(0x01)

	var partials []threshold.PartialSignature
	for _, s := range shares[:2] {
		ps, err := h.PartialSign(msg, s, sessionSeed)
		require.NoError(t, err)
		partials = append(partials, *ps)
	}

	_, err = h.CombineSignatures(partials, shares[0].PublicKey)
	require.Error(t, err)
	var terr *threshold.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, threshold.KindInsufficientShares, terr.Kind())
}

// a duplicated participant id in the partial set is InvalidShareSet.
func TestCombineDuplicateParticipant(t *testing.T) {
	h, err := threshold.New(3, 5, params.Level3)
	require.NoError(t, err)

	shares, err := h.DistributedKeygen(zeroSeed())
	require.NoError(t, err)

	msg := testutil.Message("hello world")
	sessionSeed := filledSeed(0x01)

	ps0, err := h.PartialSign(msg, shares[0], sessionSeed)
	require.NoError(t, err)
	ps1, err := h.PartialSign(msg, shares[1], sessionSeed)
	require.NoError(t, err)

	partials := []threshold.PartialSignature{*ps0, *ps0, *ps1}
	_, err = h.CombineSignatures(partials, shares[0].PublicKey)
	require.Error(t, err)
	var terr *threshold.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, threshold.KindInvalidShareSet, terr.Kind())
}

// (t=2, n=3), identical seeds and identical subset produce
// byte-equal signatures across two independent runs.
func TestDeterministicCombinationFromIdenticalSeeds(t *testing.T) {
	run := func() []byte {
		h, err := threshold.New(2, 3, params.Level3)
		require.NoError(t, err)

		shares, err := h.DistributedKeygen(zeroSeed())
		require.NoError(t, err)

		msg := []byte{}
		sessionSeed := filledSeed(0x02)

		var partials []threshold.PartialSignature
		for _, s := range shares[:2] {
			ps, err := h.PartialSign(msg, s, sessionSeed)
			require.NoError(t, err)
			partials = append(partials, *ps)
		}

		sig, err := h.CombineSignatures(partials, shares[0].PublicKey)
		require.NoError(t, err)

		encoded, err := threshold.EncodeSignature(*sig, params.Level3)
		require.NoError(t, err)
		return encoded
	}

	a := run()
	b := run()
	assert.Equal(t, a, b)
}

// A tampered KeyShare is caught by VerifyPartialSignature, and a
// combination using only honest shares still verifies.
func TestTamperedShareDetectedByPartialVerification(t *testing.T) {
	h, err := threshold.New(3, 5, params.Level3)
	require.NoError(t, err)

	shares, err := h.DistributedKeygen(zeroSeed())
	require.NoError(t, err)

	msg := testutil.Message("hello world")
	sessionSeed := filledSeed(0x01)

	ps, err := h.PartialSign(msg, shares[0], sessionSeed)
	require.NoError(t, err)

	// The signing participant's locally held share is consistent with its
	// own partial signature; a verifier holding a corrupted copy of that
	// same share (one s1_share coefficient flipped in transit/storage)
	// must reject it.
	// Copy the polynomials too: a struct copy alone would share the Polys
	// backing array and corrupt shares[0] as well.
	tampered := shares[0]
	tampered.S1Share = ring.NewVector(shares[0].S1Share.Len())
	copy(tampered.S1Share.Polys, shares[0].S1Share.Polys)
	tampered.S1Share.Polys[0].Coeffs[0] ^= 1

	ok, err := threshold.VerifyPartialSignature(msg, sessionSeed, *ps, tampered)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = threshold.VerifyPartialSignature(msg, sessionSeed, *ps, shares[0])
	require.NoError(t, err)
	assert.True(t, ok)

	var partials []threshold.PartialSignature
	partials = append(partials, *ps)
	for _, s := range shares[1:3] {
		p, err := h.PartialSign(msg, s, sessionSeed)
		require.NoError(t, err)
		partials = append(partials, *p)
	}

	sig, err := h.CombineSignatures(partials, shares[0].PublicKey)
	require.NoError(t, err)
	assert.NoError(t, dilithium.Verify(msg, sig, shares[0].PublicKey))
}

// (t=5, n=7), security_level=5, random 1 KiB message; signature
// round-trips through the CBOR envelope and still verifies.
func TestLargeMessageLevel5RoundTrip(t *testing.T) {
	h, err := threshold.New(5, 7, params.Level5)
	require.NoError(t, err)

	shares, err := h.DistributedKeygen(nil)
	require.NoError(t, err)

	msg, err := testutil.RandomMessage(1024)
	require.NoError(t, err)
	sessionSeed := filledSeed(0x03)

	var partials []threshold.PartialSignature
	for _, s := range shares[:5] {
		ps, err := h.PartialSign(msg, s, sessionSeed)
		require.NoError(t, err)
		partials = append(partials, *ps)
	}

	sig, err := h.CombineSignatures(partials, shares[0].PublicKey)
	require.NoError(t, err)
	require.NoError(t, dilithium.Verify(msg, sig, shares[0].PublicKey))

	encoded, err := threshold.EncodeSignature(*sig, params.Level5)
	require.NoError(t, err)

	decoded, level, err := threshold.DecodeSignature(encoded)
	require.NoError(t, err)
	assert.Equal(t, params.Level5, level)
	assert.NoError(t, dilithium.Verify(msg, &decoded, shares[0].PublicKey))
}

func TestGetThresholdInfo(t *testing.T) {
	h, err := threshold.New(3, 5, params.Level3)
	require.NoError(t, err)

	info, err := h.GetThresholdInfo()
	require.NoError(t, err)
	assert.Equal(t, 3, info.T)
	assert.Equal(t, 5, info.N)
	assert.Equal(t, params.Level3, info.Level)
}

func TestKeyShareBinaryRoundTrip(t *testing.T) {
	h, err := threshold.New(2, 3, params.Level2)
	require.NoError(t, err)

	shares, err := h.DistributedKeygen(zeroSeed())
	require.NoError(t, err)

	encoded, err := threshold.EncodeKeyShare(shares[0])
	require.NoError(t, err)

	decoded, err := threshold.DecodeKeyShare(encoded)
	require.NoError(t, err)
	assert.Equal(t, shares[0].ParticipantID, decoded.ParticipantID)
	assert.True(t, shares[0].S1Share.Equal(decoded.S1Share))
	assert.True(t, shares[0].S2Share.Equal(decoded.S2Share))
}

// A session retried with threshold.NewSessionSeed produces a fresh,
// independently valid signature over the same shares and message — the
// pattern an orchestrator follows after CombineSignatures reports
// KindSigningBoundViolation.
func TestRetryWithNewSessionSeed(t *testing.T) {
	h, err := threshold.New(3, 5, params.Level3)
	require.NoError(t, err)

	shares, err := h.DistributedKeygen(zeroSeed())
	require.NoError(t, err)

	msg := testutil.Message("retry after bound violation")

	sign := func(sessionSeed []byte) *threshold.Signature {
		var partials []threshold.PartialSignature
		for _, s := range shares[:3] {
			ps, err := h.PartialSign(msg, s, sessionSeed)
			require.NoError(t, err)
			partials = append(partials, *ps)
		}
		sig, err := h.CombineSignatures(partials, shares[0].PublicKey)
		require.NoError(t, err)
		return sig
	}

	seedA, err := threshold.NewSessionSeed()
	require.NoError(t, err)
	seedB, err := threshold.NewSessionSeed()
	require.NoError(t, err)
	require.NotEqual(t, seedA, seedB)

	sigA := sign(seedA)
	assert.NoError(t, dilithium.Verify(msg, sigA, shares[0].PublicKey))

	sigB := sign(seedB)
	assert.NoError(t, dilithium.Verify(msg, sigB, shares[0].PublicKey))
}

func TestVerifyPartialSignaturesFlagsOnlyTheFaultyOne(t *testing.T) {
	h, err := threshold.New(3, 5, params.Level3)
	require.NoError(t, err)

	shares, err := h.DistributedKeygen(zeroSeed())
	require.NoError(t, err)

	msg := testutil.Message("parallel verification")
	sessionSeed := filledSeed(0x04)

	partials := make([]threshold.PartialSignature, 3)
	for i, s := range shares[:3] {
		ps, err := h.PartialSign(msg, s, sessionSeed)
		require.NoError(t, err)
		partials[i] = *ps
	}

	verifyShares := []threshold.KeyShare{shares[0], shares[1], shares[2]}
	verifyShares[1].S1Share.Polys[0].Coeffs[0] ^= 1 // corrupt the verifier's copy of share 1

	p := pool.NewPool(2)
	defer p.TearDown()

	results, err := threshold.VerifyPartialSignatures(context.Background(), p, msg, sessionSeed, partials, verifyShares)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, results)
}
