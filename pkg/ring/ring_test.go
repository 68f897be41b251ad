package ring_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantoluck/dilithium-threshold/pkg/ring"
)

func TestPolynomialCanonicalAfterArithmetic(t *testing.T) {
	a, err := ring.Random(rand.Reader)
	require.NoError(t, err)
	b, err := ring.Random(rand.Reader)
	require.NoError(t, err)

	for _, p := range []ring.Polynomial{a.Add(b), a.Sub(b), a.Mul(b), a.ScalarMul(-7)} {
		for _, c := range p.Coeffs {
			assert.Less(t, c, ring.Q)
		}
	}
}

func TestPolynomialAddSubInverse(t *testing.T) {
	a, err := ring.Random(rand.Reader)
	require.NoError(t, err)
	b, err := ring.Random(rand.Reader)
	require.NoError(t, err)

	assert.True(t, a.Add(b).Sub(b).Equal(a))
}

func TestPolynomialMulIdentity(t *testing.T) {
	a, err := ring.Random(rand.Reader)
	require.NoError(t, err)
	assert.True(t, a.Mul(ring.One()).Equal(a))
}

func TestPolynomialMulZero(t *testing.T) {
	a, err := ring.Random(rand.Reader)
	require.NoError(t, err)
	assert.True(t, a.Mul(ring.Zero()).Equal(ring.Zero()))
}

func TestRandomBoundedWithinEta(t *testing.T) {
	const eta = int32(4)
	p, err := ring.RandomBounded(rand.Reader, eta)
	require.NoError(t, err)
	for _, c := range p.Coeffs {
		v := ring.CenteredLift(c)
		assert.GreaterOrEqual(t, v, int64(-eta))
		assert.LessOrEqual(t, v, int64(eta))
	}
}

func TestNormInfinityBoundary(t *testing.T) {
	var p ring.Polynomial
	p.Coeffs[0] = ring.FromInt64(100)
	assert.Equal(t, int64(100), p.NormInfinity())
	p.Coeffs[0] = ring.FromInt64(-100)
	assert.Equal(t, int64(100), p.NormInfinity())
}

func TestPolynomialBinaryRoundTrip(t *testing.T) {
	a, err := ring.Random(rand.Reader)
	require.NoError(t, err)

	data, err := a.MarshalBinary()
	require.NoError(t, err)

	var b ring.Polynomial
	require.NoError(t, b.UnmarshalBinary(data))
	assert.True(t, a.Equal(b))
}

func TestVectorArithmeticLengthMismatchPanics(t *testing.T) {
	v := ring.NewVector(2)
	w := ring.NewVector(3)
	assert.Panics(t, func() { v.Add(w) })
}

func TestVectorNormInfinityIsMaxOfComponents(t *testing.T) {
	v := ring.NewVector(3)
	v.Polys[0].Coeffs[0] = ring.FromInt64(5)
	v.Polys[1].Coeffs[0] = ring.FromInt64(-42)
	v.Polys[2].Coeffs[0] = ring.FromInt64(9)
	assert.Equal(t, int64(42), v.NormInfinity())
}

func TestVectorBinaryRoundTrip(t *testing.T) {
	v, err := ring.RandomVector(rand.Reader, 4)
	require.NoError(t, err)

	data, err := v.MarshalBinary()
	require.NoError(t, err)

	var w ring.Vector
	require.NoError(t, w.UnmarshalBinary(data))
	assert.True(t, v.Equal(w))
}

func TestMatrixMulVectorLengthEqualsRows(t *testing.T) {
	m, err := ring.RandomMatrix(rand.Reader, 3, 2)
	require.NoError(t, err)
	v, err := ring.RandomVector(rand.Reader, 2)
	require.NoError(t, err)

	out, err := m.MulVector(v)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())
}

func TestMatrixMulVectorRejectsLengthMismatch(t *testing.T) {
	m, err := ring.RandomMatrix(rand.Reader, 3, 2)
	require.NoError(t, err)
	v, err := ring.RandomVector(rand.Reader, 5)
	require.NoError(t, err)

	_, err = m.MulVector(v)
	assert.ErrorIs(t, err, ring.ErrLengthMismatch)
}

func TestMulDistributesOverAdd(t *testing.T) {
	a, err := ring.Random(rand.Reader)
	require.NoError(t, err)
	b, err := ring.Random(rand.Reader)
	require.NoError(t, err)
	c, err := ring.Random(rand.Reader)
	require.NoError(t, err)

	left := a.Mul(b.Add(c))
	right := a.Mul(b).Add(a.Mul(c))
	assert.True(t, left.Equal(right))
}
