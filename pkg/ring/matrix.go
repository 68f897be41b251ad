package ring

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/vantoluck/dilithium-threshold/pkg/pool"
)

// Matrix is a row-major k x l array of polynomials.
type Matrix struct {
	Rows, Cols int
	Data       []Polynomial // len == Rows*Cols, row-major
}

// NewMatrix allocates a zero k x l matrix.
func NewMatrix(rows, cols int) Matrix {
	return Matrix{Rows: rows, Cols: cols, Data: make([]Polynomial, rows*cols)}
}

// At returns the polynomial at (row, col).
func (m Matrix) At(row, col int) Polynomial { return m.Data[row*m.Cols+col] }

// Set assigns the polynomial at (row, col).
func (m Matrix) Set(row, col int, p Polynomial) { m.Data[row*m.Cols+col] = p }

// RandomMatrix draws a uniform k x l matrix from rnd, filling entries in
// row-major order from one stream. pkg/dilithium's ExpandMatrix does not
// use it: it draws each entry from its own SHAKE256 stream via Random.
func RandomMatrix(rnd io.Reader, rows, cols int) (Matrix, error) {
	m := NewMatrix(rows, cols)
	for i := range m.Data {
		p, err := Random(rnd)
		if err != nil {
			return Matrix{}, err
		}
		m.Data[i] = p
	}
	return m, nil
}

// rowPool bounds the concurrency of MulVector's row loop. Rows are
// independent, so a bounded worker pool splits them across cores the same
// way VerifyPartialSignatures fans out per-participant checks.
var rowPool = pool.NewPool(0)

// MulVector computes A*v, a vector of length Rows, where each output
// polynomial is sum_j A[i,j]*v[j]. Rows are computed concurrently across a
// bounded worker pool since they're independent of one another.
func (m Matrix) MulVector(v Vector) (Vector, error) {
	if v.Len() != m.Cols {
		return Vector{}, fmt.Errorf("%w: matrix has %d cols, vector has %d", ErrLengthMismatch, m.Cols, v.Len())
	}
	out := NewVector(m.Rows)
	err := rowPool.Run(context.Background(), m.Rows, func(_ context.Context, i int) error {
		acc := Zero()
		for j := 0; j < m.Cols; j++ {
			acc = acc.Add(m.At(i, j).Mul(v.At(j)))
		}
		out.Polys[i] = acc
		return nil
	})
	if err != nil {
		return Vector{}, err
	}
	return out, nil
}

// defaultRandSource holds crypto/rand.Reader. No function in this package
// reads it; every sampler takes its entropy source as an argument.
var defaultRandSource io.Reader = rand.Reader
