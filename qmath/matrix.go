// Copyright 2025 The go-qdistill Authors
// This file is part of the go-qdistill library.
//
// The go-qdistill library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-qdistill library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-qdistill library. If not, see <http://www.gnu.org/licenses/>.

package qmath

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

var (
	// ErrDimensionMismatch is returned when matrices cannot be combined
	// because their shapes disagree.
	ErrDimensionMismatch = errors.New("matrix dimension mismatch")

	// ErrNotSquare is returned by operations defined only for square matrices.
	ErrNotSquare = errors.New("matrix is not square")
)

// Matrix is a dense complex matrix in row-major order. Matrices are
// immutable: operations never modify their receiver and return fresh values,
// so holding a reference to one is always safe.
type Matrix struct {
	rows, cols int
	data       []complex128
}

// New returns a zero-filled rows×cols matrix.
func New(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, data: make([]complex128, rows*cols)}
}

// FromRows builds a matrix from a slice of rows, validating that the shape
// is rectangular and non-empty.
func FromRows(rows [][]complex128) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDimensionMismatch)
	}
	cols := len(rows[0])
	m := New(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimensionMismatch, i, len(row), cols)
		}
		copy(m.data[i*cols:(i+1)*cols], row)
	}
	return m, nil
}

// FromFunc builds a rows×cols matrix whose element at (i, j) is f(i, j).
func FromFunc(rows, cols int, f func(i, j int) complex128) *Matrix {
	m := New(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.data[i*cols+j] = f(i, j)
		}
	}
	return m
}

// Identity returns the n×n identity matrix.
func Identity(n int) *Matrix {
	m := New(n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// FromDiagonal returns a square matrix with diag on the main diagonal.
func FromDiagonal(diag []complex128) *Matrix {
	n := len(diag)
	m := New(n, n)
	for i, z := range diag {
		m.data[i*n+i] = z
	}
	return m
}

// Rows returns the row count.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the column count.
func (m *Matrix) Cols() int { return m.cols }

// IsSquare reports whether the matrix is square.
func (m *Matrix) IsSquare() bool { return m.rows == m.cols }

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) complex128 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("qmath: index (%d,%d) out of range for %dx%d matrix", i, j, m.rows, m.cols))
	}
	return m.data[i*m.cols+j]
}

// Map returns a new matrix with f applied to every element.
func (m *Matrix) Map(f func(complex128) complex128) *Matrix {
	out := New(m.rows, m.cols)
	for i, z := range m.data {
		out.data[i] = f(z)
	}
	return out
}

// Zip combines m and n element-wise with f. Shapes must match.
func (m *Matrix) Zip(n *Matrix, f func(a, b complex128) complex128) (*Matrix, error) {
	if m.rows != n.rows || m.cols != n.cols {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, m.rows, m.cols, n.rows, n.cols)
	}
	out := New(m.rows, m.cols)
	for i := range m.data {
		out.data[i] = f(m.data[i], n.data[i])
	}
	return out, nil
}

// Add returns m + n.
func (m *Matrix) Add(n *Matrix) (*Matrix, error) {
	return m.Zip(n, func(a, b complex128) complex128 { return a + b })
}

// Sub returns m - n.
func (m *Matrix) Sub(n *Matrix) (*Matrix, error) {
	return m.Zip(n, func(a, b complex128) complex128 { return a - b })
}

// Scale returns m with every element multiplied by z.
func (m *Matrix) Scale(z complex128) *Matrix {
	return m.Map(func(a complex128) complex128 { return a * z })
}

// Mul returns the matrix product m·n.
func (m *Matrix) Mul(n *Matrix) (*Matrix, error) {
	if m.cols != n.rows {
		return nil, fmt.Errorf("%w: %dx%d times %dx%d", ErrDimensionMismatch, m.rows, m.cols, n.rows, n.cols)
	}
	out := New(m.rows, n.cols)
	for i := 0; i < m.rows; i++ {
		for k := 0; k < m.cols; k++ {
			a := m.data[i*m.cols+k]
			if a == 0 {
				continue
			}
			for j := 0; j < n.cols; j++ {
				out.data[i*n.cols+j] += a * n.data[k*n.cols+j]
			}
		}
	}
	return out, nil
}

// Dagger returns the conjugate transpose.
func (m *Matrix) Dagger() *Matrix {
	out := New(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[j*m.rows+i] = cmplx.Conj(m.data[i*m.cols+j])
		}
	}
	return out
}

// Tensor returns the Kronecker product m⊗n: the block at position (i, j)
// is m[i,j]·n.
func (m *Matrix) Tensor(n *Matrix) *Matrix {
	cols := m.cols * n.cols
	out := New(m.rows*n.rows, cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			a := m.data[i*m.cols+j]
			if a == 0 {
				continue
			}
			for p := 0; p < n.rows; p++ {
				for q := 0; q < n.cols; q++ {
					out.data[(i*n.rows+p)*cols+(j*n.cols+q)] = a * n.data[p*n.cols+q]
				}
			}
		}
	}
	return out
}

// Trace returns the sum of the diagonal elements.
func (m *Matrix) Trace() (complex128, error) {
	if !m.IsSquare() {
		return 0, fmt.Errorf("%w: %dx%d", ErrNotSquare, m.rows, m.cols)
	}
	var tr complex128
	for i := 0; i < m.rows; i++ {
		tr += m.data[i*m.cols+i]
	}
	return canon(tr), nil
}

// Equals reports whether m and n have the same shape and every element-wise
// absolute difference is below tol.
func (m *Matrix) Equals(n *Matrix, tol float64) bool {
	if m.rows != n.rows || m.cols != n.cols {
		return false
	}
	for i := range m.data {
		if cmplx.Abs(m.data[i]-n.data[i]) >= tol {
			return false
		}
	}
	return true
}

// EqualsUpToGlobalPhase reports whether m and n agree after multiplying m by
// some unit-magnitude phase. The phase is read off the largest-magnitude
// element of m.
func (m *Matrix) EqualsUpToGlobalPhase(n *Matrix, tol float64) bool {
	if m.rows != n.rows || m.cols != n.cols {
		return false
	}
	ref, mag := 0, 0.0
	for i, z := range m.data {
		if a := cmplx.Abs(z); a > mag {
			ref, mag = i, a
		}
	}
	if mag < divEps {
		return m.Equals(n, tol)
	}
	if cmplx.Abs(n.data[ref]) < divEps {
		return false
	}
	phase := n.data[ref] / m.data[ref]
	if math.Abs(cmplx.Abs(phase)-1) >= tol {
		return false
	}
	phase /= complex(cmplx.Abs(phase), 0)
	for i := range m.data {
		if cmplx.Abs(m.data[i]*phase-n.data[i]) >= tol {
			return false
		}
	}
	return true
}

// maxAbs returns the largest element magnitude.
func (m *Matrix) maxAbs() float64 {
	var max float64
	for _, z := range m.data {
		if a := cmplx.Abs(z); a > max {
			max = a
		}
	}
	return max
}

// String renders the matrix as nested rows with canonical zero signs.
func (m *Matrix) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('[')
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%v", canon(m.data[i*m.cols+j]))
		}
		sb.WriteByte(']')
	}
	sb.WriteByte(']')
	return sb.String()
}
