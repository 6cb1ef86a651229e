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

// Package quantum implements the simulator's quantum state layer: density
// matrices with Bell-basis transforms, multi-qubit Pauli and CNOT operators,
// single-qubit noise channels, projective measurement with partial trace,
// and the Bell-diagonalizing Pauli twirl.
//
// Qubit order is little-endian everywhere: bit k of a basis index addresses
// qubit k, so qubit 0 varies fastest.
package quantum

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"

	"github.com/qdistill/go-qdistill/qmath"
)

// ErrInvalidParameter is returned when a state, gate or channel constructor
// receives an argument outside its domain.
var ErrInvalidParameter = errors.New("invalid parameter")

// DensityMatrix is a mixed quantum state over n qubits: a 2ⁿ×2ⁿ complex
// matrix with unit trace, Hermitian and positive semidefinite. The backing
// matrix is immutable, so density matrices may be shared freely.
type DensityMatrix struct {
	mat *qmath.Matrix
}

// FromMatrix wraps m as a density matrix. Only the shape is checked here;
// trace and Hermiticity are the caller's claim, verifiable with Validate.
func FromMatrix(m *qmath.Matrix) (*DensityMatrix, error) {
	if !m.IsSquare() || !isPowerOfTwo(m.Rows()) {
		return nil, fmt.Errorf("%w: density matrix shape %dx%d", ErrInvalidParameter, m.Rows(), m.Cols())
	}
	return &DensityMatrix{mat: m}, nil
}

// FromStateVector returns the pure state |v⟩⟨v|.
func FromStateVector(v []complex128) (*DensityMatrix, error) {
	if len(v) == 0 || !isPowerOfTwo(len(v)) {
		return nil, fmt.Errorf("%w: state vector length %d", ErrInvalidParameter, len(v))
	}
	m := qmath.FromFunc(len(v), len(v), func(i, j int) complex128 {
		return v[i] * cmplx.Conj(v[j])
	})
	return &DensityMatrix{mat: m}, nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && bits.OnesCount(uint(n)) == 1
}

var invSqrt2 = complex(1/math.Sqrt2, 0)

// BellPhiPlus returns |Φ+⟩⟨Φ+| = (|00⟩+|11⟩)(...)/2.
func BellPhiPlus() *DensityMatrix {
	return mustPure([]complex128{invSqrt2, 0, 0, invSqrt2})
}

// BellPhiMinus returns |Φ−⟩⟨Φ−| = (|00⟩−|11⟩)(...)/2.
func BellPhiMinus() *DensityMatrix {
	return mustPure([]complex128{invSqrt2, 0, 0, -invSqrt2})
}

// BellPsiPlus returns |Ψ+⟩⟨Ψ+| = (|01⟩+|10⟩)(...)/2.
func BellPsiPlus() *DensityMatrix {
	return mustPure([]complex128{0, invSqrt2, invSqrt2, 0})
}

// BellPsiMinus returns |Ψ−⟩⟨Ψ−| = (|01⟩−|10⟩)(...)/2, the singlet.
func BellPsiMinus() *DensityMatrix {
	return mustPure([]complex128{0, invSqrt2, -invSqrt2, 0})
}

func mustPure(v []complex128) *DensityMatrix {
	dm, err := FromStateVector(v)
	if err != nil {
		panic(err)
	}
	return dm
}

// MaximallyMixed returns I/2ⁿ over the given number of qubits.
func MaximallyMixed(qubits int) (*DensityMatrix, error) {
	if qubits < 1 {
		return nil, fmt.Errorf("%w: qubit count %d", ErrInvalidParameter, qubits)
	}
	dim := 1 << qubits
	return &DensityMatrix{mat: qmath.Identity(dim).Scale(complex(1/float64(dim), 0))}, nil
}

// Dim returns the Hilbert space dimension.
func (d *DensityMatrix) Dim() int { return d.mat.Rows() }

// Qubits returns the number of qubits the state describes.
func (d *DensityMatrix) Qubits() int { return bits.TrailingZeros(uint(d.mat.Rows())) }

// Matrix returns the backing matrix. It is immutable, sharing is safe.
func (d *DensityMatrix) Matrix() *qmath.Matrix { return d.mat }

// At returns ρ[i,j].
func (d *DensityMatrix) At(i, j int) complex128 { return d.mat.At(i, j) }

// Trace returns tr(ρ).
func (d *DensityMatrix) Trace() complex128 {
	tr, _ := d.mat.Trace()
	return tr
}

// Normalize rescales the state to unit trace.
func (d *DensityMatrix) Normalize() (*DensityMatrix, error) {
	scale, err := qmath.Div(1, d.Trace())
	if err != nil {
		return nil, fmt.Errorf("normalizing zero-trace state: %w", err)
	}
	return &DensityMatrix{mat: d.mat.Scale(scale)}, nil
}

// Validate checks that the trace is within eps of one and that the matrix
// is Hermitian within eps.
func (d *DensityMatrix) Validate(eps float64) error {
	tr := d.Trace()
	if math.Abs(real(tr)-1) >= eps || math.Abs(imag(tr)) >= eps {
		return fmt.Errorf("%w: density matrix trace %v", ErrInvalidParameter, tr)
	}
	if !d.mat.Equals(d.mat.Dagger(), eps) {
		return fmt.Errorf("%w: density matrix not Hermitian", ErrInvalidParameter)
	}
	return nil
}

// Conjugate returns u·ρ·u†, the state after the unitary u.
func Conjugate(rho *DensityMatrix, u *qmath.Matrix) (*DensityMatrix, error) {
	m, err := u.Mul(rho.mat)
	if err != nil {
		return nil, err
	}
	if m, err = m.Mul(u.Dagger()); err != nil {
		return nil, err
	}
	return &DensityMatrix{mat: m}, nil
}

// Tensor returns the joint state ρ⊗σ. The factor ρ occupies the high qubits
// and σ the low ones.
func (d *DensityMatrix) Tensor(other *DensityMatrix) *DensityMatrix {
	return &DensityMatrix{mat: d.mat.Tensor(other.mat)}
}

func (d *DensityMatrix) String() string {
	return d.mat.String()
}
