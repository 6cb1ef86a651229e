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

package quantum

import (
	"fmt"

	"github.com/qdistill/go-qdistill/qmath"
)

// BellState identifies one of the four maximally entangled two-qubit states.
// The constant order is the row order of the Bell transform, so a BellState
// doubles as a diagonal index into Bell-basis matrices.
type BellState int

const (
	PhiPlus BellState = iota
	PhiMinus
	PsiPlus
	PsiMinus
)

func (s BellState) String() string {
	switch s {
	case PhiPlus:
		return "Phi+"
	case PhiMinus:
		return "Phi-"
	case PsiPlus:
		return "Psi+"
	case PsiMinus:
		return "Psi-"
	default:
		return fmt.Sprintf("BellState(%d)", int(s))
	}
}

// Density returns the pure density matrix of s.
func (s BellState) Density() (*DensityMatrix, error) {
	switch s {
	case PhiPlus:
		return BellPhiPlus(), nil
	case PhiMinus:
		return BellPhiMinus(), nil
	case PsiPlus:
		return BellPsiPlus(), nil
	case PsiMinus:
		return BellPsiMinus(), nil
	default:
		return nil, fmt.Errorf("%w: bell state %d", ErrInvalidParameter, s)
	}
}

// Basis tags which basis a two-qubit density matrix is currently expressed
// in. Engines carry the tag alongside each pair so displays and interop know
// how to read the matrix.
type Basis int

const (
	BasisComputational Basis = iota
	BasisBell
)

func (b Basis) String() string {
	text, err := b.MarshalText()
	if err != nil {
		return fmt.Sprintf("Basis(%d)", int(b))
	}
	return string(text)
}

// MarshalText implements encoding.TextMarshaler.
func (b Basis) MarshalText() ([]byte, error) {
	switch b {
	case BasisComputational:
		return []byte("computational"), nil
	case BasisBell:
		return []byte("bell"), nil
	default:
		return nil, fmt.Errorf("unknown basis %d", b)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Basis) UnmarshalText(text []byte) error {
	switch string(text) {
	case "computational":
		*b = BasisComputational
	case "bell":
		*b = BasisBell
	default:
		return fmt.Errorf(`unknown basis %q, want "computational" or "bell"`, text)
	}
	return nil
}

// bellTransform has the Bell states as rows, in BellState order. For a
// computational-basis ρ, U·ρ·U† is ρ with Bell-state labels.
var bellTransform = func() *qmath.Matrix {
	m, err := qmath.FromRows([][]complex128{
		{invSqrt2, 0, 0, invSqrt2},
		{invSqrt2, 0, 0, -invSqrt2},
		{0, invSqrt2, invSqrt2, 0},
		{0, invSqrt2, -invSqrt2, 0},
	})
	if err != nil {
		panic(err)
	}
	return m
}()

// ToBellBasis re-expresses a two-qubit computational-basis state in the
// Bell basis.
func ToBellBasis(rho *DensityMatrix) (*DensityMatrix, error) {
	if rho.Dim() != 4 {
		return nil, fmt.Errorf("%w: bell transform needs a two-qubit state, have dim %d", ErrInvalidParameter, rho.Dim())
	}
	return Conjugate(rho, bellTransform)
}

// ToComputationalBasis inverts ToBellBasis.
func ToComputationalBasis(rho *DensityMatrix) (*DensityMatrix, error) {
	if rho.Dim() != 4 {
		return nil, fmt.Errorf("%w: bell transform needs a two-qubit state, have dim %d", ErrInvalidParameter, rho.Dim())
	}
	return Conjugate(rho, bellTransform.Dagger())
}

// Fidelity returns ⟨target|ρ|target⟩, the target's diagonal entry of ρ in
// the Bell basis. The basis tag says how rho is currently expressed; a
// Bell-basis input skips the transform.
func Fidelity(rho *DensityMatrix, basis Basis, target BellState) (float64, error) {
	if target < PhiPlus || target > PsiMinus {
		return 0, fmt.Errorf("%w: bell state %d", ErrInvalidParameter, target)
	}
	if rho.Dim() != 4 {
		return 0, fmt.Errorf("%w: fidelity needs a two-qubit state, have dim %d", ErrInvalidParameter, rho.Dim())
	}
	if basis == BasisComputational {
		var err error
		if rho, err = ToBellBasis(rho); err != nil {
			return 0, err
		}
	}
	return real(rho.At(int(target), int(target))), nil
}
