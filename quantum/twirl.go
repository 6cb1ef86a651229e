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
	"math/rand"

	"github.com/qdistill/go-qdistill/qmath"
)

// twirlSequences are the twelve fixed bilateral rotation sequences of the
// Bell-diagonalizing twirl. Each letter applies σ⊗σ to the pair. Up to
// global phase the sequence products cover {I⊗I, X⊗X, Y⊗Y, Z⊗Z} uniformly,
// three sequences per element, so a uniform draw realizes the exact group
// average. Every product has the four Bell states as eigenvectors, which
// keeps the fidelity to any Bell state unchanged under each sequence.
var twirlSequences = [][]Pauli{
	{},
	{PauliX},
	{PauliY},
	{PauliZ},
	{PauliX, PauliY},
	{PauliX, PauliZ},
	{PauliY, PauliX},
	{PauliY, PauliZ},
	{PauliZ, PauliX},
	{PauliZ, PauliY},
	{PauliX, PauliY, PauliZ},
	{PauliZ, PauliY, PauliX},
}

// TwirlSequenceCount is the number of fixed twirl sequences.
const TwirlSequenceCount = 12

// TwirlOperator returns the 4×4 unitary of twirl sequence i, the product of
// its bilateral Pauli letters applied left to right.
func TwirlOperator(i int) (*qmath.Matrix, error) {
	if i < 0 || i >= len(twirlSequences) {
		return nil, fmt.Errorf("%w: twirl sequence %d of %d", ErrInvalidParameter, i, len(twirlSequences))
	}
	op := qmath.Identity(4)
	for _, letter := range twirlSequences[i] {
		bilateral, err := PauliOperator(2, []int{0, 1}, []Pauli{letter, letter})
		if err != nil {
			return nil, err
		}
		if op, err = bilateral.Mul(op); err != nil {
			return nil, err
		}
	}
	return op, nil
}

var twirlOperators = func() []*qmath.Matrix {
	ops := make([]*qmath.Matrix, len(twirlSequences))
	for i := range twirlSequences {
		op, err := TwirlOperator(i)
		if err != nil {
			panic(err)
		}
		ops[i] = op
	}
	return ops
}()

// PauliTwirl applies one uniformly drawn twirl sequence to a two-qubit
// state.
func PauliTwirl(rho *DensityMatrix, rng *rand.Rand) (*DensityMatrix, error) {
	if rho.Dim() != 4 {
		return nil, fmt.Errorf("%w: twirl needs a two-qubit state, have dim %d", ErrInvalidParameter, rho.Dim())
	}
	return Conjugate(rho, twirlOperators[rng.Intn(len(twirlOperators))])
}

// TwirlAverage returns the exact average over all twirl sequences. The
// average projects the state onto its Bell-diagonal (Werner) part: in the
// Bell basis the diagonal is kept and every off-diagonal entry cancels.
func TwirlAverage(rho *DensityMatrix) (*DensityMatrix, error) {
	if rho.Dim() != 4 {
		return nil, fmt.Errorf("%w: twirl needs a two-qubit state, have dim %d", ErrInvalidParameter, rho.Dim())
	}
	sum := qmath.New(4, 4)
	for _, u := range twirlOperators {
		term, err := Conjugate(rho, u)
		if err != nil {
			return nil, err
		}
		if sum, err = sum.Add(term.Matrix()); err != nil {
			return nil, err
		}
	}
	return &DensityMatrix{mat: sum.Scale(complex(1/float64(len(twirlOperators)), 0))}, nil
}
