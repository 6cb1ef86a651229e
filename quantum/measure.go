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

// probEps is the probability below which a measurement branch is treated as
// impossible.
const probEps = 1e-12

// Outcome is one branch of a projective measurement.
type Outcome struct {
	Probability float64
	State       *DensityMatrix // nil when the branch probability is ~0
}

// MeasureQubit measures one qubit in the computational basis and returns
// both branches: the outcome probabilities with the collapsed, renormalized
// post-measurement states. Index 0 holds the |0⟩ branch.
func MeasureQubit(rho *DensityMatrix, qubit int) ([2]Outcome, error) {
	var branches [2]Outcome
	if qubit < 0 || qubit >= rho.Qubits() {
		return branches, fmt.Errorf("%w: qubit %d outside state of %d qubits", ErrInvalidParameter, qubit, rho.Qubits())
	}
	dim := rho.Dim()
	mask := 1 << qubit
	for outcome := 0; outcome < 2; outcome++ {
		bitSet := outcome == 1
		proj := qmath.FromFunc(dim, dim, func(i, j int) complex128 {
			if i == j && (i&mask != 0) == bitSet {
				return 1
			}
			return 0
		})
		m, err := proj.Mul(rho.Matrix())
		if err != nil {
			return branches, err
		}
		if m, err = m.Mul(proj); err != nil {
			return branches, err
		}
		tr, err := m.Trace()
		if err != nil {
			return branches, err
		}
		p := real(tr)
		branches[outcome].Probability = p
		if p > probEps {
			branches[outcome].State = &DensityMatrix{mat: m.Scale(complex(1/p, 0))}
		}
	}
	return branches, nil
}

// SampleMeasurement measures one qubit with the outcome drawn from rng and
// returns the sampled bit together with the collapsed state.
func SampleMeasurement(rho *DensityMatrix, qubit int, rng *rand.Rand) (int, *DensityMatrix, error) {
	branches, err := MeasureQubit(rho, qubit)
	if err != nil {
		return 0, nil, err
	}
	bit := 0
	if rng.Float64() >= branches[0].Probability {
		bit = 1
	}
	if branches[bit].State == nil {
		bit = 1 - bit
	}
	return bit, branches[bit].State, nil
}

// PartialTrace traces out the given qubits and returns the reduced state
// over the remaining ones, relabeled to preserve their relative order with
// qubit 0 still the least significant bit.
func PartialTrace(rho *DensityMatrix, traced ...int) (*DensityMatrix, error) {
	n := rho.Qubits()
	tmask := 0
	for _, q := range traced {
		if q < 0 || q >= n {
			return nil, fmt.Errorf("%w: qubit %d outside state of %d qubits", ErrInvalidParameter, q, n)
		}
		if tmask&(1<<q) != 0 {
			return nil, fmt.Errorf("%w: duplicate traced qubit %d", ErrInvalidParameter, q)
		}
		tmask |= 1 << q
	}
	kept := make([]int, 0, n)
	for q := 0; q < n; q++ {
		if tmask&(1<<q) == 0 {
			kept = append(kept, q)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: cannot trace out every qubit", ErrInvalidParameter)
	}
	tracedList := make([]int, 0, len(traced))
	for q := 0; q < n; q++ {
		if tmask&(1<<q) != 0 {
			tracedList = append(tracedList, q)
		}
	}
	expand := func(kidx, tidx int) int {
		full := 0
		for pos, q := range kept {
			if kidx&(1<<pos) != 0 {
				full |= 1 << q
			}
		}
		for pos, q := range tracedList {
			if tidx&(1<<pos) != 0 {
				full |= 1 << q
			}
		}
		return full
	}
	kdim := 1 << len(kept)
	tdim := 1 << len(tracedList)
	m := qmath.FromFunc(kdim, kdim, func(i, j int) complex128 {
		var sum complex128
		for t := 0; t < tdim; t++ {
			sum += rho.At(expand(i, t), expand(j, t))
		}
		return sum
	})
	return &DensityMatrix{mat: m}, nil
}
