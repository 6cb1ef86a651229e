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

package purify

import (
	"github.com/qdistill/go-qdistill/qmath"
	"github.com/qdistill/go-qdistill/quantum"
)

// successEps is the post-selection probability below which a combination is
// treated as failed outright.
const successEps = 1e-12

// averageModel evolves exact ensemble averages. Pairs live in the Bell
// basis, where each protocol step is a closed-form operation on the evolving
// Bell-diagonal states: the twirl drops off-diagonal entries, the exchange
// reverses the diagonal, the bilateral CNOT permutes joint Bell labels and
// the measurement renormalizes by the analytic success probability. The only
// randomness is the initial noise draw, so runs are deterministic per seed.
type averageModel struct {
	e *engine
}

func (m *averageModel) generate(id int) (*Pair, error) {
	rho, err := m.e.noisySinglet()
	if err != nil {
		return nil, err
	}
	if rho, err = quantum.ToBellBasis(rho); err != nil {
		return nil, err
	}
	p := &Pair{ID: id, Rho: rho, Basis: quantum.BasisBell}
	if err := m.e.refreshFidelity(p); err != nil {
		return nil, err
	}
	return p, nil
}

// twirl projects the pair onto its Bell-diagonal part.
func (m *averageModel) twirl(p *Pair) error {
	diag := make([]complex128, 4)
	for i := range diag {
		diag[i] = complex(real(p.Rho.At(i, i)), 0)
	}
	rho, err := quantum.FromMatrix(qmath.FromDiagonal(diag))
	if err != nil {
		return err
	}
	p.Rho = rho
	return m.e.refreshFidelity(p)
}

// exchange relabels the Bell components pairwise, Φ+↔Ψ− and Φ−↔Ψ+. On the
// Bell-diagonal states this engine evolves, reversing the index order is
// exactly the exchange unitary's conjugation.
func (m *averageModel) exchange(p *Pair) error {
	src := p.Rho
	rho, err := quantum.FromMatrix(qmath.FromFunc(4, 4, func(i, j int) complex128 {
		return src.At(3-i, 3-j)
	}))
	if err != nil {
		return err
	}
	p.Rho = rho
	return m.e.refreshFidelity(p)
}

// bcnotLabel maps one joint Bell-label index through the bilateral CNOT.
// Writing a label as 2q+p with phase bit p and parity bit q, a control
// (p1,q1) and target (p2,q2) become (p1⊕p2, q1) and (p2, q1⊕q2). The map is
// its own inverse.
func bcnotLabel(idx int) int {
	control, target := idx>>2, idx&3
	p1, q1 := control&1, control>>1
	p2, q2 := target&1, target>>1
	newControl := q1<<1 | (p1 ^ p2)
	newTarget := (q1^q2)<<1 | p2
	return newControl<<2 | newTarget
}

// joint tensors the Bell-basis pairs, control label in the high two index
// bits, and applies the bilateral CNOT as the label permutation.
func (m *averageModel) joint(control, target *Pair) (*quantum.DensityMatrix, error) {
	jm := control.Rho.Tensor(target.Rho).Matrix()
	return quantum.FromMatrix(qmath.FromFunc(16, 16, func(i, j int) complex128 {
		return jm.At(bcnotLabel(i), bcnotLabel(j))
	}))
}

// measure post-selects the target pair on agreeing outcomes, which in Bell
// labels keeps the even-parity components Φ+ and Φ−. The control pair gets
// the projected partial trace scaled back to unit trace by the success
// probability.
func (m *averageModel) measure(joint *quantum.DensityMatrix, control *Pair) (bool, error) {
	reduced := qmath.FromFunc(4, 4, func(i, j int) complex128 {
		return joint.At(4*i, 4*j) + joint.At(4*i+1, 4*j+1)
	})
	tr, err := reduced.Trace()
	if err != nil {
		return false, err
	}
	psucc := real(tr)
	if psucc < successEps {
		m.e.log.Warn("Post-selection probability vanished", "pair", control.ID)
		return false, nil
	}
	rho, err := quantum.FromMatrix(reduced.Scale(complex(1/psucc, 0)))
	if err != nil {
		return false, err
	}
	control.Rho = rho
	if err := m.e.refreshFidelity(control); err != nil {
		return false, err
	}
	return true, nil
}

func (m *averageModel) reentry() Step { return StepTwirled }
