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

// bilateralCNOT is Alice's CNOT times Bob's: Alice reads her control-pair
// qubit 2 and flips her target-pair qubit 0, Bob reads 3 and flips 1. The
// factors act on disjoint qubits, so their order is immaterial.
var bilateralCNOT = func() *qmath.Matrix {
	alice, err := quantum.CNOT(4, 0, 2)
	if err != nil {
		panic(err)
	}
	bob, err := quantum.CNOT(4, 1, 3)
	if err != nil {
		panic(err)
	}
	gate, err := alice.Mul(bob)
	if err != nil {
		panic(err)
	}
	return gate
}()

// monteCarloModel samples one protocol trajectory in the computational
// basis: literal twirl draws, explicit four-qubit gate conjugations and
// sampled measurement collapse. Combinations succeed or fail individually,
// so survivor counts fluctuate run to run.
type monteCarloModel struct {
	e *engine
}

func (m *monteCarloModel) generate(id int) (*Pair, error) {
	rho, err := m.e.noisySinglet()
	if err != nil {
		return nil, err
	}
	p := &Pair{ID: id, Rho: rho, Basis: quantum.BasisComputational}
	if err := m.e.refreshFidelity(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (m *monteCarloModel) twirl(p *Pair) error {
	rho, err := quantum.PauliTwirl(p.Rho, m.e.rng)
	if err != nil {
		return err
	}
	p.Rho = rho
	return m.e.refreshFidelity(p)
}

func (m *monteCarloModel) exchange(p *Pair) error {
	rho, err := quantum.Conjugate(p.Rho, quantum.ExchangeGate())
	if err != nil {
		return err
	}
	p.Rho = rho
	return m.e.refreshFidelity(p)
}

// joint tensors the pairs with the control pair on qubits 2,3 and the target
// pair on 0,1, then applies the bilateral CNOT.
func (m *monteCarloModel) joint(control, target *Pair) (*quantum.DensityMatrix, error) {
	return quantum.Conjugate(control.Rho.Tensor(target.Rho), bilateralCNOT)
}

// measure samples both target-pair qubits and post-selects on agreement. On
// success the control pair keeps the collapsed joint reduced to its two
// qubits.
func (m *monteCarloModel) measure(joint *quantum.DensityMatrix, control *Pair) (bool, error) {
	alice, collapsed, err := quantum.SampleMeasurement(joint, 0, m.e.rng)
	if err != nil {
		return false, err
	}
	bob, collapsed, err := quantum.SampleMeasurement(collapsed, 1, m.e.rng)
	if err != nil {
		return false, err
	}
	if alice != bob {
		return false, nil
	}
	rho, err := quantum.PartialTrace(collapsed, 0, 1)
	if err != nil {
		return false, err
	}
	control.Rho = rho
	if err := m.e.refreshFidelity(control); err != nil {
		return false, err
	}
	return true, nil
}

func (m *monteCarloModel) reentry() Step { return StepInitial }
