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
	"fmt"

	"github.com/qdistill/go-qdistill/quantum"
)

// Step identifies one stage of the purification round state machine.
type Step int

const (
	StepInitial Step = iota
	StepTwirled
	StepExchanged
	StepCNOT
	StepMeasured
	StepDiscard
	StepTwirlExchange
	StepCompleted
)

func (s Step) String() string {
	switch s {
	case StepInitial:
		return "initial"
	case StepTwirled:
		return "twirled"
	case StepExchanged:
		return "exchanged"
	case StepCNOT:
		return "cnot"
	case StepMeasured:
		return "measured"
	case StepDiscard:
		return "discard"
	case StepTwirlExchange:
		return "twirlExchange"
	case StepCompleted:
		return "completed"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// Pair is one two-qubit entangled pair shared by the two parties. The state
// is replaced wholesale as the pair evolves; ID survives across rounds.
// Fidelity is the pair's Ψ− component.
type Pair struct {
	ID       int
	Rho      *quantum.DensityMatrix
	Basis    quantum.Basis
	Fidelity float64
}

// Clone returns a copy of the pair. Density matrices are immutable, so the
// copy shares the state.
func (p *Pair) Clone() *Pair {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// Pending holds the in-flight products of the current round: the
// control/target partition, the joint four-qubit states after the bilateral
// CNOT, and the per-combination post-selection results. Joints exist from
// the cnot step through measured, Results from measured on; the whole value
// clears when the round completes.
type Pending struct {
	Controls []*Pair
	Targets  []*Pair
	Joints   []*quantum.DensityMatrix
	Results  []bool
}

// Clone returns a deep copy of the pending round products.
func (p *Pending) Clone() *Pending {
	if p == nil {
		return nil
	}
	cp := new(Pending)
	for _, c := range p.Controls {
		cp.Controls = append(cp.Controls, c.Clone())
	}
	for _, t := range p.Targets {
		cp.Targets = append(cp.Targets, t.Clone())
	}
	cp.Joints = append([]*quantum.DensityMatrix(nil), p.Joints...)
	cp.Results = append([]bool(nil), p.Results...)
	return cp
}

// State is a snapshot of an engine between steps. Engines hand out deep
// copies, so a returned State never changes under the caller.
type State struct {
	Pairs           []*Pair
	Round           int
	Complete        bool
	Step            Step
	AverageFidelity float64
	Pending         *Pending
}

// Clone returns a deep copy of the snapshot.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Pairs = make([]*Pair, len(s.Pairs))
	for i, p := range s.Pairs {
		cp.Pairs[i] = p.Clone()
	}
	cp.Pending = s.Pending.Clone()
	return &cp
}
