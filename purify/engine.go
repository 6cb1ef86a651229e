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

// Package purify implements the BBPSSW entanglement purification protocol as
// a steppable state machine over simulated Bell pairs.
//
// A run starts from noisy singlets and repeats rounds of twirl, exchange,
// bilateral CNOT, target-pair measurement and discard, sacrificing half the
// pairs each round to raise the fidelity of the rest. Two engines share the
// round chassis: the Average engine evolves exact ensemble averages in the
// Bell basis, the Monte Carlo engine samples one trajectory in the
// computational basis.
package purify

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/qdistill/go-qdistill/log"
	"github.com/qdistill/go-qdistill/quantum"
)

// Engine drives one purification run.
type Engine interface {
	// NextStep advances the protocol by exactly one named step and returns
	// the resulting snapshot. A complete engine is returned unchanged.
	NextStep() *State

	// Step advances to the end of the current round.
	Step() *State

	// Reset regenerates the initial pairs from the engine's seed and rewinds
	// to round zero.
	Reset() *State

	// CurrentState returns a snapshot without advancing.
	CurrentState() *State

	// UpdateParams validates p, replaces the configuration and resets.
	UpdateParams(p Params) error

	// Mode reports which implementation the engine runs.
	Mode() Mode
}

// model is the per-mode realization of the protocol physics. The chassis
// owns the round structure and calls into the model for everything that
// differs between exact averaging and trajectory sampling.
type model interface {
	// generate returns a fresh resting pair in the model's working basis.
	generate(id int) (*Pair, error)
	twirl(p *Pair) error
	exchange(p *Pair) error
	// joint builds the four-qubit state of one control/target combination
	// with the bilateral CNOT applied, control pair on the high qubits.
	joint(control, target *Pair) (*quantum.DensityMatrix, error)
	// measure post-selects the combination, updating the control pair's
	// state on success.
	measure(joint *quantum.DensityMatrix, control *Pair) (bool, error)
	// reentry is the step subsequent rounds begin at.
	reentry() Step
}

// New returns the engine implementation selected by p.Mode.
func New(p Params) (Engine, error) {
	if err := p.Sanitize(); err != nil {
		return nil, err
	}
	e := &engine{params: p, seed: p.Seed}
	if e.seed == 0 {
		e.seed = time.Now().UnixNano()
	}
	switch p.Mode {
	case ModeAverage:
		e.model = &averageModel{e: e}
	case ModeMonteCarlo:
		e.model = &monteCarloModel{e: e}
	}
	e.log = log.New("engine", p.Mode)
	if err := e.reset(); err != nil {
		return nil, err
	}
	return e, nil
}

// engine is the shared round chassis. The mutex serializes stepping against
// snapshot reads, so a display goroutine may poll CurrentState while another
// drives the protocol.
type engine struct {
	mu     sync.Mutex
	params Params
	seed   int64
	rng    *rand.Rand
	model  model
	log    log.Logger

	state *State
	carry *Pair // odd pair excluded from the current partition
}

func (e *engine) NextStep() *State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.Complete {
		e.advance()
	}
	return e.state.Clone()
}

func (e *engine) Step() *State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.Complete {
		for {
			e.advance()
			if e.state.Step == StepCompleted {
				break
			}
		}
	}
	return e.state.Clone()
}

func (e *engine) Reset() *State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.reset(); err != nil {
		panic(fmt.Errorf("purify: reset failed on validated params: %v", err))
	}
	return e.state.Clone()
}

func (e *engine) CurrentState() *State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

func (e *engine) UpdateParams(p Params) error {
	if err := p.Sanitize(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params = p
	e.seed = p.Seed
	if e.seed == 0 {
		e.seed = time.Now().UnixNano()
	}
	switch p.Mode {
	case ModeAverage:
		e.model = &averageModel{e: e}
	case ModeMonteCarlo:
		e.model = &monteCarloModel{e: e}
	}
	e.log = log.New("engine", p.Mode)
	return e.reset()
}

func (e *engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params.Mode
}

// reset reseeds the generator and regenerates the initial pairs, so two
// resets of the same engine replay the same run.
func (e *engine) reset() error {
	e.rng = rand.New(rand.NewSource(e.seed))
	pairs := make([]*Pair, 0, e.params.InitialPairs)
	for i := 0; i < e.params.InitialPairs; i++ {
		p, err := e.model.generate(i)
		if err != nil {
			return err
		}
		pairs = append(pairs, p)
	}
	e.state = &State{Pairs: pairs, Step: StepInitial}
	e.state.AverageFidelity = e.meanFidelity()
	e.partition()
	return nil
}

// advance moves the canonical state one protocol step. Every operation here
// acts on fixed-shape states validated at construction, so a failure is an
// internal inconsistency.
func (e *engine) advance() {
	var err error
	st := e.state
	switch st.Step {
	case StepInitial:
		err = e.twirlPartition()
		st.Step = StepTwirled
	case StepTwirled:
		err = e.exchangePartition()
		st.Step = StepExchanged
	case StepExchanged:
		err = e.buildJoints()
		st.Step = StepCNOT
	case StepCNOT:
		err = e.measureJoints()
		st.Step = StepMeasured
	case StepMeasured:
		e.discard()
		st.Step = StepDiscard
	case StepDiscard:
		err = e.restSurvivors()
		st.Step = StepTwirlExchange
	case StepTwirlExchange:
		e.finishRound()
		st.Step = StepCompleted
	case StepCompleted:
		st.Round++
		e.partition()
		st.Step = e.model.reentry()
		if st.Step == StepTwirled {
			err = e.twirlPartition()
		}
	}
	if err != nil {
		panic(fmt.Errorf("purify: %v step failed: %v", st.Step, err))
	}
	e.log.Trace("Advanced protocol", "round", st.Round, "step", st.Step, "pairs", len(st.Pairs))
}

// partition splits the current pairs into control/target combinations, pair
// 2i controlling pair 2i+1. A trailing odd pair sits the round out.
func (e *engine) partition() {
	pairs := e.state.Pairs
	pend := new(Pending)
	for i := 0; i+1 < len(pairs); i += 2 {
		pend.Controls = append(pend.Controls, pairs[i])
		pend.Targets = append(pend.Targets, pairs[i+1])
	}
	e.carry = nil
	if len(pairs)%2 == 1 {
		e.carry = pairs[len(pairs)-1]
	}
	e.state.Pending = pend
}

func (e *engine) eachPartitioned(fn func(*Pair) error) error {
	for _, p := range e.state.Pending.Controls {
		if err := fn(p); err != nil {
			return err
		}
	}
	for _, p := range e.state.Pending.Targets {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

func (e *engine) twirlPartition() error    { return e.eachPartitioned(e.model.twirl) }
func (e *engine) exchangePartition() error { return e.eachPartitioned(e.model.exchange) }

func (e *engine) buildJoints() error {
	pend := e.state.Pending
	pend.Joints = make([]*quantum.DensityMatrix, len(pend.Controls))
	for i := range pend.Controls {
		j, err := e.model.joint(pend.Controls[i], pend.Targets[i])
		if err != nil {
			return err
		}
		pend.Joints[i] = j
	}
	return nil
}

func (e *engine) measureJoints() error {
	pend := e.state.Pending
	pend.Results = make([]bool, len(pend.Joints))
	for i, j := range pend.Joints {
		ok, err := e.model.measure(j, pend.Controls[i])
		if err != nil {
			return err
		}
		pend.Results[i] = ok
	}
	return nil
}

// discard drops every target pair and every control pair whose combination
// failed post-selection. The odd carried-over pair stays.
func (e *engine) discard() {
	pend := e.state.Pending
	survivors := mapset.NewThreadUnsafeSet[int]()
	for i, ok := range pend.Results {
		if ok {
			survivors.Add(pend.Controls[i].ID)
		}
	}
	if e.carry != nil {
		survivors.Add(e.carry.ID)
	}
	kept := make([]*Pair, 0, survivors.Cardinality())
	for _, p := range e.state.Pairs {
		if survivors.Contains(p.ID) {
			kept = append(kept, p)
		}
	}
	e.state.Pairs = kept
	pend.Joints = nil
}

// restSurvivors exchanges the surviving pairs back to the Ψ−-dominant
// resting form and twirls them again. The carried-over pair never left that
// form.
func (e *engine) restSurvivors() error {
	for _, p := range e.state.Pairs {
		if e.carry != nil && p.ID == e.carry.ID {
			continue
		}
		if err := e.model.exchange(p); err != nil {
			return err
		}
		if err := e.model.twirl(p); err != nil {
			return err
		}
	}
	return nil
}

func (e *engine) finishRound() {
	st := e.state
	st.AverageFidelity = e.meanFidelity()
	st.Complete = st.AverageFidelity >= e.params.TargetFidelity || len(st.Pairs) < 2
	st.Pending = nil
	e.carry = nil
	e.log.Debug("Purification round finished", "round", st.Round, "pairs", len(st.Pairs),
		"avgFidelity", st.AverageFidelity, "complete", st.Complete)
}

func (e *engine) meanFidelity() float64 {
	if len(e.state.Pairs) == 0 {
		return 0
	}
	var sum float64
	for _, p := range e.state.Pairs {
		sum += p.Fidelity
	}
	return sum / float64(len(e.state.Pairs))
}

// noisySinglet generates one resting pair in the computational basis: a
// perfect singlet with the configured channel applied to Bob's qubit.
func (e *engine) noisySinglet() (*quantum.DensityMatrix, error) {
	return quantum.Apply(e.params.NoiseChannel, quantum.BellPsiMinus(), 1, e.params.NoiseParameter, e.rng)
}

// refreshFidelity recomputes the pair's singlet fidelity from its state.
func (e *engine) refreshFidelity(p *Pair) error {
	f, err := quantum.Fidelity(p.Rho, p.Basis, quantum.PsiMinus)
	if err != nil {
		return err
	}
	p.Fidelity = f
	return nil
}
