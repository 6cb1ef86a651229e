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
	"errors"
	"fmt"
	"math"

	"github.com/qdistill/go-qdistill/quantum"
)

// ErrInvalidConfig is returned when engine parameters fail validation.
var ErrInvalidConfig = errors.New("invalid engine configuration")

// Mode selects how an engine realizes the protocol's randomness.
type Mode int

const (
	// ModeAverage evolves exact ensemble averages in the Bell basis.
	ModeAverage Mode = iota
	// ModeMonteCarlo samples one trajectory with explicit twirl draws and
	// measurement outcomes.
	ModeMonteCarlo
)

// IsValid reports whether the mode names one of the two engine
// implementations.
func (m Mode) IsValid() bool {
	return m == ModeAverage || m == ModeMonteCarlo
}

func (m Mode) String() string {
	text, err := m.MarshalText()
	if err != nil {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return string(text)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	switch m {
	case ModeAverage:
		return []byte("average"), nil
	case ModeMonteCarlo:
		return []byte("montecarlo"), nil
	default:
		return nil, fmt.Errorf("unknown engine mode %d", m)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "average":
		*m = ModeAverage
	case "montecarlo":
		*m = ModeMonteCarlo
	default:
		return fmt.Errorf(`unknown engine mode %q, want "average" or "montecarlo"`, text)
	}
	return nil
}

// Params configures a purification engine.
type Params struct {
	InitialPairs   int             // entangled pairs generated at reset
	NoiseParameter float64         // channel parameter in [0,1]
	TargetFidelity float64         // stop once the average fidelity reaches this
	NoiseChannel   quantum.Channel // channel applied to Bob's qubit at generation
	Mode           Mode
	Seed           int64 // 0 derives the seed from the wall clock
}

// Defaults are the engine parameters used when the caller sets nothing.
var Defaults = Params{
	InitialPairs:   16,
	NoiseParameter: 0.2,
	TargetFidelity: 0.95,
	NoiseChannel:   quantum.ChannelUniform,
	Mode:           ModeAverage,
}

// Sanitize checks every field against its domain.
func (p Params) Sanitize() error {
	if p.InitialPairs < 2 {
		return fmt.Errorf("%w: need at least 2 initial pairs, have %d", ErrInvalidConfig, p.InitialPairs)
	}
	if math.IsNaN(p.NoiseParameter) || p.NoiseParameter < 0 || p.NoiseParameter > 1 {
		return fmt.Errorf("%w: noise parameter %v outside [0,1]", ErrInvalidConfig, p.NoiseParameter)
	}
	if math.IsNaN(p.TargetFidelity) || p.TargetFidelity <= 0 || p.TargetFidelity > 1 {
		return fmt.Errorf("%w: target fidelity %v outside (0,1]", ErrInvalidConfig, p.TargetFidelity)
	}
	if _, err := p.NoiseChannel.MarshalText(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !p.Mode.IsValid() {
		return fmt.Errorf("%w: unknown engine mode %d", ErrInvalidConfig, p.Mode)
	}
	return nil
}
