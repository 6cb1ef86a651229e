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
	"math"
	"math/rand"

	"github.com/qdistill/go-qdistill/qmath"
)

// Channel identifies a single-qubit noise channel.
type Channel int

const (
	ChannelUniform Channel = iota
	ChannelAmplitudeDamping
	ChannelDephasing
	ChannelDepolarizing
)

func (c Channel) String() string {
	text, err := c.MarshalText()
	if err != nil {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return string(text)
}

// MarshalText implements encoding.TextMarshaler.
func (c Channel) MarshalText() ([]byte, error) {
	switch c {
	case ChannelUniform:
		return []byte("uniform"), nil
	case ChannelAmplitudeDamping:
		return []byte("damping"), nil
	case ChannelDephasing:
		return []byte("dephasing"), nil
	case ChannelDepolarizing:
		return []byte("depolarizing"), nil
	default:
		return nil, fmt.Errorf("unknown noise channel %d", c)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Channel) UnmarshalText(text []byte) error {
	switch string(text) {
	case "uniform":
		*c = ChannelUniform
	case "damping":
		*c = ChannelAmplitudeDamping
	case "dephasing":
		*c = ChannelDephasing
	case "depolarizing":
		*c = ChannelDepolarizing
	default:
		return fmt.Errorf(`unknown noise channel %q, want "uniform", "damping", "dephasing" or "depolarizing"`, text)
	}
	return nil
}

// Apply runs the channel on one qubit of rho with the given parameter. Only
// the uniform channel draws from rng; the Kraus channels ignore it.
func Apply(c Channel, rho *DensityMatrix, qubit int, p float64, rng *rand.Rand) (*DensityMatrix, error) {
	switch c {
	case ChannelUniform:
		return ApplyUniformNoise(rho, qubit, p, rng)
	case ChannelAmplitudeDamping:
		return ApplyAmplitudeDamping(rho, qubit, p)
	case ChannelDephasing:
		return ApplyDephasing(rho, qubit, p)
	case ChannelDepolarizing:
		return ApplyDepolarizing(rho, qubit, p)
	default:
		return nil, fmt.Errorf("%w: noise channel %d", ErrInvalidParameter, c)
	}
}

func validateChannelArgs(rho *DensityMatrix, qubit int, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%w: noise parameter %v outside [0,1]", ErrInvalidParameter, p)
	}
	if qubit < 0 || qubit >= rho.Qubits() {
		return fmt.Errorf("%w: qubit %d outside state of %d qubits", ErrInvalidParameter, qubit, rho.Qubits())
	}
	return nil
}

// applyKraus embeds each single-qubit Kraus operator on the target qubit and
// returns Σ K·ρ·K†.
func applyKraus(rho *DensityMatrix, qubit int, ops []*qmath.Matrix) (*DensityMatrix, error) {
	sum := qmath.New(rho.Dim(), rho.Dim())
	for _, k := range ops {
		full := embedSingleQubit(k, rho.Qubits(), qubit)
		term, err := full.Mul(rho.Matrix())
		if err != nil {
			return nil, err
		}
		if term, err = term.Mul(full.Dagger()); err != nil {
			return nil, err
		}
		if sum, err = sum.Add(term); err != nil {
			return nil, err
		}
	}
	return &DensityMatrix{mat: sum}, nil
}

// ApplyDepolarizing applies the depolarizing channel with Kraus operators
// √(1−p)·I and √(p/3)·{X,Y,Z}. Under this parametrization p = 0.75 is the
// maximally depolarizing point, mapping any input to I/2 on the qubit.
func ApplyDepolarizing(rho *DensityMatrix, qubit int, p float64) (*DensityMatrix, error) {
	if err := validateChannelArgs(rho, qubit, p); err != nil {
		return nil, err
	}
	keep := complex(math.Sqrt(1-p), 0)
	flip := complex(math.Sqrt(p/3), 0)
	return applyKraus(rho, qubit, []*qmath.Matrix{
		matI.Scale(keep),
		matX.Scale(flip),
		matY.Scale(flip),
		matZ.Scale(flip),
	})
}

// ApplyDephasing applies the phase-damping channel with Kraus operators
// √(1−p/2)·I and √(p/2)·Z.
func ApplyDephasing(rho *DensityMatrix, qubit int, p float64) (*DensityMatrix, error) {
	if err := validateChannelArgs(rho, qubit, p); err != nil {
		return nil, err
	}
	return applyKraus(rho, qubit, []*qmath.Matrix{
		matI.Scale(complex(math.Sqrt(1-p/2), 0)),
		matZ.Scale(complex(math.Sqrt(p/2), 0)),
	})
}

// ApplyAmplitudeDamping applies the amplitude-damping channel with decay
// probability gamma: Kraus operators diag(1, √(1−γ)) and [[0,√γ],[0,0]].
func ApplyAmplitudeDamping(rho *DensityMatrix, qubit int, gamma float64) (*DensityMatrix, error) {
	if err := validateChannelArgs(rho, qubit, gamma); err != nil {
		return nil, err
	}
	k0 := qmath.FromDiagonal([]complex128{1, complex(math.Sqrt(1-gamma), 0)})
	k1 := mustMat([][]complex128{
		{0, complex(math.Sqrt(gamma), 0)},
		{0, 0},
	})
	return applyKraus(rho, qubit, []*qmath.Matrix{k0, k1})
}

// ApplyUniformNoise conjugates one qubit by a random unitary raised to the
// fractional power strength, then renormalizes the trace. A strength of
// zero returns the input state unchanged without consuming randomness.
func ApplyUniformNoise(rho *DensityMatrix, qubit int, strength float64, rng *rand.Rand) (*DensityMatrix, error) {
	if err := validateChannelArgs(rho, qubit, strength); err != nil {
		return nil, err
	}
	if strength == 0 {
		return rho, nil
	}
	u, err := qmath.RandomUnitary(2, rng)
	if err != nil {
		return nil, err
	}
	frac, err := qmath.FractionalPower(u, strength)
	if err != nil {
		return nil, err
	}
	out, err := Conjugate(rho, embedSingleQubit(frac, rho.Qubits(), qubit))
	if err != nil {
		return nil, err
	}
	return out.Normalize()
}
