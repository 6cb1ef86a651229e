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

// Pauli labels the single-qubit Pauli operators.
type Pauli int

const (
	PauliI Pauli = iota
	PauliX
	PauliY
	PauliZ
)

func (p Pauli) String() string {
	switch p {
	case PauliI:
		return "I"
	case PauliX:
		return "X"
	case PauliY:
		return "Y"
	case PauliZ:
		return "Z"
	default:
		return fmt.Sprintf("Pauli(%d)", int(p))
	}
}

var (
	matI = qmath.Identity(2)
	matX = mustMat([][]complex128{{0, 1}, {1, 0}})
	matY = mustMat([][]complex128{{0, -1i}, {1i, 0}})
	matZ = mustMat([][]complex128{{1, 0}, {0, -1}})
)

func mustMat(rows [][]complex128) *qmath.Matrix {
	m, err := qmath.FromRows(rows)
	if err != nil {
		panic(err)
	}
	return m
}

// PauliMatrix returns the 2×2 matrix of p.
func PauliMatrix(p Pauli) (*qmath.Matrix, error) {
	switch p {
	case PauliI:
		return matI, nil
	case PauliX:
		return matX, nil
	case PauliY:
		return matY, nil
	case PauliZ:
		return matZ, nil
	default:
		return nil, fmt.Errorf("%w: pauli %d", ErrInvalidParameter, p)
	}
}

// PauliOperator embeds the given Paulis on the target qubits of an n-qubit
// register, identity on the rest. Little-endian: qubit 0 is the last tensor
// factor, so it addresses the least significant index bit.
func PauliOperator(n int, targets []int, paulis []Pauli) (*qmath.Matrix, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: register size %d", ErrInvalidParameter, n)
	}
	if len(targets) != len(paulis) {
		return nil, fmt.Errorf("%w: %d targets for %d paulis", ErrInvalidParameter, len(targets), len(paulis))
	}
	factors := make([]*qmath.Matrix, n)
	for i := range factors {
		factors[i] = matI
	}
	for i, q := range targets {
		if q < 0 || q >= n {
			return nil, fmt.Errorf("%w: target qubit %d outside register of %d", ErrInvalidParameter, q, n)
		}
		if factors[q] != matI {
			return nil, fmt.Errorf("%w: duplicate target qubit %d", ErrInvalidParameter, q)
		}
		pm, err := PauliMatrix(paulis[i])
		if err != nil {
			return nil, err
		}
		factors[q] = pm
	}
	op := factors[n-1]
	for q := n - 2; q >= 0; q-- {
		op = op.Tensor(factors[q])
	}
	return op, nil
}

// CNOT returns the n-qubit controlled-NOT permutation. The argument roles
// are reversed relative to the textbook names: the bit at position target is
// the condition, and the bit at position control is flipped when it is set.
// Callers wanting textbook semantics pass the indices swapped.
func CNOT(n, control, target int) (*qmath.Matrix, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: cnot needs at least two qubits, have %d", ErrInvalidParameter, n)
	}
	if control < 0 || control >= n || target < 0 || target >= n || control == target {
		return nil, fmt.Errorf("%w: cnot control %d, target %d on %d qubits", ErrInvalidParameter, control, target, n)
	}
	dim := 1 << n
	return qmath.FromFunc(dim, dim, func(i, j int) complex128 {
		dst := j
		if j&(1<<target) != 0 {
			dst = j ^ (1 << control)
		}
		if i == dst {
			return 1
		}
		return 0
	}), nil
}

// ExchangeGate returns the two-qubit unitary applying Y to qubit 0. Under
// conjugation it swaps the Ψ− and Φ+ Bell components, and Φ− with Ψ+.
func ExchangeGate() *qmath.Matrix {
	return matI.Tensor(matY)
}

// embedSingleQubit tensors a 2×2 operator onto one qubit of an n-qubit
// register, identity elsewhere.
func embedSingleQubit(op *qmath.Matrix, n, qubit int) *qmath.Matrix {
	full := op
	for q := qubit + 1; q < n; q++ {
		full = matI.Tensor(full)
	}
	for q := qubit - 1; q >= 0; q-- {
		full = full.Tensor(matI)
	}
	return full
}
