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
	"errors"
	"fmt"
	"testing"

	"github.com/qdistill/go-qdistill/qmath"
)

func TestPauliMatricesSquareToIdentity(t *testing.T) {
	for _, p := range []Pauli{PauliI, PauliX, PauliY, PauliZ} {
		m, err := PauliMatrix(p)
		if err != nil {
			t.Fatalf("PauliMatrix(%v): %v", p, err)
		}
		sq, err := m.Mul(m)
		if err != nil {
			t.Fatalf("Mul: %v", err)
		}
		if !sq.Equals(qmath.Identity(2), testTol) {
			t.Errorf("%v² != I: %v", p, sq)
		}
	}
	if _, err := PauliMatrix(Pauli(7)); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("unknown pauli: got %v, want ErrInvalidParameter", err)
	}
}

func TestPauliOperatorLittleEndian(t *testing.T) {
	x, _ := PauliMatrix(PauliX)
	id := qmath.Identity(2)

	onQubit0, err := PauliOperator(2, []int{0}, []Pauli{PauliX})
	if err != nil {
		t.Fatalf("PauliOperator: %v", err)
	}
	if want := id.Tensor(x); !onQubit0.Equals(want, testTol) {
		t.Errorf("X on qubit 0: got %v, want I⊗X = %v", onQubit0, want)
	}

	onQubit1, err := PauliOperator(2, []int{1}, []Pauli{PauliX})
	if err != nil {
		t.Fatalf("PauliOperator: %v", err)
	}
	if want := x.Tensor(id); !onQubit1.Equals(want, testTol) {
		t.Errorf("X on qubit 1: got %v, want X⊗I = %v", onQubit1, want)
	}
}

func TestPauliOperatorUnitary(t *testing.T) {
	cases := []struct {
		n       int
		targets []int
		paulis  []Pauli
	}{
		{1, []int{0}, []Pauli{PauliY}},
		{2, []int{0, 1}, []Pauli{PauliX, PauliX}},
		{3, []int{0, 2}, []Pauli{PauliY, PauliZ}},
		{4, []int{1, 3}, []Pauli{PauliZ, PauliY}},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("n=%d", tc.n), func(t *testing.T) {
			op, err := PauliOperator(tc.n, tc.targets, tc.paulis)
			if err != nil {
				t.Fatalf("PauliOperator: %v", err)
			}
			prod, err := op.Mul(op.Dagger())
			if err != nil {
				t.Fatalf("Mul: %v", err)
			}
			if !prod.Equals(qmath.Identity(1<<tc.n), testTol) {
				t.Errorf("U·U† != I for %v on %v", tc.paulis, tc.targets)
			}
		})
	}
}

func TestPauliOperatorInvalidArgs(t *testing.T) {
	cases := []struct {
		name    string
		n       int
		targets []int
		paulis  []Pauli
	}{
		{"size zero", 0, nil, nil},
		{"length mismatch", 2, []int{0}, []Pauli{PauliX, PauliY}},
		{"out of range", 2, []int{2}, []Pauli{PauliX}},
		{"negative", 2, []int{-1}, []Pauli{PauliX}},
		{"duplicate", 2, []int{0, 0}, []Pauli{PauliX, PauliY}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := PauliOperator(tc.n, tc.targets, tc.paulis); !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("got %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestCNOTTruthTable(t *testing.T) {
	// CNOT(2, 0, 1) conditions on the bit at position 1 and flips the bit
	// at position 0, so |10⟩ (index 2) and |11⟩ (index 3) swap.
	got, err := CNOT(2, 0, 1)
	if err != nil {
		t.Fatalf("CNOT: %v", err)
	}
	want := mustRows(t, [][]complex128{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
	})
	if !got.Equals(want, testTol) {
		t.Errorf("CNOT(2,0,1): got %v, want %v", got, want)
	}

	// Swapped arguments condition on bit 0 instead: |01⟩ (index 1) and
	// |11⟩ (index 3) swap.
	got, err = CNOT(2, 1, 0)
	if err != nil {
		t.Fatalf("CNOT: %v", err)
	}
	want = mustRows(t, [][]complex128{
		{1, 0, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
		{0, 1, 0, 0},
	})
	if !got.Equals(want, testTol) {
		t.Errorf("CNOT(2,1,0): got %v, want %v", got, want)
	}
}

func TestCNOTUnitary(t *testing.T) {
	for _, tc := range []struct{ n, c, tgt int }{
		{2, 0, 1},
		{3, 2, 0},
		{4, 0, 2},
		{4, 1, 3},
	} {
		op, err := CNOT(tc.n, tc.c, tc.tgt)
		if err != nil {
			t.Fatalf("CNOT(%d,%d,%d): %v", tc.n, tc.c, tc.tgt, err)
		}
		prod, err := op.Mul(op.Dagger())
		if err != nil {
			t.Fatalf("Mul: %v", err)
		}
		if !prod.Equals(qmath.Identity(1<<tc.n), testTol) {
			t.Errorf("CNOT(%d,%d,%d) not unitary", tc.n, tc.c, tc.tgt)
		}
	}
}

func TestCNOTInvalidArgs(t *testing.T) {
	if _, err := CNOT(1, 0, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("n=1: got %v, want ErrInvalidParameter", err)
	}
	if _, err := CNOT(2, 1, 1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("control==target: got %v, want ErrInvalidParameter", err)
	}
	if _, err := CNOT(2, 0, 5); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("target out of range: got %v, want ErrInvalidParameter", err)
	}
}

func TestExchangeGateSwapsBellComponents(t *testing.T) {
	e := ExchangeGate()
	cases := []struct {
		name     string
		in, want *DensityMatrix
	}{
		{"Psi- to Phi+", BellPsiMinus(), BellPhiPlus()},
		{"Phi+ to Psi-", BellPhiPlus(), BellPsiMinus()},
		{"Phi- to Psi+", BellPhiMinus(), BellPsiPlus()},
		{"Psi+ to Phi-", BellPsiPlus(), BellPhiMinus()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Conjugate(tc.in, e)
			if err != nil {
				t.Fatalf("Conjugate: %v", err)
			}
			if !got.Matrix().Equals(tc.want.Matrix(), testTol) {
				t.Errorf("exchange: got %v, want %v", got, tc.want)
			}
		})
	}

	// Applying the exchange twice restores the input.
	twice, err := Conjugate(BellPsiMinus(), e)
	if err != nil {
		t.Fatalf("Conjugate: %v", err)
	}
	if twice, err = Conjugate(twice, e); err != nil {
		t.Fatalf("Conjugate: %v", err)
	}
	if !twice.Matrix().Equals(BellPsiMinus().Matrix(), testTol) {
		t.Error("exchange applied twice is not the identity")
	}
}
