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
	"math"
	"testing"

	"github.com/qdistill/go-qdistill/qmath"
)

var allBellStates = []BellState{PhiPlus, PhiMinus, PsiPlus, PsiMinus}

// wernerToward mixes a Bell state with the maximally mixed part:
// p·|s⟩⟨s| + (1−p)·I/4.
func wernerToward(t *testing.T, s BellState, p float64) *DensityMatrix {
	t.Helper()
	pure, err := s.Density()
	if err != nil {
		t.Fatalf("Density: %v", err)
	}
	mixed, err := MaximallyMixed(2)
	if err != nil {
		t.Fatalf("MaximallyMixed: %v", err)
	}
	m, err := pure.Matrix().Scale(complex(p, 0)).Add(mixed.Matrix().Scale(complex(1-p, 0)))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	return mustDensity(t, m)
}

func TestBellRoundTrip(t *testing.T) {
	inputs := map[string]*DensityMatrix{
		"Phi+":   BellPhiPlus(),
		"Psi-":   BellPsiMinus(),
		"werner": wernerToward(t, PhiPlus, 0.6),
		"00":     mustDensity(t, mustRows(t, [][]complex128{{1, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}})),
	}
	for name, rho := range inputs {
		t.Run(name, func(t *testing.T) {
			bell, err := ToBellBasis(rho)
			if err != nil {
				t.Fatalf("ToBellBasis: %v", err)
			}
			back, err := ToComputationalBasis(bell)
			if err != nil {
				t.Fatalf("ToComputationalBasis: %v", err)
			}
			if !back.Matrix().Equals(rho.Matrix(), testTol) {
				t.Errorf("bell→comp round trip: got %v, want %v", back, rho)
			}

			comp, err := ToComputationalBasis(rho)
			if err != nil {
				t.Fatalf("ToComputationalBasis: %v", err)
			}
			again, err := ToBellBasis(comp)
			if err != nil {
				t.Fatalf("ToBellBasis: %v", err)
			}
			if !again.Matrix().Equals(rho.Matrix(), testTol) {
				t.Errorf("comp→bell round trip: got %v, want %v", again, rho)
			}
		})
	}
}

func TestFidelityPureBellStates(t *testing.T) {
	for _, target := range allBellStates {
		for _, input := range allBellStates {
			rho, err := input.Density()
			if err != nil {
				t.Fatalf("Density: %v", err)
			}
			f, err := Fidelity(rho, BasisComputational, target)
			if err != nil {
				t.Fatalf("Fidelity: %v", err)
			}
			want := 0.0
			if input == target {
				want = 1.0
			}
			if math.Abs(f-want) > testTol {
				t.Errorf("F(%v, %v): got %v, want %v", input, target, f, want)
			}
		}
	}
}

func TestFidelityMaximallyMixed(t *testing.T) {
	mixed, err := MaximallyMixed(2)
	if err != nil {
		t.Fatalf("MaximallyMixed: %v", err)
	}
	for _, target := range allBellStates {
		f, err := Fidelity(mixed, BasisComputational, target)
		if err != nil {
			t.Fatalf("Fidelity: %v", err)
		}
		if math.Abs(f-0.25) > testTol {
			t.Errorf("F(I/4, %v): got %v, want 0.25", target, f)
		}
	}
}

func TestFidelityWernerMix(t *testing.T) {
	for _, p := range []float64{0, 0.3, 0.7, 1} {
		rho := wernerToward(t, PhiPlus, p)
		f, err := Fidelity(rho, BasisComputational, PhiPlus)
		if err != nil {
			t.Fatalf("Fidelity: %v", err)
		}
		want := p + (1-p)/4
		if math.Abs(f-want) > testTol {
			t.Errorf("p=%v: got %v, want %v", p, f, want)
		}
	}
}

func TestFidelityBellBasisInput(t *testing.T) {
	// A matrix already carrying Bell labels must be read without another
	// transform.
	diag := mustDensity(t, qmath.FromDiagonal([]complex128{0.7, 0.1, 0.1, 0.1}))
	f, err := Fidelity(diag, BasisBell, PhiPlus)
	if err != nil {
		t.Fatalf("Fidelity: %v", err)
	}
	if math.Abs(f-0.7) > testTol {
		t.Errorf("bell-basis diagonal read: got %v, want 0.7", f)
	}
}

func TestFidelityInvalidArgs(t *testing.T) {
	if _, err := Fidelity(BellPhiPlus(), BasisComputational, BellState(9)); err == nil {
		t.Error("accepted an unknown bell state")
	}
	single, err := FromStateVector([]complex128{1, 0})
	if err != nil {
		t.Fatalf("FromStateVector: %v", err)
	}
	if _, err := Fidelity(single, BasisComputational, PhiPlus); err == nil {
		t.Error("accepted a single-qubit state")
	}
	if _, err := ToBellBasis(single); err == nil {
		t.Error("ToBellBasis accepted a single-qubit state")
	}
}

func TestBasisTextRoundTrip(t *testing.T) {
	for _, b := range []Basis{BasisComputational, BasisBell} {
		text, err := b.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText: %v", err)
		}
		var back Basis
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", text, err)
		}
		if back != b {
			t.Errorf("round trip: got %v, want %v", back, b)
		}
	}
	var b Basis
	if err := b.UnmarshalText([]byte("sideways")); err == nil {
		t.Error("accepted an unknown basis name")
	}
}
