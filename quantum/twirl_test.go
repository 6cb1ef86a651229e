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
	"math"
	"math/rand"
	"testing"

	"github.com/qdistill/go-qdistill/qmath"
)

func TestTwirlOperatorsUnitary(t *testing.T) {
	id := qmath.Identity(4)
	for i := 0; i < TwirlSequenceCount; i++ {
		op, err := TwirlOperator(i)
		if err != nil {
			t.Fatalf("TwirlOperator(%d): %v", i, err)
		}
		prod, err := op.Mul(op.Dagger())
		if err != nil {
			t.Fatalf("sequence %d: %v", i, err)
		}
		if !prod.Equals(id, testTol) {
			t.Errorf("sequence %d is not unitary:\n%v", i, op)
		}
	}
}

func TestTwirlPreservesBellFidelity(t *testing.T) {
	ground, err := FromStateVector([]complex128{1, 0, 0, 0})
	if err != nil {
		t.Fatalf("FromStateVector: %v", err)
	}
	inputs := []*DensityMatrix{
		BellPsiMinus(),
		wernerToward(t, PsiMinus, 0.7),
		ground,
	}
	for _, rho := range inputs {
		want := make([]float64, len(allBellStates))
		for j, target := range allBellStates {
			f, err := Fidelity(rho, BasisComputational, target)
			if err != nil {
				t.Fatalf("Fidelity: %v", err)
			}
			want[j] = f
		}
		for i := 0; i < TwirlSequenceCount; i++ {
			op, err := TwirlOperator(i)
			if err != nil {
				t.Fatalf("TwirlOperator(%d): %v", i, err)
			}
			out, err := Conjugate(rho, op)
			if err != nil {
				t.Fatalf("Conjugate: %v", err)
			}
			for j, target := range allBellStates {
				got, err := Fidelity(out, BasisComputational, target)
				if err != nil {
					t.Fatalf("Fidelity: %v", err)
				}
				if math.Abs(got-want[j]) > testTol {
					t.Errorf("sequence %d changed fidelity to %v: got %v, want %v",
						i, target, got, want[j])
				}
			}
		}
	}
}

func TestTwirlAverageProjectsToBellDiagonal(t *testing.T) {
	// |00⟩⟨00| = (|Φ+⟩⟨Φ+| + |Φ+⟩⟨Φ-| + |Φ-⟩⟨Φ+| + |Φ-⟩⟨Φ-|)/2 carries
	// Bell-basis coherences that the exact average must cancel.
	ground, err := FromStateVector([]complex128{1, 0, 0, 0})
	if err != nil {
		t.Fatalf("FromStateVector: %v", err)
	}
	avg, err := TwirlAverage(ground)
	if err != nil {
		t.Fatalf("TwirlAverage: %v", err)
	}
	if err := avg.Validate(testTol); err != nil {
		t.Fatalf("averaged state invalid: %v", err)
	}
	inBell, err := ToBellBasis(avg)
	if err != nil {
		t.Fatalf("ToBellBasis: %v", err)
	}
	wantDiag := []float64{0.5, 0.5, 0, 0}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			got := inBell.At(i, j)
			want := complex(0, 0)
			if i == j {
				want = complex(wantDiag[i], 0)
			}
			if !qmath.AlmostEqual(got, want, testTol) {
				t.Errorf("bell-basis entry (%d,%d): got %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestTwirlAverageFixesWernerStates(t *testing.T) {
	rho := wernerToward(t, PhiPlus, 0.6)
	avg, err := TwirlAverage(rho)
	if err != nil {
		t.Fatalf("TwirlAverage: %v", err)
	}
	if !avg.Matrix().Equals(rho.Matrix(), testTol) {
		t.Errorf("werner state moved under its own projection:\ngot %v\nwant %v", avg, rho)
	}
}

func TestPauliTwirlDrawsVary(t *testing.T) {
	ground, err := FromStateVector([]complex128{1, 0, 0, 0})
	if err != nil {
		t.Fatalf("FromStateVector: %v", err)
	}
	rng := rand.New(rand.NewSource(11))
	seen := make(map[string]bool)
	for i := 0; i < 16; i++ {
		out, err := PauliTwirl(ground, rng)
		if err != nil {
			t.Fatalf("PauliTwirl: %v", err)
		}
		if err := out.Validate(testTol); err != nil {
			t.Fatalf("twirled state invalid: %v", err)
		}
		seen[out.String()] = true
	}
	// Bilateral X or Y flips |00⟩⟨00| to |11⟩⟨11|, so a uniform draw must
	// produce more than one output.
	if len(seen) < 2 {
		t.Errorf("16 draws produced %d distinct states, want at least 2", len(seen))
	}
}

func TestTwirlInvalidArgs(t *testing.T) {
	for _, i := range []int{-1, TwirlSequenceCount} {
		if _, err := TwirlOperator(i); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("TwirlOperator(%d): got %v, want ErrInvalidParameter", i, err)
		}
	}
	single, err := MaximallyMixed(1)
	if err != nil {
		t.Fatalf("MaximallyMixed: %v", err)
	}
	rng := rand.New(rand.NewSource(1))
	if _, err := PauliTwirl(single, rng); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("PauliTwirl on one qubit: got %v, want ErrInvalidParameter", err)
	}
	if _, err := TwirlAverage(single); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("TwirlAverage on one qubit: got %v, want ErrInvalidParameter", err)
	}
}
