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
	"testing"

	"github.com/qdistill/go-qdistill/qmath"
)

const testTol = 1e-9

func mustRows(t *testing.T, rows [][]complex128) *qmath.Matrix {
	t.Helper()
	m, err := qmath.FromRows(rows)
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}
	return m
}

func mustDensity(t *testing.T, m *qmath.Matrix) *DensityMatrix {
	t.Helper()
	dm, err := FromMatrix(m)
	if err != nil {
		t.Fatalf("FromMatrix: %v", err)
	}
	return dm
}

func TestFromStateVector(t *testing.T) {
	dm, err := FromStateVector([]complex128{1, 0})
	if err != nil {
		t.Fatalf("FromStateVector: %v", err)
	}
	want := mustRows(t, [][]complex128{{1, 0}, {0, 0}})
	if !dm.Matrix().Equals(want, testTol) {
		t.Errorf("|0⟩⟨0|: got %v, want %v", dm.Matrix(), want)
	}

	if _, err := FromStateVector([]complex128{1, 0, 0}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("length 3: got %v, want ErrInvalidParameter", err)
	}
	if _, err := FromStateVector(nil); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("empty: got %v, want ErrInvalidParameter", err)
	}
}

func TestFromMatrixShape(t *testing.T) {
	if _, err := FromMatrix(qmath.New(3, 3)); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("3x3: got %v, want ErrInvalidParameter", err)
	}
	if _, err := FromMatrix(qmath.New(2, 4)); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("2x4: got %v, want ErrInvalidParameter", err)
	}
	if _, err := FromMatrix(qmath.Identity(4).Scale(0.25)); err != nil {
		t.Errorf("4x4: unexpected error %v", err)
	}
}

func TestBellFactoriesAreValidStates(t *testing.T) {
	states := map[string]*DensityMatrix{
		"Phi+": BellPhiPlus(),
		"Phi-": BellPhiMinus(),
		"Psi+": BellPsiPlus(),
		"Psi-": BellPsiMinus(),
	}
	for name, dm := range states {
		t.Run(name, func(t *testing.T) {
			if err := dm.Validate(testTol); err != nil {
				t.Errorf("Validate: %v", err)
			}
			if dm.Qubits() != 2 {
				t.Errorf("Qubits: got %d, want 2", dm.Qubits())
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	scaled := mustDensity(t, BellPhiPlus().Matrix().Scale(3))
	normed, err := scaled.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !qmath.AlmostEqual(normed.Trace(), 1, testTol) {
		t.Errorf("trace after normalize: got %v, want 1", normed.Trace())
	}

	zero := mustDensity(t, qmath.New(2, 2))
	if _, err := zero.Normalize(); !errors.Is(err, qmath.ErrDivisionByZero) {
		t.Errorf("zero trace: got %v, want ErrDivisionByZero", err)
	}
}

func TestValidate(t *testing.T) {
	mixed, err := MaximallyMixed(2)
	if err != nil {
		t.Fatalf("MaximallyMixed: %v", err)
	}
	if err := mixed.Validate(testTol); err != nil {
		t.Errorf("maximally mixed: %v", err)
	}

	badTrace := mustDensity(t, qmath.Identity(2))
	if err := badTrace.Validate(testTol); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("trace 2: got %v, want ErrInvalidParameter", err)
	}

	notHermitian := mustDensity(t, mustRows(t, [][]complex128{
		{0.5, 1},
		{0, 0.5},
	}))
	if err := notHermitian.Validate(testTol); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("non-Hermitian: got %v, want ErrInvalidParameter", err)
	}
}

func TestMaximallyMixed(t *testing.T) {
	mixed, err := MaximallyMixed(1)
	if err != nil {
		t.Fatalf("MaximallyMixed: %v", err)
	}
	if !qmath.AlmostEqual(mixed.At(0, 0), 0.5, testTol) || !qmath.AlmostEqual(mixed.At(1, 1), 0.5, testTol) {
		t.Errorf("I/2: got %v", mixed)
	}
	if _, err := MaximallyMixed(0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("0 qubits: got %v, want ErrInvalidParameter", err)
	}
}

func TestConjugateByUnitaryKeepsValidity(t *testing.T) {
	y, err := PauliMatrix(PauliY)
	if err != nil {
		t.Fatalf("PauliMatrix: %v", err)
	}
	out, err := Conjugate(BellPsiMinus(), qmath.Identity(2).Tensor(y))
	if err != nil {
		t.Fatalf("Conjugate: %v", err)
	}
	if err := out.Validate(testTol); err != nil {
		t.Errorf("Validate after conjugation: %v", err)
	}
	if math.Abs(real(out.Trace())-1) > testTol {
		t.Errorf("trace: got %v, want 1", out.Trace())
	}
}
