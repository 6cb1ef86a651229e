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

package qmath

import (
	"errors"
	"fmt"
	"math/cmplx"
	"math/rand"
	"testing"
)

func TestRandomUnitaryUnitarity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for k := 1; k <= 4; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			u, err := RandomUnitary(k, rng)
			if err != nil {
				t.Fatalf("RandomUnitary: %v", err)
			}
			prod, err := u.Mul(u.Dagger())
			if err != nil {
				t.Fatalf("Mul: %v", err)
			}
			if !prod.Equals(Identity(k), testTol) {
				t.Errorf("U·U†: got %v, want identity", prod)
			}
		})
	}
}

func TestRandomUnitaryDistinctDraws(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a, err := RandomUnitary(2, rng)
	if err != nil {
		t.Fatalf("RandomUnitary: %v", err)
	}
	b, err := RandomUnitary(2, rng)
	if err != nil {
		t.Fatalf("RandomUnitary: %v", err)
	}
	if a.Equals(b, 1e-6) {
		t.Error("two successive draws are identical")
	}
}

func TestRandomUnitaryDeterministic(t *testing.T) {
	a, err := RandomUnitary(3, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("RandomUnitary: %v", err)
	}
	b, err := RandomUnitary(3, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("RandomUnitary: %v", err)
	}
	if !a.Equals(b, 1e-15) {
		t.Error("equal seeds produced different unitaries")
	}
}

func TestRandomUnitaryInvalidSize(t *testing.T) {
	if _, err := RandomUnitary(0, rand.New(rand.NewSource(1))); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestGaussianMoments(t *testing.T) {
	rng := rand.New(rand.NewSource(1234))
	const n = 20000
	var meanRe, meanIm, sqSum float64
	for i := 0; i < n; i++ {
		z := Gaussian(rng)
		meanRe += real(z)
		meanIm += imag(z)
		sqSum += real(z)*real(z) + imag(z)*imag(z)
	}
	meanRe /= n
	meanIm /= n
	sqSum /= n
	if cmplx.Abs(complex(meanRe, meanIm)) > 0.05 {
		t.Errorf("sample mean too far from zero: (%v, %v)", meanRe, meanIm)
	}
	// E|z|² = 1 by the 1/√2 normalization.
	if sqSum < 0.9 || sqSum > 1.1 {
		t.Errorf("sample E|z|²: got %v, want 1", sqSum)
	}
}
