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
	"fmt"
	"math/cmplx"
)

const (
	// expMaxTerms caps the exponential power series.
	expMaxTerms = 20
	// expTol stops the series once the current term is this small.
	expTol = 1e-12
)

// Exp returns the matrix exponential of a, computed from the truncated power
// series Σ aᵏ/k!, stopping early once the largest element of the running
// term falls below 1e-12.
func Exp(a *Matrix) (*Matrix, error) {
	if !a.IsSquare() {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, a.rows, a.cols)
	}
	sum := Identity(a.rows)
	term := Identity(a.rows)
	for k := 1; k <= expMaxTerms; k++ {
		next, err := term.Mul(a)
		if err != nil {
			return nil, err
		}
		term = next.Scale(complex(1/float64(k), 0))
		if sum, err = sum.Add(term); err != nil {
			return nil, err
		}
		if term.maxAbs() < expTol {
			break
		}
	}
	return sum, nil
}

// Log returns the element-wise principal logarithm of a: each entry becomes
// log|z| + i·arg(z), with zero entries left at zero. This agrees with the
// matrix logarithm only on diagonal matrices; FractionalPower inherits the
// same contract.
func Log(a *Matrix) (*Matrix, error) {
	if !a.IsSquare() {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, a.rows, a.cols)
	}
	return a.Map(func(z complex128) complex128 {
		if cmplx.Abs(z) < divEps {
			return 0
		}
		return cmplx.Log(z)
	}), nil
}

// FractionalPower returns exp(s·log(u)), the fractional rotation used to
// scale a unitary's action by strength s.
func FractionalPower(u *Matrix, s float64) (*Matrix, error) {
	lg, err := Log(u)
	if err != nil {
		return nil, err
	}
	return Exp(lg.Scale(complex(s, 0)))
}
