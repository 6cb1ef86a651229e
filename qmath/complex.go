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

// Package qmath implements the dense complex linear algebra underlying the
// simulator: an immutable matrix type, Kronecker products, truncated-series
// matrix exponentials and random unitaries over an injected generator.
package qmath

import (
	"errors"
	"math/cmplx"
)

// ErrDivisionByZero is returned when a divisor's magnitude is numerically
// indistinguishable from zero.
var ErrDivisionByZero = errors.New("division by zero")

// divEps bounds the magnitude below which a complex value is treated as zero.
const divEps = 1e-12

// Div returns a/b, or ErrDivisionByZero when |b| is below 1e-12.
func Div(a, b complex128) (complex128, error) {
	if cmplx.Abs(b) < divEps {
		return 0, ErrDivisionByZero
	}
	return canon(a / b), nil
}

// AlmostEqual reports whether a and b differ by less than tol.
func AlmostEqual(a, b complex128, tol float64) bool {
	return cmplx.Abs(a-b) < tol
}

// canon rewrites negative-zero components as positive zero, so that equal
// values format and compare identically.
func canon(z complex128) complex128 {
	re, im := real(z), imag(z)
	if re == 0 {
		re = 0
	}
	if im == 0 {
		im = 0
	}
	return complex(re, im)
}
