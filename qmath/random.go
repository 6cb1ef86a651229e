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
	"math"
	"math/cmplx"
	"math/rand"
)

// qrEps is the column norm below which a Gram-Schmidt draw is considered
// degenerate and resampled.
const qrEps = 1e-12

// Gaussian returns a standard complex Gaussian sample: independent normal
// real and imaginary parts, scaled so the expected squared magnitude is one.
func Gaussian(rng *rand.Rand) complex128 {
	return complex(rng.NormFloat64(), rng.NormFloat64()) * complex(1/math.Sqrt2, 0)
}

// RandomUnitary returns a random k×k unitary matrix drawn from rng:
// independent complex Gaussian entries orthonormalized column by column with
// Gram-Schmidt. Columns whose residual norm collapses are resampled.
func RandomUnitary(k int, rng *rand.Rand) (*Matrix, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: unitary size %d", ErrDimensionMismatch, k)
	}
	cols := make([][]complex128, k)
	for j := range cols {
		cols[j] = make([]complex128, k)
	}
	for j := 0; j < k; j++ {
		for {
			for i := 0; i < k; i++ {
				cols[j][i] = Gaussian(rng)
			}
			for p := 0; p < j; p++ {
				var dot complex128
				for i := 0; i < k; i++ {
					dot += cmplx.Conj(cols[p][i]) * cols[j][i]
				}
				for i := 0; i < k; i++ {
					cols[j][i] -= dot * cols[p][i]
				}
			}
			var norm float64
			for i := 0; i < k; i++ {
				norm += real(cols[j][i] * cmplx.Conj(cols[j][i]))
			}
			norm = math.Sqrt(norm)
			if norm < qrEps {
				continue
			}
			inv := complex(1/norm, 0)
			for i := 0; i < k; i++ {
				cols[j][i] *= inv
			}
			break
		}
	}
	return FromFunc(k, k, func(i, j int) complex128 { return cols[j][i] }), nil
}
