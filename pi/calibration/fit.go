/*
DESCRIPTION
  fit.go provides polynomial feature expansion and an ordinary least squares
  solver. Together they form the two stages of a polynomial fit.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean)

  It is free software: you can redistribute it and/or modify them
  under the terms of the GNU General Public License as published by the
  Free Software Foundation, either version 3 of the License, or (at your
  option) any later version.

  It is distributed in the hope that it will be useful, but WITHOUT
  ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
  FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License
  for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt. If not, see http://www.gnu.org/licenses.
*/

package calibration

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// maxCondition is the largest condition number of the normalised design
// matrix we accept before declaring a fit numerically unstable.
const maxCondition = 1e12

// Expand returns the polynomial feature matrix for x, with one row per value
// and columns x^1 through x^degree. The degree-0 term is not included since
// LeastSquares fits the intercept separately.
func Expand(x []float64, degree int) *mat.Dense {
	if degree < 1 {
		panic(fmt.Sprintf("calibration: invalid expansion degree %d", degree))
	}
	a := mat.NewDense(len(x), degree, nil)
	for i := range x {
		for j, p := 0, x[i]; j < degree; j, p = j+1, p*x[i] {
			a.Set(i, j, p)
		}
	}
	return a
}

// LeastSquares fits y ≈ intercept + a·coef by ordinary least squares.
//
// Each column of a, and y, is centred on its mean, which takes the intercept
// out of the system, and each centred column is scaled to unit norm before QR
// factorisation. Coefficients are returned on the scale of the original
// columns.
func LeastSquares(a mat.Matrix, y []float64) (float64, []float64, error) {
	n, p := a.Dims()
	if len(y) != n {
		return 0, nil, fmt.Errorf("%w: %d targets for %d rows", ErrInvalidParameter, len(y), n)
	}
	if n <= p {
		return 0, nil, fmt.Errorf("%w: %d rows cannot determine %d parameters", ErrInsufficientData, n, p+1)
	}

	means := make([]float64, p)
	scales := make([]float64, p)
	norm := mat.NewDense(n, p, nil)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, a)
		means[j] = stat.Mean(col, nil)
		floats.AddConst(-means[j], col)
		scales[j] = floats.Norm(col, 2)
		if scales[j] == 0 || math.IsInf(scales[j], 0) || math.IsNaN(scales[j]) {
			return 0, nil, fmt.Errorf("%w: feature column %d has no usable variance", ErrNumericInstability, j)
		}
		floats.Scale(1/scales[j], col)
		norm.SetCol(j, col)
	}

	ym := stat.Mean(y, nil)
	b := make([]float64, n)
	copy(b, y)
	floats.AddConst(-ym, b)

	qr := new(mat.QR)
	qr.Factorize(norm)
	if c := qr.Cond(); c > maxCondition || math.IsNaN(c) {
		return 0, nil, fmt.Errorf("%w: condition number %g", ErrNumericInstability, c)
	}

	c := mat.NewVecDense(p, nil)
	err := qr.SolveVecTo(c, false, mat.NewVecDense(n, b))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: could not solve QR: %v", ErrNumericInstability, err)
	}

	coef := make([]float64, p)
	intercept := ym
	for j := range coef {
		coef[j] = c.AtVec(j) / scales[j]
		intercept -= coef[j] * means[j]
	}
	if !finite(intercept) || !finite(coef...) {
		return 0, nil, fmt.Errorf("%w: non-finite solution", ErrNumericInstability)
	}
	return intercept, coef, nil
}

// MSE returns the mean squared difference between predicted and actual.
func MSE(predicted, actual []float64) float64 {
	if len(predicted) != len(actual) {
		panic("calibration: length mismatch")
	}
	if len(actual) == 0 {
		return 0
	}
	r := make([]float64, len(actual))
	floats.SubTo(r, predicted, actual)
	return floats.Dot(r, r) / float64(len(r))
}

func finite(v ...float64) bool {
	for _, f := range v {
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return false
		}
	}
	return true
}
