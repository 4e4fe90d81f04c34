/*
DESCRIPTION
  search.go provides the model search used to calibrate a light sensor. It
  fits polynomials of increasing degree to a set of calibration samples,
  scores each fit by its mean squared error and selects the best degree.

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

// Package calibration provides polynomial calibration of a light sensor
// against a reference illuminator. Search fits polynomials of degree 1 to a
// maximum degree to paired (sensor, reference) samples and selects the degree
// with the lowest mean squared error. Results can be written as a text report
// with WriteReport and plotted with PlotFits.
package calibration

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// Errors returned by Search and the fitting functions.
var (
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrInsufficientData   = errors.New("insufficient data")
	ErrNumericInstability = errors.New("numerically unstable fit")
	ErrNoViableModel      = errors.New("no viable model")
)

// Sample is a single calibration measurement: the raw sensor reading X and
// the reference reading Y.
type Sample struct {
	X, Y float64
}

// Model is a fitted polynomial. Coefficients[i] multiplies x^(i+1); the
// constant term is held in Intercept.
type Model struct {
	Degree       int
	Intercept    float64
	Coefficients []float64
}

// Predict returns the model's value at x.
func (m *Model) Predict(x float64) float64 {
	var v float64
	for i := len(m.Coefficients) - 1; i >= 0; i-- {
		v = (v + m.Coefficients[i]) * x
	}
	return v + m.Intercept
}

// FitResult holds the outcome of fitting a single degree. If the fit failed,
// Model and Predicted are nil, MSE is +Inf and Err gives the reason.
type FitResult struct {
	Degree    int
	Model     *Model
	Predicted []float64
	MSE       float64
	Err       error
}

// OK returns true if the degree was fitted successfully.
func (r *FitResult) OK() bool { return r.Err == nil }

// Outcome holds the results of a search, one per degree in ascending order,
// and the best of them.
type Outcome struct {
	Results []FitResult
	Best    FitResult
}

// Search fits polynomials of degree 1 through maxDegree to samples and returns
// the fits along with the one with the lowest MSE. Where MSEs tie, the lowest
// degree wins.
//
// A degree that cannot be fitted is recorded with an infinite MSE and does
// not stop the search. If no degree can be fitted an error wrapping
// ErrNoViableModel is returned.
func Search(samples []Sample, maxDegree int) (*Outcome, error) {
	if maxDegree < 1 {
		return nil, fmt.Errorf("%w: max degree must be at least 1, got %d", ErrInvalidParameter, maxDegree)
	}
	if len(samples) <= maxDegree {
		return nil, fmt.Errorf("%w: degree %d needs more than %d samples, got %d", ErrInsufficientData, maxDegree, maxDegree, len(samples))
	}

	x := make([]float64, len(samples))
	y := make([]float64, len(samples))
	for i, s := range samples {
		if !finite(s.X, s.Y) {
			return nil, fmt.Errorf("%w: sample %d is not finite: (%v, %v)", ErrInvalidParameter, i, s.X, s.Y)
		}
		x[i], y[i] = s.X, s.Y
	}
	distinct := countDistinct(x)

	// Each degree writes only its own slot, keeping ascending order. A failed
	// fit is recorded in its slot and never returned to the group, so one
	// degree cannot cancel the others and Wait always returns nil.
	results := make([]FitResult, maxDegree)
	var g errgroup.Group
	for d := 1; d <= maxDegree; d++ {
		g.Go(func() error {
			results[d-1] = fitDegree(x, y, d, distinct)
			return nil
		})
	}
	_ = g.Wait()

	best := bestResult(results)
	if best == -1 {
		var errs []error
		for _, r := range results {
			errs = append(errs, r.Err)
		}
		return nil, fmt.Errorf("%w: %w", ErrNoViableModel, errors.Join(errs...))
	}
	return &Outcome{Results: results, Best: results[best]}, nil
}

// bestResult returns the index of the first successful result with the
// lowest MSE, or -1 if no result succeeded.
func bestResult(results []FitResult) int {
	best := -1
	for i := range results {
		if !results[i].OK() {
			continue
		}
		if best == -1 || results[i].MSE < results[best].MSE {
			best = i
		}
	}
	return best
}

// fitDegree fits a single polynomial degree to x and y.
func fitDegree(x, y []float64, degree, distinct int) FitResult {
	fail := func(err error) FitResult {
		return FitResult{Degree: degree, MSE: math.Inf(1), Err: fmt.Errorf("degree %d: %w", degree, err)}
	}

	if distinct < degree+1 {
		return fail(fmt.Errorf("%w: %d distinct x values cannot determine a degree %d polynomial", ErrNumericInstability, distinct, degree))
	}

	intercept, coef, err := LeastSquares(Expand(x, degree), y)
	if err != nil {
		return fail(err)
	}

	m := &Model{Degree: degree, Intercept: intercept, Coefficients: coef}
	predicted := make([]float64, len(x))
	for i, v := range x {
		predicted[i] = m.Predict(v)
	}
	mse := MSE(predicted, y)
	if !finite(mse) {
		return fail(fmt.Errorf("%w: non-finite MSE", ErrNumericInstability))
	}
	return FitResult{Degree: degree, Model: m, Predicted: predicted, MSE: mse}
}

// countDistinct returns the number of distinct values in s.
func countDistinct(s []float64) int {
	seen := make(map[float64]struct{}, len(s))
	for _, v := range s {
		seen[v] = struct{}{}
	}
	return len(seen)
}
