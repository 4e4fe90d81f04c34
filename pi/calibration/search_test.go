/*
DESCRIPTION
  search_test.go provides testing for functionality in search.go.

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
	"errors"
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/stat"
)

// linearSamples lie exactly on y = 2x.
var linearSamples = []Sample{{1, 2}, {2, 4}, {3, 6}, {4, 8}}

// TestSearchLinear checks that a linear fit of linear data is exact.
func TestSearchLinear(t *testing.T) {
	out, err := Search(linearSamples, 1)
	if err != nil {
		t.Fatalf("could not search: %v", err)
	}
	if len(out.Results) != 1 {
		t.Fatalf("did not get expected number of results. Got: %d, Want: 1", len(out.Results))
	}

	r := out.Best
	if !r.OK() || r.Degree != 1 {
		t.Fatalf("unexpected best result. Degree: %d, error: %v", r.Degree, r.Err)
	}
	if !near(r.MSE, 0, tol) {
		t.Errorf("did not get expected MSE. Got: %v, Want: 0", r.MSE)
	}
	if !near(r.Model.Intercept, 0, tol) {
		t.Errorf("did not get expected intercept. Got: %v, Want: 0", r.Model.Intercept)
	}
	if !nearSlice(r.Model.Coefficients, []float64{2}, tol) {
		t.Errorf("did not get expected coefficients. Got: %v, Want: [2]", r.Model.Coefficients)
	}
	want := []float64{2, 4, 6, 8}
	if !nearSlice(r.Predicted, want, tol) {
		t.Errorf("did not get expected predictions. Got: %v, Want: %v", r.Predicted, want)
	}
}

// TestSearchBadParameters checks the errors returned for invalid requests.
func TestSearchBadParameters(t *testing.T) {
	nan := []Sample{{1, 2}, {2, math.NaN()}, {3, 6}}

	tests := []struct {
		name      string
		samples   []Sample
		maxDegree int
		want      error
	}{
		{name: "zero degree", samples: linearSamples, maxDegree: 0, want: ErrInvalidParameter},
		{name: "negative degree", samples: linearSamples, maxDegree: -2, want: ErrInvalidParameter},
		{name: "too few samples", samples: linearSamples, maxDegree: 4, want: ErrInsufficientData},
		{name: "largest degree", samples: linearSamples, maxDegree: math.MaxInt, want: ErrInsufficientData},
		{name: "no samples", samples: nil, maxDegree: 1, want: ErrInsufficientData},
		{name: "non-finite sample", samples: nan, maxDegree: 1, want: ErrInvalidParameter},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, err := Search(test.samples, test.maxDegree)
			if !errors.Is(err, test.want) {
				t.Errorf("did not get expected error. Got: %v, Want: %v", err, test.want)
			}
			if out != nil {
				t.Errorf("expected no outcome, got: %+v", out)
			}
		})
	}
}

// TestSearchBH1750 checks the shape of a search over the sensor dataset.
func TestSearchBH1750(t *testing.T) {
	const maxDegree = 5
	samples := BH1750Samples()

	out, err := Search(samples, maxDegree)
	if err != nil {
		t.Fatalf("could not search: %v", err)
	}
	if len(out.Results) != maxDegree {
		t.Fatalf("did not get expected number of results. Got: %d, Want: %d", len(out.Results), maxDegree)
	}

	lowest := math.Inf(1)
	for i, r := range out.Results {
		if r.Degree != i+1 {
			t.Errorf("results out of order. Got degree: %d, Want: %d", r.Degree, i+1)
		}
		if !r.OK() {
			t.Fatalf("could not fit degree %d: %v", r.Degree, r.Err)
		}
		if r.MSE < 0 {
			t.Errorf("negative MSE for degree %d: %v", r.Degree, r.MSE)
		}
		if len(r.Predicted) != len(samples) {
			t.Errorf("did not get a prediction per sample for degree %d. Got: %d, Want: %d", r.Degree, len(r.Predicted), len(samples))
		}
		if len(r.Model.Coefficients) != r.Degree {
			t.Errorf("did not get a coefficient per term for degree %d. Got: %d", r.Degree, len(r.Model.Coefficients))
		}
		lowest = math.Min(lowest, r.MSE)

		// Each degree nests the one below, so its error cannot be larger.
		if i > 0 && r.MSE > out.Results[i-1].MSE*(1+1e-9) {
			t.Errorf("MSE increased at degree %d. Got: %v, previous: %v", r.Degree, r.MSE, out.Results[i-1].MSE)
		}
	}
	if out.Best.MSE != lowest {
		t.Errorf("best is not the lowest MSE. Got: %v, Want: %v", out.Best.MSE, lowest)
	}

	// Cross-check the linear fit against gonum's simple regression.
	x := make([]float64, len(samples))
	y := make([]float64, len(samples))
	for i, s := range samples {
		x[i], y[i] = s.X, s.Y
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	lin := out.Results[0].Model
	if !near(lin.Intercept, alpha, 1e-6*math.Abs(alpha)) {
		t.Errorf("linear intercept does not match regression. Got: %v, Want: %v", lin.Intercept, alpha)
	}
	if !near(lin.Coefficients[0], beta, 1e-9*math.Abs(beta)) {
		t.Errorf("linear slope does not match regression. Got: %v, Want: %v", lin.Coefficients[0], beta)
	}
}

// TestSearchIndependentDegrees checks that a degree's fit does not depend on
// how many other degrees are searched.
func TestSearchIndependentDegrees(t *testing.T) {
	samples := BH1750Samples()
	full, err := Search(samples, 5)
	if err != nil {
		t.Fatalf("could not search: %v", err)
	}

	for d := 1; d <= 5; d++ {
		part, err := Search(samples, d)
		if err != nil {
			t.Fatalf("could not search to degree %d: %v", d, err)
		}
		if len(part.Results) != d {
			t.Fatalf("did not get expected number of results. Got: %d, Want: %d", len(part.Results), d)
		}
		for i := range part.Results {
			if !reflect.DeepEqual(full.Results[i], part.Results[i]) {
				t.Errorf("degree %d differs with max degree %d.\nGot:  %+v\nWant: %+v", i+1, d, part.Results[i], full.Results[i])
			}
		}
	}
}

// TestSearchDeterministic checks that repeated searches give identical results.
func TestSearchDeterministic(t *testing.T) {
	samples := BH1750Samples()
	first, err := Search(samples, 5)
	if err != nil {
		t.Fatalf("could not search: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Search(samples, 5)
		if err != nil {
			t.Fatalf("could not search: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("search %d differs from the first", i+1)
		}
	}
}

// TestSearchTieKeepsLowestDegree checks that when every degree fits equally
// well the lowest degree is chosen.
func TestSearchTieKeepsLowestDegree(t *testing.T) {
	samples := []Sample{{1, 5}, {2, 5}, {3, 5}, {4, 5}, {5, 5}, {6, 5}}

	out, err := Search(samples, 4)
	if err != nil {
		t.Fatalf("could not search: %v", err)
	}
	for _, r := range out.Results {
		if !r.OK() || r.MSE != 0 {
			t.Fatalf("expected exact fit for degree %d. MSE: %v, error: %v", r.Degree, r.MSE, r.Err)
		}
	}
	if out.Best.Degree != 1 {
		t.Errorf("did not get lowest degree for tied MSEs. Got: %d, Want: 1", out.Best.Degree)
	}
}

// TestSearchDuplicateX checks that degrees needing more distinct x values
// than are available fail alone without stopping the search.
func TestSearchDuplicateX(t *testing.T) {
	samples := []Sample{{1, 1.1}, {1, 0.9}, {2, 4.2}, {2, 3.8}, {3, 9.1}, {3, 8.9}}

	out, err := Search(samples, 3)
	if err != nil {
		t.Fatalf("could not search: %v", err)
	}
	if len(out.Results) != 3 {
		t.Fatalf("did not get expected number of results. Got: %d, Want: 3", len(out.Results))
	}

	for _, r := range out.Results[:2] {
		if !r.OK() {
			t.Errorf("could not fit degree %d: %v", r.Degree, r.Err)
		}
	}

	failed := out.Results[2]
	if failed.Degree != 3 {
		t.Errorf("did not get expected degree. Got: %d, Want: 3", failed.Degree)
	}
	if !errors.Is(failed.Err, ErrNumericInstability) {
		t.Errorf("expected numeric instability error, got: %v", failed.Err)
	}
	if !math.IsInf(failed.MSE, 1) {
		t.Errorf("expected infinite MSE for failed fit, got: %v", failed.MSE)
	}
	if failed.Model != nil || failed.Predicted != nil {
		t.Errorf("failed fit has a model or predictions: %+v", failed)
	}

	if out.Best.Degree != 2 {
		t.Errorf("did not get expected best degree. Got: %d, Want: 2", out.Best.Degree)
	}
}

// TestSearchNoViableModel checks that a search fails when every degree fails.
func TestSearchNoViableModel(t *testing.T) {
	samples := []Sample{{5, 1}, {5, 2}, {5, 3}, {5, 4}}
	out, err := Search(samples, 2)
	if !errors.Is(err, ErrNoViableModel) {
		t.Errorf("expected no viable model error, got: %v", err)
	}
	if !errors.Is(err, ErrNumericInstability) {
		t.Errorf("expected per-degree numeric instability in error, got: %v", err)
	}
	if out != nil {
		t.Errorf("expected no outcome, got: %+v", out)
	}
}

// TestBestResult checks that ties go to the lowest degree and failures are
// never chosen.
func TestBestResult(t *testing.T) {
	failed := FitResult{MSE: math.Inf(1), Err: errors.New("failed")}
	ok := func(mse float64) FitResult { return FitResult{MSE: mse} }

	tests := []struct {
		name    string
		results []FitResult
		want    int
	}{
		{name: "single", results: []FitResult{ok(1)}, want: 0},
		{name: "lowest wins", results: []FitResult{ok(3), ok(1), ok(2)}, want: 1},
		{name: "tie keeps first", results: []FitResult{ok(2), ok(1), ok(1), ok(1)}, want: 1},
		{name: "failures skipped", results: []FitResult{failed, ok(4), failed}, want: 1},
		{name: "failure with low mse skipped", results: []FitResult{ok(4), {MSE: 0, Err: errors.New("failed")}}, want: 0},
		{name: "all failed", results: []FitResult{failed, failed}, want: -1},
		{name: "empty", results: nil, want: -1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := bestResult(test.results)
			if got != test.want {
				t.Errorf("did not get expected best index. Got: %d, Want: %d", got, test.want)
			}
		})
	}
}

// TestPredict checks polynomial evaluation.
func TestPredict(t *testing.T) {
	m := &Model{Degree: 3, Intercept: 1, Coefficients: []float64{-2, 0.5, 3}}
	for _, x := range []float64{-2, 0, 1, 2.5} {
		want := 1 - 2*x + 0.5*x*x + 3*x*x*x
		got := m.Predict(x)
		if !near(got, want, 1e-12) {
			t.Errorf("did not get expected value at x=%v. Got: %v, Want: %v", x, got, want)
		}
	}
}
