/*
DESCRIPTION
  report.go provides a text report of a calibration search, listing each
  fitted polynomial and the best degree.

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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultTitle is the report title used when none is given.
const DefaultTitle = "LoRa Sensor Calibration Report"

const (
	titleRule  = "===================================="
	resultRule = "------------------------------------"
)

// WriteReport writes a text report of out to w.
func WriteReport(w io.Writer, title string, out *Outcome) error {
	if out == nil {
		return errors.New("no outcome to report")
	}
	if title == "" {
		title = DefaultTitle
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n%s\n\n", title, titleRule)
	for _, r := range out.Results {
		fmt.Fprintf(bw, "\nPolynomial Degree: %d\n", r.Degree)
		if !r.OK() {
			fmt.Fprintf(bw, "MSE: inf\nFit failed: %v\n%s\n", r.Err, resultRule)
			continue
		}
		fmt.Fprintf(bw, "MSE: %.4f\n", r.MSE)
		fmt.Fprintf(bw, "Intercept: %.4f\n", r.Model.Intercept)
		fmt.Fprintf(bw, "Coefficients: %s\n", formatCoefficients(r.Model.Coefficients))
		fmt.Fprintf(bw, "%s\n", resultRule)
	}
	fmt.Fprintf(bw, "\nBest Polynomial Degree: %d with MSE: %.4f\n", out.Best.Degree, out.Best.MSE)
	return bw.Flush()
}

// SaveReport writes a text report of out to the file at path, creating the
// parent directory if needed.
func SaveReport(path, title string, out *Outcome) error {
	if dir := filepath.Dir(path); dir != "." {
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return fmt.Errorf("could not create report directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create report file: %w", err)
	}

	err = WriteReport(f, title, out)
	if err != nil {
		f.Close()
		return fmt.Errorf("could not write report: %w", err)
	}
	return f.Close()
}

func formatCoefficients(c []float64) string {
	s := make([]string, len(c))
	for i, v := range c {
		s[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(s, ", ")
}
