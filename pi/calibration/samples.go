/*
DESCRIPTION
  samples.go provides the BH1750 calibration dataset and a loader for
  calibration samples stored as CSV.

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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// BH1750 readings (lux) taken against the spherical illuminator.
var (
	bh1750Lux = []float64{
		2.5, 3.33, 10.38, 17.5, 26.67, 33.33, 39.17, 46.67, 50.83, 60.0, 65.83, 74.17,
		85.0, 90.83, 97.5, 104.17, 110.0, 118.3, 171.33, 198.33, 239.17, 270.83, 305.83,
		340.0, 441.67, 486.67, 442.5, 430.0, 450.0, 488.0, 525.0, 567.0, 599.0, 625.0,
		659.0, 697.0, 728.0, 758.0, 789.0, 827.0, 858.0, 895.0, 927.5, 963.0, 1011.0,
		1128.0, 1140.0, 1310.0, 1382.0,
	}
	sphericalLux = []float64{
		10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110, 120, 130, 140, 150, 160, 170, 180,
		250, 300, 350, 400, 450, 500, 550, 600, 650, 700, 750, 800, 850, 900, 950, 1000,
		1050, 1100, 1150, 1200, 1250, 1300, 1350, 1400, 1450, 1500, 1550, 1600, 1700,
		1800, 1900,
	}
)

// BH1750Samples returns a copy of the BH1750 calibration dataset.
func BH1750Samples() []Sample {
	s := make([]Sample, len(bh1750Lux))
	for i := range bh1750Lux {
		s[i] = Sample{X: bh1750Lux[i], Y: sphericalLux[i]}
	}
	return s
}

// LoadSamples reads calibration samples from r. Each record holds a sensor
// reading followed by a reference reading. A first record that does not
// parse as numbers is treated as a header. Lines starting with # are ignored.
func LoadSamples(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	var samples []Sample
	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read samples: %w", err)
		}
		line, _ := cr.FieldPos(0)

		x, errX := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if errX != nil || errY != nil {
			if first {
				continue
			}
			return nil, fmt.Errorf("%w: line %d: invalid sample %q", ErrInvalidParameter, line, strings.Join(rec, ","))
		}
		samples = append(samples, Sample{X: x, Y: y})
	}
	return samples, nil
}
