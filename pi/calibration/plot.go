/*
DESCRIPTION
  plot.go provides plotting of calibration fits. Each fitted degree is drawn
  as a curve over a scatter of the calibration samples and saved as SVG.

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
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"

	"github.com/ausocean/utils/logging"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Plot labels.
const (
	xTitle = "BH1750 Measured (Lux)"
	yTitle = "Corrected Lux (Spherical Illuminator)"
)

var (
	dataColor = color.RGBA{B: 255, A: 255}
	fitColor  = color.RGBA{R: 255, A: 255}
)

// PlotFits saves one SVG plot per successfully fitted degree in out to dir,
// creating dir if it does not exist. Each plot shows samples along with the
// fitted curve. The paths of the saved plots are returned.
func PlotFits(dir string, samples []Sample, out *Outcome, log logging.Logger) ([]string, error) {
	if out == nil {
		return nil, errors.New("no outcome to plot")
	}

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("could not create plot directory: %w", err)
	}

	x := make([]float64, len(samples))
	y := make([]float64, len(samples))
	for i, s := range samples {
		x[i], y[i] = s.X, s.Y
	}

	var paths []string
	for _, r := range out.Results {
		if !r.OK() {
			log.Warning("skipping plot for failed fit", "degree", r.Degree, "error", r.Err)
			continue
		}
		if len(r.Predicted) != len(samples) {
			return paths, fmt.Errorf("degree %d has %d predictions for %d samples", r.Degree, len(r.Predicted), len(samples))
		}

		path := filepath.Join(dir, fmt.Sprintf("calibration_degree_%d.svg", r.Degree))
		err := plotToFile(
			path,
			fmt.Sprintf("Calibration Curve - Polynomial Degree %d", r.Degree),
			func(p *plot.Plot) error {
				return drawFit(p, x, y, r)
			},
		)
		if err != nil {
			return paths, fmt.Errorf("could not plot degree %d: %w", r.Degree, err)
		}
		log.Debug("saved plot", "degree", r.Degree, "path", path)
		paths = append(paths, path)
	}
	return paths, nil
}

// drawFit adds the calibration data as a scatter and the fit as a dashed line.
func drawFit(p *plot.Plot, x, y []float64, r FitResult) error {
	data, err := plotter.NewScatter(plotterXY(x, y))
	if err != nil {
		return fmt.Errorf("could not create scatter: %w", err)
	}
	data.GlyphStyle.Color = dataColor

	// Sorted by x so the curve does not double back on itself.
	xy := plotterXY(x, r.Predicted)
	sort.Slice(xy, func(i, j int) bool { return xy[i].X < xy[j].X })
	fit, err := plotter.NewLine(xy)
	if err != nil {
		return fmt.Errorf("could not create fit line: %w", err)
	}
	fit.LineStyle.Color = fitColor
	fit.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}

	p.Add(plotter.NewGrid(), data, fit)
	p.Legend.Add("Calibration Data", data)
	p.Legend.Add(fmt.Sprintf("Polynomial Degree %d", r.Degree), fit)
	p.Legend.Top = true
	p.Legend.Left = true
	return nil
}

// plotToFile creates a plot with the given title and the calibration axis
// labels using the provided draw function, and saves it to path. The image
// format is chosen from the path's extension.
func plotToFile(path, title string, draw func(*plot.Plot) error) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xTitle
	p.Y.Label.Text = yTitle

	err := draw(p)
	if err != nil {
		return fmt.Errorf("could not draw plot contents: %w", err)
	}

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("could not save plot: %w", err)
	}
	return nil
}

// plotterXY provides a plotter.XYs type value based on the given x and y data.
func plotterXY(x, y []float64) plotter.XYs {
	xy := make(plotter.XYs, len(x))
	for i := range x {
		xy[i].X = x[i]
		xy[i].Y = y[i]
	}
	return xy
}
