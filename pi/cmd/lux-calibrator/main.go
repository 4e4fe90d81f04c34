/*
DESCRIPTION
  lux-calibrator calibrates a BH1750 light sensor against a spherical
  illuminator. It fits polynomials of increasing degree to calibration
  samples, writes a report of every fit and the best degree, and saves an
  SVG plot of each fit.

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

// lux-calibrator is a program for calibrating a light sensor against a
// reference illuminator by polynomial fitting.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/lightcal/pi/calibration"
)

const (
	progName = "lux-calibrator"
	pkg      = progName + ": "
)

// Logging configuration.
const (
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logSuppress  = true
)

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s%v\n", pkg, err)
		os.Exit(2)
	}

	// Create lumberjack logger to handle logging to file.
	fileLog := &lumberjack.Logger{
		Filename:   cfg.logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(cfg.logLevel, fileLog, logSuppress)
	if cfg.badLogLevel {
		log.Error(pkg + "invalid log level was defaulted to Info")
	}

	err = run(cfg, log, os.Stdout)
	fileLog.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s%v\n", pkg, err)
		os.Exit(1)
	}
}

// run performs the calibration described by cfg, writing the report and
// plots and a short summary to w. If the search fails nothing is written.
func run(cfg config, log logging.Logger, w io.Writer) error {
	samples, err := loadSamples(cfg.dataPath)
	if err != nil {
		log.Error(pkg+"could not load samples", "path", cfg.dataPath, "error", err)
		return err
	}
	log.Info(pkg+"loaded samples", "count", len(samples), "path", cfg.dataPath)

	log.Debug(pkg+"searching models", "maxDegree", cfg.maxDegree)
	out, err := calibration.Search(samples, cfg.maxDegree)
	if err != nil {
		log.Error(pkg+"calibration failed", "error", err)
		return fmt.Errorf("calibration failed, no report written: %w", err)
	}
	for _, r := range out.Results {
		if !r.OK() {
			log.Warning(pkg+"could not fit degree", "degree", r.Degree, "error", r.Err)
			continue
		}
		log.Info(pkg+"fitted degree", "degree", r.Degree, "mse", r.MSE, "intercept", r.Model.Intercept, "coefficients", r.Model.Coefficients)
	}
	log.Info(pkg+"best degree", "degree", out.Best.Degree, "mse", out.Best.MSE)

	err = calibration.SaveReport(cfg.reportPath, cfg.title, out)
	if err != nil {
		log.Error(pkg+"could not save report", "error", err)
		return err
	}
	fmt.Fprintf(w, "Calibration report saved as %s\n", cfg.reportPath)

	paths, err := calibration.PlotFits(cfg.plotDir, samples, out, log)
	if err != nil {
		log.Error(pkg+"could not save plots", "error", err)
		return err
	}
	log.Info(pkg+"saved plots", "count", len(paths), "dir", cfg.plotDir)
	fmt.Fprintf(w, "SVG graphs saved in %s/\n", cfg.plotDir)
	fmt.Fprintf(w, "Best polynomial degree: %d with MSE: %.4f\n", out.Best.Degree, out.Best.MSE)
	return nil
}

// loadSamples returns the samples in the CSV file at path, or the built-in
// BH1750 dataset if path is empty.
func loadSamples(path string) ([]calibration.Sample, error) {
	if path == "" {
		return calibration.BH1750Samples(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open sample file: %w", err)
	}
	defer f.Close()

	samples, err := calibration.LoadSamples(f)
	if err != nil {
		return nil, fmt.Errorf("could not load samples from %s: %w", path, err)
	}
	return samples, nil
}
