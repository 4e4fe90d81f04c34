/*
DESCRIPTION
  config.go provides configuration for lux-calibrator. Values are read from
  an optional config file of "name value" lines, and command line flags
  override them.

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

package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/ausocean/utils/filemap"
	"github.com/ausocean/utils/logging"
	"github.com/ausocean/utils/sliceutils"

	"github.com/ausocean/lightcal/pi/calibration"
)

// Defaults.
const (
	defaultReportPath = "calibration_report.txt"
	defaultPlotDir    = "model_graphs"
	defaultMaxDegree  = 5
	defaultLogPath    = "lux-calibrator.log"
	defaultLogLevel   = logging.Info
)

// configParams specifies the parameters accepted in a config file.
// report_path: report file
// plot_dir: directory for per-degree plots
// data_path: CSV calibration samples, the built-in BH1750 dataset if empty
// max_degree: highest polynomial degree to fit
// log_path: log file
// log_level: logging level, from logging.Debug to logging.Fatal
// title: report title
var configParams = []string{"report_path", "plot_dir", "data_path", "max_degree", "log_path", "log_level", "title"}

// config holds lux-calibrator settings.
type config struct {
	reportPath string
	plotDir    string
	dataPath   string
	maxDegree  int
	logPath    string
	logLevel   int8
	title      string

	// badLogLevel is set if the requested log level was invalid and
	// defaultLogLevel was used instead.
	badLogLevel bool
}

func newConfig() config {
	return config{
		reportPath: defaultReportPath,
		plotDir:    defaultPlotDir,
		maxDegree:  defaultMaxDegree,
		logPath:    defaultLogPath,
		logLevel:   defaultLogLevel,
		title:      calibration.DefaultTitle,
	}
}

// parseConfig returns the config given by the command line args, reading the
// file named by the -config flag first if given.
func parseConfig(args []string) (config, error) {
	c := newConfig()

	fs := flag.NewFlagSet(progName, flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "Path to config file")
		reportPath = fs.String("report", c.reportPath, "Path of the calibration report")
		plotDir    = fs.String("plots", c.plotDir, "Directory for the per-degree SVG plots")
		dataPath   = fs.String("data", "", "CSV file of sensor,reference samples (default built-in BH1750 dataset)")
		maxDegree  = fs.Int("max-degree", c.maxDegree, "Highest polynomial degree to fit")
		logPath    = fs.String("log-path", c.logPath, "Path of the log file")
		logLevel   = fs.Int("log-level", int(c.logLevel), "Specifies log level")
	)
	err := fs.Parse(args)
	if err != nil {
		return c, err
	}
	if fs.NArg() != 0 {
		return c, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if *configPath != "" {
		err = c.readFile(*configPath)
		if err != nil {
			return c, fmt.Errorf("could not read config file: %w", err)
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "report":
			c.reportPath = *reportPath
		case "plots":
			c.plotDir = *plotDir
		case "data":
			c.dataPath = *dataPath
		case "max-degree":
			c.maxDegree = *maxDegree
		case "log-path":
			c.logPath = *logPath
		case "log-level":
			c.setLogLevel(*logLevel)
		}
	})

	return c, c.validate()
}

// readFile updates c with the parameters in the config file at path.
func (c *config) readFile(path string) error {
	params, err := filemap.ReadFrom(path, "\n", " ")
	if err != nil {
		return err
	}

	for name, val := range params {
		name, val = strings.TrimSpace(name), strings.TrimSpace(val)
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		if !sliceutils.ContainsString(configParams, name) {
			return fmt.Errorf("unknown config param: %s", name)
		}

		switch name {
		case "report_path":
			c.reportPath = val
		case "plot_dir":
			c.plotDir = val
		case "data_path":
			c.dataPath = val
		case "log_path":
			c.logPath = val
		case "title":
			c.title = val
		case "max_degree":
			c.maxDegree, err = strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("expected int for config param: %s", name)
			}
		case "log_level":
			l, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("expected int for config param: %s", name)
			}
			c.setLogLevel(l)
		}
	}
	return nil
}

// setLogLevel sets the log level, using defaultLogLevel if l is out of range.
func (c *config) setLogLevel(l int) {
	if l < int(logging.Debug) || l > int(logging.Fatal) {
		c.logLevel = defaultLogLevel
		c.badLogLevel = true
		return
	}
	c.logLevel = int8(l)
	c.badLogLevel = false
}

func (c *config) validate() error {
	switch {
	case c.reportPath == "":
		return errors.New("report path must not be empty")
	case c.plotDir == "":
		return errors.New("plot directory must not be empty")
	case c.logPath == "":
		return errors.New("log path must not be empty")
	case c.maxDegree < 1:
		return fmt.Errorf("max degree must be at least 1, got %d", c.maxDegree)
	}
	return nil
}
