// Copyright 2026 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"sigs.k8s.io/release-utils/version"

	serpent "github.com/ianlewis/go-serpent"
	"github.com/ianlewis/go-serpent/naming"
	"github.com/ianlewis/go-serpent/settings"
)

const (
	// ExitCodeSuccess is successful error code.
	ExitCodeSuccess int = iota

	// ExitCodeFlagParseError is the exit code for a flag parsing error.
	ExitCodeFlagParseError

	// ExitCodeUnknownError is the exit code for an unknown error.
	ExitCodeUnknownError

	// ExitCodeDifferent is the exit code of a comparison that found
	// differences.
	ExitCodeDifferent
)

// ErrStutil is a parent error for all command errors.
var ErrStutil = errors.New("stutil")

// ErrFlagParse is a flag parsing error.
var ErrFlagParse = fmt.Errorf("%w: parsing flags", ErrStutil)

// ErrDifferent indicates that compared files differ.
var ErrDifferent = fmt.Errorf("%w: files differ", ErrStutil)

var copyrightNames = []string{
	"2026 Ian Lewis",
}

// check checks the error and panics if not nil.
func check(err error) {
	if err != nil {
		panic(err)
	}
}

// loadSettings reads the settings file and applies the global flags.
func loadSettings(c *cli.Context) (*settings.Settings, error) {
	s, err := settings.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("log-level") {
		s.Logging.Level = c.String("log-level")
	}
	if c.Bool("strict") {
		s.Naming.Mode = naming.Strict.String()
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFlagParse, err)
	}
	return s, nil
}

// newOptions builds parse options and a logger from the settings. The
// caller must sync the logger.
func newOptions(s *settings.Settings) (*serpent.Options, error) {
	names, err := s.Names()
	if err != nil {
		return nil, err
	}
	policy, err := s.Policy()
	if err != nil {
		return nil, err
	}
	depOpts, err := s.DepletionOptions()
	if err != nil {
		return nil, err
	}
	detOpts, err := s.DetectorOptions()
	if err != nil {
		return nil, err
	}
	resOpts, err := s.ResultsOptions()
	if err != nil {
		return nil, err
	}
	level, err := s.Level()
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	return &serpent.Options{
		Logger:      logger,
		Names:       names,
		Policy:      policy,
		Concurrency: s.Concurrency,
		Depletion:   depOpts,
		Detector:    detOpts,
		Results:     resOpts,
	}, nil
}

// withOptions runs f with options built from the command line.
func withOptions(c *cli.Context, f func(*serpent.Options) error) error {
	s, err := loadSettings(c)
	if err != nil {
		return err
	}
	opts, err := newOptions(s)
	if err != nil {
		return err
	}
	defer func() {
		_ = opts.Logger.Sync()
	}()
	return f(opts)
}

func printVersion(c *cli.Context) error {
	info := version.GetVersionInfo()
	_, err := fmt.Fprintln(c.App.Writer, info.String())
	return err
}

func newSerpentApp() *cli.App {
	return &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "Inspect SERPENT output files.",
		Description: strings.Join([]string{
			"SERPENT output file utility written in Go.",
			"http://github.com/ianlewis/go-serpent",
		}, "\n"),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "read settings from `FILE`",
				Aliases: []string{"c"},
				Value:   settingsLocation(),
				EnvVars: []string{"SERPENT_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log messages at `LEVEL` (debug, info, warn, error)",
			},
			&cli.BoolFlag{
				Name:               "strict",
				Usage:              "reject names that normalize to the same identifier",
				DisableDefaultText: true,
			},

			// Special flags are shown at the end.
			&cli.BoolFlag{
				Name:               "version",
				Usage:              "print version information and exit",
				Aliases:            []string{"V"},
				DisableDefaultText: true,
			},
		},
		Copyright:       strings.Join(copyrightNames, "\n"),
		HideHelpCommand: true,
		Action: func(c *cli.Context) error {
			if c.Bool("version") {
				return printVersion(c)
			}

			check(cli.ShowAppHelp(c))
			return nil
		},
		Commands: []*cli.Command{
			listCommand,
			keysCommand,
			getCommand,
			metricCommand,
			seriesCommand,
			selectCommand,
			compareCommand,
			exportCommand,
			watchCommand,
		},
	}
}
