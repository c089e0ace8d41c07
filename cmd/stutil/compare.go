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
	"fmt"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	serpent "github.com/ianlewis/go-serpent"
	"github.com/ianlewis/go-serpent/compare"
)

var compareCommand = &cli.Command{
	Name:      "compare",
	Usage:     "Compare two files of the same variant",
	ArgsUsage: "FILE FILE",
	Description: "Compare every metric of two files. Relative differences " +
		"are in percent of the first file's values.",
	Flags: []cli.Flag{
		&cli.Float64Flag{
			Name:  "lower",
			Usage: "accept differences up to `PERCENT` as close",
		},
		&cli.Float64Flag{
			Name:  "upper",
			Usage: "reject differences of `PERCENT` or more",
		},
		&cli.IntFlag{
			Name:  "sigma",
			Usage: "width of confidence intervals in standard deviations",
		},
		&cli.BoolFlag{
			Name:               "all",
			Usage:              "print all metrics, not only failures",
			Aliases:            []string{"a"},
			DisableDefaultText: true,
		},
	},
	Action: func(c *cli.Context) error {
		if err := args(c, 2); err != nil {
			return err
		}
		s, err := loadSettings(c)
		if err != nil {
			return err
		}
		tol := s.Compare
		if c.IsSet("lower") {
			tol.Lower = c.Float64("lower")
		}
		if c.IsSet("upper") {
			tol.Upper = c.Float64("upper")
		}
		if c.IsSet("sigma") {
			tol.Sigma = c.Int("sigma")
		}
		if err := tol.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrFlagParse, err)
		}

		opts, err := newOptions(s)
		if err != nil {
			return err
		}
		defer func() {
			_ = opts.Logger.Sync()
		}()

		a, err := serpent.Open(c.Args().Get(0), opts)
		if err != nil {
			return err
		}
		b, err := serpent.Open(c.Args().Get(1), opts)
		if err != nil {
			return err
		}
		if a.Variant() != b.Variant() {
			return fmt.Errorf("%w: cannot compare %s file with %s file", ErrStutil, a.Variant(), b.Variant())
		}

		report, err := compare.Containers(a, b, tol)
		if err != nil {
			return err
		}

		for _, id := range report.OnlyA {
			fmt.Fprintf(c.App.Writer, "only in %s: %v\n", a.Path(), id)
		}
		for _, id := range report.OnlyB {
			fmt.Fprintf(c.App.Writer, "only in %s: %v\n", b.Path(), id)
		}

		results := report.Failures()
		if c.Bool("all") {
			results = report.Results
		}
		if len(results) > 0 {
			tbl := table.New("Key", "Metric", "Status", "Max diff (%)", "Detail").WithWriter(c.App.Writer)
			for _, r := range results {
				tbl.AddRow(r.ID, r.Metric, r.Status, fmt.Sprintf("%.4g", r.MaxDiff), r.Detail)
			}
			tbl.Print()
		}

		if !report.OK() {
			return ErrDifferent
		}
		fmt.Fprintf(c.App.Writer, "%d metrics within tolerance\n", len(report.Results))
		return nil
	},
}
