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
	"strconv"
	"strings"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	serpent "github.com/ianlewis/go-serpent"
	"github.com/ianlewis/go-serpent/result"
)

// maxValues is the number of values printed per array.
const maxValues = 6

// formatArray formats the first values of an array.
func formatArray(a result.Array) string {
	data := a.Data()
	n := min(len(data), maxValues)
	s := make([]string, n)
	for i := range n {
		s[i] = strconv.FormatFloat(data[i], 'g', 6, 64)
	}
	out := "[" + strings.Join(s, " ")
	if len(data) > n {
		out += fmt.Sprintf(" ... (%d more)", len(data)-n)
	}
	return out + "]"
}

// args checks the number of arguments.
func args(c *cli.Context, n int) error {
	if c.NArg() != n {
		return fmt.Errorf("%w: want %d arguments, got %d", ErrFlagParse, n, c.NArg())
	}
	return nil
}

// withFile opens the file named by the first argument and runs f.
func withFile(c *cli.Context, n int, f func(*result.Container) error) error {
	if err := args(c, n); err != nil {
		return err
	}
	return withOptions(c, func(opts *serpent.Options) error {
		ct, err := serpent.Open(c.Args().First(), opts)
		if err != nil {
			return err
		}
		return f(ct)
	})
}

func steps(r *result.Record) string {
	if !r.TimeDependent() {
		return "-"
	}
	return strconv.Itoa(len(r.Steps()))
}

var keysCommand = &cli.Command{
	Name:      "keys",
	Usage:     "List the keys of a file",
	ArgsUsage: "FILE",
	Action: func(c *cli.Context) error {
		return withFile(c, 1, func(ct *result.Container) error {
			tbl := table.New("Key", "Metrics", "Steps").WithWriter(c.App.Writer)
			for id, r := range ct.All() {
				tbl.AddRow(id, strings.Join(r.Metrics(), ","), steps(r))
			}
			tbl.Print()
			return nil
		})
	},
}

var getCommand = &cli.Command{
	Name:      "get",
	Usage:     "Print a record",
	ArgsUsage: "FILE KEY",
	Action: func(c *cli.Context) error {
		return withFile(c, 2, func(ct *result.Container) error {
			r, err := ct.Lookup(c.Args().Get(1))
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "Key:     %v\n", r.ID())
			fmt.Fprintf(c.App.Writer, "Source:  %v\n", r.Source())
			if r.TimeDependent() {
				fmt.Fprintf(c.App.Writer, "Steps:   %v\n", r.Steps())
			}
			fmt.Fprintln(c.App.Writer)

			tbl := table.New("Metric", "Shape", "Unit", "Values").WithWriter(c.App.Writer)
			for _, m := range r.Metrics() {
				a, _ := r.Metric(m)
				tbl.AddRow(m, a.Shape(), r.Unit(m), formatArray(a))
			}
			tbl.Print()
			return nil
		})
	},
}

var metricCommand = &cli.Command{
	Name:      "metric",
	Usage:     "Print a metric of every record that defines it",
	ArgsUsage: "FILE METRIC",
	Action: func(c *cli.Context) error {
		return withFile(c, 2, func(ct *result.Container) error {
			arrays := ct.GetByMetric(c.Args().Get(1))
			tbl := table.New("Key", "Shape", "Values").WithWriter(c.App.Writer)
			for _, id := range ct.Keys() {
				if a, ok := arrays[id]; ok {
					tbl.AddRow(id, a.Shape(), formatArray(a))
				}
			}
			tbl.Print()
			return nil
		})
	},
}

var seriesCommand = &cli.Command{
	Name:      "series",
	Usage:     "Print the time series of a metric",
	ArgsUsage: "FILE KEY METRIC",
	Action: func(c *cli.Context) error {
		return withFile(c, 3, func(ct *result.Container) error {
			id, err := result.ParseIdentifier(c.Args().Get(1))
			if err != nil {
				return err
			}
			points, err := ct.TimeSeries(id, c.Args().Get(2))
			if err != nil {
				return err
			}

			tbl := table.New("Step", "Time", "Values").WithWriter(c.App.Writer)
			for _, p := range points {
				tbl.AddRow(p.Step, p.Time, formatArray(result.MustArray(p.Values)))
			}
			tbl.Print()
			return nil
		})
	},
}

var selectCommand = &cli.Command{
	Name:      "select",
	Usage:     "List the records whose key matches a regular expression",
	ArgsUsage: "FILE REGEX",
	Action: func(c *cli.Context) error {
		return withFile(c, 2, func(ct *result.Container) error {
			records, err := ct.Select(c.Args().Get(1))
			if err != nil {
				return err
			}
			tbl := table.New("Key", "Metrics", "Steps").WithWriter(c.App.Writer)
			for _, r := range records {
				tbl.AddRow(r.ID(), strings.Join(r.Metrics(), ","), steps(r))
			}
			tbl.Print()
			return nil
		})
	},
}
