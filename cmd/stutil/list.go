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
)

var listCommand = &cli.Command{
	Name:      "list",
	Usage:     "List SERPENT output files",
	ArgsUsage: "DIR...",
	Description: "List all SERPENT output files under the given directories " +
		"with their variant and number of records.",
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return fmt.Errorf("%w: missing directory", ErrFlagParse)
		}

		return withOptions(c, func(opts *serpent.Options) error {
			tbl := table.New("File", "Variant", "Records", "Warnings").WithWriter(c.App.Writer)

			var failed int
			for _, dir := range c.Args().Slice() {
				containers, errs := serpent.OpenAll(c.Context, dir, opts)
				for _, err := range errs {
					fmt.Fprintln(c.App.ErrWriter, err)
				}
				failed += len(errs)

				for _, ct := range containers {
					tbl.AddRow(ct.Path(), ct.Variant(), ct.Len(), len(ct.Warnings()))
				}
			}
			tbl.Print()

			if failed > 0 {
				return fmt.Errorf("%w: %d files could not be read", ErrStutil, failed)
			}
			return nil
		})
	},
}
