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

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	serpent "github.com/ianlewis/go-serpent"
	"github.com/ianlewis/go-serpent/export"
)

var exportCommand = &cli.Command{
	Name:      "export",
	Usage:     "Export SERPENT output files to SQLite",
	ArgsUsage: "DB PATH...",
	Description: "Parse the SERPENT output files at the given paths and write " +
		"their records to the SQLite database DB. Directories are searched " +
		"recursively. Files already in the database are replaced.",
	Action: func(c *cli.Context) error {
		if c.NArg() < 2 {
			return fmt.Errorf("%w: want DB and at least one PATH", ErrFlagParse)
		}

		return withOptions(c, func(opts *serpent.Options) error {
			db, err := export.Open(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			defer db.Close()

			var failed, written int
			for _, path := range c.Args().Tail() {
				containers, errs := serpent.OpenAll(c.Context, path, opts)
				for _, err := range errs {
					fmt.Fprintln(c.App.ErrWriter, err)
				}
				failed += len(errs)

				for _, ct := range containers {
					if err := export.Write(c.Context, db, ct); err != nil {
						return err
					}
					opts.Logger.Debug("exported", zap.String("file", ct.Path()), zap.Int("records", ct.Len()))
					written++
				}
			}
			fmt.Fprintf(c.App.Writer, "exported %d files\n", written)

			if failed > 0 {
				return fmt.Errorf("%w: %d files could not be read", ErrStutil, failed)
			}
			return nil
		})
	},
}
