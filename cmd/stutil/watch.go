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
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	serpent "github.com/ianlewis/go-serpent"
	"github.com/ianlewis/go-serpent/result"
	"github.com/ianlewis/go-serpent/watch"
)

var watchCommand = &cli.Command{
	Name:      "watch",
	Usage:     "Parse SERPENT output files as they are written",
	ArgsUsage: "DIR",
	Description: "Watch DIR and parse each SERPENT output file after it is " +
		"created or written. Runs until interrupted.",
	Flags: []cli.Flag{
		&cli.DurationFlag{
			Name:  "debounce",
			Usage: "wait `DURATION` after the last change before parsing",
			Value: watch.DefaultDebounce,
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("%w: want exactly one DIR", ErrFlagParse)
		}

		return withOptions(c, func(opts *serpent.Options) error {
			w, err := watch.New(c.Args().First(), func(path string, ct *result.Container, err error) {
				if err != nil {
					fmt.Fprintln(c.App.ErrWriter, err)
					return
				}
				fmt.Fprintf(c.App.Writer, "%s\t%s\t%d records\t%d warnings\n",
					path, ct.Variant(), ct.Len(), len(ct.Warnings()))
			}, &watch.Options{
				Parse:    opts,
				Debounce: c.Duration("debounce"),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
			defer stop()
			return w.Run(ctx)
		})
	},
}
