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

// Package det parses SERPENT detector output files ("*_det<N>.m").
//
// Every detector is written as a block named DET<name> with one row per bin
// combination and twelve columns: ten bin indexes, the tally and its relative
// error. Grids such as energy bounds or mesh coordinates follow as blocks
// named DET<name><grid>.
package det

import (
	"regexp"
	"slices"
	"strings"

	"github.com/ianlewis/go-serpent/block"
	"github.com/ianlewis/go-serpent/naming"
	"github.com/ianlewis/go-serpent/result"
	"github.com/ianlewis/go-serpent/validate"
)

// Columns is the number of columns of a detector row.
const Columns = 12

// Bins names the bin index columns of a detector row in order.
var Bins = []string{
	"value", "energy", "universe", "cell", "material",
	"lattice", "reaction", "zmesh", "ymesh", "xmesh",
}

// Grids are the suffixes of grid blocks, longest first.
var Grids = []string{"COORD", "THETA", "PHI", "E", "X", "Y", "Z", "R"}

// Record metrics.
const (
	Tallies = "tallies"
	Errors  = "errors"
	BinIdx  = "bins"
	Grid    = "grid"
)

// Options are options for parsing detector files.
type Options struct {
	// Names selects detectors by normalized name. A nil pattern selects all
	// detectors.
	Names *regexp.Regexp
}

// DefaultOptions is the default options for a Parser.
var DefaultOptions = &Options{}

// Parser parses the blocks of one detector file.
type Parser struct {
	file  string
	names *naming.Table
	opts  *Options

	// detectors maps raw detector names to their identifier names.
	detectors map[string]string
}

// NewParser returns a Parser for the named file.
func NewParser(file string, names *naming.Table, opts *Options) *Parser {
	if names == nil {
		names = naming.Default(naming.Lenient)
	}
	if opts == nil {
		opts = DefaultOptions
	}
	return &Parser{
		file:      file,
		names:     names,
		opts:      opts,
		detectors: map[string]string{},
	}
}

// Recognizes reports whether b is a detector or grid block.
func (p *Parser) Recognizes(b *block.Block) bool {
	return len(b.Name) > len("DET") && strings.HasPrefix(b.Name, "DET")
}

// Parse parses one block into records. A block is a grid if its name is the
// name of an earlier detector followed by a grid suffix.
func (p *Parser) Parse(b *block.Block) ([]*result.Record, error) {
	raw := strings.TrimPrefix(b.Name, "DET")
	for _, g := range Grids {
		base, ok := strings.CutSuffix(raw, g)
		if !ok {
			continue
		}
		if name, ok := p.detectors[base]; ok {
			return p.parseGrid(b, base, name, g)
		}
	}
	return p.parseDetector(b, raw)
}

func (p *Parser) parseDetector(b *block.Block, raw string) ([]*result.Record, error) {
	name := p.names.Normalize(raw) + suffix(b)
	if _, dup := p.detectors[raw]; !dup {
		p.detectors[raw] = name
	}
	if p.opts.Names != nil && !p.opts.Names.MatchString(name) {
		return nil, nil
	}
	if len(b.Rows) == 0 {
		return nil, validate.Errorf(p.file, b.Line, b.Key, "detector has no rows")
	}

	n := len(b.Rows)
	tallies := make([]float64, n)
	errs := make([]float64, n)
	bins := make([]float64, 0, n*len(Bins))
	for i, row := range b.Rows {
		if len(row) != Columns {
			return nil, validate.Errorf(p.file, b.Line, b.Key,
				"row %d has %d columns, want %d", i+1, len(row), Columns)
		}
		bins = append(bins, row[:len(Bins)]...)
		tallies[i] = row[len(Bins)]
		errs[i] = row[len(Bins)+1]
	}

	r := result.NewRecord(
		result.ID(result.CategoryDetector, name),
		p.source(b, raw),
		map[string]result.Array{
			Tallies: result.MustArray(tallies),
			Errors:  result.MustArray(errs),
			BinIdx:  result.MustArray(bins, n, len(Bins)),
		},
		unit(b, Tallies),
	)
	return []*result.Record{r}, nil
}

func (p *Parser) parseGrid(b *block.Block, raw, name, grid string) ([]*result.Record, error) {
	for i, row := range b.Rows {
		if len(row) != len(b.Rows[0]) {
			return nil, validate.Errorf(p.file, b.Line, b.Key,
				"grid row %d has %d columns, want %d", i+1, len(row), len(b.Rows[0]))
		}
	}
	if p.opts.Names != nil && !p.opts.Names.MatchString(name) {
		return nil, nil
	}
	a, err := result.NewArray(b.Values(), b.Shape()...)
	if err != nil {
		return nil, validate.Errorf(p.file, b.Line, b.Key, "%v", err)
	}
	r := result.NewRecord(
		result.ID(result.CategoryDetector, name, grid+suffix(b)),
		p.source(b, raw),
		map[string]result.Array{Grid: a},
		unit(b, Grid),
	)
	return []*result.Record{r}, nil
}

func (p *Parser) source(b *block.Block, raw string) result.Source {
	return result.Source{
		File:  p.file,
		Block: b.Key,
		Line:  b.Line,
		Raw:   raw,
	}
}

func suffix(b *block.Block) string {
	return strings.TrimPrefix(b.Key, b.Name)
}

func unit(b *block.Block, metric string) map[string]string {
	if u := b.Unit(); u != "" {
		return map[string]string{metric: u}
	}
	return nil
}

// binIndex returns the position of a bin name in Bins.
func binIndex(name string) int {
	return slices.Index(Bins, name)
}
