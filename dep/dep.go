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

// Package dep parses SERPENT depletion output files ("*_dep.m").
//
// A depletion file starts with header blocks listing the isotopes (NAMES),
// their ZAI codes (ZAI), the burnup steps in days (DAYS) and the burnup
// (BU). It is followed by one block per material and metric:
//
//	MAT_fuel_ADENS = [
//	  1.0E-02 9.0E-03 ...    % one row per isotope, one column per step
//	];
//	MAT_fuel_VOLUME = [ 1.0 1.0 ... ];
//
// Totals over all materials use the TOT_ prefix.
package dep

import (
	"regexp"
	"slices"
	"strings"

	"github.com/ianlewis/go-serpent/block"
	"github.com/ianlewis/go-serpent/naming"
	"github.com/ianlewis/go-serpent/result"
	"github.com/ianlewis/go-serpent/validate"
)

// Header block names.
const (
	Names  = "NAMES"
	ZAI    = "ZAI"
	Days   = "DAYS"
	Burnup = "BU"
)

// TotalMaterial is the material name of TOT_ blocks.
const TotalMaterial = "total"

// IsotopeMetrics are metrics reported per isotope as a matrix of isotopes by
// steps.
var IsotopeMetrics = []string{"ADENS", "MDENS", "A", "H", "SF", "GSRC", "ING_TOX", "INH_TOX"}

// MaterialMetrics are metrics reported per material as a vector over steps.
var MaterialMetrics = []string{"VOLUME", "BURNUP"}

var (
	metricPattern = strings.Join(append(slices.Clone(IsotopeMetrics), MaterialMetrics...), "|")
	materialRegex = regexp.MustCompile(`^MAT_(.+)_(` + metricPattern + `)$`)
	totalRegex    = regexp.MustCompile(`^TOT_(` + metricPattern + `)$`)
)

// Options are options for parsing depletion files.
type Options struct {
	// Materials selects materials by normalized name. A nil pattern selects
	// all materials.
	Materials *regexp.Regexp

	// Metrics selects metrics by their SERPENT name, such as "ADENS". An
	// empty list selects all metrics.
	Metrics []string

	// ProcessTotal includes TOT_ blocks as the material "total".
	ProcessTotal bool
}

// DefaultOptions is the default options for a Parser.
var DefaultOptions = &Options{
	ProcessTotal: true,
}

// Parser parses the blocks of one depletion file. Header blocks must precede
// material blocks. A Parser must not be reused for another file.
type Parser struct {
	file  string
	names *naming.Table
	opts  *Options

	isotopes []string
	days     []float64
	steps    []int
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
		file:  file,
		names: names,
		opts:  opts,
	}
}

// Recognizes reports whether b is a depletion block.
func (p *Parser) Recognizes(b *block.Block) bool {
	switch b.Name {
	case Names, ZAI, Days, Burnup:
		return true
	}
	return materialRegex.MatchString(b.Name) || totalRegex.MatchString(b.Name)
}

// Parse parses one block into records.
func (p *Parser) Parse(b *block.Block) ([]*result.Record, error) {
	switch b.Name {
	case Names:
		return nil, p.parseNames(b)
	case Days:
		days := b.Values()
		p.days = days
		p.steps = make([]int, len(days))
		for i := range p.steps {
			p.steps[i] = i
		}
		return p.metadata(b, "days")
	case Burnup:
		return p.metadata(b, "burnup")
	case ZAI:
		return p.metadata(b, "zai")
	}

	if m := totalRegex.FindStringSubmatch(b.Name); m != nil {
		if !p.opts.ProcessTotal {
			return nil, nil
		}
		return p.parseMaterial(b, TotalMaterial, TotalMaterial, m[1])
	}
	if m := materialRegex.FindStringSubmatch(b.Name); m != nil {
		return p.parseMaterial(b, m[1], p.names.Normalize(m[1]), m[2])
	}
	return nil, validate.Errorf(p.file, b.Line, b.Key, "not a depletion block")
}

func (p *Parser) parseNames(b *block.Block) error {
	if b.Len() > 0 {
		return validate.Errorf(p.file, b.Line, b.Key, "isotope names must be quoted labels")
	}
	p.isotopes = make([]string, len(b.Labels))
	for i, l := range b.Labels {
		p.isotopes[i] = p.names.Normalize(l)
	}
	return nil
}

func (p *Parser) metadata(b *block.Block, name string) ([]*result.Record, error) {
	a, err := result.NewArray(b.Values())
	if err != nil {
		return nil, validate.Errorf(p.file, b.Line, b.Key, "%v", err)
	}
	r := result.NewRecord(
		result.ID(result.CategoryMetadata, name+suffix(b)),
		p.source(b, ""),
		map[string]result.Array{"value": a},
		units(b, "value"),
	)
	return []*result.Record{r}, nil
}

func (p *Parser) parseMaterial(b *block.Block, raw, material, metric string) ([]*result.Record, error) {
	if p.opts.Materials != nil && !p.opts.Materials.MatchString(material) {
		return nil, nil
	}
	if len(p.opts.Metrics) > 0 && !slices.Contains(p.opts.Metrics, metric) {
		return nil, nil
	}
	if p.steps == nil {
		return nil, validate.Errorf(p.file, b.Line, b.Key, "material block before %s", Days)
	}

	material += suffix(b)
	name := naming.MixedCase(metric)
	src := p.source(b, raw)

	if slices.Contains(MaterialMetrics, metric) {
		if n := b.Len(); n != len(p.steps) {
			return nil, validate.Errorf(p.file, b.Line, b.Key,
				"%s has %d values for %d steps", metric, n, len(p.steps))
		}
		r, err := result.NewTimeRecord(
			result.ID(result.CategoryMaterial, material),
			src, p.steps, p.days,
			map[string]result.Array{name: result.MustArray(b.Values())},
			units(b, name),
		)
		if err != nil {
			return nil, p.wrap(b, err)
		}
		return []*result.Record{r}, nil
	}

	if p.isotopes == nil {
		return nil, validate.Errorf(p.file, b.Line, b.Key, "material block before %s", Names)
	}
	if len(b.Rows) != len(p.isotopes) {
		return nil, validate.Errorf(p.file, b.Line, b.Key,
			"%s has %d rows for %d isotopes", metric, len(b.Rows), len(p.isotopes))
	}

	records := make([]*result.Record, 0, len(p.isotopes))
	for i, iso := range p.isotopes {
		row := b.Rows[i]
		if len(row) != len(p.steps) {
			return nil, validate.Errorf(p.file, b.Line, b.Key,
				"%s of %s has %d values for %d steps", metric, iso, len(row), len(p.steps))
		}
		r, err := result.NewTimeRecord(
			result.ID(result.CategoryMaterial, material, iso),
			src, p.steps, p.days,
			map[string]result.Array{name: result.MustArray(row)},
			units(b, name),
		)
		if err != nil {
			return nil, p.wrap(b, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func (p *Parser) source(b *block.Block, raw string) result.Source {
	return result.Source{
		File:  p.file,
		Block: b.Key,
		Line:  b.Line,
		Raw:   raw,
	}
}

func (p *Parser) wrap(b *block.Block, err error) error {
	return validate.Errorf(p.file, b.Line, b.Key, "%v", err)
}

// suffix returns the positional suffix of a duplicate block, such as "#2".
func suffix(b *block.Block) string {
	return strings.TrimPrefix(b.Key, b.Name)
}

func units(b *block.Block, metric string) map[string]string {
	if u := b.Unit(); u != "" {
		return map[string]string{metric: u}
	}
	return nil
}
