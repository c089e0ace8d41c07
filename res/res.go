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

// Package res parses SERPENT result files ("*_res.m").
//
// Result files repeat the same set of variables once per burnup step. Every
// variable is declared with the step counter and its length:
//
//	idx = 2;
//	ABS_KEFF (idx, [1: 2]) = [ 1.00254E+00 0.00043 ];
//
// Each variable becomes one time-dependent record whose rows are the values
// at each step. Most variables alternate values and relative uncertainties,
// which can be split into separate metrics.
package res

import (
	"regexp"
	"strings"

	"github.com/ianlewis/go-serpent/block"
	"github.com/ianlewis/go-serpent/naming"
	"github.com/ianlewis/go-serpent/result"
	"github.com/ianlewis/go-serpent/validate"
)

// Record metrics.
const (
	Value  = "value"
	Mean   = "mean"
	RelErr = "relerr"
)

// Options are options for parsing result files.
type Options struct {
	// SplitUncertainties adds "mean" and "relerr" metrics holding the even
	// and odd entries of variables with an even number of values.
	SplitUncertainties bool

	// ConvertNames converts variable names to mixedCase, for example
	// "INF_FLX" to "infFlx".
	ConvertNames bool

	// Variables selects variables by their SERPENT name. A nil pattern
	// selects all variables.
	Variables *regexp.Regexp
}

// DefaultOptions is the default options for a Parser.
var DefaultOptions = &Options{
	SplitUncertainties: true,
}

// Parser parses the blocks of one result file.
type Parser struct {
	file string
	opts *Options
}

// NewParser returns a Parser for the named file.
func NewParser(file string, opts *Options) *Parser {
	if opts == nil {
		opts = DefaultOptions
	}
	return &Parser{
		file: file,
		opts: opts,
	}
}

// Recognizes reports whether b holds numeric results. Text blocks such as
// TITLE are not recognized.
func (p *Parser) Recognizes(b *block.Block) bool {
	return b.Len() > 0
}

// Parse parses one block into a record. Indexed blocks give time-dependent
// fragments that are joined by the result builder.
func (p *Parser) Parse(b *block.Block) ([]*result.Record, error) {
	if p.opts.Variables != nil && !p.opts.Variables.MatchString(b.Name) {
		return nil, nil
	}

	name := b.Name
	if p.opts.ConvertNames {
		name = naming.MixedCase(name)
	}
	id := result.ID(result.CategoryResults, name+strings.TrimPrefix(b.Key, b.Name))
	src := result.Source{
		File:  p.file,
		Block: b.Key,
		Line:  b.Line,
		Raw:   b.Name,
	}

	values := b.Values()
	metrics := map[string]result.Array{}
	if b.Indexed() {
		// One row for the step this block belongs to.
		metrics[Value] = result.MustArray(values, 1, len(values))
	} else {
		a, err := result.NewArray(values, b.Shape()...)
		if err != nil {
			return nil, validate.Errorf(p.file, b.Line, b.Key, "%v", err)
		}
		metrics[Value] = a
	}
	if p.opts.SplitUncertainties && len(values)%2 == 0 {
		mean, relerr := split(values)
		if b.Indexed() {
			metrics[Mean] = result.MustArray(mean, 1, len(mean))
			metrics[RelErr] = result.MustArray(relerr, 1, len(relerr))
		} else {
			metrics[Mean] = result.MustArray(mean)
			metrics[RelErr] = result.MustArray(relerr)
		}
	}

	var units map[string]string
	if u := b.Unit(); u != "" {
		units = map[string]string{Value: u, Mean: u}
	}

	if !b.Indexed() {
		return []*result.Record{result.NewRecord(id, src, metrics, units)}, nil
	}
	r, err := result.NewTimeRecord(id, src, []int{b.Step}, nil, metrics, units)
	if err != nil {
		return nil, validate.Errorf(p.file, b.Line, b.Key, "%v", err)
	}
	return []*result.Record{r}, nil
}

// split returns the even and odd entries of v.
func split(v []float64) ([]float64, []float64) {
	n := len(v) / 2
	even := make([]float64, n)
	odd := make([]float64, n)
	for i := range n {
		even[i] = v[2*i]
		odd[i] = v[2*i+1]
	}
	return even, odd
}
