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

package result

import (
	"fmt"
	"iter"
	"regexp"
	"sort"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/ianlewis/go-serpent/internal/index"
)

// maxSuggestions is the number of keys suggested by a KeyNotFoundError.
const maxSuggestions = 3

// Point is one entry of a time series.
type Point struct {
	// Step is the step index.
	Step int

	// Time is the time of the step in days, or zero if the file records no
	// times.
	Time float64

	// Values holds the metric values at the step.
	Values []float64
}

// Value returns the first value of the point.
func (p Point) Value() float64 {
	if len(p.Values) == 0 {
		return 0
	}
	return p.Values[0]
}

// Container is the frozen, queryable collection of all records parsed from
// one file. It is safe for concurrent use.
type Container struct {
	path     string
	variant  string
	records  map[Identifier]*Record
	index    *index.Index[Identifier]
	warnings []Warning
}

func foldCompare(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func newContainer(path, variant string, records map[Identifier]*Record, warnings []Warning) *Container {
	ids := make([]Identifier, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	// Sort by exact key first so the case-folded index is deterministic.
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return &Container{
		path:     path,
		variant:  variant,
		records:  records,
		index:    index.NewIndex(ids, foldCompare),
		warnings: warnings,
	}
}

// Path returns the path of the parsed file.
func (c *Container) Path() string {
	return c.path
}

// Variant returns the name of the parser variant that produced c.
func (c *Container) Variant() string {
	return c.variant
}

// Len returns the number of records.
func (c *Container) Len() int {
	return len(c.records)
}

// Get returns the record with the given identifier.
func (c *Container) Get(id Identifier) (*Record, error) {
	if r, ok := c.records[id]; ok {
		return r, nil
	}
	return nil, c.notFound(id.String())
}

// Lookup returns the record for the string form of an identifier, such as
// "material:fuel:U235".
func (c *Container) Lookup(key string) (*Record, error) {
	id, err := ParseIdentifier(key)
	if err != nil {
		return nil, c.notFound(key)
	}
	return c.Get(id)
}

// GetByMetric returns the named metric of every record that defines it. The
// map is empty if no record does.
func (c *Container) GetByMetric(name string) map[Identifier]Array {
	m := map[Identifier]Array{}
	for id, r := range c.records {
		if a, ok := r.metrics[name]; ok {
			m[id] = a
		}
	}
	return m
}

// TimeSeries returns the values of a metric at each step of a time-dependent
// record, in step order.
func (c *Container) TimeSeries(id Identifier, metric string) ([]Point, error) {
	r, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	a, ok := r.metrics[metric]
	if !ok {
		return nil, &KeyNotFoundError{
			Key:         fmt.Sprintf("%v[%s]", id, metric),
			Suggestions: suggest(metric, r.Metrics()),
		}
	}
	if !r.TimeDependent() {
		return nil, &NotTimeDependentError{ID: id, Metric: metric}
	}

	points := make([]Point, len(r.steps))
	for i, step := range r.steps {
		points[i] = Point{
			Step:   step,
			Values: a.Row(i),
		}
		if r.times != nil {
			points[i].Time = r.times[i]
		}
	}
	return points, nil
}

// Keys returns all identifiers in sorted order.
func (c *Container) Keys() []Identifier {
	return append([]Identifier(nil), c.index.All()...)
}

// All iterates over all records in key order.
func (c *Container) All() iter.Seq2[Identifier, *Record] {
	return func(yield func(Identifier, *Record) bool) {
		for _, id := range c.index.All() {
			if !yield(id, c.records[id]) {
				return
			}
		}
	}
}

// Select returns the records whose key matches the regular expression
// pattern, in key order.
func (c *Container) Select(pattern string) ([]*Record, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	var out []*Record
	for _, id := range c.index.All() {
		if re.MatchString(id.String()) {
			out = append(out, c.records[id])
		}
	}
	return out, nil
}

// Warnings returns the advisory warnings raised while validating the file.
func (c *Container) Warnings() []Warning {
	return append([]Warning(nil), c.warnings...)
}

func (c *Container) notFound(key string) error {
	var keys []string
	// Case-insensitive matches and keys extending the query come first.
	for _, id := range c.index.Search(key) {
		keys = append(keys, id.String())
	}
	for _, id := range c.index.Prefix(key) {
		keys = append(keys, id.String())
	}
	all := make([]string, 0, c.index.Len())
	for _, id := range c.index.All() {
		all = append(all, id.String())
	}
	keys = append(keys, suggest(key, all)...)
	return &KeyNotFoundError{
		Key:         key,
		Suggestions: dedup(keys, maxSuggestions),
	}
}

// suggest returns the candidates nearest to key by edit distance.
func suggest(key string, candidates []string) []string {
	type scored struct {
		s string
		d int
	}
	q := strings.ToLower(key)
	limit := len(q)/2 + 2
	var list []scored
	for _, c := range candidates {
		d := smetrics.WagnerFischer(q, strings.ToLower(c), 1, 1, 2)
		if d <= limit {
			list = append(list, scored{c, d})
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].d != list[j].d {
			return list[i].d < list[j].d
		}
		return list[i].s < list[j].s
	})
	out := make([]string, 0, maxSuggestions)
	for i := 0; i < len(list) && i < maxSuggestions; i++ {
		out = append(out, list[i].s)
	}
	return out
}

func dedup(keys []string, n int) []string {
	seen := map[string]bool{}
	var out []string
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
		if len(out) == n {
			break
		}
	}
	return out
}
