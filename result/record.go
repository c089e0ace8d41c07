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
	"slices"
	"sort"
)

// Source locates the origin of a record in its file.
type Source struct {
	// File is the path or name of the parsed file.
	File string

	// Block is the key of the block the record was parsed from.
	Block string

	// Line is the line of the block declaration.
	Line int

	// Raw is the raw name that was normalized into the identifier's name.
	Raw string
}

func (s Source) String() string {
	return fmt.Sprintf("%s:%d: %s", s.File, s.Line, s.Block)
}

// Record is the immutable parsed result of one or more blocks. It maps
// metric names to arrays. Time-dependent records also carry their steps and
// every metric has one row per step along its first dimension.
type Record struct {
	id      Identifier
	src     Source
	metrics map[string]Array
	units   map[string]string

	steps []int
	times []float64
}

// NewRecord returns a record that is not time-dependent.
func NewRecord(id Identifier, src Source, metrics map[string]Array, units map[string]string) *Record {
	return &Record{
		id:      id,
		src:     src,
		metrics: cloneMap(metrics),
		units:   cloneMap(units),
	}
}

// NewTimeRecord returns a time-dependent record. steps must be strictly
// increasing. times is optional and, if given, has one entry per step. The
// first dimension of every metric must equal len(steps).
func NewTimeRecord(id Identifier, src Source, steps []int, times []float64, metrics map[string]Array, units map[string]string) (*Record, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%v: time-dependent record without steps", id)
	}
	for i := 1; i < len(steps); i++ {
		if steps[i] <= steps[i-1] {
			return nil, fmt.Errorf("%v: steps %v are not strictly increasing", id, steps)
		}
	}
	if times != nil && len(times) != len(steps) {
		return nil, fmt.Errorf("%v: %d times for %d steps", id, len(times), len(steps))
	}
	for name, a := range metrics {
		if a.Dims() == 0 || a.shape[0] != len(steps) {
			return nil, fmt.Errorf("%w: %v: metric %s has shape %v for %d steps", ErrShape, id, name, a.shape, len(steps))
		}
	}
	r := NewRecord(id, src, metrics, units)
	r.steps = slices.Clone(steps)
	r.times = slices.Clone(times)
	return r, nil
}

// ID returns the identifier of the record.
func (r *Record) ID() Identifier {
	return r.id
}

// Source returns where the record was declared.
func (r *Record) Source() Source {
	return r.src
}

// Metric returns the array stored under name.
func (r *Record) Metric(name string) (Array, bool) {
	a, ok := r.metrics[name]
	return a, ok
}

// Metrics returns the sorted metric names of the record.
func (r *Record) Metrics() []string {
	names := make([]string, 0, len(r.metrics))
	for k := range r.metrics {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Unit returns the declared unit of a metric, if any.
func (r *Record) Unit(metric string) string {
	return r.units[metric]
}

// TimeDependent reports whether the record is indexed by steps.
func (r *Record) TimeDependent() bool {
	return len(r.steps) > 0
}

// Steps returns a copy of the steps of a time-dependent record.
func (r *Record) Steps() []int {
	return slices.Clone(r.steps)
}

// Times returns a copy of the times of a time-dependent record, or nil if
// the file records none.
func (r *Record) Times() []float64 {
	return slices.Clone(r.times)
}

// Equal reports whether r and o hold the same identifier, steps, times and
// metric values.
func (r *Record) Equal(o *Record) bool {
	if r.id != o.id || !slices.Equal(r.steps, o.steps) || !slices.Equal(r.times, o.times) {
		return false
	}
	if len(r.metrics) != len(o.metrics) {
		return false
	}
	for k, a := range r.metrics {
		b, ok := o.metrics[k]
		if !ok || !a.Equal(b) {
			return false
		}
	}
	return true
}

func (r *Record) String() string {
	return fmt.Sprintf("%v%v", r.id, r.Metrics())
}

// merge returns the union of r and o, which share an identifier. It returns
// the rule violated when they cannot be merged.
func merge(r, o *Record) (*Record, string) {
	if r.TimeDependent() != o.TimeDependent() {
		return nil, "time-dependent and static records share an identifier"
	}
	if !r.TimeDependent() || slices.Equal(r.steps, o.steps) {
		return mergeMetrics(r, o)
	}
	return mergeSteps(r, o)
}

// mergeMetrics adds the metrics of o to r. A metric present in both is
// replaced only when o comes from a different raw name.
func mergeMetrics(r, o *Record) (*Record, string) {
	out := NewRecord(r.id, r.src, r.metrics, r.units)
	out.steps = r.steps
	out.times = r.times
	for k, a := range o.metrics {
		if _, ok := out.metrics[k]; ok && r.src.Raw == o.src.Raw {
			return nil, fmt.Sprintf("metric %s declared twice", k)
		}
		out.metrics[k] = a
		if u, ok := o.units[k]; ok {
			out.units[k] = u
		}
	}
	if out.times == nil {
		out.times = o.times
	}
	return out, ""
}

// mergeSteps interleaves two fragments with disjoint steps in step order.
func mergeSteps(r, o *Record) (*Record, string) {
	if !slices.Equal(r.Metrics(), o.Metrics()) {
		return nil, "time series fragments have different metrics"
	}
	if (r.times == nil) != (o.times == nil) {
		return nil, "time series fragments disagree on times"
	}

	type row struct {
		from *Record
		i    int
	}
	rows := make([]row, 0, len(r.steps)+len(o.steps))
	for i := range r.steps {
		rows = append(rows, row{r, i})
	}
	for i := range o.steps {
		rows = append(rows, row{o, i})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].from.steps[rows[i].i] < rows[j].from.steps[rows[j].i]
	})

	out := NewRecord(r.id, r.src, nil, r.units)
	for i, rw := range rows {
		step := rw.from.steps[rw.i]
		if i > 0 && step == out.steps[i-1] {
			return nil, fmt.Sprintf("step %d declared twice", step)
		}
		out.steps = append(out.steps, step)
		if rw.from.times != nil {
			out.times = append(out.times, rw.from.times[rw.i])
		}
	}

	for _, name := range r.Metrics() {
		a, b := r.metrics[name], o.metrics[name]
		if a.Dims() != b.Dims() || !slices.Equal(a.shape[1:], b.shape[1:]) {
			return nil, fmt.Sprintf("metric %s changes shape from %v to %v", name, a.shape, b.shape)
		}
		shape := slices.Clone(a.shape)
		shape[0] = len(rows)
		data := make([]float64, 0, a.Len()+b.Len())
		w := a.stride()
		for _, rw := range rows {
			src := rw.from.metrics[name].data
			data = append(data, src[rw.i*w:(rw.i+1)*w]...)
		}
		out.metrics[name] = Array{shape: shape, data: data}
	}
	return out, ""
}

func cloneMap[V any](m map[string]V) map[string]V {
	c := make(map[string]V, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
