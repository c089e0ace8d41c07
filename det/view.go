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

package det

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/ianlewis/go-serpent/result"
)

// ErrReshape indicates that detector rows do not form a complete grid of
// bins.
var ErrReshape = errors.New("cannot reshape detector")

// View is a detector reshaped into one dimension per bin type with more than
// one bin. Dimensions are ordered from the slowest to the fastest varying bin
// as SERPENT writes them, for example [cell, energy].
type View struct {
	// Name is the detector name.
	Name string

	dims    []string
	indexes [][]int
	shape   []int
	data    map[string][]float64
}

// NewView reshapes a detector record.
func NewView(r *result.Record) (*View, error) {
	bins, ok := r.Metric(BinIdx)
	if !ok {
		return nil, fmt.Errorf("%w: %v has no %s", ErrReshape, r.ID(), BinIdx)
	}
	shape := bins.Shape()
	if len(shape) != 2 || shape[1] != len(Bins) {
		return nil, fmt.Errorf("%w: %v: bins have shape %v", ErrReshape, r.ID(), shape)
	}
	n := shape[0]
	raw := bins.Data()

	v := &View{
		Name: r.ID().Name,
		data: map[string][]float64{},
	}

	// The value column only numbers the rows and is not a dimension.
	var cols []int
	for j := len(Bins) - 1; j > binIndex("value"); j-- {
		var distinct []int
		for i := range n {
			x := int(raw[i*len(Bins)+j])
			if !slices.Contains(distinct, x) {
				distinct = append(distinct, x)
			}
		}
		if len(distinct) < 2 {
			continue
		}
		sort.Ints(distinct)
		cols = append(cols, j)
		v.dims = append(v.dims, Bins[j])
		v.indexes = append(v.indexes, distinct)
		v.shape = append(v.shape, len(distinct))
	}

	size := 1
	for _, d := range v.shape {
		size *= d
	}
	if size != n {
		return nil, fmt.Errorf("%w: %v: %d rows for bins %v of shape %v", ErrReshape, r.ID(), n, v.dims, v.shape)
	}

	offsets := make([]int, n)
	filled := make([]bool, n)
	for i := range n {
		off := 0
		for k, j := range cols {
			pos := slices.Index(v.indexes[k], int(raw[i*len(Bins)+j]))
			off = off*v.shape[k] + pos
		}
		if filled[off] {
			return nil, fmt.Errorf("%w: %v: row %d repeats a bin combination", ErrReshape, r.ID(), i+1)
		}
		filled[off] = true
		offsets[i] = off
	}

	for _, metric := range []string{Tallies, Errors} {
		a, ok := r.Metric(metric)
		if !ok || a.Len() != n {
			return nil, fmt.Errorf("%w: %v: %s does not match bins", ErrReshape, r.ID(), metric)
		}
		src := a.Data()
		dense := make([]float64, n)
		for i, off := range offsets {
			dense[off] = src[i]
		}
		v.data[metric] = dense
	}
	return v, nil
}

// Dims returns the names of the dimensions.
func (v *View) Dims() []string {
	return slices.Clone(v.dims)
}

// Shape returns the number of bins per dimension.
func (v *View) Shape() []int {
	return slices.Clone(v.shape)
}

// Indexes returns the bin indexes of a dimension as written in the file.
func (v *View) Indexes(dim string) []int {
	i := slices.Index(v.dims, dim)
	if i < 0 {
		return nil
	}
	return slices.Clone(v.indexes[i])
}

// Tallies returns the reshaped tallies.
func (v *View) Tallies() result.Array {
	a, _ := v.Slice(nil, Tallies)
	return a
}

// Errors returns the reshaped relative errors.
func (v *View) Errors() result.Array {
	a, _ := v.Slice(nil, Errors)
	return a
}

// Slice returns the tallies or errors with some dimensions fixed. fixed maps
// dimension names to zero-based positions along that dimension. The result
// keeps the unfixed dimensions in order.
func (v *View) Slice(fixed map[string]int, what string) (result.Array, error) {
	data, ok := v.data[what]
	if !ok {
		return result.Array{}, fmt.Errorf("cannot slice %q: want %s or %s", what, Tallies, Errors)
	}
	for dim, pos := range fixed {
		i := slices.Index(v.dims, dim)
		if i < 0 {
			return result.Array{}, fmt.Errorf("detector %s has no dimension %q: have %s",
				v.Name, dim, strings.Join(v.dims, ", "))
		}
		if pos < 0 || pos >= v.shape[i] {
			return result.Array{}, fmt.Errorf("position %d out of range for dimension %q of %d bins",
				pos, dim, v.shape[i])
		}
	}

	var shape []int
	for i, d := range v.dims {
		if _, ok := fixed[d]; !ok {
			shape = append(shape, v.shape[i])
		}
	}

	out := make([]float64, 0, len(data))
	idx := make([]int, len(v.dims))
	for off := range data {
		// Decode off into a multi-index.
		rem := off
		for i := len(v.dims) - 1; i >= 0; i-- {
			idx[i] = rem % v.shape[i]
			rem /= v.shape[i]
		}
		keep := true
		for i, d := range v.dims {
			if pos, ok := fixed[d]; ok && idx[i] != pos {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, data[off])
		}
	}

	if len(shape) == 0 {
		return result.Scalar(out[0]), nil
	}
	return result.NewArray(out, shape...)
}
