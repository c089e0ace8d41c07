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
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrShape indicates that data does not fit a shape.
var ErrShape = errors.New("shape mismatch")

// Array is an immutable n-dimensional array of float64 values stored in
// row-major order.
type Array struct {
	shape []int
	data  []float64
}

// NewArray returns an array of the given shape backed by a copy of data. A
// missing shape means a vector of len(data).
func NewArray(data []float64, shape ...int) (Array, error) {
	if len(shape) == 0 {
		shape = []int{len(data)}
	}
	n := 1
	for _, d := range shape {
		if d < 0 {
			return Array{}, fmt.Errorf("%w: negative dimension in %v", ErrShape, shape)
		}
		n *= d
	}
	if n != len(data) {
		return Array{}, fmt.Errorf("%w: %d values do not fit shape %v", ErrShape, len(data), shape)
	}
	return Array{
		shape: slices.Clone(shape),
		data:  slices.Clone(data),
	}, nil
}

// MustArray is like NewArray but panics on error.
func MustArray(data []float64, shape ...int) Array {
	a, err := NewArray(data, shape...)
	if err != nil {
		panic(err)
	}
	return a
}

// Scalar returns a one-element array.
func Scalar(v float64) Array {
	return Array{shape: []int{1}, data: []float64{v}}
}

// Shape returns a copy of the shape.
func (a Array) Shape() []int {
	return slices.Clone(a.shape)
}

// Dims returns the number of dimensions.
func (a Array) Dims() int {
	return len(a.shape)
}

// Len returns the number of values.
func (a Array) Len() int {
	return len(a.data)
}

// Data returns a copy of the values in row-major order.
func (a Array) Data() []float64 {
	return slices.Clone(a.data)
}

// At returns the value at the given index.
func (a Array) At(idx ...int) (float64, error) {
	if len(idx) != len(a.shape) {
		return 0, fmt.Errorf("%w: %d indexes for shape %v", ErrShape, len(idx), a.shape)
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= a.shape[i] {
			return 0, fmt.Errorf("index %v out of range for shape %v", idx, a.shape)
		}
		off = off*a.shape[i] + v
	}
	return a.data[off], nil
}

// Row returns a copy of the values at index i of the first dimension.
func (a Array) Row(i int) []float64 {
	if len(a.shape) == 0 || i < 0 || i >= a.shape[0] {
		return nil
	}
	w := a.stride()
	return slices.Clone(a.data[i*w : (i+1)*w])
}

// stride returns the number of values per index of the first dimension.
func (a Array) stride() int {
	w := 1
	for _, d := range a.shape[1:] {
		w *= d
	}
	return w
}

// Equal reports whether a and b have the same shape and values.
func (a Array) Equal(b Array) bool {
	return slices.Equal(a.shape, b.shape) && slices.Equal(a.data, b.data)
}

func (a Array) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v", a.shape)
	if len(a.data) <= 6 {
		fmt.Fprintf(&b, "%v", a.data)
		return b.String()
	}
	fmt.Fprintf(&b, "[%v %v %v ... %v]", a.data[0], a.data[1], a.data[2], a.data[len(a.data)-1])
	return b.String()
}
