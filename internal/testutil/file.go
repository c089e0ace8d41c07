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

// Package testutil builds SERPENT output fixtures for tests.
package testutil

import (
	"fmt"
	"strconv"
	"strings"
)

// File builds the text of a SERPENT output file.
type File struct {
	b strings.Builder
}

// NewFile returns an empty File.
func NewFile() *File {
	return &File{}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'E', -1, 64)
}

func nums(v []float64) string {
	s := make([]string, len(v))
	for i := range v {
		s[i] = num(v[i])
	}
	return strings.Join(s, " ")
}

// Comment writes a comment line.
func (f *File) Comment(text string) *File {
	fmt.Fprintf(&f.b, "%% %s\n", text)
	return f
}

// Raw writes text verbatim.
func (f *File) Raw(text string) *File {
	f.b.WriteString(text)
	return f
}

// Vector writes a one-row bracketed block.
func (f *File) Vector(name string, v ...float64) *File {
	fmt.Fprintf(&f.b, "%s = [ %s ];\n", name, nums(v))
	return f
}

// VectorUnit writes a one-row bracketed block with a unit.
func (f *File) VectorUnit(name, unit string, v ...float64) *File {
	fmt.Fprintf(&f.b, "%s = [ %s ]; %% unit: %s\n", name, nums(v), unit)
	return f
}

// Column writes a block with one value per line.
func (f *File) Column(name string, v ...float64) *File {
	fmt.Fprintf(&f.b, "%s = [\n", name)
	for _, x := range v {
		fmt.Fprintf(&f.b, "  %s\n", num(x))
	}
	f.b.WriteString("];\n")
	return f
}

// Matrix writes a multi-row block.
func (f *File) Matrix(name, unit string, rows [][]float64) *File {
	if unit != "" {
		fmt.Fprintf(&f.b, "%s = [ %% unit: %s\n", name, unit)
	} else {
		fmt.Fprintf(&f.b, "%s = [\n", name)
	}
	for _, r := range rows {
		fmt.Fprintf(&f.b, "  %s\n", nums(r))
	}
	f.b.WriteString("];\n")
	return f
}

// Labels writes a block of quoted labels, one per line, padded like SERPENT.
func (f *File) Labels(name string, labels ...string) *File {
	fmt.Fprintf(&f.b, "%s = [\n", name)
	for _, l := range labels {
		fmt.Fprintf(&f.b, "'%-12s'\n", l)
	}
	f.b.WriteString("];\n")
	return f
}

// Step writes a step counter assignment.
func (f *File) Step(n int) *File {
	fmt.Fprintf(&f.b, "\nidx = %d;\n\n", n)
	return f
}

// Indexed writes an indexed block with a declared size.
func (f *File) Indexed(name string, v ...float64) *File {
	if len(v) == 1 {
		fmt.Fprintf(&f.b, "%-20s (idx, 1) = %s ;\n", name, num(v[0]))
		return f
	}
	fmt.Fprintf(&f.b, "%-20s (idx, [1: %d]) = [ %s ];\n", name, len(v), nums(v))
	return f
}

// IndexedText writes an indexed text block.
func (f *File) IndexedText(name, text string) *File {
	fmt.Fprintf(&f.b, "%-20s (idx, [1: %d]) = '%s' ;\n", name, len(text), text)
	return f
}

// String returns the file text.
func (f *File) String() string {
	return f.b.String()
}

// Bytes returns the file text.
func (f *File) Bytes() []byte {
	return []byte(f.b.String())
}
