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

// Package block groups the tokens of a SERPENT output file into named blocks.
//
// A block starts with a declaration such as "NAME = [" and ends with "];" (or
// ";" for declarations without a bracket). Everything between is the block's
// payload: rows of numbers and quoted labels. A comment on the line of the
// declaration is parsed as inline metadata of the form "key: value, ...".
package block

import (
	"errors"
	"fmt"
)

// ErrUnmatched is the parent error for all structural errors.
var ErrUnmatched = errors.New("unmatched block")

// UnmatchedBlockError indicates that block delimiters are inconsistent.
type UnmatchedBlockError struct {
	// File is the name of the input.
	File string

	// Line is the line of the offending delimiter or payload.
	Line int

	// Block is the key of the innermost open block, if any.
	Block string

	// Rule describes the violated rule.
	Rule string
}

func (e *UnmatchedBlockError) Error() string {
	if e.Block == "" {
		return fmt.Sprintf("%s:%d: %v: %s", e.File, e.Line, ErrUnmatched, e.Rule)
	}
	return fmt.Sprintf("%s:%d: %v: block %q: %s", e.File, e.Line, ErrUnmatched, e.Block, e.Rule)
}

// Unwrap returns ErrUnmatched.
func (e *UnmatchedBlockError) Unwrap() error {
	return ErrUnmatched
}

// Block is a named region of an output file and its payload.
type Block struct {
	// Name is the declared name.
	Name string

	// Key is unique among the blocks of a file that share a step. It equals
	// Name for the first block declared with that name and carries a
	// positional suffix ("NAME#2", "NAME#3", ...) for later ones.
	Key string

	// Parent is the key of the enclosing block of a nested block.
	Parent string

	// Counter is the step counter named in the declaration. It is empty for
	// blocks that are not indexed by a step.
	Counter string

	// Step is the value of the step counter when the block was declared.
	Step int

	// Declared is the declared payload length, or zero if none was declared.
	Declared int

	// Bracketed is true if the block was opened with '['.
	Bracketed bool

	// Meta holds the inline metadata of the block.
	Meta map[string]string

	// Rows holds the numeric payload, one entry per source line.
	Rows [][]float64

	// Labels holds the quoted identifiers of the payload in order. Unquoted
	// identifiers are not allowed in a payload.
	Labels []string

	// Line and EndLine are the lines of the opening and closing delimiters.
	Line    int
	EndLine int
}

// Indexed reports whether the block is indexed by a step counter.
func (b *Block) Indexed() bool {
	return b.Counter != ""
}

// Len returns the number of numeric values in the payload.
func (b *Block) Len() int {
	n := 0
	for _, r := range b.Rows {
		n += len(r)
	}
	return n
}

// Values returns the numeric payload flattened in row-major order.
func (b *Block) Values() []float64 {
	v := make([]float64, 0, b.Len())
	for _, r := range b.Rows {
		v = append(v, r...)
	}
	return v
}

// Shape returns the shape of the numeric payload. Blocks with rows of equal
// width greater than one are matrices. All other blocks are vectors.
func (b *Block) Shape() []int {
	if len(b.Rows) <= 1 {
		return []int{b.Len()}
	}
	w := len(b.Rows[0])
	for _, r := range b.Rows[1:] {
		if len(r) != w {
			return []int{b.Len()}
		}
	}
	if w == 1 {
		return []int{len(b.Rows)}
	}
	return []int{len(b.Rows), w}
}

// Scalar returns the payload value if the payload is a single number.
func (b *Block) Scalar() (float64, bool) {
	if b.Len() != 1 {
		return 0, false
	}
	return b.Values()[0], true
}

// Unit returns the "unit" metadata of the block.
func (b *Block) Unit() string {
	return b.Meta["unit"]
}

func (b *Block) String() string {
	if b.Indexed() {
		return fmt.Sprintf("%s[%s=%d]", b.Key, b.Counter, b.Step)
	}
	return b.Key
}
