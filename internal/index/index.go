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

// Package index implements a generic sorted index over values identified by
// their string form.
package index

import (
	"fmt"
	"slices"
	"sort"
)

// Index is a generic sorted array index.
type Index[V fmt.Stringer] struct {
	// index is sorted by cmp over the string form of its values.
	index []V

	cmp func(string, string) int
}

// NewIndex creates an index from the given slice and comparison function.
// cmp(a, b) should return a negative number when a < b, a positive number when
// a > b and zero when a == b or a and b are incomparable in the sense of a
// strict weak ordering.
func NewIndex[V fmt.Stringer](index []V, cmp func(string, string) int) *Index[V] {
	sorted := make([]V, len(index))
	copy(sorted, index)
	slices.SortStableFunc(sorted, func(a, b V) int {
		return cmp(a.String(), b.String())
	})

	return &Index[V]{
		index: sorted,
		cmp:   cmp,
	}
}

// Search performs a binary search over the index and returns the values whose
// string form compares equal to query.
func (idx *Index[V]) Search(query string) []V {
	i, found := sort.Find(len(idx.index), func(i int) int {
		return idx.cmp(query, idx.index[i].String())
	})

	if !found {
		return nil
	}

	j := i
	//nolint:revive // This block increments j.
	for ; j < len(idx.index) && idx.cmp(query, idx.index[j].String()) == 0; j++ {
	}
	return idx.index[i:j]
}

// Prefix returns the values whose string form starts with prefix. The prefix
// is compared with cmp so a case-folding cmp gives case-insensitive matches.
func (idx *Index[V]) Prefix(prefix string) []V {
	if prefix == "" {
		return idx.All()
	}
	has := func(s string) bool {
		return len(s) >= len(prefix) && idx.cmp(prefix, s[:len(prefix)]) == 0
	}
	i := sort.Search(len(idx.index), func(i int) bool {
		return idx.cmp(prefix, idx.index[i].String()) <= 0
	})
	j := i
	for j < len(idx.index) && has(idx.index[j].String()) {
		j++
	}
	if i == j {
		return nil
	}
	return idx.index[i:j]
}

// All returns all values in index order.
func (idx *Index[V]) All() []V {
	return idx.index
}

// Len returns the number of values in the index.
func (idx *Index[V]) Len() int {
	return len(idx.index)
}
