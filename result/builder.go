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

// Builder collects the records of one file. It is not safe for concurrent
// use. Once frozen it accepts no more records.
type Builder struct {
	path    string
	variant string

	records map[Identifier]*Record
	order   []Identifier
	frozen  bool
}

// NewBuilder returns an empty Builder for the file at path parsed by the
// named variant.
func NewBuilder(path, variant string) *Builder {
	return &Builder{
		path:    path,
		variant: variant,
		records: map[Identifier]*Record{},
	}
}

// Add adds r to the builder. Records sharing an identifier are merged: time
// series fragments with disjoint steps are joined in step order and records
// with the same steps contribute their metrics. A metric declared twice under
// the same raw name is a *CollisionError. When the raw names differ the later
// metric replaces the earlier one.
func (b *Builder) Add(r *Record) error {
	if b.frozen {
		return ErrFrozen
	}
	prev, ok := b.records[r.id]
	if !ok {
		b.records[r.id] = r
		b.order = append(b.order, r.id)
		return nil
	}
	merged, rule := merge(prev, r)
	if rule != "" {
		return &CollisionError{
			ID:       r.id,
			Source:   r.src,
			Previous: prev.src,
			Rule:     rule,
		}
	}
	b.records[r.id] = merged
	return nil
}

// Len returns the number of distinct identifiers added so far.
func (b *Builder) Len() int {
	return len(b.records)
}

// Freeze returns a read-only Container holding the records and warnings.
func (b *Builder) Freeze(warnings []Warning) *Container {
	b.frozen = true
	return newContainer(b.path, b.variant, b.records, append([]Warning(nil), warnings...))
}
