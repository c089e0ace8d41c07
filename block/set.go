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

package block

import (
	"io"

	"github.com/ianlewis/go-serpent/token"
)

// Set is the ordered collection of all blocks of one file.
type Set struct {
	blocks []*Block
	byKey  map[string][]*Block
	byName map[string]*Block
}

// ExtractAll reads all blocks from r.
func ExtractAll(name string, r io.Reader, options *Options) (*Set, error) {
	s, err := token.NewScanner(name, r)
	if err != nil {
		return nil, err
	}

	set := &Set{
		byKey:  map[string][]*Block{},
		byName: map[string]*Block{},
	}
	e := NewExtractor(s, options)
	for e.Scan() {
		set.add(e.Block())
	}
	if err := e.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *Set) add(b *Block) {
	s.blocks = append(s.blocks, b)
	s.byKey[b.Key] = append(s.byKey[b.Key], b)
	if _, ok := s.byName[b.Name]; !ok {
		s.byName[b.Name] = b
	}
}

// Blocks returns all blocks in the order they were closed.
func (s *Set) Blocks() []*Block {
	return s.blocks
}

// Len returns the number of blocks.
func (s *Set) Len() int {
	return len(s.blocks)
}

// Get returns the blocks with the given key. Indexed blocks share a key across
// steps and are returned in step order.
func (s *Set) Get(key string) []*Block {
	return s.byKey[key]
}

// First returns the first block declared with the given unsuffixed name.
func (s *Set) First(name string) (*Block, bool) {
	b, ok := s.byName[name]
	return b, ok
}
