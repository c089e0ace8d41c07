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

package serpent

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ianlewis/go-serpent/block"
	"github.com/ianlewis/go-serpent/dep"
	"github.com/ianlewis/go-serpent/det"
	"github.com/ianlewis/go-serpent/res"
	"github.com/ianlewis/go-serpent/result"
)

// ErrUnknownVariant indicates that no variant claims a file name.
var ErrUnknownVariant = errors.New("unknown file variant")

// Parser turns the blocks of one file into records. A Parser is created per
// file and may keep state between blocks.
type Parser interface {
	// Recognizes reports whether the parser handles b. Blocks that are not
	// recognized are skipped.
	Recognizes(b *block.Block) bool

	// Parse parses one recognized block.
	Parse(b *block.Block) ([]*result.Record, error)
}

// Variant is a family of SERPENT output files.
type Variant struct {
	// Name is the short name of the family, such as "dep".
	Name string

	// Pattern matches the base names of the family's files, without a
	// compression extension.
	Pattern *regexp.Regexp

	// New returns a Parser for the named file. opts is never nil.
	New func(file string, opts *Options) Parser
}

// Matches reports whether the file at path belongs to the variant.
func (v *Variant) Matches(path string) bool {
	return v.Pattern.MatchString(trimCompression(filepath.Base(path)))
}

func (v *Variant) String() string {
	return v.Name
}

// Depletion reads depletion files.
var Depletion = &Variant{
	Name:    "dep",
	Pattern: regexp.MustCompile(`_dep\.m$`),
	New: func(file string, opts *Options) Parser {
		return dep.NewParser(file, opts.names(), opts.Depletion)
	},
}

// Detector reads detector files.
var Detector = &Variant{
	Name:    "det",
	Pattern: regexp.MustCompile(`_det\d*\.m$`),
	New: func(file string, opts *Options) Parser {
		return det.NewParser(file, opts.names(), opts.Detector)
	},
}

// Results reads result files.
var Results = &Variant{
	Name:    "res",
	Pattern: regexp.MustCompile(`_res\.m$`),
	New: func(file string, opts *Options) Parser {
		return res.NewParser(file, opts.Results)
	},
}

// Registry holds the known variants.
type Registry struct {
	variants []*Variant
}

// NewRegistry returns a registry of the given variants. Variants are
// matched in order.
func NewRegistry(variants ...*Variant) (*Registry, error) {
	seen := map[string]bool{}
	for _, v := range variants {
		switch {
		case v.Name == "":
			return nil, errors.New("variant without a name")
		case v.Pattern == nil || v.New == nil:
			return nil, fmt.Errorf("variant %q is incomplete", v.Name)
		case seen[v.Name]:
			return nil, fmt.Errorf("variant %q registered twice", v.Name)
		}
		seen[v.Name] = true
	}
	return &Registry{
		variants: append([]*Variant(nil), variants...),
	}, nil
}

var defaultRegistry = func() *Registry {
	r, err := NewRegistry(Depletion, Detector, Results)
	if err != nil {
		panic(err)
	}
	return r
}()

// DefaultRegistry returns the registry of the built-in variants.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Variants returns the registered variants in order.
func (r *Registry) Variants() []*Variant {
	return append([]*Variant(nil), r.variants...)
}

// Lookup returns the variant with the given name.
func (r *Registry) Lookup(name string) (*Variant, bool) {
	for _, v := range r.variants {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// Match returns the first variant that claims the file at path.
func (r *Registry) Match(path string) (*Variant, error) {
	for _, v := range r.variants {
		if v.Matches(path) {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, path)
}

// trimCompression removes a compression extension from name.
func trimCompression(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz", ".dz":
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
