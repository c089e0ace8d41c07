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

// Package result holds parsed SERPENT output as immutable records collected
// in a queryable container.
//
// Records are keyed by an [Identifier] whose string form is
// "category:name[:sub]", for example "material:fuel:U235". A [Builder]
// collects records while a file is parsed and is frozen into a read-only
// [Container] once parsing succeeds.
package result

import (
	"fmt"
	"strings"
)

// Identifier categories used by the parser variants.
const (
	CategoryMaterial = "material"
	CategoryMetadata = "metadata"
	CategoryDetector = "detector"
	CategoryResults  = "results"
)

// Identifier is the composite key of a record.
type Identifier struct {
	// Category is the kind of record, such as "material" or "detector".
	Category string

	// Name is the name of the material, detector or variable.
	Name string

	// Sub is an optional sub-index such as an isotope or a grid name.
	Sub string
}

// ID returns an Identifier.
func ID(category, name string, sub ...string) Identifier {
	return Identifier{
		Category: category,
		Name:     name,
		Sub:      strings.Join(sub, ":"),
	}
}

func (id Identifier) String() string {
	if id.Sub == "" {
		return id.Category + ":" + id.Name
	}
	return id.Category + ":" + id.Name + ":" + id.Sub
}

// ParseIdentifier parses the string form of an Identifier.
func ParseIdentifier(s string) (Identifier, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Identifier{}, fmt.Errorf("invalid identifier %q: want category:name[:sub]", s)
	}
	id := Identifier{Category: parts[0], Name: parts[1]}
	if len(parts) == 3 {
		if parts[2] == "" {
			return Identifier{}, fmt.Errorf("invalid identifier %q: empty sub-index", s)
		}
		id.Sub = parts[2]
	}
	return id, nil
}
