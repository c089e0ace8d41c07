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

package validate

import (
	"fmt"
	"unicode/utf8"

	"github.com/ianlewis/go-serpent/result"
)

func checkDeclaredLength(in Input) []issue {
	var out []issue
	for _, b := range in.Blocks {
		if b.Declared == 0 {
			continue
		}
		n := b.Len()
		what := "payload"
		if n == 0 && len(b.Labels) > 0 {
			// Text values declare their length in characters.
			for _, l := range b.Labels {
				n += utf8.RuneCountInString(l)
			}
			what = "text"
		}
		if n != b.Declared {
			out = append(out, issue{
				check: DeclaredLength,
				line:  b.Line,
				block: b.String(),
				rule:  fmt.Sprintf("declared length %d does not match %s length %d", b.Declared, what, n),
			})
		}
	}
	return out
}

func checkEmptyPayload(in Input) []issue {
	var out []issue
	for _, b := range in.Blocks {
		if b.Len() == 0 && len(b.Labels) == 0 {
			out = append(out, issue{
				check: EmptyPayload,
				line:  b.Line,
				block: b.String(),
				rule:  "block has no payload",
			})
		}
	}
	return out
}

func checkNameResolution(in Input) []issue {
	if in.Names == nil {
		return nil
	}
	var out []issue
	seen := map[string]bool{}
	for _, r := range in.Records {
		src := r.Source()
		if src.Raw == "" || seen[src.Raw] {
			continue
		}
		seen[src.Raw] = true
		if _, err := in.Names.Resolve(src.Raw); err != nil {
			out = append(out, issue{
				check: NameResolution,
				line:  src.Line,
				block: src.Block,
				rule:  err.Error(),
			})
		}
	}
	return out
}

func checkNameCollision(in Input) []issue {
	var out []issue
	first := map[result.Identifier]result.Source{}
	reported := map[result.Identifier]bool{}
	for _, r := range in.Records {
		src := r.Source()
		if src.Raw == "" {
			continue
		}
		prev, ok := first[r.ID()]
		if !ok {
			first[r.ID()] = src
			continue
		}
		if prev.Raw == src.Raw || reported[r.ID()] {
			continue
		}
		reported[r.ID()] = true
		out = append(out, issue{
			check: NameCollision,
			line:  src.Line,
			block: src.Block,
			rule: fmt.Sprintf("names %q and %q (block %q) both normalize to %v",
				src.Raw, prev.Raw, prev.Block, r.ID()),
		})
	}
	return out
}

func checkUnitConsistency(in Input) []issue {
	type decl struct {
		unit  string
		block string
	}
	var out []issue
	first := map[string]decl{}
	reported := map[string]bool{}
	for _, r := range in.Records {
		src := r.Source()
		for _, m := range r.Metrics() {
			u := r.Unit(m)
			if u == "" {
				continue
			}
			prev, ok := first[m]
			if !ok {
				first[m] = decl{u, src.Block}
				continue
			}
			if prev.unit == u || reported[m+"\x00"+u] {
				continue
			}
			reported[m+"\x00"+u] = true
			out = append(out, issue{
				check: UnitConsistency,
				line:  src.Line,
				block: src.Block,
				rule:  fmt.Sprintf("metric %s has unit %q but %q in block %q", m, u, prev.unit, prev.block),
			})
		}
	}
	return out
}
