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

// Package naming normalizes raw names read from SERPENT output files.
//
// Raw names such as material names or isotope labels do not always fit the
// composite key grammar used by result containers. A [Table] maps raw names
// to a normalized form using exact aliases and ordered rewrite rules. Tables
// are immutable and safe for concurrent use. New entries are added with
// [Table.Extend], which returns a new Table.
//
// The default table carries a known limitation: a trailing underscore and
// number is folded into the bare name, so "fuel_1" and "fuel" normalize to
// the same name. In [Lenient] mode the later record wins silently. In
// [Strict] mode the collision is rejected during validation.
package naming

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ianlewis/go-serpent/internal/folding"
)

var (
	// ErrAmbiguous indicates that rewrite rules disagree on a name.
	ErrAmbiguous = errors.New("ambiguous name")

	// ErrEmpty indicates that a name folds to the empty string.
	ErrEmpty = errors.New("empty name")

	// ErrConflict indicates that an alias would change an existing key.
	ErrConflict = errors.New("conflicting alias")
)

// Mode selects how name collisions are treated.
type Mode int

const (
	// Lenient lets colliding names overwrite each other.
	Lenient Mode = iota

	// Strict rejects colliding names.
	Strict
)

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	default:
		return "lenient"
	}
}

// ParseMode parses "strict" or "lenient".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	}
	return Lenient, fmt.Errorf("unknown naming mode %q", s)
}

// Rule rewrites names matching a pattern.
type Rule struct {
	pattern *regexp.Regexp
	replace string
}

// NewRule compiles a rewrite rule. replace may refer to submatches using the
// syntax of [regexp.Regexp.Expand].
func NewRule(pattern, replace string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("naming rule %q: %w", pattern, err)
	}
	return Rule{pattern: re, replace: replace}, nil
}

// MustRule is like NewRule but panics if the pattern does not compile.
func MustRule(pattern, replace string) Rule {
	r, err := NewRule(pattern, replace)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Rule) String() string {
	return r.pattern.String() + " -> " + r.replace
}

func (r Rule) apply(name string) (string, bool) {
	m := r.pattern.FindStringSubmatchIndex(name)
	if m == nil {
		return "", false
	}
	return string(r.pattern.ExpandString(nil, r.replace, name, m)), true
}

// SuffixRule folds a trailing "_<digits>" into the bare name.
var SuffixRule = MustRule(`^(.*[^_\d].*?)_\d+$`, "$1")

// AmbiguityError is returned when two rewrite rules produce different forms
// for the same name.
type AmbiguityError struct {
	// Raw is the name as read from the file.
	Raw string

	// Candidates are the distinct normalized forms, in rule order.
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("%v: %q resolves to %s", ErrAmbiguous, e.Raw, strings.Join(e.Candidates, ", "))
}

// Unwrap returns ErrAmbiguous.
func (e *AmbiguityError) Unwrap() error {
	return ErrAmbiguous
}

// Table is an immutable naming ambiguity table.
type Table struct {
	mode    Mode
	aliases map[string]string
	rules   []Rule
}

// New returns a table with the given aliases and rules. Aliases are matched
// against folded raw names and take precedence over rules.
func New(mode Mode, aliases map[string]string, rules ...Rule) *Table {
	t := &Table{
		mode:    mode,
		aliases: make(map[string]string, len(aliases)),
		rules:   append([]Rule(nil), rules...),
	}
	for k, v := range aliases {
		t.aliases[folding.Label(k)] = v
	}
	return t
}

// Default returns the default table for mode. It carries only SuffixRule.
func Default(mode Mode) *Table {
	return New(mode, nil, SuffixRule)
}

// Mode returns the collision mode of the table.
func (t *Table) Mode() Mode {
	return t.mode
}

// WithMode returns a copy of t using mode.
func (t *Table) WithMode(mode Mode) *Table {
	c := t.clone()
	c.mode = mode
	return c
}

// Extend returns a new table with the given aliases added. Existing aliases
// keep their target. Redefining one to a different target is an error.
func (t *Table) Extend(aliases map[string]string) (*Table, error) {
	c := t.clone()
	for k, v := range aliases {
		key := folding.Label(k)
		if old, ok := c.aliases[key]; ok && old != v {
			return nil, fmt.Errorf("%w: %q is %q, not %q", ErrConflict, key, old, v)
		}
		c.aliases[key] = v
	}
	return c, nil
}

// WithRules returns a new table with rules appended after the existing ones.
func (t *Table) WithRules(rules ...Rule) *Table {
	c := t.clone()
	c.rules = append(c.rules, rules...)
	return c
}

func (t *Table) clone() *Table {
	c := &Table{
		mode:    t.mode,
		aliases: make(map[string]string, len(t.aliases)),
		rules:   append([]Rule(nil), t.rules...),
	}
	for k, v := range t.aliases {
		c.aliases[k] = v
	}
	return c
}

// Resolve returns the normalized form of raw. The raw name is folded first,
// then matched against aliases and finally against every rule. It fails with
// an *AmbiguityError if rules produce more than one distinct form, in which
// case the form of the first matching rule is still returned.
func (t *Table) Resolve(raw string) (string, error) {
	name := folding.Label(raw)
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrEmpty, raw)
	}
	if alias, ok := t.aliases[name]; ok {
		return alias, nil
	}

	var candidates []string
	for _, r := range t.rules {
		out, ok := r.apply(name)
		if !ok {
			continue
		}
		dup := false
		for _, c := range candidates {
			if c == out {
				dup = true
				break
			}
		}
		if !dup {
			candidates = append(candidates, out)
		}
	}

	switch len(candidates) {
	case 0:
		return name, nil
	case 1:
		return candidates[0], nil
	default:
		return candidates[0], &AmbiguityError{Raw: raw, Candidates: candidates}
	}
}

// Normalize is like Resolve but ignores ambiguity. Ambiguous and empty names
// are reported by validation rather than by the parsers.
func (t *Table) Normalize(raw string) string {
	name, err := t.Resolve(raw)
	if err != nil && name == "" {
		return folding.Label(raw)
	}
	return name
}

// MixedCase converts a SERPENT_STYLE variable name to mixedCase. For
// example "INF_KINF" becomes "infKinf" and "VERSION" becomes "version".
func MixedCase(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	b.WriteString(strings.ToLower(parts[0]))
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		p = strings.ToLower(p)
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
