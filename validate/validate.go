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

// Package validate runs post-parse checks over the blocks and records of one
// file.
//
// Every check has its own severity, set by a [Policy]. Fatal issues abort
// parsing with a *ValidationError. Advisory issues become warnings attached
// to the result container. Ignored issues are dropped.
package validate

import (
	"errors"
	"fmt"
	"maps"

	"github.com/ianlewis/go-serpent/block"
	"github.com/ianlewis/go-serpent/naming"
	"github.com/ianlewis/go-serpent/result"
)

// Check names.
const (
	// DeclaredLength checks that a declared array length matches the payload.
	DeclaredLength = "declared-length"

	// NameResolution checks that every raw name resolves to exactly one
	// normalized form.
	NameResolution = "name-resolution"

	// NameCollision checks that distinct raw names do not normalize to the
	// same identifier.
	NameCollision = "name-collision"

	// UnitConsistency checks that a metric declares the same unit everywhere.
	UnitConsistency = "unit-consistency"

	// EmptyPayload checks for blocks without payload.
	EmptyPayload = "empty-payload"

	// Structure is used by parser variants for malformed block layouts. It
	// is always fatal.
	Structure = "structure"
)

// Checks lists the configurable checks in the order they run.
var Checks = []string{
	DeclaredLength,
	NameResolution,
	NameCollision,
	UnitConsistency,
	EmptyPayload,
}

// ErrInvalid is the parent error of all validation errors.
var ErrInvalid = errors.New("invalid file")

// ValidationError is a fatal inconsistency found in a parsed file.
type ValidationError struct {
	// File is the name of the parsed file.
	File string

	// Line is the line of the block declaration.
	Line int

	// Block is the key of the offending block.
	Block string

	// Check is the name of the failed check.
	Check string

	// Rule describes the violation.
	Rule string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s:%d: %v: block %q: %s: %s", e.File, e.Line, ErrInvalid, e.Block, e.Check, e.Rule)
}

// Unwrap returns ErrInvalid.
func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Errorf returns a *ValidationError for a malformed block layout.
func Errorf(file string, line int, block, format string, args ...any) error {
	return &ValidationError{
		File:  file,
		Line:  line,
		Block: block,
		Check: Structure,
		Rule:  fmt.Sprintf(format, args...),
	}
}

// Policy maps check names to severities. Checks missing from a policy use
// the severity of the default lenient policy.
type Policy map[string]result.Severity

// DefaultPolicy returns the default policy for a naming mode. Name
// collisions are fatal in strict mode and ignored in lenient mode.
func DefaultPolicy(mode naming.Mode) Policy {
	p := Policy{
		DeclaredLength:  result.Fatal,
		NameResolution:  result.Fatal,
		NameCollision:   result.Ignore,
		UnitConsistency: result.Advisory,
		EmptyPayload:    result.Advisory,
	}
	if mode == naming.Strict {
		p[NameCollision] = result.Fatal
	}
	return p
}

// With returns a copy of p with the severity of check replaced.
func (p Policy) With(check string, s result.Severity) Policy {
	c := maps.Clone(p)
	if c == nil {
		c = Policy{}
	}
	c[check] = s
	return c
}

// Severity returns the severity of check.
func (p Policy) Severity(check string) result.Severity {
	if s, ok := p[check]; ok {
		return s
	}
	if s, ok := DefaultPolicy(naming.Lenient)[check]; ok {
		return s
	}
	return result.Fatal
}

// Input is everything parsed from one file.
type Input struct {
	// File is the name of the file.
	File string

	// Blocks are the extracted blocks in file order.
	Blocks []*block.Block

	// Records are the records produced by the parser in order.
	Records []*result.Record

	// Names is the table used to normalize raw names.
	Names *naming.Table
}

// issue is a single finding of a check.
type issue struct {
	check string
	line  int
	block string
	rule  string
}

// Run runs all checks over in. It returns the first fatal issue as a
// *ValidationError, or the advisory issues as warnings. Checks missing from
// policy use the default policy of the naming mode of in.Names.
func Run(in Input, policy Policy) ([]result.Warning, error) {
	mode := naming.Lenient
	if in.Names != nil {
		mode = in.Names.Mode()
	}
	base := DefaultPolicy(mode)
	maps.Copy(base, policy)
	policy = base

	checks := map[string]func(Input) []issue{
		DeclaredLength:  checkDeclaredLength,
		NameResolution:  checkNameResolution,
		NameCollision:   checkNameCollision,
		UnitConsistency: checkUnitConsistency,
		EmptyPayload:    checkEmptyPayload,
	}

	var warnings []result.Warning
	for _, name := range Checks {
		sev := policy.Severity(name)
		if sev == result.Ignore {
			continue
		}
		for _, is := range checks[name](in) {
			if sev == result.Fatal {
				return nil, &ValidationError{
					File:  in.File,
					Line:  is.line,
					Block: is.block,
					Check: is.check,
					Rule:  is.rule,
				}
			}
			warnings = append(warnings, result.Warning{
				Check:   is.check,
				File:    in.File,
				Line:    is.line,
				Block:   is.block,
				Message: is.rule,
			})
		}
	}
	return warnings, nil
}
