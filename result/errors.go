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

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is the parent error for failed lookups.
	ErrNotFound = errors.New("key not found")

	// ErrNotTimeDependent indicates a time series query on a static record.
	ErrNotTimeDependent = errors.New("not time-dependent")

	// ErrCollision indicates that two records cannot share an identifier.
	ErrCollision = errors.New("duplicate identifier")

	// ErrFrozen is returned when adding to a frozen Builder.
	ErrFrozen = errors.New("builder is frozen")
)

// KeyNotFoundError is returned when a key is not present in a container.
type KeyNotFoundError struct {
	// Key is the requested key.
	Key string

	// Suggestions holds up to three nearby keys.
	Suggestions []string
}

func (e *KeyNotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("%v: %q", ErrNotFound, e.Key)
	}
	return fmt.Sprintf("%v: %q (did you mean %s?)", ErrNotFound, e.Key, strings.Join(e.Suggestions, ", "))
}

// Unwrap returns ErrNotFound.
func (e *KeyNotFoundError) Unwrap() error {
	return ErrNotFound
}

// NotTimeDependentError is returned when a time series is requested for a
// record that was not parsed from time-indexed blocks.
type NotTimeDependentError struct {
	ID     Identifier
	Metric string
}

func (e *NotTimeDependentError) Error() string {
	return fmt.Sprintf("%v[%s]: %v", e.ID, e.Metric, ErrNotTimeDependent)
}

// Unwrap returns ErrNotTimeDependent.
func (e *NotTimeDependentError) Unwrap() error {
	return ErrNotTimeDependent
}

// CollisionError is returned when a record cannot be added because its
// identifier is already taken.
type CollisionError struct {
	// ID is the contested identifier.
	ID Identifier

	// Source is the origin of the rejected record.
	Source Source

	// Previous is the origin of the record already holding ID.
	Previous Source

	// Rule describes why the records cannot be merged.
	Rule string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s:%d: %v: %v in block %q (first declared in block %q on line %d): %s",
		e.Source.File, e.Source.Line, ErrCollision, e.ID, e.Source.Block, e.Previous.Block, e.Previous.Line, e.Rule)
}

// Unwrap returns ErrCollision.
func (e *CollisionError) Unwrap() error {
	return ErrCollision
}

// Severity is the severity of a validation issue.
type Severity int

const (
	// Fatal issues abort parsing.
	Fatal Severity = iota

	// Advisory issues become warnings on the container.
	Advisory

	// Ignore suppresses the issue.
	Ignore
)

func (s Severity) String() string {
	switch s {
	case Fatal:
		return "fatal"
	case Advisory:
		return "advisory"
	case Ignore:
		return "ignore"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// ParseSeverity parses the string form of a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fatal":
		return Fatal, nil
	case "advisory", "warn", "warning":
		return Advisory, nil
	case "ignore", "off":
		return Ignore, nil
	}
	return Fatal, fmt.Errorf("unknown severity %q", s)
}

// Warning is an advisory issue found while validating a file.
type Warning struct {
	// Check is the name of the check that produced the warning.
	Check string

	File  string
	Line  int
	Block string

	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s:%d: %s: block %q: %s", w.File, w.Line, w.Check, w.Block, w.Message)
}
