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

package token

import (
	"errors"
	"fmt"
)

// ErrGrammar is the parent error for all lexical errors.
var ErrGrammar = errors.New("grammar error")

// Type identifies the type of a token.
type Type int

const (
	// Identifier is a bare or quoted name.
	Identifier Type = iota

	// Number is a single numeric literal.
	Number

	// NumericArray is a row of numeric literals written on one line.
	NumericArray

	// BlockStart opens a named block.
	BlockStart

	// BlockEnd closes the innermost open block.
	BlockEnd

	// Comment is a '%' comment. The text excludes the leading '%'.
	Comment
)

var typeNames = map[Type]string{
	Identifier:   "identifier",
	Number:       "number",
	NumericArray: "numeric array",
	BlockStart:   "block start",
	BlockEnd:     "block end",
	Comment:      "comment",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("type%d", int(t))
}

// Header is the declaration carried by a BlockStart token.
type Header struct {
	// Name is the declared block name.
	Name string

	// Counter is the step counter variable named in the declaration, e.g.
	// "idx" in "NAME (idx, [1: 4]) = [". It is empty for plain declarations.
	Counter string

	// Size is the declared payload length. Zero means no size was declared.
	Size int

	// Bracketed is true if the declaration opened a bracket. Bracketed blocks
	// must be closed with "];".
	Bracketed bool
}

// Token is a lexical token.
type Token struct {
	Type Type

	// Text is the token text. Quoted identifiers exclude the quotes and
	// comments exclude the '%'.
	Text string

	// Quoted is true for identifiers written in single quotes.
	Quoted bool

	// Line and Col are the 1-based position of the start of the token.
	Line int
	Col  int

	// Values holds the parsed numbers of Number and NumericArray tokens.
	Values []float64

	// Header holds the declaration of BlockStart tokens.
	Header *Header
}

func (t Token) String() string {
	if len(t.Text) > 10 {
		return fmt.Sprintf("%s: %.10q...", t.Type, t.Text)
	}
	return fmt.Sprintf("%s: %q", t.Type, t.Text)
}

// GrammarError indicates that a character sequence matched no token rule.
type GrammarError struct {
	// File is the name of the input.
	File string

	// Line and Col locate the offending text.
	Line int
	Col  int

	// Text is the offending text.
	Text string

	// Rule describes the violated rule.
	Rule string
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %v: %s near %q", e.File, e.Line, e.Col, ErrGrammar, e.Rule, e.Text)
}

// Unwrap returns ErrGrammar.
func (e *GrammarError) Unwrap() error {
	return ErrGrammar
}
