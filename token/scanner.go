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
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Scanner scans the tokens of a single input from start to end. A Scanner
// cannot be rewound; create a new Scanner to scan the input again.
type Scanner struct {
	name  string
	input string
	lex   lexer.Lexer

	// pos is the position following the last token read from lex.
	pos lexer.Position

	pending    *lexer.Token
	pendingErr error

	tok  Token
	err  *GrammarError
	done bool
}

// NewScanner reads r and returns a Scanner over its contents. name is used
// in error reports and is typically the file path.
func NewScanner(name string, r io.Reader) (*Scanner, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", name, err)
	}
	return NewStringScanner(name, string(b)), nil
}

// NewStringScanner returns a Scanner over input.
func NewStringScanner(name, input string) *Scanner {
	s := &Scanner{
		name:  name,
		input: input,
		pos:   lexer.Position{Filename: name, Line: 1, Column: 1},
	}
	lex, err := definition.LexString(name, input)
	if err != nil {
		s.fail(s.pos, err.Error())
		return s
	}
	s.lex = lex
	return s
}

// Scan advances the scanner to the next token. It returns false if the scan
// stops either by reaching the end of the input or an error.
func (s *Scanner) Scan() bool {
	if s.err != nil || s.done {
		return false
	}
	for {
		t, err := s.next()
		if err != nil {
			pos := s.pos
			if perr, ok := err.(interface{ Position() lexer.Position }); ok {
				pos = perr.Position()
			}
			return s.fail(pos, "unexpected character")
		}
		if t.EOF() {
			s.done = true
			return false
		}

		switch t.Type {
		case tNewline, tBlank:
			continue
		case tComment:
			return s.emit(t.Pos, Token{Type: Comment, Text: strings.TrimSpace(t.Value[1:])})
		case tName:
			return s.emit(t.Pos, Token{Type: Identifier, Text: t.Value})
		case tQuoted:
			return s.emit(t.Pos, Token{Type: Identifier, Text: t.Value[1 : len(t.Value)-1], Quoted: true})
		case tOpenQuote:
			return s.fail(t.Pos, "unterminated quoted identifier")
		case tHeader:
			return s.header(t)
		case tNumber:
			return s.numbers(t)
		case tClose:
			return s.emit(t.Pos, Token{Type: BlockEnd, Text: "];"})
		case tBracket:
			return s.fail(t.Pos, "']' must be followed by ';'")
		case tSemicolon:
			return s.emit(t.Pos, Token{Type: BlockEnd, Text: ";"})
		default:
			return s.fail(t.Pos, "unexpected character")
		}
	}
}

// next returns the pending token or reads one from the lexer.
func (s *Scanner) next() (lexer.Token, error) {
	if s.pending != nil || s.pendingErr != nil {
		t, err := s.pending, s.pendingErr
		s.pending, s.pendingErr = nil, nil
		if err != nil {
			return lexer.Token{}, err
		}
		return *t, nil
	}
	t, err := s.lex.Next()
	if err != nil {
		return t, err
	}
	s.pos = advance(t.Pos, t.Value)
	return t, nil
}

func (s *Scanner) emit(pos lexer.Position, t Token) bool {
	t.Line = pos.Line
	t.Col = pos.Column
	s.tok = t
	return true
}

// fail records a grammar error at pos and stops the scan.
func (s *Scanner) fail(pos lexer.Position, rule string) bool {
	text := ""
	if pos.Offset < len(s.input) {
		text = s.input[pos.Offset:]
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = text[:nl]
		}
		if text == "" {
			text = s.input[pos.Offset : pos.Offset+1]
		}
	}
	s.err = &GrammarError{
		File: s.name,
		Line: pos.Line,
		Col:  pos.Column,
		Text: text,
		Rule: rule,
	}
	return false
}

// Token returns the most recent token produced by Scan.
func (s *Scanner) Token() Token {
	return s.tok
}

// Err returns the first error encountered. The returned error, if not nil, is
// a *GrammarError.
func (s *Scanner) Err() error {
	if s.err == nil {
		return nil
	}
	return s.err
}

// Name returns the name of the input.
func (s *Scanner) Name() string {
	return s.name
}

// Line returns the line following the last token read.
func (s *Scanner) Line() int {
	return s.pos.Line
}

// All scans input to the end and returns all tokens.
func All(name, input string) ([]Token, error) {
	var toks []Token
	s := NewStringScanner(name, input)
	for s.Scan() {
		toks = append(toks, s.Token())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return toks, nil
}
