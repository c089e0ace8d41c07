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
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

const (
	namePattern = `[A-Za-z_][A-Za-z0-9_]*`

	// headerPattern matches a block declaration up to and including the
	// optional opening bracket.
	headerPattern = namePattern +
		`[ \t]*(?:\([ \t]*` + namePattern + `[ \t]*,[ \t]*(?:\d+|\[[ \t]*1[ \t]*:[ \t]*\d+[ \t]*\])[ \t]*\))?` +
		`[ \t]*=(?:[ \t]*\[)?`

	numberPattern = `[-+]?(?:(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][-+]?\d+)?|(?i:nan|inf(?:inity)?)\b)`
)

// definition holds the lexical rules of SERPENT output. Rules are tried in
// order and the first match wins.
var definition = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Comment", Pattern: `%[^\n]*`, Action: nil},
		{Name: "Newline", Pattern: `\n`, Action: nil},
		{Name: "Blank", Pattern: `[ \t\r\f\v]+`, Action: nil},
		{Name: "Header", Pattern: headerPattern, Action: nil},
		{Name: "Number", Pattern: numberPattern, Action: nil},
		{Name: "Name", Pattern: namePattern, Action: nil},
		{Name: "Quoted", Pattern: `'[^'\n]*'`, Action: nil},
		{Name: "OpenQuote", Pattern: `'[^'\n]*`, Action: nil},
		{Name: "Close", Pattern: `\][ \t]*;`, Action: nil},
		{Name: "Bracket", Pattern: `\]`, Action: nil},
		{Name: "Semicolon", Pattern: `;`, Action: nil},
	},
})

var (
	symbols = definition.Symbols()

	tComment   = symbols["Comment"]
	tNewline   = symbols["Newline"]
	tBlank     = symbols["Blank"]
	tHeader    = symbols["Header"]
	tNumber    = symbols["Number"]
	tName      = symbols["Name"]
	tQuoted    = symbols["Quoted"]
	tOpenQuote = symbols["OpenQuote"]
	tClose     = symbols["Close"]
	tBracket   = symbols["Bracket"]
	tSemicolon = symbols["Semicolon"]
)

// headerRegex splits a Header token into the name, the step counter, the
// declared size and the opening bracket.
var headerRegex = regexp.MustCompile(`^(` + namePattern + `)[ \t]*(?:\([ \t]*(` + namePattern +
	`)[ \t]*,[ \t]*(?:(\d+)|\[[ \t]*1[ \t]*:[ \t]*(\d+)[ \t]*\])[ \t]*\))?[ \t]*=[ \t]*(\[)?$`)

// header converts a Header token to a BlockStart token.
func (s *Scanner) header(t lexer.Token) bool {
	m := headerRegex.FindStringSubmatch(t.Value)
	if m == nil {
		return s.fail(t.Pos, "malformed declaration")
	}
	// Do not mistake a comparison for a declaration.
	if end := t.Pos.Offset + len(t.Value); m[5] == "" && end < len(s.input) && s.input[end] == '=' {
		return s.fail(advance(t.Pos, t.Value), "unexpected character")
	}

	h := &Header{
		Name:      m[1],
		Counter:   m[2],
		Bracketed: m[5] != "",
	}
	if size := m[3] + m[4]; size != "" {
		n, err := strconv.Atoi(size)
		if err != nil || n < 1 {
			return s.fail(t.Pos, "declared size must be a positive integer")
		}
		h.Size = n
	}
	return s.emit(t.Pos, Token{
		Type:   BlockStart,
		Text:   strings.TrimSpace(t.Value),
		Header: h,
	})
}

// numbers collects the Number tokens written on one line into a Number or
// NumericArray token.
func (s *Scanner) numbers(first lexer.Token) bool {
	var values []float64
	last := first
	for {
		end := last.Pos.Offset + len(last.Value)
		if end < len(s.input) && !isDelimiter(s.input[end]) {
			return s.fail(last.Pos, "malformed number")
		}
		v, err := strconv.ParseFloat(last.Value, 64)
		if err != nil {
			return s.fail(last.Pos, "number out of range")
		}
		values = append(values, v)

		next, ok := s.peekNumber()
		if !ok {
			break
		}
		last = next
	}

	text := s.input[first.Pos.Offset : last.Pos.Offset+len(last.Value)]
	typ := NumericArray
	if len(values) == 1 {
		typ = Number
	}
	return s.emit(first.Pos, Token{Type: typ, Text: text, Values: values})
}

// peekNumber returns the next token if it is a number on the same line.
// Otherwise the token is kept for the next call to Scan.
func (s *Scanner) peekNumber() (lexer.Token, bool) {
	t, err := s.next()
	if err == nil && t.Type == tBlank {
		t, err = s.next()
	}
	if err == nil && t.Type == tNumber {
		return t, true
	}
	s.pending, s.pendingErr = &t, err
	return lexer.Token{}, false
}

// isDelimiter reports whether c may follow a number.
func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', '\v', ']', ';', '%':
		return true
	}
	return false
}

// advance returns the position following text starting at pos.
func advance(pos lexer.Position, text string) lexer.Position {
	pos.Offset += len(text)
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		pos.Line += strings.Count(text, "\n")
		pos.Column = len(text[i+1:]) + 1
		return pos
	}
	pos.Column += len(text)
	return pos
}
