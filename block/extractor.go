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
	"math"
	"strconv"
	"strings"

	"github.com/ianlewis/go-serpent/token"
)

// Options are options for extracting blocks.
type Options struct {
	// Counter is the name of the step counter variable. Assignments to the
	// counter ("idx = 2;") set the step of subsequent indexed blocks and are
	// not emitted as blocks.
	Counter string
}

// DefaultOptions is the default options for an Extractor.
var DefaultOptions = &Options{
	Counter: "idx",
}

// Extractor reads blocks from a token stream.
type Extractor struct {
	s       *token.Scanner
	counter string

	stack []*Block

	// seen counts declarations per name (and step, for indexed blocks).
	seen map[string]int

	step    int
	block   *Block
	pending *token.Token
	err     error
}

// NewExtractor returns a new Extractor that reads tokens from s.
func NewExtractor(s *token.Scanner, options *Options) *Extractor {
	if options == nil {
		options = DefaultOptions
	}
	counter := options.Counter
	if counter == "" {
		counter = DefaultOptions.Counter
	}
	return &Extractor{
		s:       s,
		counter: counter,
		seen:    map[string]int{},
		step:    1,
	}
}

// Scan advances the extractor to the next complete block. Blocks are returned
// in the order they are closed, so nested blocks precede their parent. It
// returns false if the scan stops either by reaching the end of the input or
// an error.
func (e *Extractor) Scan() bool {
	if e.err != nil {
		return false
	}
	for {
		tok, ok := e.next()
		if !ok {
			if err := e.s.Err(); err != nil {
				e.err = err
				return false
			}
			if len(e.stack) > 0 {
				top := e.stack[len(e.stack)-1]
				e.err = e.unmatched(top.Line, top.Key, "end of input with open block")
			}
			return false
		}

		switch tok.Type {
		case token.BlockStart:
			e.open(tok)
		case token.Comment:
			if top := e.top(); top != nil && tok.Line == top.Line {
				parseMeta(top.Meta, tok.Text)
			}
		case token.Number, token.NumericArray:
			top := e.top()
			if top == nil {
				e.err = e.unmatched(tok.Line, "", "payload outside of a block")
				return false
			}
			top.Rows = append(top.Rows, tok.Values)
		case token.Identifier:
			top := e.top()
			if top == nil {
				e.err = e.unmatched(tok.Line, "", "identifier outside of a block")
				return false
			}
			if !tok.Quoted {
				e.err = &token.GrammarError{
					File: e.s.Name(),
					Line: tok.Line,
					Col:  tok.Col,
					Text: tok.Text,
					Rule: "unquoted identifier in block payload",
				}
				return false
			}
			top.Labels = append(top.Labels, tok.Text)
		case token.BlockEnd:
			b, err := e.close(tok)
			if err != nil {
				e.err = err
				return false
			}
			if b == nil {
				// Step counter assignment.
				continue
			}
			e.attachTrailingMeta(b)
			e.block = b
			return true
		}
	}
}

// Block returns the most recent block produced by Scan.
func (e *Extractor) Block() *Block {
	return e.block
}

// Err returns the first error encountered. Errors are either
// *token.GrammarError or *UnmatchedBlockError.
func (e *Extractor) Err() error {
	return e.err
}

// Step returns the current value of the step counter.
func (e *Extractor) Step() int {
	return e.step
}

func (e *Extractor) next() (token.Token, bool) {
	if e.pending != nil {
		tok := *e.pending
		e.pending = nil
		return tok, true
	}
	if !e.s.Scan() {
		return token.Token{}, false
	}
	return e.s.Token(), true
}

func (e *Extractor) top() *Block {
	if len(e.stack) == 0 {
		return nil
	}
	return e.stack[len(e.stack)-1]
}

func (e *Extractor) open(tok token.Token) {
	h := tok.Header
	b := &Block{
		Name:      h.Name,
		Counter:   h.Counter,
		Declared:  h.Size,
		Bracketed: h.Bracketed,
		Meta:      map[string]string{},
		Line:      tok.Line,
	}
	if parent := e.top(); parent != nil {
		b.Parent = parent.Key
	}

	seenKey := b.Name
	if b.Indexed() {
		b.Step = e.step
		seenKey += "@" + strconv.Itoa(b.Step)
	}
	e.seen[seenKey]++
	b.Key = b.Name
	if n := e.seen[seenKey]; n > 1 {
		b.Key = b.Name + "#" + strconv.Itoa(n)
	}

	e.stack = append(e.stack, b)
}

// close pops the innermost block. It returns a nil block for step counter
// assignments.
func (e *Extractor) close(tok token.Token) (*Block, error) {
	b := e.top()
	if b == nil {
		return nil, e.unmatched(tok.Line, "", "block end without block start")
	}
	switch {
	case b.Bracketed && tok.Text != "];":
		return nil, e.unmatched(tok.Line, b.Key, "block opened with '[' must be closed with '];'")
	case !b.Bracketed && tok.Text != ";":
		return nil, e.unmatched(tok.Line, b.Key, "block opened without '[' must be closed with ';'")
	}
	e.stack = e.stack[:len(e.stack)-1]
	b.EndLine = tok.Line

	if b.Name == e.counter && !b.Indexed() && b.Parent == "" {
		v, ok := b.Scalar()
		if !ok || v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
			return nil, &token.GrammarError{
				File: e.s.Name(),
				Line: b.Line,
				Col:  1,
				Text: b.Name,
				Rule: "step counter must be assigned a single integer",
			}
		}
		e.step = int(v)
		return nil, nil
	}
	return b, nil
}

// attachTrailingMeta reads ahead one token and attaches a comment that
// follows the closing delimiter on the declaration line. The comment belongs
// to the block just closed, even when it is nested.
func (e *Extractor) attachTrailingMeta(b *Block) {
	if !e.s.Scan() {
		return
	}
	tok := e.s.Token()
	if tok.Type == token.Comment && tok.Line == b.Line {
		parseMeta(b.Meta, tok.Text)
		return
	}
	e.pending = &tok
}

func (e *Extractor) unmatched(line int, key, rule string) error {
	return &UnmatchedBlockError{
		File:  e.s.Name(),
		Line:  line,
		Block: key,
		Rule:  rule,
	}
}

// parseMeta parses "key: value, key: value" comments. Comments that are not
// of that form are ignored.
func parseMeta(meta map[string]string, text string) {
	for _, field := range strings.Split(text, ",") {
		k, v, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "" || strings.ContainsAny(k, " \t") {
			continue
		}
		meta[k] = v
	}
}
