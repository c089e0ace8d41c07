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

// Package folding implements transformers that fold raw names read from
// output files into a canonical form.
package folding

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// LabelFolder folds labels such as "'U235  '" into "U235". Quote runes are
// dropped, leading and trailing whitespace is removed and every internal
// whitespace span becomes a single underscore so the folded label can be
// used as one component of a composite key.
type LabelFolder struct {
	// started is true after the first kept rune.
	started bool

	// gap is true while inside an internal whitespace span.
	gap bool
}

// Transform implements [transform.Transformer.Transform].
func (f *LabelFolder) Transform(dst, src []byte, atEOF bool) (int, int, error) {
	var nSrc, nDst int
	for nSrc < len(src) {
		c, size := utf8.DecodeRune(src[nSrc:])
		if c == utf8.RuneError && !atEOF && !utf8.FullRune(src[nSrc:]) {
			return nDst, nSrc, transform.ErrShortSrc
		}

		switch {
		case c == '\'' || c == '"':
			nSrc += size
			continue
		case unicode.IsSpace(c):
			nSrc += size
			if f.started {
				f.gap = true
			}
			continue
		}

		if f.gap {
			if nDst+1 > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = '_'
			nDst++
			f.gap = false
		}

		// c may be utf8.RuneError, whose encoding is longer than size.
		if nDst+utf8.RuneLen(c) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += utf8.EncodeRune(dst[nDst:], c)
		nSrc += size
		f.started = true
	}

	return nDst, nSrc, nil
}

// Reset implements [transform.Transformer.Reset].
func (f *LabelFolder) Reset() {
	*f = LabelFolder{}
}

// Label folds s with a new LabelFolder.
func Label(s string) string {
	out, _, err := transform.String(&LabelFolder{}, s)
	if err != nil {
		return s
	}
	return out
}
