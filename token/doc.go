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

// Package token implements lexical scanning of SERPENT output files.
//
// SERPENT writes its output as a subset of MATLAB syntax. The scanner
// recognizes the following tokens:
//  1. Comment: a '%' and the rest of the line.
//  2. Identifier: a bare name or a name quoted with single quotes.
//  3. Number: a single floating point literal, including NaN and Inf.
//  4. NumericArray: two or more numbers written on the same line.
//  5. BlockStart: a declaration such as "NAME = [" or
//     "NAME (idx, [1: 4]) = [". The optional parenthesized part names the
//     step counter and the declared size of the payload.
//  6. BlockEnd: "];" or a bare ";".
//
// Any other character sequence results in a *GrammarError. The rules are
// defined with the participle stateful lexer.
package token
