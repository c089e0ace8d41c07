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

// Package serpent implements a library for reading the output files of the
// SERPENT Monte Carlo particle transport code in pure Go.
//
// SERPENT writes its results as MATLAB-like text files. Each file family is
// read by a parser variant:
//  1. Depletion files ("*_dep.m") hold material compositions over burnup
//     steps.
//  2. Detector files ("*_det<N>.m") hold detector tallies and their grids.
//  3. Result files ("*_res.m") hold the main results, repeated once per
//     burnup step.
//
// Parsing a file tokenizes it, groups the tokens into blocks, lets the
// variant turn blocks into records, validates the outcome and freezes the
// records into a read-only [result.Container]. Files compressed with gzip
// (".gz") or dictzip (".dz") are decompressed transparently.
package serpent
