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

package testutil

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/ianlewis/go-dictzip"
)

// Compression selects how WriteFile compresses a fixture.
type Compression int

const (
	// None writes the fixture as is.
	None Compression = iota

	// Gzip compresses the fixture with gzip.
	Gzip

	// DictZip compresses the fixture with dictzip.
	DictZip
)

// Ext returns the file extension of the compression.
func (c Compression) Ext() string {
	switch c {
	case Gzip:
		return ".gz"
	case DictZip:
		return ".dz"
	default:
		return ""
	}
}

// WriteFile writes data to name in dir, appending the extension of c, and
// returns the path.
func WriteFile(t *testing.T, dir, name string, data []byte, c Compression) string {
	t.Helper()

	path := filepath.Join(dir, name+c.Ext())
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	switch c {
	case Gzip:
		z := gzip.NewWriter(f)
		if _, err := z.Write(data); err != nil {
			t.Fatal(err)
		}
		if err := z.Close(); err != nil {
			t.Fatal(err)
		}
	case DictZip:
		z, err := dictzip.NewWriter(f)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := z.Write(data); err != nil {
			t.Fatal(err)
		}
		if err := z.Close(); err != nil {
			t.Fatal(err)
		}
	default:
		if _, err := f.Write(data); err != nil {
			t.Fatal(err)
		}
	}

	return path
}
