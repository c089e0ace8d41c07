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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected Identifier
		wantErr  bool
	}{
		{"material:fuel:U235", Identifier{"material", "fuel", "U235"}, false},
		{"metadata:days", Identifier{"metadata", "days", ""}, false},
		{"material:fuel#2:Xe135", Identifier{"material", "fuel#2", "Xe135"}, false},
		{"detector:flux:E", Identifier{"detector", "flux", "E"}, false},
		{"fuel", Identifier{}, true},
		{":fuel", Identifier{}, true},
		{"material:", Identifier{}, true},
		{"material:fuel:", Identifier{}, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseIdentifier(test.input)
			if (err != nil) != test.wantErr {
				t.Fatalf("ParseIdentifier: unexpected error: %v", err)
			}
			if diff := cmp.Diff(test.expected, got); diff != "" {
				t.Fatalf("ParseIdentifier (-want, +got):\n%s", diff)
			}
			if err == nil && got.String() != test.input {
				t.Errorf("String; want: %q, got: %q", test.input, got.String())
			}
		})
	}
}

func TestID(t *testing.T) {
	t.Parallel()

	if got, want := ID(CategoryDetector, "flux", "E").String(), "detector:flux:E"; got != want {
		t.Errorf("want: %q, got: %q", want, got)
	}
	if got, want := ID(CategoryMetadata, "days").String(), "metadata:days"; got != want {
		t.Errorf("want: %q, got: %q", want, got)
	}
}

func TestArray(t *testing.T) {
	t.Parallel()

	data := []float64{1, 2, 3, 4, 5, 6}
	a, err := NewArray(data, 2, 3)
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}

	// The array does not alias its input or its outputs.
	data[0] = 100
	a.Data()[1] = 200
	a.Shape()[0] = 7

	if diff := cmp.Diff([]float64{1, 2, 3, 4, 5, 6}, a.Data()); diff != "" {
		t.Errorf("Data (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 3}, a.Shape()); diff != "" {
		t.Errorf("Shape (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{4, 5, 6}, a.Row(1)); diff != "" {
		t.Errorf("Row (-want, +got):\n%s", diff)
	}
	if a.Row(2) != nil {
		t.Errorf("Row(2): want nil, got %v", a.Row(2))
	}
	v, err := a.At(1, 2)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if v != 6 {
		t.Errorf("At(1, 2); want: 6, got: %v", v)
	}
	if _, err := a.At(2, 0); err == nil {
		t.Error("At(2, 0): expected error")
	}
	if _, err := a.At(0); !errors.Is(err, ErrShape) {
		t.Errorf("At(0): want %v, got %v", ErrShape, err)
	}
	if !a.Equal(MustArray([]float64{1, 2, 3, 4, 5, 6}, 2, 3)) {
		t.Error("Equal: want true")
	}
	if a.Equal(MustArray([]float64{1, 2, 3, 4, 5, 6}, 3, 2)) {
		t.Error("Equal: different shapes compare equal")
	}
	if _, err := NewArray(data, 4); !errors.Is(err, ErrShape) {
		t.Errorf("NewArray: want %v, got %v", ErrShape, err)
	}
	if got := Scalar(3).Shape(); !cmp.Equal([]int{1}, got) {
		t.Errorf("Scalar shape: %v", got)
	}
}
