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
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func timeFragment(t *testing.T, id Identifier, raw string, step int, values ...float64) *Record {
	t.Helper()
	r, err := NewTimeRecord(id, Source{File: "test_res.m", Block: id.Name, Raw: raw}, []int{step}, nil,
		map[string]Array{"value": MustArray(values, 1, len(values))}, nil)
	if err != nil {
		t.Fatalf("NewTimeRecord: %v", err)
	}
	return r
}

func TestNewTimeRecord_errors(t *testing.T) {
	t.Parallel()

	id := ID(CategoryResults, "X")
	tests := []struct {
		name    string
		steps   []int
		times   []float64
		metrics map[string]Array
	}{
		{"no steps", nil, nil, nil},
		{"decreasing", []int{2, 1}, nil, nil},
		{"repeated", []int{1, 1}, nil, nil},
		{"times length", []int{1, 2}, []float64{0}, nil},
		{"metric rows", []int{1, 2}, nil, map[string]Array{"value": MustArray([]float64{1, 2, 3})}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			if _, err := NewTimeRecord(id, Source{}, test.steps, test.times, test.metrics, nil); err == nil {
				t.Fatal("NewTimeRecord: expected error")
			}
		})
	}
}

// TestBuilder_mergeSteps tests that time series fragments are joined in step
// order regardless of the order they are added in.
func TestBuilder_mergeSteps(t *testing.T) {
	t.Parallel()

	id := ID(CategoryResults, "ABS_KEFF")
	b := NewBuilder("test_res.m", "res")
	for _, r := range []*Record{
		timeFragment(t, id, "ABS_KEFF", 3, 1.3, 0.03),
		timeFragment(t, id, "ABS_KEFF", 1, 1.1, 0.01),
		timeFragment(t, id, "ABS_KEFF", 2, 1.2, 0.02),
	} {
		if err := b.Add(r); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	c := b.Freeze(nil)
	r, err := c.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, r.Steps()); diff != "" {
		t.Errorf("Steps (-want, +got):\n%s", diff)
	}
	a, _ := r.Metric("value")
	if diff := cmp.Diff([]float64{1.1, 0.01, 1.2, 0.02, 1.3, 0.03}, a.Data()); diff != "" {
		t.Errorf("Data (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3, 2}, a.Shape()); diff != "" {
		t.Errorf("Shape (-want, +got):\n%s", diff)
	}

	if err := b.Add(timeFragment(t, id, "ABS_KEFF", 4, 1)); !errors.Is(err, ErrFrozen) {
		t.Errorf("Add after Freeze: want %v, got %v", ErrFrozen, err)
	}
}

// TestBuilder_mergeMetrics tests that records with the same steps contribute
// their metrics.
func TestBuilder_mergeMetrics(t *testing.T) {
	t.Parallel()

	id := ID(CategoryMaterial, "fuel", "U235")
	src := Source{File: "test_dep.m", Raw: "fuel"}
	adens, err := NewTimeRecord(id, src, []int{0, 1}, []float64{0, 5},
		map[string]Array{"adens": MustArray([]float64{1, 0.9}, 2)}, map[string]string{"adens": "atoms/b-cm"})
	if err != nil {
		t.Fatalf("NewTimeRecord: %v", err)
	}
	mdens, err := NewTimeRecord(id, src, []int{0, 1}, []float64{0, 5},
		map[string]Array{"mdens": MustArray([]float64{2, 1.8}, 2)}, nil)
	if err != nil {
		t.Fatalf("NewTimeRecord: %v", err)
	}

	b := NewBuilder("test_dep.m", "dep")
	if err := b.Add(adens); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := b.Add(mdens); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if want, got := 1, b.Len(); want != got {
		t.Fatalf("Len; want: %d, got: %d", want, got)
	}

	r, err := b.Freeze(nil).Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff([]string{"adens", "mdens"}, r.Metrics()); diff != "" {
		t.Errorf("Metrics (-want, +got):\n%s", diff)
	}
	if want, got := "atoms/b-cm", r.Unit("adens"); want != got {
		t.Errorf("Unit; want: %q, got: %q", want, got)
	}
	if diff := cmp.Diff([]float64{0, 5}, r.Times()); diff != "" {
		t.Errorf("Times (-want, +got):\n%s", diff)
	}

	// Adding to the builder did not mutate the original records.
	if diff := cmp.Diff([]string{"adens"}, adens.Metrics()); diff != "" {
		t.Errorf("original Metrics (-want, +got):\n%s", diff)
	}
}

func TestBuilder_collisions(t *testing.T) {
	t.Parallel()

	id := ID(CategoryMaterial, "fuel")
	static := func(raw string, v float64) *Record {
		return NewRecord(id, Source{File: "test_dep.m", Raw: raw, Block: "MAT_" + raw + "_VOLUME"},
			map[string]Array{"volume": Scalar(v)}, nil)
	}

	tests := []struct {
		name    string
		records []*Record
		rule    string
	}{
		{
			name:    "same raw name",
			records: []*Record{static("fuel", 1), static("fuel", 2)},
			rule:    "metric volume declared twice",
		},
		{
			name:    "static and time-dependent",
			records: []*Record{static("fuel", 1), timeFragment(t, id, "fuel", 1, 1)},
			rule:    "time-dependent and static records share an identifier",
		},
		{
			name:    "step declared twice",
			records: []*Record{timeFragment(t, id, "X", 1, 1), timeFragment(t, id, "X", 1, 2)},
			rule:    "metric value declared twice",
		},
		{
			name:    "shape change",
			records: []*Record{timeFragment(t, id, "X", 1, 1), timeFragment(t, id, "X", 2, 1, 2)},
			rule:    "metric value changes shape from [1 1] to [1 2]",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			b := NewBuilder("test_dep.m", "dep")
			var err error
			for _, r := range test.records {
				if err = b.Add(r); err != nil {
					break
				}
			}
			var cerr *CollisionError
			if !errors.As(err, &cerr) {
				t.Fatalf("Add: want *CollisionError, got %v", err)
			}
			if !errors.Is(err, ErrCollision) {
				t.Errorf("Add: want %v, got %v", ErrCollision, err)
			}
			if want, got := test.rule, cerr.Rule; want != got {
				t.Errorf("Rule; want: %q, got: %q", want, got)
			}
		})
	}
}

// TestBuilder_lenientOverwrite tests the documented collision of names that
// differ only by a numeric suffix: the later record wins.
func TestBuilder_lenientOverwrite(t *testing.T) {
	t.Parallel()

	id := ID(CategoryMaterial, "fuel")
	b := NewBuilder("test_dep.m", "dep")
	for _, raw := range []string{"fuel", "fuel_1"} {
		v := 1.0
		if raw == "fuel_1" {
			v = 2
		}
		r := NewRecord(id, Source{Raw: raw}, map[string]Array{"volume": Scalar(v)}, nil)
		if err := b.Add(r); err != nil {
			t.Fatalf("Add(%s): %v", raw, err)
		}
	}
	r, err := b.Freeze(nil).Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	a, _ := r.Metric("volume")
	if diff := cmp.Diff([]float64{2}, a.Data()); diff != "" {
		t.Errorf("volume (-want, +got):\n%s", diff)
	}
}

func testContainer(t *testing.T) *Container {
	t.Helper()

	b := NewBuilder("test_dep.m", "dep")
	days := []float64{0, 5, 10}
	for _, iso := range []string{"U235", "Xe135"} {
		r, err := NewTimeRecord(ID(CategoryMaterial, "fuel", iso), Source{Raw: "fuel"}, []int{0, 1, 2}, days,
			map[string]Array{"adens": MustArray([]float64{3, 2, 1}, 3)}, nil)
		if err != nil {
			t.Fatalf("NewTimeRecord: %v", err)
		}
		if err := b.Add(r); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	for _, r := range []*Record{
		NewRecord(ID(CategoryMaterial, "fuel"), Source{Raw: "fuel"}, map[string]Array{"volume": Scalar(1.5)}, nil),
		NewRecord(ID(CategoryMaterial, "fuel2"), Source{Raw: "fuel2"}, map[string]Array{"volume": Scalar(2.5)}, nil),
		NewRecord(ID(CategoryMetadata, "days"), Source{Raw: "DAYS"}, map[string]Array{"value": MustArray(days)}, nil),
	} {
		if err := b.Add(r); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	return b.Freeze([]Warning{{Check: "unit-consistency", Message: "m"}})
}

func TestContainer_Get(t *testing.T) {
	t.Parallel()

	c := testContainer(t)
	if want, got := 5, c.Len(); want != got {
		t.Fatalf("Len; want: %d, got: %d", want, got)
	}

	// Every iterated key resolves.
	for id, r := range c.All() {
		got, err := c.Get(id)
		if err != nil {
			t.Fatalf("Get(%v): %v", id, err)
		}
		if got != r {
			t.Errorf("Get(%v): record differs from iteration", id)
		}
		if _, err := c.Lookup(id.String()); err != nil {
			t.Errorf("Lookup(%v): %v", id, err)
		}
	}

	expected := []string{
		"material:fuel",
		"material:fuel2",
		"material:fuel:U235",
		"material:fuel:Xe135",
		"metadata:days",
	}
	var keys []string
	for _, id := range c.Keys() {
		keys = append(keys, id.String())
	}
	if diff := cmp.Diff(expected, keys); diff != "" {
		t.Errorf("Keys (-want, +got):\n%s", diff)
	}
}

func TestContainer_notFound(t *testing.T) {
	t.Parallel()

	c := testContainer(t)
	tests := []struct {
		key      string
		expected []string
	}{
		{"material:fuel:u235", []string{"material:fuel:U235", "material:fuel2", "material:fuel"}},
		{"material:fuel:", []string{"material:fuel:U235", "material:fuel:Xe135", "material:fuel"}},
		{"material:fule", []string{"material:fuel", "material:fuel2", "material:fuel:U235"}},
		{"nothing", nil},
	}

	for _, test := range tests {
		t.Run(test.key, func(t *testing.T) {
			t.Parallel()

			_, err := c.Lookup(test.key)
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("Lookup: want %v, got %v", ErrNotFound, err)
			}
			var kerr *KeyNotFoundError
			if !errors.As(err, &kerr) {
				t.Fatalf("Lookup: want *KeyNotFoundError, got %T", err)
			}
			if diff := cmp.Diff(test.expected, kerr.Suggestions); diff != "" {
				t.Errorf("Suggestions (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestContainer_GetByMetric(t *testing.T) {
	t.Parallel()

	c := testContainer(t)

	got := c.GetByMetric("volume")
	if want := 2; len(got) != want {
		t.Fatalf("GetByMetric(volume): want %d entries, got %d", want, len(got))
	}
	if a := got[ID(CategoryMaterial, "fuel2")]; !a.Equal(Scalar(2.5)) {
		t.Errorf("fuel2 volume: %v", a)
	}

	missing := c.GetByMetric("does-not-exist")
	if missing == nil || len(missing) != 0 {
		t.Errorf("GetByMetric(absent): want empty map, got %v", missing)
	}
}

func TestContainer_TimeSeries(t *testing.T) {
	t.Parallel()

	c := testContainer(t)

	points, err := c.TimeSeries(ID(CategoryMaterial, "fuel", "U235"), "adens")
	if err != nil {
		t.Fatalf("TimeSeries: %v", err)
	}
	expected := []Point{
		{Step: 0, Time: 0, Values: []float64{3}},
		{Step: 1, Time: 5, Values: []float64{2}},
		{Step: 2, Time: 10, Values: []float64{1}},
	}
	if diff := cmp.Diff(expected, points); diff != "" {
		t.Fatalf("TimeSeries (-want, +got):\n%s", diff)
	}
	for i := 1; i < len(points); i++ {
		if points[i].Step <= points[i-1].Step {
			t.Errorf("steps not strictly increasing: %v", points)
		}
	}
	if want, got := 2.0, points[1].Value(); want != got {
		t.Errorf("Value; want: %v, got: %v", want, got)
	}

	_, err = c.TimeSeries(ID(CategoryMaterial, "fuel"), "volume")
	var nerr *NotTimeDependentError
	if !errors.As(err, &nerr) || !errors.Is(err, ErrNotTimeDependent) {
		t.Errorf("TimeSeries(static): want *NotTimeDependentError, got %v", err)
	}

	_, err = c.TimeSeries(ID(CategoryMaterial, "fuel", "U235"), "adns")
	var kerr *KeyNotFoundError
	if !errors.As(err, &kerr) {
		t.Fatalf("TimeSeries(bad metric): want *KeyNotFoundError, got %v", err)
	}
	if diff := cmp.Diff([]string{"adens"}, kerr.Suggestions); diff != "" {
		t.Errorf("Suggestions (-want, +got):\n%s", diff)
	}
}

func TestContainer_Select(t *testing.T) {
	t.Parallel()

	c := testContainer(t)
	got, err := c.Select(`^material:fuel:`)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	var keys []string
	for _, r := range got {
		keys = append(keys, r.ID().String())
	}
	if diff := cmp.Diff([]string{"material:fuel:U235", "material:fuel:Xe135"}, keys); diff != "" {
		t.Errorf("Select (-want, +got):\n%s", diff)
	}

	if _, err := c.Select("("); err == nil {
		t.Error("Select: expected error for invalid pattern")
	}
}

func TestContainer_Warnings(t *testing.T) {
	t.Parallel()

	c := testContainer(t)
	w := c.Warnings()
	if len(w) != 1 || w[0].Check != "unit-consistency" {
		t.Fatalf("Warnings: %v", w)
	}
	w[0].Check = "changed"
	if c.Warnings()[0].Check != "unit-consistency" {
		t.Error("Warnings: container was mutated through the returned slice")
	}
	if want, got := "test_dep.m", c.Path(); want != got {
		t.Errorf("Path; want: %q, got: %q", want, got)
	}
}

// TestContainer_concurrentReads runs queries from many goroutines; run with
// -race to detect unsynchronized writes.
func TestContainer_concurrentReads(t *testing.T) {
	t.Parallel()

	c := testContainer(t)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, id := range c.Keys() {
				if _, err := c.Get(id); err != nil {
					t.Errorf("Get(%v): %v", id, err)
				}
			}
			_ = c.GetByMetric("adens")
			_, _ = c.Lookup("material:nothing")
		}()
	}
	wg.Wait()
}
