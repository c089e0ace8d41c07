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

package serpent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ianlewis/go-serpent/internal/testutil"
	"github.com/ianlewis/go-serpent/naming"
	"github.com/ianlewis/go-serpent/result"
	"github.com/ianlewis/go-serpent/token"
	"github.com/ianlewis/go-serpent/validate"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func keyStrings(c *result.Container) []string {
	var out []string
	for _, id := range c.Keys() {
		out = append(out, id.String())
	}
	return out
}

func TestOpen(t *testing.T) {
	t.Parallel()

	files := []struct {
		name    string
		data    *testutil.File
		variant string
		key     string
	}{
		{"case_dep.m", testutil.Depletion("fuel"), "dep", "material:fuel:U235"},
		{"case_det0.m", testutil.Detector(), "det", "detector:flux"},
		{"case_res.m", testutil.Results(2), "res", "results:ABS_KEFF"},
	}
	compressions := map[string]testutil.Compression{
		"plain":   testutil.None,
		"gzip":    testutil.Gzip,
		"dictzip": testutil.DictZip,
	}

	for _, f := range files {
		for cname, c := range compressions {
			t.Run(f.variant+"/"+cname, func(t *testing.T) {
				t.Parallel()

				path := testutil.WriteFile(t, t.TempDir(), f.name, f.data.Bytes(), c)
				got, err := Open(path, nil)
				if err != nil {
					t.Fatalf("Open: %v", err)
				}
				if want, got := f.variant, got.Variant(); want != got {
					t.Errorf("Variant; want: %q, got: %q", want, got)
				}
				if want, got := path, got.Path(); want != got {
					t.Errorf("Path; want: %q, got: %q", want, got)
				}
				if _, err := got.Lookup(f.key); err != nil {
					t.Errorf("Lookup(%q): %v", f.key, err)
				}
			})
		}
	}
}

// TestOpen_deterministic tests that parsing the same file twice gives equal
// containers.
func TestOpen_deterministic(t *testing.T) {
	t.Parallel()

	path := testutil.WriteFile(t, t.TempDir(), "case_dep.m", testutil.Depletion("fuel", "clad").Bytes(), testutil.None)
	first, err := OpenDepletion(path, nil)
	require.NoError(t, err)
	second, err := OpenDepletion(path, nil)
	require.NoError(t, err)

	require.Equal(t, keyStrings(first), keyStrings(second))
	for id, r := range first.All() {
		other, err := second.Get(id)
		require.NoError(t, err)
		require.True(t, r.Equal(other), "record %v differs", id)
	}
}

// TestContainer_keys tests that every listed key resolves and that absent
// metrics give an empty map.
func TestContainer_keys(t *testing.T) {
	t.Parallel()

	path := testutil.WriteFile(t, t.TempDir(), "case_dep.m", testutil.Depletion("fuel").Bytes(), testutil.None)
	c, err := OpenDepletion(path, nil)
	require.NoError(t, err)

	require.Equal(t, c.Len(), len(c.Keys()))
	for _, id := range c.Keys() {
		_, err := c.Get(id)
		require.NoError(t, err, "key %v", id)
		_, err = c.Lookup(id.String())
		require.NoError(t, err, "key %v", id)
	}

	m := c.GetByMetric("no_such_metric")
	require.NotNil(t, m)
	require.Empty(t, m)
	require.Len(t, c.GetByMetric("adens"), 6)

	_, err = c.Lookup("material:fule:U235")
	var kerr *result.KeyNotFoundError
	require.ErrorAs(t, err, &kerr)
	require.NotEmpty(t, kerr.Suggestions)
}

// TestParse_declaredLength tests that a payload one value shorter or longer
// than declared is rejected.
// TestParse_payloadValues tests that every payload value reaches the record
// and that bare words in a payload are rejected.
func TestParse_payloadValues(t *testing.T) {
	t.Parallel()

	c, err := Parse(strings.NewReader("X (idx, [1: 3]) = [ 1.0 NaN 2.0 ];\n"), "case_res.m", Results, nil)
	require.NoError(t, err)
	r, err := c.Lookup("results:X")
	require.NoError(t, err)
	v, ok := r.Metric("value")
	require.True(t, ok)
	require.Equal(t, 3, v.Len())
	require.Empty(t, c.Warnings())

	_, err = Parse(strings.NewReader("X = [ 1.0 missing 2.0 ];\n"), "case_res.m", Results, nil)
	require.ErrorIs(t, err, token.ErrGrammar)
}

func TestParse_declaredLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"short", "X (idx, [1: 3]) = [ 1 2 ];\n"},
		{"long", "X (idx, [1: 3]) = [ 1 2 3 4 ];\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			c, err := Parse(strings.NewReader(test.input), "case_res.m", Results, nil)
			if c != nil {
				t.Errorf("Parse: unexpected container")
			}
			var verr *validate.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Parse: want *ValidationError, got %v", err)
			}
			if want, got := validate.DeclaredLength, verr.Check; want != got {
				t.Errorf("Check; want: %q, got: %q", want, got)
			}
			if want, got := 1, verr.Line; want != got {
				t.Errorf("Line; want: %d, got: %d", want, got)
			}
			if !strings.Contains(err.Error(), "case_res.m:1:") {
				t.Errorf("Error: missing position: %q", err.Error())
			}
		})
	}

	c, err := Parse(strings.NewReader("X (idx, [1: 3]) = [ 1 2 3 ];\n"), "case_res.m", Results, nil)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
}

func TestOpen_materials(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("distinct", func(t *testing.T) {
		t.Parallel()

		path := testutil.WriteFile(t, dir, "two_dep.m", testutil.Depletion("fuel", "fuel2").Bytes(), testutil.None)
		c, err := Open(path, nil)
		require.NoError(t, err)

		fuel, err := c.Lookup("material:fuel")
		require.NoError(t, err)
		fuel2, err := c.Lookup("material:fuel2")
		require.NoError(t, err)
		v1, _ := fuel.Metric("volume")
		v2, _ := fuel2.Metric("volume")
		require.Equal(t, []float64{1, 1, 1}, v1.Data())
		require.Equal(t, []float64{2, 2, 2}, v2.Data())
	})

	t.Run("duplicate", func(t *testing.T) {
		t.Parallel()

		data := testutil.Depletion("fuel").String() + "MAT_fuel_VOLUME = [ 7 7 7 ];\n"
		path := testutil.WriteFile(t, dir, "dup_dep.m", []byte(data), testutil.None)
		c, err := Open(path, nil)
		require.NoError(t, err)

		first, err := c.Lookup("material:fuel")
		require.NoError(t, err)
		second, err := c.Lookup("material:fuel#2")
		require.NoError(t, err)
		v1, _ := first.Metric("volume")
		v2, _ := second.Metric("volume")
		require.Equal(t, []float64{1, 1, 1}, v1.Data())
		require.Equal(t, []float64{7, 7, 7}, v2.Data())
	})

	t.Run("suffix", func(t *testing.T) {
		t.Parallel()

		data := testutil.Depletion("fuel").String() + "MAT_fuel_1_VOLUME = [ 7 7 7 ];\n"
		path := testutil.WriteFile(t, dir, "suffix_dep.m", []byte(data), testutil.None)

		// Lenient naming folds fuel_1 into fuel and the later block wins.
		c, err := Open(path, nil)
		require.NoError(t, err)
		fuel, err := c.Lookup("material:fuel")
		require.NoError(t, err)
		v, _ := fuel.Metric("volume")
		require.Equal(t, []float64{7, 7, 7}, v.Data())

		_, err = Open(path, &Options{Names: naming.Default(naming.Strict)})
		var verr *validate.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, validate.NameCollision, verr.Check)

		// A policy that only names other checks keeps strict collisions fatal.
		_, err = Open(path, &Options{
			Names:  naming.Default(naming.Strict),
			Policy: validate.Policy{validate.UnitConsistency: result.Fatal},
		})
		require.ErrorAs(t, err, &verr)
		require.Equal(t, validate.NameCollision, verr.Check)
	})
}

func TestOpenResults_timeSeries(t *testing.T) {
	t.Parallel()

	path := testutil.WriteFile(t, t.TempDir(), "case_res.m", testutil.Results(3).Bytes(), testutil.None)
	c, err := OpenResults(path, nil)
	require.NoError(t, err)

	points, err := c.TimeSeries(result.ID(result.CategoryResults, "BURN_STEP"), "value")
	require.NoError(t, err)
	var steps []int
	var values []float64
	for _, p := range points {
		steps = append(steps, p.Step)
		values = append(values, p.Value())
	}
	require.Equal(t, []int{1, 2, 3}, steps)
	require.Equal(t, []float64{0, 1, 2}, values)

	_, err = c.TimeSeries(result.ID(result.CategoryResults, "BURN_STEP"), "mean")
	require.ErrorIs(t, err, result.ErrNotFound)

	dpath := testutil.WriteFile(t, t.TempDir(), "case_dep.m", testutil.Depletion("fuel").Bytes(), testutil.None)
	d, err := OpenDepletion(dpath, nil)
	require.NoError(t, err)
	_, err = d.TimeSeries(result.ID(result.CategoryMetadata, "days"), "value")
	var terr *result.NotTimeDependentError
	require.ErrorAs(t, err, &terr)
}

// TestParse_warnings tests that advisory issues are attached to the
// container and logged.
func TestParse_warnings(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	opts := &Options{Logger: zap.New(core)}

	input := "EMPTY = [ ];\nX = [ 1 2 ];\n"
	c, err := Parse(strings.NewReader(input), "case_res.m", Results, opts)
	require.NoError(t, err)

	warnings := c.Warnings()
	require.Len(t, warnings, 1)
	require.Equal(t, validate.EmptyPayload, warnings[0].Check)
	require.Equal(t, 1, warnings[0].Line)

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, validate.EmptyPayload, entries[0].ContextMap()["check"])

	// The same issue can be made fatal.
	opts.Policy = validate.DefaultPolicy(naming.Lenient).With(validate.EmptyPayload, result.Fatal)
	_, err = Parse(strings.NewReader(input), "case_res.m", Results, opts)
	require.ErrorIs(t, err, validate.ErrInvalid)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	tests := []struct {
		path    string
		variant string
	}{
		{"/runs/pwr_dep.m", "dep"},
		{"/runs/pwr_det0.m", "det"},
		{"/runs/pwr_det.m", "det"},
		{"/runs/pwr_det12.m.gz", "det"},
		{"/runs/pwr_res.m.dz", "res"},
		{"/runs/pwr_res.mat", ""},
		{"/runs/pwr.m", ""},
	}
	for _, test := range tests {
		v, err := reg.Match(test.path)
		if test.variant == "" {
			if !errors.Is(err, ErrUnknownVariant) {
				t.Errorf("Match(%q): want %v, got %v", test.path, ErrUnknownVariant, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Match(%q): %v", test.path, err)
			continue
		}
		if want, got := test.variant, v.Name; want != got {
			t.Errorf("Match(%q); want: %q, got: %q", test.path, want, got)
		}
	}

	if _, err := NewRegistry(Depletion, Depletion); err == nil {
		t.Error("NewRegistry: expected error for duplicate variant")
	}
	if v, ok := reg.Lookup("res"); !ok || v != Results {
		t.Errorf("Lookup(res): %v, %v", v, ok)
	}
	if diff := cmp.Diff([]string{"dep", "det", "res"}, names(reg.Variants())); diff != "" {
		t.Errorf("Variants (-want, +got):\n%s", diff)
	}
}

func names(vs []*Variant) []string {
	var out []string
	for _, v := range vs {
		out = append(out, v.Name)
	}
	return out
}

func TestOpen_unknownVariant(t *testing.T) {
	t.Parallel()

	path := testutil.WriteFile(t, t.TempDir(), "notes.txt", []byte("X = 1;\n"), testutil.None)
	_, err := Open(path, nil)
	require.ErrorIs(t, err, ErrUnknownVariant)

	// Custom registries claim other names.
	txt := &Variant{
		Name:    "txt",
		Pattern: regexp.MustCompile(`\.txt$`),
		New:     Results.New,
	}
	reg, err := NewRegistry(txt)
	require.NoError(t, err)
	c, err := Open(path, &Options{Registry: reg})
	require.NoError(t, err)
	require.Equal(t, "txt", c.Variant())
	require.Equal(t, []string{"results:X"}, keyStrings(c))
}

func TestOpenAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFile(t, dir, "a_dep.m", testutil.Depletion("fuel").Bytes(), testutil.None)
	testutil.WriteFile(t, dir, "b_det0.m", testutil.Detector().Bytes(), testutil.None)
	testutil.WriteFile(t, dir, "bad_res.m", []byte("X = [ 1 2\n"), testutil.None)
	testutil.WriteFile(t, dir, "c_res.m", testutil.Results(2).Bytes(), testutil.Gzip)
	testutil.WriteFile(t, dir, "notes.txt", []byte("not serpent"), testutil.None)
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	testutil.WriteFile(t, sub, "d_res.m", testutil.Results(1).Bytes(), testutil.DictZip)

	containers, errs := OpenAll(context.Background(), dir, &Options{Concurrency: 2})

	var paths []string
	for _, c := range containers {
		rel, err := filepath.Rel(dir, c.Path())
		require.NoError(t, err)
		paths = append(paths, filepath.ToSlash(rel))
	}
	expected := []string{"a_dep.m", "b_det0.m", "c_res.m.gz", "sub/d_res.m.dz"}
	if diff := cmp.Diff(expected, paths); diff != "" {
		t.Errorf("paths (-want, +got):\n%s", diff)
	}
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "bad_res.m")
}

func TestOpenAll_canceled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFile(t, dir, "a_dep.m", testutil.Depletion("fuel").Bytes(), testutil.None)
	testutil.WriteFile(t, dir, "b_res.m", testutil.Results(1).Bytes(), testutil.None)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	containers, errs := OpenAll(ctx, dir, nil)
	require.Empty(t, containers)
	require.Len(t, errs, 2)
	for _, err := range errs {
		require.ErrorIs(t, err, context.Canceled)
	}
}
