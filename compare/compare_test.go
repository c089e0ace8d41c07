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

package compare

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ianlewis/go-serpent/result"
)

func static(name string, metrics map[string][]float64) *result.Record {
	m := map[string]result.Array{}
	for k, v := range metrics {
		m[k] = result.MustArray(v)
	}
	return result.NewRecord(result.ID(result.CategoryResults, name), result.Source{}, m, nil)
}

func container(t *testing.T, records ...*result.Record) *result.Container {
	t.Helper()
	b := result.NewBuilder("test_res.m", "res")
	for _, r := range records {
		require.NoError(t, b.Add(r))
	}
	return b.Freeze(nil)
}

func TestTolerance_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultTolerance.Validate())
	require.NoError(t, Tolerance{Lower: 5, Upper: 5}.Validate())
	require.ErrorIs(t, Tolerance{Lower: -1, Upper: 5}.Validate(), ErrTolerance)
	require.ErrorIs(t, Tolerance{Upper: 5, Sigma: -1}.Validate(), ErrTolerance)
	require.ErrorIs(t, Tolerance{Lower: 10, Upper: 5}.Validate(), ErrTolerance)

	_, err := Containers(container(t), container(t), Tolerance{Lower: 2, Upper: 1})
	require.ErrorIs(t, err, ErrTolerance)
}

func TestContainers_levels(t *testing.T) {
	t.Parallel()

	tol := Tolerance{Lower: 1, Upper: 10}
	tests := []struct {
		name     string
		b        float64
		expected Status
		diff     float64
	}{
		{"identical", 100, Identical, 0},
		{"low", 100.5, AcceptableLow, 0.5},
		{"high", 105, AcceptableHigh, 5},
		{"outside", 120, Outside, 20},
		{"at upper", 110, Outside, 10},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			a := container(t, static("X", map[string][]float64{"value": {100, 0}}))
			b := container(t, static("X", map[string][]float64{"value": {test.b, 0}}))
			report, err := Containers(a, b, tol)
			require.NoError(t, err)
			require.Len(t, report.Results, 1)

			got := report.Results[0]
			require.Equal(t, test.expected, got.Status)
			require.InDelta(t, test.diff, got.MaxDiff, 1e-9)
			require.Equal(t, test.expected.OK(), report.OK())
		})
	}
}

func TestContainers_keys(t *testing.T) {
	t.Parallel()

	a := container(t,
		static("A", map[string][]float64{"value": {1}}),
		static("B", map[string][]float64{"value": {1, 2}, "extra": {3}}),
	)
	b := container(t,
		static("B", map[string][]float64{"value": {1, 2, 3}}),
		static("C", map[string][]float64{"value": {1}}),
	)

	report, err := Containers(a, b, DefaultTolerance)
	require.NoError(t, err)
	require.False(t, report.OK())
	require.Equal(t, []result.Identifier{result.ID(result.CategoryResults, "A")}, report.OnlyA)
	require.Equal(t, []result.Identifier{result.ID(result.CategoryResults, "C")}, report.OnlyB)

	require.Len(t, report.Results, 2)
	require.Equal(t, "extra", report.Results[0].Metric)
	require.Equal(t, MissingMetric, report.Results[0].Status)
	require.Equal(t, "value", report.Results[1].Metric)
	require.Equal(t, ShapeMismatch, report.Results[1].Status)
	require.Len(t, report.Failures(), 2)
}

func TestContainers_sigma(t *testing.T) {
	t.Parallel()

	tol := Tolerance{Lower: 1, Upper: 2, Sigma: 2}
	a := container(t, static("K", map[string][]float64{"mean": {1}, "relerr": {0.01}}))

	// 3% apart but within 2 sigma.
	near := container(t, static("K", map[string][]float64{"mean": {1.03}, "relerr": {0.01}}))
	report, err := Containers(a, near, tol)
	require.NoError(t, err)
	require.Equal(t, AcceptableHigh, report.Results[0].Status)
	require.True(t, report.OK())

	far := container(t, static("K", map[string][]float64{"mean": {1.5}, "relerr": {0.01}}))
	report, err = Containers(a, far, tol)
	require.NoError(t, err)
	require.Equal(t, "mean", report.Results[0].Metric)
	require.Equal(t, NoOverlap, report.Results[0].Status)
	require.False(t, report.OK())

	// Without sigma the difference alone decides.
	tol.Sigma = 0
	report, err = Containers(a, near, tol)
	require.NoError(t, err)
	require.Equal(t, Outside, report.Results[0].Status)
}

func TestRecords_steps(t *testing.T) {
	t.Parallel()

	id := result.ID(result.CategoryResults, "K")
	a, err := result.NewTimeRecord(id, result.Source{}, []int{1, 2}, nil,
		map[string]result.Array{"value": result.MustArray([]float64{1, 2}, 2, 1)}, nil)
	require.NoError(t, err)
	b, err := result.NewTimeRecord(id, result.Source{}, []int{1, 3}, nil,
		map[string]result.Array{"value": result.MustArray([]float64{1, 2}, 2, 1)}, nil)
	require.NoError(t, err)

	got := Records(a, b, DefaultTolerance)
	require.Len(t, got, 1)
	require.Equal(t, StepMismatch, got[0].Status)

	got = Records(a, a, DefaultTolerance)
	require.Len(t, got, 1)
	require.Equal(t, Identical, got[0].Status)
}
