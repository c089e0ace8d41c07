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

// Isotopes are the isotopes of the Depletion fixture.
var Isotopes = []string{"U235", "Xe135", "total"}

// Days are the burnup steps of the Depletion fixture.
var Days = []float64{0, 5, 10}

// Adens returns the atom densities written for a material of the Depletion
// fixture, scaled by f.
func Adens(f float64) [][]float64 {
	return [][]float64{
		{f * 1e-2, f * 9e-3, f * 8e-3},
		{0, f * 1e-8, f * 2e-8},
		{f * 1e-2, f * 9.00001e-3, f * 8.00002e-3},
	}
}

// Depletion returns a depletion file with the given materials. Each material
// gets VOLUME, ADENS and MDENS blocks.
func Depletion(materials ...string) *File {
	f := NewFile().
		Comment("Material compositions (3 isotopes, 3 burnup points)").
		Raw("\n").
		Labels("NAMES", Isotopes...).
		Column("ZAI", 922350, 541350, 666).
		Vector("DAYS", Days...).
		Vector("BU", 0, 0.5, 1)
	for i, m := range materials {
		scale := float64(i + 1)
		f.Raw("\n").
			Comment("Material " + m).
			VectorUnit("MAT_"+m+"_VOLUME", "cm3", scale, scale, scale).
			Matrix("MAT_"+m+"_ADENS", "atoms/b-cm", Adens(scale)).
			Matrix("MAT_"+m+"_MDENS", "g/cm3", Adens(2*scale))
	}
	if len(materials) > 0 {
		f.Raw("\n").
			Comment("Total").
			Matrix("TOT_ADENS", "atoms/b-cm", Adens(float64(len(materials))))
	}
	return f
}

// Detector returns a detector file with an energy-binned flux detector of
// two energy groups and two cells and its energy grid.
func Detector() *File {
	return NewFile().
		Matrix("DETflux", "", [][]float64{
			{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 10, 0.01},
			{2, 2, 1, 1, 1, 1, 1, 1, 1, 1, 20, 0.02},
			{3, 1, 1, 2, 1, 1, 1, 1, 1, 1, 30, 0.03},
			{4, 2, 1, 2, 1, 1, 1, 1, 1, 1, 40, 0.04},
		}).
		Matrix("DETfluxE", "", [][]float64{
			{1e-11, 6.25e-7, 3e-9},
			{6.25e-7, 20, 10},
		}).
		Matrix("DETtotal", "", [][]float64{
			{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 100, 0.001},
		})
}

// Results returns a results file with the given number of burnup steps.
// ABS_KEFF at step n is 1+n/10 with uncertainty n/1000.
func Results(steps int) *File {
	f := NewFile().Comment("Results")
	for n := 1; n <= steps; n++ {
		f.Step(n).
			IndexedText("TITLE", "Untitled").
			Indexed("BURN_STEP", float64(n-1)).
			Indexed("ABS_KEFF", 1+float64(n)/10, float64(n)/1000).
			Indexed("INF_FLX", 1, 0.01, 2, 0.02)
	}
	return f
}
