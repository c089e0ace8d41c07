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

// Package compare compares the records of two parsed SERPENT files.
//
// Metrics present in both files are compared element-wise. The largest
// relative difference, in percent of the first file's value, is classified
// against a [Tolerance]. Metrics that carry a relative uncertainty are also
// checked for overlapping confidence intervals.
package compare

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/ianlewis/go-serpent/result"
)

// lowerLimit is the magnitude below which values are not used as divisors
// and differences are treated as zero.
const lowerLimit = 1e-8

// ErrTolerance indicates an invalid tolerance.
var ErrTolerance = errors.New("invalid tolerance")

// Uncertainties maps a metric to the metric holding its relative
// uncertainty.
var Uncertainties = map[string]string{
	"mean":    "relerr",
	"tallies": "errors",
}

// Tolerance holds the acceptance limits of a comparison.
type Tolerance struct {
	// Lower is the relative difference in percent at or below which values
	// are considered close.
	Lower float64 `yaml:"lower"`

	// Upper is the relative difference in percent at or above which values
	// are considered different.
	Upper float64 `yaml:"upper"`

	// Sigma is the width of the confidence intervals, in standard
	// deviations, used for metrics with uncertainties. Zero disables the
	// interval check.
	Sigma int `yaml:"sigma"`
}

// DefaultTolerance is the default tolerance.
var DefaultTolerance = Tolerance{
	Lower: 0,
	Upper: 10,
	Sigma: 2,
}

// Validate returns an error if t is not a valid tolerance.
func (t Tolerance) Validate() error {
	switch {
	case t.Lower < 0 || t.Upper < 0 || t.Sigma < 0:
		return fmt.Errorf("%w: negative value in %+v", ErrTolerance, t)
	case t.Upper < t.Lower:
		return fmt.Errorf("%w: upper %g is less than lower %g", ErrTolerance, t.Upper, t.Lower)
	}
	return nil
}

// Status is the outcome of comparing one metric.
type Status int

const (
	// Identical means the values differ by less than 1e-8 percent.
	Identical Status = iota

	// AcceptableLow means the difference is at most the lower tolerance.
	AcceptableLow

	// AcceptableHigh means the difference is between the tolerances.
	AcceptableHigh

	// Outside means the difference is at least the upper tolerance.
	Outside

	// NoOverlap means the confidence intervals of some values do not
	// overlap.
	NoOverlap

	// ShapeMismatch means the arrays have different shapes.
	ShapeMismatch

	// StepMismatch means the records cover different steps.
	StepMismatch

	// MissingMetric means only one of the records defines the metric.
	MissingMetric
)

var statusNames = map[Status]string{
	Identical:      "identical",
	AcceptableLow:  "acceptable (low)",
	AcceptableHigh: "acceptable (high)",
	Outside:        "outside tolerance",
	NoOverlap:      "no overlap",
	ShapeMismatch:  "shape mismatch",
	StepMismatch:   "step mismatch",
	MissingMetric:  "missing metric",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// OK reports whether the status is within tolerance.
func (s Status) OK() bool {
	return s <= AcceptableHigh
}

// Result is the comparison of one metric of one record.
type Result struct {
	ID     result.Identifier
	Metric string
	Status Status

	// MaxDiff is the largest relative difference in percent.
	MaxDiff float64

	// Detail describes mismatches.
	Detail string
}

// Report is the comparison of two containers.
type Report struct {
	Tolerance Tolerance

	// OnlyA and OnlyB hold the identifiers present in one container only.
	OnlyA []result.Identifier
	OnlyB []result.Identifier

	// Results holds one entry per compared metric in key order.
	Results []Result
}

// OK reports whether the containers hold the same keys and every metric is
// within tolerance.
func (r *Report) OK() bool {
	if len(r.OnlyA) > 0 || len(r.OnlyB) > 0 {
		return false
	}
	for _, res := range r.Results {
		if !res.Status.OK() {
			return false
		}
	}
	return true
}

// Failures returns the results that are not within tolerance.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Status.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Containers compares every record of a with the record of b with the same
// identifier.
func Containers(a, b *result.Container, tol Tolerance) (*Report, error) {
	if err := tol.Validate(); err != nil {
		return nil, err
	}
	report := &Report{Tolerance: tol}
	for id, ra := range a.All() {
		rb, err := b.Get(id)
		if err != nil {
			report.OnlyA = append(report.OnlyA, id)
			continue
		}
		report.Results = append(report.Results, Records(ra, rb, tol)...)
	}
	for id := range b.All() {
		if _, err := a.Get(id); err != nil {
			report.OnlyB = append(report.OnlyB, id)
		}
	}
	return report, nil
}

// Records compares the metrics of two records. The tolerance is not
// validated.
func Records(a, b *result.Record, tol Tolerance) []Result {
	id := a.ID()
	if a.TimeDependent() != b.TimeDependent() || !slices.Equal(a.Steps(), b.Steps()) {
		return []Result{{
			ID:     id,
			Status: StepMismatch,
			Detail: fmt.Sprintf("steps %v and %v", a.Steps(), b.Steps()),
		}}
	}

	var out []Result
	names := a.Metrics()
	for _, m := range b.Metrics() {
		if !slices.Contains(names, m) {
			names = append(names, m)
		}
	}
	slices.Sort(names)
	for _, m := range names {
		va, okA := a.Metric(m)
		vb, okB := b.Metric(m)
		if !okA || !okB {
			out = append(out, Result{ID: id, Metric: m, Status: MissingMetric})
			continue
		}
		if !slices.Equal(va.Shape(), vb.Shape()) {
			out = append(out, Result{
				ID:     id,
				Metric: m,
				Status: ShapeMismatch,
				Detail: fmt.Sprintf("shapes %v and %v", va.Shape(), vb.Shape()),
			})
			continue
		}

		res := Result{ID: id, Metric: m}
		res.MaxDiff = maxDiff(va.Data(), vb.Data())
		res.Status = classify(res.MaxDiff, tol)

		if unc, ok := Uncertainties[m]; ok && tol.Sigma > 0 {
			ua, okA := a.Metric(unc)
			ub, okB := b.Metric(unc)
			if okA && okB && slices.Equal(ua.Shape(), va.Shape()) && slices.Equal(ub.Shape(), vb.Shape()) {
				if n := disjoint(va.Data(), ua.Data(), vb.Data(), ub.Data(), tol.Sigma); n > 0 {
					res.Status = NoOverlap
					res.Detail = fmt.Sprintf("%d of %d values outside %d sigma", n, va.Len(), tol.Sigma)
				} else if !res.Status.OK() {
					// Overlapping intervals pass regardless of the difference.
					res.Status = AcceptableHigh
				}
			}
		}
		out = append(out, res)
	}
	return out
}

// maxDiff returns the largest relative difference in percent. Differences
// are relative to a where |a| is above the lower limit and absolute
// elsewhere.
func maxDiff(a, b []float64) float64 {
	var m float64
	for i := range a {
		d := math.Abs(a[i]-b[i]) * 100
		if math.Abs(a[i]) > lowerLimit {
			d /= math.Abs(a[i])
		}
		m = max(m, d)
	}
	return m
}

func classify(d float64, tol Tolerance) Status {
	switch {
	case d < lowerLimit:
		return Identical
	case d <= tol.Lower:
		return AcceptableLow
	case d >= tol.Upper:
		return Outside
	default:
		return AcceptableHigh
	}
}

// disjoint returns the number of positions whose sigma-wide confidence
// intervals do not overlap. Uncertainties are relative.
func disjoint(ma, ra, mb, rb []float64, sigma int) int {
	s := float64(sigma)
	n := 0
	for i := range ma {
		wa := s * math.Abs(ma[i]*ra[i])
		wb := s * math.Abs(mb[i]*rb[i])
		if math.Abs(ma[i]-mb[i]) > wa+wb {
			n++
		}
	}
	return n
}
