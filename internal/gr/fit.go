package gr

import (
	"fmt"
	"math"
)

// LinePoint is the fitted line evaluated at a selected magnitude.
type LinePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Result is a least-squares fit over a curve selection. When Defined is
// false the fit is singular or empty and A, B and Line carry no meaning.
type Result struct {
	A       float64     `json:"a"`
	B       float64     `json:"b"`
	N       int         `json:"n"`
	Line    []LinePoint `json:"line"`
	Defined bool        `json:"defined"`
}

// Label renders the a/b pair for display, or "" when the fit is undefined.
func (r Result) Label() string {
	if !r.Defined || !finite(r.A) || !finite(r.B) {
		return ""
	}
	return fmt.Sprintf("a-value = %.2f, b-value = %.2f", r.A, r.B)
}

// Fit runs ordinary least squares of LogCount against Magnitude over the
// selected indices. Duplicate and out-of-range indices are ignored, as are
// undefined curve points. The b-value is the negated slope.
func Fit(curve []CurvePoint, selection []int) Result {
	seen := make(map[int]bool, len(selection))
	xs := make([]float64, 0, len(selection))
	ys := make([]float64, 0, len(selection))
	for _, i := range selection {
		if i < 0 || i >= len(curve) || seen[i] {
			continue
		}
		seen[i] = true
		if !curve[i].Defined {
			continue
		}
		xs = append(xs, curve[i].Magnitude)
		ys = append(ys, curve[i].LogCount)
	}

	n := float64(len(xs))
	if n == 0 {
		return Result{}
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
	}

	// Identical magnitudes leave a rounding residue instead of an exact zero.
	den := n*sumX2 - sumX*sumX
	if math.Abs(den) <= 1e-12*n*sumX2 || den == 0 {
		return Result{N: len(xs)}
	}
	slope := (n*sumXY - sumX*sumY) / den
	intercept := (sumY - slope*sumX) / n
	if !finite(slope) || !finite(intercept) {
		return Result{N: len(xs)}
	}

	line := make([]LinePoint, len(xs))
	for i, x := range xs {
		line[i] = LinePoint{X: x, Y: slope*x + intercept}
	}

	return Result{
		A:       intercept,
		B:       -slope,
		N:       len(xs),
		Line:    line,
		Defined: true,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
