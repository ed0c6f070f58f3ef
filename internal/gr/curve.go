// Package gr builds cumulative magnitude-frequency curves and fits the
// Gutenberg-Richter law log10(N) = a - b*M to a selected part of them.
package gr

import (
	"errors"
	"fmt"
	"math"
)

// Bins is an evenly spaced magnitude domain, both ends inclusive.
type Bins struct {
	Start float64 `json:"start"`
	Stop  float64 `json:"stop"`
	Step  float64 `json:"step"`
}

// DefaultBins covers magnitudes 0 to 4.4 in 0.1 steps.
var DefaultBins = Bins{Start: 0, Stop: 4.4, Step: 0.1}

// MaxBins bounds the number of bins a domain may produce.
const MaxBins = 10000

// Validate rejects non-positive steps, reversed or non-finite domains and
// domains with more than MaxBins bins.
func (b Bins) Validate() error {
	if b.Step <= 0 || math.IsNaN(b.Step) || math.IsInf(b.Step, 0) {
		return errors.New("magnitude bin step must be positive")
	}
	if math.IsNaN(b.Start) || math.IsInf(b.Start, 0) || math.IsNaN(b.Stop) || math.IsInf(b.Stop, 0) {
		return errors.New("magnitude bin start and stop must be finite")
	}
	if b.Stop < b.Start {
		return errors.New("magnitude bin stop must not be below start")
	}
	if (b.Stop-b.Start)/b.Step+1 > MaxBins {
		return fmt.Errorf("magnitude bins exceed %d", MaxBins)
	}
	return nil
}

// Values returns the bin magnitudes. Each value is rounded to 1e-9 so that
// 30 * 0.1 compares equal to a reported magnitude of 3.0.
func (b Bins) Values() []float64 {
	if b.Validate() != nil {
		return nil
	}
	n := int(math.Floor((b.Stop-b.Start)/b.Step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = roundBin(b.Start + float64(i)*b.Step)
	}
	return out
}

func roundBin(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}

// CurvePoint is one bin of the cumulative curve. Defined is false when no
// event exceeds the bin, in which case LogCount is 0 and must not be used.
type CurvePoint struct {
	Magnitude float64 `json:"x"`
	LogCount  float64 `json:"y"`
	Count     int     `json:"count"`
	Defined   bool    `json:"defined"`
}

// Cumulative counts, for every bin m, the magnitudes strictly greater than m
// and takes log10 of the count. An empty catalog yields the single point (0, 0).
func Cumulative(magnitudes []float64, bins Bins) []CurvePoint {
	if len(magnitudes) == 0 {
		return []CurvePoint{{Magnitude: 0, LogCount: 0, Defined: true}}
	}

	values := bins.Values()
	curve := make([]CurvePoint, len(values))
	for i, m := range values {
		n := 0
		for _, mag := range magnitudes {
			if mag > m {
				n++
			}
		}
		curve[i] = CurvePoint{Magnitude: m, Count: n}
		if n > 0 {
			curve[i].LogCount = math.Log10(float64(n))
			curve[i].Defined = true
		}
	}
	return curve
}
