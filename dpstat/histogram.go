//
// Copyright 2025 Google LLC
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
//

package dpstat

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/privstats/dp/budget"
	"github.com/privstats/dp/checks"
	"github.com/privstats/dp/noise"
	"github.com/privstats/dp/rand"
)

// Histogram releases differentially private counts of a bounded sample over
// equally sized bins.
//
// Sample values are clamped to [lower, upper] and assigned to one of NumBins
// equally sized bins; a value equal to the upper bound lands in the final
// bin. Adding or removing one entry changes exactly one bin count by one, so
// the count vector has unit L1 and L2 sensitivity. Every bin is therefore
// noised independently with sensitivity 1 under the full declared budget; no
// splitting of the budget across bins is needed.
//
// Noisy counts are released as float64 and are neither rounded nor clipped:
// bins with a true count of zero frequently come out slightly negative.
// Rounding and clipping are free post-processing steps left to callers.
type Histogram struct {
	budget  budget.Budget
	numBins int
	lower   float64
	upper   float64
	noise   noise.Noise
}

// HistogramOptions contains the options necessary to initialize a Histogram.
type HistogramOptions struct {
	Epsilon float64 // Privacy parameter ε. Required.
	Delta   float64 // Privacy parameter δ. Required with Gaussian noise, must be 0 with Laplace noise.
	NumBins int     // Number of equally sized bins. Required; must be at least 1.
	// Lower and Upper bounds for clamping. Required; must be such that Lower < Upper.
	Lower, Upper float64
	// Noise added to each bin count. Defaults to the distribution mandated by
	// Delta, drawing its randomness from a secure source.
	Noise noise.Noise
}

// NewHistogram returns a new Histogram.
func NewHistogram(opt *HistogramOptions) (*Histogram, error) {
	if opt == nil {
		opt = &HistogramOptions{} // Prevents panicking due to a nil pointer dereference.
	}

	b := budget.Budget{Epsilon: opt.Epsilon, Delta: opt.Delta}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("NewHistogram: %w", err)
	}
	if err := checks.CheckNumBins(opt.NumBins); err != nil {
		return nil, fmt.Errorf("NewHistogram: %w", err)
	}

	lower, upper := opt.Lower, opt.Upper
	if err := checks.CheckBoundsFloat64(lower, upper); err != nil {
		return nil, fmt.Errorf("NewHistogram: %w", err)
	}
	if err := checks.CheckBoundsNotEqual(lower, upper); err != nil {
		return nil, fmt.Errorf("NewHistogram: %w", err)
	}

	n := opt.Noise
	if n == nil {
		n = noise.ToNoise(noise.ForDelta(opt.Delta), rand.Secure())
	}
	if err := checkDeltaForNoise(n, opt.Delta); err != nil {
		return nil, fmt.Errorf("NewHistogram: %w", err)
	}

	return &Histogram{
		budget:  b,
		numBins: opt.NumBins,
		lower:   lower,
		upper:   upper,
		noise:   n,
	}, nil
}

// HistogramResult holds the noised per-bin counts and the NumBins+1 bin edges
// of a Histogram release. Bin i covers [Edges[i], Edges[i+1]), except the
// final bin, which also includes its upper edge.
type HistogramResult struct {
	Counts []float64
	Edges  []float64
}

// Result returns differentially private counts of sample over the histogram's
// bins, together with the bin edges. The edges depend only on the histogram's
// parameters, never on the sample, so releasing them costs no budget.
func (h *Histogram) Result(sample []float64) (HistogramResult, error) {
	nullResult := HistogramResult{}
	if err := checks.CheckSample(sample); err != nil {
		return nullResult, fmt.Errorf("Histogram: %w", err)
	}
	clamped, err := clampToBounds(sample, h.lower, h.upper)
	if err != nil {
		return nullResult, fmt.Errorf("Histogram: %w", err)
	}

	counts := binCounts(clamped, h.numBins, h.lower, h.upper)
	for i, c := range counts {
		noised, err := h.noise.AddNoise(c, 1, h.budget.Epsilon, h.budget.Delta)
		if err != nil {
			return nullResult, fmt.Errorf("couldn't compute dp count of bin %d: %w", i, err)
		}
		counts[i] = noised
	}

	edges := floats.Span(make([]float64, h.numBins+1), h.lower, h.upper)
	return HistogramResult{Counts: counts, Edges: edges}, nil
}

// binCounts assigns each value of the clamped sample to one of numBins
// equally sized bins of [lower, upper]. A value equal to the upper bound
// lands in the final bin.
func binCounts(clamped []float64, numBins int, lower, upper float64) []float64 {
	counts := make([]float64, numBins)
	width := upper - lower
	for _, v := range clamped {
		bin := int(float64(numBins) * (v - lower) / width)
		if bin >= numBins { // the upper bound belongs to the final bin
			bin = numBins - 1
		}
		counts[bin]++
	}
	return counts
}

// RawHistogram computes the true, non-private counts of sample over numBins
// equally sized bins of [lower, upper], clamping the sample the same way a
// Histogram release does. It exists for before/after comparisons against a
// noisy release and offers no privacy protection.
func RawHistogram(sample []float64, numBins int, lower, upper float64) (HistogramResult, error) {
	nullResult := HistogramResult{}
	if err := checks.CheckSample(sample); err != nil {
		return nullResult, fmt.Errorf("RawHistogram: %w", err)
	}
	if err := checks.CheckNumBins(numBins); err != nil {
		return nullResult, fmt.Errorf("RawHistogram: %w", err)
	}
	if err := checks.CheckBoundsFloat64(lower, upper); err != nil {
		return nullResult, fmt.Errorf("RawHistogram: %w", err)
	}
	if err := checks.CheckBoundsNotEqual(lower, upper); err != nil {
		return nullResult, fmt.Errorf("RawHistogram: %w", err)
	}
	clamped, err := clampToBounds(sample, lower, upper)
	if err != nil {
		return nullResult, fmt.Errorf("RawHistogram: %w", err)
	}
	return HistogramResult{
		Counts: binCounts(clamped, numBins, lower, upper),
		Edges:  floats.Span(make([]float64, numBins+1), lower, upper),
	}, nil
}
