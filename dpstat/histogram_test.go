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
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/grd/stat"

	"github.com/privstats/dp/checks"
	"github.com/privstats/dp/noise"
	"github.com/privstats/dp/rand"
)

func TestNewHistogramArgumentChecks(t *testing.T) {
	for _, tc := range []struct {
		desc    string
		opt     *HistogramOptions
		wantErr bool
	}{
		{"valid pure options",
			&HistogramOptions{Epsilon: ln3, NumBins: 10, Lower: 0, Upper: 1},
			false},
		{"valid approximate options",
			&HistogramOptions{Epsilon: ln3, Delta: tenfive, NumBins: 10, Lower: 0, Upper: 1},
			false},
		{"single bin",
			&HistogramOptions{Epsilon: ln3, NumBins: 1, Lower: 0, Upper: 1},
			false},
		{"nil options",
			nil,
			true},
		{"zero bins",
			&HistogramOptions{Epsilon: ln3, NumBins: 0, Lower: 0, Upper: 1},
			true},
		{"negative bins",
			&HistogramOptions{Epsilon: ln3, NumBins: -3, Lower: 0, Upper: 1},
			true},
		{"zero epsilon",
			&HistogramOptions{Epsilon: 0, NumBins: 10, Lower: 0, Upper: 1},
			true},
		{"delta of 1",
			&HistogramOptions{Epsilon: ln3, Delta: 1, NumBins: 10, Lower: 0, Upper: 1},
			true},
		{"equal bounds",
			&HistogramOptions{Epsilon: ln3, NumBins: 10, Lower: 1, Upper: 1},
			true},
		{"explicit Laplace noise with non-zero delta",
			&HistogramOptions{Epsilon: ln3, Delta: tenfive, NumBins: 10, Lower: 0, Upper: 1, Noise: noise.Laplace(rand.Seeded(1))},
			true},
	} {
		if _, err := NewHistogram(tc.opt); (err != nil) != tc.wantErr {
			t.Errorf("NewHistogram: when %s for err got %v, want %t", tc.desc, err, tc.wantErr)
		}
	}
}

func TestHistogramNoNoiseResult(t *testing.T) {
	for _, tc := range []struct {
		desc         string
		numBins      int
		lower, upper float64
		sample       []float64
		wantCounts   []float64
		wantEdges    []float64
	}{
		{"entries spread over four bins",
			4, 0, 1,
			[]float64{0.1, 0.1, 0.3, 0.6, 0.9},
			[]float64{2, 1, 1, 1},
			[]float64{0, 0.25, 0.5, 0.75, 1}},
		{"the upper bound lands in the final bin",
			2, 0, 1,
			[]float64{1, 1, 0.5},
			[]float64{0, 3},
			[]float64{0, 0.5, 1}},
		{"entries outside the bounds are clamped into the edge bins",
			2, 0, 1,
			[]float64{-3, -1, 2},
			[]float64{2, 1},
			[]float64{0, 0.5, 1}},
		{"single bin counts everything",
			1, 0, 1,
			[]float64{0.2, 0.4, 0.8},
			[]float64{3},
			[]float64{0, 1}},
		{"negative domain",
			2, -1, 0,
			[]float64{-0.9, -0.1},
			[]float64{1, 1},
			[]float64{-1, -0.5, 0}},
	} {
		h, err := NewHistogram(&HistogramOptions{
			Epsilon: ln3,
			NumBins: tc.numBins,
			Lower:   tc.lower,
			Upper:   tc.upper,
			Noise:   noNoise{},
		})
		if err != nil {
			t.Fatalf("NewHistogram: when %s got err %v", tc.desc, err)
		}
		got, err := h.Result(tc.sample)
		if err != nil {
			t.Fatalf("Result: when %s got err %v", tc.desc, err)
		}
		if diff := cmp.Diff(tc.wantCounts, got.Counts, cmpopts.EquateApprox(0, tenten)); diff != "" {
			t.Errorf("Result: when %s counts diverged (-want +got):\n%s", tc.desc, diff)
		}
		if diff := cmp.Diff(tc.wantEdges, got.Edges, cmpopts.EquateApprox(0, tenten)); diff != "" {
			t.Errorf("Result: when %s edges diverged (-want +got):\n%s", tc.desc, diff)
		}
	}
}

func TestHistogramInputChecks(t *testing.T) {
	h, err := NewHistogram(&HistogramOptions{Epsilon: ln3, NumBins: 4, Lower: 0, Upper: 1, Noise: noNoise{}})
	if err != nil {
		t.Fatalf("NewHistogram: got err %v", err)
	}
	if _, err := h.Result(nil); !errors.Is(err, checks.ErrInvalidInput) {
		t.Errorf("Result: for an empty sample got err %v, want ErrInvalidInput", err)
	}
	if _, err := h.Result([]float64{0.5, math.NaN()}); !errors.Is(err, checks.ErrInvalidInput) {
		t.Errorf("Result: for a sample containing NaN got err %v, want ErrInvalidInput", err)
	}
}

// TestHistogramBudgetIsNotExceeded verifies the documented composition rule:
// the bin counts are released as a single vector mechanism with per-entry
// sensitivity 1 under the full declared budget, so every bin must be noised
// with sensitivity 1, the full ε and the full δ.
func TestHistogramBudgetIsNotExceeded(t *testing.T) {
	rec := &recordingNoise{}
	h, err := NewHistogram(&HistogramOptions{
		Epsilon: 1,
		Delta:   tenfive,
		NumBins: 5,
		Lower:   0,
		Upper:   1,
		Noise:   rec,
	})
	if err != nil {
		t.Fatalf("NewHistogram: got err %v", err)
	}
	if _, err := h.Result([]float64{0.1, 0.5, 0.9}); err != nil {
		t.Fatalf("Result: got err %v", err)
	}

	if len(rec.calls) != 5 {
		t.Fatalf("got %d noised bins, want 5", len(rec.calls))
	}
	for i, call := range rec.calls {
		if !ApproxEqual(call.sensitivity, 1) {
			t.Errorf("bin %d: got sensitivity %f, want 1", i, call.sensitivity)
		}
		if !ApproxEqual(call.epsilon, 1) {
			t.Errorf("bin %d: got epsilon %f, want the full budget of 1", i, call.epsilon)
		}
		if !ApproxEqual(call.delta, tenfive) {
			t.Errorf("bin %d: got delta %e, want the full budget of %e", i, call.delta, tenfive)
		}
	}
}

// TestHistogramLaplaceStatistics checks that each noisy count is Laplace
// distributed with scale 1/ε around the true count.
func TestHistogramLaplaceStatistics(t *testing.T) {
	const numberOfSamples = 50000
	h, err := NewHistogram(&HistogramOptions{
		Epsilon: 1,
		NumBins: 2,
		Lower:   0,
		Upper:   1,
		Noise:   noise.Laplace(rand.Seeded(42)),
	})
	if err != nil {
		t.Fatalf("NewHistogram: got err %v", err)
	}
	sample := []float64{0.1, 0.2, 0.3, 0.8}

	b := noise.LaplaceScale(1, 1)
	wantVariance := 2 * b * b
	firstBin := make(stat.Float64Slice, numberOfSamples)
	for i := 0; i < numberOfSamples; i++ {
		res, err := h.Result(sample)
		if err != nil {
			t.Fatalf("Result: got err %v", err)
		}
		firstBin[i] = res.Counts[0]
	}
	countMean, countVariance := stat.Mean(firstBin), stat.Variance(firstBin)

	// Tolerances at the 99.9995% quantiles of the anticipated Gaussian
	// distributions of the sample statistics of Laplace draws, so each check
	// falsely rejects with a probability of 10⁻⁵.
	meanErrorTolerance := 4.41717 * math.Sqrt(wantVariance/float64(numberOfSamples))
	varianceErrorTolerance := 4.41717 * math.Sqrt(5.0) * wantVariance / math.Sqrt(float64(numberOfSamples))

	if math.Abs(countMean-3) > meanErrorTolerance {
		t.Errorf("got mean of first bin = %f, want 3", countMean)
	}
	if math.Abs(countVariance-wantVariance) > varianceErrorTolerance {
		t.Errorf("got variance of first bin = %f, want %f", countVariance, wantVariance)
	}
}

func TestRawHistogram(t *testing.T) {
	got, err := RawHistogram([]float64{0.1, 0.1, 0.3, 0.6, 0.9}, 4, 0, 1)
	if err != nil {
		t.Fatalf("RawHistogram: got err %v", err)
	}
	if diff := cmp.Diff([]float64{2, 1, 1, 1}, got.Counts); diff != "" {
		t.Errorf("RawHistogram: counts diverged (-want +got):\n%s", diff)
	}
	if _, err := RawHistogram(nil, 4, 0, 1); !errors.Is(err, checks.ErrInvalidInput) {
		t.Errorf("RawHistogram: for an empty sample got err %v, want ErrInvalidInput", err)
	}
	if _, err := RawHistogram([]float64{0.5}, 0, 0, 1); !errors.Is(err, checks.ErrInvalidParameter) {
		t.Errorf("RawHistogram: for zero bins got err %v, want ErrInvalidParameter", err)
	}
}

func TestSanitizeHistogram(t *testing.T) {
	got, err := SanitizeHistogram([]float64{0.1, 0.5, 0.9}, 10, ln3, 0)
	if err != nil {
		t.Fatalf("SanitizeHistogram: got err %v", err)
	}
	if len(got.Counts) != 10 {
		t.Errorf("SanitizeHistogram: got %d counts, want 10", len(got.Counts))
	}
	if len(got.Edges) != 11 {
		t.Errorf("SanitizeHistogram: got %d edges, want 11", len(got.Edges))
	}
	if _, err := SanitizeHistogram(nil, 10, ln3, 0); err == nil {
		t.Errorf("SanitizeHistogram: for an empty sample got nil error")
	}
	if _, err := SanitizeHistogram([]float64{0.5}, 0, ln3, 0); err == nil {
		t.Errorf("SanitizeHistogram: for zero bins got nil error")
	}
}
