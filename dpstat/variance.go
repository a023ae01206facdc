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

	"github.com/privstats/dp/budget"
	"github.com/privstats/dp/checks"
	"github.com/privstats/dp/noise"
	"github.com/privstats/dp/rand"
)

// BoundedVariance releases a differentially private variance of a bounded
// sample.
//
// Two noisy statistics are published per release: a mean of the clamped
// sample with sensitivity (upper-lower)/n, and a mean of squared deviations
// about the already released mean with sensitivity (upper-lower)²/n. The two
// sub-releases compose sequentially, each consuming half of Epsilon and half
// of Delta, so the total consumption is exactly the declared budget.
//
// The variance estimate is not clipped: small samples and strict budgets can
// yield negative releases, and clipping inside the mechanism would bias the
// estimate. Callers may clip to zero for display, which is free
// post-processing.
type BoundedVariance struct {
	budget budget.Budget
	lower  float64
	upper  float64
	noise  noise.Noise
}

// BoundedVarianceOptions contains the options necessary to initialize a BoundedVariance.
type BoundedVarianceOptions struct {
	Epsilon float64 // Privacy parameter ε. Required.
	Delta   float64 // Privacy parameter δ. Required with Gaussian noise, must be 0 with Laplace noise.
	// Lower and Upper bounds for clamping. Required; must be such that Lower < Upper.
	Lower, Upper float64
	// Noise added to both sub-releases. Defaults to the distribution mandated
	// by Delta, drawing its randomness from a secure source.
	Noise noise.Noise
}

// NewBoundedVariance returns a new BoundedVariance.
func NewBoundedVariance(opt *BoundedVarianceOptions) (*BoundedVariance, error) {
	if opt == nil {
		opt = &BoundedVarianceOptions{} // Prevents panicking due to a nil pointer dereference.
	}

	b := budget.Budget{Epsilon: opt.Epsilon, Delta: opt.Delta}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("NewBoundedVariance: %w", err)
	}

	lower, upper := opt.Lower, opt.Upper
	if err := checks.CheckBoundsFloat64(lower, upper); err != nil {
		return nil, fmt.Errorf("NewBoundedVariance: %w", err)
	}
	if err := checks.CheckBoundsNotEqual(lower, upper); err != nil {
		return nil, fmt.Errorf("NewBoundedVariance: %w", err)
	}

	n := opt.Noise
	if n == nil {
		n = noise.ToNoise(noise.ForDelta(opt.Delta), rand.Secure())
	}
	if err := checkDeltaForNoise(n, opt.Delta); err != nil {
		return nil, fmt.Errorf("NewBoundedVariance: %w", err)
	}

	return &BoundedVariance{
		budget: b,
		lower:  lower,
		upper:  upper,
		noise:  n,
	}, nil
}

// BoundedVarianceResult holds the noised mean and variance output by
// BoundedVariance.ResultWithMean.
type BoundedVarianceResult struct {
	Mean     float64
	Variance float64
}

// Result returns a differentially private estimate of the variance of sample.
func (bv *BoundedVariance) Result(sample []float64) (float64, error) {
	result, err := bv.ResultWithMean(sample)
	if err != nil {
		return 0, fmt.Errorf("couldn't compute dp variance: %w", err)
	}
	return result.Variance, nil
}

// ResultWithMean returns differentially private estimates of both the mean
// and the variance of sample. Both releases together consume the declared
// budget, so callers needing both statistics should prefer this method over
// separate BoundedMean and BoundedVariance releases.
//
// The returned mean is the first sub-release clamped to [lower, upper]; the
// returned variance is the second sub-release, unclipped.
func (bv *BoundedVariance) ResultWithMean(sample []float64) (BoundedVarianceResult, error) {
	nullResult := BoundedVarianceResult{}
	if err := checks.CheckSample(sample); err != nil {
		return nullResult, fmt.Errorf("BoundedVariance: %w", err)
	}
	clamped, err := clampToBounds(sample, bv.lower, bv.upper)
	if err != nil {
		return nullResult, fmt.Errorf("BoundedVariance: %w", err)
	}

	half, err := bv.budget.Split(2)
	if err != nil {
		return nullResult, fmt.Errorf("couldn't split the budget: %w", err)
	}
	n := float64(len(clamped))
	width := bv.upper - bv.lower

	noisedMean, err := bv.noise.AddNoise(sampleMean(clamped), width/n, half.Epsilon, half.Delta)
	if err != nil {
		return nullResult, fmt.Errorf("couldn't compute dp mean: %w", err)
	}
	// The squared deviations are taken about the released mean, clamped back
	// into the domain. The released mean is already protected, so centering
	// on it costs no additional budget, and clamping it is post-processing.
	center, err := checks.ClampFloat64(noisedMean, bv.lower, bv.upper)
	if err != nil {
		return nullResult, fmt.Errorf("couldn't clamp the mean: %w", err)
	}

	squaredDeviations := make([]float64, len(clamped))
	for i, v := range clamped {
		squaredDeviations[i] = (v - center) * (v - center)
	}
	noisedVariance, err := bv.noise.AddNoise(sampleMean(squaredDeviations), width*width/n, half.Epsilon, half.Delta)
	if err != nil {
		return nullResult, fmt.Errorf("couldn't compute dp variance: %w", err)
	}

	return BoundedVarianceResult{
		Mean:     center,
		Variance: noisedVariance,
	}, nil
}
