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

// Package dpstat implements differentially private releases of basic sample
// statistics: bounded mean, bounded variance, histogram and randomized
// response.
//
// Every mechanism is parameterized by a privacy budget (ε,δ) and, where the
// statistic requires it, by the clamping bounds of its input domain. A budget
// with δ = 0 requests pure ε-differential privacy and Laplace noise; δ > 0
// requests approximate (ε,δ)-differential privacy and Gaussian noise.
//
// Mechanisms hold no state between calls: every call to a Result method is an
// independent release drawing fresh noise and consuming the full declared
// budget. Tracking the budget spent across repeated releases is the caller's
// responsibility. Instances are safe for concurrent use whenever their random
// source is; the default secure source is.
package dpstat

import (
	"fmt"

	"github.com/privstats/dp/budget"
	"github.com/privstats/dp/checks"
	"github.com/privstats/dp/noise"
	"github.com/privstats/dp/rand"
)

// BoundedMean releases a differentially private mean of a bounded sample.
//
// Sample values are clamped to [lower, upper] before aggregation, so a single
// entry moves the raw mean by at most (upper-lower)/n. The release adds noise
// of exactly that sensitivity, calibrated to the declared budget, to the raw
// mean of the clamped sample. The released value is not post-processed; it
// can fall outside [lower, upper], and callers may clamp it for display.
type BoundedMean struct {
	budget budget.Budget
	lower  float64
	upper  float64
	noise  noise.Noise
}

// BoundedMeanOptions contains the options necessary to initialize a BoundedMean.
type BoundedMeanOptions struct {
	Epsilon float64 // Privacy parameter ε. Required.
	Delta   float64 // Privacy parameter δ. Required with Gaussian noise, must be 0 with Laplace noise.
	// Lower and Upper bounds for clamping. Required; must be such that Lower < Upper.
	Lower, Upper float64
	// Noise added to the mean. Defaults to the distribution mandated by Delta,
	// drawing its randomness from a secure source.
	Noise noise.Noise
}

// NewBoundedMean returns a new BoundedMean.
func NewBoundedMean(opt *BoundedMeanOptions) (*BoundedMean, error) {
	if opt == nil {
		opt = &BoundedMeanOptions{} // Prevents panicking due to a nil pointer dereference.
	}

	b := budget.Budget{Epsilon: opt.Epsilon, Delta: opt.Delta}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("NewBoundedMean: %w", err)
	}

	lower, upper := opt.Lower, opt.Upper
	if err := checks.CheckBoundsFloat64(lower, upper); err != nil {
		return nil, fmt.Errorf("NewBoundedMean: %w", err)
	}
	if err := checks.CheckBoundsNotEqual(lower, upper); err != nil {
		return nil, fmt.Errorf("NewBoundedMean: %w", err)
	}

	n := opt.Noise
	if n == nil {
		n = noise.ToNoise(noise.ForDelta(opt.Delta), rand.Secure())
	}
	if err := checkDeltaForNoise(n, opt.Delta); err != nil {
		return nil, fmt.Errorf("NewBoundedMean: %w", err)
	}

	return &BoundedMean{
		budget: b,
		lower:  lower,
		upper:  upper,
		noise:  n,
	}, nil
}

// Result returns a differentially private estimate of the mean of sample.
// One entry changes the raw mean by at most (upper-lower)/len(sample), which
// is the sensitivity the noise is calibrated for.
func (bm *BoundedMean) Result(sample []float64) (float64, error) {
	if err := checks.CheckSample(sample); err != nil {
		return 0, fmt.Errorf("BoundedMean: %w", err)
	}
	clamped, err := clampToBounds(sample, bm.lower, bm.upper)
	if err != nil {
		return 0, fmt.Errorf("BoundedMean: %w", err)
	}

	sensitivity := (bm.upper - bm.lower) / float64(len(clamped))
	noised, err := bm.noise.AddNoise(sampleMean(clamped), sensitivity, bm.budget.Epsilon, bm.budget.Delta)
	if err != nil {
		return 0, fmt.Errorf("couldn't compute dp mean: %w", err)
	}
	return noised, nil
}
