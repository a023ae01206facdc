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

	log "github.com/golang/glog"

	"github.com/privstats/dp/rand"
)

// This file contains the one-call convenience surface over the mechanism
// types. The conveniences assume the unit domain [0,1] and a secure random
// source; use the option-struct constructors for other bounds, an explicit
// noise distribution or a seeded source.

// SanitizeMean returns an (epsilon, delta)-differentially private estimate of
// the mean of sample, with sample values clamped to [0,1].
func SanitizeMean(sample []float64, epsilon, delta float64) (float64, error) {
	bm, err := NewBoundedMean(&BoundedMeanOptions{Epsilon: epsilon, Delta: delta, Lower: 0, Upper: 1})
	if err != nil {
		return 0, fmt.Errorf("SanitizeMean: %w", err)
	}
	return bm.Result(sample)
}

// SanitizeVariance returns an (epsilon, delta)-differentially private
// estimate of the variance of sample, with sample values clamped to [0,1].
func SanitizeVariance(sample []float64, epsilon, delta float64) (float64, error) {
	bv, err := NewBoundedVariance(&BoundedVarianceOptions{Epsilon: epsilon, Delta: delta, Lower: 0, Upper: 1})
	if err != nil {
		return 0, fmt.Errorf("SanitizeVariance: %w", err)
	}
	return bv.Result(sample)
}

// SanitizeHistogram returns (epsilon, delta)-differentially private counts of
// sample over numBins equally sized bins of [0,1], together with the bin
// edges.
func SanitizeHistogram(sample []float64, numBins int, epsilon, delta float64) (HistogramResult, error) {
	h, err := NewHistogram(&HistogramOptions{Epsilon: epsilon, Delta: delta, NumBins: numBins, Lower: 0, Upper: 1})
	if err != nil {
		return HistogramResult{}, fmt.Errorf("SanitizeHistogram: %w", err)
	}
	return h.Result(sample)
}

// RandomizeResponse returns a perturbed version of the respondent's true
// answer under protocol p, flipping secure coins. An unrecognised protocol
// yields an unbiased coin flip, which carries no information about truth.
func RandomizeResponse(truth bool, p Protocol) bool {
	rr, err := NewRandomizedResponse(&RandomizedResponseOptions{Protocol: p})
	if err != nil {
		log.Warningf("RandomizeResponse: %v, falling back to an unbiased coin flip", err)
		return rand.Secure().Boolean()
	}
	return rr.Randomize(truth)
}
