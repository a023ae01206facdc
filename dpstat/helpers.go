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

	"github.com/privstats/dp/checks"
	"github.com/privstats/dp/noise"
)

// checkDeltaForNoise verifies that δ matches the noise distribution: Laplace
// noise admits no δ, Gaussian noise requires a positive one. Unrecognised
// noise, typically a test stub, accepts any δ within [0, 1).
func checkDeltaForNoise(n noise.Noise, delta float64) error {
	switch noise.ToKind(n) {
	case noise.LaplaceNoise:
		return checks.CheckNoDelta(delta)
	case noise.GaussianNoise:
		return checks.CheckDeltaStrict(delta)
	default:
		return checks.CheckDelta(delta)
	}
}

// clampToBounds returns a copy of sample with every entry clamped to
// [lower, upper].
func clampToBounds(sample []float64, lower, upper float64) ([]float64, error) {
	clamped := make([]float64, len(sample))
	for i, v := range sample {
		c, err := checks.ClampFloat64(v, lower, upper)
		if err != nil {
			return nil, fmt.Errorf("couldn't clamp input value %v: %w", v, err)
		}
		clamped[i] = c
	}
	return clamped, nil
}

func sampleMean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
