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

package noise

import (
	"math"

	"github.com/privstats/dp/checks"
	"github.com/privstats/dp/rand"
)

type laplace struct {
	src rand.Source
}

// Laplace returns a Noise instance that adds Laplace noise to its input,
// drawing its randomness from src. Its methods fail when called with a
// non-zero delta, since the Laplace mechanism provides pure ε-differential
// privacy.
func Laplace(src rand.Source) Noise {
	return laplace{src: src}
}

// AddNoise adds Laplace noise to the specified float64 x so that the output is
// ε-differentially private given the sensitivity of the released statistic.
func (lap laplace) AddNoise(x, sensitivity, epsilon, delta float64) (float64, error) {
	if err := checkArgsLaplace(sensitivity, epsilon, delta); err != nil {
		return 0, err
	}
	return x + sampleLaplace(lap.src, LaplaceScale(sensitivity, epsilon)), nil
}

// Scale returns the scale parameter b of the Laplace distribution calibrated
// to the given sensitivity and epsilon.
func (laplace) Scale(sensitivity, epsilon, delta float64) (float64, error) {
	if err := checkArgsLaplace(sensitivity, epsilon, delta); err != nil {
		return 0, err
	}
	return LaplaceScale(sensitivity, epsilon), nil
}

// ConfidenceInterval computes a confidence interval that contains the raw
// value x from which float64 noisedX is computed with a probability of
// 1 - alpha based on the specified Laplace noise parameters.
func (laplace) ConfidenceInterval(noisedX, sensitivity, epsilon, delta, alpha float64) (ConfidenceInterval, error) {
	if err := checks.CheckAlpha(alpha); err != nil {
		return ConfidenceInterval{}, err
	}
	if err := checkArgsLaplace(sensitivity, epsilon, delta); err != nil {
		return ConfidenceInterval{}, err
	}
	return computeConfidenceIntervalLaplace(noisedX, LaplaceScale(sensitivity, epsilon), alpha), nil
}

func (laplace) String() string {
	return "Laplace Noise"
}

// LaplaceScale computes the scale parameter b of the Laplace noise
// distribution required by the Laplace mechanism for achieving
// ε-differential privacy on releases with the given sensitivity.
func LaplaceScale(sensitivity, epsilon float64) float64 {
	return sensitivity / epsilon
}

func checkArgsLaplace(sensitivity, epsilon, delta float64) error {
	if err := checks.CheckSensitivity(sensitivity); err != nil {
		return err
	}
	if err := checks.CheckEpsilonStrict(epsilon); err != nil {
		return err
	}
	return checks.CheckNoDelta(delta)
}

// sampleLaplace draws a sample from a Laplace distribution with mean 0 and
// the given scale. The sample is generated as the difference of two
// exponential draws, which is distributed Laplace(0, scale) and keeps both
// logs finite since Uniform never returns 0.
func sampleLaplace(src rand.Source, scale float64) float64 {
	return scale * (math.Log(src.Uniform()) - math.Log(src.Uniform()))
}

// computeConfidenceIntervalLaplace computes a confidence interval that contains the raw value x from which
// float64 noisedX is computed with a probability equal to 1 - alpha with the given scale.
func computeConfidenceIntervalLaplace(noisedX, scale, alpha float64) ConfidenceInterval {
	z := inverseCDFLaplace(scale, alpha/2)
	// Because of the symmetry of the Laplace distribution,
	// -z corresponds to the (1 - alpha/2)-quantile of the distribution,
	// meaning that the interval [z, -z] contains 1-alpha of the probability mass.
	// Deriving the (1 - alpha/2)-quantile from the (alpha/2)-quantile and not vice versa is a
	// deliberate choice. The reason is that alpha tends to be very small.
	// Consequently, alpha/2 is more accurately representable as a float64 than 1 - alpha/2,
	// facilitating numerical computations.
	return ConfidenceInterval{LowerBound: noisedX + z, UpperBound: noisedX - z}
}

// inverseCDFLaplace computes the quantile z satisfying Pr[Y <= z] = p for a random variable Y
// that is Laplace distributed with the specified scale where mean is zero.
func inverseCDFLaplace(scale, p float64) float64 {
	if p < 0.5 {
		return scale * math.Log(2*p)
	}
	return -scale * math.Log(2*(1-p))
}
