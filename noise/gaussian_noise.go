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

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/privstats/dp/checks"
	"github.com/privstats/dp/rand"
)

type gaussian struct {
	src rand.Source
}

// Gaussian returns a Noise instance that adds Gaussian noise to its input,
// drawing its randomness from src. Its methods fail when called with a zero
// delta, since the Gaussian mechanism provides (ε,δ)-differential privacy
// only for positive δ.
func Gaussian(src rand.Source) Noise {
	return gaussian{src: src}
}

// AddNoise adds Gaussian noise to the specified float64 x so that the output
// is (ε,δ)-differentially private given the sensitivity of the released
// statistic.
func (gauss gaussian) AddNoise(x, sensitivity, epsilon, delta float64) (float64, error) {
	if err := checkArgsGaussian(sensitivity, epsilon, delta); err != nil {
		return 0, err
	}
	return x + gauss.src.Normal()*GaussianSigma(sensitivity, epsilon, delta), nil
}

// Scale returns the standard deviation σ of the Gaussian distribution
// calibrated to the given sensitivity, epsilon and delta.
func (gaussian) Scale(sensitivity, epsilon, delta float64) (float64, error) {
	if err := checkArgsGaussian(sensitivity, epsilon, delta); err != nil {
		return 0, err
	}
	return GaussianSigma(sensitivity, epsilon, delta), nil
}

// ConfidenceInterval computes a confidence interval that contains the raw
// value x from which float64 noisedX is computed with a probability of
// 1 - alpha based on the specified Gaussian noise parameters.
func (gaussian) ConfidenceInterval(noisedX, sensitivity, epsilon, delta, alpha float64) (ConfidenceInterval, error) {
	if err := checks.CheckAlpha(alpha); err != nil {
		return ConfidenceInterval{}, err
	}
	if err := checkArgsGaussian(sensitivity, epsilon, delta); err != nil {
		return ConfidenceInterval{}, err
	}
	return computeConfidenceIntervalGaussian(noisedX, GaussianSigma(sensitivity, epsilon, delta), alpha), nil
}

func (gaussian) String() string {
	return "Gaussian Noise"
}

// GaussianSigma computes the standard deviation σ of Gaussian noise required
// for achieving (ε,δ)-differential privacy on releases with the given
// sensitivity:
//
//	σ = sensitivity * sqrt(2 * ln(1.25/δ)) / ε
//
// This is the classic calibration from Dwork and Roth's "The Algorithmic
// Foundations of Differential Privacy", Theorem A.1. It requires ε ≤ 1 for
// the privacy proof to hold exactly; larger ε values are accepted and yield
// a conservative amount of noise.
func GaussianSigma(sensitivity, epsilon, delta float64) float64 {
	return sensitivity * math.Sqrt(2*math.Log(1.25/delta)) / epsilon
}

func checkArgsGaussian(sensitivity, epsilon, delta float64) error {
	if err := checks.CheckSensitivity(sensitivity); err != nil {
		return err
	}
	if err := checks.CheckEpsilonStrict(epsilon); err != nil {
		return err
	}
	return checks.CheckDeltaStrict(delta)
}

// computeConfidenceIntervalGaussian computes a confidence interval that contains the raw value x
// from which float64 noisedX is computed with a probability equal to 1 - alpha with the given sigma.
func computeConfidenceIntervalGaussian(noisedX, sigma, alpha float64) ConfidenceInterval {
	// The (alpha/2)-quantile is derived rather than the (1 - alpha/2)-quantile
	// because alpha tends to be small and alpha/2 is more accurately
	// representable as a float64 than 1 - alpha/2. By symmetry of the Gaussian
	// distribution, -z is the (1 - alpha/2)-quantile.
	z := distuv.Normal{Mu: 0, Sigma: sigma}.Quantile(alpha / 2)
	return ConfidenceInterval{LowerBound: noisedX + z, UpperBound: noisedX - z}
}
