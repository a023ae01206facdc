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

// Package noise contains methods to generate and add noise to data.
package noise

import (
	log "github.com/golang/glog"

	"github.com/privstats/dp/rand"
)

// Kind is an enum type. Its values are the supported noise distribution types
// for differential privacy operations.
type Kind int

// Noise distributions used to achieve Differential Privacy.
const (
	GaussianNoise Kind = iota
	LaplaceNoise
	Unrecognised
)

// ToNoise converts a Kind into a Noise instance drawing its randomness from src.
func ToNoise(k Kind, src rand.Source) Noise {
	switch k {
	case GaussianNoise:
		return Gaussian(src)
	case LaplaceNoise:
		return Laplace(src)
	case Unrecognised:
		log.Warningf("ToNoise: Unrecognised noise specified, returning nil")
	default:
		log.Warningf("ToNoise: unknown kind (%v) specified, returning nil", k)
	}
	return nil
}

// ToKind converts a Noise instance into a Kind.
func ToKind(n Noise) Kind {
	switch n.(type) {
	case laplace:
		return LaplaceNoise
	case gaussian:
		return GaussianNoise
	case nil:
		log.Warningf("ToKind: nil noise specified, returning Unrecognised")
	default:
		log.Warningf("ToKind: unknown Noise (%v) specified, returning Unrecognised", n)
	}
	return Unrecognised
}

// ForDelta returns the Kind mandated by the privacy parameter δ: Laplace noise
// provides pure ε-differential privacy and is used when δ is 0, Gaussian noise
// provides (ε,δ)-differential privacy and is used when δ is positive.
func ForDelta(delta float64) Kind {
	if delta == 0 {
		return LaplaceNoise
	}
	return GaussianNoise
}

// ConfidenceInterval holds the lower and upper bounds of an interval that
// contains the raw value of a noised release with some level of confidence.
type ConfidenceInterval struct {
	LowerBound, UpperBound float64
}

// Noise is an interface for primitives that add noise to data to make it
// differentially private.
type Noise interface {
	// AddNoise adds noise to the specified float64 x so that the output is
	// (ε,δ)-differentially private given the sensitivity of the released
	// statistic, i.e. the maximum that the statistic can change when a single
	// entry of the underlying sample is replaced.
	AddNoise(x, sensitivity, epsilon, delta float64) (float64, error)

	// Scale returns the scale parameter of the noise distribution calibrated
	// to the given sensitivity and privacy parameters: the Laplace scale b for
	// Laplace noise and the standard deviation σ for Gaussian noise.
	Scale(sensitivity, epsilon, delta float64) (float64, error)

	// ConfidenceInterval computes an interval that contains the raw value x
	// from which noisedX was computed with a probability of 1 - alpha, based
	// on the specified noise parameters.
	ConfidenceInterval(noisedX, sensitivity, epsilon, delta, alpha float64) (ConfidenceInterval, error)
}
