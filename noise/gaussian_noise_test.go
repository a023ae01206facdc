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
	"testing"

	"github.com/grd/stat"
	"gonum.org/v1/gonum/floats"

	"github.com/privstats/dp/rand"
)

func TestGaussianStatistics(t *testing.T) {
	const numberOfSamples = 125000
	for _, tc := range []struct {
		sensitivity, epsilon, delta, mean float64
	}{
		{
			sensitivity: 1.0,
			epsilon:     ln3,
			delta:       1e-10,
			mean:        0.0,
		},
		{
			sensitivity: 1.0,
			epsilon:     ln3,
			delta:       1e-10,
			mean:        45941223.02107,
		},
		{
			sensitivity: 2.0,
			epsilon:     2.0 * ln3,
			delta:       1e-10,
			mean:        0.0,
		},
		{
			sensitivity: 1.0,
			epsilon:     ln3,
			delta:       1e-5,
			mean:        0.0,
		},
	} {
		sigma := GaussianSigma(tc.sensitivity, tc.epsilon, tc.delta)
		wantVariance := sigma * sigma
		noisedSamples := make(stat.Float64Slice, numberOfSamples)
		for i := 0; i < numberOfSamples; i++ {
			sample, err := gauss.AddNoise(tc.mean, tc.sensitivity, tc.epsilon, tc.delta)
			if err != nil {
				t.Fatalf("Couldn't noise samples: %v", err)
			}
			noisedSamples[i] = sample
		}
		sampleMean, sampleVariance := stat.Mean(noisedSamples), stat.Variance(noisedSamples)
		// Assuming that the Gaussian samples have a mean of 0 and a variance of sigma²,
		// sampleMean is approximately Gaussian distributed with a mean of 0 and standard
		// deviation of sigma / sqrt(numberOfSamples).
		//
		// The meanErrorTolerance is set to the 99.9995% quantile of the anticipated distribution. Thus,
		// the test falsely rejects with a probability of 10⁻⁵.
		meanErrorTolerance := 4.41717 * math.Sqrt(wantVariance/float64(numberOfSamples))
		// Assuming that the Gaussian samples have a variance of sigma², sampleVariance is
		// approximately Gaussian distributed with a mean of sigma² and a standard deviation
		// of sqrt(2) * sigma² / sqrt(numberOfSamples).
		//
		// The varianceErrorTolerance is set to the 99.9995% quantile of the anticipated distribution. Thus,
		// the test falsely rejects with a probability of 10⁻⁵.
		varianceErrorTolerance := 4.41717 * math.Sqrt2 * wantVariance / math.Sqrt(float64(numberOfSamples))

		if !nearEqual(sampleMean, tc.mean, meanErrorTolerance) {
			t.Errorf("got mean = %f, want %f (parameters %+v)", sampleMean, tc.mean, tc)
		}
		if !nearEqual(sampleVariance, wantVariance, varianceErrorTolerance) {
			t.Errorf("got variance = %f, want %f (parameters %+v)", sampleVariance, wantVariance, tc)
		}
	}
}

func TestAddNoiseGaussianArgumentChecks(t *testing.T) {
	for _, tc := range []struct {
		desc                        string
		sensitivity, epsilon, delta float64
		wantErr                     bool
	}{
		{"valid arguments",
			1, ln3, 1e-10,
			false},
		{"zero sensitivity",
			0, ln3, 1e-10,
			true},
		{"negative sensitivity",
			-1, ln3, 1e-10,
			true},
		{"zero epsilon",
			1, 0, 1e-10,
			true},
		{"negative epsilon",
			1, -1, 1e-10,
			true},
		{"zero delta",
			1, ln3, 0,
			true},
		{"delta of 1",
			1, ln3, 1,
			true},
		{"negative delta",
			1, ln3, -1e-10,
			true},
	} {
		if _, err := gauss.AddNoise(0, tc.sensitivity, tc.epsilon, tc.delta); (err != nil) != tc.wantErr {
			t.Errorf("AddNoise: when %s for err got %v, want %t", tc.desc, err, tc.wantErr)
		}
		if _, err := gauss.Scale(tc.sensitivity, tc.epsilon, tc.delta); (err != nil) != tc.wantErr {
			t.Errorf("Scale: when %s for err got %v, want %t", tc.desc, err, tc.wantErr)
		}
	}
}

func TestGaussianSigma(t *testing.T) {
	for _, tc := range []struct {
		desc                        string
		sensitivity, epsilon, delta float64
		want                        float64
	}{
		// With delta = 1.25/e², ln(1.25/delta) is exactly 2, so sigma reduces
		// to 2 * sensitivity / epsilon.
		{"delta that pins the log term to 2",
			1, 1, 1.25 * math.Exp(-2),
			2},
		{"sigma grows linearly with sensitivity",
			3, 1, 1.25 * math.Exp(-2),
			6},
		{"sigma shrinks with epsilon",
			1, 4, 1.25 * math.Exp(-2),
			0.5},
		{"canonical delta of 1e-5",
			1, 1, 1e-5,
			4.844805},
	} {
		got := GaussianSigma(tc.sensitivity, tc.epsilon, tc.delta)
		if !floats.EqualWithinAbsOrRel(got, tc.want, 1e-5, 1e-5) {
			t.Errorf("GaussianSigma: when %s got %f, want %f", tc.desc, got, tc.want)
		}
		fromScale, err := gauss.Scale(tc.sensitivity, tc.epsilon, tc.delta)
		if err != nil {
			t.Fatalf("Scale: when %s got err %v", tc.desc, err)
		}
		if fromScale != got {
			t.Errorf("Scale: when %s Scale and GaussianSigma disagree: %f vs %f", tc.desc, fromScale, got)
		}
	}
}

func TestConfidenceIntervalGaussian(t *testing.T) {
	// The (1 - alpha/2)-quantile of the standard Gaussian for alpha = 0.05.
	const z = 1.9599639845400545
	sigma := GaussianSigma(1, ln3, 1e-10)
	confInt, err := gauss.ConfidenceInterval(13.37, 1, ln3, 1e-10, 0.05)
	if err != nil {
		t.Fatalf("ConfidenceInterval: got err %v", err)
	}
	if !nearEqual(confInt.LowerBound, 13.37-z*sigma, 1e-9) {
		t.Errorf("ConfidenceInterval: got lower bound %f, want %f", confInt.LowerBound, 13.37-z*sigma)
	}
	if !nearEqual(confInt.UpperBound, 13.37+z*sigma, 1e-9) {
		t.Errorf("ConfidenceInterval: got upper bound %f, want %f", confInt.UpperBound, 13.37+z*sigma)
	}
}

func TestGaussianSeededIsReproducible(t *testing.T) {
	gaussA := Gaussian(rand.Seeded(42))
	gaussB := Gaussian(rand.Seeded(42))
	for i := 0; i < 100; i++ {
		a, err := gaussA.AddNoise(0, 1, ln3, 1e-10)
		if err != nil {
			t.Fatalf("Couldn't noise sample: %v", err)
		}
		b, err := gaussB.AddNoise(0, 1, ln3, 1e-10)
		if err != nil {
			t.Fatalf("Couldn't noise sample: %v", err)
		}
		if a != b {
			t.Fatalf("AddNoise: two Gaussian instances with the same seed diverged at sample %d: %f vs %f", i, a, b)
		}
	}
}
