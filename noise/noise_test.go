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

	"github.com/privstats/dp/rand"
)

var (
	ln3 = math.Log(3)

	lap   = Laplace(rand.Secure())
	gauss = Gaussian(rand.Secure())
)

func nearEqual(a, b, maxError float64) bool {
	return math.Abs(a-b) < maxError
}

func TestToKind(t *testing.T) {
	for _, tc := range []struct {
		desc string
		n    Noise
		want Kind
	}{
		{"Laplace noise", lap, LaplaceNoise},
		{"Gaussian noise", gauss, GaussianNoise},
		{"nil noise", nil, Unrecognised},
	} {
		if got := ToKind(tc.n); got != tc.want {
			t.Errorf("ToKind: when %s got %v, want %v", tc.desc, got, tc.want)
		}
	}
}

func TestToNoiseRoundTrip(t *testing.T) {
	src := rand.Seeded(1)
	for _, k := range []Kind{LaplaceNoise, GaussianNoise} {
		if got := ToKind(ToNoise(k, src)); got != k {
			t.Errorf("ToKind(ToNoise(%v)) = %v, want %v", k, got, k)
		}
	}
	if got := ToNoise(Unrecognised, src); got != nil {
		t.Errorf("ToNoise: for Unrecognised got %v, want nil", got)
	}
}

func TestForDelta(t *testing.T) {
	for _, tc := range []struct {
		desc  string
		delta float64
		want  Kind
	}{
		{"zero delta selects Laplace", 0, LaplaceNoise},
		{"positive delta selects Gaussian", 1e-10, GaussianNoise},
		{"large delta selects Gaussian", 0.5, GaussianNoise},
	} {
		if got := ForDelta(tc.delta); got != tc.want {
			t.Errorf("ForDelta: when %s got %v, want %v", tc.desc, got, tc.want)
		}
	}
}

var benchResultFloat64 float64

func BenchmarkLaplace(b *testing.B) {
	var r float64
	for i := 0; i < b.N; i++ {
		r, _ = lap.AddNoise(42, 1, ln3, 0)
	}
	benchResultFloat64 = r
}

func BenchmarkGaussian(b *testing.B) {
	var r float64
	for i := 0; i < b.N; i++ {
		r, _ = gauss.AddNoise(42, 1, ln3, 1e-10)
	}
	benchResultFloat64 = r
}
