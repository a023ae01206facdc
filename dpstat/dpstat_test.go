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
	"math"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/privstats/dp/noise"
)

// This file contains structs, functions, and values used to test DP statistics.

var (
	ln3     = math.Log(3)
	tenten  = math.Pow10(-10)
	tenfive = math.Pow10(-5)
)

// noNoise is a Noise instance that passes data through unchanged, making
// mechanism outputs exact for testing.
type noNoise struct {
	noise.Noise
}

func (noNoise) AddNoise(x, _, _, _ float64) (float64, error) {
	return x, nil
}

func (noNoise) Scale(_, _, _ float64) (float64, error) {
	return 0, nil
}

// recordingNoise is a Noise instance that passes data through unchanged while
// recording the noise parameters of every AddNoise call, so tests can audit
// the sensitivity and budget a mechanism spends per sub-release.
type recordingNoise struct {
	noise.Noise
	calls []noiseCall
}

type noiseCall struct {
	sensitivity, epsilon, delta float64
}

func (rec *recordingNoise) AddNoise(x, sensitivity, epsilon, delta float64) (float64, error) {
	rec.calls = append(rec.calls, noiseCall{sensitivity: sensitivity, epsilon: epsilon, delta: delta})
	return x, nil
}

func ApproxEqual(x, y float64) bool {
	return cmp.Equal(x, y, cmpopts.EquateApprox(0, tenten))
}
