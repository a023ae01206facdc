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

package rand

import (
	"bytes"
	"io"
	"math"
	"testing"
)

func TestBooleanBufIsShifting(t *testing.T) {
	defer func(orig io.Reader) { randBuf = orig }(randBuf)
	randBuf = bytes.NewReader([]byte{
		0b00100100,
		0b10010000,
	})
	randBitPos = math.MaxInt8 // force a refill from the replaced buffer
	src := Secure()
	for pos, want := range []bool{
		// first byte
		false,
		false,
		true,
		false,
		false,
		true,
		false,
		false,
		// second byte
		false,
		false,
		false,
		false,
		true,
		false,
		false,
		true,
	} {
		if got := src.Boolean(); got != want {
			t.Errorf("Boolean: got %v, want %v in %v-th iteration", got, want, pos)
		}
	}
}

func TestSecureUniformIsInHalfOpenUnitInterval(t *testing.T) {
	src := Secure()
	for i := 0; i < 1000; i++ {
		u := src.Uniform()
		if u <= 0 || u > 1 {
			t.Fatalf("Uniform: got %f, want a value in (0, 1]", u)
		}
	}
}

func TestSeededIsReproducible(t *testing.T) {
	a, b := Seeded(42), Seeded(42)
	for i := 0; i < 1000; i++ {
		if got, want := a.Uniform(), b.Uniform(); got != want {
			t.Fatalf("Uniform: two sources with the same seed diverged at sample %d: %f vs %f", i, got, want)
		}
		if got, want := a.Normal(), b.Normal(); got != want {
			t.Fatalf("Normal: two sources with the same seed diverged at sample %d: %f vs %f", i, got, want)
		}
		if got, want := a.Boolean(), b.Boolean(); got != want {
			t.Fatalf("Boolean: two sources with the same seed diverged at sample %d: %v vs %v", i, got, want)
		}
	}
}

func TestSeededUniformIsInHalfOpenUnitInterval(t *testing.T) {
	src := Seeded(1)
	for i := 0; i < 1000; i++ {
		u := src.Uniform()
		if u <= 0 || u > 1 {
			t.Fatalf("Uniform: got %f, want a value in (0, 1]", u)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a, b := Seeded(1), Seeded(2)
	equal := true
	for i := 0; i < 100; i++ {
		if a.Uniform() != b.Uniform() {
			equal = false
			break
		}
	}
	if equal {
		t.Errorf("Seeded: sources with different seeds produced identical streams")
	}
}
