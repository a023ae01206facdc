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

// Package rand provides the random sources that drive the noise generating
// functions of the differential privacy library.
//
// Every mechanism takes its randomness as an explicit Source. Production
// releases use Secure, which draws from the operating system's entropy pool.
// Experiments and tests use Seeded, which reproduces the same stream of
// samples for the same seed.
package rand

import (
	"bufio"
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"math"
	"math/bits"
	mathrand "math/rand"
	"sync"

	log "github.com/golang/glog"
)

// Source produces the random values consumed by the noise samplers and the
// randomized response protocols.
type Source interface {
	// Uniform returns a float64 from the interval (0,1] such that each float
	// in the interval is returned with positive probability and the resulting
	// distribution simulates a continuous uniform distribution on (0,1].
	// The interval is half-open so that samplers can take the log of the
	// output without guarding against 0.
	Uniform() float64

	// Normal returns a normally distributed float64 with mean 0 and
	// standard deviation 1.
	Normal() float64

	// Boolean returns true or false with equal probability.
	Boolean() bool
}

var (
	randBufLock sync.Mutex
	randBuf     io.Reader = bufio.NewReaderSize(cryptorand.Reader, 65536)

	randBitLock sync.Mutex
	randBitBuf  uint8
	randBitPos  int8 = math.MaxInt8
)

// Secure returns the process-wide cryptographically secure Source. It is safe
// for concurrent use; all other Source implementations are not.
func Secure() Source {
	return secureSource{}
}

type secureSource struct{}

func readRandBuf(b []byte) (int, error) {
	randBufLock.Lock()
	defer randBufLock.Unlock()
	return io.ReadFull(randBuf, b)
}

// u64 returns a uniformly random uint64.
func u64() uint64 {
	var r [8]uint8
	if _, err := readRandBuf(r[:]); err != nil {
		log.Fatalf("out of randomness, should never happen: %v", err)
	}
	return binary.LittleEndian.Uint64(r[:])
}

// u8 returns a uniformly random uint8.
func u8() uint8 {
	var r [1]uint8
	if _, err := readRandBuf(r[:]); err != nil {
		log.Fatalf("out of randomness, should never happen: %v", err)
	}
	return r[0]
}

// Boolean returns true or false with equal probability.
func (secureSource) Boolean() bool {
	randBitLock.Lock()
	defer randBitLock.Unlock()
	if randBitPos > 7 { // Out of random bits.
		randBitBuf = u8()
		randBitPos = 0
	}
	res := randBitBuf&(1<<randBitPos) > 0
	randBitPos++
	return res
}

// Uniform returns a float64 from the interval (0,1] such that each float
// in the interval is returned with positive probability and the resulting
// distribution simulates a continuous uniform distribution on (0, 1].
func (secureSource) Uniform() float64 {
	i := u64() % (1 << 53)
	r := (1 + float64(i)/(1<<53)) / math.Pow(2, geometric())
	// We want to avoid returning 0, since samplers take the log of the output.
	if r == 0 {
		return 1
	}
	return r
}

// geometric returns a float64 that counts the number of Bernoulli trials until
// the first success for a success probability of 0.5.
func geometric() float64 {
	// 1 plus the number of leading zeros from an infinite stream of random bits
	// follows the desired geometric distribution.
	b := 1
	var r uint8
	for r == 0 {
		r = u8()
		b += bits.LeadingZeros8(r)
	}
	return float64(b)
}

// Normal returns a normally distributed float with mean 0 and standard deviation 1.
func (secureSource) Normal() float64 {
	return mathrand.New(&cryptoSource{}).NormFloat64()
}

// cryptoSource implements a cryptographically secure implementation of
// math/rand's Source.
type cryptoSource struct{}

// Int63 returns a uniformly random int64 in [0, 1<<63).
func (cs cryptoSource) Int63() int64 {
	var r [8]uint8
	if _, err := readRandBuf(r[:]); err != nil {
		log.Fatalf("out of randomness, should never happen: %v", err)
	}
	i := int64(binary.LittleEndian.Uint64(r[:]))
	if i < 0 {
		return -i
	}
	return i
}

// Seed is a no-op.
func (cs cryptoSource) Seed(_ int64) {}

// Seeded returns a Source that reproduces the same stream of samples for the
// same seed, making noisy releases repeatable across experiment runs.
//
// Seeded sources are not cryptographically secure and must not be used for
// production releases. Not thread-safe.
func Seeded(seed int64) Source {
	return &seededSource{r: mathrand.New(mathrand.NewSource(seed))}
}

type seededSource struct {
	r *mathrand.Rand
}

func (s *seededSource) Uniform() float64 {
	// Float64 draws from [0,1); mirroring to (0,1] keeps the log in the
	// Laplace sampler away from 0.
	return 1 - s.r.Float64()
}

func (s *seededSource) Normal() float64 {
	return s.r.NormFloat64()
}

func (s *seededSource) Boolean() bool {
	return s.r.Int63()&1 == 1
}
