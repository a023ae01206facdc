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
	"math"

	log "github.com/golang/glog"

	"github.com/privstats/dp/checks"
	"github.com/privstats/dp/rand"
)

// Protocol is an enum type. Its values are the supported randomized response
// protocols. Every protocol starts with one unbiased coin flip: heads, the
// respondent answers truthfully; tails, the answer is replaced according to
// the protocol. Protocols are fixed and memoryless, so each response is
// perturbed independently.
type Protocol int

// Randomized response protocols used to perturb individual survey answers.
const (
	// ForcedTrue answers true on tails regardless of the respondent's true
	// answer. The observed proportion of true answers satisfies
	// E[observed] = 0.5·trueRate + 0.5.
	ForcedTrue Protocol = iota
	// UniformCoin answers by a second unbiased coin flip on tails, Warner's
	// classic two-coin protocol. The observed proportion satisfies
	// E[observed] = 0.5·trueRate + 0.25.
	UniformCoin
	// UnrecognisedProtocol is the zero value for unknown protocol names.
	UnrecognisedProtocol
)

// ToProtocol converts a protocol name into a Protocol.
func ToProtocol(s string) Protocol {
	switch s {
	case "ForcedTrue":
		return ForcedTrue
	case "UniformCoin":
		return UniformCoin
	default:
		log.Warningf("ToProtocol: unknown protocol name (%q) specified, returning UnrecognisedProtocol", s)
	}
	return UnrecognisedProtocol
}

func (p Protocol) String() string {
	switch p {
	case ForcedTrue:
		return "ForcedTrue"
	case UniformCoin:
		return "UniformCoin"
	}
	return "UnrecognisedProtocol"
}

// ForcedProbability returns the probability that the protocol discards the
// true answer and responds by its forced rule instead. The first coin is
// unbiased in every protocol, so this is 1/2.
func (p Protocol) ForcedProbability() float64 {
	return 0.5
}

// ForcedTrueProbability returns the probability that a forced answer comes
// out true: 1 under ForcedTrue, 1/2 under UniformCoin.
func (p Protocol) ForcedTrueProbability() float64 {
	switch p {
	case ForcedTrue:
		return 1
	case UniformCoin:
		return 0.5
	}
	return math.NaN()
}

// TruthfulProbability returns the probability that the respondent answers
// truthfully, the complement of ForcedProbability.
func (p Protocol) TruthfulProbability() float64 {
	return 1 - p.ForcedProbability()
}

// Epsilon returns the worst-case log-likelihood ratio between the response
// distributions of two respondents with opposite true answers.
//
// Under UniformCoin every answer has probability 3/4 or 1/4 regardless of the
// truth, so the ratio is bounded by 3 and the protocol satisfies
// ln(3)-differential privacy. Under ForcedTrue a "false" response is only
// possible for a respondent whose true answer is false, the ratio is
// unbounded and Epsilon is +∞; use UniformCoin when a finite guarantee is
// required.
func (p Protocol) Epsilon() float64 {
	switch p {
	case ForcedTrue:
		return math.Inf(1)
	case UniformCoin:
		return math.Log(3)
	}
	return math.NaN()
}

// EstimateProportion debiases the observed proportion of true answers among
// perturbed responses, returning an estimate of the true population
// proportion:
//
//	(observed - P(forced)·P(forcedTrue)) / P(truthful)
//
// which is 2·observed - 1 under ForcedTrue and 2·observed - 0.5 under
// UniformCoin. Sampling noise can push the estimate outside [0,1] for small
// surveys; clipping it back is free post-processing.
func (p Protocol) EstimateProportion(observed float64) float64 {
	return (observed - p.ForcedProbability()*p.ForcedTrueProbability()) / p.TruthfulProbability()
}

// RandomizedResponse perturbs individual boolean survey answers so that any
// single answer is plausibly deniable while the population proportion stays
// recoverable via Protocol.EstimateProportion.
type RandomizedResponse struct {
	protocol Protocol
	src      rand.Source
}

// RandomizedResponseOptions contains the options necessary to initialize a RandomizedResponse.
type RandomizedResponseOptions struct {
	Protocol Protocol // Perturbation protocol. Required.
	// Source of randomness for the coin flips. Defaults to a secure source.
	Source rand.Source
}

// NewRandomizedResponse returns a new RandomizedResponse.
func NewRandomizedResponse(opt *RandomizedResponseOptions) (*RandomizedResponse, error) {
	if opt == nil {
		opt = &RandomizedResponseOptions{} // Prevents panicking due to a nil pointer dereference.
	}

	switch opt.Protocol {
	case ForcedTrue, UniformCoin:
	default:
		return nil, fmt.Errorf("NewRandomizedResponse: %w: unknown protocol %v", checks.ErrInvalidParameter, opt.Protocol)
	}

	src := opt.Source
	if src == nil {
		src = rand.Secure()
	}

	return &RandomizedResponse{
		protocol: opt.Protocol,
		src:      src,
	}, nil
}

// Protocol returns the protocol the instance perturbs with.
func (rr *RandomizedResponse) Protocol() Protocol {
	return rr.protocol
}

// Randomize returns a perturbed version of the respondent's true answer. Each
// call flips fresh coins; no per-respondent state is kept.
func (rr *RandomizedResponse) Randomize(truth bool) bool {
	if rr.src.Boolean() { // heads: answer truthfully
		return truth
	}
	switch rr.protocol {
	case ForcedTrue:
		return true
	default:
		return rr.src.Boolean()
	}
}

// EstimateProportion debiases the observed proportion of true answers under
// the instance's protocol. See Protocol.EstimateProportion.
func (rr *RandomizedResponse) EstimateProportion(observed float64) float64 {
	return rr.protocol.EstimateProportion(observed)
}
