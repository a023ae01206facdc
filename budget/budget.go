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

// Package budget provides arithmetic on (ε,δ) differential privacy budgets.
//
// Budgets compose sequentially: a release consuming (ε₁,δ₁) followed by a
// release consuming (ε₂,δ₂) on the same data satisfies
// (ε₁+ε₂, δ₁+δ₂)-differential privacy. Mechanisms that publish several
// statistics divide their declared budget with Split so that the total
// consumption never exceeds what the caller declared.
package budget

import (
	"fmt"

	"github.com/privstats/dp/checks"
)

// comparisonThreshold absorbs the floating point error that accumulates when
// budgets are split and re-added.
const comparisonThreshold = 1e-12

// Budget holds the privacy parameters of a differentially private release.
// A Delta of 0 requests pure ε-differential privacy.
type Budget struct {
	Epsilon float64
	Delta   float64
}

// Validate returns an error if the budget cannot parameterize a release,
// i.e. if ε is nonpositive or not finite, or δ lies outside [0, 1).
func (b Budget) Validate() error {
	if err := checks.CheckEpsilonStrict(b.Epsilon); err != nil {
		return err
	}
	return checks.CheckDelta(b.Delta)
}

// Pure reports whether the budget requests pure ε-differential privacy.
func (b Budget) Pure() bool {
	return b.Delta == 0
}

// Split divides the budget evenly between n sequential sub-releases. By
// sequential composition, the n sub-releases together satisfy
// (ε,δ)-differential privacy.
func (b Budget) Split(n int) (Budget, error) {
	if n < 1 {
		return Budget{}, fmt.Errorf("%w: cannot split a budget between %d releases, need at least 1", checks.ErrInvalidParameter, n)
	}
	return Budget{Epsilon: b.Epsilon / float64(n), Delta: b.Delta / float64(n)}, nil
}

// Add returns the sequential composition of the two budgets.
func (b Budget) Add(other Budget) Budget {
	b.Epsilon += other.Epsilon
	b.Delta += other.Delta
	return b
}

// Sub returns the budget that remains after consuming other.
func (b Budget) Sub(other Budget) Budget {
	b.Epsilon -= other.Epsilon
	b.Delta -= other.Delta
	return b
}

// HasEnough reports whether the budget covers the consumption of other.
func (b Budget) HasEnough(other Budget) bool {
	return b.Epsilon+comparisonThreshold >= other.Epsilon && b.Delta+comparisonThreshold >= other.Delta
}

func (b Budget) String() string {
	return fmt.Sprintf("(ε=%g, δ=%g)", b.Epsilon, b.Delta)
}
