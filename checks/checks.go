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

// Package checks contains checks for differentially private functions.
package checks

import (
	"errors"
	"fmt"
	"math"

	log "github.com/golang/glog"
)

// Each validation failure wraps one of the following sentinel errors, so that
// callers can distinguish bad data from bad privacy parameters with errors.Is.
var (
	// ErrInvalidInput indicates that the sample to be sanitized is unusable,
	// e.g. empty or containing NaN entries.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidParameter indicates that a privacy or mechanism parameter is
	// out of its admissible range, e.g. ε ≤ 0 or δ outside [0, 1).
	ErrInvalidParameter = errors.New("invalid parameter")
)

const (
	epsilonName = "Epsilon"
	deltaName   = "Delta"
)

func verifyName(defaultName string, nameSlice []string) (string, error) {
	var name string
	switch len(nameSlice) {
	case 0:
		name = defaultName
	case 1:
		name = nameSlice[0]
	default:
		return "", fmt.Errorf("There should be 0 or 1 'name' parameter, got %d", len(nameSlice))
	}
	return name, nil
}

// CheckEpsilonStrict returns an error if ε is nonpositive, ±∞ or NaN.
func CheckEpsilonStrict(epsilon float64, name ...string) error {
	epsName, err := verifyName(epsilonName, name)
	if err != nil {
		return err
	}
	if epsilon <= 0 || math.IsInf(epsilon, 0) || math.IsNaN(epsilon) {
		return fmt.Errorf("%w: %s is %f, must be strictly positive and finite", ErrInvalidParameter, epsName, epsilon)
	}
	return nil
}

// CheckDelta returns an error if δ is negative or greater than or equal to 1.
func CheckDelta(delta float64, name ...string) error {
	delName, err := verifyName(deltaName, name)
	if err != nil {
		return err
	}
	if math.IsNaN(delta) {
		return fmt.Errorf("%w: %s is %e, cannot be NaN", ErrInvalidParameter, delName, delta)
	}
	if delta < 0 {
		return fmt.Errorf("%w: %s is %e, cannot be negative", ErrInvalidParameter, delName, delta)
	}
	if delta >= 1 {
		return fmt.Errorf("%w: %s is %e, must be strictly less than 1", ErrInvalidParameter, delName, delta)
	}
	return nil
}

// CheckDeltaStrict returns an error if δ is nonpositive or greater than or equal to 1.
func CheckDeltaStrict(delta float64, name ...string) error {
	delName, err := verifyName(deltaName, name)
	if err != nil {
		return err
	}
	if math.IsNaN(delta) {
		return fmt.Errorf("%w: %s is %e, cannot be NaN", ErrInvalidParameter, delName, delta)
	}
	if delta <= 0 {
		return fmt.Errorf("%w: %s is %e, must be strictly positive", ErrInvalidParameter, delName, delta)
	}
	if delta >= 1 {
		return fmt.Errorf("%w: %s is %e, must be strictly less than 1", ErrInvalidParameter, delName, delta)
	}
	return nil
}

// CheckNoDelta returns an error if δ is non-zero.
func CheckNoDelta(delta float64, name ...string) error {
	delName, err := verifyName(deltaName, name)
	if err != nil {
		return err
	}
	if delta != 0 {
		return fmt.Errorf("%w: %s is %e, must be 0", ErrInvalidParameter, delName, delta)
	}
	return nil
}

// CheckSensitivity returns an error if sensitivity is nonpositive, ±∞ or NaN.
func CheckSensitivity(sensitivity float64) error {
	if sensitivity <= 0 || math.IsInf(sensitivity, 0) || math.IsNaN(sensitivity) {
		return fmt.Errorf("%w: Sensitivity is %f, must be strictly positive and finite", ErrInvalidParameter, sensitivity)
	}
	return nil
}

// CheckBoundsFloat64 returns an error if lower is larger than upper, or if
// either bound is NaN or ±∞.
func CheckBoundsFloat64(lower, upper float64) error {
	if math.IsNaN(lower) {
		return fmt.Errorf("%w: Lower bound cannot be NaN", ErrInvalidParameter)
	}
	if math.IsNaN(upper) {
		return fmt.Errorf("%w: Upper bound cannot be NaN", ErrInvalidParameter)
	}
	if math.IsInf(lower, 0) {
		return fmt.Errorf("%w: Lower bound cannot be infinity", ErrInvalidParameter)
	}
	if math.IsInf(upper, 0) {
		return fmt.Errorf("%w: Upper bound cannot be infinity", ErrInvalidParameter)
	}
	if lower > upper {
		return fmt.Errorf("%w: Upper bound (%f) must be larger than lower bound (%f)", ErrInvalidParameter, upper, lower)
	}
	if lower == upper {
		log.Warningf("Lower bound is equal to upper bound: all sample values will be clamped to %f", upper)
	}
	return nil
}

// CheckBoundsNotEqual returns an error if lower and upper bounds are equal.
func CheckBoundsNotEqual(lower, upper float64) error {
	if lower == upper {
		return fmt.Errorf("%w: Lower and upper bounds are both %f, they cannot be equal to each other", ErrInvalidParameter, lower)
	}
	return nil
}

// CheckAlpha returns an error if the supplied alpha is not between 0 and 1.
func CheckAlpha(alpha float64) error {
	if alpha <= 0 || alpha >= 1 || math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return fmt.Errorf("%w: Alpha is %f, must be within (0, 1) and finite", ErrInvalidParameter, alpha)
	}
	return nil
}

// CheckNumBins returns an error if numBins is less than 1.
func CheckNumBins(numBins int) error {
	if numBins < 1 {
		return fmt.Errorf("%w: NumBins is %d, must be at least 1", ErrInvalidParameter, numBins)
	}
	return nil
}

// CheckSample returns an error if the sample is empty or contains NaN entries.
// A single NaN would poison the released statistic regardless of the other
// entries, which would break the indistinguishability property required for
// differential privacy.
func CheckSample(values []float64) error {
	if len(values) == 0 {
		return fmt.Errorf("%w: Sample is empty, must contain at least one value", ErrInvalidInput)
	}
	for i, v := range values {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: Sample contains NaN at index %d", ErrInvalidInput, i)
		}
	}
	return nil
}

// ClampFloat64 clamps e within lower and upper, such that lower is returned
// if e < lower, and upper is returned if e > upper. Otherwise, e is returned.
func ClampFloat64(e, lower, upper float64) (float64, error) {
	if lower > upper {
		return 0, fmt.Errorf("%w: lower must be less than or equal to upper, got lower = %v, upper = %v", ErrInvalidParameter, lower, upper)
	}

	if e > upper {
		return upper, nil
	}
	if e < lower {
		return lower, nil
	}
	return e, nil
}
