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

// Package sweep runs batch experiments over the DP statistics mechanisms.
//
// A sweep takes a fixed sample and a grid of privacy parameters and sample
// sizes, runs one fresh differentially private release per grid cell, and
// collects the results in a flat table of rows, one statistic per row. The
// table is what parameter-exploration front ends consume to show how release
// accuracy responds to the privacy budget.
package sweep

import (
	"fmt"

	"github.com/privstats/dp/checks"
	"github.com/privstats/dp/dpstat"
	"github.com/privstats/dp/noise"
	"github.com/privstats/dp/rand"
)

// Statistic names accepted by Config.Stats. The histogram statistic expands
// into one row per bin.
const (
	StatMean      = "mean"
	StatVariance  = "variance"
	StatHistogram = "histogram"
)

// Config describes the experiment grid: every combination of a sample size,
// an epsilon and a delta is run once per requested statistic.
type Config struct {
	// Epsilons and Deltas are the privacy parameter values to sweep over.
	// A delta of 0 selects Laplace noise for its cells, a positive delta
	// Gaussian noise.
	Epsilons []float64
	Deltas   []float64
	// SampleSizes are the prefix lengths of the input sample to release
	// statistics of.
	SampleSizes []int
	// Stats are the statistics to release per cell: StatMean, StatVariance
	// or StatHistogram.
	Stats []string
	// NumBins is the bin count for histogram releases. Required when Stats
	// contains StatHistogram.
	NumBins int
	// Lower and Upper are the clamping bounds of the sample domain.
	Lower, Upper float64
}

// Row is one released statistic of one grid cell.
type Row struct {
	SampleSize int
	Epsilon    float64
	Delta      float64
	// Stat is the name of the released statistic. Histogram cells produce
	// one row per bin, named histogram_bin_0, histogram_bin_1 and so on.
	Stat  string
	Value float64
}

func validateConfig(cfg Config, sampleLen int) error {
	if len(cfg.Epsilons) == 0 {
		return fmt.Errorf("%w: no epsilons to sweep over", checks.ErrInvalidParameter)
	}
	if len(cfg.Deltas) == 0 {
		return fmt.Errorf("%w: no deltas to sweep over", checks.ErrInvalidParameter)
	}
	if len(cfg.SampleSizes) == 0 {
		return fmt.Errorf("%w: no sample sizes to sweep over", checks.ErrInvalidParameter)
	}
	if len(cfg.Stats) == 0 {
		return fmt.Errorf("%w: no statistics to release", checks.ErrInvalidParameter)
	}
	for _, s := range cfg.Stats {
		switch s {
		case StatMean, StatVariance:
		case StatHistogram:
			if err := checks.CheckNumBins(cfg.NumBins); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown statistic %q", checks.ErrInvalidParameter, s)
		}
	}
	for _, n := range cfg.SampleSizes {
		if n < 1 || n > sampleLen {
			return fmt.Errorf("%w: sample size %d is outside the input sample's length of %d", checks.ErrInvalidInput, n, sampleLen)
		}
	}
	return nil
}

// Run executes the experiment grid on sample, drawing all noise from src, and
// returns one row per released statistic. Each cell is an independent release
// consuming its cell's full (ε,δ); rows of different cells must not be
// combined without accounting for composition.
//
// The rows appear in grid order: sample sizes, then epsilons, then deltas,
// then statistics.
func Run(cfg Config, sample []float64, src rand.Source) ([]Row, error) {
	if err := checks.CheckSample(sample); err != nil {
		return nil, fmt.Errorf("sweep.Run: %w", err)
	}
	if err := validateConfig(cfg, len(sample)); err != nil {
		return nil, fmt.Errorf("sweep.Run: %w", err)
	}
	if src == nil {
		src = rand.Secure()
	}

	var rows []Row
	for _, size := range cfg.SampleSizes {
		prefix := sample[:size]
		for _, epsilon := range cfg.Epsilons {
			for _, delta := range cfg.Deltas {
				for _, stat := range cfg.Stats {
					cellRows, err := runCell(cfg, prefix, epsilon, delta, stat, src)
					if err != nil {
						return nil, fmt.Errorf("sweep.Run: cell (n=%d, ε=%f, δ=%e, %s): %w", size, epsilon, delta, stat, err)
					}
					rows = append(rows, cellRows...)
				}
			}
		}
	}
	return rows, nil
}

func runCell(cfg Config, sample []float64, epsilon, delta float64, stat string, src rand.Source) ([]Row, error) {
	n := noise.ToNoise(noise.ForDelta(delta), src)
	switch stat {
	case StatMean:
		bm, err := dpstat.NewBoundedMean(&dpstat.BoundedMeanOptions{
			Epsilon: epsilon,
			Delta:   delta,
			Lower:   cfg.Lower,
			Upper:   cfg.Upper,
			Noise:   n,
		})
		if err != nil {
			return nil, err
		}
		value, err := bm.Result(sample)
		if err != nil {
			return nil, err
		}
		return []Row{{SampleSize: len(sample), Epsilon: epsilon, Delta: delta, Stat: stat, Value: value}}, nil
	case StatVariance:
		bv, err := dpstat.NewBoundedVariance(&dpstat.BoundedVarianceOptions{
			Epsilon: epsilon,
			Delta:   delta,
			Lower:   cfg.Lower,
			Upper:   cfg.Upper,
			Noise:   n,
		})
		if err != nil {
			return nil, err
		}
		value, err := bv.Result(sample)
		if err != nil {
			return nil, err
		}
		return []Row{{SampleSize: len(sample), Epsilon: epsilon, Delta: delta, Stat: stat, Value: value}}, nil
	case StatHistogram:
		h, err := dpstat.NewHistogram(&dpstat.HistogramOptions{
			Epsilon: epsilon,
			Delta:   delta,
			NumBins: cfg.NumBins,
			Lower:   cfg.Lower,
			Upper:   cfg.Upper,
			Noise:   n,
		})
		if err != nil {
			return nil, err
		}
		res, err := h.Result(sample)
		if err != nil {
			return nil, err
		}
		rows := make([]Row, len(res.Counts))
		for i, count := range res.Counts {
			rows[i] = Row{
				SampleSize: len(sample),
				Epsilon:    epsilon,
				Delta:      delta,
				Stat:       fmt.Sprintf("%s_bin_%d", stat, i),
				Value:      count,
			}
		}
		return rows, nil
	}
	return nil, fmt.Errorf("%w: unknown statistic %q", checks.ErrInvalidParameter, stat)
}

// GaussianSample generates a synthetic sample of n draws from a Gaussian
// distribution with the given mean and standard deviation, clamped to
// [lower, upper]. Sweeps use it to produce demo data when no input sample is
// supplied.
func GaussianSample(src rand.Source, n int, mean, stddev, lower, upper float64) ([]float64, error) {
	if n < 1 {
		return nil, fmt.Errorf("GaussianSample: %w: sample size is %d, must be at least 1", checks.ErrInvalidParameter, n)
	}
	if err := checks.CheckBoundsFloat64(lower, upper); err != nil {
		return nil, fmt.Errorf("GaussianSample: %w", err)
	}
	if src == nil {
		src = rand.Secure()
	}
	sample := make([]float64, n)
	for i := range sample {
		v, err := checks.ClampFloat64(mean+stddev*src.Normal(), lower, upper)
		if err != nil {
			return nil, fmt.Errorf("GaussianSample: %w", err)
		}
		sample[i] = v
	}
	return sample, nil
}
