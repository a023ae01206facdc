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

// This is a command line utility which runs a sweep of differentially private
// releases over a grid of privacy parameters and sample sizes.
// Usage example:
//
//	sweep --input_file=sample.csv --output_file=rows.csv --epsilons=0.1,0.5,1 --deltas=0 --sample_sizes=100,1000 --stats=mean,variance
//
// When --input_file is omitted, a synthetic Gaussian demo sample is generated
// instead.
package main

import (
	"flag"
	"strconv"
	"strings"

	log "github.com/golang/glog"

	"github.com/privstats/dp/rand"
	"github.com/privstats/dp/sweep"
)

var (
	inputFile  = flag.String("input_file", "", "Input csv file with one sample value per line. When empty, a synthetic Gaussian sample is generated.")
	outputFile = flag.String("output_file", "", "Output csv file for the result rows.")

	epsilons    = flag.String("epsilons", "1", "Comma-separated epsilon values to sweep over.")
	deltas      = flag.String("deltas", "0", "Comma-separated delta values to sweep over. 0 selects Laplace noise, positive values Gaussian noise.")
	sampleSizes = flag.String("sample_sizes", "", "Comma-separated prefix lengths of the sample to release statistics of. Defaults to the full sample.")
	stats       = flag.String("stats", "mean,variance", "Comma-separated statistics to release: mean, variance, histogram.")
	numBins     = flag.Int("num_bins", 10, "Number of histogram bins.")
	lower       = flag.Float64("lower", 0, "Lower clamping bound of the sample domain.")
	upper       = flag.Float64("upper", 1, "Upper clamping bound of the sample domain.")

	demoSize   = flag.Int("demo_size", 10000, "Size of the generated demo sample when no input file is given.")
	demoMean   = flag.Float64("demo_mean", 0.5, "Mean of the generated demo sample.")
	demoStddev = flag.Float64("demo_stddev", 0.1, "Standard deviation of the generated demo sample.")

	seed = flag.Int64("seed", 0, "Seed for a reproducible run. 0 draws all noise from a secure source.")
)

func main() {
	flag.Parse()

	log.Infof("The sweep was run with arguments: inputFile = %q, outputFile = %q,"+
		" epsilons = %q, deltas = %q, sampleSizes = %q, stats = %q, numBins = %d, bounds = [%f, %f]",
		*inputFile, *outputFile, *epsilons, *deltas, *sampleSizes, *stats, *numBins, *lower, *upper)

	if *outputFile == "" {
		log.Exit("No output file was chosen")
	}

	src := rand.Secure()
	if *seed != 0 {
		src = rand.Seeded(*seed)
	}

	var sample []float64
	var err error
	if *inputFile != "" {
		sample, err = sweep.ReadSampleFromCSV(*inputFile)
		if err != nil {
			log.Exitf("Couldn't read the sample, err = %v", err)
		}
	} else {
		sample, err = sweep.GaussianSample(src, *demoSize, *demoMean, *demoStddev, *lower, *upper)
		if err != nil {
			log.Exitf("Couldn't generate a demo sample, err = %v", err)
		}
		log.Infof("Generated a Gaussian demo sample of %d values with mean %f and stddev %f", *demoSize, *demoMean, *demoStddev)
	}

	cfg := sweep.Config{
		Epsilons: parseFloats(*epsilons, "epsilons"),
		Deltas:   parseFloats(*deltas, "deltas"),
		Stats:    strings.Split(*stats, ","),
		NumBins:  *numBins,
		Lower:    *lower,
		Upper:    *upper,
	}
	if *sampleSizes == "" {
		cfg.SampleSizes = []int{len(sample)}
	} else {
		cfg.SampleSizes = parseInts(*sampleSizes, "sample_sizes")
	}

	rows, err := sweep.Run(cfg, sample, src)
	if err != nil {
		log.Exitf("Couldn't execute the sweep, err = %v", err)
	}

	if err := sweep.WriteRowsToCSV(rows, *outputFile); err != nil {
		log.Exitf("Couldn't write the results, err = %v", err)
	}

	log.Infof("Successfully wrote %d result rows to %q", len(rows), *outputFile)
}

func parseFloats(list, flagName string) []float64 {
	parts := strings.Split(list, ",")
	values := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			log.Exitf("Couldn't parse --%s value %q, err = %v", flagName, p, err)
		}
		values[i] = v
	}
	return values
}

func parseInts(list, flagName string) []int {
	parts := strings.Split(list, ",")
	values := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			log.Exitf("Couldn't parse --%s value %q, err = %v", flagName, p, err)
		}
		values[i] = v
	}
	return values
}
