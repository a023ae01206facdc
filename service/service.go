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

// Package service exposes the DP statistics mechanisms over a JSON HTTP API,
// the demo front end for before/after comparisons of raw and sanitized
// statistics.
package service

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	log "github.com/golang/glog"

	"github.com/privstats/dp/dpstat"
	"github.com/privstats/dp/noise"
	"github.com/privstats/dp/rand"
)

// Default query parameter values. Invalid or missing parameters fall back to
// these rather than failing the request.
const (
	DefaultStat    = "mean"
	DefaultEpsilon = 1.0
	DefaultDelta   = 0.0
	DefaultNumBins = 10
	DefaultLower   = 0.0
	DefaultUpper   = 1.0
)

// Params holds the validated query parameters of a sanitize request.
type Params struct {
	Stat    string
	Epsilon float64
	Delta   float64
	NumBins int
	Lower   float64
	Upper   float64
}

// parameters to send back to the client for display
type outParams struct {
	Stat    string  `json:"stat"`
	Eps     float64 `json:"eps"`
	Delta   float64 `json:"delta"`
	NumBins int     `json:"num-bins,omitempty"`
	Lower   float64 `json:"lower"`
	Upper   float64 `json:"upper"`
}

// results of one release: the raw statistic next to the sanitized one. The
// clipped variants are display-only post-processing of the sanitized release;
// they are safe to show but must not feed further computation.
type results struct {
	Raw              float64   `json:"raw,omitempty"`
	Sanitized        float64   `json:"sanitized,omitempty"`
	SanitizedClipped *float64  `json:"sanitized-clipped,omitempty"`
	RawCounts        []float64 `json:"raw-counts,omitempty"`
	SanitizedCounts  []float64 `json:"sanitized-counts,omitempty"`
	ClippedCounts    []float64 `json:"clipped-counts,omitempty"`
	Edges            []float64 `json:"edges,omitempty"`
}

// struct that sends back all outbound data
type output struct {
	Params  outParams `json:"params"`
	Results results   `json:"results"`
}

// sanitizeRequest is the JSON body of a sanitize request.
type sanitizeRequest struct {
	Sample []float64 `json:"sample"`
}

// Server answers sanitize requests, drawing all noise from its random source.
type Server struct {
	src rand.Source
}

// New returns a Server. A nil src selects the secure source.
func New(src rand.Source) *Server {
	if src == nil {
		src = rand.Secure()
	}
	return &Server{src: src}
}

// RegisterHandlers binds the API endpoints to mux.
func (s *Server) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/sanitize", s.Sanitize)
	mux.HandleFunc("/api/v1/protocols", s.Protocols)
}

// EnableCors sets the header allowing outside API requests.
func EnableCors(w *http.ResponseWriter) {
	(*w).Header().Set("Access-Control-Allow-Origin", "*")
}

// validation of stat query parameter
func validateStat(stat string) bool {
	switch stat {
	case "mean", "variance", "histogram":
		return true
	}
	return false
}

// validation of epsilon value
func validateEpsilon(epsilon float64) bool {
	return !math.IsInf(epsilon, 0) && !math.IsNaN(epsilon) && epsilon > 0
}

// validation of delta value
func validateDelta(delta float64) bool {
	return !math.IsNaN(delta) && delta >= 0 && delta < 1
}

// validation of the bin count
func validateNumBins(numBins int) bool {
	return numBins >= 1
}

// ValidateArgs validates the query parameters of a sanitize request,
// substituting defaults for missing or invalid values.
func ValidateArgs(r *http.Request) Params {
	request := r.URL.Query()

	params := Params{
		Stat:    DefaultStat,
		Epsilon: DefaultEpsilon,
		Delta:   DefaultDelta,
		NumBins: DefaultNumBins,
		Lower:   DefaultLower,
		Upper:   DefaultUpper,
	}

	if stat := request.Get("stat"); stat != "" {
		if validateStat(stat) {
			params.Stat = stat
		} else {
			log.Warningf("unknown stat %q, falling back to %q", stat, DefaultStat)
		}
	}
	if epsStr := request.Get("eps"); epsStr != "" {
		if eps, err := strconv.ParseFloat(epsStr, 64); err == nil && validateEpsilon(eps) {
			params.Epsilon = eps
		} else {
			log.Warningf("invalid eps %q, falling back to %f", epsStr, DefaultEpsilon)
		}
	}
	if deltaStr := request.Get("delta"); deltaStr != "" {
		if delta, err := strconv.ParseFloat(deltaStr, 64); err == nil && validateDelta(delta) {
			params.Delta = delta
		} else {
			log.Warningf("invalid delta %q, falling back to %f", deltaStr, DefaultDelta)
		}
	}
	if binsStr := request.Get("bins"); binsStr != "" {
		if bins, err := strconv.Atoi(binsStr); err == nil && validateNumBins(bins) {
			params.NumBins = bins
		} else {
			log.Warningf("invalid bins %q, falling back to %d", binsStr, DefaultNumBins)
		}
	}

	return params
}

// Sanitize handles POST /api/v1/sanitize: it reads a sample from the JSON
// body, releases the requested statistic under the requested budget, and
// responds with the raw and the sanitized value side by side.
func (s *Server) Sanitize(w http.ResponseWriter, r *http.Request) {
	EnableCors(&w)

	if r.Method != http.MethodPost {
		http.Error(w, "only POST is supported", http.StatusMethodNotAllowed)
		return
	}

	params := ValidateArgs(r)

	var req sanitizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warningf("error decoding request body: %v", err)
		http.Error(w, "request body must be JSON with a \"sample\" array", http.StatusBadRequest)
		return
	}

	res, err := s.release(params, req.Sample)
	if err != nil {
		log.Warningf("error releasing %s: %v", params.Stat, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var out output
	out.Params = outParams{
		Stat:  params.Stat,
		Eps:   params.Epsilon,
		Delta: params.Delta,
		Lower: params.Lower,
		Upper: params.Upper,
	}
	if params.Stat == "histogram" {
		out.Params.NumBins = params.NumBins
	}
	out.Results = res

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (s *Server) release(params Params, sample []float64) (results, error) {
	noised := noise.ToNoise(noise.ForDelta(params.Delta), s.src)
	switch params.Stat {
	case "variance":
		bv, err := dpstat.NewBoundedVariance(&dpstat.BoundedVarianceOptions{
			Epsilon: params.Epsilon,
			Delta:   params.Delta,
			Lower:   params.Lower,
			Upper:   params.Upper,
			Noise:   noised,
		})
		if err != nil {
			return results{}, err
		}
		sanitized, err := bv.Result(sample)
		if err != nil {
			return results{}, err
		}
		clipped := math.Max(0, sanitized)
		return results{
			Raw:              rawVariance(sample),
			Sanitized:        sanitized,
			SanitizedClipped: &clipped,
		}, nil
	case "histogram":
		h, err := dpstat.NewHistogram(&dpstat.HistogramOptions{
			Epsilon: params.Epsilon,
			Delta:   params.Delta,
			NumBins: params.NumBins,
			Lower:   params.Lower,
			Upper:   params.Upper,
			Noise:   noised,
		})
		if err != nil {
			return results{}, err
		}
		res, err := h.Result(sample)
		if err != nil {
			return results{}, err
		}
		rawRes, err := dpstat.RawHistogram(sample, params.NumBins, params.Lower, params.Upper)
		if err != nil {
			return results{}, err
		}
		clipped := make([]float64, len(res.Counts))
		for i, c := range res.Counts {
			clipped[i] = math.Max(0, c)
		}
		return results{
			RawCounts:       rawRes.Counts,
			SanitizedCounts: res.Counts,
			ClippedCounts:   clipped,
			Edges:           res.Edges,
		}, nil
	default: // mean
		bm, err := dpstat.NewBoundedMean(&dpstat.BoundedMeanOptions{
			Epsilon: params.Epsilon,
			Delta:   params.Delta,
			Lower:   params.Lower,
			Upper:   params.Upper,
			Noise:   noised,
		})
		if err != nil {
			return results{}, err
		}
		sanitized, err := bm.Result(sample)
		if err != nil {
			return results{}, err
		}
		return results{
			Raw:       rawMean(sample),
			Sanitized: sanitized,
		}, nil
	}
}

// rawMean and rawVariance compute the true, non-private statistics shown
// next to the sanitized release.
func rawMean(sample []float64) float64 {
	var sum float64
	for _, v := range sample {
		sum += v
	}
	return sum / math.Max(1, float64(len(sample)))
}

func rawVariance(sample []float64) float64 {
	mean := rawMean(sample)
	var sumOfSquares float64
	for _, v := range sample {
		sumOfSquares += (v - mean) * (v - mean)
	}
	return sumOfSquares / math.Max(1, float64(len(sample)))
}

// protocolInfo describes one randomized response protocol for the client.
// Epsilon is a formatted string since ForcedTrue's guarantee is +Inf, which
// JSON numbers cannot carry.
type protocolInfo struct {
	Name                  string  `json:"name"`
	Epsilon               string  `json:"epsilon"`
	ForcedProbability     float64 `json:"forced-probability"`
	ForcedTrueProbability float64 `json:"forced-true-probability"`
	TruthfulProbability   float64 `json:"truthful-probability"`
}

// Protocols handles GET /api/v1/protocols: it lists the randomized response
// protocols together with the probabilities a client needs to debias observed
// proportions.
func (s *Server) Protocols(w http.ResponseWriter, r *http.Request) {
	EnableCors(&w)

	protocols := []dpstat.Protocol{dpstat.ForcedTrue, dpstat.UniformCoin}
	infos := make([]protocolInfo, len(protocols))
	for i, p := range protocols {
		infos[i] = protocolInfo{
			Name:                  p.String(),
			Epsilon:               strconv.FormatFloat(p.Epsilon(), 'g', -1, 64),
			ForcedProbability:     p.ForcedProbability(),
			ForcedTrueProbability: p.ForcedTrueProbability(),
			TruthfulProbability:   p.TruthfulProbability(),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(infos)
}
