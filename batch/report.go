// Copyright 2025 The go-qdistill Authors
// This file is part of the go-qdistill library.
//
// The go-qdistill library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-qdistill library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-qdistill library. If not, see <http://www.gnu.org/licenses/>.

package batch

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TrialResult is the outcome of a single purification run.
type TrialResult struct {
	Trial         int           `json:"trial"`
	Seed          int64         `json:"seed"`
	FinalFidelity float64       `json:"finalFidelity"`
	Rounds        int           `json:"rounds"`
	Survivors     int           `json:"survivors"`
	TargetMet     bool          `json:"targetMet"`
	Duration      time.Duration `json:"duration"`
}

// Aggregates summarises a batch of trial results.
type Aggregates struct {
	FidelityMean float64 `json:"fidelityMean"`
	FidelityStd  float64 `json:"fidelityStd"`
	FidelityMin  float64 `json:"fidelityMin"`
	FidelityMax  float64 `json:"fidelityMax"`
	RoundsMean   float64 `json:"roundsMean"`
	RoundsMin    int     `json:"roundsMin"`
	RoundsMax    int     `json:"roundsMax"`
	TargetRate   float64 `json:"targetRate"`
	TrialsPerSec float64 `json:"trialsPerSec"`
}

// Report collects everything a batch produced. It marshals to JSON for the
// command line --out flag.
type Report struct {
	ID         string        `json:"id"`
	Config     Config        `json:"config"`
	Started    time.Time     `json:"started"`
	Elapsed    time.Duration `json:"elapsed"`
	Trials     []TrialResult `json:"trials"`
	Aggregates Aggregates    `json:"aggregates"`
}

// aggregate reduces the trial results. The caller guarantees at least one
// trial; the standard deviation of a single sample is reported as zero so
// the report stays JSON encodable.
func aggregate(trials []TrialResult, elapsed time.Duration) Aggregates {
	fids := make([]float64, len(trials))
	rounds := make([]float64, len(trials))
	met := 0
	for i, tr := range trials {
		fids[i] = tr.FinalFidelity
		rounds[i] = float64(tr.Rounds)
		if tr.TargetMet {
			met++
		}
	}
	agg := Aggregates{
		FidelityMean: stat.Mean(fids, nil),
		FidelityMin:  floats.Min(fids),
		FidelityMax:  floats.Max(fids),
		RoundsMean:   stat.Mean(rounds, nil),
		RoundsMin:    int(floats.Min(rounds)),
		RoundsMax:    int(floats.Max(rounds)),
		TargetRate:   float64(met) / float64(len(trials)),
	}
	if len(trials) > 1 {
		agg.FidelityStd = stat.StdDev(fids, nil)
	}
	if secs := elapsed.Seconds(); secs > 0 {
		agg.TrialsPerSec = float64(len(trials)) / secs
	}
	return agg
}
