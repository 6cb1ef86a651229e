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

// Package batch runs many independent purification trials concurrently and
// aggregates their outcomes. Each trial owns one engine seeded from the base
// seed plus its index, so a batch is reproducible as a whole while the
// trials stay statistically independent.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/qdistill/go-qdistill/log"
	"github.com/qdistill/go-qdistill/purify"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrInvalidConfig is returned when a batch configuration fails validation.
var ErrInvalidConfig = errors.New("invalid batch configuration")

// DefaultMaxRounds caps a trial that never reaches its target fidelity.
const DefaultMaxRounds = 100

// progressEvery throttles batch progress logging.
const progressEvery = 200 * time.Millisecond

// Config describes one batch of identical trials.
type Config struct {
	Params    purify.Params `json:"params"`
	Trials    int           `json:"trials"`
	Workers   int           `json:"workers"`   // 0 means runtime.NumCPU()
	MaxRounds int           `json:"maxRounds"` // 0 means DefaultMaxRounds
}

// Sanitize checks the batch fields and the embedded engine parameters.
func (c Config) Sanitize() error {
	if err := c.Params.Sanitize(); err != nil {
		return err
	}
	if c.Trials < 1 {
		return fmt.Errorf("%w: need at least 1 trial, have %d", ErrInvalidConfig, c.Trials)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: negative worker count %d", ErrInvalidConfig, c.Workers)
	}
	if c.MaxRounds < 0 {
		return fmt.Errorf("%w: negative round cap %d", ErrInvalidConfig, c.MaxRounds)
	}
	return nil
}

// Runner executes one batch configuration.
type Runner struct {
	cfg Config
	log log.Logger
}

// NewRunner validates cfg, fills the worker, round-cap and seed defaults and
// returns a runner. The base seed resolves here so every trial seed can be
// reported.
func NewRunner(cfg Config) (*Runner, error) {
	if err := cfg.Sanitize(); err != nil {
		return nil, err
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.MaxRounds == 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	if cfg.Params.Seed == 0 {
		cfg.Params.Seed = time.Now().UnixNano()
	}
	return &Runner{
		cfg: cfg,
		log: log.New("engine", cfg.Params.Mode, "trials", cfg.Trials),
	}, nil
}

// Config returns the effective configuration with defaults applied.
func (r *Runner) Config() Config { return r.cfg }

// Run executes all trials, fanning out across the configured workers, and
// returns the aggregated report. A canceled context abandons the trials not
// yet started and returns the context error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	results := make([]TrialResult, r.cfg.Trials)

	var (
		g, gctx = errgroup.WithContext(ctx)
		limiter = rate.NewLimiter(rate.Every(progressEvery), 1)
		done    atomic.Int64
	)
	g.SetLimit(r.cfg.Workers)
	for i := 0; i < r.cfg.Trials; i++ {
		i := i
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := r.runTrial(i)
			if err != nil {
				return err
			}
			results[i] = res
			if n := done.Add(1); limiter.Allow() {
				r.log.Info("Batch progress", "done", n, "total", r.cfg.Trials)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		ID:      uuid.NewString(),
		Config:  r.cfg,
		Started: start,
		Elapsed: time.Since(start),
		Trials:  results,
	}
	report.Aggregates = aggregate(results, report.Elapsed)
	r.log.Info("Batch finished", "id", report.ID, "elapsed", report.Elapsed,
		"fidelityMean", report.Aggregates.FidelityMean, "targetRate", report.Aggregates.TargetRate)
	return report, nil
}

// runTrial drives one engine to completion or the round cap.
func (r *Runner) runTrial(trial int) (TrialResult, error) {
	p := r.cfg.Params
	p.Seed = r.cfg.Params.Seed + int64(trial)
	eng, err := purify.New(p)
	if err != nil {
		return TrialResult{}, err
	}
	start := time.Now()
	st := eng.CurrentState()
	rounds := 0
	for !st.Complete && rounds < r.cfg.MaxRounds {
		st = eng.Step()
		rounds++
	}
	return TrialResult{
		Trial:         trial,
		Seed:          p.Seed,
		FinalFidelity: st.AverageFidelity,
		Rounds:        rounds,
		Survivors:     len(st.Pairs),
		TargetMet:     st.Complete && st.AverageFidelity >= p.TargetFidelity,
		Duration:      time.Since(start),
	}, nil
}
