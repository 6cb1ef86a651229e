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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Suite is a named collection of batch runs loaded from YAML. Each run
// overlays its set fields onto a shared base configuration, so a suite file
// only spells out what differs between runs.
type Suite struct {
	Name string     `yaml:"name"`
	Runs []SuiteRun `yaml:"runs"`
}

// SuiteRun overrides selected fields of a base configuration. Nil fields
// keep the base value.
type SuiteRun struct {
	Name      string   `yaml:"name"`
	Pairs     *int     `yaml:"pairs,omitempty"`
	Noise     *float64 `yaml:"noise,omitempty"`
	Channel   *string  `yaml:"channel,omitempty"`
	Target    *float64 `yaml:"target,omitempty"`
	Engine    *string  `yaml:"engine,omitempty"`
	Seed      *int64   `yaml:"seed,omitempty"`
	Trials    *int     `yaml:"trials,omitempty"`
	Workers   *int     `yaml:"workers,omitempty"`
	MaxRounds *int     `yaml:"maxRounds,omitempty"`
}

// LoadSuite reads and parses a suite file.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if len(s.Runs) == 0 {
		return nil, fmt.Errorf("%w: suite %q defines no runs", ErrInvalidConfig, s.Name)
	}
	for i, run := range s.Runs {
		if run.Name == "" {
			return nil, fmt.Errorf("%w: run %d of suite %q has no name", ErrInvalidConfig, i, s.Name)
		}
	}
	return &s, nil
}

// Apply overlays the run onto base and validates the result.
func (sr *SuiteRun) Apply(base Config) (Config, error) {
	cfg := base
	if sr.Pairs != nil {
		cfg.Params.InitialPairs = *sr.Pairs
	}
	if sr.Noise != nil {
		cfg.Params.NoiseParameter = *sr.Noise
	}
	if sr.Channel != nil {
		if err := cfg.Params.NoiseChannel.UnmarshalText([]byte(*sr.Channel)); err != nil {
			return Config{}, fmt.Errorf("%w: run %q: %v", ErrInvalidConfig, sr.Name, err)
		}
	}
	if sr.Target != nil {
		cfg.Params.TargetFidelity = *sr.Target
	}
	if sr.Engine != nil {
		if err := cfg.Params.Mode.UnmarshalText([]byte(*sr.Engine)); err != nil {
			return Config{}, fmt.Errorf("%w: run %q: %v", ErrInvalidConfig, sr.Name, err)
		}
	}
	if sr.Seed != nil {
		cfg.Params.Seed = *sr.Seed
	}
	if sr.Trials != nil {
		cfg.Trials = *sr.Trials
	}
	if sr.Workers != nil {
		cfg.Workers = *sr.Workers
	}
	if sr.MaxRounds != nil {
		cfg.MaxRounds = *sr.MaxRounds
	}
	if err := cfg.Sanitize(); err != nil {
		return Config{}, fmt.Errorf("run %q: %w", sr.Name, err)
	}
	return cfg, nil
}
