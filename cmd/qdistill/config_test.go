// Copyright 2025 The go-qdistill Authors
// This file is part of go-qdistill.
//
// go-qdistill is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-qdistill is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-qdistill. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/kylelemons/godebug/diff"
	"github.com/qdistill/go-qdistill/purify"
	"github.com/qdistill/go-qdistill/quantum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigTOMLRoundTrip(t *testing.T) {
	cfg := defaultConfig()
	cfg.Sim.Mode = purify.ModeMonteCarlo
	cfg.Sim.NoiseChannel = quantum.ChannelDephasing
	cfg.Sim.Seed = 42

	out, err := tomlSettings.Marshal(&cfg)
	require.NoError(t, err)

	var back qdistillConfig
	require.NoError(t, tomlSettings.NewDecoder(bytes.NewReader(out)).Decode(&back))
	require.Equal(t, cfg, back)

	again, err := tomlSettings.Marshal(&back)
	require.NoError(t, err)
	if d := diff.Diff(string(out), string(again)); d != "" {
		t.Fatalf("TOML dump not stable:\n%s", d)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[Sim]
InitialPairs = 8
NoiseParameter = 0.3
NoiseChannel = "dephasing"
Mode = "montecarlo"
TargetFidelity = 0.9
Seed = 7

[Batch]
Trials = 4
Workers = 2
MaxRounds = 12
`), 0644))

	cfg := defaultConfig()
	require.NoError(t, loadConfig(path, &cfg))
	assert.Equal(t, 8, cfg.Sim.InitialPairs)
	assert.InDelta(t, 0.3, cfg.Sim.NoiseParameter, 1e-12)
	assert.Equal(t, quantum.ChannelDephasing, cfg.Sim.NoiseChannel)
	assert.Equal(t, purify.ModeMonteCarlo, cfg.Sim.Mode)
	assert.InDelta(t, 0.9, cfg.Sim.TargetFidelity, 1e-12)
	assert.Equal(t, int64(7), cfg.Sim.Seed)
	assert.Equal(t, 4, cfg.Batch.Trials)
	assert.Equal(t, 2, cfg.Batch.Workers)
	assert.Equal(t, 12, cfg.Batch.MaxRounds)
}

func TestLoadConfigKeepsUnsetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[Sim]\nInitialPairs = 4\n"), 0644))

	cfg := defaultConfig()
	require.NoError(t, loadConfig(path, &cfg))
	assert.Equal(t, 4, cfg.Sim.InitialPairs)
	assert.Equal(t, purify.Defaults.NoiseChannel, cfg.Sim.NoiseChannel)
	assert.Equal(t, purify.Defaults.TargetFidelity, cfg.Sim.TargetFidelity)
	assert.Equal(t, defaultConfig().Batch, cfg.Batch)
}

func TestLoadConfigRejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[Sim]\nBananas = 3\n"), 0644))

	cfg := defaultConfig()
	err := loadConfig(path, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bananas")
}
