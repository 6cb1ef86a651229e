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
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/naoina/toml"
	"github.com/qdistill/go-qdistill/batch"
	"github.com/qdistill/go-qdistill/internal/flags"
	"github.com/qdistill/go-qdistill/purify"
	"github.com/urfave/cli/v2"
)

var dumpConfigCommand = &cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Export configuration values in TOML format",
	ArgsUsage:   "[<configfile>]",
	Flags:       flags.Merge(simFlags, batchConfigFlags),
	Description: `Export configuration values in TOML format (to stdout by default).`,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// batchSettings is the [Batch] section of the config file.
type batchSettings struct {
	Trials    int
	Workers   int
	MaxRounds int
}

type qdistillConfig struct {
	Sim   purify.Params
	Batch batchSettings
}

func defaultConfig() qdistillConfig {
	return qdistillConfig{
		Sim: purify.Defaults,
		Batch: batchSettings{
			Trials:    trialsFlag.Value,
			Workers:   0,
			MaxRounds: batch.DefaultMaxRounds,
		},
	}
}

func loadConfig(file string, cfg *qdistillConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig assembles the effective configuration: defaults, overridden by
// the config file, overridden by explicitly set command line flags.
func makeConfig(ctx *cli.Context) (qdistillConfig, error) {
	cfg := defaultConfig()
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := applyFlags(ctx, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyFlags(ctx *cli.Context, cfg *qdistillConfig) error {
	if ctx.IsSet(pairsFlag.Name) {
		cfg.Sim.InitialPairs = ctx.Int(pairsFlag.Name)
	}
	if ctx.IsSet(noiseFlag.Name) {
		cfg.Sim.NoiseParameter = ctx.Float64(noiseFlag.Name)
	}
	if ctx.IsSet(channelFlag.Name) {
		if err := cfg.Sim.NoiseChannel.UnmarshalText([]byte(ctx.String(channelFlag.Name))); err != nil {
			return err
		}
	}
	if ctx.IsSet(targetFlag.Name) {
		cfg.Sim.TargetFidelity = ctx.Float64(targetFlag.Name)
	}
	if ctx.IsSet(engineFlag.Name) {
		if err := cfg.Sim.Mode.UnmarshalText([]byte(ctx.String(engineFlag.Name))); err != nil {
			return err
		}
	}
	if ctx.IsSet(seedFlag.Name) {
		cfg.Sim.Seed = ctx.Int64(seedFlag.Name)
	}
	if ctx.IsSet(trialsFlag.Name) {
		cfg.Batch.Trials = ctx.Int(trialsFlag.Name)
	}
	if ctx.IsSet(workersFlag.Name) {
		cfg.Batch.Workers = ctx.Int(workersFlag.Name)
	}
	if ctx.IsSet(maxRoundsFlag.Name) {
		cfg.Batch.MaxRounds = ctx.Int(maxRoundsFlag.Name)
	}
	return nil
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}
	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	dump.Write(out)
	return nil
}
