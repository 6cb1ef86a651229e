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

// qdistill is the command line interface for the entanglement purification
// simulator.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/qdistill/go-qdistill/batch"
	"github.com/qdistill/go-qdistill/internal/debug"
	"github.com/qdistill/go-qdistill/internal/flags"
	"github.com/qdistill/go-qdistill/purify"
	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
)

const clientIdentifier = "qdistill"

var (
	pairsFlag = &cli.IntFlag{
		Name:     "pairs",
		Usage:    "Number of noisy Bell pairs to start with",
		Value:    purify.Defaults.InitialPairs,
		Category: flags.SimCategory,
	}
	noiseFlag = &cli.Float64Flag{
		Name:     "noise",
		Usage:    "Noise channel strength in [0,1]",
		Value:    purify.Defaults.NoiseParameter,
		Category: flags.SimCategory,
	}
	channelFlag = &cli.StringFlag{
		Name:     "channel",
		Usage:    `Noise channel corrupting fresh pairs ("uniform", "damping", "dephasing", "depolarizing")`,
		Value:    purify.Defaults.NoiseChannel.String(),
		Category: flags.SimCategory,
	}
	targetFlag = &cli.Float64Flag{
		Name:     "target",
		Usage:    "Average fidelity at which purification stops",
		Value:    purify.Defaults.TargetFidelity,
		Category: flags.SimCategory,
	}
	engineFlag = &cli.StringFlag{
		Name:     "engine",
		Usage:    `Simulation engine ("average" or "montecarlo")`,
		Value:    purify.Defaults.Mode.String(),
		Category: flags.SimCategory,
	}
	seedFlag = &cli.Int64Flag{
		Name:     "seed",
		Usage:    "Random source seed (0 picks a time-based seed)",
		Category: flags.SimCategory,
	}
	maxRoundsFlag = &cli.IntFlag{
		Name:     "max-rounds",
		Usage:    "Abort a run after this many purification rounds",
		Value:    batch.DefaultMaxRounds,
		Category: flags.SimCategory,
	}
	configFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}
)

// simFlags configure the simulation engine shared by run, batch and
// dumpconfig.
var simFlags = []cli.Flag{
	pairsFlag,
	noiseFlag,
	channelFlag,
	targetFlag,
	engineFlag,
	seedFlag,
	maxRoundsFlag,
	configFileFlag,
}

var app = flags.NewApp("the entanglement purification simulator command line interface")

func init() {
	app.Name = clientIdentifier
	app.Commands = []*cli.Command{
		runCommand,
		batchCommand,
		dumpConfigCommand,
		versionCommand,
		licenseCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))
	app.Flags = flags.Merge(simFlags, debug.Flags)
	app.Before = func(ctx *cli.Context) error {
		flags.MigrateGlobalFlags(ctx)
		return debug.Setup(ctx)
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
