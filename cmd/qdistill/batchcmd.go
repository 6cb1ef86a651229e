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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/qdistill/go-qdistill/batch"
	"github.com/qdistill/go-qdistill/internal/debug"
	"github.com/qdistill/go-qdistill/internal/flags"
	"github.com/qdistill/go-qdistill/log"
	"github.com/urfave/cli/v2"
)

var (
	trialsFlag = &cli.IntFlag{
		Name:     "trials",
		Usage:    "Number of independent trials to run",
		Value:    16,
		Category: flags.BatchCategory,
	}
	workersFlag = &cli.IntFlag{
		Name:     "workers",
		Usage:    "Maximum concurrent trials (0 uses all CPUs)",
		Category: flags.BatchCategory,
	}
	suiteFlag = &cli.StringFlag{
		Name:     "suite",
		Usage:    "YAML suite of named batch runs",
		Category: flags.BatchCategory,
	}
	outFlag = &cli.StringFlag{
		Name:     "out",
		Usage:    "Write the JSON report to this file",
		Category: flags.BatchCategory,
	}
)

// batchConfigFlags affect the effective configuration; suite and out only
// steer the batch command itself.
var batchConfigFlags = []cli.Flag{trialsFlag, workersFlag}

var batchCommand = &cli.Command{
	Action:    runBatch,
	Name:      "batch",
	Usage:     "Run many independent trials and aggregate the results",
	ArgsUsage: " ",
	Flags:     flags.Merge(simFlags, batchConfigFlags, []cli.Flag{suiteFlag, outFlag}, debug.Flags),
	Description: `
Runs the configured number of independent purification trials concurrently,
each with its own engine and derived seed, and prints aggregate statistics.
With --suite, every named run of the YAML suite is executed in order against
the base configuration.`,
}

func runBatch(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	base := batch.Config{
		Params:    cfg.Sim,
		Trials:    cfg.Batch.Trials,
		Workers:   cfg.Batch.Workers,
		MaxRounds: cfg.Batch.MaxRounds,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reports []*batch.Report
	if suitePath := ctx.String(suiteFlag.Name); suitePath != "" {
		suite, err := batch.LoadSuite(suitePath)
		if err != nil {
			return err
		}
		log.Info("Running suite", "name", suite.Name, "runs", len(suite.Runs))
		for i := range suite.Runs {
			run := &suite.Runs[i]
			report, err := runOne(runCtx, run.Name, func() (batch.Config, error) { return run.Apply(base) })
			if err != nil {
				return err
			}
			reports = append(reports, report)
		}
	} else {
		report, err := runOne(runCtx, "", func() (batch.Config, error) { return base, nil })
		if err != nil {
			return err
		}
		reports = append(reports, report)
	}

	if out := ctx.String(outFlag.Name); out != "" {
		var payload any = reports[0]
		if len(reports) > 1 {
			payload = reports
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			return err
		}
		log.Info("Wrote batch report", "file", out)
	}
	return nil
}

func runOne(ctx context.Context, name string, configure func() (batch.Config, error)) (*batch.Report, error) {
	cfg, err := configure()
	if err != nil {
		return nil, err
	}
	runner, err := batch.NewRunner(cfg)
	if err != nil {
		return nil, err
	}
	if name != "" {
		log.Info("Starting batch run", "run", name, "trials", cfg.Trials)
	}
	report, err := runner.Run(ctx)
	if err != nil {
		return nil, err
	}
	writeAggregateTable(os.Stdout, name, report)
	return report, nil
}

// heading is bold on terminals; fatih/color suppresses the escape codes on
// pipes and files.
var heading = color.New(color.Bold)

func writeAggregateTable(w io.Writer, name string, r *batch.Report) {
	if name != "" {
		heading.Fprintf(w, "\n%s (%s)\n", name, r.ID)
	} else {
		heading.Fprintf(w, "\n%s\n", r.ID)
	}
	agg := r.Aggregates
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Mean", "Std", "Min", "Max"})
	table.Append([]string{"Final fidelity",
		formatFid(agg.FidelityMean),
		formatFid(agg.FidelityStd),
		formatFid(agg.FidelityMin),
		formatFid(agg.FidelityMax),
	})
	table.Append([]string{"Rounds",
		strconv.FormatFloat(agg.RoundsMean, 'f', 2, 64),
		"",
		strconv.Itoa(agg.RoundsMin),
		strconv.Itoa(agg.RoundsMax),
	})
	table.Append([]string{"Target met",
		fmt.Sprintf("%.1f%%", agg.TargetRate*100),
		"", "", "",
	})
	table.Render()
	fmt.Fprintf(w, "%d trials in %v (%.1f trials/s)\n", len(r.Trials), r.Elapsed, agg.TrialsPerSec)
}

func formatFid(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
