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

// Package flags holds urfave/cli helpers shared by the commands.
package flags

import (
	"github.com/qdistill/go-qdistill/params"
	"github.com/urfave/cli/v2"
)

// Flag categories grouping the command line help output.
const (
	SimCategory     = "SIMULATION"
	BatchCategory   = "BATCH"
	LoggingCategory = "LOGGING"
	MiscCategory    = "MISC"
)

// NewApp creates an app with sane defaults.
func NewApp(usage string) *cli.App {
	app := cli.NewApp()
	app.EnableBashCompletion = true
	app.Version = params.VersionWithMeta
	app.Usage = usage
	app.Copyright = "Copyright 2025 The go-qdistill Authors"
	app.Before = func(ctx *cli.Context) error {
		MigrateGlobalFlags(ctx)
		return nil
	}
	return app
}

// Merge merges the given flag slices.
func Merge(groups ...[]cli.Flag) []cli.Flag {
	var ret []cli.Flag
	for _, group := range groups {
		ret = append(ret, group...)
	}
	return ret
}

var migrationApplied = map[*cli.Command]struct{}{}

// MigrateGlobalFlags makes all global flag values available in the context.
// This should be called as early as possible in app.Before.
//
// Example:
//
//	qdistill --verbosity 4 run
//
// is equivalent after calling this method to:
//
//	qdistill run --verbosity 4
//
// i.e. in the subcommand context, global flag values are now available.
func MigrateGlobalFlags(ctx *cli.Context) {
	var iterate func(cs []*cli.Command, fn func(*cli.Command))
	iterate = func(cs []*cli.Command, fn func(*cli.Command)) {
		for _, cmd := range cs {
			if _, ok := migrationApplied[cmd]; ok {
				continue
			}
			migrationApplied[cmd] = struct{}{}
			fn(cmd)
			iterate(cmd.Subcommands, fn)
		}
	}

	// This iterates over all commands and wraps their action function.
	iterate(ctx.App.Commands, func(cmd *cli.Command) {
		if cmd.Action == nil {
			return
		}
		action := cmd.Action
		cmd.Action = func(ctx *cli.Context) error {
			doMigrateFlags(ctx)
			return action(ctx)
		}
	})
}

func doMigrateFlags(ctx *cli.Context) {
	// Figure out if there are any aliases of commands. If there are, skip
	// them when iterating over the flag names so a canonical name is not
	// clobbered by its alias.
	aliases := make(map[string]bool)
	for _, fl := range ctx.Command.Flags {
		for _, alias := range fl.Names()[1:] {
			aliases[alias] = true
		}
	}
	for _, name := range ctx.FlagNames() {
		for _, parent := range ctx.Lineage()[1:] {
			if parent.IsSet(name) {
				if aliases[name] {
					continue
				}
				ctx.Set(name, parent.String(name))
				break
			}
		}
	}
}
