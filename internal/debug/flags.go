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

// Package debug wires the logging command line flags to the root logger.
package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/qdistill/go-qdistill/internal/flags"
	"github.com/qdistill/go-qdistill/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	verbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value:    3,
		Category: flags.LoggingCategory,
	}
	logJSONFlag = &cli.BoolFlag{
		Name:     "log.json",
		Usage:    "Format logs with JSON",
		Category: flags.LoggingCategory,
	}
	logFileFlag = &cli.StringFlag{
		Name:     "log.file",
		Usage:    "Write logs to a file",
		Category: flags.LoggingCategory,
	}
	logRotateFlag = &cli.BoolFlag{
		Name:     "log.rotate",
		Usage:    "Enables log file rotation",
		Category: flags.LoggingCategory,
	}
	logMaxSizeMBsFlag = &cli.IntFlag{
		Name:     "log.maxsize",
		Usage:    "Maximum size in MBs of a single log file",
		Value:    100,
		Category: flags.LoggingCategory,
	}
	logMaxBackupsFlag = &cli.IntFlag{
		Name:     "log.maxbackups",
		Usage:    "Maximum number of log files to retain",
		Value:    10,
		Category: flags.LoggingCategory,
	}
)

// Flags holds all command-line flags required to configure logging.
var Flags = []cli.Flag{
	verbosityFlag,
	logJSONFlag,
	logFileFlag,
	logRotateFlag,
	logMaxSizeMBsFlag,
	logMaxBackupsFlag,
}

var logOutputFile io.WriteCloser

// Setup initializes logging based on the CLI flags. It should be called as
// early as possible in the program.
func Setup(ctx *cli.Context) error {
	verbosity := ctx.Int(verbosityFlag.Name)
	if verbosity < 0 || verbosity > 5 {
		return fmt.Errorf("invalid verbosity %d, want 0 (crit) through 5 (trace)", verbosity)
	}
	level := log.FromLegacyLevel(verbosity)

	var (
		output   io.Writer = os.Stderr
		logFile            = ctx.String(logFileFlag.Name)
		rotation           = ctx.Bool(logRotateFlag.Name)
	)
	switch {
	case rotation:
		// Lumberjack picks its own temp location when no file is given;
		// resolve it here so the effective location can be reported.
		if logFile == "" {
			logFile = filepath.Join(os.TempDir(), "qdistill.log")
		}
		if err := validateLogLocation(filepath.Dir(logFile)); err != nil {
			return fmt.Errorf("failed to initialize file logger: %v", err)
		}
		logOutputFile = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    ctx.Int(logMaxSizeMBsFlag.Name),
			MaxBackups: ctx.Int(logMaxBackupsFlag.Name),
		}
		output = io.MultiWriter(os.Stderr, logOutputFile)
	case logFile != "":
		var err error
		if logOutputFile, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err != nil {
			return fmt.Errorf("failed to initialize file logger: %v", err)
		}
		output = io.MultiWriter(os.Stderr, logOutputFile)
	}

	var handler slog.Handler
	if ctx.Bool(logJSONFlag.Name) {
		handler = log.JSONHandlerWithLevel(output, level)
	} else {
		// Color only when stderr is the sole destination and is a real
		// terminal; ANSI escapes must not leak into log files.
		useColor := logFile == "" &&
			(isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) &&
			os.Getenv("TERM") != "dumb"
		if useColor {
			output = colorable.NewColorableStderr()
		}
		handler = log.NewTerminalHandlerWithLevel(output, level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))

	if logFile != "" {
		log.Info("Logging configured", "file", logFile, "rotate", rotation)
	}
	return nil
}

// Exit closes the log output file, when one is open.
func Exit() {
	if logOutputFile != nil {
		logOutputFile.Close()
	}
}

func validateLogLocation(path string) error {
	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		return fmt.Errorf("error creating the directory: %w", err)
	}
	// Probe whether the directory is writable.
	tmp := filepath.Join(path, "tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	f.Close()
	return os.Remove(tmp)
}
