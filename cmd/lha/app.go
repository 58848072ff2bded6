// Copyright 2025 The go-delharc Authors
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

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	// ExitCodeSuccess is successful error code.
	ExitCodeSuccess int = iota

	// ExitCodeFlagParseError is the exit code for a flag parsing error.
	ExitCodeFlagParseError

	// ExitCodeUnknownError is the exit code for an unknown error.
	ExitCodeUnknownError
)

// ErrLha is the base error for CLI errors.
var ErrLha = errors.New("lha")

// ErrFlagParse is a flag parsing error.
var ErrFlagParse = errors.New("parsing flags")

// ErrUnsupported indicates a feature is unsupported.
var ErrUnsupported = errors.New("unsupported")

func init() {
	// Set the HelpFlag to a random name so that it isn't used. `cli` handles
	// the flag with the root command such that it takes a command name argument
	// but we don't use commands.
	//
	// This is done because `lha --help foo` will display a
	// "command foo not found" error instead of the help.
	//
	// This flag is hidden by the help output.
	// See: github.com/urfave/cli/issues/1809
	cli.HelpFlag = &cli.BoolFlag{
		// NOTE: Use a random name no one would guess.
		Name:               "d41d8cd98f00b204e980",
		DisableDefaultText: true,
	}
}

// check checks the error and panics if not nil.
func check(err error) {
	if err != nil {
		panic(err)
	}
}

// must checks the error and panics if not nil.
func must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

func newLhaApp() *cli.App {
	return &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "List and extract LHA/LZH archives.",
		Description: strings.Join([]string{
			"lha(1) style CLI written in Go.",
			"http://github.com/kosumosu/go-delharc",
		}, "\n"),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:               "list",
				Usage:              "list archive contents",
				Aliases:            []string{"l"},
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "extract",
				Usage:              "extract stored entries from an archive",
				Aliases:            []string{"x"},
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "force",
				Usage:              "force overwrite of output files",
				Aliases:            []string{"f"},
				DisableDefaultText: true,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "logging level (error, info, debug, trace)",
				Value: "error",
			},

			// Special flags are shown at the end.
			&cli.BoolFlag{
				Name:               "help",
				Usage:              "print this help text and exit",
				Aliases:            []string{"h"},
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "version",
				Usage:              "print version information and exit",
				Aliases:            []string{"V"},
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "license",
				Usage:              "print license information and exit",
				Aliases:            []string{"L"},
				DisableDefaultText: true,
			},
		},
		ArgsUsage:       "[PATH]...",
		Copyright:       "The go-delharc Authors",
		HideHelp:        true,
		HideHelpCommand: true,
		Action: func(c *cli.Context) error {
			if c.Bool("help") {
				check(cli.ShowAppHelp(c))
				return nil
			}

			if c.Bool("version") {
				return printVersion(c)
			}

			if c.Bool("license") {
				return printLicense(c)
			}

			logLevels := map[string]logrus.Level{
				"error": logrus.ErrorLevel,
				"info":  logrus.InfoLevel,
				"debug": logrus.DebugLevel,
				"trace": logrus.TraceLevel,
			}
			level, ok := logLevels[c.String("log-level")]
			if !ok {
				return fmt.Errorf("%w: unknown log level %q", ErrFlagParse, c.String("log-level"))
			}
			logrus.SetLevel(level)

			for _, path := range c.Args().Slice() {
				if c.Bool("extract") {
					x := extract{
						path:  path,
						force: c.Bool("force"),
					}
					if err := x.Run(); err != nil {
						return err
					}
					continue
				}
				l := list{
					path: path,
				}
				if err := l.Run(); err != nil {
					return err
				}
			}

			return nil
		},
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}

			// Print the error and exit with the code for its kind.
			_ = must(fmt.Fprintf(c.App.ErrWriter, "%s: %v\n", c.App.Name, err))
			if errors.Is(err, ErrFlagParse) {
				cli.OsExiter(ExitCodeFlagParseError)
				return
			}

			cli.OsExiter(ExitCodeUnknownError)
		},
	}
}
