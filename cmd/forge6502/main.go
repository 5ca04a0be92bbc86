// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	cli "github.com/urfave/cli/v2"

	forge "github.com/forge6502/forge"
	"github.com/forge6502/forge/asm"
)

func main() {
	app := &cli.App{
		Name:      "forge6502",
		Usage:     "Parses a 6502 assembly file into an object file to be linked",
		ArgsUsage: "<input.asm>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output file (default: input with .out extension)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "trace each assembly stage",
			},
		},
		Action: assembleObject,
		Commands: []*cli.Command{
			{
				Name:      "exe",
				Usage:     "Assemble a file into a final executable without linking",
				ArgsUsage: "<input.asm>",
				Action:    assembleExe,
			},
			{
				Name:   "mon",
				Usage:  "Start the interactive assembly monitor",
				Action: runMonitor,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

// verboseWriter returns the trace destination, or nil when tracing is
// off.
func verboseWriter(c *cli.Context) io.Writer {
	if c.Bool("verbose") {
		return os.Stdout
	}
	return nil
}

// outputPath derives the output file name: an explicit --output wins,
// otherwise the input path gets its extension replaced.
func outputPath(c *cli.Context, input, ext string) string {
	if out := c.String("output"); out != "" {
		return out
	}
	if i := strings.LastIndexByte(input, '.'); i > 0 {
		return input[:i] + ext
	}
	return input + ext
}

func inputArg(c *cli.Context) (string, error) {
	if c.Args().Len() < 1 {
		return "", cli.Exit("missing input file", 1)
	}
	return c.Args().First(), nil
}

// assembleObject runs the full pipeline and serializes the object
// container.
func assembleObject(c *cli.Context) error {
	input, err := inputArg(c)
	if err != nil {
		return err
	}

	result, err := asm.AssembleFile(input, verboseWriter(c))
	if err != nil {
		return asmExit(err)
	}

	out := outputPath(c, input, ".out")
	if err := forge.WriteObjectFile(out, result.ObjectFile()); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

// assembleExe assembles straight to a flat binary, bypassing the
// object file.
func assembleExe(c *cli.Context) error {
	input, err := inputArg(c)
	if err != nil {
		return err
	}

	result, err := asm.AssembleFile(input, verboseWriter(c))
	if err != nil {
		return asmExit(err)
	}

	out := outputPath(c, input, ".bin")
	if err := os.WriteFile(out, result.Code, 0644); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

// asmExit formats an assembly failure with its source line number.
func asmExit(err error) error {
	if pe, ok := err.(*asm.Error); ok {
		return cli.Exit(fmt.Sprintf("line %d: %s", pe.Line, pe), 1)
	}
	return cli.Exit(err.Error(), 1)
}
