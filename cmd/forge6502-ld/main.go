// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	cli "github.com/urfave/cli/v2"

	forge "github.com/forge6502/forge"
	"github.com/forge6502/forge/linker"
)

func main() {
	app := &cli.App{
		Name:      "forge6502-ld",
		Usage:     "Links 6502 object files into a final binary",
		ArgsUsage: "<object.out> ...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "script",
				Aliases:  []string{"s"},
				Usage:    "linker script",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "a.bin",
				Usage:   "output image",
			},
		},
		Action: link,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func link(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return cli.Exit("missing input files, please provide at least 1", 1)
	}

	scriptSrc, err := os.ReadFile(c.String("script"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	script, err := linker.ParseScript(scriptSrc)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	objects := make([]*forge.ObjectFile, 0, c.Args().Len())
	for _, path := range c.Args().Slice() {
		o, err := forge.ReadObjectFile(path)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		objects = append(objects, o)
	}

	image, err := linker.Link(script, objects)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if err := os.WriteFile(c.String("output"), image, 0644); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}
