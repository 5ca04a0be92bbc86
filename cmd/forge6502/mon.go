// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/beevik/cmd"
	"github.com/beevik/term"
	cli "github.com/urfave/cli/v2"

	"github.com/forge6502/forge/asm"
)

// The monitor accumulates assembly lines interactively and assembles
// them on demand.
type monitor struct {
	input    *bufio.Scanner
	prompt   bool
	assembly []string
	quit     bool
}

var monCmds *cmd.Tree

func init() {
	root := cmd.NewTree("forge6502")
	root.AddCommand(cmd.Command{
		Name:        "help",
		Description: "Display help for a command.",
		Usage:       "help [<command>]",
		Data:        (*monitor).cmdHelp,
	})
	root.AddCommand(cmd.Command{
		Name:  "asm",
		Brief: "Append an assembly line to the program",
		Usage: "asm <line>",
		Data:  (*monitor).cmdAsm,
	})
	root.AddCommand(cmd.Command{
		Name:  "list",
		Brief: "Assemble the program and list its bytes",
		Usage: "list",
		Data:  (*monitor).cmdList,
	})
	root.AddCommand(cmd.Command{
		Name:  "sym",
		Brief: "Assemble the program and print its symbol tables",
		Usage: "sym",
		Data:  (*monitor).cmdSym,
	})
	root.AddCommand(cmd.Command{
		Name:  "save",
		Brief: "Assemble the program and write the binary to disk",
		Usage: "save <file>",
		Data:  (*monitor).cmdSave,
	})
	root.AddCommand(cmd.Command{
		Name:  "clear",
		Brief: "Discard the accumulated program",
		Usage: "clear",
		Data:  (*monitor).cmdClear,
	})
	root.AddCommand(cmd.Command{
		Name:  "quit",
		Brief: "Exit the monitor",
		Usage: "quit",
		Data:  (*monitor).cmdQuit,
	})
	monCmds = root
}

// runMonitor enters the interactive loop. The prompt is suppressed
// when input is piped rather than typed.
func runMonitor(c *cli.Context) error {
	m := &monitor{
		input:  bufio.NewScanner(os.Stdin),
		prompt: term.IsTerminal(int(os.Stdin.Fd())),
	}

	for !m.quit {
		if m.prompt {
			fmt.Print("* ")
		}
		if !m.input.Scan() {
			break
		}
		if err := m.process(m.input.Text()); err != nil {
			fmt.Printf("ERROR: %v\n", err)
		}
	}
	return nil
}

func (m *monitor) process(line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	sel, err := monCmds.Lookup(line)
	switch {
	case err == cmd.ErrNotFound:
		fmt.Println("Command not found.")
		return nil
	case err == cmd.ErrAmbiguous:
		fmt.Println("Command is ambiguous.")
		return nil
	case err != nil:
		return err
	}
	if sel.Command == nil {
		return nil
	}

	handler := sel.Command.Data.(func(*monitor, cmd.Selection) error)
	return handler(m, sel)
}

func (m *monitor) assemble() (*asm.Result, error) {
	src := strings.Join(m.assembly, "\n") + "\n"
	return asm.Assemble(strings.NewReader(src), "monitor", nil)
}

func (m *monitor) cmdHelp(sel cmd.Selection) error {
	for _, c := range monCmds.Commands {
		if c.Brief != "" {
			fmt.Printf("  %-8s %s\n", c.Name, c.Brief)
		}
	}
	return nil
}

func (m *monitor) cmdAsm(sel cmd.Selection) error {
	m.assembly = append(m.assembly, strings.Join(sel.Args, " "))
	return nil
}

func (m *monitor) cmdList(sel cmd.Selection) error {
	result, err := m.assemble()
	if err != nil {
		return err
	}
	for i, line := range m.assembly {
		fmt.Printf("%3d  %s\n", i+1, line)
	}
	fmt.Printf("%d bytes: % X\n", len(result.Code), result.Code)
	return nil
}

func (m *monitor) cmdSym(sel cmd.Selection) error {
	result, err := m.assemble()
	if err != nil {
		return err
	}

	labels := make([]string, 0, len(result.Labels))
	for name := range result.Labels {
		labels = append(labels, name)
	}
	sort.Strings(labels)
	for _, name := range labels {
		fmt.Printf("  label %-15s $%04X\n", name, result.Labels[name].Offset)
	}

	consts := make([]string, 0, len(result.Constants))
	for name := range result.Constants {
		consts = append(consts, name)
	}
	sort.Strings(consts)
	for _, name := range consts {
		fmt.Printf("  const %-15s $%04X\n", name, result.Constants[name])
	}
	return nil
}

func (m *monitor) cmdSave(sel cmd.Selection) error {
	if len(sel.Args) < 1 {
		fmt.Println("save requires a file name")
		return nil
	}
	result, err := m.assemble()
	if err != nil {
		return err
	}
	if err := os.WriteFile(sel.Args[0], result.Code, 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %d bytes to %s\n", len(result.Code), sel.Args[0])
	return nil
}

func (m *monitor) cmdClear(sel cmd.Selection) error {
	m.assembly = nil
	return nil
}

func (m *monitor) cmdQuit(sel cmd.Selection) error {
	m.quit = true
	return nil
}
