// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"io"
	"os"
	"strings"

	forge "github.com/forge6502/forge"
)

// Result of the Assemble function.
type Result struct {
	Code      []byte                 // assembled machine code
	Origin    uint16                 // origin requested by the last ORG
	Size      uint16                 // offset counter after sizing
	Labels    map[string]forge.Label // resolved label table
	Constants map[string]uint16      // resolved constant table
	Lines     []forge.Line           // resolved line records
	Name      string                 // translation unit name
}

// ObjectFile wraps the result in an object-file container ready for
// serialization.
func (r *Result) ObjectFile() *forge.ObjectFile {
	return forge.NewObjectFile(r.Name, r.Labels, r.Constants, r.Lines)
}

// The assembler is a state object used during the assembly of machine
// code from assembly code.
type assembler struct {
	src      []byte
	name     string
	verbose  io.Writer
	lines    []forge.Line
	resolver *Resolver
	code     []byte
	origin   uint16
}

// Assemble reads assembly source from the provided stream and runs
// the full pipeline: parse, size and populate symbols, specialize
// operands, and generate code. When verbose is non-nil, a trace of
// each stage is written to it.
func Assemble(r io.Reader, name string, verbose io.Writer) (*Result, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	a := &assembler{src: src, name: name, verbose: verbose}

	// Assembly consists of the following steps, each feeding the next.
	steps := []func(a *assembler) error{
		(*assembler).parse,
		(*assembler).populateSymbols,
		(*assembler).specializeOperands,
		(*assembler).generateCode,
	}
	for _, step := range steps {
		if err := step(a); err != nil {
			return nil, err
		}
	}

	return &Result{
		Code:      a.code,
		Origin:    a.origin,
		Size:      a.resolver.Offset,
		Labels:    a.resolver.Labels,
		Constants: a.resolver.Constants,
		Lines:     a.lines,
		Name:      name,
	}, nil
}

// AssembleFile assembles the named source file.
func AssembleFile(path string, verbose io.Writer) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &forge.FileError{File: path}
		}
		return nil, err
	}
	defer f.Close()

	return Assemble(f, path, verbose)
}

func (a *assembler) parse() error {
	a.logSection("Parsing assembly code")
	lines, err := Parse(a.src)
	if err != nil {
		return err
	}
	a.lines = lines
	a.log("%d line records", len(lines))
	return nil
}

func (a *assembler) populateSymbols() error {
	a.logSection("Sizing and populating symbols")
	a.resolver = NewResolver(a.log)
	if err := a.resolver.Pass1(a.lines); err != nil {
		return err
	}
	a.log("total size $%04X", a.resolver.Offset)
	return nil
}

func (a *assembler) specializeOperands() error {
	a.logSection("Specializing operands")
	return a.resolver.Pass2(a.lines)
}

func (a *assembler) generateCode() error {
	a.logSection("Generating code")
	code, origin, err := Encode(a.lines, a.resolver.Labels, a.resolver.Constants, a.log)
	if err != nil {
		return err
	}
	a.code, a.origin = code, origin
	return nil
}

// In verbose mode, log a string to the verbose writer.
func (a *assembler) log(format string, args ...interface{}) {
	if a.verbose != nil {
		fmt.Fprintf(a.verbose, format, args...)
		fmt.Fprintln(a.verbose)
	}
}

// In verbose mode, log a section header.
func (a *assembler) logSection(name string) {
	if a.verbose != nil {
		fmt.Fprintln(a.verbose, strings.Repeat("-", len(name)+6))
		fmt.Fprintf(a.verbose, "-- %s --\n", name)
		fmt.Fprintln(a.verbose, strings.Repeat("-", len(name)+6))
	}
}
