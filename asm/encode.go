// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	forge "github.com/forge6502/forge"
)

// An encoder turns resolved lines into machine code. Label offsets
// are relative to the start of the translation unit, so the encoder
// tracks the same offset counter pass 1 used; ORG records the
// requested origin without emitting bytes or disturbing the counter.
type encoder struct {
	labels    map[string]forge.Label
	constants map[string]uint16
	code      []byte
	offset    uint16
	origin    uint16
	logf      func(format string, args ...interface{})
}

// Encode generates machine code from resolved lines. It returns the
// code and the origin requested by the last ORG directive.
func Encode(lines []forge.Line, labels map[string]forge.Label, constants map[string]uint16,
	logf func(format string, args ...interface{})) ([]byte, uint16, error) {

	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	e := &encoder{
		labels:    labels,
		constants: constants,
		logf:      logf,
	}

	lineNo := 1
	for i := range lines {
		if err := e.encodeLine(&lines[i], lineNo); err != nil {
			return nil, 0, err
		}
		lineNo += int(lines[i].Newlines)
	}
	return e.code, e.origin, nil
}

func (e *encoder) encodeLine(line *forge.Line, lineNo int) error {
	switch {
	case line.Dir != nil:
		return e.encodeDirective(line.Dir, lineNo)
	case line.Instr != nil:
		return e.encodeInstruction(line.Instr, lineNo)
	default:
		return nil
	}
}

func (e *encoder) encodeDirective(d *forge.Directive, lineNo int) error {
	switch d.Name {
	case forge.DirORG:
		// Sets the program counter only; emits nothing. Padding to a
		// higher origin is deliberately not performed.
		e.origin = d.Org
		e.logf("%04X  .ORG $%04X", e.offset, d.Org)

	case forge.DirBYTE:
		start := len(e.code)
		for i := range d.Bytes {
			a := &d.Bytes[i]
			if a.Kind != forge.ArgValue {
				return &Error{Kind: ErrSymbolNotFound, Line: lineNo, Msg: a.Ident}
			}
			e.code = append(e.code, a.Value)
		}
		e.logf("%04X  .BYTE %s", e.offset, byteString(e.code[start:]))
		e.offset += uint16(len(d.Bytes))

	case forge.DirWORD:
		start := len(e.code)
		for i := range d.Words {
			a := &d.Words[i]
			if a.Kind != forge.ArgValue {
				return &Error{Kind: ErrSymbolNotFound, Line: lineNo, Msg: a.Ident}
			}
			e.code = append(e.code, toBytes(2, int(a.Value))...)
		}
		e.logf("%04X  .WORD %s", e.offset, byteString(e.code[start:]))
		e.offset += uint16(2 * len(d.Words))

	default:
		// PROC, SCOPE, and ENUM markers shape the symbol tables during
		// pass 1; segment, macro, and include markers are metadata. None
		// of them emits bytes.
	}
	return nil
}

func (e *encoder) encodeInstruction(in *forge.Instruction, lineNo int) error {
	gen, err := e.generic(in, lineNo)
	if err != nil {
		return err
	}

	op, ok := forge.LookupOpCode(in.Mnemonic, gen)
	if !ok {
		// A zero-page class the mnemonic cannot encode promotes to
		// its absolute counterpart, e.g. LDA $20,Y.
		if wide, promoted := gen.Promote(); promoted {
			op, ok = forge.LookupOpCode(in.Mnemonic, wide)
			gen = wide
		}
		if !ok {
			return &Error{Kind: ErrNoSuchOpcode, Line: lineNo,
				Msg: "(" + in.Mnemonic.String() + ", " + gen.String() + ")"}
		}
	}

	e.code = append(e.code, op.Byte)

	switch {
	case op.Length == 1:

	case gen == forge.GenRelative:
		disp, ok := relOffset(int(in.Operand.Mode.Value), int(e.offset)+2)
		if !ok {
			return &Error{Kind: ErrBranchOutOfRange, Line: lineNo, Msg: in.Mnemonic.String()}
		}
		e.code = append(e.code, disp)

	case op.Length == 2:
		e.code = append(e.code, byte(in.Operand.Mode.Value))

	default:
		e.code = append(e.code, toBytes(2, int(in.Operand.Mode.Value))...)
	}

	e.logf("%04X  %s %s  %s", e.offset, in.Mnemonic, gen,
		byteString(e.code[len(e.code)-int(op.Length):]))
	e.offset += uint16(op.Length)
	return nil
}

// generic classifies an instruction for opcode lookup. Branches use
// relative mode exclusively; a missing operand is implied.
func (e *encoder) generic(in *forge.Instruction, lineNo int) (forge.Generic, error) {
	if in.Operand == nil {
		return forge.GenImplied, nil
	}
	if in.Mnemonic.IsBranch() {
		if in.Operand.Class != forge.OperandMode || !in.Operand.Mode.Resolved() {
			return 0, &Error{Kind: ErrSymbolNotFound, Line: lineNo, Msg: in.Mnemonic.String()}
		}
		return forge.GenRelative, nil
	}
	if in.Operand.Class != forge.OperandMode || !in.Operand.Mode.Resolved() {
		return 0, &Error{Kind: ErrSymbolNotFound, Line: lineNo, Msg: in.Operand.Mode.SymbolName()}
	}

	gen, err := in.Operand.Mode.ToGeneric(e.labels, e.constants)
	if err != nil {
		return 0, symbolError(err, lineNo)
	}
	return gen, nil
}

// relOffset computes a branch displacement relative to the address
// following the branch instruction, as a two's-complement byte. The
// second result is false if the displacement does not fit.
func relOffset(target, next int) (byte, bool) {
	diff := target - next
	switch {
	case diff < -128 || diff > 127:
		return 0, false
	case diff >= 0:
		return byte(diff), true
	default:
		return byte(256 + diff), true
	}
}
