// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"strings"

	forge "github.com/forge6502/forge"
)

// A Resolver owns the translation unit's symbol tables and performs
// the two resolution passes: sizing plus symbol population, then
// operand specialization. Label offsets depend on instruction sizes,
// which depend on operand values, which depend on symbols defined at
// earlier offsets; pass 1 breaks the cycle by sizing deferred operands
// conservatively (absolute unless a known zero-page constant narrows
// them).
type Resolver struct {
	Labels    map[string]forge.Label
	Constants map[string]uint16
	Offset    uint16 // offset counter after pass 1

	scope []string // open SCOPE/PROC/ENUM blocks
	logf  func(format string, args ...interface{})
}

// NewResolver creates a resolver with empty symbol tables. The log
// function may be nil.
func NewResolver(logf func(format string, args ...interface{})) *Resolver {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Resolver{
		Labels:    make(map[string]forge.Label),
		Constants: make(map[string]uint16),
		logf:      logf,
	}
}

// Pass1 walks the lines in order, populating the constant and label
// tables and advancing the offset counter by each line's conservative
// size. Redefining a constant is permitted; the last definition wins.
// Local labels share the flat label namespace. Symbols defined inside
// open SCOPE/PROC/ENUM blocks are additionally recorded under their
// qualified "Outer::Name" paths.
func (r *Resolver) Pass1(lines []forge.Line) error {
	for i := range lines {
		line := &lines[i]

		if c := line.Constant; c != nil {
			r.defineConstant(c.Name, c.Value)
		}

		if l := line.Label; l != nil {
			r.defineLabel(l.Name, forge.Label{Offset: r.Offset, IsLocal: l.Local})
		}

		if d := line.Dir; d != nil {
			switch {
			case d.OpensScope():
				r.scope = append(r.scope, d.Ident)
			case d.ClosesScope():
				if n := len(r.scope); n > 0 {
					r.scope = r.scope[:n-1]
				}
			}
		}

		r.Offset += uint16(line.Size(r.Constants))
	}
	return nil
}

func (r *Resolver) defineConstant(name string, v uint16) {
	r.Constants[name] = v
	for _, q := range r.qualified(name) {
		r.Constants[q] = v
	}
	r.logf("const %-15s $%04X", name, v)
}

func (r *Resolver) defineLabel(name string, l forge.Label) {
	r.Labels[name] = l
	for _, q := range r.qualified(name) {
		r.Labels[q] = l
	}
	r.logf("label %-15s $%04X local=%v", name, l.Offset, l.IsLocal)
}

// qualified returns the scoped paths a symbol is reachable by, one
// per suffix of the open scope stack.
func (r *Resolver) qualified(name string) []string {
	if len(r.scope) == 0 {
		return nil
	}
	paths := make([]string, 0, len(r.scope))
	for i := range r.scope {
		paths = append(paths, strings.Join(r.scope[i:], "::")+"::"+name)
	}
	return paths
}

// lookup finds a symbol by name, preferring labels over constants.
func (r *Resolver) lookup(name string) (v uint16, isLabel, ok bool) {
	if l, found := r.Labels[name]; found {
		return l.Offset, true, true
	}
	if c, found := r.Constants[name]; found {
		return c, false, true
	}
	return 0, false, false
}

// Pass2 walks the lines again, evaluating expressions and
// specializing deferred address modes. After it completes, no operand
// or directive argument names a symbol.
func (r *Resolver) Pass2(lines []forge.Line) error {
	lineNo := 1
	for i := range lines {
		line := &lines[i]
		if err := r.resolveLine(line, lineNo); err != nil {
			return err
		}
		lineNo += int(line.Newlines)
	}
	return nil
}

func (r *Resolver) resolveLine(line *forge.Line, lineNo int) error {
	switch {
	case line.Dir != nil:
		return r.resolveDirective(line.Dir, lineNo)
	case line.Instr != nil:
		return r.resolveInstruction(line.Instr, lineNo)
	default:
		return nil
	}
}

func (r *Resolver) resolveDirective(d *forge.Directive, lineNo int) error {
	switch d.Name {
	case forge.DirBYTE:
		for i := range d.Bytes {
			arg := &d.Bytes[i]
			v, err := r.resolveArg(arg.Kind, arg.Expr, arg.Ident, lineNo)
			if err != nil {
				return err
			}
			if arg.Kind == forge.ArgValue {
				continue
			}
			if v > 0xFF {
				return &Error{Kind: ErrValueTooLarge, Line: lineNo}
			}
			*arg = forge.ByteArg{Kind: forge.ArgValue, Value: uint8(v)}
		}

	case forge.DirWORD:
		for i := range d.Words {
			arg := &d.Words[i]
			v, err := r.resolveArg(arg.Kind, arg.Expr, arg.Ident, lineNo)
			if err != nil {
				return err
			}
			if arg.Kind == forge.ArgValue {
				continue
			}
			*arg = forge.WordArg{Kind: forge.ArgValue, Value: v}
		}
	}
	return nil
}

// resolveArg evaluates a directive argument to a numeric value.
// Expressions are evaluated against the constant table; identifier
// arguments follow the label-wins rule.
func (r *Resolver) resolveArg(kind forge.ArgKind, expr *forge.Expr, ident string, lineNo int) (uint16, error) {
	switch kind {
	case forge.ArgExpr:
		v, err := expr.Eval(r.Constants)
		if err != nil {
			return 0, symbolError(err, lineNo)
		}
		return v, nil
	case forge.ArgIdent:
		v, _, ok := r.lookup(ident)
		if !ok {
			return 0, &Error{Kind: ErrSymbolNotFound, Line: lineNo, Msg: ident}
		}
		return v, nil
	default:
		return 0, nil
	}
}

func (r *Resolver) resolveInstruction(in *forge.Instruction, lineNo int) error {
	op := in.Operand
	if op == nil {
		return nil
	}

	switch op.Class {
	case forge.OperandExpr:
		v, err := op.Expr.Eval(r.Constants)
		if err != nil {
			return symbolError(err, lineNo)
		}
		mode := forge.Absolute(v)
		if v <= 0xFF {
			mode = forge.ZeroPage(uint8(v))
		}
		*op = forge.Operand{Class: forge.OperandMode, Mode: mode}
		r.logf("expr operand -> %s", mode)
		return nil

	case forge.OperandLocal:
		l, ok := r.Labels[op.Local]
		if !ok {
			return &Error{Kind: ErrSymbolNotFound, Line: lineNo, Msg: op.Local}
		}
		*op = forge.Operand{Class: forge.OperandMode, Mode: forge.Absolute(l.Offset)}
		return nil

	default:
		if op.Mode.Resolved() {
			return nil
		}
		mode, err := r.specializeMode(op.Mode, lineNo)
		if err != nil {
			return err
		}
		r.logf("%s -> %s", op.Mode, mode)
		op.Mode = mode
		return nil
	}
}

// specializeMode replaces a deferred address mode with a concrete one.
// Labels always resolve to the absolute class; constants narrow to the
// zero-page class when the value fits in a byte.
func (r *Resolver) specializeMode(m forge.AddressMode, lineNo int) (forge.AddressMode, error) {
	name := m.SymbolName()
	v, isLabel, ok := r.lookup(name)
	if !ok {
		return m, &Error{Kind: ErrSymbolNotFound, Line: lineNo, Msg: name}
	}

	switch m.Shape {
	case forge.ShapeImmediate:
		if v > 0xFF {
			return m, &Error{Kind: ErrValueTooLarge, Line: lineNo, Msg: name}
		}
		return forge.Immediate(uint8(v)), nil

	case forge.ShapeZeroPageOrAbsolute:
		if !isLabel && v <= 0xFF {
			return forge.ZeroPage(uint8(v)), nil
		}
		return forge.Absolute(v), nil

	case forge.ShapeZeroPageOrAbsoluteX:
		if !isLabel && v <= 0xFF {
			return forge.ZeroPageX(uint8(v)), nil
		}
		return forge.AbsoluteX(v), nil

	case forge.ShapeZeroPageOrAbsoluteY:
		if !isLabel && v <= 0xFF {
			return forge.ZeroPageY(uint8(v)), nil
		}
		return forge.AbsoluteY(v), nil

	case forge.ShapeIndexedIndirectX:
		if v > 0xFF {
			return m, &Error{Kind: ErrValueTooLarge, Line: lineNo, Msg: name}
		}
		return forge.IndexedIndirectX(uint8(v)), nil

	case forge.ShapeIndirectIndexY:
		if v > 0xFF {
			return m, &Error{Kind: ErrValueTooLarge, Line: lineNo, Msg: name}
		}
		return forge.IndirectIndexY(uint8(v)), nil

	default:
		return m, &Error{Kind: ErrUnexpectedToken, Line: lineNo, Msg: name}
	}
}

// symbolError converts an evaluation failure into a positioned error.
func symbolError(err error, lineNo int) error {
	if se, ok := err.(*forge.SymbolError); ok {
		return &Error{Kind: ErrSymbolNotFound, Line: lineNo, Msg: se.Name}
	}
	return err
}
