// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	forge "github.com/forge6502/forge"
)

// mnemonic consumes a run of ASCII letters and matches it against the
// instruction set, folding case. A miss reports the non-fatal
// ErrExpectedValidMnemonic so the same lexeme can still parse as
// something else.
func (s *Scanner) mnemonic() (forge.Mnemonic, bool, error) {
	m := s.mark()

	word := s.consumeWhile(alpha)
	mn, ok := forge.ParseMnemonic(word)
	if !ok {
		s.rewind(m)
		return 0, false, s.err(ErrExpectedValidMnemonic)
	}
	return mn, true, nil
}

// instruction parses a mnemonic plus an optional operand.
func (s *Scanner) instruction() (*forge.Instruction, bool, error) {
	mn, ok, err := s.mnemonic()
	if err != nil || !ok {
		return nil, false, err
	}

	s.skipWhitespace()

	op, ok, err := s.operand()
	if err != nil {
		return nil, false, err
	}
	in := &forge.Instruction{Mnemonic: mn}
	if ok {
		in.Operand = op
	}
	return in, true, nil
}

// operand parses an instruction operand. The order of attempts
// matters:
//
//  1. The (zp),Y indirect form, before the expression parser can eat
//     its opening parenthesis.
//  2. A bare accumulator register.
//  3. A compound expression. A bare identifier, scoped reference, or
//     "$hh"/"$hhhh" address is left for the address-mode dispatcher;
//     any other bare number (decimal, binary, or hex of another width)
//     is rejected there with an error.
//  4. The address-mode dispatcher.
//  5. An '@label' local-label reference.
//
// A missing closing parenthesis seen by the expression parser is held
// back and reported only if no later alternative matches.
func (s *Scanner) operand() (*forge.Operand, bool, error) {
	m := s.mark()

	if mode, ok, err := s.attemptMode((*Scanner).indirectIndexYMode); err != nil {
		return nil, false, err
	} else if ok {
		return &forge.Operand{Class: forge.OperandMode, Mode: mode}, true, nil
	}

	if ok := s.accumulator(); ok {
		mode := forge.Accumulator()
		return &forge.Operand{Class: forge.OperandMode, Mode: mode}, true, nil
	}

	var held error
	e, ok, err := s.expression()
	switch {
	case err != nil:
		if pe, isParse := err.(*Error); isParse && pe.Kind == ErrMissingClosingParen {
			held = err
			s.rewind(m)
		} else {
			return nil, false, err
		}
	case ok:
		switch e.Op {
		case forge.ExprBinary, forge.ExprParen:
			return &forge.Operand{Class: forge.OperandExpr, Expr: e}, true, nil
		default:
			s.rewind(m)
		}
	default:
		s.rewind(m)
	}

	mode, ok, err := s.addressModes()
	if err != nil {
		return nil, false, err
	}
	if ok {
		return &forge.Operand{Class: forge.OperandMode, Mode: mode}, true, nil
	}

	s.rewind(m)
	if s.consumeByte('@') {
		if name, ok := s.identifier(); ok {
			return &forge.Operand{Class: forge.OperandLocal, Local: name}, true, nil
		}
		s.rewind(m)
	}

	if held != nil {
		return nil, false, held
	}
	return nil, false, nil
}

// accumulator recognizes a bare 'A' register operand. The register
// must stand alone: an 'A' that begins an identifier or expression is
// not an accumulator.
func (s *Scanner) accumulator() bool {
	m := s.mark()

	if !s.consumeByte('A') && !s.consumeByte('a') {
		return false
	}
	if c, ok := s.peek(); ok && (identChar(c) || c == ':') {
		s.rewind(m)
		return false
	}

	// Only end of statement may follow.
	probe := s.mark()
	s.skipWhitespace()
	c, ok := s.peek()
	s.rewind(probe)
	if ok && c != '\n' && c != ';' {
		s.rewind(m)
		return false
	}
	return true
}
