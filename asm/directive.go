// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	forge "github.com/forge6502/forge"
)

// directive parses a '.'-prefixed directive with its arguments. The
// ADDR and CODE aliases are canonicalized here: ADDR produces a WORD
// directive and CODE a SEGMENT "CODE".
func (s *Scanner) directive() (*forge.Directive, bool, error) {
	m := s.mark()

	if !s.consumeByte('.') {
		return nil, false, nil
	}

	word := s.consumeWhile(alpha)
	name, ok := forge.ParseDirectiveName(word)
	if !ok {
		s.rewind(m)
		return nil, false, nil
	}

	s.skipWhitespace()

	switch name {
	case forge.DirORG:
		v, ok, err := s.number()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, s.err(ErrValidArgNotFound)
		}
		return &forge.Directive{Name: forge.DirORG, Org: v}, true, nil

	case forge.DirBYTE:
		args, err := s.byteArgList()
		if err != nil {
			return nil, false, err
		}
		return &forge.Directive{Name: forge.DirBYTE, Bytes: args}, true, nil

	case forge.DirWORD, forge.DirADDR:
		args, err := s.wordArgList(name)
		if err != nil {
			return nil, false, err
		}
		return &forge.Directive{Name: forge.DirWORD, Words: args}, true, nil

	case forge.DirSEGMENT:
		ident, ok := s.quotedIdentifier()
		if !ok {
			s.rewind(m)
			return nil, false, nil
		}
		return &forge.Directive{Name: forge.DirSEGMENT, Ident: ident}, true, nil

	case forge.DirCODE:
		return &forge.Directive{Name: forge.DirSEGMENT, Ident: "CODE"}, true, nil

	case forge.DirINCLUDE:
		path, ok := s.quotedPath()
		if !ok {
			s.rewind(m)
			return nil, false, nil
		}
		return &forge.Directive{Name: forge.DirINCLUDE, Ident: path}, true, nil

	case forge.DirPROC, forge.DirENUM, forge.DirMACRO, forge.DirSCOPE:
		ident, ok := s.identifier()
		if !ok {
			s.rewind(m)
			return nil, false, nil
		}
		return &forge.Directive{Name: name, Ident: ident}, true, nil

	default:
		// The END* markers take no arguments.
		return &forge.Directive{Name: name}, true, nil
	}
}

// byteArgList parses one or more comma-separated BYTE arguments. A
// trailing comma terminates the list silently.
func (s *Scanner) byteArgList() ([]forge.ByteArg, error) {
	arg, ok, err := s.byteArg()
	if err != nil && !retryable(err) {
		return nil, err
	}
	if err != nil || !ok {
		return nil, s.errf(ErrDirectiveWithNoArg, "BYTE")
	}

	args := []forge.ByteArg{arg}
	for {
		m := s.mark()
		s.skipWhitespace()
		if !s.consumeByte(',') {
			s.rewind(m)
			break
		}
		s.skipWhitespace()

		arg, ok, err := s.byteArg()
		if err != nil && !retryable(err) {
			return nil, err
		}
		if err != nil || !ok {
			// A trailing comma terminates the list silently.
			break
		}
		args = append(args, arg)
	}
	return args, nil
}

// byteArg parses one BYTE argument: a value no wider than 8 bits, an
// expression, or an identifier.
func (s *Scanner) byteArg() (forge.ByteArg, bool, error) {
	m := s.mark()

	v, ok, err := s.number()
	if err != nil {
		return forge.ByteArg{}, false, err
	}
	if ok {
		if v > 0xFF {
			return forge.ByteArg{}, false, s.errf(ErrValueTooLarge, "$%X does not fit in a byte", v)
		}
		return forge.ByteArg{Kind: forge.ArgValue, Value: uint8(v)}, true, nil
	}
	s.rewind(m)

	e, ok, err := s.expression()
	if err != nil {
		return forge.ByteArg{}, false, err
	}
	if ok {
		switch e.Op {
		case forge.ExprIdentifier:
			// A bare identifier argument keeps its own form.
			s.rewind(m)
		default:
			return forge.ByteArg{Kind: forge.ArgExpr, Expr: e}, true, nil
		}
	} else {
		s.rewind(m)
	}

	if ident, ok := s.identifier(); ok {
		return forge.ByteArg{Kind: forge.ArgIdent, Ident: ident}, true, nil
	}

	s.rewind(m)
	return forge.ByteArg{}, false, s.err(ErrValidArgNotFound)
}

// wordArgList parses one or more comma-separated WORD (or ADDR)
// arguments. A trailing comma terminates the list silently.
func (s *Scanner) wordArgList(name forge.DirectiveName) ([]forge.WordArg, error) {
	arg, ok, err := s.wordArg()
	if err != nil && !retryable(err) {
		return nil, err
	}
	if err != nil || !ok {
		return nil, s.errf(ErrDirectiveWithNoArg, "%s", name)
	}

	args := []forge.WordArg{arg}
	for {
		m := s.mark()
		s.skipWhitespace()
		if !s.consumeByte(',') {
			s.rewind(m)
			break
		}
		s.skipWhitespace()

		arg, ok, err := s.wordArg()
		if err != nil && !retryable(err) {
			return nil, err
		}
		if err != nil || !ok {
			// A trailing comma terminates the list silently.
			break
		}
		args = append(args, arg)
	}
	return args, nil
}

// wordArg parses one WORD argument: a 16-bit value, an expression, or
// an identifier.
func (s *Scanner) wordArg() (forge.WordArg, bool, error) {
	m := s.mark()

	v, ok, err := s.number()
	if err != nil {
		return forge.WordArg{}, false, err
	}
	if ok {
		return forge.WordArg{Kind: forge.ArgValue, Value: v}, true, nil
	}
	s.rewind(m)

	e, ok, err := s.expression()
	if err != nil {
		return forge.WordArg{}, false, err
	}
	if ok {
		switch e.Op {
		case forge.ExprIdentifier:
			s.rewind(m)
		default:
			return forge.WordArg{Kind: forge.ArgExpr, Expr: e}, true, nil
		}
	} else {
		s.rewind(m)
	}

	if ident, ok := s.identifier(); ok {
		return forge.WordArg{Kind: forge.ArgIdent, Ident: ident}, true, nil
	}

	s.rewind(m)
	return forge.WordArg{}, false, s.err(ErrValidArgNotFound)
}

// quotedIdentifier parses a double-quoted identifier.
func (s *Scanner) quotedIdentifier() (string, bool) {
	m := s.mark()

	s.skipWhitespace()
	if !s.consumeByte('"') {
		s.rewind(m)
		return "", false
	}
	ident, ok := s.identifier()
	if !ok || !s.consumeByte('"') {
		s.rewind(m)
		return "", false
	}
	return ident, true
}

// quotedPath parses a double-quoted file path.
func (s *Scanner) quotedPath() (string, bool) {
	m := s.mark()

	s.skipWhitespace()
	if !s.consumeByte('"') {
		s.rewind(m)
		return "", false
	}
	path := s.consumeWhile(pathChar)
	if !s.consumeByte('"') {
		s.rewind(m)
		return "", false
	}
	return path, true
}
