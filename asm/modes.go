// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	forge "github.com/forge6502/forge"
)

// modeParser is the signature shared by the address-mode recognizers.
type modeParser func(*Scanner) (forge.AddressMode, bool, error)

// attemptMode runs a mode recognizer, rewinding the cursor and
// reporting a clean no-match when the recognizer fails with one of the
// retryable error kinds.
func (s *Scanner) attemptMode(fn modeParser) (forge.AddressMode, bool, error) {
	m := s.mark()
	mode, ok, err := fn(s)
	if err != nil {
		if retryable(err) {
			s.rewind(m)
			return forge.AddressMode{}, false, nil
		}
		return forge.AddressMode{}, false, err
	}
	if !ok {
		s.rewind(m)
	}
	return mode, ok, nil
}

// addressModes tries every addressing-mode recognizer in a fixed
// order, rewinding on each miss. Ordering matters: the indirect forms
// must come before anything that could consume their '(' and the
// zero-page forms must fail (non-fatally) on four-digit addresses so
// the absolute forms get their turn.
func (s *Scanner) addressModes() (forge.AddressMode, bool, error) {
	parsers := []modeParser{
		(*Scanner).indexedIndirectXMode,
		(*Scanner).indirectIndexYMode,
		(*Scanner).zeroPageXMode,
		(*Scanner).zeroPageYMode,
		(*Scanner).zeroPageMode,
		(*Scanner).immediateMode,
		(*Scanner).absoluteXMode,
		(*Scanner).absoluteYMode,
		(*Scanner).absoluteMode,
	}

	for _, p := range parsers {
		mode, ok, err := s.attemptMode(p)
		if err != nil {
			return forge.AddressMode{}, false, err
		}
		if ok {
			return mode, true, nil
		}
	}

	// Leave the decision about a missing operand to the caller.
	return forge.AddressMode{}, false, nil
}

// symbolMode parses an expression that must reduce to a bare
// identifier or scoped reference and wraps it in a deferred mode of
// the given shape. Any other expression form reports the error kind
// supplied by the caller.
func (s *Scanner) symbolMode(shape forge.Shape, kind Kind) (forge.AddressMode, bool, error) {
	e, ok, err := s.expression()
	if err != nil || !ok {
		return forge.AddressMode{}, false, err
	}
	switch e.Op {
	case forge.ExprIdentifier:
		return forge.DeferredIdent(shape, e.Ident), true, nil
	case forge.ExprScopedRef:
		return forge.DeferredScopedRef(shape, e.Scoped), true, nil
	default:
		return forge.AddressMode{}, false, s.err(kind)
	}
}

// immediateMode recognizes "#$hh" or '#' followed by a symbol.
func (s *Scanner) immediateMode() (forge.AddressMode, bool, error) {
	m := s.mark()

	v, ok, err := s.literalU8()
	if err != nil {
		return forge.AddressMode{}, false, err
	}
	if ok {
		return forge.Immediate(v), true, nil
	}

	if !s.consumeByte('#') {
		return forge.AddressMode{}, false, nil
	}
	mode, ok, err := s.symbolMode(forge.ShapeImmediate, ErrExpectedLiteralU8)
	if err != nil {
		return forge.AddressMode{}, false, err
	}
	if !ok {
		s.rewind(m)
		return forge.AddressMode{}, false, nil
	}
	return mode, true, nil
}

// zeroPageMode recognizes "$hh" or a bare symbol, which defers the
// zero-page/absolute decision to resolution.
func (s *Scanner) zeroPageMode() (forge.AddressMode, bool, error) {
	v, ok, err := s.addressU8()
	if err != nil {
		return forge.AddressMode{}, false, err
	}
	if ok {
		return forge.ZeroPage(v), true, nil
	}
	return s.symbolMode(forge.ShapeZeroPageOrAbsolute, ErrExpectedAddressU8)
}

// indexedOperand parses the operand common to the ",X" and ",Y"
// indexed forms: a fixed-width address or a deferred symbol.
func (s *Scanner) indexedOperand(u16 bool, shape forge.Shape) (forge.AddressMode, bool, error) {
	if u16 {
		v, ok, err := s.addressU16()
		if err != nil {
			return forge.AddressMode{}, false, err
		}
		if ok {
			switch shape {
			case forge.ShapeZeroPageOrAbsoluteX:
				return forge.AbsoluteX(v), true, nil
			default:
				return forge.AbsoluteY(v), true, nil
			}
		}
		return s.symbolMode(shape, ErrExpectedAddressU16)
	}

	v, ok, err := s.addressU8()
	if err != nil {
		return forge.AddressMode{}, false, err
	}
	if ok {
		switch shape {
		case forge.ShapeZeroPageOrAbsoluteX:
			return forge.ZeroPageX(v), true, nil
		default:
			return forge.ZeroPageY(v), true, nil
		}
	}
	return s.symbolMode(shape, ErrExpectedAddressU8)
}

// indexSuffix consumes ",<reg>" with optional interior whitespace.
func (s *Scanner) indexSuffix(lower, upper byte) bool {
	s.skipWhitespace()
	if !s.consumeByte(',') {
		return false
	}
	s.skipWhitespace()
	return s.consumeByte(upper) || s.consumeByte(lower)
}

// zeroPageXMode recognizes "$hh,X" or "symbol,X".
func (s *Scanner) zeroPageXMode() (forge.AddressMode, bool, error) {
	m := s.mark()

	mode, ok, err := s.indexedOperand(false, forge.ShapeZeroPageOrAbsoluteX)
	if err != nil || !ok {
		return forge.AddressMode{}, false, err
	}
	if !s.indexSuffix('x', 'X') {
		s.rewind(m)
		return forge.AddressMode{}, false, nil
	}
	return mode, true, nil
}

// zeroPageYMode recognizes "$hh,Y" or "symbol,Y".
func (s *Scanner) zeroPageYMode() (forge.AddressMode, bool, error) {
	m := s.mark()

	mode, ok, err := s.indexedOperand(false, forge.ShapeZeroPageOrAbsoluteY)
	if err != nil || !ok {
		return forge.AddressMode{}, false, err
	}
	if !s.indexSuffix('y', 'Y') {
		s.rewind(m)
		return forge.AddressMode{}, false, nil
	}
	return mode, true, nil
}

// absoluteMode recognizes "$hhhh" or a bare symbol.
func (s *Scanner) absoluteMode() (forge.AddressMode, bool, error) {
	v, ok, err := s.addressU16()
	if err != nil {
		return forge.AddressMode{}, false, err
	}
	if ok {
		return forge.Absolute(v), true, nil
	}
	return s.symbolMode(forge.ShapeZeroPageOrAbsolute, ErrExpectedAddressU8)
}

// absoluteXMode recognizes "$hhhh,X" or "symbol,X".
func (s *Scanner) absoluteXMode() (forge.AddressMode, bool, error) {
	m := s.mark()

	mode, ok, err := s.indexedOperand(true, forge.ShapeZeroPageOrAbsoluteX)
	if err != nil || !ok {
		return forge.AddressMode{}, false, err
	}
	if !s.indexSuffix('x', 'X') {
		s.rewind(m)
		return forge.AddressMode{}, false, nil
	}
	return mode, true, nil
}

// absoluteYMode recognizes "$hhhh,Y" or "symbol,Y".
func (s *Scanner) absoluteYMode() (forge.AddressMode, bool, error) {
	m := s.mark()

	mode, ok, err := s.indexedOperand(true, forge.ShapeZeroPageOrAbsoluteY)
	if err != nil || !ok {
		return forge.AddressMode{}, false, err
	}
	if !s.indexSuffix('y', 'Y') {
		s.rewind(m)
		return forge.AddressMode{}, false, nil
	}
	return mode, true, nil
}

// indexedIndirectXMode recognizes "($hh,X)" or "(symbol,X)".
func (s *Scanner) indexedIndirectXMode() (forge.AddressMode, bool, error) {
	m := s.mark()

	if !s.consumeByte('(') {
		return forge.AddressMode{}, false, nil
	}
	s.skipWhitespace()

	mode, ok, err := s.indirectOperand(forge.ShapeIndexedIndirectX)
	if err != nil || !ok {
		if err == nil {
			s.rewind(m)
		}
		return forge.AddressMode{}, false, err
	}

	if !s.indexSuffix('x', 'X') {
		s.rewind(m)
		return forge.AddressMode{}, false, nil
	}
	s.skipWhitespace()
	if !s.consumeByte(')') {
		s.rewind(m)
		return forge.AddressMode{}, false, nil
	}
	return mode, true, nil
}

// indirectIndexYMode recognizes "($hh),Y" or "(symbol),Y".
func (s *Scanner) indirectIndexYMode() (forge.AddressMode, bool, error) {
	m := s.mark()

	if !s.consumeByte('(') {
		return forge.AddressMode{}, false, nil
	}
	s.skipWhitespace()

	mode, ok, err := s.indirectOperand(forge.ShapeIndirectIndexY)
	if err != nil || !ok {
		if err == nil {
			s.rewind(m)
		}
		return forge.AddressMode{}, false, err
	}

	s.skipWhitespace()
	if !s.consumeByte(')') {
		s.rewind(m)
		return forge.AddressMode{}, false, nil
	}
	if !s.indexSuffix('y', 'Y') {
		s.rewind(m)
		return forge.AddressMode{}, false, nil
	}
	return mode, true, nil
}

// indirectOperand parses the interior of an indirect form: a one-byte
// address or a deferred symbol. Unlike the direct forms, a non-symbol
// expression is a plain no-match here, so a parenthesized expression
// can still be claimed by the expression operand path.
func (s *Scanner) indirectOperand(shape forge.Shape) (forge.AddressMode, bool, error) {
	v, ok, err := s.addressU8()
	if err != nil {
		return forge.AddressMode{}, false, err
	}
	if ok {
		return forge.AddressMode{Shape: shape, Value: uint16(v)}, true, nil
	}

	e, ok, err := s.expression()
	if err != nil || !ok {
		return forge.AddressMode{}, false, err
	}
	switch e.Op {
	case forge.ExprIdentifier:
		return forge.DeferredIdent(shape, e.Ident), true, nil
	case forge.ExprScopedRef:
		return forge.DeferredScopedRef(shape, e.Scoped), true, nil
	default:
		return forge.AddressMode{}, false, nil
	}
}
