// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	forge "github.com/forge6502/forge"
)

// The expression grammar is a two-level precedence climb:
//
//	expression := term { low_op term }
//	term       := factor { high_op factor }
//	factor     := number | scoped_ref | identifier | '(' expression ')'
//
// Whitespace is permitted around operators and inside parentheses.

// expression parses a full expression tree.
func (s *Scanner) expression() (*forge.Expr, bool, error) {
	m := s.mark()

	left, ok, err := s.term()
	if err != nil || !ok {
		return nil, false, err
	}

	for {
		op, ok := s.lowPrecedenceOp()
		if !ok {
			break
		}
		right, ok, err := s.term()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			s.rewind(m)
			return nil, false, nil
		}
		left = &forge.Expr{Op: forge.ExprBinary, BinOp: op, Left: left, Right: right}
	}
	return left, true, nil
}

func (s *Scanner) term() (*forge.Expr, bool, error) {
	m := s.mark()

	left, ok, err := s.factor()
	if err != nil || !ok {
		return nil, false, err
	}

	for {
		op, ok := s.highPrecedenceOp()
		if !ok {
			break
		}
		right, ok, err := s.factor()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			s.rewind(m)
			return nil, false, nil
		}
		left = &forge.Expr{Op: forge.ExprBinary, BinOp: op, Left: left, Right: right}
	}
	return left, true, nil
}

func (s *Scanner) factor() (*forge.Expr, bool, error) {
	s.skipWhitespace()

	if v, ok, err := s.number(); err != nil {
		return nil, false, err
	} else if ok {
		s.skipWhitespace()
		return &forge.Expr{Op: forge.ExprNumber, Value: v}, true, nil
	}

	if e, ok, err := s.scopedReference(); err != nil {
		return nil, false, err
	} else if ok {
		s.skipWhitespace()
		return e, true, nil
	}

	if s.consumeByte('(') {
		inner, ok, err := s.expression()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		if !s.consumeByte(')') {
			return nil, false, s.err(ErrMissingClosingParen)
		}
		s.skipWhitespace()
		return &forge.Expr{Op: forge.ExprParen, Left: inner}, true, nil
	}

	return nil, false, nil
}

// scopedReference parses a non-empty "::"-joined identifier sequence.
// A single identifier is promoted to a plain identifier node, never a
// scoped reference.
func (s *Scanner) scopedReference() (*forge.Expr, bool, error) {
	first, ok := s.identifier()
	if !ok {
		return nil, false, nil
	}

	path := []string{first}
	for s.peekString("::") {
		s.consumeString("::")
		next, ok := s.identifier()
		if !ok {
			return nil, false, s.err(ErrUnexpectedEOF)
		}
		path = append(path, next)
	}

	if len(path) == 1 {
		return &forge.Expr{Op: forge.ExprIdentifier, Ident: path[0]}, true, nil
	}
	return &forge.Expr{Op: forge.ExprScopedRef, Scoped: path}, true, nil
}

// lowPrecedenceOp recognizes one of the loose-binding operators.
func (s *Scanner) lowPrecedenceOp() (forge.BinaryOp, bool) {
	c, ok := s.peek()
	if !ok {
		return 0, false
	}
	switch c {
	case '+':
		s.advance()
		return forge.OpAdd, true
	case '-':
		s.advance()
		return forge.OpSub, true
	case '|':
		s.advance()
		return forge.OpOr, true
	case '&':
		s.advance()
		return forge.OpAnd, true
	default:
		return 0, false
	}
}

// highPrecedenceOp recognizes one of the tight-binding operators. A
// lone '<' or '>' is not an operator and leaves the cursor in place.
func (s *Scanner) highPrecedenceOp() (forge.BinaryOp, bool) {
	c, ok := s.peek()
	if !ok {
		return 0, false
	}
	switch c {
	case '*':
		s.advance()
		return forge.OpMul, true
	case '/':
		s.advance()
		return forge.OpDiv, true
	case '<':
		if s.consumeString("<<") {
			return forge.OpShiftLeft, true
		}
		return 0, false
	case '>':
		if s.consumeString(">>") {
			return forge.OpShiftRight, true
		}
		return 0, false
	default:
		return 0, false
	}
}
