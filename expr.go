// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package forge

import (
	"fmt"
	"strings"
)

// A BinaryOp identifies one of the binary operators allowed in
// assembly-time expressions.
type BinaryOp byte

// Binary operators, grouped by precedence. Add through And bind loosest;
// Mul through ShiftRight bind tightest. Both groups are left-associative.
const (
	OpAdd BinaryOp = iota
	OpSub
	OpOr
	OpAnd
	OpMul
	OpDiv
	OpShiftLeft
	OpShiftRight
)

var binaryOpSymbols = []string{"+", "-", "|", "&", "*", "/", "<<", ">>"}

// Symbol returns the operator's source representation.
func (op BinaryOp) Symbol() string {
	return binaryOpSymbols[op]
}

// An ExprOp identifies the kind of an expression tree node.
type ExprOp byte

// Expression node kinds.
const (
	ExprNumber ExprOp = iota
	ExprIdentifier
	ExprScopedRef
	ExprParen
	ExprBinary
)

// An Expr is a single node in an expression tree. The root node
// represents an entire expression.
type Expr struct {
	Op     ExprOp
	Value  uint16   // if Op == ExprNumber
	Ident  string   // if Op == ExprIdentifier
	Scoped []string // if Op == ExprScopedRef
	BinOp  BinaryOp // if Op == ExprBinary
	Left   *Expr    // child of ExprParen and ExprBinary
	Right  *Expr    // second child of ExprBinary
}

// ScopedName joins a scoped reference path with the "::" separator.
func ScopedName(path []string) string {
	return strings.Join(path, "::")
}

// String returns the expression in source form.
func (e *Expr) String() string {
	switch e.Op {
	case ExprNumber:
		return fmt.Sprintf("%d", e.Value)
	case ExprIdentifier:
		return e.Ident
	case ExprScopedRef:
		return ScopedName(e.Scoped)
	case ExprParen:
		return "(" + e.Left.String() + ")"
	case ExprBinary:
		return fmt.Sprintf("%s %s %s", e.Left, e.BinOp.Symbol(), e.Right)
	default:
		return ""
	}
}

// Equal reports whether two expression trees are structurally identical.
func (e *Expr) Equal(o *Expr) bool {
	switch {
	case e == nil || o == nil:
		return e == o
	case e.Op != o.Op:
		return false
	}
	switch e.Op {
	case ExprNumber:
		return e.Value == o.Value
	case ExprIdentifier:
		return e.Ident == o.Ident
	case ExprScopedRef:
		return ScopedName(e.Scoped) == ScopedName(o.Scoped)
	case ExprParen:
		return e.Left.Equal(o.Left)
	default:
		return e.BinOp == o.BinOp && e.Left.Equal(o.Left) && e.Right.Equal(o.Right)
	}
}

// Eval evaluates the expression tree against a constant table. All
// arithmetic is modulo 2^16. Division by zero yields zero rather than
// faulting. Identifiers and scoped references missing from the table
// produce a *SymbolError.
func (e *Expr) Eval(constants map[string]uint16) (uint16, error) {
	switch e.Op {
	case ExprNumber:
		return e.Value, nil

	case ExprIdentifier:
		v, ok := constants[e.Ident]
		if !ok {
			return 0, &SymbolError{Name: e.Ident}
		}
		return v, nil

	case ExprScopedRef:
		name := ScopedName(e.Scoped)
		v, ok := constants[name]
		if !ok {
			return 0, &SymbolError{Name: name}
		}
		return v, nil

	case ExprParen:
		return e.Left.Eval(constants)

	case ExprBinary:
		l, err := e.Left.Eval(constants)
		if err != nil {
			return 0, err
		}
		r, err := e.Right.Eval(constants)
		if err != nil {
			return 0, err
		}
		return e.BinOp.apply(l, r), nil

	default:
		return 0, fmt.Errorf("invalid expression node %d", e.Op)
	}
}

func (op BinaryOp) apply(l, r uint16) uint16 {
	switch op {
	case OpAdd:
		return l + r
	case OpSub:
		return l - r
	case OpOr:
		return l | r
	case OpAnd:
		return l & r
	case OpMul:
		return l * r
	case OpDiv:
		if r == 0 {
			return 0
		}
		return l / r
	case OpShiftLeft:
		return l << r
	default:
		return l >> r
	}
}
