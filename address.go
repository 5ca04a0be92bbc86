// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package forge

import "fmt"

// A Shape identifies the syntactic shape of an instruction operand.
// The ZeroPageOrAbsolute shapes are deferred: they carry a symbol
// instead of a number, and collapse to a zero-page or absolute shape
// once the symbol's size class is known.
type Shape byte

// All operand shapes.
const (
	ShapeImmediate Shape = iota
	ShapeZeroPage
	ShapeZeroPageX
	ShapeZeroPageY
	ShapeAbsolute
	ShapeAbsoluteX
	ShapeAbsoluteY
	ShapeZeroPageOrAbsolute
	ShapeZeroPageOrAbsoluteX
	ShapeZeroPageOrAbsoluteY
	ShapeIndexedIndirectX
	ShapeIndirectIndexY
	ShapeAccumulator
)

var shapeNames = []string{
	"IMM",
	"ZPG",
	"ZPX",
	"ZPY",
	"ABS",
	"ABX",
	"ABY",
	"ZPG/ABS",
	"ZPG/ABS,X",
	"ZPG/ABS,Y",
	"IDX",
	"IDY",
	"ACC",
}

func (s Shape) String() string {
	return shapeNames[s]
}

// An OperandKind distinguishes a numeric operand from the deferred
// symbolic forms.
type OperandKind byte

// Operand kinds. Every shape may combine with every kind, which keeps
// the deferred variants an orthogonal (shape, kind) product instead of
// an enumeration of cross terms.
const (
	KindValue OperandKind = iota
	KindIdent
	KindScopedRef
)

// An AddressMode is a classified instruction operand: a shape plus
// either a resolved numeric value or a deferred symbol.
type AddressMode struct {
	Shape  Shape
	Kind   OperandKind
	Value  uint16
	Ident  string   // if Kind == KindIdent
	Scoped []string // if Kind == KindScopedRef
}

// Value constructors.

func Immediate(v uint8) AddressMode  { return AddressMode{Shape: ShapeImmediate, Value: uint16(v)} }
func ZeroPage(v uint8) AddressMode   { return AddressMode{Shape: ShapeZeroPage, Value: uint16(v)} }
func ZeroPageX(v uint8) AddressMode  { return AddressMode{Shape: ShapeZeroPageX, Value: uint16(v)} }
func ZeroPageY(v uint8) AddressMode  { return AddressMode{Shape: ShapeZeroPageY, Value: uint16(v)} }
func Absolute(v uint16) AddressMode  { return AddressMode{Shape: ShapeAbsolute, Value: v} }
func AbsoluteX(v uint16) AddressMode { return AddressMode{Shape: ShapeAbsoluteX, Value: v} }
func AbsoluteY(v uint16) AddressMode { return AddressMode{Shape: ShapeAbsoluteY, Value: v} }
func Accumulator() AddressMode       { return AddressMode{Shape: ShapeAccumulator} }

func IndexedIndirectX(v uint8) AddressMode {
	return AddressMode{Shape: ShapeIndexedIndirectX, Value: uint16(v)}
}

func IndirectIndexY(v uint8) AddressMode {
	return AddressMode{Shape: ShapeIndirectIndexY, Value: uint16(v)}
}

// DeferredIdent returns a deferred address mode carrying an identifier.
func DeferredIdent(shape Shape, ident string) AddressMode {
	return AddressMode{Shape: shape, Kind: KindIdent, Ident: ident}
}

// DeferredScopedRef returns a deferred address mode carrying a scoped
// reference path.
func DeferredScopedRef(shape Shape, path []string) AddressMode {
	return AddressMode{Shape: shape, Kind: KindScopedRef, Scoped: path}
}

// SymbolName returns the symbol a deferred mode refers to. Scoped
// paths are joined with "::".
func (m AddressMode) SymbolName() string {
	if m.Kind == KindScopedRef {
		return ScopedName(m.Scoped)
	}
	return m.Ident
}

// Resolved reports whether the mode carries a numeric operand.
func (m AddressMode) Resolved() bool {
	return m.Kind == KindValue
}

func (m AddressMode) String() string {
	switch m.Kind {
	case KindIdent, KindScopedRef:
		return fmt.Sprintf("%s %s", m.Shape, m.SymbolName())
	default:
		switch m.Shape {
		case ShapeAccumulator:
			return "ACC A"
		case ShapeImmediate:
			return fmt.Sprintf("IMM #$%02X", m.Value)
		case ShapeAbsolute, ShapeAbsoluteX, ShapeAbsoluteY:
			return fmt.Sprintf("%s $%04X", m.Shape, m.Value)
		default:
			return fmt.Sprintf("%s $%02X", m.Shape, m.Value)
		}
	}
}

// A Generic is the addressing-mode class used to key the opcode table.
type Generic byte

// All generic addressing-mode classes. Implied, Relative and Indirect
// never appear in parsed operands; they exist for opcode lookup only.
const (
	GenImmediate Generic = iota
	GenZeroPage
	GenZeroPageX
	GenZeroPageY
	GenAbsolute
	GenAbsoluteX
	GenAbsoluteY
	GenIndexedIndirectX
	GenIndirectIndexY
	GenImplied
	GenAccumulator
	GenRelative
	GenIndirect
)

var genericNames = []string{
	"IMM", "ZPG", "ZPX", "ZPY", "ABS", "ABX", "ABY",
	"IDX", "IDY", "IMP", "ACC", "REL", "IND",
}

func (g Generic) String() string {
	return genericNames[g]
}

// ToGeneric classifies the mode for opcode lookup. Deferred modes are
// classified by consulting the symbol tables: labels are always
// absolute class, and constants narrow to the zero-page class when
// their value fits in a byte. A deferred mode whose symbol appears in
// neither table produces a *SymbolError.
func (m AddressMode) ToGeneric(labels map[string]Label, constants map[string]uint16) (Generic, error) {
	switch m.Shape {
	case ShapeImmediate:
		return GenImmediate, nil
	case ShapeZeroPage:
		return GenZeroPage, nil
	case ShapeZeroPageX:
		return GenZeroPageX, nil
	case ShapeZeroPageY:
		return GenZeroPageY, nil
	case ShapeAbsolute:
		return GenAbsolute, nil
	case ShapeAbsoluteX:
		return GenAbsoluteX, nil
	case ShapeAbsoluteY:
		return GenAbsoluteY, nil
	case ShapeIndexedIndirectX:
		return GenIndexedIndirectX, nil
	case ShapeIndirectIndexY:
		return GenIndirectIndexY, nil
	case ShapeAccumulator:
		return GenAccumulator, nil

	case ShapeZeroPageOrAbsolute, ShapeZeroPageOrAbsoluteX, ShapeZeroPageOrAbsoluteY:
		wide := GenAbsolute
		narrow := GenZeroPage
		switch m.Shape {
		case ShapeZeroPageOrAbsoluteX:
			wide, narrow = GenAbsoluteX, GenZeroPageX
		case ShapeZeroPageOrAbsoluteY:
			wide, narrow = GenAbsoluteY, GenZeroPageY
		}
		name := m.SymbolName()
		if _, ok := labels[name]; ok {
			return wide, nil
		}
		if v, ok := constants[name]; ok {
			if v <= 0xFF {
				return narrow, nil
			}
			return wide, nil
		}
		return 0, &SymbolError{Name: name}

	default:
		return 0, fmt.Errorf("invalid address mode shape %d", m.Shape)
	}
}

// Promote maps a zero-page class to its absolute counterpart. It is
// used when a mnemonic has no zero-page encoding for the class the
// resolver selected, e.g. LDA $20,Y.
func (g Generic) Promote() (Generic, bool) {
	switch g {
	case GenZeroPage:
		return GenAbsolute, true
	case GenZeroPageX:
		return GenAbsoluteX, true
	case GenZeroPageY:
		return GenAbsoluteY, true
	default:
		return g, false
	}
}
