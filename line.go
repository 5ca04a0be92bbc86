// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package forge

// A Label records the resolved position of a label definition.
type Label struct {
	Offset  uint16
	IsLocal bool
}

// A LineLabel is a label definition as it appears at the start of a
// line. Local labels are written with a leading '@'.
type LineLabel struct {
	Name  string
	Local bool
}

// A Constant is an IDENT = number definition.
type Constant struct {
	Name  string
	Value uint16
}

// An OperandClass identifies which variant an Operand holds.
type OperandClass byte

// Operand variants. An expression operand has not yet been classified
// into an address mode; a local-label operand names an '@label' by
// name only.
const (
	OperandMode OperandClass = iota
	OperandExpr
	OperandLocal
)

// An Operand is the parameter of an instruction.
type Operand struct {
	Class OperandClass
	Mode  AddressMode // if Class == OperandMode
	Expr  *Expr       // if Class == OperandExpr
	Local string      // if Class == OperandLocal, without the '@'
}

// An Instruction is a mnemonic plus an optional operand.
type Instruction struct {
	Mnemonic Mnemonic
	Operand  *Operand
}

// Size returns the instruction's size in bytes. Deferred symbolic
// operands assume the wider absolute form unless the symbol is already
// known to be a zero-page constant. Branches always take a one-byte
// displacement regardless of how their operand was classified. A
// numeric operand is sized through the opcode table so that sizing
// agrees with the encoder's zero-page promotion (e.g. LDA $20,Y).
func (in *Instruction) Size(constants map[string]uint16) int {
	if in.Operand == nil {
		return 1
	}
	if in.Mnemonic.IsBranch() {
		return 2
	}

	switch in.Operand.Class {
	case OperandExpr, OperandLocal:
		return 3

	default:
		m := in.Operand.Mode
		if m.Resolved() {
			// Resolved modes never consult the symbol tables.
			g, err := m.ToGeneric(nil, nil)
			if err == nil {
				if op, ok := LookupOpCode(in.Mnemonic, g); ok {
					return int(op.Length)
				}
				if wide, promoted := g.Promote(); promoted {
					if op, ok := LookupOpCode(in.Mnemonic, wide); ok {
						return int(op.Length)
					}
				}
			}
		}
		switch m.Shape {
		case ShapeAccumulator:
			return 1
		case ShapeImmediate, ShapeZeroPage, ShapeZeroPageX, ShapeZeroPageY,
			ShapeIndexedIndirectX, ShapeIndirectIndexY:
			return 2
		case ShapeZeroPageOrAbsolute, ShapeZeroPageOrAbsoluteX, ShapeZeroPageOrAbsoluteY:
			if v, ok := constants[m.SymbolName()]; ok && v <= 0xFF {
				return 2
			}
			return 3
		default:
			return 3
		}
	}
}

// A Line is the parsed form of one source line. At most one of
// constant, label+main component, or bare comment is present.
type Line struct {
	Comment  string // including the leading ';'; empty if absent
	Constant *Constant
	Label    *LineLabel
	Instr    *Instruction
	Dir      *Directive
	Newlines uint32 // trailing newline count, for round-tripping
}

// Size returns the line's contribution to the offset counter.
func (l *Line) Size(constants map[string]uint16) int {
	switch {
	case l.Instr != nil:
		return l.Instr.Size(constants)
	case l.Dir != nil:
		return l.Dir.Size()
	default:
		return 0
	}
}
