// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package forge

// An OpCode describes one valid (mnemonic, addressing mode) encoding.
type OpCode struct {
	Mnemonic Mnemonic
	Mode     Generic
	Byte     byte // opcode value
	Length   byte // opcode + operand bytes
}

type opKey struct {
	mnemonic Mnemonic
	mode     Generic
}

// All valid (mnemonic, mode) pairs of the stock NMOS 6502.
var opcodeData = []OpCode{
	{ADC, GenImmediate, 0x69, 2},
	{ADC, GenZeroPage, 0x65, 2},
	{ADC, GenZeroPageX, 0x75, 2},
	{ADC, GenAbsolute, 0x6D, 3},
	{ADC, GenAbsoluteX, 0x7D, 3},
	{ADC, GenAbsoluteY, 0x79, 3},
	{ADC, GenIndexedIndirectX, 0x61, 2},
	{ADC, GenIndirectIndexY, 0x71, 2},

	{AND, GenImmediate, 0x29, 2},
	{AND, GenZeroPage, 0x25, 2},
	{AND, GenZeroPageX, 0x35, 2},
	{AND, GenAbsolute, 0x2D, 3},
	{AND, GenAbsoluteX, 0x3D, 3},
	{AND, GenAbsoluteY, 0x39, 3},
	{AND, GenIndexedIndirectX, 0x21, 2},
	{AND, GenIndirectIndexY, 0x31, 2},

	{ASL, GenAccumulator, 0x0A, 1},
	{ASL, GenZeroPage, 0x06, 2},
	{ASL, GenZeroPageX, 0x16, 2},
	{ASL, GenAbsolute, 0x0E, 3},
	{ASL, GenAbsoluteX, 0x1E, 3},

	{BCC, GenRelative, 0x90, 2},
	{BCS, GenRelative, 0xB0, 2},
	{BEQ, GenRelative, 0xF0, 2},
	{BMI, GenRelative, 0x30, 2},
	{BNE, GenRelative, 0xD0, 2},
	{BPL, GenRelative, 0x10, 2},
	{BVC, GenRelative, 0x50, 2},
	{BVS, GenRelative, 0x70, 2},

	{BIT, GenZeroPage, 0x24, 2},
	{BIT, GenAbsolute, 0x2C, 3},

	{BRK, GenImplied, 0x00, 1},

	{CLC, GenImplied, 0x18, 1},
	{CLD, GenImplied, 0xD8, 1},
	{CLI, GenImplied, 0x58, 1},
	{CLV, GenImplied, 0xB8, 1},

	{CMP, GenImmediate, 0xC9, 2},
	{CMP, GenZeroPage, 0xC5, 2},
	{CMP, GenZeroPageX, 0xD5, 2},
	{CMP, GenAbsolute, 0xCD, 3},
	{CMP, GenAbsoluteX, 0xDD, 3},
	{CMP, GenAbsoluteY, 0xD9, 3},
	{CMP, GenIndexedIndirectX, 0xC1, 2},
	{CMP, GenIndirectIndexY, 0xD1, 2},

	{CPX, GenImmediate, 0xE0, 2},
	{CPX, GenZeroPage, 0xE4, 2},
	{CPX, GenAbsolute, 0xEC, 3},

	{CPY, GenImmediate, 0xC0, 2},
	{CPY, GenZeroPage, 0xC4, 2},
	{CPY, GenAbsolute, 0xCC, 3},

	{DEC, GenZeroPage, 0xC6, 2},
	{DEC, GenZeroPageX, 0xD6, 2},
	{DEC, GenAbsolute, 0xCE, 3},
	{DEC, GenAbsoluteX, 0xDE, 3},

	{DEX, GenImplied, 0xCA, 1},
	{DEY, GenImplied, 0x88, 1},

	// The exclusive-or opcodes. Historical data sheets name this
	// operation EOR.
	{EQR, GenImmediate, 0x49, 2},
	{EQR, GenZeroPage, 0x45, 2},
	{EQR, GenZeroPageX, 0x55, 2},
	{EQR, GenAbsolute, 0x4D, 3},
	{EQR, GenAbsoluteX, 0x5D, 3},
	{EQR, GenAbsoluteY, 0x59, 3},
	{EQR, GenIndexedIndirectX, 0x41, 2},
	{EQR, GenIndirectIndexY, 0x51, 2},

	{INC, GenZeroPage, 0xE6, 2},
	{INC, GenZeroPageX, 0xF6, 2},
	{INC, GenAbsolute, 0xEE, 3},
	{INC, GenAbsoluteX, 0xFE, 3},

	{INX, GenImplied, 0xE8, 1},
	{INY, GenImplied, 0xC8, 1},

	{JMP, GenAbsolute, 0x4C, 3},
	{JMP, GenIndirect, 0x6C, 3},

	{JSR, GenAbsolute, 0x20, 3},

	{LDA, GenImmediate, 0xA9, 2},
	{LDA, GenZeroPage, 0xA5, 2},
	{LDA, GenZeroPageX, 0xB5, 2},
	{LDA, GenAbsolute, 0xAD, 3},
	{LDA, GenAbsoluteX, 0xBD, 3},
	{LDA, GenAbsoluteY, 0xB9, 3},
	{LDA, GenIndexedIndirectX, 0xA1, 2},
	{LDA, GenIndirectIndexY, 0xB1, 2},

	{LDX, GenImmediate, 0xA2, 2},
	{LDX, GenZeroPage, 0xA6, 2},
	{LDX, GenZeroPageY, 0xB6, 2},
	{LDX, GenAbsolute, 0xAE, 3},
	{LDX, GenAbsoluteY, 0xBE, 3},

	{LDY, GenImmediate, 0xA0, 2},
	{LDY, GenZeroPage, 0xA4, 2},
	{LDY, GenZeroPageX, 0xB4, 2},
	{LDY, GenAbsolute, 0xAC, 3},
	{LDY, GenAbsoluteX, 0xBC, 3},

	{LSR, GenAccumulator, 0x4A, 1},
	{LSR, GenZeroPage, 0x46, 2},
	{LSR, GenZeroPageX, 0x56, 2},
	{LSR, GenAbsolute, 0x4E, 3},
	{LSR, GenAbsoluteX, 0x5E, 3},

	{NOP, GenImplied, 0xEA, 1},

	{ORA, GenImmediate, 0x09, 2},
	{ORA, GenZeroPage, 0x05, 2},
	{ORA, GenZeroPageX, 0x15, 2},
	{ORA, GenAbsolute, 0x0D, 3},
	{ORA, GenAbsoluteX, 0x1D, 3},
	{ORA, GenAbsoluteY, 0x19, 3},
	{ORA, GenIndexedIndirectX, 0x01, 2},
	{ORA, GenIndirectIndexY, 0x11, 2},

	{PHA, GenImplied, 0x48, 1},
	{PHP, GenImplied, 0x08, 1},
	{PLA, GenImplied, 0x68, 1},
	{PLP, GenImplied, 0x28, 1},

	{ROL, GenAccumulator, 0x2A, 1},
	{ROL, GenZeroPage, 0x26, 2},
	{ROL, GenZeroPageX, 0x36, 2},
	{ROL, GenAbsolute, 0x2E, 3},
	{ROL, GenAbsoluteX, 0x3E, 3},

	{ROR, GenAccumulator, 0x6A, 1},
	{ROR, GenZeroPage, 0x66, 2},
	{ROR, GenZeroPageX, 0x76, 2},
	{ROR, GenAbsolute, 0x6E, 3},
	{ROR, GenAbsoluteX, 0x7E, 3},

	{RTI, GenImplied, 0x40, 1},
	{RTS, GenImplied, 0x60, 1},

	{SBC, GenImmediate, 0xE9, 2},
	{SBC, GenZeroPage, 0xE5, 2},
	{SBC, GenZeroPageX, 0xF5, 2},
	{SBC, GenAbsolute, 0xED, 3},
	{SBC, GenAbsoluteX, 0xFD, 3},
	{SBC, GenAbsoluteY, 0xF9, 3},
	{SBC, GenIndexedIndirectX, 0xE1, 2},
	{SBC, GenIndirectIndexY, 0xF1, 2},

	{SEC, GenImplied, 0x38, 1},
	{SED, GenImplied, 0xF8, 1},
	{SEI, GenImplied, 0x78, 1},

	{STA, GenZeroPage, 0x85, 2},
	{STA, GenZeroPageX, 0x95, 2},
	{STA, GenAbsolute, 0x8D, 3},
	{STA, GenAbsoluteX, 0x9D, 3},
	{STA, GenAbsoluteY, 0x99, 3},
	{STA, GenIndexedIndirectX, 0x81, 2},
	{STA, GenIndirectIndexY, 0x91, 2},

	{STX, GenZeroPage, 0x86, 2},
	{STX, GenZeroPageY, 0x96, 2},
	{STX, GenAbsolute, 0x8E, 3},

	{STY, GenZeroPage, 0x84, 2},
	{STY, GenZeroPageX, 0x94, 2},
	{STY, GenAbsolute, 0x8C, 3},

	{TAX, GenImplied, 0xAA, 1},
	{TAY, GenImplied, 0xA8, 1},
	{TSX, GenImplied, 0xBA, 1},
	{TXA, GenImplied, 0x8A, 1},
	{TXS, GenImplied, 0x9A, 1},
	{TYA, GenImplied, 0x98, 1},
}

var opcodes map[opKey]*OpCode

func init() {
	opcodes = make(map[opKey]*OpCode, len(opcodeData))
	for i := range opcodeData {
		op := &opcodeData[i]
		opcodes[opKey{op.Mnemonic, op.Mode}] = op
	}
}

// LookupOpCode returns the encoding for a (mnemonic, mode) pair, if
// one exists.
func LookupOpCode(m Mnemonic, g Generic) (*OpCode, bool) {
	op, ok := opcodes[opKey{m, g}]
	return op, ok
}

// OpCodeCount returns the number of valid (mnemonic, mode) pairs.
func OpCodeCount() int {
	return len(opcodeData)
}
