// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package forge

import (
	"strings"

	prefixtree "github.com/beevik/prefixtree/v2"
)

// A Mnemonic identifies one of the operation names of the NMOS 6502
// instruction set.
type Mnemonic byte

// All supported mnemonics.
const (
	ADC Mnemonic = iota
	AND
	ASL
	BCC
	BCS
	BEQ
	BIT
	BMI
	BNE
	BPL
	BRK
	BVC
	BVS
	CLC
	CLD
	CLI
	CLV
	CMP
	CPX
	CPY
	DEC
	DEX
	DEY
	EQR // historical 6502 documentation spells this EOR; both spellings parse
	INC
	INX
	INY
	JMP
	JSR
	LDA
	LDX
	LDY
	LSR
	NOP
	ORA
	PHA
	PHP
	PLA
	PLP
	ROL
	ROR
	RTI
	RTS
	SBC
	SEC
	SED
	SEI
	STA
	STX
	STY
	TAX
	TAY
	TSX
	TXA
	TXS
	TYA
)

var mnemonicNames = []string{
	"ADC", "AND", "ASL", "BCC", "BCS", "BEQ", "BIT", "BMI", "BNE", "BPL",
	"BRK", "BVC", "BVS", "CLC", "CLD", "CLI", "CLV", "CMP", "CPX", "CPY",
	"DEC", "DEX", "DEY", "EQR", "INC", "INX", "INY", "JMP", "JSR", "LDA",
	"LDX", "LDY", "LSR", "NOP", "ORA", "PHA", "PHP", "PLA", "PLP", "ROL",
	"ROR", "RTI", "RTS", "SBC", "SEC", "SED", "SEI", "STA", "STX", "STY",
	"TAX", "TAY", "TSX", "TXA", "TXS", "TYA",
}

func (m Mnemonic) String() string {
	return mnemonicNames[m]
}

// IsBranch reports whether the mnemonic is a conditional branch, which
// always encodes in relative mode.
func (m Mnemonic) IsBranch() bool {
	switch m {
	case BCC, BCS, BEQ, BMI, BNE, BPL, BVC, BVS:
		return true
	default:
		return false
	}
}

var mnemonicTree = prefixtree.New[Mnemonic]()

func init() {
	for i, name := range mnemonicNames {
		mnemonicTree.Add(name, Mnemonic(i))
	}
	mnemonicTree.Add("EOR", EQR)
}

// ParseMnemonic matches a word against the mnemonic set, folding case.
// The tree lookup is prefix-based, so the match is compared with the
// input to keep abbreviations from being accepted.
func ParseMnemonic(word string) (Mnemonic, bool) {
	if word == "" {
		return 0, false
	}
	key := strings.ToUpper(word)
	m, err := mnemonicTree.FindValue(key)
	if err != nil {
		return 0, false
	}
	if key != mnemonicNames[m] && key != "EOR" {
		return 0, false
	}
	return m, true
}
