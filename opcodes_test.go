// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package forge

import "testing"

// Every (mnemonic, mode) pair in the table must be unique, and every
// opcode byte must appear at most once.
func TestOpCodeTableUniqueness(t *testing.T) {
	seenPair := make(map[opKey]bool)
	seenByte := make(map[byte]bool)
	for _, op := range opcodeData {
		key := opKey{op.Mnemonic, op.Mode}
		if seenPair[key] {
			t.Errorf("duplicate pair (%s, %s)", op.Mnemonic, op.Mode)
		}
		seenPair[key] = true
		if seenByte[op.Byte] {
			t.Errorf("duplicate opcode byte $%02X", op.Byte)
		}
		seenByte[op.Byte] = true
	}
	if len(seenPair) != OpCodeCount() {
		t.Errorf("table holds %d pairs, map holds %d", OpCodeCount(), len(seenPair))
	}
}

func TestOpCodeLengths(t *testing.T) {
	for _, op := range opcodeData {
		var want byte
		switch op.Mode {
		case GenImplied, GenAccumulator:
			want = 1
		case GenImmediate, GenZeroPage, GenZeroPageX, GenZeroPageY,
			GenIndexedIndirectX, GenIndirectIndexY, GenRelative:
			want = 2
		default:
			want = 3
		}
		if op.Length != want {
			t.Errorf("(%s, %s) length %d, expected %d", op.Mnemonic, op.Mode, op.Length, want)
		}
	}
}

func TestOpCodeSpotChecks(t *testing.T) {
	cases := []struct {
		m    Mnemonic
		g    Generic
		b    byte
		size byte
	}{
		{LDA, GenImmediate, 0xA9, 2},
		{LDA, GenZeroPage, 0xA5, 2},
		{LDA, GenAbsolute, 0xAD, 3},
		{LDA, GenIndirectIndexY, 0xB1, 2},
		{STA, GenAbsolute, 0x8D, 3},
		{STX, GenZeroPageY, 0x96, 2},
		{LDX, GenZeroPageY, 0xB6, 2},
		{TAX, GenImplied, 0xAA, 1},
		{JMP, GenAbsolute, 0x4C, 3},
		{JMP, GenIndirect, 0x6C, 3},
		{BNE, GenRelative, 0xD0, 2},
		{EQR, GenZeroPage, 0x45, 2},
		{ASL, GenAccumulator, 0x0A, 1},
	}
	for _, c := range cases {
		op, ok := LookupOpCode(c.m, c.g)
		if !ok {
			t.Errorf("(%s, %s) missing", c.m, c.g)
			continue
		}
		if op.Byte != c.b || op.Length != c.size {
			t.Errorf("(%s, %s) = $%02X/%d, expected $%02X/%d",
				c.m, c.g, op.Byte, op.Length, c.b, c.size)
		}
	}
}

// Branch mnemonics encode only in relative mode.
func TestBranchesAreRelativeOnly(t *testing.T) {
	for _, op := range opcodeData {
		if op.Mnemonic.IsBranch() != (op.Mode == GenRelative) {
			t.Errorf("(%s, %s) violates the branch/relative pairing", op.Mnemonic, op.Mode)
		}
	}
}

func TestZeroPageYOnlyForLDXSTX(t *testing.T) {
	for _, op := range opcodeData {
		if op.Mode == GenZeroPageY && op.Mnemonic != LDX && op.Mnemonic != STX {
			t.Errorf("unexpected zero-page-Y entry for %s", op.Mnemonic)
		}
	}
}

func TestParseMnemonic(t *testing.T) {
	cases := []struct {
		in   string
		want Mnemonic
		ok   bool
	}{
		{"LDA", LDA, true},
		{"lda", LDA, true},
		{"LdA", LDA, true},
		{"EQR", EQR, true},
		{"EOR", EQR, true},
		{"TAX", TAX, true},
		{"LD", 0, false}, // ambiguous prefix is not a match
		{"LDAX", 0, false},
		{"", 0, false},
		{"XYZ", 0, false},
	}
	for _, c := range cases {
		m, ok := ParseMnemonic(c.in)
		if ok != c.ok || (ok && m != c.want) {
			t.Errorf("ParseMnemonic(%q) = %v, %v", c.in, m, ok)
		}
	}
}

func TestParseDirectiveName(t *testing.T) {
	cases := []struct {
		in   string
		want DirectiveName
		ok   bool
	}{
		{"BYTE", DirBYTE, true},
		{"byte", DirBYTE, true},
		{"WORD", DirWORD, true},
		{"ADDR", DirADDR, true},
		{"CODE", DirCODE, true},
		{"ENDSCOPE", DirENDSCOPE, true},
		{"BYT", 0, false}, // unique prefix is still not a keyword
		{"", 0, false},
		{"PAD", 0, false},
	}
	for _, c := range cases {
		d, ok := ParseDirectiveName(c.in)
		if ok != c.ok || (ok && d != c.want) {
			t.Errorf("ParseDirectiveName(%q) = %v, %v", c.in, d, ok)
		}
	}
}
