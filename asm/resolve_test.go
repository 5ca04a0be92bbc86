// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"testing"

	forge "github.com/forge6502/forge"
)

func resolve(t *testing.T, src string) (*Resolver, []forge.Line) {
	t.Helper()
	lines, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	r := NewResolver(nil)
	if err := r.Pass1(lines); err != nil {
		t.Fatal(err)
	}
	if err := r.Pass2(lines); err != nil {
		t.Fatal(err)
	}
	return r, lines
}

func TestPass1Offsets(t *testing.T) {
	src := `START:
LDA #$00
MID:
STA $2000
.BYTE $01, $02, $03
END:
`
	r, _ := resolve(t, src)

	cases := []struct {
		name   string
		offset uint16
	}{
		{"START", 0},
		{"MID", 2},
		{"END", 8},
	}
	for _, c := range cases {
		l, ok := r.Labels[c.name]
		if !ok || l.Offset != c.offset {
			t.Errorf("%s at $%04X, expected $%04X", c.name, l.Offset, c.offset)
		}
	}
	if r.Offset != 8 {
		t.Errorf("final offset $%04X, expected $0008", r.Offset)
	}
}

func TestPass1ConservativeSizing(t *testing.T) {
	// FORWARD is unknown during sizing, so the instruction assumes
	// the absolute form even though the constant later narrows it.
	src := `LDA FORWARD
FORWARD = $10
END:
`
	r, _ := resolve(t, src)
	if l := r.Labels["END"]; l.Offset != 3 {
		t.Errorf("END at $%04X, expected $0003", l.Offset)
	}
}

func TestPass1NarrowsKnownZeroPageConstant(t *testing.T) {
	src := `ZP = $10
LDA ZP
END:
`
	r, _ := resolve(t, src)
	if l := r.Labels["END"]; l.Offset != 2 {
		t.Errorf("END at $%04X, expected $0002", l.Offset)
	}
}

func TestPass1LocalLabelsShareNamespace(t *testing.T) {
	src := `main:
@loop:
NOP
`
	r, _ := resolve(t, src)
	if l, ok := r.Labels["main"]; !ok || l.IsLocal {
		t.Errorf("main = %+v", l)
	}
	if l, ok := r.Labels["loop"]; !ok || !l.IsLocal {
		t.Errorf("loop = %+v", l)
	}
}

func TestPass1ConstantRedefinition(t *testing.T) {
	src := `V = $01
V = $02
`
	r, _ := resolve(t, src)
	if r.Constants["V"] != 2 {
		t.Errorf("V = %d, expected 2 (last definition wins)", r.Constants["V"])
	}
}

func TestPass2SpecializesDeferredModes(t *testing.T) {
	src := `ZP = $10
WIDE = $2002
START:
LDA ZP
LDA WIDE
LDA START
LDA ZP,X
LDA (ZP),Y
`
	_, lines := resolve(t, src)

	wantShapes := []forge.Shape{
		forge.ShapeZeroPage,
		forge.ShapeAbsolute,
		forge.ShapeAbsolute,
		forge.ShapeZeroPageX,
		forge.ShapeIndirectIndexY,
	}
	i := 0
	for _, line := range lines {
		if line.Instr == nil {
			continue
		}
		mode := line.Instr.Operand.Mode
		if !mode.Resolved() {
			t.Errorf("instruction %d unresolved: %s", i, mode)
		} else if mode.Shape != wantShapes[i] {
			t.Errorf("instruction %d shape %s, expected %s", i, mode.Shape, wantShapes[i])
		}
		i++
	}
}

func TestPass2ExpressionSpecialization(t *testing.T) {
	src := `BASE = $1000
LDA BASE+4
LDA BASE>>8
`
	_, lines := resolve(t, src)

	first := lines[1].Instr.Operand.Mode
	if first.Shape != forge.ShapeAbsolute || first.Value != 0x1004 {
		t.Errorf("got %s", first)
	}
	second := lines[2].Instr.Operand.Mode
	if second.Shape != forge.ShapeZeroPage || second.Value != 0x10 {
		t.Errorf("got %s", second)
	}
}

func TestPass2LabelWins(t *testing.T) {
	src := `X = $10
NOP
X:
LDA X
`
	_, lines := resolve(t, src)
	mode := lines[3].Instr.Operand.Mode
	if mode.Shape != forge.ShapeAbsolute || mode.Value != 1 {
		t.Errorf("got %s, expected the label at $0001 to win", mode)
	}
}

func TestPass2ScopeTable(t *testing.T) {
	src := `.SCOPE Sprite
X = $0200
Y = $0201
.ENDSCOPE
LDA Sprite::X
`
	r, lines := resolve(t, src)

	if r.Constants["Sprite::X"] != 0x0200 {
		t.Errorf("Sprite::X = $%04X", r.Constants["Sprite::X"])
	}
	mode := lines[4].Instr.Operand.Mode
	if mode.Shape != forge.ShapeAbsolute || mode.Value != 0x0200 {
		t.Errorf("got %s", mode)
	}
}

func TestPass2MissingSymbol(t *testing.T) {
	lines, err := Parse([]byte("LDA NOWHERE\n"))
	if err != nil {
		t.Fatal(err)
	}
	r := NewResolver(nil)
	if err := r.Pass1(lines); err != nil {
		t.Fatal(err)
	}
	err = r.Pass2(lines)
	pe, ok := err.(*Error)
	if !ok || pe.Kind != ErrSymbolNotFound {
		t.Errorf("got %v", err)
	}
}

func TestPass2ByteArgTooLarge(t *testing.T) {
	src := `WIDE = $2002
.BYTE WIDE
`
	lines, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	r := NewResolver(nil)
	if err := r.Pass1(lines); err != nil {
		t.Fatal(err)
	}
	err = r.Pass2(lines)
	pe, ok := err.(*Error)
	if !ok || pe.Kind != ErrValueTooLarge {
		t.Errorf("got %v", err)
	}
}

func TestPass2ErrorCarriesLineNumber(t *testing.T) {
	src := "NOP\nNOP\nLDA NOWHERE\n"
	lines, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	r := NewResolver(nil)
	if err := r.Pass1(lines); err != nil {
		t.Fatal(err)
	}
	err = r.Pass2(lines)
	pe, ok := err.(*Error)
	if !ok {
		t.Fatalf("got %v", err)
	}
	if pe.Line != 3 {
		t.Errorf("error line = %d, expected 3", pe.Line)
	}
}
