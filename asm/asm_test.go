// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"strings"
	"testing"

	forge "github.com/forge6502/forge"
)

func assemble(code string) (*Result, error) {
	return Assemble(strings.NewReader(code), "test", nil)
}

func checkASM(t *testing.T, source string, expected string) {
	t.Helper()

	result, err := assemble(source)
	if err != nil {
		t.Error(err)
		return
	}

	b := make([]byte, len(result.Code)*2)
	for i, j := 0, 0; i < len(result.Code); i, j = i+1, j+2 {
		v := result.Code[i]
		b[j+0] = hex[v>>4]
		b[j+1] = hex[v&0x0f]
	}
	s := string(b)

	if s != expected {
		t.Error("code doesn't match expected")
		t.Errorf("got: %s\n", s)
		t.Errorf("exp: %s\n", expected)
	}
}

func checkASMError(t *testing.T, source string, kind Kind) {
	t.Helper()

	_, err := assemble(source)
	if err == nil {
		t.Errorf("expected error on %q, didn't get one", source)
		return
	}
	pe, ok := err.(*Error)
	if !ok {
		t.Errorf("expected *Error on %q, got %v", source, err)
		return
	}
	if pe.Kind != kind {
		t.Errorf("expected error kind %d on %q, got %d (%v)", kind, source, pe.Kind, pe)
	}
}

func TestImmediate(t *testing.T) {
	checkASM(t, "LDA #$44\n", "A944")
}

func TestAbsolute(t *testing.T) {
	checkASM(t, "STA $2000\n", "8D0020")
}

func TestIndirectIndexY(t *testing.T) {
	checkASM(t, "LDA ($44),Y\n", "B144")
}

func TestImplied(t *testing.T) {
	checkASM(t, "TAX\n", "AA")
}

func TestConstantWidensToAbsolute(t *testing.T) {
	asm := `PPU = $2002
LDA PPU
`
	checkASM(t, asm, "AD0220")
}

func TestConstantNarrowsToZeroPage(t *testing.T) {
	asm := `COUNT = $10
LDA COUNT
`
	checkASM(t, asm, "A510")
}

func TestLabelRegistersAtOffsetZero(t *testing.T) {
	asm := `START:
JMP START
`
	result, err := assemble(asm)
	if err != nil {
		t.Fatal(err)
	}
	if got := byteString(result.Code); got != "4C 00 00" {
		t.Errorf("got %s, expected 4C 00 00", got)
	}
	l, ok := result.Labels["START"]
	if !ok || l.Offset != 0 || l.IsLocal {
		t.Errorf("START not registered at offset 0: %+v", l)
	}
}

func TestAddressingImmediate(t *testing.T) {
	asm := `
LDA #$20
LDX #$20
LDY #$20
ADC #$20
SBC #$20
CMP #$20
CPX #$20
CPY #$20
AND #$20
ORA #$20
EQR #$20
`
	checkASM(t, asm, "A920A220A0206920E920C920E020C020292009204920")
}

func TestAddressingAbsolute(t *testing.T) {
	asm := `
LDA $2000
LDX $2000
LDY $2000
STA $2000
STX $2000
STY $2000
ADC $2000
SBC $2000
CMP $2000
CPX $2000
CPY $2000
BIT $2000
AND $2000
ORA $2000
EQR $2000
INC $2000
DEC $2000
JMP $2000
JSR $2000
ASL $2000
LSR $2000
ROL $2000
ROR $2000
`
	checkASM(t, asm, "AD0020AE0020AC00208D00208E00208C00206D0020ED0020CD0020"+
		"EC0020CC00202C00202D00200D00204D0020EE0020CE00204C00202000200E0020"+
		"4E00202E00206E0020")
}

func TestAddressingAbsoluteX(t *testing.T) {
	asm := `
LDA $2000,X
LDY $2000,X
STA $2000,X
ADC $2000,X
SBC $2000,X
CMP $2000,X
AND $2000,X
ORA $2000,X
EQR $2000,X
INC $2000,X
DEC $2000,X
ASL $2000,X
LSR $2000,X
ROL $2000,X
ROR $2000,X
`
	checkASM(t, asm, "BD0020BC00209D00207D0020FD0020DD00203D00201D00205D0020"+
		"FE0020DE00201E00205E00203E00207E0020")
}

func TestAddressingAbsoluteY(t *testing.T) {
	asm := `
LDA $2000,Y
LDX $2000,Y
STA $2000,Y
ADC $2000,Y
SBC $2000,Y
CMP $2000,Y
AND $2000,Y
ORA $2000,Y
EQR $2000,Y
`
	checkASM(t, asm, "B90020BE0020990020790020F90020D90020390020190020590020")
}

func TestAddressingZeroPage(t *testing.T) {
	asm := `
LDA $20
LDX $20
LDY $20
STA $20
STX $20
STY $20
ADC $20
SBC $20
CMP $20
CPX $20
CPY $20
BIT $20
AND $20
ORA $20
EQR $20
INC $20
DEC $20
ASL $20
LSR $20
ROL $20
ROR $20
`
	checkASM(t, asm, "A520A620A4208520862084206520E520C520E420C42024202520"+
		"05204520E620C6200620462026206620")
}

func TestAddressingZeroPageIndexed(t *testing.T) {
	asm := `
LDA $20,X
LDY $20,X
STA $20,X
LDX $20,Y
STX $20,Y
`
	checkASM(t, asm, "B520B4209520B6209620")
}

func TestAddressingIndirect(t *testing.T) {
	asm := `
LDA ($20,X)
STA ($20,X)
LDA ($20),Y
STA ($20),Y
`
	checkASM(t, asm, "A1208120B1209120")
}

func TestAccumulatorOperand(t *testing.T) {
	asm := `
ASL A
LSR a
ROL A
ROR A
`
	checkASM(t, asm, "0A4A2A6A")
}

// ZeroPageY exists only for LDX/STX; every other ,Y context promotes
// to AbsoluteY.
func TestZeroPageYPromotion(t *testing.T) {
	checkASM(t, "LDA $20,Y\n", "B92000")
	checkASM(t, "LDX $20,Y\n", "B620")
	checkASM(t, "STX $20,Y\n", "9620")
}

func TestCaseFolding(t *testing.T) {
	asm := `
lda #$44
sTa $2000
ldx #$10
.byte $01
.BYTE $02
.ByTe $03
`
	checkASM(t, asm, "A9448D0020A210010203")
}

func TestEorSpelling(t *testing.T) {
	checkASM(t, "EQR #$20\n", "4920")
	checkASM(t, "EOR #$20\n", "4920")
}

func TestExpressionOperand(t *testing.T) {
	asm := `BASE = $2000
LDA BASE+1
`
	checkASM(t, asm, "AD0120")
}

func TestExpressionNarrowsToZeroPage(t *testing.T) {
	asm := `N = $10
LDA N*2
`
	checkASM(t, asm, "A520")
}

func TestByteDirective(t *testing.T) {
	asm := `.BYTE $01, $02, %00000011, 4
`
	checkASM(t, asm, "01020304")
}

func TestByteDirectiveTrailingComma(t *testing.T) {
	asm := `.BYTE $01, $02,
`
	checkASM(t, asm, "0102")
}

func TestWordDirective(t *testing.T) {
	asm := `.WORD $1234, $AB
`
	checkASM(t, asm, "3412AB00")
}

func TestAddrAliasesWord(t *testing.T) {
	asm := `.ADDR $1234
`
	checkASM(t, asm, "3412")
}

func TestByteExpressionArgs(t *testing.T) {
	asm := `MAPPER = 2
MIRROR = 1
.BYTE (MAPPER << 4) | (MIRROR & 1)
`
	checkASM(t, asm, "21")
}

func TestWordIdentifierArg(t *testing.T) {
	asm := `PPU = $2002
.WORD PPU
`
	checkASM(t, asm, "0220")
}

func TestWordLabelArg(t *testing.T) {
	asm := `NOP
TARGET:
.WORD TARGET
`
	checkASM(t, asm, "EA0100")
}

func TestBranchBackward(t *testing.T) {
	asm := `LOOP:
DEX
BNE LOOP
`
	checkASM(t, asm, "CAD0FD")
}

func TestBranchForward(t *testing.T) {
	asm := `BEQ SKIP
NOP
SKIP:
NOP
`
	checkASM(t, asm, "F001EAEA")
}

func TestBranchLocalLabel(t *testing.T) {
	asm := `@loop:
DEX
BNE @loop
`
	checkASM(t, asm, "CAD0FD")
}

func TestBranchOutOfRange(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("LOOP:\n")
	for i := 0; i < 100; i++ {
		sb.WriteString("STA $2000\n")
	}
	sb.WriteString("BNE LOOP\n")
	checkASMError(t, sb.String(), ErrBranchOutOfRange)
}

func TestOrgEmitsNothing(t *testing.T) {
	asm := `.ORG $8000
LDA #$01
`
	result, err := assemble(asm)
	if err != nil {
		t.Fatal(err)
	}
	if result.Origin != 0x8000 {
		t.Errorf("origin = $%04X, expected $8000", result.Origin)
	}
	if byteString(result.Code) != "A9 01" {
		t.Errorf("code = %s, expected A9 01", byteString(result.Code))
	}
}

func TestStructuralDirectives(t *testing.T) {
	asm := `.SEGMENT "CODE"
.PROC Main
NOP
.ENDPROC
`
	checkASM(t, asm, "EA")
}

func TestCodeAliasesSegment(t *testing.T) {
	result, err := assemble(".CODE\nNOP\n")
	if err != nil {
		t.Fatal(err)
	}
	d := result.Lines[0].Dir
	if d == nil || d.Name != forge.DirSEGMENT || d.Ident != "CODE" {
		t.Errorf("expected SEGMENT CODE, got %+v", d)
	}
}

func TestIncludePreserved(t *testing.T) {
	result, err := assemble(".INCLUDE \"lib/macros.asm\"\nNOP\n")
	if err != nil {
		t.Fatal(err)
	}
	d := result.Lines[0].Dir
	if d == nil || d.Name != forge.DirINCLUDE || d.Ident != "lib/macros.asm" {
		t.Errorf("expected INCLUDE lib/macros.asm, got %+v", d)
	}
	if byteString(result.Code) != "EA" {
		t.Errorf("include contributed bytes: %s", byteString(result.Code))
	}
}

func TestScopedReferenceResolution(t *testing.T) {
	asm := `.SCOPE Joypad
Down = $01
Up = $02
.ENDSCOPE
LDA #Joypad::Down
STA Joypad::Up
`
	checkASM(t, asm, "A9018502")
}

func TestNestedScopes(t *testing.T) {
	asm := `.SCOPE Player
.SCOPE Joypad
Down = $04
.ENDSCOPE
.ENDSCOPE
LDA #Player::Joypad::Down
LDX #Joypad::Down
`
	checkASM(t, asm, "A904A204")
}

func TestScopedReferenceMissing(t *testing.T) {
	checkASMError(t, "LDA Missing::Name\n", ErrSymbolNotFound)
}

func TestConstantRedefinitionLastWins(t *testing.T) {
	asm := `V = $01
V = $02
LDA #V
`
	checkASM(t, asm, "A902")
}

func TestLabelWinsOverConstant(t *testing.T) {
	asm := `NOP
X = $10
X:
LDA X
`
	// The label at offset 1 wins over the zero-page constant.
	checkASM(t, asm, "EAAD0100")
}

func TestMissingSymbol(t *testing.T) {
	checkASMError(t, "LDA UNDEFINED\n", ErrSymbolNotFound)
}

func TestUnknownOpcodePairing(t *testing.T) {
	checkASMError(t, "LDA\n", ErrNoSuchOpcode)
	checkASMError(t, "TAX #$01\n", ErrNoSuchOpcode)
}

func TestExpectedNewline(t *testing.T) {
	checkASMError(t, "LDA #$44 garbage\n", ErrExpectedNewline)
}

func TestByteValueTooLarge(t *testing.T) {
	checkASMError(t, ".BYTE $1FF\n", ErrValueTooLarge)
}

func TestImmediateConstantTooLarge(t *testing.T) {
	asm := `PPU = $2002
LDA #PPU
`
	checkASMError(t, asm, ErrValueTooLarge)
}

func TestCommentsAndBlankLines(t *testing.T) {
	asm := `; leading comment

LDA #$44 ; trailing comment
	; indented comment

TAX
`
	checkASM(t, asm, "A944AA")
}

// The offset counter after sizing must equal the number of bytes
// emitted.
func TestSizingMatchesEmission(t *testing.T) {
	asm := `PPU = $2002
COUNT = $10
START:
LDA #$00
STA PPU
LDA COUNT
LDA $20,Y
STA ($44),Y
.BYTE $01, $02
.WORD START
JMP START
BNE START
`
	result, err := assemble(asm)
	if err != nil {
		t.Fatal(err)
	}
	if int(result.Size) != len(result.Code) {
		t.Errorf("sized $%04X bytes, emitted %d", result.Size, len(result.Code))
	}
}

// After resolution, no line may contain a deferred address mode or an
// unevaluated expression.
func TestResolutionTotality(t *testing.T) {
	asm := `PPU = $2002
PTR = $44
START:
LDA PPU
STA PPU,X
LDA (PTR),Y
JMP START
.BYTE PPU & $FF
`
	result, err := assemble(asm)
	if err != nil {
		t.Fatal(err)
	}
	for i := range result.Lines {
		line := &result.Lines[i]
		if in := line.Instr; in != nil && in.Operand != nil {
			if in.Operand.Class != forge.OperandMode {
				t.Errorf("line %d: unresolved operand class %d", i, in.Operand.Class)
			} else if !in.Operand.Mode.Resolved() {
				t.Errorf("line %d: unresolved mode %s", i, in.Operand.Mode)
			}
		}
		if d := line.Dir; d != nil {
			for _, a := range d.Bytes {
				if a.Kind != forge.ArgValue {
					t.Errorf("line %d: unresolved byte arg", i)
				}
			}
			for _, a := range d.Words {
				if a.Kind != forge.ArgValue {
					t.Errorf("line %d: unresolved word arg", i)
				}
			}
		}
	}
}

func TestObjectFileRoundTrip(t *testing.T) {
	asm := `; a small program
PPU = $2002
START:
LDA #$00
STA PPU
@loop:
BNE @loop
.BYTE $01, $02
`
	result, err := assemble(asm)
	if err != nil {
		t.Fatal(err)
	}

	obj := result.ObjectFile()
	var buf strings.Builder
	if _, err := obj.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	var back forge.ObjectFile
	if _, err := back.ReadFrom(strings.NewReader(buf.String())); err != nil {
		t.Fatal(err)
	}

	if back.Header.FileName != "test" {
		t.Errorf("file name %q", back.Header.FileName)
	}
	if len(back.Contents.Lines) != len(obj.Contents.Lines) {
		t.Fatalf("line count %d != %d", len(back.Contents.Lines), len(obj.Contents.Lines))
	}
	if len(back.Contents.Labels) != len(obj.Contents.Labels) ||
		len(back.Contents.Constants) != len(obj.Contents.Constants) {
		t.Error("symbol tables did not round-trip")
	}
}

func TestAssembleFileMissing(t *testing.T) {
	_, err := AssembleFile("no/such/file.asm", nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := err.(*forge.FileError); !ok {
		t.Errorf("expected *forge.FileError, got %T", err)
	}
}
