// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linker

import (
	"strings"
	"testing"

	forge "github.com/forge6502/forge"
	"github.com/forge6502/forge/asm"
)

const testScript = `
# test image layout
MEMORY {
    ZP:  start = $0000, size = $0100
    PRG: start = $8000, size = $4000
}
SEGMENTS {
    CODE: load = PRG
}
`

func TestParseScript(t *testing.T) {
	script, err := ParseScript([]byte(testScript))
	if err != nil {
		t.Fatal(err)
	}

	mem, ok := script.Find("MEMORY")
	if !ok || len(mem.Items) != 2 {
		t.Fatalf("MEMORY section = %+v", mem)
	}
	prg := mem.Items[1]
	if prg.Name != "PRG" {
		t.Errorf("item name %q", prg.Name)
	}
	start, ok := prg.Lookup("start")
	if !ok || !start.IsNum || start.Num != 0x8000 {
		t.Errorf("start = %+v", start)
	}
	size, ok := prg.Lookup("size")
	if !ok || size.Num != 0x4000 {
		t.Errorf("size = %+v", size)
	}

	segs, ok := script.Find("SEGMENTS")
	if !ok || len(segs.Items) != 1 {
		t.Fatalf("SEGMENTS section = %+v", segs)
	}
	load, ok := segs.Items[0].Lookup("load")
	if !ok || load.IsNum || load.Ident != "PRG" {
		t.Errorf("load = %+v", load)
	}
}

func TestParseScriptDecimalValues(t *testing.T) {
	script, err := ParseScript([]byte("MEMORY {\n R: start = 256, size = 16\n}\n"))
	if err != nil {
		t.Fatal(err)
	}
	item := script.Sections[0].Items[0]
	start, _ := item.Lookup("start")
	if !start.IsNum || start.Num != 256 {
		t.Errorf("start = %+v", start)
	}
}

func TestParseScriptErrors(t *testing.T) {
	cases := []string{
		"MEMORY",
		"MEMORY { R start = 1 }",
		"MEMORY { R: start }",
		"MEMORY { R: start = $GG }",
		"MEMORY { R: start = 1",
	}
	for _, src := range cases {
		if _, err := ParseScript([]byte(src)); err == nil {
			t.Errorf("ParseScript(%q) did not fail", src)
		}
	}
}

func assembleObject(t *testing.T, source string) *forge.ObjectFile {
	t.Helper()
	result, err := asm.Assemble(strings.NewReader(source), "test.asm", nil)
	if err != nil {
		t.Fatal(err)
	}
	return result.ObjectFile()
}

func TestLinkPlacesObjectAtRegionStart(t *testing.T) {
	script, err := ParseScript([]byte(testScript))
	if err != nil {
		t.Fatal(err)
	}

	obj := assembleObject(t, "LDA #$01\nTAX\n")
	image, err := Link(script, []*forge.ObjectFile{obj})
	if err != nil {
		t.Fatal(err)
	}

	// Image spans $0000..$C000.
	if len(image) != 0xC000 {
		t.Fatalf("image size %d", len(image))
	}
	if image[0x8000] != 0xA9 || image[0x8001] != 0x01 || image[0x8002] != 0xAA {
		t.Errorf("code not placed at region start: % X", image[0x8000:0x8003])
	}
	if image[0] != 0 || image[0x7FFF] != 0 {
		t.Error("unused space not zero-filled")
	}
}

func TestLinkPlacesObjectsSequentially(t *testing.T) {
	script, err := ParseScript([]byte(testScript))
	if err != nil {
		t.Fatal(err)
	}

	a := assembleObject(t, "LDA #$01\n")
	b := assembleObject(t, "LDX #$02\n")
	image, err := Link(script, []*forge.ObjectFile{a, b})
	if err != nil {
		t.Fatal(err)
	}

	if image[0x8000] != 0xA9 || image[0x8002] != 0xA2 {
		t.Errorf("objects not placed sequentially: % X", image[0x8000:0x8004])
	}
}

func TestLinkRegionOverflow(t *testing.T) {
	script, err := ParseScript([]byte(`
MEMORY {
    PRG: start = $8000, size = $0002
}
SEGMENTS {
    CODE: load = PRG
}
`))
	if err != nil {
		t.Fatal(err)
	}

	obj := assembleObject(t, "LDA #$01\nTAX\n")
	if _, err := Link(script, []*forge.ObjectFile{obj}); err == nil {
		t.Error("region overflow was not reported")
	}
}

func TestLinkHonorsSegmentDirective(t *testing.T) {
	script, err := ParseScript([]byte(`
MEMORY {
    PRG: start = $8000, size = $4000
    RAM: start = $0000, size = $0100
}
SEGMENTS {
    CODE: load = PRG
    DATA: load = RAM
}
`))
	if err != nil {
		t.Fatal(err)
	}

	obj := assembleObject(t, ".SEGMENT \"DATA\"\n.BYTE $AB\n")
	image, err := Link(script, []*forge.ObjectFile{obj})
	if err != nil {
		t.Fatal(err)
	}
	if image[0] != 0xAB {
		t.Errorf("DATA segment not placed in RAM region: % X", image[0:2])
	}
}

func TestLinkUnknownSegment(t *testing.T) {
	script, err := ParseScript([]byte(`
MEMORY {
    PRG: start = $8000, size = $4000
}
SEGMENTS {
    CODE: load = PRG
}
`))
	if err != nil {
		t.Fatal(err)
	}

	obj := assembleObject(t, ".SEGMENT \"NOPE\"\nNOP\n")
	if _, err := Link(script, []*forge.ObjectFile{obj}); err == nil {
		t.Error("unknown segment was not reported")
	}
}
