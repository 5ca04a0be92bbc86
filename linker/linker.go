// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linker

import (
	"github.com/pkg/errors"

	forge "github.com/forge6502/forge"
	"github.com/forge6502/forge/asm"
)

// A Region is a memory range declared in the script's MEMORY section.
type Region struct {
	Name  string
	Start uint16
	Size  uint16
}

// regions extracts the MEMORY section.
func regions(script *Script) (map[string]Region, error) {
	section, ok := script.Find("MEMORY")
	if !ok {
		return nil, errors.New("linker script has no MEMORY section")
	}

	out := make(map[string]Region, len(section.Items))
	for _, item := range section.Items {
		start, ok := item.Lookup("start")
		if !ok || !start.IsNum {
			return nil, errors.Errorf("memory region %s has no numeric start", item.Name)
		}
		size, ok := item.Lookup("size")
		if !ok || !size.IsNum {
			return nil, errors.Errorf("memory region %s has no numeric size", item.Name)
		}
		out[item.Name] = Region{Name: item.Name, Start: start.Num, Size: size.Num}
	}
	return out, nil
}

// segmentRegion maps a segment name to its load region.
func segmentRegion(script *Script, regions map[string]Region, segment string) (Region, error) {
	section, ok := script.Find("SEGMENTS")
	if !ok {
		return Region{}, errors.New("linker script has no SEGMENTS section")
	}
	for _, item := range section.Items {
		if item.Name != segment {
			continue
		}
		load, ok := item.Lookup("load")
		if !ok || load.IsNum {
			return Region{}, errors.Errorf("segment %s has no load region", segment)
		}
		region, ok := regions[load.Ident]
		if !ok {
			return Region{}, errors.Errorf("segment %s loads into unknown region %s", segment, load.Ident)
		}
		return region, nil
	}
	return Region{}, errors.Errorf("segment %s not present in linker script", segment)
}

// objectSegment returns the segment an object's code belongs to: the
// first SEGMENT directive in its line records, or CODE by default.
func objectSegment(o *forge.ObjectFile) string {
	for i := range o.Contents.Lines {
		d := o.Contents.Lines[i].Dir
		if d != nil && d.Name == forge.DirSEGMENT {
			return d.Ident
		}
	}
	return "CODE"
}

// Link encodes each object file and places its bytes into the memory
// region its segment maps to, producing one flat image covering every
// region the script declares. Unused space is zero-filled.
func Link(script *Script, objects []*forge.ObjectFile) ([]byte, error) {
	regs, err := regions(script)
	if err != nil {
		return nil, err
	}
	if len(regs) == 0 {
		return nil, errors.New("linker script declares no memory regions")
	}

	var base, end uint32
	base = 0xFFFF
	for _, reg := range regs {
		if uint32(reg.Start) < base {
			base = uint32(reg.Start)
		}
		if e := uint32(reg.Start) + uint32(reg.Size); e > end {
			end = e
		}
	}
	if end <= base {
		return nil, errors.New("linker script regions are empty")
	}

	image := make([]byte, end-base)
	used := make(map[string]uint32, len(regs)) // region name -> bytes placed

	for _, o := range objects {
		code, _, err := asm.Encode(o.Contents.Lines, o.Contents.Labels, o.Contents.Constants, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s", o.Header.FileName)
		}

		region, err := segmentRegion(script, regs, objectSegment(o))
		if err != nil {
			return nil, errors.Wrapf(err, "place %s", o.Header.FileName)
		}

		off := used[region.Name]
		if off+uint32(len(code)) > uint32(region.Size) {
			return nil, errors.Errorf("%s overflows region %s ($%04X + %d bytes > $%04X)",
				o.Header.FileName, region.Name, region.Start+uint16(off), len(code), region.Start+region.Size)
		}

		dst := uint32(region.Start) - base + off
		copy(image[dst:], code)
		used[region.Name] = off + uint32(len(code))
	}

	return image, nil
}
