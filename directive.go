// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package forge

import (
	"strings"

	prefixtree "github.com/beevik/prefixtree/v2"
)

// A DirectiveName identifies one of the recognized directive keywords.
type DirectiveName byte

// All directive keywords. ADDR and CODE are surface aliases: the
// parser canonicalizes them to WORD and SEGMENT "CODE", so they never
// appear in a parsed Directive.
const (
	DirORG DirectiveName = iota
	DirBYTE
	DirWORD
	DirSEGMENT
	DirINCLUDE
	DirPROC
	DirENDPROC
	DirENUM
	DirENDENUM
	DirMACRO
	DirENDMACRO
	DirSCOPE
	DirENDSCOPE
	DirADDR
	DirCODE
)

var directiveNames = []string{
	"ORG", "BYTE", "WORD", "SEGMENT", "INCLUDE", "PROC", "ENDPROC",
	"ENUM", "ENDENUM", "MACRO", "ENDMACRO", "SCOPE", "ENDSCOPE",
	"ADDR", "CODE",
}

func (d DirectiveName) String() string {
	return directiveNames[d]
}

var directiveTree = prefixtree.New[DirectiveName]()

func init() {
	for i, name := range directiveNames {
		directiveTree.Add(name, DirectiveName(i))
	}
}

// ParseDirectiveName matches a word against the directive keyword set,
// folding case. Abbreviations are rejected by comparing the match with
// the input.
func ParseDirectiveName(word string) (DirectiveName, bool) {
	if word == "" {
		return 0, false
	}
	key := strings.ToUpper(word)
	d, err := directiveTree.FindValue(key)
	if err != nil {
		return 0, false
	}
	if key != directiveNames[d] {
		return 0, false
	}
	return d, true
}

// An ArgKind distinguishes the three forms a BYTE or WORD argument
// can take.
type ArgKind byte

// Argument kinds.
const (
	ArgValue ArgKind = iota
	ArgIdent
	ArgExpr
)

// A ByteArg is one argument of a BYTE directive. Values must fit in
// 8 bits.
type ByteArg struct {
	Kind  ArgKind
	Value uint8
	Ident string
	Expr  *Expr
}

// A WordArg is one argument of a WORD (or ADDR) directive.
type WordArg struct {
	Kind  ArgKind
	Value uint16
	Ident string
	Expr  *Expr
}

// A Directive is a parsed assembler directive. Only the fields
// relevant to Name are populated.
type Directive struct {
	Name  DirectiveName
	Org   uint16    // DirORG
	Bytes []ByteArg // DirBYTE
	Words []WordArg // DirWORD
	Ident string    // segment, proc, enum, macro, or scope name; include path
}

// Size returns the directive's contribution to the offset counter in
// bytes.
func (d *Directive) Size() int {
	switch d.Name {
	case DirBYTE:
		return len(d.Bytes)
	case DirWORD:
		return 2 * len(d.Words)
	default:
		return 0
	}
}

// OpensScope reports whether the directive begins a named scope block.
func (d *Directive) OpensScope() bool {
	switch d.Name {
	case DirPROC, DirENUM, DirSCOPE:
		return true
	default:
		return false
	}
}

// ClosesScope reports whether the directive ends a named scope block.
func (d *Directive) ClosesScope() bool {
	switch d.Name {
	case DirENDPROC, DirENDENUM, DirENDSCOPE:
		return true
	default:
		return false
	}
}
