// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linker combines assembler object files into a flat binary
// image, placed according to a linker script.
package linker

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A Property is one "key = value" pair of a linker-script item. A
// value is either a number ('$'-prefixed hex or decimal) or an
// identifier.
type Property struct {
	Key   string
	Num   uint16
	Ident string
	IsNum bool
}

// An Item is a named entry of a section, carrying a property list.
type Item struct {
	Name       string
	Properties []Property
}

// A Section is a named group of items, e.g. MEMORY or SEGMENTS.
type Section struct {
	Name  string
	Items []Item
}

// A Script is a parsed linker script.
type Script struct {
	Sections []Section
}

// Find returns the named section, folding case.
func (s *Script) Find(name string) (*Section, bool) {
	for i := range s.Sections {
		if strings.EqualFold(s.Sections[i].Name, name) {
			return &s.Sections[i], true
		}
	}
	return nil, false
}

// Lookup returns the named property of an item.
func (it *Item) Lookup(key string) (*Property, bool) {
	for i := range it.Properties {
		if strings.EqualFold(it.Properties[i].Key, key) {
			return &it.Properties[i], true
		}
	}
	return nil, false
}

// A scriptParser is a byte cursor over linker-script text.
type scriptParser struct {
	src  []byte
	pos  int
	line int
}

// ParseScript parses linker-script text:
//
//	MEMORY {
//	    PRG: start = $8000, size = $4000
//	}
//	SEGMENTS {
//	    CODE: load = PRG
//	}
//
// '#' starts a comment that runs to end of line.
func ParseScript(src []byte) (*Script, error) {
	p := &scriptParser{src: src, line: 1}

	script := &Script{}
	for {
		p.skipSpace()
		if p.done() {
			return script, nil
		}

		name, ok := p.identifier()
		if !ok {
			return nil, p.errf("expected section name")
		}
		p.skipSpace()
		if !p.consume('{') {
			return nil, p.errf("expected '{' after section %s", name)
		}

		section := Section{Name: name}
		for {
			p.skipSpace()
			if p.consume('}') {
				break
			}
			if p.done() {
				return nil, p.errf("unterminated section %s", name)
			}
			item, err := p.item()
			if err != nil {
				return nil, err
			}
			section.Items = append(section.Items, item)
		}
		script.Sections = append(script.Sections, section)
	}
}

func (p *scriptParser) item() (Item, error) {
	name, ok := p.identifier()
	if !ok {
		return Item{}, p.errf("expected item name")
	}
	p.skipSpace()
	if !p.consume(':') {
		return Item{}, p.errf("expected ':' after item %s", name)
	}

	item := Item{Name: name}
	for {
		p.skipSpace()
		prop, err := p.property()
		if err != nil {
			return Item{}, err
		}
		item.Properties = append(item.Properties, prop)

		p.skipSpace()
		if !p.consume(',') {
			break
		}
	}
	return item, nil
}

func (p *scriptParser) property() (Property, error) {
	key, ok := p.identifier()
	if !ok {
		return Property{}, p.errf("expected property key")
	}
	p.skipSpace()
	if !p.consume('=') {
		return Property{}, p.errf("expected '=' after property %s", key)
	}
	p.skipSpace()

	prop := Property{Key: key}
	switch {
	case p.consume('$'):
		digits := p.takeWhile(hexDigit)
		v, err := strconv.ParseUint(digits, 16, 16)
		if err != nil {
			return Property{}, p.errf("bad hex value %q for %s", digits, key)
		}
		prop.Num, prop.IsNum = uint16(v), true

	case p.peekDigit():
		digits := p.takeWhile(decDigit)
		v, err := strconv.ParseUint(digits, 10, 16)
		if err != nil {
			return Property{}, p.errf("bad value %q for %s", digits, key)
		}
		prop.Num, prop.IsNum = uint16(v), true

	default:
		ident, ok := p.identifier()
		if !ok {
			return Property{}, p.errf("expected value for property %s", key)
		}
		prop.Ident = ident
	}
	return prop, nil
}

func (p *scriptParser) done() bool {
	return p.pos >= len(p.src)
}

func (p *scriptParser) peek() (byte, bool) {
	if p.done() {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *scriptParser) consume(c byte) bool {
	if ch, ok := p.peek(); ok && ch == c {
		p.pos++
		return true
	}
	return false
}

// skipSpace consumes whitespace, newlines, and '#' comments.
func (p *scriptParser) skipSpace() {
	for {
		c, ok := p.peek()
		switch {
		case !ok:
			return
		case c == '\n':
			p.line++
			p.pos++
		case c == ' ' || c == '\t' || c == '\r':
			p.pos++
		case c == '#':
			for {
				c, ok := p.peek()
				if !ok || c == '\n' {
					break
				}
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *scriptParser) identifier() (string, bool) {
	c, ok := p.peek()
	if !ok || !letter(c) {
		return "", false
	}
	start := p.pos
	for {
		c, ok := p.peek()
		if !ok || !(letter(c) || decDigit(c) || c == '_') {
			break
		}
		p.pos++
	}
	return string(p.src[start:p.pos]), true
}

func (p *scriptParser) takeWhile(fn func(byte) bool) string {
	start := p.pos
	for {
		c, ok := p.peek()
		if !ok || !fn(c) {
			break
		}
		p.pos++
	}
	return string(p.src[start:p.pos])
}

func (p *scriptParser) peekDigit() bool {
	c, ok := p.peek()
	return ok && decDigit(c)
}

func (p *scriptParser) errf(format string, args ...interface{}) error {
	return errors.Wrapf(errors.Errorf(format, args...), "linker script line %d", p.line)
}

func letter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func decDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func hexDigit(c byte) bool {
	return decDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
