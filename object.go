// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package forge

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// Magic is the signature string opening every object file.
const Magic = "rust6502forge"

// Object container format version.
const (
	versionMajor = 0
	versionMinor = 1
	versionPatch = 0
)

// A Header opens an object file.
type Header struct {
	Timestamp time.Time // UTC creation time
	Version   [3]byte   // semantic version triple
	FileName  string    // originating source file
}

// Contents is the serialized payload of an object file: the symbol
// tables and every parsed line, including comments and newline counts
// so the source structure round-trips.
type Contents struct {
	Labels    map[string]Label
	Constants map[string]uint16
	Lines     []Line
}

// An ObjectFile is the assembler's output artifact and the linker's
// input.
type ObjectFile struct {
	Header   Header
	Contents Contents
}

// NewObjectFile creates an object file wrapping the given symbol
// tables and lines.
func NewObjectFile(fileName string, labels map[string]Label, constants map[string]uint16, lines []Line) *ObjectFile {
	return &ObjectFile{
		Header: Header{
			Timestamp: time.Now().UTC().Truncate(time.Second),
			Version:   [3]byte{versionMajor, versionMinor, versionPatch},
			FileName:  fileName,
		},
		Contents: Contents{
			Labels:    labels,
			Constants: constants,
			Lines:     lines,
		},
	}
}

// WriteObjectFile serializes an object file to disk.
func WriteObjectFile(path string, o *ObjectFile) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create object file")
	}
	defer f.Close()

	if _, err := o.WriteTo(f); err != nil {
		return errors.Wrapf(err, "write object file %s", path)
	}
	return nil
}

// ReadObjectFile deserializes an object file from disk.
func ReadObjectFile(path string) (*ObjectFile, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FileError{File: path}
		}
		return nil, errors.Wrap(err, "open object file")
	}
	defer f.Close()

	o := new(ObjectFile)
	if _, err := o.ReadFrom(f); err != nil {
		return nil, errors.Wrapf(err, "read object file %s", path)
	}
	return o, nil
}

// Line record field-presence flags.
const (
	hasComment byte = 1 << iota
	hasConstant
	hasLabel
	hasInstruction
	hasDirective
)

// WriteTo serializes the object file. All multi-byte values are
// little-endian; strings are u16-length-prefixed. Symbol tables are
// written in sorted key order so output is deterministic.
func (o *ObjectFile) WriteTo(w io.Writer) (int64, error) {
	e := &objEncoder{w: bufio.NewWriter(w)}

	e.bytes([]byte(Magic))
	e.u8(o.Header.Version[0])
	e.u8(o.Header.Version[1])
	e.u8(o.Header.Version[2])
	e.str(o.Header.Timestamp.UTC().Format(time.RFC3339))
	e.str(o.Header.FileName)

	labelNames := sortedKeys(o.Contents.Labels)
	e.u32(uint32(len(labelNames)))
	for _, name := range labelNames {
		l := o.Contents.Labels[name]
		e.str(name)
		e.u16(l.Offset)
		e.boolean(l.IsLocal)
	}

	constNames := sortedKeys(o.Contents.Constants)
	e.u32(uint32(len(constNames)))
	for _, name := range constNames {
		e.str(name)
		e.u16(o.Contents.Constants[name])
	}

	e.u32(uint32(len(o.Contents.Lines)))
	for i := range o.Contents.Lines {
		e.line(&o.Contents.Lines[i])
	}

	if e.err == nil {
		e.err = e.w.Flush()
	}
	return e.n, e.err
}

// ReadFrom deserializes an object file, validating the magic string
// and format version.
func (o *ObjectFile) ReadFrom(r io.Reader) (int64, error) {
	d := &objDecoder{r: bufio.NewReader(r)}

	magic := d.bytes(len(Magic))
	if d.err == nil && string(magic) != Magic {
		return d.n, errors.New("invalid object file format")
	}

	o.Header.Version[0] = d.u8()
	o.Header.Version[1] = d.u8()
	o.Header.Version[2] = d.u8()
	if d.err == nil && (o.Header.Version[0] != versionMajor || o.Header.Version[1] != versionMinor) {
		return d.n, errors.New("invalid object file version")
	}

	ts := d.str()
	if d.err == nil {
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return d.n, errors.Wrap(err, "object file timestamp")
		}
		o.Header.Timestamp = t
	}
	o.Header.FileName = d.str()

	labelCount := int(d.u32())
	o.Contents.Labels = make(map[string]Label, labelCount)
	for i := 0; i < labelCount && d.err == nil; i++ {
		name := d.str()
		offset := d.u16()
		local := d.boolean()
		o.Contents.Labels[name] = Label{Offset: offset, IsLocal: local}
	}

	constCount := int(d.u32())
	o.Contents.Constants = make(map[string]uint16, constCount)
	for i := 0; i < constCount && d.err == nil; i++ {
		name := d.str()
		o.Contents.Constants[name] = d.u16()
	}

	lineCount := int(d.u32())
	o.Contents.Lines = make([]Line, 0, lineCount)
	for i := 0; i < lineCount && d.err == nil; i++ {
		o.Contents.Lines = append(o.Contents.Lines, d.line())
	}

	return d.n, d.err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

//
// encoder
//

type objEncoder struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (e *objEncoder) bytes(b []byte) {
	if e.err != nil {
		return
	}
	nn, err := e.w.Write(b)
	e.n += int64(nn)
	e.err = err
}

func (e *objEncoder) u8(v uint8) {
	e.bytes([]byte{v})
}

func (e *objEncoder) boolean(v bool) {
	if v {
		e.u8(1)
	} else {
		e.u8(0)
	}
}

func (e *objEncoder) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.bytes(b[:])
}

func (e *objEncoder) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.bytes(b[:])
}

func (e *objEncoder) str(s string) {
	e.u16(uint16(len(s)))
	e.bytes([]byte(s))
}

func (e *objEncoder) line(l *Line) {
	var flags byte
	if l.Comment != "" {
		flags |= hasComment
	}
	if l.Constant != nil {
		flags |= hasConstant
	}
	if l.Label != nil {
		flags |= hasLabel
	}
	if l.Instr != nil {
		flags |= hasInstruction
	}
	if l.Dir != nil {
		flags |= hasDirective
	}

	e.u8(flags)
	e.u32(l.Newlines)
	if l.Comment != "" {
		e.str(l.Comment)
	}
	if l.Constant != nil {
		e.str(l.Constant.Name)
		e.u16(l.Constant.Value)
	}
	if l.Label != nil {
		e.str(l.Label.Name)
		e.boolean(l.Label.Local)
	}
	if l.Instr != nil {
		e.instruction(l.Instr)
	}
	if l.Dir != nil {
		e.directive(l.Dir)
	}
}

func (e *objEncoder) instruction(in *Instruction) {
	e.u8(byte(in.Mnemonic))
	e.boolean(in.Operand != nil)
	if in.Operand != nil {
		e.operand(in.Operand)
	}
}

func (e *objEncoder) operand(op *Operand) {
	e.u8(byte(op.Class))
	switch op.Class {
	case OperandMode:
		e.mode(op.Mode)
	case OperandExpr:
		e.expr(op.Expr)
	case OperandLocal:
		e.str(op.Local)
	}
}

func (e *objEncoder) mode(m AddressMode) {
	e.u8(byte(m.Shape))
	e.u8(byte(m.Kind))
	switch m.Kind {
	case KindValue:
		e.u16(m.Value)
	case KindIdent:
		e.str(m.Ident)
	case KindScopedRef:
		e.strs(m.Scoped)
	}
}

func (e *objEncoder) strs(ss []string) {
	e.u8(uint8(len(ss)))
	for _, s := range ss {
		e.str(s)
	}
}

func (e *objEncoder) expr(x *Expr) {
	e.u8(byte(x.Op))
	switch x.Op {
	case ExprNumber:
		e.u16(x.Value)
	case ExprIdentifier:
		e.str(x.Ident)
	case ExprScopedRef:
		e.strs(x.Scoped)
	case ExprParen:
		e.expr(x.Left)
	case ExprBinary:
		e.u8(byte(x.BinOp))
		e.expr(x.Left)
		e.expr(x.Right)
	}
}

func (e *objEncoder) directive(d *Directive) {
	e.u8(byte(d.Name))
	switch d.Name {
	case DirORG:
		e.u16(d.Org)
	case DirBYTE:
		e.u32(uint32(len(d.Bytes)))
		for i := range d.Bytes {
			a := &d.Bytes[i]
			e.u8(byte(a.Kind))
			switch a.Kind {
			case ArgValue:
				e.u8(a.Value)
			case ArgIdent:
				e.str(a.Ident)
			case ArgExpr:
				e.expr(a.Expr)
			}
		}
	case DirWORD:
		e.u32(uint32(len(d.Words)))
		for i := range d.Words {
			a := &d.Words[i]
			e.u8(byte(a.Kind))
			switch a.Kind {
			case ArgValue:
				e.u16(a.Value)
			case ArgIdent:
				e.str(a.Ident)
			case ArgExpr:
				e.expr(a.Expr)
			}
		}
	case DirSEGMENT, DirINCLUDE, DirPROC, DirENUM, DirMACRO, DirSCOPE:
		e.str(d.Ident)
	}
}

//
// decoder
//

type objDecoder struct {
	r   *bufio.Reader
	n   int64
	err error
}

func (d *objDecoder) bytes(n int) []byte {
	if d.err != nil {
		return nil
	}
	b := make([]byte, n)
	nn, err := io.ReadFull(d.r, b)
	d.n += int64(nn)
	d.err = err
	return b
}

func (d *objDecoder) u8() uint8 {
	b := d.bytes(1)
	if d.err != nil {
		return 0
	}
	return b[0]
}

func (d *objDecoder) boolean() bool {
	return d.u8() != 0
}

func (d *objDecoder) u16() uint16 {
	b := d.bytes(2)
	if d.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (d *objDecoder) u32() uint32 {
	b := d.bytes(4)
	if d.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *objDecoder) str() string {
	n := int(d.u16())
	b := d.bytes(n)
	if d.err != nil {
		return ""
	}
	return string(b)
}

func (d *objDecoder) strs() []string {
	n := int(d.u8())
	ss := make([]string, 0, n)
	for i := 0; i < n && d.err == nil; i++ {
		ss = append(ss, d.str())
	}
	return ss
}

func (d *objDecoder) line() Line {
	var l Line

	flags := d.u8()
	l.Newlines = d.u32()
	if flags&hasComment != 0 {
		l.Comment = d.str()
	}
	if flags&hasConstant != 0 {
		l.Constant = &Constant{Name: d.str(), Value: d.u16()}
	}
	if flags&hasLabel != 0 {
		l.Label = &LineLabel{Name: d.str(), Local: d.boolean()}
	}
	if flags&hasInstruction != 0 {
		l.Instr = d.instruction()
	}
	if flags&hasDirective != 0 {
		l.Dir = d.directive()
	}
	return l
}

func (d *objDecoder) instruction() *Instruction {
	in := &Instruction{Mnemonic: Mnemonic(d.u8())}
	if d.boolean() {
		in.Operand = d.operand()
	}
	return in
}

func (d *objDecoder) operand() *Operand {
	op := &Operand{Class: OperandClass(d.u8())}
	switch op.Class {
	case OperandMode:
		op.Mode = d.mode()
	case OperandExpr:
		op.Expr = d.expr()
	case OperandLocal:
		op.Local = d.str()
	default:
		d.fail("invalid operand class")
	}
	return op
}

func (d *objDecoder) mode() AddressMode {
	m := AddressMode{Shape: Shape(d.u8()), Kind: OperandKind(d.u8())}
	switch m.Kind {
	case KindValue:
		m.Value = d.u16()
	case KindIdent:
		m.Ident = d.str()
	case KindScopedRef:
		m.Scoped = d.strs()
	default:
		d.fail("invalid operand kind")
	}
	return m
}

func (d *objDecoder) expr() *Expr {
	x := &Expr{Op: ExprOp(d.u8())}
	switch x.Op {
	case ExprNumber:
		x.Value = d.u16()
	case ExprIdentifier:
		x.Ident = d.str()
	case ExprScopedRef:
		x.Scoped = d.strs()
	case ExprParen:
		x.Left = d.expr()
	case ExprBinary:
		x.BinOp = BinaryOp(d.u8())
		x.Left = d.expr()
		x.Right = d.expr()
	default:
		d.fail("invalid expression node")
	}
	return x
}

func (d *objDecoder) directive() *Directive {
	dir := &Directive{Name: DirectiveName(d.u8())}
	switch dir.Name {
	case DirORG:
		dir.Org = d.u16()
	case DirBYTE:
		n := int(d.u32())
		dir.Bytes = make([]ByteArg, 0, n)
		for i := 0; i < n && d.err == nil; i++ {
			a := ByteArg{Kind: ArgKind(d.u8())}
			switch a.Kind {
			case ArgValue:
				a.Value = d.u8()
			case ArgIdent:
				a.Ident = d.str()
			case ArgExpr:
				a.Expr = d.expr()
			default:
				d.fail("invalid byte argument")
			}
			dir.Bytes = append(dir.Bytes, a)
		}
	case DirWORD:
		n := int(d.u32())
		dir.Words = make([]WordArg, 0, n)
		for i := 0; i < n && d.err == nil; i++ {
			a := WordArg{Kind: ArgKind(d.u8())}
			switch a.Kind {
			case ArgValue:
				a.Value = d.u16()
			case ArgIdent:
				a.Ident = d.str()
			case ArgExpr:
				a.Expr = d.expr()
			default:
				d.fail("invalid word argument")
			}
			dir.Words = append(dir.Words, a)
		}
	case DirSEGMENT, DirINCLUDE, DirPROC, DirENUM, DirMACRO, DirSCOPE:
		dir.Ident = d.str()
	case DirENDPROC, DirENDENUM, DirENDMACRO, DirENDSCOPE:
	default:
		d.fail("invalid directive")
	}
	return dir
}

func (d *objDecoder) fail(msg string) {
	if d.err == nil {
		d.err = errors.New(msg)
	}
}
