// Copyright 2023 the forge6502 authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	forge "github.com/forge6502/forge"
)

// Line parses the next source line. The line is the transactional
// unit: each alternative rewinds fully on a miss. Alternatives are
// tried in order: comment-only line, constant definition, then
// optional label + optional instruction-or-directive + optional
// comment. Instructions are attempted before directives; directives
// require a leading '.', so the two can never alias.
func (s *Scanner) Line() (forge.Line, error) {
	var line forge.Line

	s.skipWhitespace()

	// Comment-only line.
	if comment, ok := s.comment(); ok {
		line.Comment = comment
		s.skipWhitespace()
		n, err := s.statementEnd()
		if err != nil {
			return line, err
		}
		line.Newlines = n
		return line, nil
	}

	// Constant definition.
	if c, ok, err := s.constant(); err != nil {
		return line, err
	} else if ok {
		line.Constant = &c
		s.skipWhitespace()
		if comment, ok := s.comment(); ok {
			line.Comment = comment
		}
		n, err := s.statementEnd()
		if err != nil {
			return line, err
		}
		line.Newlines = n
		return line, nil
	}

	// Optional label.
	if name, local, ok := s.label(); ok {
		line.Label = &forge.LineLabel{Name: name, Local: local}
	}

	s.skipWhitespace()

	// Optional main component: instruction first, then directive.
	if in, ok, err := s.attemptInstruction(); err != nil {
		return line, err
	} else if ok {
		line.Instr = in
	} else if dir, ok, err := s.attemptDirective(); err != nil {
		return line, err
	} else if ok {
		line.Dir = dir
	}

	s.skipWhitespace()

	if comment, ok := s.comment(); ok {
		line.Comment = comment
	}

	n, err := s.statementEnd()
	if err != nil {
		return line, err
	}
	line.Newlines = n
	return line, nil
}

// statementEnd consumes one or more newlines. A line without a
// terminating newline is an error unless the end of input has been
// reached.
func (s *Scanner) statementEnd() (uint32, error) {
	var n uint32
	for s.consumeNewline() {
		n++
	}
	if n == 0 && !s.Done() {
		return 0, s.err(ErrExpectedNewline)
	}
	return n, nil
}

// constant recognizes an "IDENT = number" definition.
func (s *Scanner) constant() (forge.Constant, bool, error) {
	m := s.mark()

	ident, ok := s.identifier()
	if !ok {
		return forge.Constant{}, false, nil
	}

	s.skipWhitespace()
	if !s.consumeByte('=') {
		s.rewind(m)
		return forge.Constant{}, false, nil
	}
	s.skipWhitespace()

	v, ok, err := s.number()
	if err != nil {
		return forge.Constant{}, false, err
	}
	if !ok {
		s.rewind(m)
		return forge.Constant{}, false, nil
	}
	return forge.Constant{Name: ident, Value: v}, true, nil
}

// attemptInstruction tries the instruction parser, converting a
// retryable failure into a clean no-match.
func (s *Scanner) attemptInstruction() (*forge.Instruction, bool, error) {
	m := s.mark()
	in, ok, err := s.instruction()
	if err != nil {
		if retryable(err) {
			s.rewind(m)
			return nil, false, nil
		}
		return nil, false, err
	}
	if !ok {
		s.rewind(m)
	}
	return in, ok, nil
}

// attemptDirective tries the directive parser, converting a retryable
// failure into a clean no-match.
func (s *Scanner) attemptDirective() (*forge.Directive, bool, error) {
	m := s.mark()
	dir, ok, err := s.directive()
	if err != nil {
		if retryable(err) {
			s.rewind(m)
			return nil, false, nil
		}
		return nil, false, err
	}
	if !ok {
		s.rewind(m)
	}
	return dir, ok, nil
}

// Parse scans an entire source buffer into a sequence of lines.
func Parse(src []byte) ([]forge.Line, error) {
	s := NewScanner(src)
	var lines []forge.Line
	for !s.Done() {
		line, err := s.Line()
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}
