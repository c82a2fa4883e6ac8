// Package parser implements the ThreadScript canonical-syntax
// recursive-descent parser (§4.7): a byte scanner producing
// line/column positions, consumed by hand-written grammar rules that
// never throw for ordinary backtracking and raise parse_error only at
// a committed failure point.
package parser

import (
	"github.com/threadscript/ts/internal/texc"
)

type scanner struct {
	file string
	src  []byte
	pos  int
	line uint
	col  uint
}

func newScanner(file string, src []byte) *scanner {
	return &scanner{file: file, src: src, line: 1, col: 1}
}

type mark struct {
	pos  int
	line uint
	col  uint
}

func (s *scanner) save() mark { return mark{s.pos, s.line, s.col} }

func (s *scanner) restore(m mark) {
	s.pos, s.line, s.col = m.pos, m.line, m.col
}

func (m mark) loc(file string) texc.SrcLocation {
	return texc.SrcLocation{File: file, Line: m.line, Column: m.col}
}

func (s *scanner) loc() texc.SrcLocation {
	return texc.SrcLocation{File: s.file, Line: s.line, Column: s.col}
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() (byte, bool) {
	if s.eof() {
		return 0, false
	}
	return s.src[s.pos], true
}

func (s *scanner) advance() byte {
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

// skipSpace consumes whitespace and '#'-to-end-of-line comments.
func (s *scanner) skipSpace() {
	for {
		c, ok := s.peek()
		if !ok {
			return
		}
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			s.advance()
		case c == '#':
			for {
				c2, ok2 := s.peek()
				if !ok2 || c2 == '\n' {
					break
				}
				s.advance()
			}
		default:
			return
		}
	}
}

func (s *scanner) errf(format string, args ...interface{}) error {
	return texc.Newf(texc.KindParseError, "%s: "+format, append([]interface{}{s.loc().String()}, args...)...)
}

func isIDStart(c byte) bool {
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isIDCont(c byte) bool {
	return isIDStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
