package parser

import (
	"strconv"

	"github.com/threadscript/ts/internal/code"
)

// Parser holds the scanner and code-tree builder state for one parse.
type Parser struct {
	s *scanner
	b *code.Builder
}

// Parse parses src (named file, for diagnostics and stack traces) as
// the canonical grammar's single top-level node and returns the
// resulting script.
func Parse(file string, src []byte) (*code.Script, error) {
	p := &Parser{s: newScanner(file, src), b: code.NewBuilder(file)}
	p.s.skipSpace()
	if _, err := p.parseNode(nil); err != nil {
		return nil, err
	}
	p.s.skipSpace()
	if !p.s.eof() {
		return nil, p.s.errf("unexpected trailing input")
	}
	return p.b.S, nil
}

// parseNode implements `node := node_val | node_fun`.
func (p *Parser) parseNode(parent *code.Node) (*code.Node, error) {
	if n, ok, err := p.tryNodeVal(parent); err != nil {
		return nil, err
	} else if ok {
		return n, nil
	}
	if n, ok, err := p.tryNodeFun(parent); err != nil {
		return nil, err
	} else if ok {
		return n, nil
	}
	return nil, p.s.errf("expected a value or function call")
}

func (p *Parser) matchKeyword(word string) bool {
	n := len(word)
	if p.s.pos+n > len(p.s.src) {
		return false
	}
	if string(p.s.src[p.s.pos:p.s.pos+n]) != word {
		return false
	}
	if p.s.pos+n < len(p.s.src) && isIDCont(p.s.src[p.s.pos+n]) {
		return false
	}
	for i := 0; i < n; i++ {
		p.s.advance()
	}
	return true
}

func (p *Parser) scanUint() (string, bool) {
	start := p.s.pos
	for {
		c, ok := p.s.peek()
		if ok && isDigit(c) {
			p.s.advance()
		} else {
			break
		}
	}
	if p.s.pos == start {
		return "", false
	}
	return string(p.s.src[start:p.s.pos]), true
}

func (p *Parser) scanID() (string, bool) {
	c, ok := p.s.peek()
	if !ok || !isIDStart(c) {
		return "", false
	}
	start := p.s.pos
	p.s.advance()
	for {
		c2, ok2 := p.s.peek()
		if ok2 && isIDCont(c2) {
			p.s.advance()
		} else {
			break
		}
	}
	return string(p.s.src[start:p.s.pos]), true
}

// scanString recognizes `string := '"' (lit_char | esc)* '"'`. A false
// second return means no opening quote was found (ordinary
// backtracking); once the opening quote is consumed, any subsequent
// malformed content is a committed parse_error.
func (p *Parser) scanString() (string, bool, error) {
	c, ok := p.s.peek()
	if !ok || c != '"' {
		return "", false, nil
	}
	p.s.advance()
	var buf []byte
	for {
		c, ok := p.s.peek()
		if !ok {
			return "", false, p.s.errf("unterminated string literal")
		}
		if c == '"' {
			p.s.advance()
			return string(buf), true, nil
		}
		if c == '\\' {
			p.s.advance()
			ec, ok2 := p.s.peek()
			if !ok2 {
				return "", false, p.s.errf("unterminated escape sequence")
			}
			switch ec {
			case '0':
				buf = append(buf, 0)
				p.s.advance()
			case 't':
				buf = append(buf, '\t')
				p.s.advance()
			case 'n':
				buf = append(buf, '\n')
				p.s.advance()
			case 'r':
				buf = append(buf, '\r')
				p.s.advance()
			case '"':
				buf = append(buf, '"')
				p.s.advance()
			case '\\':
				buf = append(buf, '\\')
				p.s.advance()
			case 'x', 'X':
				p.s.advance()
				h1, ok3 := p.hexDigit()
				if !ok3 {
					return "", false, p.s.errf("expected hex digit")
				}
				h2, ok4 := p.hexDigit()
				if !ok4 {
					return "", false, p.s.errf("expected hex digit")
				}
				buf = append(buf, h1<<4|h2)
			default:
				return "", false, p.s.errf("invalid escape sequence '\\%c'", ec)
			}
			continue
		}
		if c < 0x20 || c > 0x7e {
			return "", false, p.s.errf("invalid character in string literal")
		}
		buf = append(buf, c)
		p.s.advance()
	}
}

func (p *Parser) hexDigit() (byte, bool) {
	c, ok := p.s.peek()
	if !ok {
		return 0, false
	}
	v, ok := hexVal(c)
	if !ok {
		return 0, false
	}
	p.s.advance()
	return v, true
}

// tryNodeVal implements `node_val`.
func (p *Parser) tryNodeVal(parent *code.Node) (*code.Node, bool, error) {
	m := p.s.save()

	if p.matchKeyword("null") {
		n, err := p.b.AddNode(parent, m.loc(p.s.file), "", p.b.CreateNull(), true)
		return n, true, err
	}
	if p.matchKeyword("false") {
		n, err := p.b.AddNode(parent, m.loc(p.s.file), "", p.b.CreateBool(false), true)
		return n, true, err
	}
	if p.matchKeyword("true") {
		n, err := p.b.AddNode(parent, m.loc(p.s.file), "", p.b.CreateBool(true), true)
		return n, true, err
	}

	if c, ok := p.s.peek(); ok && (c == '+' || c == '-') {
		signMark := p.s.save()
		p.s.advance()
		if digits, ok2 := p.scanUint(); ok2 {
			i, err := strconv.ParseInt(string(c)+digits, 10, 64)
			if err != nil {
				return nil, false, p.s.errf("integer literal out of range")
			}
			n, aerr := p.b.AddNode(parent, m.loc(p.s.file), "", p.b.CreateInt(i), true)
			return n, true, aerr
		}
		p.s.restore(signMark)
	}

	if digits, ok := p.scanUint(); ok {
		u, err := strconv.ParseUint(digits, 10, 64)
		if err != nil {
			return nil, false, p.s.errf("integer literal out of range")
		}
		n, aerr := p.b.AddNode(parent, m.loc(p.s.file), "", p.b.CreateUnsigned(u), true)
		return n, true, aerr
	}

	if str, ok, err := p.scanString(); err != nil {
		return nil, false, err
	} else if ok {
		n, aerr := p.b.AddNode(parent, m.loc(p.s.file), "", p.b.CreateString(str), true)
		return n, true, aerr
	}

	p.s.restore(m)
	return nil, false, nil
}

// tryNodeFun implements `node_fun := id space* '(' space* (')' | params)`.
func (p *Parser) tryNodeFun(parent *code.Node) (*code.Node, bool, error) {
	m := p.s.save()
	id, ok := p.scanID()
	if !ok {
		p.s.restore(m)
		return nil, false, nil
	}
	p.s.skipSpace()
	if c, ok := p.s.peek(); !ok || c != '(' {
		p.s.restore(m)
		return nil, false, nil
	}
	p.s.advance() // committed: consumed '(' after an identifier

	n, err := p.b.AddNode(parent, m.loc(p.s.file), id, nil, false)
	if err != nil {
		return nil, false, err
	}

	p.s.skipSpace()
	if c, ok := p.s.peek(); ok && c == ')' {
		p.s.advance()
		return n, true, nil
	}

	for {
		p.s.skipSpace()
		if _, err := p.parseNode(n); err != nil {
			return nil, false, err
		}
		p.s.skipSpace()
		c, ok := p.s.peek()
		if !ok {
			return nil, false, p.s.errf("expected ')'")
		}
		if c == ')' {
			p.s.advance()
			return n, true, nil
		}
		if c == ',' {
			p.s.advance()
			continue
		}
		return nil, false, p.s.errf("expected ',' or ')'")
	}
}
