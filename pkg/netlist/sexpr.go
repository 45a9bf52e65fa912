package netlist

import (
	"errors"
	"fmt"
	"strings"
)

var errUnbalanced = errors.New("unbalanced parentheses")

// expr is either an atom or a list.
type expr struct {
	atom   string
	list   []expr
	isList bool
}

// head is the leading atom of a list, "" otherwise.
func (e expr) head() string {
	if !e.isList || len(e.list) == 0 || e.list[0].isList {
		return ""
	}
	return e.list[0].atom
}

// all returns the child lists whose head is name.
func (e expr) all(name string) []expr {
	var out []expr
	for _, c := range e.list {
		if c.isList && c.head() == name {
			out = append(out, c)
		}
	}
	return out
}

// value returns the atom of the first (name value) child.
func (e expr) value(name string) string {
	for _, c := range e.all(name) {
		if len(c.list) > 1 && !c.list[1].isList {
			return c.list[1].atom
		}
	}
	return ""
}

func readExpr(data []byte) (expr, error) {
	p := &sexprReader{data: data}
	p.skipSpace()
	e, err := p.read()
	if err != nil {
		return expr{}, err
	}
	p.skipSpace()
	if p.pos != len(p.data) {
		return expr{}, fmt.Errorf("trailing data at offset %d", p.pos)
	}
	return e, nil
}

type sexprReader struct {
	data []byte
	pos  int
}

func (p *sexprReader) skipSpace() {
	for p.pos < len(p.data) && strings.IndexByte(" \t\r\n", p.data[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *sexprReader) read() (expr, error) {
	if p.pos >= len(p.data) {
		return expr{}, errUnbalanced
	}

	switch c := p.data[p.pos]; c {
	case '(':
		p.pos++
		e := expr{isList: true}
		for {
			p.skipSpace()
			if p.pos >= len(p.data) {
				return expr{}, errUnbalanced
			}
			if p.data[p.pos] == ')' {
				p.pos++
				return e, nil
			}
			child, err := p.read()
			if err != nil {
				return expr{}, err
			}
			e.list = append(e.list, child)
		}
	case ')':
		return expr{}, errUnbalanced
	case '"':
		return p.readString()
	default:
		start := p.pos
		for p.pos < len(p.data) && strings.IndexByte(" \t\r\n()\"", p.data[p.pos]) < 0 {
			p.pos++
		}
		return expr{atom: string(p.data[start:p.pos])}, nil
	}
}

func (p *sexprReader) readString() (expr, error) {
	start := p.pos
	p.pos++
	var b strings.Builder
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.data):
			b.WriteByte(p.data[p.pos+1])
			p.pos += 2
		case c == '"':
			p.pos++
			return expr{atom: b.String()}, nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return expr{}, fmt.Errorf("unterminated string at offset %d", start)
}
