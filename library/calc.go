package library

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/feather-lang/gmk"
)

// The calc pack does integer arithmetic, which make itself has no
// operator for:
//
//	$(calc 2*(3+4))        -> 14
//	$(calc $(N) % 8)       -> remainder
//
// Operators are + - * / % with the usual precedence, parentheses and
// unary minus. Everything is 64-bit integer math; division truncates
// toward zero and dividing by zero is a reported error.
func init() {
	gmk.RegisterLibrary(gmk.Library{
		Name: "calc",
		Install: func(m *gmk.Make) error {
			return m.Export("calc", calc)
		},
	})
}

func calc(expr string) (int64, error) {
	p := &calcParser{input: expr}
	v, err := p.sum()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("calc: unexpected %q", p.input[p.pos:])
	}
	return v, nil
}

// calcParser is a recursive-descent parser over one expression. Grammar:
// sum = term (('+'|'-') term)*, term = unary (('*'|'/'|'%') unary)*,
// unary = '-' unary | '(' sum ')' | number.
type calcParser struct {
	input string
	pos   int
}

func (p *calcParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *calcParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *calcParser) sum() (int64, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			r, err := p.term()
			if err != nil {
				return 0, err
			}
			v += r
		case '-':
			p.pos++
			r, err := p.term()
			if err != nil {
				return 0, err
			}
			v -= r
		default:
			return v, nil
		}
	}
}

func (p *calcParser) term() (int64, error) {
	v, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			r, err := p.unary()
			if err != nil {
				return 0, err
			}
			v *= r
		case '/', '%':
			op := p.input[p.pos]
			p.pos++
			r, err := p.unary()
			if err != nil {
				return 0, err
			}
			if r == 0 {
				return 0, fmt.Errorf("calc: division by zero")
			}
			if op == '/' {
				v /= r
			} else {
				v %= r
			}
		default:
			return v, nil
		}
	}
}

func (p *calcParser) unary() (int64, error) {
	switch c := p.peek(); {
	case c == '-':
		p.pos++
		v, err := p.unary()
		return -v, err
	case c == '(':
		p.pos++
		v, err := p.sum()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("calc: missing closing parenthesis")
		}
		p.pos++
		return v, nil
	case c >= '0' && c <= '9':
		start := p.pos
		for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
			p.pos++
		}
		return strconv.ParseInt(p.input[start:p.pos], 10, 64)
	case c == 0:
		return 0, fmt.Errorf("calc: unexpected end of expression")
	default:
		return 0, fmt.Errorf("calc: unexpected %q", rest(p.input[p.pos:]))
	}
}

func rest(s string) string {
	if i := strings.IndexAny(s, " \t"); i > 0 {
		return s[:i]
	}
	return s
}
