package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Symbols resolves identifiers while parsing. Identifiers listed in Params
// become holes, identifiers found in Consts become constants, everything
// else becomes a free variable.
type Symbols struct {
	Consts map[string]Const
	Params map[string]bool
}

// NewSymbols creates an empty symbol table.
func NewSymbols() Symbols {
	return Symbols{
		Consts: make(map[string]Const),
		Params: make(map[string]bool),
	}
}

// WithParams returns a copy of s whose Params set is exactly names.
func (s Symbols) WithParams(names []string) Symbols {
	out := Symbols{Consts: s.Consts, Params: make(map[string]bool, len(names))}
	for _, n := range names {
		out.Params[n] = true
	}
	return out
}

// Declare adds a constant to the symbol table.
func (s Symbols) Declare(c Const) {
	s.Consts[c.Name] = c
}

type tokenKind int

const (
	tokLParen tokenKind = iota
	tokRParen
	tokIdent
	tokNumber
	tokHole
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	src    string
	pos    int
	tokens []token
}

func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	for l.pos < len(l.src) {
		ch := rune(l.src[l.pos])
		switch {
		case unicode.IsSpace(ch):
			l.pos++
		case ch == '(':
			l.emit(tokLParen, "(")
		case ch == ')':
			l.emit(tokRParen, ")")
		case ch == '?':
			start := l.pos + 1
			end := l.scanIdent(start)
			if end == start {
				return nil, fmt.Errorf("position %d: '?' must be followed by a name", l.pos)
			}
			l.tokens = append(l.tokens, token{kind: tokHole, text: l.src[start:end], pos: l.pos})
			l.pos = end
		case unicode.IsDigit(ch) || ch == '-':
			start := l.pos
			end := l.pos + 1
			for end < len(l.src) && unicode.IsDigit(rune(l.src[end])) {
				end++
			}
			// literals carry their carrier type: 10:rat
			if end >= len(l.src) || l.src[end] != ':' {
				return nil, fmt.Errorf("position %d: numeral must be annotated as value:type", start)
			}
			typeEnd := l.scanIdent(end + 1)
			if typeEnd == end+1 {
				return nil, fmt.Errorf("position %d: missing type after ':'", end)
			}
			l.tokens = append(l.tokens, token{kind: tokNumber, text: l.src[start:typeEnd], pos: start})
			l.pos = typeEnd
		case isIdentRune(ch):
			start := l.pos
			end := l.scanIdent(start)
			l.tokens = append(l.tokens, token{kind: tokIdent, text: l.src[start:end], pos: start})
			l.pos = end
		default:
			return nil, fmt.Errorf("position %d: unexpected character %q", l.pos, ch)
		}
	}
	l.tokens = append(l.tokens, token{kind: tokEOF, pos: l.pos})
	return l.tokens, nil
}

func (l *lexer) emit(kind tokenKind, text string) {
	l.tokens = append(l.tokens, token{kind: kind, text: text, pos: l.pos})
	l.pos += len(text)
}

func (l *lexer) scanIdent(start int) int {
	end := start
	for end < len(l.src) && isIdentRune(rune(l.src[end])) {
		end++
	}
	return end
}

func isIdentRune(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

type parser struct {
	tokens []token
	pos    int
	syms   Symbols
}

// Parse parses the compact prefix syntax, e.g.
//
//	(lt 10:rat (intToRat (add a b)))
//
// Applications are written as parenthesized lists; numerals are annotated
// with their carrier type.
func Parse(src string, syms Symbols) (Expr, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, syms: syms}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("position %d: trailing input", p.peek().pos)
	}
	return e, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) parseExpr() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		var elems []Expr
		for p.peek().kind != tokRParen {
			if p.peek().kind == tokEOF {
				return nil, fmt.Errorf("position %d: unclosed '('", t.pos)
			}
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		p.next() // ')'
		if len(elems) == 0 {
			return nil, fmt.Errorf("position %d: empty application", t.pos)
		}
		return Ap(elems[0], elems[1:]...), nil
	case tokIdent:
		return p.resolve(t.text), nil
	case tokHole:
		return Hole{Name: t.text}, nil
	case tokNumber:
		idx := strings.IndexByte(t.text, ':')
		v, err := strconv.ParseInt(t.text[:idx], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("position %d: bad numeral %q", t.pos, t.text)
		}
		return Lit{Value: v, Type: TypeTag(t.text[idx+1:])}, nil
	case tokRParen:
		return nil, fmt.Errorf("position %d: unexpected ')'", t.pos)
	default:
		return nil, fmt.Errorf("position %d: unexpected end of input", t.pos)
	}
}

func (p *parser) resolve(name string) Expr {
	if p.syms.Params != nil && p.syms.Params[name] {
		return Hole{Name: name}
	}
	if p.syms.Consts != nil {
		if c, ok := p.syms.Consts[name]; ok {
			return c
		}
	}
	return Var{Name: name}
}
