package formula

import (
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/simquery/internal/world"
)

// Parse parses a complete query of the form `Var "." Formula`.
// Returns a *SyntaxError if text does not match the grammar.
//
// The text is NFC-normalized first, so SyntaxError positions refer to the
// normalized form (identical for ASCII input).
func Parse(text string) (*Query, error) {
	p, err := newParser(text)
	if err != nil {
		return nil, err
	}

	v, err := p.variable()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokDot, `"." after primary variable`); err != nil {
		return nil, err
	}
	body, err := p.formula()
	if err != nil {
		return nil, err
	}
	if err := p.end(); err != nil {
		return nil, err
	}
	return &Query{Var: v, Body: body}, nil
}

// ParseFormula parses a bare formula without a primary variable.
func ParseFormula(text string) (Formula, error) {
	p, err := newParser(text)
	if err != nil {
		return nil, err
	}
	f, err := p.formula()
	if err != nil {
		return nil, err
	}
	if err := p.end(); err != nil {
		return nil, err
	}
	return f, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// fixed queries.
func MustParse(text string) *Query {
	q, err := Parse(text)
	if err != nil {
		panic(fmt.Sprintf("formula.MustParse(%q): %v", text, err))
	}
	return q
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func newParser(text string) (*parser, error) {
	src := norm.NFC.String(text)
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	return &parser{src: src, toks: toks}, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorAt(t token, format string, args ...any) *SyntaxError {
	return newSyntaxError(p.src, t.pos, t.text, fmt.Sprintf(format, args...))
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.peek()
	if t.kind != kind {
		return t, p.errorAt(t, "expected %s", what)
	}
	return p.next(), nil
}

func (p *parser) isKeyword(text string) bool {
	t := p.peek()
	return t.kind == tokIdent && t.text == text
}

func (p *parser) end() error {
	t := p.peek()
	if t.kind == tokRParen {
		return p.errorAt(t, "unbalanced parenthesis")
	}
	if t.kind != tokEOF {
		return p.errorAt(t, "unexpected trailing input")
	}
	return nil
}

// formula parses the loosest-binding level.
func (p *parser) formula() (Formula, error) {
	return p.iff()
}

func (p *parser) iff() (Formula, error) {
	return p.chain(tokIff, "", p.implies, func(ops []Formula) Formula { return &Iff{Operands: ops} })
}

func (p *parser) implies() (Formula, error) {
	return p.chain(tokArrow, "", p.or, func(ops []Formula) Formula { return &Implies{Operands: ops} })
}

func (p *parser) or() (Formula, error) {
	return p.chain(tokIdent, "or", p.and, func(ops []Formula) Formula { return &Or{Operands: ops} })
}

func (p *parser) and() (Formula, error) {
	return p.chain(tokIdent, "and", p.unary, func(ops []Formula) Formula { return &And{Operands: ops} })
}

// chain parses operand (sep operand)* and flattens two or more operands
// into one n-ary node. For keyword separators kind is tokIdent and word is
// the keyword.
func (p *parser) chain(kind tokenKind, word string, operand func() (Formula, error), build func([]Formula) Formula) (Formula, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	ops := []Formula{first}
	for {
		t := p.peek()
		if t.kind != kind || (word != "" && t.text != word) {
			break
		}
		p.next()
		next, err := operand()
		if err != nil {
			return nil, err
		}
		ops = append(ops, next)
	}
	if len(ops) == 1 {
		return first, nil
	}
	return build(ops), nil
}

func (p *parser) unary() (Formula, error) {
	t := p.peek()
	switch {
	case t.kind == tokLParen:
		p.next()
		inner, err := p.formula()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return inner, nil
	case p.isKeyword("not"):
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Not{Operand: operand}, nil
	case p.isKeyword("exists"), p.isKeyword("forall"):
		p.next()
		v, err := p.variable()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokDot, `"." after quantified variable`); err != nil {
			return nil, err
		}
		body, err := p.formula()
		if err != nil {
			return nil, err
		}
		if t.text == "exists" {
			return &Exists{Var: v, Body: body}, nil
		}
		return &Forall{Var: v, Body: body}, nil
	case p.isKeyword("connects"):
		p.next()
		from, err := p.variable()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokArrow, `"->"`); err != nil {
			return nil, err
		}
		to, err := p.variable()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokDot, `"." after connects target`); err != nil {
			return nil, err
		}
		body, err := p.formula()
		if err != nil {
			return nil, err
		}
		return &ConnectsTo{From: from, To: to, Body: body}, nil
	}
	return p.predicate()
}

func (p *parser) predicate() (Formula, error) {
	t := p.peek()
	if t.kind != tokIdent {
		if t.kind == tokEOF {
			return nil, p.errorAt(t, "expected formula")
		}
		return nil, p.errorAt(t, "expected formula, got %s", t.kind)
	}

	if class, ok := classKeywords[t.text]; ok {
		p.next()
		args, err := p.arguments(1)
		if err != nil {
			return nil, err
		}
		return &IsClass{Var: args[0], Class: class}, nil
	}

	switch t.text {
	case "type":
		p.next()
		if _, err := p.expect(tokLParen, `"(" after type`); err != nil {
			return nil, err
		}
		v, err := p.variable()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokComma, `","`); err != nil {
			return nil, err
		}
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return &IsType{Var: v, Value: lit}, nil
	case "connecting":
		p.next()
		args, err := p.arguments(2)
		if err != nil {
			return nil, err
		}
		return &Connecting{Left: args[0], Right: args[1]}, nil
	}

	if keywords[t.text] {
		return nil, p.errorAt(t, "unexpected keyword %q", t.text)
	}

	v := p.next().text
	switch p.peek().kind {
	case tokEq:
		p.next()
		right, err := p.variable()
		if err != nil {
			return nil, err
		}
		return &Equals{Left: v, Right: right}, nil
	case tokDot:
		p.next()
		return p.paramCompare(v)
	default:
		return nil, p.errorAt(p.peek(), `expected "=" or "." after variable %q`, v)
	}
}

// arguments parses "(" Var ("," Var)* ")" with exactly n variables.
func (p *parser) arguments(n int) ([]string, error) {
	if _, err := p.expect(tokLParen, `"("`); err != nil {
		return nil, err
	}
	args := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			if _, err := p.expect(tokComma, fmt.Sprintf(`"," (predicate takes %d arguments)`, n)); err != nil {
				return nil, err
			}
		}
		v, err := p.variable()
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	if _, err := p.expect(tokRParen, fmt.Sprintf(`")" (predicate takes %d argument(s))`, n)); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) paramCompare(v string) (Formula, error) {
	t := p.peek()
	if t.kind != tokNumber {
		return nil, p.errorAt(t, "expected parameter index")
	}
	idx, err := strconv.Atoi(t.text)
	if err != nil || idx < 0 {
		return nil, p.errorAt(t, "parameter index must be a non-negative integer")
	}
	p.next()

	var op CompareOp
	switch p.peek().kind {
	case tokEq:
		op = OpEq
	case tokLt:
		op = OpLt
	case tokGt:
		op = OpGt
	default:
		return nil, p.errorAt(p.peek(), `expected "=", "<" or ">"`)
	}
	p.next()

	lit, err := p.literal()
	if err != nil {
		return nil, err
	}
	return &ParamCompare{Var: v, Index: idx, Op: op, Value: lit}, nil
}

func (p *parser) variable() (string, error) {
	t := p.peek()
	if t.kind != tokIdent {
		return "", p.errorAt(t, "expected variable")
	}
	if keywords[t.text] {
		return "", p.errorAt(t, "%q is a reserved word and cannot be a variable", t.text)
	}
	p.next()
	return t.text, nil
}

func (p *parser) literal() (Literal, error) {
	t := p.peek()
	switch t.kind {
	case tokString:
		s, err := strconv.Unquote(t.text)
		if err != nil {
			return nil, p.errorAt(t, "invalid string literal")
		}
		p.next()
		return StringLit(s), nil
	case tokNumber:
		n, err := world.ParseNumber(t.text)
		if err != nil {
			return nil, p.errorAt(t, "invalid number")
		}
		p.next()
		switch v := n.(type) {
		case world.IntParam:
			return IntLit(v), nil
		case world.FloatParam:
			return FloatLit(v), nil
		}
	}
	return nil, p.errorAt(t, "expected string or number literal")
}
