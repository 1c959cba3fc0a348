package expr

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrSyntax is wrapped by every *SyntaxError returned from Parse.
var ErrSyntax = errors.New("expr: syntax error")

// SyntaxError reports malformed formula text. Pos is the 1-based column of
// the offending token.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at column %d: %s", e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// ============================================================
// Lexer
// ============================================================

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret // ^ or **
	tokLParen
	tokRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokNumber:
		return "number"
	case tokIdent:
		return "identifier"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	}
	return "operator"
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(input string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(input) {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case isDigit(ch) || (ch == '.' && i+1 < len(input) && isDigit(input[i+1])):
			end := scanNumber(input, i)
			toks = append(toks, token{kind: tokNumber, text: input[i:end], pos: i + 1})
			i = end
		case isLetter(ch):
			end := i + 1
			for end < len(input) && (isLetter(input[end]) || isDigit(input[end])) {
				end++
			}
			toks = append(toks, token{kind: tokIdent, text: input[i:end], pos: i + 1})
			i = end
		case ch == '*' && strings.HasPrefix(input[i:], "**"):
			toks = append(toks, token{kind: tokCaret, text: "**", pos: i + 1})
			i += 2
		default:
			kind, ok := operators[ch]
			if !ok {
				return nil, &SyntaxError{Pos: i + 1, Msg: fmt.Sprintf("unexpected character %q", ch)}
			}
			toks = append(toks, token{kind: kind, text: string(ch), pos: i + 1})
			i++
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(input) + 1}), nil
}

var operators = map[byte]tokenKind{
	'+': tokPlus,
	'-': tokMinus,
	'*': tokStar,
	'/': tokSlash,
	'^': tokCaret,
	'(': tokLParen,
	')': tokRParen,
}

// scanNumber returns the end of the literal starting at i: digits, an
// optional fraction and an optional exponent. A trailing 'e' not followed by
// digits is left for the next token.
func scanNumber(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

func isDigit(ch byte) bool  { return ch >= '0' && ch <= '9' }
func isLetter(ch byte) bool { return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') }

// ============================================================
// Parser
// ============================================================

// builders maps accepted function names to their constructors.
var builders = map[string]func(Expr) Expr{
	"sin":  SinOf,
	"cos":  CosOf,
	"tan":  TanOf,
	"asin": AsinOf,
	"acos": AcosOf,
	"atan": AtanOf,
	"sinh": SinhOf,
	"cosh": CoshOf,
	"tanh": TanhOf,
	"exp":  ExpOf,
	"ln":   LnOf,
	"log":  LnOf,
	"sqrt": SqrtOf,
	"abs":  AbsOf,
}

type parser struct {
	toks []token
	pos  int
}

// Parse reads a formula in one variable. It accepts + - * / ^ (also **),
// parentheses, implicit multiplication (2x, 3(x+1), (x+1)(x-1)), function
// calls with or without parentheses (sin(x), sin x, sin^2(x)) and the
// constants pi and E.
func Parse(input string) (Expr, error) {
	toks, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == tokEOF {
		return nil, &SyntaxError{Pos: 1, Msg: "empty expression"}
	}
	e, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.unexpected(t)
	}
	return e.Simplify(), nil
}

// MustParse is Parse that panics on error. It is meant for literals in
// tests and examples.
func MustParse(input string) Expr {
	e, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return e
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) error {
	if t := p.peek(); t.kind != kind {
		return &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("expected %s, found %s", kind, describe(t))}
	}
	p.next()
	return nil
}

func (p *parser) unexpected(t token) error {
	return &SyntaxError{Pos: t.pos, Msg: "unexpected " + describe(t)}
}

func describe(t token) string {
	if t.kind == tokEOF {
		return t.kind.String()
	}
	return fmt.Sprintf("%q", t.text)
}

// sum := product (("+" | "-") product)*
func (p *parser) parseSum() (Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	terms := []Expr{left}
	for {
		op := p.peek().kind
		if op != tokPlus && op != tokMinus {
			break
		}
		p.next()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		if op == tokMinus {
			right = &Mul{factors: []Expr{N(-1), right}}
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return left, nil
	}
	return &Add{terms: terms}, nil
}

// product := unary (("*" | "/") unary | implicit)*
func (p *parser) parseProduct() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	factors := []Expr{left}
	for {
		switch p.peek().kind {
		case tokStar, tokSlash:
			op := p.next().kind
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			if op == tokSlash {
				right = &Pow{base: right, exp: N(-1)}
			}
			factors = append(factors, right)
		case tokNumber, tokIdent, tokLParen:
			right, err := p.parsePower()
			if err != nil {
				return nil, err
			}
			factors = append(factors, right)
		default:
			if len(factors) == 1 {
				return left, nil
			}
			return &Mul{factors: factors}, nil
		}
	}
}

// unary := ("-" | "+") unary | power
func (p *parser) parseUnary() (Expr, error) {
	switch p.peek().kind {
	case tokMinus:
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Mul{factors: []Expr{N(-1), operand}}, nil
	case tokPlus:
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

// power := primary ("^" unary)?
func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokCaret {
		return base, nil
	}
	p.next()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &Pow{base: base, exp: exp}, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		text := t.text
		if strings.HasPrefix(text, ".") {
			text = "0" + text
		}
		r, ok := new(big.Rat).SetString(text)
		if !ok {
			return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("invalid number %q", t.text)}
		}
		return &Num{val: r}, nil

	case tokIdent:
		if build, ok := builders[t.text]; ok {
			return p.parseCall(t, build)
		}
		if c, ok := constants[t.text]; ok {
			return c, nil
		}
		return S(t.text), nil

	case tokLParen:
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, p.unexpected(t)
}

// parseCall reads the argument of a function: a parenthesized sum or a bare
// power (sin x^2 is sin(x^2)). An exponent written between the name and
// the argument applies to the result.
func (p *parser) parseCall(name token, build func(Expr) Expr) (Expr, error) {
	var power Expr
	if p.peek().kind == tokCaret {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		power = exp
	}
	var arg Expr
	var err error
	switch p.peek().kind {
	case tokLParen:
		p.next()
		if arg, err = p.parseSum(); err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
	case tokNumber, tokIdent:
		if arg, err = p.parsePower(); err != nil {
			return nil, err
		}
	default:
		return nil, &SyntaxError{Pos: p.peek().pos, Msg: fmt.Sprintf("function %s needs an argument", name.text)}
	}
	call := build(arg)
	if power != nil {
		return &Pow{base: call, exp: power}, nil
	}
	return call, nil
}
