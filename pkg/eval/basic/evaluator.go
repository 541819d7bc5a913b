// Package basic is a small, dependency-free evaluator covering the
// expression forms print templates use most: dotted-path lookups, string,
// number, bool and null literals, == and != comparisons, and &&, ||, !
// composition. Richer syntax (filters, arithmetic, block tags) belongs to an
// engine-backed implementation such as eval/pongo.
package basic

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/platen-io/go-platen/internal/convert"
	"github.com/platen-io/go-platen/pkg/eval"
)

// Evaluator is the fallback eval.Evaluator. It is stateless and safe for
// concurrent use.
type Evaluator struct{}

var _ eval.Evaluator = (*Evaluator)(nil)

// New returns the fallback evaluator.
func New() *Evaluator { return &Evaluator{} }

// Interpolate substitutes every {{ }} span in raw. Missing variables and
// empty spans render as the empty string; malformed expressions error.
func (e *Evaluator) Interpolate(ctx context.Context, raw string, vars map[string]any) (string, error) {
	spans := eval.Placeholders(raw)
	if len(spans) == 0 {
		return raw, nil
	}

	var b strings.Builder
	last := 0
	for _, ph := range spans {
		b.WriteString(raw[last:ph.Start])
		last = ph.End
		if ph.Expr == "" {
			continue
		}
		value, err := e.Value(ctx, ph.Expr, vars)
		if err != nil {
			return "", fmt.Errorf("eval/basic: interpolate %q: %w", ph.Raw, err)
		}
		b.WriteString(convert.Stringify(value))
	}
	b.WriteString(raw[last:])
	return b.String(), nil
}

// Value evaluates a single expression. Comparisons and compositions yield
// bools, literals their typed values, and lookups whatever the variable
// holds, so collections survive for iteration. Missing variables yield nil.
func (e *Evaluator) Value(_ context.Context, expr string, vars map[string]any) (any, error) {
	node, err := parse(expr)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, nil
	}
	return node.eval(vars)
}

// Predicate evaluates expr and reduces it to a bool. A blank expression is
// true: an absent condition never hides anything.
func (e *Evaluator) Predicate(ctx context.Context, expr string, vars map[string]any) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return true, nil
	}
	value, err := e.Value(ctx, expr, vars)
	if err != nil {
		return false, err
	}
	return convert.Truthy(value), nil
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) done() bool { return l.pos >= len(l.input) }

func (l *lexer) peek() byte {
	if l.done() {
		return 0
	}
	return l.input[l.pos]
}

func (l *lexer) advance() byte {
	ch := l.input[l.pos]
	l.pos++
	return ch
}

func tokenize(input string) ([]token, error) {
	lx := &lexer{input: input}
	var tokens []token

	for !lx.done() {
		switch ch := lx.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			lx.advance()
		case ch == '(':
			lx.advance()
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
		case ch == ')':
			lx.advance()
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
		case ch == '!':
			lx.advance()
			if lx.peek() == '=' {
				lx.advance()
				tokens = append(tokens, token{kind: tokenNeq, raw: "!="})
				break
			}
			tokens = append(tokens, token{kind: tokenNot, raw: "!"})
		case ch == '=':
			lx.advance()
			if lx.peek() != '=' {
				return nil, errors.New("eval/basic: unexpected '='; use '=='")
			}
			lx.advance()
			tokens = append(tokens, token{kind: tokenEq, raw: "=="})
		case ch == '&':
			lx.advance()
			if lx.peek() != '&' {
				return nil, errors.New("eval/basic: unexpected '&'; use '&&'")
			}
			lx.advance()
			tokens = append(tokens, token{kind: tokenAnd, raw: "&&"})
		case ch == '|':
			lx.advance()
			if lx.peek() != '|' {
				return nil, errors.New("eval/basic: unexpected '|'; use '||'")
			}
			lx.advance()
			tokens = append(tokens, token{kind: tokenOr, raw: "||"})
		case ch == '"' || ch == '\'':
			value, err := lx.scanString()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenString, raw: value})
		default:
			tokens = append(tokens, lx.scanWord())
		}
	}

	return tokens, nil
}

func (l *lexer) scanString() (string, error) {
	quote := l.advance()
	var b strings.Builder
	for !l.done() {
		ch := l.advance()
		if ch == '\\' && !l.done() {
			b.WriteByte(l.advance())
			continue
		}
		if ch == quote {
			return b.String(), nil
		}
		b.WriteByte(ch)
	}
	return "", errors.New("eval/basic: unterminated string literal")
}

func isWordBreak(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '(', ')', '!', '=', '&', '|', '"', '\'':
		return true
	}
	return false
}

func (l *lexer) scanWord() token {
	start := l.pos
	for !l.done() && !isWordBreak(l.peek()) {
		l.advance()
	}
	raw := l.input[start:l.pos]

	switch strings.ToLower(raw) {
	case "true", "false":
		return token{kind: tokenBool, raw: strings.ToLower(raw)}
	case "null", "nil":
		return token{kind: tokenNull, raw: "null"}
	}
	if ch := raw[0]; (ch >= '0' && ch <= '9') || ch == '-' || ch == '+' {
		return token{kind: tokenNumber, raw: raw}
	}
	return token{kind: tokenIdentifier, raw: raw}
}

// valueNode is one parsed expression node evaluated against the variable
// payload.
type valueNode interface {
	eval(vars map[string]any) (any, error)
}

type orNode struct{ left, right valueNode }

func (n orNode) eval(vars map[string]any) (any, error) {
	left, err := n.left.eval(vars)
	if err != nil {
		return nil, err
	}
	if convert.Truthy(left) {
		return true, nil
	}
	right, err := n.right.eval(vars)
	if err != nil {
		return nil, err
	}
	return convert.Truthy(right), nil
}

type andNode struct{ left, right valueNode }

func (n andNode) eval(vars map[string]any) (any, error) {
	left, err := n.left.eval(vars)
	if err != nil {
		return nil, err
	}
	if !convert.Truthy(left) {
		return false, nil
	}
	right, err := n.right.eval(vars)
	if err != nil {
		return nil, err
	}
	return convert.Truthy(right), nil
}

type notNode struct{ inner valueNode }

func (n notNode) eval(vars map[string]any) (any, error) {
	inner, err := n.inner.eval(vars)
	if err != nil {
		return nil, err
	}
	return !convert.Truthy(inner), nil
}

type compareNode struct {
	left   valueNode
	right  valueNode
	negate bool
}

func (n compareNode) eval(vars map[string]any) (any, error) {
	left, err := n.left.eval(vars)
	if err != nil {
		return nil, err
	}
	right, err := n.right.eval(vars)
	if err != nil {
		return nil, err
	}
	eq := looseEqual(left, right)
	if n.negate {
		return !eq, nil
	}
	return eq, nil
}

type identNode struct {
	path string
	// bareLiteral marks identifiers on the literal side of a comparison;
	// when unbound they compare as their own spelling, keeping
	// `status == draft` forgiving.
	bareLiteral bool
}

func (n identNode) eval(vars map[string]any) (any, error) {
	if value, ok := convert.Lookup(vars, n.path); ok {
		return value, nil
	}
	if n.bareLiteral {
		return n.path, nil
	}
	return nil, nil
}

type litNode struct{ value any }

func (n litNode) eval(map[string]any) (any, error) { return n.value, nil }

// looseEqual compares across types the way template data needs: nil only
// equals nil, bools compare against coerced bools, numbers numerically even
// when one side is a numeric string, everything else as strings.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ab, ok := a.(bool); ok {
		return ab == looseBool(b)
	}
	if bb, ok := b.(bool); ok {
		return looseBool(a) == bb
	}
	if fa, aok := convert.Float(a); aok {
		if fb, bok := convert.Float(b); bok {
			return fa == fb
		}
	}
	return convert.Stringify(a) == convert.Stringify(b)
}

func looseBool(value any) bool {
	if b, ok := convert.Bool(value); ok {
		return b
	}
	return convert.Truthy(value)
}

type stream struct {
	tokens []token
	pos    int
}

func (s *stream) match(kind tokenKind) bool {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func parse(input string) (valueNode, error) {
	tokens, err := tokenize(strings.TrimSpace(input))
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	s := &stream{tokens: tokens}
	node, err := parseOr(s)
	if err != nil {
		return nil, err
	}
	if s.pos < len(s.tokens) {
		return nil, fmt.Errorf("eval/basic: unexpected token %q", s.tokens[s.pos].raw)
	}
	return node, nil
}

func parseOr(s *stream) (valueNode, error) {
	left, err := parseAnd(s)
	if err != nil {
		return nil, err
	}
	for s.match(tokenOr) {
		right, err := parseAnd(s)
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func parseAnd(s *stream) (valueNode, error) {
	left, err := parseEquality(s)
	if err != nil {
		return nil, err
	}
	for s.match(tokenAnd) {
		right, err := parseEquality(s)
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func parseEquality(s *stream) (valueNode, error) {
	left, err := parseUnary(s, false)
	if err != nil {
		return nil, err
	}
	for {
		negate := s.match(tokenNeq)
		if !negate && !s.match(tokenEq) {
			return left, nil
		}
		right, err := parseUnary(s, true)
		if err != nil {
			return nil, err
		}
		left = compareNode{left: left, right: right, negate: negate}
	}
}

func parseUnary(s *stream, bare bool) (valueNode, error) {
	if s.match(tokenNot) {
		inner, err := parseUnary(s, false)
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return parsePrimary(s, bare)
}

func parsePrimary(s *stream, bare bool) (valueNode, error) {
	if s.match(tokenLParen) {
		inner, err := parseOr(s)
		if err != nil {
			return nil, err
		}
		if !s.match(tokenRParen) {
			return nil, errors.New("eval/basic: missing closing ')'")
		}
		return inner, nil
	}

	if s.pos >= len(s.tokens) {
		return nil, errors.New("eval/basic: unexpected end of expression")
	}
	tok := s.tokens[s.pos]
	s.pos++

	switch tok.kind {
	case tokenString:
		return litNode{value: tok.raw}, nil
	case tokenNumber:
		f, err := strconv.ParseFloat(tok.raw, 64)
		if err != nil {
			return nil, fmt.Errorf("eval/basic: invalid number literal %q", tok.raw)
		}
		return litNode{value: f}, nil
	case tokenBool:
		return litNode{value: tok.raw == "true"}, nil
	case tokenNull:
		return litNode{value: nil}, nil
	case tokenIdentifier:
		return identNode{path: tok.raw, bareLiteral: bare}, nil
	default:
		return nil, fmt.Errorf("eval/basic: expected value, got %q", tok.raw)
	}
}
