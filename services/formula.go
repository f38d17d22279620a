// Package services provides the quantity calculation core: formula
// evaluation, input normalization, quantity resolution, BOQ binding and
// progress aggregation.
package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormulaErrorKind classifies why a formula evaluation failed.
type FormulaErrorKind string

const (
	FormulaSyntaxError     FormulaErrorKind = "SYNTAX_ERROR"
	FormulaMissingVariable FormulaErrorKind = "MISSING_VARIABLE"
	FormulaDivisionByZero  FormulaErrorKind = "DIVISION_BY_ZERO"
	FormulaNonFiniteResult FormulaErrorKind = "NON_FINITE_RESULT"
)

// FormulaError is a typed evaluation failure. It is recorded against the
// measurement row rather than aborting the surrounding save.
type FormulaError struct {
	Kind     FormulaErrorKind
	Variable string // set for MISSING_VARIABLE
	Pos      int    // byte offset in the expression, set for SYNTAX_ERROR
	Detail   string
}

func (e *FormulaError) Error() string {
	switch e.Kind {
	case FormulaMissingVariable:
		return fmt.Sprintf("missing variable %q", e.Variable)
	case FormulaDivisionByZero:
		return "division by zero"
	case FormulaNonFiniteResult:
		return "result is not a finite number"
	default:
		return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Detail)
	}
}

// Evaluate parses and evaluates a restricted arithmetic expression against
// the given variable values. The grammar supports + - * /, unary minus,
// parentheses, numeric literals and bare identifiers. It returns a finite
// result or a *FormulaError; it never touches state outside its arguments,
// so identical inputs always produce identical outputs.
func Evaluate(expression string, vars map[string]float64) (float64, error) {
	root, err := parseFormula(expression)
	if err != nil {
		return 0, err
	}
	result, err := root.eval(vars)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, &FormulaError{Kind: FormulaNonFiniteResult}
	}
	return result, nil
}

// CheckSyntax parses the expression without evaluating it, so a formula can
// be validated at save time even though its inputs are not measured yet.
// It returns the identifiers the expression references, in first-use order.
func CheckSyntax(expression string) ([]string, error) {
	root, err := parseFormula(expression)
	if err != nil {
		return nil, err
	}
	var names []string
	seen := make(map[string]bool)
	collectVars(root, seen, &names)
	return names, nil
}

func collectVars(n exprNode, seen map[string]bool, names *[]string) {
	switch v := n.(type) {
	case *varNode:
		if !seen[v.name] {
			seen[v.name] = true
			*names = append(*names, v.name)
		}
	case *unaryNode:
		collectVars(v.operand, seen, names)
	case *binaryNode:
		collectVars(v.left, seen, names)
		collectVars(v.right, seen, names)
	}
}

// ── AST ──────────────────────────────────────────────────────────────────

type exprNode interface {
	eval(vars map[string]float64) (float64, error)
}

type numberNode struct {
	value float64
}

func (n *numberNode) eval(map[string]float64) (float64, error) {
	return n.value, nil
}

type varNode struct {
	name string
}

func (n *varNode) eval(vars map[string]float64) (float64, error) {
	v, ok := vars[n.name]
	if !ok {
		return 0, &FormulaError{Kind: FormulaMissingVariable, Variable: n.name}
	}
	return v, nil
}

type unaryNode struct {
	operand exprNode
}

func (n *unaryNode) eval(vars map[string]float64) (float64, error) {
	v, err := n.operand.eval(vars)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

type binaryNode struct {
	op          byte
	left, right exprNode
}

func (n *binaryNode) eval(vars map[string]float64) (float64, error) {
	l, err := n.left.eval(vars)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(vars)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	default:
		if r == 0 {
			return 0, &FormulaError{Kind: FormulaDivisionByZero}
		}
		return l / r, nil
	}
}

// ── Tokenizer ────────────────────────────────────────────────────────────

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp    // + - * /
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind  tokenKind
	text  string
	value float64
	pos   int
}

func tokenize(expression string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(expression) {
		c := expression[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case c == '+' || c == '-' || c == '*' || c == '/':
			tokens = append(tokens, token{kind: tokOp, text: string(c), pos: i})
			i++
		case c >= '0' && c <= '9' || c == '.':
			start := i
			for i < len(expression) && (expression[i] >= '0' && expression[i] <= '9' || expression[i] == '.') {
				i++
			}
			text := expression[start:i]
			value, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &FormulaError{
					Kind:   FormulaSyntaxError,
					Pos:    start,
					Detail: fmt.Sprintf("invalid number %q", text),
				}
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, value: value, pos: start})
		case isIdentStart(c):
			start := i
			for i < len(expression) && isIdentPart(expression[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: expression[start:i], pos: start})
		default:
			return nil, &FormulaError{
				Kind:   FormulaSyntaxError,
				Pos:    i,
				Detail: fmt.Sprintf("unexpected character %q", string(c)),
			}
		}
	}
	tokens = append(tokens, token{kind: tokEOF, pos: len(expression)})
	return tokens, nil
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

// ── Parser ───────────────────────────────────────────────────────────────
//
// Recursive descent with the usual precedence:
//
//	expr    := term (('+' | '-') term)*
//	term    := unary (('*' | '/') unary)*
//	unary   := '-' unary | primary
//	primary := number | identifier | '(' expr ')'
//
// Binary operators of the same precedence associate left.

type formulaParser struct {
	tokens []token
	pos    int
}

func parseFormula(expression string) (exprNode, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, &FormulaError{Kind: FormulaSyntaxError, Detail: "empty expression"}
	}
	tokens, err := tokenize(expression)
	if err != nil {
		return nil, err
	}
	p := &formulaParser{tokens: tokens}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, &FormulaError{
			Kind:   FormulaSyntaxError,
			Pos:    tok.pos,
			Detail: fmt.Sprintf("unexpected token %q", tok.text),
		}
	}
	return root, nil
}

func (p *formulaParser) peek() token {
	return p.tokens[p.pos]
}

func (p *formulaParser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *formulaParser) parseExpr() (exprNode, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokOp || (tok.text != "+" && tok.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: tok.text[0], left: left, right: right}
	}
}

func (p *formulaParser) parseTerm() (exprNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokOp || (tok.text != "*" && tok.text != "/") {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: tok.text[0], left: left, right: right}
	}
}

func (p *formulaParser) parseUnary() (exprNode, error) {
	if tok := p.peek(); tok.kind == tokOp && tok.text == "-" {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *formulaParser) parsePrimary() (exprNode, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return &numberNode{value: tok.value}, nil
	case tokIdent:
		return &varNode{name: tok.text}, nil
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		closing := p.next()
		if closing.kind != tokRParen {
			return nil, &FormulaError{
				Kind:   FormulaSyntaxError,
				Pos:    closing.pos,
				Detail: "missing closing parenthesis",
			}
		}
		return inner, nil
	case tokEOF:
		return nil, &FormulaError{
			Kind:   FormulaSyntaxError,
			Pos:    tok.pos,
			Detail: "unexpected end of expression",
		}
	default:
		return nil, &FormulaError{
			Kind:   FormulaSyntaxError,
			Pos:    tok.pos,
			Detail: fmt.Sprintf("unexpected token %q", tok.text),
		}
	}
}
