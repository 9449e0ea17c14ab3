package formula

import (
	"strconv"
	"unicode"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp    // + - * /
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

func tokenize(expr string) ([]token, error) {
	var toks []token
	runes := []rune(expr)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "("})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")"})
			i++
		case r == '+' || r == '-' || r == '*' || r == '/':
			toks = append(toks, token{kind: tokOp, text: string(r)})
			i++
		case unicode.IsDigit(r) || r == '.':
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
				j++
			}
			text := string(runes[i:j])
			n, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, evalErrf("bad number %q", text)
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: n})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_') {
				j++
			}
			text := string(runes[i:j])
			switch text {
			case VarTotalLiters, VarExtraLiters, VarBalance:
				toks = append(toks, token{kind: tokIdent, text: text})
			default:
				return nil, evalErrf("unknown variable %q", text)
			}
			i = j
		default:
			return nil, evalErrf("unexpected character %q", string(r))
		}
	}
	return toks, nil
}

// ── AST ───────────────────────────────────────────────────────────────────────

type node interface {
	eval(ctx Context) (float64, error)
}

type numberNode float64

func (n numberNode) eval(Context) (float64, error) { return float64(n), nil }

type varNode string

func (n varNode) eval(ctx Context) (float64, error) {
	// Missing variables evaluate as zero here; the all-missing case was
	// already rejected before parsing.
	v, _ := ctx.value(string(n))
	return v, nil
}

type unaryNode struct {
	op    string
	child node
}

func (n unaryNode) eval(ctx Context) (float64, error) {
	v, err := n.child.eval(ctx)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

type binaryNode struct {
	op          string
	left, right node
}

func (n binaryNode) eval(ctx Context) (float64, error) {
	l, err := n.left.eval(ctx)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(ctx)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return 0, evalErrf("division by zero")
		}
		return l / r, nil
	}
	return 0, evalErrf("unknown operator %q", n.op)
}

// ── Recursive descent ─────────────────────────────────────────────────────────
//
//	expr   := term (("+" | "-") term)*
//	term   := factor (("*" | "/") factor)*
//	factor := number | ident | "-" factor | "(" expr ")"

type parser struct {
	toks []token
	pos  int
}

func (p *parser) done() bool  { return p.pos >= len(p.toks) }
func (p *parser) peek() token { return p.toks[p.pos] }
func (p *parser) next() token { t := p.toks[p.pos]; p.pos++; return t }

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for !p.done() && p.peek().kind == tokOp && (p.peek().text == "+" || p.peek().text == "-") {
		op := p.next().text
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for !p.done() && p.peek().kind == tokOp && (p.peek().text == "*" || p.peek().text == "/") {
		op := p.next().text
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseFactor() (node, error) {
	if p.done() {
		return nil, evalErrf("formula ends unexpectedly")
	}
	t := p.next()
	switch t.kind {
	case tokNumber:
		return numberNode(t.num), nil
	case tokIdent:
		return varNode(t.text), nil
	case tokOp:
		if t.text == "-" {
			child, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			return unaryNode{op: "-", child: child}, nil
		}
		return nil, evalErrf("unexpected operator %q", t.text)
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.done() || p.peek().kind != tokRParen {
			return nil, evalErrf("missing closing parenthesis")
		}
		p.next()
		return inner, nil
	}
	return nil, evalErrf("unexpected %q", t.text)
}
