// Package formula evaluates the small arithmetic expressions stored on
// station configurations. The grammar is deliberately tiny: the three named
// variables, numeric literals, + - * /, unary minus, and parentheses. The
// expression text comes from an admin-editable DB column, so it is parsed
// against this fixed grammar and never handed to anything that could execute
// code.
package formula

import (
	"fmt"
	"math"
	"strings"
)

// Variable names accepted in expressions.
const (
	VarTotalLiters = "totalLiters"
	VarExtraLiters = "extraLiters"
	VarBalance     = "balance"
)

// Context supplies the variable values for one evaluation. A nil pointer or a
// zero value both count as "missing" — a truck whose balance column reads 0
// has no usable balance to compute from.
type Context struct {
	TotalLiters *int
	ExtraLiters *int
	Balance     *int
}

// Empty reports whether no variable was supplied at all (truck not fetched yet).
func (c Context) Empty() bool {
	return c.TotalLiters == nil && c.ExtraLiters == nil && c.Balance == nil
}

func (c Context) value(name string) (float64, bool) {
	var p *int
	switch name {
	case VarTotalLiters:
		p = c.TotalLiters
	case VarExtraLiters:
		p = c.ExtraLiters
	case VarBalance:
		p = c.Balance
	}
	if p == nil || *p == 0 {
		return 0, false
	}
	return float64(*p), true
}

// MissingDataError is returned when every variable the formula references is
// absent. Evaluation is not attempted in that case — computing with zeros
// would silently produce a bogus allocation.
type MissingDataError struct {
	Vars []string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("no value for %s", strings.Join(e.Vars, ", "))
}

// EvalError is returned for malformed expressions, unknown identifiers,
// division by zero, and non-finite results.
type EvalError struct {
	Msg string
}

func (e *EvalError) Error() string { return e.Msg }

func evalErrf(format string, args ...interface{}) error {
	return &EvalError{Msg: fmt.Sprintf(format, args...)}
}

// Vars returns the variables the expression textually references, in a fixed
// order. A parse error here is reported at Evaluate time, not by Vars.
func Vars(expr string) []string {
	toks, err := tokenize(expr)
	if err != nil {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, t := range toks {
		if t.kind == tokIdent && !seen[t.text] {
			seen[t.text] = true
			out = append(out, t.text)
		}
	}
	return out
}

// Validate parses expr without evaluating it. Used at station-config write
// time so a bad formula is rejected before it ever reaches a lookup.
func Validate(expr string) error {
	toks, err := tokenize(expr)
	if err != nil {
		return err
	}
	if len(toks) == 0 {
		return evalErrf("empty formula")
	}
	p := &parser{toks: toks}
	if _, err := p.parseExpr(); err != nil {
		return err
	}
	if !p.done() {
		return evalErrf("unexpected %q", p.peek().text)
	}
	return nil
}

// Evaluate parses and evaluates expr against ctx and returns whole liters,
// rounded to the nearest integer.
//
// If every variable the expression references is missing from ctx, Evaluate
// returns *MissingDataError and does not compute. When only some referenced
// variables are missing, the missing ones evaluate as zero — partial context
// is how mixed formulas like "totalLiters - balance" behave mid-journey.
func Evaluate(expr string, ctx Context) (int, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return 0, err
	}
	if len(toks) == 0 {
		return 0, evalErrf("empty formula")
	}

	var referenced, missing []string
	seen := map[string]bool{}
	for _, t := range toks {
		if t.kind != tokIdent || seen[t.text] {
			continue
		}
		seen[t.text] = true
		referenced = append(referenced, t.text)
		if _, ok := ctx.value(t.text); !ok {
			missing = append(missing, t.text)
		}
	}
	if len(referenced) > 0 && len(missing) == len(referenced) {
		return 0, &MissingDataError{Vars: missing}
	}

	p := &parser{toks: toks}
	root, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if !p.done() {
		return 0, evalErrf("unexpected %q", p.peek().text)
	}

	result, err := root.eval(ctx)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, evalErrf("formula result is not a finite number")
	}
	return int(math.Round(result)), nil
}
