package expander

import (
	"fmt"

	"github.com/peroxide-lang/peroxide/lang/env"
	"github.com/peroxide-lang/peroxide/lang/langerr"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// SyntaxRules is syntax-rules compiled from its source form: a set of
// (pattern template) rules tried in order against the macro-call arguments,
// plus the set of literal identifiers that must match by identifier=?
// rather than bind. It implements Transformer directly (spec.md describes
// syntax-rules as sugar expanding to an er-macro-transformer; this type
// plays that role natively rather than generating an intermediate
// er-macro-transformer form; it keeps the rules as parsed and matches each
// pattern against the call in turn, with no precompiled decision tree).
type SyntaxRules struct {
	Ellipsis string
	Literals map[string]bool
	Rules    []syntaxRule
	DefEnv   *env.Frame
}

type syntaxRule struct {
	pattern  value.Value
	template value.Value
}

func (*SyntaxRules) Type() string   { return "macro" }
func (*SyntaxRules) String() string { return "#<syntax-rules-transformer>" }
func (*SyntaxRules) Name() string   { return "syntax-rules" }

// bindingTree is either a matched value.Value (ellipsis depth 0 for that
// variable) or a []bindingTree one level deeper, recursively, mirroring the
// pattern's ellipsis nesting.
type bindingTree interface{}

// CompileSyntaxRules builds a SyntaxRules transformer from its source form,
// which is the cdr of (syntax-rules [ellipsis] (literal ...) (pattern
// template) ...). defEnv is the environment in effect at the
// define-syntax/let-syntax site, used both to resolve literal identifiers
// and as the hygienic closure environment for template-introduced
// identifiers.
func CompileSyntaxRules(form value.Value, defEnv *env.Frame) (*SyntaxRules, error) {
	elems, ok := value.ListToSlice(form)
	if !ok || len(elems) < 1 {
		return nil, langerr.New(langerr.Syntax, "malformed syntax-rules form")
	}
	ellipsis := "..."
	idx := 0
	if sym, ok := elems[0].(*value.Symbol); ok {
		ellipsis = sym.Name
		idx = 1
	}
	if idx >= len(elems) {
		return nil, langerr.New(langerr.Syntax, "syntax-rules: missing literals list")
	}
	litElems, ok := value.ListToSlice(elems[idx])
	if !ok {
		return nil, langerr.New(langerr.Syntax, "syntax-rules: malformed literals list")
	}
	lits := make(map[string]bool, len(litElems))
	for _, l := range litElems {
		name, ok := identifierName(l)
		if !ok {
			return nil, langerr.New(langerr.Syntax, "syntax-rules: literal is not an identifier")
		}
		lits[name] = true
	}
	sr := &SyntaxRules{Ellipsis: ellipsis, Literals: lits, DefEnv: defEnv}
	for _, re := range elems[idx+1:] {
		parts, ok := value.ListToSlice(re)
		if !ok || len(parts) != 2 {
			return nil, langerr.New(langerr.Syntax, "syntax-rules: malformed rule")
		}
		sr.Rules = append(sr.Rules, syntaxRule{pattern: parts[0], template: parts[1]})
	}
	return sr, nil
}

func (sr *SyntaxRules) Expand(ev Evaluator, form value.Value, useEnv, defEnv *env.Frame) (value.Value, error) {
	formPair, ok := form.(*value.Pair)
	if !ok {
		return nil, langerr.New(langerr.Syntax, "macro use is not a combination")
	}
	args := formPair.Cdr
	for _, rule := range sr.Rules {
		patArgs, err := patternArgs(rule.pattern)
		if err != nil {
			return nil, err
		}
		bindings := map[string]bindingTree{}
		if sr.matchPattern(patArgs, args, useEnv, bindings) {
			renameCache := map[string]*env.SyntacticClosure{}
			return sr.instantiate(rule.template, bindings, renameCache)
		}
	}
	return nil, langerr.New(langerr.Syntax, "no matching syntax-rules clause for %s", value.Value(form).String())
}

// patternArgs drops the keyword position (the pattern's car, conventionally
// matched against `_` since the macro keyword itself is not part of what's
// bound) and returns the remaining pattern to match against the call's
// argument list.
func patternArgs(pattern value.Value) (value.Value, error) {
	p, ok := pattern.(*value.Pair)
	if !ok {
		return nil, langerr.New(langerr.Syntax, "syntax-rules pattern must be a list")
	}
	return p.Cdr, nil
}

// identifierName extracts the ultimate symbol name of an identifier,
// unwrapping any syntactic-closure layers. The name alone (not which
// binding it resolves to) is all pattern compilation and ellipsis
// bookkeeping need; full resolution goes through env.Resolve instead.
func identifierName(v value.Value) (string, bool) {
	switch vv := v.(type) {
	case *value.Symbol:
		return vv.Name, true
	case *env.SyntacticClosure:
		return identifierName(vv.Form)
	default:
		return "", false
	}
}

func (sr *SyntaxRules) isEllipsis(v value.Value) bool {
	name, ok := identifierName(v)
	return ok && name == sr.Ellipsis
}

func flattenOpen(form value.Value) (elems []value.Value, tail value.Value) {
	for {
		p, ok := form.(*value.Pair)
		if !ok {
			return elems, form
		}
		elems = append(elems, p.Car)
		form = p.Cdr
	}
}

func rebuildList(elems []value.Value, tail value.Value) value.Value {
	result := tail
	for i := len(elems) - 1; i >= 0; i-- {
		result = value.Cons(elems[i], result)
	}
	return result
}

func structurallyEqual(a, b value.Value) bool {
	switch av := a.(type) {
	case value.Fixnum:
		bv, ok := b.(value.Fixnum)
		return ok && av == bv
	case value.Inexact:
		bv, ok := b.(value.Inexact)
		return ok && av == bv
	case value.Boolean:
		bv, ok := b.(value.Boolean)
		return ok && av == bv
	case value.Char:
		bv, ok := b.(value.Char)
		return ok && av == bv
	default:
		return a.String() == b.String()
	}
}

// matchPattern attempts to match pat against form, recording pattern-variable
// bindings into out. useEnv is the environment of the macro-call site
// (where a literal identifier in form must resolve from); the pattern's own
// literal identifiers resolve in sr.DefEnv.
func (sr *SyntaxRules) matchPattern(pat, form value.Value, useEnv *env.Frame, out map[string]bindingTree) bool {
	if value.IsNil(pat) {
		return value.IsNil(form)
	}
	switch p := pat.(type) {
	case *value.Symbol:
		return sr.matchIdentifierPattern(p.Name, pat, form, useEnv, out)
	case *env.SyntacticClosure:
		if name, ok := identifierName(pat); ok {
			return sr.matchIdentifierPattern(name, pat, form, useEnv, out)
		}
		return false
	case *value.Pair:
		return sr.matchPairPattern(p, form, useEnv, out)
	case *value.Vector:
		return sr.matchVectorPattern(p, form, useEnv, out)
	default:
		return structurallyEqual(pat, form)
	}
}

func (sr *SyntaxRules) matchIdentifierPattern(name string, patID, form value.Value, useEnv *env.Frame, out map[string]bindingTree) bool {
	if name == "_" {
		return true
	}
	if sr.Literals[name] {
		if !env.Identifier(form) {
			return false
		}
		return env.IdentifierEqual(sr.DefEnv, patID, useEnv, form)
	}
	out[name] = form
	return true
}

func (sr *SyntaxRules) matchPairPattern(p *value.Pair, form value.Value, useEnv *env.Frame, out map[string]bindingTree) bool {
	if cdrPair, ok := p.Cdr.(*value.Pair); ok && sr.isEllipsis(cdrPair.Car) {
		subpat := p.Car
		restpat := cdrPair.Cdr
		elems, tail := flattenOpen(form)
		restElems, _ := flattenOpen(restpat)
		minFixed := len(restElems)
		if len(elems) < minFixed {
			return false
		}
		ellipsisItems := elems[:len(elems)-minFixed]
		fixedItems := elems[len(elems)-minFixed:]
		if !sr.matchEllipsisRepeat(subpat, ellipsisItems, useEnv, out) {
			return false
		}
		rebuilt := rebuildList(fixedItems, tail)
		return sr.matchPattern(restpat, rebuilt, useEnv, out)
	}
	formPair, ok := form.(*value.Pair)
	if !ok {
		return false
	}
	if !sr.matchPattern(p.Car, formPair.Car, useEnv, out) {
		return false
	}
	return sr.matchPattern(p.Cdr, formPair.Cdr, useEnv, out)
}

func (sr *SyntaxRules) matchVectorPattern(p *value.Vector, form value.Value, useEnv *env.Frame, out map[string]bindingTree) bool {
	fv, ok := form.(*value.Vector)
	if !ok {
		return false
	}
	pe := p.Elems
	for i := 0; i < len(pe); i++ {
		if i+1 < len(pe) && sr.isEllipsis(pe[i+1]) {
			subpat := pe[i]
			fixedAfter := len(pe) - (i + 2)
			if len(fv.Elems)-i < fixedAfter {
				return false
			}
			n := len(fv.Elems) - i - fixedAfter
			if !sr.matchEllipsisRepeat(subpat, fv.Elems[i:i+n], useEnv, out) {
				return false
			}
			rest := fv.Elems[i+n:]
			for j, rp := range pe[i+2:] {
				if !sr.matchPattern(rp, rest[j], useEnv, out) {
					return false
				}
			}
			return true
		}
		if i >= len(fv.Elems) {
			return false
		}
		if !sr.matchPattern(pe[i], fv.Elems[i], useEnv, out) {
			return false
		}
	}
	return len(fv.Elems) == len(pe)
}

func (sr *SyntaxRules) matchEllipsisRepeat(subpat value.Value, items []value.Value, useEnv *env.Frame, out map[string]bindingTree) bool {
	vars := sr.patternVars(subpat)
	collected := make(map[string][]bindingTree, len(vars))
	for _, v := range vars {
		collected[v] = []bindingTree{}
	}
	for _, item := range items {
		sub := map[string]bindingTree{}
		if !sr.matchPattern(subpat, item, useEnv, sub) {
			return false
		}
		for _, v := range vars {
			collected[v] = append(collected[v], sub[v])
		}
	}
	for _, v := range vars {
		out[v] = bindingTree(collected[v])
	}
	return true
}

// patternVars collects the names of pattern variables (identifiers that are
// neither literals, "_", nor the ellipsis symbol) occurring anywhere in pat.
func (sr *SyntaxRules) patternVars(pat value.Value) []string {
	var out []string
	seen := map[string]bool{}
	var walk func(value.Value)
	walk = func(v value.Value) {
		if value.IsNil(v) {
			return
		}
		switch vv := v.(type) {
		case *value.Symbol:
			if vv.Name != "_" && vv.Name != sr.Ellipsis && !sr.Literals[vv.Name] && !seen[vv.Name] {
				seen[vv.Name] = true
				out = append(out, vv.Name)
			}
		case *env.SyntacticClosure:
			walk(vv.Form)
		case *value.Pair:
			walk(vv.Car)
			walk(vv.Cdr)
		case *value.Vector:
			for _, e := range vv.Elems {
				walk(e)
			}
		}
	}
	walk(pat)
	return out
}

// instantiate builds the output form of tmpl given the bindings produced by
// a successful match, renaming template-introduced free identifiers
// hygienically (closed over sr.DefEnv) and memoizing each rename in
// renameCache so repeated occurrences of the same introduced identifier in
// one expansion share an identifier (needed e.g. for a template that both
// binds and references a helper name it introduces).
func (sr *SyntaxRules) instantiate(tmpl value.Value, bindings map[string]bindingTree, renameCache map[string]*env.SyntacticClosure) (value.Value, error) {
	switch t := tmpl.(type) {
	case *value.Symbol:
		if bt, ok := bindings[t.Name]; ok {
			v, ok := bt.(value.Value)
			if !ok {
				return nil, langerr.New(langerr.Syntax, "pattern variable %s used without enough ellipses", t.Name)
			}
			return v, nil
		}
		if sc, ok := renameCache[t.Name]; ok {
			return sc, nil
		}
		sc := env.MakeSyntacticClosure(sr.DefEnv, nil, t)
		renameCache[t.Name] = sc
		return sc, nil
	case *value.Pair:
		return sr.instantiatePair(t, bindings, renameCache)
	case *value.Vector:
		elems, err := sr.instantiateSeq(t.Elems, bindings, renameCache)
		if err != nil {
			return nil, err
		}
		return value.NewVector(elems), nil
	default:
		return tmpl, nil
	}
}

func (sr *SyntaxRules) instantiatePair(t *value.Pair, bindings map[string]bindingTree, renameCache map[string]*env.SyntacticClosure) (value.Value, error) {
	if cdrPair, ok := t.Cdr.(*value.Pair); ok && sr.isEllipsis(cdrPair.Car) {
		subtmpl := t.Car
		rest := cdrPair.Cdr
		vars := sr.templateEllipsisVars(subtmpl, bindings)
		if len(vars) == 0 {
			return nil, langerr.New(langerr.Syntax, "no pattern variable before ellipsis in template")
		}
		n := -1
		for _, v := range vars {
			seq, ok := bindings[v].([]bindingTree)
			if !ok {
				return nil, langerr.New(langerr.Syntax, "pattern variable %s used with too many ellipses", v)
			}
			if n == -1 {
				n = len(seq)
			} else if len(seq) != n {
				return nil, langerr.New(langerr.Syntax, "mismatched ellipsis match counts in template")
			}
		}
		results := make([]value.Value, 0, n)
		for i := 0; i < n; i++ {
			sub := make(map[string]bindingTree, len(bindings))
			for k, v := range bindings {
				sub[k] = v
			}
			for _, v := range vars {
				sub[v] = bindings[v].([]bindingTree)[i]
			}
			val, err := sr.instantiate(subtmpl, sub, renameCache)
			if err != nil {
				return nil, err
			}
			results = append(results, val)
		}
		tailVal, err := sr.instantiate(rest, bindings, renameCache)
		if err != nil {
			return nil, err
		}
		return rebuildList(results, tailVal), nil
	}
	car, err := sr.instantiate(t.Car, bindings, renameCache)
	if err != nil {
		return nil, err
	}
	cdr, err := sr.instantiate(t.Cdr, bindings, renameCache)
	if err != nil {
		return nil, err
	}
	return value.Cons(car, cdr), nil
}

func (sr *SyntaxRules) instantiateSeq(elems []value.Value, bindings map[string]bindingTree, renameCache map[string]*env.SyntacticClosure) ([]value.Value, error) {
	lst := rebuildList(elems, value.Nil)
	out, err := sr.instantiate(lst, bindings, renameCache)
	if err != nil {
		return nil, err
	}
	slice, ok := value.ListToSlice(out)
	if !ok {
		return nil, fmt.Errorf("internal: vector template did not produce a proper list")
	}
	return slice, nil
}

// templateEllipsisVars returns which of tmpl's free identifiers are bound in
// bindings to an ellipsis-depth (slice) value, i.e. the variables that
// actually drive this repetition.
func (sr *SyntaxRules) templateEllipsisVars(tmpl value.Value, bindings map[string]bindingTree) []string {
	var out []string
	seen := map[string]bool{}
	var walk func(value.Value)
	walk = func(v value.Value) {
		switch vv := v.(type) {
		case *value.Symbol:
			if bt, ok := bindings[vv.Name]; ok {
				if _, isSeq := bt.([]bindingTree); isSeq && !seen[vv.Name] {
					seen[vv.Name] = true
					out = append(out, vv.Name)
				}
			}
		case *value.Pair:
			walk(vv.Car)
			walk(vv.Cdr)
		case *value.Vector:
			for _, e := range vv.Elems {
				walk(e)
			}
		}
	}
	walk(tmpl)
	return out
}
