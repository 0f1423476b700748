package env

import "github.com/peroxide-lang/peroxide/lang/value"

// SyntacticClosure is the triple (env, frees, inner-form) of spec.md §3: an
// identifier (or arbitrary datum) closed over an environment of resolution,
// plus a set of free-symbol exceptions that continue to resolve in the use
// environment instead. Identity, not structure, is what matters: two
// syntactic closures built from identical arguments are distinct values
// (spec.md §3 invariant), which is exactly what lets a macro's "rename"
// memoization hand out the same closure for repeated renames of the same
// symbol while every other closure stays unique.
type SyntacticClosure struct {
	Env   *Frame
	Frees map[string]bool
	Form  value.Value
}

func (sc *SyntacticClosure) Type() string { return "identifier" }
func (sc *SyntacticClosure) String() string {
	return Strip(sc).String()
}

// MakeSyntacticClosure implements make-syntactic-closure (spec.md §4.3).
func MakeSyntacticClosure(e *Frame, frees []string, form value.Value) *SyntacticClosure {
	m := make(map[string]bool, len(frees))
	for _, s := range frees {
		m[s] = true
	}
	return &SyntacticClosure{Env: e, Frees: m, Form: form}
}

// Identifier reports whether x is a symbol, or a (possibly nested) syntactic
// closure whose deepest form is a symbol.
func Identifier(x value.Value) bool {
	_, ok := deepestSymbol(x)
	return ok
}

func deepestSymbol(x value.Value) (*value.Symbol, bool) {
	switch v := x.(type) {
	case *value.Symbol:
		return v, true
	case *SyntacticClosure:
		return deepestSymbol(v.Form)
	default:
		return nil, false
	}
}

// Strip implements strip-syntactic-closures: it recursively unwraps
// syntactic closures within a datum, producing a pure symbol/pair/vector
// tree. Used by quote, error messages, and syntax-rules literal matching.
func Strip(x value.Value) value.Value {
	switch v := x.(type) {
	case *SyntacticClosure:
		return Strip(v.Form)
	case *value.Pair:
		car := Strip(v.Car)
		cdr := Strip(v.Cdr)
		if car == v.Car && cdr == v.Cdr {
			return v
		}
		return value.Cons(car, cdr)
	case *value.Vector:
		out := make([]value.Value, len(v.Elems))
		changed := false
		for i, e := range v.Elems {
			se := Strip(e)
			out[i] = se
			if se != e {
				changed = true
			}
		}
		if !changed {
			return v
		}
		return value.NewVector(out)
	default:
		return x
	}
}

// StripOutermost strips only the outermost syntactic-closure layer of x,
// leaving any nested closures within its form untouched. This is what
// `quote` does (spec.md §4.3, and SPEC_FULL.md's resolution of the nested-
// stripping open question), as opposed to syntax-quote, which does not
// strip at all, and Strip above, which strips every layer.
func StripOutermost(x value.Value) value.Value {
	if sc, ok := x.(*SyntacticClosure); ok {
		return sc.Form
	}
	return x
}

// targetEnvAndSymbol implements the recursive identifier-resolution rule of
// spec.md §4.2: a syntactic closure resolves its form in its own
// environment, except that any layer whose free-symbol set contains the
// resolved symbol instead defers to the environment active at that layer's
// use site. useEnv is the environment at the point where id is being
// resolved (the "use environment" for the outermost layer).
func targetEnvAndSymbol(useEnv *Frame, id value.Value) (*Frame, *value.Symbol, bool) {
	switch v := id.(type) {
	case *value.Symbol:
		return useEnv, v, true
	case *SyntacticClosure:
		innerEnv, sym, ok := targetEnvAndSymbol(v.Env, v.Form)
		if !ok {
			return nil, nil, false
		}
		if v.Frees[sym.Name] {
			return useEnv, sym, true
		}
		return innerEnv, sym, true
	default:
		return nil, nil, false
	}
}

// Resolve looks up identifier id as seen from useEnv. It first tries an
// identity match against every frame in useEnv's chain (this is how a
// hygienic binding introduced at a binding site, keyed by the exact
// syntactic closure the expander handed out, gets found again by later
// identifier-equal occurrences of that same closure, bypassing the
// env/frees redirect entirely). Failing that, it falls back to the
// recursive env/frees resolution rule and re-walks the chain from the
// resulting target environment and plain symbol.
//
// The returned *Binding is nil, and ok is false, if id resolves to nothing
// anywhere in the chain (an Unbound identifier) or to a plain non-identifier
// datum.
func Resolve(useEnv *Frame, id value.Value) (*Binding, bool) {
	if b, ok := lookupExact(useEnv, id); ok {
		return b, true
	}
	targetEnv, sym, ok := targetEnvAndSymbol(useEnv, id)
	if !ok {
		return nil, false
	}
	return lookupSymbol(targetEnv, sym)
}

// ResolvedSymbol returns the plain symbol that id ultimately denotes, for
// diagnostics and for the Unbound branch of IdentifierEqual.
func ResolvedSymbol(useEnv *Frame, id value.Value) (*value.Symbol, bool) {
	_, sym, ok := targetEnvAndSymbol(useEnv, id)
	return sym, ok
}

// IdentifierEqual implements identifier=? (spec.md §4.3): true iff resolving
// id1 in env1 and id2 in env2 yields the same binding cell, or both yield
// the same unbound symbol.
func IdentifierEqual(env1 *Frame, id1 value.Value, env2 *Frame, id2 value.Value) bool {
	b1, ok1 := Resolve(env1, id1)
	b2, ok2 := Resolve(env2, id2)
	if ok1 != ok2 {
		return false
	}
	if ok1 {
		return b1 == b2
	}
	s1, sok1 := ResolvedSymbol(env1, id1)
	s2, sok2 := ResolvedSymbol(env2, id2)
	return sok1 && sok2 && s1 == s2
}
