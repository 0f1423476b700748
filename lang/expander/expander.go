// Package expander implements the macro-expansion layer of spec.md §4.3 on
// top of the syntactic-closure primitives in lang/env: the transformer
// constructors (sc-macro-transformer, rsc-macro-transformer,
// er-macro-transformer) and syntax-rules, whose rules are kept as parsed and
// tried in order, each pattern (ellipsis patterns included) matched directly
// against the macro call.
//
// Expansion is driven one step at a time by Expand1: given a form and the
// environment it is used in, Expand1 checks whether the form's head is bound
// to a macro and, if so, invokes the transformer and returns the result.
// The compiler calls Expand1 in a loop (a macro may expand to another macro
// call) at every position it is about to compile, which is what makes
// macros transparent to both the compiler and to further nested expansion.
package expander

import (
	"fmt"

	"github.com/peroxide-lang/peroxide/lang/env"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// Evaluator is the capability the compiler/VM side provides so that
// expansion can invoke transformer procedures, which are themselves ordinary
// compiled Scheme (or Go-native primitive) procedures. Implemented by
// lang/machine's Thread; kept as an interface here so this package never
// imports lang/machine.
type Evaluator interface {
	Apply(proc value.Callable, args []value.Value) (value.Value, error)
}

// EnvValue lifts a compile-time *env.Frame to a first-class Value so that
// transformer procedures (ordinary Scheme code taking the environment as an
// argument, e.g. sc-macro-transformer's second parameter) can hold and pass
// it around like any other value.
type EnvValue struct {
	Frame *env.Frame
}

func (*EnvValue) Type() string   { return "environment" }
func (*EnvValue) String() string { return "#<environment>" }

// Transformer is implemented by every macro-producing value this package
// constructs (the three constructors, and syntax-rules). A macro Binding's
// Transformer field always holds one of these, never a raw user procedure,
// so Expand1 has a single calling convention regardless of which
// constructor built it.
type Transformer interface {
	value.Callable
	// Expand invokes the transformer on form, which occurred in useEnv, given
	// that the transformer itself was installed (by define-syntax or
	// let(rec)-syntax) in defEnv.
	Expand(ev Evaluator, form value.Value, useEnv, defEnv *env.Frame) (value.Value, error)
}

// Expand1 performs a single macro-expansion step: if form is a pair whose
// head identifier resolves (in useEnv) to a macro binding, the bound
// transformer is invoked and its result returned with changed=true.
// Otherwise form is returned unchanged with changed=false, meaning the
// compiler should stop expanding and compile the form as an application,
// special form, or literal.
func Expand1(ev Evaluator, form value.Value, useEnv *env.Frame) (out value.Value, changed bool, err error) {
	p, ok := form.(*value.Pair)
	if !ok {
		return form, false, nil
	}
	head := p.Car
	if !env.Identifier(head) {
		return form, false, nil
	}
	b, ok := env.Resolve(useEnv, head)
	if !ok || b.Kind != env.Macro {
		return form, false, nil
	}
	t, ok := b.Transformer.(Transformer)
	if !ok {
		return nil, false, fmt.Errorf("macro %s: transformer is not a recognized transformer kind", b.Name)
	}
	expanded, err := t.Expand(ev, form, useEnv, b.DefEnv)
	if err != nil {
		return nil, false, err
	}
	return expanded, true, nil
}

// ExpandFully repeatedly applies Expand1 until the head position is no
// longer a macro call, returning the final (non-macro) form. Used by
// callers that just need "what special form or application is this", not a
// full recursive walk (which remains the compiler's job, since only it
// knows which subform positions are themselves to be evaluated).
func ExpandFully(ev Evaluator, form value.Value, useEnv *env.Frame) (value.Value, error) {
	for {
		next, changed, err := Expand1(ev, form, useEnv)
		if err != nil {
			return nil, err
		}
		if !changed {
			return form, nil
		}
		form = next
	}
}
