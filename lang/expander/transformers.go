package expander

import (
	"github.com/peroxide-lang/peroxide/lang/env"
	"github.com/peroxide-lang/peroxide/lang/langerr"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// SCMacroTransformer wraps a user-supplied procedure that receives the raw
// form and the use environment, and returns a replacement form that the
// procedure itself is responsible for making hygienic (spec.md §4.3): any
// identifier it wants to resolve in the definition environment it must wrap
// itself with make-syntactic-closure.
type SCMacroTransformer struct {
	Proc value.Callable
}

func NewSCMacroTransformer(proc value.Callable) *SCMacroTransformer {
	return &SCMacroTransformer{Proc: proc}
}

func (t *SCMacroTransformer) Type() string   { return "macro" }
func (t *SCMacroTransformer) String() string { return "#<sc-macro-transformer>" }
func (t *SCMacroTransformer) Name() string   { return "sc-macro-transformer" }

func (t *SCMacroTransformer) Expand(ev Evaluator, form value.Value, useEnv, defEnv *env.Frame) (value.Value, error) {
	return ev.Apply(t.Proc, []value.Value{form, &EnvValue{Frame: useEnv}})
}

// RSCMacroTransformer is sc-macro-transformer's easier-to-use sibling: the
// procedure's result is automatically closed over the definition
// environment, so ordinary output built by consing together literal symbols
// is hygienic by default without the macro author calling
// make-syntactic-closure themselves.
type RSCMacroTransformer struct {
	Proc value.Callable
}

func NewRSCMacroTransformer(proc value.Callable) *RSCMacroTransformer {
	return &RSCMacroTransformer{Proc: proc}
}

func (t *RSCMacroTransformer) Type() string   { return "macro" }
func (t *RSCMacroTransformer) String() string { return "#<rsc-macro-transformer>" }
func (t *RSCMacroTransformer) Name() string   { return "rsc-macro-transformer" }

func (t *RSCMacroTransformer) Expand(ev Evaluator, form value.Value, useEnv, defEnv *env.Frame) (value.Value, error) {
	result, err := ev.Apply(t.Proc, []value.Value{form, &EnvValue{Frame: useEnv}})
	if err != nil {
		return nil, err
	}
	return env.MakeSyntacticClosure(defEnv, nil, result), nil
}

// ERMacroTransformer implements explicit-renaming transformers: the user
// procedure receives (form, rename, compare). rename hygienically renames an
// identifier for insertion into the output (memoized per input identifier so
// repeated renames of the same symbol produce identifier=? results, letting
// a single renamed name be used at both a binding site and its references).
// compare implements identifier=? for the two identifiers it is given.
type ERMacroTransformer struct {
	Proc value.Callable
}

func NewERMacroTransformer(proc value.Callable) *ERMacroTransformer {
	return &ERMacroTransformer{Proc: proc}
}

func (t *ERMacroTransformer) Type() string   { return "macro" }
func (t *ERMacroTransformer) String() string { return "#<er-macro-transformer>" }
func (t *ERMacroTransformer) Name() string   { return "er-macro-transformer" }

func (t *ERMacroTransformer) Expand(ev Evaluator, form value.Value, useEnv, defEnv *env.Frame) (value.Value, error) {
	renamed := make(map[value.Value]*env.SyntacticClosure)
	rename := value.NewNativeProc("rename", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, langerr.ArityError("rename", 1, len(args))
		}
		id := args[0]
		if sc, ok := renamed[id]; ok {
			return sc, nil
		}
		sc := env.MakeSyntacticClosure(defEnv, nil, id)
		renamed[id] = sc
		return sc, nil
	})
	compare := value.NewNativeProc("compare", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, langerr.ArityError("compare", 2, len(args))
		}
		return value.Boolean(env.IdentifierEqual(useEnv, args[0], useEnv, args[1])), nil
	})
	return ev.Apply(t.Proc, []value.Value{form, rename, compare})
}
