package primitives

import (
	"github.com/peroxide-lang/peroxide/lang/env"
	"github.com/peroxide-lang/peroxide/lang/expander"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// envOf unwraps the opaque environment value a transformer procedure was
// handed (sc-macro-transformer's second argument, make-syntactic-closure's
// first), rejecting anything else.
func envOf(procName string, v value.Value) (*env.Frame, error) {
	e, ok := v.(*expander.EnvValue)
	if !ok {
		return nil, typeErr(procName, v)
	}
	return e.Frame, nil
}

func isIdentifier(args []value.Value) (value.Value, error) {
	return value.Boolean(env.Identifier(args[0])), nil
}

func makeSyntacticClosureProc(args []value.Value) (value.Value, error) {
	e, err := envOf("make-syntactic-closure", args[0])
	if err != nil {
		return nil, err
	}
	frees, ok := value.ListToSlice(args[1])
	if !ok {
		return nil, typeErr("make-syntactic-closure", args[1])
	}
	names := make([]string, len(frees))
	for i, f := range frees {
		sym, ok := f.(*value.Symbol)
		if !ok {
			return nil, typeErr("make-syntactic-closure", f)
		}
		names[i] = sym.Name
	}
	return env.MakeSyntacticClosure(e, names, args[2]), nil
}

func stripSyntacticClosures(args []value.Value) (value.Value, error) {
	return env.Strip(args[0]), nil
}

// identifierEqualProc implements identifier=? as a general-purpose
// procedure (distinct from the per-expansion `compare` closure an
// er-macro-transformer is handed, which pins useEnv on both sides): each
// identifier here carries its own explicit environment argument.
func identifierEqualProc(args []value.Value) (value.Value, error) {
	e1, err := envOf("identifier=?", args[0])
	if err != nil {
		return nil, err
	}
	e2, err := envOf("identifier=?", args[2])
	if err != nil {
		return nil, err
	}
	return value.Boolean(env.IdentifierEqual(e1, args[1], e2, args[3])), nil
}
