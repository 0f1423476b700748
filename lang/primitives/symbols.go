package primitives

import "github.com/peroxide-lang/peroxide/lang/value"

func isSymbol(args []value.Value) (value.Value, error) {
	_, ok := args[0].(*value.Symbol)
	return value.Boolean(ok), nil
}

func gensymProc(args []value.Value) (value.Value, error) {
	base := "g"
	if len(args) == 1 {
		s, ok := args[0].(*value.MutableString)
		if !ok {
			return nil, typeErr("gensym", args[0])
		}
		base = s.Go()
	}
	return value.Gensym(base), nil
}
