package primitives

import (
	"github.com/peroxide-lang/peroxide/lang/langerr"
	"github.com/peroxide-lang/peroxide/lang/value"
)

func typeErr(procName string, got value.Value) error {
	return langerr.New(langerr.Type, "%s: wrong type argument %s", procName, got.Type())
}

func wrapFixed(procName string, n int, fn func(args []value.Value) (value.Value, error)) *value.NativeProc {
	return value.NewNativeProc(procName, func(args []value.Value) (value.Value, error) {
		if len(args) != n {
			return nil, langerr.ArityError(procName, n, len(args))
		}
		return fn(args)
	})
}
