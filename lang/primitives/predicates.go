package primitives

import "github.com/peroxide-lang/peroxide/lang/value"

func isNumber(args []value.Value) (value.Value, error) {
	switch args[0].(type) {
	case value.Fixnum, value.Inexact:
		return value.Boolean(true), nil
	}
	return value.Boolean(false), nil
}

func isInteger(args []value.Value) (value.Value, error) {
	switch n := args[0].(type) {
	case value.Fixnum:
		return value.Boolean(true), nil
	case value.Inexact:
		return value.Boolean(float64(n) == float64(int64(n))), nil
	}
	return value.Boolean(false), nil
}

func isExact(args []value.Value) (value.Value, error) {
	_, ok := args[0].(value.Fixnum)
	return value.Boolean(ok), nil
}

func isInexactNum(args []value.Value) (value.Value, error) {
	_, ok := args[0].(value.Inexact)
	return value.Boolean(ok), nil
}

func isZero(args []value.Value) (value.Value, error) {
	return value.Boolean(float64(toInexact(args[0])) == 0), nil
}

func isPositive(args []value.Value) (value.Value, error) {
	return value.Boolean(float64(toInexact(args[0])) > 0), nil
}

func isNegative(args []value.Value) (value.Value, error) {
	return value.Boolean(float64(toInexact(args[0])) < 0), nil
}

func isOdd(args []value.Value) (value.Value, error) {
	n, ok := args[0].(value.Fixnum)
	if !ok {
		return nil, typeErr("odd?", args[0])
	}
	return value.Boolean(n%2 != 0), nil
}

func isEven(args []value.Value) (value.Value, error) {
	n, ok := args[0].(value.Fixnum)
	if !ok {
		return nil, typeErr("even?", args[0])
	}
	return value.Boolean(n%2 == 0), nil
}

func isProcedure(args []value.Value) (value.Value, error) {
	_, ok := args[0].(value.Callable)
	return value.Boolean(ok), nil
}

func isBoolean(args []value.Value) (value.Value, error) {
	_, ok := args[0].(value.Boolean)
	return value.Boolean(ok), nil
}

func notProc(args []value.Value) (value.Value, error) {
	return value.Boolean(!value.Truthy(args[0])), nil
}
