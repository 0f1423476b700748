package primitives

import (
	"unicode"

	"github.com/peroxide-lang/peroxide/lang/value"
)

func isChar(args []value.Value) (value.Value, error) {
	_, ok := args[0].(value.Char)
	return value.Boolean(ok), nil
}

func charToInteger(args []value.Value) (value.Value, error) {
	c, ok := args[0].(value.Char)
	if !ok {
		return nil, typeErr("char->integer", args[0])
	}
	return value.Fixnum(c), nil
}

func integerToChar(args []value.Value) (value.Value, error) {
	n, ok := args[0].(value.Fixnum)
	if !ok {
		return nil, typeErr("integer->char", args[0])
	}
	return value.Char(n), nil
}

func charUpcase(args []value.Value) (value.Value, error) {
	c, ok := args[0].(value.Char)
	if !ok {
		return nil, typeErr("char-upcase", args[0])
	}
	return value.Char(unicode.ToUpper(rune(c))), nil
}

func charDowncase(args []value.Value) (value.Value, error) {
	c, ok := args[0].(value.Char)
	if !ok {
		return nil, typeErr("char-downcase", args[0])
	}
	return value.Char(unicode.ToLower(rune(c))), nil
}

func charIsAlpha(args []value.Value) (value.Value, error) {
	c, ok := args[0].(value.Char)
	return value.Boolean(ok && unicode.IsLetter(rune(c))), nil
}

func charIsNumeric(args []value.Value) (value.Value, error) {
	c, ok := args[0].(value.Char)
	return value.Boolean(ok && unicode.IsDigit(rune(c))), nil
}

func charIsWhitespace(args []value.Value) (value.Value, error) {
	c, ok := args[0].(value.Char)
	return value.Boolean(ok && unicode.IsSpace(rune(c))), nil
}

func charIsUpper(args []value.Value) (value.Value, error) {
	c, ok := args[0].(value.Char)
	return value.Boolean(ok && unicode.IsUpper(rune(c))), nil
}

func charIsLower(args []value.Value) (value.Value, error) {
	c, ok := args[0].(value.Char)
	return value.Boolean(ok && unicode.IsLower(rune(c))), nil
}

func charCompareChain(procName string, args []value.Value, cmp func(a, b rune) bool) (value.Value, error) {
	for i := 0; i+1 < len(args); i++ {
		a, ok1 := args[i].(value.Char)
		b, ok2 := args[i+1].(value.Char)
		if !ok1 || !ok2 {
			return nil, typeErr(procName, args[i])
		}
		if !cmp(rune(a), rune(b)) {
			return value.Boolean(false), nil
		}
	}
	return value.Boolean(true), nil
}
