package primitives

import (
	"strconv"
	"strings"

	"github.com/peroxide-lang/peroxide/lang/langerr"
	"github.com/peroxide-lang/peroxide/lang/value"
)

func isString(args []value.Value) (value.Value, error) {
	_, ok := args[0].(*value.MutableString)
	return value.Boolean(ok), nil
}

func makeString(args []value.Value) (value.Value, error) {
	n, ok := args[0].(value.Fixnum)
	if !ok {
		return nil, typeErr("make-string", args[0])
	}
	fill := byte(' ')
	if len(args) == 2 {
		c, ok := args[1].(value.Char)
		if !ok {
			return nil, typeErr("make-string", args[1])
		}
		fill = byte(c)
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = fill
	}
	return &value.MutableString{B: b}, nil
}

func stringProc(args []value.Value) (value.Value, error) {
	b := make([]byte, len(args))
	for i, a := range args {
		c, ok := a.(value.Char)
		if !ok {
			return nil, typeErr("string", a)
		}
		b[i] = byte(c)
	}
	return &value.MutableString{B: b}, nil
}

func stringLength(args []value.Value) (value.Value, error) {
	s, ok := args[0].(*value.MutableString)
	if !ok {
		return nil, typeErr("string-length", args[0])
	}
	return value.Fixnum(s.Len()), nil
}

func stringRef(args []value.Value) (value.Value, error) {
	s, ok := args[0].(*value.MutableString)
	if !ok {
		return nil, typeErr("string-ref", args[0])
	}
	idx, ok := args[1].(value.Fixnum)
	if !ok {
		return nil, typeErr("string-ref", args[1])
	}
	c, err := s.Ref(int(idx))
	if err != nil {
		return nil, langerr.New(langerr.Type, "%s", err.Error())
	}
	return c, nil
}

func stringSet(args []value.Value) (value.Value, error) {
	s, ok := args[0].(*value.MutableString)
	if !ok {
		return nil, typeErr("string-set!", args[0])
	}
	idx, ok := args[1].(value.Fixnum)
	if !ok {
		return nil, typeErr("string-set!", args[1])
	}
	c, ok := args[2].(value.Char)
	if !ok {
		return nil, typeErr("string-set!", args[2])
	}
	if err := s.Set(int(idx), c); err != nil {
		return nil, langerr.New(langerr.Type, "%s", err.Error())
	}
	return value.Unspecified, nil
}

func stringAppend(args []value.Value) (value.Value, error) {
	var b strings.Builder
	for _, a := range args {
		s, ok := a.(*value.MutableString)
		if !ok {
			return nil, typeErr("string-append", a)
		}
		b.WriteString(s.Go())
	}
	return value.NewString(b.String()), nil
}

func substring(args []value.Value) (value.Value, error) {
	s, ok := args[0].(*value.MutableString)
	if !ok {
		return nil, typeErr("substring", args[0])
	}
	start, ok := args[1].(value.Fixnum)
	if !ok {
		return nil, typeErr("substring", args[1])
	}
	end := value.Fixnum(s.Len())
	if len(args) == 3 {
		end, ok = args[2].(value.Fixnum)
		if !ok {
			return nil, typeErr("substring", args[2])
		}
	}
	if start < 0 || end > value.Fixnum(s.Len()) || start > end {
		return nil, langerr.New(langerr.Type, "substring: index out of range")
	}
	return value.NewString(s.Go()[start:end]), nil
}

func stringCopy(args []value.Value) (value.Value, error) {
	s, ok := args[0].(*value.MutableString)
	if !ok {
		return nil, typeErr("string-copy", args[0])
	}
	return value.NewString(s.Go()), nil
}

func stringToList(args []value.Value) (value.Value, error) {
	s, ok := args[0].(*value.MutableString)
	if !ok {
		return nil, typeErr("string->list", args[0])
	}
	elems := make([]value.Value, s.Len())
	for i, r := range []byte(s.Go()) {
		elems[i] = value.Char(r)
	}
	return value.List(elems...), nil
}

func listToString(args []value.Value) (value.Value, error) {
	elems, ok := value.ListToSlice(args[0])
	if !ok {
		return nil, typeErr("list->string", args[0])
	}
	b := make([]byte, len(elems))
	for i, e := range elems {
		c, ok := e.(value.Char)
		if !ok {
			return nil, typeErr("list->string", e)
		}
		b[i] = byte(c)
	}
	return &value.MutableString{B: b}, nil
}

func stringUpcase(args []value.Value) (value.Value, error) {
	s, ok := args[0].(*value.MutableString)
	if !ok {
		return nil, typeErr("string-upcase", args[0])
	}
	return value.NewString(strings.ToUpper(s.Go())), nil
}

func stringDowncase(args []value.Value) (value.Value, error) {
	s, ok := args[0].(*value.MutableString)
	if !ok {
		return nil, typeErr("string-downcase", args[0])
	}
	return value.NewString(strings.ToLower(s.Go())), nil
}

func stringCompareChain(procName string, args []value.Value, cmp func(a, b string) bool) (value.Value, error) {
	for i := 0; i+1 < len(args); i++ {
		a, ok1 := args[i].(*value.MutableString)
		b, ok2 := args[i+1].(*value.MutableString)
		if !ok1 || !ok2 {
			return nil, typeErr(procName, args[i])
		}
		if !cmp(a.Go(), b.Go()) {
			return value.Boolean(false), nil
		}
	}
	return value.Boolean(true), nil
}

func stringToNumber(args []value.Value) (value.Value, error) {
	s, ok := args[0].(*value.MutableString)
	if !ok {
		return nil, typeErr("string->number", args[0])
	}
	radix := 10
	if len(args) == 2 {
		r, ok := args[1].(value.Fixnum)
		if !ok {
			return nil, typeErr("string->number", args[1])
		}
		radix = int(r)
	}
	text := s.Go()
	if radix == 10 {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return value.Fixnum(n), nil
		}
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return value.Inexact(f), nil
		}
		return value.Boolean(false), nil
	}
	if n, err := strconv.ParseInt(text, radix, 64); err == nil {
		return value.Fixnum(n), nil
	}
	return value.Boolean(false), nil
}

func symbolToString(args []value.Value) (value.Value, error) {
	s, ok := args[0].(*value.Symbol)
	if !ok {
		return nil, typeErr("symbol->string", args[0])
	}
	return value.NewString(s.Name), nil
}

func stringToSymbol(args []value.Value) (value.Value, error) {
	s, ok := args[0].(*value.MutableString)
	if !ok {
		return nil, typeErr("string->symbol", args[0])
	}
	return value.Intern(s.Go()), nil
}
