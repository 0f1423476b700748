package primitives

import (
	"github.com/peroxide-lang/peroxide/lang/langerr"
	"github.com/peroxide-lang/peroxide/lang/value"
)

func isBytevector(args []value.Value) (value.Value, error) {
	_, ok := args[0].(*value.Bytevector)
	return value.Boolean(ok), nil
}

func makeBytevector(args []value.Value) (value.Value, error) {
	n, ok := args[0].(value.Fixnum)
	if !ok {
		return nil, typeErr("make-bytevector", args[0])
	}
	fill := byte(0)
	if len(args) == 2 {
		f, ok := args[1].(value.Fixnum)
		if !ok {
			return nil, typeErr("make-bytevector", args[1])
		}
		fill = byte(f)
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = fill
	}
	return value.NewBytevector(b), nil
}

func bytevectorProc(args []value.Value) (value.Value, error) {
	b := make([]byte, len(args))
	for i, a := range args {
		n, ok := a.(value.Fixnum)
		if !ok {
			return nil, typeErr("bytevector", a)
		}
		b[i] = byte(n)
	}
	return value.NewBytevector(b), nil
}

func bytevectorLength(args []value.Value) (value.Value, error) {
	bv, ok := args[0].(*value.Bytevector)
	if !ok {
		return nil, typeErr("bytevector-length", args[0])
	}
	return value.Fixnum(bv.Len()), nil
}

func bytevectorRef(args []value.Value) (value.Value, error) {
	bv, ok := args[0].(*value.Bytevector)
	if !ok {
		return nil, typeErr("bytevector-u8-ref", args[0])
	}
	idx, ok := args[1].(value.Fixnum)
	if !ok {
		return nil, typeErr("bytevector-u8-ref", args[1])
	}
	b, err := bv.Ref(int(idx))
	if err != nil {
		return nil, langerr.New(langerr.Type, "%s", err.Error())
	}
	return value.Fixnum(b), nil
}

func bytevectorSet(args []value.Value) (value.Value, error) {
	bv, ok := args[0].(*value.Bytevector)
	if !ok {
		return nil, typeErr("bytevector-u8-set!", args[0])
	}
	idx, ok := args[1].(value.Fixnum)
	if !ok {
		return nil, typeErr("bytevector-u8-set!", args[1])
	}
	val, ok := args[2].(value.Fixnum)
	if !ok {
		return nil, typeErr("bytevector-u8-set!", args[2])
	}
	if err := bv.Set(int(idx), byte(val)); err != nil {
		return nil, langerr.New(langerr.Type, "%s", err.Error())
	}
	return value.Unspecified, nil
}

func bytevectorAppend(args []value.Value) (value.Value, error) {
	total := 0
	for _, a := range args {
		bv, ok := a.(*value.Bytevector)
		if !ok {
			return nil, typeErr("bytevector-append", a)
		}
		total += bv.Len()
	}
	out := make([]byte, 0, total)
	for _, a := range args {
		out = append(out, a.(*value.Bytevector).B...)
	}
	return value.NewBytevector(out), nil
}

func utf8ToString(args []value.Value) (value.Value, error) {
	bv, ok := args[0].(*value.Bytevector)
	if !ok {
		return nil, typeErr("utf8->string", args[0])
	}
	return value.NewString(string(bv.B)), nil
}

func stringToUtf8(args []value.Value) (value.Value, error) {
	s, ok := args[0].(*value.MutableString)
	if !ok {
		return nil, typeErr("string->utf8", args[0])
	}
	b := make([]byte, s.Len())
	copy(b, s.B)
	return value.NewBytevector(b), nil
}
