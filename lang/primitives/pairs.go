package primitives

import (
	"github.com/peroxide-lang/peroxide/lang/langerr"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// Applier is the narrow capability pairs.go's higher-order procedures
// (map, for-each) need from lang/machine.Thread: the ability to call an
// arbitrary Callable. Kept separate from expander.Evaluator/
// compiler.Evaluator even though the method signature matches, since this
// package has no reason to depend on either of those packages.
type Applier interface {
	Apply(proc value.Callable, args []value.Value) (value.Value, error)
}

func cons(args []value.Value) (value.Value, error) {
	return value.Cons(args[0], args[1]), nil
}

func car(args []value.Value) (value.Value, error) {
	p, ok := args[0].(*value.Pair)
	if !ok {
		return nil, typeErr("car", args[0])
	}
	return p.Car, nil
}

func cdr(args []value.Value) (value.Value, error) {
	p, ok := args[0].(*value.Pair)
	if !ok {
		return nil, typeErr("cdr", args[0])
	}
	return p.Cdr, nil
}

// cxr builds a c[ad]+r accessor from a path like "ad" (meaning, applied
// right to left: cdr then car — (cadr x) = (car (cdr x))).
func cxr(path string) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		v := args[0]
		for i := len(path) - 1; i >= 0; i-- {
			p, ok := v.(*value.Pair)
			if !ok {
				return nil, typeErr("c"+path+"r", args[0])
			}
			if path[i] == 'a' {
				v = p.Car
			} else {
				v = p.Cdr
			}
		}
		return v, nil
	}
}

func setCar(args []value.Value) (value.Value, error) {
	p, ok := args[0].(*value.Pair)
	if !ok {
		return nil, typeErr("set-car!", args[0])
	}
	p.Car = args[1]
	return value.Unspecified, nil
}

func setCdr(args []value.Value) (value.Value, error) {
	p, ok := args[0].(*value.Pair)
	if !ok {
		return nil, typeErr("set-cdr!", args[0])
	}
	p.Cdr = args[1]
	return value.Unspecified, nil
}

func isPair(args []value.Value) (value.Value, error) {
	_, ok := args[0].(*value.Pair)
	return value.Boolean(ok), nil
}

func isNull(args []value.Value) (value.Value, error) {
	return value.Boolean(value.IsNil(args[0])), nil
}

func isListProc(args []value.Value) (value.Value, error) {
	return value.Boolean(value.IsList(args[0])), nil
}

func listProc(args []value.Value) (value.Value, error) {
	return value.List(args...), nil
}

func length(args []value.Value) (value.Value, error) {
	n, err := value.Length(args[0])
	if err != nil {
		return nil, langerr.New(langerr.Type, "%s", err.Error())
	}
	return value.Fixnum(n), nil
}

func appendProc(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Nil, nil
	}
	var result value.Value = args[len(args)-1]
	for i := len(args) - 2; i >= 0; i-- {
		elems, ok := value.ListToSlice(args[i])
		if !ok {
			return nil, langerr.New(langerr.Type, "append: argument %d is not a proper list", i+1)
		}
		for j := len(elems) - 1; j >= 0; j-- {
			result = value.Cons(elems[j], result)
		}
	}
	return result, nil
}

func reverseProc(args []value.Value) (value.Value, error) {
	elems, ok := value.ListToSlice(args[0])
	if !ok {
		return nil, typeErr("reverse", args[0])
	}
	var result value.Value = value.Nil
	for _, e := range elems {
		result = value.Cons(e, result)
	}
	return result, nil
}

func listTail(args []value.Value) (value.Value, error) {
	k, ok := args[1].(value.Fixnum)
	if !ok {
		return nil, typeErr("list-tail", args[1])
	}
	v := args[0]
	for i := value.Fixnum(0); i < k; i++ {
		p, ok := v.(*value.Pair)
		if !ok {
			return nil, langerr.New(langerr.Type, "list-tail: list too short")
		}
		v = p.Cdr
	}
	return v, nil
}

func listRef(args []value.Value) (value.Value, error) {
	tail, err := listTail(args)
	if err != nil {
		return nil, err
	}
	p, ok := tail.(*value.Pair)
	if !ok {
		return nil, langerr.New(langerr.Type, "list-ref: index out of range")
	}
	return p.Car, nil
}

func listCopy(args []value.Value) (value.Value, error) {
	elems, ok := value.ListToSlice(args[0])
	if !ok {
		return args[0], nil
	}
	return value.List(elems...), nil
}

func memberGeneric(pred func(a, b value.Value) bool) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		v := args[1]
		for {
			p, ok := v.(*value.Pair)
			if !ok {
				return value.Boolean(false), nil
			}
			if pred(args[0], p.Car) {
				return p, nil
			}
			v = p.Cdr
		}
	}
}

func assocGeneric(pred func(a, b value.Value) bool) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		v := args[1]
		for {
			p, ok := v.(*value.Pair)
			if !ok {
				return value.Boolean(false), nil
			}
			entry, ok := p.Car.(*value.Pair)
			if ok && pred(args[0], entry.Car) {
				return entry, nil
			}
			v = p.Cdr
		}
	}
}

// mapProc and forEachProc need an Applier to invoke their procedure
// argument; install.go closes over the Thread-implementing value passed to
// Install and binds these as ordinary *value.NativeProc, same as every
// other primitive (unlike map/for-each analogues that would need direct VM-
// frame access, which neither does).
func mapProc(ap Applier) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		proc, ok := args[0].(value.Callable)
		if !ok {
			return nil, typeErr("map", args[0])
		}
		lists := make([][]value.Value, len(args)-1)
		n := -1
		for i, l := range args[1:] {
			elems, ok := value.ListToSlice(l)
			if !ok {
				return nil, langerr.New(langerr.Type, "map: argument %d is not a proper list", i+2)
			}
			lists[i] = elems
			if n == -1 || len(elems) < n {
				n = len(elems)
			}
		}
		out := make([]value.Value, n)
		for i := 0; i < n; i++ {
			callArgs := make([]value.Value, len(lists))
			for j, l := range lists {
				callArgs[j] = l[i]
			}
			r, err := ap.Apply(proc, callArgs)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return value.List(out...), nil
	}
}

func forEachProc(ap Applier) func([]value.Value) (value.Value, error) {
	mapped := mapProc(ap)
	return func(args []value.Value) (value.Value, error) {
		_, err := mapped(args)
		return value.Unspecified, err
	}
}
