package primitives

import (
	"github.com/peroxide-lang/peroxide/lang/langerr"
	"github.com/peroxide-lang/peroxide/lang/value"
)

func isVector(args []value.Value) (value.Value, error) {
	_, ok := args[0].(*value.Vector)
	return value.Boolean(ok), nil
}

func makeVector(args []value.Value) (value.Value, error) {
	n, ok := args[0].(value.Fixnum)
	if !ok {
		return nil, typeErr("make-vector", args[0])
	}
	var fill value.Value = value.Unspecified
	if len(args) == 2 {
		fill = args[1]
	}
	elems := make([]value.Value, n)
	for i := range elems {
		elems[i] = fill
	}
	return value.NewVector(elems), nil
}

func vectorProc(args []value.Value) (value.Value, error) {
	elems := make([]value.Value, len(args))
	copy(elems, args)
	return value.NewVector(elems), nil
}

func vectorLength(args []value.Value) (value.Value, error) {
	v, ok := args[0].(*value.Vector)
	if !ok {
		return nil, typeErr("vector-length", args[0])
	}
	return value.Fixnum(v.Len()), nil
}

func vectorRef(args []value.Value) (value.Value, error) {
	v, ok := args[0].(*value.Vector)
	if !ok {
		return nil, typeErr("vector-ref", args[0])
	}
	idx, ok := args[1].(value.Fixnum)
	if !ok {
		return nil, typeErr("vector-ref", args[1])
	}
	r, err := v.Ref(int(idx))
	if err != nil {
		return nil, langerr.New(langerr.Type, "%s", err.Error())
	}
	return r, nil
}

func vectorSet(args []value.Value) (value.Value, error) {
	v, ok := args[0].(*value.Vector)
	if !ok {
		return nil, typeErr("vector-set!", args[0])
	}
	idx, ok := args[1].(value.Fixnum)
	if !ok {
		return nil, typeErr("vector-set!", args[1])
	}
	if err := v.Set(int(idx), args[2]); err != nil {
		return nil, langerr.New(langerr.Type, "%s", err.Error())
	}
	return value.Unspecified, nil
}

func vectorToList(args []value.Value) (value.Value, error) {
	v, ok := args[0].(*value.Vector)
	if !ok {
		return nil, typeErr("vector->list", args[0])
	}
	return value.List(v.Elems...), nil
}

func listToVector(args []value.Value) (value.Value, error) {
	elems, ok := value.ListToSlice(args[0])
	if !ok {
		return nil, typeErr("list->vector", args[0])
	}
	return value.NewVector(elems), nil
}

func vectorFill(args []value.Value) (value.Value, error) {
	v, ok := args[0].(*value.Vector)
	if !ok {
		return nil, typeErr("vector-fill!", args[0])
	}
	for i := range v.Elems {
		v.Elems[i] = args[1]
	}
	return value.Unspecified, nil
}

func vectorCopy(args []value.Value) (value.Value, error) {
	v, ok := args[0].(*value.Vector)
	if !ok {
		return nil, typeErr("vector-copy", args[0])
	}
	start, end := 0, v.Len()
	if len(args) >= 2 {
		s, ok := args[1].(value.Fixnum)
		if !ok {
			return nil, typeErr("vector-copy", args[1])
		}
		start = int(s)
	}
	if len(args) == 3 {
		e, ok := args[2].(value.Fixnum)
		if !ok {
			return nil, typeErr("vector-copy", args[2])
		}
		end = int(e)
	}
	if start < 0 || end > v.Len() || start > end {
		return nil, langerr.New(langerr.Type, "vector-copy: index out of range")
	}
	elems := make([]value.Value, end-start)
	copy(elems, v.Elems[start:end])
	return value.NewVector(elems), nil
}

func vectorMap(ap Applier) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		proc, ok := args[0].(value.Callable)
		if !ok {
			return nil, typeErr("vector-map", args[0])
		}
		vecs := make([]*value.Vector, len(args)-1)
		n := -1
		for i, a := range args[1:] {
			v, ok := a.(*value.Vector)
			if !ok {
				return nil, typeErr("vector-map", a)
			}
			vecs[i] = v
			if n == -1 || v.Len() < n {
				n = v.Len()
			}
		}
		out := make([]value.Value, n)
		for i := 0; i < n; i++ {
			callArgs := make([]value.Value, len(vecs))
			for j, v := range vecs {
				callArgs[j] = v.Elems[i]
			}
			r, err := ap.Apply(proc, callArgs)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return value.NewVector(out), nil
	}
}

func vectorForEach(ap Applier) func([]value.Value) (value.Value, error) {
	mapped := vectorMap(ap)
	return func(args []value.Value) (value.Value, error) {
		_, err := mapped(args)
		return value.Unspecified, err
	}
}
