package machine

import (
	"github.com/peroxide-lang/peroxide/lang/langerr"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// ApplyProc is the sentinel bound to `apply`: (apply proc arg1 ... args)
// calls proc with arg1 ... plus the elements of the final list argument
// spread in as individual arguments.
type ApplyProc struct{}

func (*ApplyProc) Type() string   { return "procedure" }
func (*ApplyProc) String() string { return "#<procedure apply>" }
func (*ApplyProc) Name() string   { return "apply" }

func (t *Thread) invokeApply(args []value.Value) (value.Value, error) {
	if len(args) < 2 {
		return nil, langerr.New(langerr.Arity, "apply: expected a procedure and at least one argument")
	}
	proc, ok := args[0].(value.Callable)
	if !ok {
		return nil, langerr.New(langerr.Type, "apply: first argument is not a procedure")
	}
	spread, ok := value.ListToSlice(args[len(args)-1])
	if !ok {
		return nil, langerr.New(langerr.Type, "apply: last argument is not a proper list")
	}
	flat := make([]value.Value, 0, len(args)-2+len(spread))
	flat = append(flat, args[1:len(args)-1]...)
	flat = append(flat, spread...)
	return t.Apply(proc, flat)
}

// ValuesProc is the sentinel bound to `values`: bundles its arguments into
// a MultipleValues tuple, or returns the single argument unwrapped for the
// exactly-one-value case (so (values x) behaves exactly like x everywhere
// that a single value is expected, per spec.md §5.7).
type ValuesProc struct{}

func (*ValuesProc) Type() string   { return "procedure" }
func (*ValuesProc) String() string { return "#<procedure values>" }
func (*ValuesProc) Name() string   { return "values" }

func (t *Thread) invokeValues(args []value.Value) (value.Value, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return &value.MultipleValues{Vals: args}, nil
}

// CallWithValuesProc is the sentinel bound to call-with-values: calls its
// producer thunk, then calls its consumer with whatever values the
// producer returned (unwrapping a MultipleValues tuple into individual
// arguments, or treating a single ordinary value as one argument).
type CallWithValuesProc struct{}

func (*CallWithValuesProc) Type() string   { return "procedure" }
func (*CallWithValuesProc) String() string { return "#<procedure call-with-values>" }
func (*CallWithValuesProc) Name() string   { return "call-with-values" }

func (t *Thread) invokeCallWithValues(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, langerr.ArityError("call-with-values", 2, len(args))
	}
	producer, ok1 := args[0].(value.Callable)
	consumer, ok2 := args[1].(value.Callable)
	if !ok1 || !ok2 {
		return nil, langerr.New(langerr.Type, "call-with-values: both arguments must be procedures")
	}
	produced, err := t.Apply(producer, nil)
	if err != nil {
		return nil, err
	}
	if mv, ok := produced.(*value.MultipleValues); ok {
		return t.Apply(consumer, mv.Vals)
	}
	return t.Apply(consumer, []value.Value{produced})
}
