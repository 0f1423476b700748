// Package primitives implements the native procedure library of spec.md
// §4.6: the fixed-name global bindings every compiled program calls into for
// arithmetic, pairs/lists/vectors/strings/chars/bytevectors, equality, I/O,
// and the handful of VM-adjacent operations (`error`, `eval`, `gensym`) that
// need access to the compiler/machine pipeline rather than just Go math.
//
// Every primitive here is a *value.NativeProc, the same mechanism the
// expander's rename/compare helpers already use; none of them need VM-frame
// access (unlike call/cc, apply, values, and call-with-values, which
// lang/machine implements directly as sentinel Callables for exactly that
// reason).
package primitives

import (
	"fmt"
	"math"

	"github.com/peroxide-lang/peroxide/lang/langerr"
	"github.com/peroxide-lang/peroxide/lang/value"
)

func toInexact(v value.Value) value.Inexact {
	switch n := v.(type) {
	case value.Fixnum:
		return value.Inexact(n)
	case value.Inexact:
		return n
	default:
		return 0
	}
}

func anyInexact(args []value.Value) bool {
	for _, a := range args {
		if _, ok := a.(value.Inexact); ok {
			return true
		}
	}
	return false
}

func checkNumbers(procName string, args []value.Value) error {
	for _, a := range args {
		if _, ok := a.(value.Fixnum); ok {
			continue
		}
		if _, ok := a.(value.Inexact); ok {
			continue
		}
		return langerr.New(langerr.Type, "%s: expected a number, got %s", procName, a.Type())
	}
	return nil
}

func add(args []value.Value) (value.Value, error) {
	if err := checkNumbers("+", args); err != nil {
		return nil, err
	}
	if anyInexact(args) {
		var sum value.Inexact
		for _, a := range args {
			sum += toInexact(a)
		}
		return sum, nil
	}
	var sum value.Fixnum
	for _, a := range args {
		sum += a.(value.Fixnum)
	}
	return sum, nil
}

func sub(args []value.Value) (value.Value, error) {
	if err := checkNumbers("-", args); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, langerr.ArityError("-", 1, 0)
	}
	if anyInexact(args) {
		if len(args) == 1 {
			return -toInexact(args[0]), nil
		}
		r := toInexact(args[0])
		for _, a := range args[1:] {
			r -= toInexact(a)
		}
		return r, nil
	}
	if len(args) == 1 {
		return -args[0].(value.Fixnum), nil
	}
	r := args[0].(value.Fixnum)
	for _, a := range args[1:] {
		r -= a.(value.Fixnum)
	}
	return r, nil
}

func mul(args []value.Value) (value.Value, error) {
	if err := checkNumbers("*", args); err != nil {
		return nil, err
	}
	if anyInexact(args) {
		r := value.Inexact(1)
		for _, a := range args {
			r *= toInexact(a)
		}
		return r, nil
	}
	r := value.Fixnum(1)
	for _, a := range args {
		r *= a.(value.Fixnum)
	}
	return r, nil
}

// div implements spec.md §4.5's promotion rule: division of two exact
// integers yields an exact integer iff it divides evenly, else an inexact
// result; any inexact operand makes the whole computation inexact.
func div(args []value.Value) (value.Value, error) {
	if err := checkNumbers("/", args); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, langerr.ArityError("/", 1, 0)
	}
	if len(args) == 1 {
		args = []value.Value{value.Fixnum(1), args[0]}
	}
	if anyInexact(args) {
		r := toInexact(args[0])
		for _, a := range args[1:] {
			d := toInexact(a)
			if d == 0 {
				return nil, langerr.New(langerr.Arithmetic, "/: division by zero")
			}
			r /= d
		}
		return r, nil
	}
	num := args[0].(value.Fixnum)
	for _, a := range args[1:] {
		d := a.(value.Fixnum)
		if d == 0 {
			return nil, langerr.New(langerr.Arithmetic, "/: division by zero")
		}
		if num%d == 0 {
			num /= d
		} else {
			return value.Inexact(num) / value.Inexact(d), nil
		}
	}
	return num, nil
}

func quotient(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, langerr.ArityError("quotient", 2, len(args))
	}
	a, ok1 := args[0].(value.Fixnum)
	b, ok2 := args[1].(value.Fixnum)
	if !ok1 || !ok2 {
		return nil, langerr.New(langerr.Type, "quotient: expects two exact integers")
	}
	if b == 0 {
		return nil, langerr.New(langerr.Arithmetic, "quotient: division by zero")
	}
	return a / b, nil
}

func remainderProc(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, langerr.ArityError("remainder", 2, len(args))
	}
	a, ok1 := args[0].(value.Fixnum)
	b, ok2 := args[1].(value.Fixnum)
	if !ok1 || !ok2 {
		return nil, langerr.New(langerr.Type, "remainder: expects two exact integers")
	}
	if b == 0 {
		return nil, langerr.New(langerr.Arithmetic, "remainder: division by zero")
	}
	return a % b, nil
}

func modulo(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, langerr.ArityError("modulo", 2, len(args))
	}
	a, ok1 := args[0].(value.Fixnum)
	b, ok2 := args[1].(value.Fixnum)
	if !ok1 || !ok2 {
		return nil, langerr.New(langerr.Type, "modulo: expects two exact integers")
	}
	if b == 0 {
		return nil, langerr.New(langerr.Arithmetic, "modulo: division by zero")
	}
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r, nil
}

func gcdProc(args []value.Value) (value.Value, error) {
	g := value.Fixnum(0)
	for _, a := range args {
		n, ok := a.(value.Fixnum)
		if !ok {
			return nil, langerr.New(langerr.Type, "gcd: expects exact integers")
		}
		if n < 0 {
			n = -n
		}
		g = gcdFixnum(g, n)
	}
	return g, nil
}

func gcdFixnum(a, b value.Fixnum) value.Fixnum {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcmProc(args []value.Value) (value.Value, error) {
	l := value.Fixnum(1)
	for _, a := range args {
		n, ok := a.(value.Fixnum)
		if !ok {
			return nil, langerr.New(langerr.Type, "lcm: expects exact integers")
		}
		if n < 0 {
			n = -n
		}
		if n == 0 {
			return value.Fixnum(0), nil
		}
		l = l / gcdFixnum(l, n) * n
	}
	return l, nil
}

func compareChain(procName string, args []value.Value, cmp func(a, b float64) bool) (value.Value, error) {
	if err := checkNumbers(procName, args); err != nil {
		return nil, err
	}
	for i := 0; i+1 < len(args); i++ {
		a := float64(toInexact(args[i]))
		b := float64(toInexact(args[i+1]))
		if !cmp(a, b) {
			return value.Boolean(false), nil
		}
	}
	return value.Boolean(true), nil
}

func absProc(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, langerr.ArityError("abs", 1, len(args))
	}
	switch n := args[0].(type) {
	case value.Fixnum:
		if n < 0 {
			return -n, nil
		}
		return n, nil
	case value.Inexact:
		return value.Inexact(math.Abs(float64(n))), nil
	default:
		return nil, langerr.New(langerr.Type, "abs: expected a number")
	}
}

func minMax(procName string, args []value.Value, pick func(a, b float64) bool) (value.Value, error) {
	if len(args) == 0 {
		return nil, langerr.ArityError(procName, 1, 0)
	}
	if err := checkNumbers(procName, args); err != nil {
		return nil, err
	}
	best := args[0]
	inexact := anyInexact(args)
	for _, a := range args[1:] {
		if pick(float64(toInexact(a)), float64(toInexact(best))) {
			best = a
		}
	}
	if inexact {
		return toInexact(best), nil
	}
	return best, nil
}

func exptProc(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, langerr.ArityError("expt", 2, len(args))
	}
	base, baseInexact := args[0].(value.Inexact)
	exp, expInexact := args[1].(value.Inexact)
	if !baseInexact && !expInexact {
		b, ok1 := args[0].(value.Fixnum)
		e, ok2 := args[1].(value.Fixnum)
		if ok1 && ok2 && e >= 0 {
			r := value.Fixnum(1)
			for i := value.Fixnum(0); i < e; i++ {
				r *= b
			}
			return r, nil
		}
	}
	if !baseInexact {
		base = toInexact(args[0])
	}
	if !expInexact {
		exp = toInexact(args[1])
	}
	return value.Inexact(math.Pow(float64(base), float64(exp))), nil
}

func roundingProc(name string, f func(float64) float64) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, langerr.ArityError(name, 1, len(args))
		}
		switch n := args[0].(type) {
		case value.Fixnum:
			return n, nil
		case value.Inexact:
			return value.Inexact(f(float64(n))), nil
		default:
			return nil, langerr.New(langerr.Type, "%s: expected a number", name)
		}
	}
}

func sqrtProc(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, langerr.ArityError("sqrt", 1, len(args))
	}
	if n, ok := args[0].(value.Fixnum); ok && n >= 0 {
		r := value.Fixnum(math.Sqrt(float64(n)))
		if r*r == n {
			return r, nil
		}
	}
	return value.Inexact(math.Sqrt(float64(toInexact(args[0])))), nil
}

func exactToInexact(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, langerr.ArityError("exact->inexact", 1, len(args))
	}
	return toInexact(args[0]), nil
}

func inexactToExact(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, langerr.ArityError("inexact->exact", 1, len(args))
	}
	switch n := args[0].(type) {
	case value.Fixnum:
		return n, nil
	case value.Inexact:
		return value.Fixnum(int64(n)), nil
	default:
		return nil, langerr.New(langerr.Type, "inexact->exact: expected a number")
	}
}

func numberToString(args []value.Value) (value.Value, error) {
	if len(args) == 0 || len(args) > 2 {
		return nil, langerr.New(langerr.Arity, "number->string: expected 1 or 2 arguments")
	}
	radix := 10
	if len(args) == 2 {
		r, ok := args[1].(value.Fixnum)
		if !ok {
			return nil, langerr.New(langerr.Type, "number->string: radix must be an exact integer")
		}
		radix = int(r)
	}
	switch n := args[0].(type) {
	case value.Fixnum:
		return value.NewString(strconvBase(int64(n), radix)), nil
	case value.Inexact:
		return value.NewString(n.String()), nil
	default:
		return nil, langerr.New(langerr.Type, "number->string: expected a number")
	}
}

func strconvBase(n int64, radix int) string {
	if radix == 10 {
		return fmt.Sprintf("%d", n)
	}
	neg := n < 0
	if neg {
		n = -n
	}
	s := toBase(n, radix)
	if neg {
		return "-" + s
	}
	return s
}

func toBase(n int64, radix int) string {
	if n == 0 {
		return "0"
	}
	const digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	var buf []byte
	for n > 0 {
		buf = append([]byte{digits[n%int64(radix)]}, buf...)
		n /= int64(radix)
	}
	return string(buf)
}
