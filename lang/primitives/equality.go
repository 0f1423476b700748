package primitives

import "github.com/peroxide-lang/peroxide/lang/value"

// eqProc implements eq?: pointer identity for heap values, same-immediate
// comparison for booleans/chars/fixnums (matching how most Scheme
// implementations make eq? true for small exact integers without requiring
// it, letting the compiler's constant-pool dedup and symbol interning do the
// work for the common literal-comparison case).
func eqProc(a, b value.Value) bool {
	switch av := a.(type) {
	case value.Fixnum:
		bv, ok := b.(value.Fixnum)
		return ok && av == bv
	case value.Boolean:
		bv, ok := b.(value.Boolean)
		return ok && av == bv
	case value.Char:
		bv, ok := b.(value.Char)
		return ok && av == bv
	default:
		return a == b
	}
}

// eqvProc additionally treats equal-valued inexact numbers as eqv? (eq?
// leaves this unspecified; R5RS requires eqv? to get it right).
func eqvProc(a, b value.Value) bool {
	if av, ok := a.(value.Inexact); ok {
		bv, ok := b.(value.Inexact)
		return ok && av == bv
	}
	return eqProc(a, b)
}

func equalProc(a, b value.Value) bool {
	if eqvProc(a, b) {
		return true
	}
	switch av := a.(type) {
	case *value.Pair:
		bv, ok := b.(*value.Pair)
		return ok && equalProc(av.Car, bv.Car) && equalProc(av.Cdr, bv.Cdr)
	case *value.MutableString:
		bv, ok := b.(*value.MutableString)
		return ok && av.Go() == bv.Go()
	case *value.Vector:
		bv, ok := b.(*value.Vector)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !equalProc(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *value.Bytevector:
		bv, ok := b.(*value.Bytevector)
		if !ok || len(av.B) != len(bv.B) {
			return false
		}
		for i := range av.B {
			if av.B[i] != bv.B[i] {
				return false
			}
		}
		return true
	default:
		if value.IsNil(a) {
			return value.IsNil(b)
		}
		return false
	}
}
