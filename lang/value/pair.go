package value

import "fmt"

// Pair is a mutable cons cell. car and cdr are independently reassignable
// (set-car!/set-cdr!) and cycles are permitted; the Go garbage collector
// traces them like any other pointer graph (spec.md §3 invariant).
type Pair struct {
	Car, Cdr Value
}

func (p *Pair) Type() string { return "pair" }

// Trace implements heap.Tracer: a pair's only reachable children are its
// car and cdr.
func (p *Pair) Trace(visit func(interface{})) {
	visit(p.Car)
	visit(p.Cdr)
}

func (p *Pair) String() string {
	return writeList(p, 0)
}

// writeList renders a pair chain, switching to dotted notation for improper
// tails and bailing out past depth (which counts both nesting through car
// and elements along cdr) to avoid hanging on pair chains that cycle through
// car or cdr. String() is used for error messages and is also what the
// `write` primitive prints.
func writeList(v Value, depth int) string {
	if depth > 100000 {
		return "..."
	}
	p, ok := v.(*Pair)
	if !ok {
		return v.String()
	}
	s := "(" + writeList(p.Car, depth+1)
	rest := p.Cdr
	for {
		if IsNil(rest) {
			return s + ")"
		}
		if next, ok := rest.(*Pair); ok {
			depth++
			if depth > 100000 {
				return s + " ...)"
			}
			s += " " + writeList(next.Car, depth+1)
			rest = next.Cdr
			continue
		}
		return s + " . " + rest.String() + ")"
	}
}

// Cons allocates a new pair.
func Cons(car, cdr Value) *Pair { return &Pair{Car: car, Cdr: cdr} }

// List builds a proper list from elems.
func List(elems ...Value) Value {
	var result Value = Nil
	for i := len(elems) - 1; i >= 0; i-- {
		result = Cons(elems[i], result)
	}
	return result
}

// ListToSlice collects a proper list into a slice. It returns ok=false if v
// is not a proper, finite list.
func ListToSlice(v Value) (elems []Value, ok bool) {
	slow, fast := v, v
	for {
		if IsNil(fast) {
			return elems, true
		}
		p, isPair := fast.(*Pair)
		if !isPair {
			return elems, false
		}
		elems = append(elems, p.Car)
		fast = p.Cdr

		if IsNil(fast) {
			return elems, true
		}
		p2, isPair2 := fast.(*Pair)
		if !isPair2 {
			return elems, false
		}
		elems = append(elems, p2.Car)
		fast = p2.Cdr

		slowP := slow.(*Pair)
		slow = slowP.Cdr
		if slow == fast {
			// cycle detected partway through collection: give up, not a proper
			// list.
			return nil, false
		}
	}
}

// IsList reports whether v is a proper, finite (possibly cyclic-safe check)
// list, using Floyd cycle detection per the decision recorded in
// SPEC_FULL.md for spec.md's open question on list? and cycles: a cyclic
// chain is reported as not a (proper) list.
func IsList(v Value) bool {
	slow, fast := v, v
	for {
		if IsNil(fast) {
			return true
		}
		fp, ok := fast.(*Pair)
		if !ok {
			return false
		}
		fast = fp.Cdr
		if IsNil(fast) {
			return true
		}
		fp2, ok := fast.(*Pair)
		if !ok {
			return false
		}
		fast = fp2.Cdr
		slow = slow.(*Pair).Cdr
		if slow == fast {
			return false
		}
	}
}

// Length returns the length of a proper list, or an error if v is improper
// or circular.
func Length(v Value) (int, error) {
	n := 0
	for {
		if IsNil(v) {
			return n, nil
		}
		p, ok := v.(*Pair)
		if !ok {
			return 0, fmt.Errorf("length: improper list")
		}
		n++
		v = p.Cdr
		if n > 1<<30 {
			return 0, fmt.Errorf("length: circular list")
		}
	}
}
