// Package value defines the tagged value representation manipulated by every
// later stage of the pipeline: the reader produces it, the expander rewrites
// it, the compiler consumes it, and the virtual machine executes against it.
//
// Heap-allocated variants (Pair, Vector, MutableString, Bytevector, Port,
// Promise, Symbol) are ordinary Go pointers: reclamation is delegated to the
// host runtime's garbage collector rather than reimplemented here. The
// lang/heap package layers the allocate/root/guard contract described by the
// specification on top of these plain Go values — see its package doc for
// why a competing tracing collector is not worth hand-rolling in Go.
package value

import "fmt"

// Value is the interface implemented by every datum the machine can hold:
// immediates (Boolean, Char, Fixnum, Inexact, the empty list, Unspecified)
// and heap-allocated variants (Symbol, Pair, MutableString, Vector,
// Bytevector, Port, Procedure, Promise, and the hygiene types in lang/env).
type Value interface {
	// String returns the "write" representation: the form that, read back,
	// produces an equal value (strings are quoted, characters use #\ form).
	String() string
	// Type names the value's type, for error messages and primitives like
	// (error ...) that report a type mismatch.
	Type() string
}

// Boolean is an immediate value. Unlike Lua-family languages, only Boolean(false)
// is false; every other value, including Fixnum(0) and the empty list, is
// truthy.
type Boolean bool

func (b Boolean) String() string {
	if b {
		return "#t"
	}
	return "#f"
}
func (Boolean) Type() string { return "boolean" }

// Truthy implements Scheme's single-false-value truth semantics.
func Truthy(v Value) bool {
	b, ok := v.(Boolean)
	return !ok || bool(b)
}

// Char is an immediate character value, stored as a Unicode code point.
type Char rune

func (c Char) String() string {
	if name, ok := charNames[rune(c)]; ok {
		return "#\\" + name
	}
	return "#\\" + string(rune(c))
}
func (Char) Type() string { return "char" }

var charNames = map[rune]string{
	' ':    "space",
	'\n':   "newline",
	'\t':   "tab",
	'\r':   "return",
	0:      "null",
	0x7f:   "delete",
	0x1b:   "escape",
	0x08:   "backspace",
	0xa0:   "nbsp",
}

var charNamesReverse = func() map[string]rune {
	m := make(map[string]rune, len(charNames))
	for r, n := range charNames {
		m[n] = r
	}
	m["nul"] = 0
	m["altmode"] = 0x1b
	m["linefeed"] = '\n'
	return m
}()

// CharByName resolves a #\name token to its rune; ok is false if name is not
// a known character name and is not a single rune.
func CharByName(name string) (rune, bool) {
	if r, ok := charNamesReverse[name]; ok {
		return r, true
	}
	runes := []rune(name)
	if len(runes) == 1 {
		return runes[0], true
	}
	return 0, false
}

// Fixnum is an exact integer value.
type Fixnum int64

func (f Fixnum) String() string { return fmt.Sprintf("%d", int64(f)) }
func (Fixnum) Type() string     { return "integer" }

// Inexact is an inexact real (floating point) value.
type Inexact float64

func (f Inexact) String() string {
	v := float64(f)
	if v == float64(int64(v)) && !isSpecial(v) {
		return fmt.Sprintf("%d.", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
func (Inexact) Type() string { return "real" }

func isSpecial(v float64) bool {
	return v != v || v > 1e18 || v < -1e18
}

// emptyListType is the type of the empty list '(); its only value is Nil.
type emptyListType struct{}

// Nil is the empty list, the unique value of type emptyListType. It is also
// used as boundary marker when walking pairs.
var Nil Value = emptyListType{}

func (emptyListType) String() string { return "()" }
func (emptyListType) Type() string   { return "null" }

// IsNil reports whether v is the empty list.
func IsNil(v Value) bool {
	_, ok := v.(emptyListType)
	return ok
}

// unspecifiedType is the type of the result of side-effecting operations
// whose value is not specified by R5RS, such as set! or display.
type unspecifiedType struct{}

// Unspecified is the unique value returned when no other value applies.
var Unspecified Value = unspecifiedType{}

func (unspecifiedType) String() string { return "#<unspecified>" }
func (unspecifiedType) Type() string   { return "unspecified" }

// undefinedReservedType marks a local binding that has been reserved by the
// compiler (an internal define's letrec-shaped prologue) but whose
// initializer has not yet run.
type undefinedReservedType struct{}

// UndefinedReserved is the sentinel stored in a binding cell between its
// declaration and the completion of its initializer.
var UndefinedReserved Value = undefinedReservedType{}

func (undefinedReservedType) String() string { return "#<undefined>" }
func (undefinedReservedType) Type() string   { return "undefined" }

// IsUndefinedReserved reports whether v is the forward-reference sentinel.
func IsUndefinedReserved(v Value) bool {
	_, ok := v.(undefinedReservedType)
	return ok
}

// MultipleValues is the distinguished tuple-tagged list used by the `values`
// protocol (spec.md §4.5): a procedure returns it to signal 0 or >=2 return
// values, and call-with-values unpacks it. A single value is never wrapped.
type MultipleValues struct {
	Vals []Value
}

func (m *MultipleValues) String() string {
	s := "#<values"
	for _, v := range m.Vals {
		s += " " + v.String()
	}
	return s + ">"
}
func (*MultipleValues) Type() string { return "values" }
