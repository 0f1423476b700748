// Package env implements the lexical environment model of spec.md §4.2: a
// chain of frames mapping identifier-keys (symbols, or the syntactic
// closures minted by the macro expander as hygienic binding sites) to
// bindings, plus the global table shared by all top-level evaluation.
//
// The frame chain built here is the *compile-time* environment consulted by
// the expander and the compiler to resolve identifiers and to decide between
// a value reference, a macro use, or a special form. It is distinct from (but
// referenced by) the virtual machine's runtime activation frames in
// lang/machine, which only need the depth/slot addressing this package
// computes, not the identifier bookkeeping itself.
package env

import (
	"github.com/dolthub/swiss"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// Kind classifies what an identifier is bound to.
type Kind int

const (
	// Unbound is the zero Kind; Resolve reports an identifier with no binding
	// anywhere in the chain by returning a nil *Binding and false.
	Unbound Kind = iota
	// ValueSlot is a mutable value binding: a local (lexical), or a global.
	ValueSlot
	// Macro is a transformer binding (spec.md §4.3).
	Macro
	// SpecialForm is a compiler-recognized keyword (quote, if, lambda, ...).
	SpecialForm
	// Reserved is a forward reference promised by the compiler for an
	// internal define not yet initialized (spec.md §4.4).
	Reserved
)

// Cell is the mutable storage backing a ValueSlot binding. Locals are
// addressed by the compiler via depth/slot and materialize as slots of the
// activation's environment at run time (see lang/machine); only the global frame's bindings
// hold a live Cell at compile time, since the global table is shared and
// populated incrementally as forms are evaluated.
type Cell struct {
	V value.Value
}

// Cell implements value.Value so the compiler can reference it directly
// from a Proto's constant pool (OpGetGlobal/OpSetGlobal/OpDefineGlobal
// resolve the target cell once at compile time instead of by name at every
// access); it is never a value the data language itself produces or
// exposes to `quote`.
func (c *Cell) Type() string   { return "cell" }
func (c *Cell) String() string { return "#<cell>" }

// Binding records what a single identifier-key in a single Frame resolves
// to. Exactly one of the kind-specific fields is meaningful, selected by
// Kind.
type Binding struct {
	Kind Kind
	Name string // the identifier's symbol name, for diagnostics

	// ValueSlot (local, non-global): address assigned by the compiler once it
	// lays out the enclosing function's locals. The compiler never sets
	// IsCell: no local is promoted to a separate cell, since every local
	// lives in its activation's environment, which closures capture.
	Depth, Slot int
	IsCell      bool

	// ValueSlot (global only): the live storage cell. Global bindings are
	// resolved by name at compile time but fetched by the VM at run time via
	// GET-GLOBAL/SET-GLOBAL, so Cell here only matters before/at definition
	// time (eval evaluating top-level forms one at a time).
	Global *Cell

	// Macro: the transformer to invoke, and the environment in which
	// define-syntax/letrec-syntax elaborated it (the macro environment that
	// sc-macro-transformer/rsc-macro-transformer/er-macro-transformer close
	// over).
	Transformer value.Callable
	DefEnv      *Frame

	// SpecialForm: which keyword the compiler should treat this as.
	FormName string
}

// Frame is one lexical scope. Frames form a parent-linked chain; the root of
// every chain is the shared global frame.
type Frame struct {
	parent   *Frame
	global   bool
	local    map[value.Value]*Binding // small scopes: plain map
	globalTb *swiss.Map[value.Value, *Binding]
}

// NewGlobal creates the shared global frame. There is exactly one per
// running interpreter; it is never copied, since every module shares it
// (spec.md §3: "the global frame is shared across all top-level
// evaluation").
func NewGlobal() *Frame {
	return &Frame{global: true, globalTb: swiss.NewMap[value.Value, *Binding](512)}
}

// NewChild creates a fresh lexical frame whose parent is f. Used for lambda
// bodies and let-syntax/letrec-syntax bodies; internal defines bind in the
// frame of the body they appear in.
func (f *Frame) NewChild() *Frame {
	return &Frame{parent: f, local: make(map[value.Value]*Binding, 4)}
}

// Parent returns the enclosing frame, or nil for the global frame.
func (f *Frame) Parent() *Frame { return f.parent }

// IsGlobal reports whether f is the shared global frame.
func (f *Frame) IsGlobal() bool { return f.global }

// DefineLocal installs a new binding in f only, keyed by the exact identifier
// value key (a *value.Symbol for ordinary bindings, or a *SyntacticClosure
// for a hygienic binding site introduced by a macro — spec.md §4.3). It
// overwrites any existing binding for the same key in this frame (shadowing
// is by frame nesting, not by rejecting redefinition in the same frame,
// matching internal-define and REPL top-level redefinition semantics).
func (f *Frame) DefineLocal(key value.Value, b *Binding) {
	if f.global {
		f.globalTb.Put(key, b)
		return
	}
	f.local[key] = b
}

// lookupExact looks only for a binding keyed by the exact identifier value
// (by Go interface equality, i.e. pointer identity for symbols and syntactic
// closures), walking the frame chain starting at f. This implements the
// "binding introduced at a hygienic binding site is addressable only by
// identifier-equal occurrences of that exact identifier" rule.
func lookupExact(f *Frame, key value.Value) (*Binding, bool) {
	for fr := f; fr != nil; fr = fr.parent {
		if fr.global {
			if b, ok := fr.globalTb.Get(key); ok {
				return b, true
			}
			continue
		}
		if b, ok := fr.local[key]; ok {
			return b, true
		}
	}
	return nil, false
}

// lookupSymbol looks for a binding keyed by the plain symbol sym, walking
// the frame chain starting at f.
func lookupSymbol(f *Frame, sym *value.Symbol) (*Binding, bool) {
	return lookupExact(f, sym)
}
