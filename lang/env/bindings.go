package env

import "github.com/peroxide-lang/peroxide/lang/value"

// DefineSpecialForm registers name as a compiler-recognized keyword in f
// (normally the global frame, during interpreter bootstrap).
func (f *Frame) DefineSpecialForm(name string) {
	f.DefineLocal(symbolKey(name), &Binding{Kind: SpecialForm, Name: name, FormName: name})
}

// DefineMacro registers a macro transformer for name, elaborated in defEnv
// (the macro environment visible at the define-syntax/letrec-syntax site).
func (f *Frame) DefineMacro(name string, transformer value.Callable, defEnv *Frame) {
	f.DefineLocal(symbolKey(name), &Binding{Kind: Macro, Name: name, Transformer: transformer, DefEnv: defEnv})
}

// DefineGlobalValue installs or updates a global value binding, creating the
// backing Cell on first definition (define) and reusing it on redefinition
// (REPL re-evaluation of a top-level define), matching how a running VM's
// GET-GLOBAL continues to see updates through the same Cell.
func (f *Frame) DefineGlobalValue(name string, v value.Value) *Cell {
	if !f.global {
		panic("DefineGlobalValue called on non-global frame")
	}
	if existing, ok := f.globalTb.Get(symbolKey(name)); ok && existing.Kind == ValueSlot {
		existing.Global.V = v
		return existing.Global
	}
	cell := &Cell{V: v}
	f.DefineLocal(symbolKey(name), &Binding{Kind: ValueSlot, Name: name, Global: cell})
	return cell
}

// DefineReservedLocal installs the "undefined but reserved" forward
// reference used by the internal-define letrec-shaped prologue (spec.md
// §4.4): a local binding that exists (so later sibling defines can refer to
// its address) but whose access before the initializer runs raises an
// uninitialized error. key is the identifier value used at the binding
// site, which may be a syntactic closure for a hygienically introduced
// local.
func (f *Frame) DefineReservedLocal(key value.Value, name string, depth, slot int) *Binding {
	b := &Binding{Kind: Reserved, Name: name, Depth: depth, Slot: slot}
	f.DefineLocal(key, b)
	return b
}

// DefineLocalValue installs a lexical value binding (a lambda parameter,
// including those of the lambdas `let` expands to) at the given depth/slot
// address. A reserved internal-define local is not upgraded through here:
// the compiler sets its Binding's Kind to ValueSlot in place.
func (f *Frame) DefineLocalValue(key value.Value, name string, depth, slot int) *Binding {
	b := &Binding{Kind: ValueSlot, Name: name, Depth: depth, Slot: slot}
	f.DefineLocal(key, b)
	return b
}

func symbolKey(name string) value.Value { return value.Intern(name) }
