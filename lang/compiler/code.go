package compiler

import "github.com/peroxide-lang/peroxide/lang/value"

// Proto is a compiled lambda body: its instruction stream, constant pool,
// and the shape of its parameter list. A lambda's Proto is stored in the
// enclosing Proto's constant pool (for OpMakeClosure), where the VM wraps it
// in a Closure value that also carries the captured lexical frame; the
// top-level Proto that Compile returns is run directly by Thread.RunProto.
type Proto struct {
	Name      string
	NumParams int
	Variadic  bool // true if the last formal collects extra arguments as a list
	NumLocals int  // total local slots needed, including params
	Code      []Instr
	Consts    []value.Value
	// CellSlots is allocated empty by NewProto and the compiler never fills
	// it: every local, captured or not, lives in its activation's
	// heap-allocated environment (lang/machine's Env), which closures
	// capture by reference.
	CellSlots map[int]bool
	Source    string // originating form's textual position, for diagnostics
}

// NewProto returns an empty Proto ready for instructions to be appended.
func NewProto(name string) *Proto {
	return &Proto{Name: name, CellSlots: map[int]bool{}}
}
