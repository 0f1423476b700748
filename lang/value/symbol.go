package value

import (
	"fmt"
	"sync"

	"github.com/dolthub/swiss"
)

// Symbol is an interned identifier name: two symbols are pointer-equal iff
// their textual names are equal (spec.md §3 invariant). Symbols are never
// collected; they live for the lifetime of the process.
type Symbol struct {
	Name string
}

func (s *Symbol) String() string { return s.Name }
func (*Symbol) Type() string     { return "symbol" }

var (
	internMu    sync.Mutex
	internTable = swiss.NewMap[string, *Symbol](512)
)

// Intern returns the unique *Symbol for name, creating it on first use. This
// is the only way to construct a Symbol, guaranteeing the pointer-identity
// invariant.
func Intern(name string) *Symbol {
	internMu.Lock()
	defer internMu.Unlock()
	if s, ok := internTable.Get(name); ok {
		return s
	}
	s := &Symbol{Name: name}
	internTable.Put(name, s)
	return s
}

var gensymMu sync.Mutex
var gensymCounter int

// Gensym returns a symbol that is guaranteed not to collide with any
// interned symbol from source text: its name carries a prefix that cannot
// be produced by the reader (a space), followed by a process-wide counter.
// It is still an ordinary interned symbol (pointer-comparable, usable as a
// hash key), it is just not writable back as valid source.
func Gensym(base string) *Symbol {
	gensymMu.Lock()
	n := gensymCounter
	gensymCounter++
	gensymMu.Unlock()
	if base == "" {
		base = "g"
	}
	return Intern(fmt.Sprintf(" %s~%d", base, n))
}
