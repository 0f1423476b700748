package env

import (
	"golang.org/x/exp/slices"

	"github.com/peroxide-lang/peroxide/lang/value"
)

// GlobalNames returns every name currently bound in the global frame,
// sorted, for deterministic diagnostic output. f need not itself be the
// global frame; it walks up to find it.
func (f *Frame) GlobalNames() []string {
	g := f
	for !g.global {
		if g.parent == nil {
			return nil
		}
		g = g.parent
	}
	names := make([]string, 0, g.globalTb.Count())
	g.globalTb.Iter(func(k value.Value, _ *Binding) bool {
		names = append(names, k.String())
		return false
	})
	slices.Sort(names)
	return names
}
