package compiler

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Disassemble renders p's instruction stream as human-readable text, one
// instruction per line, for PEROXIDE_LOG-gated pipeline tracing in
// internal/maincmd. Nested Protos referenced from the constant pool (lambda
// bodies) are rendered after the top-level listing, each under its own
// header, walked in a stable order (sorted by name, falling back to the
// order in which the constant pools were walked for equal names, such as
// anonymous closures) rather than constant-pool order, since pool
// order is an implementation artifact of compile-time dedup and would make
// two structurally identical programs disassemble differently depending on
// what else happened to share the pool.
func Disassemble(p *Proto) string {
	var b strings.Builder
	disassembleOne(&b, p)
	nested := collectNestedProtos(p, nil)
	index := make(map[*Proto]int, len(nested))
	for i, n := range nested {
		index[n] = i
	}
	slices.SortFunc(nested, func(a, b *Proto) int {
		if a.Name != b.Name {
			return strings.Compare(a.Name, b.Name)
		}
		return index[a] - index[b]
	})
	for _, child := range nested {
		b.WriteString("\n")
		disassembleOne(&b, child)
	}
	return b.String()
}

func disassembleOne(b *strings.Builder, p *Proto) {
	name := p.Name
	if name == "" {
		name = "<anonymous>"
	}
	fmt.Fprintf(b, "proto %s (%d params, variadic=%v, %d locals)\n", name, p.NumParams, p.Variadic, p.NumLocals)
	for i, instr := range p.Code {
		fmt.Fprintf(b, "  %4d  %-14s %d\n", i, instr.String(), instr.Operand)
	}
}

func collectNestedProtos(p *Proto, acc []*Proto) []*Proto {
	for _, c := range p.Consts {
		if pv, ok := ProtoOf(c); ok {
			acc = append(acc, pv)
			acc = collectNestedProtos(pv, acc)
		}
	}
	return acc
}
