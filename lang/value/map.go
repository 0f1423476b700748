package value

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// Map is a hash map keyed by eqv?-equal values (immediates compare by value,
// heap objects compare by pointer identity, matching Go's native interface
// equality). The symbol intern table and the global frame use swiss maps
// directly rather than this type.
type Map struct {
	m *swiss.Map[Value, Value]
}

// NewMap returns an empty map with initial capacity for at least size
// entries.
func NewMap(size int) *Map {
	if size < 0 {
		size = 0
	}
	return &Map{m: swiss.NewMap[Value, Value](uint32(size))}
}

func (m *Map) Type() string { return "map" }
func (m *Map) String() string { return fmt.Sprintf("#<map %d entries>", m.m.Count()) }

func (m *Map) Get(k Value) (Value, bool) { return m.m.Get(k) }
func (m *Map) Put(k, v Value)            { m.m.Put(k, v) }
func (m *Map) Delete(k Value) bool       { return m.m.Delete(k) }
func (m *Map) Count() int                { return m.m.Count() }

// Each calls fn for every key/value pair. fn returning false stops iteration
// early.
func (m *Map) Each(fn func(k, v Value) bool) {
	m.m.Iter(func(k, v Value) bool { return !fn(k, v) })
}

// Trace implements heap.Tracer.
func (m *Map) Trace(visit func(interface{})) {
	m.m.Iter(func(k, v Value) bool {
		visit(k)
		visit(v)
		return false
	})
}
