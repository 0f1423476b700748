package machine

import (
	"github.com/peroxide-lang/peroxide/lang/langerr"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// dynWindPoint is one node of the tree of dynamic-wind activations spec.md
// §4.5 describes. Parent links form a persistent (never-mutated-in-place)
// structure: pushing a new point just allocates a node pointing at whatever
// was the thread's current point, and popping one just steps back to its
// parent, so a Continuation can hold on to the point active at capture time
// (Thread.windTop at that moment) without copying anything, and several
// continuations can share the same ancestry. That persistence is what makes
// reenterWinds below possible: given any two points, walking each one's
// parent chain back to the root gives the full root-to-point path, and the
// longest common prefix of two paths is their common ancestor.
type dynWindPoint struct {
	before, after value.Callable
	parent        *dynWindPoint
	depth         int
}

// windPush and windPop back the %wind-push/%wind-pop primitives
// lang/prelude's dynamic-wind definition calls. They are deliberately
// trivial bookkeeping -- allocate or step back one node -- and never invoke
// a Scheme procedure themselves, so dynamic-wind's own before/thunk/after
// calls stay ordinary compiled calls on the thread's own frame stack rather
// than native Go recursion. That property is exactly what lets a
// continuation captured inside a dynamic-wind's thunk be re-entered later,
// after the original dynamic-wind call has already returned normally.
func (t *Thread) windPush(before, after value.Callable) {
	depth := 0
	if t.windTop != nil {
		depth = t.windTop.depth + 1
	}
	t.windTop = &dynWindPoint{before: before, after: after, parent: t.windTop, depth: depth}
}

func (t *Thread) windPop() error {
	if t.windTop == nil {
		return langerr.New(langerr.Type, "%wind-pop: no active dynamic-wind point")
	}
	t.windTop = t.windTop.parent
	return nil
}

// windChainToRoot returns p's ancestry as a root-first slice (p itself last),
// the shape reenterWinds needs to find a common ancestor by comparing two
// chains element by element from the front.
func windChainToRoot(p *dynWindPoint) []*dynWindPoint {
	chain := make([]*dynWindPoint, 0, p.depthOrZero()+1)
	for ; p != nil; p = p.parent {
		chain = append(chain, p)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func (p *dynWindPoint) depthOrZero() int {
	if p == nil {
		return 0
	}
	return p.depth
}

// reenterWinds transitions the thread's active wind point from its current
// one to target: ascend from the current point up to the common ancestor of
// current and target, running each point's after-thunk, then descend from
// that ancestor back down to target, running each point's before-thunk.
// This is spec.md §4.5's tree-traversal description in full -- not just the
// ascend half a one-shot escape-only implementation needs, but also the
// descend half required to re-enter a continuation captured inside a
// dynamic-wind whose extent has since been exited (spec.md §8 scenario 4).
// When target is an ancestor of (or equal to) the current point, the
// descend loop is simply empty and this reduces to the old escape-only
// unwind.
func (t *Thread) reenterWinds(target *dynWindPoint) error {
	curChain := windChainToRoot(t.windTop)
	targetChain := windChainToRoot(target)

	i := 0
	for i < len(curChain) && i < len(targetChain) && curChain[i] == targetChain[i] {
		i++
	}

	for j := len(curChain) - 1; j >= i; j-- {
		if _, err := t.Apply(curChain[j].after, nil); err != nil {
			return err
		}
	}
	for j := i; j < len(targetChain); j++ {
		if _, err := t.Apply(targetChain[j].before, nil); err != nil {
			return err
		}
	}
	t.windTop = target
	return nil
}
