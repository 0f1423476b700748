// Package machine implements the bytecode interpreter of spec.md §5: a
// stack-based virtual machine executing the instruction streams
// lang/compiler produces, with proper (space-efficient) tail calls,
// first-class continuations integrated with dynamic-wind, and the
// multiple-values protocol.
package machine

import (
	"sync/atomic"

	"github.com/peroxide-lang/peroxide/lang/compiler"
	"github.com/peroxide-lang/peroxide/lang/env"
	"github.com/peroxide-lang/peroxide/lang/langerr"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// Env is a runtime activation environment: one per lambda invocation,
// linked to the environment captured by the closure being called (its
// *lexical* parent, not its caller), which is how lang/compiler's
// depth/slot addressing remains correct regardless of call nesting.
type Env struct {
	parent *Env
	locals []value.Value
}

func (e *Env) at(depth, slot int) *value.Value {
	for ; depth > 0; depth-- {
		e = e.parent
	}
	return &e.locals[slot]
}

// Closure is a compiled lambda value: its Proto plus the environment it
// closed over.
type Closure struct {
	Proto *compiler.Proto
	Env   *Env
}

func (c *Closure) Type() string { return "procedure" }
func (c *Closure) String() string {
	if c.Proto.Name != "" {
		return "#<procedure " + c.Proto.Name + ">"
	}
	return "#<procedure>"
}
func (c *Closure) Name() string { return c.Proto.Name }

// Trace implements heap.Tracer.
func (c *Closure) Trace(visit func(interface{})) {
	for e := c.Env; e != nil; e = e.parent {
		for _, v := range e.locals {
			if v != nil {
				visit(v)
			}
		}
	}
}

// frame is one call-stack entry: which Proto is executing, at which
// instruction, against which Env.
type frame struct {
	proto *compiler.Proto
	ip    int
	env   *Env
}

// Thread is one execution context: its value stack, call-frame stack, and
// dynamic-wind point chain. Programs in this interpreter are single
// threaded (spec.md explicitly scopes out concurrent/incremental GC), so
// exactly one Thread is ever running at a time, but the type is kept
// distinct from a package-level global to keep the VM's state explicit and
// testable.
type Thread struct {
	stack       []value.Value
	frames      []frame
	windTop     *dynWindPoint // innermost active dynamic-wind point, nil if none
	global      *env.Frame
	interrupted atomic.Bool
}

// NewThread creates a Thread sharing the given global environment (so
// top-level defines made by successively compiled forms are visible to
// later ones, matching the REPL/file-evaluation model of spec.md §4.4).
func NewThread(global *env.Frame) *Thread {
	return &Thread{global: global}
}

// Interrupt sets the process-level interrupt flag of spec.md §5, polled at
// call instructions and backward jumps. Safe to call from a signal handler
// goroutine concurrently with a running Thread, since the VM itself is
// otherwise single-threaded.
func (t *Thread) Interrupt() { t.interrupted.Store(true) }

func (t *Thread) checkInterrupt() error {
	if t.interrupted.CompareAndSwap(true, false) {
		return langerr.New(langerr.Interrupted, "evaluation interrupted")
	}
	return nil
}

func (t *Thread) push(v value.Value) { t.stack = append(t.stack, v) }

func (t *Thread) pop() value.Value {
	v := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	return v
}

func (t *Thread) popN(n int) []value.Value {
	out := make([]value.Value, n)
	copy(out, t.stack[len(t.stack)-n:])
	t.stack = t.stack[:len(t.stack)-n]
	return out
}

// RunProto runs p (a zero-argument Proto, e.g. a compiled top-level form or
// a define-syntax transformer-constructor expression) to completion on a
// fresh frame stack and returns its single result value. Panics from
// within Go-native code are not recovered here; callers (the REPL/file
// runner) are expected to recover unexpected panics at the top level the
// way the teacher's own CLI entry point does.
func (t *Thread) RunProto(p *compiler.Proto) (value.Value, error) {
	savedFrames := t.frames
	savedStackLen := len(t.stack)
	t.frames = []frame{{proto: p, ip: 0, env: &Env{locals: make([]value.Value, p.NumLocals)}}}
	result, err := t.run()
	t.frames = savedFrames
	if err != nil {
		t.stack = t.stack[:savedStackLen]
		return nil, err
	}
	return result, nil
}

// Apply implements expander.Evaluator and compiler.Evaluator's procedure
// invocation: calls proc with args and runs it to completion. Used by
// primitives like `map`, `apply`, and macro transformers.
func (t *Thread) Apply(proc value.Callable, args []value.Value) (value.Value, error) {
	switch p := proc.(type) {
	case *value.NativeProc:
		return p.Fn(args)
	case *Closure:
		savedFrames := t.frames
		newFrame, err := t.makeCallFrame(p, args)
		if err != nil {
			return nil, err
		}
		t.frames = []frame{newFrame}
		result, err := t.run()
		t.frames = savedFrames
		return result, err
	case *CallCCProc:
		return t.invokeCallCCViaApply(args)
	case *ApplyProc:
		return t.invokeApply(args)
	case *ValuesProc:
		return t.invokeValues(args)
	case *CallWithValuesProc:
		return t.invokeCallWithValues(args)
	case *Continuation:
		return t.invokeContinuationViaApply(p, args)
	default:
		return nil, langerr.New(langerr.Type, "attempt to call a non-procedure")
	}
}

func (t *Thread) makeCallFrame(c *Closure, args []value.Value) (frame, error) {
	p := c.Proto
	locals := make([]value.Value, p.NumLocals)
	if p.Variadic {
		fixed := p.NumParams - 1
		if len(args) < fixed {
			return frame{}, langerr.ArityError(c.Name(), fixed, len(args))
		}
		copy(locals[:fixed], args[:fixed])
		locals[fixed] = value.List(args[fixed:]...)
	} else {
		if len(args) != p.NumParams {
			return frame{}, langerr.ArityError(c.Name(), p.NumParams, len(args))
		}
		copy(locals, args)
	}
	return frame{proto: p, ip: 0, env: &Env{parent: c.Env, locals: locals}}, nil
}
