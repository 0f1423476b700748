package machine

import (
	"github.com/peroxide-lang/peroxide/lang/compiler"
	"github.com/peroxide-lang/peroxide/lang/env"
	"github.com/peroxide-lang/peroxide/lang/langerr"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// run executes instructions starting at the top of t.frames until that
// frame (and everything it calls, including further frames pushed by
// OpCall) returns, yielding the single value left on the stack. A compiled
// closure invoked via OpCall does not recurse at the Go level: a new frame
// is pushed and the same loop continues. OpTailCall replaces the top frame
// in place instead, which is the proper-tail-call space guarantee of
// spec.md §5.4.
func (t *Thread) run() (value.Value, error) {
	baseDepth := len(t.frames) - 1
	for {
		if len(t.frames) <= baseDepth {
			return t.pop(), nil
		}
		f := &t.frames[len(t.frames)-1]
		if f.ip >= len(f.proto.Code) {
			return nil, langerr.New(langerr.Arity, "%s: fell off the end of its code", f.proto.Name)
		}
		instr := f.proto.Code[f.ip]
		f.ip++

		switch instr.Op {
		case compiler.OpConst:
			t.push(f.proto.Consts[instr.Operand])

		case compiler.OpGetLocal:
			depth, slot := compiler.DecodeLocal(instr.Operand)
			v := *f.env.at(depth, slot)
			if value.IsUndefinedReserved(v) {
				return nil, langerr.New(langerr.Unbound, "uninitialized variable: used before its definition ran")
			}
			t.push(v)

		case compiler.OpSetLocal:
			depth, slot := compiler.DecodeLocal(instr.Operand)
			*f.env.at(depth, slot) = t.pop()

		case compiler.OpGetGlobal:
			cell := f.proto.Consts[instr.Operand].(*env.Cell)
			if cell.V == nil {
				return nil, langerr.New(langerr.Unbound, "unbound variable")
			}
			t.push(cell.V)

		case compiler.OpSetGlobal:
			cell := f.proto.Consts[instr.Operand].(*env.Cell)
			if cell.V == nil {
				return nil, langerr.New(langerr.Unbound, "unbound variable")
			}
			cell.V = t.pop()

		case compiler.OpDefineGlobal:
			cell := f.proto.Consts[instr.Operand].(*env.Cell)
			cell.V = t.pop()

		case compiler.OpJumpIfFalse:
			v := t.pop()
			if !value.Truthy(v) {
				f.ip = instr.Operand
			}

		case compiler.OpJump:
			if instr.Operand <= f.ip {
				if err := t.checkInterrupt(); err != nil {
					return nil, err
				}
			}
			f.ip = instr.Operand

		case compiler.OpMakeClosure:
			proto, _ := compiler.ProtoOf(f.proto.Consts[instr.Operand])
			t.push(&Closure{Proto: proto, Env: f.env})

		case compiler.OpPop:
			t.pop()

		case compiler.OpDup:
			t.push(t.stack[len(t.stack)-1])

		case compiler.OpCall, compiler.OpTailCall:
			if err := t.checkInterrupt(); err != nil {
				return nil, err
			}
			n := instr.Operand
			args := t.popN(n)
			proc := t.pop()
			if err := t.dispatchCall(proc, args, instr.Op == compiler.OpTailCall); err != nil {
				return nil, err
			}

		case compiler.OpReturn:
			v := t.pop()
			t.frames = t.frames[:len(t.frames)-1]
			t.push(v)

		default:
			return nil, langerr.New(langerr.Type, "unknown opcode")
		}
	}
}

// dispatchCall performs a call made from within the run loop (as opposed to
// Thread.Apply, used by native code outside it). A Closure callee either
// pushes a new frame (ordinary call) or replaces the current one in place
// (tail call, giving O(1) stack growth for Scheme-level tail recursion); any
// other callee (native procedure or VM sentinel) is invoked via Apply,
// which necessarily uses a bounded amount of additional Go stack, since
// primitives are not where spec.md's tail-call guarantee applies.
func (t *Thread) dispatchCall(proc value.Value, args []value.Value, tail bool) error {
	callable, ok := proc.(value.Callable)
	if !ok {
		return langerr.New(langerr.Type, "attempt to call a non-procedure")
	}
	switch c := callable.(type) {
	case *Closure:
		newFrame, err := t.makeCallFrame(c, args)
		if err != nil {
			return err
		}
		if tail {
			t.frames[len(t.frames)-1] = newFrame
		} else {
			t.frames = append(t.frames, newFrame)
		}
		return nil
	case *CallCCProc:
		// Capturing and invoking the receiver both stay on this same frame
		// stack (see continuation.go), which is what keeps a continuation
		// captured here invocable after this call has returned.
		return t.dispatchCallCC(args, tail)
	case *Continuation:
		return t.invokeContinuation(c, args)
	default:
		result, err := t.Apply(callable, args)
		if err != nil {
			return err
		}
		t.push(result)
		return nil
	}
}
