package machine

import (
	"sync"

	"github.com/peroxide-lang/peroxide/lang/langerr"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// Continuation is the value call/cc hands to its receiver procedure. It
// captures everything spec.md §3 requires to make invoking it later behave
// as if the captured point were re-entered exactly: the frame stack and
// value stack at the moment of capture, plus the dynamic-wind point active
// at that moment (spec.md §4.5). Because lang/machine's run loop never
// recurses at the Go level for ordinary compiled calls (OpCall pushes onto
// Thread.frames and keeps looping; only native code calling back into a
// closure, e.g. map's callback, recurses through Apply), a continuation
// captured at a point reached purely through compiled code remains
// invocable for as long as the Thread exists, including after the call/cc
// call that produced it has already returned normally -- it does not need
// the original Go call frame to still be on the stack.
type Continuation struct {
	id     uint64
	frames []frame
	stack  []value.Value
	wind   *dynWindPoint
}

func (*Continuation) Type() string   { return "continuation" }
func (*Continuation) String() string { return "#<continuation>" }
func (*Continuation) Name() string   { return "continuation" }

var (
	contIDMu   sync.Mutex
	contIDNext uint64
)

func nextContID() uint64 {
	contIDMu.Lock()
	defer contIDMu.Unlock()
	contIDNext++
	return contIDNext
}

// CallCCProc is the sentinel bound to call/cc and
// call-with-current-continuation in the global environment; dispatchCall
// (and, for calls reached through Thread.Apply, Apply itself) recognizes it
// and captures a Continuation instead of treating it as an ordinary
// procedure call.
type CallCCProc struct{}

func (*CallCCProc) Type() string   { return "procedure" }
func (*CallCCProc) String() string { return "#<procedure call/cc>" }
func (*CallCCProc) Name() string   { return "call/cc" }

func cloneFrames(frames []frame) []frame {
	out := make([]frame, len(frames))
	copy(out, frames)
	return out
}

func cloneStack(stack []value.Value) []value.Value {
	out := make([]value.Value, len(stack))
	copy(out, stack)
	return out
}

func (t *Thread) captureContinuation(args []value.Value) (*Continuation, value.Callable, error) {
	if len(args) != 1 {
		return nil, nil, langerr.ArityError("call/cc", 1, len(args))
	}
	receiver, ok := args[0].(value.Callable)
	if !ok {
		return nil, nil, langerr.New(langerr.Type, "call/cc: argument is not a procedure")
	}
	k := &Continuation{
		id:     nextContID(),
		frames: cloneFrames(t.frames),
		stack:  cloneStack(t.stack),
		wind:   t.windTop,
	}
	return k, receiver, nil
}

// dispatchCallCC handles call/cc invoked from within the run loop: capturing
// the continuation needs no Go-level recursion, and the subsequent call to
// receiver is an ordinary (possibly tail) dispatchCall, so it stays on the
// same frame stack rather than opening a nested Go call that invoking the
// continuation later would need to still be alive.
func (t *Thread) dispatchCallCC(args []value.Value, tail bool) error {
	k, receiver, err := t.captureContinuation(args)
	if err != nil {
		return err
	}
	return t.dispatchCall(receiver, []value.Value{k}, tail)
}

// invokeCallCCViaApply backs call/cc when it is reached through Thread.Apply
// rather than the run loop (e.g. `(apply call/cc (list f))` from native
// code). The continuation captured is just as reusable as one captured from
// compiled code, but this particular receiver call necessarily recurses at
// the Go level like any other Apply of a Closure.
func (t *Thread) invokeCallCCViaApply(args []value.Value) (value.Value, error) {
	k, receiver, err := t.captureContinuation(args)
	if err != nil {
		return nil, err
	}
	return t.Apply(receiver, []value.Value{k})
}

// invokeContinuation re-enters k: it walks the dynamic-wind tree from the
// thread's current point to k's captured point (spec.md §4.5's ascend to the
// common ancestor, then descend running before-thunks), then replaces the
// thread's frame and value stacks wholesale with the snapshot taken at
// capture time and pushes the supplied values as the result of the
// expression that originally called call/cc. Called from dispatchCall, so
// the run loop that invoked it simply resumes on its very next iteration
// using the restored frames -- no Go-level unwinding is needed, since each
// run() call tracks completion relative to its own starting frame count, not
// an absolute one, so replacing t.frames underneath it is safe.
func (t *Thread) invokeContinuation(k *Continuation, args []value.Value) error {
	if err := t.reenterWinds(k.wind); err != nil {
		return err
	}
	t.frames = cloneFrames(k.frames)
	t.stack = cloneStack(k.stack)
	t.push(continuationResult(args))
	return nil
}

// invokeContinuationViaApply backs a *Continuation reached through
// Thread.Apply directly. Since Apply must return a single value
// synchronously to its native caller, it resumes the restored frames itself
// with a fresh run(), which returns as soon as the innermost restored frame
// returns; the outer restored frames stay on t.frames for whichever run
// loop is active when Apply returns.
func (t *Thread) invokeContinuationViaApply(k *Continuation, args []value.Value) (value.Value, error) {
	if err := t.invokeContinuation(k, args); err != nil {
		return nil, err
	}
	return t.run()
}

func continuationResult(args []value.Value) value.Value {
	if len(args) == 1 {
		return args[0]
	}
	return &value.MultipleValues{Vals: args}
}
