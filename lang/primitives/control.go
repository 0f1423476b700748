package primitives

import (
	"github.com/peroxide-lang/peroxide/lang/compiler"
	"github.com/peroxide-lang/peroxide/lang/env"
	"github.com/peroxide-lang/peroxide/lang/expander"
	"github.com/peroxide-lang/peroxide/lang/langerr"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// Evaluator is the capability eval needs beyond Applier: compiling a form
// against a given environment and running the result to completion.
// *machine.Thread satisfies this structurally, same as Applier.
type Evaluator interface {
	Applier
	RunProto(p *compiler.Proto) (value.Value, error)
}

// evalProc implements eval (spec.md §4.6): compile form against the given
// environment (or the global frame, if omitted) and run it. The environment
// argument, when given, must be the opaque value handed out by
// (interaction-environment), here represented
// the same way the expander represents one to transformer procedures.
func evalProc(ev Evaluator, global *env.Frame) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		scope := global
		if len(args) == 2 {
			ev, ok := args[1].(*expander.EnvValue)
			if !ok {
				return nil, typeErr("eval", args[1])
			}
			scope = ev.Frame
		}
		proto, err := compiler.Compile(args[0], scope, ev)
		if err != nil {
			return nil, err
		}
		return ev.RunProto(proto)
	}
}

func interactionEnvironment(global *env.Frame) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		return &expander.EnvValue{Frame: global}, nil
	}
}

// errorProc implements the `error` primitive (spec.md §7): a User-kind
// error carrying a message and an arbitrary list of irritant values. It
// propagates out to the caller of RunProto; no form installed in this
// interpreter catches it.
func errorProc(args []value.Value) (value.Value, error) {
	msg, ok := args[0].(*value.MutableString)
	if !ok {
		return nil, typeErr("error", args[0])
	}
	e := &langerr.Error{Kind: langerr.User, Message: msg.Go()}
	for _, a := range args[1:] {
		e.Irritants = append(e.Irritants, a)
	}
	return nil, e
}

// promiseNew backs the prelude's delay/delay-force expansion: a low-level,
// deliberately %-prefixed intrinsic (spec.md §4.6's %call/cc naming
// convention for VM-adjacent primitives not meant for direct user use) that
// wraps a zero-argument thunk as an unforced Promise.
func promiseNew(args []value.Value) (value.Value, error) {
	thunk, ok := args[0].(value.Callable)
	if !ok {
		return nil, typeErr("%promise-new", args[0])
	}
	return value.NewPromise(thunk, value.Truthy(args[1])), nil
}

func isPromise(args []value.Value) (value.Value, error) {
	_, ok := args[0].(*value.Promise)
	return value.Boolean(ok), nil
}

func makePromise(args []value.Value) (value.Value, error) {
	if p, ok := args[0].(*value.Promise); ok {
		return p, nil
	}
	p := &value.Promise{Forced: true, Value: args[0]}
	return p, nil
}

// forceProc implements force (spec.md §3): repeatedly invokes a promise's
// thunk until a non-chained result is produced, memoizing along the way so
// a delay-force chain of unbounded length forces in a loop rather than
// recursively growing the Go stack.
func forceProc(ev Evaluator) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		p, ok := args[0].(*value.Promise)
		if !ok {
			return args[0], nil
		}
		for {
			if p.Forced {
				return p.Value, nil
			}
			thunk := p.Thunk
			result, err := ev.Apply(thunk, nil)
			if err != nil {
				return nil, err
			}
			if p.Forced {
				return p.Value, nil
			}
			next, chained := result.(*value.Promise)
			if chained && p.IsChained {
				if next.Forced {
					p.Forced = true
					p.Value = next.Value
					p.Thunk = nil
					return p.Value, nil
				}
				p.Thunk = next.Thunk
				p.IsChained = next.IsChained
				continue
			}
			p.Forced = true
			p.Value = result
			p.Thunk = nil
			return result, nil
		}
	}
}
