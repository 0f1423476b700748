package machine

import (
	"github.com/peroxide-lang/peroxide/lang/env"
	"github.com/peroxide-lang/peroxide/lang/langerr"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// InstallIntrinsics defines the VM-level sentinel procedures (call/cc,
// apply, values, call-with-values) as ordinary global bindings, plus the
// two low-level %wind-push/%wind-pop primitives lang/prelude's dynamic-wind
// definition is built on. They are first-class values like any other
// procedure — they can be stored, renamed, and passed to higher-order
// procedures such as `apply` or `map` — but lang/machine's Apply and
// dispatchCall recognize their concrete Go type and give them direct access
// to VM state instead of going through the generic closure/native-procedure
// calling convention. Installed before the Scheme-source prelude compiles,
// so the prelude may refer to these names directly. dynamic-wind itself is
// deliberately NOT bound here: it is ordinary Scheme, defined in the
// prelude in terms of %wind-push/%wind-pop, so its before/thunk/after calls
// are compiled calls on the thread's own frame stack rather than native Go
// recursion (see continuation.go and dynamicwind.go for why that matters).
func InstallIntrinsics(global *env.Frame, thread *Thread) {
	global.DefineGlobalValue("call/cc", &CallCCProc{})
	global.DefineGlobalValue("call-with-current-continuation", &CallCCProc{})
	global.DefineGlobalValue("apply", &ApplyProc{})
	global.DefineGlobalValue("values", &ValuesProc{})
	global.DefineGlobalValue("call-with-values", &CallWithValuesProc{})

	global.DefineGlobalValue("%wind-push", value.NewNativeProc("%wind-push", func(args []value.Value) (value.Value, error) {
		before, ok1 := args[0].(value.Callable)
		after, ok2 := args[1].(value.Callable)
		if !ok1 || !ok2 {
			return nil, langerr.New(langerr.Type, "%wind-push: arguments must be procedures")
		}
		thread.windPush(before, after)
		return value.Unspecified, nil
	}))
	global.DefineGlobalValue("%wind-pop", value.NewNativeProc("%wind-pop", func(args []value.Value) (value.Value, error) {
		if err := thread.windPop(); err != nil {
			return nil, err
		}
		return value.Unspecified, nil
	}))
}
