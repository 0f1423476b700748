package machine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peroxide-lang/peroxide/lang/compiler"
	"github.com/peroxide-lang/peroxide/lang/env"
	"github.com/peroxide-lang/peroxide/lang/machine"
	"github.com/peroxide-lang/peroxide/lang/reader"
	"github.com/peroxide-lang/peroxide/lang/value"
)

func newTestGlobal() (*env.Frame, *machine.Thread) {
	g := env.NewGlobal()
	compiler.InstallSpecialForms(g)
	t := machine.NewThread(g)
	machine.InstallIntrinsics(g, t)

	g.DefineGlobalValue("+", value.NewNativeProc("+", func(args []value.Value) (value.Value, error) {
		var sum value.Fixnum
		for _, a := range args {
			sum += a.(value.Fixnum)
		}
		return sum, nil
	}))
	g.DefineGlobalValue("-", value.NewNativeProc("-", func(args []value.Value) (value.Value, error) {
		if len(args) == 1 {
			return -args[0].(value.Fixnum), nil
		}
		r := args[0].(value.Fixnum)
		for _, a := range args[1:] {
			r -= a.(value.Fixnum)
		}
		return r, nil
	}))
	g.DefineGlobalValue("=", value.NewNativeProc("=", func(args []value.Value) (value.Value, error) {
		return value.Boolean(args[0].(value.Fixnum) == args[1].(value.Fixnum)), nil
	}))
	g.DefineGlobalValue("*", value.NewNativeProc("*", func(args []value.Value) (value.Value, error) {
		r := value.Fixnum(1)
		for _, a := range args {
			r *= a.(value.Fixnum)
		}
		return r, nil
	}))
	return g, t
}

func evalSrc(t *testing.T, src string) value.Value {
	t.Helper()
	g, th := newTestGlobal()
	vals, err := reader.ReadAll("test", src)
	require.NoError(t, err)
	var result value.Value = value.Unspecified
	for _, form := range vals {
		p, err := compiler.Compile(form, g, th)
		require.NoError(t, err)
		result, err = th.RunProto(p)
		require.NoError(t, err)
	}
	return result
}

func TestArithmetic(t *testing.T) {
	assert.Equal(t, value.Fixnum(6), evalSrc(t, "(+ 1 2 3)"))
}

func TestIfAndLambda(t *testing.T) {
	assert.Equal(t, value.Fixnum(42), evalSrc(t, "((lambda (x) (if (= x 0) 42 0)) 0)"))
}

func TestTailRecursion(t *testing.T) {
	src := `
	(define (loop n acc)
	  (if (= n 0) acc (loop (- n 1) (+ acc 1))))
	(loop 100000 0)`
	assert.Equal(t, value.Fixnum(100000), evalSrc(t, src))
}

func TestMutualRecursionInternalDefine(t *testing.T) {
	src := `
	(define (check n)
	  (define (even? n) (if (= n 0) #t (odd? (- n 1))))
	  (define (odd? n) (if (= n 0) #f (even? (- n 1))))
	  (even? n))
	(check 10)`
	assert.Equal(t, value.Boolean(true), evalSrc(t, src))
}

func TestCallCCEscape(t *testing.T) {
	src := `
	(+ 1 (call/cc (lambda (return) (+ 2 (return 10)))))`
	assert.Equal(t, value.Fixnum(11), evalSrc(t, src))
}

func TestCallCCNormalReturn(t *testing.T) {
	src := `(+ 1 (call/cc (lambda (return) 41)))`
	assert.Equal(t, value.Fixnum(42), evalSrc(t, src))
}

// dynamicWindDef is the prelude's dynamic-wind definition, preceded by the
// prelude's plain `let` rule it relies on, inlined here so these
// package-internal tests can exercise it against newTestGlobal's minimal
// environment without pulling in lang/prelude and lang/primitives.
const dynamicWindDef = `
(define-syntax let
  (syntax-rules ()
    ((_ ((name val) ...) body1 body2 ...)
     ((lambda (name ...) body1 body2 ...) val ...))))
(define (dynamic-wind before thunk after)
  (before)
  (%wind-push before after)
  (let ((result (thunk)))
    (%wind-pop)
    (after)
    result))
`

func evalForms(t *testing.T, g *env.Frame, th *machine.Thread, src string) value.Value {
	t.Helper()
	vals, err := reader.ReadAll("test", src)
	require.NoError(t, err)
	var result value.Value = value.Unspecified
	for _, form := range vals {
		p, err := compiler.Compile(form, g, th)
		require.NoError(t, err)
		result, err = th.RunProto(p)
		require.NoError(t, err)
	}
	return result
}

func TestDynamicWind(t *testing.T) {
	g, th := newTestGlobal()
	var trace []string
	g.DefineGlobalValue("trace!", value.NewNativeProc("trace!", func(args []value.Value) (value.Value, error) {
		trace = append(trace, args[0].(*value.Symbol).Name)
		return value.Unspecified, nil
	}))
	evalForms(t, g, th, dynamicWindDef+`
	(dynamic-wind
	 (lambda () (trace! 'in))
	 (lambda () (trace! 'body))
	 (lambda () (trace! 'out)))`)
	assert.Equal(t, []string{"in", "body", "out"}, trace)
}

// TestDynamicWindContinuationReentry exercises spec.md §8 scenario 4: capture
// a continuation inside a dynamic-wind's thunk, let the dynamic-wind return
// normally, then invoke the captured continuation from outside its dynamic
// extent. The expected trace is B body A, then (on re-entry) B body A again --
// the before-thunk reruns, the rest of the thunk after the call/cc runs
// again, and the after-thunk fires a second time, which only
// works if invoking the continuation can redescend into a dynamic-wind point
// that has already been exited (continuation.go, dynamicwind.go).
func TestDynamicWindContinuationReentry(t *testing.T) {
	g, th := newTestGlobal()
	var trace []string
	g.DefineGlobalValue("trace!", value.NewNativeProc("trace!", func(args []value.Value) (value.Value, error) {
		trace = append(trace, args[0].(*value.Symbol).Name)
		return value.Unspecified, nil
	}))
	evalForms(t, g, th, dynamicWindDef+`
	(define saved-k #f)
	(define (capture!)
	  (dynamic-wind
	   (lambda () (trace! 'B))
	   (lambda () (call/cc (lambda (k) (set! saved-k k))) (trace! 'body))
	   (lambda () (trace! 'A))))
	(capture!)`)
	assert.Equal(t, []string{"B", "body", "A"}, trace)

	evalForms(t, g, th, `(if saved-k (let ((k saved-k)) (set! saved-k #f) (k #f)) #f)`)
	assert.Equal(t, []string{"B", "body", "A", "B", "body", "A"}, trace)
}

func TestInterrupt(t *testing.T) {
	g, th := newTestGlobal()
	vals, err := reader.ReadAll("test", `
	(define (spin n) (if (= n 0) 'done (spin (- n 1))))
	(spin 1000000)`)
	require.NoError(t, err)

	p, err := compiler.Compile(vals[0], g, th)
	require.NoError(t, err)
	_, err = th.RunProto(p)
	require.NoError(t, err)

	th.Interrupt()
	p, err = compiler.Compile(vals[1], g, th)
	require.NoError(t, err)
	_, err = th.RunProto(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interrupted")
}

func TestMultipleValues(t *testing.T) {
	src := `
	(call-with-values
	 (lambda () (values 1 2))
	 (lambda (a b) (+ a b)))`
	assert.Equal(t, value.Fixnum(3), evalSrc(t, src))
}
