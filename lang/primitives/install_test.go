package primitives_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peroxide-lang/peroxide/lang/compiler"
	"github.com/peroxide-lang/peroxide/lang/env"
	"github.com/peroxide-lang/peroxide/lang/machine"
	"github.com/peroxide-lang/peroxide/lang/prelude"
	"github.com/peroxide-lang/peroxide/lang/primitives"
	"github.com/peroxide-lang/peroxide/lang/reader"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// newInterpreter builds a full environment the way internal/maincmd's
// bootstrap does: special forms, VM intrinsics, the native primitive
// library, and finally the prelude, in that dependency order.
func newInterpreter(t *testing.T) (*env.Frame, *machine.Thread) {
	t.Helper()
	global := env.NewGlobal()
	compiler.InstallSpecialForms(global)
	th := machine.NewThread(global)
	machine.InstallIntrinsics(global, th)
	ports := primitives.NewPorts(strings.NewReader(""), new(strings.Builder), new(strings.Builder))
	primitives.Install(global, th, ports)
	require.NoError(t, prelude.Load(global, th))
	return global, th
}

func evalAll(t *testing.T, src string) value.Value {
	t.Helper()
	global, th := newInterpreter(t)
	forms, err := reader.ReadAll("test", src)
	require.NoError(t, err)
	var result value.Value = value.Unspecified
	for _, form := range forms {
		p, err := compiler.Compile(form, global, th)
		require.NoError(t, err)
		result, err = th.RunProto(p)
		require.NoError(t, err)
	}
	return result
}

func TestArithmeticPrimitives(t *testing.T) {
	assert.Equal(t, value.Fixnum(10), evalAll(t, "(+ 1 2 3 4)"))
	assert.Equal(t, value.Fixnum(2), evalAll(t, "(quotient 7 3)"))
	assert.Equal(t, value.Fixnum(1), evalAll(t, "(remainder 7 3)"))
	assert.Equal(t, value.Fixnum(2), evalAll(t, "(modulo -7 3)"))
	assert.Equal(t, value.Boolean(true), evalAll(t, "(< 1 2 3)"))
	assert.Equal(t, value.Inexact(0.5), evalAll(t, "(/ 1 2.0)"))
	assert.Equal(t, value.Fixnum(2), evalAll(t, "(/ 4 2)"))
}

func TestNumericExactnessContamination(t *testing.T) {
	assert.Equal(t, value.Inexact(3), evalAll(t, "(+ 1 2.0)"))
	assert.Equal(t, value.Fixnum(3), evalAll(t, "(+ 1 2)"))
}

func TestPairAndListPrimitives(t *testing.T) {
	assert.Equal(t, value.Fixnum(1), evalAll(t, "(car (cons 1 2))"))
	assert.Equal(t, value.Fixnum(3), evalAll(t, "(length (list 1 2 3))"))
	assert.Equal(t, value.Boolean(true), evalAll(t, "(equal? (list 1 2) (list 1 2))"))
	assert.Equal(t, value.Fixnum(4), evalAll(t, "(cadr (list 3 4 5))"))
}

func TestStringAndCharPrimitives(t *testing.T) {
	assert.Equal(t, value.NewString("hello world"), evalAll(t, `(string-append "hello" " " "world")`))
	assert.Equal(t, value.Boolean(true), evalAll(t, `(char<? #\a #\b)`))
	assert.Equal(t, value.Fixnum(5), evalAll(t, `(string-length "hello")`))
}

func TestVectorPrimitives(t *testing.T) {
	assert.Equal(t, value.Fixnum(2), evalAll(t, "(vector-ref (vector 1 2 3) 1)"))
	assert.Equal(t, value.Fixnum(3), evalAll(t, "(vector-length (make-vector 3 0))"))
}

func TestDerivedSyntaxFromPrelude(t *testing.T) {
	assert.Equal(t, value.Fixnum(6), evalAll(t, "(let loop ((n 3) (acc 0)) (if (= n 0) acc (loop (- n 1) (+ acc n))))"))
	assert.Equal(t, value.Fixnum(2), evalAll(t, "(cond (#f 1) (#t 2) (else 3))"))
	assert.Equal(t, value.Fixnum(9), evalAll(t, `
		(case 3
		  ((1 2) 7)
		  ((3 4) 9)
		  (else 0))`))
	assert.Equal(t, value.List(value.Fixnum(1), value.Fixnum(3)),
		evalAll(t, "(filter odd? (list 1 2 3 4))"))
}

func TestQuasiquote(t *testing.T) {
	got := evalAll(t, "(let ((x 2)) `(1 ,x ,@(list 3 4)))")
	assert.Equal(t, value.List(value.Fixnum(1), value.Fixnum(2), value.Fixnum(3), value.Fixnum(4)), got)
}

func TestDoLoop(t *testing.T) {
	got := evalAll(t, `
		(do ((i 0 (+ i 1))
		     (acc 0 (+ acc i)))
		    ((= i 5) acc))`)
	assert.Equal(t, value.Fixnum(10), got)
}

func TestPromises(t *testing.T) {
	got := evalAll(t, "(force (delay (+ 1 2)))")
	assert.Equal(t, value.Fixnum(3), got)
}

func TestEvalAndInteractionEnvironment(t *testing.T) {
	got := evalAll(t, "(eval '(+ 1 2) (interaction-environment))")
	assert.Equal(t, value.Fixnum(3), got)
}

func TestErrorProc(t *testing.T) {
	global, th := newInterpreter(t)
	forms, err := reader.ReadAll("test", `(error "boom" 1 2)`)
	require.NoError(t, err)
	p, err := compiler.Compile(forms[0], global, th)
	require.NoError(t, err)
	_, err = th.RunProto(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
