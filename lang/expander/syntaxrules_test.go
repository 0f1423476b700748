package expander_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peroxide-lang/peroxide/lang/env"
	"github.com/peroxide-lang/peroxide/lang/expander"
	"github.com/peroxide-lang/peroxide/lang/reader"
	"github.com/peroxide-lang/peroxide/lang/value"
)

func read1(t *testing.T, src string) value.Value {
	t.Helper()
	vals, err := reader.ReadAll("test", src)
	require.NoError(t, err)
	require.Len(t, vals, 1)
	return vals[0]
}

type noopEvaluator struct{}

func (noopEvaluator) Apply(proc value.Callable, args []value.Value) (value.Value, error) {
	return nil, nil
}

func TestSyntaxRulesSwap(t *testing.T) {
	defEnv := env.NewGlobal()
	rulesForm := read1(t, `(syntax-rules () ((swap! a b) (let ((tmp a)) (set! a b) (set! b tmp))))`)
	// CompileSyntaxRules expects the cdr of (syntax-rules ...), i.e. starting
	// at the literals list.
	rulesForm = rulesForm.(*value.Pair).Cdr
	sr, err := expander.CompileSyntaxRules(rulesForm, defEnv)
	require.NoError(t, err)

	call := read1(t, `(swap! x y)`)
	out, err := sr.Expand(noopEvaluator{}, call, defEnv, defEnv)
	require.NoError(t, err)
	require.NotNil(t, out)

	outPair, ok := out.(*value.Pair)
	require.True(t, ok)
	headName, ok := identName(outPair.Car)
	require.True(t, ok)
	assert.Equal(t, "let", headName)
}

func TestSyntaxRulesEllipsis(t *testing.T) {
	defEnv := env.NewGlobal()
	rulesForm := read1(t, `(syntax-rules () ((my-list a ...) (list a ...)))`)
	rulesForm = rulesForm.(*value.Pair).Cdr
	sr, err := expander.CompileSyntaxRules(rulesForm, defEnv)
	require.NoError(t, err)

	call := read1(t, `(my-list 1 2 3)`)
	out, err := sr.Expand(noopEvaluator{}, call, defEnv, defEnv)
	require.NoError(t, err)

	elems, ok := value.ListToSlice(out)
	require.True(t, ok)
	require.Len(t, elems, 4) // (list 1 2 3)
	headName, ok := identName(elems[0])
	require.True(t, ok)
	assert.Equal(t, "list", headName)
	assert.Equal(t, value.Fixnum(1), elems[1])
	assert.Equal(t, value.Fixnum(2), elems[2])
	assert.Equal(t, value.Fixnum(3), elems[3])
}

func TestSyntaxRulesLiteralElse(t *testing.T) {
	defEnv := env.NewGlobal()
	rulesForm := read1(t, `(syntax-rules (else) ((my-cond (else e)) e))`)
	rulesForm = rulesForm.(*value.Pair).Cdr
	sr, err := expander.CompileSyntaxRules(rulesForm, defEnv)
	require.NoError(t, err)

	call := read1(t, `(my-cond (else 42))`)
	out, err := sr.Expand(noopEvaluator{}, call, defEnv, defEnv)
	require.NoError(t, err)
	assert.Equal(t, value.Fixnum(42), out)
}

func identName(v value.Value) (string, bool) {
	switch vv := v.(type) {
	case *value.Symbol:
		return vv.Name, true
	case *env.SyntacticClosure:
		return identName(vv.Form)
	default:
		return "", false
	}
}
