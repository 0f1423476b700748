package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peroxide-lang/peroxide/lang/compiler"
	"github.com/peroxide-lang/peroxide/lang/env"
	"github.com/peroxide-lang/peroxide/lang/reader"
	"github.com/peroxide-lang/peroxide/lang/value"
)

type stubEvaluator struct{}

func (stubEvaluator) Apply(proc value.Callable, args []value.Value) (value.Value, error) {
	return nil, nil
}

func (stubEvaluator) RunProto(p *compiler.Proto) (value.Value, error) {
	return value.Unspecified, nil
}

func read1(t *testing.T, src string) value.Value {
	t.Helper()
	vals, err := reader.ReadAll("test", src)
	require.NoError(t, err)
	require.Len(t, vals, 1)
	return vals[0]
}

func newGlobal() *env.Frame {
	g := env.NewGlobal()
	compiler.InstallSpecialForms(g)
	for _, name := range []string{"+", "-", "*", "="} {
		g.DefineGlobalValue(name, value.Unspecified)
	}
	return g
}

func lastOp(p *compiler.Proto) compiler.Op {
	return p.Code[len(p.Code)-1].Op
}

func TestCompileConstant(t *testing.T) {
	g := newGlobal()
	p, err := compiler.Compile(read1(t, "42"), g, stubEvaluator{})
	require.NoError(t, err)
	require.Len(t, p.Code, 2)
	assert.Equal(t, compiler.OpConst, p.Code[0].Op)
	assert.Equal(t, compiler.OpReturn, p.Code[1].Op)
	assert.Equal(t, value.Fixnum(42), p.Consts[0])
}

func TestCompileIf(t *testing.T) {
	g := newGlobal()
	p, err := compiler.Compile(read1(t, "(if #t 1 2)"), g, stubEvaluator{})
	require.NoError(t, err)
	var ops []compiler.Op
	for _, i := range p.Code {
		ops = append(ops, i.Op)
	}
	assert.Contains(t, ops, compiler.OpJumpIfFalse)
	assert.Contains(t, ops, compiler.OpJump)
}

func TestCompileLambdaAndCall(t *testing.T) {
	g := newGlobal()
	p, err := compiler.Compile(read1(t, "((lambda (x) x) 5)"), g, stubEvaluator{})
	require.NoError(t, err)
	var sawClosure, sawCall bool
	for _, i := range p.Code {
		if i.Op == compiler.OpMakeClosure {
			sawClosure = true
		}
		if i.Op == compiler.OpCall || i.Op == compiler.OpTailCall {
			sawCall = true
		}
	}
	assert.True(t, sawClosure)
	assert.True(t, sawCall)
}

func TestCompileGlobalDefine(t *testing.T) {
	g := newGlobal()
	p, err := compiler.Compile(read1(t, "(define x 10)"), g, stubEvaluator{})
	require.NoError(t, err)
	var sawDefine bool
	for _, i := range p.Code {
		if i.Op == compiler.OpDefineGlobal {
			sawDefine = true
		}
	}
	assert.True(t, sawDefine)

	b, ok := env.Resolve(g, value.Intern("x"))
	require.True(t, ok)
	assert.Equal(t, env.ValueSlot, b.Kind)
}

func TestCompileInternalDefineMutualRecursion(t *testing.T) {
	g := newGlobal()
	src := `(lambda ()
	           (define (even? n) (if (= n 0) #t (odd? (- n 1))))
	           (define (odd? n) (if (= n 0) #f (even? (- n 1))))
	           (even? 4))`
	_, err := compiler.Compile(read1(t, src), g, stubEvaluator{})
	require.NoError(t, err)
}

func TestCompileUnboundVariableErrors(t *testing.T) {
	g := newGlobal()
	_, err := compiler.Compile(read1(t, "totally-unbound-name"), g, stubEvaluator{})
	assert.Error(t, err)
}

func TestCompileVariadicLambda(t *testing.T) {
	g := newGlobal()
	p, err := compiler.Compile(read1(t, "(lambda args args)"), g, stubEvaluator{})
	require.NoError(t, err)
	assert.Equal(t, compiler.OpReturn, lastOp(p))
}
