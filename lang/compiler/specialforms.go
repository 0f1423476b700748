package compiler

import (
	"github.com/peroxide-lang/peroxide/lang/env"
	"github.com/peroxide-lang/peroxide/lang/expander"
	"github.com/peroxide-lang/peroxide/lang/langerr"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// Evaluator extends expander.Evaluator with the ability to run a freshly
// compiled zero-argument Proto to completion, which define-syntax needs
// when a transformer constructor's procedure argument is itself an
// arbitrary expression rather than literal syntax-rules (spec.md §4.3).
// lang/machine's Thread implements both.
type Evaluator interface {
	expander.Evaluator
	RunProto(p *Proto) (value.Value, error)
}

func compileSpecialForm(name string, rest value.Value, scope *env.Frame, c *ctx, tail bool, ev expander.Evaluator) error {
	switch name {
	case formQuote:
		return compileQuote(rest, c)
	case formSyntaxQuote:
		return compileSyntaxQuote(rest, c)
	case formIf:
		return compileIf(rest, scope, c, tail, ev)
	case formLambda:
		return compileLambda(rest, "", scope, c, ev)
	case formSetBang:
		return compileSet(rest, scope, c, ev)
	case formDefine:
		return compileDefine(rest, scope, c, ev)
	case formDefineSyntax:
		return compileDefineSyntax(rest, scope, c, ev)
	case formLetSyntax:
		return compileLetSyntax(rest, scope, c, tail, ev, false)
	case formLetrecSyntax:
		return compileLetSyntax(rest, scope, c, tail, ev, true)
	case formBegin:
		forms, ok := value.ListToSlice(rest)
		if !ok {
			return langerr.New(langerr.Syntax, "begin: malformed form")
		}
		return compileBody(forms, scope, c, tail, ev)
	default:
		return langerr.New(langerr.Syntax, "unimplemented special form: %s", name)
	}
}

func compileQuote(rest value.Value, c *ctx) error {
	args, ok := value.ListToSlice(rest)
	if !ok || len(args) != 1 {
		return langerr.New(langerr.Syntax, "quote: expected exactly one datum")
	}
	datum := env.StripOutermost(args[0])
	emit(c.proto, OpConst, addConst(c.proto, datum))
	return nil
}

func compileSyntaxQuote(rest value.Value, c *ctx) error {
	args, ok := value.ListToSlice(rest)
	if !ok || len(args) != 1 {
		return langerr.New(langerr.Syntax, "syntax-quote: expected exactly one datum")
	}
	emit(c.proto, OpConst, addConst(c.proto, args[0]))
	return nil
}

func compileIf(rest value.Value, scope *env.Frame, c *ctx, tail bool, ev expander.Evaluator) error {
	parts, ok := value.ListToSlice(rest)
	if !ok || (len(parts) != 2 && len(parts) != 3) {
		return langerr.New(langerr.Syntax, "if: expected (if test conseq [alt])")
	}
	if err := compileExpr(parts[0], scope, c, false, ev); err != nil {
		return err
	}
	jf := emit(c.proto, OpJumpIfFalse, 0)
	if err := compileExpr(parts[1], scope, c, tail, ev); err != nil {
		return err
	}
	jEnd := emit(c.proto, OpJump, 0)
	c.proto.Code[jf].Operand = len(c.proto.Code)
	if len(parts) == 3 {
		if err := compileExpr(parts[2], scope, c, tail, ev); err != nil {
			return err
		}
	} else {
		emit(c.proto, OpConst, addConst(c.proto, value.Unspecified))
	}
	c.proto.Code[jEnd].Operand = len(c.proto.Code)
	return nil
}

// compileLambda compiles (formals body...) into a new Proto and emits
// OpMakeClosure referencing it. name is used only for diagnostics (the
// defining `define`'s name, when known).
func compileLambda(rest value.Value, name string, scope *env.Frame, c *ctx, ev expander.Evaluator) error {
	p, ok := rest.(*value.Pair)
	if !ok {
		return langerr.New(langerr.Syntax, "lambda: expected (lambda formals body...)")
	}
	formals := p.Car
	bodyForms, ok := value.ListToSlice(p.Cdr)
	if !ok || len(bodyForms) == 0 {
		return langerr.New(langerr.Syntax, "lambda: empty body")
	}

	proto := NewProto(name)
	childEnv := scope.NewChild()
	childCtx := &ctx{proto: proto, protoDepth: c.protoDepth + 1}

	params, variadic, err := flattenFormals(formals)
	if err != nil {
		return err
	}
	for _, id := range params {
		slot := childCtx.allocSlot()
		childEnv.DefineLocalValue(id, env.Strip(id).String(), childCtx.protoDepth, slot)
	}
	proto.NumParams = len(params)
	proto.Variadic = variadic

	if err := compileBody(bodyForms, childEnv, childCtx, true, ev); err != nil {
		return err
	}
	emit(proto, OpReturn, 0)

	emit(c.proto, OpMakeClosure, addConst(c.proto, protoValue{proto}))
	return nil
}

// protoValue wraps a *Proto so it can travel through the value.Value typed
// constant pool without *Proto itself needing to (mis)implement the data
// language's Value interface.
type protoValue struct{ Proto *Proto }

func (protoValue) Type() string   { return "compiled-lambda" }
func (protoValue) String() string { return "#<compiled-lambda>" }

// ProtoOf extracts the *Proto a protoValue constant wraps; used by
// lang/machine when executing OpMakeClosure.
func ProtoOf(v value.Value) (*Proto, bool) {
	pv, ok := v.(protoValue)
	return pv.Proto, ok
}

// flattenFormals parses a lambda formals datum: a proper list of identifiers
// (fixed arity), an improper list ending in an identifier (variadic with a
// rest parameter), or a bare identifier (fully variadic, all arguments
// collected). Each identifier is returned as-is: a symbol, or a syntactic
// closure a macro placed at this binding site, which then keys the binding.
func flattenFormals(formals value.Value) (names []value.Value, variadic bool, err error) {
	if value.IsNil(formals) {
		return nil, false, nil
	}
	if env.Identifier(formals) {
		return []value.Value{formals}, true, nil
	}
	cur := formals
	for {
		p, ok := cur.(*value.Pair)
		if !ok {
			if env.Identifier(cur) {
				names = append(names, cur)
				return names, true, nil
			}
			return nil, false, langerr.New(langerr.Syntax, "lambda: malformed formals")
		}
		if !env.Identifier(p.Car) {
			return nil, false, langerr.New(langerr.Syntax, "lambda: formal is not an identifier")
		}
		names = append(names, p.Car)
		cur = p.Cdr
		if value.IsNil(cur) {
			return names, false, nil
		}
	}
}

func compileSet(rest value.Value, scope *env.Frame, c *ctx, ev expander.Evaluator) error {
	parts, ok := value.ListToSlice(rest)
	if !ok || len(parts) != 2 {
		return langerr.New(langerr.Syntax, "set!: expected (set! var expr)")
	}
	if err := compileExpr(parts[1], scope, c, false, ev); err != nil {
		return err
	}
	b, ok := env.Resolve(scope, parts[0])
	if !ok {
		return langerr.New(langerr.Unbound, "set!: unbound variable")
	}
	if b.Kind != env.ValueSlot && b.Kind != env.Reserved {
		return langerr.New(langerr.Syntax, "set!: %s is not a variable", b.Name)
	}
	if b.Global != nil {
		emit(c.proto, OpSetGlobal, addConst(c.proto, b.Global))
	} else {
		depth := c.protoDepth - b.Depth
		emit(c.proto, OpSetLocal, EncodeLocal(depth, b.Slot))
	}
	emit(c.proto, OpConst, addConst(c.proto, value.Unspecified))
	return nil
}

// compileDefine handles both (define name expr) and the procedure-defining
// shorthand (define (name . formals) body...) at global scope, and reports a
// syntax error anywhere else. Internal defines are compiled by compileBody's
// letrec-shaped prologue, which calls parseDefine directly instead of going
// through this entry point; this function is only reached for genuinely
// top-level defines.
func compileDefine(rest value.Value, scope *env.Frame, c *ctx, ev expander.Evaluator) error {
	name, initForm, err := parseDefine(rest)
	if err != nil {
		return err
	}
	if !scope.IsGlobal() {
		return langerr.New(langerr.Syntax, "define: not permitted in this context")
	}
	cell := scope.DefineGlobalValue(name, value.Unspecified)
	if err := compileLambdaOrExpr(initForm, name, scope, c, ev); err != nil {
		return err
	}
	emit(c.proto, OpDefineGlobal, addConst(c.proto, cell))
	emit(c.proto, OpConst, addConst(c.proto, value.Intern(name)))
	return nil
}

// compileLambdaOrExpr compiles initForm, naming the resulting closure if
// initForm is itself a lambda expression (so closures defined via `define`
// carry their name for diagnostics, matching the teacher's naming of
// top-level function values).
func compileLambdaOrExpr(initForm value.Value, name string, scope *env.Frame, c *ctx, ev expander.Evaluator) error {
	if p, ok := initForm.(*value.Pair); ok {
		if sym, ok := p.Car.(*value.Symbol); ok && sym.Name == formLambda {
			if b, ok := env.Resolve(scope, p.Car); ok && b.Kind == env.SpecialForm && b.FormName == formLambda {
				return compileLambda(p.Cdr, name, scope, c, ev)
			}
		}
	}
	return compileExpr(initForm, scope, c, false, ev)
}

// parseDefine normalizes (define name expr) and (define (name . formals)
// body...) to a plain (name, init-expression) pair.
func parseDefine(rest value.Value) (name string, initForm value.Value, err error) {
	p, ok := rest.(*value.Pair)
	if !ok {
		return "", nil, langerr.New(langerr.Syntax, "define: malformed form")
	}
	switch target := p.Car.(type) {
	case *value.Symbol:
		vals, ok := value.ListToSlice(p.Cdr)
		if !ok || len(vals) > 1 {
			return "", nil, langerr.New(langerr.Syntax, "define: malformed form")
		}
		if len(vals) == 0 {
			return target.Name, value.Unspecified, nil
		}
		return target.Name, vals[0], nil
	case *value.Pair:
		sym, ok := target.Car.(*value.Symbol)
		if !ok {
			return "", nil, langerr.New(langerr.Syntax, "define: procedure name must be an identifier")
		}
		lambdaForm := value.Cons(value.Intern(formLambda), value.Cons(target.Cdr, p.Cdr))
		return sym.Name, lambdaForm, nil
	default:
		return "", nil, langerr.New(langerr.Syntax, "define: malformed target")
	}
}

func compileDefineSyntax(rest value.Value, scope *env.Frame, c *ctx, ev expander.Evaluator) error {
	realEv, ok := ev.(Evaluator)
	if !ok {
		return langerr.New(langerr.Syntax, "define-syntax: evaluator does not support macro elaboration")
	}
	parts, ok := value.ListToSlice(rest)
	if !ok || len(parts) != 2 {
		return langerr.New(langerr.Syntax, "define-syntax: expected (define-syntax name transformer)")
	}
	sym, ok := parts[0].(*value.Symbol)
	if !ok {
		return langerr.New(langerr.Syntax, "define-syntax: name must be an identifier")
	}
	transformer, err := elaborateTransformer(parts[1], scope, realEv)
	if err != nil {
		return err
	}
	scope.DefineMacro(sym.Name, transformer, scope)
	return nil
}

// elaborateTransformer evaluates a transformer-spec expression into an
// expander.Transformer at compile time (spec.md §4.3): syntax-rules is
// recognized statically (no VM run needed); the three constructor forms
// compile and run their procedure argument; anything else is compiled and
// run wholesale, expecting the result to already be an expander.Transformer.
func elaborateTransformer(form value.Value, scope *env.Frame, ev Evaluator) (value.Callable, error) {
	if p, ok := form.(*value.Pair); ok {
		if sym, ok := p.Car.(*value.Symbol); ok {
			switch sym.Name {
			case "syntax-rules":
				return expander.CompileSyntaxRules(p.Cdr, scope)
			case "sc-macro-transformer":
				proc, err := evalSingleArg(p.Cdr, scope, ev)
				if err != nil {
					return nil, err
				}
				return expander.NewSCMacroTransformer(proc), nil
			case "rsc-macro-transformer":
				proc, err := evalSingleArg(p.Cdr, scope, ev)
				if err != nil {
					return nil, err
				}
				return expander.NewRSCMacroTransformer(proc), nil
			case "er-macro-transformer":
				proc, err := evalSingleArg(p.Cdr, scope, ev)
				if err != nil {
					return nil, err
				}
				return expander.NewERMacroTransformer(proc), nil
			}
		}
	}
	v, err := evalExpr(form, scope, ev)
	if err != nil {
		return nil, err
	}
	t, ok := v.(value.Callable)
	if !ok {
		return nil, langerr.New(langerr.Syntax, "define-syntax: transformer expression did not produce a procedure")
	}
	return t, nil
}

func evalSingleArg(rest value.Value, scope *env.Frame, ev Evaluator) (value.Callable, error) {
	args, ok := value.ListToSlice(rest)
	if !ok || len(args) != 1 {
		return nil, langerr.New(langerr.Syntax, "transformer constructor expects exactly one procedure argument")
	}
	v, err := evalExpr(args[0], scope, ev)
	if err != nil {
		return nil, err
	}
	proc, ok := v.(value.Callable)
	if !ok {
		return nil, langerr.New(langerr.Type, "transformer constructor argument is not a procedure")
	}
	return proc, nil
}

func evalExpr(form value.Value, scope *env.Frame, ev Evaluator) (value.Value, error) {
	proto := NewProto("<macro-elaboration>")
	c := &ctx{proto: proto, protoDepth: 0}
	if err := compileExpr(form, scope, c, true, ev); err != nil {
		return nil, err
	}
	emit(proto, OpReturn, 0)
	return ev.RunProto(proto)
}

// compileLetSyntax compiles (let-syntax ((name transformer) ...) body...)
// and letrec-syntax (identical except the transformer expressions are
// elaborated in the new scope, so transformers may refer to each other and
// to themselves).
func compileLetSyntax(rest value.Value, scope *env.Frame, c *ctx, tail bool, ev expander.Evaluator, recursive bool) error {
	realEv, ok := ev.(Evaluator)
	if !ok {
		return langerr.New(langerr.Syntax, "let-syntax: evaluator does not support macro elaboration")
	}
	p, ok := rest.(*value.Pair)
	if !ok {
		return langerr.New(langerr.Syntax, "let-syntax: malformed form")
	}
	bindingForms, ok := value.ListToSlice(p.Car)
	if !ok {
		return langerr.New(langerr.Syntax, "let-syntax: malformed bindings")
	}
	bodyForms, ok := value.ListToSlice(p.Cdr)
	if !ok || len(bodyForms) == 0 {
		return langerr.New(langerr.Syntax, "let-syntax: empty body")
	}

	childEnv := scope.NewChild()
	elabEnv := scope
	if recursive {
		elabEnv = childEnv
	}
	for _, bf := range bindingForms {
		parts, ok := value.ListToSlice(bf)
		if !ok || len(parts) != 2 {
			return langerr.New(langerr.Syntax, "let-syntax: malformed binding")
		}
		sym, ok := parts[0].(*value.Symbol)
		if !ok {
			return langerr.New(langerr.Syntax, "let-syntax: binding name must be an identifier")
		}
		transformer, err := elaborateTransformer(parts[1], elabEnv, realEv)
		if err != nil {
			return err
		}
		childEnv.DefineMacro(sym.Name, transformer, childEnv)
	}
	return compileBody(bodyForms, childEnv, c, tail, ev)
}
