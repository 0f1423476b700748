package compiler

import (
	"github.com/peroxide-lang/peroxide/lang/env"
	"github.com/peroxide-lang/peroxide/lang/expander"
	"github.com/peroxide-lang/peroxide/lang/langerr"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// Special form names recognized directly by the compiler (spec.md §5). They
// are installed as env.SpecialForm bindings in the global frame by
// InstallSpecialForms, once, at interpreter bootstrap.
const (
	formQuote        = "quote"
	formSyntaxQuote  = "syntax-quote"
	formIf           = "if"
	formLambda       = "lambda"
	formSetBang      = "set!"
	formDefine       = "define"
	formDefineSyntax = "define-syntax"
	formLetSyntax    = "let-syntax"
	formLetrecSyntax = "letrec-syntax"
	formBegin        = "begin"
)

var specialFormNames = []string{
	formQuote, formSyntaxQuote, formIf, formLambda, formSetBang,
	formDefine, formDefineSyntax, formLetSyntax, formLetrecSyntax, formBegin,
}

// InstallSpecialForms registers the compiler's fixed keyword set into the
// global frame. Called once during interpreter bootstrap, before the
// prelude (which relies on these, plus define-syntax, to bootstrap its own
// derived forms) is compiled.
func InstallSpecialForms(global *env.Frame) {
	for _, name := range specialFormNames {
		global.DefineSpecialForm(name)
	}
}

// ctx tracks the state of the Proto currently being emitted into: its slot
// and depth bookkeeping. Every lambda body gets one ctx; a let-syntax/internal
// define body shares its enclosing lambda's ctx (slots are never reused
// across sibling blocks within one Proto — simple and correct, if not
// maximally compact).
type ctx struct {
	proto      *Proto
	protoDepth int
	parent     *ctx
}

func (c *ctx) allocSlot() int {
	slot := c.proto.NumLocals
	c.proto.NumLocals++
	return slot
}

// Compile compiles a single expanded-or-not top-level form into a Proto
// representing a zero-argument thunk, suitable for the VM to invoke once.
// Top-level forms are compiled and run one at a time (spec.md §4.4's
// incremental global-definition model), so each gets its own Proto rather
// than being merged into one body.
func Compile(form value.Value, global *env.Frame, ev expander.Evaluator) (*Proto, error) {
	p := NewProto("<toplevel>")
	c := &ctx{proto: p, protoDepth: 0}
	if err := compileExpr(form, global, c, true, ev); err != nil {
		return nil, err
	}
	emit(p, OpReturn, 0)
	return p, nil
}

func emit(p *Proto, op Op, operand int) int {
	p.Code = append(p.Code, Instr{Op: op, Operand: operand})
	return len(p.Code) - 1
}

func addConst(p *Proto, v value.Value) int {
	for i, existing := range p.Consts {
		if sameConstant(existing, v) {
			return i
		}
	}
	p.Consts = append(p.Consts, v)
	return len(p.Consts) - 1
}

// sameConstant implements the constant-pool dedup rule of spec.md §5:
// eqv?-style identity for immediates and symbols, and reference identity for
// everything else, compound literal data (quoted lists/vectors) included:
// two separately read but equal lists get separate pool entries, and a
// *Proto is never shared structurally.
func sameConstant(a, b value.Value) bool {
	switch av := a.(type) {
	case value.Fixnum:
		bv, ok := b.(value.Fixnum)
		return ok && av == bv
	case value.Inexact:
		bv, ok := b.(value.Inexact)
		return ok && av == bv
	case value.Boolean:
		bv, ok := b.(value.Boolean)
		return ok && av == bv
	case value.Char:
		bv, ok := b.(value.Char)
		return ok && av == bv
	case *value.Symbol:
		bv, ok := b.(*value.Symbol)
		return ok && av == bv
	default:
		if value.IsNil(a) {
			return value.IsNil(b)
		}
		return a == b
	}
}

// compileExpr compiles form for its value, in tail position iff tail is
// true, emitting into c.proto.
func compileExpr(form value.Value, scope *env.Frame, c *ctx, tail bool, ev expander.Evaluator) error {
	switch v := form.(type) {
	case *value.Symbol:
		return compileIdentifierRef(form, v, scope, c)
	case *env.SyntacticClosure:
		return compileIdentifierRef(form, form, scope, c)
	case *value.Pair:
		return compileCombination(v, scope, c, tail, ev)
	default:
		emit(c.proto, OpConst, addConst(c.proto, form))
		return nil
	}
}

func compileIdentifierRef(id value.Value, forDiag value.Value, scope *env.Frame, c *ctx) error {
	b, ok := env.Resolve(scope, id)
	if !ok {
		name, _ := env.ResolvedSymbol(scope, id)
		nm := "?"
		if name != nil {
			nm = name.Name
		}
		return langerr.New(langerr.Unbound, "unbound variable: %s", nm)
	}
	switch b.Kind {
	case env.ValueSlot:
		if b.Global != nil {
			emit(c.proto, OpGetGlobal, addConst(c.proto, b.Global))
			return nil
		}
		depth := c.protoDepth - b.Depth
		emit(c.proto, OpGetLocal, EncodeLocal(depth, b.Slot))
		return nil
	case env.Reserved:
		depth := c.protoDepth - b.Depth
		emit(c.proto, OpGetLocal, EncodeLocal(depth, b.Slot))
		return nil
	case env.Macro, env.SpecialForm:
		return langerr.New(langerr.Syntax, "%s: cannot be used as a variable", b.Name)
	default:
		return langerr.New(langerr.Unbound, "unbound variable")
	}
}

func compileCombination(p *value.Pair, scope *env.Frame, c *ctx, tail bool, ev expander.Evaluator) error {
	expanded, changed, err := expander.Expand1(ev, p, scope)
	if err != nil {
		return err
	}
	if changed {
		return compileExpr(expanded, scope, c, tail, ev)
	}
	if env.Identifier(p.Car) {
		if b, ok := env.Resolve(scope, p.Car); ok && b.Kind == env.SpecialForm {
			return compileSpecialForm(b.FormName, p.Cdr, scope, c, tail, ev)
		}
	}
	return compileApplication(p, scope, c, tail, ev)
}

func compileApplication(p *value.Pair, scope *env.Frame, c *ctx, tail bool, ev expander.Evaluator) error {
	if err := compileExpr(p.Car, scope, c, false, ev); err != nil {
		return err
	}
	args, ok := value.ListToSlice(p.Cdr)
	if !ok {
		return langerr.New(langerr.Syntax, "combination is not a proper list")
	}
	for _, a := range args {
		if err := compileExpr(a, scope, c, false, ev); err != nil {
			return err
		}
	}
	op := OpCall
	if tail {
		op = OpTailCall
	}
	emit(c.proto, op, len(args))
	return nil
}
