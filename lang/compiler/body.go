package compiler

import (
	"github.com/peroxide-lang/peroxide/lang/env"
	"github.com/peroxide-lang/peroxide/lang/expander"
	"github.com/peroxide-lang/peroxide/lang/langerr"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// compileBody compiles a lambda/let-syntax body: a leading run of internal
// defines and define-syntaxes (spec.md §4.4), lifted to an implicit letrec
// so they may refer to each other and to themselves, followed by one or
// more ordinary expressions whose values are sequenced, the last in tail
// position iff tail is true.
func compileBody(forms []value.Value, scope *env.Frame, c *ctx, tail bool, ev expander.Evaluator) error {
	if scope.IsGlobal() {
		return compileSequence(forms, scope, c, tail, ev)
	}
	return compileInternalBody(forms, scope, c, tail, ev)
}

type pendingDefine struct {
	name     string
	initForm value.Value
	binding  *env.Binding
}

func compileInternalBody(forms []value.Value, scope *env.Frame, c *ctx, tail bool, ev expander.Evaluator) error {
	work := append([]value.Value(nil), forms...)
	var defines []pendingDefine
	i := 0
	for i < len(work) {
		expanded, err := expander.ExpandFully(ev, work[i], scope)
		if err != nil {
			return err
		}
		formName, isSpecial := specialFormHead(expanded, scope)
		if isSpecial && formName == formBegin {
			inner, ok := value.ListToSlice(expanded.(*value.Pair).Cdr)
			if !ok {
				return langerr.New(langerr.Syntax, "begin: malformed form")
			}
			newWork := make([]value.Value, 0, len(work)-1+len(inner))
			newWork = append(newWork, work[:i]...)
			newWork = append(newWork, inner...)
			newWork = append(newWork, work[i+1:]...)
			work = newWork
			continue // re-examine at the same index, now the first spliced form
		}
		if isSpecial && formName == formDefineSyntax {
			if err := compileDefineSyntax(expanded.(*value.Pair).Cdr, scope, c, ev); err != nil {
				return err
			}
			i++
			continue
		}
		if isSpecial && formName == formDefine {
			name, initForm, err := parseDefine(expanded.(*value.Pair).Cdr)
			if err != nil {
				return err
			}
			slot := c.allocSlot()
			b := scope.DefineReservedLocal(value.Intern(name), name, c.protoDepth, slot)
			defines = append(defines, pendingDefine{name: name, initForm: initForm, binding: b})
			i++
			continue
		}
		work[i] = expanded
		break
	}
	rest := work[i:]

	for _, d := range defines {
		emit(c.proto, OpConst, addConst(c.proto, value.UndefinedReserved))
		emit(c.proto, OpSetLocal, EncodeLocal(c.protoDepth-d.binding.Depth, d.binding.Slot))
	}
	for _, d := range defines {
		if err := compileLambdaOrExpr(d.initForm, d.name, scope, c, ev); err != nil {
			return err
		}
		depth := c.protoDepth - d.binding.Depth
		emit(c.proto, OpSetLocal, EncodeLocal(depth, d.binding.Slot))
		d.binding.Kind = env.ValueSlot
	}

	if len(rest) == 0 {
		if len(defines) == 0 {
			return langerr.New(langerr.Syntax, "body must contain at least one expression")
		}
		emit(c.proto, OpConst, addConst(c.proto, value.Unspecified))
		return nil
	}
	return compileSequence(rest, scope, c, tail, ev)
}

// specialFormHead reports the FormName of expanded if it is a pair whose
// head identifier resolves to a compiler special form in scope.
func specialFormHead(expanded value.Value, scope *env.Frame) (string, bool) {
	p, ok := expanded.(*value.Pair)
	if !ok {
		return "", false
	}
	if !env.Identifier(p.Car) {
		return "", false
	}
	b, ok := env.Resolve(scope, p.Car)
	if !ok || b.Kind != env.SpecialForm {
		return "", false
	}
	return b.FormName, true
}

func compileSequence(forms []value.Value, scope *env.Frame, c *ctx, tail bool, ev expander.Evaluator) error {
	for i, f := range forms {
		last := i == len(forms)-1
		if err := compileExpr(f, scope, c, last && tail, ev); err != nil {
			return err
		}
		if !last {
			emit(c.proto, OpPop, 0)
		}
	}
	return nil
}
