package primitives

import (
	"math"

	"github.com/peroxide-lang/peroxide/lang/env"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// Install registers every native procedure of the standard library into
// global. ev supplies Apply (for the higher-order list/vector procedures)
// and RunProto (for eval); ports supplies the default current-input/output/
// error ports display/write/read and friends fall back to. Called once at
// interpreter bootstrap, before the prelude compiles (the prelude's derived
// forms expand into calls to these names).
func Install(global *env.Frame, ev Evaluator, ports *Ports) {
	def := func(name string, fn func([]value.Value) (value.Value, error)) {
		global.DefineGlobalValue(name, value.NewNativeProc(name, fn))
	}
	defFixed := func(name string, n int, fn func([]value.Value) (value.Value, error)) {
		global.DefineGlobalValue(name, wrapFixed(name, n, fn))
	}

	// Numeric tower (spec.md §4.5).
	def("+", add)
	def("-", sub)
	def("*", mul)
	def("/", div)
	defFixed("quotient", 2, quotient)
	defFixed("remainder", 2, remainderProc)
	defFixed("modulo", 2, modulo)
	def("gcd", gcdProc)
	def("lcm", lcmProc)
	def("=", func(a []value.Value) (value.Value, error) { return compareChain("=", a, func(x, y float64) bool { return x == y }) })
	def("<", func(a []value.Value) (value.Value, error) { return compareChain("<", a, func(x, y float64) bool { return x < y }) })
	def(">", func(a []value.Value) (value.Value, error) { return compareChain(">", a, func(x, y float64) bool { return x > y }) })
	def("<=", func(a []value.Value) (value.Value, error) { return compareChain("<=", a, func(x, y float64) bool { return x <= y }) })
	def(">=", func(a []value.Value) (value.Value, error) { return compareChain(">=", a, func(x, y float64) bool { return x >= y }) })
	defFixed("abs", 1, absProc)
	def("min", func(a []value.Value) (value.Value, error) { return minMax("min", a, func(x, y float64) bool { return x < y }) })
	def("max", func(a []value.Value) (value.Value, error) { return minMax("max", a, func(x, y float64) bool { return x > y }) })
	defFixed("expt", 2, exptProc)
	defFixed("floor", 1, roundingProc("floor", math.Floor))
	defFixed("ceiling", 1, roundingProc("ceiling", math.Ceil))
	defFixed("truncate", 1, roundingProc("truncate", math.Trunc))
	defFixed("round", 1, roundingProc("round", math.RoundToEven))
	defFixed("sqrt", 1, sqrtProc)
	defFixed("exact->inexact", 1, exactToInexact)
	defFixed("inexact->exact", 1, inexactToExact)
	defFixed("exact", 1, inexactToExact)
	defFixed("inexact", 1, exactToInexact)
	def("number->string", numberToString)
	defFixed("number?", 1, isNumber)
	defFixed("integer?", 1, isInteger)
	defFixed("exact?", 1, isExact)
	defFixed("inexact?", 1, isInexactNum)
	defFixed("zero?", 1, isZero)
	defFixed("positive?", 1, isPositive)
	defFixed("negative?", 1, isNegative)
	defFixed("odd?", 1, isOdd)
	defFixed("even?", 1, isEven)

	// Booleans and equivalence predicates (spec.md §4.6).
	defFixed("not", 1, notProc)
	defFixed("boolean?", 1, isBoolean)
	defFixed("eq?", 2, func(a []value.Value) (value.Value, error) { return value.Boolean(eqProc(a[0], a[1])), nil })
	defFixed("eqv?", 2, func(a []value.Value) (value.Value, error) { return value.Boolean(eqvProc(a[0], a[1])), nil })
	defFixed("equal?", 2, func(a []value.Value) (value.Value, error) { return value.Boolean(equalProc(a[0], a[1])), nil })

	// Pairs and lists.
	defFixed("cons", 2, cons)
	defFixed("car", 1, car)
	defFixed("cdr", 1, cdr)
	defFixed("set-car!", 2, setCar)
	defFixed("set-cdr!", 2, setCdr)
	for _, path := range []string{
		"aa", "ad", "da", "dd",
		"aaa", "aad", "ada", "add", "daa", "dad", "dda", "ddd",
		"aaaa", "aaad", "aada", "aadd", "adaa", "adad", "adda", "addd",
		"daaa", "daad", "dada", "dadd", "ddaa", "ddad", "ddda", "dddd",
	} {
		defFixed("c"+path+"r", 1, cxr(path))
	}
	defFixed("pair?", 1, isPair)
	defFixed("null?", 1, isNull)
	defFixed("list?", 1, isListProc)
	def("list", listProc)
	defFixed("length", 1, length)
	def("append", appendProc)
	defFixed("reverse", 1, reverseProc)
	defFixed("list-tail", 2, listTail)
	defFixed("list-ref", 2, listRef)
	defFixed("list-copy", 1, listCopy)
	def("memq", memberGeneric(eqProc))
	def("memv", memberGeneric(eqvProc))
	def("member", memberGeneric(equalProc))
	def("assq", assocGeneric(eqProc))
	def("assv", assocGeneric(eqvProc))
	def("assoc", assocGeneric(equalProc))
	def("map", mapProc(ev))
	def("for-each", forEachProc(ev))

	// Symbols.
	defFixed("symbol?", 1, isSymbol)
	def("gensym", gensymProc)

	// Characters.
	defFixed("char?", 1, isChar)
	defFixed("char->integer", 1, charToInteger)
	defFixed("integer->char", 1, integerToChar)
	defFixed("char-upcase", 1, charUpcase)
	defFixed("char-downcase", 1, charDowncase)
	defFixed("char-alphabetic?", 1, charIsAlpha)
	defFixed("char-numeric?", 1, charIsNumeric)
	defFixed("char-whitespace?", 1, charIsWhitespace)
	defFixed("char-upper-case?", 1, charIsUpper)
	defFixed("char-lower-case?", 1, charIsLower)
	def("char=?", func(a []value.Value) (value.Value, error) { return charCompareChain("char=?", a, func(x, y rune) bool { return x == y }) })
	def("char<?", func(a []value.Value) (value.Value, error) { return charCompareChain("char<?", a, func(x, y rune) bool { return x < y }) })
	def("char>?", func(a []value.Value) (value.Value, error) { return charCompareChain("char>?", a, func(x, y rune) bool { return x > y }) })
	def("char<=?", func(a []value.Value) (value.Value, error) { return charCompareChain("char<=?", a, func(x, y rune) bool { return x <= y }) })
	def("char>=?", func(a []value.Value) (value.Value, error) { return charCompareChain("char>=?", a, func(x, y rune) bool { return x >= y }) })

	// Strings.
	defFixed("string?", 1, isString)
	def("make-string", makeString)
	def("string", stringProc)
	defFixed("string-length", 1, stringLength)
	defFixed("string-ref", 2, stringRef)
	defFixed("string-set!", 3, stringSet)
	def("string-append", stringAppend)
	def("substring", substring)
	defFixed("string-copy", 1, stringCopy)
	defFixed("string->list", 1, stringToList)
	defFixed("list->string", 1, listToString)
	defFixed("string-upcase", 1, stringUpcase)
	defFixed("string-downcase", 1, stringDowncase)
	def("string=?", func(a []value.Value) (value.Value, error) { return stringCompareChain("string=?", a, func(x, y string) bool { return x == y }) })
	def("string<?", func(a []value.Value) (value.Value, error) { return stringCompareChain("string<?", a, func(x, y string) bool { return x < y }) })
	def("string>?", func(a []value.Value) (value.Value, error) { return stringCompareChain("string>?", a, func(x, y string) bool { return x > y }) })
	def("string<=?", func(a []value.Value) (value.Value, error) { return stringCompareChain("string<=?", a, func(x, y string) bool { return x <= y }) })
	def("string>=?", func(a []value.Value) (value.Value, error) { return stringCompareChain("string>=?", a, func(x, y string) bool { return x >= y }) })
	def("string->number", stringToNumber)
	defFixed("symbol->string", 1, symbolToString)
	defFixed("string->symbol", 1, stringToSymbol)

	// Vectors.
	defFixed("vector?", 1, isVector)
	def("make-vector", makeVector)
	def("vector", vectorProc)
	defFixed("vector-length", 1, vectorLength)
	defFixed("vector-ref", 2, vectorRef)
	defFixed("vector-set!", 3, vectorSet)
	defFixed("vector->list", 1, vectorToList)
	defFixed("list->vector", 1, listToVector)
	defFixed("vector-fill!", 2, vectorFill)
	def("vector-copy", vectorCopy)
	def("vector-map", vectorMap(ev))
	def("vector-for-each", vectorForEach(ev))

	// Bytevectors (R7RS).
	defFixed("bytevector?", 1, isBytevector)
	def("make-bytevector", makeBytevector)
	def("bytevector", bytevectorProc)
	defFixed("bytevector-length", 1, bytevectorLength)
	defFixed("bytevector-u8-ref", 2, bytevectorRef)
	defFixed("bytevector-u8-set!", 3, bytevectorSet)
	def("bytevector-append", bytevectorAppend)
	defFixed("utf8->string", 1, utf8ToString)
	defFixed("string->utf8", 1, stringToUtf8)

	// Procedures.
	defFixed("procedure?", 1, isProcedure)

	// I/O (spec.md's port model).
	def("display", display(ports))
	def("write", writeProc(ports))
	def("write-string", writeString(ports))
	def("newline", newlineProc(ports))
	def("read", readProc(ports))
	def("read-line", readLine(ports))
	defFixed("eof-object?", 1, isEOFObject)
	defFixed("eof-object", 0, func([]value.Value) (value.Value, error) { return EOFObject, nil })
	defFixed("port?", 1, isPort)
	defFixed("close-port", 1, closePort)
	defFixed("open-input-string", 1, openInputString)
	defFixed("open-output-string", 0, openOutputString)
	defFixed("get-output-string", 1, getOutputString)

	// Control, promises, and the macro-expander's environment/identifier
	// surface (spec.md §§3-4.3, 4.6).
	def("eval", evalProc(ev, global))
	defFixed("interaction-environment", 0, interactionEnvironment(global))
	def("error", errorProc)
	defFixed("promise?", 1, isPromise)
	defFixed("make-promise", 1, makePromise)
	defFixed("force", 1, forceProc(ev))
	defFixed("%promise-new", 2, promiseNew)
	defFixed("identifier?", 1, isIdentifier)
	defFixed("identifier=?", 4, identifierEqualProc)
	defFixed("make-syntactic-closure", 3, makeSyntacticClosureProc)
	defFixed("strip-syntactic-closures", 1, stripSyntacticClosures)
}
