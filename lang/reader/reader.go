// Package reader implements the datum grammar of spec.md §6. The reader is
// explicitly out of scope for the hard engineering this specification
// covers (macro expansion and the compiler/VM), but the rest of the
// pipeline needs a working producer of data to compile, so this package
// gives the minimal, direct implementation spec.md's grammar describes:
// integers, decimals, strings, characters, booleans, symbols, proper and
// improper lists, vectors, and the quote family of reader macros.
package reader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peroxide-lang/peroxide/lang/token"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// Error is a malformed-datum (Lex/Parse, spec.md §7 kind 1) error with a
// source position.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	if e.Pos.Unknown() {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Reader reads successive datums from a source of text.
type Reader struct {
	filename string
	br       *bufio.Reader
	line     int
	col      int
	// peeked holds a single rune of pushback, used when a token must look
	// ahead by one rune past its own extent (e.g. distinguishing `.` from a
	// symbol starting with a dot, or the end of a token).
	peeked     rune
	hasPeeked  bool
	peekedSize int
}

// New returns a Reader over r. filename is used only for diagnostics.
func New(filename string, r io.Reader) *Reader {
	return &Reader{filename: filename, br: bufio.NewReader(r), line: 1, col: 1}
}

// NewFromString is a convenience constructor over a string source.
func NewFromString(filename, src string) *Reader {
	return New(filename, strings.NewReader(src))
}

func (r *Reader) pos() token.Pos {
	return token.Pos{Filename: r.filename, Line: r.line, Col: r.col}
}

func (r *Reader) errorf(format string, args ...interface{}) error {
	return &Error{Pos: r.pos(), Msg: fmt.Sprintf(format, args...)}
}

func (r *Reader) next() (rune, error) {
	if r.hasPeeked {
		r.hasPeeked = false
		return r.peeked, nil
	}
	ch, _, err := r.br.ReadRune()
	if err != nil {
		return 0, err
	}
	r.advancePos(ch)
	return ch, nil
}

func (r *Reader) advancePos(ch rune) {
	if ch == '\n' {
		r.line++
		r.col = 1
	} else {
		r.col++
	}
}

func (r *Reader) unread(ch rune) {
	r.hasPeeked = true
	r.peeked = ch
	// Position accounting for a single rune of pushback: the position
	// already counts ch (next counted it when it was first read, newline
	// included), so next does not count it again when it hands it back.
}

func (r *Reader) peek() (rune, error) {
	ch, err := r.next()
	if err != nil {
		return 0, err
	}
	r.unread(ch)
	return ch, nil
}

// ReadAll reads every top-level datum in the source, stopping at EOF.
func ReadAll(filename, src string) ([]value.Value, error) {
	rd := NewFromString(filename, src)
	var out []value.Value
	for {
		d, err := rd.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, d)
	}
}

// Read parses and returns the next datum, or io.EOF if the source is
// exhausted (after skipping only whitespace and comments).
func (r *Reader) Read() (value.Value, error) {
	if err := r.skipAtmosphere(); err != nil {
		return nil, err
	}
	ch, err := r.next()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	return r.readDatum(ch)
}

func isDelimiter(ch rune) bool {
	switch ch {
	case '(', ')', '[', ']', '"', ';', '\'', '`', ',', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func (r *Reader) skipAtmosphere() error {
	for {
		ch, err := r.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch {
		case ch == ';':
			for {
				c, err := r.next()
				if err == io.EOF || c == '\n' {
					break
				}
				if err != nil {
					return err
				}
			}
		case ch == '#':
			// Look at the following byte without consuming it: the single
			// rune of pushback is needed for '#' itself below.
			if nb, perr := r.br.Peek(1); perr == nil && nb[0] == '|' {
				r.next()
				if err := r.skipBlockComment(); err != nil {
					return err
				}
				continue
			}
			r.unread(ch)
			return nil
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			// keep skipping
		default:
			r.unread(ch)
			return nil
		}
	}
}

func (r *Reader) skipBlockComment() error {
	depth := 1
	for depth > 0 {
		ch, err := r.next()
		if err != nil {
			return r.errorf("unterminated block comment")
		}
		if ch == '#' {
			if nc, _ := r.peek(); nc == '|' {
				r.next()
				depth++
				continue
			}
		}
		if ch == '|' {
			if nc, _ := r.peek(); nc == '#' {
				r.next()
				depth--
				continue
			}
		}
	}
	return nil
}

func (r *Reader) readDatum(ch rune) (value.Value, error) {
	switch ch {
	case '(', '[':
		return r.readList(closingFor(ch))
	case ')', ']':
		return nil, r.errorf("unexpected %q", ch)
	case '\'':
		return r.readWrapped("quote")
	case '`':
		return r.readWrapped("quasiquote")
	case ',':
		nc, err := r.peek()
		if err == nil && nc == '@' {
			r.next()
			return r.readWrapped("unquote-splicing")
		}
		return r.readWrapped("unquote")
	case '"':
		return r.readString()
	case '#':
		return r.readHash()
	default:
		return r.readAtom(ch)
	}
}

func closingFor(open rune) rune {
	if open == '[' {
		return ']'
	}
	return ')'
}

func (r *Reader) readWrapped(sym string) (value.Value, error) {
	if err := r.skipAtmosphere(); err != nil {
		return nil, err
	}
	ch, err := r.next()
	if err != nil {
		return nil, r.errorf("expected datum after %s", sym)
	}
	d, err := r.readDatum(ch)
	if err != nil {
		return nil, err
	}
	return value.List(value.Intern(sym), d), nil
}

func (r *Reader) readList(closer rune) (value.Value, error) {
	var elems []value.Value
	var tail value.Value = value.Nil
	for {
		if err := r.skipAtmosphere(); err != nil {
			return nil, err
		}
		ch, err := r.next()
		if err != nil {
			return nil, r.errorf("unterminated list")
		}
		if ch == closer || ch == ')' || ch == ']' {
			break
		}
		if ch == '.' {
			nc, perr := r.peek()
			if perr != nil || isDelimiter(nc) {
				// dotted tail
				if err := r.skipAtmosphere(); err != nil {
					return nil, err
				}
				tc, terr := r.next()
				if terr != nil {
					return nil, r.errorf("expected datum after .")
				}
				tail, err = r.readDatum(tc)
				if err != nil {
					return nil, err
				}
				if err := r.skipAtmosphere(); err != nil {
					return nil, err
				}
				cc, cerr := r.next()
				if cerr != nil || (cc != closer && cc != ')' && cc != ']') {
					return nil, r.errorf("malformed dotted list")
				}
				break
			}
		}
		d, err := r.readDatum(ch)
		if err != nil {
			return nil, err
		}
		elems = append(elems, d)
	}
	result := tail
	for i := len(elems) - 1; i >= 0; i-- {
		result = value.Cons(elems[i], result)
	}
	return result, nil
}

func (r *Reader) readString() (value.Value, error) {
	var sb strings.Builder
	for {
		ch, err := r.next()
		if err != nil {
			return nil, r.errorf("unterminated string")
		}
		if ch == '"' {
			break
		}
		if ch == '\\' {
			ec, err := r.next()
			if err != nil {
				return nil, r.errorf("unterminated string escape")
			}
			switch ec {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case 'a':
				sb.WriteByte(7)
			case 'b':
				sb.WriteByte(8)
			case '"', '\\':
				sb.WriteRune(ec)
			case '\n':
				// escaped newline: splice, skip following intraline whitespace
				for {
					nc, perr := r.peek()
					if perr != nil || (nc != ' ' && nc != '\t') {
						break
					}
					r.next()
				}
			default:
				sb.WriteRune(ec)
			}
			continue
		}
		sb.WriteRune(ch)
	}
	return value.NewString(sb.String()), nil
}

func (r *Reader) readHash() (value.Value, error) {
	ch, err := r.next()
	if err != nil {
		return nil, r.errorf("unexpected EOF after #")
	}
	switch ch {
	case 't':
		r.consumeRestOfAtomWord("rue")
		return value.Boolean(true), nil
	case 'f':
		r.consumeRestOfAtomWord("alse")
		return value.Boolean(false), nil
	case '\\':
		return r.readChar()
	case '(':
		lst, err := r.readList(')')
		if err != nil {
			return nil, err
		}
		elems, ok := value.ListToSlice(lst)
		if !ok {
			return nil, r.errorf("malformed vector literal")
		}
		return value.NewVector(elems), nil
	case 'u':
		// #u8( ... ) bytevector
		r.consumeRestOfAtomWord("8")
		ch2, err := r.next()
		if err != nil || ch2 != '(' {
			return nil, r.errorf("expected ( after #u8")
		}
		lst, err := r.readList(')')
		if err != nil {
			return nil, err
		}
		elems, ok := value.ListToSlice(lst)
		if !ok {
			return nil, r.errorf("malformed bytevector literal")
		}
		bs := make([]byte, len(elems))
		for i, e := range elems {
			fx, ok := e.(value.Fixnum)
			if !ok || fx < 0 || fx > 255 {
				return nil, r.errorf("bytevector element out of range")
			}
			bs[i] = byte(fx)
		}
		return value.NewBytevector(bs), nil
	case ';':
		// datum comment: read and discard the next datum, then read again.
		if err := r.skipAtmosphere(); err != nil {
			return nil, err
		}
		dc, err := r.next()
		if err != nil {
			return nil, r.errorf("expected datum after #;")
		}
		if _, err := r.readDatum(dc); err != nil {
			return nil, err
		}
		return r.Read()
	default:
		return nil, r.errorf("unsupported # syntax: #%c", ch)
	}
}

// consumeRestOfAtomWord optionally consumes the remaining letters of a long
// form such as #true/#false, tolerating the short #t/#f form.
func (r *Reader) consumeRestOfAtomWord(rest string) {
	for _, want := range rest {
		nc, err := r.peek()
		if err != nil || nc != want {
			return
		}
		r.next()
	}
}

var namedChars = map[string]rune{}

func (r *Reader) readChar() (value.Value, error) {
	first, err := r.next()
	if err != nil {
		return nil, r.errorf("unterminated character literal")
	}
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		nc, perr := r.peek()
		if perr != nil || isDelimiter(nc) {
			break
		}
		r.next()
		sb.WriteRune(nc)
	}
	name := sb.String()
	if len([]rune(name)) == 1 {
		return value.Char(first), nil
	}
	rn, ok := value.CharByName(name)
	if !ok {
		return nil, r.errorf("unknown character name #\\%s", name)
	}
	return value.Char(rn), nil
}

func (r *Reader) readAtom(first rune) (value.Value, error) {
	var sb strings.Builder
	sb.WriteRune(first)
	if first == '|' {
		// |...| verbatim symbol
		sb.Reset()
		for {
			ch, err := r.next()
			if err != nil {
				return nil, r.errorf("unterminated |...| symbol")
			}
			if ch == '|' {
				break
			}
			sb.WriteRune(ch)
		}
		return value.Intern(sb.String()), nil
	}
	for {
		nc, err := r.peek()
		if err != nil || isDelimiter(nc) {
			break
		}
		r.next()
		sb.WriteRune(nc)
	}
	return atomFromText(sb.String())
}

func atomFromText(text string) (value.Value, error) {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return value.Fixnum(n), nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && looksNumeric(text) {
		return value.Inexact(f), nil
	}
	return value.Intern(text), nil
}

// looksNumeric guards against strconv.ParseFloat accepting things like
// "inf"/"nan" spelled out as a plain symbol name.
func looksNumeric(text string) bool {
	for _, c := range text {
		if (c >= '0' && c <= '9') || c == '.' || c == '+' || c == '-' || c == 'e' || c == 'E' {
			continue
		}
		return false
	}
	hasDigit := false
	for _, c := range text {
		if c >= '0' && c <= '9' {
			hasDigit = true
			break
		}
	}
	return hasDigit
}
