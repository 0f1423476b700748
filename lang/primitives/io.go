package primitives

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/peroxide-lang/peroxide/lang/langerr"
	"github.com/peroxide-lang/peroxide/lang/reader"
	"github.com/peroxide-lang/peroxide/lang/value"
)

// Ports is the set of live standard ports primitives write to and read from
// by default; internal/maincmd installs the real stdio streams via
// mainer.CurrentStdio, but tests and library embedders can construct their
// own Ports and pass it to Install.
type Ports struct {
	Stdin  *value.Port
	Stdout *value.Port
	Stderr *value.Port
}

// NewPorts wraps arbitrary readers/writers as the default current ports
// (used directly by internal/maincmd with mainer's stdio handles).
func NewPorts(in io.Reader, out, errW io.Writer) *Ports {
	return &Ports{
		Stdin:  value.NewInputPort("stdin", in, nil),
		Stdout: value.NewOutputPort("stdout", out, nil),
		Stderr: value.NewOutputPort("stderr", errW, nil),
	}
}

// eofObjectType is the unique value returned at end-of-file.
type eofObjectType struct{}

func (eofObjectType) Type() string   { return "eof" }
func (eofObjectType) String() string { return "#<eof>" }

// EOFObject is the unique end-of-file marker.
var EOFObject value.Value = eofObjectType{}

func outputPort(ports *Ports, args []value.Value, pos int) (*value.Port, error) {
	if len(args) > pos {
		p, ok := args[pos].(*value.Port)
		if !ok || !p.IsOutput() {
			return nil, langerr.New(langerr.Type, "expected an output port")
		}
		return p, nil
	}
	return ports.Stdout, nil
}

func inputPort(ports *Ports, args []value.Value, pos int) (*value.Port, error) {
	if len(args) > pos {
		p, ok := args[pos].(*value.Port)
		if !ok || !p.IsInput() {
			return nil, langerr.New(langerr.Type, "expected an input port")
		}
		return p, nil
	}
	return ports.Stdin, nil
}

// displayString renders v the way `display` does: strings and characters
// render as their raw content rather than their `write`/read-back form.
func displayString(v value.Value) string {
	switch x := v.(type) {
	case *value.MutableString:
		return x.Go()
	case value.Char:
		return string(rune(x))
	case *value.Pair:
		var b strings.Builder
		b.WriteByte('(')
		b.WriteString(displayString(x.Car))
		rest := x.Cdr
		for {
			if value.IsNil(rest) {
				break
			}
			if p, ok := rest.(*value.Pair); ok {
				b.WriteByte(' ')
				b.WriteString(displayString(p.Car))
				rest = p.Cdr
				continue
			}
			b.WriteString(" . ")
			b.WriteString(displayString(rest))
			break
		}
		b.WriteByte(')')
		return b.String()
	case *value.Vector:
		var b strings.Builder
		b.WriteString("#(")
		for i, e := range x.Elems {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(displayString(e))
		}
		b.WriteByte(')')
		return b.String()
	default:
		return v.String()
	}
}

func display(ports *Ports) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		p, err := outputPort(ports, args, 1)
		if err != nil {
			return nil, err
		}
		fmt.Fprint(p.W, displayString(args[0]))
		return value.Unspecified, nil
	}
}

func writeProc(ports *Ports) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		p, err := outputPort(ports, args, 1)
		if err != nil {
			return nil, err
		}
		fmt.Fprint(p.W, args[0].String())
		return value.Unspecified, nil
	}
}

func writeString(ports *Ports) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		s, ok := args[0].(*value.MutableString)
		if !ok {
			return nil, typeErr("write-string", args[0])
		}
		p, err := outputPort(ports, args, 1)
		if err != nil {
			return nil, err
		}
		fmt.Fprint(p.W, s.Go())
		return value.Unspecified, nil
	}
}

func newlineProc(ports *Ports) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		p, err := outputPort(ports, args, 0)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(p.W)
		return value.Unspecified, nil
	}
}

func readProc(ports *Ports) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		p, err := inputPort(ports, args, 0)
		if err != nil {
			return nil, err
		}
		r := reader.New(p.Name, p.R)
		v, err := r.Read()
		if err == io.EOF {
			return EOFObject, nil
		}
		if err != nil {
			return nil, langerr.New(langerr.LexParse, "%s", err.Error())
		}
		return v, nil
	}
}

func readLine(ports *Ports) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		p, err := inputPort(ports, args, 0)
		if err != nil {
			return nil, err
		}
		line, err := p.R.ReadString('\n')
		if err != nil && line == "" {
			return EOFObject, nil
		}
		return value.NewString(strings.TrimRight(line, "\n")), nil
	}
}

func isEOFObject(args []value.Value) (value.Value, error) {
	_, ok := args[0].(eofObjectType)
	return value.Boolean(ok), nil
}

func isPort(args []value.Value) (value.Value, error) {
	_, ok := args[0].(*value.Port)
	return value.Boolean(ok), nil
}

func closePort(args []value.Value) (value.Value, error) {
	p, ok := args[0].(*value.Port)
	if !ok {
		return nil, typeErr("close-port", args[0])
	}
	return value.Unspecified, p.Close()
}

func openInputString(args []value.Value) (value.Value, error) {
	s, ok := args[0].(*value.MutableString)
	if !ok {
		return nil, typeErr("open-input-string", args[0])
	}
	return value.NewInputPort("string", strings.NewReader(s.Go()), nil), nil
}

// stringPortBuffers tracks the *bytes.Buffer backing each open-output-string
// port, since value.Port only exposes an io.Writer and get-output-string
// needs to read back what was written.
var stringPortBuffers = map[*value.Port]*bytes.Buffer{}

func openOutputString(args []value.Value) (value.Value, error) {
	buf := &bytes.Buffer{}
	p := value.NewOutputPort("string", buf, nil)
	stringPortBuffers[p] = buf
	return p, nil
}

func getOutputString(args []value.Value) (value.Value, error) {
	p, ok := args[0].(*value.Port)
	if !ok {
		return nil, typeErr("get-output-string", args[0])
	}
	buf, ok := stringPortBuffers[p]
	if !ok {
		return nil, langerr.New(langerr.Type, "get-output-string: not a string output port")
	}
	return value.NewString(buf.String()), nil
}
