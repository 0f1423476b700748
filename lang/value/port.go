package value

import (
	"bufio"
	"fmt"
	"io"
)

// Port wraps an OS file descriptor (or an in-memory reader/writer for
// string ports) for I/O primitives. Ports close via explicit close-port
// calls or process exit (spec.md §4.1: no finalizers).
type Port struct {
	Name     string
	R        *bufio.Reader
	W        io.Writer
	Closer   io.Closer
	isInput  bool
	isOutput bool
	closed   bool
}

func NewInputPort(name string, r io.Reader, closer io.Closer) *Port {
	return &Port{Name: name, R: bufio.NewReader(r), Closer: closer, isInput: true}
}

func NewOutputPort(name string, w io.Writer, closer io.Closer) *Port {
	return &Port{Name: name, W: w, Closer: closer, isOutput: true}
}

func (p *Port) Type() string { return "port" }
func (p *Port) String() string {
	kind := "input"
	if p.isOutput {
		kind = "output"
	}
	return fmt.Sprintf("#<%s-port %s>", kind, p.Name)
}

func (p *Port) IsInput() bool  { return p.isInput }
func (p *Port) IsOutput() bool { return p.isOutput }
func (p *Port) Closed() bool   { return p.closed }

func (p *Port) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if p.Closer != nil {
		return p.Closer.Close()
	}
	return nil
}
