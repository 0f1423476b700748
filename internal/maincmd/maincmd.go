// Package maincmd implements the peroxide CLI contract of spec.md §6: no
// argument starts a REPL, one path argument evaluates that file and exits
// 0 on success or non-zero on any top-level error, and --help prints usage.
package maincmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mna/mainer"
	"github.com/pterm/pterm"

	"github.com/peroxide-lang/peroxide/lang/compiler"
	"github.com/peroxide-lang/peroxide/lang/env"
	"github.com/peroxide-lang/peroxide/lang/machine"
	"github.com/peroxide-lang/peroxide/lang/prelude"
	"github.com/peroxide-lang/peroxide/lang/primitives"
	"github.com/peroxide-lang/peroxide/lang/reader"
	"github.com/peroxide-lang/peroxide/lang/value"
)

const binName = "peroxide"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<path>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] [<path>]
       %[1]s -h|--help
       %[1]s -v|--version

A Scheme interpreter: reader, hygienic macro expander, bytecode compiler,
and stack VM.

With no <path>, starts an interactive REPL on stdin/stdout. With a <path>,
evaluates that file's top-level forms in order and exits 0, or non-zero if
any top-level form raises an error.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Diagnostics: set %[2]s_LOG=1 to trace each pipeline stage (reader datum,
disassembled bytecode) for every top-level form.
`, binName, "PEROXIDE")
)

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args []string
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 1 {
		return errors.New("at most one file path may be given")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	if os.Getenv("PEROXIDE_LOG") != "" {
		pterm.EnableDebugMessages()
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)

	if len(c.args) == 0 {
		runREPL(ctx, stdio)
		return mainer.Success
	}

	if err := runFile(ctx, stdio, c.args[0]); err != nil {
		pterm.Error.Println(err.Error())
		return mainer.Failure
	}
	return mainer.Success
}

// watchInterrupt forwards ctx cancellation (a caught os.Interrupt signal,
// per mainer.CancelOnSignal) to the VM's own interrupt flag, so a running
// evaluation unwinds with an Interrupted-kind error (spec.md §5) instead of
// the process being killed out from under it.
func watchInterrupt(ctx context.Context, thread *machine.Thread) {
	go func() {
		<-ctx.Done()
		thread.Interrupt()
	}()
}

// bootstrap wires a fresh global environment and thread: compiler special
// forms, VM intrinsics (call/cc, apply, values, call-with-values,
// %wind-push, %wind-pop), the native primitive library, and finally the
// Scheme-source prelude, in that dependency order (spec.md §4.7).
func bootstrap(stdio mainer.Stdio) (*env.Frame, *machine.Thread, error) {
	global := env.NewGlobal()
	compiler.InstallSpecialForms(global)
	thread := machine.NewThread(global)
	machine.InstallIntrinsics(global, thread)
	ports := primitives.NewPorts(stdio.Stdin, stdio.Stdout, stdio.Stderr)
	primitives.Install(global, thread, ports)
	if err := prelude.Load(global, thread); err != nil {
		return nil, nil, fmt.Errorf("loading prelude: %w", err)
	}
	return global, thread, nil
}

// evalTop compiles and runs a single top-level form, tracing each pipeline
// stage to pterm.Debug when PEROXIDE_LOG is set.
func evalTop(global *env.Frame, thread *machine.Thread, form value.Value) (value.Value, error) {
	pterm.Debug.Printfln("read: %s", form)
	proto, err := compiler.Compile(form, global, thread)
	if err != nil {
		return nil, err
	}
	pterm.Debug.Println(compiler.Disassemble(proto))
	return thread.RunProto(proto)
}

func runFile(ctx context.Context, stdio mainer.Stdio, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	global, thread, err := bootstrap(stdio)
	if err != nil {
		return err
	}
	watchInterrupt(ctx, thread)

	rd := reader.New(path, f)
	for {
		form, err := rd.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := evalTop(global, thread, form); err != nil {
			return err
		}
	}
}

func runREPL(ctx context.Context, stdio mainer.Stdio) {
	global, thread, err := bootstrap(stdio)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	watchInterrupt(ctx, thread)

	pterm.Info.Println("peroxide REPL — ^D to exit")
	out := bufio.NewWriter(stdio.Stdout)
	rd := reader.New("<repl>", stdio.Stdin)
	for {
		fmt.Fprint(out, "> ")
		out.Flush()
		form, err := rd.Read()
		if err == io.EOF {
			fmt.Fprintln(out)
			out.Flush()
			return
		}
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		result, err := evalTop(global, thread, form)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		fmt.Fprintln(out, result)
		out.Flush()
	}
}
