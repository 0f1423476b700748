package machine_test

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peroxide-lang/peroxide/internal/filetest"
	"github.com/peroxide-lang/peroxide/lang/compiler"
	"github.com/peroxide-lang/peroxide/lang/env"
	"github.com/peroxide-lang/peroxide/lang/machine"
	"github.com/peroxide-lang/peroxide/lang/prelude"
	"github.com/peroxide-lang/peroxide/lang/primitives"
	"github.com/peroxide-lang/peroxide/lang/reader"
)

func readTestdata(name string) (string, error) {
	b, err := os.ReadFile(filepath.Join("testdata", name))
	return string(b), err
}

var updateGolden = flag.Bool("test.update-golden-tests", false, "update lang/machine/testdata/*.want golden files")

// runScript bootstraps a full interpreter the way internal/maincmd's
// bootstrap does and runs every top-level form of src against it in order,
// returning everything the program wrote to its output port.
func runScript(t *testing.T, src string) string {
	t.Helper()
	global := env.NewGlobal()
	compiler.InstallSpecialForms(global)
	thread := machine.NewThread(global)
	machine.InstallIntrinsics(global, thread)
	var out strings.Builder
	ports := primitives.NewPorts(strings.NewReader(""), &out, &out)
	primitives.Install(global, thread, ports)
	require.NoError(t, prelude.Load(global, thread))

	forms, err := reader.ReadAll(t.Name(), src)
	require.NoError(t, err)
	for _, form := range forms {
		p, err := compiler.Compile(form, global, thread)
		require.NoError(t, err)
		_, err = thread.RunProto(p)
		require.NoError(t, err)
	}
	return out.String()
}

// TestGolden runs every lang/machine/testdata/*.scm script through a full
// interpreter and diffs its output against the matching *.scm.want golden
// file, using the teacher's own diff-based golden-file harness
// (internal/filetest) rather than a bespoke one. Run with
// -test.update-golden-tests to regenerate the golden files after a
// deliberate behavior change.
func TestGolden(t *testing.T) {
	for _, fi := range filetest.SourceFiles(t, "testdata", ".scm") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := readTestdata(fi.Name())
			require.NoError(t, err)
			got := runScript(t, src)
			filetest.DiffOutput(t, fi, got, "testdata", updateGolden)
		})
	}
}
