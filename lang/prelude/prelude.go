// Package prelude embeds the derived-syntax source unit of spec.md §4.7 and
// loads it into the global environment once, at interpreter bootstrap,
// after lang/machine.InstallIntrinsics and lang/primitives.Install have
// populated the names the prelude's own definitions expand into.
package prelude

import (
	_ "embed"
	"fmt"

	"github.com/peroxide-lang/peroxide/lang/compiler"
	"github.com/peroxide-lang/peroxide/lang/env"
	"github.com/peroxide-lang/peroxide/lang/reader"
)

//go:embed prelude.scm
var source string

// Load reads and runs every top-level form of the embedded prelude source
// against global, one form at a time, matching the incremental top-level
// evaluation model the rest of the pipeline uses (spec.md §4.4).
func Load(global *env.Frame, ev compiler.Evaluator) error {
	forms, err := reader.ReadAll("<prelude>", source)
	if err != nil {
		return fmt.Errorf("prelude: %w", err)
	}
	for _, form := range forms {
		proto, err := compiler.Compile(form, global, ev)
		if err != nil {
			return fmt.Errorf("prelude: compile: %w", err)
		}
		if _, err := ev.RunProto(proto); err != nil {
			return fmt.Errorf("prelude: run: %w", err)
		}
	}
	return nil
}
