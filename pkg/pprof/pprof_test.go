package pprof_test

import (
	"os"
	"testing"

	"src.rook.sh/pkg/pprof"
	"src.rook.sh/pkg/prog"
	"src.rook.sh/pkg/prog/progtest"
	"src.rook.sh/pkg/testutil"
)

var (
	Test     = progtest.Test
	ThatRook = progtest.ThatRook
)

func TestProgram(t *testing.T) {
	testutil.InTempDir(t)

	Test(t, prog.Composite(&pprof.Program{}, noopProgram{}),
		ThatRook("-cpuprofile", "cpuprof").DoesNothing(),
		ThatRook("-memprofile", "memprof").DoesNothing(),
		ThatRook("-cpuprofile", "/a/bad/path").
			WritesStderrContaining("Warning: cannot create CPU profile:"),
	)

	// There isn't much to check beyond the existence of the profiles.
	for _, name := range []string{"cpuprof", "memprof"} {
		if _, err := os.Stat(name); err != nil {
			t.Errorf("profile %s does not exist: %v", name, err)
		}
	}
}

type noopProgram struct{}

func (noopProgram) RegisterFlags(*prog.FlagSet)     {}
func (noopProgram) Run([3]*os.File, []string) error { return nil }
