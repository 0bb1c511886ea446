package sys

import (
	"os"
	"runtime"
	"strings"
	"testing"
)

func TestIsATTY_RegularFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "file")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsATTY(f) {
		t.Errorf("IsATTY(regular file) -> true")
	}
}

func TestProcessUsage(t *testing.T) {
	// Burn a little CPU so that the counter is very likely positive.
	x := 0
	for i := 0; i < 1e6; i++ {
		x += i
	}
	_ = x
	if u := ProcessUsage(); u.CPU < 0 {
		t.Errorf("negative CPU time %v", u.CPU)
	}
}

func TestOSName(t *testing.T) {
	name := OSName()
	if name == "" {
		t.Fatal("OSName() is empty")
	}
	if runtime.GOOS == "linux" && name != "Linux" {
		t.Errorf("OSName() -> %q, want Linux", name)
	}
}

func TestDumpStack(t *testing.T) {
	if !strings.Contains(DumpStack(), "TestDumpStack") {
		t.Errorf("DumpStack does not contain the current function")
	}
}
