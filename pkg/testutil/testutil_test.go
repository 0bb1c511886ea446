package testutil

import (
	"os"
	"testing"
)

func TestSet(t *testing.T) {
	x := 1
	t.Run("inner", func(t *testing.T) {
		Set(t, &x, 2)
		if x != 2 {
			t.Errorf("x = %d, want 2", x)
		}
	})
	if x != 1 {
		t.Errorf("x = %d after cleanup, want 1", x)
	}
}

func TestSetenv(t *testing.T) {
	const name = "ROOK_TESTUTIL_VAR"
	os.Unsetenv(name)
	t.Run("inner", func(t *testing.T) {
		if Setenv(t, name, "v") != "v" || os.Getenv(name) != "v" {
			t.Errorf("Setenv did not set the variable")
		}
	})
	if _, ok := os.LookupEnv(name); ok {
		t.Errorf("variable should be unset after cleanup")
	}
}

func TestInTempDir(t *testing.T) {
	old, _ := os.Getwd()
	var dir string
	t.Run("inner", func(t *testing.T) {
		dir = InTempDir(t)
		if wd, _ := os.Getwd(); wd != dir {
			t.Errorf("working directory %q, want %q", wd, dir)
		}
	})
	if wd, _ := os.Getwd(); wd != old {
		t.Errorf("working directory %q after cleanup, want %q", wd, old)
	}
}
