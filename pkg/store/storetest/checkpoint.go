package storetest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"src.rook.sh/pkg/replay"
	"src.rook.sh/pkg/store/storedefs"
)

// TestCheckpoint tests the named checkpoint functionality of a Store.
func TestCheckpoint(t *testing.T, store storedefs.Store) {
	t.Helper()

	if _, err := store.Checkpoint("missing"); !matchErr(err, storedefs.ErrNoCheckpoint) {
		t.Errorf("Checkpoint(missing) => %v, want %v", err, storedefs.ErrNoCheckpoint)
	}

	s := replay.New(1)
	s.Execute(`let x = 42; let s = "hi"`)
	saved := s.Checkpoint()
	for _, name := range []string{"b", "a"} {
		if err := store.SaveCheckpoint(name, saved); err != nil {
			t.Errorf("SaveCheckpoint(%q) => %v", name, err)
		}
	}

	names, err := store.CheckpointNames()
	if !cmp.Equal(names, []string{"a", "b"}) || err != nil {
		t.Errorf("CheckpointNames() => (%v, %v), want ([a b], nil)", names, err)
	}

	loaded, err := store.Checkpoint("a")
	if err != nil {
		t.Fatalf("Checkpoint(a) => %v", err)
	}
	if diff := cmp.Diff(saved, loaded, cmpopts.IgnoreUnexported(replay.Checkpoint{})); diff != "" {
		t.Errorf("loaded checkpoint differs (-saved +loaded):\n%s", diff)
	}

	fresh := replay.New(1)
	fresh.Restore(loaded)
	if r := fresh.Execute("x"); r.Value != int64(42) {
		t.Errorf("x after restoring a loaded checkpoint = %v (%v), want 42", r.Value, r.Err)
	}

	if err := store.DelCheckpoint("a"); err != nil {
		t.Errorf("DelCheckpoint(a) => %v", err)
	}
	if _, err := store.Checkpoint("a"); !matchErr(err, storedefs.ErrNoCheckpoint) {
		t.Errorf("Checkpoint(a) after deletion => %v, want %v", err, storedefs.ErrNoCheckpoint)
	}
}
