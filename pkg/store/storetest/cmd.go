package storetest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"src.rook.sh/pkg/store/storedefs"
)

var (
	cmds     = []string{"let x = 1", "x + 1", "let y = x", "println(x)"}
	searches = []struct {
		next      bool
		seq       int
		prefix    string
		wantedE   storedefs.Cmd
		wantedErr error
	}{
		{false, 5, "let", storedefs.Cmd{Text: "let y = x", Seq: 3}, nil},
		{false, 3, "let", storedefs.Cmd{Text: "let x = 1", Seq: 1}, nil},
		{false, 1, "let", storedefs.Cmd{}, storedefs.ErrNoMatchingCmd},
		{true, 1, "x", storedefs.Cmd{Text: "x + 1", Seq: 2}, nil},
		{true, 3, "x", storedefs.Cmd{}, storedefs.ErrNoMatchingCmd},
		{true, 1, "", storedefs.Cmd{Text: "let x = 1", Seq: 1}, nil},
	}
)

// TestCmd tests the command history functionality of a Store.
func TestCmd(t *testing.T, store storedefs.Store) {
	t.Helper()

	startSeq, err := store.NextCmdSeq()
	if startSeq != 1 || err != nil {
		t.Errorf("store.NextCmdSeq() => (%v, %v), want (1, nil)",
			startSeq, err)
	}

	// AddCmd
	for i, cmd := range cmds {
		wanted := startSeq + i
		seq, err := store.AddCmd(cmd)
		if seq != wanted || err != nil {
			t.Errorf("store.AddCmd(%v) => (%v, %v), want (%v, nil)",
				cmd, seq, err, wanted)
		}
	}

	endSeq, err := store.NextCmdSeq()
	wantedEndSeq := startSeq + len(cmds)
	if endSeq != wantedEndSeq || err != nil {
		t.Errorf("store.NextCmdSeq() => (%v, %v), want (%v, nil)",
			endSeq, err, wantedEndSeq)
	}

	// CmdsWithSeq
	wantCmdWithSeqs := make([]storedefs.Cmd, len(cmds))
	for i, cmd := range cmds {
		wantCmdWithSeqs[i] = storedefs.Cmd{Text: cmd, Seq: i + 1}
	}
	for i := 0; i < len(cmds); i++ {
		for j := i; j <= len(cmds); j++ {
			got, err := store.CmdsWithSeq(i+1, j+1)
			if !cmp.Equal(got, wantCmdWithSeqs[i:j], cmpopts.EquateEmpty()) || err != nil {
				t.Errorf("store.CmdsWithSeq(%v, %v) -> (%v, %v), want (%v, nil)",
					i+1, j+1, got, err, wantCmdWithSeqs[i:j])
			}
		}
	}

	// LastCmds
	last, err := store.LastCmds(2)
	if !cmp.Equal(last, wantCmdWithSeqs[2:]) || err != nil {
		t.Errorf("store.LastCmds(2) -> (%v, %v), want (%v, nil)", last, err, wantCmdWithSeqs[2:])
	}
	all, err := store.LastCmds(100)
	if !cmp.Equal(all, wantCmdWithSeqs) || err != nil {
		t.Errorf("store.LastCmds(100) -> (%v, %v), want all commands", all, err)
	}

	// Cmd
	for i, wanted := range cmds {
		seq := i + startSeq
		cmd, err := store.Cmd(seq)
		if cmd != wanted || err != nil {
			t.Errorf("store.Cmd(%v) => (%v, %v), want (%v, nil)",
				seq, cmd, err, wanted)
		}
	}

	// PrevCmd and NextCmd
	for _, tc := range searches {
		f := store.PrevCmd
		funcname := "store.PrevCmd"
		if tc.next {
			f = store.NextCmd
			funcname = "store.NextCmd"
		}
		cmd, err := f(tc.seq, tc.prefix)
		if cmd != tc.wantedE || !matchErr(err, tc.wantedErr) {
			t.Errorf("%s(%v, %v) => (%v, %v), want (%v, %v)",
				funcname, tc.seq, tc.prefix, cmd, err, tc.wantedE, tc.wantedErr)
		}
	}

	// DelCmd
	if err := store.DelCmd(1); err != nil {
		t.Error("Failed to remove cmd")
	}
	if seq, err := store.Cmd(1); !matchErr(err, storedefs.ErrNoMatchingCmd) {
		t.Errorf("Cmd(1) => (%v, %v), want (%v, %v)",
			seq, err, "", storedefs.ErrNoMatchingCmd)
	}
}
