package repl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHistory(t *testing.T) {
	h := newHistory(3)
	if got := h.entries(); len(got) != 0 {
		t.Errorf("new history has entries %v", got)
	}
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		h.add(s)
	}
	if diff := cmp.Diff([]string{"c", "d", "e"}, h.entries()); diff != "" {
		t.Errorf("entries (-want +got):\n%s", diff)
	}
	h.clear()
	h.add("f")
	if diff := cmp.Diff([]string{"f"}, h.entries()); diff != "" {
		t.Errorf("entries after clear (-want +got):\n%s", diff)
	}
}

func TestIsResultName(t *testing.T) {
	for name, want := range map[string]bool{
		"_": true, "_1": true, "_42": true,
		"__": false, "_x": false, "x1": false, "": false,
	} {
		if got := isResultName(name); got != want {
			t.Errorf("isResultName(%q) = %v, want %v", name, got, want)
		}
	}
}
