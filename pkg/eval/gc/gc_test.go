package gc

import (
	"strings"
	"testing"

	"src.rook.sh/pkg/eval/vals"
)

func bigString(c string) string { return strings.Repeat(c, 300) }

func TestTrack_SmallValuesNotTracked(t *testing.T) {
	h := New()
	for _, v := range []any{nil, true, int64(1), 2.5, vals.Char('x'), vals.Unit{}, "short",
		vals.Tuple{bigString("a")}} {
		if _, ok := h.Track(v); ok {
			t.Errorf("%s should not be tracked", vals.Repr(v))
		}
	}
	if h.Len() != 0 {
		t.Errorf("Len -> %d", h.Len())
	}
}

func TestTrack_SameValueSameID(t *testing.T) {
	h := New()
	s := bigString("a")
	id1, ok1 := h.Track(s)
	id2, ok2 := h.Track(s)
	if !ok1 || !ok2 || id1 != id2 {
		t.Errorf("Track twice -> %v %v, %v %v", id1, ok1, id2, ok2)
	}
	if v, ok := h.Get(id1); !ok || v != s {
		t.Errorf("Get -> %v, %v", v, ok)
	}
}

func TestCollect(t *testing.T) {
	h := New()
	live := bigString("l")
	dead := bigString("d")
	nested := bigString("n")
	pinned := bigString("p")
	h.Track(live)
	h.Track(dead)
	h.Track(nested)
	pid, _ := h.Track(pinned)
	h.Root(pid)

	container := vals.MakeArray(vals.MakeObject("k", vals.Tuple{nested}))
	freed := h.Collect(live, container)
	if freed != 1 {
		t.Errorf("freed %d, want 1", freed)
	}
	if h.Len() != 3 {
		t.Errorf("Len -> %d, want 3", h.Len())
	}

	h.Unroot(pid)
	if freed := h.Collect(); freed != 3 {
		t.Errorf("second collection freed %d, want 3", freed)
	}
	if h.Bytes() != 0 {
		t.Errorf("Bytes -> %d, want 0", h.Bytes())
	}
	if h.Peak() == 0 {
		t.Errorf("Peak should remember the high-water mark")
	}
	if s := h.Stats(); s.Collections != 2 || s.Freed != 4 || s.Tracked != 4 {
		t.Errorf("Stats -> %+v", s)
	}
}

type closure struct {
	captured []any
}

func (c *closure) Trace(visit func(any)) {
	for _, v := range c.captured {
		visit(v)
	}
}

func (c *closure) Size() int { return 1000 }

func TestCollect_TracesClosuresAndCycles(t *testing.T) {
	h := New()
	s := bigString("c")
	h.Track(s)
	c := &closure{}
	c.captured = []any{s, c}
	h.Track(c)
	if freed := h.Collect(c); freed != 0 {
		t.Errorf("freed %d, want 0", freed)
	}
	if freed := h.Collect(); freed != 2 {
		t.Errorf("freed %d, want 2", freed)
	}
}

func TestCollect_Deterministic(t *testing.T) {
	run := func() []ID {
		h := New()
		var ids []ID
		for i := 0; i < 10; i++ {
			id, _ := h.Track(strings.Repeat(string(rune('a'+i)), 300))
			ids = append(ids, id)
		}
		h.Collect()
		id, _ := h.Track(bigString("z"))
		return append(ids, id)
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("run differs at %d: %v vs %v", i, a, b)
		}
	}
}
