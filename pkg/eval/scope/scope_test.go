package scope

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.rook.sh/pkg/eval/errs"
)

func TestBindAndLookup(t *testing.T) {
	e := New()
	e.Bind("x", int64(40), false)
	if v, ok := e.Lookup("x"); !ok || v != int64(40) {
		t.Errorf("Lookup(x) -> %v, %v", v, ok)
	}
	if _, ok := e.Lookup("y"); ok {
		t.Errorf("Lookup(y) should fail")
	}
}

func TestShadowing(t *testing.T) {
	e := New()
	e.Bind("x", int64(1), false)
	e.Push()
	e.Bind("x", "inner", false)
	if v, _ := e.Lookup("x"); v != "inner" {
		t.Errorf("inner x -> %v", v)
	}
	e.Pop()
	if v, _ := e.Lookup("x"); v != int64(1) {
		t.Errorf("x after pop -> %v", v)
	}
}

func TestAssign(t *testing.T) {
	e := New()
	e.Bind("m", int64(1), true)
	e.Bind("i", int64(1), false)
	e.BindConst("C", int64(1))

	e.Push()
	if err := e.Assign("m", int64(2)); err != nil {
		t.Errorf("Assign(m) -> %v", err)
	}
	e.Pop()
	if v, _ := e.Lookup("m"); v != int64(2) {
		t.Errorf("m -> %v, want 2", v)
	}

	tests := []struct {
		name string
		kind errs.Kind
	}{
		{"i", errs.ImmutableBinding},
		{"C", errs.ConstReassignment},
		{"nope", errs.UndefinedVariable},
	}
	for _, test := range tests {
		err := e.Assign(test.name, int64(0))
		if !errs.Is(err, test.kind) {
			t.Errorf("Assign(%s) -> %v, want %v", test.name, err, test.kind)
		}
	}
}

func TestPopNeverRemovesGlobal(t *testing.T) {
	e := New()
	e.Bind("g", true, false)
	e.Pop()
	e.Pop()
	if e.Depth() != 1 {
		t.Errorf("Depth -> %d", e.Depth())
	}
	if _, ok := e.Lookup("g"); !ok {
		t.Errorf("global binding lost")
	}
}

func TestCaptureSharesFrames(t *testing.T) {
	e := New()
	e.Bind("n", int64(1), true)
	c := e.Capture()
	// Later bindings in a shared frame are visible through the capture.
	e.Bind("f", "later", false)
	if _, ok := c.Lookup("f"); !ok {
		t.Errorf("capture does not see later binding")
	}
	// So are assignments.
	e.Assign("n", int64(2))
	if v, _ := c.Lookup("n"); v != int64(2) {
		t.Errorf("capture sees n = %v", v)
	}
	// Frames pushed onto the capture are private.
	c.Push()
	c.Bind("local", int64(0), false)
	if _, ok := e.Lookup("local"); ok {
		t.Errorf("frame pushed onto capture leaked")
	}
}

func TestSnapshotRestore(t *testing.T) {
	e := New()
	e.Bind("x", int64(1), true)
	s := e.Snapshot()
	closure := e.Capture()

	e.Assign("x", int64(99))
	e.Bind("y", int64(2), false)
	e.Push()
	e.Bind("z", int64(3), false)

	e.Restore(s)
	if diff := cmp.Diff([]string{"x"}, e.Names()); diff != "" {
		t.Errorf("Names after restore (-want +got):\n%s", diff)
	}
	if v, _ := e.Lookup("x"); v != int64(1) {
		t.Errorf("x after restore -> %v", v)
	}
	if v, _ := closure.Lookup("x"); v != int64(1) {
		t.Errorf("x seen by closure after restore -> %v", v)
	}
}

func TestReset(t *testing.T) {
	e := New()
	e.Bind("x", int64(1), false)
	e.Push()
	e.Reset()
	if e.Depth() != 1 || len(e.Names()) != 0 {
		t.Errorf("Reset left %d frames, names %v", e.Depth(), e.Names())
	}
}

// model is a straightforward reference implementation of Env.
type model []map[string]any

func (m model) visible() map[string]any {
	vis := map[string]any{}
	for _, f := range m {
		for k, v := range f {
			vis[k] = v
		}
	}
	return vis
}

func visibleValues(e *Env) map[string]any {
	vis := map[string]any{}
	for k, b := range e.Visible() {
		vis[k] = b.Value
	}
	return vis
}

func TestAgainstModel(t *testing.T) {
	names := []string{"a", "b", "c", "d"}
	r := rand.New(rand.NewSource(1))
	for round := 0; round < 200; round++ {
		e := New()
		m := model{{}}
		var pushed []map[string]any
		for step := 0; step < 50; step++ {
			switch r.Intn(3) {
			case 0:
				pushed = append(pushed, m.visible())
				e.Push()
				m = append(m, map[string]any{})
			case 1:
				name := names[r.Intn(len(names))]
				v := int64(r.Intn(100))
				e.Bind(name, v, false)
				m[len(m)-1][name] = v
			case 2:
				if len(m) == 1 {
					continue
				}
				e.Pop()
				m = m[:len(m)-1]
				want := pushed[len(pushed)-1]
				pushed = pushed[:len(pushed)-1]
				if diff := cmp.Diff(want, visibleValues(e)); diff != "" {
					t.Fatalf("round %d step %d: pop did not restore pre-push set (-want +got):\n%s",
						round, step, diff)
				}
			}
			if diff := cmp.Diff(m.visible(), visibleValues(e)); diff != "" {
				t.Fatalf("round %d step %d (-model +env):\n%s", round, step, diff)
			}
		}
	}
}
