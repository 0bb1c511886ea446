package store

import (
	"src.rook.sh/pkg/must"
	"src.rook.sh/pkg/testutil"
)

// MustTempStore returns a Store backed by a temporary file. The store is
// closed when the test finishes.
func MustTempStore(t testutil.TB) DBStore {
	st := must.OK1(NewStore(testutil.TempFile(t, "rook.db")))
	t.Cleanup(func() { st.Close() })
	return st
}
