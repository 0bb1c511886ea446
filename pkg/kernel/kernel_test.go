package kernel

import (
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sourcegraph/jsonrpc2"
	"src.rook.sh/pkg/env"
	"src.rook.sh/pkg/prog/progtest"
	"src.rook.sh/pkg/repl"
	"src.rook.sh/pkg/testutil"
)

type client struct {
	t    *testing.T
	ctx  context.Context
	conn *jsonrpc2.Conn
}

func setup(t *testing.T, settings env.Settings) *client {
	ctx, cancel := context.WithCancel(context.Background())
	serverSide, clientSide := net.Pipe()
	done := make(chan struct{})
	go func() {
		serve(ctx, serverSide, settings)
		close(done)
	}()
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(func(context.Context, *jsonrpc2.Conn, *jsonrpc2.Request) (any, error) {
			return nil, nil
		}))
	t.Cleanup(func() {
		conn.Close()
		<-done
		cancel()
	})
	return &client{t, ctx, conn}
}

func (c *client) call(method string, params, result any) {
	c.t.Helper()
	if err := c.conn.Call(c.ctx, method, params, result); err != nil {
		c.t.Fatalf("%s: %v", method, err)
	}
}

func (c *client) execute(code string) repl.CellResult {
	c.t.Helper()
	var res repl.CellResult
	c.call("execute", ExecuteParams{code}, &res)
	return res
}

func deterministic() env.Settings {
	s := env.Default()
	s.Deterministic, s.Seed = true, 7
	return s
}

func TestExecute(t *testing.T) {
	c := setup(t, deterministic())

	if res := c.execute("let x = 2"); !res.Success || res.Output != "" || res.StateHash == "" {
		t.Errorf("let: got %+v", res)
	}
	if res := c.execute(`println("hi"); x * 21`); !res.Success || res.Output != "hi\n42" {
		t.Errorf("x * 21: got %+v", res)
	}
	before := c.execute("x")
	failed := c.execute("let x = 5; 1 / 0")
	if failed.Success || !strings.Contains(failed.Output, "DivisionByZero") {
		t.Errorf("1 / 0: got %+v", failed)
	}
	if failed.StateHash != before.StateHash {
		t.Errorf("a failing cell changed the state hash")
	}
	if res := c.execute("x"); res.Output != "2" {
		t.Errorf("x after a failing cell: got %+v", res)
	}
}

func TestExecute_Deterministic(t *testing.T) {
	a := setup(t, deterministic())
	b := setup(t, deterministic())
	ra, rb := a.execute("rand()"), b.execute("rand()")
	if !ra.Success || ra.Output != rb.Output {
		t.Errorf("got %q and %q with the same seed", ra.Output, rb.Output)
	}
}

func TestSnapshotRestore(t *testing.T) {
	c := setup(t, deterministic())
	c.execute("let n = 1")
	var snap SnapshotResult
	c.call("snapshot", nil, &snap)
	c.execute("let n = 100")

	var restored RestoreResult
	c.call("restore", RestoreParams{snap.Checkpoint}, &restored)
	if len(restored.Skipped) != 0 {
		t.Errorf("skipped %v", restored.Skipped)
	}
	if res := c.execute("n"); res.Output != "1" {
		t.Errorf("n after restore: got %+v", res)
	}

	err := c.conn.Call(c.ctx, "restore", RestoreParams{json.RawMessage(`"bad"`)}, nil)
	if err == nil {
		t.Errorf("restoring a malformed checkpoint succeeded")
	}
}

func TestReset(t *testing.T) {
	c := setup(t, deterministic())
	c.execute("let n = 1")
	c.call("reset", nil, nil)
	if res := c.execute("n"); res.Success || !strings.Contains(res.Output, "UndefinedVariable") {
		t.Errorf("n after reset: got %+v", res)
	}
}

func TestComplete(t *testing.T) {
	c := setup(t, deterministic())
	c.execute("let zebra = 1")
	var res CompleteResult
	c.call("complete", CompleteParams{Code: "zeb", Cursor: 3}, &res)
	if diff := cmp.Diff([]string{"ra"}, res.Matches); diff != "" {
		t.Errorf("matches (-want +got):\n%s", diff)
	}
	c.call("complete", CompleteParams{Code: "", Cursor: 0}, &res)
	if res.Matches == nil || len(res.Matches) != 0 {
		t.Errorf("got %#v for empty code, want empty list", res.Matches)
	}
}

func TestInterrupt(t *testing.T) {
	settings := deterministic()
	settings.Timeout = 10 * time.Second
	c := setup(t, settings)

	resCh := make(chan repl.CellResult, 1)
	go func() {
		var res repl.CellResult
		c.conn.Call(c.ctx, "execute", ExecuteParams{"loop { }"}, &res)
		resCh <- res
	}()
	deadline := time.After(5 * time.Second)
	for {
		c.call("interrupt", nil, nil)
		select {
		case res := <-resCh:
			if res.Success || !strings.Contains(res.Output, "interrupted") {
				t.Errorf("got %+v, want interrupted", res)
			}
			return
		case <-deadline:
			t.Fatal("cell was not interrupted")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestInfo(t *testing.T) {
	c := setup(t, deterministic())
	var info KernelInfo
	c.call("info", nil, &info)
	if info.Name != "rook" || !info.Deterministic || info.Seed != 7 || info.Version == "" {
		t.Errorf("got %+v", info)
	}
}

func TestUnknownMethod(t *testing.T) {
	c := setup(t, deterministic())
	err := c.conn.Call(c.ctx, "evaluate", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "method not found") {
		t.Errorf("got %v, want method not found", err)
	}
	err = c.conn.Call(c.ctx, "execute", "not an object", nil)
	if err == nil || !strings.Contains(err.Error(), "invalid params") {
		t.Errorf("got %v, want invalid params", err)
	}
}

func TestProgram(t *testing.T) {
	testutil.Setenv(t, env.XDG_CONFIG_HOME, t.TempDir())
	progtest.Test(t, &Program{},
		progtest.ThatRook("-kernel"),
		progtest.ThatRook("-kernel", "-seed", "x").
			ExitsWith(2).
			WritesStderrContaining("bad value for -seed"),
		progtest.ThatRook().
			ExitsWith(1).
			WritesStderrContaining("no suitable subprogram"),
	)
}
