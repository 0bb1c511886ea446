package kernel

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"src.rook.sh/pkg/buildinfo"
	"src.rook.sh/pkg/env"
	"src.rook.sh/pkg/repl"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

// ExecuteParams are the parameters of execute.
type ExecuteParams struct {
	Code string `json:"code"`
}

// CompleteParams are the parameters of complete. Cursor is a byte offset
// into Code.
type CompleteParams struct {
	Code   string `json:"code"`
	Cursor int    `json:"cursor"`
}

// CompleteResult holds the suffixes to insert at the cursor.
type CompleteResult struct {
	Matches []string `json:"matches"`
}

// SnapshotResult is the result of snapshot.
type SnapshotResult struct {
	Checkpoint json.RawMessage `json:"checkpoint"`
}

// RestoreParams are the parameters of restore.
type RestoreParams struct {
	Checkpoint json.RawMessage `json:"checkpoint"`
}

// RestoreResult names the bindings whose values could not be restored.
type RestoreResult struct {
	Skipped []string `json:"skipped"`
}

// KernelInfo describes the kernel.
type KernelInfo struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	Deterministic bool   `json:"deterministic"`
	Seed          uint64 `json:"seed,omitempty"`
}

// kernel serializes access to the session. Interrupting does not take the
// lock, so that it can stop a cell that is running.
type kernel struct {
	mu      sync.Mutex
	session *repl.Session
}

func newKernel(settings env.Settings) *kernel {
	return &kernel{session: repl.NewSession(repl.Config{Settings: settings})}
}

type method func(context.Context, json.RawMessage) (any, error)

func handler(k *kernel) jsonrpc2.Handler {
	methods := map[string]method{
		"execute":   k.execute,
		"complete":  k.complete,
		"snapshot":  k.snapshot,
		"restore":   k.restore,
		"reset":     k.reset,
		"interrupt": k.interrupt,
		"info":      k.info,
	}
	return jsonrpc2.HandlerWithError(func(ctx context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		logger.Println("request", req.Method)
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, params)
	})
}

func (k *kernel) execute(_ context.Context, rawParams json.RawMessage) (any, error) {
	var params ExecuteParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	res := k.session.ExecuteCell(params.Code)
	logger.Printf("executed cell: success=%v elapsed=%dns", res.Success, res.ElapsedNs)
	return res, nil
}

func (k *kernel) complete(_ context.Context, rawParams json.RawMessage) (any, error) {
	var params CompleteParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	matches := k.session.Complete(params.Code, params.Cursor)
	if matches == nil {
		matches = []string{}
	}
	return CompleteResult{matches}, nil
}

func (k *kernel) snapshot(context.Context, json.RawMessage) (any, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	data, err := k.session.SnapshotJSON()
	if err != nil {
		return nil, err
	}
	return SnapshotResult{data}, nil
}

func (k *kernel) restore(_ context.Context, rawParams json.RawMessage) (any, error) {
	var params RestoreParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.Checkpoint) == 0 {
		return nil, errInvalidParams
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	skipped, err := k.session.RestoreJSON(params.Checkpoint)
	if err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	if skipped == nil {
		skipped = []string{}
	}
	return RestoreResult{skipped}, nil
}

func (k *kernel) reset(context.Context, json.RawMessage) (any, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.session.Reset()
	return nil, nil
}

func (k *kernel) interrupt(context.Context, json.RawMessage) (any, error) {
	k.session.Evaler().Interrupt()
	return nil, nil
}

func (k *kernel) info(context.Context, json.RawMessage) (any, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	rs := k.session.Replay()
	info := KernelInfo{Name: "rook", Version: buildinfo.Value.Version, Deterministic: rs.Deterministic()}
	if rs.Deterministic() {
		info.Seed = rs.RNG.Seed()
	}
	return info, nil
}
