package lsp

import (
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"src.rook.sh/pkg/prog/progtest"
	. "src.rook.sh/pkg/tt"
)

type client struct {
	ctx   context.Context
	conn  *jsonrpc2.Conn
	diags chan lsp.PublishDiagnosticsParams
}

func setup(t *testing.T) *client {
	ctx, cancel := context.WithCancel(context.Background())
	serverSide, clientSide := net.Pipe()
	done := make(chan struct{})
	go func() {
		serve(ctx, serverSide)
		close(done)
	}()
	c := &client{ctx: ctx, diags: make(chan lsp.PublishDiagnosticsParams, 10)}
	c.conn = jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(func(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
			if req.Method == "textDocument/publishDiagnostics" && req.Params != nil {
				var params lsp.PublishDiagnosticsParams
				if err := json.Unmarshal(*req.Params, &params); err == nil {
					c.diags <- params
				}
			}
			return nil, nil
		}))
	t.Cleanup(func() {
		c.conn.Close()
		<-done
		cancel()
	})
	return c
}

func (c *client) call(t *testing.T, method string, params, result any) {
	t.Helper()
	if err := c.conn.Call(c.ctx, method, params, result); err != nil {
		t.Fatalf("%s: %v", method, err)
	}
}

func (c *client) open(t *testing.T, uri lsp.DocumentURI, text string) {
	t.Helper()
	err := c.conn.Notify(c.ctx, "textDocument/didOpen", lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: uri, LanguageID: "rook", Text: text}})
	if err != nil {
		t.Fatal(err)
	}
}

func (c *client) nextDiags(t *testing.T) lsp.PublishDiagnosticsParams {
	t.Helper()
	select {
	case d := <-c.diags:
		return d
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for diagnostics")
		return lsp.PublishDiagnosticsParams{}
	}
}

func pos(uri lsp.DocumentURI, line, char int) lsp.TextDocumentPositionParams {
	return lsp.TextDocumentPositionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri},
		Position:     lsp.Position{Line: line, Character: char}}
}

func TestInitialize(t *testing.T) {
	c := setup(t)
	var result lsp.InitializeResult
	c.call(t, "initialize", lsp.InitializeParams{}, &result)
	caps := result.Capabilities
	if !caps.HoverProvider || !caps.DocumentSymbolProvider || caps.CompletionProvider == nil {
		t.Errorf("got capabilities %+v", caps)
	}
}

func TestUnknownMethod(t *testing.T) {
	c := setup(t)
	err := c.conn.Call(c.ctx, "textDocument/rename", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "method not found") {
		t.Errorf("got error %v, want method not found", err)
	}
}

func TestDiagnostics(t *testing.T) {
	c := setup(t)
	c.open(t, "file:///a.rook", "let x = 1\nlet = 2")
	d := c.nextDiags(t)
	if d.URI != "file:///a.rook" || len(d.Diagnostics) != 1 {
		t.Fatalf("got %+v, want one diagnostic for a.rook", d)
	}
	if got := d.Diagnostics[0]; got.Range.Start.Line != 1 || got.Source != "parse" {
		t.Errorf("got diagnostic %+v, want one on line 1 from parse", got)
	}

	err := c.conn.Notify(c.ctx, "textDocument/didChange", lsp.DidChangeTextDocumentParams{
		TextDocument:   lsp.VersionedTextDocumentIdentifier{TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: "file:///a.rook"}},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: "let x = 1\nlet y = 2"}}})
	if err != nil {
		t.Fatal(err)
	}
	if d := c.nextDiags(t); len(d.Diagnostics) != 0 {
		t.Errorf("got diagnostics %+v after fix, want none", d.Diagnostics)
	}
}

func labels(items []lsp.CompletionItem) []string {
	var ls []string
	for _, item := range items {
		ls = append(ls, item.Label)
	}
	return ls
}

func TestCompletion(t *testing.T) {
	c := setup(t)
	const uri = "file:///c.rook"
	c.open(t, uri, "fn add_one(a) { a + 1 }\nlet total = add_\n\"abc\".to_up")
	c.nextDiags(t)

	var items []lsp.CompletionItem
	c.call(t, "textDocument/completion", lsp.CompletionParams{TextDocumentPositionParams: pos(uri, 1, 16)}, &items)
	if diff := cmp.Diff([]string{"add_one"}, labels(items)); diff != "" {
		t.Errorf("completions (-want +got):\n%s", diff)
	} else {
		item := items[0]
		if item.Kind != lsp.CIKFunction {
			t.Errorf("got kind %v, want function", item.Kind)
		}
		wantRange := lsp.Range{
			Start: lsp.Position{Line: 1, Character: 12}, End: lsp.Position{Line: 1, Character: 16}}
		if item.TextEdit == nil || item.TextEdit.Range != wantRange {
			t.Errorf("got text edit %+v, want range %+v", item.TextEdit, wantRange)
		}
	}

	items = nil
	c.call(t, "textDocument/completion", lsp.CompletionParams{TextDocumentPositionParams: pos(uri, 2, 11)}, &items)
	if !contains(labels(items), "to_uppercase") {
		t.Errorf("got %v, want to_uppercase among the method completions", labels(items))
	}

	// Builtins and keywords.
	c.open(t, "file:///d.rook", "prin")
	c.nextDiags(t)
	items = nil
	c.call(t, "textDocument/completion", lsp.CompletionParams{TextDocumentPositionParams: pos("file:///d.rook", 0, 4)}, &items)
	if got := labels(items); !contains(got, "println") || !contains(got, "print") {
		t.Errorf("got %v, want print and println", got)
	}

	items = nil
	c.call(t, "textDocument/completion", lsp.CompletionParams{TextDocumentPositionParams: pos("file:///unopened.rook", 0, 0)}, &items)
	if len(items) != 0 {
		t.Errorf("got %v for a document that is not open", items)
	}
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func TestHover(t *testing.T) {
	c := setup(t)
	const uri = "file:///h.rook"
	c.open(t, uri, "fn add(a: i64, b: i64) -> i64 { a + b }\nprintln(add(1, 2))\n")
	c.nextDiags(t)

	hoverText := func(line, char int) string {
		var h lsp.Hover
		c.call(t, "textDocument/hover", pos(uri, line, char), &h)
		if len(h.Contents) == 0 {
			return ""
		}
		return h.Contents[0].Value
	}
	Test(t, Fn("hoverText", hoverText), Table{
		Args(1, 10).Rets("fn add(a: i64, b: i64) -> i64"),
		Args(1, 2).Rets("builtin function println"),
		Args(0, 0).Rets("keyword fn"),
		Args(2, 0).Rets(""),
	})
}

func TestDocumentSymbol(t *testing.T) {
	c := setup(t)
	const uri = "file:///s.rook"
	c.open(t, uri, "struct P { x: i64 }\nenum E { A, B }\nfn f() { 1 }\nlet x = 1")
	c.nextDiags(t)

	var infos []lsp.SymbolInformation
	c.call(t, "textDocument/documentSymbol",
		lsp.DocumentSymbolParams{TextDocument: lsp.TextDocumentIdentifier{URI: uri}}, &infos)
	type sym struct {
		Name string
		Kind lsp.SymbolKind
		Line int
	}
	var got []sym
	for _, info := range infos {
		got = append(got, sym{info.Name, info.Kind, info.Location.Range.Start.Line})
	}
	want := []sym{
		{"P", lsp.SKStruct, 0},
		{"E", lsp.SKEnum, 1},
		{"A", lsp.SKEnumMember, 1},
		{"B", lsp.SKEnumMember, 1},
		{"f", lsp.SKFunction, 2},
		{"x", lsp.SKVariable, 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("symbols (-want +got):\n%s", diff)
	}
}

func TestPositions(t *testing.T) {
	Test(t, Fn("lspPositionFromIdx", lspPositionFromIdx), Table{
		Args("ab\ncd", 1).Rets(lsp.Position{Line: 0, Character: 1}),
		Args("ab\ncd", 4).Rets(lsp.Position{Line: 1, Character: 1}),
		Args("a\r\nb", 3).Rets(lsp.Position{Line: 1, Character: 0}),
		// U+1F600 takes two UTF-16 units.
		Args("\U0001F600x", 4).Rets(lsp.Position{Line: 0, Character: 2}),
	})
	Test(t, Fn("lspPositionToIdx", lspPositionToIdx), Table{
		Args("ab\ncd", lsp.Position{Line: 1, Character: 1}).Rets(4),
		Args("ab\ncd", lsp.Position{Line: 5, Character: 0}).Rets(5),
	})
	Test(t, Fn("wordAt", wordAt), Table{
		Args("let total = 1", 6).Rets(4, 9),
		// A cursor right after a word is on that word.
		Args("a.b", 1).Rets(0, 1),
		Args("a.b", 2).Rets(2, 3),
		Args("a.", 2).Rets(2, 2),
		Args("", 0).Rets(0, 0),
	})
}

func TestProgram(t *testing.T) {
	progtest.Test(t, &Program{},
		progtest.ThatRook("-lsp"),
		progtest.ThatRook().
			ExitsWith(1).
			WritesStderrContaining("no suitable subprogram"),
	)
}
