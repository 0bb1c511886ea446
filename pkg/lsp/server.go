package lsp

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/diag"
	"src.rook.sh/pkg/env"
	"src.rook.sh/pkg/eval"
	"src.rook.sh/pkg/parse"
	"src.rook.sh/pkg/repl"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

// document is an open document. prog is the last version of it that parsed,
// which completion keeps using while the user is in the middle of an edit.
type document struct {
	content string
	prog    *ast.Program
}

type server struct {
	// session completes the members of values.
	session *repl.Session
	docs    map[lsp.DocumentURI]*document
}

func newServer() *server {
	return &server{
		repl.NewSession(repl.Config{Settings: env.Default()}),
		make(map[lsp.DocumentURI]*document)}
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"initialize":                  s.initialize,
		"textDocument/didOpen":        s.didOpen,
		"textDocument/didChange":      s.didChange,
		"textDocument/didClose":       s.didClose,
		"textDocument/hover":          s.hover,
		"textDocument/completion":     s.completion,
		"textDocument/documentSymbol": s.documentSymbol,

		// Required by the protocol.
		"initialized": noop,
		"shutdown":    noop,
		"exit":        noop,
		// Called by clients even when server doesn't advertise support:
		// https://microsoft.github.io/language-server-protocol/specification#workspace_didChangeWatchedFiles
		"workspace/didChangeWatchedFiles": noop,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func noop(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, nil
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			logger.Println("unknown method", req.Method)
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

// Handler implementations. These are all called synchronously.

func (s *server) initialize(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			CompletionProvider:     &lsp.CompletionOptions{TriggerCharacters: []string{"."}},
			HoverProvider:          true,
			DocumentSymbolProvider: true,
		},
	}, nil
}

func (s *server) didOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	s.update(ctx, conn, params.TextDocument.URI, params.TextDocument.Text)
	return nil, nil
}

func (s *server) didChange(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}

	// ContentChanges includes full text since the server is only advertised to
	// support that; see the initialize method.
	s.update(ctx, conn, params.TextDocument.URI, params.ContentChanges[0].Text)
	return nil, nil
}

func (s *server) didClose(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	delete(s.docs, params.TextDocument.URI)
	return nil, nil
}

func (s *server) update(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, content string) {
	doc, ok := s.docs[uri]
	if !ok {
		doc = &document{}
		s.docs[uri] = doc
	}
	doc.content = content
	prog, err := parse.Parse(parse.Source{Name: string(uri), Code: content})
	if err == nil {
		doc.prog = prog
	}
	go publishDiagnostics(ctx, conn, uri, diagnostics(content, err))
}

func (s *server) hover(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.TextDocumentPositionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	doc, ok := s.docs[params.TextDocument.URI]
	if !ok {
		return lsp.Hover{}, nil
	}
	from, to := wordAt(doc.content, lspPositionToIdx(doc.content, params.Position))
	word := doc.content[from:to]
	if word == "" {
		return lsp.Hover{}, nil
	}

	var text string
	if doc.prog != nil {
		for _, sym := range topLevelSymbols(doc.prog) {
			if sym.name == word {
				text = sym.detail
				break
			}
		}
	}
	if text == "" {
		switch {
		case eval.IsBuiltin(word):
			text = "builtin function " + word
		case isKeyword(word):
			text = "keyword " + word
		default:
			return lsp.Hover{}, nil
		}
	}
	rng := lspRangeFromRange(doc.content, diag.Ranging{From: from, To: to})
	return lsp.Hover{
		Contents: []lsp.MarkedString{{Language: "rook", Value: text}},
		Range:    &rng,
	}, nil
}

func (s *server) completion(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.CompletionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	items := []lsp.CompletionItem{}
	doc, ok := s.docs[params.TextDocument.URI]
	if !ok {
		return items, nil
	}

	content := doc.content
	idx := lspPositionToIdx(content, params.Position)
	from, _ := wordAt(content, idx)
	word := content[from:idx]
	lspRange := lspRangeFromRange(content, diag.Ranging{From: from, To: idx})
	add := func(label string, kind lsp.CompletionItemKind, detail string) {
		items = append(items, lsp.CompletionItem{
			Label:    label,
			Kind:     kind,
			Detail:   detail,
			TextEdit: &lsp.TextEdit{Range: lspRange, NewText: label},
		})
	}

	if from > 0 && content[from-1] == '.' {
		for _, suffix := range s.session.Complete(content, idx) {
			add(word+suffix, lsp.CIKMethod, "")
		}
		return items, nil
	}
	if word == "" {
		return items, nil
	}

	seen := map[string]bool{}
	candidates := func(names []string, kind func(string) (lsp.CompletionItemKind, string)) {
		for _, name := range names {
			if strings.HasPrefix(name, word) && name != word && !seen[name] {
				seen[name] = true
				k, detail := kind(name)
				add(name, k, detail)
			}
		}
	}
	if doc.prog != nil {
		names := allNames(doc.prog)
		sorted := make([]string, 0, len(names))
		for name := range names {
			sorted = append(sorted, name)
		}
		sort.Strings(sorted)
		candidates(sorted, func(name string) (lsp.CompletionItemKind, string) {
			return names[name], ""
		})
	}
	candidates(eval.BuiltinNames(), func(string) (lsp.CompletionItemKind, string) {
		return lsp.CIKFunction, "builtin"
	})
	candidates(parse.Keywords(), func(string) (lsp.CompletionItemKind, string) {
		return lsp.CIKKeyword, ""
	})
	return items, nil
}

func (s *server) documentSymbol(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DocumentSymbolParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	infos := []lsp.SymbolInformation{}
	doc, ok := s.docs[params.TextDocument.URI]
	if !ok || doc.prog == nil {
		return infos, nil
	}
	for _, sym := range topLevelSymbols(doc.prog) {
		infos = append(infos, lsp.SymbolInformation{
			Name: sym.name,
			Kind: sym.kind,
			Location: lsp.Location{
				URI:   params.TextDocument.URI,
				Range: lspRangeFromRange(doc.content, sym),
			},
			ContainerName: sym.container,
		})
	}
	return infos, nil
}

func publishDiagnostics(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, diags []lsp.Diagnostic) {
	conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: diags})
}

func diagnostics(content string, err error) []lsp.Diagnostic {
	entries := diag.UnpackErrors(err)
	diags := make([]lsp.Diagnostic, len(entries))
	for i, err := range entries {
		diags[i] = lsp.Diagnostic{
			Range:    lspRangeFromRange(content, err),
			Severity: lsp.Error,
			Source:   "parse",
			Message:  err.Message,
		}
	}
	return diags
}

func isKeyword(word string) bool {
	kws := parse.Keywords()
	i := sort.SearchStrings(kws, word)
	return i < len(kws) && kws[i] == word
}

// wordAt returns the range of the identifier around idx.
func wordAt(s string, idx int) (from, to int) {
	from = idx
	for from > 0 {
		r, n := utf8.DecodeLastRuneInString(s[:from])
		if !isIdentRune(r) {
			break
		}
		from -= n
	}
	to = idx
	for to < len(s) {
		r, n := utf8.DecodeRuneInString(s[to:])
		if !isIdentRune(r) {
			break
		}
		to += n
	}
	return from, to
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func lspRangeFromRange(s string, r diag.Ranger) lsp.Range {
	rg := r.Range()
	return lsp.Range{
		Start: lspPositionFromIdx(s, rg.From),
		End:   lspPositionFromIdx(s, rg.To),
	}
}

func lspPositionToIdx(s string, pos lsp.Position) int {
	var idx int
	walkString(s, func(i int, p lsp.Position) bool {
		idx = i
		return p.Line < pos.Line || (p.Line == pos.Line && p.Character < pos.Character)
	})
	return idx
}

func lspPositionFromIdx(s string, idx int) lsp.Position {
	var pos lsp.Position
	walkString(s, func(i int, p lsp.Position) bool {
		pos = p
		return i < idx
	})
	return pos
}

// Generates (index, lspPosition) pairs in s, stopping if f returns false.
func walkString(s string, f func(i int, p lsp.Position) bool) {
	var p lsp.Position
	lastCR := false

	for i, r := range s {
		if !f(i, p) {
			return
		}
		switch {
		case r == '\r':
			p.Line++
			p.Character = 0
		case r == '\n':
			if lastCR {
				// Ignore \n if it's part of a \r\n sequence
			} else {
				p.Line++
				p.Character = 0
			}
		case r <= 0xFFFF:
			// Encoded in UTF-16 with one unit
			p.Character++
		default:
			// Encoded in UTF-16 with two units
			p.Character += 2
		}
		lastCR = r == '\r'
	}
	f(len(s), p)
}
