// Package langserver exposes the core pipeline (parse -> type check ->
// borrow check) as an LSP server over textual IR documents: a handler
// struct holding per-document state behind a mutex, one method per LSP
// notification/request, diagnostics pushed back over glsp.Context.
package langserver

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"kansomid/internal/driver"
	"kansomid/internal/ir"
)

// Handler implements the LSP server methods for textual IR documents.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
	modules map[string]*ir.Module
}

// NewHandler creates an empty Handler ready to register with glsp.
func NewHandler() *Handler {
	return &Handler{
		content: make(map[string]string),
		modules: make(map[string]*ir.Module),
	}
}

// Initialize advertises the server's capabilities: full-document sync and
// nothing else — this is diagnostics-only, matching §2's scope for the
// language server (no completion, no semantic tokens).
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("langserver: Initialize called")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("langserver: initialized")
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Println("langserver: shutdown")
	return nil
}

func (h *Handler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return h.recheck(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("langserver: reading %s: %w", path, err)
	}
	return h.recheck(ctx, params.TextDocument.URI, string(content))
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	h.mu.Lock()
	delete(h.content, path)
	delete(h.modules, path)
	h.mu.Unlock()
	return nil
}

// recheck runs the full pipeline over text and publishes the resulting
// diagnostics (empty slice clears previously reported ones, per the LSP
// spec's publishDiagnostics contract).
func (h *Handler) recheck(ctx *glsp.Context, uri protocol.DocumentUri, text string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.content[path] = text
	h.mu.Unlock()

	diagnostics := []protocol.Diagnostic{}
	res, compileErr := driver.Compile(path, text, "", driver.DefaultOptions())
	if compileErr != nil {
		diagnostics = append(diagnostics, DiagnosticFromError(compileErr))
	} else {
		h.mu.Lock()
		h.modules[path] = res.Module
		h.mu.Unlock()
	}

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
	return nil
}

func uriToPath(rawURI protocol.DocumentUri) (string, error) {
	u, err := url.Parse(string(rawURI))
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}
	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 2 && path[2] == ':' {
		path = path[1:]
	}
	return path, nil
}

func ptrBool(b bool) *bool { return &b }

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }

// RunStdio wires a fresh Handler into a glsp server listening on stdio,
// the entry point cmd/kansoc-lsp calls.
func RunStdio(name string) error {
	h := NewHandler()
	protoHandler := protocol.Handler{
		Initialize:            h.Initialize,
		Initialized:           h.Initialized,
		Shutdown:              h.Shutdown,
		SetTrace:              h.SetTrace,
		TextDocumentDidOpen:   h.TextDocumentDidOpen,
		TextDocumentDidChange: h.TextDocumentDidChange,
		TextDocumentDidClose:  h.TextDocumentDidClose,
	}
	s := server.NewServer(&protoHandler, name, false)
	return s.RunStdio()
}
