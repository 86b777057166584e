// Package lsp implements a language server that reports WAML syntax errors
// and formats documents.
package lsp

import (
	stderrors "errors"
	"strings"
	"unicode/utf16"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/KimNorgaard/go-waml"
	"github.com/KimNorgaard/go-waml/errors"
)

const lsName = "waml"

var log = commonlog.GetLogger("waml.lsp")

// Server is a WAML language server.
type Server struct {
	handler protocol.Handler
	server  *server.Server
	version string
	docs    *xsync.MapOf[protocol.DocumentUri, string]
	opts    []waml.Option
}

// NewServer returns a server formatting documents with opts.
func NewServer(version string, opts ...waml.Option) *Server {
	s := &Server{
		version: version,
		docs:    xsync.NewMapOf[protocol.DocumentUri, string](),
		opts:    opts,
	}

	s.handler = protocol.Handler{
		Initialize:             s.initialize,
		Initialized:            s.initialized,
		Shutdown:               s.shutdown,
		SetTrace:               s.setTrace,
		TextDocumentDidOpen:    s.textDocumentDidOpen,
		TextDocumentDidChange:  s.textDocumentDidChange,
		TextDocumentDidClose:   s.textDocumentDidClose,
		TextDocumentFormatting: s.textDocumentFormatting,
	}

	s.server = server.NewServer(&s.handler, lsName, false)

	return s
}

// RunStdio serves a single client over standard input and output.
func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
	}
	capabilities.DocumentFormattingProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		s.update(ctx, params.TextDocument.URI, whole.Text)
	}
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.docs.Delete(params.TextDocument.URI)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *Server) textDocumentFormatting(ctx *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	text, ok := s.docs.Load(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	return Format(text, s.opts...)
}

// update stores the text of a document and publishes its diagnostics.
func (s *Server) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	s.docs.Store(uri, text)
	diagnostics := Check(text)
	log.Debugf("%s: %d diagnostics", uri, len(diagnostics))
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// Check parses text and returns its diagnostics. A valid document has
// none.
func Check(text string) []protocol.Diagnostic {
	_, err := waml.ParseString(text)
	if err == nil {
		return []protocol.Diagnostic{}
	}
	var d *errors.Diagnostic
	if !stderrors.As(err, &d) {
		return []protocol.Diagnostic{diagnostic(protocol.Range{}, err.Error())}
	}
	pos := position(text, d.Line, d.Column)
	return []protocol.Diagnostic{diagnostic(protocol.Range{Start: pos, End: pos}, d.Message)}
}

func diagnostic(r protocol.Range, message string) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := lsName
	return protocol.Diagnostic{
		Range:    r,
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

// Format returns the edit replacing text with its formatted form, or no
// edits when text is already formatted. Documents with comments are not
// formatted.
func Format(text string, opts ...waml.Option) ([]protocol.TextEdit, error) {
	opts = append(opts[:len(opts):len(opts)], waml.RejectComments())
	formatted, err := waml.Format([]byte(text), opts...)
	if err != nil {
		return nil, err
	}
	if string(formatted) == text {
		return []protocol.TextEdit{}, nil
	}
	lines := strings.Split(text, "\n")
	last := lines[len(lines)-1]
	end := protocol.Position{
		Line:      protocol.UInteger(len(lines) - 1),
		Character: protocol.UInteger(utf16Len(last)),
	}
	return []protocol.TextEdit{{
		Range:   protocol.Range{End: end},
		NewText: string(formatted),
	}}, nil
}

// position converts a 1-based line and character column into an LSP
// position, which counts UTF-16 code units.
func position(text string, line, column int) protocol.Position {
	lines := strings.Split(text, "\n")
	if line < 1 || line > len(lines) {
		return protocol.Position{}
	}
	var prefix []rune
	for _, r := range lines[line-1] {
		if len(prefix) >= column-1 {
			break
		}
		prefix = append(prefix, r)
	}
	return protocol.Position{
		Line:      protocol.UInteger(line - 1),
		Character: protocol.UInteger(len(utf16.Encode(prefix))),
	}
}

func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
