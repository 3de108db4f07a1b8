package codebase

import (
	"bytes"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/phpcheck/analyzer"
	"github.com/dhamidi/phpcheck/config"
	"github.com/dhamidi/phpcheck/diagnostic"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "phpcheck"

type LSPServer struct {
	codebase   *Codebase
	watcher    *FileWatcher
	handler    protocol.Handler
	server     *server.Server
	version    string
	configPath string

	mu     sync.Mutex
	notify glsp.NotifyFunc
}

// NewLSPServer creates a server that reports diagnostics for the
// workspace the client opens. configPath overrides the configuration
// file lookup in the workspace root.
func NewLSPServer(version, configPath string) *LSPServer {
	ls := &LSPServer{
		version:    version,
		configPath: configPath,
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.textDocumentDidOpen,
		TextDocumentDidChange: ls.textDocumentDidChange,
		TextDocumentDidClose:  ls.textDocumentDidClose,
		TextDocumentDidSave:   ls.textDocumentDidSave,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	cfg, err := config.LoadFor(ls.configPath, rootDir)
	if err != nil {
		log.Errorf("config: %s", err)
		cfg = config.Default()
	}
	a, err := analyzer.New(cfg)
	if err != nil {
		return nil, err
	}
	ls.codebase = New(rootDir, a)
	ls.codebase.OnChange(ls.publish)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.mu.Lock()
	ls.notify = ctx.Notify
	ls.mu.Unlock()

	if err := ls.codebase.ScanAll(); err != nil {
		log.Errorf("scan: %s", err)
	}

	w, err := NewFileWatcher(ls.codebase)
	if err != nil {
		log.Errorf("watch: %s", err)
		return nil
	}
	if err := w.Start(); err != nil {
		log.Errorf("watch: %s", err)
		return nil
	}
	ls.watcher = w
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	if ls.watcher != nil {
		ls.watcher.Stop()
		ls.watcher = nil
	}
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil || !analyzer.IsPHPFile(path) {
		return nil
	}
	ls.codebase.Open(path, []byte(params.TextDocument.Text))
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil || !analyzer.IsPHPFile(path) {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.codebase.UpdateFile(path, []byte(textChange.Text))
		}
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil || !analyzer.IsPHPFile(path) {
		return nil
	}
	ls.codebase.Close(path)
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil || !analyzer.IsPHPFile(path) {
		return nil
	}
	if params.Text != nil {
		ls.codebase.UpdateFile(path, []byte(*params.Text))
	} else {
		ls.codebase.ScanFile(path)
	}
	return nil
}

func (ls *LSPServer) publish(changed map[string][]diagnostic.Diagnostic) {
	ls.mu.Lock()
	notify := ls.notify
	ls.mu.Unlock()
	if notify == nil {
		return
	}

	for path, diags := range changed {
		notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         pathToURI(path),
			Diagnostics: toProtocolDiagnostics(diags, ls.codebase.Source(path)),
		})
	}
}

func toProtocolDiagnostics(diags []diagnostic.Diagnostic, source []byte) []protocol.Diagnostic {
	lines := bytes.Split(source, []byte("\n"))
	name := lsName

	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		severity := toProtocolSeverity(d.Severity)
		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: toProtocolPosition(lines, d.Span.Start.Line, d.Span.Start.Column),
				End:   toProtocolPosition(lines, d.Span.End.Line, d.Span.End.Column),
			},
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: d.Rule},
			Source:   &name,
			Message:  d.Message,
		})
	}
	return out
}

func toProtocolSeverity(s diagnostic.Severity) protocol.DiagnosticSeverity {
	switch s {
	case diagnostic.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case diagnostic.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityError
	}
}

// toProtocolPosition converts a 1-based line and byte column into the
// 0-based line and UTF-16 character offset clients expect.
func toProtocolPosition(lines [][]byte, line, column int) protocol.Position {
	line = max(line, 1)
	column = max(column, 1)

	char := column - 1
	if line <= len(lines) {
		text := lines[line-1]
		prefix := text[:min(column-1, len(text))]
		char = 0
		for len(prefix) > 0 {
			r, size := utf8.DecodeRune(prefix)
			char += max(utf16.RuneLen(r), 1)
			prefix = prefix[size:]
		}
	}
	return protocol.Position{
		Line:      protocol.UInteger(line - 1),
		Character: protocol.UInteger(char),
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
