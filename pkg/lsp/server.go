// Package lsp answers completion and hover requests for tm-* component tags
// over the language server protocol.
package lsp

import (
	"context"
	"sync/atomic"

	"github.com/creachadair/jrpc2"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"go.lsp.dev/protocol"

	"github.com/walteh/tmls/pkg/completion"
	"github.com/walteh/tmls/pkg/document"
	"github.com/walteh/tmls/pkg/hover"
	"github.com/walteh/tmls/pkg/lsp/rpc"
)

const serverName = "tmls"

// TriggerCharacters are the characters that make a client ask for completion.
var TriggerCharacters = []string{" ", ":", "@", `"`, "'"}

// Server implements rpc.Server.
type Server struct {
	id      string
	version string

	documents   *DocumentManager
	completions *completion.Provider
	hovers      *hover.Resolver

	snippetSupport atomic.Bool
	shutdown       atomic.Bool
}

var _ rpc.Server = (*Server)(nil)

type Option func(*Server)

func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithFs lets the server read documents the client has not opened.
func WithFs(fs afero.Fs) Option {
	return func(s *Server) {
		s.documents = NewDocumentManager(fs)
	}
}

func NewServer(completions *completion.Provider, hovers *hover.Resolver, opts ...Option) *Server {
	s := &Server{
		id:          xid.New().String(),
		version:     "devel",
		documents:   NewDocumentManager(nil),
		completions: completions,
		hovers:      hovers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (me *Server) Documents() *DocumentManager {
	return me.documents
}

// BuildServerInstance wires the server into a jrpc2 server.
func (me *Server) BuildServerInstance(ctx context.Context, opts *jrpc2.ServerOptions, forwardLogs bool) *rpc.Instance {
	ctx = zerolog.Ctx(ctx).With().Str("server_id", me.id).Logger().WithContext(ctx)
	return rpc.NewInstance(ctx, me, opts, forwardLogs)
}

func (me *Server) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	logger := zerolog.Ctx(ctx)

	snippets := false
	if td := params.Capabilities.TextDocument; td != nil && td.Completion != nil && td.Completion.CompletionItem != nil {
		snippets = td.Completion.CompletionItem.SnippetSupport
	}
	me.snippetSupport.Store(snippets)

	logger.Debug().
		Bool("snippet_support", snippets).
		Str("client", clientName(params)).
		Msg("initializing server")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: TriggerCharacters,
			},
			HoverProvider: true,
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    serverName,
			Version: me.version,
		},
	}, nil
}

func clientName(params *protocol.InitializeParams) string {
	if params.ClientInfo == nil {
		return ""
	}
	return params.ClientInfo.Name
}

func (me *Server) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	zerolog.Ctx(ctx).Debug().Msg("server initialized")
	return nil
}

func (me *Server) Shutdown(ctx context.Context) error {
	me.shutdown.Store(true)
	zerolog.Ctx(ctx).Debug().Msg("shutdown requested")
	return nil
}

func (me *Server) Exit(ctx context.Context) error {
	if !me.shutdown.Load() {
		zerolog.Ctx(ctx).Warn().Msg("exit without shutdown")
	}
	return nil
}

func (me *Server) SetTrace(ctx context.Context, params *protocol.SetTraceParams) error {
	zerolog.Ctx(ctx).Debug().Str("trace", string(params.Value)).Msg("trace level changed")
	return nil
}

func (me *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	item := params.TextDocument
	kind := document.KindFromLanguageID(string(item.LanguageID), string(item.URI))

	zerolog.Ctx(ctx).Debug().
		Str("uri", string(item.URI)).
		Str("kind", string(kind)).
		Msg("document opened")

	me.documents.Store(document.New(string(item.URI), kind, item.Version, item.Text))
	return nil
}

func (me *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}

	uri := params.TextDocument.URI
	kind := document.KindFromPath(string(uri))
	if prev, ok := me.documents.Get(uri); ok {
		kind = prev.Kind
	}

	// full sync: the last change holds the whole buffer
	text := params.ContentChanges[len(params.ContentChanges)-1].Text

	zerolog.Ctx(ctx).Trace().Str("uri", string(uri)).Int32("version", params.TextDocument.Version).Msg("document changed")

	me.documents.Store(document.New(string(uri), kind, params.TextDocument.Version, text))
	return nil
}

func (me *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	me.documents.Delete(params.TextDocument.URI)
	return nil
}

func (me *Server) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text == "" {
		return nil
	}
	prev, ok := me.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil
	}
	me.documents.Store(document.New(prev.URI, prev.Kind, prev.Version, params.Text))
	return nil
}
