// Package rpc serves a language server over JSON-RPC 2.0 with LSP header
// framing.
package rpc

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"go.lsp.dev/protocol"
)

// Server is the subset of the LSP server interface tmls answers.
type Server interface {
	Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error)
	Initialized(ctx context.Context, params *protocol.InitializedParams) error
	Shutdown(ctx context.Context) error
	Exit(ctx context.Context) error
	SetTrace(ctx context.Context, params *protocol.SetTraceParams) error

	DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error
	DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error
	DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error
	DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error

	Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error)
	Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error)
}

// Notifier pushes notifications to the client.
type Notifier interface {
	Notify(ctx context.Context, method string, params any) error
}

// RequestCancelledError is returned for requests the client cancelled.
var RequestCancelledError = &jrpc2.Error{Code: -32800, Message: "request cancelled"}

type cancelParams struct {
	ID json.RawMessage `json:"id"`
}

func (me *Instance) dispatchMap() handler.Map {
	s := me.server
	return handler.Map{
		"initialize":              createHandler(s.Initialize),
		"initialized":             createEmptyResultHandler(s.Initialized),
		"shutdown":                createEmptyHandler(s.Shutdown),
		"exit":                    createEmptyHandler(me.exit),
		"$/setTrace":              createEmptyResultHandler(s.SetTrace),
		"$/cancelRequest":         createEmptyResultHandler(me.cancel),
		"textDocument/didOpen":    createEmptyResultHandler(s.DidOpen),
		"textDocument/didChange":  createEmptyResultHandler(s.DidChange),
		"textDocument/didClose":   createEmptyResultHandler(s.DidClose),
		"textDocument/didSave":    createEmptyResultHandler(s.DidSave),
		"textDocument/completion": cancellable(createHandler(s.Completion)),
		"textDocument/hover":      cancellable(createHandler(s.Hover)),
	}
}

// cancellable answers a request whose context is already done with
// RequestCancelledError instead of running it.
func cancellable(h handler.Func) handler.Func {
	return func(ctx context.Context, req *jrpc2.Request) (interface{}, error) {
		if ctx.Err() != nil {
			return nil, RequestCancelledError
		}
		res, err := h(ctx, req)
		if err == nil && ctx.Err() != nil {
			return nil, RequestCancelledError
		}
		return res, err
	}
}

// Instance binds a Server to a jrpc2 server.
type Instance struct {
	server Server
	srv    *jrpc2.Server

	stopOnce sync.Once
}

// NewInstance builds the jrpc2 server for s. The base context carries the
// logger; when forwardLogs is set every log line is also sent to the client
// as window/logMessage.
func NewInstance(ctx context.Context, s Server, opts *jrpc2.ServerOptions, forwardLogs bool) *Instance {
	if opts == nil {
		opts = &jrpc2.ServerOptions{}
	}
	opts.AllowPush = true

	me := &Instance{server: s}

	opts.NewContext = func() context.Context {
		if forwardLogs && me.srv != nil {
			return ApplyClientToZerolog(ctx, me.srv)
		}
		return ctx
	}

	me.srv = jrpc2.NewServer(me.dispatchMap(), opts)

	return me
}

// Notifier returns the push side of the connection.
func (me *Instance) Notifier() Notifier {
	return me.srv
}

func (me *Instance) exit(ctx context.Context) error {
	if err := me.server.Exit(ctx); err != nil {
		return err
	}
	// the reply to exit is never read, stop once the handler has returned
	go me.Stop()
	return nil
}

func (me *Instance) cancel(ctx context.Context, params *cancelParams) error {
	id := strings.Trim(string(params.ID), `"`)
	if id == "" {
		return nil
	}
	zerolog.Ctx(ctx).Trace().Str("cancel_id", id).Msg("cancelling request")
	me.srv.CancelRequest(id)
	return nil
}

// Stop shuts the server down. It is safe to call more than once.
func (me *Instance) Stop() {
	me.stopOnce.Do(me.srv.Stop)
}

// Start begins serving on r and w without blocking.
func (me *Instance) Start(r io.Reader, w io.WriteCloser) {
	me.srv.Start(channel.LSP(r, w))
}

// Wait blocks until the connection ends. A clean shutdown or a closed input
// stream is not an error.
func (me *Instance) Wait() error {
	err := me.srv.Wait()
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, jrpc2.ErrConnClosed) {
		return nil
	}
	return errors.Errorf("serving language server: %w", err)
}

// StartAndWait serves on r and w until the client exits or disconnects.
func (me *Instance) StartAndWait(r io.Reader, w io.WriteCloser) error {
	me.Start(r, w)
	return me.Wait()
}
