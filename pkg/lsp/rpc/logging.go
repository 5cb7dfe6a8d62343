package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"go.lsp.dev/protocol"

	"github.com/walteh/tmls/pkg/debug"
)

var loggerID = xid.New().String()

// ApplyRequestToZerolog tags the context logger with the request method and id.
func ApplyRequestToZerolog(ctx context.Context, req *jrpc2.Request) context.Context {
	return zerolog.Ctx(ctx).With().
		Str("rpc_method", req.Method()).
		Str("rpc_id", req.ID()).
		Logger().
		WithContext(ctx)
}

// ApplyClientToZerolog replaces the context logger with one that writes to
// the client as window/logMessage notifications. The level of the existing
// logger is kept.
func ApplyClientToZerolog(ctx context.Context, client Notifier) context.Context {
	writer := &logWriter{client: client, ctx: ctx}

	level := zerolog.Ctx(ctx).GetLevel()

	return zerolog.New(writer).With().
		Str("id", loggerID).
		Logger().
		Level(level).
		Hook(debug.TimeHook{}).
		Hook(debug.CallerHook{}).
		WithContext(ctx)
}

type logWriter struct {
	client Notifier
	mu     sync.Mutex
	ctx    context.Context
}

// Write implements io.Writer. Lines that are not JSON objects are dropped and
// a failed notification never fails the log call.
func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var entry map[string]interface{}
	if err := json.Unmarshal(p, &entry); err != nil {
		return len(p), nil
	}

	params := &protocol.LogMessageParams{
		Type:    ParseMessageTypeFromZerolog(extractField(entry, zerolog.LevelFieldName, "info")),
		Message: formatEntry(entry),
	}

	if w.client != nil {
		_ = w.client.Notify(w.ctx, protocol.MethodWindowLogMessage, params)
	}

	return len(p), nil
}

func formatEntry(entry map[string]interface{}) string {
	msg := extractField(entry, zerolog.MessageFieldName, "")
	caller := extractField(entry, "caller", "")
	delete(entry, "id")
	delete(entry, zerolog.TimestampFieldName)

	keys := make([]string, 0, len(entry))
	for k := range entry {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(msg)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, entry[k])
	}
	if caller != "" {
		fmt.Fprintf(&sb, " (%s)", caller)
	}
	return sb.String()
}

func extractField(entry map[string]interface{}, key, defaultValue string) string {
	if v, ok := entry[key].(string); ok {
		delete(entry, key)
		return v
	}
	return defaultValue
}

// ParseMessageTypeFromZerolog converts a zerolog level name to an LSP message
// type.
func ParseMessageTypeFromZerolog(level string) protocol.MessageType {
	switch level {
	case "error", "fatal", "panic":
		return protocol.MessageTypeError
	case "warn":
		return protocol.MessageTypeWarning
	case "info":
		return protocol.MessageTypeInfo
	default:
		return protocol.MessageTypeLog
	}
}

// MultiRPCLogger fans request and response logging out to several loggers.
type MultiRPCLogger struct {
	mu      sync.Mutex
	loggers []jrpc2.RPCLogger
}

var _ jrpc2.RPCLogger = (*MultiRPCLogger)(nil)

func NewMultiRPCLogger(loggers ...jrpc2.RPCLogger) *MultiRPCLogger {
	return &MultiRPCLogger{loggers: loggers}
}

func (m *MultiRPCLogger) LogRequest(ctx context.Context, req *jrpc2.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, logger := range m.loggers {
		logger.LogRequest(ctx, req)
	}
}

func (m *MultiRPCLogger) LogResponse(ctx context.Context, resp *jrpc2.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, logger := range m.loggers {
		logger.LogResponse(ctx, resp)
	}
}

func (m *MultiRPCLogger) AddLogger(logger jrpc2.RPCLogger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loggers = append(m.loggers, logger)
}
