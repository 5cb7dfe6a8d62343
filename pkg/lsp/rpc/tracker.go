package rpc

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/creachadair/jrpc2"
)

// RPCMessage is one request or response seen by an RPCTracker.
type RPCMessage struct {
	Method   string
	Request  *jrpc2.Request
	Response *jrpc2.Response
	Time     time.Time
}

// RPCTracker records traffic through the server.
type RPCTracker struct {
	mu sync.RWMutex

	messages     []RPCMessage
	subs         map[chan<- RPCMessage]struct{}
	knownMethods map[string]string
}

var _ jrpc2.RPCLogger = (*RPCTracker)(nil)

func NewRPCTracker() *RPCTracker {
	return &RPCTracker{
		subs:         make(map[chan<- RPCMessage]struct{}),
		knownMethods: make(map[string]string),
	}
}

func (t *RPCTracker) LogRequest(_ context.Context, req *jrpc2.Request) {
	if id := req.ID(); id != "" {
		t.mu.Lock()
		t.knownMethods[id] = req.Method()
		t.mu.Unlock()
	}
	t.Track(RPCMessage{Method: req.Method(), Request: req})
}

func (t *RPCTracker) LogResponse(_ context.Context, resp *jrpc2.Response) {
	t.mu.RLock()
	method := t.knownMethods[resp.ID()]
	t.mu.RUnlock()
	t.Track(RPCMessage{Method: method, Response: resp})
}

// Track records msg and hands it to subscribers that have room for it.
func (t *RPCTracker) Track(msg RPCMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()

	msg.Time = time.Now()
	t.messages = append(t.messages, msg)

	for ch := range t.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Messages returns everything tracked so far that matches predicate.
func (t *RPCTracker) Messages(predicate func(RPCMessage) bool) []RPCMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := slices.Clone(t.messages)
	return slices.DeleteFunc(out, func(m RPCMessage) bool {
		return !predicate(m)
	})
}

func (t *RPCTracker) subscribe(size int) (<-chan RPCMessage, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan RPCMessage, size)
	t.subs[ch] = struct{}{}

	return ch, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, ch)
	}
}

// WaitForMessages blocks until count messages match predicate or timeout
// passes. It reports whether enough messages arrived.
func (t *RPCTracker) WaitForMessages(count int, timeout time.Duration, predicate func(RPCMessage) bool) ([]RPCMessage, bool) {
	ch, unsub := t.subscribe(64)
	defer unsub()

	result := t.Messages(predicate)
	if len(result) >= count {
		return result, true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ch:
			result = t.Messages(predicate)
			if len(result) >= count {
				return result, true
			}
		case <-timer.C:
			return result, false
		}
	}
}

// IsResponseTo matches responses to method.
func IsResponseTo(method string) func(RPCMessage) bool {
	return func(m RPCMessage) bool {
		return m.Response != nil && m.Method == method
	}
}
