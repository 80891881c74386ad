// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/bassosimone/slogstub"
	"github.com/stretchr/testify/require"
)

// capturedRecords contains the records captured by [newCapturingLogger].
//
// The engine logs transport events from its own goroutines, hence the mutex.
type capturedRecords struct {
	mu      sync.Mutex
	records []slog.Record
}

// Messages returns the messages of the captured records.
func (cr *capturedRecords) Messages() []string {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	var out []string
	for _, record := range cr.records {
		out = append(out, record.Message)
	}
	return out
}

// Find returns the captured records with the given message.
func (cr *capturedRecords) Find(message string) []slog.Record {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	var out []slog.Record
	for _, record := range cr.records {
		if record.Message == message {
			out = append(out, record)
		}
	}
	return out
}

// newCapturingLogger returns a logger that captures all log records. The
// caller can inspect them after exercising the code under test to verify
// which events were emitted.
func newCapturingLogger() (*slog.Logger, *capturedRecords) {
	cr := &capturedRecords{}
	handler := &slogstub.FuncHandler{
		EnabledFunc: func(ctx context.Context, level slog.Level) bool {
			return true
		},
		HandleFunc: func(ctx context.Context, record slog.Record) error {
			cr.mu.Lock()
			cr.records = append(cr.records, record)
			cr.mu.Unlock()
			return nil
		},
	}
	return slog.New(handler), cr
}

// recordAttrs returns the attributes of a record as a map.
func recordAttrs(record slog.Record) map[string]slog.Value {
	attrs := map[string]slog.Value{}
	record.Attrs(func(attr slog.Attr) bool {
		attrs[attr.Key] = attr.Value
		return true
	})
	return attrs
}

// newTestConfig returns a [*Config] suitable for tests.
func newTestConfig() *Config {
	cfg := NewConfig()
	cfg.Linger = time.Second
	cfg.ReconnectInterval = 10 * time.Millisecond
	return cfg
}

// newTestContext returns a context terminated at the end of the test.
func newTestContext(t *testing.T, logger SLogger) *Context {
	ctx, err := NewContext(newTestConfig(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { ctx.Terminate() })
	return ctx
}

// newTestSocket returns a socket closed at the end of the test.
func newTestSocket(t *testing.T, ctx *Context, kind SocketKind) *Socket {
	s, err := NewSocket(ctx, kind)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// newInprocPair returns a bound and a connected socket using inproc.
func newInprocPair(t *testing.T, ctx *Context, server, client SocketKind, name string) (*Socket, *Socket) {
	ss := newTestSocket(t, ctx, server)
	cs := newTestSocket(t, ctx, client)
	ep := MustParseEndpoint("inproc://" + name)
	require.NoError(t, ss.Bind(ep))
	require.NoError(t, cs.Connect(ep))
	return ss, cs
}
