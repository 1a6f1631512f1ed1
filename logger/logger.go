// Package logger holds the structured logger shared by every chordsheet
// package. Nothing is logged until SetLogger is called.
package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger is safe for concurrent use. Pass nil to silence logging again.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// Once logs a message at most once per key and revision. Only the latest
// revision of a key is remembered, so it stays as small as the set of keys.
type Once struct {
	mu   sync.Mutex
	seen map[string]uint64
}

// Warn reports whether the message was emitted.
func (o *Once) Warn(key string, revision uint64, msg string, args ...any) bool {
	o.mu.Lock()
	if o.seen == nil {
		o.seen = make(map[string]uint64)
	}
	if last, ok := o.seen[key]; ok && last == revision {
		o.mu.Unlock()
		return false
	}
	o.seen[key] = revision
	o.mu.Unlock()

	Logger().Warn(msg, args...)
	return true
}

func (o *Once) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.seen)
}
