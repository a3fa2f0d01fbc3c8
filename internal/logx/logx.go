// Package logx holds the logger shared by gsprite and its subpackages.
// The public configuration surface lives in the root package; this only
// exists to avoid import cycles.
package logx

import "context"
import "log/slog"
import "sync/atomic"

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so the caller skips message formatting entirely,
// making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := slog.New(nopHandler{})
	loggerPtr.Store(l)
}

// Set stores the active logger. Passing nil restores the silent default.
func Set(l *slog.Logger) {
	if l == nil { l = slog.New(nopHandler{}) }
	loggerPtr.Store(l)
}

// Get returns the active logger.
func Get() *slog.Logger {
	return loggerPtr.Load()
}
