package gsprite

import "log/slog"

import "github.com/ashvele/gsprite/internal/logx"

// SetLogger configures the logger used by gsprite and its subpackages.
// By default gsprite produces no log output. Pass nil to restore the
// default silent behavior.
//
// Log levels used by gsprite:
//   - [slog.LevelInfo]: theme lifecycle events (theme switches, reloads)
//   - [slog.LevelWarn]: degraded modes (invalid theme files, disk cache
//     failures, fallback to the default theme)
//
// SetLogger is safe for concurrent use: it stores the new logger
// atomically.
func SetLogger(l *slog.Logger) { logx.Set(l) }

// Logger returns the current logger used by gsprite.
func Logger() *slog.Logger { return logx.Get() }
