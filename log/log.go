// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides structured logging for the settlement engines,
// backed by log/slog. The default handler discards everything; embedders
// install a handler via SetDefault.
package log

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Logger is the leveled, contextual logger handed to engine components.
type Logger interface {
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	With(ctx ...any) Logger
}

type logger struct {
	inner *slog.Logger
}

func (l *logger) Debug(msg string, ctx ...any) { l.write(slog.LevelDebug, msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.write(slog.LevelInfo, msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.write(slog.LevelWarn, msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.write(slog.LevelError, msg, ctx...) }

func (l *logger) write(level slog.Level, msg string, ctx ...any) {
	l.inner.Log(context.Background(), level, msg, normalize(ctx)...)
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{l.inner.With(normalize(ctx)...)}
}

var root atomic.Pointer[logger]

func init() {
	root.Store(&logger{slog.New(DiscardHandler())})
}

// SetDefault installs the handler used by the root logger and everything
// derived from it afterwards.
func SetDefault(handler slog.Handler) {
	root.Store(&logger{slog.New(handler)})
}

// WithContext returns a logger carrying the given context pairs.
func WithContext(ctx ...any) Logger {
	return root.Load().With(ctx...)
}

// Debug logs at debug level via the root logger.
func Debug(msg string, ctx ...any) { root.Load().Debug(msg, ctx...) }

// Info logs at info level via the root logger.
func Info(msg string, ctx ...any) { root.Load().Info(msg, ctx...) }

// Warn logs at warn level via the root logger.
func Warn(msg string, ctx ...any) { root.Load().Warn(msg, ctx...) }

// Error logs at error level via the root logger.
func Error(msg string, ctx ...any) { root.Load().Error(msg, ctx...) }
