// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/holiman/uint256"
)

type discardHandler struct{}

// DiscardHandler returns a no-op handler.
func DiscardHandler() slog.Handler {
	return &discardHandler{}
}

func (h *discardHandler) Handle(_ context.Context, _ slog.Record) error { return nil }
func (h *discardHandler) Enabled(_ context.Context, _ slog.Level) bool  { return false }
func (h *discardHandler) WithGroup(_ string) slog.Handler               { return h }
func (h *discardHandler) WithAttrs(_ []slog.Attr) slog.Handler          { return h }

// TerminalHandler writes human-readable records, one per line.
type TerminalHandler struct {
	mu    sync.Mutex
	wr    io.Writer
	lvl   slog.Level
	attrs []slog.Attr
}

// NewTerminalHandler creates a terminal handler writing records at or above
// lvl to wr.
func NewTerminalHandler(wr io.Writer, lvl slog.Level) *TerminalHandler {
	return &TerminalHandler{wr: wr, lvl: lvl}
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	fmt.Fprintf(h.wr, "%s %-5s %s", r.Time.Format(time.RFC3339), r.Level, r.Message)
	emit := func(a slog.Attr) bool {
		fmt.Fprintf(h.wr, " %s=%s", a.Key, formatValue(a.Value))
		return true
	}
	for _, a := range h.attrs {
		emit(a)
	}
	r.Attrs(emit)
	fmt.Fprintln(h.wr)
	return nil
}

func (h *TerminalHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TerminalHandler{
		wr:    h.wr,
		lvl:   h.lvl,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func formatValue(v slog.Value) string {
	switch typed := v.Any().(type) {
	case *big.Int:
		if typed == nil {
			return "<nil>"
		}
		return typed.String()
	case *uint256.Int:
		if typed == nil {
			return "<nil>"
		}
		return typed.Dec()
	case error:
		return typed.Error()
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprintf("%v", v.Any())
	}
}

// normalize turns loose key/value context pairs into slog args, padding a
// trailing key with nil.
func normalize(ctx []any) []any {
	if len(ctx)%2 != 0 {
		ctx = append(ctx, nil)
	}
	return ctx
}
