// Package logging wraps log/slog with the plain-text line format used
// throughout the translator's diagnostics, keeping translate-time and
// run-time logging on one code path.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// lineHandler formats records as "time level message key=value ...", one
// line per record, serialized behind a mutex so concurrent emitter
// goroutines don't interleave partial lines.
type lineHandler struct {
	out   io.Writer
	mu    *sync.Mutex
	attrs []slog.Attr
	level slog.Leveler
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &lineHandler{out: h.out, mu: h.mu, attrs: next, level: h.level}
}

func (h *lineHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	parts := []string{r.Time.Format("15:04:05.000"), strings.ToUpper(r.Level.String()), r.Message}
	for _, a := range h.attrs {
		parts = append(parts, a.Key+"="+a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, a.Key+"="+a.Value.String())
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, strings.Join(parts, " ")+"\n")
	return err
}

// New returns a logger writing to w at the given level. Passing a debug
// level surfaces per-function emission progress; info and above is the
// default for translation driver output.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := &lineHandler{out: w, mu: &sync.Mutex{}, level: level}
	return slog.New(h)
}

// Default returns a logger writing to stderr at info level.
func Default() *slog.Logger {
	return New(os.Stderr, false)
}
