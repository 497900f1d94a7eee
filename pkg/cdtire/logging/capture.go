package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Entry is one captured log record.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

type captureStore struct {
	mu      sync.Mutex
	entries []Entry
}

// CaptureHandler is a slog.Handler that keeps records in memory so tests
// can assert on what the extraction pipeline reported.
//
//	h := logging.NewCaptureHandler(slog.LevelDebug)
//	logging.SetLogger(slog.New(h))
//	defer logging.SetLogger(nil)
type CaptureHandler struct {
	level slog.Leveler
	store *captureStore
	attrs []slog.Attr
	group string
}

// NewCaptureHandler returns a handler recording records at or above level.
func NewCaptureHandler(level slog.Leveler) *CaptureHandler {
	if level == nil {
		level = slog.LevelDebug
	}
	return &CaptureHandler{level: level, store: &captureStore{}}
}

// Enabled implements slog.Handler.
func (h *CaptureHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	e := Entry{Level: r.Level, Message: r.Message, Attrs: make(map[string]string)}
	for _, a := range h.attrs {
		e.Attrs[h.key(a.Key)] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		e.Attrs[h.key(a.Key)] = a.Value.String()
		return true
	})

	h.store.mu.Lock()
	h.store.entries = append(h.store.entries, e)
	h.store.mu.Unlock()
	return nil
}

func (h *CaptureHandler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

// WithAttrs implements slog.Handler.
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

// WithGroup implements slog.Handler.
func (h *CaptureHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = h.key(name)
	return &next
}

// Entries returns a copy of the captured records.
func (h *CaptureHandler) Entries() []Entry {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return append([]Entry(nil), h.store.entries...)
}

// Contains reports whether any captured message contains s.
func (h *CaptureHandler) Contains(s string) bool {
	for _, e := range h.Entries() {
		if strings.Contains(e.Message, s) {
			return true
		}
	}
	return false
}

// Count returns the number of captured records at exactly level.
func (h *CaptureHandler) Count(level slog.Level) int {
	n := 0
	for _, e := range h.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Reset drops all captured records.
func (h *CaptureHandler) Reset() {
	h.store.mu.Lock()
	h.store.entries = nil
	h.store.mu.Unlock()
}
