// Package log provides a slog handler that writes to the host's debug log.
//
// Each record becomes one line:
//
//	[MyPlugin] WARN flightloop: callback panicked name=beacon error="boom"
//
// Optionally the same lines, prefixed with a timestamp, go to a rotating
// file managed by lumberjack.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// DebugSink receives finished lines. The host's debug string call
// satisfies it.
type DebugSink interface {
	DebugString(s string)
}

// HandlerOption configures the Handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Level
	addSource bool
	prefix    string
	file      *lumberjack.Logger
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum level to report.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource adds the caller's file:line to each line.
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithPrefix tags every line with the plugin name.
func WithPrefix(name string) HandlerOption {
	return func(c *handlerConfig) {
		c.prefix = name
	}
}

// WithFile also writes lines to path, rotating at maxSizeMB and keeping
// maxBackups old files.
func WithFile(path string, maxSizeMB, maxBackups int) HandlerOption {
	return func(c *handlerConfig) {
		if path == "" {
			return
		}
		c.file = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
		}
	}
}

// output is shared by a handler and everything derived from it.
type output struct {
	mu   sync.Mutex
	sink DebugSink
	file io.WriteCloser
}

// Handler implements slog.Handler. It is safe for concurrent use.
type Handler struct {
	cfg   handlerConfig
	out   *output
	attrs []field
	group string
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler creates a Handler writing to sink. A nil sink writes to
// stderr.
func NewHandler(sink DebugSink, opts ...HandlerOption) *Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if sink == nil {
		sink = stderrSink{}
	}
	out := &output{sink: sink}
	if cfg.file != nil {
		out.file = cfg.file
	}
	return &Handler{cfg: cfg, out: out}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level
}

// Handle renders the record and writes it.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder
	if h.cfg.prefix != "" {
		b.WriteString("[" + h.cfg.prefix + "] ")
	}
	b.WriteString(record.Level.String())
	b.WriteByte(' ')
	b.WriteString(record.Message)

	for _, f := range h.attrs {
		b.WriteByte(' ')
		b.WriteString(f.String())
	}
	record.Attrs(func(a slog.Attr) bool {
		if a.Equal(slog.Attr{}) {
			return true
		}
		for _, f := range toField(h.group, a) {
			b.WriteByte(' ')
			b.WriteString(f.String())
		}
		return true
	})
	if h.cfg.addSource && record.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{record.PC}).Next()
		b.WriteString(fmt.Sprintf(" source=%s:%d", shortFile(frame.File), frame.Line))
	}
	b.WriteByte('\n')
	line := b.String()

	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	h.out.sink.DebugString(line)
	if h.out.file != nil {
		ts := record.Time
		if ts.IsZero() {
			ts = time.Now()
		}
		if _, err := io.WriteString(h.out.file, ts.Format(time.RFC3339Nano)+" "+line); err != nil {
			return fmt.Errorf("log file: %w", err)
		}
	}
	return nil
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.attrs = append([]field(nil), h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, toField(h.group, a)...)
	}
	return &next
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = groupPrefix(h.group, name)
	return &next
}

// Close closes the log file, if any.
func (h *Handler) Close() error {
	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	if h.out.file == nil {
		return nil
	}
	err := h.out.file.Close()
	h.out.file = nil
	return err
}

func shortFile(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		if j := strings.LastIndexByte(path[:i], '/'); j >= 0 {
			return path[j+1:]
		}
	}
	return path
}

type stderrSink struct{}

func (stderrSink) DebugString(s string) { _, _ = io.WriteString(os.Stderr, s) }
