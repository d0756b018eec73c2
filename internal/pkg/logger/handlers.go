// internal/pkg/logger/handlers.go
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"
)

// ContextHandler extracts request-scoped values from context and adds
// them to log records
type ContextHandler struct {
	handler slog.Handler
}

// NewContextHandler creates a handler that enriches logs with context values
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{handler: handler}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	contextAttrs := extractContextAttrs(ctx, requestContextKeys())
	if len(contextAttrs) == 0 {
		return h.handler.Handle(ctx, record)
	}

	newRecord := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(a slog.Attr) bool {
		newRecord.AddAttrs(a)
		return true
	})
	for _, item := range contextAttrs {
		if attr, ok := item.(slog.Attr); ok {
			newRecord.AddAttrs(attr)
		}
	}

	return h.handler.Handle(ctx, newRecord)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}

// RedactionHandler masks sensitive values before they reach any sink.
// Besides the usual credential material, device IMEIs are personal data
// under the shop's retention policy and are logged with only the last
// four digits visible.
type RedactionHandler struct {
	handler     slog.Handler
	credentials *regexp.Regexp
	imei        *regexp.Regexp
	blacklist   []string
}

// NewRedactionHandler creates a handler that masks credentials and IMEIs
func NewRedactionHandler(handler slog.Handler) *RedactionHandler {
	return &RedactionHandler{
		handler:     handler,
		credentials: regexp.MustCompile(`(?i)(password|secret|token|api[-_]?key|bearer)\s*[:=]\s*["']?([^"'\s]+)`),
		imei:        regexp.MustCompile(`\b\d{11}(\d{4})\b`),
		blacklist:   []string{"password", "secret", "token", "api_key", "aws_secret"},
	}
}

func (h *RedactionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *RedactionHandler) Handle(ctx context.Context, record slog.Record) error {
	newRecord := slog.NewRecord(record.Time, record.Level, h.redactString(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		newRecord.AddAttrs(h.redactAttr(a))
		return true
	})
	return h.handler.Handle(ctx, newRecord)
}

func (h *RedactionHandler) redactAttr(attr slog.Attr) slog.Attr {
	lowerKey := strings.ToLower(attr.Key)
	for _, blacklisted := range h.blacklist {
		if strings.Contains(lowerKey, blacklisted) {
			attr.Value = slog.StringValue("***REDACTED***")
			return attr
		}
	}

	if s, ok := attr.Value.Any().(string); ok {
		attr.Value = slog.StringValue(h.redactString(s))
	}

	return attr
}

func (h *RedactionHandler) redactString(s string) string {
	s = h.credentials.ReplaceAllString(s, "$1=***REDACTED***")
	s = h.imei.ReplaceAllString(s, "***********$1")
	return s
}

func (h *RedactionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RedactionHandler{
		handler:     h.handler.WithAttrs(attrs),
		credentials: h.credentials,
		imei:        h.imei,
		blacklist:   h.blacklist,
	}
}

func (h *RedactionHandler) WithGroup(name string) slog.Handler {
	return &RedactionHandler{
		handler:     h.handler.WithGroup(name),
		credentials: h.credentials,
		imei:        h.imei,
		blacklist:   h.blacklist,
	}
}

// PrettyTextHandler provides human-readable colored output for development
type PrettyTextHandler struct {
	*slog.TextHandler
	opts *slog.HandlerOptions
	mu   sync.Mutex
	w    io.Writer
}

// NewPrettyTextHandler creates a pretty text handler
func NewPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyTextHandler {
	return &PrettyTextHandler{
		TextHandler: slog.NewTextHandler(w, opts),
		opts:        opts,
		w:           w,
	}
}

func (h *PrettyTextHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	timestamp := r.Time.Format("2006-01-02 15:04:05.000")
	levelColor := h.getLevelColor(r.Level)
	resetColor := "\033[0m"
	level := r.Level.String()

	fmt.Fprintf(h.w, "%s%s %s%s%s %s",
		levelColor,
		timestamp,
		strings.ToUpper(level),
		resetColor,
		strings.Repeat(" ", 7-len(level)),
		r.Message,
	)

	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(h.w, " %s%s=%v%s", "\033[36m", a.Key, a.Value, resetColor)
		return true
	})

	fmt.Fprintln(h.w)

	return nil
}

func (h *PrettyTextHandler) getLevelColor(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "\033[37m"
	case slog.LevelInfo:
		return "\033[34m"
	case slog.LevelWarn:
		return "\033[33m"
	case slog.LevelError:
		return "\033[31m"
	default:
		return "\033[0m"
	}
}
