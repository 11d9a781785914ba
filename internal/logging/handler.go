// Package logging provides a custom slog handler that mirrors WARN and
// ERROR level records into the system_events table for later review.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/openexam/examtrail/internal/store"
)

// System event levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// StoreHandler is a slog.Handler that wraps another handler and also
// writes records at or above a threshold level to the store.
type StoreHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
}

// NewStoreHandler creates a StoreHandler that forwards WARN and above
// to the system_events table.
func NewStoreHandler(inner slog.Handler, db *sql.DB) *StoreHandler {
	return &StoreHandler{
		inner:   inner,
		queries: store.New(db),
		level:   slog.LevelWarn,
	}
}

// Enabled implements slog.Handler.
func (h *StoreHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *StoreHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.writeSystemEvent(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *StoreHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &StoreHandler{inner: h.inner.WithAttrs(attrs), queries: h.queries, level: h.level}
}

// WithGroup implements slog.Handler.
func (h *StoreHandler) WithGroup(name string) slog.Handler {
	return &StoreHandler{inner: h.inner.WithGroup(name), queries: h.queries, level: h.level}
}

// writeSystemEvent persists one record. A background context is used so
// the event is stored even when the request context is already done.
func (h *StoreHandler) writeSystemEvent(r slog.Record) {
	_, _ = h.queries.CreateSystemEvent(context.Background(), store.CreateSystemEventParams{
		Level:     recordLevel(r.Level),
		Category:  extractCategory(r),
		Message:   r.Message,
		Metadata:  extractMetadata(r),
		CreatedAt: r.Time,
	})
}

func recordLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return LevelError
	case level >= slog.LevelWarn:
		return LevelWarning
	default:
		return LevelInfo
	}
}

// extractCategory pulls a "category" attribute from the record, falling
// back to a guess from the message text.
func extractCategory(r slog.Record) string {
	var category string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return false
		}
		return true
	})
	if category != "" {
		return category
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "auth") || strings.Contains(msg, "login") || strings.Contains(msg, "token"):
		return "auth"
	case strings.Contains(msg, "log") || strings.Contains(msg, "anchor") || strings.Contains(msg, "event"):
		return "activity"
	case strings.Contains(msg, "database") || strings.Contains(msg, "insert"):
		return "store"
	default:
		return "system"
	}
}

// extractMetadata collects the remaining attributes as a JSON object.
func extractMetadata(r slog.Record) string {
	if r.NumAttrs() == 0 {
		return "{}"
	}

	attrs := make(map[string]string, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		if a.Key != "category" {
			attrs[a.Key] = a.Value.String()
		}
		return true
	})
	if len(attrs) == 0 {
		return "{}"
	}

	encoded, err := json.Marshal(attrs)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}
