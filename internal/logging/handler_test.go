package logging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/openexam/examtrail/internal/store"
	"github.com/openexam/examtrail/internal/testutil"
)

func newTestLogger(t *testing.T) (*slog.Logger, *store.Queries) {
	t.Helper()
	db := testutil.TestDB(t)
	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewStoreHandler(inner, db)), store.New(db)
}

func TestWarnAndErrorForwardedToStore(t *testing.T) {
	logger, queries := newTestLogger(t)

	logger.Warn("anchor lookup failed", "exam_id", "E1")
	logger.Error("insert rejected", "error", "disk full")

	events, err := queries.ListSystemEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListSystemEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("stored %d events, want 2", len(events))
	}

	byMsg := map[string]store.SystemEvent{}
	for _, e := range events {
		byMsg[e.Message] = e
	}

	warn, ok := byMsg["anchor lookup failed"]
	if !ok {
		t.Fatal("warn record not stored")
	}
	if warn.Level != LevelWarning {
		t.Errorf("warn level = %q", warn.Level)
	}

	var meta map[string]string
	if err := json.Unmarshal([]byte(warn.Metadata), &meta); err != nil {
		t.Fatalf("metadata not JSON: %v", err)
	}
	if meta["exam_id"] != "E1" {
		t.Errorf("metadata = %v", meta)
	}

	if byMsg["insert rejected"].Level != LevelError {
		t.Errorf("error level = %q", byMsg["insert rejected"].Level)
	}
}

func TestInfoNotForwarded(t *testing.T) {
	logger, queries := newTestLogger(t)

	logger.Info("server started", "addr", "localhost:8080")

	events, err := queries.ListSystemEvents(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("info record leaked into store: %+v", events)
	}
}

func TestExplicitCategoryAttr(t *testing.T) {
	logger, queries := newTestLogger(t)

	logger.Warn("something odd", "category", "ingest", "detail", "x")

	events, err := queries.ListSystemEvents(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("stored %d events", len(events))
	}
	if events[0].Category != "ingest" {
		t.Errorf("category = %q, want ingest", events[0].Category)
	}

	var meta map[string]string
	if err := json.Unmarshal([]byte(events[0].Metadata), &meta); err != nil {
		t.Fatal(err)
	}
	if _, present := meta["category"]; present {
		t.Error("category attribute duplicated into metadata")
	}
}
