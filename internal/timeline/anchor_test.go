package timeline

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/openexam/examtrail/internal/store"
	"github.com/openexam/examtrail/internal/testutil"
)

// fakeFinder returns a canned start time or error.
type fakeFinder struct {
	start time.Time
	err   error
}

func (f *fakeFinder) EarliestStartTime(context.Context, store.EarliestStartTimeParams) (time.Time, error) {
	return f.start, f.err
}

func TestRelativeSecondsNoStart(t *testing.T) {
	a := NewAnchor(&fakeFinder{err: sql.ErrNoRows}, testutil.TestLogger())

	got := a.RelativeSeconds(context.Background(), "E1", "U1", time.Now())
	if got.Valid {
		t.Errorf("RelativeSeconds with no Start = %v, want null", got)
	}
}

func TestRelativeSecondsLookupFailureDegradesToNull(t *testing.T) {
	a := NewAnchor(&fakeFinder{err: errors.New("store unreachable")}, testutil.TestLogger())

	got := a.RelativeSeconds(context.Background(), "E1", "U1", time.Now())
	if got.Valid {
		t.Errorf("RelativeSeconds with failing store = %v, want null", got)
	}
}

func TestRelativeSecondsElapsed(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	a := NewAnchor(&fakeFinder{start: start}, testutil.TestLogger())

	got := a.RelativeSeconds(context.Background(), "E1", "U1", start.Add(5200*time.Millisecond))
	if !got.Valid {
		t.Fatal("RelativeSeconds = null, want value")
	}
	if math.Abs(got.Float64-5.2) > 1e-9 {
		t.Errorf("RelativeSeconds = %v, want 5.2", got.Float64)
	}
}

func TestRelativeSecondsNegative(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	a := NewAnchor(&fakeFinder{start: start}, testutil.TestLogger())

	// Events can land before the Start under clock skew; negative is valid.
	got := a.RelativeSeconds(context.Background(), "E1", "U1", start.Add(-1500*time.Millisecond))
	if !got.Valid {
		t.Fatal("RelativeSeconds = null, want value")
	}
	if math.Abs(got.Float64-(-1.5)) > 1e-9 {
		t.Errorf("RelativeSeconds = %v, want -1.5", got.Float64)
	}
}

// Regression: with multiple Starts on record (retakes), anchoring must
// use the earliest one. Sorting the lookup descending would silently
// re-anchor every event after a retake.
func TestEarliestStartWins(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)
	ctx := context.Background()

	t0 := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	t1 := t0.Add(10 * time.Minute) // re-Start after a retake

	for _, startAt := range []time.Time{t1, t0} { // inserted out of order on purpose
		insertStart(t, queries, "E1", "U1", startAt)
	}

	a := NewAnchor(queries, testutil.TestLogger())
	got := a.RelativeSeconds(ctx, "E1", "U1", t0.Add(30*time.Second))
	if !got.Valid {
		t.Fatal("RelativeSeconds = null, want value")
	}
	if math.Abs(got.Float64-30) > 1e-6 {
		t.Errorf("RelativeSeconds = %v, want 30 (anchored to earliest Start, not latest)", got.Float64)
	}
}

func TestRelativeSecondsScopedToExamAndUser(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)
	ctx := context.Background()

	t0 := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	insertStart(t, queries, "E1", "U1", t0)

	a := NewAnchor(queries, testutil.TestLogger())

	if got := a.RelativeSeconds(ctx, "E2", "U1", t0.Add(time.Second)); got.Valid {
		t.Error("Start of E1 leaked into anchor for E2")
	}
	if got := a.RelativeSeconds(ctx, "E1", "U2", t0.Add(time.Second)); got.Valid {
		t.Error("Start of U1 leaked into anchor for U2")
	}
}

func insertStart(t *testing.T, queries *store.Queries, examID, userID string, at time.Time) {
	t.Helper()
	_, err := queries.CreateActivityLog(context.Background(), store.CreateActivityLogParams{
		ExamID:          examID,
		UserID:          userID,
		Type:            "Start",
		Action:          "exam begin",
		Page:            "/exam",
		EventTimeUTC:    at,
		RelativeTimeSec: sql.NullFloat64{Float64: 0, Valid: true},
		CreatedAt:       at,
		UpdatedAt:       at,
	})
	if err != nil {
		t.Fatalf("CreateActivityLog: %v", err)
	}
}
