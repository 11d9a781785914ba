package timeline

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/openexam/examtrail/internal/model"
	"github.com/openexam/examtrail/internal/store"
)

// StartFinder locates the earliest Start event for an (exam, user)
// pair. Satisfied by *store.Queries.
type StartFinder interface {
	EarliestStartTime(ctx context.Context, arg store.EarliestStartTimeParams) (time.Time, error)
}

// Anchor computes relative times against a user's exam start.
type Anchor struct {
	finder StartFinder
	logger *slog.Logger
}

// NewAnchor creates an Anchor backed by the given store.
func NewAnchor(finder StartFinder, logger *slog.Logger) *Anchor {
	return &Anchor{finder: finder, logger: logger}
}

// RelativeSeconds returns the signed seconds elapsed from the earliest
// Start event of (examID, userID) to eventTime. The result is null when
// no Start has been recorded yet; that is not an error, since events may
// legitimately arrive before the Start event is readable. Lookup
// failures also degrade to null: the relative time is an analytics aid,
// never worth failing the request over. Negative values are valid under
// clock skew or out-of-order arrival.
//
// The lookup is a plain read with no lock held across the caller's
// subsequent insert. Two near-simultaneous events may both see no Start
// or different candidates; the design tolerates that.
func (a *Anchor) RelativeSeconds(ctx context.Context, examID, userID string, eventTime time.Time) sql.NullFloat64 {
	start, err := a.finder.EarliestStartTime(ctx, store.EarliestStartTimeParams{
		ExamID: examID,
		UserID: userID,
		Type:   model.EventStart,
	})
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			a.logger.Error("anchor lookup failed", "exam_id", examID, "user_id", userID, "error", err)
		}
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{
		Float64: eventTime.Sub(start).Seconds(),
		Valid:   true,
	}
}
