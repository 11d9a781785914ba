package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/openexam/examtrail/internal/middleware"
	"github.com/openexam/examtrail/internal/model"
	"github.com/openexam/examtrail/internal/store"
	"github.com/openexam/examtrail/internal/timeline"
)

// CreateLog handles POST /api/logs - the generic event ingestion
// endpoint. The request identity has already been resolved by the
// bearer middleware; the handler stamps the server capture time,
// normalizes the payload, anchors it to the exam start, and appends it
// to the activity log.
func (h *Handler) CreateLog(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Identity(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Missing Authorization header")
		return
	}

	var raw timeline.RawEvent
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ev, err := timeline.Normalize(raw)
	if err != nil {
		var missing *timeline.MissingFieldError
		var invalid *timeline.InvalidTypeError
		if errors.As(err, &missing) || errors.As(err, &invalid) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid event")
		return
	}

	now := time.Now().UTC()

	relative := h.anchor.RelativeSeconds(r.Context(), ev.ExamID, claims.UserID, now)
	// A Start event is its own anchor, even when an earlier Start is
	// already readable (retakes) or not yet visible (first-event race).
	if ev.Type == model.EventStart {
		relative = sql.NullFloat64{Float64: 0, Valid: true}
	}

	entry, err := h.queries.CreateActivityLog(r.Context(), store.CreateActivityLogParams{
		ExamID:          ev.ExamID,
		UserID:          claims.UserID,
		Type:            ev.Type,
		Action:          ev.Action,
		Page:            ev.Page,
		QuestionID:      nullStringFromPtr(ev.QuestionID),
		QuestionNo:      nullInt64FromPtr(ev.QuestionNo),
		AnswerID:        nullStringFromPtr(ev.AnswerID),
		FieldName:       nullStringFromPtr(ev.FieldName),
		FieldValue:      nullStringFromPtr(ev.FieldValue),
		Timestamp:       sql.NullTime{Time: now, Valid: true},
		EventTimeUTC:    now,
		RelativeTimeSec: relative,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		h.logger.Error("failed to insert activity log entry",
			"exam_id", ev.ExamID, "user_id", claims.UserID, "type", ev.Type, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeSuccess(w, map[string]any{"entry": toLogEntry(entry)})
}

// notesPayload is the before/after pair serialized into field_value by
// the notes ingestion endpoint.
type notesPayload struct {
	Notes         string `json:"notes"`
	PreviousNotes string `json:"previousNotes"`
}

// notesRequest is the body of POST /api/logs/notes.
type notesRequest struct {
	ExamID        string          `json:"exam_id"`
	QuestionID    *string         `json:"question_id"`
	QuestionNo    *int64          `json:"question_no"`
	Notes         string          `json:"notes"`
	PreviousNotes string          `json:"previousNotes"`
	Timestamp     json.RawMessage `json:"timestamp"`
	Page          string          `json:"page"`
}

// parseClientTimestamp decodes the caller-reported edit time. Clients
// send either an RFC3339(Nano) string or a millisecond epoch, as a JSON
// string or number; anything else is discarded.
func parseClientTimestamp(raw json.RawMessage) (time.Time, bool) {
	if len(raw) == 0 {
		return time.Time{}, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UTC(), true
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
		return time.Time{}, false
	}
	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

// NotesEdit handles POST /api/logs/notes - a convenience specialization
// that records a notes edit as a fixed "Notes Entered" event with the
// before/after pair packaged into field_value.
func (h *Handler) NotesEdit(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Identity(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Missing Authorization token")
		return
	}

	var req notesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ExamID == "" {
		writeError(w, http.StatusBadRequest, "exam_id is required")
		return
	}

	now := time.Now().UTC()

	// Each side of the pair is bounded before serialization; bounding
	// the serialized form would cut the JSON mid-document and the stored
	// payload would no longer decode back to {notes, previousNotes}.
	payload, err := json.Marshal(notesPayload{
		Notes:         timeline.BoundFieldValue(req.Notes),
		PreviousNotes: timeline.BoundFieldValue(req.PreviousNotes),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notes payload")
		return
	}
	fieldValue := string(payload)

	// The client timestamp is kept when parseable; unlike the generic
	// endpoint this one reports when the edit happened in the UI.
	clientTime := now
	if parsed, ok := parseClientTimestamp(req.Timestamp); ok {
		clientTime = parsed
	}

	page := req.Page
	if page == "" {
		page = r.URL.Path
	}

	relative := h.anchor.RelativeSeconds(r.Context(), req.ExamID, claims.UserID, now)

	fieldName := "notes"
	entry, err := h.queries.CreateActivityLog(r.Context(), store.CreateActivityLogParams{
		ExamID:          req.ExamID,
		UserID:          claims.UserID,
		Type:            model.EventNotesEntered,
		Action:          "User typed comments in the Notes box",
		Page:            page,
		QuestionID:      nullStringFromPtr(req.QuestionID),
		QuestionNo:      nullInt64FromPtr(req.QuestionNo),
		FieldName:       sql.NullString{String: fieldName, Valid: true},
		FieldValue:      sql.NullString{String: fieldValue, Valid: true},
		Timestamp:       sql.NullTime{Time: clientTime, Valid: true},
		EventTimeUTC:    now,
		RelativeTimeSec: relative,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		h.logger.Error("failed to insert notes log entry",
			"exam_id", req.ExamID, "user_id", claims.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeSuccess(w, map[string]any{"logEntry": toLogEntry(entry)})
}

// ListLogs handles GET /api/logs - an unfiltered dump of the activity
// log for administrative and debug use.
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.queries.ListActivityLogs(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch activity logs", "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching logs")
		return
	}

	entries := make([]model.LogEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, toLogEntry(l))
	}
	writeSuccess(w, map[string]any{"search": entries})
}

// toLogEntry converts a stored row into the wire representation.
// Null detail columns become explicit JSON nulls.
func toLogEntry(a store.ActivityLog) model.LogEntry {
	e := model.LogEntry{
		ID:           a.ID,
		ExamID:       a.ExamID,
		UserID:       a.UserID,
		Type:         a.Type,
		Action:       a.Action,
		Page:         a.Page,
		EventTimeUTC: a.EventTimeUTC,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if a.QuestionID.Valid {
		e.QuestionID = &a.QuestionID.String
	}
	if a.QuestionNo.Valid {
		e.QuestionNo = &a.QuestionNo.Int64
	}
	if a.AnswerID.Valid {
		e.AnswerID = &a.AnswerID.String
	}
	if a.FieldName.Valid {
		e.FieldName = &a.FieldName.String
	}
	if a.FieldValue.Valid {
		e.FieldValue = &a.FieldValue.String
	}
	if a.Timestamp.Valid {
		e.Timestamp = a.Timestamp.Time
	}
	if a.RelativeTimeSec.Valid {
		e.RelativeTimeSec = &a.RelativeTimeSec.Float64
	}
	return e
}

func nullStringFromPtr(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullInt64FromPtr(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}
