package store

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is the subset of *sql.DB / *sql.Tx used by Queries.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries exposes typed access to the database.
type Queries struct {
	db DBTX
}

// New creates a Queries instance bound to the given database handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const createUser = `
INSERT INTO users (public_id, email, password_hash, full_name, org_tag, is_admin, practice_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, public_id, email, password_hash, full_name, org_tag, is_admin, practice_id, created_at, updated_at
`

// CreateUserParams holds the arguments for CreateUser.
type CreateUserParams struct {
	PublicID     string
	Email        string
	PasswordHash string
	FullName     string
	OrgTag       string
	IsAdmin      bool
	PracticeID   sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a new user and returns the stored row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.PublicID, arg.Email, arg.PasswordHash, arg.FullName,
		arg.OrgTag, arg.IsAdmin, arg.PracticeID, arg.CreatedAt, arg.UpdatedAt)
	return scanUser(row)
}

const getUserByEmail = `
SELECT id, public_id, email, password_hash, full_name, org_tag, is_admin, practice_id, created_at, updated_at
FROM users WHERE email = ?
`

// GetUserByEmail looks up a user by email address.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const getUserByPublicID = `
SELECT id, public_id, email, password_hash, full_name, org_tag, is_admin, practice_id, created_at, updated_at
FROM users WHERE public_id = ?
`

// GetUserByPublicID looks up a user by their opaque public identifier.
func (q *Queries) GetUserByPublicID(ctx context.Context, publicID string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByPublicID, publicID))
}

const updateUserPassword = `
UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?
`

// UpdateUserPasswordParams holds the arguments for UpdateUserPassword.
type UpdateUserPasswordParams struct {
	PasswordHash string
	UpdatedAt    time.Time
	ID           int64
}

// UpdateUserPassword replaces a user's password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword, arg.PasswordHash, arg.UpdatedAt, arg.ID)
	return err
}

const updateUserPracticeID = `
UPDATE users SET practice_id = ?, updated_at = ? WHERE id = ?
`

// UpdateUserPracticeIDParams holds the arguments for UpdateUserPracticeID.
type UpdateUserPracticeIDParams struct {
	PracticeID sql.NullString
	UpdatedAt  time.Time
	ID         int64
}

// UpdateUserPracticeID sets or clears the user's current practice exam id.
func (q *Queries) UpdateUserPracticeID(ctx context.Context, arg UpdateUserPracticeIDParams) error {
	_, err := q.db.ExecContext(ctx, updateUserPracticeID, arg.PracticeID, arg.UpdatedAt, arg.ID)
	return err
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.PublicID, &u.Email, &u.PasswordHash, &u.FullName,
		&u.OrgTag, &u.IsAdmin, &u.PracticeID, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const createActivityLog = `
INSERT INTO activity_log (
	exam_id, user_id, type, action, page,
	question_id, question_no, answer_id, field_name, field_value,
	timestamp, event_time_utc, relative_time_sec, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, exam_id, user_id, type, action, page,
	question_id, question_no, answer_id, field_name, field_value,
	timestamp, event_time_utc, relative_time_sec, created_at, updated_at
`

// CreateActivityLogParams holds the arguments for CreateActivityLog.
type CreateActivityLogParams struct {
	ExamID          string
	UserID          string
	Type            string
	Action          string
	Page            string
	QuestionID      sql.NullString
	QuestionNo      sql.NullInt64
	AnswerID        sql.NullString
	FieldName       sql.NullString
	FieldValue      sql.NullString
	Timestamp       sql.NullTime
	EventTimeUTC    time.Time
	RelativeTimeSec sql.NullFloat64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateActivityLog appends one activity log entry and returns the
// stored row. The log is append-only: there is no update or delete.
func (q *Queries) CreateActivityLog(ctx context.Context, arg CreateActivityLogParams) (ActivityLog, error) {
	row := q.db.QueryRowContext(ctx, createActivityLog,
		arg.ExamID, arg.UserID, arg.Type, arg.Action, arg.Page,
		arg.QuestionID, arg.QuestionNo, arg.AnswerID, arg.FieldName, arg.FieldValue,
		arg.Timestamp, arg.EventTimeUTC, arg.RelativeTimeSec, arg.CreatedAt, arg.UpdatedAt)
	var a ActivityLog
	err := row.Scan(&a.ID, &a.ExamID, &a.UserID, &a.Type, &a.Action, &a.Page,
		&a.QuestionID, &a.QuestionNo, &a.AnswerID, &a.FieldName, &a.FieldValue,
		&a.Timestamp, &a.EventTimeUTC, &a.RelativeTimeSec, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

const earliestStartTime = `
SELECT event_time_utc FROM activity_log
WHERE exam_id = ? AND user_id = ? AND type = ?
ORDER BY event_time_utc ASC
LIMIT 1
`

// EarliestStartTimeParams holds the arguments for EarliestStartTime.
type EarliestStartTimeParams struct {
	ExamID string
	UserID string
	Type   string
}

// EarliestStartTime returns the earliest event_time_utc for entries of
// the given type and (exam, user) pair. The ascending order is
// deliberate: the first Start marks the exam beginning, and later
// re-Starts must not move the anchor. Returns sql.ErrNoRows when no
// matching entry exists.
func (q *Queries) EarliestStartTime(ctx context.Context, arg EarliestStartTimeParams) (time.Time, error) {
	var t time.Time
	err := q.db.QueryRowContext(ctx, earliestStartTime, arg.ExamID, arg.UserID, arg.Type).Scan(&t)
	return t, err
}

const listActivityLogs = `
SELECT id, exam_id, user_id, type, action, page,
	question_id, question_no, answer_id, field_name, field_value,
	timestamp, event_time_utc, relative_time_sec, created_at, updated_at
FROM activity_log
ORDER BY event_time_utc ASC, id ASC
`

// ListActivityLogs returns every activity log entry ordered by capture
// time. Unfiltered; intended for administrative and debug use.
func (q *Queries) ListActivityLogs(ctx context.Context) ([]ActivityLog, error) {
	rows, err := q.db.QueryContext(ctx, listActivityLogs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ActivityLog
	for rows.Next() {
		var a ActivityLog
		if err := rows.Scan(&a.ID, &a.ExamID, &a.UserID, &a.Type, &a.Action, &a.Page,
			&a.QuestionID, &a.QuestionNo, &a.AnswerID, &a.FieldName, &a.FieldValue,
			&a.Timestamp, &a.EventTimeUTC, &a.RelativeTimeSec, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const createSystemEvent = `
INSERT INTO system_events (level, category, message, metadata, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, level, category, message, metadata, created_at
`

// CreateSystemEventParams holds the arguments for CreateSystemEvent.
type CreateSystemEventParams struct {
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}

// CreateSystemEvent records one diagnostic event.
func (q *Queries) CreateSystemEvent(ctx context.Context, arg CreateSystemEventParams) (SystemEvent, error) {
	row := q.db.QueryRowContext(ctx, createSystemEvent,
		arg.Level, arg.Category, arg.Message, arg.Metadata, arg.CreatedAt)
	var e SystemEvent
	err := row.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Metadata, &e.CreatedAt)
	return e, err
}

const listSystemEvents = `
SELECT id, level, category, message, metadata, created_at
FROM system_events
ORDER BY created_at DESC, id DESC
LIMIT ?
`

// ListSystemEvents returns the most recent diagnostic events.
func (q *Queries) ListSystemEvents(ctx context.Context, limit int64) ([]SystemEvent, error) {
	rows, err := q.db.QueryContext(ctx, listSystemEvents, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SystemEvent
	for rows.Next() {
		var e SystemEvent
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
