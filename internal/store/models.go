package store

import (
	"database/sql"
	"time"
)

// User is a row in the users table.
type User struct {
	ID           int64
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

// ActivityLog is a row in the activity_log table.
type ActivityLog struct {
	ID              int64
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

// SystemEvent is a row in the system_events table.
type SystemEvent struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	Metadata  string // JSON string
	CreatedAt time.Time
}
