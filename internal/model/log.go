// Package model defines domain models and types used throughout the
// application including LogEntry, User, and the interaction event
// type enumeration.
package model

import (
	"time"
)

// Interaction event types. The set is closed: the normalizer rejects
// anything not listed here.
const (
	EventStart                  = "Start"
	EventStop                   = "Stop"
	EventClick                  = "Click"
	EventSubmit                 = "Submit"
	EventSearch                 = "Search"
	EventButtonClicked          = "Button Clicked"
	EventLogin                  = "Login"
	EventLogout                 = "Logout"
	EventAnswerOption           = "Answer Option"
	EventComment                = "Comment"
	EventConfidence             = "Confidence"
	EventAnsweredConfidence     = "Answered confidence question"
	EventAnsweredQuestion       = "Answered Question"
	EventNavigatingFrom         = "Navigating from"
	EventNavigatedTo            = "Navigated to"
	EventPreReflection          = "Pre-Reflection"
	EventPostReflection         = "Post-Reflection"
	EventPostReflectionQuestion = "Post-Reflection-Per-Question"
	EventAnswerReflectionPrompt = "Answer Reflection Prompt"
	EventAnswerPostReflection   = "Answer Post-Reflection Prompt"
	EventFinalScore             = "Final Score"
	EventQuestionScore          = "Question Score"
	EventRetakeTest             = "Retake test"
	EventNotesEntered           = "Notes Entered"
	EventSearchTextEntered      = "SearchTextEntered"
	EventSearchButtonPressed    = "SearchButtonPressed"
)

// eventTypes is the membership set for ValidEventType.
var eventTypes = map[string]struct{}{
	EventStart:                  {},
	EventStop:                   {},
	EventClick:                  {},
	EventSubmit:                 {},
	EventSearch:                 {},
	EventButtonClicked:          {},
	EventLogin:                  {},
	EventLogout:                 {},
	EventAnswerOption:           {},
	EventComment:                {},
	EventConfidence:             {},
	EventAnsweredConfidence:     {},
	EventAnsweredQuestion:       {},
	EventNavigatingFrom:         {},
	EventNavigatedTo:            {},
	EventPreReflection:          {},
	EventPostReflection:         {},
	EventPostReflectionQuestion: {},
	EventAnswerReflectionPrompt: {},
	EventAnswerPostReflection:   {},
	EventFinalScore:             {},
	EventQuestionScore:          {},
	EventRetakeTest:             {},
	EventNotesEntered:           {},
	EventSearchTextEntered:      {},
	EventSearchButtonPressed:    {},
}

// ValidEventType reports whether t is a member of the closed event type set.
func ValidEventType(t string) bool {
	_, ok := eventTypes[t]
	return ok
}

// LogEntry is one recorded user interaction during an exam session.
// Optional detail fields are pointers so that absent values serialize
// as explicit JSON null rather than being omitted.
type LogEntry struct {
	ID         int64   `json:"id"`
	ExamID     string  `json:"exam_id"`
	UserID     string  `json:"user_id"`
	Type       string  `json:"type"`
	Action     string  `json:"action"`
	Page       string  `json:"page"`
	QuestionID *string `json:"question_id"`
	QuestionNo *int64  `json:"question_no"`
	AnswerID   *string `json:"answer_id"`
	FieldName  *string `json:"field_name"`
	FieldValue *string `json:"field_value"`

	// Timestamp is the caller-reported event time, kept for backward
	// compatibility. EventTimeUTC is the server capture time and is
	// authoritative for ordering and anchoring.
	Timestamp    time.Time `json:"timestamp"`
	EventTimeUTC time.Time `json:"event_time_utc"`

	// RelativeTimeSec is seconds elapsed from the user's first Start
	// event for this exam. Null until a Start exists; exactly 0 when
	// the entry itself is a Start.
	RelativeTimeSec *float64 `json:"relative_time_sec"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
