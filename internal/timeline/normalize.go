// Package timeline implements the activity logging core: normalizing
// raw client events and anchoring them to the user's exam start time.
package timeline

import (
	"fmt"
	"unicode/utf8"

	"github.com/openexam/examtrail/internal/model"
)

// MaxFieldValueLen is the bound applied to field_value payloads.
// Longer values are truncated and marked.
const MaxFieldValueLen = 1000

// TruncationMarker is appended to a truncated field_value.
const TruncationMarker = "..."

// MissingFieldError reports a required event field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// InvalidTypeError reports an event type outside the closed enumeration.
type InvalidTypeError struct {
	Type string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("unknown event type %q", e.Type)
}

// RawEvent is the client-submitted event body before normalization.
// Required fields are pointers so a missing key is distinguishable from
// an empty value; both are rejected.
type RawEvent struct {
	ExamID *string `json:"exam_id"`
	Type   *string `json:"type"`
	Action *string `json:"action"`
	Page   *string `json:"page"`

	QuestionID *string          `json:"question_id"`
	QuestionNo *int64           `json:"question_no"`
	AnswerID   *string          `json:"answer_id"`
	FieldName  *string          `json:"field_name"`
	FieldValue model.FieldValue `json:"field_value"`
}

// NormalizedEvent is a validated, shaped event ready for anchoring and
// persistence. Optional fields are nil when absent, never undefined.
type NormalizedEvent struct {
	ExamID     string
	Type       string
	Action     string
	Page       string
	QuestionID *string
	QuestionNo *int64
	AnswerID   *string
	FieldName  *string
	FieldValue *string
}

// Normalize validates required fields, fills optional fields with
// explicit nulls, and canonicalizes the free-form field_value payload.
// It is a pure transformation and performs no I/O.
func Normalize(raw RawEvent) (NormalizedEvent, error) {
	required := []struct {
		name  string
		value *string
	}{
		{"exam_id", raw.ExamID},
		{"type", raw.Type},
		{"action", raw.Action},
		{"page", raw.Page},
	}
	for _, f := range required {
		if f.value == nil || *f.value == "" {
			return NormalizedEvent{}, &MissingFieldError{Field: f.name}
		}
	}

	if !model.ValidEventType(*raw.Type) {
		return NormalizedEvent{}, &InvalidTypeError{Type: *raw.Type}
	}

	ev := NormalizedEvent{
		ExamID:     *raw.ExamID,
		Type:       *raw.Type,
		Action:     *raw.Action,
		Page:       *raw.Page,
		QuestionID: emptyToNil(raw.QuestionID),
		QuestionNo: raw.QuestionNo,
		AnswerID:   emptyToNil(raw.AnswerID),
		FieldName:  emptyToNil(raw.FieldName),
	}

	if canonical, ok := raw.FieldValue.Canonical(); ok && canonical != "" {
		bounded := BoundFieldValue(canonical)
		ev.FieldValue = &bounded
	}

	return ev, nil
}

// BoundFieldValue truncates s to MaxFieldValueLen characters, appending
// the truncation marker when anything was cut. The cap counts runes so
// multibyte text is never cut mid-character.
func BoundFieldValue(s string) string {
	if utf8.RuneCountInString(s) <= MaxFieldValueLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxFieldValueLen]) + TruncationMarker
}

func emptyToNil(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}
