package model

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format accepted for all date fields
const DateLayout = "2006-01-02"

// TrainingID uniquely identifies a training session
type TrainingID uint

// Training is a coach-run session. CoachID is not a storage-level foreign
// key, so trainings outlive the coach account that created them.
type Training struct {
	ID        TrainingID
	CoachID   UserID
	Date      time.Time
	Duration  int // minutes
	FocusArea string
	Notes     *string
}

// TrainingListing is a training with the coach's username, empty when the
// coach account no longer exists
type TrainingListing struct {
	Training
	CoachUsername string
}

// MatchID uniquely identifies a match
type MatchID uint

// Match is a fixture against another club
type Match struct {
	ID       MatchID
	Opponent string
	Date     time.Time
	Location string
	Score    *string // stored verbatim
	Notes    *string
}

// ParseDate parses a calendar date, reporting failures against field
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, NewValidationError(field, "is required")
	}
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// OptionalText returns nil for blank input and a pointer to s otherwise
func OptionalText(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
