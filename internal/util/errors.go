package util

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrPermissionDenied     = errors.New("permission denied")
	ErrAssessmentNotFound   = errors.New("assessment not found")
	ErrDefinitionNotFound   = errors.New("assessment definition not found")
	ErrInvalidState         = errors.New("assessment is not in a valid state for this operation")
	ErrIncompleteAssessment = errors.New("assessment has unanswered required questions")
	ErrRetakeDenied         = errors.New("retake denied")
	ErrNarratorDisabled     = errors.New("narrative generation is not configured")
)

// Retake denial reasons.
const (
	RetakeReasonCooldown   = "cooldown"
	RetakeReasonInProgress = "in_progress"
)

// RetakeDeniedError tells the caller why a new attempt cannot start and,
// for a cooldown, when it can.
type RetakeDeniedError struct {
	Reason         string
	CanRetakeAfter *time.Time
	AssessmentID   string
}

func (e *RetakeDeniedError) Error() string {
	switch {
	case e.CanRetakeAfter != nil:
		return fmt.Sprintf("retake denied: %s until %s", e.Reason, e.CanRetakeAfter.UTC().Format(time.RFC3339))
	case e.AssessmentID != "":
		return fmt.Sprintf("retake denied: %s (%s)", e.Reason, e.AssessmentID)
	}
	return "retake denied: " + e.Reason
}

func (e *RetakeDeniedError) Is(target error) bool {
	return target == ErrRetakeDenied
}

// IncompleteError lists what is still missing when finalize is refused.
type IncompleteError struct {
	Answered int
	Required int
	Missing  []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s: %d of %d answered", ErrIncompleteAssessment.Error(), e.Answered, e.Required)
}

func (e *IncompleteError) Is(target error) bool {
	return target == ErrIncompleteAssessment
}
