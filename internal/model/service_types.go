package model

import (
	"time"

	"dating_scan_backend/internal/scoring"
)

// DefinitionSummary is the public listing of an assessment type.
type DefinitionSummary struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Version       int      `json:"version"`
	Dimensions    []string `json:"dimensions"`
	QuestionCount int      `json:"questionCount"`
}

// QuestionSheet is what a respondent sees: no dimension tags, weights or
// reverse-scoring flags.
type QuestionSheet struct {
	DefinitionID string          `json:"definitionId"`
	Version      int             `json:"version"`
	Questions    []SheetQuestion `json:"questions"`
}

type SheetQuestion struct {
	ID            string        `json:"id"`
	Kind          string        `json:"kind"`
	Text          string        `json:"text"`
	OrderPosition int           `json:"orderPosition"`
	Optional      bool          `json:"optional"`
	Options       []SheetOption `json:"options,omitempty"`
}

type SheetOption struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	OrderPosition int    `json:"orderPosition"`
}

type StartAssessmentRequest struct {
	DefinitionID string `json:"definitionId" binding:"required"`
}

type SubmitResponseRequest struct {
	LikertValue      int    `json:"likertValue"`
	SelectedOptionID string `json:"selectedOptionId"`
	ResponseTimeMs   int    `json:"responseTimeMs"`
}

func (r SubmitResponseRequest) Answer() scoring.Answer {
	return scoring.Answer{Likert: r.LikertValue, OptionID: r.SelectedOptionID}
}

type ProgressReport struct {
	AssessmentID string           `json:"assessmentId"`
	DefinitionID string           `json:"definitionId"`
	Status       AssessmentStatus `json:"status"`
	Answered     int              `json:"answered"`
	Required     int              `json:"required"`
	Missing      []string         `json:"missing"`
	StartedAt    time.Time        `json:"startedAt"`
	CompletedAt  *time.Time       `json:"completedAt,omitempty"`
}

type RetakeStatus struct {
	CanStart               bool       `json:"canStart"`
	Reason                 string     `json:"reason,omitempty"`
	CanRetakeAfter         *time.Time `json:"canRetakeAfter,omitempty"`
	AttemptCount           int        `json:"attemptCount"`
	LastAssessmentID       string     `json:"lastAssessmentId,omitempty"`
	InProgressAssessmentID string     `json:"inProgressAssessmentId,omitempty"`
}

// FinalizeResult is returned when an attempt completes.
type FinalizeResult struct {
	Assessment *Assessment            `json:"assessment"`
	Scores     scoring.ScoreVector    `json:"scores"`
	Validity   scoring.ValidityReport `json:"validity"`
}

type NarrativeResult struct {
	AssessmentID string `json:"assessmentId"`
	Narrative    string `json:"narrative"`
}

// DefinitionStats counts stored results of one definition by primary
// dimension. Results without a classification are counted under "none".
type DefinitionStats struct {
	DefinitionID string           `json:"definitionId"`
	Results      int64            `json:"results"`
	ByPrimary    map[string]int64 `json:"byPrimary"`
}
