package model

import (
	"time"

	"dating_scan_backend/internal/scoring"

	"gorm.io/datatypes"
)

type AssessmentStatus string

const (
	StatusInProgress AssessmentStatus = "in_progress"
	StatusCompleted  AssessmentStatus = "completed"
	StatusAbandoned  AssessmentStatus = "abandoned"
)

// swagger:model Assessment
type Assessment struct {
	UUIDBase
	UserID            uint             `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	DefinitionID      string           `gorm:"type:varchar(64);index;not null" json:"definitionId"`
	DefinitionVersion int              `gorm:"default:1" json:"definitionVersion"`
	Status            AssessmentStatus `gorm:"size:20;index;default:'in_progress'" json:"status"`
	StartedAt         time.Time        `json:"startedAt"`
	CompletedAt       *time.Time       `json:"completedAt,omitempty"`
	AbandonedAt       *time.Time       `json:"abandonedAt,omitempty"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// AssessmentResponse is the latest answer to one question of one attempt.
// (assessment_id, question_id) is unique; resubmission overwrites.
// swagger:model AssessmentResponse
type AssessmentResponse struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	AssessmentID   string `gorm:"type:varchar(36);not null;uniqueIndex:idx_response_key" json:"assessmentId"`
	QuestionID     string `gorm:"type:varchar(64);not null;uniqueIndex:idx_response_key" json:"questionId"`
	Likert         int    `json:"likert,omitempty"`
	OptionID       string `gorm:"type:varchar(64)" json:"optionId,omitempty"`
	ResponseTimeMs int    `json:"responseTimeMs"`
	Timestamps
}

func (AssessmentResponse) TableName() string {
	return "responses"
}

func (r *AssessmentResponse) ToScoring() scoring.Response {
	return scoring.Response{
		QuestionID:     r.QuestionID,
		Answer:         scoring.Answer{Likert: r.Likert, OptionID: r.OptionID},
		ResponseTimeMs: r.ResponseTimeMs,
	}
}

func ToScoringResponses(rows []AssessmentResponse) []scoring.Response {
	out := make([]scoring.Response, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToScoring())
	}
	return out
}

// AssessmentResult caches the evaluated result of a completed attempt. The
// fingerprint identifies the inputs; a mismatch means the row is stale.
// swagger:model AssessmentResult
type AssessmentResult struct {
	AssessmentID     string         `gorm:"primaryKey;type:varchar(36)" json:"assessmentId"`
	DefinitionID     string         `gorm:"type:varchar(64);index" json:"definitionId"`
	Fingerprint      string         `gorm:"type:varchar(64);not null" json:"fingerprint"`
	PrimaryDimension string         `gorm:"size:64;index" json:"primaryDimension"`
	BlindspotIndex   float64        `json:"blindspotIndex"`
	CompletionRate   float64        `json:"completionRate"`
	ResponseVariance float64        `json:"responseVariance"`
	Warnings         string         `gorm:"size:255" json:"warnings"`
	Payload          datatypes.JSON `json:"payload" swaggertype:"object"`
	ComputedAt       time.Time      `json:"computedAt"`
	Timestamps
}

func (AssessmentResult) TableName() string {
	return "results"
}
