package model

import "time"

// RetakeProgress is the per-user retake record. The row is locked while an
// attempt is started or completed.
// swagger:model RetakeProgress
type RetakeProgress struct {
	UserID           uint       `gorm:"primaryKey;autoIncrement:false;type:bigint unsigned" json:"userId"`
	LastAssessmentID string     `gorm:"type:varchar(36)" json:"lastAssessmentId"`
	AttemptCount     int        `gorm:"default:0" json:"attemptCount"`
	CanRetakeAfter   *time.Time `json:"canRetakeAfter,omitempty"`
	Timestamps
}

func (RetakeProgress) TableName() string {
	return "retake_progress"
}
