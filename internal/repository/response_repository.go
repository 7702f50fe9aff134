package repository

import (
	"context"

	"dating_scan_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResponseRepository struct {
	DB *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: db}
}

func (r *ResponseRepository) WithTx(tx *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: tx}
}

// Upsert stores the answer for (assessment, question), replacing any earlier
// one.
func (r *ResponseRepository) Upsert(ctx context.Context, resp *model.AssessmentResponse) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "assessment_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"likert", "option_id", "response_time_ms", "updated_at"}),
	}).Create(resp).Error
}

func (r *ResponseRepository) ListByAssessment(ctx context.Context, assessmentID string) ([]model.AssessmentResponse, error) {
	var rs []model.AssessmentResponse
	err := r.DB.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Order("id asc").
		Find(&rs).Error
	return rs, err
}
