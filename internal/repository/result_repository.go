package repository

import (
	"context"

	"dating_scan_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) Find(ctx context.Context, assessmentID string) (*model.AssessmentResult, error) {
	var res model.AssessmentResult
	err := r.DB.WithContext(ctx).First(&res, "assessment_id = ?", assessmentID).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Save inserts or overwrites the stored result of an attempt.
func (r *ResultRepository) Save(ctx context.Context, res *model.AssessmentResult) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "assessment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"definition_id", "fingerprint", "primary_dimension", "blindspot_index",
			"completion_rate", "response_variance", "warnings", "payload", "computed_at", "updated_at",
		}),
	}).Create(res).Error
}

// CountByPrimary returns how many stored results landed on each primary
// dimension for one definition.
func (r *ResultRepository) CountByPrimary(ctx context.Context, definitionID string) (map[string]int64, error) {
	var rows []struct {
		PrimaryDimension string
		Total            int64
	}
	err := r.DB.WithContext(ctx).Model(&model.AssessmentResult{}).
		Select("primary_dimension, COUNT(*) AS total").
		Where("definition_id = ?", definitionID).
		Group("primary_dimension").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.PrimaryDimension] = row.Total
	}
	return out, nil
}
