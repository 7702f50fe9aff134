package repository

import (
	"context"

	"dating_scan_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefinitionRepository struct {
	DB *gorm.DB
}

func NewDefinitionRepository(db *gorm.DB) *DefinitionRepository {
	return &DefinitionRepository{DB: db}
}

func (r *DefinitionRepository) ListPublished(ctx context.Context) ([]model.AssessmentDefinition, error) {
	var defs []model.AssessmentDefinition
	err := r.DB.WithContext(ctx).
		Where("is_published = ?", true).
		Order("id asc").
		Find(&defs).Error
	return defs, err
}

// FindWithQuestions loads a definition with its questions and scenario
// options, both ordered by position.
func (r *DefinitionRepository) FindWithQuestions(ctx context.Context, id string) (*model.AssessmentDefinition, error) {
	var def model.AssessmentDefinition
	err := r.DB.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_position asc")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_position asc")
		}).
		First(&def, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// SaveSnapshot stores the descriptor of one version. A version is written
// once; later saves of the same version are ignored.
func (r *DefinitionRepository) SaveSnapshot(ctx context.Context, snap *model.DefinitionSnapshot) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(snap).Error
}

func (r *DefinitionRepository) FindSnapshot(ctx context.Context, id string, version int) (*model.DefinitionSnapshot, error) {
	var snap model.DefinitionSnapshot
	err := r.DB.WithContext(ctx).
		First(&snap, "definition_id = ? AND version = ?", id, version).Error
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
