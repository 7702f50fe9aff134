package repository

import (
	"context"
	"errors"

	"dating_scan_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RetakeRepository struct {
	DB *gorm.DB
}

func NewRetakeRepository(db *gorm.DB) *RetakeRepository {
	return &RetakeRepository{DB: db}
}

// Find returns the user's retake record, or an empty one if the user has
// never started an attempt.
func (r *RetakeRepository) Find(ctx context.Context, userID uint) (*model.RetakeProgress, error) {
	var p model.RetakeProgress
	err := r.DB.WithContext(ctx).First(&p, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.RetakeProgress{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// WithLockedProgress runs fn in a transaction holding the row lock on the
// user's retake record, creating the record first if needed. Changes fn
// makes to p are saved when fn succeeds.
func (r *RetakeRepository) WithLockedProgress(ctx context.Context, userID uint, fn func(tx *gorm.DB, p *model.RetakeProgress) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.RetakeProgress{UserID: userID}).Error; err != nil {
			return err
		}

		var p model.RetakeProgress
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&p, "user_id = ?", userID).Error; err != nil {
			return err
		}

		if err := fn(tx, &p); err != nil {
			return err
		}
		return tx.Save(&p).Error
	})
}
