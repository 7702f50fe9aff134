package repository

import (
	"context"
	"time"

	"dating_scan_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

// WithTx returns a repository bound to an open transaction.
func (r *AssessmentRepository) WithTx(tx *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: tx}
}

func (r *AssessmentRepository) Create(ctx context.Context, a *model.Assessment) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *AssessmentRepository) FindByID(ctx context.Context, id string) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.WithContext(ctx).First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// LockByID reads the assessment with a row lock held until the surrounding
// transaction ends.
func (r *AssessmentRepository) LockByID(ctx context.Context, id string) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindInProgressByUser returns the user's open attempt, or nil.
func (r *AssessmentRepository) FindInProgressByUser(ctx context.Context, userID uint) (*model.Assessment, error) {
	var as []model.Assessment
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.StatusInProgress).
		Order("started_at desc").
		Limit(1).
		Find(&as).Error
	if err != nil || len(as) == 0 {
		return nil, err
	}
	return &as[0], nil
}

func (r *AssessmentRepository) CountInProgressByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Assessment{}).
		Where("user_id = ? AND status = ?", userID, model.StatusInProgress).
		Count(&n).Error
	return n, err
}

// MarkCompleted moves an in-progress attempt to completed. It reports false
// when the attempt was no longer in progress.
func (r *AssessmentRepository) MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error) {
	return r.transition(ctx, id, model.StatusCompleted, map[string]interface{}{
		"status":       model.StatusCompleted,
		"completed_at": at,
	})
}

func (r *AssessmentRepository) MarkAbandoned(ctx context.Context, id string, at time.Time) (bool, error) {
	return r.transition(ctx, id, model.StatusAbandoned, map[string]interface{}{
		"status":       model.StatusAbandoned,
		"abandoned_at": at,
	})
}

func (r *AssessmentRepository) transition(ctx context.Context, id string, to model.AssessmentStatus, updates map[string]interface{}) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.Assessment{}).
		Where("id = ? AND status = ?", id, model.StatusInProgress).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListStale returns in-progress attempts started before the cutoff.
func (r *AssessmentRepository) ListStale(ctx context.Context, before time.Time, limit int) ([]model.Assessment, error) {
	var as []model.Assessment
	err := r.DB.WithContext(ctx).
		Where("status = ? AND started_at < ?", model.StatusInProgress, before).
		Order("started_at asc").
		Limit(limit).
		Find(&as).Error
	return as, err
}

func (r *AssessmentRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]model.Assessment, error) {
	var as []model.Assessment
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at desc").
		Limit(limit).
		Find(&as).Error
	return as, err
}
