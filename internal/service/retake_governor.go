package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"dating_scan_backend/internal/model"
	"dating_scan_backend/internal/repository"
	"dating_scan_backend/internal/util"
	"dating_scan_backend/pkg/logger"
	"dating_scan_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RetakeGovernor enforces one in-flight attempt per user and the cooldown
// between completed attempts. Start and completion for a user are
// serialized by an in-process lock plus a row lock on retake_progress.
type RetakeGovernor struct {
	Repo        *repository.RetakeRepository
	Assessments *repository.AssessmentRepository

	locks *util.KeyedMutex
	now   func() time.Time

	mu       sync.RWMutex
	cooldown time.Duration
}

func NewRetakeGovernor(repo *repository.RetakeRepository, assessments *repository.AssessmentRepository, cooldown time.Duration) *RetakeGovernor {
	return &RetakeGovernor{
		Repo:        repo,
		Assessments: assessments,
		locks:       util.NewKeyedMutex(),
		now:         time.Now,
		cooldown:    cooldown,
	}
}

func (g *RetakeGovernor) SetCooldown(d time.Duration) {
	g.mu.Lock()
	g.cooldown = d
	g.mu.Unlock()
}

func (g *RetakeGovernor) Cooldown() time.Duration {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cooldown
}

func userLockKey(userID uint) string {
	return "user:" + strconv.FormatUint(uint64(userID), 10)
}

// CanStart reports whether the user may start a new attempt right now.
func (g *RetakeGovernor) CanStart(ctx context.Context, userID uint) (*model.RetakeStatus, error) {
	p, err := g.Repo.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	open, err := g.Assessments.FindInProgressByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := &model.RetakeStatus{
		CanStart:         true,
		AttemptCount:     p.AttemptCount,
		LastAssessmentID: p.LastAssessmentID,
		CanRetakeAfter:   p.CanRetakeAfter,
	}
	if denied := g.check(open, p, g.now()); denied != nil {
		status.CanStart = false
		status.Reason = denied.Reason
		status.InProgressAssessmentID = denied.AssessmentID
	}
	return status, nil
}

func (g *RetakeGovernor) check(open *model.Assessment, p *model.RetakeProgress, now time.Time) *util.RetakeDeniedError {
	if open != nil {
		return &util.RetakeDeniedError{Reason: util.RetakeReasonInProgress, AssessmentID: open.ID}
	}
	if p.CanRetakeAfter != nil && now.Before(*p.CanRetakeAfter) {
		after := *p.CanRetakeAfter
		return &util.RetakeDeniedError{Reason: util.RetakeReasonCooldown, CanRetakeAfter: &after}
	}
	return nil
}

// Begin creates a new in-progress attempt for the user, or returns a
// *util.RetakeDeniedError. The check and the insert happen under the same
// lock, so concurrent calls for one user create at most one attempt.
func (g *RetakeGovernor) Begin(ctx context.Context, userID uint, definitionID string, version int) (*model.Assessment, error) {
	unlock := g.locks.Lock(userLockKey(userID))
	defer unlock()

	var created *model.Assessment
	err := g.Repo.WithLockedProgress(ctx, userID, func(tx *gorm.DB, p *model.RetakeProgress) error {
		repo := g.Assessments.WithTx(tx)
		open, err := repo.FindInProgressByUser(ctx, userID)
		if err != nil {
			return err
		}
		now := g.now()
		if denied := g.check(open, p, now); denied != nil {
			return denied
		}

		a := &model.Assessment{
			UserID:            userID,
			DefinitionID:      definitionID,
			DefinitionVersion: version,
			Status:            model.StatusInProgress,
			StartedAt:         now,
		}
		if err := repo.Create(ctx, a); err != nil {
			return err
		}
		created = a
		return nil
	})

	var denied *util.RetakeDeniedError
	if errors.As(err, &denied) {
		monitoring.RetakeDenied.WithLabelValues(denied.Reason).Inc()
		logger.Log.Info("Retake denied",
			zap.Uint("user_id", userID),
			zap.String("reason", denied.Reason))
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RecordCompletion stamps the user's retake record for a completed attempt:
// last attempt, attempt count and the end of the cooldown. finalize runs
// first in the same transaction and receives the completion time; an error
// from it aborts the whole update.
func (g *RetakeGovernor) RecordCompletion(ctx context.Context, userID uint, assessmentID string, finalize func(tx *gorm.DB, completedAt time.Time) error) error {
	unlock := g.locks.Lock(userLockKey(userID))
	defer unlock()

	cooldown := g.Cooldown()
	return g.Repo.WithLockedProgress(ctx, userID, func(tx *gorm.DB, p *model.RetakeProgress) error {
		at := g.now()
		if finalize != nil {
			if err := finalize(tx, at); err != nil {
				return err
			}
		}
		after := at.Add(cooldown)
		p.LastAssessmentID = assessmentID
		p.AttemptCount++
		p.CanRetakeAfter = &after
		return nil
	})
}
