package service

import (
	"context"
	"errors"
	"time"

	"dating_scan_backend/internal/model"
	"dating_scan_backend/internal/repository"
	"dating_scan_backend/internal/scoring"
	"dating_scan_backend/internal/util"

	"gorm.io/gorm"
)

// ResponseCollector accepts answers for in-progress attempts and moves an
// attempt to completed once every required question is answered.
type ResponseCollector struct {
	Assessments *repository.AssessmentRepository
	Responses   *repository.ResponseRepository
	Banks       *QuestionBankService
	Governor    *RetakeGovernor

	locks *util.KeyedMutex
}

func NewResponseCollector(assessments *repository.AssessmentRepository, responses *repository.ResponseRepository, banks *QuestionBankService, governor *RetakeGovernor) *ResponseCollector {
	return &ResponseCollector{
		Assessments: assessments,
		Responses:   responses,
		Banks:       banks,
		Governor:    governor,
		locks:       util.NewKeyedMutex(),
	}
}

// loadOwned fetches an attempt and checks that it belongs to the caller.
func loadOwned(ctx context.Context, repo *repository.AssessmentRepository, userID uint, assessmentID string) (*model.Assessment, error) {
	a, err := repo.FindByID(ctx, assessmentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAssessmentNotFound
	}
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return a, nil
}

// Submit validates and stores one answer. Re-answering a question replaces
// the earlier answer; concurrent submissions for the same question are
// applied one at a time.
func (c *ResponseCollector) Submit(ctx context.Context, userID uint, assessmentID, questionID string, answer scoring.Answer, responseTimeMs int) (*model.AssessmentResponse, error) {
	a, err := loadOwned(ctx, c.Assessments, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	if a.Status != model.StatusInProgress {
		return nil, util.ErrInvalidState
	}

	bank, err := c.Banks.BankAt(ctx, a.DefinitionID, a.DefinitionVersion)
	if err != nil {
		return nil, err
	}
	if err := bank.ValidateResponse(scoring.Response{
		QuestionID:     questionID,
		Answer:         answer,
		ResponseTimeMs: responseTimeMs,
	}); err != nil {
		return nil, err
	}

	unlock := c.locks.Lock(assessmentID + "/" + questionID)
	defer unlock()

	row := &model.AssessmentResponse{
		AssessmentID:   assessmentID,
		QuestionID:     questionID,
		Likert:         answer.Likert,
		OptionID:       answer.OptionID,
		ResponseTimeMs: responseTimeMs,
	}
	err = c.Assessments.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := c.Assessments.WithTx(tx).LockByID(ctx, assessmentID)
		if err != nil {
			return err
		}
		if locked.Status != model.StatusInProgress {
			return util.ErrInvalidState
		}
		return c.Responses.WithTx(tx).Upsert(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Finalize completes the attempt. It fails with *util.IncompleteError when
// a required question is unanswered and with util.ErrInvalidState when the
// attempt is not in progress.
func (c *ResponseCollector) Finalize(ctx context.Context, userID uint, assessmentID string) (*model.Assessment, error) {
	a, err := loadOwned(ctx, c.Assessments, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	if a.Status != model.StatusInProgress {
		return nil, util.ErrInvalidState
	}
	bank, err := c.Banks.BankAt(ctx, a.DefinitionID, a.DefinitionVersion)
	if err != nil {
		return nil, err
	}

	err = c.Governor.RecordCompletion(ctx, a.UserID, a.ID, func(tx *gorm.DB, completedAt time.Time) error {
		assessments := c.Assessments.WithTx(tx)
		locked, err := assessments.LockByID(ctx, a.ID)
		if err != nil {
			return err
		}
		if locked.Status != model.StatusInProgress {
			return util.ErrInvalidState
		}

		rows, err := c.Responses.WithTx(tx).ListByAssessment(ctx, a.ID)
		if err != nil {
			return err
		}
		answered, missing := coverage(bank, rows)
		if len(missing) > 0 {
			return &util.IncompleteError{Answered: answered, Required: bank.RequiredCount(), Missing: missing}
		}

		ok, err := assessments.MarkCompleted(ctx, a.ID, completedAt)
		if err != nil {
			return err
		}
		if !ok {
			return util.ErrInvalidState
		}
		a.Status = model.StatusCompleted
		a.CompletedAt = &completedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (c *ResponseCollector) Progress(ctx context.Context, userID uint, assessmentID string) (*model.ProgressReport, error) {
	a, err := loadOwned(ctx, c.Assessments, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	bank, err := c.Banks.BankAt(ctx, a.DefinitionID, a.DefinitionVersion)
	if err != nil {
		return nil, err
	}
	rows, err := c.Responses.ListByAssessment(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	answered, missing := coverage(bank, rows)
	return &model.ProgressReport{
		AssessmentID: a.ID,
		DefinitionID: a.DefinitionID,
		Status:       a.Status,
		Answered:     answered,
		Required:     bank.RequiredCount(),
		Missing:      missing,
		StartedAt:    a.StartedAt,
		CompletedAt:  a.CompletedAt,
	}, nil
}

// coverage counts answered required questions and lists the unanswered ones
// in position order.
func coverage(bank *scoring.QuestionBank, rows []model.AssessmentResponse) (int, []string) {
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		seen[r.QuestionID] = true
	}
	answered := 0
	missing := []string{}
	for _, q := range bank.Questions() {
		if q.Optional {
			continue
		}
		if seen[q.ID] {
			answered++
			continue
		}
		missing = append(missing, q.ID)
	}
	return answered, missing
}
