package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"dating_scan_backend/internal/model"
	"dating_scan_backend/internal/repository"
	"dating_scan_backend/internal/scoring"
	"dating_scan_backend/pkg/logger"
	"dating_scan_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResultService evaluates attempts. Results of completed attempts are
// memoized in Redis and the results table, keyed by the input fingerprint,
// so a threshold change or a corrected answer forces a recompute.
type ResultService struct {
	Results   *repository.ResultRepository
	Responses *repository.ResponseRepository
	Cache     *repository.ResultCache
	Banks     *QuestionBankService

	mu  sync.RWMutex
	cfg scoring.Config
}

func NewResultService(results *repository.ResultRepository, responses *repository.ResponseRepository, cache *repository.ResultCache, banks *QuestionBankService, cfg scoring.Config) *ResultService {
	return &ResultService{
		Results:   results,
		Responses: responses,
		Cache:     cache,
		Banks:     banks,
		cfg:       cfg,
	}
}

func (s *ResultService) SetConfig(cfg scoring.Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *ResultService) Config() scoring.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Evaluate scores the stored responses of a. With persist set the result is
// looked up in and written back to the caches.
func (s *ResultService) Evaluate(ctx context.Context, a *model.Assessment, persist bool) (*scoring.Result, error) {
	bank, err := s.Banks.BankAt(ctx, a.DefinitionID, a.DefinitionVersion)
	if err != nil {
		return nil, err
	}
	rows, err := s.Responses.ListByAssessment(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	responses := model.ToScoringResponses(rows)
	cfg := s.Config()
	fingerprint := scoring.Fingerprint(bank, responses, cfg)

	if persist {
		if res, ok := s.Cache.Get(ctx, a.ID, fingerprint); ok {
			monitoring.ResultCacheLookups.WithLabelValues("redis").Inc()
			return res, nil
		}
		if res, ok := s.stored(ctx, a.ID, fingerprint); ok {
			monitoring.ResultCacheLookups.WithLabelValues("db").Inc()
			s.Cache.Set(ctx, a.ID, fingerprint, res)
			return res, nil
		}
	}

	start := time.Now()
	res, err := scoring.Evaluate(ctx, bank, responses, cfg)
	monitoring.ScoringDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	if persist {
		monitoring.ResultCacheLookups.WithLabelValues("computed").Inc()
		if err := s.save(ctx, a, fingerprint, res); err != nil {
			return nil, err
		}
		s.Cache.Set(ctx, a.ID, fingerprint, res)
	}
	return res, nil
}

func (s *ResultService) stored(ctx context.Context, assessmentID, fingerprint string) (*scoring.Result, bool) {
	row, err := s.Results.Find(ctx, assessmentID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Log.Warn("Result lookup failed", zap.String("assessment_id", assessmentID), zap.Error(err))
		}
		return nil, false
	}
	if row.Fingerprint != fingerprint {
		return nil, false
	}
	var res scoring.Result
	if err := json.Unmarshal(row.Payload, &res); err != nil {
		logger.Log.Warn("Stored result is unreadable", zap.String("assessment_id", assessmentID), zap.Error(err))
		return nil, false
	}
	return &res, true
}

func (s *ResultService) save(ctx context.Context, a *model.Assessment, fingerprint string, res *scoring.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}

	warnings := make([]string, 0, len(res.Validity.Warnings))
	for _, w := range res.Validity.Warnings {
		warnings = append(warnings, string(w))
	}
	row := &model.AssessmentResult{
		AssessmentID:     a.ID,
		DefinitionID:     a.DefinitionID,
		Fingerprint:      fingerprint,
		BlindspotIndex:   res.Blindspots.Index,
		CompletionRate:   res.Validity.CompletionRate,
		ResponseVariance: res.Validity.ResponseVariance,
		Warnings:         strings.Join(warnings, ","),
		Payload:          payload,
		ComputedAt:       time.Now(),
	}
	if res.Classification != nil {
		row.PrimaryDimension = string(res.Classification.Primary)
	}
	return s.Results.Save(ctx, row)
}
