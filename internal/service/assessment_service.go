package service

import (
	"context"
	"time"

	"dating_scan_backend/internal/model"
	"dating_scan_backend/internal/repository"
	"dating_scan_backend/internal/scoring"
	"dating_scan_backend/internal/util"
	"dating_scan_backend/pkg/logger"
	"dating_scan_backend/pkg/monitoring"
	"dating_scan_backend/pkg/tracing"

	"go.uber.org/zap"
)

const (
	staleBatchSize = 200
	historyLimit   = 50
)

// AssessmentService is the entry point used by the HTTP layer. It wires the
// retake governor, the response collector and the scoring pipeline.
type AssessmentService struct {
	Assessments *repository.AssessmentRepository
	Banks       *QuestionBankService
	Governor    *RetakeGovernor
	Collector   *ResponseCollector
	Results     *ResultService
	Archive     *ArchiveService  // optional
	Narrator    *NarratorService // optional

	abandonAfter time.Duration
	now          func() time.Time
}

func NewAssessmentService(
	assessments *repository.AssessmentRepository,
	banks *QuestionBankService,
	governor *RetakeGovernor,
	collector *ResponseCollector,
	results *ResultService,
	abandonAfter time.Duration,
) *AssessmentService {
	return &AssessmentService{
		Assessments:  assessments,
		Banks:        banks,
		Governor:     governor,
		Collector:    collector,
		Results:      results,
		abandonAfter: abandonAfter,
		now:          time.Now,
	}
}

func (s *AssessmentService) ListDefinitions(ctx context.Context) ([]model.DefinitionSummary, error) {
	return s.Banks.ListDefinitions(ctx)
}

func (s *AssessmentService) QuestionSheet(ctx context.Context, definitionID string) (*model.QuestionSheet, error) {
	return s.Banks.QuestionSheet(ctx, definitionID)
}

func (s *AssessmentService) RetakeStatus(ctx context.Context, userID uint) (*model.RetakeStatus, error) {
	return s.Governor.CanStart(ctx, userID)
}

// StartAssessment opens a new attempt if the retake governor allows it.
func (s *AssessmentService) StartAssessment(ctx context.Context, userID uint, definitionID string) (a *model.Assessment, err error) {
	ctx, span := tracing.StartSpan(ctx, "AssessmentService.Start", "")
	defer func() { tracing.EndSpan(span, err) }()

	bank, err := s.Banks.Bank(ctx, definitionID)
	if err != nil {
		return nil, err
	}
	a, err = s.Governor.Begin(ctx, userID, definitionID, bank.Version())
	if err != nil {
		return nil, err
	}

	monitoring.AttemptsStarted.WithLabelValues(definitionID).Inc()
	logger.Log.Info("Assessment started",
		zap.String("assessment_id", a.ID),
		zap.Uint("user_id", userID),
		zap.String("definition", definitionID))
	return a, nil
}

func (s *AssessmentService) SubmitResponse(ctx context.Context, userID uint, assessmentID, questionID string, req model.SubmitResponseRequest) (*model.AssessmentResponse, error) {
	return s.Collector.Submit(ctx, userID, assessmentID, questionID, req.Answer(), req.ResponseTimeMs)
}

// History lists the caller's attempts, newest first.
func (s *AssessmentService) History(ctx context.Context, userID uint) ([]model.Assessment, error) {
	return s.Assessments.ListByUser(ctx, userID, historyLimit)
}

func (s *AssessmentService) Progress(ctx context.Context, userID uint, assessmentID string) (*model.ProgressReport, error) {
	return s.Collector.Progress(ctx, userID, assessmentID)
}

// FinalizeAssessment completes the attempt and scores it. The combined
// result is archived in the background when an archive is configured.
func (s *AssessmentService) FinalizeAssessment(ctx context.Context, userID uint, assessmentID string) (out *model.FinalizeResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "AssessmentService.Finalize", assessmentID)
	defer func() { tracing.EndSpan(span, err) }()

	a, err := s.Collector.Finalize(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	res, err := s.Results.Evaluate(ctx, a, true)
	if err != nil {
		return nil, err
	}

	monitoring.AttemptsFinalized.WithLabelValues(a.DefinitionID).Inc()
	for _, w := range res.Validity.Warnings {
		monitoring.ValidityWarnings.WithLabelValues(string(w)).Inc()
	}
	logger.Log.Info("Assessment finalized",
		zap.String("assessment_id", a.ID),
		zap.Uint("user_id", userID),
		zap.Float64("completion_rate", res.Validity.CompletionRate),
		zap.Int("warnings", len(res.Validity.Warnings)))

	if s.Archive != nil {
		go s.archive(a, res)
	}

	return &model.FinalizeResult{
		Assessment: a,
		Scores:     res.Scores,
		Validity:   res.Validity,
	}, nil
}

func (s *AssessmentService) archive(a *model.Assessment, res *scoring.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	url, err := s.Archive.Archive(ctx, a, res)
	if err != nil {
		logger.Log.Warn("Result archive failed", zap.String("assessment_id", a.ID), zap.Error(err))
		return
	}
	logger.Log.Debug("Result archived", zap.String("assessment_id", a.ID), zap.String("url", url))
}

// completed loads an owned attempt that has been finalized.
func (s *AssessmentService) completed(ctx context.Context, userID uint, assessmentID string) (*model.Assessment, error) {
	a, err := loadOwned(ctx, s.Assessments, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	if a.Status != model.StatusCompleted {
		return nil, util.ErrInvalidState
	}
	return a, nil
}

func (s *AssessmentService) GetResult(ctx context.Context, userID uint, assessmentID string) (res *scoring.Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "AssessmentService.GetResult", assessmentID)
	defer func() { tracing.EndSpan(span, err) }()

	a, err := s.completed(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	return s.Results.Evaluate(ctx, a, true)
}

// Classify returns the primary/secondary styles of a completed attempt.
func (s *AssessmentService) Classify(ctx context.Context, userID uint, assessmentID string) (*scoring.ClassificationResult, error) {
	res, err := s.GetResult(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	if res.InsufficientData || res.Classification == nil {
		return nil, scoring.ErrInsufficientData
	}
	return res.Classification, nil
}

func (s *AssessmentService) ComputeBlindspots(ctx context.Context, userID uint, assessmentID string) (*scoring.BlindspotReport, error) {
	res, err := s.GetResult(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	return &res.Blindspots, nil
}

// Preview scores whatever has been answered so far without persisting it.
// Abandoned attempts cannot be previewed.
func (s *AssessmentService) Preview(ctx context.Context, userID uint, assessmentID string) (res *scoring.Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "AssessmentService.Preview", assessmentID)
	defer func() { tracing.EndSpan(span, err) }()

	a, err := loadOwned(ctx, s.Assessments, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	if a.Status == model.StatusAbandoned {
		return nil, util.ErrInvalidState
	}
	return s.Results.Evaluate(ctx, a, a.Status == model.StatusCompleted)
}

func (s *AssessmentService) Narrative(ctx context.Context, userID uint, assessmentID string) (*model.NarrativeResult, error) {
	if !s.Narrator.Enabled() {
		return nil, util.ErrNarratorDisabled
	}
	res, err := s.GetResult(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}

	title := res.DefinitionID
	if defs, err := s.Banks.ListDefinitions(ctx); err == nil {
		for _, d := range defs {
			if d.ID == res.DefinitionID {
				title = d.Title
			}
		}
	}
	text, err := s.Narrator.Narrate(ctx, title, res)
	if err != nil {
		return nil, err
	}
	return &model.NarrativeResult{AssessmentID: assessmentID, Narrative: text}, nil
}

// AbandonStale marks in-progress attempts older than the abandonment window
// as abandoned, which frees the owner's in-flight slot. The cooldown is not
// touched.
func (s *AssessmentService) AbandonStale(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.abandonAfter)
	stale, err := s.Assessments.ListStale(ctx, cutoff, staleBatchSize)
	if err != nil {
		return 0, err
	}

	abandoned := 0
	for _, a := range stale {
		ok, err := s.Assessments.MarkAbandoned(ctx, a.ID, s.now())
		if err != nil {
			return abandoned, err
		}
		if ok {
			abandoned++
		}
	}
	if abandoned > 0 {
		monitoring.AttemptsAbandoned.Add(float64(abandoned))
		logger.Log.Info("Abandoned stale assessments", zap.Int("count", abandoned))
	}
	return abandoned, nil
}

func (s *AssessmentService) DefinitionStats(ctx context.Context, definitionID string) (*model.DefinitionStats, error) {
	if _, err := s.Banks.Bank(ctx, definitionID); err != nil {
		return nil, err
	}
	counts, err := s.Results.Results.CountByPrimary(ctx, definitionID)
	if err != nil {
		return nil, err
	}

	stats := &model.DefinitionStats{
		DefinitionID: definitionID,
		ByPrimary:    make(map[string]int64, len(counts)),
	}
	for primary, n := range counts {
		if primary == "" {
			primary = "none"
		}
		stats.ByPrimary[primary] += n
		stats.Results += n
	}
	return stats, nil
}
