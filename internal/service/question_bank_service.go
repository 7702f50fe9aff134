package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"dating_scan_backend/internal/model"
	"dating_scan_backend/internal/repository"
	"dating_scan_backend/internal/scoring"
	"dating_scan_backend/internal/util"
	"dating_scan_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuestionBankService loads definitions and caches the validated question
// banks built from them. Banks are immutable, so they are shared freely.
// banks holds the current version per definition; pinned holds older
// versions rebuilt from their snapshots.
type QuestionBankService struct {
	Repo *repository.DefinitionRepository

	mu     sync.RWMutex
	banks  map[string]*scoring.QuestionBank
	pinned map[string]*scoring.QuestionBank
}

func NewQuestionBankService(repo *repository.DefinitionRepository) *QuestionBankService {
	return &QuestionBankService{
		Repo:   repo,
		banks:  make(map[string]*scoring.QuestionBank),
		pinned: make(map[string]*scoring.QuestionBank),
	}
}

func pinnedKey(definitionID string, version int) string {
	return fmt.Sprintf("%s@%d", definitionID, version)
}

func (s *QuestionBankService) Bank(ctx context.Context, definitionID string) (*scoring.QuestionBank, error) {
	s.mu.RLock()
	bank, ok := s.banks[definitionID]
	s.mu.RUnlock()
	if ok {
		return bank, nil
	}

	def, err := s.load(ctx, definitionID)
	if err != nil {
		return nil, err
	}
	sd, err := def.ToScoring()
	if err != nil {
		return nil, err
	}
	bank, err = scoring.NewQuestionBank(sd)
	if err != nil {
		return nil, fmt.Errorf("build bank %s: %w", definitionID, err)
	}

	// definitions written outside the seeder get their snapshot here
	if snap, err := model.NewDefinitionSnapshot(sd); err == nil {
		if err := s.Repo.SaveSnapshot(ctx, snap); err != nil {
			logger.Log.Warn("Failed to snapshot definition",
				zap.String("definition", definitionID),
				zap.Int("version", sd.Version),
				zap.Error(err))
		}
	}

	s.mu.Lock()
	s.banks[definitionID] = bank
	s.mu.Unlock()
	return bank, nil
}

// BankAt returns the bank of one definition version, the one an attempt
// was started on. The current version comes from Bank; older versions are
// rebuilt from their snapshot, even when the definition is unpublished.
func (s *QuestionBankService) BankAt(ctx context.Context, definitionID string, version int) (*scoring.QuestionBank, error) {
	key := pinnedKey(definitionID, version)
	s.mu.RLock()
	bank, ok := s.pinned[key]
	s.mu.RUnlock()
	if ok {
		return bank, nil
	}

	if current, err := s.Bank(ctx, definitionID); err == nil && current.Version() == version {
		return current, nil
	}

	snap, err := s.Repo.FindSnapshot(ctx, definitionID, version)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s version %d", util.ErrDefinitionNotFound, definitionID, version)
	}
	if err != nil {
		return nil, err
	}
	sd, err := snap.ToScoring()
	if err != nil {
		return nil, err
	}
	bank, err = scoring.NewQuestionBank(sd)
	if err != nil {
		return nil, fmt.Errorf("build bank %s: %w", key, err)
	}

	s.mu.Lock()
	s.pinned[key] = bank
	s.mu.Unlock()
	return bank, nil
}

// Invalidate drops a cached bank; an empty id drops all of them, pinned
// versions included.
func (s *QuestionBankService) Invalidate(definitionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if definitionID == "" {
		s.banks = make(map[string]*scoring.QuestionBank)
		s.pinned = make(map[string]*scoring.QuestionBank)
		return
	}
	delete(s.banks, definitionID)
}

func (s *QuestionBankService) load(ctx context.Context, definitionID string) (*model.AssessmentDefinition, error) {
	def, err := s.Repo.FindWithQuestions(ctx, definitionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrDefinitionNotFound
	}
	if err != nil {
		return nil, err
	}
	if !def.IsPublished {
		return nil, util.ErrDefinitionNotFound
	}
	return def, nil
}

func (s *QuestionBankService) ListDefinitions(ctx context.Context) ([]model.DefinitionSummary, error) {
	defs, err := s.Repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.DefinitionSummary, 0, len(defs))
	for _, d := range defs {
		bank, err := s.Bank(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		dims := make([]string, 0, len(bank.Dimensions()))
		for _, k := range bank.Dimensions() {
			dims = append(dims, string(k))
		}
		out = append(out, model.DefinitionSummary{
			ID:            d.ID,
			Title:         d.Title,
			Description:   d.Description,
			Version:       d.Version,
			Dimensions:    dims,
			QuestionCount: len(bank.Questions()),
		})
	}
	return out, nil
}

// QuestionSheet returns the respondent-facing questions in position order.
func (s *QuestionBankService) QuestionSheet(ctx context.Context, definitionID string) (*model.QuestionSheet, error) {
	bank, err := s.Bank(ctx, definitionID)
	if err != nil {
		return nil, err
	}

	sheet := &model.QuestionSheet{
		DefinitionID: bank.ID(),
		Version:      bank.Version(),
		Questions:    make([]model.SheetQuestion, 0, len(bank.Questions())),
	}
	for _, q := range bank.Questions() {
		sq := model.SheetQuestion{
			ID:            q.ID,
			Kind:          string(q.Kind),
			Text:          q.Text,
			OrderPosition: q.OrderPosition,
			Optional:      q.Optional,
		}
		for _, o := range bank.Options(q.ID) {
			sq.Options = append(sq.Options, model.SheetOption{
				ID:            o.ID,
				Text:          o.Text,
				OrderPosition: o.OrderPosition,
			})
		}
		sheet.Questions = append(sheet.Questions, sq)
	}
	return sheet, nil
}
