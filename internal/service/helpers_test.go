package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"dating_scan_backend/internal/model"
	"dating_scan_backend/internal/repository"
	"dating_scan_backend/internal/scoring"
	"dating_scan_backend/internal/seed"
	"dating_scan_backend/internal/testutil"

	"gorm.io/gorm"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	db    *gorm.DB
	svc   *AssessmentService
	clock *fakeClock
}

const testCooldown = 30 * 24 * time.Hour

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	if err := seed.Install(db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	assessments := repository.NewAssessmentRepository(db)
	responses := repository.NewResponseRepository(db)
	banks := NewQuestionBankService(repository.NewDefinitionRepository(db))
	governor := NewRetakeGovernor(repository.NewRetakeRepository(db), assessments, testCooldown)
	governor.now = clock.Now
	collector := NewResponseCollector(assessments, responses, banks, governor)
	results := NewResultService(repository.NewResultRepository(db), responses, nil, banks, scoring.DefaultConfig())

	svc := NewAssessmentService(assessments, banks, governor, collector, results, 72*time.Hour)
	svc.now = clock.Now
	return &fixture{db: db, svc: svc, clock: clock}
}

func (f *fixture) start(t *testing.T, userID uint) *model.Assessment {
	t.Helper()
	a, err := f.svc.StartAssessment(context.Background(), userID, seed.DatingStyleID)
	if err != nil {
		t.Fatalf("StartAssessment: %v", err)
	}
	return a
}

// answer submits the first n questions of the dating style scan in order:
// statements get a rotating Likert value, scenarios their first option.
func (f *fixture) answer(t *testing.T, userID uint, a *model.Assessment, n int) {
	t.Helper()
	bank, err := f.svc.Banks.Bank(context.Background(), a.DefinitionID)
	if err != nil {
		t.Fatalf("Bank: %v", err)
	}
	for i, q := range bank.Questions() {
		if i >= n {
			return
		}
		req := model.SubmitResponseRequest{ResponseTimeMs: 2500 + 100*i}
		if q.Kind == scoring.KindScenario {
			req.SelectedOptionID = bank.Options(q.ID)[0].ID
		} else {
			req.LikertValue = 1 + i%5
		}
		if _, err := f.svc.SubmitResponse(context.Background(), userID, a.ID, q.ID, req); err != nil {
			t.Fatalf("SubmitResponse(%s): %v", q.ID, err)
		}
	}
}

func (f *fixture) complete(t *testing.T, userID uint) *model.Assessment {
	t.Helper()
	a := f.start(t, userID)
	f.answer(t, userID, a, 100)
	if _, err := f.svc.FinalizeAssessment(context.Background(), userID, a.ID); err != nil {
		t.Fatalf("FinalizeAssessment: %v", err)
	}
	return a
}

func (f *fixture) status(t *testing.T, id string) model.AssessmentStatus {
	t.Helper()
	var a model.Assessment
	if err := f.db.First(&a, "id = ?", id).Error; err != nil {
		t.Fatalf("load %s: %v", id, err)
	}
	return a.Status
}

func statementID(i int) string { return fmt.Sprintf("ds-s%02d", i) }
