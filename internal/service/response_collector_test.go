package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"dating_scan_backend/internal/model"
	"dating_scan_backend/internal/scoring"
	"dating_scan_backend/internal/util"
)

func TestSubmitResponseReplacesEarlierAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.start(t, 1)

	for _, v := range []int{2, 4, 4} {
		if _, err := f.svc.SubmitResponse(ctx, 1, a.ID, statementID(1), model.SubmitResponseRequest{LikertValue: v, ResponseTimeMs: 3000}); err != nil {
			t.Fatalf("SubmitResponse(%d): %v", v, err)
		}
	}

	rows, err := f.svc.Collector.Responses.ListByAssessment(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListByAssessment: %v", err)
	}
	if len(rows) != 1 || rows[0].Likert != 4 {
		t.Fatalf("rows = %+v, want one row with likert 4", rows)
	}
}

func TestConcurrentSubmissionsKeepOneRow(t *testing.T) {
	f := newFixture(t)
	a := f.start(t, 1)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			req := model.SubmitResponseRequest{LikertValue: 1 + v%5, ResponseTimeMs: 1000}
			if _, err := f.svc.SubmitResponse(context.Background(), 1, a.ID, statementID(2), req); err != nil {
				t.Errorf("SubmitResponse: %v", err)
			}
		}(i)
	}
	wg.Wait()

	var n int64
	f.db.Model(&model.AssessmentResponse{}).Where("assessment_id = ? AND question_id = ?", a.ID, statementID(2)).Count(&n)
	if n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}
}

func TestSubmitResponseRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.start(t, 1)

	tests := []struct {
		name     string
		userID   uint
		id       string
		question string
		req      model.SubmitResponseRequest
		want     error
	}{
		{"unknown question", 1, a.ID, "ds-s99", model.SubmitResponseRequest{LikertValue: 3}, scoring.ErrUnknownQuestion},
		{"likert out of range", 1, a.ID, statementID(1), model.SubmitResponseRequest{LikertValue: 7}, scoring.ErrMalformedResponse},
		{"option on statement", 1, a.ID, statementID(1), model.SubmitResponseRequest{SelectedOptionID: "ds-c01-a"}, scoring.ErrMalformedResponse},
		{"foreign option", 1, a.ID, "ds-c01", model.SubmitResponseRequest{SelectedOptionID: "ds-c02-a"}, scoring.ErrMalformedResponse},
		{"negative time", 1, a.ID, statementID(1), model.SubmitResponseRequest{LikertValue: 3, ResponseTimeMs: -1}, scoring.ErrMalformedResponse},
		{"other user", 2, a.ID, statementID(1), model.SubmitResponseRequest{LikertValue: 3}, util.ErrPermissionDenied},
		{"missing attempt", 1, "nope", statementID(1), model.SubmitResponseRequest{LikertValue: 3}, util.ErrAssessmentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SubmitResponse(ctx, tt.userID, tt.id, tt.question, tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFinalizeIncomplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.start(t, 1)
	f.answer(t, 1, a, 10)

	_, err := f.svc.FinalizeAssessment(ctx, 1, a.ID)
	var incomplete *util.IncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("err = %v, want IncompleteError", err)
	}
	if !errors.Is(err, util.ErrIncompleteAssessment) {
		t.Fatalf("IncompleteError does not match ErrIncompleteAssessment")
	}
	if incomplete.Answered != 10 || incomplete.Required != 16 || len(incomplete.Missing) != 6 {
		t.Fatalf("incomplete = %+v", incomplete)
	}
	if incomplete.Missing[0] != statementID(11) {
		t.Fatalf("first missing = %s, want %s", incomplete.Missing[0], statementID(11))
	}
	if got := f.status(t, a.ID); got != model.StatusInProgress {
		t.Fatalf("status = %s, want in_progress", got)
	}

	p, err := f.svc.Progress(ctx, 1, a.ID)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if p.Answered != 10 || p.Required != 16 || len(p.Missing) != 6 {
		t.Fatalf("progress = %+v", p)
	}
	status, _ := f.svc.RetakeStatus(ctx, 1)
	if status.AttemptCount != 0 {
		t.Fatalf("failed finalize counted as an attempt: %+v", status)
	}
}

func TestFinalizeOnlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.start(t, 1)
	f.answer(t, 1, a, 100)

	out, err := f.svc.FinalizeAssessment(ctx, 1, a.ID)
	if err != nil {
		t.Fatalf("FinalizeAssessment: %v", err)
	}
	if out.Assessment.Status != model.StatusCompleted || out.Assessment.CompletedAt == nil {
		t.Fatalf("assessment = %+v", out.Assessment)
	}
	if len(out.Scores.Scores) != 6 || out.Validity.CompletionRate != 100 {
		t.Fatalf("finalize result = %+v", out)
	}

	if _, err := f.svc.FinalizeAssessment(ctx, 1, a.ID); !errors.Is(err, util.ErrInvalidState) {
		t.Fatalf("second finalize: err = %v, want ErrInvalidState", err)
	}
	req := model.SubmitResponseRequest{LikertValue: 5}
	if _, err := f.svc.SubmitResponse(ctx, 1, a.ID, statementID(1), req); !errors.Is(err, util.ErrInvalidState) {
		t.Fatalf("submit after finalize: err = %v, want ErrInvalidState", err)
	}
}

func TestConcurrentFinalizeCompletesOnce(t *testing.T) {
	f := newFixture(t)
	a := f.start(t, 1)
	f.answer(t, 1, a, 100)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, invalid := 0, 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.FinalizeAssessment(context.Background(), 1, a.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, util.ErrInvalidState):
				invalid++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 1 || invalid != 4 {
		t.Fatalf("ok = %d, invalid = %d, want 1 and 4", ok, invalid)
	}
	status, _ := f.svc.RetakeStatus(context.Background(), 1)
	if status.AttemptCount != 1 {
		t.Fatalf("attempts = %d, want 1", status.AttemptCount)
	}
}
