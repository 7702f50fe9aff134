package scoring

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// Evaluate runs the whole pipeline. The scorer and the validity analyzer
// work on the same response set in parallel; classification and blind
// spots follow. A definition that yields no evidence still returns scores
// and validity, with InsufficientData set and Classification nil.
func Evaluate(ctx context.Context, bank *QuestionBank, responses []Response, cfg Config) (*Result, error) {
	for _, r := range responses {
		if err := bank.ValidateResponse(r); err != nil {
			return nil, err
		}
	}

	var (
		vec      ScoreVector
		validity ValidityReport
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vec, err = Score(bank, responses)
		return err
	})
	g.Go(func() error {
		validity = AnalyzeValidity(bank, responses, cfg)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		DefinitionID:      bank.ID(),
		DefinitionVersion: bank.Version(),
		Scores:            vec,
		Validity:          validity,
	}

	classification, err := Classify(vec, cfg)
	switch {
	case errors.Is(err, ErrInsufficientData):
		res.InsufficientData = true
	case err != nil:
		return nil, err
	default:
		res.Classification = &classification
	}

	blindspots, err := ComputeBlindspots(bank, responses, cfg)
	if err != nil {
		return nil, err
	}
	res.Blindspots = blindspots

	return res, nil
}

// Fingerprint identifies the inputs of Evaluate. Two calls with equal
// fingerprints produce identical results, which is what makes a stored
// result safe to reuse.
func Fingerprint(bank *QuestionBank, responses []Response, cfg Config) string {
	h := sha256.New()
	fmt.Fprintf(h, "def=%s;v=%d;", bank.ID(), bank.Version())
	fmt.Fprintf(h, "cfg=%s,%d,%s,%s,%s,%d,%s,%d;",
		ftoa(cfg.StraightLineThreshold), cfg.MinSampleForVariance, ftoa(cfg.RushedThresholdMs),
		ftoa(cfg.TieEpsilon), ftoa(cfg.SecondaryBand), cfg.MaxSecondary,
		ftoa(cfg.BlindspotMinGap), cfg.BlindspotTopN)
	for _, r := range bank.latestResponses(responses) {
		fmt.Fprintf(h, "%s|%d|%s|%d;", r.QuestionID, r.Answer.Likert, r.Answer.OptionID, r.ResponseTimeMs)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
