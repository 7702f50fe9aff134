package scoring

import (
	"math"
	"sort"
)

// ComputeBlindspots scores the statement-only and scenario-only subsets and
// compares them dimension by dimension.
func ComputeBlindspots(bank *QuestionBank, responses []Response, cfg Config) (BlindspotReport, error) {
	self, err := ScoreKind(bank, responses, KindStatement)
	if err != nil {
		return BlindspotReport{}, err
	}
	behavioral, err := ScoreKind(bank, responses, KindScenario)
	if err != nil {
		return BlindspotReport{}, err
	}
	return CompareSources(self, behavioral, cfg), nil
}

// CompareSources ranks dimensions where behavioural evidence exceeds the
// self-report. Only positive gaps count, and a dimension missing evidence
// on either side is skipped entirely.
func CompareSources(self, behavioral ScoreVector, cfg Config) BlindspotReport {
	var gaps []BlindspotGap
	for _, s := range self.Scores {
		b, ok := behavioral.Get(s.Dimension)
		if !ok || s.Max == 0 || b.Max == 0 {
			continue
		}
		gap := b.Normalized - s.Normalized
		if gap <= 0 {
			continue
		}
		gaps = append(gaps, BlindspotGap{
			Dimension:  s.Dimension,
			Gap:        gap,
			SelfReport: s.Normalized,
			Behavioral: b.Normalized,
		})
	}
	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].Gap > gaps[j].Gap })

	report := BlindspotReport{Ranked: []BlindspotGap{}}

	top := cfg.BlindspotTopN
	if top > len(gaps) {
		top = len(gaps)
	}
	if top > 0 {
		var total float64
		for _, g := range gaps[:top] {
			total += g.Gap
		}
		report.Index = clamp(math.Round(total/float64(top)), 0, 100)
	}

	for _, g := range gaps {
		if g.Gap > cfg.BlindspotMinGap {
			report.Ranked = append(report.Ranked, g)
		}
	}
	return report
}
