package scoring

import "sort"

// AnalyzeValidity inspects completion, Likert variance and answer timing.
// Warnings are informational and always appear in the order
// incomplete, straight_lining, rushed.
func AnalyzeValidity(bank *QuestionBank, responses []Response, cfg Config) ValidityReport {
	latest := bank.latestResponses(responses)

	answeredRequired := 0
	var likerts []float64
	var statementTimes []float64
	for _, r := range latest {
		q, _ := bank.Question(r.QuestionID)
		if !q.Optional {
			answeredRequired++
		}
		if q.Kind == KindStatement {
			likerts = append(likerts, float64(r.Answer.Likert))
			statementTimes = append(statementTimes, float64(r.ResponseTimeMs))
		}
	}

	report := ValidityReport{
		AnsweredCount:  len(latest),
		RequiredCount:  bank.RequiredCount(),
		CompletionRate: 100,
		Warnings:       []WarningKind{},
	}
	if report.RequiredCount > 0 {
		report.CompletionRate = clamp(100*float64(answeredRequired)/float64(report.RequiredCount), 0, 100)
	}
	report.ResponseVariance = populationVariance(likerts)
	report.MedianResponseTimeMs = median(statementTimes)

	// the gate counts every answer, scenarios included
	enoughSample := report.AnsweredCount >= cfg.MinSampleForVariance

	if report.CompletionRate < 100 {
		report.Warnings = append(report.Warnings, WarningIncomplete)
	}
	if enoughSample && len(likerts) > 0 && report.ResponseVariance < cfg.StraightLineThreshold {
		report.Warnings = append(report.Warnings, WarningStraightLining)
	}
	if enoughSample && len(statementTimes) > 0 && report.MedianResponseTimeMs < cfg.RushedThresholdMs {
		report.Warnings = append(report.Warnings, WarningRushed)
	}
	return report
}

func populationVariance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var sum float64
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}
