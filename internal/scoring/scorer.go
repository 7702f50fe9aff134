package scoring

// ReverseLikert inverts a Likert answer on the 1..5 scale.
func ReverseLikert(v int) int {
	return (LikertMax + 1) - v
}

// Score computes the ScoreVector over every response.
func Score(bank *QuestionBank, responses []Response) (ScoreVector, error) {
	return score(bank, responses, nil)
}

// ScoreKind computes a ScoreVector restricted to one question kind. Each
// pass is normalized independently.
func ScoreKind(bank *QuestionBank, responses []Response, kind QuestionKind) (ScoreVector, error) {
	return score(bank, responses, func(q Question) bool { return q.Kind == kind })
}

func score(bank *QuestionBank, responses []Response, include func(Question) bool) (ScoreVector, error) {
	for _, r := range responses {
		if err := bank.ValidateResponse(r); err != nil {
			return ScoreVector{}, err
		}
	}

	n := len(bank.dimensions)
	sum := make([]float64, n)
	max := make([]float64, n)

	for _, r := range bank.latestResponses(responses) {
		q, _ := bank.Question(r.QuestionID)
		if include != nil && !include(q) {
			continue
		}

		switch q.Kind {
		case KindStatement:
			d, ok := bank.DimensionFor(q.DimensionGroup)
			if !ok {
				continue
			}
			v := r.Answer.Likert
			if q.IsReverseScored {
				v = ReverseLikert(v)
			}
			i := bank.dimIndex[d]
			sum[i] += float64(v) * q.Weight
			max[i] += float64(LikertMax) * q.Weight
		case KindScenario:
			o, _ := bank.Option(r.Answer.OptionID)
			for _, d := range o.Dimensions {
				i := bank.dimIndex[d]
				sum[i] += o.Weight
				max[i] += o.Weight
			}
		}
	}

	vec := ScoreVector{Scores: make([]DimensionScore, n)}
	for i, d := range bank.dimensions {
		normalized := 0.0
		if max[i] > 0 {
			normalized = clamp(100*sum[i]/max[i], 0, 100)
		}
		vec.Scores[i] = DimensionScore{
			Dimension:  d,
			Raw:        sum[i],
			Max:        max[i],
			Normalized: normalized,
		}
	}
	return vec, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
