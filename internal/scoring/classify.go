package scoring

import (
	"math"
	"sort"
)

// evidenceEpsilon absorbs float noise when comparing accumulated weights.
const evidenceEpsilon = 1e-9

// Classify picks the primary dimension and the secondary band from a
// ScoreVector whose entries are in declaration order.
//
// Scores within TieEpsilon of the best are tied. A tie goes to the dimension
// with more accumulated evidence. Only when evidence is equal too does the
// declaration order decide, and only then is TieBreakApplied set.
// Dimensions without evidence never qualify.
func Classify(vec ScoreVector, cfg Config) (ClassificationResult, error) {
	if !vec.HasEvidence() {
		return ClassificationResult{}, ErrInsufficientData
	}
	candidates := make([]DimensionScore, 0, len(vec.Scores))
	for _, s := range vec.Scores {
		if s.Max > 0 {
			candidates = append(candidates, s)
		}
	}

	top := candidates[0].Normalized
	for _, c := range candidates[1:] {
		if c.Normalized > top {
			top = c.Normalized
		}
	}

	var tied []DimensionScore
	for _, c := range candidates {
		if top-c.Normalized <= cfg.TieEpsilon {
			tied = append(tied, c)
		}
	}

	primary := tied[0]
	for _, c := range tied[1:] {
		if c.Max > primary.Max+evidenceEpsilon {
			primary = c
		}
	}

	equalEvidence := 0
	for _, c := range tied {
		if math.Abs(c.Max-primary.Max) <= evidenceEpsilon {
			equalEvidence++
		}
	}

	res := ClassificationResult{
		Primary:         primary.Dimension,
		Secondary:       []DimensionKey{},
		TieBreakApplied: equalEvidence > 1,
	}

	var secondary []DimensionScore
	for _, c := range candidates {
		if c.Dimension == primary.Dimension {
			continue
		}
		if primary.Normalized-c.Normalized <= cfg.SecondaryBand {
			secondary = append(secondary, c)
		}
	}
	sort.SliceStable(secondary, func(i, j int) bool {
		return secondary[i].Normalized > secondary[j].Normalized
	})

	limit := int(math.Max(0, float64(cfg.MaxSecondary)))
	for i, s := range secondary {
		if i >= limit {
			break
		}
		res.Secondary = append(res.Secondary, s.Dimension)
	}
	return res, nil
}
