package scoring

import (
	"testing"
)

func TestComputeBlindspots(t *testing.T) {
	b := mustBank(t, testDefinition())
	rs := uniformResponses(3, 3000, "c11a", "c12a")

	report, err := ComputeBlindspots(b, rs, DefaultConfig())
	if err != nil {
		t.Fatalf("ComputeBlindspots: %v", err)
	}
	// self-report 60 everywhere; behaviour 100 for initiator and romantic,
	// no scenario evidence for planner
	if report.Index != 40 {
		t.Fatalf("index = %v, want 40", report.Index)
	}
	if len(report.Ranked) != 2 {
		t.Fatalf("ranked = %+v, want 2 entries", report.Ranked)
	}
	if report.Ranked[0].Dimension != dimInitiator || report.Ranked[1].Dimension != dimRomantic {
		t.Fatalf("ranked order = %+v", report.Ranked)
	}
	for _, g := range report.Ranked {
		if g.Dimension == dimPlanner {
			t.Fatalf("planner has no scenario evidence but was ranked")
		}
	}
}

func TestCompareSources(t *testing.T) {
	cfg := DefaultConfig()
	self := vector(
		DimensionScore{Dimension: "a", Max: 10, Normalized: 20},
		DimensionScore{Dimension: "b", Max: 10, Normalized: 50},
		DimensionScore{Dimension: "c", Max: 10, Normalized: 90},
		DimensionScore{Dimension: "d", Max: 10, Normalized: 60},
		DimensionScore{Dimension: "e", Max: 0, Normalized: 0},
		DimensionScore{Dimension: "f", Max: 10, Normalized: 10},
	)
	behavioral := vector(
		DimensionScore{Dimension: "a", Max: 2, Normalized: 100}, // gap 80
		DimensionScore{Dimension: "b", Max: 2, Normalized: 55},  // gap 5, below min gap
		DimensionScore{Dimension: "c", Max: 2, Normalized: 50},  // negative
		DimensionScore{Dimension: "d", Max: 2, Normalized: 100}, // gap 40
		DimensionScore{Dimension: "e", Max: 2, Normalized: 100}, // no self evidence
		DimensionScore{Dimension: "f", Max: 0, Normalized: 0},   // no behavioural evidence
	)

	report := CompareSources(self, behavioral, cfg)
	// top three positive gaps: 80, 40, 5
	if report.Index != 42 {
		t.Fatalf("index = %v, want 42", report.Index)
	}
	if len(report.Ranked) != 2 || report.Ranked[0].Dimension != "a" || report.Ranked[1].Dimension != "d" {
		t.Fatalf("ranked = %+v, want [a d]", report.Ranked)
	}
	if report.Ranked[0].Gap != 80 || report.Ranked[0].SelfReport != 20 || report.Ranked[0].Behavioral != 100 {
		t.Fatalf("ranked[0] = %+v", report.Ranked[0])
	}
}

func TestCompareSourcesNoGaps(t *testing.T) {
	self := vector(DimensionScore{Dimension: "a", Max: 5, Normalized: 80})
	behavioral := vector(DimensionScore{Dimension: "a", Max: 1, Normalized: 60})

	report := CompareSources(self, behavioral, DefaultConfig())
	if report.Index != 0 || len(report.Ranked) != 0 {
		t.Fatalf("report = %+v, want empty", report)
	}
	if report.Ranked == nil {
		t.Fatalf("ranked should be an empty list, not nil")
	}
}

func TestBlindspotIndexBounds(t *testing.T) {
	b := mustBank(t, testDefinition())
	for likert := LikertMin; likert <= LikertMax; likert++ {
		report, err := ComputeBlindspots(b, uniformResponses(likert, 3000, "c11b", "c12a"), DefaultConfig())
		if err != nil {
			t.Fatalf("ComputeBlindspots: %v", err)
		}
		if report.Index < 0 || report.Index > 100 {
			t.Fatalf("likert %d: index %v out of bounds", likert, report.Index)
		}
		for _, g := range report.Ranked {
			if g.Gap <= DefaultBlindspotMinGap {
				t.Fatalf("likert %d: ranked gap %v not above min gap", likert, g.Gap)
			}
		}
	}
}
