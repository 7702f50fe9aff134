package scoring

import (
	"errors"
	"reflect"
	"testing"
)

func vector(scores ...DimensionScore) ScoreVector {
	return ScoreVector{Scores: scores}
}

func TestClassify(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name      string
		vec       ScoreVector
		primary   DimensionKey
		secondary []DimensionKey
		tieBreak  bool
	}{
		{
			name: "clear winner",
			vec: vector(
				DimensionScore{Dimension: "a", Max: 10, Normalized: 40},
				DimensionScore{Dimension: "b", Max: 10, Normalized: 80},
				DimensionScore{Dimension: "c", Max: 10, Normalized: 75},
			),
			primary:   "b",
			secondary: []DimensionKey{"c"},
		},
		{
			name: "tie resolved by evidence",
			vec: vector(
				DimensionScore{Dimension: "a", Max: 10, Normalized: 70},
				DimensionScore{Dimension: "b", Max: 20, Normalized: 70.005},
			),
			primary:   "b",
			secondary: []DimensionKey{"a"},
		},
		{
			name: "tie resolved by declaration order",
			vec: vector(
				DimensionScore{Dimension: "a", Max: 10, Normalized: 50},
				DimensionScore{Dimension: "b", Max: 15, Normalized: 70},
				DimensionScore{Dimension: "c", Max: 15, Normalized: 70},
			),
			primary:   "b",
			secondary: []DimensionKey{"c"},
			tieBreak:  true,
		},
		{
			name: "evidence decides among three, declaration order not needed",
			vec: vector(
				DimensionScore{Dimension: "a", Max: 10, Normalized: 60},
				DimensionScore{Dimension: "b", Max: 10, Normalized: 60},
				DimensionScore{Dimension: "c", Max: 30, Normalized: 60},
			),
			primary:   "c",
			secondary: []DimensionKey{"a", "b"},
		},
		{
			name: "secondary capped and sorted",
			vec: vector(
				DimensionScore{Dimension: "a", Max: 5, Normalized: 91},
				DimensionScore{Dimension: "b", Max: 5, Normalized: 93},
				DimensionScore{Dimension: "c", Max: 5, Normalized: 100},
				DimensionScore{Dimension: "d", Max: 5, Normalized: 95},
				DimensionScore{Dimension: "e", Max: 5, Normalized: 90},
			),
			primary:   "c",
			secondary: []DimensionKey{"d", "b", "a"},
		},
		{
			name: "zero evidence never wins",
			vec: vector(
				DimensionScore{Dimension: "a", Max: 0, Normalized: 0},
				DimensionScore{Dimension: "b", Max: 5, Normalized: 2},
			),
			primary:   "b",
			secondary: []DimensionKey{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.vec, cfg)
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if got.Primary != tt.primary {
				t.Errorf("primary = %q, want %q", got.Primary, tt.primary)
			}
			if !reflect.DeepEqual(got.Secondary, tt.secondary) {
				t.Errorf("secondary = %v, want %v", got.Secondary, tt.secondary)
			}
			if got.TieBreakApplied != tt.tieBreak {
				t.Errorf("tieBreakApplied = %v, want %v", got.TieBreakApplied, tt.tieBreak)
			}
		})
	}
}

func TestClassifyTieBreakStable(t *testing.T) {
	b := mustBank(t, testDefinition())
	rs := uniformResponses(3, 3000, "c11a", "c12a")

	for i := 0; i < 100; i++ {
		vec, err := Score(b, rs)
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		got, err := Classify(vec, DefaultConfig())
		if err != nil {
			t.Fatalf("Classify: %v", err)
		}
		// initiator and romantic both sit at 62.5 with max 16
		if got.Primary != dimInitiator || !got.TieBreakApplied {
			t.Fatalf("run %d: %+v, want initiator by declaration order", i, got)
		}
	}
}

func TestClassifyInsufficientData(t *testing.T) {
	vec := vector(
		DimensionScore{Dimension: "a"},
		DimensionScore{Dimension: "b"},
	)
	if _, err := Classify(vec, DefaultConfig()); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
}

func TestClassifyCustomBand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SecondaryBand = 30
	cfg.MaxSecondary = 1

	got, err := Classify(vector(
		DimensionScore{Dimension: "a", Max: 5, Normalized: 60},
		DimensionScore{Dimension: "b", Max: 5, Normalized: 80},
		DimensionScore{Dimension: "c", Max: 5, Normalized: 55},
	), cfg)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !reflect.DeepEqual(got.Secondary, []DimensionKey{"a"}) {
		t.Fatalf("secondary = %v, want [a]", got.Secondary)
	}
}
