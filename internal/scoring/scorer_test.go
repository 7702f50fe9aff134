package scoring

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func TestScoreUniformAnswers(t *testing.T) {
	b := mustBank(t, testDefinition())
	vec, err := Score(b, uniformResponses(3, 3000, "c11a", "c12a"))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	want := map[DimensionKey]DimensionScore{
		dimPlanner:   {Dimension: dimPlanner, Raw: 12, Max: 20, Normalized: 60},
		dimInitiator: {Dimension: dimInitiator, Raw: 10, Max: 16, Normalized: 62.5},
		dimRomantic:  {Dimension: dimRomantic, Raw: 10, Max: 16, Normalized: 62.5},
	}
	if len(vec.Scores) != 3 {
		t.Fatalf("len(Scores) = %d, want 3", len(vec.Scores))
	}
	for i, d := range b.Dimensions() {
		if vec.Scores[i].Dimension != d {
			t.Fatalf("Scores[%d] = %q, want declaration order %q", i, vec.Scores[i].Dimension, d)
		}
		if got := vec.Scores[i]; got != want[d] {
			t.Errorf("%s = %+v, want %+v", d, got, want[d])
		}
	}
}

func TestScoreReverseScoring(t *testing.T) {
	def := Definition{
		ID:              "reverse",
		Dimensions:      []DimensionKey{"a", "b"},
		GroupDimensions: map[string]DimensionKey{"ga": "a", "gb": "b"},
		Questions: []Question{
			{ID: "q1", Kind: KindStatement, DimensionGroup: "ga", IsReverseScored: true, Weight: 1, OrderPosition: 1},
			{ID: "q2", Kind: KindStatement, DimensionGroup: "gb", Weight: 1, OrderPosition: 2},
		},
	}
	b := mustBank(t, def)
	vec, err := Score(b, []Response{
		{QuestionID: "q1", Answer: Answer{Likert: 1}},
		{QuestionID: "q2", Answer: Answer{Likert: 5}},
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	a, _ := vec.Get("a")
	bb, _ := vec.Get("b")
	if a.Normalized != 100 || bb.Normalized != 100 {
		t.Fatalf("normalized = (%v, %v), want (100, 100)", a.Normalized, bb.Normalized)
	}
	if a.Raw != bb.Raw {
		t.Fatalf("raw = (%v, %v), want equal contributions", a.Raw, bb.Raw)
	}
}

func TestReverseLikert(t *testing.T) {
	cases := []struct{ in, want int }{{1, 5}, {2, 4}, {3, 3}, {4, 2}, {5, 1}}
	for _, c := range cases {
		if got := ReverseLikert(c.in); got != c.want {
			t.Fatalf("ReverseLikert(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestScoreWeights(t *testing.T) {
	def := testDefinition()
	def.Questions[0].Weight = 2 // s01, planning
	def.Options[1].Weight = 3   // c11b: planner + romantic
	b := mustBank(t, def)

	rs := setLikert(uniformResponses(3, 3000, "c11b", "c12b"), "s01", 5)
	vec, err := Score(b, rs)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	// planner: s01 5*2 + s04,s07,s10 3 each = 19 of 25; c11b +3/3; c12b +1/1
	p, _ := vec.Get(dimPlanner)
	if p.Raw != 23 || p.Max != 29 {
		t.Fatalf("planner = %+v, want raw 23 max 29", p)
	}
	if want := 100 * 23.0 / 29.0; math.Abs(p.Normalized-want) > 1e-12 {
		t.Fatalf("planner normalized = %v, want %v", p.Normalized, want)
	}
}

func TestScoreNoEvidenceDimension(t *testing.T) {
	def := testDefinition()
	def.Dimensions = append(def.Dimensions, "ghost")
	b := mustBank(t, def)

	vec, err := Score(b, uniformResponses(4, 3000, "c11a", "c12a"))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	g, ok := vec.Get("ghost")
	if !ok {
		t.Fatalf("ghost dimension missing from vector")
	}
	if g.Normalized != 0 || g.Max != 0 {
		t.Fatalf("ghost = %+v, want zero evidence", g)
	}
}

func TestScoreUnmappedGroupIgnored(t *testing.T) {
	def := testDefinition()
	def.Questions[0].DimensionGroup = "warmup"
	b := mustBank(t, def)

	vec, err := Score(b, uniformResponses(3, 3000, "c11a", "c12a"))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	p, _ := vec.Get(dimPlanner)
	if p.Max != 15 {
		t.Fatalf("planner max = %v, want 15 with s01 unmapped", p.Max)
	}
}

func TestScoreDeterministic(t *testing.T) {
	b := mustBank(t, testDefinition())
	rs := uniformResponses(2, 3000, "c11b", "c12a")
	rs = setLikert(rs, "s02", 5)
	rs = setLikert(rs, "s07", 1)

	first, err := Score(b, rs)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]Response(nil), rs...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got, err := Score(b, shuffled)
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: %+v, want %+v", i, got, first)
		}
	}
}

func TestScoreBounds(t *testing.T) {
	b := mustBank(t, testDefinition())
	for likert := LikertMin; likert <= LikertMax; likert++ {
		for _, opts := range [][]string{{"c11a", "c12a"}, {"c11b", "c12b"}, nil} {
			vec, err := Score(b, uniformResponses(likert, 1000, opts...))
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			for _, s := range vec.Scores {
				if s.Normalized < 0 || s.Normalized > 100 {
					t.Fatalf("likert %d: %s normalized %v out of bounds", likert, s.Dimension, s.Normalized)
				}
			}
		}
	}
}

func TestScoreResubmissionKeepsLatest(t *testing.T) {
	b := mustBank(t, testDefinition())
	rs := uniformResponses(3, 3000, "c11a", "c12a")

	once, err := Score(b, rs)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	twice, err := Score(b, append(rs, rs[0]))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("duplicate submission changed scores: %+v vs %+v", once, twice)
	}
}

func TestScoreKindSplitsSources(t *testing.T) {
	b := mustBank(t, testDefinition())
	rs := uniformResponses(3, 3000, "c11a", "c12a")

	self, err := ScoreKind(b, rs, KindStatement)
	if err != nil {
		t.Fatalf("ScoreKind: %v", err)
	}
	behavioral, err := ScoreKind(b, rs, KindScenario)
	if err != nil {
		t.Fatalf("ScoreKind: %v", err)
	}
	for _, s := range self.Scores {
		if s.Normalized != 60 {
			t.Errorf("self %s = %v, want 60", s.Dimension, s.Normalized)
		}
	}
	if p, _ := behavioral.Get(dimPlanner); p.Max != 0 {
		t.Errorf("behavioral planner max = %v, want 0", p.Max)
	}
	if i, _ := behavioral.Get(dimInitiator); i.Normalized != 100 {
		t.Errorf("behavioral initiator = %v, want 100", i.Normalized)
	}
}

func TestScoreRejectsMalformed(t *testing.T) {
	b := mustBank(t, testDefinition())
	rs := setLikert(uniformResponses(3, 3000), "s01", 9)
	if _, err := Score(b, rs); err == nil {
		t.Fatalf("expected error for likert 9")
	}
}
