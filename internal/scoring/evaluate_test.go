package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestEvaluateEndToEnd(t *testing.T) {
	b := mustBank(t, testDefinition())
	cfg := DefaultConfig()

	flat := uniformResponses(3, 3000, "c11a", "c12a")
	res, err := Evaluate(context.Background(), b, flat, cfg)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Validity.ResponseVariance != 0 || !res.Validity.Has(WarningStraightLining) {
		t.Fatalf("validity = %+v, want straight_lining at variance 0", res.Validity)
	}
	if res.Classification == nil || res.Classification.Primary != dimInitiator {
		t.Fatalf("classification = %+v", res.Classification)
	}
	if res.Blindspots.Index != 40 {
		t.Fatalf("blindspot index = %v, want 40", res.Blindspots.Index)
	}

	varied, err := Evaluate(context.Background(), b, setLikert(flat, "s01", 5), cfg)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if varied.Validity.Has(WarningStraightLining) {
		t.Fatalf("straight_lining still present after varying one answer: %+v", varied.Validity)
	}
}

func TestEvaluateSerializesIdentically(t *testing.T) {
	b := mustBank(t, testDefinition())
	rs := setLikert(uniformResponses(4, 2500, "c11b", "c12b"), "s03", 1)

	var first []byte
	for i := 0; i < 20; i++ {
		res, err := Evaluate(context.Background(), b, rs, DefaultConfig())
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		out, err := json.Marshal(res)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if first == nil {
			first = out
			continue
		}
		if string(out) != string(first) {
			t.Fatalf("run %d serialized differently:\n%s\n%s", i, out, first)
		}
	}
}

func TestEvaluateInsufficientData(t *testing.T) {
	def := Definition{
		ID:         "unmapped",
		Dimensions: []DimensionKey{"a"},
		Questions: []Question{
			{ID: "q1", Kind: KindStatement, DimensionGroup: "nowhere", OrderPosition: 1},
		},
	}
	b := mustBank(t, def)
	res, err := Evaluate(context.Background(), b, []Response{{QuestionID: "q1", Answer: Answer{Likert: 4}}}, DefaultConfig())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !res.InsufficientData || res.Classification != nil {
		t.Fatalf("result = %+v, want insufficient data", res)
	}
	if res.Validity.CompletionRate != 100 {
		t.Fatalf("validity still expected, got %+v", res.Validity)
	}
}

func TestEvaluateRejectsUnknownQuestion(t *testing.T) {
	b := mustBank(t, testDefinition())
	rs := append(uniformResponses(3, 3000), Response{QuestionID: "nope", Answer: Answer{Likert: 3}})
	if _, err := Evaluate(context.Background(), b, rs, DefaultConfig()); !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("err = %v, want ErrUnknownQuestion", err)
	}
}

func TestFingerprint(t *testing.T) {
	b := mustBank(t, testDefinition())
	cfg := DefaultConfig()
	rs := uniformResponses(3, 3000, "c11a", "c12a")

	base := Fingerprint(b, rs, cfg)
	reversed := make([]Response, len(rs))
	for i, r := range rs {
		reversed[len(rs)-1-i] = r
	}
	if got := Fingerprint(b, reversed, cfg); got != base {
		t.Fatalf("fingerprint depends on response order")
	}
	if got := Fingerprint(b, setLikert(rs, "s01", 4), cfg); got == base {
		t.Fatalf("fingerprint ignored a changed answer")
	}
	cfg.SecondaryBand = 20
	if got := Fingerprint(b, rs, cfg); got == base {
		t.Fatalf("fingerprint ignored a config change")
	}
}
