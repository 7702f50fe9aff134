package scoring

import (
	"errors"
	"testing"
)

func TestNewQuestionBankValid(t *testing.T) {
	b := mustBank(t, testDefinition())

	if got := b.RequiredCount(); got != 12 {
		t.Fatalf("RequiredCount = %d, want 12", got)
	}
	qs := b.Questions()
	for i, q := range qs {
		if q.OrderPosition != i+1 {
			t.Fatalf("question %d at position %d", i, q.OrderPosition)
		}
	}
	if opts := b.Options("c11"); len(opts) != 2 || opts[0].ID != "c11a" {
		t.Fatalf("Options(c11) = %+v", opts)
	}
	if d, ok := b.DimensionFor("romance"); !ok || d != dimRomantic {
		t.Fatalf("DimensionFor(romance) = %q, %v", d, ok)
	}
}

func TestNewQuestionBankDefaultsZeroWeight(t *testing.T) {
	def := testDefinition()
	def.Questions[0].Weight = 0
	def.Options[0].Weight = 0

	b := mustBank(t, def)
	q, _ := b.Question("s01")
	if q.Weight != 1 {
		t.Fatalf("question weight = %v, want 1", q.Weight)
	}
	o, _ := b.Option("c11a")
	if o.Weight != 1 {
		t.Fatalf("option weight = %v, want 1", o.Weight)
	}
}

func TestNewQuestionBankRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Definition)
	}{
		{"no dimensions", func(d *Definition) { d.Dimensions = nil }},
		{"duplicate dimension", func(d *Definition) { d.Dimensions = append(d.Dimensions, dimPlanner) }},
		{"group to unknown dimension", func(d *Definition) { d.GroupDimensions["x"] = "ghost" }},
		{"position gap", func(d *Definition) { d.Questions[11].OrderPosition = 13 }},
		{"duplicate position", func(d *Definition) { d.Questions[1].OrderPosition = 1 }},
		{"duplicate question id", func(d *Definition) { d.Questions[1].ID = "s01" }},
		{"bad kind", func(d *Definition) { d.Questions[0].Kind = "essay" }},
		{"reverse scored scenario", func(d *Definition) { d.Questions[10].IsReverseScored = true }},
		{"negative weight", func(d *Definition) { d.Questions[0].Weight = -1 }},
		{"option on statement", func(d *Definition) { d.Options[0].QuestionID = "s01" }},
		{"option unknown dimension", func(d *Definition) { d.Options[0].Dimensions = []DimensionKey{"ghost"} }},
		{"option position repeated", func(d *Definition) { d.Options[1].OrderPosition = 1 }},
		{"scenario without options", func(d *Definition) { d.Options = d.Options[:2] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := testDefinition()
			tt.mutate(&def)
			if _, err := NewQuestionBank(def); !errors.Is(err, ErrInvalidDefinition) {
				t.Fatalf("err = %v, want ErrInvalidDefinition", err)
			}
		})
	}
}

func TestValidateResponse(t *testing.T) {
	b := mustBank(t, testDefinition())

	tests := []struct {
		name string
		resp Response
		want error
	}{
		{"likert ok", Response{QuestionID: "s01", Answer: Answer{Likert: 4}}, nil},
		{"option ok", Response{QuestionID: "c11", Answer: Answer{OptionID: "c11b"}}, nil},
		{"unknown question", Response{QuestionID: "zz", Answer: Answer{Likert: 3}}, ErrUnknownQuestion},
		{"likert too low", Response{QuestionID: "s01", Answer: Answer{Likert: 0}}, ErrMalformedResponse},
		{"likert too high", Response{QuestionID: "s01", Answer: Answer{Likert: 6}}, ErrMalformedResponse},
		{"option on statement", Response{QuestionID: "s01", Answer: Answer{Likert: 3, OptionID: "c11a"}}, ErrMalformedResponse},
		{"likert on scenario", Response{QuestionID: "c11", Answer: Answer{Likert: 3}}, ErrMalformedResponse},
		{"foreign option", Response{QuestionID: "c11", Answer: Answer{OptionID: "c12a"}}, ErrMalformedResponse},
		{"missing option", Response{QuestionID: "c11"}, ErrMalformedResponse},
		{"negative time", Response{QuestionID: "s01", Answer: Answer{Likert: 3}, ResponseTimeMs: -1}, ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.ValidateResponse(tt.resp)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
