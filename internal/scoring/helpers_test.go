package scoring

import (
	"fmt"
	"testing"
)

const (
	dimPlanner   DimensionKey = "planner"
	dimInitiator DimensionKey = "initiator"
	dimRomantic  DimensionKey = "romantic"
)

// testDefinition builds a 10-statement, 2-scenario definition over three
// dimensions. Statement s03 is reverse scored.
func testDefinition() Definition {
	groups := []string{"planning", "initiative", "romance"}
	def := Definition{
		ID:         "test-style",
		Version:    1,
		Dimensions: []DimensionKey{dimPlanner, dimInitiator, dimRomantic},
		GroupDimensions: map[string]DimensionKey{
			"planning":   dimPlanner,
			"initiative": dimInitiator,
			"romance":    dimRomantic,
		},
	}
	for i := 1; i <= 10; i++ {
		def.Questions = append(def.Questions, Question{
			ID:              fmt.Sprintf("s%02d", i),
			Kind:            KindStatement,
			Text:            fmt.Sprintf("statement %d", i),
			DimensionGroup:  groups[(i-1)%3],
			IsReverseScored: i == 3,
			Weight:          1,
			OrderPosition:   i,
		})
	}
	def.Questions = append(def.Questions,
		Question{ID: "c11", Kind: KindScenario, Text: "first date", OrderPosition: 11, Weight: 1},
		Question{ID: "c12", Kind: KindScenario, Text: "no reply", OrderPosition: 12, Weight: 1},
	)
	def.Options = []ScenarioOption{
		{ID: "c11a", QuestionID: "c11", Dimensions: []DimensionKey{dimInitiator}, Weight: 1, OrderPosition: 1},
		{ID: "c11b", QuestionID: "c11", Dimensions: []DimensionKey{dimPlanner, dimRomantic}, Weight: 1, OrderPosition: 2},
		{ID: "c12a", QuestionID: "c12", Dimensions: []DimensionKey{dimRomantic}, Weight: 1, OrderPosition: 1},
		{ID: "c12b", QuestionID: "c12", Dimensions: []DimensionKey{dimPlanner}, Weight: 1, OrderPosition: 2},
	}
	return def
}

func mustBank(t *testing.T, def Definition) *QuestionBank {
	t.Helper()
	b, err := NewQuestionBank(def)
	if err != nil {
		t.Fatalf("NewQuestionBank: %v", err)
	}
	return b
}

// uniformResponses answers every statement with likert and picks the given
// scenario options, all with the same response time.
func uniformResponses(likert int, timeMs int, options ...string) []Response {
	var rs []Response
	for i := 1; i <= 10; i++ {
		rs = append(rs, Response{
			QuestionID:     fmt.Sprintf("s%02d", i),
			Answer:         Answer{Likert: likert},
			ResponseTimeMs: timeMs,
		})
	}
	for i, opt := range options {
		rs = append(rs, Response{
			QuestionID:     fmt.Sprintf("c%d", 11+i),
			Answer:         Answer{OptionID: opt},
			ResponseTimeMs: timeMs,
		})
	}
	return rs
}

func setLikert(rs []Response, questionID string, v int) []Response {
	out := append([]Response(nil), rs...)
	for i := range out {
		if out[i].QuestionID == questionID {
			out[i].Answer = Answer{Likert: v}
		}
	}
	return out
}
