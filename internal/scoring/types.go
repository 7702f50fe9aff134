// Package scoring turns questionnaire answers into per-dimension scores,
// validity warnings, a primary/secondary classification and a blind spot
// ranking. Everything in this package is a pure function of its inputs.
package scoring

// DimensionKey names one scored style axis (e.g. "initiator", "secure").
type DimensionKey string

// QuestionKind distinguishes Likert statements from behavioural scenarios.
type QuestionKind string

const (
	KindStatement QuestionKind = "statement"
	KindScenario  QuestionKind = "scenario"
)

func (k QuestionKind) Valid() bool {
	return k == KindStatement || k == KindScenario
}

// Likert scale bounds for statement answers.
const (
	LikertMin = 1
	LikertMax = 5
)

type Question struct {
	ID              string       `json:"id"`
	Kind            QuestionKind `json:"kind"`
	Text            string       `json:"text"`
	DimensionGroup  string       `json:"dimensionGroup"`
	IsReverseScored bool         `json:"isReverseScored"`
	Weight          float64      `json:"weight"`
	OrderPosition   int          `json:"orderPosition"`
	Optional        bool         `json:"optional"`
}

type ScenarioOption struct {
	ID            string         `json:"id"`
	QuestionID    string         `json:"questionId"`
	Text          string         `json:"text"`
	Dimensions    []DimensionKey `json:"dimensions"`
	Weight        float64        `json:"weight"`
	OrderPosition int            `json:"orderPosition"`
}

// Definition is the declarative descriptor of one assessment type. The
// engine never hard-codes a dimension set: Dimensions carries the valid keys
// in declaration order (used for deterministic tie-breaks) and
// GroupDimensions maps a statement's dimension group onto a key.
type Definition struct {
	ID              string                  `json:"id"`
	Version         int                     `json:"version"`
	Dimensions      []DimensionKey          `json:"dimensions"`
	GroupDimensions map[string]DimensionKey `json:"groupDimensions"`
	Questions       []Question              `json:"questions"`
	Options         []ScenarioOption        `json:"options"`
}

// Answer is the value part of a response: Likert for statements, OptionID
// for scenarios. Exactly one of them is set.
type Answer struct {
	Likert   int    `json:"likert,omitempty"`
	OptionID string `json:"optionId,omitempty"`
}

type Response struct {
	QuestionID     string `json:"questionId"`
	Answer         Answer `json:"answer"`
	ResponseTimeMs int    `json:"responseTimeMs"`
}

type DimensionScore struct {
	Dimension  DimensionKey `json:"dimension"`
	Raw        float64      `json:"raw"`
	Max        float64      `json:"max"`
	Normalized float64      `json:"normalized"`
}

// ScoreVector holds one entry per definition dimension, in declaration order.
type ScoreVector struct {
	Scores []DimensionScore `json:"scores"`
}

func (v ScoreVector) Get(d DimensionKey) (DimensionScore, bool) {
	for _, s := range v.Scores {
		if s.Dimension == d {
			return s, true
		}
	}
	return DimensionScore{}, false
}

// HasEvidence reports whether any dimension received a scorable item.
func (v ScoreVector) HasEvidence() bool {
	for _, s := range v.Scores {
		if s.Max > 0 {
			return true
		}
	}
	return false
}

type WarningKind string

const (
	WarningIncomplete     WarningKind = "incomplete"
	WarningStraightLining WarningKind = "straight_lining"
	WarningRushed         WarningKind = "rushed"
)

type ValidityReport struct {
	CompletionRate       float64       `json:"completionRate"`
	ResponseVariance     float64       `json:"responseVariance"`
	AnsweredCount        int           `json:"answeredCount"`
	RequiredCount        int           `json:"requiredCount"`
	MedianResponseTimeMs float64       `json:"medianResponseTimeMs"`
	Warnings             []WarningKind `json:"warnings"`
}

func (r ValidityReport) Has(w WarningKind) bool {
	for _, x := range r.Warnings {
		if x == w {
			return true
		}
	}
	return false
}

type ClassificationResult struct {
	Primary         DimensionKey   `json:"primary"`
	Secondary       []DimensionKey `json:"secondary"`
	TieBreakApplied bool           `json:"tieBreakApplied"`
}

type BlindspotGap struct {
	Dimension  DimensionKey `json:"dimension"`
	Gap        float64      `json:"gap"`
	SelfReport float64      `json:"selfReport"`
	Behavioral float64      `json:"behavioral"`
}

type BlindspotReport struct {
	Index  float64        `json:"index"`
	Ranked []BlindspotGap `json:"ranked"`
}

// Result is the combined structure handed to the narrative collaborator.
// Classification is nil when the definition produced no evidence at all.
type Result struct {
	DefinitionID      string                `json:"definitionId"`
	DefinitionVersion int                   `json:"definitionVersion"`
	Scores            ScoreVector           `json:"scores"`
	Validity          ValidityReport        `json:"validity"`
	Classification    *ClassificationResult `json:"classification"`
	Blindspots        BlindspotReport       `json:"blindspots"`
	InsufficientData  bool                  `json:"insufficientData"`
}
