package scoring

import (
	"fmt"
	"sort"
)

// QuestionBank is the validated, immutable view of a Definition.
type QuestionBank struct {
	id         string
	version    int
	dimensions []DimensionKey
	dimIndex   map[DimensionKey]int
	groups     map[string]DimensionKey

	questions         []Question
	questionIndex     map[string]int
	options           map[string]ScenarioOption
	optionsByQuestion map[string][]ScenarioOption
	required          int
}

// NewQuestionBank validates def and builds the lookup tables used by the
// scorer. Zero weights default to 1.0; negative weights are rejected.
func NewQuestionBank(def Definition) (*QuestionBank, error) {
	if def.ID == "" {
		return nil, fmt.Errorf("%w: empty definition id", ErrInvalidDefinition)
	}
	if len(def.Dimensions) == 0 {
		return nil, fmt.Errorf("%w: %s declares no dimensions", ErrInvalidDefinition, def.ID)
	}

	b := &QuestionBank{
		id:                def.ID,
		version:           def.Version,
		dimensions:        append([]DimensionKey(nil), def.Dimensions...),
		dimIndex:          make(map[DimensionKey]int, len(def.Dimensions)),
		groups:            make(map[string]DimensionKey, len(def.GroupDimensions)),
		questionIndex:     make(map[string]int, len(def.Questions)),
		options:           make(map[string]ScenarioOption, len(def.Options)),
		optionsByQuestion: make(map[string][]ScenarioOption),
	}

	for i, d := range def.Dimensions {
		if d == "" {
			return nil, fmt.Errorf("%w: empty dimension key", ErrInvalidDefinition)
		}
		if _, dup := b.dimIndex[d]; dup {
			return nil, fmt.Errorf("%w: duplicate dimension %q", ErrInvalidDefinition, d)
		}
		b.dimIndex[d] = i
	}

	for group, d := range def.GroupDimensions {
		if _, ok := b.dimIndex[d]; !ok {
			return nil, fmt.Errorf("%w: group %q maps to undeclared dimension %q", ErrInvalidDefinition, group, d)
		}
		b.groups[group] = d
	}

	if err := b.loadQuestions(def.Questions); err != nil {
		return nil, err
	}
	if err := b.loadOptions(def.Options); err != nil {
		return nil, err
	}

	for _, q := range b.questions {
		if q.Kind == KindScenario && len(b.optionsByQuestion[q.ID]) == 0 {
			return nil, fmt.Errorf("%w: scenario %q has no options", ErrInvalidDefinition, q.ID)
		}
	}

	return b, nil
}

func (b *QuestionBank) loadQuestions(questions []Question) error {
	qs := append([]Question(nil), questions...)
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].OrderPosition < qs[j].OrderPosition })

	for i := range qs {
		q := &qs[i]
		if q.ID == "" {
			return fmt.Errorf("%w: question without id", ErrInvalidDefinition)
		}
		if _, dup := b.questionIndex[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question %q", ErrInvalidDefinition, q.ID)
		}
		if !q.Kind.Valid() {
			return fmt.Errorf("%w: question %q has kind %q", ErrInvalidDefinition, q.ID, q.Kind)
		}
		if q.Kind == KindScenario && q.IsReverseScored {
			return fmt.Errorf("%w: scenario %q cannot be reverse scored", ErrInvalidDefinition, q.ID)
		}
		// positions must run 1..n without gaps
		if q.OrderPosition != i+1 {
			return fmt.Errorf("%w: question %q at position %d, want %d", ErrInvalidDefinition, q.ID, q.OrderPosition, i+1)
		}
		w, err := normalizeWeight(q.Weight)
		if err != nil {
			return fmt.Errorf("question %q: %w", q.ID, err)
		}
		q.Weight = w

		b.questionIndex[q.ID] = i
		if !q.Optional {
			b.required++
		}
	}
	b.questions = qs
	return nil
}

func (b *QuestionBank) loadOptions(options []ScenarioOption) error {
	positions := make(map[string]map[int]bool)
	for _, o := range options {
		if o.ID == "" {
			return fmt.Errorf("%w: option without id", ErrInvalidDefinition)
		}
		if _, dup := b.options[o.ID]; dup {
			return fmt.Errorf("%w: duplicate option %q", ErrInvalidDefinition, o.ID)
		}
		q, ok := b.Question(o.QuestionID)
		if !ok {
			return fmt.Errorf("%w: option %q references unknown question %q", ErrInvalidDefinition, o.ID, o.QuestionID)
		}
		if q.Kind != KindScenario {
			return fmt.Errorf("%w: option %q attached to statement %q", ErrInvalidDefinition, o.ID, q.ID)
		}
		seen := positions[o.QuestionID]
		if seen == nil {
			seen = make(map[int]bool)
			positions[o.QuestionID] = seen
		}
		if seen[o.OrderPosition] {
			return fmt.Errorf("%w: option position %d repeated in %q", ErrInvalidDefinition, o.OrderPosition, o.QuestionID)
		}
		seen[o.OrderPosition] = true

		dims := make([]DimensionKey, 0, len(o.Dimensions))
		dimSeen := make(map[DimensionKey]bool, len(o.Dimensions))
		for _, d := range o.Dimensions {
			if _, ok := b.dimIndex[d]; !ok {
				return fmt.Errorf("%w: option %q tags undeclared dimension %q", ErrInvalidDefinition, o.ID, d)
			}
			if dimSeen[d] {
				continue
			}
			dimSeen[d] = true
			dims = append(dims, d)
		}
		o.Dimensions = dims

		w, err := normalizeWeight(o.Weight)
		if err != nil {
			return fmt.Errorf("option %q: %w", o.ID, err)
		}
		o.Weight = w

		b.options[o.ID] = o
		b.optionsByQuestion[o.QuestionID] = append(b.optionsByQuestion[o.QuestionID], o)
	}

	for qid := range b.optionsByQuestion {
		opts := b.optionsByQuestion[qid]
		sort.Slice(opts, func(i, j int) bool { return opts[i].OrderPosition < opts[j].OrderPosition })
	}
	return nil
}

func normalizeWeight(w float64) (float64, error) {
	if w < 0 {
		return 0, fmt.Errorf("%w: negative weight %v", ErrInvalidDefinition, w)
	}
	if w == 0 {
		return 1.0, nil
	}
	return w, nil
}

func (b *QuestionBank) ID() string   { return b.id }
func (b *QuestionBank) Version() int { return b.version }

// Dimensions returns the dimension keys in declaration order.
func (b *QuestionBank) Dimensions() []DimensionKey {
	return append([]DimensionKey(nil), b.dimensions...)
}

// Questions returns all questions ordered by position.
func (b *QuestionBank) Questions() []Question {
	return append([]Question(nil), b.questions...)
}

func (b *QuestionBank) Question(id string) (Question, bool) {
	i, ok := b.questionIndex[id]
	if !ok {
		return Question{}, false
	}
	return b.questions[i], true
}

func (b *QuestionBank) Option(id string) (ScenarioOption, bool) {
	o, ok := b.options[id]
	return o, ok
}

func (b *QuestionBank) Options(questionID string) []ScenarioOption {
	return append([]ScenarioOption(nil), b.optionsByQuestion[questionID]...)
}

func (b *QuestionBank) RequiredCount() int { return b.required }

// DimensionFor resolves a statement's dimension group. Groups without a
// mapping are display-only and do not contribute to any score.
func (b *QuestionBank) DimensionFor(group string) (DimensionKey, bool) {
	d, ok := b.groups[group]
	return d, ok
}

func (b *QuestionBank) declarationIndex(d DimensionKey) int {
	if i, ok := b.dimIndex[d]; ok {
		return i
	}
	return len(b.dimensions)
}

// ValidateResponse checks that r fits the shape of its question.
func (b *QuestionBank) ValidateResponse(r Response) error {
	q, ok := b.Question(r.QuestionID)
	if !ok {
		return fmt.Errorf("%w: %q not in definition %s", ErrUnknownQuestion, r.QuestionID, b.id)
	}
	if r.ResponseTimeMs < 0 {
		return fmt.Errorf("%w: negative response time", ErrMalformedResponse)
	}

	switch q.Kind {
	case KindStatement:
		if r.Answer.OptionID != "" {
			return fmt.Errorf("%w: statement %q takes a likert value, not an option", ErrMalformedResponse, q.ID)
		}
		if r.Answer.Likert < LikertMin || r.Answer.Likert > LikertMax {
			return fmt.Errorf("%w: likert value %d outside [%d,%d]", ErrMalformedResponse, r.Answer.Likert, LikertMin, LikertMax)
		}
	case KindScenario:
		if r.Answer.Likert != 0 {
			return fmt.Errorf("%w: scenario %q takes an option, not a likert value", ErrMalformedResponse, q.ID)
		}
		o, ok := b.Option(r.Answer.OptionID)
		if !ok || o.QuestionID != q.ID {
			return fmt.Errorf("%w: option %q does not belong to %q", ErrMalformedResponse, r.Answer.OptionID, q.ID)
		}
	}
	return nil
}

// latestResponses keeps the last response per known question and orders the
// result by question position, so float accumulation order never depends on
// the order responses arrived in.
func (b *QuestionBank) latestResponses(responses []Response) []Response {
	latest := make(map[string]Response, len(responses))
	for _, r := range responses {
		if _, ok := b.questionIndex[r.QuestionID]; !ok {
			continue
		}
		latest[r.QuestionID] = r
	}
	out := make([]Response, 0, len(latest))
	for _, q := range b.questions {
		if r, ok := latest[q.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}
