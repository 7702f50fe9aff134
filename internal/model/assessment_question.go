package model

import (
	"encoding/json"
	"fmt"

	"dating_scan_backend/internal/scoring"

	"gorm.io/datatypes"
)

// swagger:model AssessmentQuestion
type AssessmentQuestion struct {
	ID              string           `gorm:"primaryKey;type:varchar(64)" json:"id"`
	DefinitionID    string           `gorm:"type:varchar(64);not null;uniqueIndex:idx_definition_position" json:"definitionId"`
	Kind            string           `gorm:"size:20;not null" json:"kind"` // statement, scenario
	Text            string           `gorm:"type:text;not null" json:"text"`
	DimensionGroup  string           `gorm:"size:64" json:"-"`
	IsReverseScored bool             `gorm:"default:false" json:"-"`
	Weight          float64          `gorm:"default:1" json:"-"`
	OrderPosition   int              `gorm:"not null;uniqueIndex:idx_definition_position" json:"orderPosition"`
	Optional        bool             `gorm:"default:false" json:"optional"`
	Options         []ScenarioOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
	Timestamps
}

func (AssessmentQuestion) TableName() string {
	return "assessment_questions"
}

func (q *AssessmentQuestion) ToScoring() scoring.Question {
	return scoring.Question{
		ID:              q.ID,
		Kind:            scoring.QuestionKind(q.Kind),
		Text:            q.Text,
		DimensionGroup:  q.DimensionGroup,
		IsReverseScored: q.IsReverseScored,
		Weight:          q.Weight,
		OrderPosition:   q.OrderPosition,
		Optional:        q.Optional,
	}
}

// swagger:model ScenarioOption
type ScenarioOption struct {
	ID            string         `gorm:"primaryKey;type:varchar(64)" json:"id"`
	QuestionID    string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_question_position" json:"questionId"`
	Text          string         `gorm:"type:text;not null" json:"text"`
	Dimensions    datatypes.JSON `json:"-"`
	Weight        float64        `gorm:"default:1" json:"-"`
	OrderPosition int            `gorm:"not null;uniqueIndex:idx_question_position" json:"orderPosition"`
	Timestamps
}

func (ScenarioOption) TableName() string {
	return "scenario_options"
}

func (o *ScenarioOption) ToScoring() (scoring.ScenarioOption, error) {
	so := scoring.ScenarioOption{
		ID:            o.ID,
		QuestionID:    o.QuestionID,
		Text:          o.Text,
		Weight:        o.Weight,
		OrderPosition: o.OrderPosition,
	}
	if len(o.Dimensions) > 0 {
		if err := json.Unmarshal(o.Dimensions, &so.Dimensions); err != nil {
			return so, fmt.Errorf("option %s dimensions: %w", o.ID, err)
		}
	}
	return so, nil
}
