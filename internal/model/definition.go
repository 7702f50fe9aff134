package model

import (
	"encoding/json"
	"fmt"
	"time"

	"dating_scan_backend/internal/scoring"

	"gorm.io/datatypes"
)

// swagger:model AssessmentDefinition
type AssessmentDefinition struct {
	ID          string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Version     int    `gorm:"default:1" json:"version"`
	// ordered list of dimension keys
	Dimensions datatypes.JSON `json:"dimensions" swaggertype:"array,string"`
	// dimension group -> dimension key
	GroupDimensions datatypes.JSON       `json:"-"`
	IsPublished     bool                 `gorm:"default:true" json:"isPublished"`
	Questions       []AssessmentQuestion `gorm:"foreignKey:DefinitionID" json:"-"`
	Timestamps
}

func (AssessmentDefinition) TableName() string {
	return "assessment_definitions"
}

// DimensionKeys decodes the ordered dimension list.
func (d *AssessmentDefinition) DimensionKeys() ([]scoring.DimensionKey, error) {
	var keys []scoring.DimensionKey
	if len(d.Dimensions) == 0 {
		return keys, nil
	}
	if err := json.Unmarshal(d.Dimensions, &keys); err != nil {
		return nil, fmt.Errorf("definition %s dimensions: %w", d.ID, err)
	}
	return keys, nil
}

// ToScoring converts a definition loaded with Questions.Options into the
// engine descriptor.
func (d *AssessmentDefinition) ToScoring() (scoring.Definition, error) {
	def := scoring.Definition{ID: d.ID, Version: d.Version}

	dims, err := d.DimensionKeys()
	if err != nil {
		return def, err
	}
	def.Dimensions = dims

	if len(d.GroupDimensions) > 0 {
		if err := json.Unmarshal(d.GroupDimensions, &def.GroupDimensions); err != nil {
			return def, fmt.Errorf("definition %s group dimensions: %w", d.ID, err)
		}
	}

	for _, q := range d.Questions {
		def.Questions = append(def.Questions, q.ToScoring())
		for _, o := range q.Options {
			so, err := o.ToScoring()
			if err != nil {
				return def, err
			}
			def.Options = append(def.Options, so)
		}
	}
	return def, nil
}

// DefinitionSnapshot freezes the scoring descriptor of one definition
// version. Attempts keep being scored against the version they started on.
type DefinitionSnapshot struct {
	DefinitionID string         `gorm:"primaryKey;type:varchar(64)" json:"definitionId"`
	Version      int            `gorm:"primaryKey;autoIncrement:false" json:"version"`
	Payload      datatypes.JSON `gorm:"not null" json:"-"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func (DefinitionSnapshot) TableName() string {
	return "definition_snapshots"
}

func NewDefinitionSnapshot(def scoring.Definition) (*DefinitionSnapshot, error) {
	payload, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s v%d: %w", def.ID, def.Version, err)
	}
	return &DefinitionSnapshot{
		DefinitionID: def.ID,
		Version:      def.Version,
		Payload:      datatypes.JSON(payload),
	}, nil
}

func (s *DefinitionSnapshot) ToScoring() (scoring.Definition, error) {
	var def scoring.Definition
	if err := json.Unmarshal(s.Payload, &def); err != nil {
		return def, fmt.Errorf("snapshot %s v%d: %w", s.DefinitionID, s.Version, err)
	}
	return def, nil
}

// MustJSON encodes seed values; it panics because seed data is static.
func MustJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(b)
}
