package seed

import (
	"errors"
	"fmt"

	"dating_scan_backend/internal/model"
	"dating_scan_backend/internal/scoring"
	"dating_scan_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Install writes the built-in definitions. Missing definitions are created;
// a stored definition with an older version has its questions replaced.
// Every definition is checked by the scoring engine before it is written,
// and each version's descriptor is kept as a snapshot so attempts started
// on an older version stay scorable.
func Install(db *gorm.DB) error {
	for _, def := range Definitions() {
		sd, err := check(def)
		if err != nil {
			return err
		}
		if err := install(db, def, sd); err != nil {
			return fmt.Errorf("seed %s: %w", def.ID, err)
		}
	}
	return nil
}

func check(def model.AssessmentDefinition) (scoring.Definition, error) {
	sd, err := def.ToScoring()
	if err != nil {
		return sd, err
	}
	_, err = scoring.NewQuestionBank(sd)
	return sd, err
}

func saveSnapshot(tx *gorm.DB, sd scoring.Definition) error {
	snap, err := model.NewDefinitionSnapshot(sd)
	if err != nil {
		return err
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(snap).Error
}

func install(db *gorm.DB, def model.AssessmentDefinition, sd scoring.Definition) error {
	var existing model.AssessmentDefinition
	err := db.Preload("Questions").Preload("Questions.Options").First(&existing, "id = ?", def.ID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&def).Error; err != nil {
				return err
			}
			return saveSnapshot(tx, sd)
		})
		if err != nil {
			return err
		}
		logger.Log.Info("Seeded assessment definition",
			zap.String("definition", def.ID),
			zap.Int("version", def.Version),
			zap.Int("questions", len(def.Questions)))
		return nil
	case err != nil:
		return err
	case existing.Version >= def.Version:
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		// keep the outgoing version scorable before its questions go away
		previous, err := existing.ToScoring()
		if err != nil {
			return err
		}
		if err := saveSnapshot(tx, previous); err != nil {
			return err
		}

		var questionIDs []string
		if err := tx.Model(&model.AssessmentQuestion{}).
			Where("definition_id = ?", def.ID).
			Pluck("id", &questionIDs).Error; err != nil {
			return err
		}
		if len(questionIDs) > 0 {
			if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.ScenarioOption{}).Error; err != nil {
				return err
			}
			if err := tx.Where("definition_id = ?", def.ID).Delete(&model.AssessmentQuestion{}).Error; err != nil {
				return err
			}
		}

		questions := def.Questions
		def.Questions = nil
		if err := tx.Save(&def).Error; err != nil {
			return err
		}
		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}
		if err := saveSnapshot(tx, sd); err != nil {
			return err
		}
		logger.Log.Info("Upgraded assessment definition",
			zap.String("definition", def.ID),
			zap.Int("from", existing.Version),
			zap.Int("to", def.Version))
		return nil
	})
}
