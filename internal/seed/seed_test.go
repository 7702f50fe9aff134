package seed_test

import (
	"testing"

	"dating_scan_backend/internal/model"
	"dating_scan_backend/internal/scoring"
	"dating_scan_backend/internal/seed"
	"dating_scan_backend/internal/testutil"
)

func TestDefinitionsBuildValidBanks(t *testing.T) {
	want := map[string]struct{ questions, dims int }{
		seed.DatingStyleID:     {16, 6},
		seed.AttachmentStyleID: {14, 4},
	}
	for _, def := range seed.Definitions() {
		sd, err := def.ToScoring()
		if err != nil {
			t.Fatalf("%s: ToScoring: %v", def.ID, err)
		}
		bank, err := scoring.NewQuestionBank(sd)
		if err != nil {
			t.Fatalf("%s: NewQuestionBank: %v", def.ID, err)
		}
		w := want[def.ID]
		if len(bank.Questions()) != w.questions || len(bank.Dimensions()) != w.dims {
			t.Fatalf("%s: %d questions / %d dims, want %d / %d",
				def.ID, len(bank.Questions()), len(bank.Dimensions()), w.questions, w.dims)
		}
		if bank.RequiredCount() != w.questions {
			t.Fatalf("%s: required = %d, want %d", def.ID, bank.RequiredCount(), w.questions)
		}
	}
}

func TestInstallIsIdempotent(t *testing.T) {
	db := testutil.OpenDB(t)

	for i := 0; i < 2; i++ {
		if err := seed.Install(db); err != nil {
			t.Fatalf("Install #%d: %v", i+1, err)
		}
	}

	var defs, questions, options int64
	db.Model(&model.AssessmentDefinition{}).Count(&defs)
	db.Model(&model.AssessmentQuestion{}).Count(&questions)
	db.Model(&model.ScenarioOption{}).Count(&options)
	if defs != 2 || questions != 30 {
		t.Fatalf("counts = %d definitions, %d questions, want 2 and 30", defs, questions)
	}
	if options != 27 {
		t.Fatalf("options = %d, want 27", options)
	}

	var snapshots int64
	db.Model(&model.DefinitionSnapshot{}).Count(&snapshots)
	if snapshots != 2 {
		t.Fatalf("snapshots = %d, want one per definition", snapshots)
	}
}

func TestInstallUpgradesOlderVersion(t *testing.T) {
	db := testutil.OpenDB(t)
	if err := seed.Install(db); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if err := db.Model(&model.AssessmentDefinition{}).
		Where("id = ?", seed.DatingStyleID).
		Update("version", 0).Error; err != nil {
		t.Fatalf("downgrade: %v", err)
	}
	if err := seed.Install(db); err != nil {
		t.Fatalf("reinstall: %v", err)
	}

	var def model.AssessmentDefinition
	if err := db.Preload("Questions.Options").First(&def, "id = ?", seed.DatingStyleID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if def.Version != 1 || len(def.Questions) != 16 {
		t.Fatalf("definition = v%d with %d questions, want v1 with 16", def.Version, len(def.Questions))
	}

	// the outgoing version was frozen before its questions were replaced
	var snap model.DefinitionSnapshot
	if err := db.First(&snap, "definition_id = ? AND version = ?", seed.DatingStyleID, 0).Error; err != nil {
		t.Fatalf("snapshot of v0: %v", err)
	}
	sd, err := snap.ToScoring()
	if err != nil {
		t.Fatalf("ToScoring: %v", err)
	}
	if sd.Version != 0 || len(sd.Questions) != 16 {
		t.Fatalf("snapshot = v%d with %d questions, want v0 with 16", sd.Version, len(sd.Questions))
	}
}
