package model

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&AssessmentDefinition{},
		&AssessmentQuestion{},
		&ScenarioOption{},
		&DefinitionSnapshot{},
		&Assessment{},
		&AssessmentResponse{},
		&AssessmentResult{},
		&RetakeProgress{},
	}
}
