package initialize

import (
	"fieldops/config"
	. "fieldops/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

func InitializeTables(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing essential production data")

	if err := initializeChecklistOptions(db, log); err != nil {
		return log.Err("failed to initialize checklist options", err)
	}

	log.Info("Table initialization complete")
	return nil
}

func initializeChecklistOptions(db *gorm.DB, log logger.Logger) error {
	log.Info("Initializing checklist option reference data")

	options := getChecklistOptionsData()

	for _, option := range options {
		var existing ChecklistOption
		if err := db.First(&existing, "question_id = ? AND label = ?", option.QuestionID, option.Label).Error; err == nil {
			log.Debug("Checklist option already exists", "questionId", option.QuestionID, "label", option.Label)
			continue
		}
		log.Info("Initializing checklist option", "questionId", option.QuestionID, "label", option.Label)
		if err := db.Create(&option).Error; err != nil {
			return log.Err(
				"failed to create checklist option",
				err,
				"questionId",
				option.QuestionID,
				"label",
				option.Label,
			)
		}
	}

	log.Info("Checklist option reference data initialized", "count", len(options))
	return nil
}

// getChecklistOptionsData returns the vehicle departure checklist answer
// options. Options that flag a defect generate a pendency when selected.
func getChecklistOptionsData() []ChecklistOption {
	return []ChecklistOption{
		// Question 1: tires
		{QuestionID: 1, Label: "Good condition", GeneratesPendency: false},
		{QuestionID: 1, Label: "Worn tread", GeneratesPendency: true},
		{QuestionID: 1, Label: "Visible damage", GeneratesPendency: true},

		// Question 2: lights and signals
		{QuestionID: 2, Label: "All working", GeneratesPendency: false},
		{QuestionID: 2, Label: "One or more out", GeneratesPendency: true},

		// Question 3: fluid levels
		{QuestionID: 3, Label: "Within range", GeneratesPendency: false},
		{QuestionID: 3, Label: "Below minimum", GeneratesPendency: true},

		// Question 4: bodywork
		{QuestionID: 4, Label: "No new damage", GeneratesPendency: false},
		{QuestionID: 4, Label: "New dents or scratches", GeneratesPendency: true},

		// Question 5: safety equipment
		{QuestionID: 5, Label: "Complete", GeneratesPendency: false},
		{QuestionID: 5, Label: "Missing items", GeneratesPendency: true},

		// Question 6: documentation
		{QuestionID: 6, Label: "Present and valid", GeneratesPendency: false},
		{QuestionID: 6, Label: "Missing or expired", GeneratesPendency: true},
	}
}
