package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChecklistOption is one selectable answer for a checklist question.
// GeneratesPendency marks options whose selection requires follow-up
// remediation evidence.
type ChecklistOption struct {
	BaseModel
	QuestionID        int    `gorm:"not null;index"         json:"questionId"`
	Label             string `gorm:"size:128"               json:"label"`
	GeneratesPendency bool   `gorm:"not null;default:false" json:"generatesPendency"`
}

// FilledChecklist is the header row for one checklist submitted during
// shift open. ClientUUID is generated client-side so offline devices
// can submit without coordinating ids; the unique index rejects replays.
type FilledChecklist struct {
	BaseModel
	ShiftID          int            `gorm:"not null;index"            json:"shiftId"`
	ChecklistModelID int            `gorm:"not null"                  json:"checklistModelId"`
	WorkerID         int            `gorm:"not null"                  json:"workerId"`
	ClientUUID       uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"clientUuid"`
	Coordinates      datatypes.JSON `                                 json:"coordinates"`

	Answers []ChecklistAnswer `gorm:"foreignKey:FilledChecklistID" json:"answers,omitempty"`
}

// ChecklistAnswer is never mutated after intake except for the single
// AwaitingPhoto flip performed by the pendency processor.
type ChecklistAnswer struct {
	BaseModel
	FilledChecklistID int       `gorm:"not null;index"         json:"filledChecklistId"`
	QuestionID        int       `gorm:"not null"               json:"questionId"`
	OptionID          int       `gorm:"not null;index"         json:"optionId"`
	AnsweredAt        time.Time `gorm:"not null"               json:"answeredAt"`
	AwaitingPhoto     bool      `gorm:"not null;default:false" json:"awaitingPhoto"`
	SyncedPhotoCount  int       `gorm:"not null;default:0"     json:"syncedPhotoCount"`

	Option ChecklistOption `gorm:"foreignKey:OptionID" json:"-"`
}
