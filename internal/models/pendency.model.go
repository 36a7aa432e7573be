package models

type PendencyStatus string

const (
	PendencyStatusOpen     PendencyStatus = "OPEN"
	PendencyStatusResolved PendencyStatus = "RESOLVED"
)

// Pendency is the follow-up record for a checklist answer whose chosen
// option generates one. The unique index on ChecklistAnswerID is what
// makes the async processor idempotent; duplicate creation attempts
// collapse into the existing row instead of erroring.
type Pendency struct {
	BaseModel
	ChecklistAnswerID int            `gorm:"not null;uniqueIndex"          json:"checklistAnswerId"`
	ShiftID           int            `gorm:"not null;index"                json:"shiftId"`
	Status            PendencyStatus `gorm:"size:16;not null;default:OPEN" json:"status"`

	ChecklistAnswer ChecklistAnswer `gorm:"foreignKey:ChecklistAnswerID" json:"-"`
}
