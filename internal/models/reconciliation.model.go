package models

import "time"

// ReconciliationRecord mirrors a shift's open/close for downstream
// attendance and scheduling reconciliation. It is bookkeeping, never
// authoritative over the shift itself: both its creation and its close
// happen outside the shift transaction and are allowed to fail without
// affecting it.
//
// ShiftID is nullable because records created before the back-reference
// existed can only be matched by (team, reference day).
type ReconciliationRecord struct {
	BaseModel
	TeamID       int        `gorm:"not null;index:idx_recon_team_day" json:"teamId"`
	ReferenceDay time.Time  `gorm:"not null;index:idx_recon_team_day" json:"referenceDay"`
	ShiftID      *int       `gorm:"index"                             json:"shiftId"`
	OpenedAt     time.Time  `gorm:"not null"                          json:"openedAt"`
	ClosedAt     *time.Time `                                         json:"closedAt"`

	WorkerAssignments []ReconciliationWorkerAssignment `gorm:"foreignKey:RecordID" json:"workerAssignments,omitempty"`
}

type ReconciliationWorkerAssignment struct {
	BaseModel
	RecordID int        `gorm:"not null;index" json:"recordId"`
	WorkerID int        `gorm:"not null"       json:"workerId"`
	DeviceID string     `gorm:"size:64"        json:"deviceId"`
	OpenedAt time.Time  `gorm:"not null"       json:"openedAt"`
	ClosedAt *time.Time `                      json:"closedAt"`
}

func (r *ReconciliationRecord) IsOpen() bool {
	return r.ClosedAt == nil
}
