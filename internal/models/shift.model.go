package models

import (
	"time"

	"fieldops/internal/apperrors"

	"github.com/shopspring/decimal"
)

type ShiftStatus string

const (
	ShiftStatusOpen   ShiftStatus = "OPEN"
	ShiftStatusClosed ShiftStatus = "CLOSED"
)

// Shift is a work period tying one vehicle, one team, and N workers
// together. Open/Closed is an explicit status column rather than the
// nullability of EndTime; EndTime stays nullable only because a closed
// shift is the single place it is ever set.
type Shift struct {
	BaseModel
	VehicleID     int             `gorm:"not null;index"                json:"vehicleId"`
	TeamID        int             `gorm:"not null;index"                json:"teamId"`
	Status        ShiftStatus     `gorm:"size:16;not null;default:OPEN" json:"status"`
	StartTime     time.Time       `gorm:"not null;index"                json:"startTime"`
	EndTime       *time.Time      `                                     json:"endTime"`
	StartOdometer decimal.Decimal `gorm:"type:numeric(10,1);not null"   json:"startOdometer"`
	EndOdometer   *decimal.Decimal `gorm:"type:numeric(10,1)"           json:"endOdometer"`
	DeviceID      string          `gorm:"size:64"                       json:"deviceId"`

	Vehicle     Vehicle                 `gorm:"foreignKey:VehicleID" json:"-"`
	Team        Team                    `gorm:"foreignKey:TeamID"    json:"-"`
	Assignments []ShiftWorkerAssignment `gorm:"foreignKey:ShiftID"   json:"assignments,omitempty"`
}

// ShiftWorkerAssignment links a worker to a shift. Created atomically
// with the shift and immutable afterward.
type ShiftWorkerAssignment struct {
	BaseModel
	ShiftID  int  `gorm:"not null;index:idx_shift_worker,unique" json:"shiftId"`
	WorkerID int  `gorm:"not null;index:idx_shift_worker,unique" json:"workerId"`
	IsDriver bool `gorm:"not null;default:false"                 json:"isDriver"`

	Worker Worker `gorm:"foreignKey:WorkerID" json:"-"`
}

func (s *Shift) IsOpen() bool {
	return s.Status == ShiftStatusOpen
}

// Close performs the only forward transition the state machine allows.
// Re-closing is the caller's idempotent no-op case and is reported via
// ErrConflict so the service can distinguish it from a genuine failure.
func (s *Shift) Close(endTime time.Time, endOdometer decimal.Decimal) error {
	if s.Status == ShiftStatusClosed {
		return apperrors.Conflict("shift %d is already closed", s.ID)
	}
	if !endTime.After(s.StartTime) {
		return apperrors.Validation(
			"endTime %s must be after startTime %s",
			endTime.Format(time.RFC3339),
			s.StartTime.Format(time.RFC3339),
		)
	}
	if endOdometer.LessThanOrEqual(s.StartOdometer) {
		return apperrors.Validation(
			"endOdometer %s must be greater than startOdometer %s",
			endOdometer.String(),
			s.StartOdometer.String(),
		)
	}

	s.Status = ShiftStatusClosed
	s.EndTime = &endTime
	s.EndOdometer = &endOdometer
	return nil
}

// ReferenceDay returns the half-open calendar-day window derived from
// the shift start time, used to scope conflict detection.
func ReferenceDay(startTime time.Time) (time.Time, time.Time) {
	t := startTime.UTC()
	dayStart := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return dayStart, dayStart.Add(24 * time.Hour)
}
