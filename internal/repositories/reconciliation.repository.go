package repositories

import (
	"context"
	"errors"
	"time"

	"fieldops/internal/database"
	. "fieldops/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type ReconciliationRepository interface {
	CreateWithWorkers(ctx context.Context, record *ReconciliationRecord, assignments []ReconciliationWorkerAssignment) error
	FindOpenByShiftID(ctx context.Context, shiftID int) (*ReconciliationRecord, error)
	FindOpenByTeamAndDay(ctx context.Context, teamID int, referenceDay time.Time) (*ReconciliationRecord, error)
	CloseRecord(ctx context.Context, record *ReconciliationRecord, closedAt time.Time) error
}

type reconciliationRepository struct {
	db  database.DB
	log logger.Logger
}

func NewReconciliationRepository(db database.DB) ReconciliationRepository {
	return &reconciliationRepository{
		db:  db,
		log: logger.New("reconciliationRepository"),
	}
}

// CreateWithWorkers persists a record and its worker assignment rows in
// one short transaction of its own, decoupled from the shift
// transaction that already committed.
func (r *reconciliationRepository) CreateWithWorkers(
	ctx context.Context,
	record *ReconciliationRecord,
	assignments []ReconciliationWorkerAssignment,
) error {
	log := r.log.Function("CreateWithWorkers")

	err := r.db.SQLWithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		for i := range assignments {
			assignments[i].RecordID = record.ID
		}
		if len(assignments) > 0 {
			if err := tx.Create(&assignments).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return log.Err("failed to create reconciliation record", err,
			"teamID", record.TeamID, "shiftID", record.ShiftID)
	}

	return nil
}

func (r *reconciliationRepository) FindOpenByShiftID(
	ctx context.Context,
	shiftID int,
) (*ReconciliationRecord, error) {
	var record ReconciliationRecord
	err := r.db.SQLWithContext(ctx).
		Preload("WorkerAssignments").
		Where("shift_id = ? AND closed_at IS NULL", shiftID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, r.log.Function("FindOpenByShiftID").
			Err("failed to find reconciliation record by shift", err, "shiftID", shiftID)
	}
	return &record, nil
}

// FindOpenByTeamAndDay is the legacy fallback for records lacking the
// shift back-reference. Among multiple candidates the most recently
// opened wins, with id as a deterministic tie-break.
func (r *reconciliationRepository) FindOpenByTeamAndDay(
	ctx context.Context,
	teamID int,
	referenceDay time.Time,
) (*ReconciliationRecord, error) {
	var record ReconciliationRecord
	err := r.db.SQLWithContext(ctx).
		Preload("WorkerAssignments").
		Where("team_id = ? AND reference_day = ? AND closed_at IS NULL", teamID, referenceDay).
		Order("opened_at DESC, id DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, r.log.Function("FindOpenByTeamAndDay").
			Err("failed to find reconciliation record by team and day", err,
				"teamID", teamID, "referenceDay", referenceDay)
	}
	return &record, nil
}

// CloseRecord marks the record and all its worker assignment rows as
// closed in one transaction.
func (r *reconciliationRepository) CloseRecord(
	ctx context.Context,
	record *ReconciliationRecord,
	closedAt time.Time,
) error {
	log := r.log.Function("CloseRecord")

	err := r.db.SQLWithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&ReconciliationRecord{}).
			Where("id = ? AND closed_at IS NULL", record.ID).
			Update("closed_at", closedAt).Error; err != nil {
			return err
		}
		return tx.Model(&ReconciliationWorkerAssignment{}).
			Where("record_id = ? AND closed_at IS NULL", record.ID).
			Update("closed_at", closedAt).Error
	})
	if err != nil {
		return log.Err("failed to close reconciliation record", err, "recordID", record.ID)
	}

	return nil
}
