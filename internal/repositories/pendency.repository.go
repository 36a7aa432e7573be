package repositories

import (
	"context"

	"fieldops/internal/database"
	. "fieldops/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm/clause"
)

type PendencyRepository interface {
	CreateIdempotent(ctx context.Context, answerID, shiftID int, createdBy string) (*Pendency, bool, error)
}

type pendencyRepository struct {
	db  database.DB
	log logger.Logger
}

func NewPendencyRepository(db database.DB) PendencyRepository {
	return &pendencyRepository{
		db:  db,
		log: logger.New("pendencyRepository"),
	}
}

// CreateIdempotent creates the pendency for an answer, or returns the
// existing one when a previous run already created it. The unique index
// on checklist_answer_id plus ON CONFLICT DO NOTHING turns the race
// into a refetch instead of an error. The boolean reports whether this
// call created the row.
func (r *pendencyRepository) CreateIdempotent(
	ctx context.Context,
	answerID, shiftID int,
	createdBy string,
) (*Pendency, bool, error) {
	log := r.log.Function("CreateIdempotent")

	pendency := Pendency{
		ChecklistAnswerID: answerID,
		ShiftID:           shiftID,
		Status:            PendencyStatusOpen,
	}
	pendency.CreatedBy = createdBy
	pendency.UpdatedBy = createdBy

	result := r.db.SQLWithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "checklist_answer_id"}},
			DoNothing: true,
		}).
		Create(&pendency)
	if result.Error != nil {
		return nil, false, log.Err("failed to create pendency", result.Error, "answerID", answerID)
	}

	if result.RowsAffected > 0 {
		return &pendency, true, nil
	}

	// Lost the race with a previous run; use the existing row.
	var existing Pendency
	if err := r.db.SQLWithContext(ctx).
		First(&existing, "checklist_answer_id = ?", answerID).Error; err != nil {
		return nil, false, log.Err("failed to fetch existing pendency", err, "answerID", answerID)
	}

	return &existing, false, nil
}
