package repositories

import (
	"context"
	"errors"

	"fieldops/internal/apperrors"
	"fieldops/internal/database"
	. "fieldops/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PendencyCandidate identifies a checklist answer that should have a
// pendency but may not: either freshly inserted during intake or found
// later by the sweep job.
type PendencyCandidate struct {
	AnswerID int
	ShiftID  int
}

type ChecklistRepository interface {
	GetPendencyFlags(ctx context.Context, tx *gorm.DB, optionIDs []int) (map[int]bool, error)
	CreateFilled(ctx context.Context, tx *gorm.DB, checklist *FilledChecklist) error
	CreateAnswers(ctx context.Context, tx *gorm.DB, answers []*ChecklistAnswer) error
	MarkAwaitingPhoto(ctx context.Context, answerID int) error
	FindAnswersMissingPendency(ctx context.Context, limit int) ([]PendencyCandidate, error)
}

type checklistRepository struct {
	db  database.DB
	log logger.Logger
}

func NewChecklistRepository(db database.DB) ChecklistRepository {
	return &checklistRepository{
		db:  db,
		log: logger.New("checklistRepository"),
	}
}

// GetPendencyFlags preloads the pendency-generating flag for every
// distinct option id in one query, so intake never does per-answer
// lookups while holding the coordinator's locks.
func (r *checklistRepository) GetPendencyFlags(
	ctx context.Context,
	tx *gorm.DB,
	optionIDs []int,
) (map[int]bool, error) {
	flags := make(map[int]bool, len(optionIDs))
	if len(optionIDs) == 0 {
		return flags, nil
	}

	var options []ChecklistOption
	if err := tx.WithContext(ctx).
		Select("id", "generates_pendency").
		Where("id IN ?", optionIDs).
		Find(&options).Error; err != nil {
		return nil, r.log.Function("GetPendencyFlags").
			Err("failed to load checklist option flags", err, "optionCount", len(optionIDs))
	}

	for _, option := range options {
		flags[option.ID] = option.GeneratesPendency
	}

	return flags, nil
}

// CreateFilled inserts one checklist header. A replayed client uuid
// hits the unique index and surfaces as a conflict, rolling back the
// whole open.
func (r *checklistRepository) CreateFilled(
	ctx context.Context,
	tx *gorm.DB,
	checklist *FilledChecklist,
) error {
	if err := tx.WithContext(ctx).Create(checklist).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("checklist %s was already submitted", checklist.ClientUUID)
		}
		return r.log.Function("CreateFilled").
			Err("failed to create filled checklist", err, "clientUUID", checklist.ClientUUID)
	}
	return nil
}

// isUniqueViolation reports whether err is a postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *checklistRepository) CreateAnswers(
	ctx context.Context,
	tx *gorm.DB,
	answers []*ChecklistAnswer,
) error {
	if len(answers) == 0 {
		return nil
	}
	if err := tx.WithContext(ctx).Create(&answers).Error; err != nil {
		return r.log.Function("CreateAnswers").
			Err("failed to create checklist answers", err, "count", len(answers))
	}
	return nil
}

// MarkAwaitingPhoto flips the awaiting-photo flag. Called by the async
// processor after a pendency was created, never inside the open
// transaction.
func (r *checklistRepository) MarkAwaitingPhoto(ctx context.Context, answerID int) error {
	if err := r.db.SQLWithContext(ctx).
		Model(&ChecklistAnswer{}).
		Where("id = ?", answerID).
		Update("awaiting_photo", true).Error; err != nil {
		return r.log.Function("MarkAwaitingPhoto").
			Err("failed to mark answer as awaiting photo", err, "answerID", answerID)
	}
	return nil
}

// FindAnswersMissingPendency returns answers whose chosen option
// generates a pendency but which have no pendency row yet. The sweep
// job feeds these back into the processor.
func (r *checklistRepository) FindAnswersMissingPendency(
	ctx context.Context,
	limit int,
) ([]PendencyCandidate, error) {
	var candidates []PendencyCandidate
	err := r.db.SQLWithContext(ctx).
		Table("checklist_answers AS ca").
		Select("ca.id AS answer_id, fc.shift_id AS shift_id").
		Joins("JOIN checklist_options co ON co.id = ca.option_id").
		Joins("JOIN filled_checklists fc ON fc.id = ca.filled_checklist_id").
		Where("co.generates_pendency = true").
		Where("ca.deleted_at IS NULL").
		Where("NOT EXISTS (SELECT 1 FROM pendencies p WHERE p.checklist_answer_id = ca.id AND p.deleted_at IS NULL)").
		Limit(limit).
		Scan(&candidates).Error
	if err != nil {
		return nil, r.log.Function("FindAnswersMissingPendency").
			Err("failed to find answers missing pendency", err)
	}

	return candidates, nil
}
