package repositories

import (
	"context"
	"errors"
	"sort"

	"fieldops/internal/apperrors"
	"fieldops/internal/database"
	. "fieldops/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResourceRepository is the lock gate. It acquires row-level exclusive
// locks on the vehicle, team, and worker rows referenced by an open
// request, always in the same order, so two transactions touching
// overlapping resource sets can never form a lock cycle. Locks are held
// until the enclosing transaction commits or rolls back.
type ResourceRepository interface {
	LockForShiftOpen(ctx context.Context, tx *gorm.DB, vehicleID, teamID int, workerIDs []int) error
}

type resourceRepository struct {
	db  database.DB
	log logger.Logger
}

func NewResourceRepository(db database.DB) ResourceRepository {
	return &resourceRepository{
		db:  db,
		log: logger.New("resourceRepository"),
	}
}

// LockForShiftOpen locks vehicle, then team, then workers in ascending
// id order. Must be called with the coordinator's transaction.
func (r *resourceRepository) LockForShiftOpen(
	ctx context.Context,
	tx *gorm.DB,
	vehicleID, teamID int,
	workerIDs []int,
) error {
	log := r.log.Function("LockForShiftOpen")

	var vehicle Vehicle
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&vehicle, "id = ?", vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("vehicle", vehicleID)
		}
		return log.Err("failed to lock vehicle", err, "vehicleID", vehicleID)
	}

	var team Team
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&team, "id = ?", teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("team", teamID)
		}
		return log.Err("failed to lock team", err, "teamID", teamID)
	}

	sorted := make([]int, len(workerIDs))
	copy(sorted, workerIDs)
	sort.Ints(sorted)

	var workers []Worker
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", sorted).
		Order("id ASC").
		Find(&workers).Error; err != nil {
		return log.Err("failed to lock workers", err, "workerIDs", sorted)
	}

	if len(workers) != len(sorted) {
		found := make(map[int]bool, len(workers))
		for _, w := range workers {
			found[w.ID] = true
		}
		for _, id := range sorted {
			if !found[id] {
				return apperrors.NotFound("worker", id)
			}
		}
	}

	return nil
}
