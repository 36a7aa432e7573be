package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldops/internal/apperrors"
	"fieldops/internal/database"
	. "fieldops/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	SHIFT_CACHE_EXPIRY         = 15 * time.Minute
	SHIFT_CACHE_PREFIX         = "shift:"
	ACTIVE_VEHICLE_CACHE_PREFIX = "vehicle-active:"
)

type ShiftRepository interface {
	FindOpenConflict(ctx context.Context, tx *gorm.DB, vehicleID, teamID int, workerIDs []int, dayStart, dayEnd time.Time) (*Shift, error)
	Create(ctx context.Context, tx *gorm.DB, shift *Shift) error
	CreateAssignments(ctx context.Context, tx *gorm.DB, assignments []ShiftWorkerAssignment) error
	GetByID(ctx context.Context, id int) (*Shift, error)
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id int) (*Shift, error)
	GetActiveByVehicle(ctx context.Context, vehicleID int) (*Shift, error)
	Save(ctx context.Context, tx *gorm.DB, shift *Shift) error
	InvalidateCache(ctx context.Context, shift *Shift)
}

type shiftRepository struct {
	db  database.DB
	log logger.Logger
}

func NewShiftRepository(db database.DB) ShiftRepository {
	return &shiftRepository{
		db:  db,
		log: logger.New("shiftRepository"),
	}
}

// FindOpenConflict returns any open shift in the reference-day window
// that shares the vehicle, the team, or any of the workers. Sharing any
// one resource is a conflict. Returns nil when no conflict exists.
//
// The caller holds the resource locks, so a concurrent open that lost
// the lock race runs this query only after the winner committed and
// reliably observes the winner's shift.
func (r *shiftRepository) FindOpenConflict(
	ctx context.Context,
	tx *gorm.DB,
	vehicleID, teamID int,
	workerIDs []int,
	dayStart, dayEnd time.Time,
) (*Shift, error) {
	log := r.log.Function("FindOpenConflict")

	var shift Shift
	err := tx.WithContext(ctx).
		Where("status = ?", ShiftStatusOpen).
		Where("start_time >= ? AND start_time < ?", dayStart, dayEnd).
		Where(
			"vehicle_id = ? OR team_id = ? OR EXISTS (SELECT 1 FROM shift_worker_assignments swa WHERE swa.shift_id = shifts.id AND swa.worker_id IN ? AND swa.deleted_at IS NULL)",
			vehicleID, teamID, workerIDs,
		).
		First(&shift).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to query for conflicting open shift", err,
			"vehicleID", vehicleID, "teamID", teamID)
	}

	return &shift, nil
}

// Create inserts the shift row. The partial unique indexes on open
// shifts are the storage-level backstop for at-most-one-open: a shift
// left open on a previous day sits outside the detector's day window,
// so the insert is where that conflict finally surfaces.
func (r *shiftRepository) Create(ctx context.Context, tx *gorm.DB, shift *Shift) error {
	if err := tx.WithContext(ctx).Create(shift).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(
				"a shift is still open for this vehicle or team from an earlier day",
			)
		}
		return r.log.Function("Create").Err("failed to create shift", err)
	}
	return nil
}

func (r *shiftRepository) CreateAssignments(
	ctx context.Context,
	tx *gorm.DB,
	assignments []ShiftWorkerAssignment,
) error {
	if len(assignments) == 0 {
		return nil
	}
	if err := tx.WithContext(ctx).Create(&assignments).Error; err != nil {
		return r.log.Function("CreateAssignments").
			Err("failed to create shift worker assignments", err)
	}
	return nil
}

func (r *shiftRepository) GetByID(ctx context.Context, id int) (*Shift, error) {
	log := r.log.Function("GetByID")

	var shift Shift
	cacheKey := fmt.Sprintf("%s%d", SHIFT_CACHE_PREFIX, id)
	if found, err := database.NewCacheBuilder(r.db.Cache.Shift, cacheKey).
		WithContext(ctx).Get(&shift); err == nil && found {
		return &shift, nil
	}

	if err := r.db.SQLWithContext(ctx).
		Preload("Assignments").
		First(&shift, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("shift", id)
		}
		return nil, log.Err("failed to get shift by id", err, "id", id)
	}

	if err := r.addShiftToCache(ctx, &shift); err != nil {
		log.Warn("failed to add shift to cache", "shiftID", id, "error", err)
	}

	return &shift, nil
}

// GetByIDForUpdate loads the shift under a row lock so concurrent
// closes of the same shift serialize instead of double-writing.
func (r *shiftRepository) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id int) (*Shift, error) {
	var shift Shift
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&shift, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("shift", id)
		}
		return nil, r.log.Function("GetByIDForUpdate").
			Err("failed to lock shift", err, "id", id)
	}
	return &shift, nil
}

func (r *shiftRepository) GetActiveByVehicle(ctx context.Context, vehicleID int) (*Shift, error) {
	log := r.log.Function("GetActiveByVehicle")

	var shift Shift
	cacheKey := fmt.Sprintf("%s%d", ACTIVE_VEHICLE_CACHE_PREFIX, vehicleID)
	if found, err := database.NewCacheBuilder(r.db.Cache.Shift, cacheKey).
		WithContext(ctx).Get(&shift); err == nil && found {
		return &shift, nil
	}

	err := r.db.SQLWithContext(ctx).
		Preload("Assignments").
		Where("vehicle_id = ? AND status = ?", vehicleID, ShiftStatusOpen).
		First(&shift).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("active shift for vehicle", vehicleID)
		}
		return nil, log.Err("failed to get active shift", err, "vehicleID", vehicleID)
	}

	if err := database.NewCacheBuilder(r.db.Cache.Shift, cacheKey).
		WithStruct(&shift).
		WithTTL(SHIFT_CACHE_EXPIRY).
		WithContext(ctx).
		Set(); err != nil {
		log.Warn("failed to cache active shift", "vehicleID", vehicleID, "error", err)
	}

	return &shift, nil
}

func (r *shiftRepository) Save(ctx context.Context, tx *gorm.DB, shift *Shift) error {
	if err := tx.WithContext(ctx).Save(shift).Error; err != nil {
		return r.log.Function("Save").Err("failed to save shift", err, "shiftID", shift.ID)
	}
	return nil
}

// InvalidateCache drops both read-cache entries for the shift. Cache
// errors are logged and swallowed; the database remains authoritative.
func (r *shiftRepository) InvalidateCache(ctx context.Context, shift *Shift) {
	log := r.log.Function("InvalidateCache")

	shiftKey := fmt.Sprintf("%s%d", SHIFT_CACHE_PREFIX, shift.ID)
	if err := database.NewCacheBuilder(r.db.Cache.Shift, shiftKey).
		WithContext(ctx).Delete(); err != nil {
		log.Warn("failed to clear shift cache", "shiftID", shift.ID, "error", err)
	}

	vehicleKey := fmt.Sprintf("%s%d", ACTIVE_VEHICLE_CACHE_PREFIX, shift.VehicleID)
	if err := database.NewCacheBuilder(r.db.Cache.Shift, vehicleKey).
		WithContext(ctx).Delete(); err != nil {
		log.Warn("failed to clear active vehicle cache", "vehicleID", shift.VehicleID, "error", err)
	}
}

func (r *shiftRepository) addShiftToCache(ctx context.Context, shift *Shift) error {
	cacheKey := fmt.Sprintf("%s%d", SHIFT_CACHE_PREFIX, shift.ID)
	return database.NewCacheBuilder(r.db.Cache.Shift, cacheKey).
		WithStruct(shift).
		WithTTL(SHIFT_CACHE_EXPIRY).
		WithContext(ctx).
		Set()
}
