package services

import (
	"context"
	"fmt"
	"time"

	"fieldops/internal/apperrors"
	appContext "fieldops/internal/context"
	"fieldops/internal/models"
	"fieldops/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const conflictMessage = "a shift is already open for this vehicle, team, or worker on this day"

type OpenShiftWorker struct {
	WorkerID int  `json:"workerId"`
	IsDriver bool `json:"isDriver"`
}

type OpenShiftRequest struct {
	VehicleID     int                `json:"vehicleId"`
	TeamID        int                `json:"teamId"`
	Workers       []OpenShiftWorker  `json:"workers"`
	StartOdometer decimal.Decimal    `json:"startOdometer"`
	StartTime     time.Time          `json:"startTime"`
	DeviceID      string             `json:"deviceId"`
	Checklists    []ChecklistPayload `json:"checklists"`
}

type OpenShiftResult struct {
	ShiftID               int                `json:"shiftId"`
	Status                models.ShiftStatus `json:"status"`
	SavedChecklistCount   int                `json:"savedChecklistCount"`
	PendingPhotoAnswerIDs []int              `json:"pendingPhotoAnswerIds,omitempty"`
}

type CloseShiftRequest struct {
	ShiftID     int             `json:"shiftId"`
	EndOdometer decimal.Decimal `json:"endOdometer"`
	EndTime     time.Time       `json:"endTime"`
}

type CloseShiftResult struct {
	ShiftID       int                `json:"shiftId"`
	Status        models.ShiftStatus `json:"status"`
	ClosedAt      time.Time          `json:"closedAt"`
	EndOdometer   decimal.Decimal    `json:"endOdometer"`
	AlreadyClosed bool               `json:"alreadyClosed,omitempty"`
}

// ShiftService is the transaction coordinator for the shift lifecycle.
// Open runs lock acquisition, conflict detection, shift and assignment
// creation, and checklist intake in one bounded transaction; everything
// after the commit point is fire-and-forget fan-out to the pendency
// processor and the reconciliation ledger.
type ShiftService struct {
	transactions   *TransactionService
	resources      repositories.ResourceRepository
	shifts         repositories.ShiftRepository
	checklistSvc   *ChecklistService
	pendencies     *PendencyProcessor
	reconciliation *ReconciliationService
	txTimeout      time.Duration
	log            logger.Logger
}

func NewShiftService(
	transactions *TransactionService,
	resources repositories.ResourceRepository,
	shifts repositories.ShiftRepository,
	checklistSvc *ChecklistService,
	pendencies *PendencyProcessor,
	reconciliation *ReconciliationService,
	txTimeout time.Duration,
) *ShiftService {
	return &ShiftService{
		transactions:   transactions,
		resources:      resources,
		shifts:         shifts,
		checklistSvc:   checklistSvc,
		pendencies:     pendencies,
		reconciliation: reconciliation,
		txTimeout:      txTimeout,
		log:            logger.New("shiftService"),
	}
}

// Open opens a shift. On return the result is definitive: either the
// shift and its checklists are committed, or nothing is.
func (s *ShiftService) Open(ctx context.Context, req OpenShiftRequest) (OpenShiftResult, error) {
	log := s.log.Function("Open")

	if err := s.validateOpen(req); err != nil {
		return OpenShiftResult{}, err
	}

	workerIDs := make([]int, 0, len(req.Workers))
	for _, worker := range req.Workers {
		workerIDs = append(workerIDs, worker.WorkerID)
	}

	dayStart, dayEnd := models.ReferenceDay(req.StartTime)
	identity := appContext.GetCallerIdentity(ctx)

	var shift models.Shift
	var intake IntakeResult

	err := s.transactions.ExecuteWithTimeout(ctx, s.txTimeout,
		func(ctx context.Context, tx *gorm.DB) error {
			// Locks first: the losing concurrent request blocks here and
			// evaluates the conflict query only after the winner commits.
			if err := s.resources.LockForShiftOpen(ctx, tx, req.VehicleID, req.TeamID, workerIDs); err != nil {
				return err
			}

			conflict, err := s.shifts.FindOpenConflict(
				ctx, tx, req.VehicleID, req.TeamID, workerIDs, dayStart, dayEnd,
			)
			if err != nil {
				return err
			}
			if conflict != nil {
				return apperrors.Conflict(conflictMessage)
			}

			shift = models.Shift{
				VehicleID:     req.VehicleID,
				TeamID:        req.TeamID,
				Status:        models.ShiftStatusOpen,
				StartTime:     req.StartTime,
				StartOdometer: req.StartOdometer,
				DeviceID:      req.DeviceID,
			}
			shift.CreatedBy = identity
			shift.UpdatedBy = identity

			if err := s.shifts.Create(ctx, tx, &shift); err != nil {
				return err
			}

			assignments := make([]models.ShiftWorkerAssignment, 0, len(req.Workers))
			for _, worker := range req.Workers {
				assignment := models.ShiftWorkerAssignment{
					ShiftID:  shift.ID,
					WorkerID: worker.WorkerID,
					IsDriver: worker.IsDriver,
				}
				assignment.CreatedBy = identity
				assignment.UpdatedBy = identity
				assignments = append(assignments, assignment)
			}
			if err := s.shifts.CreateAssignments(ctx, tx, assignments); err != nil {
				return err
			}

			intake, err = s.checklistSvc.Intake(ctx, tx, shift.ID, req.Checklists)
			return err
		})
	if err != nil {
		return OpenShiftResult{}, err
	}

	// Commit point passed. Nothing below is transactional or awaited.
	s.pendencies.Enqueue(intake.Candidates...)
	s.reconciliation.EnqueueOpen(ShiftOpenedEvent{
		ShiftID:      shift.ID,
		TeamID:       shift.TeamID,
		ReferenceDay: dayStart,
		OpenedAt:     shift.StartTime,
		DeviceID:     shift.DeviceID,
		WorkerIDs:    workerIDs,
	})

	result := OpenShiftResult{
		ShiftID:             shift.ID,
		Status:              shift.Status,
		SavedChecklistCount: intake.SavedCount,
	}
	for _, candidate := range intake.Candidates {
		result.PendingPhotoAnswerIDs = append(result.PendingPhotoAnswerIDs, candidate.AnswerID)
	}

	log.Info("shift opened",
		"shiftID", shift.ID,
		"vehicleID", shift.VehicleID,
		"teamID", shift.TeamID,
		"checklists", intake.SavedCount,
	)

	return result, nil
}

// Close performs the Open -> Closed transition. Closing an
// already-closed shift is not an error: the existing closed state comes
// back with AlreadyClosed set so retrying clients need no special
// handling.
func (s *ShiftService) Close(ctx context.Context, req CloseShiftRequest) (CloseShiftResult, error) {
	log := s.log.Function("Close")

	if req.ShiftID <= 0 {
		return CloseShiftResult{}, apperrors.Validation("shiftId is required")
	}
	if req.EndTime.IsZero() {
		return CloseShiftResult{}, apperrors.Validation("endTime is required")
	}

	identity := appContext.GetCallerIdentity(ctx)

	var result CloseShiftResult
	var closed models.Shift

	err := s.transactions.ExecuteWithTimeout(ctx, s.txTimeout,
		func(ctx context.Context, tx *gorm.DB) error {
			shift, err := s.shifts.GetByIDForUpdate(ctx, tx, req.ShiftID)
			if err != nil {
				return err
			}

			if !shift.IsOpen() {
				// A closed shift always has its end columns set through
				// Close; a row that lost them to a manual write must not
				// take down the request.
				if shift.EndTime == nil || shift.EndOdometer == nil {
					return apperrors.Internal(
						fmt.Errorf("shift %d is closed but has no end state", shift.ID),
					)
				}
				result = CloseShiftResult{
					ShiftID:       shift.ID,
					Status:        shift.Status,
					ClosedAt:      *shift.EndTime,
					EndOdometer:   *shift.EndOdometer,
					AlreadyClosed: true,
				}
				return nil
			}

			if err := shift.Close(req.EndTime, req.EndOdometer); err != nil {
				return err
			}
			shift.UpdatedBy = identity

			if err := s.shifts.Save(ctx, tx, shift); err != nil {
				return err
			}

			closed = *shift
			result = CloseShiftResult{
				ShiftID:     shift.ID,
				Status:      shift.Status,
				ClosedAt:    *shift.EndTime,
				EndOdometer: *shift.EndOdometer,
			}
			return nil
		})
	if err != nil {
		return CloseShiftResult{}, err
	}

	if result.AlreadyClosed {
		return result, nil
	}

	s.shifts.InvalidateCache(ctx, &closed)

	dayStart, _ := models.ReferenceDay(closed.StartTime)
	s.reconciliation.EnqueueClose(ShiftClosedEvent{
		ShiftID:      closed.ID,
		TeamID:       closed.TeamID,
		ReferenceDay: dayStart,
		ClosedAt:     result.ClosedAt,
	})

	log.Info("shift closed", "shiftID", closed.ID, "closedAt", result.ClosedAt)

	return result, nil
}

// GetByID serves the back-office read path through the cache.
func (s *ShiftService) GetByID(ctx context.Context, shiftID int) (*models.Shift, error) {
	if shiftID <= 0 {
		return nil, apperrors.Validation("shiftId is required")
	}
	return s.shifts.GetByID(ctx, shiftID)
}

// GetActiveByVehicle returns the single open shift for a vehicle.
func (s *ShiftService) GetActiveByVehicle(ctx context.Context, vehicleID int) (*models.Shift, error) {
	if vehicleID <= 0 {
		return nil, apperrors.Validation("vehicleId is required")
	}
	return s.shifts.GetActiveByVehicle(ctx, vehicleID)
}

func (s *ShiftService) validateOpen(req OpenShiftRequest) error {
	if req.VehicleID <= 0 {
		return apperrors.Validation("vehicleId is required")
	}
	if req.TeamID <= 0 {
		return apperrors.Validation("teamId is required")
	}
	if len(req.Workers) == 0 {
		return apperrors.Validation("at least one worker is required")
	}
	if req.StartTime.IsZero() {
		return apperrors.Validation("startTime is required")
	}
	if req.StartOdometer.IsNegative() {
		return apperrors.Validation("startOdometer must not be negative")
	}

	drivers := 0
	seen := make(map[int]bool, len(req.Workers))
	for _, worker := range req.Workers {
		if worker.WorkerID <= 0 {
			return apperrors.Validation("workerId is required for every worker")
		}
		if seen[worker.WorkerID] {
			return apperrors.Validation("worker %d listed more than once", worker.WorkerID)
		}
		seen[worker.WorkerID] = true
		if worker.IsDriver {
			drivers++
		}
	}
	if drivers != 1 {
		return apperrors.Validation("exactly one worker must be flagged as driver")
	}

	return s.checklistSvc.ValidatePayloads(req.Checklists)
}
