package services

import (
	"context"
	"sync"
	"time"

	"fieldops/internal/apperrors"
	"fieldops/internal/models"
	"fieldops/internal/repositories"

	"gorm.io/gorm"
)

type lockCall struct {
	vehicleID int
	teamID    int
	workerIDs []int
}

type fakeResourceRepository struct {
	lockErr error
	calls   []lockCall
}

func (f *fakeResourceRepository) LockForShiftOpen(
	ctx context.Context,
	tx *gorm.DB,
	vehicleID, teamID int,
	workerIDs []int,
) error {
	f.calls = append(f.calls, lockCall{vehicleID: vehicleID, teamID: teamID, workerIDs: workerIDs})
	return f.lockErr
}

type fakeShiftRepository struct {
	conflict    *models.Shift
	conflictErr error
	byID        map[int]*models.Shift
	active      *models.Shift

	nextID      int
	created     []*models.Shift
	assignments []models.ShiftWorkerAssignment
	saved       []*models.Shift
	invalidated []int
}

func (f *fakeShiftRepository) FindOpenConflict(
	ctx context.Context,
	tx *gorm.DB,
	vehicleID, teamID int,
	workerIDs []int,
	dayStart, dayEnd time.Time,
) (*models.Shift, error) {
	return f.conflict, f.conflictErr
}

func (f *fakeShiftRepository) Create(ctx context.Context, tx *gorm.DB, shift *models.Shift) error {
	f.nextID++
	shift.ID = f.nextID
	f.created = append(f.created, shift)
	return nil
}

func (f *fakeShiftRepository) CreateAssignments(
	ctx context.Context,
	tx *gorm.DB,
	assignments []models.ShiftWorkerAssignment,
) error {
	f.assignments = append(f.assignments, assignments...)
	return nil
}

func (f *fakeShiftRepository) GetByID(ctx context.Context, id int) (*models.Shift, error) {
	if shift, ok := f.byID[id]; ok {
		return shift, nil
	}
	return nil, apperrors.NotFound("shift", id)
}

func (f *fakeShiftRepository) GetByIDForUpdate(
	ctx context.Context,
	tx *gorm.DB,
	id int,
) (*models.Shift, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeShiftRepository) GetActiveByVehicle(
	ctx context.Context,
	vehicleID int,
) (*models.Shift, error) {
	if f.active == nil {
		return nil, apperrors.NotFound("active shift for vehicle", vehicleID)
	}
	return f.active, nil
}

func (f *fakeShiftRepository) Save(ctx context.Context, tx *gorm.DB, shift *models.Shift) error {
	f.saved = append(f.saved, shift)
	return nil
}

func (f *fakeShiftRepository) InvalidateCache(ctx context.Context, shift *models.Shift) {
	f.invalidated = append(f.invalidated, shift.ID)
}

type fakeChecklistRepository struct {
	mu sync.Mutex

	flags           map[int]bool
	createFilledErr error
	missing         []repositories.PendencyCandidate

	nextFilledID int
	nextAnswerID int
	filled       []*models.FilledChecklist
	answers      []*models.ChecklistAnswer
	marked       []int
}

func (f *fakeChecklistRepository) GetPendencyFlags(
	ctx context.Context,
	tx *gorm.DB,
	optionIDs []int,
) (map[int]bool, error) {
	return f.flags, nil
}

func (f *fakeChecklistRepository) CreateFilled(
	ctx context.Context,
	tx *gorm.DB,
	checklist *models.FilledChecklist,
) error {
	if f.createFilledErr != nil {
		return f.createFilledErr
	}
	f.nextFilledID++
	checklist.ID = f.nextFilledID
	f.filled = append(f.filled, checklist)
	return nil
}

func (f *fakeChecklistRepository) CreateAnswers(
	ctx context.Context,
	tx *gorm.DB,
	answers []*models.ChecklistAnswer,
) error {
	for _, answer := range answers {
		f.nextAnswerID++
		answer.ID = f.nextAnswerID
		f.answers = append(f.answers, answer)
	}
	return nil
}

func (f *fakeChecklistRepository) MarkAwaitingPhoto(ctx context.Context, answerID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, answerID)
	return nil
}

func (f *fakeChecklistRepository) markedAnswers() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.marked...)
}

func (f *fakeChecklistRepository) FindAnswersMissingPendency(
	ctx context.Context,
	limit int,
) ([]repositories.PendencyCandidate, error) {
	return f.missing, nil
}

type fakePendencyRepository struct {
	mu        sync.Mutex
	createErr error
	nextID    int
	byAnswer  map[int]*models.Pendency
	calls     int
}

func (f *fakePendencyRepository) CreateIdempotent(
	ctx context.Context,
	answerID, shiftID int,
	createdBy string,
) (*models.Pendency, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.createErr != nil {
		return nil, false, f.createErr
	}

	if f.byAnswer == nil {
		f.byAnswer = make(map[int]*models.Pendency)
	}
	if existing, ok := f.byAnswer[answerID]; ok {
		return existing, false, nil
	}

	f.nextID++
	pendency := &models.Pendency{
		ChecklistAnswerID: answerID,
		ShiftID:           shiftID,
		Status:            models.PendencyStatusOpen,
	}
	pendency.ID = f.nextID
	pendency.CreatedBy = createdBy
	f.byAnswer[answerID] = pendency
	return pendency, true, nil
}

func (f *fakePendencyRepository) pendencyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byAnswer)
}

type closedRecord struct {
	recordID int
	closedAt time.Time
}

type fakeReconciliationRepository struct {
	mu sync.Mutex

	createErr error
	nextID    int
	records   []*models.ReconciliationRecord
	workers   map[int][]models.ReconciliationWorkerAssignment

	byShift   map[int]*models.ReconciliationRecord
	byTeamDay *models.ReconciliationRecord
	closed    []closedRecord
}

func (f *fakeReconciliationRepository) CreateWithWorkers(
	ctx context.Context,
	record *models.ReconciliationRecord,
	assignments []models.ReconciliationWorkerAssignment,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}

	f.nextID++
	record.ID = f.nextID
	f.records = append(f.records, record)
	if f.workers == nil {
		f.workers = make(map[int][]models.ReconciliationWorkerAssignment)
	}
	f.workers[record.ID] = assignments
	return nil
}

func (f *fakeReconciliationRepository) FindOpenByShiftID(
	ctx context.Context,
	shiftID int,
) (*models.ReconciliationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byShift[shiftID], nil
}

func (f *fakeReconciliationRepository) FindOpenByTeamAndDay(
	ctx context.Context,
	teamID int,
	referenceDay time.Time,
) (*models.ReconciliationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byTeamDay, nil
}

func (f *fakeReconciliationRepository) CloseRecord(
	ctx context.Context,
	record *models.ReconciliationRecord,
	closedAt time.Time,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, closedRecord{recordID: record.ID, closedAt: closedAt})
	return nil
}

func (f *fakeReconciliationRepository) recordCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func (f *fakeReconciliationRepository) closedRecords() []closedRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]closedRecord(nil), f.closed...)
}
