package services

import (
	"context"
	"sync"
	"time"

	appContext "fieldops/internal/context"
	"fieldops/internal/models"
	"fieldops/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
)

// ShiftOpenedEvent mirrors a committed shift open into the ledger.
type ShiftOpenedEvent struct {
	ShiftID      int
	TeamID       int
	ReferenceDay time.Time
	OpenedAt     time.Time
	DeviceID     string
	WorkerIDs    []int
}

// ShiftClosedEvent mirrors a committed shift close.
type ShiftClosedEvent struct {
	ShiftID      int
	TeamID       int
	ReferenceDay time.Time
	ClosedAt     time.Time
}

type reconciliationEvent struct {
	opened *ShiftOpenedEvent
	closed *ShiftClosedEvent
}

// ReconciliationService keeps the parallel bookkeeping ledger used by
// downstream attendance/scheduling reconciliation. It consumes its own
// channel so delivery and ordering are explicit: events for one shift
// arrive in the order the coordinator enqueued them, and a failure here
// never rolls back or fails the shift operation that triggered it.
type ReconciliationService struct {
	records   repositories.ReconciliationRepository
	queue     chan reconciliationEvent
	log       logger.Logger
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewReconciliationService(
	records repositories.ReconciliationRepository,
	queueSize int,
) *ReconciliationService {
	s := &ReconciliationService{
		records: records,
		queue:   make(chan reconciliationEvent, queueSize),
		log:     logger.New("reconciliationService"),
	}

	s.wg.Add(1)
	go s.consume()

	return s
}

func (s *ReconciliationService) EnqueueOpen(event ShiftOpenedEvent) {
	s.enqueue(reconciliationEvent{opened: &event})
}

func (s *ReconciliationService) EnqueueClose(event ShiftClosedEvent) {
	s.enqueue(reconciliationEvent{closed: &event})
}

func (s *ReconciliationService) enqueue(event reconciliationEvent) {
	select {
	case s.queue <- event:
	default:
		s.log.Function("enqueue").Warn("reconciliation queue full, dropping event")
	}
}

// Close stops accepting events and drains what was already queued.
func (s *ReconciliationService) Close() {
	s.closeOnce.Do(func() {
		close(s.queue)
	})
	s.wg.Wait()
}

func (s *ReconciliationService) consume() {
	defer s.wg.Done()

	for event := range s.queue {
		switch {
		case event.opened != nil:
			s.handleOpen(*event.opened)
		case event.closed != nil:
			s.handleClose(*event.closed)
		}
	}
}

func (s *ReconciliationService) handleOpen(event ShiftOpenedEvent) {
	log := s.log.Function("handleOpen")

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while recording shift open", "panic", r, "shiftID", event.ShiftID)
		}
	}()

	ctx := context.Background()

	shiftID := event.ShiftID
	record := models.ReconciliationRecord{
		TeamID:       event.TeamID,
		ReferenceDay: event.ReferenceDay,
		ShiftID:      &shiftID,
		OpenedAt:     event.OpenedAt,
	}
	record.CreatedBy = appContext.SystemIdentity
	record.UpdatedBy = appContext.SystemIdentity

	assignments := make([]models.ReconciliationWorkerAssignment, 0, len(event.WorkerIDs))
	for _, workerID := range event.WorkerIDs {
		assignment := models.ReconciliationWorkerAssignment{
			WorkerID: workerID,
			DeviceID: event.DeviceID,
			OpenedAt: event.OpenedAt,
		}
		assignment.CreatedBy = appContext.SystemIdentity
		assignment.UpdatedBy = appContext.SystemIdentity
		assignments = append(assignments, assignment)
	}

	if err := s.records.CreateWithWorkers(ctx, &record, assignments); err != nil {
		log.Er("failed to record shift open in ledger", err, "shiftID", event.ShiftID)
		return
	}

	log.Debug("ledger open recorded", "shiftID", event.ShiftID, "recordID", record.ID)
}

func (s *ReconciliationService) handleClose(event ShiftClosedEvent) {
	log := s.log.Function("handleClose")

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while recording shift close", "panic", r, "shiftID", event.ShiftID)
		}
	}()

	ctx := context.Background()

	record, err := s.records.FindOpenByShiftID(ctx, event.ShiftID)
	if err != nil {
		log.Er("failed to look up ledger record by shift", err, "shiftID", event.ShiftID)
		return
	}

	if record == nil {
		// Legacy records lack the shift back-reference; fall back to
		// (team, reference day), most recently opened first.
		record, err = s.records.FindOpenByTeamAndDay(ctx, event.TeamID, event.ReferenceDay)
		if err != nil {
			log.Er("failed to look up ledger record by team and day", err,
				"teamID", event.TeamID, "referenceDay", event.ReferenceDay)
			return
		}
	}

	if record == nil {
		log.Warn("no open ledger record found for closed shift",
			"shiftID", event.ShiftID, "teamID", event.TeamID)
		return
	}

	if err := s.records.CloseRecord(ctx, record, event.ClosedAt); err != nil {
		log.Er("failed to close ledger record", err, "recordID", record.ID)
		return
	}

	log.Debug("ledger close recorded", "shiftID", event.ShiftID, "recordID", record.ID)
}
