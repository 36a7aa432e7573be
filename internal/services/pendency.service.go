package services

import (
	"context"
	"sync"

	appContext "fieldops/internal/context"
	"fieldops/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
)

// PendencyProcessor is the post-commit consumer for pendency creation.
// The shift coordinator enqueues candidates after its transaction
// commits and does not wait for them; every failure is caught and
// logged here and never reaches a caller whose response has already
// been sent. There is no retry queue: a failed task is left for the
// sweep job to pick up on its next pass.
type PendencyProcessor struct {
	pendencies repositories.PendencyRepository
	checklists repositories.ChecklistRepository
	queue      chan repositories.PendencyCandidate
	log        logger.Logger
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

func NewPendencyProcessor(
	pendencies repositories.PendencyRepository,
	checklists repositories.ChecklistRepository,
	queueSize int,
) *PendencyProcessor {
	p := &PendencyProcessor{
		pendencies: pendencies,
		checklists: checklists,
		queue:      make(chan repositories.PendencyCandidate, queueSize),
		log:        logger.New("pendencyProcessor"),
	}

	p.wg.Add(1)
	go p.consume()

	return p
}

// Enqueue hands candidates to the consumer without blocking the
// request path. A full queue drops the task with a warning; the sweep
// job recovers dropped candidates later.
func (p *PendencyProcessor) Enqueue(candidates ...repositories.PendencyCandidate) {
	log := p.log.Function("Enqueue")

	for _, candidate := range candidates {
		select {
		case p.queue <- candidate:
		default:
			log.Warn("pendency queue full, dropping task for sweep to recover",
				"answerID", candidate.AnswerID, "shiftID", candidate.ShiftID)
		}
	}
}

// Close stops accepting tasks and drains what was already queued.
func (p *PendencyProcessor) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}

func (p *PendencyProcessor) consume() {
	defer p.wg.Done()

	for candidate := range p.queue {
		p.process(candidate)
	}
}

// process is the failure-isolation boundary: nothing thrown past here.
func (p *PendencyProcessor) process(candidate repositories.PendencyCandidate) {
	log := p.log.Function("process")

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while processing pendency task",
				"panic", r, "answerID", candidate.AnswerID)
		}
	}()

	ctx := appContext.WithCallerIdentity(context.Background(), appContext.SystemIdentity)

	pendency, created, err := p.pendencies.CreateIdempotent(
		ctx, candidate.AnswerID, candidate.ShiftID, appContext.SystemIdentity,
	)
	if err != nil {
		log.Er("failed to create pendency", err,
			"answerID", candidate.AnswerID, "shiftID", candidate.ShiftID)
		return
	}

	if !created {
		log.Debug("pendency already existed", "pendencyID", pendency.ID,
			"answerID", candidate.AnswerID)
		return
	}

	// Flipped exactly once, on the run that created the pendency.
	if err := p.checklists.MarkAwaitingPhoto(ctx, candidate.AnswerID); err != nil {
		log.Er("failed to flag answer as awaiting photo", err,
			"answerID", candidate.AnswerID, "pendencyID", pendency.ID)
	}
}
