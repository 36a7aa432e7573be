package jobs

import (
	"context"

	"fieldops/internal/repositories"
	"fieldops/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

const SWEEP_BATCH_LIMIT = 500

// PendencySweepJob is the external re-runner the best-effort pendency
// pipeline relies on: any answer whose option generates a pendency but
// that has no pendency row (processor crash, dropped task, full queue)
// gets re-enqueued on the next pass. Re-enqueueing an answer that
// gained its pendency in the meantime is harmless; creation is
// idempotent.
type PendencySweepJob struct {
	checklists repositories.ChecklistRepository
	processor  *services.PendencyProcessor
	log        logger.Logger
	schedule   services.Schedule
}

func NewPendencySweepJob(
	checklists repositories.ChecklistRepository,
	processor *services.PendencyProcessor,
	schedule services.Schedule,
) *PendencySweepJob {
	log := logger.New("pendencySweepJob")
	log.Info("Creating new pendency sweep job", "schedule", schedule)

	return &PendencySweepJob{
		checklists: checklists,
		processor:  processor,
		log:        log,
		schedule:   schedule,
	}
}

func (j *PendencySweepJob) Name() string {
	return "PendencySweep"
}

func (j *PendencySweepJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	candidates, err := j.checklists.FindAnswersMissingPendency(ctx, SWEEP_BATCH_LIMIT)
	if err != nil {
		return log.Err("failed to find answers missing pendency", err)
	}

	if len(candidates) == 0 {
		log.Debug("no answers missing pendency")
		return nil
	}

	log.Info("Re-enqueueing answers missing pendency", "count", len(candidates))
	j.processor.Enqueue(candidates...)

	return nil
}

func (j *PendencySweepJob) Schedule() services.Schedule {
	return j.schedule
}
