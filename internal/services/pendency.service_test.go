package services

import (
	"errors"
	"testing"

	"fieldops/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendencyProcessor_CreatesPendencyAndFlagsAnswer(t *testing.T) {
	pendencies := &fakePendencyRepository{}
	checklists := &fakeChecklistRepository{}
	processor := NewPendencyProcessor(pendencies, checklists, 16)

	processor.Enqueue(repositories.PendencyCandidate{AnswerID: 5, ShiftID: 42})
	processor.Close()

	assert.Equal(t, 1, pendencies.pendencyCount())
	assert.Equal(t, []int{5}, checklists.markedAnswers())
}

func TestPendencyProcessor_DuplicateCandidatesCollapse(t *testing.T) {
	pendencies := &fakePendencyRepository{}
	checklists := &fakeChecklistRepository{}
	processor := NewPendencyProcessor(pendencies, checklists, 16)

	candidate := repositories.PendencyCandidate{AnswerID: 5, ShiftID: 42}
	processor.Enqueue(candidate)
	processor.Enqueue(candidate)
	processor.Close()

	// Both runs reach the repository; only the first creates a row and
	// only the first flips the awaiting-photo flag.
	assert.Equal(t, 2, pendencies.calls)
	assert.Equal(t, 1, pendencies.pendencyCount())
	assert.Equal(t, []int{5}, checklists.markedAnswers())
}

func TestPendencyProcessor_FailureDoesNotStopConsumer(t *testing.T) {
	pendencies := &fakePendencyRepository{createErr: errors.New("connection reset")}
	checklists := &fakeChecklistRepository{}
	processor := NewPendencyProcessor(pendencies, checklists, 16)

	processor.Enqueue(
		repositories.PendencyCandidate{AnswerID: 5, ShiftID: 42},
		repositories.PendencyCandidate{AnswerID: 6, ShiftID: 42},
	)
	processor.Close()

	// Every candidate was attempted despite the failures, and no flag
	// was flipped for answers whose pendency was never created.
	assert.Equal(t, 2, pendencies.calls)
	assert.Zero(t, pendencies.pendencyCount())
	assert.Empty(t, checklists.markedAnswers())
}

func TestPendencyProcessor_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	pendencies := &fakePendencyRepository{}
	checklists := &fakeChecklistRepository{}

	// Queue of one with a consumer that may lag: enqueueing many more
	// candidates than capacity must return promptly either way.
	processor := NewPendencyProcessor(pendencies, checklists, 1)

	candidates := make([]repositories.PendencyCandidate, 50)
	for i := range candidates {
		candidates[i] = repositories.PendencyCandidate{AnswerID: i + 1, ShiftID: 42}
	}
	processor.Enqueue(candidates...)
	processor.Close()

	require.LessOrEqual(t, pendencies.pendencyCount(), 50)
}

func TestPendencyProcessor_CloseIsIdempotent(t *testing.T) {
	processor := NewPendencyProcessor(&fakePendencyRepository{}, &fakeChecklistRepository{}, 4)

	processor.Close()
	processor.Close()
}
