package services

import (
	"context"
	"testing"
	"time"

	"fieldops/internal/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checklistPayload(answers ...ChecklistAnswerPayload) ChecklistPayload {
	return ChecklistPayload{
		ClientUUID:       uuid.New(),
		ChecklistModelID: 1,
		WorkerID:         21,
		Answers:          answers,
	}
}

func TestChecklistService_ValidatePayloads(t *testing.T) {
	service := NewChecklistService(&fakeChecklistRepository{})

	duplicateUUID := uuid.New()

	tests := []struct {
		name       string
		checklists []ChecklistPayload
		message    string
	}{
		{
			name:       "empty list is fine",
			checklists: nil,
		},
		{
			name: "valid payloads",
			checklists: []ChecklistPayload{
				checklistPayload(ChecklistAnswerPayload{QuestionID: 1, OptionID: 10}),
				checklistPayload(ChecklistAnswerPayload{QuestionID: 2, OptionID: 20}),
			},
		},
		{
			name: "missing client uuid",
			checklists: []ChecklistPayload{
				{ChecklistModelID: 1, WorkerID: 21},
			},
			message: "missing its client uuid",
		},
		{
			name: "duplicate uuid in one request",
			checklists: []ChecklistPayload{
				{ClientUUID: duplicateUUID, ChecklistModelID: 1, WorkerID: 21},
				{ClientUUID: duplicateUUID, ChecklistModelID: 1, WorkerID: 22},
			},
			message: "duplicate checklist uuid",
		},
		{
			name: "invalid model id",
			checklists: []ChecklistPayload{
				{ClientUUID: uuid.New(), WorkerID: 21},
			},
			message: "invalid model id",
		},
		{
			name: "invalid worker id",
			checklists: []ChecklistPayload{
				{ClientUUID: uuid.New(), ChecklistModelID: 1},
			},
			message: "invalid worker id",
		},
		{
			name: "invalid answer option",
			checklists: []ChecklistPayload{
				checklistPayload(ChecklistAnswerPayload{QuestionID: 1, OptionID: 0}),
			},
			message: "invalid question or option id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidatePayloads(tt.checklists)
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestChecklistService_Intake_ClassifiesCandidates(t *testing.T) {
	repo := &fakeChecklistRepository{
		flags: map[int]bool{10: false, 20: true, 30: true},
	}
	service := NewChecklistService(repo)

	answeredAt := time.Date(2025, 3, 10, 7, 35, 0, 0, time.UTC)
	checklists := []ChecklistPayload{
		checklistPayload(
			ChecklistAnswerPayload{QuestionID: 1, OptionID: 10, AnsweredAt: answeredAt},
			ChecklistAnswerPayload{QuestionID: 2, OptionID: 20, AnsweredAt: answeredAt},
		),
		checklistPayload(
			ChecklistAnswerPayload{QuestionID: 3, OptionID: 30, AnsweredAt: answeredAt},
		),
	}

	result, err := service.Intake(context.Background(), nil, 42, checklists)
	require.NoError(t, err)

	assert.Equal(t, 2, result.SavedCount)
	require.Len(t, result.Candidates, 2)
	assert.Equal(t, 42, result.Candidates[0].ShiftID)
	assert.Equal(t, 2, result.Candidates[0].AnswerID)
	assert.Equal(t, 3, result.Candidates[1].AnswerID)

	require.Len(t, repo.filled, 2)
	assert.Equal(t, 42, repo.filled[0].ShiftID)
	assert.Len(t, repo.answers, 3)
}

func TestChecklistService_Intake_EmptyList(t *testing.T) {
	repo := &fakeChecklistRepository{}
	service := NewChecklistService(repo)

	result, err := service.Intake(context.Background(), nil, 42, nil)
	require.NoError(t, err)
	assert.Zero(t, result.SavedCount)
	assert.Empty(t, result.Candidates)
	assert.Empty(t, repo.filled)
}

func TestChecklistService_Intake_ReplayedUUIDConflicts(t *testing.T) {
	repo := &fakeChecklistRepository{
		flags:           map[int]bool{},
		createFilledErr: apperrors.Conflict("checklist was already submitted"),
	}
	service := NewChecklistService(repo)

	_, err := service.Intake(context.Background(), nil, 42, []ChecklistPayload{
		checklistPayload(ChecklistAnswerPayload{QuestionID: 1, OptionID: 10}),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestDistinctOptionIDs(t *testing.T) {
	checklists := []ChecklistPayload{
		checklistPayload(
			ChecklistAnswerPayload{QuestionID: 1, OptionID: 10},
			ChecklistAnswerPayload{QuestionID: 2, OptionID: 20},
		),
		checklistPayload(
			ChecklistAnswerPayload{QuestionID: 1, OptionID: 10},
			ChecklistAnswerPayload{QuestionID: 3, OptionID: 30},
		),
	}

	assert.Equal(t, []int{10, 20, 30}, distinctOptionIDs(checklists))
	assert.Nil(t, distinctOptionIDs(nil))
}
