package services

import (
	"context"
	"time"

	"fieldops/internal/apperrors"
	appContext "fieldops/internal/context"
	"fieldops/internal/models"
	"fieldops/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChecklistAnswerPayload struct {
	QuestionID int       `json:"questionId"`
	OptionID   int       `json:"optionId"`
	AnsweredAt time.Time `json:"answeredAt"`
}

type ChecklistPayload struct {
	ClientUUID       uuid.UUID                `json:"clientUuid"`
	ChecklistModelID int                      `json:"checklistModelId"`
	WorkerID         int                      `json:"workerId"`
	Coordinates      datatypes.JSON           `json:"coordinates"`
	Answers          []ChecklistAnswerPayload `json:"answers"`
}

// IntakeResult reports what the pipeline persisted and which answers
// need a pendency. The candidates are handed to the async processor by
// the coordinator after commit, never processed inside the transaction,
// to bound how long the resource locks are held.
type IntakeResult struct {
	SavedCount int
	Candidates []repositories.PendencyCandidate
}

// ChecklistService is the intake pipeline: it persists checklist
// headers and answers synchronously inside the shift-open transaction
// and classifies which answers require follow-up.
type ChecklistService struct {
	checklists repositories.ChecklistRepository
	log        logger.Logger
}

func NewChecklistService(checklists repositories.ChecklistRepository) *ChecklistService {
	return &ChecklistService{
		checklists: checklists,
		log:        logger.New("checklistService"),
	}
}

// ValidatePayloads rejects structurally bad checklist payloads before
// the coordinator opens its transaction.
func (s *ChecklistService) ValidatePayloads(checklists []ChecklistPayload) error {
	seen := make(map[uuid.UUID]bool, len(checklists))
	for i, checklist := range checklists {
		if checklist.ClientUUID == uuid.Nil {
			return apperrors.Validation("checklist %d is missing its client uuid", i)
		}
		if seen[checklist.ClientUUID] {
			return apperrors.Validation(
				"duplicate checklist uuid %s in request", checklist.ClientUUID,
			)
		}
		seen[checklist.ClientUUID] = true

		if checklist.ChecklistModelID <= 0 {
			return apperrors.Validation("checklist %s has an invalid model id", checklist.ClientUUID)
		}
		if checklist.WorkerID <= 0 {
			return apperrors.Validation("checklist %s has an invalid worker id", checklist.ClientUUID)
		}
		for _, answer := range checklist.Answers {
			if answer.QuestionID <= 0 || answer.OptionID <= 0 {
				return apperrors.Validation(
					"checklist %s has an answer with invalid question or option id",
					checklist.ClientUUID,
				)
			}
		}
	}
	return nil
}

// Intake runs inside the coordinator's transaction. The option flags
// for every distinct option id are preloaded in one query before any
// insert.
func (s *ChecklistService) Intake(
	ctx context.Context,
	tx *gorm.DB,
	shiftID int,
	checklists []ChecklistPayload,
) (IntakeResult, error) {
	log := s.log.Function("Intake")

	result := IntakeResult{}
	if len(checklists) == 0 {
		return result, nil
	}

	flags, err := s.checklists.GetPendencyFlags(ctx, tx, distinctOptionIDs(checklists))
	if err != nil {
		return result, err
	}

	identity := appContext.GetCallerIdentity(ctx)

	for _, payload := range checklists {
		filled := models.FilledChecklist{
			ShiftID:          shiftID,
			ChecklistModelID: payload.ChecklistModelID,
			WorkerID:         payload.WorkerID,
			ClientUUID:       payload.ClientUUID,
			Coordinates:      payload.Coordinates,
		}
		filled.CreatedBy = identity
		filled.UpdatedBy = identity

		if err := s.checklists.CreateFilled(ctx, tx, &filled); err != nil {
			return IntakeResult{}, err
		}

		answers := make([]*models.ChecklistAnswer, 0, len(payload.Answers))
		for _, answerPayload := range payload.Answers {
			answer := &models.ChecklistAnswer{
				FilledChecklistID: filled.ID,
				QuestionID:        answerPayload.QuestionID,
				OptionID:          answerPayload.OptionID,
				AnsweredAt:        answerPayload.AnsweredAt,
				AwaitingPhoto:     false,
			}
			answer.CreatedBy = identity
			answer.UpdatedBy = identity
			answers = append(answers, answer)
		}

		if err := s.checklists.CreateAnswers(ctx, tx, answers); err != nil {
			return IntakeResult{}, err
		}

		for _, answer := range answers {
			if flags[answer.OptionID] {
				result.Candidates = append(result.Candidates, repositories.PendencyCandidate{
					AnswerID: answer.ID,
					ShiftID:  shiftID,
				})
			}
		}

		result.SavedCount++
	}

	log.Debug("checklist intake complete",
		"shiftID", shiftID,
		"saved", result.SavedCount,
		"pendencyCandidates", len(result.Candidates),
	)

	return result, nil
}

func distinctOptionIDs(checklists []ChecklistPayload) []int {
	seen := make(map[int]bool)
	var ids []int
	for _, checklist := range checklists {
		for _, answer := range checklist.Answers {
			if !seen[answer.OptionID] {
				seen[answer.OptionID] = true
				ids = append(ids, answer.OptionID)
			}
		}
	}
	return ids
}
