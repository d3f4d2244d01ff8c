package services

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/repos"
	"github.com/pathlight/pathlight-backend/internal/types"
)

// AssessmentService sits on top of the session persistence discipline:
// question sets arrive from the external generator, answers accumulate via
// SaveAssessmentProgress, and finalization records the result and flips the
// student's flag.
type AssessmentService interface {
	StartAssessment(ctx context.Context, uniqueID, assessmentType string, questions json.RawMessage) (*types.AssessmentResponse, error)
	SubmitAnswers(ctx context.Context, uniqueID, assessmentType string, answers json.RawMessage, currentQuestion *int) (*types.AssessmentResponse, error)
	FinalizeAssessment(ctx context.Context, uniqueID, assessmentType string, result json.RawMessage) (*types.AssessmentResponse, error)
	GetResponses(ctx context.Context, uniqueID string) ([]*types.AssessmentResponse, error)
}

type assessmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	sessionService SessionService
	studentService StudentService
	assessmentRepo repos.AssessmentResponseRepo
	webhookService WebhookService
}

func NewAssessmentService(
	db *gorm.DB,
	log *logger.Logger,
	sessionService SessionService,
	studentService StudentService,
	assessmentRepo repos.AssessmentResponseRepo,
	webhookService WebhookService,
) AssessmentService {
	return &assessmentService{
		db:             db,
		log:            log.With("service", "AssessmentService"),
		sessionService: sessionService,
		studentService: studentService,
		assessmentRepo: assessmentRepo,
		webhookService: webhookService,
	}
}

func (as *assessmentService) StartAssessment(ctx context.Context, uniqueID, assessmentType string, questions json.RawMessage) (*types.AssessmentResponse, error) {
	if _, err := as.studentService.GetByUniqueID(ctx, uniqueID); err != nil {
		return nil, err
	}

	patch := AssessmentProgressPatch{}
	status := types.AssessmentStatusInProgress
	patch.Status = OptionalString{Set: true, Value: &status}
	if len(questions) > 0 {
		raw := questions
		patch.Questions = OptionalJSON{Set: true, Value: (*json.RawMessage)(&raw)}
	}
	return as.sessionService.SaveAssessmentProgress(ctx, uniqueID, assessmentType, patch)
}

func (as *assessmentService) SubmitAnswers(ctx context.Context, uniqueID, assessmentType string, answers json.RawMessage, currentQuestion *int) (*types.AssessmentResponse, error) {
	if len(answers) == 0 {
		return nil, apperrors.Validation("answers payload is required")
	}

	patch := AssessmentProgressPatch{}
	status := types.AssessmentStatusInProgress
	patch.Status = OptionalString{Set: true, Value: &status}
	raw := answers
	patch.Answers = OptionalJSON{Set: true, Value: (*json.RawMessage)(&raw)}
	if currentQuestion != nil {
		patch.CurrentQuestion = OptionalInt{Set: true, Value: currentQuestion}
	}
	return as.sessionService.SaveAssessmentProgress(ctx, uniqueID, assessmentType, patch)
}

func (as *assessmentService) FinalizeAssessment(ctx context.Context, uniqueID, assessmentType string, result json.RawMessage) (*types.AssessmentResponse, error) {
	if len(result) == 0 {
		return nil, apperrors.Validation("result payload is required")
	}

	student, err := as.studentService.GetByUniqueID(ctx, uniqueID)
	if err != nil {
		return nil, err
	}

	patch := AssessmentProgressPatch{}
	status := types.AssessmentStatusCompleted
	patch.Status = OptionalString{Set: true, Value: &status}
	raw := result
	patch.Result = OptionalJSON{Set: true, Value: (*json.RawMessage)(&raw)}

	response, err := as.sessionService.SaveAssessmentProgress(ctx, uniqueID, assessmentType, patch)
	if err != nil {
		return nil, err
	}
	if err := as.studentService.MarkAssessmentCompleted(ctx, student.ID); err != nil {
		return nil, err
	}

	// kick the external recommendation flow; its outcome never blocks the
	// assessment result
	if as.webhookService != nil {
		as.webhookService.NotifyAssessmentCompleted(ctx, uniqueID)
	}
	return response, nil
}

func (as *assessmentService) GetResponses(ctx context.Context, uniqueID string) ([]*types.AssessmentResponse, error) {
	if uniqueID == "" {
		return nil, apperrors.Validation("unique id is required")
	}
	rows, err := as.assessmentRepo.GetByUniqueID(ctx, nil, uniqueID)
	if err != nil {
		return nil, apperrors.DataAccess("load assessment responses", err)
	}
	return rows, nil
}
