package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/repos"
	"github.com/pathlight/pathlight-backend/internal/types"
)

// LearningPathService persists externally produced recommendations. The
// output schema is stored verbatim; this service only validates the career
// against the catalog and enforces the one-row-per-(unique_id, career)
// invariant.
type LearningPathService interface {
	SaveRecommendation(ctx context.Context, uniqueID, career string, output types.LearningPathOutput) (*types.LearningPathResponse, error)
	GetRecommendations(ctx context.Context, uniqueID string) ([]*types.LearningPathResponse, error)
	RequestRecommendation(ctx context.Context, uniqueID string, payload json.RawMessage) (delivered bool, err error)
}

type learningPathService struct {
	db             *gorm.DB
	log            *logger.Logger
	pathRepo       repos.LearningPathRepo
	studentRepo    repos.StudentRepo
	catalogService CatalogService
	webhookService WebhookService
}

func NewLearningPathService(
	db *gorm.DB,
	log *logger.Logger,
	pathRepo repos.LearningPathRepo,
	studentRepo repos.StudentRepo,
	catalogService CatalogService,
	webhookService WebhookService,
) LearningPathService {
	return &learningPathService{
		db:             db,
		log:            log.With("service", "LearningPathService"),
		pathRepo:       pathRepo,
		studentRepo:    studentRepo,
		catalogService: catalogService,
		webhookService: webhookService,
	}
}

func (ls *learningPathService) SaveRecommendation(ctx context.Context, uniqueID, career string, output types.LearningPathOutput) (*types.LearningPathResponse, error) {
	if uniqueID == "" {
		return nil, apperrors.Validation("unique id is required")
	}
	if career == "" {
		return nil, apperrors.Validation("career is required")
	}
	if ls.catalogService != nil && !ls.catalogService.HasCareer(career) {
		return nil, apperrors.Validation("unknown career")
	}

	student, err := ls.studentRepo.GetByUniqueID(ctx, nil, uniqueID)
	if err != nil {
		return nil, apperrors.DataAccess("load student", err)
	}
	if student == nil {
		return nil, apperrors.NotFound("student not found")
	}

	raw, err := json.Marshal(output)
	if err != nil {
		return nil, apperrors.Validation("output payload could not be encoded")
	}

	row := &types.LearningPathResponse{
		ID:       uuid.New(),
		UniqueID: uniqueID,
		Career:   career,
		Output:   datatypes.JSON(raw),
	}
	err = ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, gErr := ls.pathRepo.GetByKey(ctx, tx, uniqueID, career)
		if gErr != nil {
			return gErr
		}
		if existing != nil {
			existing.Output = datatypes.JSON(raw)
			row = existing
		}
		return ls.pathRepo.Upsert(ctx, tx, row)
	})
	if err != nil {
		return nil, apperrors.DataAccess("save recommendation", err)
	}
	return row, nil
}

func (ls *learningPathService) GetRecommendations(ctx context.Context, uniqueID string) ([]*types.LearningPathResponse, error) {
	if uniqueID == "" {
		return nil, apperrors.Validation("unique id is required")
	}
	rows, err := ls.pathRepo.GetByUniqueID(ctx, nil, uniqueID)
	if err != nil {
		return nil, apperrors.DataAccess("load recommendations", err)
	}
	return rows, nil
}

// RequestRecommendation relays the student's context to the external
// recommendation process. Delivery is best-effort; the caller learns
// whether the relay went through but a miss is not an error.
func (ls *learningPathService) RequestRecommendation(ctx context.Context, uniqueID string, payload json.RawMessage) (bool, error) {
	if uniqueID == "" {
		return false, apperrors.Validation("unique id is required")
	}
	student, err := ls.studentRepo.GetByUniqueID(ctx, nil, uniqueID)
	if err != nil {
		return false, apperrors.DataAccess("load student", err)
	}
	if student == nil {
		return false, apperrors.NotFound("student not found")
	}
	if ls.webhookService == nil {
		return false, nil
	}
	return ls.webhookService.TriggerRecommendation(ctx, uniqueID, payload), nil
}
