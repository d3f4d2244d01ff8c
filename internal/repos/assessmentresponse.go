package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/types"
)

type AssessmentResponseRepo interface {
	GetByKey(ctx context.Context, tx *gorm.DB, uniqueID, assessmentType string) (*types.AssessmentResponse, error)
	GetByUniqueID(ctx context.Context, tx *gorm.DB, uniqueID string) ([]*types.AssessmentResponse, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.AssessmentResponse) error
}

type assessmentResponseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentResponseRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentResponseRepo {
	return &assessmentResponseRepo{db: db, log: baseLog.With("repo", "AssessmentResponseRepo")}
}

func (r *assessmentResponseRepo) GetByKey(ctx context.Context, tx *gorm.DB, uniqueID, assessmentType string) (*types.AssessmentResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if uniqueID == "" || assessmentType == "" {
		return nil, nil
	}

	var results []*types.AssessmentResponse
	if err := transaction.WithContext(ctx).
		Where("unique_id = ? AND assessment_type = ?", uniqueID, assessmentType).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *assessmentResponseRepo) GetByUniqueID(ctx context.Context, tx *gorm.DB, uniqueID string) ([]*types.AssessmentResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AssessmentResponse
	if uniqueID == "" {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("unique_id = ?", uniqueID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assessmentResponseRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.AssessmentResponse) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	// Upsert by unique (unique_id, assessment_type)
	var existing []*types.AssessmentResponse
	if err := transaction.WithContext(ctx).
		Where("unique_id = ? AND assessment_type = ?", row.UniqueID, row.AssessmentType).
		Limit(1).
		Find(&existing).Error; err != nil {
		return err
	}
	if len(existing) == 0 {
		return transaction.WithContext(ctx).Create(row).Error
	}

	current := existing[0]
	// Map-based updates: asserted zero values overwrite stored ones.
	if err := transaction.WithContext(ctx).
		Model(&types.AssessmentResponse{}).
		Where("id = ?", current.ID).
		Updates(map[string]any{
			"status":           row.Status,
			"current_question": row.CurrentQuestion,
			"answers":          row.Answers,
			"questions":        row.Questions,
			"result":           row.Result,
		}).Error; err != nil {
		return err
	}
	row.ID = current.ID
	row.CreatedAt = current.CreatedAt
	return nil
}
