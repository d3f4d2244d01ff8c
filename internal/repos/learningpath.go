package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/types"
)

type LearningPathRepo interface {
	GetByKey(ctx context.Context, tx *gorm.DB, uniqueID, career string) (*types.LearningPathResponse, error)
	GetByUniqueID(ctx context.Context, tx *gorm.DB, uniqueID string) ([]*types.LearningPathResponse, error)
	CountByUniqueID(ctx context.Context, tx *gorm.DB, uniqueID string) (int64, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.LearningPathResponse) error
}

type learningPathRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningPathRepo(db *gorm.DB, baseLog *logger.Logger) LearningPathRepo {
	return &learningPathRepo{db: db, log: baseLog.With("repo", "LearningPathRepo")}
}

func (r *learningPathRepo) GetByKey(ctx context.Context, tx *gorm.DB, uniqueID, career string) (*types.LearningPathResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if uniqueID == "" || career == "" {
		return nil, nil
	}

	var results []*types.LearningPathResponse
	if err := transaction.WithContext(ctx).
		Where("unique_id = ? AND career = ?", uniqueID, career).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *learningPathRepo) GetByUniqueID(ctx context.Context, tx *gorm.DB, uniqueID string) ([]*types.LearningPathResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LearningPathResponse
	if uniqueID == "" {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("unique_id = ?", uniqueID).
		Order("career ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *learningPathRepo) CountByUniqueID(ctx context.Context, tx *gorm.DB, uniqueID string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.LearningPathResponse{}).
		Where("unique_id = ?", uniqueID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *learningPathRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.LearningPathResponse) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	// Update in place when the career already exists for this unique_id.
	var existing []*types.LearningPathResponse
	if err := transaction.WithContext(ctx).
		Where("unique_id = ? AND career = ?", row.UniqueID, row.Career).
		Limit(1).
		Find(&existing).Error; err != nil {
		return err
	}
	if len(existing) == 0 {
		return transaction.WithContext(ctx).Create(row).Error
	}

	current := existing[0]
	if err := transaction.WithContext(ctx).
		Model(&types.LearningPathResponse{}).
		Where("id = ?", current.ID).
		Updates(map[string]any{"output": row.Output}).Error; err != nil {
		return err
	}
	row.ID = current.ID
	row.CreatedAt = current.CreatedAt
	return nil
}
