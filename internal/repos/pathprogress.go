package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/types"
)

type PathProgressRepo interface {
	GetByKey(ctx context.Context, tx *gorm.DB, userID, studentID uuid.UUID, pathID string) (*types.PathProgress, error)
	GetByStudent(ctx context.Context, tx *gorm.DB, userID, studentID uuid.UUID) ([]*types.PathProgress, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.PathProgress) error
}

type pathProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPathProgressRepo(db *gorm.DB, baseLog *logger.Logger) PathProgressRepo {
	return &pathProgressRepo{db: db, log: baseLog.With("repo", "PathProgressRepo")}
}

func (r *pathProgressRepo) GetByKey(ctx context.Context, tx *gorm.DB, userID, studentID uuid.UUID, pathID string) (*types.PathProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || studentID == uuid.Nil || pathID == "" {
		return nil, nil
	}

	var results []*types.PathProgress
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND student_id = ? AND path_id = ?", userID, studentID, pathID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *pathProgressRepo) GetByStudent(ctx context.Context, tx *gorm.DB, userID, studentID uuid.UUID) ([]*types.PathProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.PathProgress
	if userID == uuid.Nil || studentID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND student_id = ?", userID, studentID).
		Order("path_id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *pathProgressRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.PathProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	var existing []*types.PathProgress
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND student_id = ? AND path_id = ?", row.UserID, row.StudentID, row.PathID).
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
		Model(&types.PathProgress{}).
		Where("id = ?", current.ID).
		Updates(map[string]any{
			"status":    row.Status,
			"progress":  row.Progress,
			"milestone": row.Milestone,
			"metadata":  row.Metadata,
		}).Error; err != nil {
		return err
	}
	row.ID = current.ID
	row.CreatedAt = current.CreatedAt
	return nil
}
