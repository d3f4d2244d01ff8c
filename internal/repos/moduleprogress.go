package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/types"
)

type ModuleProgressRepo interface {
	GetByKey(ctx context.Context, tx *gorm.DB, userID, studentID uuid.UUID, moduleID string) (*types.ModuleProgress, error)
	GetByStudent(ctx context.Context, tx *gorm.DB, userID, studentID uuid.UUID) ([]*types.ModuleProgress, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.ModuleProgress) error
}

type moduleProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleProgressRepo(db *gorm.DB, baseLog *logger.Logger) ModuleProgressRepo {
	return &moduleProgressRepo{db: db, log: baseLog.With("repo", "ModuleProgressRepo")}
}

func (r *moduleProgressRepo) GetByKey(ctx context.Context, tx *gorm.DB, userID, studentID uuid.UUID, moduleID string) (*types.ModuleProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || studentID == uuid.Nil || moduleID == "" {
		return nil, nil
	}

	var results []*types.ModuleProgress
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND student_id = ? AND module_id = ?", userID, studentID, moduleID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *moduleProgressRepo) GetByStudent(ctx context.Context, tx *gorm.DB, userID, studentID uuid.UUID) ([]*types.ModuleProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ModuleProgress
	if userID == uuid.Nil || studentID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND student_id = ?", userID, studentID).
		Order("module_id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *moduleProgressRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.ModuleProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	// Upsert by unique (user_id, student_id, module_id); other modules'
	// rows are untouched.
	var existing []*types.ModuleProgress
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND student_id = ? AND module_id = ?", row.UserID, row.StudentID, row.ModuleID).
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
		Model(&types.ModuleProgress{}).
		Where("id = ?", current.ID).
		Updates(map[string]any{
			"status":       row.Status,
			"progress":     row.Progress,
			"last_page":    row.LastPage,
			"metadata":     row.Metadata,
			"completed_at": row.CompletedAt,
		}).Error; err != nil {
		return err
	}
	row.ID = current.ID
	row.CreatedAt = current.CreatedAt
	return nil
}
