package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/types"
)

type StudentProgressRepo interface {
	GetByKey(ctx context.Context, tx *gorm.DB, userID, studentID uuid.UUID) (*types.StudentProgress, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.StudentProgress) error
	UpdateFields(ctx context.Context, tx *gorm.DB, userID, studentID uuid.UUID, updates map[string]any) error
}

type studentProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentProgressRepo(db *gorm.DB, baseLog *logger.Logger) StudentProgressRepo {
	return &studentProgressRepo{db: db, log: baseLog.With("repo", "StudentProgressRepo")}
}

func (r *studentProgressRepo) GetByKey(ctx context.Context, tx *gorm.DB, userID, studentID uuid.UUID) (*types.StudentProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || studentID == uuid.Nil {
		return nil, nil
	}

	var results []*types.StudentProgress
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND student_id = ?", userID, studentID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *studentProgressRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.StudentProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	var existing []*types.StudentProgress
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND student_id = ?", row.UserID, row.StudentID).
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
		Model(&types.StudentProgress{}).
		Where("id = ?", current.ID).
		Updates(map[string]any{
			"modules_completed": row.ModulesCompleted,
			"xp":                row.XP,
			"streak_days":       row.StreakDays,
			"career_progress":   row.CareerProgress,
		}).Error; err != nil {
		return err
	}
	row.ID = current.ID
	row.CreatedAt = current.CreatedAt
	return nil
}

func (r *studentProgressRepo) UpdateFields(ctx context.Context, tx *gorm.DB, userID, studentID uuid.UUID, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || studentID == uuid.Nil || len(updates) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.StudentProgress{}).
		Where("user_id = ? AND student_id = ?", userID, studentID).
		Updates(updates).Error; err != nil {
		return err
	}
	return nil
}
