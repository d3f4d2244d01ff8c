package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/types"
)

type StudentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, students []*types.Student) ([]*types.Student, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Student, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Student, error)
	GetByUniqueID(ctx context.Context, tx *gorm.DB, uniqueID string) (*types.Student, error)
	UniqueIDExists(ctx context.Context, tx *gorm.DB, uniqueID string) (bool, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Student, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, updates map[string]any) error
}

type studentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentRepo(db *gorm.DB, baseLog *logger.Logger) StudentRepo {
	return &studentRepo{db: db, log: baseLog.With("repo", "StudentRepo")}
}

func (sr *studentRepo) Create(ctx context.Context, tx *gorm.DB, students []*types.Student) ([]*types.Student, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if len(students) == 0 {
		return []*types.Student{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (sr *studentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Student, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Student
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *studentRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Student, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if userID == uuid.Nil {
		return nil, nil
	}

	var results []*types.Student
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (sr *studentRepo) GetByUniqueID(ctx context.Context, tx *gorm.DB, uniqueID string) (*types.Student, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if uniqueID == "" {
		return nil, nil
	}

	var results []*types.Student
	if err := transaction.WithContext(ctx).
		Where("unique_id = ?", uniqueID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (sr *studentRepo) UniqueIDExists(ctx context.Context, tx *gorm.DB, uniqueID string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Student{}).
		Where("unique_id = ?", uniqueID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (sr *studentRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Student, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Student
	if err := transaction.WithContext(ctx).
		Preload("User").
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *studentRepo) UpdateFields(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if studentID == uuid.Nil || len(updates) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Student{}).
		Where("id = ?", studentID).
		Updates(updates).Error; err != nil {
		return err
	}
	return nil
}
