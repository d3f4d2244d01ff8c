package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/types"
)

type UserSessionRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserSession, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.UserSession) error
	UpdateFields(ctx context.Context, tx *gorm.DB, userID uuid.UUID, updates map[string]any) error
}

type userSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserSessionRepo(db *gorm.DB, baseLog *logger.Logger) UserSessionRepo {
	return &userSessionRepo{db: db, log: baseLog.With("repo", "UserSessionRepo")}
}

func (r *userSessionRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil {
		return nil, nil
	}

	var results []*types.UserSession
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

func (r *userSessionRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.UserSession) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	// One active session per user.
	var existing []*types.UserSession
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", row.UserID).
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
		Model(&types.UserSession{}).
		Where("id = ?", current.ID).
		Updates(map[string]any{
			"student_id":         row.StudentID,
			"current_page":       row.CurrentPage,
			"navigation_history": row.NavigationHistory,
			"last_active_at":     row.LastActiveAt,
		}).Error; err != nil {
		return err
	}
	row.ID = current.ID
	row.CreatedAt = current.CreatedAt
	return nil
}

func (r *userSessionRepo) UpdateFields(ctx context.Context, tx *gorm.DB, userID uuid.UUID, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || len(updates) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.UserSession{}).
		Where("user_id = ?", userID).
		Updates(updates).Error; err != nil {
		return err
	}
	return nil
}
