package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/types"
)

type SessionPageDataRepo interface {
	GetByKey(ctx context.Context, tx *gorm.DB, userID uuid.UUID, page string) (*types.SessionPageData, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SessionPageData, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.SessionPageData) error
	UpdateFields(ctx context.Context, tx *gorm.DB, userID uuid.UUID, page string, updates map[string]any) error
}

type sessionPageDataRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionPageDataRepo(db *gorm.DB, baseLog *logger.Logger) SessionPageDataRepo {
	return &sessionPageDataRepo{db: db, log: baseLog.With("repo", "SessionPageDataRepo")}
}

func (r *sessionPageDataRepo) GetByKey(ctx context.Context, tx *gorm.DB, userID uuid.UUID, page string) (*types.SessionPageData, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || page == "" {
		return nil, nil
	}

	var results []*types.SessionPageData
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND page = ?", userID, page).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *sessionPageDataRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SessionPageData, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SessionPageData
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sessionPageDataRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.SessionPageData) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	// Whole-snapshot replace keyed by (user_id, page).
	var existing []*types.SessionPageData
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND page = ?", row.UserID, row.Page).
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
		Model(&types.SessionPageData{}).
		Where("id = ?", current.ID).
		Updates(map[string]any{
			"data":     row.Data,
			"metadata": row.Metadata,
			"saved_at": row.SavedAt,
		}).Error; err != nil {
		return err
	}
	row.ID = current.ID
	row.CreatedAt = current.CreatedAt
	return nil
}

func (r *sessionPageDataRepo) UpdateFields(ctx context.Context, tx *gorm.DB, userID uuid.UUID, page string, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || page == "" || len(updates) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.SessionPageData{}).
		Where("user_id = ? AND page = ?", userID, page).
		Updates(updates).Error; err != nil {
		return err
	}
	return nil
}
