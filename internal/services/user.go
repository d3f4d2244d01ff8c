package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/repos"
	"github.com/pathlight/pathlight-backend/internal/types"
)

type UserService interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, profile json.RawMessage) (*types.User, error)
	MarkLoggedIn(ctx context.Context, userID uuid.UUID) error
	Deactivate(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		db:       db,
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func (us *userService) GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	if userID == uuid.Nil {
		return nil, apperrors.Validation("user id is required")
	}
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, apperrors.DataAccess("load user", err)
	}
	if len(users) == 0 {
		return nil, apperrors.NotFound("user not found")
	}
	return users[0], nil
}

// UpdateProfile shallow-merges the provided keys over the stored role
// profile; it does not replace the whole object.
func (us *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, profile json.RawMessage) (*types.User, error) {
	if userID == uuid.Nil {
		return nil, apperrors.Validation("user id is required")
	}
	if len(profile) == 0 {
		return nil, apperrors.Validation("profile payload is required")
	}

	user, err := us.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	merged, err := mergeJSONObjects(json.RawMessage(user.Profile), profile)
	if err != nil {
		return nil, apperrors.Validation("profile must be a JSON object")
	}
	updates := map[string]any{
		"profile":    datatypes.JSON(merged),
		"updated_at": time.Now().UTC(),
	}
	if err := us.userRepo.UpdateFields(ctx, nil, userID, updates); err != nil {
		return nil, apperrors.DataAccess("update profile", err)
	}
	user.Profile = datatypes.JSON(merged)
	return user, nil
}

func (us *userService) MarkLoggedIn(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return apperrors.Validation("user id is required")
	}
	updates := map[string]any{
		"first_time_login": false,
		"updated_at":       time.Now().UTC(),
	}
	if err := us.userRepo.UpdateFields(ctx, nil, userID, updates); err != nil {
		return apperrors.DataAccess("mark logged in", err)
	}
	return nil
}

// Deactivate soft-deletes: users are never hard-deleted.
func (us *userService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return apperrors.Validation("user id is required")
	}
	updates := map[string]any{
		"is_active":  false,
		"updated_at": time.Now().UTC(),
	}
	if err := us.userRepo.UpdateFields(ctx, nil, userID, updates); err != nil {
		return apperrors.DataAccess("deactivate user", err)
	}
	return nil
}
