package utils

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/normalization"
	"github.com/pathlight/pathlight-backend/internal/repos"
	"github.com/pathlight/pathlight-backend/internal/types"
)

func ValidateRegistration(ctx context.Context, userRepo repos.UserRepo, user *types.User) error {
	if user == nil {
		return apperrors.Validation("no user given")
	}
	if user.Email == "" {
		return apperrors.Validation("an email is required to register")
	}
	if user.Password == "" {
		return apperrors.Validation("a password is required to register")
	}
	if user.FirstName == "" {
		return apperrors.Validation("a first name is required to register")
	}
	if user.LastName == "" {
		return apperrors.Validation("a last name is required to register")
	}
	if !types.ValidRole(user.Role) {
		return apperrors.Validation("unknown role")
	}
	exists, err := userRepo.EmailExists(ctx, nil, user.Email)
	if err != nil {
		return apperrors.DataAccess("check email", err)
	}
	if exists {
		return apperrors.Validation("email is already in use")
	}
	return nil
}

func ValidateLogin(email, password string) error {
	if email == "" {
		return apperrors.Validation("email is required to login")
	}
	if password == "" {
		return apperrors.Validation("password is required to login")
	}
	return nil
}

func HashPassword(user *types.User) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Validation("could not hash password")
	}
	user.Password = string(hashed)
	return nil
}

func NormalizeUserFields(user *types.User) {
	user.Email = normalization.ParseInputString(user.Email)
	user.FirstName = normalization.ParseName(user.FirstName)
	user.LastName = normalization.ParseName(user.LastName)
	user.Role = normalization.ParseInputString(user.Role)
}
