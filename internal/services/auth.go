package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/normalization"
	"github.com/pathlight/pathlight-backend/internal/repos"
	"github.com/pathlight/pathlight-backend/internal/requestdata"
	"github.com/pathlight/pathlight-backend/internal/types"
	"github.com/pathlight/pathlight-backend/internal/utils"
)

// TokenClaims is the cookie token payload. The flag fields let the UI route
// a fresh login to onboarding or the assessment without a second request.
type TokenClaims struct {
	Email              string `json:"email"`
	Role               string `json:"role"`
	FirstTimeLogin     bool   `json:"firstTimeLogin"`
	RequiresOnboarding bool   `json:"requiresOnboarding"`
	RequiresAssessment bool   `json:"requiresAssessment"`
	jwt.RegisteredClaims
}

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) error
	LoginUser(ctx context.Context, email, password string) (string, *types.User, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetTokenTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	studentRepo   repos.StudentRepo
	avatarService AvatarService
	jwtSecretKey  string
	tokenTTL      time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	studentRepo repos.StudentRepo,
	avatarService AvatarService,
	jwtSecretKey string,
	tokenTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		studentRepo:   studentRepo,
		avatarService: avatarService,
		jwtSecretKey:  jwtSecretKey,
		tokenTTL:      tokenTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
	utils.NormalizeUserFields(user)
	if err := utils.ValidateRegistration(ctx, as.userRepo, user); err != nil {
		return err
	}
	if err := utils.HashPassword(user); err != nil {
		return err
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user.ID = uuid.New()
		if as.avatarService != nil {
			if err := as.avatarService.CreateUserAvatar(ctx, tx, user); err != nil {
				// a user without an avatar is still a user
				as.log.Warn("Avatar generation failed, registering without one", "error", err)
			}
		}
		if _, err := as.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
			return apperrors.DataAccess("create user", err)
		}
		return nil
	})
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, *types.User, error) {
	email = normalization.ParseInputString(email)
	if err := utils.ValidateLogin(email, password); err != nil {
		return "", nil, err
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", nil, apperrors.DataAccess("load user by email", err)
	}
	if len(users) == 0 {
		return "", nil, apperrors.Authentication("invalid email or password")
	}
	user := users[0]
	if !user.IsActive {
		return "", nil, apperrors.Authentication("account is deactivated")
	}
	if bErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); bErr != nil {
		return "", nil, apperrors.Authentication("invalid email or password")
	}

	token, err := as.generateToken(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (as *authService) generateToken(ctx context.Context, user *types.User) (string, error) {
	requiresOnboarding := false
	requiresAssessment := false
	if user.Role == types.RoleStudent {
		student, err := as.studentRepo.GetByUserID(ctx, nil, user.ID)
		if err != nil {
			return "", apperrors.DataAccess("load student for token", err)
		}
		if student != nil {
			requiresOnboarding = !student.OnboardingCompleted
			requiresAssessment = !student.AssessmentCompleted
		} else {
			// A student account with no student record yet still has the
			// whole funnel ahead of it.
			requiresOnboarding = true
			requiresAssessment = true
		}
	}

	claims := TokenClaims{
		Email:              user.Email,
		Role:               user.Role,
		FirstTimeLogin:     user.FirstTimeLogin,
		RequiresOnboarding: requiresOnboarding,
		RequiresAssessment: requiresAssessment,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", apperrors.Authentication("could not sign token")
	}
	return signed, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apperrors.Authentication("missing token")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, apperrors.Authentication("invalid or expired token")
	}
	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || !parsed.Valid {
		return ctx, apperrors.Authentication("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apperrors.Authentication("invalid user id in token")
	}

	rd := &requestdata.RequestData{
		TokenString:        tokenString,
		UserID:             userID,
		Email:              claims.Email,
		Role:               claims.Role,
		FirstTimeLogin:     claims.FirstTimeLogin,
		RequiresOnboarding: claims.RequiresOnboarding,
		RequiresAssessment: claims.RequiresAssessment,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetTokenTTL() time.Duration {
	return as.tokenTTL
}
