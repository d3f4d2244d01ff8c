package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/repos"
	"github.com/pathlight/pathlight-backend/internal/types"
)

const uniqueIDAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

type StudentService interface {
	RegisterStudent(ctx context.Context, user *types.User, grade string) (*types.Student, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*types.Student, error)
	GetByUniqueID(ctx context.Context, uniqueID string) (*types.Student, error)
	ListAll(ctx context.Context) ([]*types.Student, error)
	CompleteOnboarding(ctx context.Context, userID uuid.UUID) (*types.Student, error)
	MarkAssessmentCompleted(ctx context.Context, studentID uuid.UUID) error
}

type studentService struct {
	db          *gorm.DB
	log         *logger.Logger
	studentRepo repos.StudentRepo
	userRepo    repos.UserRepo
	authService AuthService
}

func NewStudentService(db *gorm.DB, log *logger.Logger, studentRepo repos.StudentRepo, userRepo repos.UserRepo, authService AuthService) StudentService {
	return &studentService{
		db:          db,
		log:         log.With("service", "StudentService"),
		studentRepo: studentRepo,
		userRepo:    userRepo,
		authService: authService,
	}
}

// RegisterStudent creates the user (role forced to student) plus the student
// record carrying the freshly issued unique_id, in one transaction.
func (ss *studentService) RegisterStudent(ctx context.Context, user *types.User, grade string) (*types.Student, error) {
	if user == nil {
		return nil, apperrors.Validation("no user given")
	}
	user.Role = types.RoleStudent
	if err := ss.authService.RegisterUser(ctx, user); err != nil {
		return nil, err
	}

	var student *types.Student
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		uniqueID, err := ss.issueUniqueID(ctx, tx)
		if err != nil {
			return err
		}
		student = &types.Student{
			ID:       uuid.New(),
			UserID:   user.ID,
			UniqueID: uniqueID,
			Grade:    grade,
		}
		if _, err := ss.studentRepo.Create(ctx, tx, []*types.Student{student}); err != nil {
			return apperrors.DataAccess("create student", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ss.log.Info("Student registered", "student_id", student.ID, "unique_id", student.UniqueID)
	return student, nil
}

// issueUniqueID draws STU-XXXXXX codes until one is free. Collisions are
// vanishingly rare at this alphabet size but the check is cheap.
func (ss *studentService) issueUniqueID(ctx context.Context, tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code := make([]byte, 6)
		for i := range code {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(uniqueIDAlphabet))))
			if err != nil {
				return "", apperrors.DataAccess("issue unique id", err)
			}
			code[i] = uniqueIDAlphabet[n.Int64()]
		}
		candidate := "STU-" + string(code)
		exists, err := ss.studentRepo.UniqueIDExists(ctx, tx, candidate)
		if err != nil {
			return "", apperrors.DataAccess("check unique id", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", apperrors.DataAccess("issue unique id", fmt.Errorf("exhausted attempts"))
}

func (ss *studentService) GetByUserID(ctx context.Context, userID uuid.UUID) (*types.Student, error) {
	if userID == uuid.Nil {
		return nil, apperrors.Validation("user id is required")
	}
	student, err := ss.studentRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, apperrors.DataAccess("load student", err)
	}
	if student == nil {
		return nil, apperrors.NotFound("student not found")
	}
	return student, nil
}

func (ss *studentService) GetByUniqueID(ctx context.Context, uniqueID string) (*types.Student, error) {
	if uniqueID == "" {
		return nil, apperrors.Validation("unique id is required")
	}
	student, err := ss.studentRepo.GetByUniqueID(ctx, nil, uniqueID)
	if err != nil {
		return nil, apperrors.DataAccess("load student", err)
	}
	if student == nil {
		return nil, apperrors.NotFound("student not found")
	}
	return student, nil
}

func (ss *studentService) ListAll(ctx context.Context) ([]*types.Student, error) {
	students, err := ss.studentRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, apperrors.DataAccess("list students", err)
	}
	return students, nil
}

func (ss *studentService) CompleteOnboarding(ctx context.Context, userID uuid.UUID) (*types.Student, error) {
	student, err := ss.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	err = ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := ss.studentRepo.UpdateFields(ctx, tx, student.ID, map[string]any{
			"onboarding_completed": true,
			"updated_at":           now,
		}); err != nil {
			return err
		}
		return ss.userRepo.UpdateFields(ctx, tx, userID, map[string]any{
			"first_time_login": false,
			"updated_at":       now,
		})
	})
	if err != nil {
		return nil, apperrors.DataAccess("complete onboarding", err)
	}
	student.OnboardingCompleted = true
	return student, nil
}

func (ss *studentService) MarkAssessmentCompleted(ctx context.Context, studentID uuid.UUID) error {
	if studentID == uuid.Nil {
		return apperrors.Validation("student id is required")
	}
	if err := ss.studentRepo.UpdateFields(ctx, nil, studentID, map[string]any{
		"assessment_completed": true,
		"updated_at":           time.Now().UTC(),
	}); err != nil {
		return apperrors.DataAccess("mark assessment completed", err)
	}
	return nil
}
