package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/repos"
	"github.com/pathlight/pathlight-backend/internal/types"
)

func newTestStudentService(t *testing.T) (StudentService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	userRepo := repos.NewUserRepo(db, log)
	studentRepo := repos.NewStudentRepo(db, log)
	authService := NewAuthService(db, log, userRepo, studentRepo, nil, "test-secret", time.Hour)
	return NewStudentService(db, log, studentRepo, userRepo, authService), db
}

var uniqueIDPattern = regexp.MustCompile(`^STU-[ABCDEFGHJKMNPQRSTUVWXYZ23456789]{6}$`)

func TestRegisterStudentIssuesUniqueID(t *testing.T) {
	svc, _ := newTestStudentService(t)
	ctx := context.Background()

	user := &types.User{
		Email:     "kid@example.com",
		FirstName: "Sam",
		LastName:  "Park",
		Password:  "pw123456",
		Role:      types.RoleTeacher, // forced to student regardless
	}
	student, err := svc.RegisterStudent(ctx, user, "6")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if user.Role != types.RoleStudent {
		t.Errorf("role = %s, registration must force student", user.Role)
	}
	if !uniqueIDPattern.MatchString(student.UniqueID) {
		t.Errorf("unique id = %s, want STU- plus six unambiguous characters", student.UniqueID)
	}
	if student.Grade != "6" {
		t.Errorf("grade = %s, want 6", student.Grade)
	}
	if student.OnboardingCompleted || student.AssessmentCompleted {
		t.Error("fresh student must start with both flags unset")
	}
}

func TestRegisterStudentUniqueIDsDiffer(t *testing.T) {
	svc, _ := newTestStudentService(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		user := &types.User{
			Email:     "kid" + string(rune('a'+i)) + "@example.com",
			FirstName: "Kid",
			LastName:  "Test",
			Password:  "pw123456",
		}
		student, err := svc.RegisterStudent(ctx, user, "7")
		if err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
		if seen[student.UniqueID] {
			t.Fatalf("duplicate unique id issued: %s", student.UniqueID)
		}
		seen[student.UniqueID] = true
	}
}

func TestCompleteOnboardingFlipsBothFlags(t *testing.T) {
	svc, db := newTestStudentService(t)
	ctx := context.Background()

	user := &types.User{Email: "onb@example.com", FirstName: "On", LastName: "Board", Password: "pw123456"}
	student, err := svc.RegisterStudent(ctx, user, "8")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := svc.CompleteOnboarding(ctx, user.ID)
	if err != nil {
		t.Fatalf("complete onboarding: %v", err)
	}
	if !updated.OnboardingCompleted {
		t.Error("onboarding_completed not set")
	}

	var reloadedUser types.User
	if err := db.First(&reloadedUser, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloadedUser.FirstTimeLogin {
		t.Error("first_time_login still set after onboarding")
	}

	var reloadedStudent types.Student
	if err := db.First(&reloadedStudent, "id = ?", student.ID).Error; err != nil {
		t.Fatalf("reload student: %v", err)
	}
	if !reloadedStudent.OnboardingCompleted {
		t.Error("onboarding_completed not persisted")
	}
}

func TestGetByUniqueIDUnknown(t *testing.T) {
	svc, _ := newTestStudentService(t)

	if _, err := svc.GetByUniqueID(context.Background(), "STU-NOPE99"); !apperrors.IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}
