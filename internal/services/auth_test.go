package services

import (
	"context"
	"testing"
	"time"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/repos"
	"github.com/pathlight/pathlight-backend/internal/requestdata"
	"github.com/pathlight/pathlight-backend/internal/types"
)

func newTestAuthService(t *testing.T) AuthService {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	return NewAuthService(
		db,
		log,
		repos.NewUserRepo(db, log),
		repos.NewStudentRepo(db, log),
		nil,
		"test-secret",
		time.Hour,
	)
}

func TestRegisterAndLoginRoundTrip(t *testing.T) {
	as := newTestAuthService(t)
	ctx := context.Background()

	user := &types.User{
		Email:     "  Jamie@Example.COM ",
		FirstName: "Jamie",
		LastName:  "Lee",
		Password:  "hunter2!",
		Role:      types.RoleStudent,
	}
	if err := as.RegisterUser(ctx, user); err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "jamie@example.com" {
		t.Errorf("email = %s, want normalized", user.Email)
	}
	if user.Password == "hunter2!" {
		t.Error("password stored in the clear")
	}

	token, loggedIn, err := as.LoginUser(ctx, "JAMIE@example.com", "hunter2!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if loggedIn.ID != user.ID {
		t.Errorf("logged-in user = %s, want %s", loggedIn.ID, user.ID)
	}

	authedCtx, err := as.SetContextFromToken(ctx, token)
	if err != nil {
		t.Fatalf("set context: %v", err)
	}
	rd := requestdata.GetRequestData(authedCtx)
	if rd == nil {
		t.Fatal("no request data in context")
	}
	if rd.UserID != user.ID || rd.Role != types.RoleStudent {
		t.Errorf("request data = %+v", rd)
	}
	if !rd.RequiresOnboarding {
		t.Error("fresh student should require onboarding")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	as := newTestAuthService(t)
	ctx := context.Background()

	user := &types.User{
		Email:     "casey@example.com",
		FirstName: "Casey",
		LastName:  "Ng",
		Password:  "correct-horse",
		Role:      types.RoleTeacher,
	}
	if err := as.RegisterUser(ctx, user); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := as.LoginUser(ctx, "casey@example.com", "wrong"); !apperrors.IsAuthentication(err) {
		t.Errorf("wrong password err = %v, want authentication", err)
	}
	if _, _, err := as.LoginUser(ctx, "nobody@example.com", "whatever"); !apperrors.IsAuthentication(err) {
		t.Errorf("unknown email err = %v, want authentication", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	as := newTestAuthService(t)
	ctx := context.Background()

	first := &types.User{Email: "dup@example.com", FirstName: "A", LastName: "B", Password: "pw", Role: types.RoleParent}
	if err := as.RegisterUser(ctx, first); err != nil {
		t.Fatalf("first register: %v", err)
	}
	second := &types.User{Email: "DUP@example.com", FirstName: "C", LastName: "D", Password: "pw", Role: types.RoleParent}
	if err := as.RegisterUser(ctx, second); !apperrors.IsValidation(err) {
		t.Errorf("duplicate register err = %v, want validation", err)
	}
}

func TestSetContextFromTokenRejectsGarbage(t *testing.T) {
	as := newTestAuthService(t)

	if _, err := as.SetContextFromToken(context.Background(), "not-a-token"); !apperrors.IsAuthentication(err) {
		t.Errorf("err = %v, want authentication", err)
	}
	if _, err := as.SetContextFromToken(context.Background(), ""); !apperrors.IsAuthentication(err) {
		t.Errorf("empty token err = %v, want authentication", err)
	}
}
