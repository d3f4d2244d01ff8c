package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pathlight/pathlight-backend/internal/handlers"
	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/repos"
	"github.com/pathlight/pathlight-backend/internal/services"
	"github.com/pathlight/pathlight-backend/internal/types"
)

func newTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.User{}, &types.Student{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	authService := services.NewAuthService(
		db, log,
		repos.NewUserRepo(db, log),
		repos.NewStudentRepo(db, log),
		nil, "test-secret", time.Hour,
	)
	user := &types.User{
		Email:     "teacher@example.com",
		FirstName: "Pat",
		LastName:  "Reyes",
		Password:  "pw123456",
		Role:      types.RoleTeacher,
	}
	if err := authService.RegisterUser(context.Background(), user); err != nil {
		t.Fatalf("register: %v", err)
	}
	token, _, err := authService.LoginUser(context.Background(), "teacher@example.com", "pw123456")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	am := NewAuthMiddleware(log, authService)
	router := gin.New()
	protected := router.Group("/", am.RequireAuth())
	protected.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	staff := protected.Group("/", am.RequireRoles(types.RoleTeacher, types.RoleOrganization))
	staff.GET("/staff", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	admin := protected.Group("/", am.RequireRoles(types.RoleAdmin))
	admin.GET("/admin", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	return router, token
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuthAcceptsCookie(t *testing.T) {
	router, token := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: handlers.AuthCookieName, Value: token})
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRequireAuthAcceptsBearerFallback(t *testing.T) {
	router, token := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRequireAuthRejectsTamperedToken(t *testing.T) {
	router, token := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: handlers.AuthCookieName, Value: token + "x"})
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	router, token := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.AddCookie(&http.Cookie{Name: handlers.AuthCookieName, Value: token})
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRequireRolesForbidsOtherRole(t *testing.T) {
	router, token := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: handlers.AuthCookieName, Value: token})
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}
