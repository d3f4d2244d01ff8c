package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/services"
	"github.com/pathlight/pathlight-backend/internal/types"
)

// AuthCookieName is the HTTP-only cookie carrying the signed token.
const AuthCookieName = "pathlight_token"

type AuthHandler struct {
	authService    services.AuthService
	studentService services.StudentService
	userService    services.UserService
	cookieSecure   bool
}

func NewAuthHandler(authService services.AuthService, studentService services.StudentService, userService services.UserService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		studentService: studentService,
		userService:    userService,
		cookieSecure:   cookieSecure,
	}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password"`
		Role      string `json:"role"`
		Grade     string `json:"grade"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperrors.Validation("invalid request body"))
		return
	}
	if req.Role == "" {
		req.Role = types.RoleStudent
	}
	if !types.ValidRole(req.Role) {
		RespondError(c, apperrors.Validation("unknown role"))
		return
	}

	user := &types.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Role:      req.Role,
	}

	if req.Role == types.RoleStudent {
		student, err := ah.studentService.RegisterStudent(c.Request.Context(), user, req.Grade)
		if err != nil {
			RespondError(c, err)
			return
		}
		RespondOK(c, gin.H{"user": user, "student": student})
		return
	}

	if err := ah.authService.RegisterUser(c.Request.Context(), user); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperrors.Validation("invalid request body"))
		return
	}

	token, user, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}

	maxAge := int(ah.authService.GetTokenTTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookieName, token, maxAge, "/", "", ah.cookieSecure, true)

	// students clear the flag through onboarding; other roles clear it here
	if user.FirstTimeLogin && user.Role != types.RoleStudent {
		if err := ah.userService.MarkLoggedIn(c.Request.Context(), user.ID); err != nil {
			RespondError(c, err)
			return
		}
	}

	RespondOK(c, gin.H{"user": user, "first_time_login": user.FirstTimeLogin})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookieName, "", -1, "/", "", ah.cookieSecure, true)
	RespondOK(c, gin.H{"message": "logged out"})
}
