package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/requestdata"
	"github.com/pathlight/pathlight-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me returns the authenticated user plus the routing flags the UI needs
// to decide between dashboard, onboarding and assessment.
func (uh *UserHandler) Me(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apperrors.Authentication("not authenticated"))
		return
	}
	user, err := uh.userService.GetByID(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"user":                user,
		"requires_onboarding": rd.RequiresOnboarding,
		"requires_assessment": rd.RequiresAssessment,
	})
}

func (uh *UserHandler) UpdateProfile(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apperrors.Authentication("not authenticated"))
		return
	}
	var req struct {
		Profile json.RawMessage `json:"profile"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperrors.Validation("invalid request body"))
		return
	}
	user, err := uh.userService.UpdateProfile(c.Request.Context(), rd.UserID, req.Profile)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}

func (uh *UserHandler) Deactivate(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apperrors.Authentication("not authenticated"))
		return
	}
	if err := uh.userService.Deactivate(c.Request.Context(), rd.UserID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "account deactivated"})
}
