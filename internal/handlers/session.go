package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/requestdata"
	"github.com/pathlight/pathlight-backend/internal/services"
)

type SessionHandler struct {
	sessionService services.SessionService
	studentService services.StudentService
}

func NewSessionHandler(sessionService services.SessionService, studentService services.StudentService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		studentService: studentService,
	}
}

func (h *SessionHandler) SavePageData(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apperrors.Authentication("not authenticated"))
		return
	}
	var req struct {
		Page     string          `json:"page"`
		Data     json.RawMessage `json:"data"`
		Metadata json.RawMessage `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperrors.Validation("invalid request body"))
		return
	}
	if err := h.sessionService.SavePageData(c.Request.Context(), rd.UserID, req.Page, req.Data, req.Metadata); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"saved": true})
}

func (h *SessionHandler) LoadPageData(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apperrors.Authentication("not authenticated"))
		return
	}
	page := c.Param("page")
	snapshot, err := h.sessionService.LoadPageData(c.Request.Context(), rd.UserID, page)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"page_data": snapshot})
}

func (h *SessionHandler) UpdateNavigation(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apperrors.Authentication("not authenticated"))
		return
	}
	var req struct {
		Page string `json:"page"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperrors.Validation("invalid request body"))
		return
	}
	if err := h.sessionService.UpdateNavigationHistory(c.Request.Context(), rd.UserID, req.Page); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"saved": true})
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apperrors.Authentication("not authenticated"))
		return
	}
	var req struct {
		Page string `json:"page"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperrors.Validation("invalid request body"))
		return
	}

	// Non-student roles carry no student record; the session still tracks them.
	var studentID *uuid.UUID
	if student, err := h.studentService.GetByUserID(c.Request.Context(), rd.UserID); err == nil {
		studentID = &student.ID
	}

	session, err := h.sessionService.CreateSession(c.Request.Context(), rd.UserID, studentID, req.Page)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"session": session})
}

func (h *SessionHandler) GetActiveSession(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apperrors.Authentication("not authenticated"))
		return
	}
	session, err := h.sessionService.GetActiveSession(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"session": session})
}
