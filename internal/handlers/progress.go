package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/requestdata"
	"github.com/pathlight/pathlight-backend/internal/services"
	"github.com/pathlight/pathlight-backend/internal/types"
)

type ProgressHandler struct {
	sessionService services.SessionService
	studentService services.StudentService
}

func NewProgressHandler(sessionService services.SessionService, studentService services.StudentService) *ProgressHandler {
	return &ProgressHandler{
		sessionService: sessionService,
		studentService: studentService,
	}
}

func (h *ProgressHandler) callerStudent(c *gin.Context) (uuid.UUID, *types.Student, error) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		return uuid.Nil, nil, apperrors.Authentication("not authenticated")
	}
	student, err := h.studentService.GetByUserID(c.Request.Context(), rd.UserID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return rd.UserID, student, nil
}

func (h *ProgressHandler) SaveModuleProgress(c *gin.Context) {
	userID, student, err := h.callerStudent(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var req struct {
		ModuleID string                       `json:"module_id"`
		Patch    services.ModuleProgressPatch `json:"patch"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperrors.Validation("invalid request body"))
		return
	}
	row, err := h.sessionService.SaveModuleProgress(c.Request.Context(), userID, student.ID, req.ModuleID, req.Patch)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"module_progress": row})
}

func (h *ProgressHandler) LoadModuleProgress(c *gin.Context) {
	userID, student, err := h.callerStudent(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	rows, err := h.sessionService.LoadModuleProgress(c.Request.Context(), userID, student.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"module_progress": rows})
}

func (h *ProgressHandler) SavePathProgress(c *gin.Context) {
	userID, student, err := h.callerStudent(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var req struct {
		PathID string                       `json:"path_id"`
		Patch  services.ModuleProgressPatch `json:"patch"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperrors.Validation("invalid request body"))
		return
	}
	row, err := h.sessionService.SavePathProgress(c.Request.Context(), userID, student.ID, req.PathID, req.Patch)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"path_progress": row})
}

func (h *ProgressHandler) LoadPathProgress(c *gin.Context) {
	userID, student, err := h.callerStudent(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	rows, err := h.sessionService.LoadPathProgress(c.Request.Context(), userID, student.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"path_progress": rows})
}

func (h *ProgressHandler) SaveCareerProgress(c *gin.Context) {
	userID, student, err := h.callerStudent(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var req struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperrors.Validation("invalid request body"))
		return
	}
	if err := h.sessionService.SaveCareerProgress(c.Request.Context(), userID, student.ID, req.Data); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"saved": true})
}

func (h *ProgressHandler) LoadCareerProgress(c *gin.Context) {
	userID, student, err := h.callerStudent(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	data, err := h.sessionService.LoadCareerProgress(c.Request.Context(), userID, student.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"career_progress": json.RawMessage(data)})
}

// SaveStudentProgress accepts cumulative totals, never increments.
func (h *ProgressHandler) SaveStudentProgress(c *gin.Context) {
	_, student, err := h.callerStudent(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var req services.StudentProgressTotals
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperrors.Validation("invalid request body"))
		return
	}
	if err := h.sessionService.SaveStudentProgress(c.Request.Context(), student.ID, req); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"saved": true})
}

func (h *ProgressHandler) MigrateExistingData(c *gin.Context) {
	userID, student, err := h.callerStudent(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	report, err := h.sessionService.MigrateExistingData(c.Request.Context(), userID, student.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"migration": report})
}
