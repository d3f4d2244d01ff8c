package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/requestdata"
	"github.com/pathlight/pathlight-backend/internal/services"
	"github.com/pathlight/pathlight-backend/internal/types"
)

type LearningPathHandler struct {
	learningPathService services.LearningPathService
	studentService      services.StudentService
}

func NewLearningPathHandler(learningPathService services.LearningPathService, studentService services.StudentService) *LearningPathHandler {
	return &LearningPathHandler{
		learningPathService: learningPathService,
		studentService:      studentService,
	}
}

func (h *LearningPathHandler) uniqueIDForCaller(c *gin.Context) (string, error) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		return "", apperrors.Authentication("not authenticated")
	}
	student, err := h.studentService.GetByUserID(c.Request.Context(), rd.UserID)
	if err != nil {
		return "", err
	}
	return student.UniqueID, nil
}

// SaveRecommendation is the webhook receiver the recommendation pipeline
// calls back with a generated path. It carries the student's unique_id in
// the body, not a session cookie.
func (h *LearningPathHandler) SaveRecommendation(c *gin.Context) {
	var req struct {
		UniqueID string                   `json:"uniqueId"`
		Career   string                   `json:"career"`
		Output   types.LearningPathOutput `json:"output"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperrors.Validation("invalid request body"))
		return
	}
	saved, err := h.learningPathService.SaveRecommendation(c.Request.Context(), req.UniqueID, req.Career, req.Output)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"learning_path": saved})
}

func (h *LearningPathHandler) GetMine(c *gin.Context) {
	uniqueID, err := h.uniqueIDForCaller(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	paths, err := h.learningPathService.GetRecommendations(c.Request.Context(), uniqueID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"learning_paths": paths})
}

func (h *LearningPathHandler) RequestRecommendation(c *gin.Context) {
	uniqueID, err := h.uniqueIDForCaller(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var req struct {
		Payload json.RawMessage `json:"payload"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperrors.Validation("invalid request body"))
		return
	}
	delivered, err := h.learningPathService.RequestRecommendation(c.Request.Context(), uniqueID, req.Payload)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"delivered": delivered})
}
