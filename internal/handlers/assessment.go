package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/requestdata"
	"github.com/pathlight/pathlight-backend/internal/services"
)

type AssessmentHandler struct {
	assessmentService services.AssessmentService
	studentService    services.StudentService
}

func NewAssessmentHandler(assessmentService services.AssessmentService, studentService services.StudentService) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentService: assessmentService,
		studentService:    studentService,
	}
}

// uniqueIDForCaller resolves the caller's student record; assessment rows
// key on unique_id, not on the user id in the token.
func (h *AssessmentHandler) uniqueIDForCaller(c *gin.Context) (string, error) {
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

func (h *AssessmentHandler) Start(c *gin.Context) {
	uniqueID, err := h.uniqueIDForCaller(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var req struct {
		AssessmentType string          `json:"assessment_type"`
		Questions      json.RawMessage `json:"questions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperrors.Validation("invalid request body"))
		return
	}
	resp, err := h.assessmentService.StartAssessment(c.Request.Context(), uniqueID, req.AssessmentType, req.Questions)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"assessment": resp})
}

func (h *AssessmentHandler) SubmitAnswers(c *gin.Context) {
	uniqueID, err := h.uniqueIDForCaller(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var req struct {
		AssessmentType  string          `json:"assessment_type"`
		Answers         json.RawMessage `json:"answers"`
		CurrentQuestion *int            `json:"current_question"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperrors.Validation("invalid request body"))
		return
	}
	resp, err := h.assessmentService.SubmitAnswers(c.Request.Context(), uniqueID, req.AssessmentType, req.Answers, req.CurrentQuestion)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"assessment": resp})
}

func (h *AssessmentHandler) Finalize(c *gin.Context) {
	uniqueID, err := h.uniqueIDForCaller(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var req struct {
		AssessmentType string          `json:"assessment_type"`
		Result         json.RawMessage `json:"result"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperrors.Validation("invalid request body"))
		return
	}
	resp, err := h.assessmentService.FinalizeAssessment(c.Request.Context(), uniqueID, req.AssessmentType, req.Result)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"assessment": resp})
}

func (h *AssessmentHandler) GetMine(c *gin.Context) {
	uniqueID, err := h.uniqueIDForCaller(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	responses, err := h.assessmentService.GetResponses(c.Request.Context(), uniqueID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"assessments": responses})
}

// GetForStudent is the teacher/org view onto a given student's responses.
func (h *AssessmentHandler) GetForStudent(c *gin.Context) {
	uniqueID := c.Param("uniqueId")
	if uniqueID == "" {
		RespondError(c, apperrors.Validation("unique id is required"))
		return
	}
	responses, err := h.assessmentService.GetResponses(c.Request.Context(), uniqueID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"assessments": responses})
}
