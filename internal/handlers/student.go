package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/requestdata"
	"github.com/pathlight/pathlight-backend/internal/services"
)

type StudentHandler struct {
	studentService services.StudentService
}

func NewStudentHandler(studentService services.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

func (sh *StudentHandler) GetMine(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apperrors.Authentication("not authenticated"))
		return
	}
	student, err := sh.studentService.GetByUserID(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"student": student})
}

func (sh *StudentHandler) GetByUniqueID(c *gin.Context) {
	uniqueID := c.Param("uniqueId")
	student, err := sh.studentService.GetByUniqueID(c.Request.Context(), uniqueID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"student": student})
}

func (sh *StudentHandler) List(c *gin.Context) {
	students, err := sh.studentService.ListAll(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"students": students, "count": len(students)})
}

// CompleteOnboarding flips both the onboarding flag and first_time_login;
// the UI stops routing the student into the wizard after this call.
func (sh *StudentHandler) CompleteOnboarding(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apperrors.Authentication("not authenticated"))
		return
	}
	student, err := sh.studentService.CompleteOnboarding(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"student": student})
}
