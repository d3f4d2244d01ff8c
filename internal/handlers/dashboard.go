package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/requestdata"
	"github.com/pathlight/pathlight-backend/internal/services"
	"github.com/pathlight/pathlight-backend/internal/types"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Get shapes the payload by the caller's role. Students and parents see
// one student's progress; teachers and organizations see the cohort;
// admins see the platform totals.
func (dh *DashboardHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apperrors.Authentication("not authenticated"))
		return
	}

	switch rd.Role {
	case types.RoleStudent, types.RoleParent:
		payload, err := dh.dashboardService.StudentDashboard(c.Request.Context(), rd.UserID)
		if err != nil {
			RespondError(c, err)
			return
		}
		RespondOK(c, gin.H{"role": rd.Role, "dashboard": payload})
	case types.RoleTeacher, types.RoleOrganization:
		payload, err := dh.dashboardService.CohortDashboard(c.Request.Context())
		if err != nil {
			RespondError(c, err)
			return
		}
		RespondOK(c, gin.H{"role": rd.Role, "dashboard": payload})
	case types.RoleAdmin, types.RolePlatformSuperAdmin:
		payload, err := dh.dashboardService.PlatformDashboard(c.Request.Context())
		if err != nil {
			RespondError(c, err)
			return
		}
		RespondOK(c, gin.H{"role": rd.Role, "dashboard": payload})
	default:
		RespondError(c, apperrors.Authorization("no dashboard for role"))
	}
}
