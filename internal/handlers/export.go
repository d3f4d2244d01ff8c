package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pathlight/pathlight-backend/internal/services"
)

type ExportHandler struct {
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

func (eh *ExportHandler) ProgressCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="student_progress.csv"`)
	if err := eh.exportService.ExportProgressCSV(c.Request.Context(), c.Writer); err != nil {
		// headers may already be out; log-and-abort is the best we can do
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func (eh *ExportHandler) RosterCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="student_roster.csv"`)
	if err := eh.exportService.ExportRosterCSV(c.Request.Context(), c.Writer); err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}
