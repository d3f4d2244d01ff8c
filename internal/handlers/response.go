package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
)

// RespondError maps the error class to a status code and emits the
// {"error": message} envelope every endpoint uses. Data-access detail
// never reaches the client.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"
	switch {
	case apperrors.IsAuthentication(err):
		status = http.StatusUnauthorized
		msg = err.Error()
	case apperrors.IsAuthorization(err):
		status = http.StatusForbidden
		msg = err.Error()
	case apperrors.IsNotFound(err):
		status = http.StatusNotFound
		msg = err.Error()
	case apperrors.IsValidation(err):
		status = http.StatusBadRequest
		msg = err.Error()
	}
	c.JSON(status, gin.H{"error": msg})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
