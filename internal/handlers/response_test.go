package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
)

func TestRespondErrorMapsStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"authentication", apperrors.Authentication("bad token"), http.StatusUnauthorized},
		{"authorization", apperrors.Authorization("wrong role"), http.StatusForbidden},
		{"not found", apperrors.NotFound("no such student"), http.StatusNotFound},
		{"validation", apperrors.Validation("bad payload"), http.StatusBadRequest},
		{"data access", apperrors.DataAccess("load row", errors.New("conn refused")), http.StatusInternalServerError},
		{"unclassified", errors.New("surprise"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			RespondError(c, tc.err)

			if w.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal body: %v", err)
			}
			if body["error"] == "" {
				t.Error("error message missing from envelope")
			}
		})
	}
}

func TestRespondErrorHidesDataAccessDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondError(c, apperrors.DataAccess("load row", errors.New("password=hunter2 dial failed")))

	if got := w.Body.String(); got != `{"error":"internal server error"}` {
		t.Errorf("body = %s, driver detail must not leak", got)
	}
}
