package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestEngagementHandler_AppendRejectsMalformedBody(t *testing.T) {
	h := NewEngagementHandler(logrus.New(), nil)

	router := gin.New()
	router.POST("/engagements", h.Append)

	req := httptest.NewRequest(http.MethodPost, "/engagements", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST")
}

func TestEngagementHandler_ResetRejectsMalformedUserID(t *testing.T) {
	h := NewEngagementHandler(logrus.New(), nil)

	router := gin.New()
	router.POST("/users/:userId/engagements/reset", h.Reset)

	req := httptest.NewRequest(http.MethodPost, "/users/not-a-uuid/engagements/reset", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_USER_ID")
}
