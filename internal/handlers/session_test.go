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

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSessionHandler_CreateRejectsMalformedBody(t *testing.T) {
	h := NewSessionHandler(logrus.New(), nil)

	router := gin.New()
	router.POST("/sessions", h.Create)

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST")
}

func TestSessionHandler_CreateRejectsMissingUserID(t *testing.T) {
	h := NewSessionHandler(logrus.New(), nil)

	router := gin.New()
	router.POST("/sessions", h.Create)

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_FAILED")
}

func TestSessionHandler_LoadMoreRejectsMalformedSessionID(t *testing.T) {
	h := NewSessionHandler(logrus.New(), nil)

	router := gin.New()
	router.GET("/sessions/:sessionId/more", h.LoadMore)

	req := httptest.NewRequest(http.MethodGet, "/sessions/not-a-uuid/more", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_SESSION_ID")
}

