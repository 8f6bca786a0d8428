package apperrors

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveError(t *testing.T, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", handler)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestHandleError_WritesAppError(t *testing.T) {
	w := serveError(t, func(c *gin.Context) {
		HandleError(c, ErrTalentNotFound(errors.New("record not found")))
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":{"code":"NOT_FOUND","domain":"talent","message":"Talent not found"}}`, w.Body.String())
}

func TestHandleError_HidesUnexpectedErrorsOutsideDebug(t *testing.T) {
	SetDebug(false)
	t.Cleanup(func() { SetDebug(true) })

	w := serveError(t, func(c *gin.Context) {
		HandleError(c, errors.New("dsn=postgres://secret"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
	assert.Contains(t, w.Body.String(), `"code":"INTERNAL_ERROR"`)
}

func TestHandleError_LeavesCommittedBodyAlone(t *testing.T) {
	w := serveError(t, func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		HandleError(c, ErrStorageUnavailable(errors.New("bucket gone")))
		require.Len(t, c.Errors, 1)
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "partial", w.Body.String())
}

func TestAppError(t *testing.T) {
	err := ErrFileTooLarge(errors.New("too big"), 10<<20)
	assert.Equal(t, http.StatusRequestEntityTooLarge, err.Status())
	assert.Equal(t, "[validation:LIMIT_EXCEEDED] File size exceeds the allowed limit of 10 MB: too big", err.Error())

	var target *AppError
	require.True(t, As(error(err), &target))
	assert.Equal(t, map[string]int64{"max_size_bytes": 10 << 20}, target.Details)

	assert.Equal(t, http.StatusInternalServerError, (&AppError{}).Status())
}
