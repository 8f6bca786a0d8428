package apperrors

import (
	"gocast_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error *AppError `json:"error"`
}

type GinErrorHandler struct {
	Debug bool
}

var debug = true

// SetDebug controls whether unexpected error messages reach the client.
func SetDebug(enabled bool) {
	debug = enabled
}

func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
		if h.Debug {
			appErr.Details = err.Error()
		}
	}

	if appErr.Status() >= 500 {
		logger.CtxWithError(c.Request.Context(), "server error", err,
			"code", appErr.Code,
			"path", c.Request.URL.Path,
		)
	}

	// A streamed body may already be on the wire.
	if c.Writer.Written() {
		_ = c.Error(err)
		return
	}

	c.AbortWithStatusJSON(appErr.Status(), ErrorResponse{Error: appErr})
}

func HandleError(c *gin.Context, err error) {
	handler := &GinErrorHandler{Debug: debug}
	handler.HandleGinError(c, err)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
