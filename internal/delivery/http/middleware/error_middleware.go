package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"skillmatch-backend/internal/delivery/http/response"
	"skillmatch-backend/pkg/apperror"
	"skillmatch-backend/pkg/logger"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// Wrapped causes are only exposed when exposeDetails is set (development).
func ErrorHandler(exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = apperror.Internal(err)
		}

		attrs := []any{
			"status", appErr.Code,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", c.GetString(response.RequestIDKey),
		}
		if appErr.Err != nil {
			attrs = append(attrs, "error", appErr.Err)
		}

		var detail interface{}
		if exposeDetails && appErr.Err != nil {
			detail = appErr.Err.Error()
		}

		if appErr.Code >= http.StatusInternalServerError {
			logger.Log.Error("Request failed", attrs...)
			message := appErr.Message
			if appErr.Code == http.StatusInternalServerError {
				// never leak internals in the message
				message = "An unexpected error occurred. Please try again later."
			}
			response.Error(c, appErr.Code, message, detail)
			return
		}

		logger.Log.Debug("Request rejected", attrs...)
		response.Error(c, appErr.Code, appErr.Message, detail)
	}
}
