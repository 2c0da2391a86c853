package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
)

const quotaMessage = "Quota Google Sheets terlampaui. Coba lagi dalam satu menit."

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case apperr.IsStoreDown(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	if errors.Is(err, apperr.ErrRateLimited) {
		return quotaMessage
	}
	return apperr.Message(err, "internal server error")
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), Response{
		Success: false,
		Error:   errorMessage(err),
	})
}

func (h *Handlers) fail(c *gin.Context, op string, err error) {
	if statusFor(err) >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "op", op, "path", c.Request.URL.Path, "error", err)
	}
	abortWithError(c, err)
}

// respondList writes items, degrading to an empty list while the store is
// unreachable.
func respondList[T any](h *Handlers, c *gin.Context, op string, items []T, err error) {
	if err != nil {
		if !apperr.IsStoreDown(err) {
			h.fail(c, op, err)
			return
		}
		h.logger.Error("Store unavailable, returning empty list", "op", op, "error", err)
		items = nil
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: items})
}
