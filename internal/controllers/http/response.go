package http

import (
	"errors"
	"net/http"

	"dealer-portal/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const genericErrorMessage = "Something went wrong. Please try again."

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "data": MessageResponse{Message: message}})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrPermission), errors.Is(err, domain.ErrInvalidNonce):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondError writes the failure envelope. Errors without a user facing
// message are logged and replaced by a generic one.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	status := statusFor(err)
	msg := domain.UserMessage(err)
	if msg == "" || status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("request_id", c.GetString(ctxRequestID)).
			Str("path", c.FullPath()).
			Msg("request failed")
		msg = genericErrorMessage
	}
	respondMessage(c, status, msg)
}
