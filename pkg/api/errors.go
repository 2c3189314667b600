package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridebook/pkg/logger"
	"ridebook/service"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrRideClosed),
		errors.Is(err, service.ErrNoValidFields),
		errors.Is(err, service.ErrInProgressRestricted),
		errors.Is(err, service.ErrCancelNotAllowed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrProfileCreation),
		errors.Is(err, service.ErrIdentityCreation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": msg}. Internal errors are logged and hidden from the client.
// Provisioning collaborator failures keep their detail.
func (h *Handler) respondError(c *gin.Context, err error) {
	code := statusFor(err)
	msg := err.Error()
	switch code {
	case http.StatusInternalServerError:
		h.log.Error("request failed",
			logger.String("method", c.Request.Method),
			logger.String("path", c.FullPath()),
			logger.Error(err),
		)
		msg = "internal server error"
	case http.StatusBadGateway:
		h.log.Warning("provisioning collaborator failed", logger.String("path", c.FullPath()), logger.Error(err))
	}
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
