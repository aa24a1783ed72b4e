package handler

import (
	"errors"
	"net/http"

	"authz/internal/service"
	"authz/pkg/response"

	"github.com/gin-gonic/gin"
)

// fail translates service errors into the HTTP taxonomy: 404 for missing
// entities, 403 for denied permissions, 401 for bad credentials, 400 for
// invalid input, opaque 500 for store faults.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Not found"))
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied"))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid email or password"))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Already exists"))
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Internal server error"))
	}
}
