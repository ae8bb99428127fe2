package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/GameNest/services"
	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "Internal server error"

var errInvalidID = services.NewError(services.ErrValidation, "invalid id")

// respondError writes err as {"error": message} with the status of its
// category. Storage and unclassified errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": internalErrorMessage})
		return
	}

	message := err.Error()
	var serviceErr *services.ServiceError
	if errors.As(err, &serviceErr) {
		message = serviceErr.Message
	}
	c.JSON(status, gin.H{"error": message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrStorage):
		return http.StatusInternalServerError
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// bindJSON binds the request body into v and reports a validation error on
// malformed input.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return false
	}
	return true
}
