package handler

import (
	"errors"
	"net/http"

	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// statusFor maps service error categories to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the standard error envelope for a service error.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	c.JSON(status, response.Error(status, err.Error()))
}
