package handler

import (
	"errors"
	"log"
	"net/http"

	"crm-backend/internal/otp"
	"crm-backend/internal/service"
	"crm-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps service and otp sentinel errors onto HTTP statuses.
// Unexpected errors are logged and returned as a generic 500; the detail only
// leaks in debug mode.
func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		if gin.Mode() == gin.ReleaseMode {
			message = "internal server error"
		}
	}

	c.JSON(status, response.Error(status, message))
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrAdminNotFound),
		errors.Is(err, service.ErrCustomerNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidPhoneNumber),
		errors.Is(err, service.ErrPhoneAlreadyRegistered),
		errors.Is(err, service.ErrNameTooShort),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrCustomerNameRequired),
		errors.Is(err, service.ErrCustomerPhoneExists),
		errors.Is(err, otp.ErrNotFound),
		errors.Is(err, otp.ErrExpired),
		errors.Is(err, otp.ErrMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
