package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/codebuddy/server/internal/service"
)

// errorBody is the stable error shape for every failed call.
type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// fail maps service errors onto the error taxonomy: validation 400,
// credentials 401, not-found 404, state/email conflicts 409, everything else
// a retryable 500 that leaks no internals.
func fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	message := "internal error, please retry"

	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
		message = "not found"
	case errors.Is(err, service.ErrSessionNotActive):
		status = http.StatusConflict
		message = "session not found or inactive"
	case errors.Is(err, service.ErrEmailTaken):
		status = http.StatusConflict
		message = err.Error()
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.JSON(status, errorBody{Success: false, Message: message})
}
