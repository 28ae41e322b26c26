package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "advancedapi/internal/errors"
	"advancedapi/internal/logging"
)

// respond writes the success envelope: {success: true, message?, ...payload}.
func respond(c echo.Context, status int, message string, payload echo.Map) error {
	body := echo.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(status, body)
}

// bind decodes the request into req and runs struct validation.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.BadRequest("بيانات الطلب غير صحيحة")
	}
	return c.Validate(req)
}

// fail converts a service error into the HTTP error the error handler renders.
// Server side failures are logged here since the caller only sees a generic message.
func fail(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		logging.Error().Err(err).Msg("request failed")
	}
	return httpErr
}
