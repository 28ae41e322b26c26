package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "advancedapi/internal/errors"
	"advancedapi/internal/middleware"
	"advancedapi/internal/service"
)

// UserHandler exposes user endpoints.
type UserHandler struct {
	service service.UserService
}

// NewUserHandler builds a handler.
func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// UserStatusRequest toggles an account.
type UserStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// Profile godoc
// @Summary Current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	user := middleware.CurrentUser(c)
	return respond(c, http.StatusOK, "", echo.Map{
		"user": echo.Map{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"role":       user.Role,
			"fullName":   user.FullName(),
			"profile":    user.Profile,
			"apiUsage":   user.APIUsage,
			"lastActive": user.LastActive,
			"createdAt":  user.CreatedAt,
		},
	})
}

// Stats godoc
// @Summary User base statistics
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/stats [get]
func (h *UserHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "", echo.Map{"stats": stats})
}

// SetStatus godoc
// @Summary Activate or deactivate a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body UserStatusRequest true "Status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/status [patch]
func (h *UserHandler) SetStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(apperrors.ErrUserNotFound)
	}
	var req UserStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.service.SetActive(c.Request().Context(), id, *req.IsActive); err != nil {
		return fail(err)
	}

	message := "تم تعطيل المستخدم"
	if *req.IsActive {
		message = "تم تفعيل المستخدم"
	}
	return respond(c, http.StatusOK, message, echo.Map{"id": id, "isActive": *req.IsActive})
}
