package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "advancedapi/internal/errors"
	"advancedapi/internal/middleware"
	"advancedapi/internal/service"
)

// SeedHandler handles catalog seeding endpoints.
type SeedHandler struct {
	importService service.ImportService
	enabled       bool
}

// NewSeedHandler creates a new seed handler. enabled reports whether the movie provider is configured.
func NewSeedHandler(importService service.ImportService, enabled bool) *SeedHandler {
	return &SeedHandler{importService: importService, enabled: enabled}
}

// SeedMoviesRequest selects how many provider pages to import.
type SeedMoviesRequest struct {
	Pages int `json:"pages" validate:"omitempty,min=1,max=20"`
}

// SeedMovies godoc
// @Summary Import popular movies from TMDB into the catalog
// @Tags seed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SeedMoviesRequest false "Pages to import (default 1)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /movies/import [post]
func (h *SeedHandler) SeedMovies(c echo.Context) error {
	if !h.enabled {
		return apperrors.BadRequest("أضف TMDB_API_KEY لاستيراد الأفلام")
	}
	req := SeedMoviesRequest{Pages: 1}
	if err := bind(c, &req); err != nil {
		return err
	}

	admin := middleware.CurrentUser(c)
	summary, err := h.importService.ImportPopular(c.Request().Context(), req.Pages, &admin.ID)
	if err != nil {
		return fail(err)
	}

	return respond(c, http.StatusOK, "تم استيراد الأفلام بنجاح", echo.Map{"import": summary})
}
