package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "advancedapi/internal/errors"
	"advancedapi/internal/middleware"
	"advancedapi/internal/service"
)

const (
	msgLocalAndExternal = "تم العثور على نتائج محلية وخارجية"
	msgExternalOnly     = "نتائج من قواعد البيانات الخارجية"
	msgPopularProvider  = "أفلام من TMDB"
	msgPopularDefaults  = "أفلام تجريبية - أضف TMDB_API_KEY للحصول على بيانات حقيقية"
)

// MovieHandler exposes the movie catalog.
type MovieHandler struct {
	service service.MovieService
}

// NewMovieHandler builds a handler.
func NewMovieHandler(s service.MovieService) *MovieHandler {
	return &MovieHandler{service: s}
}

func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Search godoc
// @Summary Search movies
// @Tags movies
// @Produce json
// @Param q query string true "Search term"
// @Param page query int false "Page number"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /movies/search [get]
func (h *MovieHandler) Search(c echo.Context) error {
	result, err := h.service.Search(c.Request().Context(), c.QueryParam("q"), pageParam(c))
	if err != nil {
		return fail(err)
	}

	message := msgExternalOnly
	if result.LocalCount > 0 {
		message = msgLocalAndExternal
	}
	return respond(c, http.StatusOK, message, echo.Map{
		"movies":       result.Movies,
		"totalResults": len(result.Movies),
		"page":         result.Page,
	})
}

// Popular godoc
// @Summary Popular movies
// @Tags movies
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} map[string]interface{}
// @Router /movies/popular [get]
func (h *MovieHandler) Popular(c echo.Context) error {
	result, err := h.service.Popular(c.Request().Context(), pageParam(c))
	if err != nil {
		return fail(err)
	}

	message := msgPopularDefaults
	if result.FromProvider {
		message = msgPopularProvider
	}
	return respond(c, http.StatusOK, message, echo.Map{
		"movies": result.Movies,
		"page":   result.Page,
	})
}

// Get godoc
// @Summary Movie details
// @Tags movies
// @Produce json
// @Param id path string true "Catalog UUID or TMDB id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /movies/{id} [get]
func (h *MovieHandler) Get(c echo.Context) error {
	lookup, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "", echo.Map{"movie": lookup.Value()})
}

// Create godoc
// @Summary Add a movie to the catalog
// @Tags movies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.MovieInput true "Movie"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /movies [post]
func (h *MovieHandler) Create(c echo.Context) error {
	var req service.MovieInput
	if err := bind(c, &req); err != nil {
		return err
	}

	movie, err := h.service.Create(c.Request().Context(), req, middleware.CurrentUser(c).ID)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusCreated, "تمت إضافة الفيلم بنجاح", echo.Map{"movie": movie.View()})
}

// Update godoc
// @Summary Replace a catalog movie
// @Tags movies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Movie ID"
// @Param request body service.MovieInput true "Movie"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /movies/{id} [put]
func (h *MovieHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(apperrors.ErrMovieNotFound)
	}
	var req service.MovieInput
	if err := bind(c, &req); err != nil {
		return err
	}

	movie, err := h.service.Update(c.Request().Context(), id, req)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "تم تحديث الفيلم بنجاح", echo.Map{"movie": movie.View()})
}

// Delete godoc
// @Summary Deactivate a catalog movie
// @Tags movies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Movie ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /movies/{id} [delete]
func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(apperrors.ErrMovieNotFound)
	}
	if err := h.service.Deactivate(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "تم حذف الفيلم بنجاح", nil)
}
