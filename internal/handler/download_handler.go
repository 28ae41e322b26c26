package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"advancedapi/internal/service"
)

const (
	noteYouTube = "هذه معلومات تجريبية - للحصول على معلومات حقيقية، أضف YouTube API key"
	noteMocked  = "هذه معلومات تجريبية - للحصول على معلومات حقيقية، ستحتاج لاستخدام أدوات خاصة"
)

// DownloadHandler exposes media info lookups.
type DownloadHandler struct {
	service service.DownloadService
}

// NewDownloadHandler builds a handler.
func NewDownloadHandler(s service.DownloadService) *DownloadHandler {
	return &DownloadHandler{service: s}
}

// LinkRequest carries the link to inspect.
type LinkRequest struct {
	URL string `json:"url"`
}

// YouTubeInfo godoc
// @Summary YouTube video info (placeholder data)
// @Tags download
// @Accept json
// @Produce json
// @Param request body LinkRequest true "Video link"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /download/youtube-info [post]
func (h *DownloadHandler) YouTubeInfo(c echo.Context) error {
	var req LinkRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	info, err := h.service.YouTubeInfo(req.URL)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "تم الحصول على معلومات الفيديو بنجاح", echo.Map{
		"videoInfo": info,
		"note":      noteYouTube,
	})
}

// InstagramInfo godoc
// @Summary Instagram post info (placeholder data)
// @Tags download
// @Accept json
// @Produce json
// @Param request body LinkRequest true "Post link"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /download/instagram-info [post]
func (h *DownloadHandler) InstagramInfo(c echo.Context) error {
	var req LinkRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	info, err := h.service.InstagramInfo(req.URL)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "تم الحصول على معلومات المنشور بنجاح", echo.Map{
		"postInfo": info,
		"note":     noteMocked,
	})
}

// TikTokInfo godoc
// @Summary TikTok video info (placeholder data)
// @Tags download
// @Accept json
// @Produce json
// @Param request body LinkRequest true "Video link"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /download/tiktok-info [post]
func (h *DownloadHandler) TikTokInfo(c echo.Context) error {
	var req LinkRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	info, err := h.service.TikTokInfo(req.URL)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "تم الحصول على معلومات الفيديو بنجاح", echo.Map{
		"videoInfo": info,
		"note":      noteMocked,
	})
}

// FileInfo godoc
// @Summary File metadata from a HEAD request
// @Tags download
// @Accept json
// @Produce json
// @Param request body LinkRequest true "File link"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /download/file-info [post]
func (h *DownloadHandler) FileInfo(c echo.Context) error {
	var req LinkRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	info, err := h.service.FileInfo(c.Request().Context(), req.URL)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "تم الحصول على معلومات الملف بنجاح", echo.Map{"fileInfo": info})
}
