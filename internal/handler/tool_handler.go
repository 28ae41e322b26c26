package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"advancedapi/internal/service"
)

// ToolHandler exposes the developer utilities.
type ToolHandler struct {
	service service.ToolsService
}

// NewToolHandler builds a handler.
func NewToolHandler(s service.ToolsService) *ToolHandler {
	return &ToolHandler{service: s}
}

// QRRequest asks for a QR code image link.
type QRRequest struct {
	Text string `json:"text"`
	Size int    `json:"size"`
}

// ShortenRequest asks for a short link.
type ShortenRequest struct {
	URL string `json:"url"`
}

// HashRequest asks for a digest.
type HashRequest struct {
	Text      string `json:"text"`
	Algorithm string `json:"algorithm"`
}

// Base64Request asks for an encode or decode.
type Base64Request struct {
	Text   string `json:"text"`
	Action string `json:"action"`
}

// JSONFormatRequest asks for a formatted JSON document.
type JSONFormatRequest struct {
	JSON   string `json:"json"`
	Minify bool   `json:"minify"`
}

// QRCode godoc
// @Summary Generate a QR code link
// @Tags tools
// @Accept json
// @Produce json
// @Param request body QRRequest true "Text and size (10-1000, default 200)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /tools/qr-generator [post]
func (h *ToolHandler) QRCode(c echo.Context) error {
	req := QRRequest{Size: service.DefaultQRSize}
	if err := bind(c, &req); err != nil {
		return err
	}
	qr, err := h.service.QRCode(req.Text, req.Size)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "تم إنشاء رمز QR بنجاح", echo.Map{"qrCode": qr})
}

// ShortenURL godoc
// @Summary Shorten a URL
// @Tags tools
// @Accept json
// @Produce json
// @Param request body ShortenRequest true "URL"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /tools/url-shortener [post]
func (h *ToolHandler) ShortenURL(c echo.Context) error {
	var req ShortenRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	link, err := h.service.ShortenURL(req.URL)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "تم اختصار الرابط بنجاح", echo.Map{"data": link})
}

// GeneratePassword godoc
// @Summary Generate a random password
// @Tags tools
// @Accept json
// @Produce json
// @Param request body service.PasswordOptions false "Options"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /tools/password-generator [post]
func (h *ToolHandler) GeneratePassword(c echo.Context) error {
	opts := service.DefaultPasswordOptions()
	if err := bind(c, &opts); err != nil {
		return err
	}
	password, err := h.service.GeneratePassword(opts)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "تم إنشاء كلمة المرور بنجاح", echo.Map{"data": password})
}

// Hash godoc
// @Summary Hash a text
// @Tags tools
// @Accept json
// @Produce json
// @Param request body HashRequest true "Text and algorithm (md5, sha1, sha256, sha512)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /tools/hash-generator [post]
func (h *ToolHandler) Hash(c echo.Context) error {
	var req HashRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.service.Hash(req.Text, req.Algorithm)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "تم إنشاء الـ Hash بنجاح", echo.Map{"data": result})
}

// Base64 godoc
// @Summary Base64 encode or decode
// @Tags tools
// @Accept json
// @Produce json
// @Param request body Base64Request true "Text and action (encode, decode)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /tools/base64 [post]
func (h *ToolHandler) Base64(c echo.Context) error {
	var req Base64Request
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.service.Base64(req.Text, req.Action)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "تم "+result.Operation+" النص بنجاح", echo.Map{"data": result})
}

// FormatJSON godoc
// @Summary Format or minify JSON
// @Tags tools
// @Accept json
// @Produce json
// @Param request body JSONFormatRequest true "JSON text"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /tools/json-formatter [post]
func (h *ToolHandler) FormatJSON(c echo.Context) error {
	var req JSONFormatRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.service.FormatJSON(req.JSON, req.Minify)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "تم تنسيق JSON بنجاح", echo.Map{"data": result})
}
