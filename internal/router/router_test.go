package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advancedapi/internal/auth"
	"advancedapi/internal/config"
	apperrors "advancedapi/internal/errors"
	"advancedapi/internal/handler"
	"advancedapi/internal/middleware"
	"advancedapi/internal/service"
)

func testConfig() *config.Config {
	return &config.Config{
		BodyLimit: "1K",
		RateLimit: config.RateLimit{WindowMS: 60000, MaxRequests: 100},
	}
}

func newTestServer(cfg *config.Config, database, cache handler.PingFunc) *echo.Echo {
	e := echo.New()
	authn := middleware.NewAuthenticator(auth.NewJWTService("test-secret"), nil)
	Register(e, cfg, authn, Handlers{
		General:  handler.NewGeneralHandler(database, cache, "1.0.0"),
		Auth:     handler.NewAuthHandler(nil),
		User:     handler.NewUserHandler(nil),
		Movie:    handler.NewMovieHandler(nil),
		Tool:     handler.NewToolHandler(service.NewToolsService()),
		Download: handler.NewDownloadHandler(service.NewDownloadService(nil, 0)),
		Seed:     handler.NewSeedHandler(nil, false),
	})
	return e
}

func do(e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var payload map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &payload)
	return rec, payload
}

func ok(context.Context) error { return nil }

func TestHome(t *testing.T) {
	e := newTestServer(testConfig(), ok, ok)

	rec, body := do(e, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "مرحباً بك في موقع API المتطور", body["message"])
	assert.Equal(t, "/api-docs", body["documentation"])
	assert.Len(t, body["features"], 6)
}

func TestHealth(t *testing.T) {
	down := func(context.Context) error { return errors.New("dial tcp: connection refused") }

	tests := []struct {
		name     string
		database handler.PingFunc
		cache    handler.PingFunc
		code     int
		status   string
	}{
		{"all up", ok, ok, http.StatusOK, "healthy"},
		{"cache down", ok, down, http.StatusOK, "degraded"},
		{"database down", down, ok, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestServer(testConfig(), tt.database, tt.cache)
			rec, body := do(e, http.MethodGet, "/healthz", "")
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.status, body["status"])
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	e := newTestServer(testConfig(), ok, ok)

	rec, body := do(e, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "المسار غير موجود", body["message"])

	rec, body = do(e, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestToolsEndpoint(t *testing.T) {
	e := newTestServer(testConfig(), ok, ok)

	rec, body := do(e, http.MethodPost, "/api/tools/hash-generator", `{"text":"abc","algorithm":"md5"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "تم إنشاء الـ Hash بنجاح", body["message"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", data["hash"])

	rec, body = do(e, http.MethodPost, "/api/tools/hash-generator", `{"text":"abc","algorithm":"crc32"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestRequestValidationMessages(t *testing.T) {
	e := newTestServer(testConfig(), ok, ok)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"malformed json", `{"username":`, "بيانات الطلب غير صحيحة"},
		{"missing email", `{"username":"alice","password":"secret1"}`, "الحقل email مطلوب"},
		{"bad email", `{"username":"alice","email":"alice","password":"secret1"}`, "البريد الإلكتروني غير صحيح"},
		{"short username", `{"username":"al","email":"a@example.com","password":"secret1"}`, "الحقل username يجب أن يكون 3 على الأقل"},
		{"padded short username", `{"username":"  ab ","email":"a@example.com","password":"secret1"}`, "الحقل username يجب أن يكون 3 على الأقل"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(e, http.MethodPost, "/api/auth/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestProtectedRouteWithoutCredential(t *testing.T) {
	e := newTestServer(testConfig(), ok, ok)

	rec, body := do(e, http.MethodGet, "/api/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "لا يوجد رمز مصادقة، الوصول مرفوض", body["message"])
}

func TestBodyLimit(t *testing.T) {
	e := newTestServer(testConfig(), ok, ok)

	payload := `{"text":"` + strings.Repeat("a", 4096) + `","algorithm":"md5"}`
	rec, body := do(e, http.MethodPost, "/api/tools/hash-generator", payload)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", body["code"])
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.MaxRequests = 2
	e := newTestServer(cfg, ok, ok)

	for i := 0; i < 2; i++ {
		rec, _ := do(e, http.MethodPost, "/api/tools/base64", `{"text":"hi","action":"encode"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, body := do(e, http.MethodPost, "/api/tools/base64", `{"text":"hi","action":"encode"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", body["code"])

	// routes outside /api are not limited
	rec, _ = do(e, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"method not allowed", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed},
		{"unsupported media type", echo.ErrUnsupportedMediaType, http.StatusBadRequest},
		{"echo unauthorized", echo.ErrUnauthorized, http.StatusUnauthorized},
		{"echo forbidden", echo.ErrForbidden, http.StatusForbidden},
		{"conflict", echo.NewHTTPError(http.StatusConflict, "conflict"), http.StatusConflict},
		{"bad gateway", echo.ErrBadGateway, http.StatusInternalServerError},
		{"domain error", apperrors.ErrMovieNotFound, http.StatusNotFound},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, toHTTPError(tt.err).StatusCode)
		})
	}

	assert.Equal(t, "خطأ في الخادم", toHTTPError(errors.New("db password leaked")).Message)
}

func TestErrorHandler_HeadHasNoBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodHead, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(apperrors.NotFound("x"), c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}
