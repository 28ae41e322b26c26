package router

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"advancedapi/internal/config"
	apperrors "advancedapi/internal/errors"
	"advancedapi/internal/handler"
	"advancedapi/internal/logging"
	"advancedapi/internal/middleware"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	General  *handler.GeneralHandler
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Movie    *handler.MovieHandler
	Tool     *handler.ToolHandler
	Download *handler.DownloadHandler
	Seed     *handler.SeedHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, authn *middleware.Authenticator, h Handlers) {
	e.HideBanner = true
	e.JSONSerializer = JSONSerializer{}
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.Recover())
	e.Use(middleware.Metrics())
	e.Use(echomw.Secure())
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit(cfg.BodyLimit))

	e.GET("/", h.General.Home)
	e.GET("/healthz", h.General.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/api-docs", func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, "/api-docs/index.html")
	})
	e.GET("/api-docs/*", echoSwagger.WrapHandler)
	e.RouteNotFound("/*", handler.NotFound)

	api := e.Group("/api", rateLimiter(cfg.RateLimit))

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/refresh", h.Auth.Refresh)
	authGroup.POST("/logout", h.Auth.Logout)
	authGroup.GET("/me", h.Auth.Me, authn.Required())

	users := api.Group("/users")
	users.GET("/profile", h.User.Profile, authn.Required())
	users.GET("/stats", h.User.Stats)
	users.PATCH("/:id/status", h.User.SetStatus, authn.Admin())

	movies := api.Group("/movies")
	movies.GET("/search", h.Movie.Search, authn.Optional())
	movies.GET("/popular", h.Movie.Popular, authn.Optional())
	movies.GET("/:id", h.Movie.Get, authn.Optional())
	movies.POST("", h.Movie.Create, authn.Admin())
	movies.POST("/import", h.Seed.SeedMovies, authn.Admin())
	movies.PUT("/:id", h.Movie.Update, authn.Admin())
	movies.DELETE("/:id", h.Movie.Delete, authn.Admin())

	tools := api.Group("/tools")
	tools.POST("/qr-generator", h.Tool.QRCode)
	tools.POST("/url-shortener", h.Tool.ShortenURL)
	tools.POST("/password-generator", h.Tool.GeneratePassword)
	tools.POST("/hash-generator", h.Tool.Hash)
	tools.POST("/base64", h.Tool.Base64)
	tools.POST("/json-formatter", h.Tool.FormatJSON)

	download := api.Group("/download")
	download.POST("/youtube-info", h.Download.YouTubeInfo)
	download.POST("/instagram-info", h.Download.InstagramInfo)
	download.POST("/tiktok-info", h.Download.TikTokInfo)
	download.POST("/file-info", h.Download.FileInfo)
}

// rateLimiter allows MaxRequests per client IP per window, refilled continuously.
func rateLimiter(cfg config.RateLimit) echo.MiddlewareFunc {
	window := cfg.Window()
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(cfg.MaxRequests) / window.Seconds()),
		Burst:     cfg.MaxRequests,
		ExpiresIn: window,
	})
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.NewHTTPError(http.StatusForbidden, "تعذر تحديد مصدر الطلب", "RATE_LIMIT_IDENTIFIER")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return apperrors.NewHTTPError(http.StatusTooManyRequests, "تم تجاوز الحد المسموح من الطلبات، يرجى المحاولة لاحقاً", "RATE_LIMITED")
		},
	})
}

// ErrorHandler renders every error in the {success:false, message, code} envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	httpErr := toHTTPError(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		logging.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(httpErr.StatusCode)
	} else {
		writeErr = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	if writeErr != nil {
		logging.Error().Err(writeErr).Msg("failed to write error response")
	}
}

func toHTTPError(err error) *apperrors.HTTPError {
	var appErr *apperrors.HTTPError
	if errors.As(err, &appErr) {
		return appErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		switch echoErr.Code {
		case http.StatusNotFound:
			return apperrors.NotFound("المسار غير موجود")
		case http.StatusMethodNotAllowed:
			return apperrors.NewHTTPError(http.StatusMethodNotAllowed, "الطريقة غير مسموحة", "METHOD_NOT_ALLOWED")
		case http.StatusRequestEntityTooLarge:
			return apperrors.NewHTTPError(http.StatusRequestEntityTooLarge, "حجم الطلب كبير جداً", "PAYLOAD_TOO_LARGE")
		case http.StatusTooManyRequests:
			return apperrors.NewHTTPError(http.StatusTooManyRequests, "تم تجاوز الحد المسموح من الطلبات، يرجى المحاولة لاحقاً", "RATE_LIMITED")
		case http.StatusBadRequest, http.StatusUnsupportedMediaType:
			return apperrors.BadRequest("بيانات الطلب غير صحيحة")
		case http.StatusUnauthorized:
			return apperrors.Unauthorized("رمز المصادقة غير صحيح")
		case http.StatusForbidden:
			return apperrors.MapErrorToHTTP(apperrors.ErrForbidden)
		}
		if echoErr.Code < http.StatusInternalServerError {
			return apperrors.NewHTTPError(echoErr.Code, fmt.Sprint(echoErr.Message), "")
		}
		return apperrors.Internal()
	}

	return apperrors.MapErrorToHTTP(err)
}

// JSONSerializer encodes and decodes echo payloads with goccy/go-json.
type JSONSerializer struct{}

// Serialize implements echo.JSONSerializer.
func (JSONSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

// Deserialize implements echo.JSONSerializer. Malformed bodies are client errors.
func (JSONSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := json.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return nil
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds a validator that reports json field names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return apperrors.BadRequest(fieldMessage(fieldErrs[0]))
	}
	return apperrors.BadRequest("بيانات الطلب غير صحيحة")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("الحقل %s مطلوب", field)
	case "email":
		return "البريد الإلكتروني غير صحيح"
	case "min":
		return fmt.Sprintf("الحقل %s يجب أن يكون %s على الأقل", field, fe.Param())
	case "max":
		return fmt.Sprintf("الحقل %s لا يمكن أن يزيد عن %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("الحقل %s يجب أن يكون URL صحيح", field)
	default:
		return fmt.Sprintf("الحقل %s غير صحيح", field)
	}
}
