package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user record does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrMovieNotFound is returned when neither the catalog nor the provider knows a movie.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrAccountInactive is returned when a user account has been deactivated.
	ErrAccountInactive = errors.New("account is not active")
	// ErrUnauthenticated is returned when no usable credential accompanies a request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidToken is returned when a credential fails verification or has expired.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrForbidden is returned when the identity lacks the required role.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrUserAlreadyExists is returned when username or email is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnreachableURL is returned when a probed host cannot be resolved or refuses the connection.
	ErrUnreachableURL = errors.New("url is unreachable")
)

// ValidationError describes invalid caller input. Its message is safe to show to callers.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error with a caller facing message.
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// ErrorResponse is the envelope every failed request is rendered with.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Success: false,
		Message: e.Message,
		Code:    e.Code,
	}
}

// BadRequest builds a 400 error carrying a caller facing message.
func BadRequest(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, "VALIDATION_ERROR")
}

// Unauthorized builds a 401 error.
func Unauthorized(message string) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, "UNAUTHENTICATED")
}

// Forbidden builds a 403 error.
func Forbidden(message string) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, "FORBIDDEN")
}

// NotFound builds a 404 error.
func NotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, "NOT_FOUND")
}

// Internal builds the generic 500 error. Internal detail never reaches the caller.
func Internal() *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, "خطأ في الخادم", "INTERNAL_ERROR")
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return BadRequest(validationErr.Message)
	}

	switch {
	case errors.Is(err, ErrUserNotFound):
		return NotFound("المستخدم غير موجود")
	case errors.Is(err, ErrMovieNotFound):
		return NotFound("الفيلم غير موجود")
	case errors.Is(err, ErrAccountInactive):
		return Unauthorized("الحساب غير نشط")
	case errors.Is(err, ErrUnauthenticated):
		return Unauthorized("لا يوجد رمز مصادقة، الوصول مرفوض")
	case errors.Is(err, ErrInvalidToken):
		return Unauthorized("رمز المصادقة غير صحيح")
	case errors.Is(err, ErrForbidden):
		return Forbidden("الوصول مرفوض - صلاحيات إدارة مطلوبة")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, "اسم المستخدم أو البريد الإلكتروني مستخدم مسبقاً", "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, "البريد الإلكتروني أو كلمة المرور غير صحيحة", "INVALID_CREDENTIALS")
	case errors.Is(err, ErrUnreachableURL):
		return BadRequest("لا يمكن الوصول للرابط المحدد")
	default:
		return Internal()
	}
}
