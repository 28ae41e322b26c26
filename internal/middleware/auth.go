// Package middleware holds the session verifier: an ordered chain of echo middleware
// where each stage either enriches the context and calls the next one, or stops the
// request with an error.
//
//	token stage    -> bearer credential parsed into *auth.Claims
//	identity stage -> claims resolved to an active *model.User, usage accounted
//	role stage     -> admin role required (admin variant only)
package middleware

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"advancedapi/internal/auth"
	apperrors "advancedapi/internal/errors"
	"advancedapi/internal/logging"
	"advancedapi/internal/metrics"
	"advancedapi/internal/model"
	"advancedapi/internal/service"
)

const (
	claimsContextKey = "jwtClaims"
	userContextKey   = "user"

	msgNoCredential      = "لا يوجد رمز مصادقة، الوصول مرفوض"
	msgInvalidCredential = "رمز المصادقة غير صحيح"
)

const (
	variantRequired = "required"
	variantOptional = "optional"
	variantAdmin    = "admin"
)

// Authenticator builds the verifier variants.
type Authenticator struct {
	jwt      *auth.JWTService
	sessions service.SessionService
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(jwt *auth.JWTService, sessions service.SessionService) *Authenticator {
	return &Authenticator{jwt: jwt, sessions: sessions}
}

// Required rejects the request unless it carries a valid credential for an active user.
func (a *Authenticator) Required() echo.MiddlewareFunc {
	return chain(a.tokenStage(false), a.identityStage(variantRequired))
}

// Optional attaches the user when a usable credential is present and otherwise lets the
// request through anonymously. It never rejects.
func (a *Authenticator) Optional() echo.MiddlewareFunc {
	return chain(a.tokenStage(true), a.identityStage(variantOptional))
}

// Admin is Required followed by an admin role check.
func (a *Authenticator) Admin() echo.MiddlewareFunc {
	return chain(a.tokenStage(false), a.identityStage(variantAdmin), roleStage(model.RoleAdmin))
}

// CurrentUser returns the user attached by the identity stage, or nil for anonymous requests.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(userContextKey).(*model.User)
	return user
}

func (a *Authenticator) tokenStage(optional bool) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:             claimsContextKey,
		TokenLookup:            "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContinueOnIgnoredError: optional,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := a.jwt.ValidateToken(token)
			if err != nil {
				return nil, err
			}
			// refresh tokens carry a token id and are only accepted by the refresh route
			if claims.ID != "" {
				return nil, errors.New("refresh token used as access token")
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if optional {
				return nil
			}
			if missingCredential(c) {
				metrics.SessionVerifications.WithLabelValues(variantRequired, "missing").Inc()
				return apperrors.Unauthorized(msgNoCredential)
			}
			metrics.SessionVerifications.WithLabelValues(variantRequired, "invalid").Inc()
			return apperrors.Unauthorized(msgInvalidCredential)
		},
	})
}

func missingCredential(c echo.Context) bool {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")) == ""
}

func (a *Authenticator) identityStage(variant string) echo.MiddlewareFunc {
	optional := variant == variantOptional
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(claimsContextKey).(*auth.Claims)
			if !ok {
				if optional {
					metrics.SessionVerifications.WithLabelValues(variant, "anonymous").Inc()
					return next(c)
				}
				return apperrors.Unauthorized(msgNoCredential)
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				if optional {
					return next(c)
				}
				return apperrors.Unauthorized(msgInvalidCredential)
			}

			user, err := a.sessions.Authenticate(c.Request().Context(), userID)
			if err != nil {
				return a.identityFailure(c, next, variant, userID, err)
			}

			metrics.SessionVerifications.WithLabelValues(variant, "authenticated").Inc()
			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

func (a *Authenticator) identityFailure(c echo.Context, next echo.HandlerFunc, variant string, userID uuid.UUID, err error) error {
	credentialProblem := errors.Is(err, apperrors.ErrInvalidToken) || errors.Is(err, apperrors.ErrAccountInactive)
	if !credentialProblem {
		logging.Error().Err(err).Str("user_id", userID.String()).Str("variant", variant).Msg("session verification failed")
	}

	if variant == variantOptional {
		metrics.SessionVerifications.WithLabelValues(variant, "anonymous").Inc()
		return next(c)
	}
	if credentialProblem {
		metrics.SessionVerifications.WithLabelValues(variant, "rejected").Inc()
		return apperrors.MapErrorToHTTP(err)
	}
	metrics.SessionVerifications.WithLabelValues(variant, "error").Inc()
	return apperrors.Internal()
}

func roleStage(role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil || user.Role != role {
				metrics.SessionVerifications.WithLabelValues(variantAdmin, "forbidden").Inc()
				return apperrors.MapErrorToHTTP(apperrors.ErrForbidden)
			}
			return next(c)
		}
	}
}

// chain composes stages so that the first one runs first.
func chain(stages ...echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		for i := len(stages) - 1; i >= 0; i-- {
			next = stages[i](next)
		}
		return next
	}
}
