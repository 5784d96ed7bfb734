package middleware

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"bistro/internal/auth"
	"bistro/internal/errors"
)

// ClaimsKey is the context key holding the caller's *auth.Claims.
const ClaimsKey = "user"

// JWT requires a valid bearer access token.
func JWT(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(jwtConfig(jwtService, false))
}

// OptionalJWT attaches claims when a valid bearer token is present and lets
// anonymous requests through.
func OptionalJWT(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(jwtConfig(jwtService, true))
}

func jwtConfig(jwtService *auth.JWTService, optional bool) echojwt.Config {
	return echojwt.Config{
		ContextKey: ClaimsKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateAccessToken(token)
		},
		ContinueOnIgnoredError: optional,
		ErrorHandler: func(c echo.Context, err error) error {
			if optional {
				return nil
			}
			return errors.Wrap(errors.ErrUnauthorized, "access token is missing or invalid")
		},
	}
}

// ClaimsFrom returns the authenticated caller, if any.
func ClaimsFrom(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(ClaimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// RequireAdmin rejects callers without the admin role. It must run after JWT.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return errors.ErrUnauthorized
			}
			if !claims.IsAdmin() {
				return errors.Wrap(errors.ErrForbidden, "admin access required")
			}
			return next(c)
		}
	}
}
