package handler

import (
	"github.com/labstack/echo/v4"

	"starwars/internal/auth"
	apperrors "starwars/internal/errors"
	"starwars/internal/service"
)

const (
	// ContextKeyClaims holds the verified *auth.Claims of the request.
	ContextKeyClaims = "user"
	// ContextKeyToken holds the raw bearer token the claims came from.
	ContextKeyToken = "token"
)

// ClaimsFrom returns the authenticated identity, or nil for anonymous requests.
func ClaimsFrom(c echo.Context) *auth.Claims {
	claims, _ := c.Get(ContextKeyClaims).(*auth.Claims)
	return claims
}

// TokenFrom returns the raw bearer token of an authenticated request.
func TokenFrom(c echo.Context) string {
	token, _ := c.Get(ContextKeyToken).(string)
	return token
}

// ToHTTPError converts a domain error into an echo error carrying an ErrorResponse.
// Server-side failures keep the original error as internal so it gets logged.
func ToHTTPError(err error) *echo.HTTPError {
	mapped := apperrors.MapErrorToHTTP(err)
	he := echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	if mapped.StatusCode >= 500 {
		he = he.SetInternal(err)
	}
	return he
}

// RequireTier rejects requests whose identity does not satisfy tier.
func RequireTier(authService service.AuthService, tier service.Tier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := authService.Authorize(ClaimsFrom(c), tier); err != nil {
				return ToHTTPError(err)
			}
			return next(c)
		}
	}
}
