package middleware

import (
	"net/http"

	"github.com/campusnet/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// RequireRoles lets the request through only when the authenticated user holds
// one of roles. It must run after JWTAuthMiddleware.
func RequireRoles(roles ...models.Role) echo.MiddlewareFunc {
	roleSet := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ClaimsKey).(*models.JwtCustomClaims)
			if !ok || claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}
			if _, ok := roleSet[claims.Role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
