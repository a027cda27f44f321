package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/makonzi/uwepo/core/user"
)

// capabilityMiddleware gates a route on the claims' role capability.
func capabilityMiddleware(c user.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role.Can(c) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
