package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// withAuth guards a handler with the static service API key. Requests must
// carry "Authorization: Bearer <key>". A server with no configured key
// rejects every request.
func withAuth(next echo.HandlerFunc, apiKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if apiKey == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "api key not configured")
		}
		if c.Request().Header.Get("Authorization") != "Bearer "+apiKey {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		return next(c)
	}
}
