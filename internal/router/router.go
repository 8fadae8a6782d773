package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-experience-marketplace/internal/handler"
)

// RegisterRoutes registers routes that do not require authentication
// or any backing store on the provided Echo instance. Currently it
// exposes only a health check, used by load balancers and monitoring
// to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}
