package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/travel-experience-marketplace/internal/config"
	"github.com/iliyamo/travel-experience-marketplace/internal/handler"
	"github.com/iliyamo/travel-experience-marketplace/internal/middleware"
)

// RegisterOperator registers operator-scoped endpoints under
// /v1/operator. Every route requires a valid X-Operator-Key; the
// OperatorAuth middleware resolves it to an operator ID and handlers
// re-derive ownership of the touched rows from there. The seed
// endpoint lives outside the group because a fresh operator has no
// key yet.
func RegisterOperator(e *echo.Echo, h *handler.OperatorHandler, rdb *redis.Client, rlCfg config.RateLimitConfig) {
	// Dev-only onboarding: creates an operator and returns its API key
	// once. There is no key recovery endpoint.
	e.POST("/dev/seed/operator", h.CreateOperator)

	g := e.Group(
		"/v1/operator",
		middleware.OperatorAuth(h.OperatorRepo),
		middleware.NewTokenBucket(rlCfg, rdb),
	)

	g.POST("/experiences", h.CreateExperience)
	g.PATCH("/experiences/:id", h.UpdateExperience)
	g.POST("/experiences/:id/slots/bulk", h.BulkCreateSlots)

	g.GET("/slots/:id/bookings", h.ListSlotBookings)
	g.POST("/bookings/:id/confirm", h.ConfirmBooking)
	g.POST("/bookings/:id/decline", h.DeclineBooking)

	g.GET("/analytics", h.Analytics)
}
