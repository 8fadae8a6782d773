package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/travel-experience-marketplace/internal/config"
	"github.com/iliyamo/travel-experience-marketplace/internal/handler"
	"github.com/iliyamo/travel-experience-marketplace/internal/middleware"
)

// RegisterPublic registers the unauthenticated marketplace endpoints
// under /v1/public. Browse endpoints (experience listings, slot
// availability) sit behind the Redis response cache; the whole group
// is rate limited per client IP. Booking creation is deliberately
// left out of the cache so a fresh seat counter is always read for
// the advisory full check.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, rdb *redis.Client, cacheCfg config.CacheConfig, rlCfg config.RateLimitConfig) {
	g := e.Group("/v1/public", middleware.NewTokenBucket(rlCfg, rdb))

	cached := middleware.NewRedisCache(cacheCfg, rdb)
	g.GET("/experiences", p.ListExperiences, cached)
	g.GET("/experiences/:id", p.GetExperience, cached)
	g.GET("/experiences/:id/slots", p.ListSlots, cached)

	// Bookings are created PENDING without holding seats; the operator
	// confirms or declines later.
	g.POST("/bookings", p.CreateBooking)
	g.GET("/bookings/:id", p.GetBooking)
}

// RegisterAI registers the model-assisted endpoints under /v1/ai.
// Both are POSTs that call out to the generation API, so they share
// the public rate limit but never the response cache.
func RegisterAI(e *echo.Echo, a *handler.AIHandler, rdb *redis.Client, rlCfg config.RateLimitConfig) {
	g := e.Group("/v1/ai", middleware.NewTokenBucket(rlCfg, rdb))
	g.POST("/plan-trip", a.PlanTrip)
	g.POST("/enrich-experience", a.EnrichExperience)
}
