package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-experience-marketplace/internal/ai"
	"github.com/iliyamo/travel-experience-marketplace/internal/config"
	"github.com/iliyamo/travel-experience-marketplace/internal/database"
	"github.com/iliyamo/travel-experience-marketplace/internal/handler"
	"github.com/iliyamo/travel-experience-marketplace/internal/queue"
	"github.com/iliyamo/travel-experience-marketplace/internal/repository"
	"github.com/iliyamo/travel-experience-marketplace/internal/router"
)

func main() {
	// Load .env if present; real deployments set the environment
	// directly, so a missing file is not an error.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	operatorRepo := repository.NewOperatorRepo(db)
	experienceRepo := repository.NewExperienceRepo(db)
	slotRepo := repository.NewSlotRepo(db)
	bookingRepo := repository.NewBookingRepo(db)

	publicHandler := handler.NewPublicHandler(experienceRepo, slotRepo, bookingRepo)
	operatorHandler := handler.NewOperatorHandler(operatorRepo, experienceRepo, slotRepo, bookingRepo)
	aiHandler := handler.NewAIHandler(ai.NewPlanner(ai.NewClient(cfg.GeminiAPIKey), experienceRepo))

	// Redis backs the browse cache and the rate limiter; both degrade
	// to pass-throughs when it is unreachable.
	rdb := config.NewRedisClient()
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	// Consume booking.confirmed events in the background. The consumer
	// reconnects on its own; a dead broker never blocks HTTP traffic.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterPublic(e, publicHandler, rdb, cacheCfg, rlCfg)
	router.RegisterAI(e, aiHandler, rdb, rlCfg)
	router.RegisterOperator(e, operatorHandler, rdb, rlCfg)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
