package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/planhub/planhub/internal/config"
	"github.com/planhub/planhub/internal/database"
	"github.com/planhub/planhub/internal/handler"
	"github.com/planhub/planhub/internal/middleware"
	"github.com/planhub/planhub/internal/queue"
	"github.com/planhub/planhub/internal/repository"
	"github.com/planhub/planhub/internal/router"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrations: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	plans := repository.NewPlanRepo(db)
	follows := repository.NewFollowRepo(db)
	posts := repository.NewPostRepo(db)
	notifications := repository.NewNotificationRepo(db)

	// Redis is optional: a nil client disables rate limiting and caching.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	var cache echo.MiddlewareFunc
	if rdb != nil {
		cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	router.RegisterRoutes(e, router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, users),
		Plans:         handler.NewPlanHandler(plans, users),
		Profiles:      handler.NewProfileHandler(users, plans, follows, posts),
		Social:        handler.NewSocialHandler(users, follows),
		Posts:         handler.NewPostHandler(posts),
		Notifications: handler.NewNotificationHandler(notifications),
	}, cfg.JWTSecret, cfg.AdminAPIKey, cache)

	// Drain activity events in the background; the loop reconnects on its own.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
