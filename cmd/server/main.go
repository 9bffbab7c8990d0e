package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stock-opname/internal/broadcast"
	"github.com/iliyamo/stock-opname/internal/config"
	"github.com/iliyamo/stock-opname/internal/database"
	"github.com/iliyamo/stock-opname/internal/handler"
	"github.com/iliyamo/stock-opname/internal/middleware"
	"github.com/iliyamo/stock-opname/internal/model"
	"github.com/iliyamo/stock-opname/internal/queue"
	"github.com/iliyamo/stock-opname/internal/repository"
	"github.com/iliyamo/stock-opname/internal/router"
	queuepub "github.com/iliyamo/stock-opname/internal/service"
)

func main() {
	_ = godotenv.Load() // optional .env for local development
	cfg := config.Load()

	// A missing database degrades the store endpoints instead of
	// preventing boot: health and the client assets must stay up.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Printf("database unavailable, serving degraded: %v", err)
		db = nil
	}
	repo := repository.NewStockRepo(db)
	if db != nil {
		if err := repo.EnsureSchema(context.Background()); err != nil {
			log.Printf("ensure schema failed: %v", err)
		}
	}

	// Redis is optional: without it the broadcast stays in-process and
	// rate limiting is disabled.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: broadcast stays in-process, rate limiting off")
	}

	hub := broadcast.NewHub()
	caster := broadcast.NewBroadcaster(hub, rdb, broadcast.DefaultChannel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go caster.Run(ctx)

	stocks := &handler.StockHandler{Store: repo, Events: caster}
	if cfg.RabbitURL != "" {
		stocks.Notify = func(ctx context.Context, row model.StockRow) {
			_ = queuepub.PublishStockUpdated(ctx, queue.EventFromRow(row))
		}
		go func() {
			if err := queue.StartStockLogConsumer(); err != nil {
				log.Printf("stock-consumer stopped: %v", err)
			}
		}()
	}
	events := &handler.EventsHandler{Hub: hub}

	e := echo.New()
	e.HideBanner = true
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.RegisterRoutes(e, stocks, events, limiter, cfg.StaticDir)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
