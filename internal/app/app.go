// Package app builds the Fiber application: global middleware, dependency
// wiring and route registration.
package app

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"swapdesk-backend/internal/application/additionalinfo"
	"swapdesk-backend/internal/application/privileges"
	summarysvc "swapdesk-backend/internal/application/summary"
	tradesvc "swapdesk-backend/internal/application/trades"
	"swapdesk-backend/internal/config"
	"swapdesk-backend/internal/constants"
	"swapdesk-backend/internal/infrastructure/database"
	authhandlers "swapdesk-backend/internal/interfaces/handlers/auth"
	healthhandlers "swapdesk-backend/internal/interfaces/handlers/health"
	summaryhandlers "swapdesk-backend/internal/interfaces/handlers/summary"
	tradehandlers "swapdesk-backend/internal/interfaces/handlers/trades"
	"swapdesk-backend/internal/middleware"
)

// CreateApp opens the database and Redis from config, migrates and seeds,
// and returns the wired Fiber app.
func CreateApp(cfg *config.Config) (*fiber.App, error) {
	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, err
		}
		if err := database.Seed(db); err != nil {
			return nil, err
		}
	}

	sessionCfg := sessionConfig(cfg)
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, err
	}
	return assemble(cfg, db, rdb, sessionHandler), nil
}

// CreateAppWithDeps wires the app onto injected dependencies. Tests use
// this with an in-memory database and miniredis.
func CreateAppWithDeps(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *fiber.App {
	sessionCfg := sessionConfig(cfg)
	return assemble(cfg, db, rdb, middleware.SessionWithClient(sessionCfg, rdb))
}

func sessionConfig(cfg *config.Config) middleware.SessionConfig {
	return middleware.SessionConfig{
		Secret:       cfg.SessionSecret,
		RedisURL:     cfg.RedisURL,
		IsProduction: cfg.IsProduction(),
		MaxAge:       cfg.SessionTTL,
	}
}

func assemble(cfg *config.Config, db *gorm.DB, rdb *redis.Client, sessionHandler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	// CORS before session so preflights never touch Redis.
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(sessionHandler)
	app.Use(middleware.RequestStats(rdb))
	app.Use(middleware.RequestID())
	app.Use(middleware.RouteLogger())

	sessionCfg := sessionConfig(cfg)

	health := &healthhandlers.Handlers{DB: db, Rdb: rdb}
	app.Get("/health", health.Check)

	auth := &authhandlers.Handlers{DB: db, Rdb: rdb, Config: sessionCfg}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", auth.Login)
	authGroup.Get("/me", auth.Me)
	authGroup.Delete("/logout", auth.Logout)

	if db == nil {
		return app
	}

	privSvc := &privileges.Service{DB: db}
	tradeSvc := &tradesvc.Service{DB: db, Privileges: privSvc}
	infoSvc := &additionalinfo.Service{DB: db}
	summarySvc := &summarysvc.Service{DB: db, Redis: rdb, CacheTTL: cfg.SummaryCacheTTL}

	trades := &tradehandlers.Handlers{Service: tradeSvc, Info: infoSvc}
	tradeGroup := app.Group("/api/v1/trades", middleware.RequireAuth())
	// Literal routes first so "search" is never parsed as a trade id.
	tradeGroup.Get("/search", middleware.AuthorizeOperation(privSvc, constants.ViewTrade), trades.Search)
	tradeGroup.Get("/query", middleware.AuthorizeOperation(privSvc, constants.ViewTrade), trades.Query)
	tradeGroup.Post("/", trades.Book)
	tradeGroup.Get("/:tradeId", middleware.AuthorizeOperation(privSvc, constants.ViewTrade), trades.Get)
	tradeGroup.Get("/:tradeId/history", middleware.AuthorizeOperation(privSvc, constants.ViewTrade), trades.History)
	tradeGroup.Put("/:tradeId", trades.Amend)
	tradeGroup.Post("/:tradeId/terminate", trades.Terminate)
	tradeGroup.Post("/:tradeId/cancel", trades.Cancel)
	tradeGroup.Delete("/:tradeId", trades.Delete)
	tradeGroup.Patch("/:tradeId/settlement-instructions", trades.UpdateSettlementInstructions)
	tradeGroup.Get("/:tradeId/settlement-instructions",
		middleware.AuthorizeOperation(privSvc, constants.ViewTrade), trades.GetSettlementInstructions)

	summaries := &summaryhandlers.Handlers{Service: summarySvc}
	summaryGroup := app.Group("/api/v1/summary",
		middleware.RequireAuth(),
		middleware.AuthorizeOperation(privSvc, constants.ViewTrade))
	summaryGroup.Get("/", summaries.TradeSummary)
	summaryGroup.Get("/daily", summaries.DailySummary)

	return app
}
