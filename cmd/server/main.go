package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agriplanner/internal/cache"
	"github.com/mamadbah2/agriplanner/internal/config"
	"github.com/mamadbah2/agriplanner/internal/metrics"
	"github.com/mamadbah2/agriplanner/internal/repository/mongodb"
	"github.com/mamadbah2/agriplanner/internal/repository/sheets"
	"github.com/mamadbah2/agriplanner/internal/scheduler"
	"github.com/mamadbah2/agriplanner/internal/server/handlers"
	"github.com/mamadbah2/agriplanner/internal/server/router"
	authsvc "github.com/mamadbah2/agriplanner/internal/service/auth"
	calcsvc "github.com/mamadbah2/agriplanner/internal/service/calculations"
	insightssvc "github.com/mamadbah2/agriplanner/internal/service/insights"
	pricingsvc "github.com/mamadbah2/agriplanner/internal/service/pricing"
	profilesvc "github.com/mamadbah2/agriplanner/internal/service/profile"
	"github.com/mamadbah2/agriplanner/pkg/clients/anthropic"
	whatsappclient "github.com/mamadbah2/agriplanner/pkg/clients/whatsapp"
	"github.com/mamadbah2/agriplanner/pkg/logger"
)

func main() {
	envFile := flag.String("env", "", "optional path to a .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	mongoRepo, err := mongodb.NewMongoDBRepository(startupCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named(baseLogger, "repo.mongo"))
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	appMetrics := metrics.New()

	pricingOpts := []pricingsvc.Option{pricingsvc.WithSyncObserver(appMetrics)}
	if cfg.Redis.Addr != "" {
		priceCache, err := cache.NewRedisPriceCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			baseLogger.Warn("redis unavailable, price cache disabled", zap.Error(err))
		} else {
			defer func() { _ = priceCache.Close() }()
			pricingOpts = append(pricingOpts, pricingsvc.WithCache(priceCache))
			baseLogger.Info("price cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(startupCtx, cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		source := sheets.NewPriceSource(sheetsRepo, cfg.Sheets.PriceRange, logger.Named(baseLogger, "repo.sheets.prices"))
		pricingOpts = append(pricingOpts, pricingsvc.WithSource(source))
	} else {
		baseLogger.Warn("price sheet not configured, prices are managed in mongodb only")
	}

	pricingService := pricingsvc.NewService(mongoRepo, logger.Named(baseLogger, "svc.pricing"), pricingOpts...)

	calcOpts := []calcsvc.Option{
		calcsvc.WithRecorder(appMetrics),
		calcsvc.WithHistoryLimit(cfg.History.Limit),
	}
	if cfg.AI.AnthropicKey != "" {
		calcOpts = append(calcOpts, calcsvc.WithAdvisor(anthropic.NewClient(cfg.AI.AnthropicKey)))
		baseLogger.Info("anthropic ai client enabled")
	} else {
		baseLogger.Warn("anthropic api key missing, advice disabled")
	}
	if cfg.WhatsApp.Enabled() {
		calcOpts = append(calcOpts, calcsvc.WithMessenger(whatsappclient.NewClient(cfg.WhatsApp)))
		baseLogger.Info("whatsapp sharing enabled")
	} else {
		baseLogger.Warn("whatsapp credentials missing, sharing disabled")
	}
	calculationService := calcsvc.NewService(pricingService, mongoRepo, logger.Named(baseLogger, "svc.calculations"), calcOpts...)

	authService := authsvc.NewService(mongoRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger.Named(baseLogger, "svc.auth"))
	profileService := profilesvc.NewService(mongoRepo, logger.Named(baseLogger, "svc.profile"))
	insightsService := insightssvc.NewService(mongoRepo, logger.Named(baseLogger, "svc.insights"))

	gin.SetMode(gin.ReleaseMode)
	engine := router.New(router.Handlers{
		Auth:         handlers.NewAuthHandler(authService, logger.Named(baseLogger, "handlers.auth")),
		Prices:       handlers.NewPriceHandler(pricingService, logger.Named(baseLogger, "handlers.prices")),
		Calculations: handlers.NewCalculationHandler(calculationService, logger.Named(baseLogger, "handlers.calculations")),
		Profile:      handlers.NewProfileHandler(profileService, logger.Named(baseLogger, "handlers.profile")),
		Info:         handlers.NewInfoHandler(insightsService, logger.Named(baseLogger, "handlers.info")),
	}, authService, cfg.Auth, appMetrics, logger.Named(baseLogger, "router"))

	if cfg.Sheets.Enabled() {
		sched, err := scheduler.NewScheduler(cfg.Pricing, pricingService, logger.Named(baseLogger, "scheduler"))
		if err != nil {
			baseLogger.Fatal("failed to init scheduler", zap.Error(err))
		}
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
		go sched.RunNow()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
