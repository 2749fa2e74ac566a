package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/user/dashboard-scraper/internal/api"
	"github.com/user/dashboard-scraper/internal/browser"
	"github.com/user/dashboard-scraper/internal/config"
	"github.com/user/dashboard-scraper/internal/monitoring"
	"github.com/user/dashboard-scraper/internal/ocr"
	"github.com/user/dashboard-scraper/internal/scraper"
	"github.com/user/dashboard-scraper/internal/storage"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	// Initialize Storage Layer
	pgStore, err := storage.NewPostgresStore(cfg.PostgresURL)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	redisStore := storage.NewRedisStore(cfg.RedisAddr)

	// Initialize Monitoring
	metrics := monitoring.NewMetrics()

	// Initialize the browser driver backed by the persistent profile
	driver := browser.NewChromeDriver(browser.Config{
		ProfileDir:   cfg.ProfileDir,
		Headless:     cfg.Headless,
		UserAgent:    cfg.UserAgent,
		WindowWidth:  cfg.ViewportWidth,
		WindowHeight: cfg.ViewportHeight,
		NavTimeout:   time.Duration(cfg.NavTimeoutSec) * time.Second,
	}, logger)
	defer driver.Close()

	// Assemble the extraction pipeline
	settler := scraper.NewSettler(scraper.SettleConfig{
		MarkerTimeout:     time.Duration(cfg.MarkerTimeoutSec) * time.Second,
		RenderGrace:       time.Duration(cfg.RenderGraceSec) * time.Second,
		ScrollSteps:       cfg.ScrollSteps,
		StepPause:         time.Duration(cfg.ScrollStepPauseMs) * time.Millisecond,
		BottomPause:       time.Duration(cfg.BottomPauseMs) * time.Millisecond,
		MaxBottomAttempts: cfg.MaxBottomAttempts,
	}, logger)
	extractor := scraper.NewExtractor(logger)
	recognizer := scraper.NewViewRecognizer(ocr.NewTesseract(logger), logger)
	walker := scraper.NewWalker(scraper.WalkConfig{
		MaxTabs:        cfg.MaxTabs,
		TabSettleDelay: time.Duration(cfg.TabSettleSec) * time.Second,
	}, settler, extractor, recognizer, logger)

	coreScraper := scraper.NewScraper(driver, settler, extractor, walker, recognizer, scraper.Options{
		ExploreNavigation: cfg.ExploreNavigation,
		EnableScrolling:   cfg.EnableScrolling,
		EnableOCR:         cfg.EnableOCR,
	}, logger)

	// Initialize the scrape service and its worker pool
	service := scraper.NewService(cfg, coreScraper, redisStore, pgStore, metrics, logger)
	service.Start()

	// Initialize API Server
	server := api.NewServer(cfg, service, pgStore, redisStore, metrics, logger)

	// Graceful Shutdown
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	service.Stop()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
