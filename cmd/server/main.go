package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/shehryarbajwa/cf-calendar-api/internal/api"
	"github.com/shehryarbajwa/cf-calendar-api/internal/browser"
	"github.com/shehryarbajwa/cf-calendar-api/internal/cache"
	"github.com/shehryarbajwa/cf-calendar-api/internal/config"
	"github.com/shehryarbajwa/cf-calendar-api/internal/proxy"
	"github.com/shehryarbajwa/cf-calendar-api/internal/ratelimit"
	"github.com/shehryarbajwa/cf-calendar-api/internal/retry"
	"github.com/shehryarbajwa/cf-calendar-api/internal/scraper"
	"github.com/shehryarbajwa/cf-calendar-api/pkg/models"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	log.Infow("starting cf-calendar-api",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"cache_ttl", cfg.CacheTTL,
	)

	// The browser is started lazily by the first scrape, not here; a cold
	// process serves cached or 404/500 responses without an engine.
	sessions := browser.NewManager(cfg, log)
	extractor := scraper.NewExtractor(sessions, cfg, log)
	retrier := retry.NewController(cfg.Attempts, cfg.RetryDelay, log)

	results := cache.New[models.ScrapeResult](cfg.CacheTTL)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	results.StartSweeper(sweepCtx, cfg.CacheTTL)

	limiter := ratelimit.NewLimiter(cfg.RatePerHour, cfg.RateBurst)
	proxyServer := proxy.NewServer(sessions, log)

	handler := api.NewHandler(extractor, results, retrier, sessions, log)
	router := handler.SetupRoutes(proxyServer, limiter, cfg.RatePerHour)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Write timeout has to cover a full scrape: navigation plus the
		// whole retry budget.
		WriteTimeout: cfg.NavTimeout + time.Duration(cfg.Attempts)*(cfg.NavTimeout+cfg.RetryDelay),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shut down", "error", err)
	}

	if err := sessions.Shutdown(); err != nil {
		log.Errorw("browser shutdown failed", "error", err)
	}

	log.Info("stopped cleanly")
}
