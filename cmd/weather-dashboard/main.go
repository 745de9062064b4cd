package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/chart"
	"github.com/i474232898/weather-dashboard/internal/clock"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/events"
	"github.com/i474232898/weather-dashboard/internal/locate"
	"github.com/i474232898/weather-dashboard/internal/logging"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer lg.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	kv, err := store.OpenSQLite(cfg.StorePath)
	if err != nil {
		lg.Fatal("failed to open store", zap.String("path", cfg.StorePath), zap.Error(err))
	}
	defer kv.Close()
	cities := store.NewCityList(kv, lg)

	provider := providers.NewOpenWeatherProvider(httpClient, providers.OpenWeatherOptions{
		APIKey:     cfg.OpenWeatherAPIKey,
		MaxRetries: cfg.ProviderMaxRetries,
		RateLimit:  cfg.ProviderRateLimit,
		RateBurst:  cfg.ProviderRateBurst,
		Logger:     lg,
	})
	if !provider.HasCredential() {
		lg.Warn("OPENWEATHER_API_KEY not set; weather requests will fail and suggestions use the built-in list")
	}
	service := weather.NewService(provider, lg)

	hub := events.NewHub(lg)
	go hub.Run(ctx)

	registry := dashboard.NewRegistry(dashboard.Options{
		Cities:        cities,
		Fetcher:       service,
		Pipeline:      dashboard.NewPipeline(chart.NewBarFactory(0, 0), hub, lg),
		Publisher:     hub,
		DefaultCities: cfg.DefaultCities,
		Logger:        lg,
	})
	registry.Load()

	var reverse locate.ReverseGeocoder
	if cfg.GeocoderAPIKey != "" {
		reverse = locate.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	}
	resolver := locate.NewResolver(provider, reverse, lg)

	clk := clock.New(cfg.ClockTimezone, lg)

	sched := scheduler.New(clk, registry, hub, cfg.RefreshInterval, lg)
	if err := sched.Start(); err != nil {
		lg.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-dashboard",
			"panels":  len(registry.Panels()),
			"clients": hub.Clients(),
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Registry:      registry,
		Suggester:     service,
		Places:        resolver,
		Notifications: hub,
		Clock:         clk,
		Logger:        lg,
	})

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	eventsSrv := &http.Server{
		Addr:              cfg.EventsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		lg.Info("events server listening", zap.String("addr", cfg.EventsAddr))
		if err := eventsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("events server stopped", zap.Error(err))
		}
	}()

	go func() {
		lg.Info("api server listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			lg.Error("fiber server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		lg.Warn("error during api shutdown", zap.Error(err))
	}
	if err := eventsSrv.Shutdown(shutdownCtx); err != nil {
		lg.Warn("error during events shutdown", zap.Error(err))
	}
	registry.Close()
}
