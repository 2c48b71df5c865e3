package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/chuvadata/precip-aggregation/internal/api/http"
	"github.com/chuvadata/precip-aggregation/internal/config"
	"github.com/chuvadata/precip-aggregation/internal/geo"
	"github.com/chuvadata/precip-aggregation/internal/observability"
	"github.com/chuvadata/precip-aggregation/internal/precip"
	"github.com/chuvadata/precip-aggregation/internal/precip/providers"
	"github.com/chuvadata/precip-aggregation/internal/scheduler"
	"github.com/chuvadata/precip-aggregation/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	catalog, err := geo.LoadCatalog(cfg.CitiesFile)
	if err != nil {
		log.Error("failed to load city catalog", "file", cfg.CitiesFile, "error", err)
		os.Exit(1)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	tzName := cfg.Timezone.String()
	hourlyByName := map[string]precip.HourlyProvider{
		"openmeteo":     providers.NewOpenMeteo(httpClient, tzName),
		"inmet":         providers.NewInmet(httpClient, clock),
		"wttr":          providers.NewWttr(httpClient),
		"googleweather": providers.NewGoogleWeather(httpClient, cfg.GoogleWeatherAPIKey),
	}

	var hourly []precip.HourlyProvider
	for _, name := range cfg.HourlyProviders {
		p, ok := hourlyByName[name]
		if !ok {
			log.Error("unknown hourly provider in HOURLY_PROVIDERS", "provider", name)
			os.Exit(1)
		}
		if name == "googleweather" && cfg.GoogleWeatherAPIKey == "" {
			log.Warn("googleweather requested but GOOGLE_WEATHER_API_KEY is unset; skipping")
			continue
		}
		hourly = append(hourly, p)
	}

	openMeteo := hourlyByName["openmeteo"].(*providers.OpenMeteo)
	prov := precip.Providers{
		Hourly:  hourly,
		Archive: providers.NewOpenMeteoArchive(httpClient, tzName),
		Recent:  openMeteo,
	}

	caches := precip.Caches{
		Hourly:  store.NewTTLCache[precip.Outlook](cfg.CacheTTL, clock),
		Monthly: store.NewTTLCache[precip.MonthlySummary](cfg.MonthlyCacheTTL, clock),
		States:  store.NewTTLCache[precip.StateSummary](cfg.MonthlyCacheTTL, clock),
	}

	var resolver geo.CityResolver
	if cfg.GeocoderAPIKey != "" {
		resolver = geo.NewCachedResolver(geo.NewResolver(cfg.GeocoderAPIKey), 24*time.Hour, clock)
	}

	service := precip.NewService(catalog, resolver, prov, caches, precip.Settings{
		Timezone:       cfg.Timezone,
		PastDays:       cfg.PastDays,
		ForecastDays:   cfg.ForecastDays,
		TrailingMonths: cfg.TrailingMonths,
		StateDays:      cfg.StateDays,
	}, clock, log, metrics)

	// Cache warmer over the selectable city list.
	var cityNames []string
	for _, city := range catalog.Cities() {
		cityNames = append(cityNames, city.Name)
	}
	warmer := scheduler.New(cityNames, cfg.RefreshInterval, service, log, metrics)
	if err := warmer.Start(); err != nil {
		log.Error("failed to start cache warmer", "error", err)
		os.Exit(1)
	}
	defer warmer.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "precip-aggregation",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "precip-aggregation",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpapi.RegisterRoutes(app, service, catalog)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()
	log.Info("server started", "port", cfg.Port, "providers", cfg.HourlyProviders)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}
