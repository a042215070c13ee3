package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/evyataryagoni/voterlocation/internal/config"
	"github.com/evyataryagoni/voterlocation/internal/geo"
	"github.com/evyataryagoni/voterlocation/internal/handler"
	"github.com/evyataryagoni/voterlocation/internal/limiter"
	"github.com/evyataryagoni/voterlocation/internal/logger"
	"github.com/evyataryagoni/voterlocation/internal/metrics"
	"github.com/evyataryagoni/voterlocation/internal/router"
	"github.com/evyataryagoni/voterlocation/internal/service"
)

// @title           Voter Location API
// @version         1.0
// @description     Resolves a voter's approximate location (city, state, ZIP) from an IP address
// @termsOfService  http://swagger.io/terms/

// @contact.name   Evyatar Yagoni
// @contact.email  evyatar@example.com

// @license.name  MIT
// @license.url   http://opensource.org/licenses/MIT

// @host      localhost:3000
// @BasePath  /
func main() {
	appConfig, err := config.Load()
	if err != nil {
		logger.NewDefault().Fatal().Err(err).Msg("Failed to load configuration")
	}

	appLogger := setupLogger(appConfig)

	provider := setupProvider(appConfig, appLogger)

	rateLimiter := setupRateLimiter(appConfig, appLogger)
	defer rateLimiter.Close()

	metricsCollector := metrics.New(prometheus.DefaultRegisterer)

	locationService := service.NewVoterLocationService(provider, metricsCollector, appLogger)
	defer locationService.Close()

	appRouter := router.SetupRouter(router.Dependencies{
		LocationHandler: handler.NewVoterLocationHandler(locationService, appLogger),
		RateLimiter:     rateLimiter,
		Metrics:         metricsCollector,
		Logger:          appLogger,
	})

	runServer(appConfig, appRouter, appLogger)
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:      appConfig.LogLevel,
		Pretty:     appConfig.LogPretty,
		OutputFile: appConfig.LogFile,
	})

	appLogger.Info().Msg("Starting Voter Location Server...")
	appLogger.Info().
		Str("port", appConfig.Port).
		Str("geo_provider", appConfig.GeoProvider).
		Str("rate_limiter_type", appConfig.RateLimitType).
		Int("rate_limit", appConfig.RateLimit).
		Int("rate_limit_window", appConfig.RateLimitWindow).
		Msg("Configuration loaded")

	return appLogger
}

// setupProvider builds the configured geolocation provider.
// Database-file providers open lazily on the first lookup.
func setupProvider(appConfig *config.Config, log *logger.Logger) geo.Provider {
	provider, err := geo.NewProvider(geo.ProviderConfig{
		Type:            appConfig.GeoProvider,
		MaxMindPath:     appConfig.GeoIPDBPath,
		IP2LocationPath: appConfig.IP2LocationDBPath,
		CSVPath:         appConfig.GeoCSVPath,
		MySQLDSN:        appConfig.MySQLDSN,
		RedisAddr:       appConfig.RedisAddr,
		RedisPassword:   appConfig.RedisPassword,
		RedisDB:         appConfig.RedisDB,
	})
	if err != nil {
		log.Fatal().Err(err).Str("type", appConfig.GeoProvider).Msg("Failed to initialize geolocation provider")
	}

	if path, missing := missingDatabaseFile(appConfig); missing {
		log.Warn().
			Str("provider", appConfig.GeoProvider).
			Str("path", path).
			Str("hint", "download the database or set GEO_PROVIDER=csv to serve "+appConfig.GeoCSVPath).
			Msg("Geolocation database file not found, lookups will fail with 500")
	}

	if redisProvider, ok := provider.(*geo.RedisProvider); ok {
		loadRedisDataIfEmpty(redisProvider, appConfig.GeoCSVPath, log)
	}

	log.Info().Str("provider", provider.Name()).Msg("Geolocation provider initialized")
	return provider
}

// missingDatabaseFile reports the database path of a file-backed provider
// (maxmind, ip2location) when that file does not exist. Those providers open
// lazily, so without this check the server would start and fail every lookup.
func missingDatabaseFile(appConfig *config.Config) (string, bool) {
	var path string
	switch strings.ToLower(strings.TrimSpace(appConfig.GeoProvider)) {
	case geo.TypeMaxMind, "":
		path = appConfig.GeoIPDBPath
	case geo.TypeIP2Location:
		path = appConfig.IP2LocationDBPath
	default:
		return "", false
	}

	if _, err := os.Stat(path); err != nil {
		return path, true
	}
	return path, false
}

// loadRedisDataIfEmpty seeds an empty Redis from the CSV file
func loadRedisDataIfEmpty(redisProvider *geo.RedisProvider, csvPath string, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	isEmpty, err := redisProvider.IsEmpty(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to check if Redis is empty")
		return
	}
	if !isEmpty {
		return
	}

	log.Info().Str("csv", csvPath).Msg("Redis is empty, loading locations from CSV")
	loaded, err := redisProvider.LoadFromCSV(ctx, csvPath)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load locations into Redis")
		return
	}
	log.Info().Int("records", loaded).Msg("Locations loaded into Redis")
}

// setupRateLimiter initializes the rate limiter (memory or redis)
func setupRateLimiter(appConfig *config.Config, log *logger.Logger) limiter.Limiter {
	rate := limiter.Rate{
		Limit:  appConfig.RateLimit,
		Window: time.Duration(appConfig.RateLimitWindow) * time.Second,
	}

	rateLimiter, err := limiter.NewLimiter(limiter.LimiterConfig{
		Type:          appConfig.RateLimitType,
		Rate:          rate,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize rate limiter")
	}

	log.Info().
		Str("type", appConfig.RateLimitType).
		Str("rate", rate.String()).
		Float64("requests_per_second", appConfig.RequestsPerSecond()).
		Msg("Rate limiter initialized")

	return rateLimiter
}

// runServer serves until SIGINT/SIGTERM, then drains in-flight requests
func runServer(appConfig *config.Config, appRouter http.Handler, log *logger.Logger) {
	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           appRouter,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	base := "http://localhost:" + appConfig.Port
	log.Info().
		Str("port", appConfig.Port).
		Str("api_endpoint", base+"/apis/v1/voterLocationRetrieveFromIP?ip_address=<ip>").
		Str("health_check", base+"/health").
		Str("metrics", base+"/metrics").
		Str("swagger", base+"/swagger/index.html").
		Msg("Server is running")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server failed")
		}
		return
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
