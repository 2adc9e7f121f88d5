package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/ircweather/internal/api/http"
	"github.com/i474232898/ircweather/internal/bot"
	"github.com/i474232898/ircweather/internal/config"
	"github.com/i474232898/ircweather/internal/logging"
	"github.com/i474232898/ircweather/internal/scheduler"
	"github.com/i474232898/ircweather/internal/store"
	"github.com/i474232898/ircweather/internal/weather"
	"github.com/i474232898/ircweather/internal/weather/providers"
)

var (
	configPath string
	logLevel   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ircweather",
		Short:        "IRC weather bot backed by OpenWeatherMap",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the log level (debug, info, warn, error)")

	root.AddCommand(newServeCmd(), newWeatherCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to IRC and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func newWeatherCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weather <location...>",
		Short: "Print the current weather for a location",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			// One-off lookups never need the configured persistent store.
			cfg.Store.Driver = config.StoreMemory
			a, err := build(cfg, logger)
			if err != nil {
				return err
			}
			defer a.locations.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.OWM.HTTPTimeout)
			defer cancel()

			fmt.Fprintln(cmd.OutOrStdout(), a.handler.Weather(ctx, "cli", strings.Join(args, " ")))
			return nil
		},
	}
}

func setup() (*config.AppConfig, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

type app struct {
	service   *weather.Service
	cache     *store.SnapshotCache
	locations store.LocationStoreCloser
	handler   *bot.Handler
}

func build(cfg *config.AppConfig, logger *zap.Logger) (*app, error) {
	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.OWM.HTTPTimeout,
	}

	provider := providers.NewOpenWeatherProvider(httpClient, providers.OpenWeatherConfig{
		APIKey:   cfg.OWM.APIKey,
		BaseURL:  cfg.OWM.BaseURL,
		Language: cfg.OWM.Language,
	})

	logger.Info("weather provider configured",
		zap.String("provider", provider.Name()),
		zap.Bool("air_quality", cfg.OWM.EnableAirQuality),
		zap.Bool("best_guess", cfg.OWM.EnableLocationBestGuess),
		zap.String("store", cfg.Store.Driver))

	locations, err := store.Open(cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open location store: %w", err)
	}

	cache := store.NewSnapshotCache(cfg.Cache.TTL)
	resolver := weather.NewResolver(provider, weather.ResolverConfig{
		BestGuess: cfg.OWM.EnableLocationBestGuess,
	}, logger.Named("resolver"))
	fetcher := weather.NewFetcher(provider, cache, cfg.OWM.EnableAirQuality, logger.Named("fetcher"))
	service := weather.NewService(resolver, fetcher)

	return &app{
		service:   service,
		cache:     cache,
		locations: locations,
		handler:   bot.NewHandler(service, locations, cfg.IRC.CommandPrefix, logger.Named("bot")),
	}, nil
}

func serve(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) error {
	a, err := build(cfg, logger)
	if err != nil {
		return err
	}
	defer a.locations.Close()

	sched := scheduler.New(a.cache, cfg.Cache.SweepInterval, logger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	server := fiber.New(fiber.Config{
		AppName:               "ircweather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * cfg.OWM.HTTPTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
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
	server.Use(recover.New())
	server.Use(requestLogger(logger.Named("http")))

	server.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "ircweather",
		})
	})
	httpapi.RegisterRoutes(server, a.service, a.locations)

	go func() {
		if err := server.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", zap.Error(err))
		}
	}()

	if cfg.IRC.Server != "" {
		ircBot := bot.NewIRCBot(cfg.IRC, a.handler, 2*cfg.OWM.HTTPTimeout, logger.Named("irc"))
		go func() {
			if err := ircBot.Run(ctx); err != nil {
				logger.Error("irc bot stopped", zap.Error(err))
			}
		}()
	} else {
		logger.Info("no irc server configured, serving the HTTP API only")
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("error during shutdown", zap.Error(err))
	}
	return nil
}

func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)
		return err
	}
}
