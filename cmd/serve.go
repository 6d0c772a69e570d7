package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jjenkins/parliament/internal/cache"
	"github.com/jjenkins/parliament/internal/config"
	"github.com/jjenkins/parliament/internal/handlers"
	"github.com/jjenkins/parliament/internal/logger"
	"github.com/jjenkins/parliament/internal/metrics"
	"github.com/jjenkins/parliament/internal/store"
	"github.com/jjenkins/parliament/internal/tracing"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long:  `Start the web server for the bills, votes, ballots, and feeds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		// an explicit flag wins over PORT
		if cmd.Flags().Changed("port") {
			cfg.Port = port
		}

		log, err := logger.New(logger.Options{
			Level:       cfg.LogLevel,
			Development: cfg.IsDevelopment(),
			File:        cfg.LogFile,
		})
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		defer func() { _ = log.Sync() }()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.TracingEnabled {
			shutdown, err := tracing.Init(ctx, cfg.TracingEndpoint, cfg.TracingInsecure)
			if err != nil {
				return err
			}
			defer func() { _ = shutdown(context.Background()) }()
			log.Info("Tracing enabled", zap.String("endpoint", cfg.TracingEndpoint))
		}

		db, err := store.NewDB(cfg.DatabaseURL, store.PoolOptions{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		env := &handlers.Env{
			Bills:       store.NewBillStore(db),
			Votes:       store.NewVoteStore(db),
			Sessions:    store.NewSessionStore(db),
			Statements:  store.NewStatementStore(db),
			Politicians: store.NewPoliticianStore(db),
			SiteURL:     cfg.SiteURL,
			Log:         log,
		}

		responses, closeCache, err := responseCache(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeCache()

		app := newApp(cfg, env, responses)

		errc := make(chan error, 1)
		go func() {
			log.Info("Starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
			errc <- app.Listen(":" + cfg.Port)
		}()

		select {
		case err := <-errc:
			return fmt.Errorf("failed to start server: %w", err)
		case <-ctx.Done():
		}

		log.Info("Shutting down server")
		return app.ShutdownWithTimeout(10 * time.Second)
	},
}

// responseCache picks the cache backend: none when CACHE_TTL is zero,
// Redis when CACHE_REDIS_URL is set, in-process otherwise. The returned
// func releases the backend's connections.
func responseCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (*cache.ResponseCache, func(), error) {
	noop := func() {}
	if cfg.CacheTTL <= 0 {
		return nil, noop, nil
	}
	if cfg.CacheRedisURL == "" {
		return cache.New(cfg.CacheTTL, handlers.VaryHeaders()...), noop, nil
	}
	rdb, err := cache.Connect(ctx, cfg.CacheRedisURL)
	if err != nil {
		return nil, noop, err
	}
	log.Info("Caching responses in redis", zap.Duration("ttl", cfg.CacheTTL))
	closeRedis := func() {
		if err := rdb.Close(); err != nil {
			log.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	return cache.NewWithStore(cache.NewRedisStore(rdb, cfg.CacheTTL), handlers.VaryHeaders()...), closeRedis, nil
}

func newApp(cfg *config.Config, env *handlers.Env, responses *cache.ResponseCache) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Parliament",
	})

	app.Use(recover.New())
	if cfg.TracingEnabled {
		app.Use(otelfiber.Middleware())
	}
	app.Use(logger.Middleware(env.Log))

	if cfg.MetricsEnabled {
		m := metrics.New()
		app.Use(m.Middleware())
		app.Get("/metrics", m.Handler())
	}

	if responses != nil {
		app.Use(responses.Middleware())
	}

	handlers.Register(app, env)
	return app
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "8080", "Port to run the server on")
}
