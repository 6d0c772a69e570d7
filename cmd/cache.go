package cmd

import (
	"errors"
	"fmt"

	"github.com/jjenkins/parliament/internal/cache"
	"github.com/jjenkins/parliament/internal/config"
	"github.com/jjenkins/parliament/internal/logger"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the shared response cache",
}

var cacheFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Drop every cached response",
	Long: `Drop every response cached in Redis, e.g. after new bills or votes are loaded.
An in-process cache lives only as long as its server and is not reachable from here.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.CacheRedisURL == "" {
			return errors.New("CACHE_REDIS_URL is not set; only the redis cache can be flushed")
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

		ctx := cmd.Context()
		rdb, err := cache.Connect(ctx, cfg.CacheRedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()

		responses := cache.NewWithStore(cache.NewRedisStore(rdb, cfg.CacheTTL))
		if err := responses.Flush(ctx); err != nil {
			return fmt.Errorf("failed to flush response cache: %w", err)
		}
		log.Info("Flushed response cache")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheFlushCmd)
	rootCmd.AddCommand(cacheCmd)
}
