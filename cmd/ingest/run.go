package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppopeskul/wa-inbox/internal/config"
	"github.com/ppopeskul/wa-inbox/internal/infrastructure/storage"
	"github.com/ppopeskul/wa-inbox/internal/ingest"
	"github.com/ppopeskul/wa-inbox/internal/repository"
	"github.com/ppopeskul/wa-inbox/internal/service"
)

func newRunCmd() *cobra.Command {
	var (
		dir     string
		archive string
		watch   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process every *.json payload file in the directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("dir") {
				cfg.Ingest.Dir = dir
			}
			if cmd.Flags().Changed("archive") {
				cfg.Ingest.ArchiveDir = archive
			}

			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, watch, logger)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Payload directory (overrides ingest.dir)")
	cmd.Flags().StringVar(&archive, "archive", "", "Move processed files here (overrides ingest.archive_dir)")
	cmd.Flags().DurationVar(&watch, "watch", 0, "Re-scan the directory on this interval until interrupted; requires an archive directory")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, watch time.Duration, logger *zap.Logger) error {
	if watch > 0 && cfg.Ingest.ArchiveDir == "" {
		return ingest.ErrArchiveRequired
	}

	db, err := storage.OpenDB(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Writes invalidate the server's chat list cache when Redis is shared.
	redisClient := storage.NewRedisClient(ctx, cfg, logger)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
	}

	repo := repository.NewRepository(db)
	cache := service.NewChatCache(&cfg.Cache, redisClient, logger)
	runner := ingest.NewRunner(service.NewIngestMessageService(repo, cache, logger), &cfg.Ingest, logger)

	if watch > 0 {
		logger.Info("Watching payload directory",
			zap.String("dir", cfg.Ingest.Dir),
			zap.Duration("interval", watch))
		return runner.Watch(ctx, watch)
	}

	_, err = runner.Run(ctx)
	return err
}
