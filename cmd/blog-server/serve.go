package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/upb/blog-platform/app"
	"github.com/upb/blog-platform/routes"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server. Pending migrations are applied first unless
DB_AUTO_MIGRATE is false. SIGINT or SIGTERM shuts the server down gracefully.`,
		RunE: runServe,
	}
	cmd.Flags().Duration("prune-interval", time.Hour, "How often expired access tokens are deleted (0 disables)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pruneEvery, err := cmd.Flags().GetDuration("prune-interval")
	if err != nil {
		return err
	}

	cfg, logger, err := loadRuntime(ctx)
	if err != nil {
		return err
	}

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if err := deps.Start(); err != nil {
		_ = deps.Close(context.Background())
		return fmt.Errorf("failed to start background workers: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           routes.SetupRoutes(deps),
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if pruneEvery > 0 {
		go pruneTokens(ctx, deps, pruneEvery)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("blog server listening",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.Environment),
			zap.String("version", app.Version))
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := deps.Close(shutdownCtx); err != nil {
		logger.Error("failed to close dependencies", zap.Error(err))
	}
	return serveErr
}

// pruneTokens deletes expired access tokens until ctx is cancelled
func pruneTokens(ctx context.Context, deps *app.Dependencies, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := deps.Auth.PruneExpiredTokens(ctx); err != nil {
				deps.Logger.Warn("token pruning failed", zap.Error(err))
			}
		}
	}
}
