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

	"github.com/bryanwahyu/tpa-risk/internal/infra/httpserver"
	"github.com/bryanwahyu/tpa-risk/internal/middleware"
	"github.com/bryanwahyu/tpa-risk/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis pipeline over HTTP",
	Long: `Starts an HTTP server exposing on-demand analysis, batch runs and the
archive of past results. Runs are serialized: concurrent requests wait for
the running analysis to finish.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, rootFlags.config)
	if err != nil {
		return err
	}
	defer a.Close()

	limiter := middleware.NewRateLimiter(a.cfg.RateLimit.Capacity, a.cfg.RateLimit.RefillPerMin)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Prune(10 * time.Minute)
			}
		}
	}()

	health := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: a.db},
	}
	if a.archiveDB != nil {
		health["archive"] = &middleware.DatabaseHealthChecker{DB: a.archiveDB}
	}

	addr := fmt.Sprintf(":%d", a.cfg.Server.Port)
	srv := &http.Server{
		Addr: addr,
		Handler: httpserver.NewRouter(a.svc, httpserver.Options{
			Log:     logger.Logger,
			APIKeys: a.cfg.Auth.APIKeys,
			Limiter: limiter,
			Metrics: middleware.NewMetrics(),
			Health:  health,
		}),
		ReadTimeout: 15 * time.Second,
		// a single analysis waits on the model, so writes get a long deadline
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Warn("shutdown error", "error", err)
	}
	return nil
}
