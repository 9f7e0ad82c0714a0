package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/lineups/internal/adapters/http/api"
	"github.com/okian/lineups/pkg/logger"
	"github.com/okian/lineups/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newServeCmd(c *cli) *cobra.Command {
	var origins []string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the latest report over HTTP",
		Long: "Computes a report, then serves it on --addr. With --refresh-schedule " +
			"the report is recomputed on a cron spec; a failed refresh keeps the previous report.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd.Context(), origins)
		},
	}
	cmd.Flags().String("addr", "", "listen address")
	cmd.Flags().String("refresh-schedule", "", `cron spec such as "@every 5m"`)
	cmd.Flags().Int("max-limit", 0, "largest accepted /lineups limit")
	cmd.Flags().Int("request-timeout-ms", 0, "per-request timeout in milliseconds")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", nil, "allowed CORS origin, repeatable")
	return cmd
}

func (c *cli) serve(ctx context.Context, origins []string) error {
	svc, closeFn, err := c.newService(ctx, true)
	if err != nil {
		return err
	}
	defer closeFn()

	if _, err := svc.Report(ctx); err != nil {
		return fmt.Errorf("initial report: %w", err)
	}
	if err := svc.Start(ctx, c.cfg.RefreshSchedule); err != nil {
		return err
	}
	defer svc.Stop()

	metrics.RegisterRuntimeCollectors()

	handler := api.NewServer(svc,
		api.WithMaxLimit(c.cfg.MaxLimit),
		api.WithCORS(origins...),
		api.WithTimeout(time.Duration(c.cfg.RequestTimeoutMS)*time.Millisecond),
		api.WithLogger(c.log.Named("http")),
	).Router()

	srv := &http.Server{
		Addr:              c.cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		c.log.Info(ctx, "starting HTTP server", logger.String("addr", c.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	c.log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		c.log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	c.log.Info(ctx, "server stopped")
	return nil
}
