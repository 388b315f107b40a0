package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/envsync/internal/api"
	"github.com/stacklok/envsync/internal/auth"
	v1 "github.com/stacklok/envsync/internal/api/v1"
	"github.com/stacklok/envsync/internal/telemetry"
)

const (
	defaultGracefulTimeout = 30 * time.Second
	defaultRequestTimeout  = 2 * time.Minute // publish of a large environment is slow
	serverReadTimeout      = 10 * time.Second
	serverIdleTimeout      = 60 * time.Second
)

func newServeCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the envsync API server",
		Long: `Start the HTTP API serving environment diff and publish requests.

Configuration is read from --config when given and from ENVSYNC_* environment
variables. A database section is required.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), configPath, v)
		},
	}
	cmd.Flags().String("address", "", "Address to listen on (default :8080)")

	if err := v.BindPFlag("address", cmd.Flags().Lookup("address")); err != nil {
		panic(err)
	}
	return cmd
}

func runServe(ctx context.Context, configPath string, v *viper.Viper) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if address := v.GetString("address"); address != "" {
		cfg.Server.Address = address
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := buildComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.close(context.WithoutCancel(ctx))

	metricsMiddleware, err := telemetry.MetricsMiddleware(c.telemetry.MeterProvider())
	if err != nil {
		return fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	authMiddleware, err := auth.NewAuthMiddleware(&cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to create auth middleware: %w", err)
	}

	requestTimeout := cfg.Server.GetRequestTimeout()
	if requestTimeout == 0 {
		requestTimeout = defaultRequestTimeout
	}

	routes := v1.NewRoutes(c.diff, c.publish, c.resources, v1.Settings{
		Transactional: cfg.Promotion.Transactional,
		BatchSize:     cfg.Promotion.BatchSize,
	})
	router := api.NewServer(routes, c.store,
		api.WithMiddlewares(
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			telemetry.TracingMiddleware(c.telemetry.TracerProvider()),
			metricsMiddleware,
			authMiddleware,
			middleware.Timeout(requestTimeout),
			api.LoggingMiddleware,
		),
	)

	address := cfg.Server.GetAddress()
	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  serverIdleTimeout,
		// request contexts inherit the logr logger of the command
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultGracefulTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("Server shutdown complete")
	return nil
}
