package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/feedboard/feedboard/internal/api"
	"github.com/feedboard/feedboard/internal/config"
	"github.com/feedboard/feedboard/internal/logging"
	"github.com/feedboard/feedboard/internal/session"
	"github.com/feedboard/feedboard/internal/store"
	"github.com/feedboard/feedboard/internal/trigger"
)

// newServeCmd creates and configures the 'serve' subcommand, which runs the
// HTTP API until interrupted.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the dashboard API server",
		Long: `Starts the JSON HTTP server backing the dashboard. The server
connects to Postgres at startup, fails fast on misconfiguration, and
shuts down gracefully on SIGINT/SIGTERM.`,

		RunE: runServeCommand,
	}
	return cmd
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(ctx, store.Config{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
		DefaultPrompts: map[store.ContentType]string{
			store.ContentTypeNews:  cfg.Prompts.NewsDefault,
			store.ContentTypePaper: cfg.Prompts.PaperDefault,
		},
	})
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}
	defer st.Close()

	gate := session.NewGate(cfg.Admin.Username, cfg.Admin.Password, cfg.SessionSecret(), !cfg.Logging.Development)
	proxy := trigger.NewClient(cfg.Webhook.URL, cfg.Webhook.Timeout())

	server := api.NewServer(st, gate, proxy, logger)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.Info("Server stopped cleanly")
	return nil
}
