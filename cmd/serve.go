package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice_pipeline/internal/config"
	"github.com/Vovarama1992/voice_pipeline/internal/delivery"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve one conversation session over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			if cfg.LogFormat == "" {
				cfg.LogFormat = "json"
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}

func serve(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	base, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer base.Sync()
	zl := logger.NewZapLogger(base.Sugar())

	a, err := buildApp(ctx, cfg, base.Sugar())
	if err != nil {
		zl.Log(logger.LogEntry{Level: "error", Message: "init failed", Service: serviceName, Error: err})
		return err
	}

	h := delivery.NewTurnHandler(a.processor, delivery.NewSession(), cfg.UploadDir, cfg.OutputDir, zl)
	r := delivery.NewRouter(h, delivery.RouterOptions{
		AuthToken:     cfg.APIToken,
		TurnRateLimit: cfg.TurnRateLimit,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Log(logger.LogEntry{Level: "info", Message: "listening at " + addr, Service: serviceName})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		zl.Log(logger.LogEntry{Level: "error", Message: "server error", Service: serviceName, Error: err})
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	zl.Log(logger.LogEntry{Level: "info", Message: "shutting down", Service: serviceName})
	return srv.Shutdown(shutdownCtx)
}
