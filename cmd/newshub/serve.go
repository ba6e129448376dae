package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"news-hub/api/handlers"
	"news-hub/api/router"
	"news-hub/config"
	"news-hub/gemini"
)

func serveCmd(cfg *config.AppConfig) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return logCommandError(cmd, runServe(cmd.Context(), *cfg))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func runServe(ctx context.Context, cfg config.AppConfig) error {
	a, err := newApp(ctx, cfg, appOptions{withModel: true, withBus: true})
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	health := map[string]handlers.HealthCheck{}
	if a.mongo != nil {
		health["mongo"] = a.mongo.Ping
	}
	if a.redis != nil {
		health["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
	}
	health["model_quota"] = func(context.Context) error {
		if a.limiter.Remaining() == 0 {
			return gemini.ErrQuotaExhausted
		}
		return nil
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: router.New(router.Deps{
			Articles: a.articleSvc,
			Chat:     a.chatSvc,
			Sync:     a.syncSvc,
			Metrics:  a.metrics,
			Health:   health,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		config.InfoWithFields("http server listening", config.Fields{"addr": cfg.Server.Addr, "storage": cfg.Storage})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	config.Logger.Info("shutting down http server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
