package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"news-hub/cache"
	"news-hub/config"
	"news-hub/db"
	"news-hub/feeder"
	"news-hub/gemini"
)

type checkResult struct {
	name string
	err  error
	note string
}

func checkCmd(cfg *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify NewsAPI, MongoDB, Gemini and Redis connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			results := runChecks(cmd.Context(), *cfg)
			return logCommandError(cmd, reportChecks(cmd.OutOrStdout(), results))
		},
	}
}

func runChecks(ctx context.Context, cfg config.AppConfig) []checkResult {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	var results []checkResult

	if cfg.Feed.NewsAPI.APIKey == "" {
		results = append(results, checkResult{name: "newsapi", err: fmt.Errorf("NEWS_API_KEY is not set")})
	} else {
		err := feeder.NewNewsAPIClient(cfg.Feed.NewsAPI).Ping(ctx)
		results = append(results, checkResult{name: "newsapi", err: err})
	}

	if m, err := db.Connect(ctx, cfg.Mongo); err != nil {
		results = append(results, checkResult{name: "mongodb", err: err})
	} else {
		err := m.Ping(ctx)
		if err == nil {
			err = m.RoundTrip(ctx)
		}
		results = append(results, checkResult{name: "mongodb", err: err, note: cfg.Mongo.Database})
		_ = m.Close(context.Background())
	}

	if model, err := gemini.New(ctx, cfg.LLM); err != nil {
		results = append(results, checkResult{name: "gemini", err: err})
	} else {
		reply, err := model.Ping(ctx)
		if err == nil && reply != "CONNECTION_OK" {
			err = fmt.Errorf("unexpected reply %q", reply)
		}
		results = append(results, checkResult{name: "gemini", err: err, note: model.Model()})
	}

	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis)
		if rdb != nil {
			_ = rdb.Close()
		}
		results = append(results, checkResult{name: "redis", err: err, note: cfg.Redis.Addr})
	}
	return results
}

func reportChecks(w io.Writer, results []checkResult) error {
	failed := 0
	for _, r := range results {
		status := "OK"
		detail := r.note
		if r.err != nil {
			status = "FAIL"
			detail = r.err.Error()
			failed++
		}
		fmt.Fprintf(w, "%-8s %-5s %s\n", r.name, status, detail)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	return nil
}
