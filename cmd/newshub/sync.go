package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"news-hub/config"
	"news-hub/services"
)

func syncCmd(cfg *config.AppConfig) *cobra.Command {
	var (
		count int
		every time.Duration
		async bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch, curate and store articles once (or every --every)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *cfg, appOptions{withModel: true, withBus: true})
			if err != nil {
				return logCommandError(cmd, err)
			}
			defer a.Close(context.Background())

			out := cmd.OutOrStdout()
			if async {
				accepted, err := a.syncSvc.RequestAsync(cmd.Context(), count, "cli")
				if err != nil {
					return logCommandError(cmd, err)
				}
				return printJSON(out, accepted)
			}
			if every <= 0 {
				return logCommandError(cmd, syncOnce(cmd.Context(), a.syncSvc, count, out))
			}
			return logCommandError(cmd, syncEvery(cmd.Context(), a.syncSvc, count, every, out))
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "articles to curate (1-20, default sync.default_count)")
	cmd.Flags().DurationVar(&every, "every", 0, "repeat the sync at this interval until interrupted")
	cmd.Flags().BoolVar(&async, "async", false, "publish a sync request to the event bus instead of running it")
	return cmd
}

func syncOnce(ctx context.Context, svc *services.SyncService, count int, out io.Writer) error {
	resp, err := svc.Sync(ctx, count)
	if err != nil {
		return err
	}
	return printJSON(out, resp)
}

// syncEvery runs immediately, then on every tick. A failed run is logged and
// the loop keeps going.
func syncEvery(ctx context.Context, svc *services.SyncService, count int, every time.Duration, out io.Writer) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		if err := syncOnce(ctx, svc, count, out); err != nil && ctx.Err() == nil {
			config.WarnWithFields("scheduled sync failed", config.Fields{"error": err.Error()})
		}
		config.InfoWithFields("next sync scheduled", config.Fields{"at": time.Now().Add(every).Format(time.RFC3339)})
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
