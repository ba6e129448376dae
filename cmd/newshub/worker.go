package main

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"news-hub/config"
	"news-hub/eventbus"
	"news-hub/events"
)

func workerCmd(cfg *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume sync requests from the event bus (with retry reinjection)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return logCommandError(cmd, runWorker(cmd.Context(), *cfg))
		},
	}
}

func runWorker(ctx context.Context, cfg config.AppConfig) error {
	if cfg.EventBus.Brokers == "" {
		return errors.New("worker needs eventbus.brokers (KAFKA_BOOTSTRAP_SERVERS)")
	}

	ensureCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err := eventbus.EnsureTopics(ensureCtx, cfg.EventBus.Brokers, cfg.EventBus.Partitions, eventbus.AllTopics...)
	cancel()
	if err != nil {
		config.ErrorWithFields("failed to ensure eventbus topics", config.Fields{"error": err.Error()})
	}

	a, err := newApp(ctx, cfg, appOptions{withModel: true, withBus: true})
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	topic := eventbus.TopicSyncRequests
	groupID := cfg.EventBus.GroupID
	retryGroupID := groupID + "-retry-" + strings.ReplaceAll(topic.Base(), ".", "-")

	var wg sync.WaitGroup
	errCh := make(chan error, 2)
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil && !errors.Is(err, context.Canceled) {
				config.ErrorWithFields("worker loop stopped", config.Fields{"loop": name, "error": err.Error()})
				errCh <- err
			}
		}()
	}

	run("consumer", func() error {
		return eventbus.SubscribeJSON(ctx, a.bus, groupID, topic, events.SyncRequested.String(), a.syncSvc.HandleSyncRequested)
	})
	run("reinjector", func() error {
		return a.bus.StartRetryReinjector(ctx, retryGroupID, topic)
	})

	config.InfoWithFields("worker started", config.Fields{"group_id": groupID, "topic": topic.Base()})

	var loopErr error
	select {
	case <-ctx.Done():
	case loopErr = <-errCh:
	}
	wg.Wait()
	config.Logger.Info("worker stopped")
	return loopErr
}
