package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"news-hub/config"
)

// @title           NewsHub API
// @version         1.0
// @description     AI-curated tech news feed with per-article chat
// @BasePath        /api
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgDir string
		cfg    config.AppConfig
	)

	root := &cobra.Command{
		Use:           "newshub",
		Short:         "AI-curated tech news: sync, serve and chat",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgDir == "" {
				cfgDir = config.GetBasePath()
			}
			c, err := config.Load(cfgDir)
			if err != nil {
				return err
			}
			cfg = *c
			config.InitLogger(cfg.Logging)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&cfgDir, "config", "c", "", "directory holding config.yaml and .env (default: nearest parent with config.yaml)")

	// 하위 명령은 PersistentPreRunE 이후에 설정을 읽으므로 포인터로 넘긴다.
	root.AddCommand(
		serveCmd(&cfg),
		syncCmd(&cfg),
		workerCmd(&cfg),
		setupDBCmd(&cfg),
		checkCmd(&cfg),
	)
	return root
}

// logCommandError keeps failures in the same JSON log stream as everything else.
func logCommandError(cmd *cobra.Command, err error) error {
	if err != nil {
		config.ErrorWithFields("command failed", config.Fields{"command": cmd.Name(), "error": err.Error()})
	}
	return err
}
