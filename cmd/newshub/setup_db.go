package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"news-hub/config"
	"news-hub/db"
)

func setupDBCmd(cfg *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "setup-db",
		Short: "Create collections with validators and indexes (existing data is kept)",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := db.Connect(cmd.Context(), cfg.Mongo)
			if err != nil {
				return logCommandError(cmd, err)
			}
			defer m.Close(cmd.Context())

			results, err := db.SetupCollections(cmd.Context(), m.DB)
			out := cmd.OutOrStdout()
			for _, r := range results {
				state := "updated"
				if r.Created {
					state = "created"
				}
				fmt.Fprintf(out, "%s (%s)\n", r.Name, state)
				fmt.Fprintf(out, "  required: %s\n", strings.Join(r.Required, ", "))
				fmt.Fprintf(out, "  indexes:  %s\n", strings.Join(r.Indexes, ", "))
			}
			return logCommandError(cmd, err)
		},
	}
}
