package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leafmint/spendscan/internal/cli"
	"github.com/leafmint/spendscan/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStorage()
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}

			cmd.Println(cli.FormatSuccess(fmt.Sprintf("database at schema version %d", storage.ExpectedSchemaVersion)))
			return nil
		},
	}
}
