package main

import (
	"fmt"

	"github.com/Veraticus/groundwork/internal/cli"
	"github.com/Veraticus/groundwork/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version. Every
command that uses the database migrates it automatically; --status only
reports the schema version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			version, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if status {
				fmt.Fprintf(out, "Database: %s\nSchema version: %d (latest %d)\n", store.Path(), version, storage.ExpectedSchemaVersion) //nolint:forbidigo // User-facing output
				return nil
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database %s is at schema version %d", store.Path(), version))) //nolint:forbidigo // User-facing output
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "show the schema version")
	return cmd
}
