package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/grantflow/internal/cli"
	"github.com/Veraticus/grantflow/internal/config"
	"github.com/Veraticus/grantflow/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Commands that read the database migrate it automatically; this command is
useful to prepare a database ahead of time or to check its version.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	slog.Info("Starting database migration",
		"database", settings.Database,
		"status_only", status)

	store, err := storage.NewSQLiteStore(settings.Database, storage.WithStoreLogger(slog.Default()))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if status {
		current, err := store.SchemaVersion(ctx)
		if err != nil {
			return err
		}
		content := fmt.Sprintf("Database:        %s\nCurrent version: %d\nLatest version:  %d",
			store.Path(), current, storage.ExpectedSchemaVersion)
		fmt.Fprintln(out, cli.RenderBox("Database Migration Status", content))
		if current < storage.ExpectedSchemaVersion {
			fmt.Fprintln(out, cli.FormatWarning("Migrations pending; run 'grantflow migrate'"))
		}
		return nil
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database at schema version %d", storage.ExpectedSchemaVersion)))
	return nil
}
