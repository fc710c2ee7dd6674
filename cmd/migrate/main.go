package main

// Run database migrations:
//   go run ./cmd/migrate            apply pending migrations
//   go run ./cmd/migrate --down     revert the latest migration
//   go run ./cmd/migrate --version  print the applied version

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/telemetry"
)

func main() {
	if err := newMigrateCmd().Execute(); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func newMigrateCmd() *cobra.Command {
	var down, version bool
	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply generated_resumes schema migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			telemetry.Configure(os.Stdout, cfg.LogLevel, cfg.LogFormat)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
			sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer sqlDB.Close()

			switch {
			case version:
				v, err := db.SchemaVersion(ctx, sqlDB)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			case down:
				if err := db.RollbackMigration(ctx, sqlDB); err != nil {
					return err
				}
				telemetry.Info("migrate.rolled_back", nil)
				return nil
			}
			if err := db.RunMigrations(ctx, sqlDB); err != nil {
				return err
			}
			telemetry.Info("migrate.complete", nil)
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "revert the most recent migration")
	cmd.Flags().BoolVar(&version, "version", false, "print the applied schema version")
	cmd.MarkFlagsMutuallyExclusive("down", "version")
	return cmd
}
