package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tabqa/internal/database"
	"tabqa/internal/database/migration"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the PostgreSQL schema",
	Long: `Create the documents table and its indexes when they do not exist yet.
Running it against an already migrated database is a no-op.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, syncLog := setupLogger(cfg, nil)
	defer syncLog()

	db, err := database.NewPostgres(cmd.Context(), cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	return migration.EnsureMigrated(cmd.Context(), db, log, cfg.Database.Host)
}
