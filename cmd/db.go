package cmd

import (
	"fmt"
	"log"

	"github.com/aylalah/ag-rms-sub000/internal/db/bunx"
	"github.com/aylalah/ag-rms-sub000/internal/repository"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management commands",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		if err := repository.InitSchema(cmd.Context(), db); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
		log.Printf("Database schema initialized")
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbInitCmd)
	rootCmd.AddCommand(dbCmd)
}
