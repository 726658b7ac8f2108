// Package cmd contains the CLI entrypoints for the ratings backend.
package cmd

import (
	"fmt"
	"os"

	"github.com/aylalah/ag-rms-sub000/internal/config"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ratingsapi",
	Short: "Ratings workflow API server",
	Long: `Ratings workflow API server manages clients, contacts, ratings and their
supporting catalogs, with role-gated access, a full audit trail, file
uploads and coalesced email notifications.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("db-url", "", "Database connection URL (env: DATABASE_URL)")
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (env: SERVER_ADDR)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: DEBUG)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
