package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	accesscmd "github.com/campushq/vaultd/cmd/access"
	"github.com/campushq/vaultd/cmd/clients"
	"github.com/campushq/vaultd/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "vaultd",
	Short: "Campus secrets vault service",
	Long: `vaultd stores secrets in labeled vaults and controls access per client
with bitmask permissions. It exposes an HTTP API for secret and access
management plus local administration commands.`,
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
	// Global flags
	rootCmd.PersistentFlags().String("db-url", "", "Database connection URL (env: DATABASE_URL)")
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (env: SERVER_ADDR)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: DEBUG)")

	// Add subcommands
	rootCmd.AddCommand(clients.ClientsCmd)
	rootCmd.AddCommand(accesscmd.AccessCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
