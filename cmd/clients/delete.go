package clients

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campushq/vaultd/cmd/cmdutil"
	"github.com/campushq/vaultd/internal/config"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [client-id]",
	Short: "Delete a vault client and its access grants",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		bundle, err := cmdutil.NewServiceBundle(cfg)
		if err != nil {
			return err
		}
		defer bundle.Close()

		if err := bundle.Identity.Delete(context.Background(), id); err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}

		fmt.Printf("Client %s deleted\n", id)
		return nil
	},
}
