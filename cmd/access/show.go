package access

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campushq/vaultd/cmd/cmdutil"
	"github.com/campushq/vaultd/internal/config"
)

var showCmd = &cobra.Command{
	Use:   "show [client-id]",
	Short: "Show a client's vault permissions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID := args[0]

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		bundle, err := cmdutil.NewServiceBundle(cfg)
		if err != nil {
			return err
		}
		defer bundle.Close()

		grants, err := bundle.Access.Describe(context.Background(), clientID)
		if err != nil {
			return fmt.Errorf("failed to describe access: %w", err)
		}

		if len(grants) == 0 {
			fmt.Printf("Client %s holds no grants\n", clientID)
			return nil
		}

		fmt.Printf("%-24s %s\n", "LABEL", "PERMISSIONS")
		for _, g := range grants {
			fmt.Printf("%-24s %s\n", g.VaultLabel, g.Mask)
		}

		return nil
	},
}
