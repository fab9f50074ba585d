package access

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campushq/vaultd/cmd/cmdutil"
	"github.com/campushq/vaultd/internal/config"
	accesssvc "github.com/campushq/vaultd/internal/services/access"
)

var revokeCmd = &cobra.Command{
	Use:   "revoke [client-id] [label]",
	Short: "Revoke vault permissions from a client",
	Long:  `Revokes the named permissions, or every permission when none are given.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, label := args[0], args[1]

		perm := accesssvc.None
		if len(permissionsInput) > 0 {
			p, err := accesssvc.Parse(permissionsInput)
			if err != nil {
				return err
			}
			perm = p
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		bundle, err := cmdutil.NewServiceBundle(cfg)
		if err != nil {
			return err
		}
		defer bundle.Close()

		mask, err := bundle.Access.Revoke(context.Background(), clientID, label, perm)
		if err != nil {
			return fmt.Errorf("failed to revoke access: %w", err)
		}

		fmt.Printf("Revoked access on %q for %s (mask now %s)\n", label, clientID, mask)
		return nil
	},
}
