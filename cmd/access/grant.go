package access

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campushq/vaultd/cmd/cmdutil"
	"github.com/campushq/vaultd/internal/config"
	accesssvc "github.com/campushq/vaultd/internal/services/access"
)

var grantCmd = &cobra.Command{
	Use:   "grant [client-id] [label]",
	Short: "Grant vault permissions to a client",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, label := args[0], args[1]

		if len(permissionsInput) == 0 {
			return fmt.Errorf("at least one permission must be specified using --permission")
		}
		perm, err := accesssvc.Parse(permissionsInput)
		if err != nil {
			return err
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

		ctx := context.Background()
		if _, err := bundle.Identity.Get(ctx, clientID); err != nil {
			return fmt.Errorf("look up client: %w", err)
		}

		mask, err := bundle.Access.Grant(ctx, clientID, label, perm)
		if err != nil {
			return fmt.Errorf("failed to grant access: %w", err)
		}

		fmt.Printf("Granted %s on %q to %s (mask now %s)\n", perm, label, clientID, mask)
		return nil
	},
}
