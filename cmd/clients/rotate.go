package clients

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campushq/vaultd/cmd/cmdutil"
	"github.com/campushq/vaultd/internal/config"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate [client-id]",
	Short: "Rotate a vault client's secret",
	Long:  `Generates a new secret for the client. The previous secret stops working immediately.`,
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

		secret, err := bundle.Identity.Rotate(context.Background(), id)
		if err != nil {
			return fmt.Errorf("failed to rotate client secret: %w", err)
		}

		fmt.Println("Client secret rotated successfully!")
		fmt.Println("----------------------------------------")
		fmt.Printf("Client ID: %s\n", id)
		fmt.Printf("Client Secret: %s\n", secret)
		fmt.Println("----------------------------------------")
		fmt.Println("Save the client secret securely. It will not be shown again.")

		return nil
	},
}
