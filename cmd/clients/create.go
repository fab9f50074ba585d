package clients

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campushq/vaultd/cmd/cmdutil"
	"github.com/campushq/vaultd/internal/config"
)

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new vault client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		bundle, err := cmdutil.NewServiceBundle(cfg)
		if err != nil {
			return err
		}
		defer bundle.Close()

		client, secret, err := bundle.Identity.Create(context.Background(), name, descriptionInput)
		if err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}

		fmt.Println("Client created successfully!")
		fmt.Println("----------------------------------------")
		fmt.Printf("Client ID: %s\n", client.ID)
		fmt.Printf("Client Secret: %s\n", secret)
		fmt.Println("----------------------------------------")
		fmt.Println("Save the client secret securely. It will not be shown again.")

		return nil
	},
}
