package clients

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campushq/vaultd/cmd/cmdutil"
	"github.com/campushq/vaultd/internal/config"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List vault clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		bundle, err := cmdutil.NewServiceBundle(cfg)
		if err != nil {
			return err
		}
		defer bundle.Close()

		list, err := bundle.Identity.List(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list clients: %w", err)
		}

		if len(list) == 0 {
			fmt.Println("No clients found")
			return nil
		}

		fmt.Printf("%-38s %-24s %-20s %s\n", "ID", "NAME", "CREATED", "DESCRIPTION")
		for _, c := range list {
			fmt.Printf("%-38s %-24s %-20s %s\n",
				c.ID, c.Name, c.CreatedAt.Format("2006-01-02 15:04:05"), c.Description)
		}

		return nil
	},
}
