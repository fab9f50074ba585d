package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campushq/vaultd/cmd/cmdutil"
	"github.com/campushq/vaultd/internal/services/access"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Seed the bootstrap vault and create a root client",
	Long: `Seeds the bootstrap vault with a session signing key (unless one exists)
and creates a root client holding the full permission set on that vault.
The root client's secret is printed once; all further administration goes
through it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := cmdutil.NewServiceBundle(cfg)
		if err != nil {
			return err
		}
		defer bundle.Close()

		ctx := context.Background()
		label := cfg.BootstrapLabel

		exists, err := bundle.Secrets.Exists(ctx, label, sessionSigningKey)
		if err != nil {
			return fmt.Errorf("check signing key: %w", err)
		}
		if exists {
			fmt.Printf("Signing key already present in vault %q, leaving it untouched\n", label)
		} else {
			keyBytes := make([]byte, 32)
			if _, err := rand.Read(keyBytes); err != nil {
				return fmt.Errorf("generate signing key: %w", err)
			}
			if err := bundle.Secrets.Set(ctx, label, sessionSigningKey, []byte(hex.EncodeToString(keyBytes))); err != nil {
				return fmt.Errorf("store signing key: %w", err)
			}
			fmt.Printf("Seeded %q into vault %q\n", sessionSigningKey, label)
		}

		client, secret, err := bundle.Identity.Create(ctx, "root", "bootstrap administrative client")
		if err != nil {
			return fmt.Errorf("create root client: %w", err)
		}
		if _, err := bundle.Access.Grant(ctx, client.ID, label, access.All); err != nil {
			return fmt.Errorf("grant root client access: %w", err)
		}

		fmt.Println("Root client created successfully!")
		fmt.Println("----------------------------------------")
		fmt.Printf("Client ID: %s\n", client.ID)
		fmt.Printf("Client Secret: %s\n", secret)
		fmt.Println("----------------------------------------")
		fmt.Println("Save the client secret securely. It will not be shown again.")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
}
