package access

import "github.com/spf13/cobra"

var (
	permissionsInput []string
)

// AccessCmd is the parent command for access management operations
var AccessCmd = &cobra.Command{
	Use:   "access",
	Short: "Manage vault access grants",
	Long:  `Commands for granting, revoking, and inspecting vault permissions directly from the server.`,
}

func init() {
	AccessCmd.AddCommand(grantCmd)
	grantCmd.Flags().StringSliceVar(&permissionsInput, "permission", []string{},
		"Permission(s) to grant (READ, CREATE, UPDATE, DELETE, ALL)")
	AccessCmd.AddCommand(revokeCmd)
	revokeCmd.Flags().StringSliceVar(&permissionsInput, "permission", []string{},
		"Permission(s) to revoke (default: all)")
	AccessCmd.AddCommand(showCmd)
}
