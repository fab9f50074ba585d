package clients

import "github.com/spf13/cobra"

var (
	descriptionInput string
)

// ClientsCmd is the parent command for client operations
var ClientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage vault clients",
	Long:  `Commands for managing vault clients directly from the server.`,
}

func init() {
	ClientsCmd.AddCommand(listCmd)
	ClientsCmd.AddCommand(createCmd)
	createCmd.Flags().StringVar(&descriptionInput, "description", "", "Description of the client")
	ClientsCmd.AddCommand(deleteCmd)
	ClientsCmd.AddCommand(rotateCmd)
}
