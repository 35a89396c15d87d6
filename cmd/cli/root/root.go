package root

import (
	"github.com/spf13/cobra"
)

// RootCmd is the bookshelf command. Subcommands are attached by main.
var RootCmd = &cobra.Command{
	Use:           "bookshelf",
	Short:         "Bookshelf library catalog CLI",
	Long:          "Command line interface for the bookshelf library catalog API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().String("api", "", "API base URL (default $BOOKSHELF_API_URL or http://localhost:8080)")
}

func GetRoot() *cobra.Command {
	return RootCmd
}
