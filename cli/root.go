package cli

import (
	"github.com/spf13/cobra"
)

// RootCmd builds the howzat command tree.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "howzat",
		Short: "Howzat cricket query router",
		Long:  "Howzat routes natural-language cricket questions to the right data tools and fuses their answers.",
	}
	root.PersistentFlags().String("config", "", "Path to the YAML config file")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")

	root.AddCommand(ServeCmd())
	return root
}
