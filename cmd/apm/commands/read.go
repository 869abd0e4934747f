package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/apmconsole/cmd/apm/handlers"
	"github.com/imamik/apmconsole/internal/config"
)

// Read returns the command that prints the factory number stored on the
// connected device.
func Read() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read the factory number from the device",
		Long: `Read the factory number register of the connected device and print it
without logging in to the product database.

Examples:
  apm read
  apm read --config bench.yml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Read(cmd.Context(), cmd.OutOrStdout(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to settings file")

	return cmd
}
