// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the apm CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "apm",
		Short:         "Issue and write sensor factory numbers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Core commands
	cmd.AddCommand(Console())
	cmd.AddCommand(Read())
	cmd.AddCommand(Codec())

	// Bench and utility commands
	cmd.AddCommand(FakeBackend())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
