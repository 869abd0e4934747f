package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/apmconsole/cmd/apm/handlers"
)

// Codec returns the command group converting factory numbers to and from
// register words.
func Codec() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codec",
		Short: "Convert factory numbers to and from register words",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "encode <factory-number>",
		Short: "Print the register words for a factory number",
		Example: `  apm codec encode 2210012345
  apm codec encode 221012345`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Encode(cmd.OutOrStdout(), args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "decode <date-word> <serial-word>",
		Short: "Print the factory number stored in register words",
		Long: `Decode register words as read from the device. Words may be decimal or
prefixed with 0x for hexadecimal.`,
		Example: `  apm codec decode 0x16A0 12345`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Decode(cmd.OutOrStdout(), args[0], args[1])
		},
	})

	return cmd
}
