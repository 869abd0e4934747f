package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/apmconsole/cmd/apm/handlers"
	"github.com/imamik/apmconsole/internal/config"
)

// Console returns the command for the interactive provisioning session.
//
// Optional flags:
//
//	--config, -c: Path to settings file (default: settings.yml)
//	--report, -r: Write an XLSX shift report on exit
//	--plain: Line-based prompts without colors
//	--verbose, -v: Debug logging
//	--log-file: Write a JSON journal to this file
func Console() *cobra.Command {
	var opts handlers.ConsoleOptions

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Start the provisioning console",
		Long: `Log in to the product database and provision devices one by one.

After login the console asks for the order number, the decimal number and the
order year, then offers the action menu:

  1. Create and write factory number
  2. Retry writing the last factory number
  3. Change order number
  4. Change order year
  5. Change decimal number
  6. Read factory number from device
  7. Change operator
  8. Show parameters
  9. Exit

A number issued by the database stays pending until it has been written and
read back from the device. While a number is pending, create refuses and
retry writes the same number again.

Examples:
  # Start with settings.yml from the working directory
  apm console

  # Scripted session with a shift report
  apm console --plain --report shift.xlsx < answers.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Console(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultPath, "Path to settings file")
	cmd.Flags().StringVarP(&opts.ReportPath, "report", "r", "", "Write an XLSX shift report to this path on exit")
	cmd.Flags().BoolVar(&opts.Plain, "plain", false, "Use line-based prompts without colors")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.LogFile, "log-file", "", "Write a JSON journal to this file")

	return cmd
}
