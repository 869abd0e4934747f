package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/apmconsole/cmd/apm/handlers"
)

// FakeBackend returns the command serving an in-memory product database.
func FakeBackend() *cobra.Command {
	var addr, seedPath string

	cmd := &cobra.Command{
		Use:   "fake-backend",
		Short: "Serve an in-memory product database for bench runs",
		Long: `Serve the product database API from memory so the console can be tried
without the real backend. Without --seed a built-in seed is used: API key
"bench-key", user operator/operator and a handful of orders.

Examples:
  apm fake-backend --addr :8000
  APM_BACKEND_BASE=http://localhost:8000 APM_API_KEY=bench-key apm console`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.FakeBackend(cmd.Context(), addr, seedPath)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8000", "Listen address")
	cmd.Flags().StringVar(&seedPath, "seed", "", "YAML file with users and orders")

	return cmd
}
