package cli

import (
	"github.com/spf13/cobra"

	"github.com/moyoez/moneylens-go/ui"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the MoneyLens API is reachable",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	orch, client, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer orch.Close()

	health, err := orch.Health(cmd.Context())
	if err != nil {
		return err
	}
	if flags.JSONOutput {
		return printJSON(health)
	}
	ui.Success("%s is %s", client.BaseURL(), health.Status)
	if health.Version != "" {
		ui.Info("API version %s", health.Version)
	}
	return nil
}
