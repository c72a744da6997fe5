package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/moyoez/moneylens-go/types"
	"github.com/moyoez/moneylens-go/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List processed results stored by the API",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	orch, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer orch.Close()

	if _, err := loadResults(cmd.Context(), orch); err != nil {
		return err
	}
	results := orch.Store().Results()
	if flags.JSONOutput {
		if results == nil {
			results = []types.ProcessingResult{}
		}
		return printJSON(results)
	}
	if len(results) == 0 {
		ui.Info("No results yet. Upload a statement with `moneylens upload <file.pdf>`.")
		return nil
	}
	for i, r := range results {
		if i > 0 {
			os.Stdout.WriteString("\n")
		}
		ui.PrintResult(os.Stdout, r, false)
	}
	return nil
}
