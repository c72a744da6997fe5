package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moyoez/moneylens-go/ui"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:     "delete <file-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a stored result",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	orch, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer orch.Close()

	if _, err := loadResults(cmd.Context(), orch); err != nil {
		return err
	}
	fileID := args[0]
	confirm := func(id string) bool {
		if deleteYes {
			return true
		}
		name := id
		if r, ok := orch.Store().Get(id); ok && r.FileName != "" {
			name = fmt.Sprintf("%s (%s)", r.FileName, id)
		}
		ok, err := ui.Confirm(fmt.Sprintf("Are you sure you want to delete %s?", name), false)
		return err == nil && ok
	}
	if err := orch.Remove(cmd.Context(), fileID, confirm); err != nil {
		return err
	}
	if flags.JSONOutput {
		return printJSON(map[string]any{"deleted": fileID})
	}
	ui.Success("Deleted %s", fileID)
	return nil
}
