package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/moyoez/moneylens-go/orchestrator"
	"github.com/moyoez/moneylens-go/types"
	"github.com/moyoez/moneylens-go/ui"
)

var uploadMode string

var uploadCmd = &cobra.Command{
	Use:   "upload <file.pdf>",
	Short: "Upload and process one PDF statement",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadMode, "mode", "m", string(types.ParseModeAuto), "Extraction mode: auto, text or ocr")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	orch, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer orch.Close()

	result, err := submit(cmd, orch, args[0], types.ParseMode(uploadMode))
	if err != nil {
		return err
	}
	if flags.JSONOutput {
		return printJSON(result)
	}
	ui.Success("%s processed", result.FileName)
	ui.PrintResult(os.Stdout, *result, false)
	return nil
}

// submit runs one file through the pipeline with a spinner following the status line.
func submit(cmd *cobra.Command, orch *orchestrator.Orchestrator, path string, mode types.ParseMode) (*types.ProcessingResult, error) {
	if flags.JSONOutput {
		return orch.Submit(cmd.Context(), path, mode)
	}
	sp := ui.NewSpinner(orchestrator.StatusUploading)
	orch.Subscribe(sp)
	sp.Start()
	result, err := orch.Submit(cmd.Context(), path, mode)
	sp.Stop()
	return result, err
}
