package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moyoez/moneylens-go/orchestrator"
	"github.com/moyoez/moneylens-go/types"
	"github.com/moyoez/moneylens-go/ui"
)

var (
	exportAll             bool
	exportIncludeText     bool
	exportIncludeMetadata bool
	transactionsMode      string
)

var exportCmd = &cobra.Command{
	Use:   "export [file-id...]",
	Short: "Export the given results as CSV",
	Long:  "Export the given results, or every stored result with --all, as one CSV file in the download directory.",
	RunE:  runExport,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Export a one-row-per-file summary CSV",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

var transactionsCmd = &cobra.Command{
	Use:   "transactions <file.pdf>",
	Short: "Parse a statement and export its transactions as CSV (single-call protocol)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTransactions,
}

func init() {
	exportCmd.Flags().BoolVarP(&exportAll, "all", "a", false, "Export every stored result")
	exportCmd.Flags().BoolVar(&exportIncludeText, "include-text", false, "Include the extracted text column")
	exportCmd.Flags().BoolVar(&exportIncludeMetadata, "include-metadata", false, "Include the metadata column")
	transactionsCmd.Flags().StringVarP(&transactionsMode, "mode", "m", string(types.ParseModeAuto), "Extraction mode: auto, text or ocr")
	rootCmd.AddCommand(exportCmd, summaryCmd, transactionsCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if !exportAll && len(args) == 0 {
		return fmt.Errorf("give at least one file id, or --all")
	}
	orch, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer orch.Close()

	if _, err := loadResults(cmd.Context(), orch); err != nil {
		return err
	}
	if exportAll {
		orch.Selection().ToggleAll()
	} else {
		for _, id := range args {
			if _, err := orch.Selection().Toggle(id); err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
		}
	}
	artifact, err := orch.ExportSelected(cmd.Context(), types.ExportOptions{
		IncludeText:     exportIncludeText,
		IncludeMetadata: exportIncludeMetadata,
	})
	if err != nil {
		return err
	}
	return reportArtifact(artifact)
}

func runSummary(cmd *cobra.Command, args []string) error {
	orch, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer orch.Close()

	artifact, err := orch.ExportSummary(cmd.Context())
	if err != nil {
		return err
	}
	return reportArtifact(artifact)
}

func runTransactions(cmd *cobra.Command, args []string) error {
	if appCfg.Protocol != types.ProtocolSingleCall {
		return fmt.Errorf("transactions needs --protocol %s: %w", types.ProtocolSingleCall, orchestrator.ErrUnsupported)
	}
	orch, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer orch.Close()

	result, err := submit(cmd, orch, args[0], types.ParseMode(transactionsMode))
	if err != nil {
		return err
	}
	if len(result.Transactions) == 0 && !flags.JSONOutput {
		ui.Warning("No transactions found in %s", result.FileName)
	}
	artifact, err := orch.ExportTransactions(cmd.Context())
	if err != nil {
		return err
	}
	return reportArtifact(artifact)
}

func reportArtifact(a *types.Artifact) error {
	if flags.JSONOutput {
		return printJSON(a)
	}
	ui.PrintArtifact(a)
	return nil
}

