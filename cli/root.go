// Package cli holds the moneylens commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/moyoez/moneylens-go/orchestrator"
	"github.com/moyoez/moneylens-go/tool"
	"github.com/moyoez/moneylens-go/transfer"
	"github.com/moyoez/moneylens-go/types"
	"github.com/moyoez/moneylens-go/ui"
	"github.com/moyoez/moneylens-go/validate"
)

var (
	flags   types.Config
	noColor bool
	appCfg  types.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "moneylens",
	Short: "Upload bank statements to MoneyLens and export what it finds",
	Long: "moneylens drives PDF statements through the MoneyLens API: upload, process, " +
		"browse the extracted totals and transactions, and export them as CSV.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.UseConfigPath, "config", "", "Path to config.yaml (default ./config.yaml or $MONEYLENS_CONFIG)")
	pf.StringVar(&flags.Log, "log", "prod", "Log mode: dev, prod or none")
	pf.StringVar(&flags.UseAPIBase, "api-base", "", "MoneyLens API base URL")
	pf.StringVar(&flags.UseProtocol, "protocol", "", "API protocol: multi-step or single-call")
	pf.StringVar(&flags.UseDownloadDir, "download-dir", "", "Directory exports are saved to")
	pf.BoolVar(&flags.JSONOutput, "json", false, "Print JSON instead of formatted output")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// Execute runs the root command until it returns or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		ui.Error("%s", describeError(err))
	}
	return err
}

func setup(cmd *cobra.Command, args []string) error {
	tool.LoadEnv()
	tool.InitLogger()
	tool.SetLogMode(flags.Log)
	ui.InitUI(noColor || flags.JSONOutput)

	cfg, err := tool.LoadConfig(flags.UseConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := tool.ApplyFlagOverrides(&cfg, flags); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	tool.CurrentConfig = cfg
	appCfg = cfg
	tool.InitHTTPClient(tool.RequestTimeout(&cfg))
	return nil
}

func newOrchestrator() (*orchestrator.Orchestrator, *transfer.Client, error) {
	client, err := transfer.NewClient(appCfg.APIBase, tool.GetHttpClient())
	if err != nil {
		return nil, nil, err
	}
	orch, err := orchestrator.New(client, client, orchestrator.OptionsFromConfig(appCfg))
	if err != nil {
		return nil, nil, err
	}
	return orch, client, nil
}

// loadResults fills the store from the API, drawing a progress bar unless --json is set.
func loadResults(ctx context.Context, orch *orchestrator.Orchestrator) (*orchestrator.ReloadReport, error) {
	var progress orchestrator.ProgressFunc
	var bar *ui.ProgressBar
	if !flags.JSONOutput {
		bar = ui.NewProgressBar("Loading results")
		progress = bar.Update
	}
	report, err := orch.Reload(ctx, progress)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return nil, err
	}
	if len(report.Failed) > 0 && !flags.JSONOutput {
		ui.Warning("%d of %d results could not be loaded: %v", len(report.Failed), report.Listed, report.FailedIDs())
	}
	return report, nil
}

func printJSON(v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}

// describeError turns orchestrator errors into the line shown to the user.
func describeError(err error) string {
	var verr *validate.Error
	var perr *orchestrator.PipelineError
	var eerr *orchestrator.ExportError
	var derr *orchestrator.DeleteError
	switch {
	case errors.As(err, &verr):
		return fmt.Sprintf("Validation failed: %v", verr.Messages)
	case errors.Is(err, orchestrator.ErrBusy):
		return "Another file is still being processed"
	case errors.Is(err, orchestrator.ErrEmptySelection):
		return "No results selected for export"
	case errors.Is(err, orchestrator.ErrNoResults):
		return "No results to export"
	case errors.Is(err, orchestrator.ErrUnknownResult):
		return "No such result"
	case errors.Is(err, orchestrator.ErrNotConfirmed):
		return "Cancelled"
	case errors.Is(err, orchestrator.ErrUnsupported):
		return fmt.Sprintf("Not available with the %s protocol", appCfg.Protocol)
	case errors.As(err, &perr):
		return orchestrator.UserMessage(perr, orchestrator.MsgPipelineFailed)
	case errors.As(err, &derr):
		return orchestrator.UserMessage(derr, orchestrator.MsgDeleteFailed)
	case errors.As(err, &eerr):
		switch eerr.Kind {
		case orchestrator.ExportKindSummary:
			return orchestrator.UserMessage(eerr, orchestrator.MsgSummaryFailed)
		case orchestrator.ExportKindTransactions:
			return orchestrator.UserMessage(eerr, orchestrator.MsgTransactionsFailed)
		default:
			return orchestrator.UserMessage(eerr, orchestrator.MsgExportFailed)
		}
	}
	return err.Error()
}
