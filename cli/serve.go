package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/moyoez/moneylens-go/api"
	"github.com/moyoez/moneylens-go/notify"
	"github.com/moyoez/moneylens-go/orchestrator"
	"github.com/moyoez/moneylens-go/tool"
	"github.com/moyoez/moneylens-go/types"
	"github.com/moyoez/moneylens-go/ui"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local control API for a browser UI",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (default from config, 8787)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort > 0 {
		appCfg.ListenPort = servePort
	}
	orch, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer orch.Close()

	hub := notify.New()
	notify.SetWSEnabled(appCfg.NotifyWS)
	orch.Subscribe(hub)
	orch.Subscribe(notify.Logger{})

	ctx := cmd.Context()
	if appCfg.Protocol == types.ProtocolMultiStep {
		if report, err := orch.Reload(ctx, nil); err != nil {
			tool.DefaultLogger.Warnf("[Server] initial reload failed: %v", err)
		} else {
			tool.DefaultLogger.Infof("[Server] %d existing results loaded", report.Loaded)
		}
	}

	server := api.NewServer(appCfg.ListenPort, orch, hub)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()
	ui.Success("Dashboard API at %s", server.DashboardURL())

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("API server startup failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	tool.DefaultLogger.Info("[Server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to shut down API server: %w", err)
	}
	return nil
}

var _ orchestrator.Notifier = (*notify.Hub)(nil)
