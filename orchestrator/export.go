package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/moyoez/moneylens-go/tool"
	"github.com/moyoez/moneylens-go/types"
)

const TransactionsFileName = "moneylens_transactions.csv"

// ExportFileName is moneylens_export_<date>.csv, dated in UTC.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("moneylens_export_%s.csv", now.UTC().Format(time.DateOnly))
}

func SummaryFileName(now time.Time) string {
	return fmt.Sprintf("moneylens_summary_%s.csv", now.UTC().Format(time.DateOnly))
}

// ExportSelected exports the selected results. An empty selection is refused before any
// request is made.
func (o *Orchestrator) ExportSelected(ctx context.Context, opts types.ExportOptions) (*types.Artifact, error) {
	ids := o.selection.IDs()
	if len(ids) == 0 {
		return nil, ErrEmptySelection
	}
	if o.opts.Protocol != types.ProtocolMultiStep {
		return nil, ErrUnsupported
	}
	callCtx, cancel := o.callContext(ctx)
	defer cancel()
	data, err := o.remote.ExportSelected(callCtx, types.ExportRequest{
		FileIDs:         ids,
		IncludeText:     opts.IncludeText,
		IncludeMetadata: opts.IncludeMetadata,
	})
	if err != nil {
		return nil, o.exportFailed(ExportKindSelected, err, MsgExportFailed)
	}
	return o.deliver(ctx, ExportKindSelected, ExportFileName(o.opts.Now()), data, MsgExportFailed)
}

// ExportSummary exports one row per stored result on the API side, whatever is selected.
func (o *Orchestrator) ExportSummary(ctx context.Context) (*types.Artifact, error) {
	if o.opts.Protocol != types.ProtocolMultiStep {
		return nil, ErrUnsupported
	}
	callCtx, cancel := o.callContext(ctx)
	defer cancel()
	data, err := o.remote.ExportSummary(callCtx)
	if err != nil {
		return nil, o.exportFailed(ExportKindSummary, err, MsgSummaryFailed)
	}
	return o.deliver(ctx, ExportKindSummary, SummaryFileName(o.opts.Now()), data, MsgSummaryFailed)
}

// ExportTransactions renders the transactions of the newest result as CSV. Only the single-call
// protocol has a transactions export; multi-step results carry no transactions.
func (o *Orchestrator) ExportTransactions(ctx context.Context) (*types.Artifact, error) {
	if o.opts.Protocol != types.ProtocolSingleCall || o.session == nil {
		return nil, ErrUnsupported
	}
	latest, ok := o.store.Latest()
	if !ok {
		return nil, ErrNoResults
	}
	callCtx, cancel := o.callContext(ctx)
	defer cancel()
	data, err := o.session.ExportTransactions(callCtx, latest.Transactions)
	if err != nil {
		return nil, o.exportFailed(ExportKindTransactions, err, MsgTransactionsFailed)
	}
	return o.deliver(ctx, ExportKindTransactions, TransactionsFileName, data, MsgTransactionsFailed)
}

func (o *Orchestrator) deliver(ctx context.Context, kind ExportKind, name string, data []byte, fallback string) (*types.Artifact, error) {
	artifact, err := o.opts.Deliverer.Deliver(ctx, name, data)
	if err != nil {
		return nil, o.exportFailed(kind, err, fallback)
	}
	tool.DefaultLogger.Infof("[Export] %s export delivered as %s (%s)", kind, artifact.FileName, tool.FormatFileSize(int64(artifact.Size)))
	o.publish(&types.Notification{
		Type:    types.NotifyTypeExportReady,
		Title:   artifact.FileName,
		Message: artifact.Path,
		Data:    map[string]any{"kind": string(kind), "size": artifact.Size},
	})
	return &artifact, nil
}

func (o *Orchestrator) exportFailed(kind ExportKind, err error, fallback string) error {
	tool.DefaultLogger.Errorf("[Export] %s export failed: %v", kind, err)
	o.errs.Set(UserMessage(err, fallback))
	return &ExportError{Kind: kind, Err: err}
}
