package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/moyoez/moneylens-go/tool"
	"github.com/moyoez/moneylens-go/types"
)

// ProgressFunc is told how many result fetches have settled. It may be called from several
// goroutines at once.
type ProgressFunc func(done, total int)

// ReloadReport describes a finished reload.
type ReloadReport struct {
	Listed int                  `json:"listed"`
	Loaded int                  `json:"loaded"`
	Failed []*PartialFetchError `json:"-"`
}

// FailedIDs lists the files that were dropped because their result could not be fetched.
func (r *ReloadReport) FailedIDs() []string {
	ids := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		ids = append(ids, f.FileID)
	}
	return ids
}

// Reload rebuilds the store from the API: the file listing first, then every result fetched
// concurrently. A failed fetch drops only that file. The store is swapped once every fetch has
// settled, in listing order, and the selection is reconciled. If the listing itself fails the
// store is left as it was.
func (o *Orchestrator) Reload(ctx context.Context, progress ProgressFunc) (*ReloadReport, error) {
	if o.opts.Protocol != types.ProtocolMultiStep {
		return nil, ErrUnsupported
	}

	listCtx, cancel := o.callContext(ctx)
	listing, err := o.remote.ListFiles(listCtx)
	cancel()
	if err != nil {
		tool.DefaultLogger.Errorf("[Reload] failed to list files: %v", err)
		o.errs.Set(UserMessage(err, MsgReloadFailed))
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	files := make([]types.FileSummary, 0, len(listing.Files))
	for _, f := range listing.Files {
		if f.FileID == "" {
			tool.DefaultLogger.Warnf("[Reload] skipping listing entry without file_id")
			continue
		}
		files = append(files, f)
	}
	total := len(files)
	if progress != nil {
		progress(0, total)
	}

	fetched := make([]*types.ProcessingResult, total)
	failures := make([]*PartialFetchError, total)
	var done atomic.Int64

	var g errgroup.Group
	g.SetLimit(o.opts.ReloadConcurrency)
	for i, f := range files {
		g.Go(func() error {
			defer func() {
				if progress != nil {
					progress(int(done.Add(1)), total)
				}
			}()
			if o.limiter != nil {
				if err := o.limiter.Wait(ctx); err != nil {
					failures[i] = &PartialFetchError{FileID: f.FileID, Err: err}
					return nil
				}
			}
			fetchCtx, cancel := o.callContext(ctx)
			defer cancel()
			r, err := o.remote.GetResult(fetchCtx, f.FileID)
			if err != nil {
				failures[i] = &PartialFetchError{FileID: f.FileID, Err: err}
				return nil
			}
			if r.FileName == "" {
				r.FileName = f.FileName
			}
			if r.UploadTime == "" {
				r.UploadTime = f.UploadTime
			}
			fetched[i] = r
			return nil
		})
	}
	// fetches never return an error; a failure only drops its own entry
	_ = g.Wait()

	report := &ReloadReport{Listed: total}
	loaded := make([]types.ProcessingResult, 0, total)
	for i := range files {
		if failures[i] != nil {
			tool.DefaultLogger.Warnf("[Reload] %v", failures[i])
			report.Failed = append(report.Failed, failures[i])
			continue
		}
		loaded = append(loaded, *fetched[i])
	}
	report.Loaded = len(loaded)

	o.store.replace(loaded)
	o.selection.reconcile()
	o.publish(&types.Notification{
		Type: types.NotifyTypeResultsReloaded,
		Data: map[string]any{"loaded": report.Loaded, "failed": report.FailedIDs()},
	})
	tool.DefaultLogger.Infof("[Reload] loaded %d of %d results", report.Loaded, report.Listed)
	return report, nil
}

// ConfirmFunc asks the user to confirm deleting fileID. It may block.
type ConfirmFunc func(fileID string) bool

// Remove deletes a result after confirm agrees. In the multi-step protocol the API copy is
// deleted first and a failure there leaves the store and selection unchanged. In the
// single-call protocol there is nothing upstream, so the removal is local.
func (o *Orchestrator) Remove(ctx context.Context, fileID string, confirm ConfirmFunc) error {
	if !o.store.Has(fileID) {
		return ErrUnknownResult
	}
	if confirm == nil || !confirm(fileID) {
		return ErrNotConfirmed
	}
	if o.opts.Protocol == types.ProtocolMultiStep {
		deleteCtx, cancel := o.callContext(ctx)
		err := o.remote.DeleteFile(deleteCtx, fileID)
		cancel()
		if err != nil {
			tool.DefaultLogger.Errorf("[Delete] %s: %v", fileID, err)
			o.errs.Set(UserMessage(err, MsgDeleteFailed))
			return &DeleteError{FileID: fileID, Err: err}
		}
	}
	o.store.remove(fileID)
	o.selection.drop(fileID)
	o.status.ReportTerminal(StatusDeleted, o.opts.DeleteStatusReset)
	o.publish(&types.Notification{
		Type: types.NotifyTypeResultRemoved,
		Data: map[string]any{"fileId": fileID},
	})
	return nil
}
