package orchestrator

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/moneylens-go/transfer"
	"github.com/moyoez/moneylens-go/types"
)

func yes(string) bool { return true }

func TestResultStoreInsertReplacesDuplicate(t *testing.T) {
	s := newResultStore()
	s.Insert(sampleResult("a"))
	s.Insert(sampleResult("b"))
	updated := sampleResult("a")
	updated.FileName = "renamed.pdf"
	s.Insert(updated)

	assert.Equal(t, []string{"a", "b"}, s.Keys())
	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "renamed.pdf", got.FileName)

	// results are copies
	got.Totals[0].Label = "changed"
	again, _ := s.Get("a")
	assert.Equal(t, "Total", again.Totals[0].Label)
}

func TestReloadIsolatesFailedFetch(t *testing.T) {
	remote := newFakeRemote()
	remote.seed("f3", "f2", "f1") // listing: f1, f2, f3
	remote.getErr["f2"] = &transfer.RemoteError{Op: "result", StatusCode: http.StatusInternalServerError}
	o, _, _ := newTestOrchestrator(t, remote)

	var mu sync.Mutex
	var last, total int
	report, err := o.Reload(context.Background(), func(done, n int) {
		mu.Lock()
		defer mu.Unlock()
		if done > last {
			last = done
		}
		total = n
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"f1", "f3"}, o.Store().Keys())
	assert.Equal(t, 3, report.Listed)
	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, []string{"f2"}, report.FailedIDs())
	assert.Equal(t, 3, last)
	assert.Equal(t, 3, total)

	_, hasErr := o.Errors().Current()
	assert.False(t, hasErr)
}

func TestReloadListingFailureKeepsStore(t *testing.T) {
	remote := newFakeRemote()
	remote.seed("f1")
	o, _, _ := newTestOrchestrator(t, remote)
	_, err := o.Reload(context.Background(), nil)
	require.NoError(t, err)

	remote.listErr = errors.New("connection reset")
	_, err = o.Reload(context.Background(), nil)
	require.Error(t, err)

	assert.Equal(t, []string{"f1"}, o.Store().Keys())
	msg, ok := o.Errors().Current()
	require.True(t, ok)
	assert.Equal(t, MsgReloadFailed, msg)
}

func TestReloadWithRateLimit(t *testing.T) {
	remote := newFakeRemote()
	remote.seed("a", "b", "c", "d")
	opts := testOptions(&memDeliverer{})
	opts.ReloadConcurrency = 2
	opts.ReloadRatePerSecond = 1000
	o, err := New(remote, nil, opts)
	require.NoError(t, err)

	report, err := o.Reload(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Loaded)
	assert.Equal(t, []string{"d", "c", "b", "a"}, o.Store().Keys())
}

func TestRemoveThenReload(t *testing.T) {
	remote := newFakeRemote()
	remote.seed("f2", "f1")
	o, _, rec := newTestOrchestrator(t, remote)
	_, err := o.Reload(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, o.Remove(context.Background(), "f1", yes))
	assert.Equal(t, []string{"f2"}, o.Store().Keys())
	assert.Equal(t, StatusDeleted, o.Status().Current())
	require.Eventually(t, func() bool { return o.Status().Current() == StatusIdle }, time.Second, 5*time.Millisecond)

	_, err = o.Reload(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"f2"}, o.Store().Keys())

	removed := rec.find(types.NotifyTypeResultRemoved)
	require.NotNil(t, removed)
	assert.Equal(t, "f1", removed.Data["fileId"])
}

func TestRemoveStillUpstreamComesBack(t *testing.T) {
	remote := newFakeRemote()
	remote.seed("f1")
	remote.keepOnDel = true
	o, _, _ := newTestOrchestrator(t, remote)
	_, err := o.Reload(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, o.Remove(context.Background(), "f1", yes))
	assert.Zero(t, o.Store().Len())

	_, err = o.Reload(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"f1"}, o.Store().Keys())
}

func TestRemoveFailureLeavesStore(t *testing.T) {
	remote := newFakeRemote()
	remote.seed("f1")
	o, _, _ := newTestOrchestrator(t, remote)
	_, err := o.Reload(context.Background(), nil)
	require.NoError(t, err)
	_, err = o.Selection().Toggle("f1")
	require.NoError(t, err)

	remote.deleteErr = errors.New("timeout")
	err = o.Remove(context.Background(), "f1", yes)
	var derr *DeleteError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "f1", derr.FileID)

	assert.Equal(t, []string{"f1"}, o.Store().Keys())
	assert.True(t, o.Selection().IsSelected("f1"))
	msg, _ := o.Errors().Current()
	assert.Equal(t, MsgDeleteFailed, msg)
}

func TestRemoveNeedsConfirmation(t *testing.T) {
	remote := newFakeRemote()
	remote.seed("f1")
	o, _, _ := newTestOrchestrator(t, remote)
	_, err := o.Reload(context.Background(), nil)
	require.NoError(t, err)

	var asked string
	err = o.Remove(context.Background(), "f1", func(id string) bool { asked = id; return false })
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Equal(t, "f1", asked)
	assert.ErrorIs(t, o.Remove(context.Background(), "f1", nil), ErrNotConfirmed)
	assert.ErrorIs(t, o.Remove(context.Background(), "nope", yes), ErrUnknownResult)

	assert.Equal(t, 1, o.Store().Len())
	for _, c := range remote.Calls() {
		assert.NotContains(t, c, "delete")
	}
}

func TestSelectionFollowsStore(t *testing.T) {
	remote := newFakeRemote()
	remote.seed("f3", "f2", "f1")
	o, _, _ := newTestOrchestrator(t, remote)
	_, err := o.Reload(context.Background(), nil)
	require.NoError(t, err)
	sel := o.Selection()

	assert.Equal(t, 3, sel.ToggleAll())
	require.NoError(t, o.Remove(context.Background(), "f2", yes))
	assert.Equal(t, []string{"f1", "f3"}, sel.IDs())
	for _, id := range sel.IDs() {
		assert.True(t, o.Store().Has(id))
	}

	// f3 disappeared upstream
	remote.mu.Lock()
	delete(remote.upstream, "f3")
	remote.listing = deleteID(remote.listing, "f3")
	remote.mu.Unlock()
	_, err = o.Reload(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"f1"}, sel.IDs())

	// everything selected again, so ToggleAll clears
	assert.Equal(t, 0, sel.ToggleAll())
	assert.Equal(t, 1, sel.ToggleAll())
}

func TestSelectionToggle(t *testing.T) {
	remote := newFakeRemote()
	remote.seed("b", "a")
	o, _, _ := newTestOrchestrator(t, remote)
	_, err := o.Reload(context.Background(), nil)
	require.NoError(t, err)
	sel := o.Selection()

	on, err := sel.Toggle("b")
	require.NoError(t, err)
	assert.True(t, on)
	_, err = sel.Toggle("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, sel.IDs())

	on, err = sel.Toggle("b")
	require.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, 1, sel.Size())

	_, err = sel.Toggle("ghost")
	assert.ErrorIs(t, err, ErrUnknownResult)

	sel.Clear()
	assert.Zero(t, sel.Size())
}

func TestExportSelectedEmptyMakesNoCall(t *testing.T) {
	remote := newFakeRemote()
	o, d, _ := newTestOrchestrator(t, remote)

	_, err := o.ExportSelected(context.Background(), types.ExportOptions{})
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Empty(t, remote.Calls())
	assert.Empty(t, d.files)
}

func TestExportSelected(t *testing.T) {
	remote := newFakeRemote()
	remote.seed("f3", "f2", "f1")
	o, d, _ := newTestOrchestrator(t, remote)
	_, err := o.Reload(context.Background(), nil)
	require.NoError(t, err)
	_, _ = o.Selection().Toggle("f3")
	_, _ = o.Selection().Toggle("f1")

	artifact, err := o.ExportSelected(context.Background(), types.ExportOptions{IncludeMetadata: true})
	require.NoError(t, err)
	assert.Equal(t, "moneylens_export_2024-03-06.csv", artifact.FileName)
	assert.Equal(t, types.ExportRequest{FileIDs: []string{"f1", "f3"}, IncludeMetadata: true}, remote.lastExport)
	assert.Contains(t, string(d.files[artifact.FileName]), "f3,f3.pdf,1")
}

func TestExportFailureLeavesState(t *testing.T) {
	remote := newFakeRemote()
	remote.seed("f1")
	o, d, _ := newTestOrchestrator(t, remote)
	_, err := o.Reload(context.Background(), nil)
	require.NoError(t, err)
	_, _ = o.Selection().Toggle("f1")

	remote.exportErr = &transfer.RemoteError{Op: "export", StatusCode: http.StatusNotFound, Detail: "No valid files found for export"}
	_, err = o.ExportSelected(context.Background(), types.ExportOptions{})
	var eerr *ExportError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, ExportKindSelected, eerr.Kind)
	msg, _ := o.Errors().Current()
	assert.Equal(t, "No valid files found for export", msg)

	remote.exportErr = errors.New("boom")
	_, err = o.ExportSummary(context.Background())
	require.Error(t, err)
	msg, _ = o.Errors().Current()
	assert.Equal(t, MsgSummaryFailed, msg)

	remote.exportErr = nil
	d.err = errors.New("disk full")
	_, err = o.ExportSummary(context.Background())
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, ExportKindSummary, eerr.Kind)

	assert.Equal(t, []string{"f1"}, o.Store().Keys())
	assert.Equal(t, []string{"f1"}, o.Selection().IDs())
}

func TestExportSummaryCoversEveryResult(t *testing.T) {
	remote := newFakeRemote()
	o, d, _ := newTestOrchestrator(t, remote)
	path := writePDF(t, 2048)
	for range 3 {
		_, err := o.Submit(context.Background(), path, types.ParseModeAuto)
		require.NoError(t, err)
	}
	_, _ = o.Selection().Toggle("up-2")

	artifact, err := o.ExportSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "moneylens_summary_2024-03-06.csv", artifact.FileName)

	records, err := csv.NewReader(bytes.NewReader(d.files[artifact.FileName])).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	var ids []string
	for _, row := range records[1:] {
		ids = append(ids, row[0])
	}
	keys := o.Store().Keys()
	sort.Strings(ids)
	sort.Strings(keys)
	assert.Equal(t, keys, ids)
	assert.Equal(t, 1, o.Selection().Size())
}

func TestExportTransactions(t *testing.T) {
	first := []types.Transaction{
		{Date: "2024-01-02", Description: "Salary", Amount: decimal.RequireFromString("100"), Type: "credit"},
	}
	second := []types.Transaction{
		{Date: "2024-02-03", Description: "Rent", Amount: decimal.RequireFromString("-900"), Type: "debit"},
		{Date: "2024-02-01", Description: "Refund", Amount: decimal.RequireFromString("12.5"), Type: "credit"},
		{Date: "2024-02-05", Description: "Coffee", Amount: decimal.RequireFromString("-3.2"), Type: "debit"},
	}
	session := &fakeSession{}
	d := &memDeliverer{}
	opts := testOptions(d)
	opts.Protocol = types.ProtocolSingleCall
	o, err := New(nil, session, opts)
	require.NoError(t, err)
	t.Cleanup(o.Close)

	_, err = o.ExportTransactions(context.Background())
	assert.ErrorIs(t, err, ErrNoResults)

	session.statement = types.StatementResult{Transactions: first}
	_, err = o.Submit(context.Background(), writePDF(t, 1024), types.ParseModeAuto)
	require.NoError(t, err)
	session.statement = types.StatementResult{Transactions: second}
	_, err = o.Submit(context.Background(), writePDF(t, 1024), types.ParseModeAuto)
	require.NoError(t, err)

	artifact, err := o.ExportTransactions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "moneylens_transactions.csv", artifact.FileName)
	assert.Contains(t, d.files, "moneylens_transactions.csv")
	require.Len(t, session.exported, 1)
	assert.Equal(t, second, session.exported[0])
}

func TestExportTransactionsMultiStepUnsupported(t *testing.T) {
	remote := newFakeRemote()
	session := &fakeSession{}
	o, err := New(remote, session, testOptions(&memDeliverer{}))
	require.NoError(t, err)
	t.Cleanup(o.Close)

	_, err = o.Submit(context.Background(), writePDF(t, 1024), types.ParseModeAuto)
	require.NoError(t, err)
	_, err = o.ExportTransactions(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Empty(t, session.exported)
	_, pending := o.Errors().Current()
	assert.False(t, pending)
}

func TestNewRequiresMatchingClient(t *testing.T) {
	_, err := New(nil, nil, DefaultOptions())
	require.Error(t, err)

	opts := DefaultOptions()
	opts.Protocol = types.ProtocolSingleCall
	_, err = New(newFakeRemote(), nil, opts)
	require.Error(t, err)

	opts.Protocol = "carrier-pigeon"
	_, err = New(newFakeRemote(), &fakeSession{}, opts)
	require.Error(t, err)
}
