package orchestrator

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/moneylens-go/transfer"
	"github.com/moyoez/moneylens-go/types"
)

// fakeRemote is an in-memory MoneyLens API with server-side history.
type fakeRemote struct {
	mu       sync.Mutex
	calls    []string
	nextID   int
	upstream map[string]types.ProcessingResult
	listing  []string // newest first

	uploadErr   error
	processErr  error
	listErr     error
	getErr      map[string]error
	deleteErr   error
	exportErr   error
	keepOnDel   bool
	uploadGate  chan struct{}
	lastExport  types.ExportRequest
	lastMode    types.ParseMode
	lastRequest string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{upstream: map[string]types.ProcessingResult{}, getErr: map[string]error{}}
}

func (f *fakeRemote) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeRemote) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// seed stores results upstream as if they had been processed earlier, oldest first.
func (f *fakeRemote) seed(ids ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		f.upstream[id] = sampleResult(id)
		f.listing = append([]string{id}, f.listing...)
	}
}

func (f *fakeRemote) Upload(ctx context.Context, file *types.LocalFile, mode types.ParseMode) (*types.UploadResponse, error) {
	f.record("upload")
	if f.uploadGate != nil {
		<-f.uploadGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastMode = mode
	f.lastRequest = transfer.RequestIDFrom(ctx)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.nextID++
	return &types.UploadResponse{
		FileID:     fmt.Sprintf("up-%d", f.nextID),
		FileName:   file.FileName,
		Size:       file.Size,
		UploadTime: "2024-03-05T10:00:00",
	}, nil
}

func (f *fakeRemote) Process(_ context.Context, fileID string) (*types.ProcessingResult, error) {
	f.record("process")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.processErr != nil {
		return nil, f.processErr
	}
	r := sampleResult(fileID)
	r.FileName = ""
	f.upstream[fileID] = r
	f.listing = append([]string{fileID}, f.listing...)
	return &r, nil
}

func (f *fakeRemote) GetResult(_ context.Context, fileID string) (*types.ProcessingResult, error) {
	f.record("result " + fileID)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErr[fileID]; err != nil {
		return nil, err
	}
	r, ok := f.upstream[fileID]
	if !ok {
		return nil, fmt.Errorf("result %s not found", fileID)
	}
	return &r, nil
}

func (f *fakeRemote) ListFiles(context.Context) (*types.FileListResponse, error) {
	f.record("files")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := &types.FileListResponse{}
	for _, id := range f.listing {
		out.Files = append(out.Files, types.FileSummary{FileID: id, FileName: id + ".pdf"})
	}
	return out, nil
}

func (f *fakeRemote) ExportSelected(_ context.Context, request types.ExportRequest) ([]byte, error) {
	f.record("export")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastExport = request
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return f.csvLocked(request.FileIDs), nil
}

func (f *fakeRemote) ExportSummary(context.Context) ([]byte, error) {
	f.record("summary")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return f.csvLocked(f.listing), nil
}

func (f *fakeRemote) csvLocked(ids []string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"file_id", "filename", "totals_found"})
	for _, id := range ids {
		r := f.upstream[id]
		_ = w.Write([]string{id, r.FileName, fmt.Sprint(len(r.Totals))})
	}
	w.Flush()
	return buf.Bytes()
}

func (f *fakeRemote) DeleteFile(_ context.Context, fileID string) error {
	f.record("delete " + fileID)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if f.keepOnDel {
		return nil
	}
	delete(f.upstream, fileID)
	f.listing = deleteID(f.listing, fileID)
	return nil
}

func (f *fakeRemote) Health(context.Context) (*types.HealthResponse, error) {
	f.record("health")
	return &types.HealthResponse{Status: "healthy"}, nil
}

// fakeSession is the single-call API.
type fakeSession struct {
	mu        sync.Mutex
	parseErr  error
	statement types.StatementResult
	exported  [][]types.Transaction
	exportErr error
}

func (s *fakeSession) Parse(context.Context, *types.LocalFile, types.ParseMode) (*types.StatementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.parseErr != nil {
		return nil, s.parseErr
	}
	st := s.statement
	return &st, nil
}

func (s *fakeSession) ExportTransactions(_ context.Context, transactions []types.Transaction) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exportErr != nil {
		return nil, s.exportErr
	}
	s.exported = append(s.exported, transactions)
	return []byte("date,description,amount\n"), nil
}

func (s *fakeSession) Health(context.Context) (*types.HealthResponse, error) {
	return &types.HealthResponse{Status: "healthy"}, nil
}

// memDeliverer keeps artifacts in memory.
type memDeliverer struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func (d *memDeliverer) Deliver(_ context.Context, fileName string, data []byte) (types.Artifact, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return types.Artifact{}, d.err
	}
	if d.files == nil {
		d.files = map[string][]byte{}
	}
	d.files[fileName] = data
	return types.Artifact{FileName: fileName, Size: len(data)}, nil
}

// recorder collects notifications.
type recorder struct {
	mu     sync.Mutex
	events []types.Notification
}

func (r *recorder) Broadcast(n *types.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *n)
}

func (r *recorder) phases() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Type == types.NotifyTypePhase {
			out = append(out, e.Data["phase"].(string))
		}
	}
	return out
}

func (r *recorder) find(typ string) *types.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == typ {
			n := r.events[i]
			return &n
		}
	}
	return nil
}

func sampleResult(id string) types.ProcessingResult {
	line := 12
	return types.ProcessingResult{
		FileID:         id,
		FileName:       id + ".pdf",
		ProcessingTime: 1.5,
		ParsedText:     types.ParsedText{Text: "Total $1,234.56", Method: types.MethodText},
		Totals: []types.FinancialTotal{
			{Label: "Total", Value: decimal.RequireFromString("1234.56"), Currency: "USD", LineNumber: &line},
		},
		Metadata: map[string]any{},
	}
}

var testNow = time.Date(2024, 3, 5, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))

func testOptions(d Deliverer) Options {
	opts := DefaultOptions()
	opts.StatusReset = 20 * time.Millisecond
	opts.DeleteStatusReset = 20 * time.Millisecond
	opts.RequestTimeout = 2 * time.Second
	opts.Deliverer = d
	opts.Now = func() time.Time { return testNow }
	return opts
}

func newTestOrchestrator(t *testing.T, remote *fakeRemote) (*Orchestrator, *memDeliverer, *recorder) {
	t.Helper()
	d := &memDeliverer{}
	o, err := New(remote, nil, testOptions(d))
	require.NoError(t, err)
	rec := &recorder{}
	o.Subscribe(rec)
	t.Cleanup(o.Close)
	return o, d, rec
}

// writeFile creates a file of size bytes that starts with header.
func writeFile(t *testing.T, name, header string, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = f.WriteString(header)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
	return path
}

func writePDF(t *testing.T, size int64) string {
	return writeFile(t, "statement.pdf", "%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n", size)
}
