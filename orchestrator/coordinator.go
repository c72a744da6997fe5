package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"

	"github.com/moyoez/moneylens-go/tool"
	"github.com/moyoez/moneylens-go/transfer"
	"github.com/moyoez/moneylens-go/types"
	"github.com/moyoez/moneylens-go/validate"
)

// UploadCoordinator tracks the pipeline phase. Only one submission runs at a time.
type UploadCoordinator struct {
	mu      sync.RWMutex
	phase   Phase
	current string
	// uploaded files keyed by request id; they live only until the result arrives
	inflight *ttlworker.Cache[string, *types.UploadedFile]
	publish  func(*types.Notification)
}

func newUploadCoordinator(ttl time.Duration, publish func(*types.Notification)) *UploadCoordinator {
	return &UploadCoordinator{
		phase:    PhaseIdle,
		inflight: ttlworker.NewCache[string, *types.UploadedFile](ttl),
		publish:  publish,
	}
}

func (c *UploadCoordinator) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// Busy reports whether a submission is in flight.
func (c *UploadCoordinator) Busy() bool {
	return c.Phase() != PhaseIdle
}

// RequestID is the correlation id of the running submission, or "".
func (c *UploadCoordinator) RequestID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// InFlight lists uploaded files whose results have not arrived yet.
func (c *UploadCoordinator) InFlight() []types.UploadedFile {
	var out []types.UploadedFile
	_ = c.inflight.Range(func(_ string, f *types.UploadedFile) error {
		if f != nil {
			out = append(out, *f)
		}
		return nil
	})
	return out
}

func (c *UploadCoordinator) begin(requestID string) error {
	c.mu.Lock()
	if c.phase != PhaseIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	c.phase = PhaseUploading
	c.current = requestID
	c.mu.Unlock()
	c.emit(PhaseUploading, requestID)
	return nil
}

// advance moves to the next phase. An illegal step is a bug; it is logged and refused.
func (c *UploadCoordinator) advance(to Phase) bool {
	c.mu.Lock()
	from := c.phase
	if !CanTransition(from, to) {
		c.mu.Unlock()
		tool.DefaultLogger.Errorf("[Pipeline] illegal phase transition %s -> %s", from, to)
		return false
	}
	c.phase = to
	requestID := c.current
	if to == PhaseIdle {
		c.current = ""
	}
	c.mu.Unlock()
	c.emit(to, requestID)
	return true
}

func (c *UploadCoordinator) emit(phase Phase, requestID string) {
	c.publish(&types.Notification{
		Type: types.NotifyTypePhase,
		Data: map[string]any{"phase": string(phase), "requestId": requestID},
	})
}

func (c *UploadCoordinator) track(requestID string, f *types.UploadedFile) {
	c.inflight.Set(requestID, f)
}

func (c *UploadCoordinator) untrack(requestID string) {
	c.inflight.Delete(requestID)
}

// Submit validates the file at path and runs it through the pipeline. An empty path is
// "no file selected".
func (o *Orchestrator) Submit(ctx context.Context, path string, mode types.ParseMode) (*types.ProcessingResult, error) {
	var file *types.LocalFile
	if strings.TrimSpace(path) != "" {
		f, err := tool.GetFileInfoFromPath(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file info: %w", err)
		}
		file = f
	}
	return o.SubmitFile(ctx, file, mode)
}

// SubmitFile is Submit for a file that was already inspected. An empty mode means auto.
// Validation failures come back as *validate.Error and leave every component untouched;
// ErrBusy is returned while another submission runs.
func (o *Orchestrator) SubmitFile(ctx context.Context, file *types.LocalFile, mode types.ParseMode) (*types.ProcessingResult, error) {
	if mode == "" {
		mode = types.ParseModeAuto
	}
	msgs := validate.Validate(validate.FromLocalFile(file), o.opts.Constraints)
	if file != nil {
		msgs = append(msgs, validate.ValidateMode(mode)...)
	}
	if err := validate.AsError(msgs); err != nil {
		return nil, err
	}

	requestID := tool.GenerateRandomUUID()
	if err := o.coordinator.begin(requestID); err != nil {
		return nil, err
	}
	o.errs.Clear()
	ctx = transfer.WithRequestID(ctx, requestID)
	o.status.Report(StatusUploading)
	tool.DefaultLogger.Infof("[Pipeline] %s: submitting %s (%s, mode %s)", requestID, file.FileName, tool.FormatFileSize(file.Size), mode)

	var (
		result *types.ProcessingResult
		err    error
	)
	if o.opts.Protocol == types.ProtocolSingleCall {
		result, err = o.runSingleCall(ctx, file, mode)
	} else {
		result, err = o.runMultiStep(ctx, requestID, file, mode)
	}
	if err != nil {
		return nil, o.fail(requestID, err)
	}

	o.store.Insert(*result)
	o.coordinator.advance(PhaseCompleted)
	o.status.ReportTerminal(StatusCompleted, o.opts.StatusReset)
	o.publish(&types.Notification{
		Type:    types.NotifyTypeResultAdded,
		Title:   result.FileName,
		Message: StatusCompleted,
		Data:    map[string]any{"fileId": result.FileID, "totals": len(result.Totals)},
	})
	o.coordinator.advance(PhaseIdle)
	tool.DefaultLogger.Infof("[Pipeline] %s: %s processed as %s (%d totals, %.2fs)", requestID, result.FileName, result.FileID, len(result.Totals), result.ProcessingTime)
	return result, nil
}

func (o *Orchestrator) runMultiStep(ctx context.Context, requestID string, file *types.LocalFile, mode types.ParseMode) (*types.ProcessingResult, error) {
	uploadCtx, cancel := o.callContext(ctx)
	uploaded, err := o.remote.Upload(uploadCtx, file, mode)
	cancel()
	if err != nil {
		return nil, &PipelineError{Phase: PhaseUploading, Err: err}
	}
	o.coordinator.track(requestID, &types.UploadedFile{ID: uploaded.FileID, FileName: file.FileName, Size: file.Size})
	defer o.coordinator.untrack(requestID)

	o.coordinator.advance(PhaseUploaded)
	o.status.Report(StatusUploaded)
	o.coordinator.advance(PhaseProcessing)

	processCtx, cancel := o.callContext(ctx)
	defer cancel()
	result, err := o.remote.Process(processCtx, uploaded.FileID)
	if err != nil {
		return nil, &PipelineError{Phase: PhaseProcessing, Err: err}
	}
	if result.FileID == "" {
		result.FileID = uploaded.FileID
	}
	if result.FileName == "" {
		result.FileName = file.FileName
	}
	if result.UploadTime == "" {
		result.UploadTime = uploaded.UploadTime
	}
	result.Normalize()
	return result, nil
}

func (o *Orchestrator) runSingleCall(ctx context.Context, file *types.LocalFile, mode types.ParseMode) (*types.ProcessingResult, error) {
	o.coordinator.advance(PhaseProcessing)
	o.status.Report(StatusProcessing)

	started := o.opts.Now()
	parseCtx, cancel := o.callContext(ctx)
	defer cancel()
	statement, err := o.session.Parse(parseCtx, file, mode)
	if err != nil {
		return nil, &PipelineError{Phase: PhaseProcessing, Err: err}
	}
	result := adaptStatement(statement, file.FileName, mode, started, o.opts.Now())
	return &result, nil
}

func (o *Orchestrator) fail(requestID string, err error) error {
	tool.DefaultLogger.Errorf("[Pipeline] %s: %v", requestID, err)
	o.coordinator.advance(PhaseFailed)
	o.errs.Set(UserMessage(err, MsgPipelineFailed))
	o.status.ReportTerminal(MsgPipelineFailed, o.opts.StatusReset)
	o.coordinator.advance(PhaseIdle)
	return err
}

// adaptStatement turns a single-call parse response into a ProcessingResult. The four fixed
// totals become labeled totals in a fixed order; the raw object is kept in the metadata.
func adaptStatement(s *types.StatementResult, fileName string, mode types.ParseMode, started, finished time.Time) types.ProcessingResult {
	meta := make(map[string]any, len(s.Metadata)+1)
	for k, v := range s.Metadata {
		meta[k] = v
	}
	meta["statement_totals"] = s.Totals

	method := types.MethodText
	if m, ok := s.Metadata["method"].(string); ok && (m == types.MethodText || m == types.MethodOCR) {
		method = m
	} else if mode == types.ParseModeOCR {
		method = types.MethodOCR
	}
	currency := types.DefaultCurrency
	if c, ok := s.Metadata["currency"].(string); ok && c != "" {
		currency = c
	}
	text, _ := s.Metadata["text"].(string)

	processing := finished.Sub(started).Seconds()
	if p, ok := s.Metadata["processing_time"].(float64); ok {
		processing = p
	}

	r := types.ProcessingResult{
		FileID:         tool.GenerateRandomUUID(),
		FileName:       fileName,
		UploadTime:     started.UTC().Format(time.RFC3339),
		ProcessingTime: processing,
		ParsedText:     types.ParsedText{Text: text, Method: method},
		Totals: []types.FinancialTotal{
			{Label: "Inflow", Value: s.Totals.Inflow, Currency: currency},
			{Label: "Outflow", Value: s.Totals.Outflow, Currency: currency},
			{Label: "Net", Value: s.Totals.Net, Currency: currency},
			{Label: "Flow volume", Value: s.Totals.FlowVolume, Currency: currency},
		},
		Transactions: append([]types.Transaction(nil), s.Transactions...),
		Metadata:     meta,
	}
	r.Normalize()
	return r
}
