// Package orchestrator drives MoneyLens submissions and owns the client-side state: the
// upload coordinator, the result store, the selection, exports, the error banner and the
// status line. One Orchestrator is one session.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/moyoez/moneylens-go/tool"
	"github.com/moyoez/moneylens-go/types"
	"github.com/moyoez/moneylens-go/validate"
)

// Remote is the multi-step MoneyLens API.
type Remote interface {
	Upload(ctx context.Context, file *types.LocalFile, mode types.ParseMode) (*types.UploadResponse, error)
	Process(ctx context.Context, fileID string) (*types.ProcessingResult, error)
	GetResult(ctx context.Context, fileID string) (*types.ProcessingResult, error)
	ListFiles(ctx context.Context) (*types.FileListResponse, error)
	ExportSelected(ctx context.Context, request types.ExportRequest) ([]byte, error)
	ExportSummary(ctx context.Context) ([]byte, error)
	DeleteFile(ctx context.Context, fileID string) error
	Health(ctx context.Context) (*types.HealthResponse, error)
}

// SessionRemote is the single-call MoneyLens API: one parse per file, no stored history.
type SessionRemote interface {
	Parse(ctx context.Context, file *types.LocalFile, mode types.ParseMode) (*types.StatementResult, error)
	ExportTransactions(ctx context.Context, transactions []types.Transaction) ([]byte, error)
	Health(ctx context.Context) (*types.HealthResponse, error)
}

// Deliverer hands a finished export to the user. tool.ArtifactSaver is the default.
type Deliverer interface {
	Deliver(ctx context.Context, fileName string, data []byte) (types.Artifact, error)
}

// Notifier receives every state change. notify.Hub and the CLI spinner implement it.
type Notifier interface {
	Broadcast(notification *types.Notification)
}

type Options struct {
	Protocol          types.Protocol
	RequestTimeout    time.Duration
	StatusReset       time.Duration
	DeleteStatusReset time.Duration
	// ReloadConcurrency bounds the result fetches of a reload; <= 0 means 4.
	ReloadConcurrency int
	// ReloadRatePerSecond limits result fetches; 0 means unlimited.
	ReloadRatePerSecond float64
	Constraints         validate.Constraints
	Deliverer           Deliverer
	Now                 func() time.Time
}

// DefaultOptions matches tool.DefaultConfig.
func DefaultOptions() Options {
	return Options{
		Protocol:          types.ProtocolMultiStep,
		RequestTimeout:    tool.DefaultTimeout,
		StatusReset:       3 * time.Second,
		DeleteStatusReset: 2 * time.Second,
		ReloadConcurrency: 4,
		Constraints:       validate.DefaultConstraints(),
	}
}

// OptionsFromConfig maps the yaml config onto Options.
func OptionsFromConfig(cfg types.AppConfig) Options {
	opts := DefaultOptions()
	if cfg.Protocol != "" {
		opts.Protocol = cfg.Protocol
	}
	opts.RequestTimeout = tool.RequestTimeout(&cfg)
	if cfg.StatusResetMs > 0 {
		opts.StatusReset = time.Duration(cfg.StatusResetMs) * time.Millisecond
	}
	if cfg.DeleteStatusResetMs > 0 {
		opts.DeleteStatusReset = time.Duration(cfg.DeleteStatusResetMs) * time.Millisecond
	}
	if cfg.ReloadConcurrency > 0 {
		opts.ReloadConcurrency = cfg.ReloadConcurrency
	}
	opts.ReloadRatePerSecond = float64(cfg.ReloadRatePerSecond)
	opts.Deliverer = tool.NewArtifactSaver(cfg.DownloadDir)
	return opts
}

type Orchestrator struct {
	opts    Options
	remote  Remote
	session SessionRemote
	limiter *rate.Limiter

	coordinator *UploadCoordinator
	store       *ResultStore
	selection   *SelectionManager
	errs        *ErrorChannel
	status      *StatusReporter

	notifyMu  sync.RWMutex
	notifiers []Notifier
}

// New builds an Orchestrator. The multi-step protocol needs remote, the single-call protocol
// needs session; transfer.Client satisfies both. session is also used by ExportTransactions
// in multi-step mode when set.
func New(remote Remote, session SessionRemote, opts Options) (*Orchestrator, error) {
	switch opts.Protocol {
	case "", types.ProtocolMultiStep:
		opts.Protocol = types.ProtocolMultiStep
		if remote == nil {
			return nil, fmt.Errorf("invalid parameters: the %s protocol needs a remote client", opts.Protocol)
		}
	case types.ProtocolSingleCall:
		if session == nil {
			return nil, fmt.Errorf("invalid parameters: the %s protocol needs a session client", opts.Protocol)
		}
	default:
		return nil, fmt.Errorf("unknown protocol %q", opts.Protocol)
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = tool.DefaultTimeout
	}
	if opts.ReloadConcurrency <= 0 {
		opts.ReloadConcurrency = 4
	}
	if opts.Constraints.AllowedType == "" {
		opts.Constraints = validate.DefaultConstraints()
	}
	if opts.Deliverer == nil {
		opts.Deliverer = tool.NewArtifactSaver("downloads")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	o := &Orchestrator{opts: opts, remote: remote, session: session}
	if opts.ReloadRatePerSecond > 0 {
		o.limiter = rate.NewLimiter(rate.Limit(opts.ReloadRatePerSecond), 1)
	}
	o.coordinator = newUploadCoordinator(3*opts.RequestTimeout, o.publish)
	o.store = newResultStore()
	o.selection = newSelectionManager(o.store, o.publish)
	o.errs = newErrorChannel(o.publish)
	o.status = newStatusReporter(o.publish)
	return o, nil
}

// Subscribe adds a Notifier.
func (o *Orchestrator) Subscribe(n Notifier) {
	if n == nil {
		return
	}
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()
	o.notifiers = append(o.notifiers, n)
}

func (o *Orchestrator) publish(n *types.Notification) {
	o.notifyMu.RLock()
	notifiers := o.notifiers
	o.notifyMu.RUnlock()
	for _, s := range notifiers {
		s.Broadcast(n)
	}
}

func (o *Orchestrator) Protocol() types.Protocol        { return o.opts.Protocol }
func (o *Orchestrator) Coordinator() *UploadCoordinator { return o.coordinator }
func (o *Orchestrator) Store() *ResultStore             { return o.store }
func (o *Orchestrator) Selection() *SelectionManager    { return o.selection }
func (o *Orchestrator) Errors() *ErrorChannel           { return o.errs }
func (o *Orchestrator) Status() *StatusReporter         { return o.status }

// callContext bounds a single remote call.
func (o *Orchestrator) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.opts.RequestTimeout)
}

// Health asks the API whether it is up.
func (o *Orchestrator) Health(ctx context.Context) (*types.HealthResponse, error) {
	ctx, cancel := o.callContext(ctx)
	defer cancel()
	if o.remote != nil {
		return o.remote.Health(ctx)
	}
	return o.session.Health(ctx)
}

// Snapshot is the state a UI renders.
type Snapshot struct {
	Protocol types.Protocol `json:"protocol"`
	Phase    Phase          `json:"phase"`
	Busy     bool           `json:"busy"`
	Status   string         `json:"status"`
	Error    string         `json:"error,omitempty"`
	Results  int            `json:"results"`
	Selected int            `json:"selected"`
}

func (o *Orchestrator) Snapshot() Snapshot {
	phase := o.coordinator.Phase()
	msg, _ := o.errs.Current()
	return Snapshot{
		Protocol: o.opts.Protocol,
		Phase:    phase,
		Busy:     phase != PhaseIdle,
		Status:   o.status.Current(),
		Error:    msg,
		Results:  o.store.Len(),
		Selected: o.selection.Size(),
	}
}

// Close stops a pending status reset.
func (o *Orchestrator) Close() {
	o.status.Stop()
}
