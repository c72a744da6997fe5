package orchestrator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/moyoez/moneylens-go/transfer"
	"github.com/moyoez/moneylens-go/types"
)

var (
	ErrBusy           = errors.New("a submission is already in progress")
	ErrEmptySelection = errors.New("no results selected")
	ErrNoResults      = errors.New("no results available")
	ErrNotConfirmed   = errors.New("deletion was not confirmed")
	ErrUnknownResult  = errors.New("unknown result")
	ErrUnsupported    = errors.New("operation is not supported by the configured protocol")
)

// Messages shown on the error banner when the API gives no detail.
const (
	MsgPipelineFailed     = "Upload or processing failed"
	MsgDeleteFailed       = "Failed to delete file"
	MsgReloadFailed       = "Failed to load existing results"
	MsgExportFailed       = "Export failed. Please try again."
	MsgSummaryFailed      = "Summary export failed. Please try again."
	MsgTransactionsFailed = "Transactions export failed. Please try again."
)

// PipelineError ends a submission. Phase is where it stopped.
type PipelineError struct {
	Phase Phase
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed while %s: %v", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// PartialFetchError is one result that could not be fetched during a reload.
type PartialFetchError struct {
	FileID string
	Err    error
}

func (e *PartialFetchError) Error() string {
	return fmt.Sprintf("failed to fetch result %s: %v", e.FileID, e.Err)
}

func (e *PartialFetchError) Unwrap() error { return e.Err }

// ExportKind names which export failed.
type ExportKind string

const (
	ExportKindSelected     ExportKind = "selected"
	ExportKindSummary      ExportKind = "summary"
	ExportKindTransactions ExportKind = "transactions"
)

type ExportError struct {
	Kind ExportKind
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("%s export failed: %v", e.Kind, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

type DeleteError struct {
	FileID string
	Err    error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("failed to delete %s: %v", e.FileID, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }

// UserMessage prefers the detail the API sent and falls back to fallback.
func UserMessage(err error, fallback string) string {
	if d := transfer.DetailOf(err); d != "" {
		return d
	}
	return fallback
}

// ErrorChannel holds the latest failure until the user dismisses it. A new error overwrites
// an unread one.
type ErrorChannel struct {
	mu      sync.RWMutex
	message string
	present bool
	publish func(*types.Notification)
}

func newErrorChannel(publish func(*types.Notification)) *ErrorChannel {
	return &ErrorChannel{publish: publish}
}

func (c *ErrorChannel) Set(message string) {
	c.mu.Lock()
	c.message = message
	c.present = true
	c.mu.Unlock()
	c.publish(&types.Notification{Type: types.NotifyTypeError, Title: "Error", Message: message})
}

func (c *ErrorChannel) Clear() {
	c.mu.Lock()
	had := c.present
	c.message = ""
	c.present = false
	c.mu.Unlock()
	if had {
		c.publish(&types.Notification{Type: types.NotifyTypeErrorCleared})
	}
}

// Current returns the pending message, if any.
func (c *ErrorChannel) Current() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.message, c.present
}
