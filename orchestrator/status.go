package orchestrator

import (
	"sync"
	"time"

	"github.com/moyoez/moneylens-go/types"
)

// Status texts.
const (
	StatusIdle       = "Ready to upload files"
	StatusUploading  = "Uploading file..."
	StatusUploaded   = "File uploaded successfully. Processing..."
	StatusProcessing = "Processing file..."
	StatusCompleted  = "File processed successfully"
	StatusDeleted    = "File deleted successfully"
)

// StatusReporter is the one-line status. A terminal report falls back to StatusIdle after
// its delay unless something newer was reported in between.
type StatusReporter struct {
	mu      sync.Mutex
	text    string
	gen     uint64
	timer   *time.Timer
	publish func(*types.Notification)
}

func newStatusReporter(publish func(*types.Notification)) *StatusReporter {
	return &StatusReporter{text: StatusIdle, publish: publish}
}

// Report sets text and cancels any pending reset.
func (s *StatusReporter) Report(text string) {
	s.mu.Lock()
	s.set(text)
	s.mu.Unlock()
	s.emit(text)
}

// ReportTerminal sets text and schedules the reset to StatusIdle after delay.
func (s *StatusReporter) ReportTerminal(text string, delay time.Duration) {
	s.mu.Lock()
	gen := s.set(text)
	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.text = StatusIdle
		s.timer = nil
		s.mu.Unlock()
		s.emit(StatusIdle)
	})
	s.mu.Unlock()
	s.emit(text)
}

// set must be called with mu held.
func (s *StatusReporter) set(text string) uint64 {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.text = text
	return s.gen
}

func (s *StatusReporter) emit(text string) {
	s.publish(&types.Notification{Type: types.NotifyTypeStatus, Message: text})
}

func (s *StatusReporter) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Stop cancels a pending reset.
func (s *StatusReporter) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
