// Package ui renders orchestrator state in the terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/schollz/progressbar/v3"

	"github.com/moyoez/moneylens-go/types"
)

// ProgressBar shows reload progress. The bar is drawn on the first Update, once the total is known.
type ProgressBar struct {
	mu          sync.Mutex
	w           io.Writer
	description string
	bar         *progressbar.ProgressBar
}

func NewProgressBar(description string) *ProgressBar {
	return newProgressBar(os.Stderr, description)
}

func newProgressBar(w io.Writer, description string) *ProgressBar {
	return &ProgressBar{w: w, description: description}
}

func (p *ProgressBar) build(total int64) *progressbar.ProgressBar {
	w := p.w
	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(p.description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("results"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update matches orchestrator.ProgressFunc; it is safe to call from several goroutines.
func (p *ProgressBar) Update(done, total int) {
	if total <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		p.bar = p.build(int64(total))
	} else if int64(total) != p.bar.GetMax64() {
		p.bar.ChangeMax64(int64(total))
	}
	_ = p.bar.Set64(int64(done))
}

func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Spinner follows the status line while a submission runs.
type Spinner struct {
	spinner *spinner.Spinner
}

func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr
	return &Spinner{spinner: s}
}

func (s *Spinner) Start() {
	s.spinner.Start()
}

func (s *Spinner) Stop() {
	s.spinner.Stop()
}

// Broadcast implements orchestrator.Notifier: status notifications become the spinner text.
func (s *Spinner) Broadcast(n *types.Notification) {
	if n == nil || n.Type != types.NotifyTypeStatus {
		return
	}
	s.spinner.Lock()
	s.spinner.Suffix = " " + n.Message
	s.spinner.Unlock()
}
