package commands

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ProgressReporter prints sync steps and batch progress bars.
type ProgressReporter struct {
	w         io.Writer
	mu        sync.Mutex
	startTime time.Time
	inBar     bool
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(w io.Writer) *ProgressReporter {
	return &ProgressReporter{w: w, startTime: time.Now()}
}

// Step announces the next step of the flow.
func (p *ProgressReporter) Step(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.endBar()
	fmt.Fprintf(p.w, "==> %s\n", name)
}

// Batch redraws the progress bar of the current step.
func (p *ProgressReporter) Batch(label string, index, total, size int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if total <= 0 {
		return
	}
	progress := float64(index) / float64(total) * 100
	fmt.Fprintf(p.w, "\r%s %s %.0f%% (%d/%d, %d items)", label, renderBar(progress), progress, index, total, size)
	p.inBar = true
	if index >= total {
		p.endBar()
	}
}

// Finish completes the progress display.
func (p *ProgressReporter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.endBar()
	fmt.Fprintf(p.w, "Finished in %s\n", time.Since(p.startTime).Round(time.Millisecond))
}

func (p *ProgressReporter) endBar() {
	if p.inBar {
		fmt.Fprintln(p.w)
		p.inBar = false
	}
}

func renderBar(progress float64) string {
	width := 20
	filled := int(progress / 100 * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
