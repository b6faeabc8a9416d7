package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const barWidth = 20

// Bar renders a single-line stage indicator: one step per pipeline stage.
type Bar struct {
	total     int
	current   int
	label     string
	out       io.Writer
	mu        sync.Mutex
	startTime time.Time
	done      bool
}

// New creates a bar for total stages, writing to stderr.
func New(total int) *Bar {
	return &Bar{
		total:     total,
		out:       os.Stderr,
		startTime: time.Now(),
	}
}

// SetOutput redirects rendering to w.
func (b *Bar) SetOutput(w io.Writer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out = w
}

// Step advances to the next stage and shows its label.
func (b *Bar) Step(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done {
		return
	}
	if b.current < b.total {
		b.current++
	}
	b.label = label
	b.render()
}

// Finish fills the bar and ends the line.
func (b *Bar) Finish(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done {
		return
	}
	b.current = b.total
	b.label = label
	b.render()
	fmt.Fprintln(b.out)
	b.done = true
}

// Fail ends the line at the current stage.
func (b *Bar) Fail(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done {
		return
	}
	b.label = label
	b.render()
	fmt.Fprintln(b.out)
	b.done = true
}

func (b *Bar) render() {
	filled := 0
	if b.total > 0 {
		filled = barWidth * b.current / b.total
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprintf(b.out, "\r[%s] %d/%d %s (%s)   ",
		bar,
		b.current,
		b.total,
		b.label,
		formatDuration(time.Since(b.startTime)),
	)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
