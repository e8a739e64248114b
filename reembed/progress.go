package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/poiesic/pocketgenie/core"
)

// ProgressTracker reports how many entities have been re-embedded.
// It is safe for use from multiple workers.
type ProgressTracker struct {
	writer         io.Writer
	total          int
	current        int
	perKind        map[core.EntityType]int
	reportInterval int
	lastReported   int
	startTime      time.Time
	started        bool
	mu             sync.Mutex
}

// NewProgressTracker creates a tracker for total entities that reports every
// reportInterval entities.
func NewProgressTracker(writer io.Writer, total, reportInterval int) *ProgressTracker {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressTracker{
		writer:         writer,
		total:          total,
		perKind:        make(map[core.EntityType]int),
		reportInterval: reportInterval,
	}
}

// Start begins tracking progress.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.current = 0
	p.lastReported = 0
	clear(p.perKind)
}

// Add records n more processed entities of the given kind.
func (p *ProgressTracker) Add(kind core.EntityType, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.perKind[kind] += n
	p.current = min(p.current+n, p.total)

	if p.current-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.current
	}
}

// Count returns how many entities of kind have been recorded.
func (p *ProgressTracker) Count(kind core.EntityType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.perKind[kind]
}

// Finish prints the final progress line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}

	return time.Since(p.startTime)
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	rate := float64(p.current) / time.Since(p.startTime).Seconds()

	percentage := 100.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rProgress: %d/%d (%.1f%%) tasks=%d notes=%d - %.1f entities/s",
		p.current, p.total, percentage,
		p.perKind[core.EntityTypeTask], p.perKind[core.EntityTypeNote], rate)
}
