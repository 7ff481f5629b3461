package ui

import (
	"sync"
	"time"

	"github.com/Aman-CERP/envdoctor/internal/preflight"
)

// GroupLine is a finished group as shown in progress output.
type GroupLine struct {
	Name      string
	Status    preflight.Status
	Satisfied bool
	Checks    int
}

// ProgressStats contains a snapshot of current progress.
type ProgressStats struct {
	Group       string // Group currently running, empty between groups
	GroupIndex  int    // 1-based index of the current or last group
	TotalGroups int
	Done        int // Outcomes recorded in the current group
	Probes      int // Probes scheduled in the current group
	Pass        int
	Warn        int
	Fail        int
	Completed   []GroupLine
	Elapsed     time.Duration
	Progress    float64 // Finished groups over total, 0..1
}

// ProgressTracker accumulates orchestrator events. It is safe for
// concurrent use since outcomes of one group arrive from several goroutines.
type ProgressTracker struct {
	mu        sync.RWMutex
	total     int
	index     int
	group     string
	done      int
	probes    int
	pass      int
	warn      int
	fail      int
	completed []GroupLine
	startTime time.Time
}

// NewProgressTracker creates a tracker expecting total groups.
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{
		total:     total,
		startTime: time.Now(),
	}
}

// StartGroup marks a group as running.
func (p *ProgressTracker) StartGroup(name string, probes int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.index++
	if p.index > p.total {
		p.total = p.index
	}
	p.group = name
	p.done = 0
	p.probes = probes
}

// Record counts one outcome.
func (p *ProgressTracker) Record(o preflight.Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	switch o.Status {
	case preflight.StatusPass:
		p.pass++
	case preflight.StatusWarn:
		p.warn++
	default:
		p.fail++
	}
}

// FinishGroup moves the running group to the completed list.
func (p *ProgressTracker) FinishGroup(res preflight.GroupResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.completed = append(p.completed, GroupLine{
		Name:      res.Name,
		Status:    res.Status,
		Satisfied: res.Satisfied,
		Checks:    res.Outcomes,
	})
	p.group = ""
}

// Stats returns a snapshot of current progress.
func (p *ProgressTracker) Stats() ProgressStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats := ProgressStats{
		Group:       p.group,
		GroupIndex:  p.index,
		TotalGroups: p.total,
		Done:        p.done,
		Probes:      p.probes,
		Pass:        p.pass,
		Warn:        p.warn,
		Fail:        p.fail,
		Completed:   append([]GroupLine(nil), p.completed...),
		Elapsed:     time.Since(p.startTime),
	}
	if p.total > 0 {
		stats.Progress = float64(len(p.completed)) / float64(p.total)
		if stats.Progress > 1 {
			stats.Progress = 1
		}
	}
	return stats
}
