package preflight

import "sync"

// Recorder is the write-only view of a ResultLog handed to probes.
type Recorder interface {
	Record(o Outcome)
}

// ResultLog is an append-only, ordered collection of outcomes for one run.
// It is safe for concurrent use.
type ResultLog struct {
	mu      sync.Mutex
	entries []Outcome
}

// NewResultLog creates an empty ResultLog.
func NewResultLog() *ResultLog {
	return &ResultLog{}
}

// Record appends an outcome. Entries are never modified after they are recorded.
func (l *ResultLog) Record(o Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, o)
}

// Len returns the number of recorded outcomes.
func (l *ResultLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries returns a copy of all outcomes in insertion order.
func (l *ResultLog) Entries() []Outcome {
	return l.Since(0)
}

// Since returns a copy of the outcomes recorded at or after index start.
func (l *ResultLog) Since(start int) []Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()
	if start < 0 {
		start = 0
	}
	if start >= len(l.entries) {
		return nil
	}
	out := make([]Outcome, len(l.entries)-start)
	copy(out, l.entries[start:])
	return out
}

// groupRecorder stamps the group name on every outcome before forwarding it.
type groupRecorder struct {
	group string
	next  Recorder
	onAdd func(Outcome)
}

func (r groupRecorder) Record(o Outcome) {
	o.Group = r.group
	r.next.Record(o)
	if r.onAdd != nil {
		r.onAdd(o)
	}
}
