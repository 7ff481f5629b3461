package preflight

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Mode decides when a group as a whole is satisfied.
type Mode int

const (
	// AllOf groups are satisfied when none of their outcomes failed.
	AllOf Mode = iota
	// AnyOf groups are satisfied when at least one outcome passed.
	AnyOf
)

// Member is one independent unit of a CheckGroup: a probe plus follow-up
// probes that only run when it passed.
type Member struct {
	Probe Probe
	Then  []Probe
}

// Step builds a Member from a gate probe and its follow-ups.
func Step(p Probe, then ...Probe) Member {
	return Member{Probe: p, Then: then}
}

// Steps builds one Member per probe.
func Steps(probes ...Probe) []Member {
	members := make([]Member, len(probes))
	for i, p := range probes {
		members[i] = Member{Probe: p}
	}
	return members
}

// CheckGroup is a named bundle of probes run together.
type CheckGroup struct {
	Name string

	// Foundational groups abort the run when any of their outcomes fail.
	Foundational bool

	Mode    Mode
	Members []Member
}

// GroupResult summarises one finished group.
type GroupResult struct {
	Name      string `json:"name"`
	Status    Status `json:"status"`
	Satisfied bool   `json:"satisfied"`
	Outcomes  int    `json:"outcomes"`
}

// size returns the maximum number of outcomes the group can record.
func (g CheckGroup) size() int {
	n := 0
	for _, m := range g.Members {
		n += 1 + len(m.Then)
	}
	return n
}

// Run executes every member concurrently and records their outcomes.
// It returns once all members have finished.
func (g CheckGroup) Run(ctx context.Context, x Executor, rec Recorder) {
	var eg errgroup.Group
	for _, m := range g.Members {
		eg.Go(func() error {
			o := m.Probe.Run(ctx, x)
			rec.Record(o)
			if o.Status != StatusPass {
				return nil
			}
			for _, next := range m.Then {
				rec.Record(next.Run(ctx, x))
			}
			return nil
		})
	}
	_ = eg.Wait() // members never return errors
}

// Evaluate summarises the outcomes a group recorded.
func (g CheckGroup) Evaluate(outcomes []Outcome) GroupResult {
	r := GroupResult{Name: g.Name, Outcomes: len(outcomes)}

	switch g.Mode {
	case AnyOf:
		r.Status = StatusWarn
		for _, o := range outcomes {
			if o.Status == StatusPass {
				r.Status = StatusPass
				r.Satisfied = true
				break
			}
		}
	default:
		for _, o := range outcomes {
			r.Status = Worst(r.Status, o.Status)
		}
		r.Satisfied = r.Status != StatusFail
	}
	return r
}
