package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckGroup_RunsAllMembers(t *testing.T) {
	// Given: three file probes, one present
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), nil, 0o644))
	g := CheckGroup{
		Name: "files",
		Members: Steps(
			FileProbe{Name: "a", Path: filepath.Join(dir, "a")},
			FileProbe{Name: "b", Path: filepath.Join(dir, "b")},
			FileProbe{Name: "c", Path: filepath.Join(dir, "c"), Required: true},
		),
	}
	log := NewResultLog()

	// When: running the group
	g.Run(context.Background(), newFakeExecutor(), log)

	// Then: exactly one outcome per probe
	assert.Equal(t, 3, log.Len())
	assert.Equal(t, 3, g.size())

	res := g.Evaluate(log.Entries())
	assert.Equal(t, StatusFail, res.Status)
	assert.False(t, res.Satisfied)
	assert.Equal(t, 3, res.Outcomes)
}

func TestCheckGroup_GateSkipsFollowUps(t *testing.T) {
	dir := t.TempDir()
	x := newFakeExecutor().withShell("count", "3\n")
	member := Step(
		FileProbe{Name: "node_modules", Path: filepath.Join(dir, "node_modules"), Required: true},
		ShellQueryProbe{Name: "installed", Expression: "count", Predicate: CountAtLeast(1, "entries")},
	)
	g := CheckGroup{Name: "deps", Members: []Member{member}}

	t.Run("gate fails", func(t *testing.T) {
		log := NewResultLog()
		g.Run(context.Background(), x, log)

		require.Equal(t, 1, log.Len())
		assert.Equal(t, StatusFail, log.Entries()[0].Status)
		assert.False(t, x.called("sh -c count"))
	})

	t.Run("gate passes", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0o755))
		log := NewResultLog()
		g.Run(context.Background(), x, log)

		entries := log.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, "node_modules", entries[0].Name)
		assert.Equal(t, "installed", entries[1].Name)
		assert.Equal(t, StatusPass, entries[1].Status)
	})
}

func TestCheckGroup_EvaluateAnyOf(t *testing.T) {
	g := CheckGroup{Name: "ide", Mode: AnyOf}

	tests := []struct {
		name      string
		statuses  []Status
		want      Status
		satisfied bool
	}{
		{"one present", []Status{StatusWarn, StatusPass, StatusWarn}, StatusPass, true},
		{"none present", []Status{StatusWarn, StatusWarn, StatusWarn}, StatusWarn, false},
		{"empty", nil, StatusWarn, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var outcomes []Outcome
			for _, s := range tt.statuses {
				outcomes = append(outcomes, Outcome{Status: s})
			}

			res := g.Evaluate(outcomes)

			assert.Equal(t, tt.want, res.Status)
			assert.Equal(t, tt.satisfied, res.Satisfied)
		})
	}
}

func TestCheckGroup_EvaluateAllOf(t *testing.T) {
	g := CheckGroup{Name: "env"}

	res := g.Evaluate([]Outcome{{Status: StatusPass}, {Status: StatusWarn}})
	assert.Equal(t, StatusWarn, res.Status)
	assert.True(t, res.Satisfied)

	res = g.Evaluate(nil)
	assert.Equal(t, StatusPass, res.Status)
	assert.True(t, res.Satisfied)
}
