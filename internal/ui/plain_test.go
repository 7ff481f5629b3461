package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/envdoctor/internal/preflight"
)

func TestPlainRenderer_GroupFinished_OutputFormat(t *testing.T) {
	// Given: a plain renderer expecting 8 groups
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf, WithTotal(8)))
	require.NoError(t, r.Start(context.Background()))

	// When: a group runs to completion
	r.GroupStarted("Foundational tools", 3)
	r.OutcomeRecorded(outcome("node installed", preflight.StatusPass))
	r.GroupFinished(preflight.GroupResult{
		Name:      "Foundational tools",
		Status:    preflight.StatusPass,
		Satisfied: true,
		Outcomes:  3,
	})
	require.NoError(t, r.Stop())

	// Then: one line describes the group
	assert.Equal(t, "[1/8] Foundational tools: pass (3 checks)\n", buf.String())
}

func TestPlainRenderer_UnsatisfiedGroup(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf, WithTotal(1)))

	r.GroupStarted("IDE configuration", 1)
	r.GroupFinished(preflight.GroupResult{
		Name:     "IDE configuration",
		Status:   preflight.StatusWarn,
		Outcomes: 1,
	})

	assert.Equal(t, "[1/1] IDE configuration: warn (1 check), unsatisfied\n", buf.String())
}

func TestPlainRenderer_NoANSICodes(t *testing.T) {
	// Given: a plain renderer
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf, WithTotal(2)))

	// When: rendering groups with every status, one name carrying an escape
	r.GroupStarted("Structure", 1)
	r.GroupFinished(preflight.GroupResult{Name: "Structure", Status: preflight.StatusFail})
	r.GroupStarted("evil\x1b[31m", 1)
	r.GroupFinished(preflight.GroupResult{Name: "evil\x1b[31m", Status: preflight.StatusWarn})

	// Then: no raw escape sequences reach the output
	assert.False(t, strings.Contains(buf.String(), "\x1b"))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}
