package views_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardenlabs/unionwarden/internal/bot/views"
	"github.com/wardenlabs/unionwarden/internal/reconcile"
)

func TestBuildSweepReport(t *testing.T) {
	summary := &reconcile.Summary{
		RunID:           "run-1",
		Total:           3,
		Present:         2,
		Departed:        1,
		LeadersAffected: 1,
		Actions:         []string{"Removed alda as primary leader of Iron Vanguard"},
	}

	embed := views.BuildSweepReport(summary)

	assert.Contains(t, embed.Description, "Iron Vanguard")
	require.Len(t, embed.Fields, 4)
	assert.Equal(t, "3", embed.Fields[0].Value)
	assert.Equal(t, "2", embed.Fields[1].Value)
	assert.Equal(t, "1", embed.Fields[2].Value)
	assert.Equal(t, "1", embed.Fields[3].Value)
}

func TestBuildSweepReportFailureFields(t *testing.T) {
	summary := &reconcile.Summary{
		RunID:       "run-2",
		Total:       5,
		Present:     3,
		Departed:    1,
		CheckFailed: 1,
		PurgeFailed: 1,
		Actions:     []string{"Removed bryn"},
	}

	embed := views.BuildSweepReport(summary)

	require.Len(t, embed.Fields, 6)
	assert.Equal(t, "Lookups Failed", embed.Fields[4].Name)
	assert.Equal(t, "Purges Failed", embed.Fields[5].Name)
}

func TestBuildSweepReportTruncation(t *testing.T) {
	summary := &reconcile.Summary{RunID: "run-3", Total: 15, Departed: 15}
	for i := range 15 {
		summary.Actions = append(summary.Actions, fmt.Sprintf("Removed member %d", i))
	}

	embed := views.BuildSweepReport(summary)

	lines := strings.Split(embed.Description, "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "+5 more actions", lines[10])
}
