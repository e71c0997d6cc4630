package reconcile

import "fmt"

// MaxActionLines caps how many action-log lines a delivered report may
// carry, keeping reports inside downstream message-size limits.
const MaxActionLines = 10

// Summary aggregates the outcome of one reconciliation run.
type Summary struct {
	// RunID uniquely identifies the run in logs and reports.
	RunID string
	// Total is the number of member records checked.
	Total int
	// Present counts members confirmed still in the guild.
	Present int
	// Departed counts members confirmed gone from the guild.
	Departed int
	// LeadersAffected counts distinct purged members that held a leader slot.
	LeadersAffected int
	// AffectedLeaders counts distinct still-present co-leaders of the
	// purged members' unions. Surfaced in statistics only.
	AffectedLeaders int
	// CheckFailed counts members whose presence lookup failed. They are
	// never treated as departed.
	CheckFailed int
	// PurgeFailed counts departed members whose cascade aborted on a
	// store error.
	PurgeFailed int
	// Actions is the full in-memory action log for the run.
	Actions []string
}

// ReportLines returns the action log capped at MaxActionLines, with a
// trailing "+N more actions" line when truncated.
func (s *Summary) ReportLines() []string {
	if len(s.Actions) <= MaxActionLines {
		return s.Actions
	}

	lines := make([]string, 0, MaxActionLines+1)
	lines = append(lines, s.Actions[:MaxActionLines]...)
	lines = append(lines, fmt.Sprintf("+%d more actions", len(s.Actions)-MaxActionLines))

	return lines
}
