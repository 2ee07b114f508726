package store

import (
	"math"
	"strings"
)

// Summary is the derived view of a session. It is recomputed on demand and
// never stored.
type Summary struct {
	TotalDecided      int `json:"total_decided"`
	Approvals         int `json:"approvals"`
	OverrideCount     int `json:"override_count"`
	DisagreementCount int `json:"disagreement_count"`
	ComplianceRate    int `json:"compliance_rate"`
	OverrideRate      int `json:"override_rate"`
	AuditHeat         int `json:"audit_heat"`
}

// NoDecisionsSentinel is returned by DecisionHistoryText when every case is
// still pending.
const NoDecisionsSentinel = "No decisions recorded yet"

// BuildSummary derives the session summary from a decision/disagreement
// snapshot. With nothing decided the compliance rate defaults to 100 and the
// override rate to 0.
func BuildSummary(decisions map[string]Decision, disagreements map[string]bool, auditHeat int) Summary {
	total := len(decisions)
	approvals := 0
	overrides := 0
	for _, d := range decisions {
		switch d.Kind {
		case DecisionApprove:
			approvals++
		case DecisionOverride:
			overrides++
		}
	}

	disagreementCount := 0
	for _, flagged := range disagreements {
		if flagged {
			disagreementCount++
		}
	}

	compliance := 100
	overrideRate := 0
	if total > 0 {
		compliance = roundRate(approvals, total)
		overrideRate = roundRate(overrides, total)
	}

	return Summary{
		TotalDecided:      total,
		Approvals:         approvals,
		OverrideCount:     overrides,
		DisagreementCount: disagreementCount,
		ComplianceRate:    compliance,
		OverrideRate:      overrideRate,
		AuditHeat:         clampHeat(auditHeat),
	}
}

func roundRate(part, total int) int {
	return int(math.Round(float64(part) / float64(total) * 100))
}

// SummaryOf derives the summary straight from a session.
func SummaryOf(s *Session) Summary {
	decisions, disagreements, heat := s.Snapshot()
	return BuildSummary(decisions, disagreements, heat)
}

// PrettyDecision renders a decision kind the way the audit feed spells it.
func PrettyDecision(kind DecisionKind) string {
	if kind == DecisionApprove {
		return "APPROVED"
	}
	return "OVERRIDDEN"
}

// DecisionHistoryText renders decided cases in catalog order as
// "Case {id}: {APPROVED|OVERRIDDEN}" joined by ", ". Pending cases are
// skipped; with no decisions at all it returns NoDecisionsSentinel.
func DecisionHistoryText(decisions map[string]Decision, caseIDs []string) string {
	entries := make([]string, 0, len(decisions))
	for _, id := range caseIDs {
		d, ok := decisions[id]
		if !ok {
			continue
		}
		entries = append(entries, "Case "+id+": "+PrettyDecision(d.Kind))
	}
	if len(entries) == 0 {
		return NoDecisionsSentinel
	}
	return strings.Join(entries, ", ")
}

// AuditHeatChip renders audit heat as a three-segment filled/unfilled
// indicator, e.g. "AUD ▮▮▯". The clamp mirrors the one applied before the
// counter is interpolated into chat prompts.
func AuditHeatChip(auditHeat int) string {
	filled := clampHeat(auditHeat)
	return "AUD " + strings.Repeat("▮", filled) + strings.Repeat("▯", MaxAuditHeat-filled)
}

func clampHeat(heat int) int {
	if heat < 0 {
		return 0
	}
	if heat > MaxAuditHeat {
		return MaxAuditHeat
	}
	return heat
}
