package prompt

import "math"

// Defaults applied when a numeric session metric is absent or not a number.
const (
	FallbackComplianceRate = 100
	FallbackCount          = 0
)

// SafeNumber collapses a possibly-absent, possibly-NaN numeric input to an
// integer, falling back when the value cannot be trusted. Prompt text must
// never contain "NaN".
func SafeNumber(value *float64, fallback int) int {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return fallback
	}
	return int(math.Round(*value))
}

// SanitizeMetrics builds a Metrics block from raw boundary inputs.
// challengeCount is a compatibility alias for disagreementCount used by an
// older client field name; the non-nil one wins, disagreementCount first.
func SanitizeMetrics(complianceRate, overrideCount, disagreementCount, challengeCount *float64, decisionHistory string) Metrics {
	disagreements := disagreementCount
	if disagreements == nil {
		disagreements = challengeCount
	}
	history := decisionHistory
	if history == "" {
		history = "No decisions recorded"
	}
	return Metrics{
		ComplianceRate:    SafeNumber(complianceRate, FallbackComplianceRate),
		OverrideCount:     SafeNumber(overrideCount, FallbackCount),
		DisagreementCount: SafeNumber(disagreements, FallbackCount),
		DecisionHistory:   history,
	}
}
