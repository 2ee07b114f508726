package store

import (
	"testing"
)

func TestBuildSummary(t *testing.T) {
	tests := []struct {
		name           string
		decisions      map[string]Decision
		disagreements  map[string]bool
		auditHeat      int
		wantCompliance int
		wantOverride   int
		wantDecided    int
	}{
		{
			name:           "empty session defaults",
			decisions:      map[string]Decision{},
			wantCompliance: 100,
			wantOverride:   0,
		},
		{
			name: "all approved",
			decisions: map[string]Decision{
				"201": {Kind: DecisionApprove},
				"202": {Kind: DecisionApprove},
			},
			wantCompliance: 100,
			wantOverride:   0,
			wantDecided:    2,
		},
		{
			name: "one of three overridden",
			decisions: map[string]Decision{
				"201": {Kind: DecisionApprove},
				"202": {Kind: DecisionApprove},
				"203": {Kind: DecisionOverride, Justification: "X"},
			},
			wantCompliance: 67,
			wantOverride:   33,
			wantDecided:    3,
		},
		{
			name: "split",
			decisions: map[string]Decision{
				"201": {Kind: DecisionApprove},
				"202": {Kind: DecisionOverride, Justification: "X"},
			},
			disagreements:  map[string]bool{"202": true},
			auditHeat:      1,
			wantCompliance: 50,
			wantOverride:   50,
			wantDecided:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSummary(tt.decisions, tt.disagreements, tt.auditHeat)
			if got.ComplianceRate != tt.wantCompliance {
				t.Errorf("ComplianceRate = %d, want %d", got.ComplianceRate, tt.wantCompliance)
			}
			if got.OverrideRate != tt.wantOverride {
				t.Errorf("OverrideRate = %d, want %d", got.OverrideRate, tt.wantOverride)
			}
			if got.TotalDecided != tt.wantDecided {
				t.Errorf("TotalDecided = %d, want %d", got.TotalDecided, tt.wantDecided)
			}
		})
	}
}

func TestBuildSummaryDisagreementCount(t *testing.T) {
	got := BuildSummary(nil, map[string]bool{"201": true, "202": true, "203": false}, 0)
	if got.DisagreementCount != 2 {
		t.Errorf("DisagreementCount = %d, want 2", got.DisagreementCount)
	}
}

func TestDecisionHistoryText(t *testing.T) {
	caseIDs := []string{"201", "202", "203"}

	if got := DecisionHistoryText(map[string]Decision{}, caseIDs); got != NoDecisionsSentinel {
		t.Errorf("empty history = %q, want sentinel", got)
	}

	decisions := map[string]Decision{
		"203": {Kind: DecisionOverride, Justification: "X"},
		"201": {Kind: DecisionApprove},
	}
	want := "Case 201: APPROVED, Case 203: OVERRIDDEN"
	if got := DecisionHistoryText(decisions, caseIDs); got != want {
		t.Errorf("DecisionHistoryText = %q, want %q", got, want)
	}
}

func TestAuditHeatChip(t *testing.T) {
	tests := []struct {
		heat int
		want string
	}{
		{0, "AUD ▯▯▯"},
		{1, "AUD ▮▯▯"},
		{3, "AUD ▮▮▮"},
		{7, "AUD ▮▮▮"},
		{-2, "AUD ▯▯▯"},
	}
	for _, tt := range tests {
		if got := AuditHeatChip(tt.heat); got != tt.want {
			t.Errorf("AuditHeatChip(%d) = %q, want %q", tt.heat, got, tt.want)
		}
	}
}

func TestSummaryDeterminism(t *testing.T) {
	decisions := map[string]Decision{
		"201": {Kind: DecisionApprove},
		"202": {Kind: DecisionOverride, Justification: "X"},
	}
	first := BuildSummary(decisions, map[string]bool{"202": true}, 1)
	for i := 0; i < 50; i++ {
		if got := BuildSummary(decisions, map[string]bool{"202": true}, 1); got != first {
			t.Fatalf("summary not deterministic: %+v vs %+v", got, first)
		}
	}
}
